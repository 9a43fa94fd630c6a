package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateBooking = errors.New("duplicate booking")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrCompanyNotFound  = errors.New("company not found")
)

// BookingService persists bookings together with their finance payload.
// Every write recomputes derived figures server-side; values sent by clients
// for GST, TSP, net revenue or totalReceived are never trusted.
type BookingService interface {
	CreateBooking(ctx context.Context, companyCode string, in BookingInput) (*Booking, error)
	GetBooking(ctx context.Context, bookingID int) (*Booking, error)
	GetBookingByNumber(ctx context.Context, companyCode, bookingNumber string) (*Booking, error)
	ListBookings(ctx context.Context, companyCode string) ([]Booking, error)
	// ListBookingsWithPayments is ListBookings with every booking's payment schedule loaded.
	ListBookingsWithPayments(ctx context.Context, companyCode string) ([]Booking, error)

	// UpdateFinancials replaces the nine calculator inputs and stores the recomputed figures.
	UpdateFinancials(ctx context.Context, bookingID int, in DealFinancialsInputs) (*Booking, error)
	// ReplacePayments replaces the whole payment schedule and recomputes totalReceived.
	ReplacePayments(ctx context.Context, bookingID int, payments PaymentLists) (*Booking, error)
}

type bookingService struct {
	pool      *pgxpool.Pool
	numbering NumberingService
}

func NewBookingService(pool *pgxpool.Pool, numbering NumberingService) BookingService {
	return &bookingService{pool: pool, numbering: numbering}
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func resolveCompanyID(ctx context.Context, q pgxQuerier, companyCode string) (int, error) {
	var id int
	err := q.QueryRow(ctx, "SELECT id FROM companies WHERE company_code = $1", companyCode).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: company code %s", ErrCompanyNotFound, companyCode)
		}
		return 0, fmt.Errorf("failed to resolve company %s: %w", companyCode, err)
	}
	return id, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, companyCode string, in BookingInput) (*Booking, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	payload, err := BuildFinancePayload(in.Financials, in.Payments)
	if err != nil {
		return nil, err
	}

	bookingDate, _ := time.Parse("2006-01-02", in.BookingDate)
	key := in.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	companyID, err := resolveCompanyID(ctx, tx, companyCode)
	if err != nil {
		return nil, err
	}

	number, err := s.numbering.NextTx(ctx, tx, companyID, BookingNumberPrefix, FinancialYear(bookingDate))
	if err != nil {
		return nil, err
	}

	var bookingID int
	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (
			company_id, booking_number, idempotency_key, customer_name, project_name, unit_number,
			booking_date, remarks,
			bsp, gst, gst_percentage, other_charges, other_gst, other_gst_percentage,
			plc, plc_gst, plc_gst_percentage, tsp, total_received,
			gross_revenue, cp_revenue, discount, net_revenue
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (company_id, idempotency_key) DO NOTHING
		RETURNING id
	`, companyID, number, key, in.CustomerName, in.ProjectName, in.UnitNumber,
		in.BookingDate, in.Remarks,
		payload.BSP, payload.GST, payload.GSTPercentage, payload.OtherCharges, payload.OtherGST, payload.OtherGSTPercentage,
		payload.PLC, payload.PLCGST, payload.PLCGSTPercentage, payload.TSP, payload.TotalReceived,
		payload.GrossRevenue, payload.CPRevenue, payload.Discount, payload.NetRevenue,
	).Scan(&bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: idempotency key %s already used", ErrDuplicateBooking, key)
		}
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := insertPayments(ctx, tx, bookingID, payload.PaymentDetails); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return s.GetBooking(ctx, bookingID)
}

func insertPayments(ctx context.Context, tx pgx.Tx, bookingID int, schedule []PersistedPayment) error {
	for i, p := range schedule {
		var chequeNumber, transactionNo *string
		switch inst := p.Instrument.(type) {
		case ChequeInstrument:
			chequeNumber = &inst.ChequeNumber
		case OnlineInstrument:
			transactionNo = &inst.TransactionNo
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO booking_payments (booking_id, seq, amount, payment_date, status, mode, cheque_number, transaction_no)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, bookingID, i+1, p.Amount, p.Date, string(p.Status), string(p.Mode()), chequeNumber, transactionNo)
		if err != nil {
			return fmt.Errorf("failed to insert payment %d: %w", i+1, err)
		}
	}
	return nil
}

const bookingColumns = `
	id, company_id, booking_number, idempotency_key, customer_name, project_name, unit_number,
	booking_date::text, remarks,
	bsp, gst, gst_percentage, other_charges, other_gst, other_gst_percentage,
	plc, plc_gst, plc_gst_percentage, tsp, total_received,
	gross_revenue, cp_revenue, discount, net_revenue,
	created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	f := &b.Finance
	err := row.Scan(
		&b.ID, &b.CompanyID, &b.BookingNumber, &b.IdempotencyKey, &b.CustomerName, &b.ProjectName, &b.UnitNumber,
		&b.BookingDate, &b.Remarks,
		&f.BSP, &f.GST, &f.GSTPercentage, &f.OtherCharges, &f.OtherGST, &f.OtherGSTPercentage,
		&f.PLC, &f.PLCGST, &f.PLCGSTPercentage, &f.TSP, &f.TotalReceived,
		&f.GrossRevenue, &f.CPRevenue, &f.Discount, &f.NetRevenue,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID int) (*Booking, error) {
	b, err := scanBooking(s.pool.QueryRow(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = $1", bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", ErrBookingNotFound, bookingID)
		}
		return nil, fmt.Errorf("failed to fetch booking %d: %w", bookingID, err)
	}

	schedule, err := s.fetchPayments(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	b.Finance.PaymentDetails = schedule
	return b, nil
}

func (s *bookingService) GetBookingByNumber(ctx context.Context, companyCode, bookingNumber string) (*Booking, error) {
	companyID, err := resolveCompanyID(ctx, s.pool, companyCode)
	if err != nil {
		return nil, err
	}

	var bookingID int
	err = s.pool.QueryRow(ctx,
		"SELECT id FROM bookings WHERE company_id = $1 AND booking_number = $2",
		companyID, bookingNumber,
	).Scan(&bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s for company %s", ErrBookingNotFound, bookingNumber, companyCode)
		}
		return nil, fmt.Errorf("failed to lookup booking by number: %w", err)
	}
	return s.GetBooking(ctx, bookingID)
}

// ListBookings returns headers and figures without payment rows, newest first.
func (s *bookingService) ListBookings(ctx context.Context, companyCode string) ([]Booking, error) {
	companyID, err := resolveCompanyID(ctx, s.pool, companyCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE company_id = $1 ORDER BY booking_date DESC, id DESC",
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (s *bookingService) ListBookingsWithPayments(ctx context.Context, companyCode string) ([]Booking, error) {
	bookings, err := s.ListBookings(ctx, companyCode)
	if err != nil || len(bookings) == 0 {
		return bookings, err
	}

	ids := make([]int, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	rows, err := s.pool.Query(ctx, `
		SELECT booking_id, amount, payment_date::text, status, mode, cheque_number, transaction_no
		FROM booking_payments
		WHERE booking_id = ANY($1)
		ORDER BY booking_id, seq
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	byBooking := make(map[int][]PersistedPayment, len(bookings))
	for rows.Next() {
		var bookingID int
		p, err := scanPayment(rows, &bookingID)
		if err != nil {
			return nil, err
		}
		byBooking[bookingID] = append(byBooking[bookingID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payments: %w", err)
	}

	for i := range bookings {
		schedule := byBooking[bookings[i].ID]
		if schedule == nil {
			schedule = []PersistedPayment{}
		}
		bookings[i].Finance.PaymentDetails = schedule
	}
	return bookings, nil
}

func (s *bookingService) UpdateFinancials(ctx context.Context, bookingID int, in DealFinancialsInputs) (*Booking, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	d := Recompute(in)

	tag, err := s.pool.Exec(ctx, `
		UPDATE bookings SET
			bsp = $2, gst = $3, gst_percentage = $4,
			other_charges = $5, other_gst = $6, other_gst_percentage = $7,
			plc = $8, plc_gst = $9, plc_gst_percentage = $10,
			tsp = $11, gross_revenue = $12, cp_revenue = $13, discount = $14, net_revenue = $15,
			updated_at = NOW()
		WHERE id = $1
	`, bookingID,
		in.BaseSalePrice, d.BaseSaleGST, in.BaseSaleGSTPct,
		in.OtherCharges, d.OtherChargesGST, in.OtherChargesGSTPct,
		in.LocationCharge, d.LocationChargeGST, in.LocationChargeGSTPct,
		d.TotalSalePrice, in.GrossRevenue, in.PartnerRevenue, in.Discount, d.NetRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking %d financials: %w", bookingID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrBookingNotFound, bookingID)
	}
	return s.GetBooking(ctx, bookingID)
}

func (s *bookingService) ReplacePayments(ctx context.Context, bookingID int, payments PaymentLists) (*Booking, error) {
	if err := payments.Validate(); err != nil {
		return nil, err
	}
	schedule, err := payments.Schedule()
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the booking so concurrent schedule edits apply one after the other.
	var locked int
	err = tx.QueryRow(ctx, "SELECT id FROM bookings WHERE id = $1 FOR UPDATE", bookingID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", ErrBookingNotFound, bookingID)
		}
		return nil, fmt.Errorf("failed to lock booking %d: %w", bookingID, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM booking_payments WHERE booking_id = $1", bookingID); err != nil {
		return nil, fmt.Errorf("failed to clear payments: %w", err)
	}
	if err := insertPayments(ctx, tx, bookingID, schedule); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		"UPDATE bookings SET total_received = $2, updated_at = NOW() WHERE id = $1",
		bookingID, TotalReceived(schedule),
	); err != nil {
		return nil, fmt.Errorf("failed to update total received: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payments: %w", err)
	}
	return s.GetBooking(ctx, bookingID)
}

func (s *bookingService) fetchPayments(ctx context.Context, bookingID int) ([]PersistedPayment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT amount, payment_date::text, status, mode, cheque_number, transaction_no
		FROM booking_payments
		WHERE booking_id = $1
		ORDER BY seq
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	schedule := []PersistedPayment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, p)
	}
	return schedule, rows.Err()
}

// scanPayment reads one booking_payments row. Any leading columns of the
// query are scanned into lead first.
func scanPayment(row pgx.Row, lead ...any) (PersistedPayment, error) {
	var (
		amount                      decimal.Decimal
		date                        *string
		status, mode                string
		chequeNumber, transactionNo *string
	)
	dest := append(lead, &amount, &date, &status, &mode, &chequeNumber, &transactionNo)
	if err := row.Scan(dest...); err != nil {
		return PersistedPayment{}, fmt.Errorf("failed to scan payment: %w", err)
	}
	pm, err := ParsePaymentMode(mode)
	if err != nil {
		return PersistedPayment{}, err
	}
	ps, err := ParsePaymentStatus(status)
	if err != nil {
		return PersistedPayment{}, err
	}
	return PersistedPayment{
		Amount:     amount,
		Date:       date,
		Status:     ps,
		Instrument: instrumentFor(pm, deref(chequeNumber), deref(transactionNo)),
	}, nil
}
