package core_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"booking-finance/internal/adapters/xlsx"
	"booking-finance/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Integration tests truncate tables, so they only run against a dedicated test database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE booking_payments, bookings, booking_sequences, users, companies RESTART IDENTITY CASCADE;

		INSERT INTO companies (id, company_code, name, base_currency) VALUES (1, '1000', 'Test Realty', 'INR');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}
	return pool
}

func sampleBooking(key string) core.BookingInput {
	return core.BookingInput{
		IdempotencyKey: key,
		CustomerName:   "Asha Verma",
		ProjectName:    "Skyline Residency",
		UnitNumber:     "T2-1104",
		BookingDate:    "2026-04-12",
		Financials: core.DealFinancialsInputs{
			BaseSalePrice: d("7500000"), BaseSaleGSTPct: d("5"),
			OtherCharges: d("150000"), OtherChargesGSTPct: d("18"),
			LocationCharge: d("200000"), LocationChargeGSTPct: d("18"),
			GrossRevenue: d("600000"), PartnerRevenue: d("60000"), Discount: d("15000"),
		},
		Payments: core.PaymentLists{
			Received: []core.PaymentEntry{
				{Amount: d("500000"), Date: "2026-04-12", Status: core.PaymentStatusPaid, Mode: core.PaymentModeOnline, TransactionNo: "UTR0001"},
			},
			Pending: []core.PaymentEntry{
				{Amount: d("1000000"), Date: "2026-06-30", Status: core.PaymentStatusUnpaid, Mode: core.PaymentModeCheque, ChequeNumber: "004512"},
			},
		},
	}
}

func TestBookingService_CreateAndFetch(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewBookingService(pool, core.NewNumberingService())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, "1000", sampleBooking("create-1"))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.BookingNumber != "BK-2026-00001" {
		t.Errorf("expected BK-2026-00001, got %s", b.BookingNumber)
	}
	// 7500000 + 375000 + 150000 + 27000 + 200000 + 36000
	if !b.Finance.TSP.Equal(d("8288000")) {
		t.Errorf("expected TSP 8288000, got %s", b.Finance.TSP)
	}
	if !b.Finance.NetRevenue.Equal(d("525000")) {
		t.Errorf("expected net revenue 525000, got %s", b.Finance.NetRevenue)
	}
	if !b.Finance.TotalReceived.Equal(d("500000")) {
		t.Errorf("expected totalReceived 500000, got %s", b.Finance.TotalReceived)
	}
	if len(b.Finance.PaymentDetails) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(b.Finance.PaymentDetails))
	}
	if inst, ok := b.Finance.PaymentDetails[1].Instrument.(core.ChequeInstrument); !ok || inst.ChequeNumber != "004512" {
		t.Errorf("expected pending cheque 004512, got %#v", b.Finance.PaymentDetails[1].Instrument)
	}

	byNumber, err := svc.GetBookingByNumber(ctx, "1000", b.BookingNumber)
	if err != nil {
		t.Fatalf("GetBookingByNumber: %v", err)
	}
	if byNumber.ID != b.ID {
		t.Errorf("expected booking %d, got %d", b.ID, byNumber.ID)
	}

	if _, err := svc.GetBooking(ctx, b.ID+999); !errors.Is(err, core.ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestBookingService_Idempotency(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewBookingService(pool, core.NewNumberingService())
	ctx := context.Background()

	if _, err := svc.CreateBooking(ctx, "1000", sampleBooking("same-key")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateBooking(ctx, "1000", sampleBooking("same-key"))
	if !errors.Is(err, core.ErrDuplicateBooking) {
		t.Fatalf("expected ErrDuplicateBooking, got %v", err)
	}

	// The rolled-back duplicate must not burn a number.
	b, err := svc.CreateBooking(ctx, "1000", sampleBooking("other-key"))
	if err != nil {
		t.Fatal(err)
	}
	if b.BookingNumber != "BK-2026-00002" {
		t.Errorf("expected gapless BK-2026-00002, got %s", b.BookingNumber)
	}
}

func TestBookingService_RejectsInvalidInput(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewBookingService(pool, core.NewNumberingService())
	in := sampleBooking("bad")
	in.Payments.Pending[0].ChequeNumber = ""

	_, err := svc.CreateBooking(context.Background(), "1000", in)
	fe, ok := core.AsFieldErrors(err)
	if !ok || len(fe) != 1 || fe[0].Field != "pending[0].chequeNumber" {
		t.Fatalf("expected a single chequeNumber field error, got %v", err)
	}
}

func TestBookingService_ConcurrentNumbering(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewBookingService(pool, core.NewNumberingService())
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := sampleBooking("")
			if i%2 == 1 {
				in.BookingDate = "2026-03-15" // previous financial year
			}
			if _, err := svc.CreateBooking(ctx, "1000", in); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent create error: %v", err)
	}

	rows, err := pool.Query(ctx, "SELECT financial_year, last_number FROM booking_sequences ORDER BY financial_year")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	got := map[int]int64{}
	for rows.Next() {
		var fy int
		var last int64
		if err := rows.Scan(&fy, &last); err != nil {
			t.Fatal(err)
		}
		got[fy] = last
	}
	if got[2025] != 5 || got[2026] != 5 {
		t.Errorf("expected 5 numbers per financial year, got %v", got)
	}

	var distinct int
	if err := pool.QueryRow(ctx, "SELECT count(DISTINCT booking_number) FROM bookings").Scan(&distinct); err != nil {
		t.Fatal(err)
	}
	if distinct != n {
		t.Errorf("expected %d distinct booking numbers, got %d", n, distinct)
	}
}

func TestBookingService_UpdateFinancialsAndPayments(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewBookingService(pool, core.NewNumberingService())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, "1000", sampleBooking("update-1"))
	if err != nil {
		t.Fatal(err)
	}

	fin := b.Finance.Inputs()
	fin.Discount = d("45000")
	updated, err := svc.UpdateFinancials(ctx, b.ID, fin)
	if err != nil {
		t.Fatalf("UpdateFinancials: %v", err)
	}
	if !updated.Finance.NetRevenue.Equal(d("495000")) {
		t.Errorf("expected net revenue 495000, got %s", updated.Finance.NetRevenue)
	}

	lists := updated.Finance.PaymentLists()
	lists.Pending[0].Status = core.PaymentStatusPaid
	lists.Received = append(lists.Received, lists.Pending[0])
	lists.Pending = lists.Pending[:0]
	updated, err = svc.ReplacePayments(ctx, b.ID, lists)
	if err != nil {
		t.Fatalf("ReplacePayments: %v", err)
	}
	if !updated.Finance.TotalReceived.Equal(d("1500000")) {
		t.Errorf("expected totalReceived 1500000, got %s", updated.Finance.TotalReceived)
	}
	if len(updated.Finance.PaymentDetails) != 2 {
		t.Errorf("expected 2 payments after replace, got %d", len(updated.Finance.PaymentDetails))
	}

	if _, err := svc.UpdateFinancials(ctx, b.ID+999, fin); !errors.Is(err, core.ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestBookingService_ExportIncludesPayments(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewBookingService(pool, core.NewNumberingService())
	ctx := context.Background()

	first, err := svc.CreateBooking(ctx, "1000", sampleBooking("export-1"))
	if err != nil {
		t.Fatal(err)
	}
	second := sampleBooking("export-2")
	second.BookingDate = "2026-05-01"
	second.Payments.Pending = nil
	if _, err := svc.CreateBooking(ctx, "1000", second); err != nil {
		t.Fatal(err)
	}

	listed, err := svc.ListBookings(ctx, "1000")
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range listed {
		if len(b.Finance.PaymentDetails) != 0 {
			t.Errorf("ListBookings should not load payments, got %d for %s", len(b.Finance.PaymentDetails), b.BookingNumber)
		}
	}

	bookings, err := svc.ListBookingsWithPayments(ctx, "1000")
	if err != nil {
		t.Fatalf("ListBookingsWithPayments: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(bookings))
	}
	// Newest first: the May booking has one payment, the April booking two.
	if len(bookings[0].Finance.PaymentDetails) != 1 || len(bookings[1].Finance.PaymentDetails) != 2 {
		t.Fatalf("unexpected payment counts: %d, %d", len(bookings[0].Finance.PaymentDetails), len(bookings[1].Finance.PaymentDetails))
	}

	var buf bytes.Buffer
	if err := xlsx.WriteBookingRegister(&buf, bookings); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsx.PaymentsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 payment rows, got %d: %v", len(rows), rows)
	}
	last := rows[3]
	if last[0] != first.BookingNumber || last[6] != "cheque" || last[7] != "004512" {
		t.Errorf("unexpected pending row: %v", last)
	}
}
