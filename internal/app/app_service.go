package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"booking-finance/internal/ai"
	"booking-finance/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAgentUnavailable   = errors.New("AI extractor not configured; set OPENAI_API_KEY")
)

type appService struct {
	pool           *pgxpool.Pool
	bookingService core.BookingService
	userService    core.UserService
	agent          ai.BookingExtractor
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil, in which case DraftBooking returns ErrAgentUnavailable.
func NewAppService(
	pool *pgxpool.Pool,
	bookingService core.BookingService,
	userService core.UserService,
	agent ai.BookingExtractor,
) ApplicationService {
	return &appService{
		pool:           pool,
		bookingService: bookingService,
		userService:    userService,
		agent:          agent,
	}
}

// LoadDefaultCompany loads the active company, using COMPANY_CODE env var if set.
func (s *appService) LoadDefaultCompany(ctx context.Context) (*core.Company, error) {
	if code := os.Getenv("COMPANY_CODE"); code != "" {
		return s.fetchCompany(ctx, code)
	}

	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM companies").Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple companies found; set COMPANY_CODE env var (e.g. COMPANY_CODE=1000)")
	}

	c := &core.Company{}
	if err := s.pool.QueryRow(ctx,
		"SELECT id, company_code, name, base_currency FROM companies LIMIT 1",
	).Scan(&c.ID, &c.CompanyCode, &c.Name, &c.BaseCurrency); err != nil {
		return nil, fmt.Errorf("no default company found, have migrations run?: %w", err)
	}
	return c, nil
}

// AuthenticateUser checks the password against the stored bcrypt hash. Unknown
// users and wrong passwords return the same error.
func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	u, err := s.userService.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &UserSession{
		UserID:      u.ID,
		Username:    u.Username,
		Role:        u.Role,
		CompanyCode: u.CompanyCode,
	}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	u, err := s.userService.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		CompanyCode: u.CompanyCode,
	}, nil
}

func (s *appService) RecomputeFinancials(ctx context.Context, in core.DealFinancialsInputs) (*CalculationResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &CalculationResult{Inputs: in, Derived: core.Recompute(in)}, nil
}

func (s *appService) BuildSchedule(ctx context.Context, lists core.PaymentLists) (*ScheduleResult, error) {
	schedule, err := lists.Schedule()
	if err != nil {
		return nil, err
	}
	return &ScheduleResult{PaymentDetails: schedule, TotalReceived: core.TotalReceived(schedule)}, nil
}

func (s *appService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingResult, error) {
	bookingDate := req.BookingDate
	if bookingDate == "" {
		bookingDate = time.Now().Format("2006-01-02")
	}

	b, err := s.bookingService.CreateBooking(ctx, req.CompanyCode, core.BookingInput{
		IdempotencyKey: req.IdempotencyKey,
		CustomerName:   req.CustomerName,
		ProjectName:    req.ProjectName,
		UnitNumber:     req.UnitNumber,
		BookingDate:    bookingDate,
		Remarks:        req.Remarks,
		Financials:     req.Financials,
		Payments:       req.Payments,
	})
	if err != nil {
		return nil, err
	}
	return &BookingResult{Booking: b}, nil
}

func (s *appService) GetBooking(ctx context.Context, ref, companyCode string) (*BookingResult, error) {
	b, err := s.resolveBooking(ctx, ref, companyCode)
	if err != nil {
		return nil, err
	}
	return &BookingResult{Booking: b}, nil
}

func (s *appService) ListBookings(ctx context.Context, companyCode string) (*BookingListResult, error) {
	bookings, err := s.bookingService.ListBookings(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	return &BookingListResult{Bookings: bookings, CompanyCode: companyCode}, nil
}

func (s *appService) ExportBookings(ctx context.Context, companyCode string) (*BookingListResult, error) {
	bookings, err := s.bookingService.ListBookingsWithPayments(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	return &BookingListResult{Bookings: bookings, CompanyCode: companyCode}, nil
}

func (s *appService) UpdateBookingFinancials(ctx context.Context, req UpdateFinancialsRequest) (*BookingResult, error) {
	b, err := s.resolveBooking(ctx, req.Ref, req.CompanyCode)
	if err != nil {
		return nil, err
	}
	updated, err := s.bookingService.UpdateFinancials(ctx, b.ID, req.Financials)
	if err != nil {
		return nil, err
	}
	return &BookingResult{Booking: updated}, nil
}

func (s *appService) UpdateBookingPayments(ctx context.Context, req UpdatePaymentsRequest) (*BookingResult, error) {
	b, err := s.resolveBooking(ctx, req.Ref, req.CompanyCode)
	if err != nil {
		return nil, err
	}
	updated, err := s.bookingService.ReplacePayments(ctx, b.ID, req.Payments)
	if err != nil {
		return nil, err
	}
	return &BookingResult{Booking: updated}, nil
}

// DraftBooking never persists anything: the caller reviews the draft and
// submits it through CreateBooking.
func (s *appService) DraftBooking(ctx context.Context, text, companyCode string) (*DraftResult, error) {
	if s.agent == nil {
		return nil, ErrAgentUnavailable
	}
	company, err := s.fetchCompany(ctx, companyCode)
	if err != nil {
		return nil, err
	}

	response, err := s.agent.ExtractBooking(ctx, text, company.Name)
	if err != nil {
		return nil, err
	}
	return draftResult(response)
}

func draftResult(response *core.DraftResponse) (*DraftResult, error) {
	if response.IsClarificationRequest {
		return &DraftResult{
			IsClarification:      true,
			ClarificationMessage: response.Clarification.Message,
		}, nil
	}

	in, err := response.Draft.ToBookingInput()
	if err != nil {
		return nil, fmt.Errorf("failed to convert draft: %w", err)
	}
	return &DraftResult{
		Draft:      &in,
		Derived:    core.Recompute(in.Financials),
		Confidence: response.Draft.Confidence,
		Reasoning:  response.Draft.Reasoning,
	}, nil
}

// resolveBooking looks up a booking by numeric ID or booking number string and
// checks that it belongs to companyCode.
func (s *appService) resolveBooking(ctx context.Context, ref, companyCode string) (*core.Booking, error) {
	id, err := strconv.Atoi(ref)
	if err != nil {
		return s.bookingService.GetBookingByNumber(ctx, companyCode, ref)
	}

	company, err := s.fetchCompany(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	b, err := s.bookingService.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.CompanyID != company.ID {
		return nil, fmt.Errorf("%w: id %d for company %s", core.ErrBookingNotFound, id, companyCode)
	}
	return b, nil
}

// fetchCompany retrieves a company record by code.
func (s *appService) fetchCompany(ctx context.Context, companyCode string) (*core.Company, error) {
	c := &core.Company{}
	if err := s.pool.QueryRow(ctx,
		"SELECT id, company_code, name, base_currency FROM companies WHERE company_code = $1", companyCode,
	).Scan(&c.ID, &c.CompanyCode, &c.Name, &c.BaseCurrency); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: company code %s", core.ErrCompanyNotFound, companyCode)
		}
		return nil, fmt.Errorf("failed to fetch company %s: %w", companyCode, err)
	}
	return c, nil
}
