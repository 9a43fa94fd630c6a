package app

import (
	"context"

	"booking-finance/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// LoadDefaultCompany loads the active company. Uses COMPANY_CODE env var if set;
	// otherwise expects exactly one company in the database.
	LoadDefaultCompany(ctx context.Context) (*core.Company, error)

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)

	// RecomputeFinancials runs the revenue calculator on a set of inputs. It never
	// touches the database.
	RecomputeFinancials(ctx context.Context, in core.DealFinancialsInputs) (*CalculationResult, error)

	// BuildSchedule merges received and pending lists into the submitted schedule
	// and its totalReceived. It never touches the database.
	BuildSchedule(ctx context.Context, lists core.PaymentLists) (*ScheduleResult, error)

	// CreateBooking validates, numbers and stores a new booking.
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingResult, error)

	// GetBooking returns a single booking by numeric ID or booking number string.
	GetBooking(ctx context.Context, ref, companyCode string) (*BookingResult, error)

	// ListBookings returns all bookings of a company, newest first.
	ListBookings(ctx context.Context, companyCode string) (*BookingListResult, error)

	// ExportBookings is ListBookings with each booking's payment schedule loaded,
	// for the bookings register workbook.
	ExportBookings(ctx context.Context, companyCode string) (*BookingListResult, error)

	// UpdateBookingFinancials replaces the calculator inputs of a booking.
	UpdateBookingFinancials(ctx context.Context, req UpdateFinancialsRequest) (*BookingResult, error)

	// UpdateBookingPayments replaces the payment schedule of a booking.
	UpdateBookingPayments(ctx context.Context, req UpdatePaymentsRequest) (*BookingResult, error)

	// DraftBooking sends a free-text deal note to the AI extractor and returns
	// either an unsaved booking draft or a clarification request.
	DraftBooking(ctx context.Context, text, companyCode string) (*DraftResult, error)
}
