package app

import (
	"booking-finance/internal/core"

	"github.com/shopspring/decimal"
)

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID      int
	Username    string
	Role        string
	CompanyCode string
}

// UserResult is returned by GetUser.
type UserResult struct {
	UserID      int
	Username    string
	Email       string
	Role        string
	CompanyCode string
}

// CalculationResult is returned by RecomputeFinancials.
type CalculationResult struct {
	Inputs  core.DealFinancialsInputs
	Derived core.DealFinancialsDerived
}

// ScheduleResult is returned by BuildSchedule.
type ScheduleResult struct {
	PaymentDetails []core.PersistedPayment
	TotalReceived  decimal.Decimal
}

// BookingResult is returned by booking operations.
type BookingResult struct {
	Booking *core.Booking
}

// BookingListResult is returned by ListBookings.
type BookingListResult struct {
	Bookings    []core.Booking
	CompanyCode string
}

// DraftResult is returned by DraftBooking. Exactly one of Draft and
// ClarificationMessage is meaningful, selected by IsClarification.
type DraftResult struct {
	Draft                *core.BookingInput
	Derived              core.DealFinancialsDerived
	Confidence           float64
	Reasoning            string
	ClarificationMessage string
	IsClarification      bool
}
