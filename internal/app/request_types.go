package app

import "booking-finance/internal/core"

// CreateBookingRequest is the input for creating a new booking.
type CreateBookingRequest struct {
	CompanyCode    string
	IdempotencyKey string // optional; generated when empty
	CustomerName   string
	ProjectName    string
	UnitNumber     string
	BookingDate    string // YYYY-MM-DD; today when empty
	Remarks        string
	Financials     core.DealFinancialsInputs
	Payments       core.PaymentLists
}

// UpdateFinancialsRequest replaces the nine calculator inputs of a booking.
// Ref may be a numeric ID or a booking number.
type UpdateFinancialsRequest struct {
	CompanyCode string
	Ref         string
	Financials  core.DealFinancialsInputs
}

// UpdatePaymentsRequest replaces the payment schedule of a booking.
type UpdatePaymentsRequest struct {
	CompanyCode string
	Ref         string
	Payments    core.PaymentLists
}
