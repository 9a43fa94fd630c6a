package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company is the tenant a booking belongs to.
type Company struct {
	ID           int    `json:"id"`
	CompanyCode  string `json:"company_code"`
	Name         string `json:"name"`
	BaseCurrency string `json:"base_currency"`
}

// BookingFinancePayload is the flat finance object submitted with a booking.
// Its keys are fixed by the CRM backend.
type BookingFinancePayload struct {
	BSP                decimal.Decimal    `json:"BSP"`
	GST                decimal.Decimal    `json:"GST"`
	GSTPercentage      decimal.Decimal    `json:"GSTPercentage"`
	OtherCharges       decimal.Decimal    `json:"OtherCharges"`
	OtherGST           decimal.Decimal    `json:"OtherGST"`
	OtherGSTPercentage decimal.Decimal    `json:"OtherGSTPercentage"`
	PLC                decimal.Decimal    `json:"PLC"`
	PLCGST             decimal.Decimal    `json:"PLCGST"`
	PLCGSTPercentage   decimal.Decimal    `json:"PLCGSTPercentage"`
	TSP                decimal.Decimal    `json:"TSP"`
	TotalReceived      decimal.Decimal    `json:"totalReceived"`
	GrossRevenue       decimal.Decimal    `json:"GrossRevenue"`
	CPRevenue          decimal.Decimal    `json:"CPRevenue"`
	Discount           decimal.Decimal    `json:"Discount"`
	NetRevenue         decimal.Decimal    `json:"netRevenue"`
	PaymentDetails     []PersistedPayment `json:"paymentDetails"`
}

// BuildFinancePayload recomputes every derived figure and merges the payment
// lists. It performs no completeness validation; see BookingForm.Payload.
func BuildFinancePayload(in DealFinancialsInputs, payments PaymentLists) (*BookingFinancePayload, error) {
	schedule, err := payments.Schedule()
	if err != nil {
		return nil, err
	}
	d := Recompute(in)
	return &BookingFinancePayload{
		BSP:                in.BaseSalePrice,
		GST:                d.BaseSaleGST,
		GSTPercentage:      in.BaseSaleGSTPct,
		OtherCharges:       in.OtherCharges,
		OtherGST:           d.OtherChargesGST,
		OtherGSTPercentage: in.OtherChargesGSTPct,
		PLC:                in.LocationCharge,
		PLCGST:             d.LocationChargeGST,
		PLCGSTPercentage:   in.LocationChargeGSTPct,
		TSP:                d.TotalSalePrice,
		TotalReceived:      TotalReceived(schedule),
		GrossRevenue:       in.GrossRevenue,
		CPRevenue:          in.PartnerRevenue,
		Discount:           in.Discount,
		NetRevenue:         d.NetRevenue,
		PaymentDetails:     schedule,
	}, nil
}

// Inputs extracts the calculator inputs back out of a payload.
func (p BookingFinancePayload) Inputs() DealFinancialsInputs {
	return DealFinancialsInputs{
		BaseSalePrice:        p.BSP,
		BaseSaleGSTPct:       p.GSTPercentage,
		OtherCharges:         p.OtherCharges,
		OtherChargesGSTPct:   p.OtherGSTPercentage,
		LocationCharge:       p.PLC,
		LocationChargeGSTPct: p.PLCGSTPercentage,
		GrossRevenue:         p.GrossRevenue,
		PartnerRevenue:       p.CPRevenue,
		Discount:             p.Discount,
	}
}

// PaymentLists splits the stored schedule back into editable lists: paid
// entries go to received, unpaid ones to pending. When nothing is paid the
// first entry stays in received, since a submitted schedule always leads with
// at least one received entry.
func (p BookingFinancePayload) PaymentLists() PaymentLists {
	l := PaymentLists{Received: []PaymentEntry{}, Pending: []PaymentEntry{}}
	for _, pd := range p.PaymentDetails {
		if pd.Status == PaymentStatusPaid {
			l.Received = append(l.Received, pd.ToEntry())
		} else {
			l.Pending = append(l.Pending, pd.ToEntry())
		}
	}
	if len(l.Received) == 0 && len(l.Pending) > 0 {
		l.Received = append(l.Received, l.Pending[0])
		l.Pending = l.Pending[1:]
	}
	return l
}

// Booking is a unit sale recorded against a lead.
type Booking struct {
	ID             int                   `json:"id"`
	CompanyID      int                   `json:"company_id"`
	BookingNumber  string                `json:"booking_number"`
	IdempotencyKey string                `json:"idempotency_key,omitempty"`
	CustomerName   string                `json:"customer_name"`
	ProjectName    string                `json:"project_name"`
	UnitNumber     string                `json:"unit_number"`
	BookingDate    string                `json:"booking_date"` // YYYY-MM-DD
	Remarks        string                `json:"remarks"`
	Finance        BookingFinancePayload `json:"finance"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// BookingInput is what a caller supplies to create a booking.
type BookingInput struct {
	IdempotencyKey string
	CustomerName   string
	ProjectName    string
	UnitNumber     string
	BookingDate    string
	Remarks        string
	Financials     DealFinancialsInputs
	Payments       PaymentLists
}

// Validate checks the header fields, the financial inputs and both payment lists.
func (in BookingInput) Validate() error {
	var fe FieldErrors
	if in.CustomerName == "" {
		fe.add("customer_name", "is required")
	}
	if in.UnitNumber == "" {
		fe.add("unit_number", "is required")
	}
	if in.BookingDate == "" {
		fe.add("booking_date", "is required")
	} else if _, err := time.Parse("2006-01-02", in.BookingDate); err != nil {
		fe.add("booking_date", "must be YYYY-MM-DD")
	}
	if err := in.Financials.Validate(); err != nil {
		inner, _ := AsFieldErrors(err)
		fe = append(fe, inner...)
	}
	if err := in.Payments.Validate(); err != nil {
		inner, _ := AsFieldErrors(err)
		fe = append(fe, inner...)
	}
	return fe.errOrNil()
}

// FinancialYear returns the Indian financial year (April to March) a date falls in,
// identified by its starting calendar year.
func FinancialYear(t time.Time) int {
	if t.Month() >= time.April {
		return t.Year()
	}
	return t.Year() - 1
}
