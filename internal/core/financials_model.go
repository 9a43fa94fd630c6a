package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Input field names. They match the keys of the submitted booking-finance payload.
const (
	FieldBSP                = "BSP"
	FieldBSPGSTPercentage   = "GSTPercentage"
	FieldOtherCharges       = "OtherCharges"
	FieldOtherGSTPercentage = "OtherGSTPercentage"
	FieldPLC                = "PLC"
	FieldPLCGSTPercentage   = "PLCGSTPercentage"
	FieldGrossRevenue       = "GrossRevenue"
	FieldCPRevenue          = "CPRevenue"
	FieldDiscount           = "Discount"
)

// InputFields lists every calculator input in form order.
var InputFields = []string{
	FieldBSP, FieldBSPGSTPercentage,
	FieldOtherCharges, FieldOtherGSTPercentage,
	FieldPLC, FieldPLCGSTPercentage,
	FieldGrossRevenue, FieldCPRevenue, FieldDiscount,
}

// MonetaryLineItem is one taxable charge line. Its GST and total are always derived.
type MonetaryLineItem struct {
	BaseAmount    decimal.Decimal `json:"base_amount"`
	GSTPercentage decimal.Decimal `json:"gst_percentage"`
}

// GSTAmount returns BaseAmount × GSTPercentage / 100 rounded to paise.
func (li MonetaryLineItem) GSTAmount() decimal.Decimal {
	return RoundMoney(li.BaseAmount.Mul(li.GSTPercentage).Div(hundred))
}

// LineTotal returns BaseAmount + GSTAmount.
func (li MonetaryLineItem) LineTotal() decimal.Decimal {
	return li.BaseAmount.Add(li.GSTAmount())
}

// DealFinancialsInputs holds every user-entered figure of a booking.
// Percentages are whole-number percents (18 means 18%).
type DealFinancialsInputs struct {
	BaseSalePrice        decimal.Decimal `json:"BSP"`
	BaseSaleGSTPct       decimal.Decimal `json:"GSTPercentage"`
	OtherCharges         decimal.Decimal `json:"OtherCharges"`
	OtherChargesGSTPct   decimal.Decimal `json:"OtherGSTPercentage"`
	LocationCharge       decimal.Decimal `json:"PLC"`
	LocationChargeGSTPct decimal.Decimal `json:"PLCGSTPercentage"`
	GrossRevenue         decimal.Decimal `json:"GrossRevenue"`
	PartnerRevenue       decimal.Decimal `json:"CPRevenue"`
	Discount             decimal.Decimal `json:"Discount"`
}

// BaseSale, Other and Location expose the three taxable lines.
func (in DealFinancialsInputs) BaseSale() MonetaryLineItem {
	return MonetaryLineItem{BaseAmount: in.BaseSalePrice, GSTPercentage: in.BaseSaleGSTPct}
}

func (in DealFinancialsInputs) Other() MonetaryLineItem {
	return MonetaryLineItem{BaseAmount: in.OtherCharges, GSTPercentage: in.OtherChargesGSTPct}
}

func (in DealFinancialsInputs) Location() MonetaryLineItem {
	return MonetaryLineItem{BaseAmount: in.LocationCharge, GSTPercentage: in.LocationChargeGSTPct}
}

// field returns a pointer to the named input, or nil for an unknown name.
func (in *DealFinancialsInputs) field(name string) *decimal.Decimal {
	switch name {
	case FieldBSP:
		return &in.BaseSalePrice
	case FieldBSPGSTPercentage:
		return &in.BaseSaleGSTPct
	case FieldOtherCharges:
		return &in.OtherCharges
	case FieldOtherGSTPercentage:
		return &in.OtherChargesGSTPct
	case FieldPLC:
		return &in.LocationCharge
	case FieldPLCGSTPercentage:
		return &in.LocationChargeGSTPct
	case FieldGrossRevenue:
		return &in.GrossRevenue
	case FieldCPRevenue:
		return &in.PartnerRevenue
	case FieldDiscount:
		return &in.Discount
	}
	return nil
}

// Set coerces value with ParseAmount and stores it in the named input.
// An unknown field name is a programming error and is returned as ErrUnknownField.
func (in *DealFinancialsInputs) Set(name string, value any) error {
	p := in.field(name)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	*p = ParseAmount(value)
	return nil
}

// Get returns the named input.
func (in DealFinancialsInputs) Get(name string) (decimal.Decimal, error) {
	p := in.field(name)
	if p == nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return *p, nil
}

// UnmarshalJSON decodes leniently: numbers, numeric strings, blanks and nulls
// are all accepted and invalid values coerce to zero instead of failing the decode.
// Unknown keys are ignored.
func (in *DealFinancialsInputs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*in = DealFinancialsInputs{}
	for _, name := range InputFields {
		if v, ok := raw[name]; ok {
			_ = in.Set(name, v)
		}
	}
	return nil
}

// Validate reports inputs the form must not submit: amounts that are negative,
// reach 10^13 or carry more than two decimal places, and GST percentages outside
// [0, 100] or with more than two decimal places. Negative net revenue is allowed.
func (in DealFinancialsInputs) Validate() error {
	var fe FieldErrors
	for _, name := range []string{FieldBSP, FieldOtherCharges, FieldPLC, FieldGrossRevenue, FieldCPRevenue, FieldDiscount} {
		v, _ := in.Get(name)
		if msg := amountProblem(v); msg != "" {
			fe.add(name, "%s", msg)
		}
	}
	for _, name := range []string{FieldBSPGSTPercentage, FieldOtherGSTPercentage, FieldPLCGSTPercentage} {
		v, _ := in.Get(name)
		switch {
		case !hasPlaces(v, moneyPlaces):
			fe.add(name, "must have at most 2 decimal places")
		case v.IsNegative() || v.Exponent() > maxExponent || v.GreaterThan(hundred):
			fe.add(name, "must be between 0 and 100")
		}
	}
	return fe.errOrNil()
}

// DealFinancialsDerived carries every value computed from DealFinancialsInputs.
type DealFinancialsDerived struct {
	BaseSaleGST         decimal.Decimal `json:"GST"`
	OtherChargesGST     decimal.Decimal `json:"OtherGST"`
	LocationChargeGST   decimal.Decimal `json:"PLCGST"`
	BaseSaleTotal       decimal.Decimal `json:"BSPTotal"`
	OtherChargesTotal   decimal.Decimal `json:"OtherChargesTotal"`
	LocationChargeTotal decimal.Decimal `json:"PLCTotal"`
	TotalSalePrice      decimal.Decimal `json:"TSP"`
	NetRevenue          decimal.Decimal `json:"netRevenue"`
}
