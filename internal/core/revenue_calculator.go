package core

// Recompute derives GST, line totals, total sale price and net revenue from in.
// It is pure: the same inputs always give the same result, and negative inputs
// are carried through unclamped (Validate is where they get rejected).
// Hosts must call it after every change to any input.
func Recompute(in DealFinancialsInputs) DealFinancialsDerived {
	bsp, other, plc := in.BaseSale(), in.Other(), in.Location()

	d := DealFinancialsDerived{
		BaseSaleGST:       bsp.GSTAmount(),
		OtherChargesGST:   other.GSTAmount(),
		LocationChargeGST: plc.GSTAmount(),
	}
	d.BaseSaleTotal = in.BaseSalePrice.Add(d.BaseSaleGST)
	d.OtherChargesTotal = in.OtherCharges.Add(d.OtherChargesGST)
	d.LocationChargeTotal = in.LocationCharge.Add(d.LocationChargeGST)

	// The sum of already-rounded line totals; no second rounding.
	d.TotalSalePrice = d.BaseSaleTotal.Add(d.OtherChargesTotal).Add(d.LocationChargeTotal)
	d.NetRevenue = in.GrossRevenue.Sub(in.PartnerRevenue).Sub(in.Discount)
	return d
}
