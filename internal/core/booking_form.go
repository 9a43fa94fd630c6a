package core

// BookingForm is the host for the calculator and the reconciler while a booking
// is being entered. Every input change re-runs Recompute before returning, so
// Derived never lags behind Inputs.
type BookingForm struct {
	inputs   DealFinancialsInputs
	derived  DealFinancialsDerived
	payments PaymentLists
}

func NewBookingForm() *BookingForm {
	f := &BookingForm{payments: NewPaymentLists()}
	f.recalculate()
	return f
}

func (f *BookingForm) recalculate() {
	f.derived = Recompute(f.inputs)
}

// SetInput stores one calculator input (by payload key) and recalculates.
func (f *BookingForm) SetInput(field string, value any) error {
	if err := f.inputs.Set(field, value); err != nil {
		return err
	}
	f.recalculate()
	return nil
}

// LoadInputs replaces all calculator inputs and recalculates.
func (f *BookingForm) LoadInputs(in DealFinancialsInputs) {
	f.inputs = in
	f.recalculate()
}

// LoadPayments replaces both payment lists.
func (f *BookingForm) LoadPayments(l PaymentLists) {
	f.payments = l
}

func (f *BookingForm) Inputs() DealFinancialsInputs   { return f.inputs }
func (f *BookingForm) Derived() DealFinancialsDerived { return f.derived }
func (f *BookingForm) Payments() PaymentLists         { return f.payments }

func (f *BookingForm) AddPayment(list PaymentList) (PaymentEntry, error) {
	return f.payments.AddEntry(list)
}

func (f *BookingForm) RemovePayment(list PaymentList, index int) error {
	return f.payments.RemoveEntry(list, index)
}

func (f *BookingForm) UpdatePayment(list PaymentList, index int, field string, value any) error {
	return f.payments.UpdateEntry(list, index, field, value)
}

// Validate returns the combined field errors of inputs and payments, or nil.
func (f *BookingForm) Validate() error {
	var fe FieldErrors
	if err := f.inputs.Validate(); err != nil {
		inner, _ := AsFieldErrors(err)
		fe = append(fe, inner...)
	}
	if err := f.payments.Validate(); err != nil {
		inner, _ := AsFieldErrors(err)
		fe = append(fe, inner...)
	}
	return fe.errOrNil()
}

// Payload builds the submission. It refuses while Validate reports problems.
func (f *BookingForm) Payload() (*BookingFinancePayload, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return BuildFinancePayload(f.inputs, f.payments)
}
