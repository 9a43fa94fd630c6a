package repl

import (
	"fmt"
	"strconv"
	"strings"

	"booking-finance/internal/app"
	"booking-finance/internal/core"
)

// session is the booking being entered at the prompt: the header fields plus
// the calculator form that owns inputs, derived figures and payment lists.
type session struct {
	customerName string
	projectName  string
	unitNumber   string
	bookingDate  string
	remarks      string
	form         *core.BookingForm
}

func newSession() *session {
	return &session{form: core.NewBookingForm()}
}

var inputAliases = map[string]string{
	"cp":       core.FieldCPRevenue,
	"gst":      core.FieldBSPGSTPercentage,
	"othergst": core.FieldOtherGSTPercentage,
	"plcgst":   core.FieldPLCGSTPercentage,
	"gross":    core.FieldGrossRevenue,
}

// inputField resolves a calculator input name case-insensitively.
func inputField(name string) (string, bool) {
	name = strings.ToLower(name)
	if f, ok := inputAliases[name]; ok {
		return f, true
	}
	for _, f := range core.InputFields {
		if strings.ToLower(f) == name {
			return f, true
		}
	}
	return "", false
}

var entryFields = map[string]string{
	"amount":        core.EntryFieldAmount,
	"date":          core.EntryFieldDate,
	"status":        core.EntryFieldStatus,
	"mode":          core.EntryFieldMode,
	"cheque":        core.EntryFieldChequeNumber,
	"chequenumber":  core.EntryFieldChequeNumber,
	"txn":           core.EntryFieldTransactionNo,
	"transactionno": core.EntryFieldTransactionNo,
}

// set assigns a header field or a calculator input.
func (s *session) set(field, value string) error {
	switch strings.ToLower(field) {
	case "customer":
		s.customerName = value
	case "project":
		s.projectName = value
	case "unit":
		s.unitNumber = value
	case "date":
		date, err := core.NormalizeDate(value)
		if err != nil {
			return err
		}
		s.bookingDate = date
	case "remarks":
		s.remarks = value
	default:
		name, ok := inputField(field)
		if !ok {
			return fmt.Errorf("%w: %q", core.ErrUnknownField, field)
		}
		return s.form.SetInput(name, value)
	}
	return nil
}

// add appends a default entry to the named list and returns its 1-based position.
func (s *session) add(list string) (int, error) {
	l, err := core.ParsePaymentList(list)
	if err != nil {
		return 0, err
	}
	if _, err := s.form.AddPayment(l); err != nil {
		return 0, err
	}
	return len(s.entries(l)), nil
}

// remove deletes the entry at a 1-based position.
func (s *session) remove(list, pos string) error {
	l, idx, err := s.locate(list, pos)
	if err != nil {
		return err
	}
	return s.form.RemovePayment(l, idx)
}

// pay edits one field of the entry at a 1-based position.
func (s *session) pay(list, pos, field, value string) error {
	l, idx, err := s.locate(list, pos)
	if err != nil {
		return err
	}
	name, ok := entryFields[strings.ToLower(field)]
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrUnknownField, field)
	}
	return s.form.UpdatePayment(l, idx, name, value)
}

func (s *session) locate(list, pos string) (core.PaymentList, int, error) {
	l, err := core.ParsePaymentList(list)
	if err != nil {
		return "", 0, err
	}
	n, err := strconv.Atoi(pos)
	if err != nil {
		return "", 0, fmt.Errorf("invalid position %q", pos)
	}
	return l, n - 1, nil
}

func (s *session) entries(l core.PaymentList) []core.PaymentEntry {
	p := s.form.Payments()
	if l == core.ListPending {
		return p.Pending
	}
	return p.Received
}

// load replaces the session with an extracted draft.
func (s *session) load(d core.BookingInput) {
	s.customerName = d.CustomerName
	s.projectName = d.ProjectName
	s.unitNumber = d.UnitNumber
	s.bookingDate = d.BookingDate
	s.remarks = d.Remarks
	s.form.LoadInputs(d.Financials)
	s.form.LoadPayments(d.Payments)
}

// request builds the create request. Form-level validation runs first so the
// user sees field errors without a round trip.
func (s *session) request(companyCode string) (app.CreateBookingRequest, error) {
	if err := s.form.Validate(); err != nil {
		return app.CreateBookingRequest{}, err
	}
	return app.CreateBookingRequest{
		CompanyCode:  companyCode,
		CustomerName: s.customerName,
		ProjectName:  s.projectName,
		UnitNumber:   s.unitNumber,
		BookingDate:  s.bookingDate,
		Remarks:      s.remarks,
		Financials:   s.form.Inputs(),
		Payments:     s.form.Payments(),
	}, nil
}
