package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownField         = errors.New("unknown field")
	ErrInvalidPaymentMode   = errors.New("invalid payment mode")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidPaymentList   = errors.New("invalid payment list")
	ErrInvalidDate          = errors.New("invalid date")
	ErrEntryIndexOutOfRange = errors.New("payment entry index out of range")
	ErrLastReceivedEntry    = errors.New("received payments must keep at least one entry")
	ErrFieldNotApplicable   = errors.New("field does not apply to the entry's payment mode")
)

type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// ParsePaymentStatus accepts the enum values case-insensitively.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentStatusPaid:
		return PaymentStatusPaid, nil
	case PaymentStatusUnpaid:
		return PaymentStatusUnpaid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, s)
}

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeCheque PaymentMode = "cheque"
	PaymentModeOnline PaymentMode = "online"
)

// ParsePaymentMode accepts the enum values case-insensitively.
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentModeCash:
		return PaymentModeCash, nil
	case PaymentModeCheque:
		return PaymentModeCheque, nil
	case PaymentModeOnline:
		return PaymentModeOnline, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMode, s)
}

// Payment entry field names accepted by UpdateEntry.
const (
	EntryFieldAmount        = "amount"
	EntryFieldDate          = "date"
	EntryFieldStatus        = "status"
	EntryFieldMode          = "mode"
	EntryFieldChequeNumber  = "chequeNumber"
	EntryFieldTransactionNo = "transactionNo"
)

// PaymentEntry is the editable form-side shape of a payment. Date is either
// empty (not yet set) or YYYY-MM-DD. Only the number matching Mode is kept.
type PaymentEntry struct {
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Status        PaymentStatus   `json:"status"`
	Mode          PaymentMode     `json:"mode"`
	ChequeNumber  string          `json:"chequeNumber,omitempty"`
	TransactionNo string          `json:"transactionNo,omitempty"`
}

// PaymentInstrument is the mode-specific part of a persisted payment.
// Exactly one implementation exists per PaymentMode.
type PaymentInstrument interface {
	Mode() PaymentMode
}

type CashInstrument struct{}

type ChequeInstrument struct {
	ChequeNumber string
}

type OnlineInstrument struct {
	TransactionNo string
}

func (CashInstrument) Mode() PaymentMode   { return PaymentModeCash }
func (ChequeInstrument) Mode() PaymentMode { return PaymentModeCheque }
func (OnlineInstrument) Mode() PaymentMode { return PaymentModeOnline }

// PersistedPayment is one element of paymentDetails as submitted to the backend.
// Date is nil until set.
type PersistedPayment struct {
	Amount     decimal.Decimal
	Date       *string
	Status     PaymentStatus
	Instrument PaymentInstrument
}

// Mode returns the payment mode selected by the instrument variant.
func (p PersistedPayment) Mode() PaymentMode {
	if p.Instrument == nil {
		return PaymentModeCash
	}
	return p.Instrument.Mode()
}

type persistedPaymentJSON struct {
	Amount        decimal.Decimal `json:"amount"`
	Date          *string         `json:"date"`
	Status        PaymentStatus   `json:"status"`
	Mode          PaymentMode     `json:"mode"`
	ChequeNumber  *string         `json:"chequeNumber,omitempty"`
	TransactionNo *string         `json:"transactionNo,omitempty"`
}

// MarshalJSON writes the flat wire shape; the key for the unused mode is absent.
func (p PersistedPayment) MarshalJSON() ([]byte, error) {
	out := persistedPaymentJSON{
		Amount: p.Amount,
		Date:   p.Date,
		Status: p.Status,
		Mode:   p.Mode(),
	}
	switch inst := p.Instrument.(type) {
	case ChequeInstrument:
		out.ChequeNumber = &inst.ChequeNumber
	case OnlineInstrument:
		out.TransactionNo = &inst.TransactionNo
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat wire shape back into the variant for its mode.
func (p *PersistedPayment) UnmarshalJSON(data []byte) error {
	var in persistedPaymentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	mode, err := ParsePaymentMode(string(in.Mode))
	if err != nil {
		return err
	}
	status, err := ParsePaymentStatus(string(in.Status))
	if err != nil {
		return err
	}
	*p = PersistedPayment{Amount: ParseAmount(in.Amount), Date: in.Date, Status: status}
	p.Instrument = instrumentFor(mode, deref(in.ChequeNumber), deref(in.TransactionNo))
	return nil
}

// ToEntry converts back to the editable form-side shape.
func (p PersistedPayment) ToEntry() PaymentEntry {
	e := PaymentEntry{Amount: p.Amount, Status: p.Status, Mode: p.Mode()}
	if p.Date != nil {
		e.Date = *p.Date
	}
	switch inst := p.Instrument.(type) {
	case ChequeInstrument:
		e.ChequeNumber = inst.ChequeNumber
	case OnlineInstrument:
		e.TransactionNo = inst.TransactionNo
	}
	return e
}

func instrumentFor(mode PaymentMode, chequeNumber, transactionNo string) PaymentInstrument {
	switch mode {
	case PaymentModeCheque:
		return ChequeInstrument{ChequeNumber: chequeNumber}
	case PaymentModeOnline:
		return OnlineInstrument{TransactionNo: transactionNo}
	}
	return CashInstrument{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// UnmarshalJSON decodes an entry leniently for amounts (invalid becomes zero)
// and dates (any NormalizeDate layout), but strictly for status and mode.
func (e *PaymentEntry) UnmarshalJSON(data []byte) error {
	var in struct {
		Amount        any    `json:"amount"`
		Date          any    `json:"date"`
		Status        string `json:"status"`
		Mode          string `json:"mode"`
		ChequeNumber  string `json:"chequeNumber"`
		TransactionNo string `json:"transactionNo"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return err
	}
	status, err := ParsePaymentStatus(in.Status)
	if err != nil {
		return err
	}
	mode, err := ParsePaymentMode(in.Mode)
	if err != nil {
		return err
	}
	date, err := NormalizeDate(in.Date)
	if err != nil {
		return err
	}
	*e = PaymentEntry{
		Amount: ParseAmount(in.Amount),
		Date:   date,
		Status: status,
		Mode:   mode,
	}
	switch mode {
	case PaymentModeCheque:
		e.ChequeNumber = strings.TrimSpace(in.ChequeNumber)
	case PaymentModeOnline:
		e.TransactionNo = strings.TrimSpace(in.TransactionNo)
	}
	return nil
}
