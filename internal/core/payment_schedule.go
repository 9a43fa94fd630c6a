package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentList names one of the two editable payment lists of a booking.
type PaymentList string

const (
	ListReceived PaymentList = "received"
	ListPending  PaymentList = "pending"
)

// ParsePaymentList accepts "received" or "pending" (and the "next" alias used by the sales team).
func ParsePaymentList(s string) (PaymentList, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "received":
		return ListReceived, nil
	case "pending", "next":
		return ListPending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentList, s)
}

// DefaultEntry returns the blank entry a list starts new rows with:
// received payments default to paid/cash, pending ones to unpaid/cheque.
func DefaultEntry(list PaymentList) PaymentEntry {
	if list == ListPending {
		return PaymentEntry{Amount: decimal.Zero, Status: PaymentStatusUnpaid, Mode: PaymentModeCheque}
	}
	return PaymentEntry{Amount: decimal.Zero, Status: PaymentStatusPaid, Mode: PaymentModeCash}
}

// PaymentLists holds the received and pending payments of a booking while
// they are being edited. They are merged into a schedule only at submission.
// Not safe for concurrent use; callers serialise edits.
type PaymentLists struct {
	Received []PaymentEntry `json:"received"`
	Pending  []PaymentEntry `json:"pending"`
}

// NewPaymentLists returns lists holding one default entry each.
func NewPaymentLists() PaymentLists {
	return PaymentLists{
		Received: []PaymentEntry{DefaultEntry(ListReceived)},
		Pending:  []PaymentEntry{DefaultEntry(ListPending)},
	}
}

func (l *PaymentLists) list(list PaymentList) (*[]PaymentEntry, error) {
	switch list {
	case ListReceived:
		return &l.Received, nil
	case ListPending:
		return &l.Pending, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentList, list)
}

// AddEntry appends a default entry to list and returns it.
func (l *PaymentLists) AddEntry(list PaymentList) (PaymentEntry, error) {
	entries, err := l.list(list)
	if err != nil {
		return PaymentEntry{}, err
	}
	e := DefaultEntry(list)
	*entries = append(*entries, e)
	return e, nil
}

// RemoveEntry deletes the entry at index. The pending list may become empty;
// the received list always keeps its last entry.
func (l *PaymentLists) RemoveEntry(list PaymentList, index int) error {
	entries, err := l.list(list)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*entries) {
		return fmt.Errorf("%w: %s[%d]", ErrEntryIndexOutOfRange, list, index)
	}
	if list == ListReceived && len(*entries) == 1 {
		return ErrLastReceivedEntry
	}
	*entries = slices.Delete(*entries, index, index+1)
	return nil
}

// UpdateEntry sets one field of the entry at index.
//
// Amounts are coerced (invalid becomes zero) and dates normalised to YYYY-MM-DD.
// Changing mode drops the number that belonged to the previous mode. Unknown
// fields, bad enum values and a cheque/transaction number that does not match
// the entry's mode are returned as errors.
func (l *PaymentLists) UpdateEntry(list PaymentList, index int, field string, value any) error {
	entries, err := l.list(list)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*entries) {
		return fmt.Errorf("%w: %s[%d]", ErrEntryIndexOutOfRange, list, index)
	}
	e := &(*entries)[index]

	switch field {
	case EntryFieldAmount:
		e.Amount = ParseAmount(value)

	case EntryFieldDate:
		date, err := NormalizeDate(value)
		if err != nil {
			return err
		}
		e.Date = date

	case EntryFieldStatus:
		status, err := ParsePaymentStatus(stringValue(value))
		if err != nil {
			return err
		}
		e.Status = status

	case EntryFieldMode:
		mode, err := ParsePaymentMode(stringValue(value))
		if err != nil {
			return err
		}
		if mode != PaymentModeCheque {
			e.ChequeNumber = ""
		}
		if mode != PaymentModeOnline {
			e.TransactionNo = ""
		}
		e.Mode = mode

	case EntryFieldChequeNumber:
		if e.Mode != PaymentModeCheque {
			return fmt.Errorf("%w: %s on %s payment", ErrFieldNotApplicable, field, e.Mode)
		}
		e.ChequeNumber = strings.TrimSpace(stringValue(value))

	case EntryFieldTransactionNo:
		if e.Mode != PaymentModeOnline {
			return fmt.Errorf("%w: %s on %s payment", ErrFieldNotApplicable, field, e.Mode)
		}
		e.TransactionNo = strings.TrimSpace(stringValue(value))

	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Schedule merges both lists into the submitted payment schedule.
func (l PaymentLists) Schedule() ([]PersistedPayment, error) {
	return ToPaymentSchedule(l.Received, l.Pending)
}

// Validate reports an empty received list and missing dates, instrument
// numbers or unstorable amounts on either list.
func (l PaymentLists) Validate() error {
	var fe FieldErrors
	if len(l.Received) == 0 {
		fe.add(string(ListReceived), "must have at least one entry")
	}
	fe = append(fe, ValidateEntries(ListReceived, l.Received)...)
	fe = append(fe, ValidateEntries(ListPending, l.Pending)...)
	return fe.errOrNil()
}

// ToPaymentSchedule concatenates received then pending entries, mapping each
// to its persisted variant. An entry with an out-of-enum mode or status is rejected.
func ToPaymentSchedule(received, pending []PaymentEntry) ([]PersistedPayment, error) {
	out := make([]PersistedPayment, 0, len(received)+len(pending))
	for _, group := range []struct {
		list    PaymentList
		entries []PaymentEntry
	}{{ListReceived, received}, {ListPending, pending}} {
		for i, e := range group.entries {
			p, err := toPersisted(e)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", group.list, i, err)
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func toPersisted(e PaymentEntry) (PersistedPayment, error) {
	mode, err := ParsePaymentMode(string(e.Mode))
	if err != nil {
		return PersistedPayment{}, err
	}
	status, err := ParsePaymentStatus(string(e.Status))
	if err != nil {
		return PersistedPayment{}, err
	}
	p := PersistedPayment{
		Amount:     e.Amount,
		Status:     status,
		Instrument: instrumentFor(mode, e.ChequeNumber, e.TransactionNo),
	}
	if e.Date != "" {
		date := e.Date
		p.Date = &date
	}
	return p, nil
}

// TotalReceived sums the amounts of paid entries. It is recomputed from the
// whole schedule on every call.
func TotalReceived(schedule []PersistedPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range schedule {
		if p.Status == PaymentStatusPaid {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// ValidateEntries returns the field-level problems of one list. Field names
// are indexed, e.g. "received[0].date".
func ValidateEntries(list PaymentList, entries []PaymentEntry) FieldErrors {
	var fe FieldErrors
	for i, e := range entries {
		prefix := fmt.Sprintf("%s[%d].", list, i)
		if msg := amountProblem(e.Amount); msg != "" {
			fe.add(prefix+EntryFieldAmount, "%s", msg)
		}
		if e.Date == "" {
			fe.add(prefix+EntryFieldDate, "is required")
		}
		switch e.Mode {
		case PaymentModeCheque:
			if e.ChequeNumber == "" {
				fe.add(prefix+EntryFieldChequeNumber, "is required for cheque payments")
			}
		case PaymentModeOnline:
			if e.TransactionNo == "" {
				fe.add(prefix+EntryFieldTransactionNo, "is required for online payments")
			}
		}
	}
	return fe
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
}

// NormalizeDate converts a date given as time.Time, *time.Time or string into
// YYYY-MM-DD. nil, a zero time and a blank string mean "not set" and yield "".
func NormalizeDate(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case time.Time:
		if t.IsZero() {
			return "", nil
		}
		return t.Format("2006-01-02"), nil
	case *time.Time:
		if t == nil || t.IsZero() {
			return "", nil
		}
		return t.Format("2006-01-02"), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") {
			return "", nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.Format("2006-01-02"), nil
			}
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, t)
	}
	return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, v)
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case PaymentMode:
		return string(t)
	case PaymentStatus:
		return string(t)
	case fmt.Stringer:
		return t.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
