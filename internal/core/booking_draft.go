package core

import (
	"errors"
	"fmt"
	"strings"
)

// DraftPayment is one instalment as read out of free text. Reference carries
// the cheque number or the transaction id depending on Mode.
type DraftPayment struct {
	Amount    string `json:"amount" jsonschema_description:"Amount in rupees as a plain decimal string without separators, e.g. '250000.00'"`
	Date      string `json:"date" jsonschema_description:"Payment date in YYYY-MM-DD format, or an empty string if not stated"`
	Status    string `json:"status" jsonschema:"enum=paid,enum=unpaid" jsonschema_description:"'paid' if the money has already been received, 'unpaid' for a future instalment"`
	Mode      string `json:"mode" jsonschema:"enum=cash,enum=cheque,enum=online" jsonschema_description:"How the instalment is or will be paid"`
	Reference string `json:"reference" jsonschema_description:"Cheque number for cheque payments, transaction/UTR number for online payments, empty for cash"`
}

// BookingDraft is the AI-extracted booking. Amounts stay strings until
// ToBookingInput coerces them.
type BookingDraft struct {
	CustomerName       string         `json:"customer_name" jsonschema_description:"Full name of the buyer"`
	ProjectName        string         `json:"project_name" jsonschema_description:"Name of the project or tower, empty if not stated"`
	UnitNumber         string         `json:"unit_number" jsonschema_description:"Unit or flat number, e.g. 'T2-1104'"`
	BookingDate        string         `json:"booking_date" jsonschema_description:"Booking date in YYYY-MM-DD format. Use today's date if unspecified."`
	BSP                string         `json:"BSP" jsonschema_description:"Base sale price before GST"`
	GSTPercentage      string         `json:"GSTPercentage" jsonschema_description:"GST rate on the base sale price, in percent (e.g. '5')"`
	OtherCharges       string         `json:"OtherCharges" jsonschema_description:"Other charges (parking, club, maintenance) before GST, '0' if none"`
	OtherGSTPercentage string         `json:"OtherGSTPercentage" jsonschema_description:"GST rate on other charges, in percent"`
	PLC                string         `json:"PLC" jsonschema_description:"Preferential location charge before GST, '0' if none"`
	PLCGSTPercentage   string         `json:"PLCGSTPercentage" jsonschema_description:"GST rate on the preferential location charge, in percent"`
	GrossRevenue       string         `json:"GrossRevenue" jsonschema_description:"Gross revenue the company books on this deal"`
	CPRevenue          string         `json:"CPRevenue" jsonschema_description:"Amount shared with the channel partner, '0' for direct sales"`
	Discount           string         `json:"Discount" jsonschema_description:"Discount given to the customer, '0' if none"`
	Payments           []DraftPayment `json:"payments" jsonschema_description:"All received and upcoming instalments in the order mentioned"`
	Confidence         float64        `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning          string         `json:"reasoning" jsonschema_description:"Short explanation of how the figures were read"`
}

// DraftClarification is returned when the text is too vague to draft a booking.
type DraftClarification struct {
	Message string `json:"message" jsonschema_description:"A question asking the user for the missing details (e.g. 'What is the base sale price and the GST rate?')"`
}

// DraftResponse wraps the AI output: exactly one of Clarification or Draft is set.
type DraftResponse struct {
	IsClarificationRequest bool                `json:"is_clarification_request" jsonschema_description:"Set to true ONLY if the text lacks the buyer, the unit or the base sale price."`
	Clarification          *DraftClarification `json:"clarification,omitempty" jsonschema_description:"Required if is_clarification_request is true."`
	Draft                  *BookingDraft       `json:"draft,omitempty" jsonschema_description:"Required if is_clarification_request is false."`
}

// Normalize cleans up LLM output: trims strings, folds enum case and maps
// blank or "null" placeholders to empty.
func (d *BookingDraft) Normalize() {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
			return ""
		}
		return s
	}
	d.CustomerName = clean(d.CustomerName)
	d.ProjectName = clean(d.ProjectName)
	d.UnitNumber = clean(d.UnitNumber)
	d.BookingDate = clean(d.BookingDate)
	for i := range d.Payments {
		p := &d.Payments[i]
		p.Amount = clean(p.Amount)
		p.Date = clean(p.Date)
		p.Status = strings.ToLower(clean(p.Status))
		p.Mode = strings.ToLower(clean(p.Mode))
		p.Reference = clean(p.Reference)
	}
	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 1 {
		d.Confidence = 1
	}
}

// Validate checks only what a draft cannot be shown without. Completeness is
// left to BookingInput.Validate at submission.
func (d *BookingDraft) Validate() error {
	if d.CustomerName == "" {
		return errors.New("draft must name the customer")
	}
	if d.UnitNumber == "" {
		return errors.New("draft must name the unit")
	}
	for i, p := range d.Payments {
		if _, err := ParsePaymentStatus(p.Status); err != nil {
			return fmt.Errorf("payment %d: %w", i+1, err)
		}
		if _, err := ParsePaymentMode(p.Mode); err != nil {
			return fmt.Errorf("payment %d: %w", i+1, err)
		}
	}
	return nil
}

// ToBookingInput converts the draft into an editable booking. Paid instalments
// go to the received list, the rest to pending; the received list gets a
// default entry when the draft has none.
func (d *BookingDraft) ToBookingInput() (BookingInput, error) {
	in := BookingInput{
		CustomerName: d.CustomerName,
		ProjectName:  d.ProjectName,
		UnitNumber:   d.UnitNumber,
		Financials: DealFinancialsInputs{
			BaseSalePrice:        ParseAmount(d.BSP),
			BaseSaleGSTPct:       ParseAmount(d.GSTPercentage),
			OtherCharges:         ParseAmount(d.OtherCharges),
			OtherChargesGSTPct:   ParseAmount(d.OtherGSTPercentage),
			LocationCharge:       ParseAmount(d.PLC),
			LocationChargeGSTPct: ParseAmount(d.PLCGSTPercentage),
			GrossRevenue:         ParseAmount(d.GrossRevenue),
			PartnerRevenue:       ParseAmount(d.CPRevenue),
			Discount:             ParseAmount(d.Discount),
		},
		Payments: PaymentLists{Received: []PaymentEntry{}, Pending: []PaymentEntry{}},
	}

	bookingDate, err := NormalizeDate(d.BookingDate)
	if err != nil {
		return BookingInput{}, fmt.Errorf("booking date: %w", err)
	}
	in.BookingDate = bookingDate

	for i, p := range d.Payments {
		status, err := ParsePaymentStatus(p.Status)
		if err != nil {
			return BookingInput{}, fmt.Errorf("payment %d: %w", i+1, err)
		}
		list := ListPending
		if status == PaymentStatusPaid {
			list = ListReceived
		}
		if _, err := in.Payments.AddEntry(list); err != nil {
			return BookingInput{}, err
		}
		idx := len(in.Payments.Received) - 1
		if list == ListPending {
			idx = len(in.Payments.Pending) - 1
		}

		type update struct {
			field string
			value any
		}
		updates := []update{
			{EntryFieldAmount, p.Amount},
			{EntryFieldDate, p.Date},
			{EntryFieldStatus, p.Status},
			{EntryFieldMode, p.Mode},
		}
		mode, _ := ParsePaymentMode(p.Mode)
		switch mode {
		case PaymentModeCheque:
			updates = append(updates, update{EntryFieldChequeNumber, p.Reference})
		case PaymentModeOnline:
			updates = append(updates, update{EntryFieldTransactionNo, p.Reference})
		}
		for _, u := range updates {
			if err := in.Payments.UpdateEntry(list, idx, u.field, u.value); err != nil {
				return BookingInput{}, fmt.Errorf("payment %d: %w", i+1, err)
			}
		}
	}

	if len(in.Payments.Received) == 0 {
		in.Payments.Received = append(in.Payments.Received, DefaultEntry(ListReceived))
	}
	return in, nil
}
