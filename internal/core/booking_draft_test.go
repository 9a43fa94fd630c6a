package core_test

import (
	"testing"

	"booking-finance/internal/core"
)

func TestBookingDraft_ToBookingInput(t *testing.T) {
	draft := core.BookingDraft{
		CustomerName:     "Asha Verma",
		UnitNumber:       "T2-1104",
		BookingDate:      "12/04/2026",
		BSP:              "7,500,000",
		GSTPercentage:    "5",
		PLC:              "",
		PLCGSTPercentage: "18",
		GrossRevenue:     "600000",
		CPRevenue:        "60000",
		Payments: []core.DraftPayment{
			{Amount: "500000", Date: "2026-04-12", Status: "paid", Mode: "online", Reference: "UTR0001"},
			{Amount: "1000000", Date: "2026-06-30", Status: "unpaid", Mode: "cheque", Reference: "004512"},
			{Amount: "250000", Status: "unpaid", Mode: "cash", Reference: "ignored"},
		},
	}
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	in, err := draft.ToBookingInput()
	if err != nil {
		t.Fatalf("ToBookingInput: %v", err)
	}
	if in.BookingDate != "2026-04-12" {
		t.Errorf("expected normalised booking date, got %s", in.BookingDate)
	}
	if !in.Financials.BaseSalePrice.Equal(d("7500000")) || !in.Financials.LocationCharge.IsZero() {
		t.Errorf("unexpected financials: %+v", in.Financials)
	}
	if len(in.Payments.Received) != 1 || in.Payments.Received[0].TransactionNo != "UTR0001" {
		t.Errorf("unexpected received: %+v", in.Payments.Received)
	}
	if len(in.Payments.Pending) != 2 {
		t.Fatalf("expected 2 pending, got %+v", in.Payments.Pending)
	}
	if in.Payments.Pending[0].ChequeNumber != "004512" {
		t.Errorf("expected cheque 004512, got %+v", in.Payments.Pending[0])
	}
	if p := in.Payments.Pending[1]; p.Mode != core.PaymentModeCash || p.ChequeNumber != "" || p.TransactionNo != "" {
		t.Errorf("cash entry must carry no reference: %+v", p)
	}
}

func TestBookingDraft_NoReceivedPaymentsGetsDefault(t *testing.T) {
	draft := core.BookingDraft{CustomerName: "A", UnitNumber: "U1"}
	in, err := draft.ToBookingInput()
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Payments.Received) != 1 || in.Payments.Received[0].Mode != core.PaymentModeCash {
		t.Errorf("expected one default received entry, got %+v", in.Payments.Received)
	}
	if len(in.Payments.Pending) != 0 {
		t.Errorf("expected no pending entries, got %+v", in.Payments.Pending)
	}
}

func TestBookingDraft_Validate(t *testing.T) {
	tests := []struct {
		name  string
		draft core.BookingDraft
		ok    bool
	}{
		{"complete", core.BookingDraft{CustomerName: "A", UnitNumber: "U1"}, true},
		{"no customer", core.BookingDraft{UnitNumber: "U1"}, false},
		{"no unit", core.BookingDraft{CustomerName: "A"}, false},
		{"bad status", core.BookingDraft{CustomerName: "A", UnitNumber: "U1", Payments: []core.DraftPayment{{Status: "maybe", Mode: "cash"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("expected ok=%v, got %v", tt.ok, err)
			}
		})
	}
}
