package core_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"booking-finance/internal/core"
)

func TestBookingForm_RecalculatesOnEverySet(t *testing.T) {
	f := core.NewBookingForm()
	if !f.Derived().TotalSalePrice.IsZero() {
		t.Fatalf("fresh form should derive zero TSP, got %s", f.Derived().TotalSalePrice)
	}

	steps := []struct {
		field string
		value any
		tsp   string
		net   string
	}{
		{core.FieldBSP, "100000", "100000", "0"},
		{core.FieldBSPGSTPercentage, 10, "110000", "0"},
		{core.FieldOtherCharges, "5000", "115000", "0"},
		{core.FieldOtherGSTPercentage, "18", "115900", "0"},
		{core.FieldPLC, 2000.0, "117900", "0"},
		{core.FieldPLCGSTPercentage, "bad input", "117900", "0"},
		{core.FieldGrossRevenue, "500000", "117900", "500000"},
		{core.FieldCPRevenue, "50000", "117900", "450000"},
		{core.FieldDiscount, "20000", "117900", "430000"},
	}
	for _, s := range steps {
		if err := f.SetInput(s.field, s.value); err != nil {
			t.Fatalf("SetInput(%s): %v", s.field, err)
		}
		got := f.Derived()
		if !got.TotalSalePrice.Equal(d(s.tsp)) {
			t.Errorf("after %s: expected TSP %s, got %s", s.field, s.tsp, got.TotalSalePrice)
		}
		if !got.NetRevenue.Equal(d(s.net)) {
			t.Errorf("after %s: expected net revenue %s, got %s", s.field, s.net, got.NetRevenue)
		}
	}
}

func TestBookingForm_RejectsUnknownInput(t *testing.T) {
	f := core.NewBookingForm()
	if err := f.SetInput("netRevenue", "1"); !errors.Is(err, core.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestBookingForm_PayloadBlockedByFieldErrors(t *testing.T) {
	f := core.NewBookingForm()
	_ = f.SetInput(core.FieldBSP, "-10")

	_, err := f.Payload()
	fe, ok := core.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	want := map[string]bool{
		core.FieldBSP:             true,
		"received[0].date":        true,
		"pending[0].date":         true,
		"pending[0].chequeNumber": true,
	}
	for _, e := range fe {
		if !want[e.Field] {
			t.Errorf("unexpected field error %s: %s", e.Field, e.Message)
		}
		delete(want, e.Field)
	}
	for field := range want {
		t.Errorf("missing field error for %s", field)
	}
}

func TestBookingForm_PayloadKeysAndTotals(t *testing.T) {
	f := core.NewBookingForm()
	f.LoadInputs(core.DealFinancialsInputs{
		BaseSalePrice: d("100000"), BaseSaleGSTPct: d("10"),
		GrossRevenue: d("500000"), PartnerRevenue: d("50000"), Discount: d("20000"),
	})
	mustForm(t, f.UpdatePayment(core.ListReceived, 0, core.EntryFieldAmount, "25000"))
	mustForm(t, f.UpdatePayment(core.ListReceived, 0, core.EntryFieldDate, "2026-04-05"))
	mustForm(t, f.RemovePayment(core.ListPending, 0))

	p, err := f.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if !p.TSP.Equal(d("110000")) || !p.NetRevenue.Equal(d("430000")) || !p.TotalReceived.Equal(d("25000")) {
		t.Errorf("unexpected figures: TSP %s net %s received %s", p.TSP, p.NetRevenue, p.TotalReceived)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatal(err)
	}
	keys := []string{
		"BSP", "GST", "GSTPercentage", "OtherCharges", "OtherGST", "OtherGSTPercentage",
		"PLC", "PLCGST", "PLCGSTPercentage", "TSP", "totalReceived",
		"GrossRevenue", "CPRevenue", "Discount", "netRevenue", "paymentDetails",
	}
	for _, k := range keys {
		if _, ok := wire[k]; !ok {
			t.Errorf("payload missing key %s", k)
		}
	}
	if len(wire) != len(keys) {
		t.Errorf("expected exactly %d keys, got %d: %s", len(keys), len(wire), raw)
	}

	var details []map[string]any
	if err := json.Unmarshal(wire["paymentDetails"], &details); err != nil {
		t.Fatal(err)
	}
	if len(details) != 1 || details[0]["mode"] != "cash" || details[0]["date"] != "2026-04-05" {
		t.Errorf("unexpected paymentDetails: %s", wire["paymentDetails"])
	}
}

func TestBookingFinancePayload_SplitsBackIntoLists(t *testing.T) {
	in := core.DealFinancialsInputs{BaseSalePrice: d("1000"), BaseSaleGSTPct: d("5")}
	lists := core.PaymentLists{
		Received: []core.PaymentEntry{
			{Amount: d("100"), Date: "2026-04-01", Status: core.PaymentStatusPaid, Mode: core.PaymentModeOnline, TransactionNo: "T1"},
		},
		Pending: []core.PaymentEntry{
			{Amount: d("900"), Date: "2026-07-01", Status: core.PaymentStatusUnpaid, Mode: core.PaymentModeCheque, ChequeNumber: "C1"},
		},
	}
	p, err := core.BuildFinancePayload(in, lists)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Inputs(); !got.BaseSalePrice.Equal(in.BaseSalePrice) || !got.BaseSaleGSTPct.Equal(in.BaseSaleGSTPct) {
		t.Errorf("inputs did not round trip: %+v", got)
	}
	back := p.PaymentLists()
	if len(back.Received) != 1 || back.Received[0].TransactionNo != "T1" {
		t.Errorf("unexpected received: %+v", back.Received)
	}
	if len(back.Pending) != 1 || back.Pending[0].ChequeNumber != "C1" {
		t.Errorf("unexpected pending: %+v", back.Pending)
	}
}

func TestBookingFinancePayload_UnpaidScheduleKeepsReceivedEntry(t *testing.T) {
	lists := core.PaymentLists{
		Received: []core.PaymentEntry{
			{Amount: d("100"), Date: "2026-04-01", Status: core.PaymentStatusUnpaid, Mode: core.PaymentModeCash},
		},
		Pending: []core.PaymentEntry{
			{Amount: d("900"), Date: "2026-07-01", Status: core.PaymentStatusUnpaid, Mode: core.PaymentModeCheque, ChequeNumber: "C1"},
		},
	}
	p, err := core.BuildFinancePayload(core.DealFinancialsInputs{}, lists)
	if err != nil {
		t.Fatal(err)
	}
	back := p.PaymentLists()
	if len(back.Received) != 1 || !back.Received[0].Amount.Equal(d("100")) {
		t.Errorf("expected the first entry to stay in received, got %+v", back.Received)
	}
	if len(back.Pending) != 1 || back.Pending[0].ChequeNumber != "C1" {
		t.Errorf("unexpected pending: %+v", back.Pending)
	}
	if err := back.Validate(); err != nil {
		t.Errorf("split lists should resubmit cleanly, got %v", err)
	}
}

func TestBookingInput_Validate(t *testing.T) {
	valid := core.BookingInput{
		CustomerName: "Asha Verma",
		UnitNumber:   "T2-1104",
		BookingDate:  "2026-04-12",
		Payments: core.PaymentLists{
			Received: []core.PaymentEntry{{Amount: d("1"), Date: "2026-04-12", Status: core.PaymentStatusPaid, Mode: core.PaymentModeCash}},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	bad := valid
	bad.CustomerName = ""
	bad.BookingDate = "12/04/2026"
	fe, ok := core.AsFieldErrors(bad.Validate())
	if !ok || len(fe) != 2 || fe[0].Field != "customer_name" || fe[1].Field != "booking_date" {
		t.Errorf("unexpected errors: %v", fe)
	}
}

func TestFinancialYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2026-04-01", 2026},
		{"2026-03-31", 2025},
		{"2026-12-31", 2026},
		{"2027-01-01", 2026},
	}
	for _, tt := range tests {
		when, _ := time.Parse("2006-01-02", tt.date)
		if got := core.FinancialYear(when); got != tt.want {
			t.Errorf("FinancialYear(%s): expected %d, got %d", tt.date, tt.want, got)
		}
	}
}

func TestFormatBookingNumber(t *testing.T) {
	if got := core.FormatBookingNumber(core.BookingNumberPrefix, 2026, 42); got != "BK-2026-00042" {
		t.Errorf("unexpected booking number %s", got)
	}
}

func mustForm(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
