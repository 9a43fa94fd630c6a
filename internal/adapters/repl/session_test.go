package repl

import (
	"errors"
	"testing"

	"booking-finance/internal/core"

	"github.com/shopspring/decimal"
)

func TestSession_SetRecalculates(t *testing.T) {
	s := newSession()
	for _, kv := range [][2]string{
		{"bsp", "75,00,000"},
		{"GST", "5"},
		{"plc", "200000"},
		{"PLCGST", "18"},
		{"gross", "7500000"},
		{"cp", "150000"},
		{"discount", "25000"},
	} {
		if err := s.set(kv[0], kv[1]); err != nil {
			t.Fatalf("set %s: %v", kv[0], err)
		}
	}

	d := s.form.Derived()
	if want := decimal.RequireFromString("8111000"); !d.TotalSalePrice.Equal(want) {
		t.Errorf("TSP = %s, want %s", d.TotalSalePrice, want)
	}
	if want := decimal.RequireFromString("7325000"); !d.NetRevenue.Equal(want) {
		t.Errorf("net revenue = %s, want %s", d.NetRevenue, want)
	}
}

func TestSession_SetHeaderFields(t *testing.T) {
	s := newSession()
	if err := s.set("customer", "Ravi Kumar"); err != nil {
		t.Fatal(err)
	}
	if err := s.set("date", "05/04/2026"); err != nil {
		t.Fatal(err)
	}
	if s.customerName != "Ravi Kumar" {
		t.Errorf("customer = %q", s.customerName)
	}
	if s.bookingDate != "2026-04-05" {
		t.Errorf("date = %q, want 2026-04-05", s.bookingDate)
	}

	if err := s.set("date", "next week"); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("bad date: got %v, want ErrInvalidDate", err)
	}
	if err := s.set("colour", "blue"); !errors.Is(err, core.ErrUnknownField) {
		t.Errorf("unknown field: got %v, want ErrUnknownField", err)
	}
}

func TestSession_PaymentCommands(t *testing.T) {
	s := newSession()

	pos, err := s.add("received")
	if err != nil {
		t.Fatal(err)
	}
	if pos != 2 {
		t.Fatalf("add returned position %d, want 2", pos)
	}

	if err := s.pay("received", "2", "mode", "online"); err != nil {
		t.Fatal(err)
	}
	if err := s.pay("received", "2", "txn", "UTR123"); err != nil {
		t.Fatal(err)
	}
	if err := s.pay("received", "2", "amount", "50000"); err != nil {
		t.Fatal(err)
	}
	if err := s.pay("received", "2", "cheque", "0001"); !errors.Is(err, core.ErrFieldNotApplicable) {
		t.Errorf("cheque on online payment: got %v, want ErrFieldNotApplicable", err)
	}

	got := s.form.Payments().Received[1]
	if got.TransactionNo != "UTR123" || !got.Amount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("received[1] = %+v", got)
	}

	if err := s.remove("received", "1"); err != nil {
		t.Fatal(err)
	}
	if err := s.remove("received", "1"); !errors.Is(err, core.ErrLastReceivedEntry) {
		t.Errorf("removing last received entry: got %v, want ErrLastReceivedEntry", err)
	}
	if err := s.remove("next", "1"); err != nil {
		t.Errorf("pending alias: %v", err)
	}
	if err := s.remove("pending", "x"); err == nil {
		t.Error("expected error for non-numeric position")
	}
	if err := s.remove("pending", "1"); !errors.Is(err, core.ErrEntryIndexOutOfRange) {
		t.Errorf("empty pending list: got %v, want ErrEntryIndexOutOfRange", err)
	}
}

func TestSession_RequestBlockedByFieldErrors(t *testing.T) {
	s := newSession()
	if err := s.set("bsp", "-100"); err != nil {
		t.Fatal(err)
	}
	_, err := s.request("1000")
	fe, ok := core.AsFieldErrors(err)
	if !ok || len(fe) == 0 {
		t.Fatalf("expected field errors, got %v", err)
	}
	if fe[0].Field != core.FieldBSP {
		t.Errorf("first field error on %q, want %q", fe[0].Field, core.FieldBSP)
	}
}

func TestSession_LoadDraft(t *testing.T) {
	s := newSession()
	in := core.BookingInput{
		CustomerName: "Asha Rao",
		UnitNumber:   "B-402",
		BookingDate:  "2026-06-01",
		Payments:     core.NewPaymentLists(),
	}
	in.Financials.BaseSalePrice = decimal.NewFromInt(1000000)
	in.Financials.BaseSaleGSTPct = decimal.NewFromInt(5)
	s.load(in)

	if s.customerName != "Asha Rao" || s.unitNumber != "B-402" {
		t.Errorf("header not loaded: %+v", s)
	}
	if want := decimal.NewFromInt(1050000); !s.form.Derived().TotalSalePrice.Equal(want) {
		t.Errorf("TSP = %s, want %s", s.form.Derived().TotalSalePrice, want)
	}

	req, err := s.request("1000")
	if err != nil {
		t.Fatal(err)
	}
	if req.CompanyCode != "1000" || req.CustomerName != "Asha Rao" {
		t.Errorf("request = %+v", req)
	}
}
