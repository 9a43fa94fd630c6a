package repl

import (
	"fmt"
	"strings"

	"booking-finance/internal/app"
	"booking-finance/internal/core"

	"github.com/shopspring/decimal"
)

func printTotals(d core.DealFinancialsDerived) {
	fmt.Printf("  TSP %s | Net revenue %s\n", d.TotalSalePrice.StringFixed(2), d.NetRevenue.StringFixed(2))
}

func printFinancials(in core.DealFinancialsInputs, d core.DealFinancialsDerived) {
	fmt.Println(strings.Repeat("-", 64))
	fmt.Printf("  %-16s %14s %7s %11s %12s\n", "LINE", "BASE", "GST %", "GST", "TOTAL")
	fmt.Println(strings.Repeat("-", 64))
	row := func(label string, base, pct, gst, total decimal.Decimal) {
		fmt.Printf("  %-16s %14s %7s %11s %12s\n",
			label, base.StringFixed(2), pct.String(), gst.StringFixed(2), total.StringFixed(2))
	}
	row("Base sale price", in.BaseSalePrice, in.BaseSaleGSTPct, d.BaseSaleGST, d.BaseSaleTotal)
	row("Other charges", in.OtherCharges, in.OtherChargesGSTPct, d.OtherChargesGST, d.OtherChargesTotal)
	row("PLC", in.LocationCharge, in.LocationChargeGSTPct, d.LocationChargeGST, d.LocationChargeTotal)
	fmt.Println(strings.Repeat("-", 64))
	fmt.Printf("  %-50s %12s\n", "TOTAL SALE PRICE", d.TotalSalePrice.StringFixed(2))
	fmt.Println()
	fmt.Printf("  %-50s %12s\n", "Gross revenue", in.GrossRevenue.StringFixed(2))
	fmt.Printf("  %-50s %12s\n", "Channel partner revenue", in.PartnerRevenue.StringFixed(2))
	fmt.Printf("  %-50s %12s\n", "Discount", in.Discount.StringFixed(2))
	fmt.Printf("  %-50s %12s\n", "NET REVENUE", d.NetRevenue.StringFixed(2))
}

func printPayments(l core.PaymentLists) {
	section := func(title string, entries []core.PaymentEntry) {
		fmt.Printf("  %s\n", title)
		if len(entries) == 0 {
			fmt.Println("    (none)")
			return
		}
		for i, e := range entries {
			ref := e.ChequeNumber
			if e.Mode == core.PaymentModeOnline {
				ref = e.TransactionNo
			}
			date := e.Date
			if date == "" {
				date = "-"
			}
			fmt.Printf("    %-3d %12s  %-10s %-7s %-7s %s\n",
				i+1, e.Amount.StringFixed(2), date, e.Status, e.Mode, ref)
		}
	}
	section("RECEIVED", l.Received)
	section("PENDING", l.Pending)
}

func printSession(s *session) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 64))
	fmt.Printf("  Customer: %s\n", orDash(s.customerName))
	fmt.Printf("  Project:  %s   Unit: %s\n", orDash(s.projectName), orDash(s.unitNumber))
	fmt.Printf("  Date:     %s\n", orDash(s.bookingDate))
	if s.remarks != "" {
		fmt.Printf("  Remarks:  %s\n", s.remarks)
	}
	fmt.Println(strings.Repeat("=", 64))
	printFinancials(s.form.Inputs(), s.form.Derived())
	fmt.Println(strings.Repeat("-", 64))
	printPayments(s.form.Payments())
	fmt.Println(strings.Repeat("=", 64))
}

func printDraft(r *app.DraftResult) {
	d := r.Draft
	fmt.Printf("\nCUSTOMER:   %s\n", d.CustomerName)
	fmt.Printf("UNIT:       %s %s\n", d.ProjectName, d.UnitNumber)
	fmt.Printf("DATE:       %s\n", orDash(d.BookingDate))
	fmt.Printf("REASONING:  %s\n", r.Reasoning)
	fmt.Printf("CONFIDENCE: %.2f\n", r.Confidence)
	printFinancials(d.Financials, r.Derived)
	printPayments(d.Payments)
}

func printBookings(result *app.BookingListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 86))
	fmt.Printf("  BOOKINGS - Company %s\n", result.CompanyCode)
	fmt.Println(strings.Repeat("=", 86))
	if len(result.Bookings) == 0 {
		fmt.Println("  No bookings found.")
		fmt.Println(strings.Repeat("=", 86))
		return
	}
	fmt.Printf("  %-5s %-14s %-20s %-8s %-10s %12s %12s\n", "ID", "NUMBER", "CUSTOMER", "UNIT", "DATE", "TSP", "RECEIVED")
	fmt.Println(strings.Repeat("-", 86))
	for _, b := range result.Bookings {
		customer := b.CustomerName
		if len(customer) > 20 {
			customer = customer[:17] + "..."
		}
		fmt.Printf("  %-5d %-14s %-20s %-8s %-10s %12s %12s\n",
			b.ID, b.BookingNumber, customer, b.UnitNumber, b.BookingDate,
			b.Finance.TSP.StringFixed(2), b.Finance.TotalReceived.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 86))
}

func printBookingDetail(b *core.Booking) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 64))
	fmt.Printf("  Booking:  %s (ID: %d)\n", b.BookingNumber, b.ID)
	fmt.Printf("  Customer: %s\n", b.CustomerName)
	fmt.Printf("  Project:  %s   Unit: %s\n", orDash(b.ProjectName), b.UnitNumber)
	fmt.Printf("  Date:     %s\n", b.BookingDate)
	fmt.Println(strings.Repeat("=", 64))
	printFinancials(b.Finance.Inputs(), core.Recompute(b.Finance.Inputs()))
	fmt.Println(strings.Repeat("-", 64))
	fmt.Printf("  %-12s %-10s %-7s %-7s %s\n", "AMOUNT", "DATE", "STATUS", "MODE", "REF")
	for _, p := range b.Finance.PaymentDetails {
		e := p.ToEntry()
		ref := e.ChequeNumber
		if e.Mode == core.PaymentModeOnline {
			ref = e.TransactionNo
		}
		fmt.Printf("  %12s %-10s %-7s %-7s %s\n", e.Amount.StringFixed(2), orDash(e.Date), e.Status, e.Mode, ref)
	}
	fmt.Printf("  %-50s %12s\n", "TOTAL RECEIVED", b.Finance.TotalReceived.StringFixed(2))
	fmt.Println(strings.Repeat("=", 64))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printHelp() {
	fmt.Println()
	fmt.Println("BOOKING FINANCE - COMMANDS")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println()
	fmt.Println("  FORM")
	fmt.Println("  /new                                   Start a new booking (prompts for header)")
	fmt.Println("  /set <field> <value>                   customer, project, unit, date, remarks")
	fmt.Println("                                         or BSP, GST, OtherCharges, OtherGST, PLC,")
	fmt.Println("                                         PLCGST, Gross, CP, Discount")
	fmt.Println("  /show                                  Show the form with derived totals")
	fmt.Println("  /submit                                Validate and save the booking")
	fmt.Println()
	fmt.Println("  PAYMENTS")
	fmt.Println("  /add <received|pending>                Add a payment row")
	fmt.Println("  /rm  <received|pending> <n>            Remove row n")
	fmt.Println("  /pay <received|pending> <n> <f> <v>    Edit a row: amount, date, status, mode, cheque, txn")
	fmt.Println()
	fmt.Println("  BOOKINGS")
	fmt.Println("  /bookings                              List saved bookings")
	fmt.Println("  /booking <id|number>                   Show one booking")
	fmt.Println()
	fmt.Println("  SESSION")
	fmt.Println("  /help                                  Show this help")
	fmt.Println("  /exit                                  Exit")
	fmt.Println()
	fmt.Println("  AGENT MODE  (no / prefix)")
	fmt.Println("  Paste a deal note to draft the form.")
	fmt.Println("  Example: \"Ravi Kumar booked A-1203, BSP 75 lakh + 5% GST, 5L paid by cheque 004512\"")
	fmt.Println(strings.Repeat("=", 70))
}
