package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"booking-finance/internal/adapters/xlsx"
	"booking-finance/internal/app"
	"booking-finance/internal/core"
)

// bookingJSON is the stdin shape accepted by the create command.
type bookingJSON struct {
	IdempotencyKey string                    `json:"idempotency_key"`
	CustomerName   string                    `json:"customer_name"`
	ProjectName    string                    `json:"project_name"`
	UnitNumber     string                    `json:"unit_number"`
	BookingDate    string                    `json:"booking_date"`
	Remarks        string                    `json:"remarks"`
	Financials     core.DealFinancialsInputs `json:"financials"`
	Payments       core.PaymentLists         `json:"payments"`
}

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "recompute", "calc":
		var in core.DealFinancialsInputs
		decodeStdin(&in)
		result, err := svc.RecomputeFinancials(ctx, in)
		if err != nil {
			fatalWithFields("Recompute failed", err)
		}
		printFinancials(os.Stdout, result.Inputs, result.Derived)
		return

	case "schedule", "sched":
		var lists core.PaymentLists
		decodeStdin(&lists)
		result, err := svc.BuildSchedule(ctx, lists)
		if err != nil {
			log.Fatalf("Schedule failed: %v", err)
		}
		printJSON(map[string]any{
			"paymentDetails": result.PaymentDetails,
			"totalReceived":  result.TotalReceived,
		})
		return
	}

	company, err := svc.LoadDefaultCompany(ctx)
	if err != nil {
		log.Fatalf("Failed to load company: %v", err)
	}

	switch args[0] {
	case "bookings", "ls":
		result, err := svc.ListBookings(ctx, company.CompanyCode)
		if err != nil {
			log.Fatalf("Failed to list bookings: %v", err)
		}
		printBookingList(os.Stdout, result)

	case "booking", "show":
		if len(args) < 2 {
			log.Fatal("Usage: app booking <id|booking-number>")
		}
		result, err := svc.GetBooking(ctx, args[1], company.CompanyCode)
		if err != nil {
			log.Fatalf("Failed to get booking: %v", err)
		}
		printJSON(result.Booking)

	case "export":
		if len(args) < 2 {
			log.Fatal("Usage: app export <file.xlsx>")
		}
		result, err := svc.ExportBookings(ctx, company.CompanyCode)
		if err != nil {
			log.Fatalf("Failed to load bookings: %v", err)
		}
		out, err := os.Create(args[1])
		if err != nil {
			log.Fatalf("Failed to create %s: %v", args[1], err)
		}
		if err := xlsx.WriteBookingRegister(out, result.Bookings); err != nil {
			out.Close()
			log.Fatalf("Export failed: %v", err)
		}
		if err := out.Close(); err != nil {
			log.Fatalf("Failed to close %s: %v", args[1], err)
		}
		fmt.Printf("Exported %d bookings to %s.\n", len(result.Bookings), args[1])

	case "create":
		var body bookingJSON
		decodeStdin(&body)
		result, err := svc.CreateBooking(ctx, app.CreateBookingRequest{
			CompanyCode:    company.CompanyCode,
			IdempotencyKey: body.IdempotencyKey,
			CustomerName:   body.CustomerName,
			ProjectName:    body.ProjectName,
			UnitNumber:     body.UnitNumber,
			BookingDate:    body.BookingDate,
			Remarks:        body.Remarks,
			Financials:     body.Financials,
			Payments:       body.Payments,
		})
		if err != nil {
			fatalWithFields("Create failed", err)
		}
		fmt.Printf("Booking %s created (id %d).\n", result.Booking.BookingNumber, result.Booking.ID)

	case "draft":
		if len(args) < 2 {
			log.Fatal("Usage: app draft \"<deal note>\"")
		}
		result, err := svc.DraftBooking(ctx, args[1], company.CompanyCode)
		if err != nil {
			log.Fatalf("Agent error: %v", err)
		}
		if result.IsClarification {
			fmt.Fprintln(os.Stderr, "AI needs clarification:", result.ClarificationMessage)
			os.Exit(1)
		}
		d := result.Draft
		printJSON(bookingJSON{
			CustomerName: d.CustomerName,
			ProjectName:  d.ProjectName,
			UnitNumber:   d.UnitNumber,
			BookingDate:  d.BookingDate,
			Remarks:      d.Remarks,
			Financials:   d.Financials,
			Payments:     d.Payments,
		})

	default:
		log.Fatalf("Unknown command: %s\nAvailable: recompute, schedule, bookings, booking, export, create, draft", args[0])
	}
}

func decodeStdin(v any) {
	if err := json.NewDecoder(os.Stdin).Decode(v); err != nil {
		log.Fatalf("Invalid JSON: %v", err)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fatalWithFields(prefix string, err error) {
	if fe, ok := core.AsFieldErrors(err); ok {
		fmt.Fprintf(os.Stderr, "%s:\n", prefix)
		for _, f := range fe {
			fmt.Fprintf(os.Stderr, "  - %s: %s\n", f.Field, f.Message)
		}
		os.Exit(1)
	}
	log.Fatalf("%s: %v", prefix, err)
}

func printFinancials(w io.Writer, in core.DealFinancialsInputs, d core.DealFinancialsDerived) {
	line := strings.Repeat("-", 62)
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "  %-16s %15s %8s %15s\n", "LINE", "BASE", "GST %", "TOTAL")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "  %-16s %15s %8s %15s\n", "Base sale price", in.BaseSalePrice.StringFixed(2), in.BaseSaleGSTPct.String(), d.BaseSaleTotal.StringFixed(2))
	fmt.Fprintf(w, "  %-16s %15s %8s %15s\n", "Other charges", in.OtherCharges.StringFixed(2), in.OtherChargesGSTPct.String(), d.OtherChargesTotal.StringFixed(2))
	fmt.Fprintf(w, "  %-16s %15s %8s %15s\n", "PLC", in.LocationCharge.StringFixed(2), in.LocationChargeGSTPct.String(), d.LocationChargeTotal.StringFixed(2))
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "  %-41s %15s\n", "TOTAL SALE PRICE", d.TotalSalePrice.StringFixed(2))
	fmt.Fprintf(w, "  %-41s %15s\n", "NET REVENUE", d.NetRevenue.StringFixed(2))
	fmt.Fprintln(w, line)
}

func printBookingList(w io.Writer, result *app.BookingListResult) {
	if len(result.Bookings) == 0 {
		fmt.Fprintf(w, "No bookings for company %s.\n", result.CompanyCode)
		return
	}
	fmt.Fprintf(w, "  %-15s %-10s %-22s %-10s %15s %15s\n", "NUMBER", "DATE", "CUSTOMER", "UNIT", "TSP", "RECEIVED")
	fmt.Fprintln(w, strings.Repeat("-", 94))
	for _, b := range result.Bookings {
		fmt.Fprintf(w, "  %-15s %-10s %-22s %-10s %15s %15s\n",
			b.BookingNumber, b.BookingDate, truncate(b.CustomerName, 22), truncate(b.UnitNumber, 10),
			b.Finance.TSP.StringFixed(2), b.Finance.TotalReceived.StringFixed(2))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
