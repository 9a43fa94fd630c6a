package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"booking-finance/internal/ai"
	"booking-finance/internal/core"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // Load .env if present

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	agent := ai.NewAgent(apiKey, os.Getenv("OPENAI_MODEL"))
	ctx := context.Background()

	note := `Booking done today for Mr. Ravi Kumar, Skyline Heights tower A unit A-1203.
BSP 75,00,000 with 5% GST, PLC 2 lakh at 18%, no other charges.
Token 5,00,000 received by cheque no 004512 on 12/04/2026.
Balance 10 lakh due next month by bank transfer. CP payout 1.5L, discount 25k.`

	fmt.Printf("EXTRACTING BOOKING:\n%s\n", note)
	response, err := agent.ExtractBooking(ctx, note, "Local Operations India")
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if response.IsClarificationRequest {
		fmt.Printf("\n--- CLARIFICATION ---\n%s\n", response.Clarification.Message)
		return
	}

	draft := response.Draft
	fmt.Printf("\n--- DRAFT ---\n")
	fmt.Printf("Confidence: %.2f\n", draft.Confidence)
	fmt.Printf("Reasoning: %s\n", draft.Reasoning)
	fmt.Printf("Customer: %s, Unit: %s %s, Date: %s\n", draft.CustomerName, draft.ProjectName, draft.UnitNumber, draft.BookingDate)

	input, err := draft.ToBookingInput()
	if err != nil {
		log.Fatalf("Draft does not convert: %v", err)
	}
	derived := core.Recompute(input.Financials)
	fmt.Printf("\nTSP: %s\nNet revenue: %s\n", derived.TotalSalePrice.StringFixed(2), derived.NetRevenue.StringFixed(2))

	fmt.Printf("\nPayments:\n")
	for _, e := range input.Payments.Received {
		fmt.Printf("- received %s on %s by %s\n", e.Amount.StringFixed(2), e.Date, e.Mode)
	}
	for _, e := range input.Payments.Pending {
		fmt.Printf("- pending  %s on %s by %s\n", e.Amount.StringFixed(2), e.Date, e.Mode)
	}
}
