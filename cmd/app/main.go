package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"booking-finance/internal/adapters/cli"
	"booking-finance/internal/adapters/repl"
	"booking-finance/internal/ai"
	"booking-finance/internal/app"
	"booking-finance/internal/core"
	"booking-finance/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	var extractor ai.BookingExtractor
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		extractor = ai.NewAgent(apiKey, os.Getenv("OPENAI_MODEL"))
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set, drafting from text is disabled")
	}

	bookingService := core.NewBookingService(pool, core.NewNumberingService())
	svc := app.NewAppService(pool, bookingService, core.NewUserService(pool), extractor)

	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		return
	}
	repl.Run(ctx, svc, bufio.NewReader(os.Stdin))
}
