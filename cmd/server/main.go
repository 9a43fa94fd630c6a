package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "booking-finance/internal/adapters/web"
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
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	var extractor ai.BookingExtractor
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		extractor = ai.NewAgent(apiKey, os.Getenv("OPENAI_MODEL"))
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set, /bookings/draft will return 503")
	}

	bookingService := core.NewBookingService(pool, core.NewNumberingService())
	svc := app.NewAppService(pool, bookingService, core.NewUserService(pool), extractor)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
