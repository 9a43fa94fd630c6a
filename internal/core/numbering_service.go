package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BookingNumberPrefix prefixes every booking number, e.g. BK-2026-00042.
const BookingNumberPrefix = "BK"

// NumberingService hands out gapless, per-company, per-financial-year numbers.
type NumberingService interface {
	// NextTx reserves the next number inside the caller's transaction, so a
	// rolled-back booking never burns a number.
	NextTx(ctx context.Context, tx pgx.Tx, companyID int, prefix string, financialYear int) (string, error)
}

type numberingService struct{}

func NewNumberingService() NumberingService {
	return &numberingService{}
}

func (s *numberingService) NextTx(ctx context.Context, tx pgx.Tx, companyID int, prefix string, financialYear int) (string, error) {
	// Row lock taken by the upsert serialises concurrent bookings for the same key.
	var lastNumber int64
	err := tx.QueryRow(ctx, `
		INSERT INTO booking_sequences (company_id, prefix, financial_year, last_number)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, prefix, financial_year)
		DO UPDATE SET last_number = booking_sequences.last_number + 1
		RETURNING last_number
	`, companyID, prefix, financialYear).Scan(&lastNumber)
	if err != nil {
		return "", fmt.Errorf("failed to generate gapless sequence number: %w", err)
	}
	return FormatBookingNumber(prefix, financialYear, lastNumber), nil
}

// FormatBookingNumber renders PREFIX-FY-NNNNN.
func FormatBookingNumber(prefix string, financialYear int, n int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, financialYear, n)
}
