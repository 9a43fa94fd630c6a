// restore-seed is a one-shot tool to restore the default company and its admin login.
// Run it after a fresh migration or when the company row has been wiped.
//
// Usage: go run ./cmd/restore-seed
//
// ADMIN_USERNAME (default "admin") and ADMIN_PASSWORD (required) set the login.
package main

import (
	"context"
	"log"
	"os"

	"booking-finance/internal/db"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Restoring company...")
	_, err = tx.Exec(ctx, `
		INSERT INTO companies (company_code, name, base_currency)
		VALUES ('1000', 'Local Operations India', 'INR')
		ON CONFLICT (company_code) DO UPDATE
		  SET name = EXCLUDED.name,
		      base_currency = EXCLUDED.base_currency;
	`)
	if err != nil {
		log.Fatalf("Failed to restore company: %v", err)
	}

	log.Printf("Restoring admin user %q...", username)
	_, err = tx.Exec(ctx, `
		INSERT INTO users (company_id, username, email, password_hash, role)
		SELECT c.id, $1, '', $2, 'admin'
		FROM companies c
		WHERE c.company_code = '1000'
		ON CONFLICT (username) DO UPDATE
		  SET password_hash = EXCLUDED.password_hash,
		      role = EXCLUDED.role,
		      is_active = true;
	`, username, string(hash))
	if err != nil {
		log.Fatalf("Failed to restore admin user: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed data restored successfully.")
}
