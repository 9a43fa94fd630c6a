package core

import (
	"context"
	"time"
)

// User is a dashboard operator scoped to one company.
type User struct {
	ID           int
	CompanyID    int
	CompanyCode  string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// UserService provides user lookup operations.
type UserService interface {
	// GetByUsername finds an active user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	GetByID(ctx context.Context, userID int) (*User, error)
}
