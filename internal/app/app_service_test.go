package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"booking-finance/internal/core"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	users map[string]*core.User
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*core.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUserNotFound, username)
}

func (f *fakeUsers) GetByID(ctx context.Context, userID int) (*core.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: id=%d", core.ErrUserNotFound, userID)
}

func newTestService(t *testing.T) ApplicationService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	users := &fakeUsers{users: map[string]*core.User{
		"priya": {ID: 7, Username: "priya", Email: "priya@example.com", PasswordHash: string(hash), Role: "admin", CompanyCode: "1000", IsActive: true},
	}}
	return NewAppService(nil, nil, users, nil)
}

func TestAuthenticateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.AuthenticateUser(ctx, "priya", "s3cret")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if session.UserID != 7 || session.CompanyCode != "1000" || session.Role != "admin" {
		t.Errorf("unexpected session: %+v", session)
	}

	if _, err := svc.AuthenticateUser(ctx, "priya", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.AuthenticateUser(ctx, "nobody", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGetUser(t *testing.T) {
	svc := newTestService(t)
	u, err := svc.GetUser(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "priya@example.com" {
		t.Errorf("unexpected user: %+v", u)
	}
	if _, err := svc.GetUser(context.Background(), 99); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRecomputeFinancials(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.RecomputeFinancials(context.Background(), core.DealFinancialsInputs{
		BaseSalePrice:  decimal.NewFromInt(100000),
		BaseSaleGSTPct: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Derived.TotalSalePrice.Equal(decimal.NewFromInt(110000)) {
		t.Errorf("expected TSP 110000, got %s", res.Derived.TotalSalePrice)
	}

	_, err = svc.RecomputeFinancials(context.Background(), core.DealFinancialsInputs{BaseSaleGSTPct: decimal.NewFromInt(101)})
	if _, ok := core.AsFieldErrors(err); !ok {
		t.Errorf("expected field errors, got %v", err)
	}
}

func TestBuildSchedule(t *testing.T) {
	svc := newTestService(t)
	lists := core.NewPaymentLists()
	if err := lists.UpdateEntry(core.ListReceived, 0, core.EntryFieldAmount, "1500"); err != nil {
		t.Fatal(err)
	}
	if err := lists.UpdateEntry(core.ListPending, 0, core.EntryFieldAmount, "9000"); err != nil {
		t.Fatal(err)
	}

	res, err := svc.BuildSchedule(context.Background(), lists)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.PaymentDetails) != 2 || !res.TotalReceived.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("unexpected schedule: %+v", res)
	}
}

func TestDraftBooking_WithoutAgent(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.DraftBooking(context.Background(), "anything", "1000"); !errors.Is(err, ErrAgentUnavailable) {
		t.Errorf("expected ErrAgentUnavailable, got %v", err)
	}
}

func TestDraftResult(t *testing.T) {
	clar, err := draftResult(&core.DraftResponse{
		IsClarificationRequest: true,
		Clarification:          &core.DraftClarification{Message: "Which unit?"},
	})
	if err != nil || !clar.IsClarification || clar.ClarificationMessage != "Which unit?" || clar.Draft != nil {
		t.Fatalf("unexpected clarification result: %+v, %v", clar, err)
	}

	res, err := draftResult(&core.DraftResponse{Draft: &core.BookingDraft{
		CustomerName: "Asha", UnitNumber: "T2-1104", BookingDate: "2026-04-12",
		BSP: "100000", GSTPercentage: "10", Confidence: 0.9,
	}})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsClarification || res.Draft == nil || res.Draft.UnitNumber != "T2-1104" {
		t.Fatalf("unexpected draft result: %+v", res)
	}
	if !res.Derived.TotalSalePrice.Equal(decimal.NewFromInt(110000)) {
		t.Errorf("expected derived TSP 110000, got %s", res.Derived.TotalSalePrice)
	}
}
