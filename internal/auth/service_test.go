package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// In-memory account store keyed on email, unique like the real table.
// ---------------------------------------------------------------------------

type mockAccounts struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func newMockAccounts() *mockAccounts {
	return &mockAccounts{accounts: make(map[string]*models.Account)}
}

func (m *mockAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccounts) Create(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.Email]; ok {
		return errors.New("duplicate email")
	}
	cp := *a
	m.accounts[a.Email] = &cp
	return nil
}

// ---------------------------------------------------------------------------
// 1. TestRegisterGrantsSignupCoins
// ---------------------------------------------------------------------------

func TestRegisterGrantsSignupCoins(t *testing.T) {
	store := newMockAccounts()
	svc := NewService(store, "test-secret")
	ctx := context.Background()

	worker, created, err := svc.Register(ctx, "worker@test.dev", "pw", "W", "", models.RoleWorker)
	if err != nil {
		t.Fatalf("Register worker: %v", err)
	}
	if !created {
		t.Error("expected created=true for first signup")
	}
	if worker.Coin != models.SignupCoinsWorker {
		t.Errorf("worker coins: got %d, want %d", worker.Coin, models.SignupCoinsWorker)
	}

	buyer, _, err := svc.Register(ctx, "buyer@test.dev", "pw", "B", "", models.RoleBuyer)
	if err != nil {
		t.Fatalf("Register buyer: %v", err)
	}
	if buyer.Coin != models.SignupCoinsBuyer {
		t.Errorf("buyer coins: got %d, want %d", buyer.Coin, models.SignupCoinsBuyer)
	}

	// Admin signup is not a thing.
	if _, _, err := svc.Register(ctx, "admin@test.dev", "pw", "A", "", models.RoleAdmin); err == nil {
		t.Error("expected error for admin signup role")
	}
}

// ---------------------------------------------------------------------------
// 2. TestRegisterIdempotentOnEmail
// ---------------------------------------------------------------------------

func TestRegisterIdempotentOnEmail(t *testing.T) {
	store := newMockAccounts()
	svc := NewService(store, "test-secret")
	ctx := context.Background()

	first, _, err := svc.Register(ctx, "worker@test.dev", "pw", "W", "", models.RoleWorker)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	again, created, err := svc.Register(ctx, "worker@test.dev", "other-pw", "Other", "", models.RoleBuyer)
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if created {
		t.Error("expected created=false for existing email")
	}
	// The earlier record wins entirely: role, name, coins unchanged.
	if again.ID != first.ID || again.Role != models.RoleWorker || again.Coin != first.Coin {
		t.Errorf("existing account changed by re-register: %+v", again)
	}
}

// ---------------------------------------------------------------------------
// 3. TestLoginAndValidateToken
// ---------------------------------------------------------------------------

func TestLoginAndValidateToken(t *testing.T) {
	store := newMockAccounts()
	svc := NewService(store, "test-secret")
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "worker@test.dev", "pw", "W", "", models.RoleWorker); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := svc.Login(ctx, "worker@test.dev", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	email, role, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if email != "worker@test.dev" || role != models.RoleWorker {
		t.Errorf("claims = %s/%s", email, role)
	}

	if _, err := svc.Login(ctx, "worker@test.dev", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost@test.dev", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// 4. TestValidateTokenRejectsWrongSecret
// ---------------------------------------------------------------------------

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	store := newMockAccounts()
	svc := NewService(store, "secret-a")
	other := NewService(store, "secret-b")
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "worker@test.dev", "pw", "W", "", models.RoleWorker); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := svc.Login(ctx, "worker@test.dev", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, _, err := other.ValidateToken(ctx, token); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
	if _, _, err := svc.ValidateToken(ctx, "not-a-token"); err == nil {
		t.Error("garbage token must be rejected")
	}
}
