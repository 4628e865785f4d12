package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quickgig/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubValidator struct {
	email string
	role  models.Role
	err   error
}

func (s *stubValidator) ValidateToken(_ context.Context, _ string) (string, models.Role, error) {
	return s.email, s.role, s.err
}

type stubAccounts struct {
	account *models.Account
	err     error
}

func (s *stubAccounts) GetByEmail(_ context.Context, _ string) (*models.Account, error) {
	return s.account, s.err
}

// okHandler writes 200 and the account email (for assertions).
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	acc := AccountFromCtx(r.Context())
	if acc != nil {
		w.Write([]byte(acc.Email))
	}
	w.WriteHeader(http.StatusOK)
})

func authedRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	return req
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAuth_ValidToken(t *testing.T) {
	account := &models.Account{Email: "worker@test.dev", Role: models.RoleWorker}
	mw := Auth(&stubValidator{email: account.Email, role: models.RoleWorker}, &stubAccounts{account: account})(okHandler)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, authedRequest())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); body != account.Email {
		t.Errorf("expected account email %q in body, got %q", account.Email, body)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	mw := Auth(&stubValidator{}, &stubAccounts{})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	mw := Auth(&stubValidator{err: errors.New("bad signature")}, &stubAccounts{})(okHandler)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, authedRequest())

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_UnknownAccount(t *testing.T) {
	mw := Auth(&stubValidator{email: "gone@test.dev"}, &stubAccounts{err: errors.New("not found")})(okHandler)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, authedRequest())

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// The role stored on the account wins over the token claim, so a role change
// takes effect without reissuing tokens.
func TestAuth_AccountRoleWinsOverClaim(t *testing.T) {
	account := &models.Account{Email: "user@test.dev", Role: models.RoleBuyer}
	chain := Auth(&stubValidator{email: account.Email, role: models.RoleWorker}, &stubAccounts{account: account})(
		RequireRole(models.RoleBuyer)(okHandler))

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, authedRequest())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 (DB role is buyer), got %d", rec.Code)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	account := &models.Account{Email: "worker@test.dev", Role: models.RoleWorker}
	chain := Auth(&stubValidator{email: account.Email, role: models.RoleWorker}, &stubAccounts{account: account})(
		RequireRole(models.RoleBuyer)(okHandler))

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, authedRequest())

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	account := &models.Account{Email: "admin@test.dev", Role: models.RoleAdmin}
	chain := Auth(&stubValidator{email: account.Email, role: models.RoleAdmin}, &stubAccounts{account: account})(
		RequireRole(models.RoleBuyer)(okHandler))

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, authedRequest())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 (admin passes every guard), got %d", rec.Code)
	}
}

func TestRequireRole_NoAccountInContext(t *testing.T) {
	guard := RequireRole(models.RoleBuyer)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
