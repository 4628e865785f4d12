package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quickgig/backend/internal/accounts"
	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/repository"
)

// AccountService is the admin account management surface.
type AccountService interface {
	List(ctx context.Context) ([]*models.Account, error)
	ChangeRole(ctx context.Context, email string, role models.Role) error
	Delete(ctx context.Context, email string) error
}

type AdminHandler struct {
	Accounts AccountService
	Logger   *slog.Logger
}

// ListAccounts handles GET /api/v1/admin/accounts.
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.Accounts.List(r.Context())
	if err != nil {
		writeServerError(w, h.Logger, "list accounts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ChangeRole handles PATCH /api/v1/admin/accounts/{email}.
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "missing account email")
		return
	}
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	err := h.Accounts.ChangeRole(r.Context(), email, req.Role)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// DeleteAccount handles DELETE /api/v1/admin/accounts/{email}.
func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "missing account email")
		return
	}
	err := h.Accounts.Delete(r.Context(), email)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, accounts.ErrAccountInUse):
		writeError(w, http.StatusConflict, "account has open tasks or pending submissions")
	default:
		writeServerError(w, h.Logger, "delete account failed", err)
	}
}
