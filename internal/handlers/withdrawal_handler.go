package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/quickgig/backend/internal/ledger"
	"github.com/quickgig/backend/internal/middleware"
	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/repository"
	"github.com/quickgig/backend/internal/withdrawals"
)

// WithdrawalService is the withdrawal surface the handler needs.
type WithdrawalService interface {
	Request(ctx context.Context, workerEmail string, amount int, paymentSystem, accountNumber string) (*models.Withdrawal, error)
	Approve(ctx context.Context, id uuid.UUID) error
	ListByWorker(ctx context.Context, workerEmail string) ([]*models.Withdrawal, error)
	ListPending(ctx context.Context) ([]*models.Withdrawal, error)
}

type WithdrawalHandler struct {
	Withdrawals WithdrawalService
	Logger      *slog.Logger
}

// Request handles POST /api/v1/withdrawals.
func (h *WithdrawalHandler) Request(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		CoinAmount    int    `json:"coin_amount"`
		PaymentSystem string `json:"payment_system"`
		AccountNumber string `json:"account_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	wd, err := h.Withdrawals.Request(r.Context(), acc.Email, req.CoinAmount, req.PaymentSystem, req.AccountNumber)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, wd)
	case errors.Is(err, withdrawals.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "coin_amount must be positive")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "insufficient coins")
	default:
		writeServerError(w, h.Logger, "withdrawal request failed", err)
	}
}

// Approve handles POST /api/v1/withdrawals/{id}/approve (admin only).
func (h *WithdrawalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid withdrawal id")
		return
	}
	err := h.Withdrawals.Approve(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "withdrawal not found")
	case errors.Is(err, withdrawals.ErrInvalidState):
		writeError(w, http.StatusConflict, "withdrawal is not pending")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "worker balance has dropped below the requested amount")
	default:
		writeServerError(w, h.Logger, "approve withdrawal failed", err)
	}
}

// ListMine handles GET /api/v1/withdrawals — the worker's own requests.
func (h *WithdrawalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.Withdrawals.ListByWorker(r.Context(), acc.Email)
	if err != nil {
		writeServerError(w, h.Logger, "list withdrawals failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListPending handles GET /api/v1/withdrawals/pending — the admin queue.
func (h *WithdrawalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	list, err := h.Withdrawals.ListPending(r.Context())
	if err != nil {
		writeServerError(w, h.Logger, "list pending withdrawals failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
