package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quickgig/backend/internal/middleware"
	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/payments"
	"github.com/quickgig/backend/internal/reconcile"
)

// PaymentService is the top-up surface the handler needs.
type PaymentService interface {
	TopUp(ctx context.Context, email string, price int, txRef string) (*models.PaymentReceipt, error)
	History(ctx context.Context, email string) ([]*models.PaymentReceipt, error)
}

type PaymentHandler struct {
	Payments PaymentService
	Logger   *slog.Logger
}

// TopUp handles POST /api/v1/payments.
func (h *PaymentHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Price int    `json:"price"`
		TxRef string `json:"tx_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	receipt, err := h.Payments.TopUp(r.Context(), acc.Email, req.Price, req.TxRef)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, receipt)
	case errors.Is(err, payments.ErrInvalidPriceTier):
		writeError(w, http.StatusBadRequest, "price is not a valid tier")
	case errors.Is(err, reconcile.ErrReconciliationGap):
		writeServerError(w, h.Logger, "top-up left a reconciliation gap", err)
	default:
		writeServerError(w, h.Logger, "top-up failed", err)
	}
}

// History handles GET /api/v1/payments.
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.Payments.History(r.Context(), acc.Email)
	if err != nil {
		writeServerError(w, h.Logger, "payment history failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
