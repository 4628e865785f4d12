package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/quickgig/backend/internal/middleware"
	"github.com/quickgig/backend/internal/models"
)

// CoinJournal lists an account's coin movements.
type CoinJournal interface {
	ListByEmail(ctx context.Context, email string) ([]*models.CoinEntry, error)
}

type LedgerHandler struct {
	Journal CoinJournal
	Logger  *slog.Logger
}

// ListMine handles GET /api/v1/coin-ledger — the caller's movement history.
func (h *LedgerHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.Journal.ListByEmail(r.Context(), acc.Email)
	if err != nil {
		writeServerError(w, h.Logger, "list coin ledger failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
