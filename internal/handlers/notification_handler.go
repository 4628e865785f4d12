package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/quickgig/backend/internal/middleware"
	"github.com/quickgig/backend/internal/models"
)

// NotificationStore lists a recipient's delivered notifications.
type NotificationStore interface {
	ListByRecipient(ctx context.Context, email string) ([]*models.Notification, error)
}

type NotificationHandler struct {
	Notifications NotificationStore
	Logger        *slog.Logger
}

// ListMine handles GET /api/v1/notifications.
func (h *NotificationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.Notifications.ListByRecipient(r.Context(), acc.Email)
	if err != nil {
		writeServerError(w, h.Logger, "list notifications failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
