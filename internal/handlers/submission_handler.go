package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/quickgig/backend/internal/middleware"
	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/reconcile"
	"github.com/quickgig/backend/internal/repository"
	"github.com/quickgig/backend/internal/submissions"
)

// SubmissionService is the submission lifecycle surface the handler needs.
type SubmissionService interface {
	Submit(ctx context.Context, taskID uuid.UUID, workerEmail, workerName, detail string) (*models.Submission, error)
	Approve(ctx context.Context, submissionID uuid.UUID) error
	Reject(ctx context.Context, submissionID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	ListByWorker(ctx context.Context, workerEmail string) ([]*models.Submission, error)
	ListPendingByBuyer(ctx context.Context, buyerEmail string) ([]*models.Submission, error)
}

type SubmissionHandler struct {
	Submissions SubmissionService
	Logger      *slog.Logger
}

// Submit handles POST /api/v1/tasks/{id}/submissions.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	taskID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var req struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	sub, err := h.Submissions.Submit(r.Context(), taskID, acc.Email, acc.Name, req.Detail)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, sub)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, submissions.ErrNoOpenSlots):
		writeError(w, http.StatusConflict, "task has no open slots")
	default:
		writeServerError(w, h.Logger, "submit failed", err)
	}
}

// Approve handles POST /api/v1/submissions/{id}/approve.
func (h *SubmissionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.reviewableSubmission(w, r)
	if !ok {
		return
	}
	err := h.Submissions.Approve(r.Context(), sub.ID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
	case errors.Is(err, submissions.ErrInvalidState):
		writeError(w, http.StatusConflict, "submission is not pending")
	case errors.Is(err, submissions.ErrNoOpenSlots):
		writeError(w, http.StatusConflict, "task has no open slots left")
	case errors.Is(err, reconcile.ErrReconciliationGap):
		writeServerError(w, h.Logger, "approve left a reconciliation gap", err)
	default:
		writeServerError(w, h.Logger, "approve failed", err)
	}
}

// Reject handles POST /api/v1/submissions/{id}/reject.
func (h *SubmissionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.reviewableSubmission(w, r)
	if !ok {
		return
	}
	err := h.Submissions.Reject(r.Context(), sub.ID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
	case errors.Is(err, submissions.ErrInvalidState):
		writeError(w, http.StatusConflict, "submission is not pending")
	default:
		writeServerError(w, h.Logger, "reject failed", err)
	}
}

// ListMine handles GET /api/v1/submissions — the worker's own submissions.
func (h *SubmissionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.Submissions.ListByWorker(r.Context(), acc.Email)
	if err != nil {
		writeServerError(w, h.Logger, "list submissions failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListPending handles GET /api/v1/submissions/pending — the buyer's review
// queue.
func (h *SubmissionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.Submissions.ListPendingByBuyer(r.Context(), acc.Email)
	if err != nil {
		writeServerError(w, h.Logger, "list pending submissions failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// reviewableSubmission loads the submission in the path and checks the caller
// is the buyer it belongs to (or an admin).
func (h *SubmissionHandler) reviewableSubmission(w http.ResponseWriter, r *http.Request) (*models.Submission, bool) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid submission id")
		return nil, false
	}
	sub, err := h.Submissions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "submission not found")
			return nil, false
		}
		writeServerError(w, h.Logger, "get submission failed", err)
		return nil, false
	}
	if sub.BuyerEmail != acc.Email && acc.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "not your submission to review")
		return nil, false
	}
	return sub, true
}
