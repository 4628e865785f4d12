package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quickgig/backend/internal/ledger"
	"github.com/quickgig/backend/internal/middleware"
	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/reconcile"
	"github.com/quickgig/backend/internal/repository"
	"github.com/quickgig/backend/internal/tasks"
)

// TaskService is the task lifecycle surface the handler needs.
type TaskService interface {
	Create(ctx context.Context, buyerEmail string, in tasks.CreateTaskInput) (*models.Task, error)
	Edit(ctx context.Context, id uuid.UUID, e repository.TaskEdit) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByBuyer(ctx context.Context, buyerEmail string) ([]*models.Task, error)
	ListAvailable(ctx context.Context) ([]*models.Task, error)
}

type TaskHandler struct {
	Tasks  TaskService
	Logger *slog.Logger
}

type createTaskRequest struct {
	Title           string    `json:"title"`
	Detail          string    `json:"detail"`
	Amount          int       `json:"amount"`
	RequiredWorkers int       `json:"required_workers"`
	CompletionDate  time.Time `json:"completion_date"`
	ImageURL        string    `json:"image_url"`
	SubmissionInfo  string    `json:"submission_info"`
}

// Create handles POST /api/v1/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	task, err := h.Tasks.Create(r.Context(), acc.Email, tasks.CreateTaskInput{
		Title:           req.Title,
		Detail:          req.Detail,
		Amount:          req.Amount,
		RequiredWorkers: req.RequiredWorkers,
		CompletionDate:  req.CompletionDate,
		ImageURL:        req.ImageURL,
		SubmissionInfo:  req.SubmissionInfo,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, task)
	case errors.Is(err, tasks.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "title, amount and required_workers are required")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "insufficient coins")
	case errors.Is(err, reconcile.ErrReconciliationGap):
		writeServerError(w, h.Logger, "create task left a reconciliation gap", err)
	default:
		writeServerError(w, h.Logger, "create task failed", err)
	}
}

// Edit handles PATCH /api/v1/tasks/{id}.
func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}
	var req struct {
		Title          string    `json:"title"`
		Detail         string    `json:"detail"`
		CompletionDate time.Time `json:"completion_date"`
		ImageURL       string    `json:"image_url"`
		SubmissionInfo string    `json:"submission_info"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	err := h.Tasks.Edit(r.Context(), task.ID, repository.TaskEdit{
		Title:          req.Title,
		Detail:         req.Detail,
		CompletionDate: req.CompletionDate,
		ImageURL:       req.ImageURL,
		SubmissionInfo: req.SubmissionInfo,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, tasks.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "title is required")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	default:
		writeServerError(w, h.Logger, "edit task failed", err)
	}
}

// Delete handles DELETE /api/v1/tasks/{id}: refunds unconsumed escrow and
// removes the task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}
	err := h.Tasks.Delete(r.Context(), task.ID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, reconcile.ErrReconciliationGap):
		writeServerError(w, h.Logger, "delete task left a reconciliation gap", err)
	default:
		writeServerError(w, h.Logger, "delete task failed", err)
	}
}

// Get handles GET /api/v1/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	task, err := h.Tasks.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeServerError(w, h.Logger, "get task failed", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ListMine handles GET /api/v1/tasks — the buyer's own tasks.
func (h *TaskHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.Tasks.ListByBuyer(r.Context(), acc.Email)
	if err != nil {
		writeServerError(w, h.Logger, "list tasks failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListAvailable handles GET /api/v1/tasks/available — tasks with open slots.
func (h *TaskHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	list, err := h.Tasks.ListAvailable(r.Context())
	if err != nil {
		writeServerError(w, h.Logger, "list available tasks failed", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ownedTask loads the task in the path and checks the caller owns it (or is
// an admin).
func (h *TaskHandler) ownedTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return nil, false
	}
	task, err := h.Tasks.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return nil, false
		}
		writeServerError(w, h.Logger, "get task failed", err)
		return nil, false
	}
	if task.BuyerEmail != acc.Email && acc.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "not your task")
		return nil, false
	}
	return task, true
}

// pathID parses the {id} path value as a UUID.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
