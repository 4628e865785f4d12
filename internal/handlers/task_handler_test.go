package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/quickgig/backend/internal/ledger"
	"github.com/quickgig/backend/internal/middleware"
	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/repository"
	"github.com/quickgig/backend/internal/tasks"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubTaskService struct {
	task      *models.Task
	createErr error
	deleteErr error
	deleted   []uuid.UUID
}

func (s *stubTaskService) Create(_ context.Context, buyerEmail string, in tasks.CreateTaskInput) (*models.Task, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.Task{
		ID:              uuid.New(),
		BuyerEmail:      buyerEmail,
		Title:           in.Title,
		Amount:          in.Amount,
		RequiredWorkers: in.RequiredWorkers,
	}, nil
}

func (s *stubTaskService) Edit(_ context.Context, _ uuid.UUID, _ repository.TaskEdit) error {
	return nil
}

func (s *stubTaskService) Delete(_ context.Context, id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubTaskService) Get(_ context.Context, _ uuid.UUID) (*models.Task, error) {
	if s.task == nil {
		return nil, repository.ErrNotFound
	}
	return s.task, nil
}

func (s *stubTaskService) ListByBuyer(_ context.Context, _ string) ([]*models.Task, error) {
	return nil, nil
}

func (s *stubTaskService) ListAvailable(_ context.Context) ([]*models.Task, error) {
	return nil, nil
}

func asAccount(req *http.Request, acc *models.Account) *http.Request {
	return req.WithContext(middleware.WithAccount(req.Context(), acc))
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCreateTask_Success(t *testing.T) {
	h := &TaskHandler{Tasks: &stubTaskService{}}
	buyer := &models.Account{Email: "buyer@test.dev", Role: models.RoleBuyer}

	body := `{"title":"label images","amount":20,"required_workers":3}`
	req := asAccount(httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body)), buyer)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Task
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.BuyerEmail != buyer.Email || got.Title != "label images" {
		t.Errorf("task = %+v", got)
	}
}

func TestCreateTask_InsufficientCoins(t *testing.T) {
	h := &TaskHandler{Tasks: &stubTaskService{createErr: ledger.ErrInsufficientFunds}}
	buyer := &models.Account{Email: "buyer@test.dev", Role: models.RoleBuyer}

	body := `{"title":"x","amount":1000,"required_workers":3}`
	req := asAccount(httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body)), buyer)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
}

func TestCreateTask_InvalidInput(t *testing.T) {
	h := &TaskHandler{Tasks: &stubTaskService{createErr: tasks.ErrInvalidInput}}
	buyer := &models.Account{Email: "buyer@test.dev", Role: models.RoleBuyer}

	req := asAccount(httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(`{}`)), buyer)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteTask_OwnershipEnforced(t *testing.T) {
	task := &models.Task{ID: uuid.New(), BuyerEmail: "owner@test.dev"}
	svc := &stubTaskService{task: task}
	h := &TaskHandler{Tasks: svc}

	// A different buyer cannot delete the task.
	stranger := &models.Account{Email: "other@test.dev", Role: models.RoleBuyer}
	req := asAccount(httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+task.ID.String(), nil), stranger)
	req.SetPathValue("id", task.ID.String())
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if len(svc.deleted) != 0 {
		t.Error("delete must not reach the service")
	}

	// An admin can.
	admin := &models.Account{Email: "admin@test.dev", Role: models.RoleAdmin}
	req = asAccount(httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+task.ID.String(), nil), admin)
	req.SetPathValue("id", task.ID.String())
	rec = httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.deleted) != 1 {
		t.Error("delete should reach the service for the admin")
	}
}

func TestGetTask_NotFound(t *testing.T) {
	h := &TaskHandler{Tasks: &stubTaskService{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+uuid.NewString(), nil)
	req.SetPathValue("id", uuid.NewString())
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetTask_BadID(t *testing.T) {
	h := &TaskHandler{Tasks: &stubTaskService{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
