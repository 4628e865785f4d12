// Package accounts is the admin-side account management: listing, role
// changes, and deletion. Deletion is guarded at this layer, not the store:
// an account referenced by open tasks or pending submissions cannot go away.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/repository"
)

// ErrAccountInUse is returned when deletion would orphan open tasks or
// pending submissions.
var ErrAccountInUse = errors.New("account has open tasks or pending submissions")

// Store is the account persistence the engine needs.
type Store interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	UpdateRole(ctx context.Context, email string, role models.Role) (bool, error)
	Delete(ctx context.Context, email string) (bool, error)
}

// TaskCounter counts tasks still owned by a buyer.
type TaskCounter interface {
	CountByBuyer(ctx context.Context, buyerEmail string) (int, error)
}

// SubmissionCounter counts a worker's open claims.
type SubmissionCounter interface {
	CountPendingByWorker(ctx context.Context, workerEmail string) (int, error)
}

type Service struct {
	accounts    Store
	tasks       TaskCounter
	submissions SubmissionCounter
}

func NewService(accounts Store, tasks TaskCounter, submissions SubmissionCounter) *Service {
	return &Service{accounts: accounts, tasks: tasks, submissions: submissions}
}

func (s *Service) List(ctx context.Context) ([]*models.Account, error) {
	return s.accounts.List(ctx)
}

func (s *Service) ChangeRole(ctx context.Context, email string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	ok, err := s.accounts.UpdateRole(ctx, email, role)
	if err != nil {
		return fmt.Errorf("update role for %s: %w", email, err)
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the account unless it still owns tasks or has pending
// submissions.
func (s *Service) Delete(ctx context.Context, email string) error {
	if _, err := s.accounts.GetByEmail(ctx, email); err != nil {
		return err
	}
	openTasks, err := s.tasks.CountByBuyer(ctx, email)
	if err != nil {
		return fmt.Errorf("count tasks for %s: %w", email, err)
	}
	pendingSubs, err := s.submissions.CountPendingByWorker(ctx, email)
	if err != nil {
		return fmt.Errorf("count pending submissions for %s: %w", email, err)
	}
	if openTasks > 0 || pendingSubs > 0 {
		return ErrAccountInUse
	}
	ok, err := s.accounts.Delete(ctx, email)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", email, err)
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}
