package withdrawals

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/quickgig/backend/internal/ledger"
	"github.com/quickgig/backend/internal/models"
	"github.com/quickgig/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// In-memory mocks. MarkApproved has the same pending-only conditional
// semantics as the SQL repository.
// ---------------------------------------------------------------------------

type mockStore struct {
	mu          sync.Mutex
	withdrawals map[uuid.UUID]*models.Withdrawal
}

func newMockStore(ws ...*models.Withdrawal) *mockStore {
	m := &mockStore{withdrawals: make(map[uuid.UUID]*models.Withdrawal)}
	for _, w := range ws {
		cp := *w
		m.withdrawals[w.ID] = &cp
	}
	return m
}

func (m *mockStore) Insert(_ context.Context, w *models.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	m.withdrawals[w.ID] = &cp
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *mockStore) MarkApproved(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[id]
	if !ok || w.Status != models.WithdrawalPending {
		return false, nil
	}
	w.Status = models.WithdrawalApproved
	return true, nil
}

func (m *mockStore) ListByWorker(_ context.Context, workerEmail string) ([]*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Withdrawal
	for _, w := range m.withdrawals {
		if w.WorkerEmail == workerEmail {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockStore) ListPending(_ context.Context) ([]*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Withdrawal
	for _, w := range m.withdrawals {
		if w.Status == models.WithdrawalPending {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockStore) status(id uuid.UUID) models.WithdrawalStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.withdrawals[id].Status
}

// ---

type mockLedger struct {
	mu       sync.Mutex
	balances map[string]int
	restores int
}

func (m *mockLedger) DebitForWithdrawal(_ context.Context, workerEmail string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[workerEmail] < amount {
		return ledger.ErrInsufficientFunds
	}
	m.balances[workerEmail] -= amount
	return nil
}

func (m *mockLedger) RestoreWithdrawal(_ context.Context, workerEmail string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[workerEmail] += amount
	m.restores++
	return nil
}

func (m *mockLedger) restoreCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restores
}

func (m *mockLedger) balance(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[email]
}

// mockLedger doubles as the AccountReader: the balance it tracks is the one
// the request-time check should see.
func (m *mockLedger) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.Account{Email: email, Coin: m.balances[email]}, nil
}

// ---------------------------------------------------------------------------
// 1. TestRequestChecksBalanceEarly
// ---------------------------------------------------------------------------

func TestRequestChecksBalanceEarly(t *testing.T) {
	const worker = "worker@test.dev"

	store := newMockStore()
	l := &mockLedger{balances: map[string]int{worker: 30}}
	svc := NewService(store, l, l, nil)

	ctx := context.Background()
	w, err := svc.Request(ctx, worker, 30, "bkash", "017000")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if w.Status != models.WithdrawalPending {
		t.Errorf("status: got %s, want pending", w.Status)
	}
	// Filing the request moves no coins.
	if got := l.balance(worker); got != 30 {
		t.Errorf("balance after request: got %d, want 30", got)
	}

	if _, err := svc.Request(ctx, worker, 31, "bkash", "017000"); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got: %v", err)
	}
	if _, err := svc.Request(ctx, worker, 0, "bkash", "017000"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// 2. TestApproveDebitsAndFlips
// ---------------------------------------------------------------------------

func TestApproveDebitsAndFlips(t *testing.T) {
	const worker = "worker@test.dev"
	w := &models.Withdrawal{ID: uuid.New(), WorkerEmail: worker, CoinAmount: 30, Status: models.WithdrawalPending}

	store := newMockStore(w)
	l := &mockLedger{balances: map[string]int{worker: 50}}
	svc := NewService(store, l, l, nil)

	ctx := context.Background()
	if err := svc.Approve(ctx, w.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if got := l.balance(worker); got != 20 {
		t.Errorf("balance: got %d, want 20", got)
	}
	if got := store.status(w.ID); got != models.WithdrawalApproved {
		t.Errorf("status: got %s, want approved", got)
	}
}

// ---------------------------------------------------------------------------
// 3. TestApproveStaleRequest
//    The balance dropped after the request was filed; approval fails with
//    InsufficientFunds and the request stays pending.
// ---------------------------------------------------------------------------

func TestApproveStaleRequest(t *testing.T) {
	const worker = "worker@test.dev"
	w := &models.Withdrawal{ID: uuid.New(), WorkerEmail: worker, CoinAmount: 30, Status: models.WithdrawalPending}

	store := newMockStore(w)
	l := &mockLedger{balances: map[string]int{worker: 10}}
	svc := NewService(store, l, l, nil)

	ctx := context.Background()
	if err := svc.Approve(ctx, w.ID); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got: %v", err)
	}

	if got := l.balance(worker); got != 10 {
		t.Errorf("balance: got %d, want 10 (untouched)", got)
	}
	if got := store.status(w.ID); got != models.WithdrawalPending {
		t.Errorf("status: got %s, want pending", got)
	}
}

// ---------------------------------------------------------------------------
// 4. TestApproveExactlyOnce
//    A second approval returns InvalidState and the debit happens once.
// ---------------------------------------------------------------------------

func TestApproveExactlyOnce(t *testing.T) {
	const worker = "worker@test.dev"
	w := &models.Withdrawal{ID: uuid.New(), WorkerEmail: worker, CoinAmount: 30, Status: models.WithdrawalPending}

	store := newMockStore(w)
	l := &mockLedger{balances: map[string]int{worker: 100}}
	svc := NewService(store, l, l, nil)

	ctx := context.Background()
	if err := svc.Approve(ctx, w.ID); err != nil {
		t.Fatalf("first Approve: %v", err)
	}
	if err := svc.Approve(ctx, w.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Approve: expected ErrInvalidState, got %v", err)
	}

	if got := l.balance(worker); got != 70 {
		t.Errorf("balance: got %d, want 70 (one debit)", got)
	}
}

// ---------------------------------------------------------------------------
// 5. TestApproveLostRaceRestoresDebit
//    The withdrawal reads as pending but another approver wins the status
//    flip; the loser's debit is returned through the withdrawal-restore
//    path, not a task refund.
// ---------------------------------------------------------------------------

// staleStore always loses the conditional flip.
type staleStore struct{ *mockStore }

func (s *staleStore) MarkApproved(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

func TestApproveLostRaceRestoresDebit(t *testing.T) {
	const worker = "worker@test.dev"
	w := &models.Withdrawal{ID: uuid.New(), WorkerEmail: worker, CoinAmount: 30, Status: models.WithdrawalPending}

	store := &staleStore{newMockStore(w)}
	l := &mockLedger{balances: map[string]int{worker: 50}}
	svc := NewService(store, l, l, nil)

	if err := svc.Approve(context.Background(), w.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got: %v", err)
	}
	if got := l.balance(worker); got != 50 {
		t.Errorf("balance: got %d, want 50 (debit restored)", got)
	}
	if got := l.restoreCount(); got != 1 {
		t.Errorf("restore calls: got %d, want 1", got)
	}
}

// ---------------------------------------------------------------------------
// 6. TestConcurrentApprovals
//    Concurrent approvals of the same withdrawal: the conditional status
//    flip lets exactly one debit stand, losers restore the coins.
// ---------------------------------------------------------------------------

func TestConcurrentApprovals(t *testing.T) {
	const worker = "worker@test.dev"
	w := &models.Withdrawal{ID: uuid.New(), WorkerEmail: worker, CoinAmount: 30, Status: models.WithdrawalPending}

	store := newMockStore(w)
	l := &mockLedger{balances: map[string]int{worker: 300}}
	svc := NewService(store, l, l, nil)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.Approve(ctx, w.ID)
		}()
	}
	wg.Wait()

	if got := l.balance(worker); got != 270 {
		t.Errorf("balance: got %d, want 270 (exactly one debit)", got)
	}
	if got := store.status(w.ID); got != models.WithdrawalApproved {
		t.Errorf("status: got %s, want approved", got)
	}
}
