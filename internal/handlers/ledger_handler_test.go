package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quickgig/backend/internal/models"
)

type stubJournal struct {
	entries map[string][]*models.CoinEntry
}

func (s *stubJournal) ListByEmail(_ context.Context, email string) ([]*models.CoinEntry, error) {
	return s.entries[email], nil
}

func TestListCoinLedger_OnlyOwnEntries(t *testing.T) {
	journal := &stubJournal{entries: map[string][]*models.CoinEntry{
		"worker@example.com": {
			{AccountEmail: "worker@example.com", Amount: 20, EntryType: models.CoinEntryPayout},
			{AccountEmail: "worker@example.com", Amount: -15, EntryType: models.CoinEntryWithdrawalDebit},
		},
		"other@example.com": {
			{AccountEmail: "other@example.com", Amount: 100, EntryType: models.CoinEntryTopUp},
		},
	}}
	h := &LedgerHandler{Journal: journal}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/coin-ledger", nil)
	req = asAccount(req, &models.Account{Email: "worker@example.com", Role: models.RoleWorker})
	rec := httptest.NewRecorder()
	h.ListMine(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got []*models.CoinEntry
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	for _, e := range got {
		if e.AccountEmail != "worker@example.com" {
			t.Errorf("entry for %q leaked into response", e.AccountEmail)
		}
	}
}

func TestListCoinLedger_NoAccount(t *testing.T) {
	h := &LedgerHandler{Journal: &stubJournal{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/coin-ledger", nil)
	rec := httptest.NewRecorder()
	h.ListMine(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
