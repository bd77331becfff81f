package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/adapter/http/dto"
	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/usecase"
)

type journalServiceStub struct {
	createFn      func(ctx context.Context, input usecase.CreateEntryInput) (*domain.JournalEntry, error)
	getFn         func(ctx context.Context, id string) (*domain.JournalEntry, error)
	listFn        func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.JournalEntry, error)
	updateLinesFn func(ctx context.Context, entryID string, lines []usecase.LineInput) (*domain.JournalEntry, error)
	postFn        func(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	balanceFn     func(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error)
	ledgerFn      func(ctx context.Context, accountID string) ([]*domain.LedgerLine, error)
	consistencyFn func(ctx context.Context) (bool, error)
}

func (s *journalServiceStub) CreateEntry(ctx context.Context, input usecase.CreateEntryInput) (*domain.JournalEntry, error) {
	return s.createFn(ctx, input)
}

func (s *journalServiceStub) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return s.getFn(ctx, id)
}

func (s *journalServiceStub) ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.JournalEntry, error) {
	return s.listFn(ctx, input)
}

func (s *journalServiceStub) UpdateEntryLines(ctx context.Context, entryID string, lines []usecase.LineInput) (*domain.JournalEntry, error) {
	return s.updateLinesFn(ctx, entryID, lines)
}

func (s *journalServiceStub) PostEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return s.postFn(ctx, entryID)
}

func (s *journalServiceStub) GetAccountBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	return s.balanceFn(ctx, accountID, asOf)
}

func (s *journalServiceStub) GetLedger(ctx context.Context, accountID string) ([]*domain.LedgerLine, error) {
	return s.ledgerFn(ctx, accountID)
}

func (s *journalServiceStub) CheckConsistency(ctx context.Context) (bool, error) {
	return s.consistencyFn(ctx)
}

func TestJournalHandler_Create_Success(t *testing.T) {
	entry := &domain.JournalEntry{
		ID:     "je-1",
		Status: domain.EntryStatusDraft,
		Type:   domain.EntryTypeManual,
	}

	var captured usecase.CreateEntryInput
	h := NewJournalHandler(&journalServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateEntryInput) (*domain.JournalEntry, error) {
			captured = input
			return entry, nil
		},
	})

	body, _ := json.Marshal(dto.CreateEntryRequest{
		EntryDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Description: "sale",
		Lines: []dto.LineItem{
			{AccountID: "acc-cash", Debit: decimal.NewFromInt(100)},
			{AccountID: "acc-rev", Credit: decimal.NewFromInt(100)},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/journal-entries", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(captured.Lines) != 2 || !captured.Lines[0].Debit.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected lines to match request, got %+v", captured.Lines)
	}
}

func TestJournalHandler_Post_AlreadyPosted(t *testing.T) {
	h := NewJournalHandler(&journalServiceStub{
		postFn: func(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
			return nil, domain.ErrAlreadyPosted
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/journal-entries/je-1/post", nil)
	req = setChiURLParam(req, "id", "je-1")
	rec := httptest.NewRecorder()

	h.Post(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestJournalHandler_Post_Unbalanced(t *testing.T) {
	h := NewJournalHandler(&journalServiceStub{
		postFn: func(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
			return nil, domain.ErrUnbalancedEntry
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/journal-entries/je-1/post", nil)
	req = setChiURLParam(req, "id", "je-1")
	rec := httptest.NewRecorder()

	h.Post(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestJournalHandler_UpdateLines_Posted(t *testing.T) {
	h := NewJournalHandler(&journalServiceStub{
		updateLinesFn: func(ctx context.Context, entryID string, lines []usecase.LineInput) (*domain.JournalEntry, error) {
			return nil, domain.ErrEntryPosted
		},
	})

	body, _ := json.Marshal(dto.UpdateEntryLinesRequest{
		Lines: []dto.LineItem{{AccountID: "acc-cash", Debit: decimal.NewFromInt(50)}},
	})

	req := httptest.NewRequest(http.MethodPut, "/journal-entries/je-1/lines", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "je-1")
	rec := httptest.NewRecorder()

	h.UpdateLines(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestJournalHandler_Balance(t *testing.T) {
	h := NewJournalHandler(&journalServiceStub{
		balanceFn: func(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
			if accountID != "acc-1" {
				t.Fatalf("expected account acc-1, got %s", accountID)
			}
			if asOf == nil || asOf.Year() != 2026 {
				t.Fatalf("expected as_of to be forwarded, got %v", asOf)
			}
			return decimal.NewFromInt(1500), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance?as_of=2026-03-31T00:00:00Z", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	h.Balance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Balance.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("expected balance 1500, got %s", resp.Balance)
	}
}

func TestJournalHandler_Balance_BadAsOf(t *testing.T) {
	h := NewJournalHandler(&journalServiceStub{
		balanceFn: func(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
			t.Fatal("GetAccountBalance should not be called for malformed as_of")
			return decimal.Zero, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance?as_of=tomorrow", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	h.Balance(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestJournalHandler_Consistency(t *testing.T) {
	h := NewJournalHandler(&journalServiceStub{
		consistencyFn: func(ctx context.Context) (bool, error) {
			return true, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/reports/consistency", nil)
	rec := httptest.NewRecorder()

	h.Consistency(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestJournalHandler_Consistency_Broken(t *testing.T) {
	h := NewJournalHandler(&journalServiceStub{
		consistencyFn: func(ctx context.Context) (bool, error) {
			return false, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/reports/consistency", nil)
	rec := httptest.NewRecorder()

	h.Consistency(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp dto.ConsistencyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Consistent {
		t.Fatal("expected consistent=false")
	}
}
