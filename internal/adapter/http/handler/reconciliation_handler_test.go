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

type reconciliationServiceStub struct {
	importFn        func(ctx context.Context, input usecase.ImportStatementInput) (*domain.BankStatement, error)
	getFn           func(ctx context.Context, id string) (*domain.BankStatement, error)
	listFn          func(ctx context.Context, input usecase.ListStatementsInput) ([]*domain.BankStatement, error)
	autoMatchFn     func(ctx context.Context, statementID string) (*domain.MatchReport, error)
	createPaymentFn func(ctx context.Context, transactionID string) (*domain.Payment, error)
	ignoreFn        func(ctx context.Context, transactionID string) error
	unmatchFn       func(ctx context.Context, transactionID string) error
}

func (s *reconciliationServiceStub) ImportStatement(ctx context.Context, input usecase.ImportStatementInput) (*domain.BankStatement, error) {
	return s.importFn(ctx, input)
}

func (s *reconciliationServiceStub) GetStatement(ctx context.Context, id string) (*domain.BankStatement, error) {
	return s.getFn(ctx, id)
}

func (s *reconciliationServiceStub) ListStatements(ctx context.Context, input usecase.ListStatementsInput) ([]*domain.BankStatement, error) {
	return s.listFn(ctx, input)
}

func (s *reconciliationServiceStub) AutoMatch(ctx context.Context, statementID string) (*domain.MatchReport, error) {
	return s.autoMatchFn(ctx, statementID)
}

func (s *reconciliationServiceStub) CreatePaymentFromTransaction(ctx context.Context, transactionID string) (*domain.Payment, error) {
	return s.createPaymentFn(ctx, transactionID)
}

func (s *reconciliationServiceStub) IgnoreTransaction(ctx context.Context, transactionID string) error {
	return s.ignoreFn(ctx, transactionID)
}

func (s *reconciliationServiceStub) DisputeOrUnmatch(ctx context.Context, transactionID string) error {
	return s.unmatchFn(ctx, transactionID)
}

func TestReconciliationHandler_Import_Success(t *testing.T) {
	statement := &domain.BankStatement{
		ID:              "st-1",
		AccountNumber:   "160-0000000012345-78",
		StatementNumber: "2026-41",
		Status:          domain.StatementStatusImported,
	}

	var captured usecase.ImportStatementInput
	h := NewReconciliationHandler(&reconciliationServiceStub{
		importFn: func(ctx context.Context, input usecase.ImportStatementInput) (*domain.BankStatement, error) {
			captured = input
			return statement, nil
		},
	})

	body, _ := json.Marshal(dto.ImportStatementRequest{
		AccountNumber:   "160-0000000012345-78",
		StatementNumber: "2026-41",
		StatementDate:   time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Transactions: []dto.TransactionItem{
			{
				TransactionDate: time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
				Amount:          decimal.NewFromInt(850),
				Type:            string(domain.TransactionTypeCredit),
				PartnerName:     "Petrović Gradnja d.o.o.",
				Reference:       "INV-100",
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/statements", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Import(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(captured.Transactions) != 1 || captured.Transactions[0].Reference != "INV-100" {
		t.Fatalf("expected transactions to match request, got %+v", captured.Transactions)
	}
}

func TestReconciliationHandler_Import_Duplicate(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		importFn: func(ctx context.Context, input usecase.ImportStatementInput) (*domain.BankStatement, error) {
			return nil, domain.ErrDuplicateStatement
		},
	})

	body, _ := json.Marshal(dto.ImportStatementRequest{
		AccountNumber:   "160-0000000012345-78",
		StatementNumber: "2026-41",
	})

	req := httptest.NewRequest(http.MethodPost, "/statements", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Import(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestReconciliationHandler_AutoMatch(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		autoMatchFn: func(ctx context.Context, statementID string) (*domain.MatchReport, error) {
			if statementID != "st-1" {
				t.Fatalf("expected statement st-1, got %s", statementID)
			}
			return &domain.MatchReport{StatementID: "st-1", Matched: 3, Unmatched: 1, Ambiguous: 1}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/statements/st-1/auto-match", nil)
	req = setChiURLParam(req, "id", "st-1")
	rec := httptest.NewRecorder()

	h.AutoMatch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.MatchReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Matched != 3 || resp.Ambiguous != 1 {
		t.Fatalf("unexpected report: %+v", resp)
	}
}

func TestReconciliationHandler_CreatePayment_Success(t *testing.T) {
	payment := &domain.Payment{
		ID:            "pay-1",
		TransactionID: "tx-1",
		InvoiceID:     "inv-1",
		Amount:        decimal.NewFromInt(850),
	}

	h := NewReconciliationHandler(&reconciliationServiceStub{
		createPaymentFn: func(ctx context.Context, transactionID string) (*domain.Payment, error) {
			return payment, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/tx-1/payment", nil)
	req = setChiURLParam(req, "id", "tx-1")
	rec := httptest.NewRecorder()

	h.CreatePayment(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.PaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.InvoiceID != "inv-1" || !resp.Amount.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("unexpected payment: %+v", resp)
	}
}

func TestReconciliationHandler_CreatePayment_Duplicate(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		createPaymentFn: func(ctx context.Context, transactionID string) (*domain.Payment, error) {
			return nil, domain.ErrPaymentExists
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/tx-1/payment", nil)
	req = setChiURLParam(req, "id", "tx-1")
	rec := httptest.NewRecorder()

	h.CreatePayment(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestReconciliationHandler_CreatePayment_NotMatched(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		createPaymentFn: func(ctx context.Context, transactionID string) (*domain.Payment, error) {
			return nil, domain.ErrTransactionNotMatched
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/tx-1/payment", nil)
	req = setChiURLParam(req, "id", "tx-1")
	rec := httptest.NewRecorder()

	h.CreatePayment(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReconciliationHandler_Unmatch_PaymentBooked(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		unmatchFn: func(ctx context.Context, transactionID string) error {
			return domain.ErrPaymentBooked
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/tx-1/unmatch", nil)
	req = setChiURLParam(req, "id", "tx-1")
	rec := httptest.NewRecorder()

	h.Unmatch(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestReconciliationHandler_Ignore(t *testing.T) {
	var got string
	h := NewReconciliationHandler(&reconciliationServiceStub{
		ignoreFn: func(ctx context.Context, transactionID string) error {
			got = transactionID
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/tx-1/ignore", nil)
	req = setChiURLParam(req, "id", "tx-1")
	rec := httptest.NewRecorder()

	h.Ignore(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != "tx-1" {
		t.Fatalf("expected transaction tx-1, got %s", got)
	}
}
