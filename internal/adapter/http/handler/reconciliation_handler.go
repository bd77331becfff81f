package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bilans/bilans/internal/adapter/http/dto"
	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/usecase"
)

// ReconciliationService defines the behavior needed by
// ReconciliationHandler.
type ReconciliationService interface {
	ImportStatement(ctx context.Context, input usecase.ImportStatementInput) (*domain.BankStatement, error)
	GetStatement(ctx context.Context, id string) (*domain.BankStatement, error)
	ListStatements(ctx context.Context, input usecase.ListStatementsInput) ([]*domain.BankStatement, error)
	AutoMatch(ctx context.Context, statementID string) (*domain.MatchReport, error)
	CreatePaymentFromTransaction(ctx context.Context, transactionID string) (*domain.Payment, error)
	IgnoreTransaction(ctx context.Context, transactionID string) error
	DisputeOrUnmatch(ctx context.Context, transactionID string) error
}

// ReconciliationHandler handles bank reconciliation HTTP requests.
type ReconciliationHandler struct {
	reconUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC}
}

// Import imports a bank statement with its transactions.
func (h *ReconciliationHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	statement, err := h.reconUC.ImportStatement(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to import statement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.StatementFromDomain(statement))
}

// Get retrieves a statement with its transactions.
func (h *ReconciliationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing statement ID", "")
		return
	}

	statement, err := h.reconUC.GetStatement(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get statement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(statement))
}

// List lists statements.
func (h *ReconciliationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	statements, err := h.reconUC.ListStatements(r.Context(), usecase.ListStatementsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list statements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListStatementsResponse{
		Statements: dto.StatementsFromDomain(statements),
		Total:      int64(len(statements)),
	})
}

// AutoMatch runs the matching algorithm over a statement's unmatched
// transactions.
func (h *ReconciliationHandler) AutoMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing statement ID", "")
		return
	}

	report, err := h.reconUC.AutoMatch(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to auto-match statement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MatchReportFromDomain(report))
}

// CreatePayment books a payment from a matched transaction.
func (h *ReconciliationHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	payment, err := h.reconUC.CreatePaymentFromTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}

// Ignore marks an unmatched transaction as not relevant for matching.
func (h *ReconciliationHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	if err := h.reconUC.IgnoreTransaction(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to ignore transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
}

// Unmatch reverts a transaction to UNMATCHED unless a payment has
// already been booked from it.
func (h *ReconciliationHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	if err := h.reconUC.DisputeOrUnmatch(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to unmatch transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unmatched"})
}
