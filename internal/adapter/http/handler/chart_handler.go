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

// ChartService defines the behavior needed by ChartHandler.
type ChartService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	GetAccountTree(ctx context.Context) ([]*domain.AccountNode, error)
	DeactivateAccount(ctx context.Context, id string) error
	InitializeDefaultChart(ctx context.Context) (int, error)
}

// ChartHandler handles chart-of-accounts HTTP requests.
type ChartHandler struct {
	chartUC ChartService
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(chartUC ChartService) *ChartHandler {
	return &ChartHandler{chartUC: chartUC}
}

// Create creates a new account.
func (h *ChartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.chartUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *ChartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.chartUC.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts.
func (h *ChartHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.chartUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Tree returns the full account hierarchy.
func (h *ChartHandler) Tree(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.chartUC.GetAccountTree(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build account tree", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountTreeResponse{
		Roots: dto.AccountTreeFromDomain(nodes),
	})
}

// Deactivate marks an unused account inactive.
func (h *ChartHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	if err := h.chartUC.DeactivateAccount(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to deactivate account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// InitDefault seeds the default chart of accounts.
func (h *ChartHandler) InitDefault(w http.ResponseWriter, r *http.Request) {
	created, err := h.chartUC.InitializeDefaultChart(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to initialize chart", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}
