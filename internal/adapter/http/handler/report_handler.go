package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/bilans/bilans/internal/adapter/http/dto"
	"github.com/bilans/bilans/internal/domain"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	BuildBalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error)
	BuildTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error)
}

// ReportHandler handles financial report HTTP requests.
type ReportHandler struct {
	reportUC ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// BalanceSheet builds a balance sheet as of a point in time.
func (h *ReportHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseTimeQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of parameter", err.Error())
		return
	}
	if asOf == nil {
		now := time.Now().UTC()
		asOf = &now
	}

	sheet, err := h.reportUC.BuildBalanceSheet(r.Context(), *asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build balance sheet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceSheetFromDomain(sheet))
}

// TrialBalance builds a trial balance as of a point in time.
func (h *ReportHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseTimeQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of parameter", err.Error())
		return
	}
	if asOf == nil {
		now := time.Now().UTC()
		asOf = &now
	}

	tb, err := h.reportUC.BuildTrialBalance(r.Context(), *asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build trial balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromDomain(tb))
}
