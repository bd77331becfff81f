package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bilans/bilans/internal/adapter/http/handler"
	"github.com/bilans/bilans/internal/adapter/http/middleware"
	"github.com/bilans/bilans/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ChartHandler          *handler.ChartHandler
	JournalHandler        *handler.JournalHandler
	ReportHandler         *handler.ReportHandler
	ReconciliationHandler *handler.ReconciliationHandler
	InvoiceHandler        *handler.InvoiceHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Logger)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Chart of accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.ChartHandler.Create)
			r.Get("/", cfg.ChartHandler.List)
			r.Post("/init", cfg.ChartHandler.InitDefault)
			r.Get("/tree", cfg.ChartHandler.Tree)
			r.Get("/{id}", cfg.ChartHandler.Get)
			r.Delete("/{id}", cfg.ChartHandler.Deactivate)
			r.Get("/{id}/balance", cfg.JournalHandler.Balance)
			r.Get("/{id}/ledger", cfg.JournalHandler.Ledger)
		})

		// Journal entries
		r.Route("/journal-entries", func(r chi.Router) {
			r.Post("/", cfg.JournalHandler.Create)
			r.Get("/", cfg.JournalHandler.List)
			r.Get("/{id}", cfg.JournalHandler.Get)
			r.Put("/{id}/lines", cfg.JournalHandler.UpdateLines)
			r.Post("/{id}/post", cfg.JournalHandler.Post)
		})

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/balance-sheet", cfg.ReportHandler.BalanceSheet)
			r.Get("/trial-balance", cfg.ReportHandler.TrialBalance)
			r.Get("/consistency", cfg.JournalHandler.Consistency)
		})

		// Bank statements
		r.Route("/statements", func(r chi.Router) {
			r.Post("/", cfg.ReconciliationHandler.Import)
			r.Get("/", cfg.ReconciliationHandler.List)
			r.Get("/{id}", cfg.ReconciliationHandler.Get)
			r.Post("/{id}/auto-match", cfg.ReconciliationHandler.AutoMatch)
		})

		// Bank transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/{id}/payment", cfg.ReconciliationHandler.CreatePayment)
			r.Post("/{id}/ignore", cfg.ReconciliationHandler.Ignore)
			r.Post("/{id}/unmatch", cfg.ReconciliationHandler.Unmatch)
		})

		// Invoices
		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", cfg.InvoiceHandler.Register)
			r.Get("/open", cfg.InvoiceHandler.ListOpen)
			r.Get("/{id}", cfg.InvoiceHandler.Get)
			r.Get("/{id}/payments", cfg.InvoiceHandler.ListPayments)
		})
	})

	return r
}
