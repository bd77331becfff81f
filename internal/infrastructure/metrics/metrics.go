package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Journal metrics
	EntriesCreated prometheus.Counter
	EntriesPosted  prometheus.Counter
	PostConflicts  prometheus.Counter

	// Reconciliation metrics
	StatementsImported  prometheus.Counter
	TransactionsMatched prometheus.Counter
	MatchesAmbiguous    prometheus.Counter
	PaymentsBooked      prometheus.Counter

	// Report metrics
	ConsistencyFailures prometheus.Counter
	ReportsBuilt        *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		EntriesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bilans_journal_entries_created_total",
			Help: "Total number of journal entries created as drafts",
		}),
		EntriesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bilans_journal_entries_posted_total",
			Help: "Total number of journal entries posted",
		}),
		PostConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bilans_journal_post_conflicts_total",
			Help: "Total number of lost posting races",
		}),
		StatementsImported: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bilans_bank_statements_imported_total",
			Help: "Total number of bank statements imported",
		}),
		TransactionsMatched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bilans_bank_transactions_matched_total",
			Help: "Total number of bank transactions auto-matched to invoices",
		}),
		MatchesAmbiguous: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bilans_bank_matches_ambiguous_total",
			Help: "Total number of transactions left for manual review due to ambiguity",
		}),
		PaymentsBooked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bilans_payments_booked_total",
			Help: "Total number of payments created from bank transactions",
		}),
		ConsistencyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bilans_consistency_failures_total",
			Help: "Total number of balance sheet identity violations detected",
		}),
		ReportsBuilt: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bilans_reports_built_total",
				Help: "Total number of financial reports built",
			},
			[]string{"report"},
		),
	}
}
