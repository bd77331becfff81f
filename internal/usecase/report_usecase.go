package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/infrastructure/metrics"
)

// ReportUseCase builds read-only financial reports over posted lines.
// It never mutates ledger state and always reads from a snapshot
// transaction so a half-posted entry is never observed.
type ReportUseCase struct {
	txManager   TransactionManager
	journalRepo JournalRepository
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewReportUseCase creates a new ReportUseCase. m may be nil.
func NewReportUseCase(
	txManager TransactionManager,
	journalRepo JournalRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		txManager:   txManager,
		journalRepo: journalRepo,
		metrics:     m,
		logger:      logger,
	}
}

// BuildBalanceSheet groups posted balances by account type as of the
// given time. The assets = liabilities + equity identity is asserted
// on every build; a violation means the posting invariants were
// broken somewhere and is treated as fatal, not as user error.
func (uc *ReportUseCase) BuildBalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error) {
	balances, err := uc.postedBalances(ctx, &asOf)
	if err != nil {
		return nil, err
	}

	sheet := &domain.BalanceSheet{
		AsOf:             asOf,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		CurrentEarnings:  decimal.Zero,
	}

	for _, b := range balances {
		switch b.Type {
		case domain.AccountTypeAsset:
			sheet.Assets = append(sheet.Assets, b)
			sheet.TotalAssets = sheet.TotalAssets.Add(b.Balance())
		case domain.AccountTypeLiability:
			sheet.Liabilities = append(sheet.Liabilities, b)
			sheet.TotalLiabilities = sheet.TotalLiabilities.Add(b.Balance())
		case domain.AccountTypeEquity:
			sheet.Equity = append(sheet.Equity, b)
			sheet.TotalEquity = sheet.TotalEquity.Add(b.Balance())
		case domain.AccountTypeRevenue:
			sheet.CurrentEarnings = sheet.CurrentEarnings.Add(b.Balance())
		case domain.AccountTypeExpense:
			sheet.CurrentEarnings = sheet.CurrentEarnings.Sub(b.Balance())
		}
	}

	// Income accounts are never closed here, so the period result
	// belongs to equity for the identity to hold.
	sheet.TotalEquity = sheet.TotalEquity.Add(sheet.CurrentEarnings)

	if !sheet.Balanced() {
		if uc.metrics != nil {
			uc.metrics.ConsistencyFailures.Inc()
		}
		uc.logger.Error().
			Str("total_assets", sheet.TotalAssets.String()).
			Str("total_liabilities", sheet.TotalLiabilities.String()).
			Str("total_equity", sheet.TotalEquity.String()).
			Msg("balance sheet identity violated, posting logic is defective")

		return nil, domain.ErrConsistency
	}

	if uc.metrics != nil {
		uc.metrics.ReportsBuilt.WithLabelValues("balance_sheet").Inc()
	}

	return sheet, nil
}

// BuildTrialBalance lists per-account posted debit/credit totals.
func (uc *ReportUseCase) BuildTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	balances, err := uc.postedBalances(ctx, &asOf)
	if err != nil {
		return nil, err
	}

	tb := &domain.TrialBalance{
		AsOf:        asOf,
		Rows:        balances,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, b := range balances {
		tb.TotalDebit = tb.TotalDebit.Add(b.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(b.Credit)
	}

	if uc.metrics != nil {
		uc.metrics.ReportsBuilt.WithLabelValues("trial_balance").Inc()
	}

	return tb, nil
}

func (uc *ReportUseCase) postedBalances(ctx context.Context, asOf *time.Time) ([]domain.AccountBalance, error) {
	tx, err := uc.txManager.BeginSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	balances, err := uc.journalRepo.PostedBalances(ctx, tx, asOf)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return balances, nil
}
