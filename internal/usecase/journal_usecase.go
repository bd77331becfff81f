package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/infrastructure/metrics"
)

// JournalUseCase handles journal entry business logic.
type JournalUseCase struct {
	txManager   TransactionManager
	journalRepo JournalRepository
	accountRepo AccountRepository
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewJournalUseCase creates a new JournalUseCase. retrier and m may
// be nil.
func NewJournalUseCase(
	txManager TransactionManager,
	journalRepo JournalRepository,
	accountRepo AccountRepository,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
) *JournalUseCase {
	return &JournalUseCase{
		txManager:   txManager,
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		idGen:       idGen,
		retrier:     retrier,
		metrics:     m,
	}
}

// LineInput is one debit/credit line of a new or edited entry.
type LineInput struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// CreateEntryInput represents input for creating a journal entry.
type CreateEntryInput struct {
	EntryDate   time.Time
	Description string
	Reference   string
	Type        domain.EntryType
	Lines       []LineInput
}

// CreateEntry persists a DRAFT entry. Unbalanced drafts are allowed
// so operators can build an entry incrementally; posting is where
// balance is enforced.
func (uc *JournalUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.JournalEntry, error) {
	if input.Type == "" {
		input.Type = domain.EntryTypeManual
	}
	if !input.Type.Valid() {
		return nil, domain.ErrInvalidEntryType
	}

	now := time.Now().UTC()

	entry := &domain.JournalEntry{
		ID:          uc.idGen.Generate(),
		EntryDate:   input.EntryDate,
		Description: input.Description,
		Reference:   input.Reference,
		Type:        input.Type,
		Status:      domain.EntryStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	lines, err := uc.buildLines(ctx, entry.ID, input.Lines)
	if err != nil {
		return nil, err
	}

	entry.Lines = lines
	entry.ComputeTotals()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.journalRepo.CreateEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesCreated.Inc()
	}

	return entry, nil
}

// UpdateEntryLines replaces the lines of a DRAFT entry. Posted
// entries are immutable; corrections happen via offsetting entries.
func (uc *JournalUseCase) UpdateEntryLines(ctx context.Context, entryID string, lines []LineInput) (*domain.JournalEntry, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := uc.journalRepo.GetEntryTx(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	if entry.Status == domain.EntryStatusPosted {
		return nil, domain.ErrEntryPosted
	}

	newLines, err := uc.buildLines(ctx, entry.ID, lines)
	if err != nil {
		return nil, err
	}

	entry.Lines = newLines
	entry.ComputeTotals()
	entry.UpdatedAt = time.Now().UTC()

	if err := uc.journalRepo.ReplaceLines(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// PostEntry transitions an entry DRAFT -> POSTED. All preconditions
// are re-verified inside one transaction, and the transition itself
// is a conditional update whose affected-row count decides the
// winner, so concurrent posts yield exactly one success. Contended
// posts can abort with a transient deadlock or serialization error,
// in which case the whole transaction is retried.
func (uc *JournalUseCase) PostEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := withRetry(ctx, uc.retrier, func() error {
		var err error
		entry, err = uc.postEntry(ctx, entryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (uc *JournalUseCase) postEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := uc.journalRepo.GetEntryTx(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	if err := entry.ValidateForPosting(); err != nil {
		return nil, err
	}

	accounts, err := uc.accountRepo.GetByIDs(ctx, tx, entry.AccountIDs())
	if err != nil {
		return nil, err
	}
	if len(accounts) != len(entry.AccountIDs()) {
		return nil, domain.ErrAccountNotFound
	}
	for _, a := range accounts {
		if !a.IsActive {
			return nil, domain.ErrAccountInactive
		}
	}

	postedAt := time.Now().UTC()

	posted, err := uc.journalRepo.MarkPosted(ctx, tx, entry.ID, entry.TotalDebit, entry.TotalCredit, postedAt)
	if err != nil {
		return nil, err
	}
	if !posted {
		if uc.metrics != nil {
			uc.metrics.PostConflicts.Inc()
		}
		return nil, domain.ErrAlreadyPosted
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	entry.Status = domain.EntryStatusPosted
	entry.PostedAt = &postedAt
	entry.UpdatedAt = postedAt

	if uc.metrics != nil {
		uc.metrics.EntriesPosted.Inc()
	}

	return entry, nil
}

// GetEntry retrieves a journal entry with its lines.
func (uc *JournalUseCase) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return uc.journalRepo.GetEntry(ctx, id)
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	Limit  int
	Offset int
}

// ListEntries lists journal entries with pagination.
func (uc *JournalUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.JournalEntry, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.journalRepo.ListEntries(ctx, input.Limit, input.Offset)
}

// GetAccountBalance sums posted lines only, applying the account's
// sign convention. Draft lines never contribute.
func (uc *JournalUseCase) GetAccountBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	debit, credit, err := uc.journalRepo.AccountSums(ctx, account.ID, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.SignedBalance(account.NormalSide, debit, credit), nil
}

// GetLedger returns the date-ordered posted lines of an account with
// a running balance. Re-querying reproduces the same sequence unless
// new entries were posted in between.
func (uc *JournalUseCase) GetLedger(ctx context.Context, accountID string) ([]*domain.LedgerLine, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	lines, err := uc.journalRepo.PostedLinesByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	running := decimal.Zero
	for _, l := range lines {
		running = running.Add(domain.SignedBalance(account.NormalSide, l.Debit, l.Credit))
		l.Balance = running
	}

	return lines, nil
}

// CheckConsistency verifies that the sum of all posted debits equals
// the sum of all posted credits across the whole ledger.
func (uc *JournalUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	totalDebit, totalCredit, err := uc.journalRepo.ConsistencySums(ctx)
	if err != nil {
		return false, err
	}

	return totalDebit.Equal(totalCredit), nil
}

func (uc *JournalUseCase) buildLines(ctx context.Context, entryID string, inputs []LineInput) ([]domain.JournalLine, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrNoLines
	}

	lines := make([]domain.JournalLine, 0, len(inputs))
	for _, in := range inputs {
		line := domain.JournalLine{
			ID:        uc.idGen.Generate(),
			EntryID:   entryID,
			AccountID: in.AccountID,
			Debit:     in.Debit,
			Credit:    in.Credit,
		}

		if err := line.Validate(); err != nil {
			return nil, err
		}

		if _, err := uc.accountRepo.GetByID(ctx, in.AccountID); err != nil {
			return nil, err
		}

		lines = append(lines, line)
	}

	return lines, nil
}
