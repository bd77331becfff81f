package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/domain"
)

// AccountRepository defines data access for the chart of accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateBatch(ctx context.Context, tx Transaction, accounts []*domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByCode(ctx context.Context, code string) (*domain.Account, error)
	GetByIDs(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListAll(ctx context.Context) ([]*domain.Account, error)
	Count(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
}

// JournalRepository defines data access for journal entries and lines.
type JournalRepository interface {
	CreateEntry(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error)
	GetEntryTx(ctx context.Context, tx Transaction, id string) (*domain.JournalEntry, error)
	ReplaceLines(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	// MarkPosted performs the conditional DRAFT -> POSTED update and
	// reports whether this call won the transition.
	MarkPosted(ctx context.Context, tx Transaction, entryID string, totalDebit, totalCredit decimal.Decimal, postedAt time.Time) (bool, error)
	ListEntries(ctx context.Context, limit, offset int) ([]*domain.JournalEntry, error)
	HasLinesForAccount(ctx context.Context, accountID string) (bool, error)
	AccountSums(ctx context.Context, accountID string, asOf *time.Time) (debit, credit decimal.Decimal, err error)
	PostedLinesByAccount(ctx context.Context, accountID string) ([]*domain.LedgerLine, error)
	PostedBalances(ctx context.Context, tx Transaction, asOf *time.Time) ([]domain.AccountBalance, error)
	ConsistencySums(ctx context.Context) (totalDebit, totalCredit decimal.Decimal, err error)
}

// StatementRepository defines data access for bank statements and
// their transactions.
type StatementRepository interface {
	CreateStatement(ctx context.Context, tx Transaction, statement *domain.BankStatement) error
	GetStatement(ctx context.Context, id string) (*domain.BankStatement, error)
	StatementExists(ctx context.Context, accountNumber, statementNumber string) (bool, error)
	ListStatements(ctx context.Context, limit, offset int) ([]*domain.BankStatement, error)
	GetTransaction(ctx context.Context, id string) (*domain.BankTransaction, error)
	GetTransactionForUpdate(ctx context.Context, tx Transaction, id string) (*domain.BankTransaction, error)
	// MarkMatched flips UNMATCHED -> MATCHED conditionally and reports
	// whether the row was transitioned by this call.
	MarkMatched(ctx context.Context, tx Transaction, transactionID, invoiceID string, updatedAt time.Time) (bool, error)
	MarkIgnored(ctx context.Context, tx Transaction, transactionID string, updatedAt time.Time) (bool, error)
	Unmatch(ctx context.Context, tx Transaction, transactionID string, updatedAt time.Time) (bool, error)
	CountOpenTransactions(ctx context.Context, tx Transaction, statementID string) (int64, error)
	SetStatementStatus(ctx context.Context, tx Transaction, statementID string, status domain.StatementStatus, updatedAt time.Time) error
}

// InvoiceRepository defines access to the collaborator-owned invoice
// records the reconciliation engine reads and whose payment totals it
// maintains.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Invoice, error)
	FindOpenByNumber(ctx context.Context, invoiceNumber string) (*domain.Invoice, error)
	ListOpenByOutstanding(ctx context.Context, amount decimal.Decimal) ([]*domain.Invoice, error)
	ListOpen(ctx context.Context, limit, offset int) ([]*domain.Invoice, error)
	UpdatePaymentTotals(ctx context.Context, tx Transaction, id string, paidAmount decimal.Decimal, status domain.PaymentStatus, updatedAt time.Time) error
}

// PaymentRepository defines data access for payments derived from
// matched bank transactions.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	GetByTransaction(ctx context.Context, transactionID string) (*domain.Payment, error)
	ExistsForTransaction(ctx context.Context, tx Transaction, transactionID string) (bool, error)
	SumForInvoice(ctx context.Context, tx Transaction, invoiceID string) (decimal.Decimal, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.Payment, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
	// BeginSnapshot starts a read-only repeatable-read transaction so
	// report queries never observe a half-posted entry.
	BeginSnapshot(ctx context.Context) (Transaction, error)
}

// Retrier reruns an operation when it fails with a transient database
// error, such as a deadlock or serialization failure.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// withRetry runs op through r when a retrier is configured, directly
// otherwise.
func withRetry(ctx context.Context, r Retrier, op func() error) error {
	if r == nil {
		return op()
	}
	return r.Retry(ctx, op)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
