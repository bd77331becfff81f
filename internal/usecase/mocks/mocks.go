package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/usecase"
)

// MockTransaction is a no-op usecase.Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTxManager is a mock implementation of TransactionManager.
type MockTxManager struct {
	BeginFunc         func(ctx context.Context) (usecase.Transaction, error)
	BeginSnapshotFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

func (m *MockTxManager) BeginSnapshot(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginSnapshotFunc != nil {
		return m.BeginSnapshotFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator generates sequential IDs unless overridden.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator { return &MockIDGenerator{} }

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + itoa(m.counter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

// MockAccountRepository is a mock implementation of AccountRepository
// backed by an in-memory map.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc      func(ctx context.Context, account *domain.Account) error
	CreateBatchFunc func(ctx context.Context, tx usecase.Transaction, accounts []*domain.Account) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Account, error)
	GetByCodeFunc   func(ctx context.Context, code string) (*domain.Account, error)
	GetByIDsFunc    func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	ListFunc        func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListAllFunc     func(ctx context.Context) ([]*domain.Account, error)
	CountFunc       func(ctx context.Context) (int64, error)
	SetActiveFunc   func(ctx context.Context, id string, active bool, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

// Seed inserts accounts directly into the backing map.
func (m *MockAccountRepository) Seed(accounts ...*domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, accounts []*domain.Account) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, accounts)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, code string) (*domain.Account, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDs(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return m.ListAll(ctx)
}

func (m *MockAccountRepository) ListAll(ctx context.Context) ([]*domain.Account, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (m *MockAccountRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.accounts)), nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.IsActive = active
	a.UpdatedAt = updatedAt
	return nil
}

// MockJournalRepository is a mock implementation of JournalRepository
// backed by an in-memory map.
type MockJournalRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.JournalEntry

	CreateEntryFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
	GetEntryFunc           func(ctx context.Context, id string) (*domain.JournalEntry, error)
	GetEntryTxFunc         func(ctx context.Context, tx usecase.Transaction, id string) (*domain.JournalEntry, error)
	ReplaceLinesFunc       func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
	MarkPostedFunc         func(ctx context.Context, tx usecase.Transaction, entryID string, totalDebit, totalCredit decimal.Decimal, postedAt time.Time) (bool, error)
	ListEntriesFunc        func(ctx context.Context, limit, offset int) ([]*domain.JournalEntry, error)
	HasLinesForAccountFunc func(ctx context.Context, accountID string) (bool, error)
	AccountSumsFunc        func(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error)
	PostedLinesFunc        func(ctx context.Context, accountID string) ([]*domain.LedgerLine, error)
	PostedBalancesFunc     func(ctx context.Context, tx usecase.Transaction, asOf *time.Time) ([]domain.AccountBalance, error)
	ConsistencySumsFunc    func(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{entries: make(map[string]*domain.JournalEntry)}
}

// Seed inserts entries directly into the backing map.
func (m *MockJournalRepository) Seed(entries ...*domain.JournalEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.ID] = e
	}
}

func (m *MockJournalRepository) CreateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.CreateEntryFunc != nil {
		return m.CreateEntryFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockJournalRepository) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	if m.GetEntryFunc != nil {
		return m.GetEntryFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockJournalRepository) GetEntryTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.JournalEntry, error) {
	if m.GetEntryTxFunc != nil {
		return m.GetEntryTxFunc(ctx, tx, id)
	}
	return m.GetEntry(ctx, id)
}

func (m *MockJournalRepository) ReplaceLines(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.ReplaceLinesFunc != nil {
		return m.ReplaceLinesFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockJournalRepository) MarkPosted(ctx context.Context, tx usecase.Transaction, entryID string, totalDebit, totalCredit decimal.Decimal, postedAt time.Time) (bool, error) {
	if m.MarkPostedFunc != nil {
		return m.MarkPostedFunc(ctx, tx, entryID, totalDebit, totalCredit, postedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[entryID]
	if !ok || e.Status != domain.EntryStatusDraft {
		return false, nil
	}
	e.Status = domain.EntryStatusPosted
	e.TotalDebit = totalDebit
	e.TotalCredit = totalCredit
	e.PostedAt = &postedAt
	return true, nil
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, limit, offset int) ([]*domain.JournalEntry, error) {
	if m.ListEntriesFunc != nil {
		return m.ListEntriesFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.JournalEntry
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	return entries, nil
}

func (m *MockJournalRepository) HasLinesForAccount(ctx context.Context, accountID string) (bool, error) {
	if m.HasLinesForAccountFunc != nil {
		return m.HasLinesForAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *MockJournalRepository) AccountSums(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	if m.AccountSumsFunc != nil {
		return m.AccountSumsFunc(ctx, accountID, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range m.entries {
		if e.Status != domain.EntryStatusPosted {
			continue
		}
		if asOf != nil && e.EntryDate.After(*asOf) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				debit = debit.Add(l.Debit)
				credit = credit.Add(l.Credit)
			}
		}
	}
	return debit, credit, nil
}

func (m *MockJournalRepository) PostedLinesByAccount(ctx context.Context, accountID string) ([]*domain.LedgerLine, error) {
	if m.PostedLinesFunc != nil {
		return m.PostedLinesFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var lines []*domain.LedgerLine
	for _, e := range m.entries {
		if e.Status != domain.EntryStatusPosted {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				lines = append(lines, &domain.LedgerLine{
					EntryID:     e.ID,
					EntryDate:   e.EntryDate,
					Description: e.Description,
					Reference:   e.Reference,
					Debit:       l.Debit,
					Credit:      l.Credit,
				})
			}
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].EntryDate.Equal(lines[j].EntryDate) {
			return lines[i].EntryID < lines[j].EntryID
		}
		return lines[i].EntryDate.Before(lines[j].EntryDate)
	})
	return lines, nil
}

func (m *MockJournalRepository) PostedBalances(ctx context.Context, tx usecase.Transaction, asOf *time.Time) ([]domain.AccountBalance, error) {
	if m.PostedBalancesFunc != nil {
		return m.PostedBalancesFunc(ctx, tx, asOf)
	}
	return nil, nil
}

func (m *MockJournalRepository) ConsistencySums(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	if m.ConsistencySumsFunc != nil {
		return m.ConsistencySumsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range m.entries {
		if e.Status != domain.EntryStatusPosted {
			continue
		}
		for _, l := range e.Lines {
			debit = debit.Add(l.Debit)
			credit = credit.Add(l.Credit)
		}
	}
	return debit, credit, nil
}

// MockStatementRepository is a mock implementation of
// StatementRepository backed by in-memory maps.
type MockStatementRepository struct {
	mu           sync.RWMutex
	statements   map[string]*domain.BankStatement
	transactions map[string]*domain.BankTransaction

	CreateStatementFunc         func(ctx context.Context, tx usecase.Transaction, statement *domain.BankStatement) error
	GetStatementFunc            func(ctx context.Context, id string) (*domain.BankStatement, error)
	StatementExistsFunc         func(ctx context.Context, accountNumber, statementNumber string) (bool, error)
	ListStatementsFunc          func(ctx context.Context, limit, offset int) ([]*domain.BankStatement, error)
	GetTransactionFunc          func(ctx context.Context, id string) (*domain.BankTransaction, error)
	GetTransactionForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.BankTransaction, error)
	MarkMatchedFunc             func(ctx context.Context, tx usecase.Transaction, transactionID, invoiceID string, updatedAt time.Time) (bool, error)
	MarkIgnoredFunc             func(ctx context.Context, tx usecase.Transaction, transactionID string, updatedAt time.Time) (bool, error)
	UnmatchFunc                 func(ctx context.Context, tx usecase.Transaction, transactionID string, updatedAt time.Time) (bool, error)
	CountOpenFunc               func(ctx context.Context, tx usecase.Transaction, statementID string) (int64, error)
	SetStatementStatusFunc      func(ctx context.Context, tx usecase.Transaction, statementID string, status domain.StatementStatus, updatedAt time.Time) error
}

func NewMockStatementRepository() *MockStatementRepository {
	return &MockStatementRepository{
		statements:   make(map[string]*domain.BankStatement),
		transactions: make(map[string]*domain.BankTransaction),
	}
}

func (m *MockStatementRepository) CreateStatement(ctx context.Context, tx usecase.Transaction, statement *domain.BankStatement) error {
	if m.CreateStatementFunc != nil {
		return m.CreateStatementFunc(ctx, tx, statement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements[statement.ID] = statement
	for i := range statement.Transactions {
		t := statement.Transactions[i]
		m.transactions[t.ID] = &t
	}
	return nil
}

func (m *MockStatementRepository) GetStatement(ctx context.Context, id string) (*domain.BankStatement, error) {
	if m.GetStatementFunc != nil {
		return m.GetStatementFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.statements[id]
	if !ok {
		return nil, domain.ErrStatementNotFound
	}
	// Rebuild the child slice from the live transaction records.
	copied := *s
	copied.Transactions = nil
	for i := range s.Transactions {
		if t, ok := m.transactions[s.Transactions[i].ID]; ok {
			copied.Transactions = append(copied.Transactions, *t)
		}
	}
	return &copied, nil
}

func (m *MockStatementRepository) StatementExists(ctx context.Context, accountNumber, statementNumber string) (bool, error) {
	if m.StatementExistsFunc != nil {
		return m.StatementExistsFunc(ctx, accountNumber, statementNumber)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.statements {
		if s.AccountNumber == accountNumber && s.StatementNumber == statementNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStatementRepository) ListStatements(ctx context.Context, limit, offset int) ([]*domain.BankStatement, error) {
	if m.ListStatementsFunc != nil {
		return m.ListStatementsFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var statements []*domain.BankStatement
	for _, s := range m.statements {
		statements = append(statements, s)
	}
	return statements, nil
}

func (m *MockStatementRepository) GetTransaction(ctx context.Context, id string) (*domain.BankTransaction, error) {
	if m.GetTransactionFunc != nil {
		return m.GetTransactionFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockStatementRepository) GetTransactionForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.BankTransaction, error) {
	if m.GetTransactionForUpdateFunc != nil {
		return m.GetTransactionForUpdateFunc(ctx, tx, id)
	}
	return m.GetTransaction(ctx, id)
}

func (m *MockStatementRepository) MarkMatched(ctx context.Context, tx usecase.Transaction, transactionID, invoiceID string, updatedAt time.Time) (bool, error) {
	if m.MarkMatchedFunc != nil {
		return m.MarkMatchedFunc(ctx, tx, transactionID, invoiceID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[transactionID]
	if !ok || t.MatchStatus != domain.MatchStatusUnmatched {
		return false, nil
	}
	t.MatchStatus = domain.MatchStatusMatched
	t.MatchedInvoiceID = &invoiceID
	t.UpdatedAt = updatedAt
	return true, nil
}

func (m *MockStatementRepository) MarkIgnored(ctx context.Context, tx usecase.Transaction, transactionID string, updatedAt time.Time) (bool, error) {
	if m.MarkIgnoredFunc != nil {
		return m.MarkIgnoredFunc(ctx, tx, transactionID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[transactionID]
	if !ok || t.MatchStatus != domain.MatchStatusUnmatched {
		return false, nil
	}
	t.MatchStatus = domain.MatchStatusIgnored
	t.UpdatedAt = updatedAt
	return true, nil
}

func (m *MockStatementRepository) Unmatch(ctx context.Context, tx usecase.Transaction, transactionID string, updatedAt time.Time) (bool, error) {
	if m.UnmatchFunc != nil {
		return m.UnmatchFunc(ctx, tx, transactionID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[transactionID]
	if !ok || t.MatchStatus == domain.MatchStatusUnmatched {
		return false, nil
	}
	t.MatchStatus = domain.MatchStatusUnmatched
	t.MatchedInvoiceID = nil
	t.UpdatedAt = updatedAt
	return true, nil
}

func (m *MockStatementRepository) CountOpenTransactions(ctx context.Context, tx usecase.Transaction, statementID string) (int64, error) {
	if m.CountOpenFunc != nil {
		return m.CountOpenFunc(ctx, tx, statementID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var open int64
	for _, t := range m.transactions {
		if t.StatementID == statementID && t.MatchStatus == domain.MatchStatusUnmatched {
			open++
		}
	}
	return open, nil
}

func (m *MockStatementRepository) SetStatementStatus(ctx context.Context, tx usecase.Transaction, statementID string, status domain.StatementStatus, updatedAt time.Time) error {
	if m.SetStatementStatusFunc != nil {
		return m.SetStatementStatusFunc(ctx, tx, statementID, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.statements[statementID]
	if !ok {
		return domain.ErrStatementNotFound
	}
	s.Status = status
	s.UpdatedAt = updatedAt
	return nil
}

// MockCache is an in-memory usecase.Cache.
type MockCache struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{items: make(map[string][]byte)}
}

func (c *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.items[key]; ok {
		return v, nil
	}
	return nil, nil
}

func (c *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *MockCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}
