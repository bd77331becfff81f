package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	NormalSide string    `json:"normal_side"`
	ParentID   *string   `json:"parent_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:         a.ID,
		Code:       a.Code,
		Name:       a.Name,
		Type:       string(a.Type),
		NormalSide: string(a.NormalSide),
		ParentID:   a.ParentID,
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// AccountNodeResponse represents one node of the account hierarchy.
type AccountNodeResponse struct {
	Account  *AccountResponse       `json:"account"`
	Children []*AccountNodeResponse `json:"children,omitempty"`
}

// AccountTreeFromDomain converts the account forest to responses.
func AccountTreeFromDomain(nodes []*domain.AccountNode) []*AccountNodeResponse {
	result := make([]*AccountNodeResponse, len(nodes))
	for i, n := range nodes {
		result[i] = &AccountNodeResponse{
			Account:  AccountFromDomain(n.Account),
			Children: AccountTreeFromDomain(n.Children),
		}
	}
	return result
}

// LineResponse represents a journal line in API responses.
type LineResponse struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// EntryResponse represents a journal entry in API responses.
type EntryResponse struct {
	ID          string          `json:"id"`
	EntryDate   time.Time       `json:"entry_date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Lines       []LineResponse  `json:"lines"`
	PostedAt    *time.Time      `json:"posted_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.JournalEntry) *EntryResponse {
	lines := make([]LineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = LineResponse{
			ID:        l.ID,
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
		}
	}

	return &EntryResponse{
		ID:          e.ID,
		EntryDate:   e.EntryDate,
		Description: e.Description,
		Reference:   e.Reference,
		Type:        string(e.Type),
		Status:      string(e.Status),
		TotalDebit:  e.TotalDebit,
		TotalCredit: e.TotalCredit,
		Lines:       lines,
		PostedAt:    e.PostedAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.JournalEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// LedgerLineResponse represents one ledger row with a running balance.
type LedgerLineResponse struct {
	EntryID     string          `json:"entry_id"`
	EntryDate   time.Time       `json:"entry_date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// LedgerFromDomain converts ledger lines to responses.
func LedgerFromDomain(lines []*domain.LedgerLine) []*LedgerLineResponse {
	result := make([]*LedgerLineResponse, len(lines))
	for i, l := range lines {
		result[i] = &LedgerLineResponse{
			EntryID:     l.EntryID,
			EntryDate:   l.EntryDate,
			Description: l.Description,
			Reference:   l.Reference,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Balance:     l.Balance,
		}
	}
	return result
}

// BalanceResponse represents a single account balance.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	AsOf      *time.Time      `json:"as_of,omitempty"`
}

// AccountBalanceResponse represents one report row.
type AccountBalanceResponse struct {
	AccountID string          `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
}

func accountBalancesFromDomain(balances []domain.AccountBalance) []AccountBalanceResponse {
	result := make([]AccountBalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = AccountBalanceResponse{
			AccountID: b.AccountID,
			Code:      b.Code,
			Name:      b.Name,
			Type:      string(b.Type),
			Debit:     b.Debit,
			Credit:    b.Credit,
			Balance:   b.Balance(),
		}
	}
	return result
}

// BalanceSheetResponse represents a balance sheet in API responses.
type BalanceSheetResponse struct {
	AsOf             time.Time                `json:"as_of"`
	Assets           []AccountBalanceResponse `json:"assets"`
	Liabilities      []AccountBalanceResponse `json:"liabilities"`
	Equity           []AccountBalanceResponse `json:"equity"`
	TotalAssets      decimal.Decimal          `json:"total_assets"`
	TotalLiabilities decimal.Decimal          `json:"total_liabilities"`
	TotalEquity      decimal.Decimal          `json:"total_equity"`
	CurrentEarnings  decimal.Decimal          `json:"current_earnings"`
	Balanced         bool                     `json:"balanced"`
}

// BalanceSheetFromDomain converts a domain balance sheet to response.
func BalanceSheetFromDomain(s *domain.BalanceSheet) *BalanceSheetResponse {
	return &BalanceSheetResponse{
		AsOf:             s.AsOf,
		Assets:           accountBalancesFromDomain(s.Assets),
		Liabilities:      accountBalancesFromDomain(s.Liabilities),
		Equity:           accountBalancesFromDomain(s.Equity),
		TotalAssets:      s.TotalAssets,
		TotalLiabilities: s.TotalLiabilities,
		TotalEquity:      s.TotalEquity,
		CurrentEarnings:  s.CurrentEarnings,
		Balanced:         s.Balanced(),
	}
}

// TrialBalanceResponse represents a trial balance in API responses.
type TrialBalanceResponse struct {
	AsOf        time.Time                `json:"as_of"`
	Rows        []AccountBalanceResponse `json:"rows"`
	TotalDebit  decimal.Decimal          `json:"total_debit"`
	TotalCredit decimal.Decimal          `json:"total_credit"`
}

// TrialBalanceFromDomain converts a domain trial balance to response.
func TrialBalanceFromDomain(tb *domain.TrialBalance) *TrialBalanceResponse {
	return &TrialBalanceResponse{
		AsOf:        tb.AsOf,
		Rows:        accountBalancesFromDomain(tb.Rows),
		TotalDebit:  tb.TotalDebit,
		TotalCredit: tb.TotalCredit,
	}
}

// TransactionResponse represents a bank transaction in API responses.
type TransactionResponse struct {
	ID               string          `json:"id"`
	StatementID      string          `json:"statement_id"`
	TransactionDate  time.Time       `json:"transaction_date"`
	Amount           decimal.Decimal `json:"amount"`
	Type             string          `json:"type"`
	PartnerName      string          `json:"partner_name"`
	Description      string          `json:"description,omitempty"`
	Reference        string          `json:"reference,omitempty"`
	MatchStatus      string          `json:"match_status"`
	MatchedInvoiceID *string         `json:"matched_invoice_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.BankTransaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.ID,
		StatementID:      t.StatementID,
		TransactionDate:  t.TransactionDate,
		Amount:           t.Amount,
		Type:             string(t.Type),
		PartnerName:      t.PartnerName,
		Description:      t.Description,
		Reference:        t.Reference,
		MatchStatus:      string(t.MatchStatus),
		MatchedInvoiceID: t.MatchedInvoiceID,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// StatementResponse represents a bank statement in API responses.
type StatementResponse struct {
	ID              string                 `json:"id"`
	AccountNumber   string                 `json:"account_number"`
	StatementNumber string                 `json:"statement_number"`
	StatementDate   time.Time              `json:"statement_date"`
	FromDate        time.Time              `json:"from_date"`
	ToDate          time.Time              `json:"to_date"`
	OpeningBalance  decimal.Decimal        `json:"opening_balance"`
	ClosingBalance  decimal.Decimal        `json:"closing_balance"`
	TotalDebit      decimal.Decimal        `json:"total_debit"`
	TotalCredit     decimal.Decimal        `json:"total_credit"`
	Status          string                 `json:"status"`
	Transactions    []*TransactionResponse `json:"transactions,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// StatementFromDomain converts a domain statement to response.
func StatementFromDomain(s *domain.BankStatement) *StatementResponse {
	transactions := make([]*TransactionResponse, len(s.Transactions))
	for i := range s.Transactions {
		transactions[i] = TransactionFromDomain(&s.Transactions[i])
	}

	return &StatementResponse{
		ID:              s.ID,
		AccountNumber:   s.AccountNumber,
		StatementNumber: s.StatementNumber,
		StatementDate:   s.StatementDate,
		FromDate:        s.FromDate,
		ToDate:          s.ToDate,
		OpeningBalance:  s.OpeningBalance,
		ClosingBalance:  s.ClosingBalance,
		TotalDebit:      s.TotalDebit,
		TotalCredit:     s.TotalCredit,
		Status:          string(s.Status),
		Transactions:    transactions,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// StatementsFromDomain converts domain statements to responses.
func StatementsFromDomain(statements []*domain.BankStatement) []*StatementResponse {
	result := make([]*StatementResponse, len(statements))
	for i, s := range statements {
		result[i] = StatementFromDomain(s)
	}
	return result
}

// MatchReportResponse summarizes one auto-matching run.
type MatchReportResponse struct {
	StatementID string `json:"statement_id"`
	Matched     int    `json:"matched"`
	Unmatched   int    `json:"unmatched"`
	Ambiguous   int    `json:"ambiguous"`
	Skipped     int    `json:"skipped"`
}

// MatchReportFromDomain converts a domain match report to response.
func MatchReportFromDomain(r *domain.MatchReport) *MatchReportResponse {
	return &MatchReportResponse{
		StatementID: r.StatementID,
		Matched:     r.Matched,
		Unmatched:   r.Unmatched,
		Ambiguous:   r.Ambiguous,
		Skipped:     r.Skipped,
	}
}

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	PartnerName   string          `json:"partner_name"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	PaymentStatus string          `json:"payment_status"`
	IssuedAt      time.Time       `json:"issued_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvoiceFromDomain converts a domain invoice to response.
func InvoiceFromDomain(i *domain.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber,
		PartnerName:   i.PartnerName,
		Status:        string(i.Status),
		TotalAmount:   i.TotalAmount,
		PaidAmount:    i.PaidAmount,
		Outstanding:   i.Outstanding(),
		PaymentStatus: string(i.PaymentStatus),
		IssuedAt:      i.IssuedAt,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// InvoicesFromDomain converts domain invoices to responses.
func InvoicesFromDomain(invoices []*domain.Invoice) []*InvoiceResponse {
	result := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		result[i] = InvoiceFromDomain(inv)
	}
	return result
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	InvoiceID     string          `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAt        time.Time       `json:"paid_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		TransactionID: p.TransactionID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// ConsistencyResponse reports the ledger-wide debit/credit check.
type ConsistencyResponse struct {
	Consistent bool `json:"consistent"`
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// ListStatementsResponse wraps a page of bank statements.
type ListStatementsResponse struct {
	Statements []*StatementResponse `json:"statements"`
	Total      int64                `json:"total"`
}

// ListInvoicesResponse wraps a page of invoices.
type ListInvoicesResponse struct {
	Invoices []*InvoiceResponse `json:"invoices"`
	Total    int64              `json:"total"`
}

// ListPaymentsResponse wraps the payments booked against one invoice.
type ListPaymentsResponse struct {
	Payments []*PaymentResponse `json:"payments"`
	Total    int64              `json:"total"`
}

// LedgerResponse wraps the ledger of one account.
type LedgerResponse struct {
	AccountID string                `json:"account_id"`
	Lines     []*LedgerLineResponse `json:"lines"`
}

// AccountTreeResponse wraps the account hierarchy.
type AccountTreeResponse struct {
	Roots []*AccountNodeResponse `json:"roots"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
