package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is a derived per-account aggregate over posted
// journal lines. It is computed on demand, never stored.
type AccountBalance struct {
	AccountID  string
	Code       string
	Name       string
	Type       AccountType
	NormalSide NormalSide
	Debit      decimal.Decimal
	Credit     decimal.Decimal
}

// Balance applies the account's sign convention to the raw sums.
func (b AccountBalance) Balance() decimal.Decimal {
	return SignedBalance(b.NormalSide, b.Debit, b.Credit)
}

// BalanceSheet groups account balances by type as of a point in time.
// CurrentEarnings (revenue minus expense) is folded into TotalEquity
// because income accounts are not closed in this system.
type BalanceSheet struct {
	AsOf             time.Time
	Assets           []AccountBalance
	Liabilities      []AccountBalance
	Equity           []AccountBalance
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
	CurrentEarnings  decimal.Decimal
}

// Balanced reports the accounting identity the posting invariants
// guarantee. A false result signals a posting defect, not bad input.
func (s *BalanceSheet) Balanced() bool {
	return s.TotalAssets.Equal(s.TotalLiabilities.Add(s.TotalEquity))
}

// TrialBalance lists raw debit/credit totals per account. For a
// healthy ledger the two grand totals are identical.
type TrialBalance struct {
	AsOf        time.Time
	Rows        []AccountBalance
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}
