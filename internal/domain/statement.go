package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementStatus is the lifecycle state of a bank statement.
type StatementStatus string

const (
	StatementStatusImported   StatementStatus = "IMPORTED"
	StatementStatusReconciled StatementStatus = "RECONCILED"
)

// TransactionType is the direction of a bank transaction from the
// account holder's perspective. Incoming payments are credits.
type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "DEBIT"
	TransactionTypeCredit TransactionType = "CREDIT"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// MatchStatus is the reconciliation state of a bank transaction.
type MatchStatus string

const (
	MatchStatusUnmatched MatchStatus = "UNMATCHED"
	MatchStatusMatched   MatchStatus = "MATCHED"
	MatchStatusIgnored   MatchStatus = "IGNORED"
)

// CanTransitionTo restricts match-status transitions to the legal
// ones. MATCHED may only return to UNMATCHED (manual dispute);
// IGNORED is reached from UNMATCHED only.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	switch s {
	case MatchStatusUnmatched:
		return next == MatchStatusMatched || next == MatchStatusIgnored
	case MatchStatusMatched:
		return next == MatchStatusUnmatched
	case MatchStatusIgnored:
		return next == MatchStatusUnmatched
	}
	return false
}

// BankStatement is an imported statement with its transactions.
type BankStatement struct {
	ID              string
	AccountNumber   string
	StatementNumber string
	StatementDate   time.Time
	FromDate        time.Time
	ToDate          time.Time
	OpeningBalance  decimal.Decimal
	ClosingBalance  decimal.Decimal
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal
	Status          StatementStatus
	Transactions    []BankTransaction
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BankTransaction is one statement line. It is created UNMATCHED and
// mutated only by the matching algorithm or manual override; it is
// never deleted once a payment has been derived from it.
type BankTransaction struct {
	ID               string
	StatementID      string
	TransactionDate  time.Time
	Amount           decimal.Decimal
	Type             TransactionType
	PartnerName      string
	Description      string
	Reference        string
	MatchStatus      MatchStatus
	MatchedInvoiceID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks a transaction as imported from a statement file.
func (t *BankTransaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidTransaction
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidTransaction
	}

	return nil
}

// MatchReport is the audit summary returned by an auto-match run.
type MatchReport struct {
	StatementID string
	Matched     int
	Unmatched   int
	Ambiguous   int
	Skipped     int
}
