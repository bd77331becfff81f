package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus is the lifecycle state of a journal entry.
type EntryStatus string

const (
	EntryStatusDraft  EntryStatus = "DRAFT"
	EntryStatusPosted EntryStatus = "POSTED"
)

// EntryType distinguishes operator-created entries from system ones.
type EntryType string

const (
	EntryTypeManual EntryType = "MANUAL"
	EntryTypeSystem EntryType = "SYSTEM"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	return t == EntryTypeManual || t == EntryTypeSystem
}

// JournalLine is one side of a journal entry. Exactly one of Debit
// and Credit is positive; neither is ever negative.
type JournalLine struct {
	ID        string
	EntryID   string
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Validate checks the single-sided, non-negative amount invariant.
func (l *JournalLine) Validate() error {
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return ErrInvalidLine
	}

	if l.Debit.IsPositive() == l.Credit.IsPositive() {
		return ErrInvalidLine
	}

	return nil
}

// JournalEntry is a set of debit/credit lines recording one financial
// event. Draft entries may be unbalanced while an operator builds
// them; posting requires exact balance and freezes the entry forever.
type JournalEntry struct {
	ID          string
	EntryDate   time.Time
	Description string
	Reference   string
	Type        EntryType
	Status      EntryStatus
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Lines       []JournalLine
	PostedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ComputeTotals recomputes the denormalized debit/credit sums from
// the entry's lines.
func (e *JournalEntry) ComputeTotals() {
	e.TotalDebit = decimal.Zero
	e.TotalCredit = decimal.Zero

	for _, l := range e.Lines {
		e.TotalDebit = e.TotalDebit.Add(l.Debit)
		e.TotalCredit = e.TotalCredit.Add(l.Credit)
	}
}

// IsBalanced reports whether total debit equals total credit exactly.
// Amounts are fixed-point decimals, so there is no rounding tolerance.
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebit.Equal(e.TotalCredit)
}

// ValidateLines checks every line and requires at least one.
func (e *JournalEntry) ValidateLines() error {
	if len(e.Lines) == 0 {
		return ErrNoLines
	}

	for i := range e.Lines {
		if err := e.Lines[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ValidateForPosting re-verifies everything the POSTED transition
// requires, regardless of what was checked at creation time.
func (e *JournalEntry) ValidateForPosting() error {
	if e.Status == EntryStatusPosted {
		return ErrAlreadyPosted
	}

	if err := e.ValidateLines(); err != nil {
		return err
	}

	e.ComputeTotals()
	if !e.IsBalanced() {
		return ErrUnbalancedEntry
	}

	return nil
}

// AccountIDs returns the distinct account IDs referenced by the lines.
func (e *JournalEntry) AccountIDs() []string {
	seen := make(map[string]bool, len(e.Lines))

	var ids []string
	for _, l := range e.Lines {
		if !seen[l.AccountID] {
			seen[l.AccountID] = true
			ids = append(ids, l.AccountID)
		}
	}

	return ids
}

// SignedBalance applies the account's sign convention to raw sums:
// debit-normal accounts grow with debits, credit-normal with credits.
func SignedBalance(side NormalSide, debit, credit decimal.Decimal) decimal.Decimal {
	if side == NormalSideDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// LedgerLine is one posted line of an account's ledger together with
// the running balance after applying it.
type LedgerLine struct {
	EntryID     string
	EntryDate   time.Time
	Description string
	Reference   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Balance     decimal.Decimal
}
