package domain

import (
	"errors"
	"fmt"
)

var (
	// Taxonomy roots. Callers match with errors.Is; specific errors
	// below wrap one of these so the HTTP layer maps them uniformly.
	ErrValidation       = errors.New("validation failed")
	ErrImmutableState   = errors.New("state is immutable")
	ErrAlreadyPosted    = errors.New("journal entry already posted")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrConflict         = errors.New("conflict")
	ErrConsistency      = errors.New("ledger consistency failure")

	// Not-found errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrEntryNotFound       = errors.New("journal entry not found")
	ErrStatementNotFound   = errors.New("bank statement not found")
	ErrTransactionNotFound = errors.New("bank transaction not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrPaymentNotFound     = errors.New("payment not found")

	// Chart of accounts errors
	ErrDuplicateAccountCode = fmt.Errorf("%w: account code already exists", ErrValidation)
	ErrInvalidAccountType   = fmt.Errorf("%w: unknown account type", ErrValidation)
	ErrNormalSideMismatch   = fmt.Errorf("%w: normal side contradicts account type", ErrValidation)
	ErrInvalidParent        = fmt.Errorf("%w: parent code must be a proper prefix of the account code", ErrValidation)
	ErrAccountInUse         = fmt.Errorf("%w: account has journal lines", ErrConflict)
	ErrAccountInactive      = fmt.Errorf("%w: account is inactive", ErrValidation)

	// Journal errors
	ErrUnbalancedEntry   = fmt.Errorf("%w: total debit does not equal total credit", ErrValidation)
	ErrInvalidLine       = fmt.Errorf("%w: line must carry exactly one positive side", ErrValidation)
	ErrNoLines           = fmt.Errorf("%w: entry has no lines", ErrValidation)
	ErrEntryPosted       = fmt.Errorf("%w: posted entries cannot be modified", ErrImmutableState)
	ErrInvalidEntryType  = fmt.Errorf("%w: unknown entry type", ErrValidation)

	// Reconciliation errors
	ErrDuplicateStatement    = fmt.Errorf("%w: statement already imported for this account", ErrConflict)
	ErrTransactionMatched    = fmt.Errorf("%w: transaction is already matched", ErrConflict)
	ErrTransactionNotMatched = fmt.Errorf("%w: transaction is not matched to an invoice", ErrValidation)
	ErrPaymentExists         = fmt.Errorf("%w: payment already created for transaction", ErrAlreadyProcessed)
	ErrPaymentBooked         = fmt.Errorf("%w: payment has been booked for this transaction", ErrImmutableState)
	ErrInvalidTransaction    = fmt.Errorf("%w: malformed bank transaction", ErrValidation)

	// Invoice errors
	ErrDuplicateInvoice = fmt.Errorf("%w: invoice number already registered", ErrConflict)
)
