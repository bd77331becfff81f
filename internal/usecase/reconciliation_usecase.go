package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/infrastructure/metrics"
)

// ReconciliationUseCase ingests bank statements and matches their
// transactions against open invoices.
type ReconciliationUseCase struct {
	txManager     TransactionManager
	statementRepo StatementRepository
	invoiceRepo   InvoiceRepository
	paymentRepo   PaymentRepository
	matcher       domain.PartnerMatcher
	idGen         IDGenerator
	retrier       Retrier
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
// retrier and m may be nil.
func NewReconciliationUseCase(
	txManager TransactionManager,
	statementRepo StatementRepository,
	invoiceRepo InvoiceRepository,
	paymentRepo PaymentRepository,
	matcher domain.PartnerMatcher,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:     txManager,
		statementRepo: statementRepo,
		invoiceRepo:   invoiceRepo,
		paymentRepo:   paymentRepo,
		matcher:       matcher,
		idGen:         idGen,
		retrier:       retrier,
		metrics:       m,
		logger:        logger,
	}
}

// TransactionInput is one statement line as imported.
type TransactionInput struct {
	TransactionDate time.Time
	Amount          decimal.Decimal
	Type            domain.TransactionType
	PartnerName     string
	Description     string
	Reference       string
}

// ImportStatementInput represents a bank statement to import.
type ImportStatementInput struct {
	AccountNumber   string
	StatementNumber string
	StatementDate   time.Time
	FromDate        time.Time
	ToDate          time.Time
	OpeningBalance  decimal.Decimal
	ClosingBalance  decimal.Decimal
	Transactions    []TransactionInput
}

// ImportStatement bulk-creates a statement with its transactions, all
// initially UNMATCHED. Re-importing the same statement number for the
// same account is rejected as a duplicate, never silently repeated.
func (uc *ReconciliationUseCase) ImportStatement(ctx context.Context, input ImportStatementInput) (*domain.BankStatement, error) {
	if input.AccountNumber == "" || input.StatementNumber == "" {
		return nil, domain.ErrValidation
	}

	exists, err := uc.statementRepo.StatementExists(ctx, input.AccountNumber, input.StatementNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateStatement
	}

	now := time.Now().UTC()

	statement := &domain.BankStatement{
		ID:              uc.idGen.Generate(),
		AccountNumber:   input.AccountNumber,
		StatementNumber: input.StatementNumber,
		StatementDate:   input.StatementDate,
		FromDate:        input.FromDate,
		ToDate:          input.ToDate,
		OpeningBalance:  input.OpeningBalance,
		ClosingBalance:  input.ClosingBalance,
		TotalDebit:      decimal.Zero,
		TotalCredit:     decimal.Zero,
		Status:          domain.StatementStatusImported,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, ti := range input.Transactions {
		txn := domain.BankTransaction{
			ID:              uc.idGen.Generate(),
			StatementID:     statement.ID,
			TransactionDate: ti.TransactionDate,
			Amount:          ti.Amount,
			Type:            ti.Type,
			PartnerName:     ti.PartnerName,
			Description:     ti.Description,
			Reference:       ti.Reference,
			MatchStatus:     domain.MatchStatusUnmatched,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := txn.Validate(); err != nil {
			return nil, err
		}

		switch txn.Type {
		case domain.TransactionTypeDebit:
			statement.TotalDebit = statement.TotalDebit.Add(txn.Amount)
		case domain.TransactionTypeCredit:
			statement.TotalCredit = statement.TotalCredit.Add(txn.Amount)
		}

		statement.Transactions = append(statement.Transactions, txn)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.statementRepo.CreateStatement(ctx, tx, statement); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.StatementsImported.Inc()
	}

	uc.logger.Info().
		Str("statement_id", statement.ID).
		Str("account_number", statement.AccountNumber).
		Int("transactions", len(statement.Transactions)).
		Msg("bank statement imported")

	return statement, nil
}

// AutoMatch tries to match every UNMATCHED incoming (CREDIT)
// transaction of the statement against open invoices. Exact
// reference matches win; otherwise a unique amount-plus-partner
// candidate is accepted. Ties are left unmatched for manual review,
// never guessed. Already-matched transactions are untouched, so
// re-running is safe. Matching does not book money: payment creation
// is a separate, explicitly reviewed operation.
func (uc *ReconciliationUseCase) AutoMatch(ctx context.Context, statementID string) (*domain.MatchReport, error) {
	statement, err := uc.statementRepo.GetStatement(ctx, statementID)
	if err != nil {
		return nil, err
	}

	report := &domain.MatchReport{StatementID: statement.ID}

	for i := range statement.Transactions {
		txn := &statement.Transactions[i]

		if txn.MatchStatus != domain.MatchStatusUnmatched || txn.Type != domain.TransactionTypeCredit {
			report.Skipped++
			continue
		}

		invoice, ambiguous, err := uc.findCandidate(ctx, txn)
		if err != nil {
			return nil, err
		}

		switch {
		case ambiguous:
			report.Ambiguous++
			uc.logger.Info().
				Str("transaction_id", txn.ID).
				Str("amount", txn.Amount.String()).
				Msg("ambiguous match, left for manual review")
		case invoice == nil:
			report.Unmatched++
		default:
			matched, err := uc.matchTransaction(ctx, txn, invoice)
			if err != nil {
				return nil, err
			}
			if matched {
				report.Matched++
			} else {
				// Lost a concurrent race; the transaction is matched
				// either way, so it is not re-counted as unmatched.
				report.Skipped++
			}
		}
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsMatched.Add(float64(report.Matched))
		uc.metrics.MatchesAmbiguous.Add(float64(report.Ambiguous))
	}

	uc.logger.Info().
		Str("statement_id", statement.ID).
		Int("matched", report.Matched).
		Int("unmatched", report.Unmatched).
		Int("ambiguous", report.Ambiguous).
		Msg("auto-match finished")

	return report, nil
}

// findCandidate applies the priority rules: exact reference match
// first, then a unique open invoice with the exact outstanding
// amount and a fuzzy partner-name match.
func (uc *ReconciliationUseCase) findCandidate(ctx context.Context, txn *domain.BankTransaction) (*domain.Invoice, bool, error) {
	if ref := domain.NormalizeReference(txn.Reference); ref != "" {
		invoice, err := uc.invoiceRepo.FindOpenByNumber(ctx, ref)
		if err != nil && !errors.Is(err, domain.ErrInvoiceNotFound) {
			return nil, false, err
		}
		if invoice != nil && domain.ReferencesEqual(txn.Reference, invoice.InvoiceNumber) {
			return invoice, false, nil
		}
	}

	candidates, err := uc.invoiceRepo.ListOpenByOutstanding(ctx, txn.Amount)
	if err != nil {
		return nil, false, err
	}

	var matches []*domain.Invoice
	for _, inv := range candidates {
		if uc.matcher.Match(txn.PartnerName, inv.PartnerName) {
			matches = append(matches, inv)
		}
	}

	switch len(matches) {
	case 0:
		return nil, false, nil
	case 1:
		return matches[0], false, nil
	default:
		return nil, true, nil
	}
}

func (uc *ReconciliationUseCase) matchTransaction(ctx context.Context, txn *domain.BankTransaction, invoice *domain.Invoice) (bool, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	matched, err := uc.statementRepo.MarkMatched(ctx, tx, txn.ID, invoice.ID, time.Now().UTC())
	if err != nil {
		return false, err
	}

	if matched {
		if err := uc.maybeFinishStatement(ctx, tx, txn.StatementID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	if matched {
		txn.MatchStatus = domain.MatchStatusMatched
		txn.MatchedInvoiceID = &invoice.ID
	}

	return matched, nil
}

// CreatePaymentFromTransaction books a payment for a MATCHED
// transaction and recomputes the invoice's aggregate paid amount and
// payment status. The unique transaction reference on payments makes
// retries and duplicate upstream deliveries fail with
// ErrAlreadyProcessed instead of double-booking. The invoice row lock
// can abort a contended booking with a transient deadlock or
// serialization error, in which case the whole transaction is
// retried.
func (uc *ReconciliationUseCase) CreatePaymentFromTransaction(ctx context.Context, transactionID string) (*domain.Payment, error) {
	var payment *domain.Payment
	err := withRetry(ctx, uc.retrier, func() error {
		var err error
		payment, err = uc.createPayment(ctx, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (uc *ReconciliationUseCase) createPayment(ctx context.Context, transactionID string) (*domain.Payment, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txn, err := uc.statementRepo.GetTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.MatchStatus != domain.MatchStatusMatched || txn.MatchedInvoiceID == nil {
		return nil, domain.ErrTransactionNotMatched
	}

	exists, err := uc.paymentRepo.ExistsForTransaction(ctx, tx, txn.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrPaymentExists
	}

	// Lock the invoice row so two transactions matched to the same
	// invoice cannot race on the outstanding-balance computation.
	invoice, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, *txn.MatchedInvoiceID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	payment := &domain.Payment{
		ID:            uc.idGen.Generate(),
		TransactionID: txn.ID,
		InvoiceID:     invoice.ID,
		Amount:        txn.Amount,
		PaidAt:        txn.TransactionDate,
		CreatedAt:     now,
	}

	if err := uc.paymentRepo.Create(ctx, tx, payment); err != nil {
		return nil, err
	}

	paid, err := uc.paymentRepo.SumForInvoice(ctx, tx, invoice.ID)
	if err != nil {
		return nil, err
	}

	status := domain.PaymentStatusFor(paid, invoice.TotalAmount)
	if invoice.PaymentStatus == domain.PaymentStatusPaid {
		// PAID never regresses without an explicit reversal.
		status = domain.PaymentStatusPaid
	}

	if err := uc.invoiceRepo.UpdatePaymentTotals(ctx, tx, invoice.ID, paid, status, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsBooked.Inc()
	}

	uc.logger.Info().
		Str("payment_id", payment.ID).
		Str("transaction_id", txn.ID).
		Str("invoice_id", invoice.ID).
		Str("amount", payment.Amount.String()).
		Str("payment_status", string(status)).
		Msg("payment booked from bank transaction")

	return payment, nil
}

// IgnoreTransaction marks an UNMATCHED transaction as IGNORED, for
// cash movements that do not correspond to any invoice.
func (uc *ReconciliationUseCase) IgnoreTransaction(ctx context.Context, transactionID string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	txn, err := uc.statementRepo.GetTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return err
	}

	if !txn.MatchStatus.CanTransitionTo(domain.MatchStatusIgnored) {
		return domain.ErrTransactionMatched
	}

	ok, err := uc.statementRepo.MarkIgnored(ctx, tx, txn.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrTransactionMatched
	}

	if err := uc.maybeFinishStatement(ctx, tx, txn.StatementID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DisputeOrUnmatch manually reverts a MATCHED transaction to
// UNMATCHED. Once a payment has been booked the match is frozen;
// reversing booked money is a distinct audited operation, not a
// silent unmatch.
func (uc *ReconciliationUseCase) DisputeOrUnmatch(ctx context.Context, transactionID string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	txn, err := uc.statementRepo.GetTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return err
	}

	if txn.MatchStatus == domain.MatchStatusUnmatched {
		return nil
	}

	exists, err := uc.paymentRepo.ExistsForTransaction(ctx, tx, txn.ID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrPaymentBooked
	}

	ok, err := uc.statementRepo.Unmatch(ctx, tx, txn.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrTransactionNotFound
	}

	if err := uc.statementRepo.SetStatementStatus(ctx, tx, txn.StatementID, domain.StatementStatusImported, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetStatement retrieves a statement with its transactions.
func (uc *ReconciliationUseCase) GetStatement(ctx context.Context, id string) (*domain.BankStatement, error) {
	return uc.statementRepo.GetStatement(ctx, id)
}

// ListStatementsInput represents input for listing statements.
type ListStatementsInput struct {
	Limit  int
	Offset int
}

// ListStatements lists statements with pagination.
func (uc *ReconciliationUseCase) ListStatements(ctx context.Context, input ListStatementsInput) ([]*domain.BankStatement, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.statementRepo.ListStatements(ctx, input.Limit, input.Offset)
}

// maybeFinishStatement flips a statement to RECONCILED once no
// transaction remains UNMATCHED.
func (uc *ReconciliationUseCase) maybeFinishStatement(ctx context.Context, tx Transaction, statementID string) error {
	open, err := uc.statementRepo.CountOpenTransactions(ctx, tx, statementID)
	if err != nil {
		return err
	}
	if open > 0 {
		return nil
	}

	return uc.statementRepo.SetStatementStatus(ctx, tx, statementID, domain.StatementStatusReconciled, time.Now().UTC())
}
