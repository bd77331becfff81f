package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/adapter/repository/postgres"
	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/usecase"
	"github.com/bilans/bilans/tests/testutil"
)

func newReconciliationUseCase(db *testutil.TestDB) *usecase.ReconciliationUseCase {
	return usecase.NewReconciliationUseCase(
		postgres.NewTxManager(db.Pool),
		postgres.NewStatementRepository(db.Pool),
		postgres.NewInvoiceRepository(db.Pool),
		postgres.NewPaymentRepository(db.Pool),
		domain.DefaultPartnerMatcher(),
		postgres.NewULIDGenerator(),
		postgres.NewRetrier(),
		nil,
		zerolog.Nop(),
	)
}

func importTestStatement(t *testing.T, ctx context.Context, uc *usecase.ReconciliationUseCase, reference string) *domain.BankStatement {
	t.Helper()

	statement, err := uc.ImportStatement(ctx, usecase.ImportStatementInput{
		AccountNumber:   "160-0000000012345-78",
		StatementNumber: "2026-41",
		StatementDate:   time.Now().UTC(),
		FromDate:        time.Now().UTC().Add(-24 * time.Hour),
		ToDate:          time.Now().UTC(),
		OpeningBalance:  decimal.NewFromInt(1000),
		ClosingBalance:  decimal.RequireFromString("1850.00"),
		Transactions: []usecase.TransactionInput{
			{
				TransactionDate: time.Now().UTC(),
				Amount:          decimal.RequireFromString("850.00"),
				Type:            domain.TransactionTypeCredit,
				PartnerName:     "Petrović Gradnja d.o.o.",
				Description:     "uplata po racunu",
				Reference:       reference,
			},
		},
	})
	if err != nil {
		t.Fatalf("failed to import statement: %v", err)
	}
	return statement
}

func TestMatchAndPayEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	invoice := testDB.CreateTestInvoice(ctx, "INV-100", "Petrović Gradnja d.o.o.", decimal.RequireFromString("850.00"))

	uc := newReconciliationUseCase(testDB)
	statement := importTestStatement(t, ctx, uc, "inv-100")

	report, err := uc.AutoMatch(ctx, statement.ID)
	if err != nil {
		t.Fatalf("auto-match failed: %v", err)
	}
	if report.Matched != 1 {
		t.Fatalf("expected 1 match, got %+v", report)
	}

	// Matching alone must not touch the invoice
	reloaded, err := postgres.NewInvoiceRepository(testDB.Pool).GetByID(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("failed to reload invoice: %v", err)
	}
	if !reloaded.PaidAmount.IsZero() {
		t.Fatalf("expected paid amount untouched by matching, got %s", reloaded.PaidAmount)
	}

	got, err := uc.GetStatement(ctx, statement.ID)
	if err != nil {
		t.Fatalf("failed to reload statement: %v", err)
	}
	if got.Status != domain.StatementStatusReconciled {
		t.Fatalf("expected RECONCILED, got %s", got.Status)
	}
	txn := got.Transactions[0]
	if txn.MatchStatus != domain.MatchStatusMatched || txn.MatchedInvoiceID == nil {
		t.Fatalf("expected matched transaction, got %+v", txn)
	}

	payment, err := uc.CreatePaymentFromTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}
	if !payment.Amount.Equal(decimal.RequireFromString("850.00")) {
		t.Fatalf("expected payment of 850, got %s", payment.Amount)
	}

	// The unique constraint backs up the existence check
	if _, err := uc.CreatePaymentFromTransaction(ctx, txn.ID); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	paid, err := postgres.NewInvoiceRepository(testDB.Pool).GetByID(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("failed to reload invoice: %v", err)
	}
	if paid.PaymentStatus != domain.PaymentStatusPaid || !paid.PaidAmount.Equal(decimal.RequireFromString("850.00")) {
		t.Fatalf("expected fully paid invoice, got %+v", paid)
	}
}

func TestDuplicateStatementRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	uc := newReconciliationUseCase(testDB)
	importTestStatement(t, ctx, uc, "INV-100")

	_, err := uc.ImportStatement(ctx, usecase.ImportStatementInput{
		AccountNumber:   "160-0000000012345-78",
		StatementNumber: "2026-41",
		StatementDate:   time.Now().UTC(),
		FromDate:        time.Now().UTC().Add(-24 * time.Hour),
		ToDate:          time.Now().UTC(),
	})
	if !errors.Is(err, domain.ErrDuplicateStatement) {
		t.Fatalf("expected ErrDuplicateStatement, got %v", err)
	}
}

// Two concurrent imports can both pass the use case's existence
// check; the unique constraint on (account_number, statement_number)
// maps the loser to ErrDuplicateStatement.
func TestDuplicateStatementConstraint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	uc := newReconciliationUseCase(testDB)
	importTestStatement(t, ctx, uc, "INV-100")

	txManager := postgres.NewTxManager(testDB.Pool)
	repo := postgres.NewStatementRepository(testDB.Pool)

	tx, err := txManager.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	err = repo.CreateStatement(ctx, tx, &domain.BankStatement{
		ID:              testutil.GenerateID(),
		AccountNumber:   "160-0000000012345-78",
		StatementNumber: "2026-41",
		StatementDate:   now,
		FromDate:        now.Add(-24 * time.Hour),
		ToDate:          now,
		OpeningBalance:  decimal.Zero,
		ClosingBalance:  decimal.Zero,
		TotalDebit:      decimal.Zero,
		TotalCredit:     decimal.Zero,
		Status:          domain.StatementStatusImported,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if !errors.Is(err, domain.ErrDuplicateStatement) {
		t.Fatalf("expected ErrDuplicateStatement, got %v", err)
	}
}

func TestUnmatchBlockedAfterPayment(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	testDB.CreateTestInvoice(ctx, "INV-100", "Petrović Gradnja d.o.o.", decimal.RequireFromString("850.00"))

	uc := newReconciliationUseCase(testDB)
	statement := importTestStatement(t, ctx, uc, "INV-100")

	if _, err := uc.AutoMatch(ctx, statement.ID); err != nil {
		t.Fatalf("auto-match failed: %v", err)
	}

	got, err := uc.GetStatement(ctx, statement.ID)
	if err != nil {
		t.Fatalf("failed to reload statement: %v", err)
	}
	txnID := got.Transactions[0].ID

	if _, err := uc.CreatePaymentFromTransaction(ctx, txnID); err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}

	if err := uc.DisputeOrUnmatch(ctx, txnID); !errors.Is(err, domain.ErrPaymentBooked) {
		t.Fatalf("expected ErrPaymentBooked, got %v", err)
	}
}
