package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/usecase"
)

const statementColumns = `id, account_number, statement_number, statement_date, from_date, to_date,
	opening_balance, closing_balance, total_debit, total_credit, status, created_at, updated_at`

const transactionColumns = `id, statement_id, transaction_date, amount, type, partner_name,
	description, reference, match_status, matched_invoice_id, created_at, updated_at`

// StatementRepository implements usecase.StatementRepository.
type StatementRepository struct {
	pool *pgxpool.Pool
}

// NewStatementRepository creates a new StatementRepository.
func NewStatementRepository(pool *pgxpool.Pool) *StatementRepository {
	return &StatementRepository{pool: pool}
}

// CreateStatement inserts a statement with all its transactions.
func (r *StatementRepository) CreateStatement(ctx context.Context, tx usecase.Transaction, statement *domain.BankStatement) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO bank_statements (`+statementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		statement.ID,
		statement.AccountNumber,
		statement.StatementNumber,
		timeToPgTimestamptz(statement.StatementDate),
		timeToPgTimestamptz(statement.FromDate),
		timeToPgTimestamptz(statement.ToDate),
		decimalToNumeric(statement.OpeningBalance),
		decimalToNumeric(statement.ClosingBalance),
		decimalToNumeric(statement.TotalDebit),
		decimalToNumeric(statement.TotalCredit),
		string(statement.Status),
		timeToPgTimestamptz(statement.CreatedAt),
		timeToPgTimestamptz(statement.UpdatedAt),
	)
	if err != nil {
		// A concurrent import of the same statement number slips past
		// the use case's existence check; the unique constraint on
		// (account_number, statement_number) catches it here.
		if isUniqueViolation(err) {
			return domain.ErrDuplicateStatement
		}

		return err
	}

	batch := &pgx.Batch{}
	for i := range statement.Transactions {
		t := &statement.Transactions[i]
		batch.Queue(`
			INSERT INTO bank_transactions (`+transactionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			t.ID,
			t.StatementID,
			timeToPgTimestamptz(t.TransactionDate),
			decimalToNumeric(t.Amount),
			string(t.Type),
			t.PartnerName,
			t.Description,
			t.Reference,
			string(t.MatchStatus),
			t.MatchedInvoiceID,
			timeToPgTimestamptz(t.CreatedAt),
			timeToPgTimestamptz(t.UpdatedAt),
		)
	}

	results := pgxTx.SendBatch(ctx, batch)
	defer results.Close()

	for range statement.Transactions {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}

// GetStatement retrieves a statement with its transactions.
func (r *StatementRepository) GetStatement(ctx context.Context, id string) (*domain.BankStatement, error) {
	statement, err := scanStatement(r.pool.QueryRow(ctx, `
		SELECT `+statementColumns+`
		FROM bank_statements
		WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM bank_transactions
		WHERE statement_id = $1
		ORDER BY transaction_date, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		statement.Transactions = append(statement.Transactions, *txn)
	}

	return statement, rows.Err()
}

// StatementExists reports whether the statement number was already
// imported for the bank account.
func (r *StatementRepository) StatementExists(ctx context.Context, accountNumber, statementNumber string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bank_statements
			WHERE account_number = $1 AND statement_number = $2
		)`, accountNumber, statementNumber).Scan(&exists)

	return exists, err
}

// ListStatements lists statements without their transactions, newest
// first.
func (r *StatementRepository) ListStatements(ctx context.Context, limit, offset int) ([]*domain.BankStatement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+statementColumns+`
		FROM bank_statements
		ORDER BY statement_date DESC, id DESC
		LIMIT $1 OFFSET $2`, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statements []*domain.BankStatement
	for rows.Next() {
		statement, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}

	return statements, rows.Err()
}

// GetTransaction retrieves a bank transaction by ID.
func (r *StatementRepository) GetTransaction(ctx context.Context, id string) (*domain.BankTransaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM bank_transactions
		WHERE id = $1`, id))
}

// GetTransactionForUpdate retrieves a bank transaction with a FOR
// UPDATE lock.
func (r *StatementRepository) GetTransactionForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.BankTransaction, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return scanTransaction(pgxTx.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM bank_transactions
		WHERE id = $1
		FOR UPDATE`, id))
}

// MarkMatched flips UNMATCHED -> MATCHED conditionally. The status
// predicate makes concurrent matchers race safely: only one call
// affects the row.
func (r *StatementRepository) MarkMatched(ctx context.Context, tx usecase.Transaction, transactionID, invoiceID string, updatedAt time.Time) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE bank_transactions
		SET match_status = 'MATCHED', matched_invoice_id = $2, updated_at = $3
		WHERE id = $1 AND match_status = 'UNMATCHED'`,
		transactionID, invoiceID, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// MarkIgnored flips UNMATCHED -> IGNORED conditionally.
func (r *StatementRepository) MarkIgnored(ctx context.Context, tx usecase.Transaction, transactionID string, updatedAt time.Time) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE bank_transactions
		SET match_status = 'IGNORED', updated_at = $2
		WHERE id = $1 AND match_status = 'UNMATCHED'`,
		transactionID, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// Unmatch reverts a matched or ignored transaction to UNMATCHED and
// clears the invoice reference.
func (r *StatementRepository) Unmatch(ctx context.Context, tx usecase.Transaction, transactionID string, updatedAt time.Time) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE bank_transactions
		SET match_status = 'UNMATCHED', matched_invoice_id = NULL, updated_at = $2
		WHERE id = $1 AND match_status <> 'UNMATCHED'`,
		transactionID, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// CountOpenTransactions counts the statement's UNMATCHED transactions.
func (r *StatementRepository) CountOpenTransactions(ctx context.Context, tx usecase.Transaction, statementID string) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var count int64
	err := pgxTx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM bank_transactions
		WHERE statement_id = $1 AND match_status = 'UNMATCHED'`,
		statementID).Scan(&count)

	return count, err
}

// SetStatementStatus updates the statement lifecycle status.
func (r *StatementRepository) SetStatementStatus(ctx context.Context, tx usecase.Transaction, statementID string, status domain.StatementStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE bank_statements
		SET status = $2, updated_at = $3
		WHERE id = $1`,
		statementID, string(status), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStatementNotFound
	}

	return nil
}

func scanStatement(row pgx.Row) (*domain.BankStatement, error) {
	var (
		statement                           domain.BankStatement
		status                              string
		statementDate, fromDate, toDate     pgtype.Timestamptz
		opening, closing, tDebit, tCredit   pgtype.Numeric
		createdAt, updatedAt                pgtype.Timestamptz
	)

	err := row.Scan(
		&statement.ID,
		&statement.AccountNumber,
		&statement.StatementNumber,
		&statementDate,
		&fromDate,
		&toDate,
		&opening,
		&closing,
		&tDebit,
		&tCredit,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatementNotFound
		}

		return nil, err
	}

	statement.StatementDate = statementDate.Time
	statement.FromDate = fromDate.Time
	statement.ToDate = toDate.Time
	statement.OpeningBalance = numericToDecimal(opening)
	statement.ClosingBalance = numericToDecimal(closing)
	statement.TotalDebit = numericToDecimal(tDebit)
	statement.TotalCredit = numericToDecimal(tCredit)
	statement.Status = domain.StatementStatus(status)
	statement.CreatedAt = createdAt.Time
	statement.UpdatedAt = updatedAt.Time

	return &statement, nil
}

func scanTransaction(row pgx.Row) (*domain.BankTransaction, error) {
	var (
		txn                  domain.BankTransaction
		typ, matchStatus     string
		transactionDate      pgtype.Timestamptz
		amount               pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID,
		&txn.StatementID,
		&transactionDate,
		&amount,
		&typ,
		&txn.PartnerName,
		&txn.Description,
		&txn.Reference,
		&matchStatus,
		&txn.MatchedInvoiceID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	txn.TransactionDate = transactionDate.Time
	txn.Amount = numericToDecimal(amount)
	txn.Type = domain.TransactionType(typ)
	txn.MatchStatus = domain.MatchStatus(matchStatus)
	txn.CreatedAt = createdAt.Time
	txn.UpdatedAt = updatedAt.Time

	return &txn, nil
}
