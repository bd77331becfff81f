package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/usecase"
)

const entryColumns = `id, entry_date, description, reference, type, status, total_debit, total_credit, posted_at, created_at, updated_at`

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// CreateEntry inserts an entry with its lines.
func (r *JournalRepository) CreateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID,
		timeToPgTimestamptz(entry.EntryDate),
		entry.Description,
		entry.Reference,
		string(entry.Type),
		string(entry.Status),
		decimalToNumeric(entry.TotalDebit),
		decimalToNumeric(entry.TotalCredit),
		timePtrToPgTimestamptz(entry.PostedAt),
		timeToPgTimestamptz(entry.CreatedAt),
		timeToPgTimestamptz(entry.UpdatedAt),
	)
	if err != nil {
		return err
	}

	return insertLines(ctx, pgxTx, entry)
}

// GetEntry retrieves an entry with its lines.
func (r *JournalRepository) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return getEntry(ctx, r.pool, id, false)
}

// GetEntryTx retrieves an entry with its lines inside the given
// transaction, locking the entry row.
func (r *JournalRepository) GetEntryTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.JournalEntry, error) {
	return getEntry(ctx, tx.(*Tx).PgxTx(), id, true)
}

// ReplaceLines deletes and reinserts the lines of a draft entry and
// refreshes the denormalized totals.
func (r *JournalRepository) ReplaceLines(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	if _, err := pgxTx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1`, entry.ID); err != nil {
		return err
	}

	if err := insertLines(ctx, pgxTx, entry); err != nil {
		return err
	}

	_, err := pgxTx.Exec(ctx, `
		UPDATE journal_entries
		SET total_debit = $2, total_credit = $3, updated_at = $4
		WHERE id = $1`,
		entry.ID,
		decimalToNumeric(entry.TotalDebit),
		decimalToNumeric(entry.TotalCredit),
		timeToPgTimestamptz(entry.UpdatedAt),
	)

	return err
}

// MarkPosted performs the conditional DRAFT -> POSTED transition. The
// status predicate in the WHERE clause is the authoritative gate: of
// any number of concurrent posts exactly one affects a row.
func (r *JournalRepository) MarkPosted(ctx context.Context, tx usecase.Transaction, entryID string, totalDebit, totalCredit decimal.Decimal, postedAt time.Time) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE journal_entries
		SET status = 'POSTED', total_debit = $2, total_credit = $3, posted_at = $4, updated_at = $4
		WHERE id = $1 AND status = 'DRAFT'`,
		entryID,
		decimalToNumeric(totalDebit),
		decimalToNumeric(totalCredit),
		timeToPgTimestamptz(postedAt),
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// ListEntries lists entries with their lines, newest first.
func (r *JournalRepository) ListEntries(ctx context.Context, limit, offset int) ([]*domain.JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		ORDER BY entry_date DESC, id DESC
		LIMIT $1 OFFSET $2`, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		lines, err := loadLines(ctx, r.pool, entry.ID)
		if err != nil {
			return nil, err
		}
		entry.Lines = lines
	}

	return entries, nil
}

// HasLinesForAccount reports whether any journal line, draft or
// posted, references the account.
func (r *JournalRepository) HasLinesForAccount(ctx context.Context, accountID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_id = $1)`,
		accountID).Scan(&exists)

	return exists, err
}

// AccountSums returns the posted debit and credit totals of an account.
func (r *JournalRepository) AccountSums(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var debit, credit pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE l.account_id = $1
		  AND e.status = 'POSTED'
		  AND ($2::timestamptz IS NULL OR e.entry_date <= $2)`,
		accountID, timePtrToPgTimestamptz(asOf)).Scan(&debit, &credit)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(debit), numericToDecimal(credit), nil
}

// PostedLinesByAccount returns the account's posted lines in stable
// chronological order, with entry ID as tie breaker.
func (r *JournalRepository) PostedLinesByAccount(ctx context.Context, accountID string) ([]*domain.LedgerLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.entry_date, e.description, e.reference, l.debit, l.credit
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE l.account_id = $1 AND e.status = 'POSTED'
		ORDER BY e.entry_date, e.id, l.id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*domain.LedgerLine
	for rows.Next() {
		var (
			line          domain.LedgerLine
			entryDate     pgtype.Timestamptz
			debit, credit pgtype.Numeric
		)
		if err := rows.Scan(&line.EntryID, &entryDate, &line.Description, &line.Reference, &debit, &credit); err != nil {
			return nil, err
		}
		line.EntryDate = entryDate.Time
		line.Debit = numericToDecimal(debit)
		line.Credit = numericToDecimal(credit)
		lines = append(lines, &line)
	}

	return lines, rows.Err()
}

// PostedBalances aggregates posted lines per account inside the given
// snapshot transaction.
func (r *JournalRepository) PostedBalances(ctx context.Context, tx usecase.Transaction, asOf *time.Time) ([]domain.AccountBalance, error) {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx, `
		SELECT a.id, a.code, a.name, a.type, a.normal_side,
		       COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM accounts a
		JOIN journal_lines l ON l.account_id = a.id
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE e.status = 'POSTED'
		  AND ($1::timestamptz IS NULL OR e.entry_date <= $1)
		GROUP BY a.id, a.code, a.name, a.type, a.normal_side
		ORDER BY a.code`, timePtrToPgTimestamptz(asOf))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []domain.AccountBalance
	for rows.Next() {
		var (
			b             domain.AccountBalance
			typ, side     string
			debit, credit pgtype.Numeric
		)
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Name, &typ, &side, &debit, &credit); err != nil {
			return nil, err
		}
		b.Type = domain.AccountType(typ)
		b.NormalSide = domain.NormalSide(side)
		b.Debit = numericToDecimal(debit)
		b.Credit = numericToDecimal(credit)
		balances = append(balances, b)
	}

	return balances, rows.Err()
}

// ConsistencySums returns the grand posted debit and credit totals.
func (r *JournalRepository) ConsistencySums(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var debit, credit pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE e.status = 'POSTED'`).Scan(&debit, &credit)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(debit), numericToDecimal(credit), nil
}

func getEntry(ctx context.Context, db DBTX, id string, forUpdate bool) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	entry, err := scanEntry(db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	lines, err := loadLines(ctx, db, entry.ID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines

	return entry, nil
}

func insertLines(ctx context.Context, db DBTX, entry *domain.JournalEntry) error {
	for _, l := range entry.Lines {
		_, err := db.Exec(ctx, `
			INSERT INTO journal_lines (id, entry_id, account_id, debit, credit)
			VALUES ($1, $2, $3, $4, $5)`,
			l.ID, l.EntryID, l.AccountID, decimalToNumeric(l.Debit), decimalToNumeric(l.Credit))
		if err != nil {
			return err
		}
	}

	return nil
}

func loadLines(ctx context.Context, db DBTX, entryID string) ([]domain.JournalLine, error) {
	rows, err := db.Query(ctx, `
		SELECT id, entry_id, account_id, debit, credit
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		var (
			line          domain.JournalLine
			debit, credit pgtype.Numeric
		)
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &debit, &credit); err != nil {
			return nil, err
		}
		line.Debit = numericToDecimal(debit)
		line.Credit = numericToDecimal(credit)
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var (
		entry                domain.JournalEntry
		typ, status          string
		totalDebit           pgtype.Numeric
		totalCredit          pgtype.Numeric
		entryDate, postedAt  pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entryDate,
		&entry.Description,
		&entry.Reference,
		&typ,
		&status,
		&totalDebit,
		&totalCredit,
		&postedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	entry.Type = domain.EntryType(typ)
	entry.Status = domain.EntryStatus(status)
	entry.TotalDebit = numericToDecimal(totalDebit)
	entry.TotalCredit = numericToDecimal(totalCredit)
	entry.EntryDate = entryDate.Time
	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time
	if postedAt.Valid {
		entry.PostedAt = &postedAt.Time
	}

	return &entry, nil
}

func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
