package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/usecase"
)

const pgErrUniqueViolation = "23505"

const paymentColumns = `id, transaction_id, invoice_id, amount, paid_at, created_at`

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts a payment. The unique index on transaction_id is the
// final backstop against double-booking; a violation surfaces as
// ErrPaymentExists even if the earlier existence check raced.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		payment.ID,
		payment.TransactionID,
		payment.InvoiceID,
		decimalToNumeric(payment.Amount),
		timeToPgTimestamptz(payment.PaidAt),
		timeToPgTimestamptz(payment.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPaymentExists
		}

		return err
	}

	return nil
}

// GetByTransaction retrieves the payment derived from a transaction.
func (r *PaymentRepository) GetByTransaction(ctx context.Context, transactionID string) (*domain.Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE transaction_id = $1`, transactionID))
}

// ExistsForTransaction reports whether the transaction already has a
// payment.
func (r *PaymentRepository) ExistsForTransaction(ctx context.Context, tx usecase.Transaction, transactionID string) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var exists bool
	err := pgxTx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM payments WHERE transaction_id = $1)`,
		transactionID).Scan(&exists)

	return exists, err
}

// SumForInvoice sums the payments booked against an invoice.
func (r *PaymentRepository) SumForInvoice(ctx context.Context, tx usecase.Transaction, invoiceID string) (decimal.Decimal, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var sum pgtype.Numeric
	err := pgxTx.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE invoice_id = $1`, invoiceID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// ListByInvoice lists an invoice's payments in booking order.
func (r *PaymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE invoice_id = $1
		ORDER BY paid_at, id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		payment           domain.Payment
		amount            pgtype.Numeric
		paidAt, createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&payment.ID,
		&payment.TransactionID,
		&payment.InvoiceID,
		&amount,
		&paidAt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}

		return nil, err
	}

	payment.Amount = numericToDecimal(amount)
	payment.PaidAt = paidAt.Time
	payment.CreatedAt = createdAt.Time

	return &payment, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}
