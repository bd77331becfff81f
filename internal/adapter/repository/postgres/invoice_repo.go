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

const invoiceColumns = `id, invoice_number, partner_name, status, total_amount, paid_amount,
	payment_status, issued_at, created_at, updated_at`

const openInvoiceStatuses = `('SENT', 'DELIVERED', 'ACCEPTED')`

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

// Create records an invoice pushed by the invoicing collaborator.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		invoice.ID,
		invoice.InvoiceNumber,
		invoice.PartnerName,
		string(invoice.Status),
		decimalToNumeric(invoice.TotalAmount),
		decimalToNumeric(invoice.PaidAmount),
		string(invoice.PaymentStatus),
		timeToPgTimestamptz(invoice.IssuedAt),
		timeToPgTimestamptz(invoice.CreatedAt),
		timeToPgTimestamptz(invoice.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInvoice
		}

		return err
	}

	return nil
}

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves an invoice with a FOR UPDATE lock so the
// paid-amount aggregation cannot race.
func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return scanInvoice(pgxTx.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1
		FOR UPDATE`, id))
}

// FindOpenByNumber finds an open invoice by its exact number.
func (r *InvoiceRepository) FindOpenByNumber(ctx context.Context, invoiceNumber string) (*domain.Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE UPPER(invoice_number) = UPPER($1)
		  AND status IN `+openInvoiceStatuses+`
		  AND payment_status <> 'PAID'`, invoiceNumber))
}

// ListOpenByOutstanding lists open invoices whose outstanding amount
// equals the given amount exactly.
func (r *InvoiceRepository) ListOpenByOutstanding(ctx context.Context, amount decimal.Decimal) ([]*domain.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE status IN `+openInvoiceStatuses+`
		  AND payment_status <> 'PAID'
		  AND total_amount - paid_amount = $1
		ORDER BY issued_at, id`, decimalToNumeric(amount))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInvoices(rows)
}

// ListOpen lists open invoices with pagination.
func (r *InvoiceRepository) ListOpen(ctx context.Context, limit, offset int) ([]*domain.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE status IN `+openInvoiceStatuses+`
		ORDER BY issued_at DESC, id DESC
		LIMIT $1 OFFSET $2`, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInvoices(rows)
}

// UpdatePaymentTotals writes the recomputed aggregate paid amount and
// payment status.
func (r *InvoiceRepository) UpdatePaymentTotals(ctx context.Context, tx usecase.Transaction, id string, paidAmount decimal.Decimal, status domain.PaymentStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE invoices
		SET paid_amount = $2, payment_status = $3, updated_at = $4
		WHERE id = $1`,
		id, decimalToNumeric(paidAmount), string(status), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}

	return nil
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		invoice               domain.Invoice
		status, paymentStatus string
		total, paid           pgtype.Numeric
		issuedAt              pgtype.Timestamptz
		createdAt, updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.PartnerName,
		&status,
		&total,
		&paid,
		&paymentStatus,
		&issuedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}

		return nil, err
	}

	invoice.Status = domain.InvoiceStatus(status)
	invoice.PaymentStatus = domain.PaymentStatus(paymentStatus)
	invoice.TotalAmount = numericToDecimal(total)
	invoice.PaidAmount = numericToDecimal(paid)
	invoice.IssuedAt = issuedAt.Time
	invoice.CreatedAt = createdAt.Time
	invoice.UpdatedAt = updatedAt.Time

	return &invoice, nil
}

func scanInvoices(rows pgx.Rows) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}

	return invoices, rows.Err()
}
