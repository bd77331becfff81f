package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records money received against an invoice. It is created
// from exactly one bank transaction; the unique transaction reference
// is what prevents double-booking on retries.
type Payment struct {
	ID            string
	TransactionID string
	InvoiceID     string
	Amount        decimal.Decimal
	PaidAt        time.Time
	CreatedAt     time.Time
}
