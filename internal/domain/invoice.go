package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice as fed by the
// invoicing collaborator. Only open statuses participate in matching.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusDelivered InvoiceStatus = "DELIVERED"
	InvoiceStatusAccepted  InvoiceStatus = "ACCEPTED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Open reports whether the invoice is eligible for bank matching.
func (s InvoiceStatus) Open() bool {
	switch s {
	case InvoiceStatusSent, InvoiceStatusDelivered, InvoiceStatusAccepted:
		return true
	}
	return false
}

// PaymentStatus is the aggregate paid state of an invoice.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// PaymentStatusFor derives the payment status from the paid and total
// amounts. A status of PAID never regresses by adding payments, since
// the paid sum is monotonic; reversals are a separate audited
// operation, not covered here.
func PaymentStatusFor(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total) && total.IsPositive():
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}

// Invoice is the collaborator entity the reconciliation engine
// matches against. The engine only reads open invoices and writes
// their aggregate payment totals.
type Invoice struct {
	ID            string
	InvoiceNumber string
	PartnerName   string
	Status        InvoiceStatus
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	PaymentStatus PaymentStatus
	IssuedAt      time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Outstanding is the amount still owed on the invoice.
func (i *Invoice) Outstanding() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// Validate checks an invoice as registered by the collaborator feed.
func (i *Invoice) Validate() error {
	if i.InvoiceNumber == "" || i.PartnerName == "" {
		return ErrValidation
	}

	if i.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrValidation
	}

	return nil
}
