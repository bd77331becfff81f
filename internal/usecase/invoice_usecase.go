package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/domain"
)

// InvoiceUseCase is the collaborator feed: the surrounding invoicing
// module registers open invoices here so the reconciliation engine
// can match against them. Invoice lifecycle itself lives elsewhere.
type InvoiceUseCase struct {
	invoiceRepo InvoiceRepository
	paymentRepo PaymentRepository
	idGen       IDGenerator
}

// NewInvoiceUseCase creates a new InvoiceUseCase.
func NewInvoiceUseCase(invoiceRepo InvoiceRepository, paymentRepo PaymentRepository, idGen IDGenerator) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		idGen:       idGen,
	}
}

// RegisterInvoiceInput represents an invoice pushed by the
// invoicing collaborator.
type RegisterInvoiceInput struct {
	InvoiceNumber string
	PartnerName   string
	Status        domain.InvoiceStatus
	TotalAmount   decimal.Decimal
	IssuedAt      time.Time
}

// RegisterInvoice records an invoice for matching.
func (uc *InvoiceUseCase) RegisterInvoice(ctx context.Context, input RegisterInvoiceInput) (*domain.Invoice, error) {
	now := time.Now().UTC()

	invoice := &domain.Invoice{
		ID:            uc.idGen.Generate(),
		InvoiceNumber: input.InvoiceNumber,
		PartnerName:   input.PartnerName,
		Status:        input.Status,
		TotalAmount:   input.TotalAmount,
		PaidAmount:    decimal.Zero,
		PaymentStatus: domain.PaymentStatusUnpaid,
		IssuedAt:      input.IssuedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if invoice.Status == "" {
		invoice.Status = domain.InvoiceStatusSent
	}

	if err := invoice.Validate(); err != nil {
		return nil, err
	}

	if err := uc.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetInvoice retrieves an invoice by ID.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return uc.invoiceRepo.GetByID(ctx, id)
}

// ListOpenInvoicesInput represents input for listing open invoices.
type ListOpenInvoicesInput struct {
	Limit  int
	Offset int
}

// ListOpenInvoices lists invoices still eligible for matching.
func (uc *InvoiceUseCase) ListOpenInvoices(ctx context.Context, input ListOpenInvoicesInput) ([]*domain.Invoice, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.invoiceRepo.ListOpen(ctx, input.Limit, input.Offset)
}

// ListPayments lists the payments booked against an invoice.
func (uc *InvoiceUseCase) ListPayments(ctx context.Context, invoiceID string) ([]*domain.Payment, error) {
	if _, err := uc.invoiceRepo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return uc.paymentRepo.ListByInvoice(ctx, invoiceID)
}
