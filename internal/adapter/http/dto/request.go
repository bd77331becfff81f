package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	NormalSide *string `json:"normal_side,omitempty"`
	ParentID   *string `json:"parent_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	input := usecase.CreateAccountInput{
		Code:     r.Code,
		Name:     r.Name,
		Type:     domain.AccountType(r.Type),
		ParentID: r.ParentID,
	}

	if r.NormalSide != nil {
		side := domain.NormalSide(*r.NormalSide)
		input.NormalSide = &side
	}

	return input
}

// LineItem represents a single debit/credit line of an entry.
type LineItem struct {
	AccountID string          `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// CreateEntryRequest represents a request to create a journal entry.
type CreateEntryRequest struct {
	EntryDate   time.Time  `json:"entry_date"`
	Description string     `json:"description"`
	Reference   string     `json:"reference"`
	Type        string     `json:"type,omitempty"`
	Lines       []LineItem `json:"lines"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput() usecase.CreateEntryInput {
	return usecase.CreateEntryInput{
		EntryDate:   r.EntryDate,
		Description: r.Description,
		Reference:   r.Reference,
		Type:        domain.EntryType(r.Type),
		Lines:       linesToUseCaseInput(r.Lines),
	}
}

// UpdateEntryLinesRequest represents a request to replace the lines
// of a draft entry.
type UpdateEntryLinesRequest struct {
	Lines []LineItem `json:"lines"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateEntryLinesRequest) ToUseCaseInput() []usecase.LineInput {
	return linesToUseCaseInput(r.Lines)
}

func linesToUseCaseInput(lines []LineItem) []usecase.LineInput {
	result := make([]usecase.LineInput, len(lines))
	for i, l := range lines {
		result[i] = usecase.LineInput{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
		}
	}
	return result
}

// TransactionItem represents one statement line in an import request.
type TransactionItem struct {
	TransactionDate time.Time       `json:"transaction_date"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	PartnerName     string          `json:"partner_name"`
	Description     string          `json:"description"`
	Reference       string          `json:"reference"`
}

// ImportStatementRequest represents a request to import a bank
// statement.
type ImportStatementRequest struct {
	AccountNumber   string            `json:"account_number"`
	StatementNumber string            `json:"statement_number"`
	StatementDate   time.Time         `json:"statement_date"`
	FromDate        time.Time         `json:"from_date"`
	ToDate          time.Time         `json:"to_date"`
	OpeningBalance  decimal.Decimal   `json:"opening_balance"`
	ClosingBalance  decimal.Decimal   `json:"closing_balance"`
	Transactions    []TransactionItem `json:"transactions"`
}

// ToUseCaseInput converts to use case input.
func (r *ImportStatementRequest) ToUseCaseInput() usecase.ImportStatementInput {
	transactions := make([]usecase.TransactionInput, len(r.Transactions))
	for i, t := range r.Transactions {
		transactions[i] = usecase.TransactionInput{
			TransactionDate: t.TransactionDate,
			Amount:          t.Amount,
			Type:            domain.TransactionType(t.Type),
			PartnerName:     t.PartnerName,
			Description:     t.Description,
			Reference:       t.Reference,
		}
	}

	return usecase.ImportStatementInput{
		AccountNumber:   r.AccountNumber,
		StatementNumber: r.StatementNumber,
		StatementDate:   r.StatementDate,
		FromDate:        r.FromDate,
		ToDate:          r.ToDate,
		OpeningBalance:  r.OpeningBalance,
		ClosingBalance:  r.ClosingBalance,
		Transactions:    transactions,
	}
}

// RegisterInvoiceRequest represents an invoice pushed by the
// invoicing collaborator.
type RegisterInvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number"`
	PartnerName   string          `json:"partner_name"`
	Status        string          `json:"status,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	IssuedAt      time.Time       `json:"issued_at"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterInvoiceRequest) ToUseCaseInput() usecase.RegisterInvoiceInput {
	return usecase.RegisterInvoiceInput{
		InvoiceNumber: r.InvoiceNumber,
		PartnerName:   r.PartnerName,
		Status:        domain.InvoiceStatus(r.Status),
		TotalAmount:   r.TotalAmount,
		IssuedAt:      r.IssuedAt,
	}
}
