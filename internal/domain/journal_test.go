package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestJournalLine_Validate(t *testing.T) {
	tests := []struct {
		name        string
		debit       string
		credit      string
		expectError error
	}{
		{"debit line", "100.00", "0", nil},
		{"credit line", "0", "100.00", nil},
		{"both sides set", "100.00", "100.00", ErrInvalidLine},
		{"both sides zero", "0", "0", ErrInvalidLine},
		{"negative debit", "-5", "0", ErrInvalidLine},
		{"negative credit", "0", "-5", ErrInvalidLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := JournalLine{
				AccountID: "acc-1",
				Debit:     decimal.RequireFromString(tt.debit),
				Credit:    decimal.RequireFromString(tt.credit),
			}

			err := line.Validate()
			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && err != tt.expectError {
				t.Errorf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestJournalEntry_ComputeTotalsAndBalance(t *testing.T) {
	entry := JournalEntry{
		Lines: []JournalLine{
			{AccountID: "a", Debit: decimal.RequireFromString("100.50")},
			{AccountID: "b", Credit: decimal.RequireFromString("60.50")},
			{AccountID: "c", Credit: decimal.RequireFromString("40.00")},
		},
	}

	entry.ComputeTotals()

	if !entry.TotalDebit.Equal(decimal.RequireFromString("100.50")) {
		t.Errorf("total debit = %s", entry.TotalDebit)
	}
	if !entry.TotalCredit.Equal(decimal.RequireFromString("100.50")) {
		t.Errorf("total credit = %s", entry.TotalCredit)
	}
	if !entry.IsBalanced() {
		t.Error("expected balanced entry")
	}
}

func TestJournalEntry_ValidateForPosting(t *testing.T) {
	tests := []struct {
		name        string
		entry       JournalEntry
		expectError error
	}{
		{
			name: "balanced draft posts",
			entry: JournalEntry{
				Status: EntryStatusDraft,
				Lines: []JournalLine{
					{AccountID: "a", Debit: decimal.NewFromInt(100)},
					{AccountID: "b", Credit: decimal.NewFromInt(100)},
				},
			},
			expectError: nil,
		},
		{
			name: "unbalanced draft rejected",
			entry: JournalEntry{
				Status: EntryStatusDraft,
				Lines: []JournalLine{
					{AccountID: "a", Debit: decimal.NewFromInt(100)},
					{AccountID: "b", Credit: decimal.NewFromInt(90)},
				},
			},
			expectError: ErrUnbalancedEntry,
		},
		{
			name:        "already posted",
			entry:       JournalEntry{Status: EntryStatusPosted},
			expectError: ErrAlreadyPosted,
		},
		{
			name:        "no lines",
			entry:       JournalEntry{Status: EntryStatusDraft},
			expectError: ErrNoLines,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.ValidateForPosting()
			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && err != tt.expectError {
				t.Errorf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestSignedBalance(t *testing.T) {
	debit := decimal.RequireFromString("150.00")
	credit := decimal.RequireFromString("50.00")

	if got := SignedBalance(NormalSideDebit, debit, credit); !got.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("debit-normal balance = %s, want 100.00", got)
	}

	if got := SignedBalance(NormalSideCredit, debit, credit); !got.Equal(decimal.RequireFromString("-100.00")) {
		t.Errorf("credit-normal balance = %s, want -100.00", got)
	}
}

func TestJournalEntry_AccountIDs(t *testing.T) {
	entry := JournalEntry{
		Lines: []JournalLine{
			{AccountID: "a", Debit: decimal.NewFromInt(50)},
			{AccountID: "b", Credit: decimal.NewFromInt(30)},
			{AccountID: "a", Debit: decimal.NewFromInt(20)},
		},
	}

	ids := entry.AccountIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 distinct accounts, got %d", len(ids))
	}
}
