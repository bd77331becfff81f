package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/usecase"
	"github.com/bilans/bilans/internal/usecase/mocks"
)

func newChartUseCase(accountRepo *mocks.MockAccountRepository, journalRepo *mocks.MockJournalRepository) *usecase.ChartUseCase {
	return usecase.NewChartUseCase(
		mocks.NewMockTxManager(),
		accountRepo,
		journalRepo,
		mocks.NewMockCache(),
		mocks.NewMockIDGenerator(),
		zerolog.Nop(),
	)
}

func TestChartUseCase_CreateAccount(t *testing.T) {
	credit := domain.NormalSideCredit

	tests := []struct {
		name        string
		input       usecase.CreateAccountInput
		seed        []*domain.Account
		expectError error
	}{
		{
			name:  "derives normal side from type",
			input: usecase.CreateAccountInput{Code: "202", Name: "Kupci u zemlji", Type: domain.AccountTypeAsset},
		},
		{
			name:        "explicit normal side contradicting type",
			input:       usecase.CreateAccountInput{Code: "202", Name: "Kupci u zemlji", Type: domain.AccountTypeAsset, NormalSide: &credit},
			expectError: domain.ErrNormalSideMismatch,
		},
		{
			name:        "duplicate code",
			input:       usecase.CreateAccountInput{Code: "202", Name: "Kupci u zemlji", Type: domain.AccountTypeAsset},
			seed:        []*domain.Account{{ID: "existing", Code: "202", Name: "Kupci", Type: domain.AccountTypeAsset, NormalSide: domain.NormalSideDebit}},
			expectError: domain.ErrDuplicateAccountCode,
		},
		{
			name:        "unknown type",
			input:       usecase.CreateAccountInput{Code: "202", Name: "x", Type: "FANTASY"},
			expectError: domain.ErrInvalidAccountType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountRepo := mocks.NewMockAccountRepository()
			accountRepo.Seed(tt.seed...)
			uc := newChartUseCase(accountRepo, mocks.NewMockJournalRepository())

			account, err := uc.CreateAccount(context.Background(), tt.input)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account.NormalSide != domain.NormalSideFor(tt.input.Type) {
				t.Errorf("normal side = %s", account.NormalSide)
			}
			if !account.IsActive {
				t.Error("new account should be active")
			}
		})
	}
}

func TestChartUseCase_CreateAccount_ParentValidation(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	parent := &domain.Account{ID: "p-20", Code: "20", Name: "Potraživanja", Type: domain.AccountTypeAsset, NormalSide: domain.NormalSideDebit, IsActive: true}
	accountRepo.Seed(parent)

	uc := newChartUseCase(accountRepo, mocks.NewMockJournalRepository())

	_, err := uc.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code: "202", Name: "Kupci u zemlji", Type: domain.AccountTypeAsset, ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = uc.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code: "433", Name: "Dobavljači", Type: domain.AccountTypeLiability, ParentID: &parent.ID,
	})
	if !errors.Is(err, domain.ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}

	missing := "no-such-parent"
	_, err = uc.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code: "204", Name: "Kupci u inostranstvu", Type: domain.AccountTypeAsset, ParentID: &missing,
	})
	if !errors.Is(err, domain.ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent for missing parent, got %v", err)
	}
}

func TestChartUseCase_InitializeDefaultChart(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	uc := newChartUseCase(accountRepo, mocks.NewMockJournalRepository())

	created, err := uc.InitializeDefaultChart(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == 0 {
		t.Fatal("expected accounts to be created")
	}

	// A second run must be a no-op, not a duplication.
	again, err := uc.InitializeDefaultChart(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != 0 {
		t.Errorf("expected idempotent no-op, created %d", again)
	}

	count, _ := accountRepo.Count(context.Background())
	if count != int64(created) {
		t.Errorf("account count = %d, want %d", count, created)
	}
}

func TestChartUseCase_DeactivateAccount(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	journalRepo := mocks.NewMockJournalRepository()

	used := &domain.Account{ID: "a-202", Code: "202", Name: "Kupci", Type: domain.AccountTypeAsset, NormalSide: domain.NormalSideDebit, IsActive: true}
	idle := &domain.Account{ID: "a-612", Code: "612", Name: "Usluge", Type: domain.AccountTypeRevenue, NormalSide: domain.NormalSideCredit, IsActive: true}
	accountRepo.Seed(used, idle)

	journalRepo.Seed(&domain.JournalEntry{
		ID:     "e-1",
		Status: domain.EntryStatusDraft,
		Lines:  []domain.JournalLine{{ID: "l-1", EntryID: "e-1", AccountID: "a-202", Debit: decimal.NewFromInt(100)}},
	})

	uc := newChartUseCase(accountRepo, journalRepo)

	// Draft lines count as usage too.
	err := uc.DeactivateAccount(context.Background(), "a-202")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for used account, got %v", err)
	}

	if err := uc.DeactivateAccount(context.Background(), "a-612"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, _ := accountRepo.GetByID(context.Background(), "a-612")
	if account.IsActive {
		t.Error("account should be deactivated")
	}
}

func TestChartUseCase_GetAccountTree_UsesCache(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	rootID := "a-20"
	accountRepo.Seed(
		&domain.Account{ID: rootID, Code: "20", Name: "Potraživanja", Type: domain.AccountTypeAsset, NormalSide: domain.NormalSideDebit, IsActive: true},
		&domain.Account{ID: "a-202", Code: "202", Name: "Kupci", Type: domain.AccountTypeAsset, NormalSide: domain.NormalSideDebit, ParentID: &rootID, IsActive: true, CreatedAt: time.Now()},
	)

	uc := newChartUseCase(accountRepo, mocks.NewMockJournalRepository())

	tree, err := uc.GetAccountTree(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Children) != 1 {
		t.Fatalf("unexpected tree shape")
	}

	// Second read should be served from cache even if the repo fails.
	accountRepo.ListAllFunc = func(ctx context.Context) ([]*domain.Account, error) {
		t.Fatal("expected cached read")
		return nil, nil
	}

	if _, err := uc.GetAccountTree(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
