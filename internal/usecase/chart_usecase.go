package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilans/bilans/internal/domain"
)

const accountTreeCacheKey = "chart:tree"

// ChartUseCase handles chart-of-accounts business logic.
type ChartUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	journalRepo JournalRepository
	cache       Cache
	idGen       IDGenerator
	logger      zerolog.Logger
}

// NewChartUseCase creates a new ChartUseCase. cache may be nil.
func NewChartUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	cache Cache,
	idGen IDGenerator,
	logger zerolog.Logger,
) *ChartUseCase {
	return &ChartUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		cache:       cache,
		idGen:       idGen,
		logger:      logger,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Code       string
	Name       string
	Type       domain.AccountType
	NormalSide *domain.NormalSide
	ParentID   *string
}

// CreateAccount validates and creates one chart-of-accounts entry.
// The normal side is derived from the type unless explicitly given,
// in which case it must not contradict it.
func (uc *ChartUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	now := time.Now().UTC()

	account := &domain.Account{
		ID:         uc.idGen.Generate(),
		Code:       input.Code,
		Name:       input.Name,
		Type:       input.Type,
		NormalSide: domain.NormalSideFor(input.Type),
		ParentID:   input.ParentID,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if input.NormalSide != nil {
		account.NormalSide = *input.NormalSide
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		parent, err := uc.accountRepo.GetByID(ctx, *input.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return nil, domain.ErrInvalidParent
			}
			return nil, err
		}

		if err := account.ValidateParent(parent); err != nil {
			return nil, err
		}
	}

	existing, err := uc.accountRepo.GetByCode(ctx, input.Code)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateAccountCode
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.invalidateTree(ctx)

	return account, nil
}

// InitializeDefaultChart bulk-inserts the default hierarchy. It is
// idempotent: if any account exists already, nothing is inserted.
func (uc *ChartUseCase) InitializeDefaultChart(ctx context.Context) (int, error) {
	count, err := uc.accountRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		uc.logger.Info().Int64("accounts", count).Msg("chart already initialized, skipping")
		return 0, nil
	}

	now := time.Now().UTC()
	specs := DefaultChart()

	accounts := make([]*domain.Account, 0, len(specs))
	byCode := make(map[string]*domain.Account, len(specs))

	for _, s := range specs {
		account := &domain.Account{
			ID:         uc.idGen.Generate(),
			Code:       s.Code,
			Name:       s.Name,
			Type:       s.Type,
			NormalSide: domain.NormalSideFor(s.Type),
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if s.ParentCode != "" {
			parent, ok := byCode[s.ParentCode]
			if !ok {
				return 0, fmt.Errorf("default chart references unknown parent code %s", s.ParentCode)
			}
			account.ParentID = &parent.ID
		}

		accounts = append(accounts, account)
		byCode[s.Code] = account
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.CreateBatch(ctx, tx, accounts); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	uc.invalidateTree(ctx)
	uc.logger.Info().Int("accounts", len(accounts)).Msg("default chart initialized")

	return len(accounts), nil
}

// DeactivateAccount soft-deactivates an account. Accounts referenced
// by any journal line, draft or posted, can never be removed, so
// deactivation refuses nothing else.
func (uc *ChartUseCase) DeactivateAccount(ctx context.Context, id string) error {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	used, err := uc.journalRepo.HasLinesForAccount(ctx, account.ID)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrAccountInUse
	}

	if err := uc.accountRepo.SetActive(ctx, account.ID, false, time.Now().UTC()); err != nil {
		return err
	}

	uc.invalidateTree(ctx)

	return nil
}

// GetAccount retrieves an account by ID.
func (uc *ChartUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *ChartUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}
	if input.Limit > 500 {
		input.Limit = 500
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}

// GetAccountTree returns the chart as a forest keyed by code prefix.
// The tree is a read-time aggregation cached until the next write.
func (uc *ChartUseCase) GetAccountTree(ctx context.Context) ([]*domain.AccountNode, error) {
	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, accountTreeCacheKey); err == nil && raw != nil {
			var accounts []*domain.Account
			if err := json.Unmarshal(raw, &accounts); err == nil {
				return domain.BuildAccountTree(accounts), nil
			}
		}
	}

	accounts, err := uc.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(accounts); err == nil {
			_ = uc.cache.Set(ctx, accountTreeCacheKey, raw, 5*time.Minute)
		}
	}

	return domain.BuildAccountTree(accounts), nil
}

func (uc *ChartUseCase) invalidateTree(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, accountTreeCacheKey); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to invalidate account tree cache")
	}
}
