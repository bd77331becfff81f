package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/bilans/bilans/internal/adapter/http/dto"
	"github.com/bilans/bilans/internal/domain"
	"github.com/bilans/bilans/internal/usecase"
)

type chartServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn        func(ctx context.Context, id string) (*domain.Account, error)
	listFn       func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	treeFn       func(ctx context.Context) ([]*domain.AccountNode, error)
	deactivateFn func(ctx context.Context, id string) error
	initFn       func(ctx context.Context) (int, error)
}

func (s *chartServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *chartServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *chartServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

func (s *chartServiceStub) GetAccountTree(ctx context.Context) ([]*domain.AccountNode, error) {
	return s.treeFn(ctx)
}

func (s *chartServiceStub) DeactivateAccount(ctx context.Context, id string) error {
	return s.deactivateFn(ctx, id)
}

func (s *chartServiceStub) InitializeDefaultChart(ctx context.Context) (int, error) {
	return s.initFn(ctx)
}

func TestChartHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:         "acc-1",
		Code:       "241",
		Name:       "Giro account",
		Type:       domain.AccountTypeAsset,
		NormalSide: domain.NormalSideDebit,
		IsActive:   true,
	}

	var captured usecase.CreateAccountInput
	h := NewChartHandler(&chartServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		Code: "241",
		Name: "Giro account",
		Type: string(domain.AccountTypeAsset),
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Code != "241" || captured.Type != domain.AccountTypeAsset {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" || resp.NormalSide != string(domain.NormalSideDebit) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestChartHandler_Create_InvalidJSON(t *testing.T) {
	h := NewChartHandler(&chartServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChartHandler_Create_DuplicateCode(t *testing.T) {
	h := NewChartHandler(&chartServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrDuplicateAccountCode
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{Code: "241", Name: "dup", Type: "ASSET"})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChartHandler_Get_NotFound(t *testing.T) {
	h := NewChartHandler(&chartServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestChartHandler_List(t *testing.T) {
	h := NewChartHandler(&chartServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			if input.Limit != 5 || input.Offset != 2 {
				t.Fatalf("expected limit=5 offset=2, got %+v", input)
			}
			return []*domain.Account{{ID: "acc-1"}, {ID: "acc-2"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=5&offset=2", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(resp.Accounts))
	}
}

func TestChartHandler_Tree(t *testing.T) {
	parent := &domain.Account{ID: "acc-2", Code: "2"}
	child := &domain.Account{ID: "acc-24", Code: "24"}
	h := NewChartHandler(&chartServiceStub{
		treeFn: func(ctx context.Context) ([]*domain.AccountNode, error) {
			return []*domain.AccountNode{
				{Account: parent, Children: []*domain.AccountNode{{Account: child}}},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/tree", nil)
	rec := httptest.NewRecorder()

	h.Tree(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.AccountTreeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Roots) != 1 || len(resp.Roots[0].Children) != 1 {
		t.Fatalf("unexpected tree shape: %+v", resp)
	}
	if resp.Roots[0].Children[0].Account.Code != "24" {
		t.Fatalf("expected child code 24, got %s", resp.Roots[0].Children[0].Account.Code)
	}
}

func TestChartHandler_Deactivate_InUse(t *testing.T) {
	h := NewChartHandler(&chartServiceStub{
		deactivateFn: func(ctx context.Context, id string) error {
			return domain.ErrAccountInUse
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	h.Deactivate(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestChartHandler_InitDefault(t *testing.T) {
	h := NewChartHandler(&chartServiceStub{
		initFn: func(ctx context.Context) (int, error) {
			return 12, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/init", nil)
	rec := httptest.NewRecorder()

	h.InitDefault(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["created"] != 12 {
		t.Fatalf("expected created=12, got %d", resp["created"])
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
