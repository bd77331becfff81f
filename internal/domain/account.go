package domain

import (
	"strings"
	"time"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// NormalSide is the side on which an account balance increases.
type NormalSide string

const (
	NormalSideDebit  NormalSide = "DEBIT"
	NormalSideCredit NormalSide = "CREDIT"
)

// NormalSideFor derives the normal side from the account type.
// Assets and expenses grow on debit; everything else grows on credit.
func NormalSideFor(t AccountType) NormalSide {
	if t == AccountTypeAsset || t == AccountTypeExpense {
		return NormalSideDebit
	}
	return NormalSideCredit
}

// Account is one row in the chart of accounts. Codes are hierarchical
// string keys: "2020" is a child of "202", which is a child of "20".
type Account struct {
	ID         string
	Code       string
	Name       string
	Type       AccountType
	NormalSide NormalSide
	ParentID   *string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks internal consistency of the account record.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Code) == "" || strings.TrimSpace(a.Name) == "" {
		return ErrValidation
	}

	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}

	if a.NormalSide != NormalSideFor(a.Type) {
		return ErrNormalSideMismatch
	}

	return nil
}

// ValidateParent checks that parent can own a child with the given code.
// The parent's code must be a strictly shorter prefix of the child's.
func (a *Account) ValidateParent(parent *Account) error {
	if parent == nil {
		return nil
	}

	if len(parent.Code) >= len(a.Code) || !strings.HasPrefix(a.Code, parent.Code) {
		return ErrInvalidParent
	}

	return nil
}

// AccountNode is an account with its children, rebuilt at read time
// from parent references. The stored structure stays flat.
type AccountNode struct {
	Account  *Account
	Children []*AccountNode
}

// BuildAccountTree arranges a flat account list into a forest ordered
// by code. Accounts whose parent is absent from the list become roots.
func BuildAccountTree(accounts []*Account) []*AccountNode {
	nodes := make(map[string]*AccountNode, len(accounts))
	for _, a := range accounts {
		nodes[a.ID] = &AccountNode{Account: a}
	}

	var roots []*AccountNode
	for _, a := range accounts {
		node := nodes[a.ID]
		if a.ParentID != nil {
			if parent, ok := nodes[*a.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*AccountNode) {
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && nodes[j].Account.Code < nodes[j-1].Account.Code; j-- {
			nodes[j], nodes[j-1] = nodes[j-1], nodes[j]
		}
	}

	for _, n := range nodes {
		sortNodes(n.Children)
	}
}
