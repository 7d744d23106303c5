package dto

import (
	"time"

	"github.com/finledger/finledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new ledger account.
type CreateAccountRequest struct {
	AccountCode       string              `json:"accountCode" binding:"required"`
	AccountName       string              `json:"accountName" binding:"required"`
	AccountType       domain.AccountType  `json:"accountType" binding:"required,accounttype"`
	ParentAccountID   *string             `json:"parentAccountID"`
	Description       string              `json:"description"`
	CurrencyCode      string              `json:"currencyCode" binding:"required,len=3"`
	BankAccountNumber string              `json:"bankAccountNumber"`
	ShowOnDashboard   bool                `json:"showOnDashboard"`
	OpeningBalance    *decimal.Decimal    `json:"openingBalance"`
	OpeningBalanceAs  *domain.BalanceType `json:"openingBalanceType" binding:"omitempty,balancetype"`
	OpeningBalanceOn  *time.Time          `json:"openingBalanceDate"`
}

// UpdateAccountRequest defines the fields allowed when updating an account.
// Pointers distinguish "not provided" from zero values.
type UpdateAccountRequest struct {
	AccountName       *string             `json:"accountName"`
	AccountType       *domain.AccountType `json:"accountType" binding:"omitempty,accounttype"`
	ParentAccountID   *string             `json:"parentAccountID"` // Empty string clears the parent
	Description       *string             `json:"description"`
	BankAccountNumber *string             `json:"bankAccountNumber"`
	ShowOnDashboard   *bool               `json:"showOnDashboard"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID         string                 `json:"accountID"`
	AccountCode       string                 `json:"accountCode"`
	AccountName       string                 `json:"accountName"`
	AccountType       domain.AccountType     `json:"accountType"`
	Category          domain.AccountCategory `json:"category"`
	ParentAccountID   string                 `json:"parentAccountID,omitempty"`
	Description       string                 `json:"description"`
	CurrencyCode      string                 `json:"currencyCode"`
	BankAccountNumber string                 `json:"bankAccountNumber,omitempty"`
	IsActive          bool                   `json:"isActive"`
	IsSystemAccount   bool                   `json:"isSystemAccount"`
	ShowOnDashboard   bool                   `json:"showOnDashboard"`
	OpeningBalance    decimal.Decimal        `json:"openingBalance"`
	OpeningBalanceAs  domain.BalanceType     `json:"openingBalanceType"`
	OpeningBalanceOn  *time.Time             `json:"openingBalanceDate,omitempty"`
	CurrentBalance    decimal.Decimal        `json:"currentBalance"`
	CreatedAt         time.Time              `json:"createdAt"`
	CreatedBy         string                 `json:"createdBy"`
	LastUpdatedAt     time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy     string                 `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	category, _ := acc.Category()
	return AccountResponse{
		AccountID:         acc.AccountID,
		AccountCode:       acc.AccountCode,
		AccountName:       acc.AccountName,
		AccountType:       acc.AccountType,
		Category:          category,
		ParentAccountID:   acc.ParentAccountID,
		Description:       acc.Description,
		CurrencyCode:      acc.CurrencyCode,
		BankAccountNumber: acc.BankAccountNumber,
		IsActive:          acc.IsActive,
		IsSystemAccount:   acc.IsSystemAccount,
		ShowOnDashboard:   acc.ShowOnDashboard,
		OpeningBalance:    acc.OpeningBalance,
		OpeningBalanceAs:  acc.OpeningBalanceAs,
		OpeningBalanceOn:  acc.OpeningBalanceOn,
		CurrentBalance:    acc.CurrentBalance,
		CreatedAt:         acc.CreatedAt,
		CreatedBy:         acc.CreatedBy,
		LastUpdatedAt:     acc.LastUpdatedAt,
		LastUpdatedBy:     acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to responses.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// AccountTreeNode is an account with its recursively nested active children.
type AccountTreeNode struct {
	AccountResponse
	Children []AccountTreeNode `json:"children"`
}

// AccountTreeResponse wraps the root accounts of the hierarchy.
type AccountTreeResponse struct {
	Accounts []AccountTreeNode `json:"accounts"`
}

// SeedSystemAccountsRequest optionally overrides the ledger currency used for
// the platform-default accounts.
type SeedSystemAccountsRequest struct {
	CurrencyCode string `json:"currencyCode" binding:"omitempty,len=3"`
}

// GetAccountParams defines query parameters for retrieving a single account.
type GetAccountParams struct {
	ShowBalance bool `form:"showbalance"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
