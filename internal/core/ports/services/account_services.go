package services

import (
	"context"

	"github.com/finledger/finledger_backend/internal/core/domain"
	"github.com/finledger/finledger_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountSvcFacade exposes all chart-of-account operations.
type AccountSvcFacade interface {
	// CreateAccount validates and persists a new ledger account.
	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// GetAccountByID retrieves an account, recomputing the balance from posted
	// transactions when showBalance is true; otherwise the cached value is returned.
	GetAccountByID(ctx context.Context, tenantID, accountID string, showBalance bool) (*domain.Account, error)

	// ComputeBalance derives the account balance from its posted transactions
	// plus opening balance. This is the authoritative value.
	ComputeBalance(ctx context.Context, tenantID, accountID string) (decimal.Decimal, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, tenantID string, limit, offset int) ([]domain.Account, error)

	// GetAccountTree returns root accounts with recursively nested active children.
	GetAccountTree(ctx context.Context, tenantID string) ([]dto.AccountTreeNode, error)

	// GetDescendants returns the IDs of all accounts transitively parented by
	// the given account.
	GetDescendants(ctx context.Context, tenantID, accountID string) ([]string, error)

	// UpdateAccount applies the permitted field changes, enforcing the
	// system-account, hierarchy and type-change guards.
	UpdateAccount(ctx context.Context, tenantID, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// ActivateAccount marks an account active.
	ActivateAccount(ctx context.Context, tenantID, accountID, userID string) error

	// DeactivateAccount marks an account inactive; fails while the account
	// carries any transaction.
	DeactivateAccount(ctx context.Context, tenantID, accountID, userID string) error

	// DeleteAccount removes an account; fails for system accounts and for
	// accounts with transactions or children.
	DeleteAccount(ctx context.Context, tenantID, accountID string) error

	// SeedSystemAccounts creates the platform-default accounts for a tenant
	// if they do not exist yet.
	SeedSystemAccounts(ctx context.Context, tenantID, currencyCode, userID string) error
}
