package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for chart-of-account data.
// Every operation is scoped to a tenant; there is no ambient tenant state.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its tenant-unique account code.
	FindAccountByCode(ctx context.Context, tenantID, accountCode string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts for a tenant.
	ListAccounts(ctx context.Context, tenantID string, limit, offset int) ([]domain.Account, error)

	// ListActiveAccounts retrieves every active account for a tenant, for tree assembly.
	ListActiveAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)

	// FindDescendantAccountIDs returns the IDs of all accounts transitively
	// parented by the given account (the account itself excluded).
	FindDescendantAccountIDs(ctx context.Context, tenantID, accountID string) ([]string, error)

	// HasChildAccounts reports whether any account names the given account as parent.
	HasChildAccounts(ctx context.Context, tenantID, accountID string) (bool, error)

	// HasTransactions reports whether the account has ever carried a transaction,
	// in any status.
	HasTransactions(ctx context.Context, tenantID, accountID string) (bool, error)

	// SumPostedAmounts sums debit and credit amounts independently across all
	// posted transactions on the account.
	SumPostedAmounts(ctx context.Context, tenantID, accountID string) (totalDebit, totalCredit decimal.Decimal, err error)
}

// AccountWriter defines write operations for chart-of-account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// SetAccountActive toggles the active flag.
	SetAccountActive(ctx context.Context, tenantID, accountID string, active bool, userID string, now time.Time) error

	// DeleteAccount removes an account row. Guards (system flag, transactions,
	// children) are enforced by the service layer before this is called.
	DeleteAccount(ctx context.Context, tenantID, accountID string) error
}

// AccountPostingSupport defines operations used by the posting engine inside
// a database transaction.
type AccountPostingSupport interface {
	// FindAccountByIDForUpdate selects the account row and locks it FOR UPDATE.
	FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, tenantID, accountID string) (*domain.Account, error)

	// ApplyBalanceDeltaInTx adjusts the cached current balance by a signed delta.
	ApplyBalanceDeltaInTx(ctx context.Context, tx pgx.Tx, tenantID, accountID string, delta decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountPostingSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities.
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
