package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TransactionReader defines read operations for account transactions.
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction.
	FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.AccountTransaction, error)

	// ListTransactionsByAccount retrieves a paginated list of transactions
	// for a specific account, newest first.
	ListTransactionsByAccount(ctx context.Context, tenantID, accountID string, limit, offset int) ([]domain.AccountTransaction, error)
}

// TransactionWriter defines write operations for draft transactions.
type TransactionWriter interface {
	// SaveTransaction persists a new transaction.
	SaveTransaction(ctx context.Context, txn domain.AccountTransaction) error

	// UpdateTransaction updates an existing transaction's editable fields.
	// Status guards are enforced by the service layer.
	UpdateTransaction(ctx context.Context, txn domain.AccountTransaction) error

	// DeleteTransaction removes a transaction row.
	DeleteTransaction(ctx context.Context, tenantID, transactionID string) error
}

// TransactionPostingSupport defines the state-transition operations that must
// run inside a database transaction.
type TransactionPostingSupport interface {
	// FindTransactionByIDForUpdate selects the transaction row and locks it FOR UPDATE.
	FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, tenantID, transactionID string) (*domain.AccountTransaction, error)

	// MarkTransactionPostedInTx moves a transaction to posted, stamping posted_by
	// and the posting timestamp.
	MarkTransactionPostedInTx(ctx context.Context, tx pgx.Tx, tenantID, transactionID, postedBy string, postedAt time.Time) error

	// MarkTransactionStatusInTx sets the transaction status (void, cancelled).
	MarkTransactionStatusInTx(ctx context.Context, tx pgx.Tx, tenantID, transactionID string, status domain.TransactionStatus, userID string, now time.Time) error

	// SaveReversalInTx inserts the reversal transaction and links it to the
	// original via the reversed_by reference, atomically.
	SaveReversalInTx(ctx context.Context, tx pgx.Tx, reversal domain.AccountTransaction, originalTransactionID string) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionPostingSupport
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with
// transaction capabilities.
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
