package services

import (
	"context"

	"github.com/finledger/finledger_backend/internal/core/domain"
	"github.com/finledger/finledger_backend/internal/dto"
)

// TransactionSvcFacade exposes transaction entry and the posting/reversal engine.
type TransactionSvcFacade interface {
	// CreateTransaction validates and persists a new draft transaction,
	// auto-generating the transaction number when blank.
	CreateTransaction(ctx context.Context, tenantID string, req dto.CreateTransactionRequest, userID string) (*domain.AccountTransaction, error)

	// GetTransactionByID retrieves a specific transaction.
	GetTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.AccountTransaction, error)

	// ListTransactionsByAccount retrieves a paginated transaction list for an account.
	ListTransactionsByAccount(ctx context.Context, tenantID, accountID string, params dto.ListTransactionsParams) ([]domain.AccountTransaction, error)

	// UpdateTransaction edits a transaction; legal only while in draft.
	UpdateTransaction(ctx context.Context, tenantID, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.AccountTransaction, error)

	// DeleteTransaction removes a transaction; posted transactions can never be deleted.
	DeleteTransaction(ctx context.Context, tenantID, transactionID string) error

	// PostTransaction moves a draft transaction to posted, updating the
	// account's cached balance in the same database transaction.
	PostTransaction(ctx context.Context, tenantID, transactionID, userID string) (*domain.AccountTransaction, error)

	// BulkPostTransactions posts a set of transactions, all-or-nothing per ID,
	// and reports each ID's outcome.
	BulkPostTransactions(ctx context.Context, tenantID string, transactionIDs []string, userID string) *dto.BulkPostResponse

	// VoidTransaction voids a draft or posted transaction, excluding it from
	// balance computation.
	VoidTransaction(ctx context.Context, tenantID, transactionID, userID string) (*domain.AccountTransaction, error)

	// CancelTransaction cancels a draft transaction.
	CancelTransaction(ctx context.Context, tenantID, transactionID, userID string) (*domain.AccountTransaction, error)

	// ReverseTransaction creates and posts the equal-and-opposite reversal of
	// a posted transaction.
	ReverseTransaction(ctx context.Context, tenantID, transactionID string, req dto.ReverseTransactionRequest, userID string) (*domain.AccountTransaction, error)
}
