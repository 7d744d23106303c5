package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finledger/finledger_backend/internal/apperrors"
	"github.com/finledger/finledger_backend/internal/core/domain"
	portsrepo "github.com/finledger/finledger_backend/internal/core/ports/repositories"
	"github.com/finledger/finledger_backend/internal/models"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, transaction_number, tenant_id, account_id, transaction_type, transaction_source, is_manual_entry, debit_amount, credit_amount, debit_or_credit, currency_code, exchange_rate, contact_id, payee, reference_number, invoice_id, estimate_id, sales_order_id, payment_id, transaction_date, description, transaction_status, is_reversal, reversal_of_id, reversed_by_id, posted_by, posted_at, created_at, created_by, last_updated_at, last_updated_by`

func toModelTransaction(d domain.AccountTransaction) models.AccountTransaction {
	return models.AccountTransaction{
		TransactionID:     d.TransactionID,
		TransactionNumber: d.TransactionNumber,
		TenantID:          d.TenantID,
		AccountID:         d.AccountID,
		TransactionType:   string(d.Type),
		TransactionSource: string(d.Source),
		IsManualEntry:     d.IsManualEntry,
		DebitAmount:       d.DebitAmount,
		CreditAmount:      d.CreditAmount,
		DebitOrCredit:     string(d.DebitOrCredit),
		CurrencyCode:      d.CurrencyCode,
		ExchangeRate:      d.ExchangeRate,
		ContactID:         d.ContactID,
		Payee:             d.Payee,
		ReferenceNumber:   d.ReferenceNumber,
		InvoiceID:         d.InvoiceID,
		EstimateID:        d.EstimateID,
		SalesOrderID:      d.SalesOrderID,
		PaymentID:         d.PaymentID,
		TransactionDate:   d.TransactionDate,
		Description:       d.Description,
		Status:            string(d.Status),
		IsReversal:        d.IsReversal,
		ReversalOfID:      d.ReversalOfID,
		ReversedByID:      d.ReversedByID,
		PostedBy:          d.PostedBy,
		PostedAt:          d.PostedAt,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainTransaction(m models.AccountTransaction) domain.AccountTransaction {
	return domain.AccountTransaction{
		TransactionID:     m.TransactionID,
		TransactionNumber: m.TransactionNumber,
		TenantID:          m.TenantID,
		AccountID:         m.AccountID,
		Type:              domain.TransactionType(m.TransactionType),
		Source:            domain.TransactionSource(m.TransactionSource),
		IsManualEntry:     m.IsManualEntry,
		DebitAmount:       m.DebitAmount,
		CreditAmount:      m.CreditAmount,
		DebitOrCredit:     domain.BalanceType(m.DebitOrCredit),
		CurrencyCode:      m.CurrencyCode,
		ExchangeRate:      m.ExchangeRate,
		ContactID:         m.ContactID,
		Payee:             m.Payee,
		ReferenceNumber:   m.ReferenceNumber,
		InvoiceID:         m.InvoiceID,
		EstimateID:        m.EstimateID,
		SalesOrderID:      m.SalesOrderID,
		PaymentID:         m.PaymentID,
		TransactionDate:   m.TransactionDate,
		Description:       m.Description,
		Status:            domain.TransactionStatus(m.Status),
		IsReversal:        m.IsReversal,
		ReversalOfID:      m.ReversalOfID,
		ReversedByID:      m.ReversedByID,
		PostedBy:          m.PostedBy,
		PostedAt:          m.PostedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanTransaction(row rowScanner) (models.AccountTransaction, error) {
	var m models.AccountTransaction
	err := row.Scan(
		&m.TransactionID,
		&m.TransactionNumber,
		&m.TenantID,
		&m.AccountID,
		&m.TransactionType,
		&m.TransactionSource,
		&m.IsManualEntry,
		&m.DebitAmount,
		&m.CreditAmount,
		&m.DebitOrCredit,
		&m.CurrencyCode,
		&m.ExchangeRate,
		&m.ContactID,
		&m.Payee,
		&m.ReferenceNumber,
		&m.InvoiceID,
		&m.EstimateID,
		&m.SalesOrderID,
		&m.PaymentID,
		&m.TransactionDate,
		&m.Description,
		&m.Status,
		&m.IsReversal,
		&m.ReversalOfID,
		&m.ReversedByID,
		&m.PostedBy,
		&m.PostedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func insertTransactionQuery() string {
	return `
		INSERT INTO account_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31);
	`
}

func insertTransactionArgs(m models.AccountTransaction) []any {
	return []any{
		m.TransactionID,
		m.TransactionNumber,
		m.TenantID,
		m.AccountID,
		m.TransactionType,
		m.TransactionSource,
		m.IsManualEntry,
		m.DebitAmount,
		m.CreditAmount,
		m.DebitOrCredit,
		m.CurrencyCode,
		m.ExchangeRate,
		m.ContactID,
		m.Payee,
		m.ReferenceNumber,
		m.InvoiceID,
		m.EstimateID,
		m.SalesOrderID,
		m.PaymentID,
		m.TransactionDate,
		m.Description,
		m.Status,
		m.IsReversal,
		m.ReversalOfID,
		m.ReversedByID,
		m.PostedBy,
		m.PostedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

// SaveTransaction inserts a new transaction row.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.AccountTransaction) error {
	m := toModelTransaction(txn)

	_, err := r.Pool.Exec(ctx, insertTransactionQuery(), insertTransactionArgs(m)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: transaction number '%s' already exists", apperrors.ErrDuplicate, m.TransactionNumber)
		}
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction by ID within a tenant.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.AccountTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM account_transactions WHERE tenant_id = $1 AND transaction_id = $2;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, tenantID, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	txn := toDomainTransaction(m)
	return &txn, nil
}

// ListTransactionsByAccount retrieves a page of transactions, newest first.
func (r *PgxTransactionRepository) ListTransactionsByAccount(ctx context.Context, tenantID, accountID string, limit, offset int) ([]domain.AccountTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM account_transactions
		WHERE tenant_id = $1 AND account_id = $2
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var txns []domain.AccountTransaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, toDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading transaction rows: %w", err)
	}
	return txns, nil
}

// UpdateTransaction persists the draft-editable fields.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.AccountTransaction) error {
	m := toModelTransaction(txn)

	query := `
		UPDATE account_transactions SET
			debit_amount = $3,
			credit_amount = $4,
			debit_or_credit = $5,
			contact_id = $6,
			payee = $7,
			reference_number = $8,
			transaction_date = $9,
			description = $10,
			last_updated_at = $11,
			last_updated_by = $12
		WHERE tenant_id = $1 AND transaction_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.TenantID,
		m.TransactionID,
		m.DebitAmount,
		m.CreditAmount,
		m.DebitOrCredit,
		m.ContactID,
		m.Payee,
		m.ReferenceNumber,
		m.TransactionDate,
		m.Description,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, m.TransactionID)
	}
	return nil
}

// DeleteTransaction removes a transaction row.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, tenantID, transactionID string) error {
	query := `DELETE FROM account_transactions WHERE tenant_id = $1 AND transaction_id = $2;`

	tag, err := r.Pool.Exec(ctx, query, tenantID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return nil
}

// FindTransactionByIDForUpdate selects the transaction row and locks it FOR UPDATE.
func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, tenantID, transactionID string) (*domain.AccountTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM account_transactions WHERE tenant_id = $1 AND transaction_id = $2 FOR UPDATE;`

	m, err := scanTransaction(tx.QueryRow(ctx, query, tenantID, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to lock transaction %s: %w", transactionID, err)
	}
	txn := toDomainTransaction(m)
	return &txn, nil
}

// MarkTransactionPostedInTx moves a transaction to posted, stamping the poster.
func (r *PgxTransactionRepository) MarkTransactionPostedInTx(ctx context.Context, tx pgx.Tx, tenantID, transactionID, postedBy string, postedAt time.Time) error {
	query := `
		UPDATE account_transactions SET
			transaction_status = 'posted',
			posted_by = $3,
			posted_at = $4,
			last_updated_at = $4,
			last_updated_by = $3
		WHERE tenant_id = $1 AND transaction_id = $2;
	`
	tag, err := tx.Exec(ctx, query, tenantID, transactionID, postedBy, postedAt)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s posted: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return nil
}

// MarkTransactionStatusInTx sets the transaction status.
func (r *PgxTransactionRepository) MarkTransactionStatusInTx(ctx context.Context, tx pgx.Tx, tenantID, transactionID string, status domain.TransactionStatus, userID string, now time.Time) error {
	query := `
		UPDATE account_transactions SET transaction_status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND transaction_id = $2;
	`
	tag, err := tx.Exec(ctx, query, tenantID, transactionID, string(status), now, userID)
	if err != nil {
		return fmt.Errorf("failed to set status of transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return nil
}

// SaveReversalInTx inserts the reversal and links the original to it in one
// round trip, batched, inside the caller's transaction.
func (r *PgxTransactionRepository) SaveReversalInTx(ctx context.Context, tx pgx.Tx, reversal domain.AccountTransaction, originalTransactionID string) error {
	m := toModelTransaction(reversal)

	batch := &pgx.Batch{}
	batch.Queue(insertTransactionQuery(), insertTransactionArgs(m)...)
	batch.Queue(`
		UPDATE account_transactions SET reversed_by_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND transaction_id = $2;
	`, m.TenantID, originalTransactionID, m.TransactionID, m.LastUpdatedAt, m.LastUpdatedBy)

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	if _, err := results.Exec(); err != nil {
		return fmt.Errorf("failed to insert reversal %s: %w", m.TransactionID, err)
	}
	tag, err := results.Exec()
	if err != nil {
		return fmt.Errorf("failed to link reversal to transaction %s: %w", originalTransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, originalTransactionID)
	}
	return nil
}
