package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger_backend/internal/apperrors"
	"github.com/finledger/finledger_backend/internal/core/domain"
	portsrepo "github.com/finledger/finledger_backend/internal/core/ports/repositories"
	"github.com/finledger/finledger_backend/internal/models"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryWithTx {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, tenant_id, account_code, account_name, account_type, parent_account_id, description, currency_code, bank_account_number, is_active, is_system_account, show_on_dashboard, opening_balance, opening_balance_type, opening_balance_date, current_balance, created_at, created_by, last_updated_at, last_updated_by`

func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:         d.AccountID,
		TenantID:          d.TenantID,
		AccountCode:       d.AccountCode,
		AccountName:       d.AccountName,
		AccountType:       string(d.AccountType),
		ParentAccountID:   d.ParentAccountID,
		Description:       d.Description,
		CurrencyCode:      d.CurrencyCode,
		BankAccountNumber: d.BankAccountNumber,
		IsActive:          d.IsActive,
		IsSystemAccount:   d.IsSystemAccount,
		ShowOnDashboard:   d.ShowOnDashboard,
		OpeningBalance:    d.OpeningBalance,
		OpeningBalanceAs:  string(d.OpeningBalanceAs),
		OpeningBalanceOn:  d.OpeningBalanceOn,
		CurrentBalance:    d.CurrentBalance,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:         m.AccountID,
		TenantID:          m.TenantID,
		AccountCode:       m.AccountCode,
		AccountName:       m.AccountName,
		AccountType:       domain.AccountType(m.AccountType),
		ParentAccountID:   m.ParentAccountID,
		Description:       m.Description,
		CurrencyCode:      m.CurrencyCode,
		BankAccountNumber: m.BankAccountNumber,
		IsActive:          m.IsActive,
		IsSystemAccount:   m.IsSystemAccount,
		ShowOnDashboard:   m.ShowOnDashboard,
		OpeningBalance:    m.OpeningBalance,
		OpeningBalanceAs:  domain.BalanceType(m.OpeningBalanceAs),
		OpeningBalanceOn:  m.OpeningBalanceOn,
		CurrentBalance:    m.CurrentBalance,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (models.Account, error) {
	var m models.Account
	var parentID sql.NullString
	err := row.Scan(
		&m.AccountID,
		&m.TenantID,
		&m.AccountCode,
		&m.AccountName,
		&m.AccountType,
		&parentID,
		&m.Description,
		&m.CurrencyCode,
		&m.BankAccountNumber,
		&m.IsActive,
		&m.IsSystemAccount,
		&m.ShowOnDashboard,
		&m.OpeningBalance,
		&m.OpeningBalanceAs,
		&m.OpeningBalanceOn,
		&m.CurrentBalance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Account{}, err
	}
	if parentID.Valid {
		m.ParentAccountID = parentID.String
	}
	return m, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.TenantID,
		m.AccountCode,
		m.AccountName,
		m.AccountType,
		nullableString(m.ParentAccountID),
		m.Description,
		m.CurrencyCode,
		m.BankAccountNumber,
		m.IsActive,
		m.IsSystemAccount,
		m.ShowOnDashboard,
		m.OpeningBalance,
		m.OpeningBalanceAs,
		m.OpeningBalanceOn,
		m.CurrentBalance,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account code '%s' already exists", apperrors.ErrDuplicate, m.AccountCode)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID within a tenant.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = $2;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, tenantID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	acc := toDomainAccount(m)
	return &acc, nil
}

// FindAccountByCode retrieves an account by its tenant-unique code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID, accountCode string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_code = $2;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, tenantID, accountCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account code '%s'", apperrors.ErrNotFound, accountCode)
		}
		return nil, fmt.Errorf("failed to find account by code '%s': %w", accountCode, err)
	}
	acc := toDomainAccount(m)
	return &acc, nil
}

func (r *PgxAccountRepository) collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	defer rows.Close()
	var accounts []domain.Account
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, toDomainAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading account rows: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves a paginated list of accounts, code order.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string, limit, offset int) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 ORDER BY account_code LIMIT $2 OFFSET $3;`

	rows, err := r.Pool.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return r.collectAccounts(rows)
}

// ListActiveAccounts retrieves every active account for a tenant.
func (r *PgxAccountRepository) ListActiveAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND is_active ORDER BY account_code;`

	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	return r.collectAccounts(rows)
}

// FindDescendantAccountIDs walks the parent hierarchy with a recursive CTE.
func (r *PgxAccountRepository) FindDescendantAccountIDs(ctx context.Context, tenantID, accountID string) ([]string, error) {
	query := `
		WITH RECURSIVE descendants AS (
			SELECT account_id FROM accounts WHERE tenant_id = $1 AND parent_account_id = $2
			UNION ALL
			SELECT a.account_id FROM accounts a
			INNER JOIN descendants d ON a.parent_account_id = d.account_id
			WHERE a.tenant_id = $1
		)
		SELECT account_id FROM descendants;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query descendants of %s: %w", accountID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan descendant id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading descendant rows: %w", err)
	}
	return ids, nil
}

// HasChildAccounts reports whether any account names the given one as parent.
func (r *PgxAccountRepository) HasChildAccounts(ctx context.Context, tenantID, accountID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE tenant_id = $1 AND parent_account_id = $2);`

	var exists bool
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check children of %s: %w", accountID, err)
	}
	return exists, nil
}

// HasTransactions reports whether the account carries any transaction, in any status.
func (r *PgxAccountRepository) HasTransactions(ctx context.Context, tenantID, accountID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM account_transactions WHERE tenant_id = $1 AND account_id = $2);`

	var exists bool
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check transactions of %s: %w", accountID, err)
	}
	return exists, nil
}

// SumPostedAmounts sums debit and credit amounts across posted transactions.
func (r *PgxAccountRepository) SumPostedAmounts(ctx context.Context, tenantID, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(debit_amount), 0), COALESCE(SUM(credit_amount), 0)
		FROM account_transactions
		WHERE tenant_id = $1 AND account_id = $2 AND transaction_status = 'posted';
	`
	var totalDebit, totalCredit decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID).Scan(&totalDebit, &totalCredit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum posted amounts for %s: %w", accountID, err)
	}
	return totalDebit, totalCredit, nil
}

// UpdateAccount persists the editable fields of an existing account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)

	query := `
		UPDATE accounts SET
			account_name = $3,
			account_type = $4,
			parent_account_id = $5,
			description = $6,
			bank_account_number = $7,
			show_on_dashboard = $8,
			last_updated_at = $9,
			last_updated_by = $10
		WHERE tenant_id = $1 AND account_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.TenantID,
		m.AccountID,
		m.AccountName,
		m.AccountType,
		nullableString(m.ParentAccountID),
		m.Description,
		m.BankAccountNumber,
		m.ShowOnDashboard,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, m.AccountID)
	}
	return nil
}

// SetAccountActive toggles the active flag.
func (r *PgxAccountRepository) SetAccountActive(ctx context.Context, tenantID, accountID string, active bool, userID string, now time.Time) error {
	query := `
		UPDATE accounts SET is_active = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND account_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, tenantID, accountID, active, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set active flag on account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return nil
}

// DeleteAccount removes an account row.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, tenantID, accountID string) error {
	query := `DELETE FROM accounts WHERE tenant_id = $1 AND account_id = $2;`

	tag, err := r.Pool.Exec(ctx, query, tenantID, accountID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // Foreign key violation
			return fmt.Errorf("%w: account %s is referenced by other rows", apperrors.ErrConflict, accountID)
		}
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return nil
}

// FindAccountByIDForUpdate selects the account row and locks it FOR UPDATE.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, tenantID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = $2 FOR UPDATE;`

	m, err := scanAccount(tx.QueryRow(ctx, query, tenantID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	acc := toDomainAccount(m)
	return &acc, nil
}

// ApplyBalanceDeltaInTx adjusts the cached current balance by a signed delta.
// Must run on a row already locked via FindAccountByIDForUpdate.
func (r *PgxAccountRepository) ApplyBalanceDeltaInTx(ctx context.Context, tx pgx.Tx, tenantID, accountID string, delta decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE accounts SET current_balance = current_balance + $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND account_id = $2;
	`
	tag, err := tx.Exec(ctx, query, tenantID, accountID, delta, now, userID)
	if err != nil {
		return fmt.Errorf("failed to apply balance delta to account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return nil
}
