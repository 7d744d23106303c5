package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger_backend/internal/apperrors"
	"github.com/finledger/finledger_backend/internal/core/domain"
	portsrepo "github.com/finledger/finledger_backend/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger_backend/internal/core/ports/services"
	"github.com/finledger/finledger_backend/internal/dto"
	"github.com/finledger/finledger_backend/internal/middleware"
	"github.com/finledger/finledger_backend/internal/utils/accounting"
)

// accountService provides chart-of-account operations.
type accountService struct {
	accountRepo  portsrepo.AccountRepositoryWithTx
	currencyRepo portsrepo.CurrencyRepository
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx, currencyRepo portsrepo.CurrencyRepository) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// systemAccountDefaults are the platform-seeded accounts created per tenant.
var systemAccountDefaults = []struct {
	Code string
	Name string
	Type domain.AccountType
}{
	{"1100", "Accounts Receivable", domain.AccountTypeAccountsReceivable},
	{"1400", "Undeposited Funds", domain.AccountTypePaymentClearing},
	{"2100", "Accounts Payable", domain.AccountTypeAccountsPayable},
	{"3900", "Retained Earnings", domain.AccountTypeEquity},
}

func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type '%s'", apperrors.ErrValidation, req.AccountType)
	}

	// Account code must be unique within the tenant.
	existing, err := s.accountRepo.FindAccountByCode(ctx, tenantID, req.AccountCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check account code uniqueness", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account code '%s' is already in use", apperrors.ErrDuplicate, req.AccountCode)
	}

	if req.BankAccountNumber != "" && !req.AccountType.SupportsBankDetails() {
		return nil, fmt.Errorf("%w: bank account number is only allowed for bank and credit_card accounts", apperrors.ErrValidation)
	}

	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown currency '%s'", apperrors.ErrValidation, req.CurrencyCode)
		}
		return nil, fmt.Errorf("failed to check currency: %w", err)
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, tenantID, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s", apperrors.ErrNotFound, *req.ParentAccountID)
			}
			return nil, fmt.Errorf("failed to fetch parent account: %w", err)
		}
		if err := validateCategoryMatch(req.AccountType, parent.AccountType); err != nil {
			return nil, err
		}
		parentID = parent.AccountID
	}

	openingBalance := decimal.Zero
	openingSide := req.AccountType.MustCategory().NormalSide()
	if req.OpeningBalance != nil && !req.OpeningBalance.IsZero() {
		if req.OpeningBalance.IsNegative() {
			return nil, fmt.Errorf("%w: opening balance must be a non-negative magnitude", apperrors.ErrValidation)
		}
		if req.OpeningBalanceAs == nil {
			return nil, fmt.Errorf("%w: opening balance type is required when an opening balance is set", apperrors.ErrValidation)
		}
		if req.OpeningBalanceOn == nil {
			return nil, fmt.Errorf("%w: opening balance date is required when an opening balance is set", apperrors.ErrValidation)
		}
		openingBalance = *req.OpeningBalance
		openingSide = *req.OpeningBalanceAs
	}

	// The cache starts at the derived balance: opening balance applied on the
	// account's normal side, no postings yet.
	initialBalance, err := accounting.BalanceFromTotals(req.AccountType, decimal.Zero, decimal.Zero, openingBalance, openingSide)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:         uuid.NewString(),
		TenantID:          tenantID,
		AccountCode:       req.AccountCode,
		AccountName:       req.AccountName,
		AccountType:       req.AccountType,
		ParentAccountID:   parentID,
		Description:       req.Description,
		CurrencyCode:      req.CurrencyCode,
		BankAccountNumber: req.BankAccountNumber,
		IsActive:          true,
		IsSystemAccount:   false,
		ShowOnDashboard:   req.ShowOnDashboard,
		OpeningBalance:    openingBalance,
		OpeningBalanceAs:  openingSide,
		OpeningBalanceOn:  req.OpeningBalanceOn,
		CurrentBalance:    initialBalance,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("account_code", req.AccountCode))
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_code", account.AccountCode))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, tenantID, accountID string, showBalance bool) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}

	if showBalance {
		balance, err := s.computeBalanceFor(ctx, account)
		if err != nil {
			logger.Error("Failed to compute balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
			return nil, err
		}
		account.CurrentBalance = balance
	}

	return account, nil
}

// ComputeBalance derives the account balance from posted transactions plus
// opening balance. The persisted current_balance is only a read cache.
func (s *accountService) ComputeBalance(ctx context.Context, tenantID, accountID string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.computeBalanceFor(ctx, account)
}

func (s *accountService) computeBalanceFor(ctx context.Context, account *domain.Account) (decimal.Decimal, error) {
	totalDebit, totalCredit, err := s.accountRepo.SumPostedAmounts(ctx, account.TenantID, account.AccountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum posted transactions: %w", err)
	}
	return accounting.BalanceFromTotals(account.AccountType, totalDebit, totalCredit, account.OpeningBalance, account.OpeningBalanceAs)
}

func (s *accountService) ListAccounts(ctx context.Context, tenantID string, limit, offset int) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// GetAccountTree returns root accounts with recursively nested active children.
func (s *accountService) GetAccountTree(ctx context.Context, tenantID string) ([]dto.AccountTreeNode, error) {
	accounts, err := s.accountRepo.ListActiveAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for tree: %w", err)
	}

	childrenByParent := make(map[string][]*domain.Account)
	byID := make(map[string]*domain.Account, len(accounts))
	for i := range accounts {
		byID[accounts[i].AccountID] = &accounts[i]
	}
	var roots []*domain.Account
	for i := range accounts {
		acc := &accounts[i]
		// An active account whose parent is inactive (or missing) surfaces as
		// a root rather than disappearing from the tree.
		if acc.ParentAccountID == "" || byID[acc.ParentAccountID] == nil {
			roots = append(roots, acc)
			continue
		}
		childrenByParent[acc.ParentAccountID] = append(childrenByParent[acc.ParentAccountID], acc)
	}

	var build func(acc *domain.Account) dto.AccountTreeNode
	build = func(acc *domain.Account) dto.AccountTreeNode {
		node := dto.AccountTreeNode{AccountResponse: dto.ToAccountResponse(acc), Children: []dto.AccountTreeNode{}}
		for _, child := range childrenByParent[acc.AccountID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	tree := make([]dto.AccountTreeNode, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}
	return tree, nil
}

func (s *accountService) GetDescendants(ctx context.Context, tenantID, accountID string) ([]string, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID); err != nil {
		return nil, err
	}
	return s.accountRepo.FindDescendantAccountIDs(ctx, tenantID, accountID)
}

func (s *accountService) UpdateAccount(ctx context.Context, tenantID, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	// System accounts only allow description and dashboard-visibility changes.
	if account.IsSystemAccount {
		if req.AccountName != nil || req.AccountType != nil || req.ParentAccountID != nil || req.BankAccountNumber != nil {
			return nil, fmt.Errorf("%w: system accounts only allow description and dashboard visibility changes", apperrors.ErrValidation)
		}
	}

	if req.AccountName != nil {
		account.AccountName = *req.AccountName
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.ShowOnDashboard != nil {
		account.ShowOnDashboard = *req.ShowOnDashboard
	}

	if req.AccountType != nil && *req.AccountType != account.AccountType {
		if err := s.validateTypeChange(ctx, account, *req.AccountType); err != nil {
			return nil, err
		}
		account.AccountType = *req.AccountType
	}

	if req.BankAccountNumber != nil {
		if *req.BankAccountNumber != "" && !account.AccountType.SupportsBankDetails() {
			return nil, fmt.Errorf("%w: bank account number is only allowed for bank and credit_card accounts", apperrors.ErrValidation)
		}
		account.BankAccountNumber = *req.BankAccountNumber
	}

	if req.ParentAccountID != nil && *req.ParentAccountID != account.ParentAccountID {
		if err := s.validateParentChange(ctx, account, *req.ParentAccountID); err != nil {
			return nil, err
		}
		account.ParentAccountID = *req.ParentAccountID
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	logger.Info("Account updated", slog.String("account_id", accountID))
	return account, nil
}

// validateTypeChange enforces the guards on changing an account's type.
func (s *accountService) validateTypeChange(ctx context.Context, account *domain.Account, newType domain.AccountType) error {
	if !newType.IsValid() {
		return fmt.Errorf("%w: unknown account type '%s'", apperrors.ErrValidation, newType)
	}

	hasTxns, err := s.accountRepo.HasTransactions(ctx, account.TenantID, account.AccountID)
	if err != nil {
		return fmt.Errorf("failed to check transactions: %w", err)
	}
	if hasTxns {
		return fmt.Errorf("%w: cannot change type of an account that has transactions", apperrors.ErrConflict)
	}

	hasChildren, err := s.accountRepo.HasChildAccounts(ctx, account.TenantID, account.AccountID)
	if err != nil {
		return fmt.Errorf("failed to check child accounts: %w", err)
	}
	if hasChildren {
		return fmt.Errorf("%w: cannot change type of an account that has child accounts", apperrors.ErrConflict)
	}

	if account.BankAccountNumber != "" && !newType.SupportsBankDetails() {
		return fmt.Errorf("%w: account carries a bank account number; new type '%s' does not allow one", apperrors.ErrValidation, newType)
	}

	if account.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, account.TenantID, account.ParentAccountID)
		if err != nil {
			return fmt.Errorf("failed to fetch parent account: %w", err)
		}
		if err := validateCategoryMatch(newType, parent.AccountType); err != nil {
			return err
		}
	}
	return nil
}

// validateParentChange enforces the hierarchy guards when re-parenting.
func (s *accountService) validateParentChange(ctx context.Context, account *domain.Account, newParentID string) error {
	if newParentID == "" {
		return nil // Clearing the parent is always structurally safe.
	}
	if newParentID == account.AccountID {
		return fmt.Errorf("%w: an account cannot be its own parent", apperrors.ErrIntegrity)
	}

	parent, err := s.accountRepo.FindAccountByID(ctx, account.TenantID, newParentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: parent account %s", apperrors.ErrNotFound, newParentID)
		}
		return fmt.Errorf("failed to fetch parent account: %w", err)
	}

	if err := validateCategoryMatch(account.AccountType, parent.AccountType); err != nil {
		return err
	}

	descendants, err := s.accountRepo.FindDescendantAccountIDs(ctx, account.TenantID, account.AccountID)
	if err != nil {
		return fmt.Errorf("failed to fetch descendants: %w", err)
	}
	for _, id := range descendants {
		if id == newParentID {
			return fmt.Errorf("%w: circular reference, proposed parent is a descendant of the account", apperrors.ErrIntegrity)
		}
	}
	return nil
}

func validateCategoryMatch(childType, parentType domain.AccountType) error {
	childCat, err := childType.Category()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	parentCat, err := parentType.Category()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if childCat != parentCat {
		return fmt.Errorf("%w: account category %s does not match parent category %s", apperrors.ErrIntegrity, childCat, parentCat)
	}
	return nil
}

func (s *accountService) ActivateAccount(ctx context.Context, tenantID, accountID, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.accountRepo.SetAccountActive(ctx, tenantID, accountID, true, userID, time.Now().UTC()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to activate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return err
	}
	logger.Info("Account activated", slog.String("account_id", accountID))
	return nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, tenantID, accountID, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	hasTxns, err := s.accountRepo.HasTransactions(ctx, tenantID, accountID)
	if err != nil {
		return fmt.Errorf("failed to check transactions: %w", err)
	}
	if hasTxns {
		return fmt.Errorf("%w: account has transactions and cannot be deactivated", apperrors.ErrConflict)
	}

	if err := s.accountRepo.SetAccountActive(ctx, tenantID, accountID, false, userID, time.Now().UTC()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return err
	}
	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}

func (s *accountService) DeleteAccount(ctx context.Context, tenantID, accountID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return err
	}
	if account.IsSystemAccount {
		return fmt.Errorf("%w: system accounts cannot be deleted", apperrors.ErrConflict)
	}

	hasTxns, err := s.accountRepo.HasTransactions(ctx, tenantID, accountID)
	if err != nil {
		return fmt.Errorf("failed to check transactions: %w", err)
	}
	if hasTxns {
		return fmt.Errorf("%w: account has transactions and cannot be deleted", apperrors.ErrConflict)
	}

	hasChildren, err := s.accountRepo.HasChildAccounts(ctx, tenantID, accountID)
	if err != nil {
		return fmt.Errorf("failed to check child accounts: %w", err)
	}
	if hasChildren {
		return fmt.Errorf("%w: account has child accounts and cannot be deleted", apperrors.ErrConflict)
	}

	if err := s.accountRepo.DeleteAccount(ctx, tenantID, accountID); err != nil {
		logger.Error("Failed to delete account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return err
	}
	logger.Info("Account deleted", slog.String("account_id", accountID))
	return nil
}

// SeedSystemAccounts creates the platform-default accounts for a tenant.
// Existing codes are skipped, so the operation is safe to repeat.
func (s *accountService) SeedSystemAccounts(ctx context.Context, tenantID, currencyCode, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	for _, def := range systemAccountDefaults {
		_, err := s.accountRepo.FindAccountByCode(ctx, tenantID, def.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to check system account %s: %w", def.Code, err)
		}

		account := domain.Account{
			AccountID:        uuid.NewString(),
			TenantID:         tenantID,
			AccountCode:      def.Code,
			AccountName:      def.Name,
			AccountType:      def.Type,
			CurrencyCode:     currencyCode,
			IsActive:         true,
			IsSystemAccount:  true,
			ShowOnDashboard:  true,
			OpeningBalance:   decimal.Zero,
			OpeningBalanceAs: def.Type.MustCategory().NormalSide(),
			CurrentBalance:   decimal.Zero,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to seed system account %s: %w", def.Code, err)
		}
		logger.Info("System account seeded", slog.String("account_code", def.Code), slog.String("tenant_id", tenantID))
	}
	return nil
}
