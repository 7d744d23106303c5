package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger_backend/internal/apperrors"
	"github.com/finledger/finledger_backend/internal/core/domain"
	portsrepo "github.com/finledger/finledger_backend/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger_backend/internal/core/ports/services"
	"github.com/finledger/finledger_backend/internal/dto"
	"github.com/finledger/finledger_backend/internal/middleware"
	"github.com/finledger/finledger_backend/internal/utils/accounting"
)

var (
	ErrAlreadyPosted       = errors.New("transaction is already posted")
	ErrNotDraft            = errors.New("transaction is only editable while in draft")
	ErrPostedUndeletable   = errors.New("a posted transaction can only be neutralized via reversal, never deleted")
	ErrAlreadyVoid         = errors.New("transaction is already void")
	ErrCancelledImmutable  = errors.New("a cancelled transaction admits no further transitions")
	ErrNotPosted           = errors.New("transaction must be posted to be reversed")
	ErrIsReversal          = errors.New("a reversal transaction cannot itself be reversed")
	ErrAlreadyReversed     = errors.New("transaction already has a reversal")
	ErrReversedImmutable   = errors.New("a reversed transaction admits no further transitions")
	ErrReversalNotVoidable = errors.New("a posted reversal cannot be voided")
)

// transactionService provides transaction entry and the posting/reversal engine.
type transactionService struct {
	txnRepo      portsrepo.TransactionRepositoryWithTx
	accountRepo  portsrepo.AccountRepositoryWithTx
	currencyRepo portsrepo.CurrencyRepository
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryWithTx, accountRepo portsrepo.AccountRepositoryWithTx, currencyRepo portsrepo.CurrencyRepository) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:      txnRepo,
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// newTransactionNumber generates a human reference of the form TXN-XXXXXXXX.
func newTransactionNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TXN-" + raw[:8]
}

func (s *transactionService) CreateTransaction(ctx context.Context, tenantID string, req dto.CreateTransactionRequest, userID string) (*domain.AccountTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown transaction type '%s'", apperrors.ErrValidation, req.Type)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, req.AccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, req.AccountID)
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, req.AccountID)
	}

	exchangeRate, err := s.resolveExchangeRate(ctx, req.CurrencyCode, account.CurrencyCode, req.ExchangeRate)
	if err != nil {
		return nil, err
	}

	number := req.TransactionNumber
	if number == "" {
		number = newTransactionNumber()
	}

	transactionDate := time.Now().UTC()
	if req.TransactionDate != nil {
		transactionDate = *req.TransactionDate
	}

	now := time.Now().UTC()
	txn := domain.AccountTransaction{
		TransactionID:     uuid.NewString(),
		TransactionNumber: number,
		TenantID:          tenantID,
		AccountID:         account.AccountID,
		Type:              req.Type,
		Source:            domain.SourceManual,
		IsManualEntry:     true,
		DebitAmount:       req.DebitAmount,
		CreditAmount:      req.CreditAmount,
		DebitOrCredit:     req.DebitOrCredit,
		CurrencyCode:      req.CurrencyCode,
		ExchangeRate:      exchangeRate,
		ContactID:         req.ContactID,
		Payee:             req.Payee,
		ReferenceNumber:   req.ReferenceNumber,
		InvoiceID:         req.InvoiceID,
		EstimateID:        req.EstimateID,
		SalesOrderID:      req.SalesOrderID,
		PaymentID:         req.PaymentID,
		TransactionDate:   transactionDate,
		Description:       req.Description,
		Status:            domain.StatusDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := txn.ValidateAmounts(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		logger.Error("Failed to save transaction", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Transaction created", slog.String("transaction_id", txn.TransactionID), slog.String("transaction_number", txn.TransactionNumber))
	return &txn, nil
}

// resolveExchangeRate enforces the exchange-rate rule: a rate different from
// 1.00 is required when the transaction currency differs from the account's
// ledger currency, and a rate of 1.00 is implied when they match.
func (s *transactionService) resolveExchangeRate(ctx context.Context, txnCurrency, accountCurrency string, rate *decimal.Decimal) (decimal.Decimal, error) {
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, txnCurrency); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: unknown currency '%s'", apperrors.ErrValidation, txnCurrency)
		}
		return decimal.Zero, fmt.Errorf("failed to check currency: %w", err)
	}

	one := decimal.NewFromInt(1)
	if txnCurrency == accountCurrency {
		if rate != nil && !rate.Equal(one) {
			return decimal.Zero, fmt.Errorf("%w: exchange rate must be 1.00 when the transaction currency matches the account currency", apperrors.ErrValidation)
		}
		return one, nil
	}

	if rate == nil || rate.Equal(one) {
		return decimal.Zero, fmt.Errorf("%w: an exchange rate different from 1.00 is required when the transaction currency differs from the account currency", apperrors.ErrValidation)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	return *rate, nil
}

func (s *transactionService) GetTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.AccountTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.txnRepo.FindTransactionByID(ctx, tenantID, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) ListTransactionsByAccount(ctx context.Context, tenantID, accountID string, params dto.ListTransactionsParams) ([]domain.AccountTransaction, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	txns, err := s.txnRepo.ListTransactionsByAccount(ctx, tenantID, accountID, limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if txns == nil {
		txns = []domain.AccountTransaction{}
	}
	return txns, nil
}

func (s *transactionService) UpdateTransaction(ctx context.Context, tenantID, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.AccountTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.txnRepo.FindTransactionByID(ctx, tenantID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: %v, status is %s", apperrors.ErrConflict, ErrNotDraft, txn.Status)
	}

	if req.DebitAmount != nil {
		txn.DebitAmount = *req.DebitAmount
	}
	if req.CreditAmount != nil {
		txn.CreditAmount = *req.CreditAmount
	}
	if req.DebitOrCredit != nil {
		txn.DebitOrCredit = *req.DebitOrCredit
	}
	if req.ContactID != nil {
		txn.ContactID = *req.ContactID
	}
	if req.Payee != nil {
		txn.Payee = *req.Payee
	}
	if req.ReferenceNumber != nil {
		txn.ReferenceNumber = *req.ReferenceNumber
	}
	if req.TransactionDate != nil {
		txn.TransactionDate = *req.TransactionDate
	}
	if req.Description != nil {
		txn.Description = *req.Description
	}

	if err := txn.ValidateAmounts(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	txn.LastUpdatedAt = time.Now().UTC()
	txn.LastUpdatedBy = userID

	if err := s.txnRepo.UpdateTransaction(ctx, *txn); err != nil {
		logger.Error("Failed to update transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, err
	}

	logger.Info("Transaction updated", slog.String("transaction_id", transactionID))
	return txn, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, tenantID, transactionID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.txnRepo.FindTransactionByID(ctx, tenantID, transactionID)
	if err != nil {
		return err
	}
	if txn.Status == domain.StatusPosted {
		return fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrPostedUndeletable)
	}

	if err := s.txnRepo.DeleteTransaction(ctx, tenantID, transactionID); err != nil {
		logger.Error("Failed to delete transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return err
	}
	logger.Info("Transaction deleted", slog.String("transaction_id", transactionID))
	return nil
}

// withTx runs fn inside a single database transaction.
func (s *transactionService) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.txnRepo.Rollback(ctx, tx) // No-op once committed.

	if err := fn(tx); err != nil {
		return err
	}
	return s.txnRepo.Commit(ctx, tx)
}

// PostTransaction moves a draft transaction to posted. The status change,
// the posted_by stamp and the balance cache adjustment commit together.
func (s *transactionService) PostTransaction(ctx context.Context, tenantID, transactionID, userID string) (*domain.AccountTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var posted *domain.AccountTransaction
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		txn, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, tenantID, transactionID)
		if err != nil {
			return err
		}
		switch txn.Status {
		case domain.StatusPosted:
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrAlreadyPosted)
		case domain.StatusVoid, domain.StatusCancelled:
			return fmt.Errorf("%w: cannot post a %s transaction", apperrors.ErrConflict, txn.Status)
		}

		account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, tenantID, txn.AccountID)
		if err != nil {
			return fmt.Errorf("failed to lock account %s: %w", txn.AccountID, err)
		}

		contribution, err := accounting.TransactionContribution(*txn, account.AccountType)
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
		}

		now := time.Now().UTC()
		if err := s.txnRepo.MarkTransactionPostedInTx(ctx, tx, tenantID, transactionID, userID, now); err != nil {
			return err
		}
		if err := s.accountRepo.ApplyBalanceDeltaInTx(ctx, tx, tenantID, txn.AccountID, contribution, userID, now); err != nil {
			return err
		}

		txn.Status = domain.StatusPosted
		txn.PostedBy = userID
		txn.PostedAt = &now
		txn.LastUpdatedAt = now
		txn.LastUpdatedBy = userID
		posted = txn
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to post transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	logger.Info("Transaction posted", slog.String("transaction_id", transactionID))
	return posted, nil
}

// BulkPostTransactions posts each transaction on its own: one ID failing its
// guards never aborts the others.
func (s *transactionService) BulkPostTransactions(ctx context.Context, tenantID string, transactionIDs []string, userID string) *dto.BulkPostResponse {
	logger := middleware.GetLoggerFromCtx(ctx)

	resp := &dto.BulkPostResponse{Results: make([]dto.BulkPostItemResult, 0, len(transactionIDs))}
	for _, id := range transactionIDs {
		item := dto.BulkPostItemResult{TransactionID: id}
		if _, err := s.PostTransaction(ctx, tenantID, id, userID); err != nil {
			item.Error = err.Error()
			resp.FailedCount++
		} else {
			item.Posted = true
			resp.PostedCount++
		}
		resp.Results = append(resp.Results, item)
	}

	logger.Info("Bulk post finished", slog.Int("posted", resp.PostedCount), slog.Int("failed", resp.FailedCount))
	return resp
}

// VoidTransaction voids a draft or posted transaction. Voiding a posted
// transaction does not create a balancing entry; it simply removes the
// transaction's contribution from balance computation.
func (s *transactionService) VoidTransaction(ctx context.Context, tenantID, transactionID, userID string) (*domain.AccountTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var voided *domain.AccountTransaction
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		txn, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, tenantID, transactionID)
		if err != nil {
			return err
		}
		switch txn.Status {
		case domain.StatusVoid:
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrAlreadyVoid)
		case domain.StatusCancelled:
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrCancelledImmutable)
		}
		// A reversed original and its posted reversal form a net-zero pair;
		// voiding either side would unbalance the other.
		if txn.ReversedByID != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrReversedImmutable)
		}
		if txn.IsReversal {
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrReversalNotVoidable)
		}

		now := time.Now().UTC()
		wasPosted := txn.Status == domain.StatusPosted

		if err := s.txnRepo.MarkTransactionStatusInTx(ctx, tx, tenantID, transactionID, domain.StatusVoid, userID, now); err != nil {
			return err
		}

		if wasPosted {
			account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, tenantID, txn.AccountID)
			if err != nil {
				return fmt.Errorf("failed to lock account %s: %w", txn.AccountID, err)
			}
			contribution, err := accounting.TransactionContribution(*txn, account.AccountType)
			if err != nil {
				return fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
			}
			if err := s.accountRepo.ApplyBalanceDeltaInTx(ctx, tx, tenantID, txn.AccountID, contribution.Neg(), userID, now); err != nil {
				return err
			}
		}

		txn.Status = domain.StatusVoid
		txn.LastUpdatedAt = now
		txn.LastUpdatedBy = userID
		voided = txn
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to void transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	logger.Info("Transaction voided", slog.String("transaction_id", transactionID))
	return voided, nil
}

// CancelTransaction cancels a transaction; cancelled is reachable from draft only.
func (s *transactionService) CancelTransaction(ctx context.Context, tenantID, transactionID, userID string) (*domain.AccountTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var cancelled *domain.AccountTransaction
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		txn, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, tenantID, transactionID)
		if err != nil {
			return err
		}
		if txn.Status != domain.StatusDraft {
			return fmt.Errorf("%w: only draft transactions can be cancelled, status is %s", apperrors.ErrConflict, txn.Status)
		}

		now := time.Now().UTC()
		if err := s.txnRepo.MarkTransactionStatusInTx(ctx, tx, tenantID, transactionID, domain.StatusCancelled, userID, now); err != nil {
			return err
		}

		txn.Status = domain.StatusCancelled
		txn.LastUpdatedAt = now
		txn.LastUpdatedBy = userID
		cancelled = txn
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to cancel transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	logger.Info("Transaction cancelled", slog.String("transaction_id", transactionID))
	return cancelled, nil
}

// ReverseTransaction creates the equal-and-opposite reversal of a posted
// transaction. The reversal is itself posted immediately; the pair nets to
// zero in balance computation.
func (s *transactionService) ReverseTransaction(ctx context.Context, tenantID, transactionID string, req dto.ReverseTransactionRequest, userID string) (*domain.AccountTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var reversal *domain.AccountTransaction
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		original, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, tenantID, transactionID)
		if err != nil {
			return err
		}
		if original.Status != domain.StatusPosted {
			return fmt.Errorf("%w: %v, status is %s", apperrors.ErrConflict, ErrNotPosted, original.Status)
		}
		if original.IsReversal {
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrIsReversal)
		}
		if original.ReversedByID != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrAlreadyReversed)
		}

		account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, tenantID, original.AccountID)
		if err != nil {
			return fmt.Errorf("failed to lock account %s: %w", original.AccountID, err)
		}

		now := time.Now().UTC()
		reversalDate := now
		if req.TransactionDate != nil {
			reversalDate = *req.TransactionDate
		}

		description := fmt.Sprintf("Reversal of %s", original.TransactionNumber)
		if req.Reason != "" {
			description = fmt.Sprintf("%s: %s", req.Reason, original.Description)
		}
		if req.Description != nil {
			description = *req.Description
		}

		// Swap the sides: same magnitude, opposite side.
		reversedSide := domain.BalanceTypeDebit
		if original.DebitOrCredit == domain.BalanceTypeDebit {
			reversedSide = domain.BalanceTypeCredit
		}

		rev := domain.AccountTransaction{
			TransactionID:     uuid.NewString(),
			TransactionNumber: newTransactionNumber(),
			TenantID:          tenantID,
			AccountID:         original.AccountID,
			Type:              original.Type,
			Source:            domain.SourceSystem,
			IsManualEntry:     false,
			DebitAmount:       original.CreditAmount,
			CreditAmount:      original.DebitAmount,
			DebitOrCredit:     reversedSide,
			CurrencyCode:      original.CurrencyCode,
			ExchangeRate:      original.ExchangeRate,
			ContactID:         original.ContactID,
			Payee:             original.Payee,
			ReferenceNumber:   original.TransactionNumber,
			TransactionDate:   reversalDate,
			Description:       description,
			Status:            domain.StatusPosted,
			IsReversal:        true,
			ReversalOfID:      &original.TransactionID,
			PostedBy:          userID,
			PostedAt:          &now,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}

		contribution, err := accounting.TransactionContribution(rev, account.AccountType)
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
		}

		if err := s.txnRepo.SaveReversalInTx(ctx, tx, rev, original.TransactionID); err != nil {
			return err
		}
		if err := s.accountRepo.ApplyBalanceDeltaInTx(ctx, tx, tenantID, original.AccountID, contribution, userID, now); err != nil {
			return err
		}

		reversal = &rev
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to reverse transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	logger.Info("Transaction reversed", slog.String("transaction_id", transactionID), slog.String("reversal_id", reversal.TransactionID))
	return reversal, nil
}
