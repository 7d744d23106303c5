package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finledger/finledger_backend/internal/apperrors"
	"github.com/finledger/finledger_backend/internal/core/domain"
	portssvc "github.com/finledger/finledger_backend/internal/core/ports/services"
	"github.com/finledger/finledger_backend/internal/core/services"
	"github.com/finledger/finledger_backend/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo  *MockAccountRepository
	mockCurrencyRepo *MockCurrencyRepository
	service          portssvc.AccountSvcFacade

	tenantID string
	userID   string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockCurrencyRepo)
	suite.tenantID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *AccountServiceTestSuite) usdExists() {
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").
		Return(&domain.Currency{CurrencyCode: "USD"}, nil)
}

// --- CreateAccount ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:  "1000",
		AccountName:  "Cash",
		AccountType:  domain.AccountTypeCash,
		CurrencyCode: "USD",
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.tenantID, "1000").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.usdExists()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.AccountCode == "1000" && a.AccountType == domain.AccountTypeCash &&
			a.IsActive && !a.IsSystemAccount && a.CurrentBalance.IsZero() &&
			a.CreatedBy == suite.userID
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Equal("1000", account.AccountCode)
	suite.True(account.IsActive)
	suite.Equal(domain.BalanceTypeDebit, account.OpeningBalanceAs)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:  "1000",
		AccountName:  "Cash",
		AccountType:  domain.AccountTypeCash,
		CurrencyCode: "USD",
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.tenantID, "1000").
		Return(&domain.Account{AccountID: uuid.NewString(), AccountCode: "1000"}, nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_BankNumberOnNonBankType() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:       "4000",
		AccountName:       "Sales",
		AccountType:       domain.AccountTypeIncome,
		CurrencyCode:      "USD",
		BankAccountNumber: "123456",
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.tenantID, "4000").
		Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentCategoryMismatch() {
	ctx := context.Background()
	parentID := uuid.NewString()
	req := dto.CreateAccountRequest{
		AccountCode:     "5000",
		AccountName:     "Rent",
		AccountType:     domain.AccountTypeExpense,
		CurrencyCode:    "USD",
		ParentAccountID: &parentID,
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.tenantID, "5000").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.usdExists()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, parentID).
		Return(&domain.Account{AccountID: parentID, AccountType: domain.AccountTypeBank}, nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrIntegrity)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_OpeningBalanceNeedsTypeAndDate() {
	ctx := context.Background()
	opening := decimal.NewFromInt(1000)
	req := dto.CreateAccountRequest{
		AccountCode:    "1000",
		AccountName:    "Cash",
		AccountType:    domain.AccountTypeCash,
		CurrencyCode:   "USD",
		OpeningBalance: &opening,
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.tenantID, "1000").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.usdExists()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_OpeningBalanceSetsInitialCache() {
	ctx := context.Background()
	opening := decimal.NewFromInt(1000)
	side := domain.BalanceTypeDebit
	on := time.Now().UTC()
	req := dto.CreateAccountRequest{
		AccountCode:      "1000",
		AccountName:      "Cash",
		AccountType:      domain.AccountTypeCash,
		CurrencyCode:     "USD",
		OpeningBalance:   &opening,
		OpeningBalanceAs: &side,
		OpeningBalanceOn: &on,
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.tenantID, "1000").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.usdExists()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.CurrentBalance.Equal(decimal.NewFromInt(1000))
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(account.CurrentBalance.Equal(decimal.NewFromInt(1000)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

// --- GetAccountByID / ComputeBalance ---

func (suite *AccountServiceTestSuite) TestGetAccountByID_CachedBalance() {
	ctx := context.Background()
	accountID := uuid.NewString()
	cached := decimal.NewFromInt(42)
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).
		Return(&domain.Account{AccountID: accountID, AccountType: domain.AccountTypeCash, CurrentBalance: cached}, nil).Once()

	account, err := suite.service.GetAccountByID(ctx, suite.tenantID, accountID, false)

	suite.Require().NoError(err)
	suite.True(account.CurrentBalance.Equal(cached))
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SumPostedAmounts", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_ShowBalanceRecomputes() {
	ctx := context.Background()
	accountID := uuid.NewString()
	// Cache is stale on purpose; the derived value wins.
	acc := &domain.Account{
		AccountID:        accountID,
		TenantID:         suite.tenantID,
		AccountType:      domain.AccountTypeCash,
		OpeningBalance:   decimal.NewFromInt(1000),
		OpeningBalanceAs: domain.BalanceTypeDebit,
		CurrentBalance:   decimal.NewFromInt(1),
	}
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).Return(acc, nil).Once()
	suite.mockAccountRepo.On("SumPostedAmounts", ctx, suite.tenantID, accountID).
		Return(decimal.NewFromInt(500), decimal.Zero, nil).Once()

	account, err := suite.service.GetAccountByID(ctx, suite.tenantID, accountID, true)

	suite.Require().NoError(err)
	suite.True(account.CurrentBalance.Equal(decimal.NewFromInt(1500)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestComputeBalance_CreditNormalAccount() {
	ctx := context.Background()
	accountID := uuid.NewString()
	acc := &domain.Account{
		AccountID:        accountID,
		TenantID:         suite.tenantID,
		AccountType:      domain.AccountTypeIncome,
		OpeningBalance:   decimal.Zero,
		OpeningBalanceAs: domain.BalanceTypeCredit,
	}
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).Return(acc, nil).Once()
	suite.mockAccountRepo.On("SumPostedAmounts", ctx, suite.tenantID, accountID).
		Return(decimal.Zero, decimal.NewFromInt(200), nil).Once()

	balance, err := suite.service.ComputeBalance(ctx, suite.tenantID, accountID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(200)))
}

// --- GetAccountTree ---

func (suite *AccountServiceTestSuite) TestGetAccountTree_OrphanSurfacesAsRoot() {
	ctx := context.Background()
	rootID := uuid.NewString()
	childID := uuid.NewString()
	orphanID := uuid.NewString()
	accounts := []domain.Account{
		{AccountID: rootID, AccountCode: "1000", AccountType: domain.AccountTypeCash},
		{AccountID: childID, AccountCode: "1010", AccountType: domain.AccountTypeCash, ParentAccountID: rootID},
		// Parent is inactive, so it is absent from the active listing.
		{AccountID: orphanID, AccountCode: "1020", AccountType: domain.AccountTypeCash, ParentAccountID: uuid.NewString()},
	}
	suite.mockAccountRepo.On("ListActiveAccounts", ctx, suite.tenantID).Return(accounts, nil).Once()

	tree, err := suite.service.GetAccountTree(ctx, suite.tenantID)

	suite.Require().NoError(err)
	suite.Len(tree, 2)
	suite.Equal(rootID, tree[0].AccountID)
	suite.Require().Len(tree[0].Children, 1)
	suite.Equal(childID, tree[0].Children[0].AccountID)
	suite.Equal(orphanID, tree[1].AccountID)
}

// --- UpdateAccount ---

func (suite *AccountServiceTestSuite) TestUpdateAccount_SystemAccountRestricted() {
	ctx := context.Background()
	accountID := uuid.NewString()
	newName := "Renamed"
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).
		Return(&domain.Account{AccountID: accountID, IsSystemAccount: true, AccountType: domain.AccountTypeEquity}, nil).Once()

	account, err := suite.service.UpdateAccount(ctx, suite.tenantID, accountID, dto.UpdateAccountRequest{AccountName: &newName}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_SystemAccountDescriptionAllowed() {
	ctx := context.Background()
	accountID := uuid.NewString()
	desc := "Platform receivables"
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).
		Return(&domain.Account{AccountID: accountID, IsSystemAccount: true, AccountType: domain.AccountTypeEquity}, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Description == desc
	})).Return(nil).Once()

	account, err := suite.service.UpdateAccount(ctx, suite.tenantID, accountID, dto.UpdateAccountRequest{Description: &desc}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(desc, account.Description)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_TypeChangeBlockedByTransactions() {
	ctx := context.Background()
	accountID := uuid.NewString()
	newType := domain.AccountTypeBank
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).
		Return(&domain.Account{AccountID: accountID, TenantID: suite.tenantID, AccountType: domain.AccountTypeCash}, nil).Once()
	suite.mockAccountRepo.On("HasTransactions", ctx, suite.tenantID, accountID).Return(true, nil).Once()

	account, err := suite.service.UpdateAccount(ctx, suite.tenantID, accountID, dto.UpdateAccountRequest{AccountType: &newType}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_ReparentToDescendantRejected() {
	ctx := context.Background()
	accountID := uuid.NewString()
	descendantID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).
		Return(&domain.Account{AccountID: accountID, TenantID: suite.tenantID, AccountType: domain.AccountTypeCash}, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, descendantID).
		Return(&domain.Account{AccountID: descendantID, AccountType: domain.AccountTypeBank}, nil).Once()
	suite.mockAccountRepo.On("FindDescendantAccountIDs", ctx, suite.tenantID, accountID).
		Return([]string{descendantID}, nil).Once()

	account, err := suite.service.UpdateAccount(ctx, suite.tenantID, accountID, dto.UpdateAccountRequest{ParentAccountID: &descendantID}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrIntegrity)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_SelfParentRejected() {
	ctx := context.Background()
	accountID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).
		Return(&domain.Account{AccountID: accountID, TenantID: suite.tenantID, AccountType: domain.AccountTypeCash}, nil).Once()

	account, err := suite.service.UpdateAccount(ctx, suite.tenantID, accountID, dto.UpdateAccountRequest{ParentAccountID: &accountID}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrIntegrity)
}

// --- Deactivate / Delete ---

func (suite *AccountServiceTestSuite) TestDeactivateAccount_BlockedByTransactions() {
	ctx := context.Background()
	accountID := uuid.NewString()
	suite.mockAccountRepo.On("HasTransactions", ctx, suite.tenantID, accountID).Return(true, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, accountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_SystemAccountRejected() {
	ctx := context.Background()
	accountID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).
		Return(&domain.Account{AccountID: accountID, IsSystemAccount: true}, nil).Once()

	err := suite.service.DeleteAccount(ctx, suite.tenantID, accountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_BlockedByTransactions() {
	ctx := context.Background()
	accountID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).
		Return(&domain.Account{AccountID: accountID}, nil).Once()
	suite.mockAccountRepo.On("HasTransactions", ctx, suite.tenantID, accountID).Return(true, nil).Once()

	err := suite.service.DeleteAccount(ctx, suite.tenantID, accountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_BlockedByChildren() {
	ctx := context.Background()
	accountID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, accountID).
		Return(&domain.Account{AccountID: accountID}, nil).Once()
	suite.mockAccountRepo.On("HasTransactions", ctx, suite.tenantID, accountID).Return(false, nil).Once()
	suite.mockAccountRepo.On("HasChildAccounts", ctx, suite.tenantID, accountID).Return(true, nil).Once()

	err := suite.service.DeleteAccount(ctx, suite.tenantID, accountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything, mock.Anything)
}

// --- SeedSystemAccounts ---

func (suite *AccountServiceTestSuite) TestSeedSystemAccounts_SkipsExisting() {
	ctx := context.Background()
	// 1100 already exists, the rest get created.
	suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.tenantID, "1100").
		Return(&domain.Account{AccountCode: "1100"}, nil).Once()
	for _, code := range []string{"1400", "2100", "3900"} {
		suite.mockAccountRepo.On("FindAccountByCode", ctx, suite.tenantID, code).
			Return(nil, apperrors.ErrNotFound).Once()
	}
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.IsSystemAccount && a.CurrencyCode == "USD"
	})).Return(nil).Times(3)

	err := suite.service.SeedSystemAccounts(ctx, suite.tenantID, "USD", suite.userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
