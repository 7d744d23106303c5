package domain_test

import (
	"testing"

	"github.com/finledger/finledger_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountType_Category(t *testing.T) {
	tests := []struct {
		accountType domain.AccountType
		want        domain.AccountCategory
	}{
		{domain.AccountTypeCash, domain.CategoryAsset},
		{domain.AccountTypeBank, domain.CategoryAsset},
		{domain.AccountTypeAccountsReceivable, domain.CategoryAsset},
		{domain.AccountTypeFixedAsset, domain.CategoryAsset},
		{domain.AccountTypeStock, domain.CategoryAsset},
		{domain.AccountTypePaymentClearing, domain.CategoryAsset},
		{domain.AccountTypeAccountsPayable, domain.CategoryLiability},
		{domain.AccountTypeCreditCard, domain.CategoryLiability},
		{domain.AccountTypeOtherLiability, domain.CategoryLiability},
		{domain.AccountTypeEquity, domain.CategoryEquity},
		{domain.AccountTypeIncome, domain.CategoryIncome},
		{domain.AccountTypeOtherIncome, domain.CategoryIncome},
		{domain.AccountTypeExpense, domain.CategoryExpense},
		{domain.AccountTypeCostOfGoodsSold, domain.CategoryExpense},
		{domain.AccountTypeOtherExpense, domain.CategoryExpense},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			got, err := tt.accountType.Category()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Categorization is a fixed lookup, so a second call must agree.
			again, err := tt.accountType.Category()
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestAccountType_Category_Unknown(t *testing.T) {
	_, err := domain.AccountType("crypto_wallet").Category()
	assert.Error(t, err)
	assert.False(t, domain.AccountType("crypto_wallet").IsValid())
}

func TestAccountCategory_NormalSide(t *testing.T) {
	assert.Equal(t, domain.BalanceTypeDebit, domain.CategoryAsset.NormalSide())
	assert.Equal(t, domain.BalanceTypeDebit, domain.CategoryExpense.NormalSide())
	assert.Equal(t, domain.BalanceTypeCredit, domain.CategoryLiability.NormalSide())
	assert.Equal(t, domain.BalanceTypeCredit, domain.CategoryEquity.NormalSide())
	assert.Equal(t, domain.BalanceTypeCredit, domain.CategoryIncome.NormalSide())
}

func TestAccountType_SupportsBankDetails(t *testing.T) {
	assert.True(t, domain.AccountTypeBank.SupportsBankDetails())
	assert.True(t, domain.AccountTypeCreditCard.SupportsBankDetails())
	assert.False(t, domain.AccountTypeCash.SupportsBankDetails())
	assert.False(t, domain.AccountTypeIncome.SupportsBankDetails())
}
