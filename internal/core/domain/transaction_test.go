package domain_test

import (
	"testing"

	"github.com/finledger/finledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccountTransaction_ValidateAmounts(t *testing.T) {
	tests := []struct {
		name    string
		txn     domain.AccountTransaction
		wantErr bool
	}{
		{
			name: "valid debit entry",
			txn: domain.AccountTransaction{
				DebitAmount:   decimal.NewFromFloat(500.00),
				CreditAmount:  decimal.Zero,
				DebitOrCredit: domain.BalanceTypeDebit,
			},
			wantErr: false,
		},
		{
			name: "valid credit entry",
			txn: domain.AccountTransaction{
				DebitAmount:   decimal.Zero,
				CreditAmount:  decimal.NewFromFloat(200.00),
				DebitOrCredit: domain.BalanceTypeCredit,
			},
			wantErr: false,
		},
		{
			name: "both amounts zero",
			txn: domain.AccountTransaction{
				DebitAmount:   decimal.Zero,
				CreditAmount:  decimal.Zero,
				DebitOrCredit: domain.BalanceTypeDebit,
			},
			wantErr: true,
		},
		{
			name: "both amounts positive",
			txn: domain.AccountTransaction{
				DebitAmount:   decimal.NewFromFloat(100.00),
				CreditAmount:  decimal.NewFromFloat(100.00),
				DebitOrCredit: domain.BalanceTypeDebit,
			},
			wantErr: true,
		},
		{
			name: "negative debit amount",
			txn: domain.AccountTransaction{
				DebitAmount:   decimal.NewFromFloat(-100.00),
				CreditAmount:  decimal.Zero,
				DebitOrCredit: domain.BalanceTypeDebit,
			},
			wantErr: true,
		},
		{
			name: "side indicator contradicts the set amount",
			txn: domain.AccountTransaction{
				DebitAmount:   decimal.NewFromFloat(100.00),
				CreditAmount:  decimal.Zero,
				DebitOrCredit: domain.BalanceTypeCredit,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.ValidateAmounts()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAccountTransaction_Amount(t *testing.T) {
	debit := domain.AccountTransaction{
		DebitAmount:   decimal.NewFromFloat(42.50),
		DebitOrCredit: domain.BalanceTypeDebit,
	}
	assert.True(t, debit.Amount().Equal(decimal.NewFromFloat(42.50)))

	credit := domain.AccountTransaction{
		CreditAmount:  decimal.NewFromFloat(17.25),
		DebitOrCredit: domain.BalanceTypeCredit,
	}
	assert.True(t, credit.Amount().Equal(decimal.NewFromFloat(17.25)))
}

func TestTransactionStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.StatusDraft.IsTerminal())
	assert.False(t, domain.StatusPosted.IsTerminal())
	assert.True(t, domain.StatusVoid.IsTerminal())
	assert.True(t, domain.StatusCancelled.IsTerminal())
}
