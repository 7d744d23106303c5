package accounting

import (
	"fmt"

	"github.com/finledger/finledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionContribution returns the signed effect a single entry has on its
// account's balance, under the normal-balance convention:
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/INCOME -> Negative (-)
// CREDIT to LIABILITY/EQUITY/INCOME -> Positive (+)
func TransactionContribution(txn domain.AccountTransaction, accountType domain.AccountType) (decimal.Decimal, error) {
	category, err := accountType.Category()
	if err != nil {
		return decimal.Zero, fmt.Errorf("account %s: %w", txn.AccountID, err)
	}
	if category.NormalSide() == domain.BalanceTypeDebit {
		return txn.DebitAmount.Sub(txn.CreditAmount), nil
	}
	return txn.CreditAmount.Sub(txn.DebitAmount), nil
}

// OpeningBalanceContribution returns the signed effect of an opening balance,
// applied in the same directional convention as normal postings: an opening
// balance on the account's normal side increases the balance, one on the
// opposite side decreases it.
func OpeningBalanceContribution(magnitude decimal.Decimal, side domain.BalanceType, category domain.AccountCategory) decimal.Decimal {
	if magnitude.IsZero() {
		return decimal.Zero
	}
	if side == category.NormalSide() {
		return magnitude
	}
	return magnitude.Neg()
}

// BalanceFromTotals derives an account's closing balance from the summed
// debit and credit amounts of its posted transactions plus its opening
// balance. Unposted, void and cancelled transactions must be excluded from
// the totals by the caller.
func BalanceFromTotals(accountType domain.AccountType, totalDebit, totalCredit, openingBalance decimal.Decimal, openingSide domain.BalanceType) (decimal.Decimal, error) {
	category, err := accountType.Category()
	if err != nil {
		return decimal.Zero, err
	}

	var raw decimal.Decimal
	if category.NormalSide() == domain.BalanceTypeDebit {
		raw = totalDebit.Sub(totalCredit)
	} else {
		raw = totalCredit.Sub(totalDebit)
	}

	return raw.Add(OpeningBalanceContribution(openingBalance, openingSide, category)), nil
}
