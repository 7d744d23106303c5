package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountCategory is one of the five fundamental accounting classifications.
// Every AccountType maps into exactly one category.
type AccountCategory string

const (
	CategoryAsset     AccountCategory = "ASSET"
	CategoryLiability AccountCategory = "LIABILITY"
	CategoryEquity    AccountCategory = "EQUITY"
	CategoryIncome    AccountCategory = "INCOME"
	CategoryExpense   AccountCategory = "EXPENSE"
)

// AccountType is the detailed ledger account type selected by the user.
type AccountType string

const (
	// Asset types
	AccountTypeCash               AccountType = "cash"
	AccountTypeBank               AccountType = "bank"
	AccountTypeAccountsReceivable AccountType = "accounts_receivable"
	AccountTypeFixedAsset         AccountType = "fixed_asset"
	AccountTypeStock              AccountType = "stock"
	AccountTypePaymentClearing    AccountType = "payment_clearing"
	AccountTypeOtherAsset         AccountType = "other_asset"
	AccountTypeOtherCurrentAsset  AccountType = "other_current_asset"

	// Liability types
	AccountTypeAccountsPayable       AccountType = "accounts_payable"
	AccountTypeCreditCard            AccountType = "credit_card"
	AccountTypeOtherLiability        AccountType = "other_liability"
	AccountTypeOtherCurrentLiability AccountType = "other_current_liability"

	// Equity types
	AccountTypeEquity AccountType = "equity"

	// Income types
	AccountTypeIncome      AccountType = "income"
	AccountTypeOtherIncome AccountType = "other_income"

	// Expense types
	AccountTypeExpense         AccountType = "expense"
	AccountTypeCostOfGoodsSold AccountType = "cost_of_goods_sold"
	AccountTypeOtherExpense    AccountType = "other_expense"
)

// accountTypeCategories is the fixed lookup table mapping each account type
// to its category. The five value sets are disjoint.
var accountTypeCategories = map[AccountType]AccountCategory{
	AccountTypeCash:               CategoryAsset,
	AccountTypeBank:               CategoryAsset,
	AccountTypeAccountsReceivable: CategoryAsset,
	AccountTypeFixedAsset:         CategoryAsset,
	AccountTypeStock:              CategoryAsset,
	AccountTypePaymentClearing:    CategoryAsset,
	AccountTypeOtherAsset:         CategoryAsset,
	AccountTypeOtherCurrentAsset:  CategoryAsset,

	AccountTypeAccountsPayable:       CategoryLiability,
	AccountTypeCreditCard:            CategoryLiability,
	AccountTypeOtherLiability:        CategoryLiability,
	AccountTypeOtherCurrentLiability: CategoryLiability,

	AccountTypeEquity: CategoryEquity,

	AccountTypeIncome:      CategoryIncome,
	AccountTypeOtherIncome: CategoryIncome,

	AccountTypeExpense:         CategoryExpense,
	AccountTypeCostOfGoodsSold: CategoryExpense,
	AccountTypeOtherExpense:    CategoryExpense,
}

// Category returns the account category for this type.
func (t AccountType) Category() (AccountCategory, error) {
	cat, ok := accountTypeCategories[t]
	if !ok {
		return "", fmt.Errorf("unknown account type '%s'", t)
	}
	return cat, nil
}

// MustCategory returns the category for a type already known to be valid.
// It panics on unknown types; callers validate with IsValid first.
func (t AccountType) MustCategory() AccountCategory {
	cat, err := t.Category()
	if err != nil {
		panic(err)
	}
	return cat
}

// IsValid reports whether the account type is part of the fixed enumeration.
func (t AccountType) IsValid() bool {
	_, ok := accountTypeCategories[t]
	return ok
}

// SupportsBankDetails reports whether the type may carry a bank account number.
func (t AccountType) SupportsBankDetails() bool {
	return t == AccountTypeBank || t == AccountTypeCreditCard
}

// NormalSide returns the debit/credit side on which increases to this
// category are recorded: debit for Asset/Expense, credit for the rest.
func (c AccountCategory) NormalSide() BalanceType {
	switch c {
	case CategoryAsset, CategoryExpense:
		return BalanceTypeDebit
	default:
		return BalanceTypeCredit
	}
}

// BalanceType distinguishes the two sides of the ledger.
type BalanceType string

const (
	BalanceTypeDebit  BalanceType = "debit"
	BalanceTypeCredit BalanceType = "credit"
)

// IsValid reports whether the value is one of debit/credit.
func (b BalanceType) IsValid() bool {
	return b == BalanceTypeDebit || b == BalanceTypeCredit
}

// Account represents a ledger account within the chart of accounts.
// This is the primary representation used by services.
type Account struct {
	AccountID         string          `json:"accountID"`         // Primary key (UUID)
	TenantID          string          `json:"tenantID"`          // Owning tenant (NON-NULL)
	AccountCode       string          `json:"accountCode"`       // Tenant-unique code
	AccountName       string          `json:"accountName"`       // User-defined name
	AccountType       AccountType     `json:"accountType"`       // cash, bank, income, ...
	ParentAccountID   string          `json:"parentAccountID"`   // Nullable self-reference
	Description       string          `json:"description"`       // Nullable user description
	CurrencyCode      string          `json:"currencyCode"`      // Ledger currency of the account
	BankAccountNumber string          `json:"bankAccountNumber"` // Only for bank / credit_card types
	IsActive          bool            `json:"isActive"`
	IsSystemAccount   bool            `json:"isSystemAccount"` // Platform-seeded, structurally immutable
	ShowOnDashboard   bool            `json:"showOnDashboard"`
	OpeningBalance    decimal.Decimal `json:"openingBalance"`     // Non-negative magnitude
	OpeningBalanceAs  BalanceType     `json:"openingBalanceType"` // Side the opening balance sits on
	OpeningBalanceOn  *time.Time      `json:"openingBalanceDate"` // Required when OpeningBalance > 0
	CurrentBalance    decimal.Decimal `json:"currentBalance"`     // Read cache; posted transactions are authoritative
	AuditFields
}

// Category returns the category of the account's type.
func (a *Account) Category() (AccountCategory, error) {
	return a.AccountType.Category()
}
