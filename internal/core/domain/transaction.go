package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of an account transaction.
type TransactionStatus string

const (
	StatusDraft     TransactionStatus = "draft"
	StatusPosted    TransactionStatus = "posted"
	StatusVoid      TransactionStatus = "void"
	StatusCancelled TransactionStatus = "cancelled"
)

// TransactionSource records whether the entry was keyed in by a user or
// generated by the platform (e.g. a reversal).
type TransactionSource string

const (
	SourceManual TransactionSource = "manual"
	SourceSystem TransactionSource = "system"
)

// TransactionType classifies the business document the entry originates from.
type TransactionType string

const (
	TxnTypeInvoice        TransactionType = "invoice"
	TxnTypeBill           TransactionType = "bill"
	TxnTypeCustomerPaymnt TransactionType = "customer_payment"
	TxnTypeVendorPayment  TransactionType = "vendor_payment"
	TxnTypeExpense        TransactionType = "expense"
	TxnTypeCreditNotes    TransactionType = "credit_notes"
	TxnTypeJournal        TransactionType = "journal"
	TxnTypeOpeningBalance TransactionType = "opening_balance"
	TxnTypeTransfer       TransactionType = "transfer"
)

// AccountTransaction is a single debit or credit entry against one account.
type AccountTransaction struct {
	TransactionID     string            `json:"transactionID"`     // Primary key (UUID)
	TransactionNumber string            `json:"transactionNumber"` // Human reference, TXN-XXXXXXXX
	TenantID          string            `json:"tenantID"`
	AccountID         string            `json:"accountID"` // Must reference an active account
	Type              TransactionType   `json:"transactionType"`
	Source            TransactionSource `json:"transactionSource"`
	IsManualEntry     bool              `json:"isManualEntry"`
	DebitAmount       decimal.Decimal   `json:"debitAmount"`  // Exactly one of debit/credit is > 0
	CreditAmount      decimal.Decimal   `json:"creditAmount"` // and the other is exactly zero
	DebitOrCredit     BalanceType       `json:"debitOrCredit"`
	CurrencyCode      string            `json:"currencyCode"`
	ExchangeRate      decimal.Decimal   `json:"exchangeRate"` // Originating-currency audit only, never balance math
	ContactID         string            `json:"contactID"`
	Payee             string            `json:"payee"`
	ReferenceNumber   string            `json:"referenceNumber"`
	InvoiceID         *string           `json:"invoiceID"`
	EstimateID        *string           `json:"estimateID"`
	SalesOrderID      *string           `json:"salesOrderID"`
	PaymentID         *string           `json:"paymentID"`
	TransactionDate   time.Time         `json:"transactionDate"`
	Description       string            `json:"description"`
	Status            TransactionStatus `json:"transactionStatus"`
	IsReversal        bool              `json:"isReversal"`
	ReversalOfID      *string           `json:"reversalOfID"` // Set on the reversal, pointing at the original
	ReversedByID      *string           `json:"reversedByID"` // Set on the original once reversed; at most one
	PostedBy          string            `json:"postedBy"`
	PostedAt          *time.Time        `json:"postedAt"`
	AuditFields
}

// ValidateAmounts enforces the debit/credit pairing invariant: exactly one of
// the two amounts is strictly positive, the other is exactly zero, and
// DebitOrCredit names the positive side.
func (t *AccountTransaction) ValidateAmounts() error {
	debitSet := t.DebitAmount.IsPositive()
	creditSet := t.CreditAmount.IsPositive()

	if t.DebitAmount.IsNegative() || t.CreditAmount.IsNegative() {
		return fmt.Errorf("debit and credit amounts must not be negative")
	}
	if debitSet == creditSet {
		if debitSet {
			return fmt.Errorf("exactly one of debit/credit amount may be set, got both")
		}
		return fmt.Errorf("exactly one of debit/credit amount must be set, got neither")
	}
	if debitSet && t.DebitOrCredit != BalanceTypeDebit {
		return fmt.Errorf("debitOrCredit must be '%s' when the debit amount is set", BalanceTypeDebit)
	}
	if creditSet && t.DebitOrCredit != BalanceTypeCredit {
		return fmt.Errorf("debitOrCredit must be '%s' when the credit amount is set", BalanceTypeCredit)
	}
	return nil
}

// Amount returns the magnitude of the entry, whichever side it sits on.
func (t *AccountTransaction) Amount() decimal.Decimal {
	if t.DebitOrCredit == BalanceTypeDebit {
		return t.DebitAmount
	}
	return t.CreditAmount
}

// IsTerminal reports whether the status admits no further transitions.
// Posted transactions are not terminal: they can still be voided or reversed.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusVoid || s == StatusCancelled
}

// IsValid reports whether the status is part of the fixed enumeration.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPosted, StatusVoid, StatusCancelled:
		return true
	}
	return false
}

// IsValid reports whether the transaction type is part of the fixed enumeration.
func (t TransactionType) IsValid() bool {
	switch t {
	case TxnTypeInvoice, TxnTypeBill, TxnTypeCustomerPaymnt, TxnTypeVendorPayment,
		TxnTypeExpense, TxnTypeCreditNotes, TxnTypeJournal, TxnTypeOpeningBalance, TxnTypeTransfer:
		return true
	}
	return false
}
