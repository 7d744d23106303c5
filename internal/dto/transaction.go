package dto

import (
	"time"

	"github.com/finledger/finledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to create a draft transaction.
type CreateTransactionRequest struct {
	TransactionNumber string                 `json:"transactionNumber"` // Auto-generated as TXN-XXXXXXXX when blank
	AccountID         string                 `json:"accountID" binding:"required"`
	Type              domain.TransactionType `json:"transactionType" binding:"required"`
	DebitAmount       decimal.Decimal        `json:"debitAmount"`
	CreditAmount      decimal.Decimal        `json:"creditAmount"`
	DebitOrCredit     domain.BalanceType     `json:"debitOrCredit" binding:"required,balancetype"`
	CurrencyCode      string                 `json:"currencyCode" binding:"required,len=3"`
	ExchangeRate      *decimal.Decimal       `json:"exchangeRate"`
	ContactID         string                 `json:"contactID"`
	Payee             string                 `json:"payee"`
	ReferenceNumber   string                 `json:"referenceNumber"`
	InvoiceID         *string                `json:"invoiceID"`
	EstimateID        *string                `json:"estimateID"`
	SalesOrderID      *string                `json:"salesOrderID"`
	PaymentID         *string                `json:"paymentID"`
	TransactionDate   *time.Time             `json:"transactionDate"` // Defaults to today
	Description       string                 `json:"description"`
}

// UpdateTransactionRequest defines the fields editable while a transaction is
// still in draft. Pointers distinguish "not provided" from zero values.
type UpdateTransactionRequest struct {
	DebitAmount     *decimal.Decimal    `json:"debitAmount"`
	CreditAmount    *decimal.Decimal    `json:"creditAmount"`
	DebitOrCredit   *domain.BalanceType `json:"debitOrCredit" binding:"omitempty,balancetype"`
	ContactID       *string             `json:"contactID"`
	Payee           *string             `json:"payee"`
	ReferenceNumber *string             `json:"referenceNumber"`
	TransactionDate *time.Time          `json:"transactionDate"`
	Description     *string             `json:"description"`
}

// ReverseTransactionRequest carries the optional overrides for a reversal.
type ReverseTransactionRequest struct {
	Reason          string     `json:"reason"`
	TransactionDate *time.Time `json:"transactionDate"` // Defaults to today
	Description     *string    `json:"description"`     // Overrides the reason-prefixed default
}

// BulkPostRequest names the transactions to post.
type BulkPostRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1"`
}

// BulkPostItemResult reports the outcome for a single transaction in a bulk post.
type BulkPostItemResult struct {
	TransactionID string `json:"transactionID"`
	Posted        bool   `json:"posted"`
	Error         string `json:"error,omitempty"`
}

// BulkPostResponse summarizes a bulk post: each ID succeeds or fails on its own.
type BulkPostResponse struct {
	PostedCount int                  `json:"postedCount"`
	FailedCount int                  `json:"failedCount"`
	Results     []BulkPostItemResult `json:"results"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID     string                   `json:"transactionID"`
	TransactionNumber string                   `json:"transactionNumber"`
	AccountID         string                   `json:"accountID"`
	Type              domain.TransactionType   `json:"transactionType"`
	Source            domain.TransactionSource `json:"transactionSource"`
	IsManualEntry     bool                     `json:"isManualEntry"`
	DebitAmount       decimal.Decimal          `json:"debitAmount"`
	CreditAmount      decimal.Decimal          `json:"creditAmount"`
	DebitOrCredit     domain.BalanceType       `json:"debitOrCredit"`
	CurrencyCode      string                   `json:"currencyCode"`
	ExchangeRate      decimal.Decimal          `json:"exchangeRate"`
	ContactID         string                   `json:"contactID,omitempty"`
	Payee             string                   `json:"payee,omitempty"`
	ReferenceNumber   string                   `json:"referenceNumber,omitempty"`
	InvoiceID         *string                  `json:"invoiceID,omitempty"`
	EstimateID        *string                  `json:"estimateID,omitempty"`
	SalesOrderID      *string                  `json:"salesOrderID,omitempty"`
	PaymentID         *string                  `json:"paymentID,omitempty"`
	TransactionDate   time.Time                `json:"transactionDate"`
	Description       string                   `json:"description"`
	Status            domain.TransactionStatus `json:"transactionStatus"`
	IsReversal        bool                     `json:"isReversal"`
	ReversalOfID      *string                  `json:"reversalOfID,omitempty"`
	ReversedByID      *string                  `json:"reversedByID,omitempty"`
	PostedBy          string                   `json:"postedBy,omitempty"`
	PostedAt          *time.Time               `json:"postedAt,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
	CreatedBy         string                   `json:"createdBy"`
}

// ToTransactionResponse converts a domain.AccountTransaction to a response DTO.
func ToTransactionResponse(txn *domain.AccountTransaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:     txn.TransactionID,
		TransactionNumber: txn.TransactionNumber,
		AccountID:         txn.AccountID,
		Type:              txn.Type,
		Source:            txn.Source,
		IsManualEntry:     txn.IsManualEntry,
		DebitAmount:       txn.DebitAmount,
		CreditAmount:      txn.CreditAmount,
		DebitOrCredit:     txn.DebitOrCredit,
		CurrencyCode:      txn.CurrencyCode,
		ExchangeRate:      txn.ExchangeRate,
		ContactID:         txn.ContactID,
		Payee:             txn.Payee,
		ReferenceNumber:   txn.ReferenceNumber,
		InvoiceID:         txn.InvoiceID,
		EstimateID:        txn.EstimateID,
		SalesOrderID:      txn.SalesOrderID,
		PaymentID:         txn.PaymentID,
		TransactionDate:   txn.TransactionDate,
		Description:       txn.Description,
		Status:            txn.Status,
		IsReversal:        txn.IsReversal,
		ReversalOfID:      txn.ReversalOfID,
		ReversedByID:      txn.ReversedByID,
		PostedBy:          txn.PostedBy,
		PostedAt:          txn.PostedAt,
		CreatedAt:         txn.CreatedAt,
		CreatedBy:         txn.CreatedBy,
	}
}

// ToTransactionResponses converts a slice of transactions to response DTOs.
func ToTransactionResponses(txns []domain.AccountTransaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListTransactionsResponse wraps the list of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}
