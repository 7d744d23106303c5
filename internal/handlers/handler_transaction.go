package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finledger/finledger_backend/internal/core/domain"
	portssvc "github.com/finledger/finledger_backend/internal/core/ports/services"
	"github.com/finledger/finledger_backend/internal/dto"
	"github.com/finledger/finledger_backend/internal/middleware"
)

// transactionHandler handles HTTP requests for transactions and the
// posting/reversal engine.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers routes related to transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	manage := middleware.RequirePermission(domain.PermissionManageTransactions)
	view := middleware.RequirePermission(domain.PermissionViewAccounting)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", manage, h.createTransaction)
		transactions.GET("/:id", view, h.getTransaction)
		transactions.PUT("/:id", manage, h.updateTransaction)
		transactions.DELETE("/:id", manage, h.deleteTransaction)
		transactions.POST("/:id/post", manage, h.postTransaction)
		transactions.POST("/:id/void", manage, h.voidTransaction)
		transactions.POST("/:id/cancel", manage, h.cancelTransaction)
		transactions.POST("/:id/create_reversal", manage, h.reverseTransaction)
		transactions.POST("/post_transactions", manage, h.bulkPostTransactions)
	}

	rg.GET("/accounts/:id/transactions", view, h.listTransactionsByAccount)
}

func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createTransaction", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	tenantID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) listTransactionsByAccount(c *gin.Context) {
	tenantID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	txns, err := h.transactionService.ListTransactionsByAccount(c.Request.Context(), tenantID, c.Param("id"), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListTransactionsResponse{Transactions: dto.ToTransactionResponses(txns)})
}

func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateTransaction", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), tenantID, c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	tenantID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *transactionHandler) postTransaction(c *gin.Context) {
	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.PostTransaction(c.Request.Context(), tenantID, c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) bulkPostTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BulkPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for bulkPostTransactions", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	resp := h.transactionService.BulkPostTransactions(c.Request.Context(), tenantID, req.TransactionIDs, userID)

	// Partial failure is still a 200: each item reports its own outcome.
	c.JSON(http.StatusOK, resp)
}

func (h *transactionHandler) voidTransaction(c *gin.Context) {
	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.VoidTransaction(c.Request.Context(), tenantID, c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) cancelTransaction(c *gin.Context) {
	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.CancelTransaction(c.Request.Context(), tenantID, c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	// Every reversal field is optional; an empty body is a plain reversal.
	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Failed to bind JSON for reverseTransaction", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	reversal, err := h.transactionService.ReverseTransaction(c.Request.Context(), tenantID, c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(reversal))
}
