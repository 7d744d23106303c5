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

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService   portssvc.AccountSvcFacade
	seedCurrencyCode string
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, seedCurrencyCode string) {
	h := newAccountHandler(accountService)
	h.seedCurrencyCode = seedCurrencyCode

	accounts := rg.Group("/accounts")
	{
		manage := middleware.RequirePermission(domain.PermissionManageAccounting)
		view := middleware.RequirePermission(domain.PermissionViewAccounting)

		accounts.POST("", manage, h.createAccount)
		accounts.GET("", view, h.listAccounts)
		accounts.GET("/tree", view, h.getAccountTree)
		accounts.GET("/:id", view, h.getAccount)
		accounts.GET("/:id/balance", view, h.getAccountBalance)
		accounts.GET("/:id/descendants", view, h.getDescendants)
		accounts.PUT("/:id", manage, h.updateAccount)
		accounts.DELETE("/:id", manage, h.deleteAccount)
		accounts.POST("/:id/activate", manage, h.activateAccount)
		accounts.POST("/:id/deactivate", manage, h.deactivateAccount)
		accounts.POST("/seed_system", manage, h.seedSystemAccounts)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createAccount", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	tenantID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	var params dto.GetAccountParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), tenantID, c.Param("id"), params.ShowBalance)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccountBalance(c *gin.Context) {
	tenantID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	balance, err := h.accountService.ComputeBalance(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accountID": c.Param("id"), "balance": balance})
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	tenantID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), tenantID, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

func (h *accountHandler) getAccountTree(c *gin.Context) {
	tenantID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	tree, err := h.accountService.GetAccountTree(c.Request.Context(), tenantID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AccountTreeResponse{Accounts: tree})
}

func (h *accountHandler) getDescendants(c *gin.Context) {
	tenantID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	ids, err := h.accountService.GetDescendants(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"accountIDs": ids})
}

func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateAccount", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), tenantID, c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) deleteAccount(c *gin.Context) {
	tenantID, _, ok := callerIdentity(c)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *accountHandler) activateAccount(c *gin.Context) {
	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	if err := h.accountService.ActivateAccount(c.Request.Context(), tenantID, c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// seedSystemAccounts bootstraps the platform-default accounts for the
// caller's tenant. Safe to call repeatedly.
func (h *accountHandler) seedSystemAccounts(c *gin.Context) {
	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req dto.SeedSystemAccountsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}
	currencyCode := req.CurrencyCode
	if currencyCode == "" {
		currencyCode = h.seedCurrencyCode
	}

	if err := h.accountService.SeedSystemAccounts(c.Request.Context(), tenantID, currencyCode, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *accountHandler) deactivateAccount(c *gin.Context) {
	tenantID, userID, ok := callerIdentity(c)
	if !ok {
		return
	}

	if err := h.accountService.DeactivateAccount(c.Request.Context(), tenantID, c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
