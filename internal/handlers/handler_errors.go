package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finledger/finledger_backend/internal/apperrors"
)

// errorBody is the uniform error payload.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps service errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, errorBody{Code: "validation_error", Message: err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody{Code: "not_found", Message: err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, errorBody{Code: "duplicate", Message: err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, errorBody{Code: "state_conflict", Message: err.Error()})
	case errors.Is(err, apperrors.ErrIntegrity):
		c.JSON(http.StatusConflict, errorBody{Code: "integrity_error", Message: err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, errorBody{Code: "forbidden", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorBody{Code: "internal_error", Message: "something went wrong"})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody{Code: "validation_error", Message: "invalid request format: " + err.Error()})
}
