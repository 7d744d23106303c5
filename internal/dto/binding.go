package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/finledger/finledger_backend/internal/core/domain"
)

// The request structs in this package rely on the accounttype and balancetype
// binding tags; registering them here keeps any binder of these DTOs working,
// the server and tests alike.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("accounttype", func(fl validator.FieldLevel) bool {
		return domain.AccountType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("balancetype", func(fl validator.FieldLevel) bool {
		bt := domain.BalanceType(fl.Field().String())
		return bt == domain.BalanceTypeDebit || bt == domain.BalanceTypeCredit
	})
}
