package middleware

import (
	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators wires domain enum checks into gin's binding
// validator so malformed payloads are rejected before reaching services.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("accounttype", func(fl validator.FieldLevel) bool {
		_, ok := domain.NormalSideFor(domain.AccountType(fl.Field().String()))
		return ok
	})

	_ = v.RegisterValidation("entryside", func(fl validator.FieldLevel) bool {
		side := domain.EntrySide(fl.Field().String())
		return side == domain.Debit || side == domain.Credit
	})
}
