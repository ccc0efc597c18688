// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tibib/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("risk_level", validateRiskLevel)
	}
}

func validateRiskLevel(fl validator.FieldLevel) bool {
	switch models.RiskLevel(fl.Field().String()) {
	case models.RiskConservative, models.RiskModerate, models.RiskAggressive:
		return true
	}
	return false
}
