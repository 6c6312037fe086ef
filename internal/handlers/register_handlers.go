package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/templetrust/templeledger/internal/core/domain"
	portssvc "github.com/templetrust/templeledger/internal/core/ports/services"
	"github.com/templetrust/templeledger/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	registerAccountRoutes(v1, services.ChartOfAccounts, services.Ledger)
	registerJournalRoutes(v1, services.Ledger)
	registerPeriodRoutes(v1, services.Period)
	registerReconciliationRoutes(v1, services.Reconciliation)
	registerDepreciationRoutes(v1, services.Depreciation)
	registerReportingRoutes(v1, services.Ledger)
}

// registerValidators installs the custom binding validators.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// accountcode: 5 digits, leading digit is a known account class.
	_ = v.RegisterValidation("accountcode", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if len(code) != 5 {
			return false
		}
		for i := 0; i < len(code); i++ {
			if code[i] < '0' || code[i] > '9' {
				return false
			}
		}
		_, ok := domain.ClassForDigit(code[0])
		return ok
	})
}
