package handlers

import (
	"github.com/finbooks/backoffice_ledger/cmd/docs"
	"github.com/finbooks/backoffice_ledger/internal/core/services"
	"github.com/finbooks/backoffice_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// actorHeader identifies the acting user for audit fields. Authentication
// itself lives at the gateway; this service only records who acted.
const actorHeader = "X-Actor"

func actorFromRequest(c *gin.Context) string {
	if actor := c.GetHeader(actorHeader); actor != "" {
		return actor
	}
	return "system"
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	container *services.ServiceContainer,
) {
	r.GET("/", getHome)
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, container)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(r *gin.Engine, container *services.ServiceContainer) {
	v1 := r.Group("/api/v1")

	registerAccountRoutes(v1, container.ChartSvc)
	registerJournalRoutes(v1, container.LedgerSvc)
	registerInvoiceRoutes(v1, container.InvoiceSvc)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
