package router

import (
	"rewear/internal/handler"

	"github.com/gin-gonic/gin"
)

type HealthRouter struct {
	healthHandler *handler.HealthHandler
}

func NewHealthRouter(
	healthHandler *handler.HealthHandler,
) *HealthRouter {
	return &HealthRouter{
		healthHandler: healthHandler,
	}
}

func (healthRouter *HealthRouter) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", healthRouter.healthHandler.Health)
	r.GET("/health/liveness", healthRouter.healthHandler.Liveness)
	r.GET("/health/readiness", healthRouter.healthHandler.Readiness)
	r.GET("/version", healthRouter.healthHandler.Version)
}
