package router

import (
	"rewear/internal/handler"
	"rewear/internal/middleware"

	"github.com/gin-gonic/gin"
)

type SwapRouter struct {
	swapHandler *handler.SwapHandler
	auth        *middleware.Auth
	rateLimit   *middleware.RateLimit
}

func NewSwapRouter(
	swapHandler *handler.SwapHandler,
	auth *middleware.Auth,
	rateLimit *middleware.RateLimit,
) *SwapRouter {
	return &SwapRouter{
		swapHandler: swapHandler,
		auth:        auth,
		rateLimit:   rateLimit,
	}
}

func (sr *SwapRouter) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/swaps", sr.auth.User())
	{
		g.GET("", sr.swapHandler.List)
		g.POST("", sr.rateLimit.Guard(), sr.swapHandler.Create)
		g.PUT("/:id", sr.rateLimit.Guard(), sr.swapHandler.UpdateStatus)
		g.DELETE("/:id", sr.rateLimit.Guard(), sr.swapHandler.Delete)
	}
}
