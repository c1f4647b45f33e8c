package router

import (
	"rewear/internal/core"
	"rewear/internal/handler"
	"rewear/internal/middleware"

	"github.com/gin-gonic/gin"
)

type ItemRouter struct {
	itemHandler *handler.ItemHandler
	auth        *middleware.Auth
	rateLimit   *middleware.RateLimit
}

func NewItemRouter(
	itemHandler *handler.ItemHandler,
	auth *middleware.Auth,
	rateLimit *middleware.RateLimit,
) *ItemRouter {
	return &ItemRouter{
		itemHandler: itemHandler,
		auth:        auth,
		rateLimit:   rateLimit,
	}
}

func (ir *ItemRouter) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/items")
	{
		// 公開瀏覽；帶 token 時管理員與擁有者可看到未審核商品
		g.GET("", ir.auth.OptionalUser(), ir.itemHandler.List)

		// 靜態路徑需與 /:id 並存
		g.GET("/user/items", ir.auth.User(), ir.itemHandler.ListMine)
		g.POST("/upload-images", ir.auth.User(), ir.rateLimit.Guard(), ir.itemHandler.UploadImages)
		g.POST("", ir.auth.User(), ir.rateLimit.Guard(), ir.itemHandler.Create)

		g.GET("/:id", ir.auth.OptionalUser(), ir.itemHandler.Get)
		g.PUT("/:id", ir.auth.User(), ir.rateLimit.Guard(), ir.itemHandler.Update)
		g.DELETE("/:id", ir.auth.User(), ir.rateLimit.Guard(), ir.itemHandler.Delete)
		g.PUT("/:id/approve", ir.auth.User(), ir.auth.RequireRole(core.RoleAdmin), ir.itemHandler.Approve)
	}
}
