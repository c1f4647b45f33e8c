package router

import (
	"rewear/internal/handler"
	"rewear/internal/middleware"

	"github.com/gin-gonic/gin"
)

type AuthRouter struct {
	authHandler *handler.AuthHandler
	auth        *middleware.Auth
	rateLimit   *middleware.RateLimit
}

func NewAuthRouter(
	authHandler *handler.AuthHandler,
	auth *middleware.Auth,
	rateLimit *middleware.RateLimit,
) *AuthRouter {
	return &AuthRouter{
		authHandler: authHandler,
		auth:        auth,
		rateLimit:   rateLimit,
	}
}

func (ar *AuthRouter) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/auth")
	{
		// 註冊時資料庫還沒有這個使用者，只驗 token
		g.POST("/register", ar.auth.Identity(), ar.rateLimit.Guard(), ar.authHandler.Register)

		user := g.Group("", ar.auth.User())
		user.GET("/profile/:firebaseUid", ar.authHandler.GetProfile)
		user.PUT("/profile/:firebaseUid", ar.rateLimit.Guard(), ar.authHandler.UpdateProfile)
		user.PUT("/points/:firebaseUid", ar.rateLimit.Guard(), ar.authHandler.UpdatePoints)
	}
}
