package router

import (
	"strings"

	docs "rewear/cmd/docs"
	"rewear/config"
	"rewear/internal/handler"
	"rewear/internal/middleware"
	"rewear/utils/validate"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var ProviderSet = wire.NewSet(
	NewRouter,
	NewHealthRouter,
	NewAuthRouter,
	NewItemRouter,
	NewSwapRouter,
	NewMediaRouter,
)

// NewRouter 組裝全域 middleware 與各模組路由
func NewRouter(
	config *config.Configuration,
	traceEntry *middleware.TraceEntry,
	recovery *middleware.Recovery,
	cors *middleware.Cors,
	bodyLimit *middleware.BodyLimit,
	logger *middleware.Logger,
	responseMiddleware *middleware.Response,
	healthHandler *handler.HealthHandler,
	healthRouter *HealthRouter,
	authRouter *AuthRouter,
	itemRouter *ItemRouter,
	swapRouter *SwapRouter,
	mediaRouter *MediaRouter,
) *gin.Engine {

	switch config.App.Env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	validate.RegisterBindingValidators()
	router := gin.New()
	// recovery 需在 logger 之前，才拿得到 request id
	router.Use(traceEntry.Handler())
	router.Use(recovery.ErrorHandler())
	router.Use(cors.CorsHandler())
	router.Use(bodyLimit.Handler())
	router.Use(logger.LoggerHandler())
	router.Use(responseMiddleware.FormatHandler())
	router.NoRoute(healthHandler.NotFound)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	basePath := normalizeBasePath(config.App.BasePath)
	if config.App.SwaggerEnabled {
		router.GET("/swagger/*any", func(c *gin.Context) {
			docs.SwaggerInfo.Host = c.Request.Host
			docs.SwaggerInfo.BasePath = basePath
			if config.App.Env == "production" {
				docs.SwaggerInfo.Schemes = []string{"https"}
			}
		}, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if config.App.PprofEnabled {
		pprof.Register(router)
	}

	api := router.Group(basePath)
	healthRouter.RegisterRoutes(api)
	authRouter.RegisterRoutes(api)
	itemRouter.RegisterRoutes(api)
	swapRouter.RegisterRoutes(api)
	mediaRouter.RegisterRoutes(api)
	return router
}

// normalizeBasePath "" 與 "/" 都視為掛在根路徑
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	return "/" + strings.Trim(p, "/")
}
