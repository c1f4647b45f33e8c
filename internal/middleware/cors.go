package middleware

import (
	"slices"
	"time"

	"rewear/config"
	"rewear/internal/core"
	"rewear/internal/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Cors struct {
	trace *telemetry.Trace
	conf  *config.Configuration
}

func NewCors(trace *telemetry.Trace, conf *config.Configuration) *Cors {
	return &Cors{trace: trace, conf: conf}
}

// CorsConfig 前端網址來自 CORS__ALLOW_ORIGINS，帶 cookie/Authorization 所以不可用 *
func (m *Cors) CorsConfig() cors.Config {
	origins := slices.Clone(m.conf.Cors.AllowOrigins)
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-Id", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CorsHandler 套用 CORS，監控類路徑不做 tracing
func (m *Cors) CorsHandler() gin.HandlerFunc {
	cfg := m.CorsConfig()
	corsHandler := cors.New(cfg)

	type corsMeta struct {
		AllowOrigins []string `trace:"http.cors.allow_origins"`
		AllowMethods []string `trace:"http.cors.allow_methods"`
		AllowHeaders []string `trace:"http.cors.allow_headers"`
		AllowCreds   bool     `trace:"http.cors.allow_credentials"`
	}

	return func(c *gin.Context) {
		if skipTelemetry(c.Request.URL.Path) {
			corsHandler(c)
			return
		}

		_, span, end := m.trace.WithSpan(m.trace.GetTraceContext(c), string(core.SpanCorsMiddleware))
		m.trace.ApplyTraceAttributes(span, corsMeta{
			AllowOrigins: cfg.AllowOrigins,
			AllowMethods: cfg.AllowMethods,
			AllowHeaders: cfg.AllowHeaders,
			AllowCreds:   cfg.AllowCredentials,
		})
		end(nil)

		// 實際的 CORS middleware（preflight 會在這裡 abort）
		corsHandler(c)
	}
}
