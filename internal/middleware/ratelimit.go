package middleware

import (
	"errors"
	"strconv"

	"rewear/config"
	"rewear/internal/core"
	"rewear/internal/database/redis/repository"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/pkg/response"
	"rewear/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RateLimit struct {
	logger                *zap.Logger
	trace                 *telemetry.Trace
	metric                *telemetry.Metric
	conf                  *config.Configuration
	rateLimiterRepository *repository.RateLimiterRepository
}

func NewRateLimit(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	conf *config.Configuration,
	rateLimiterRepository *repository.RateLimiterRepository,
) *RateLimit {
	return &RateLimit{
		logger:                logger,
		trace:                 trace,
		metric:                metric,
		conf:                  conf,
		rateLimiterRepository: rateLimiterRepository,
	}
}

func (middleware *RateLimit) enabled() bool {
	return middleware.conf.RateLimit.Enabled &&
		middleware.conf.RateLimit.Limit > 0 &&
		middleware.conf.RateLimit.WindowSeconds > 0 &&
		middleware.rateLimiterRepository.Enabled()
}

// Guard 每位使用者固定視窗限流；掛在 Auth.User() 之後，匿名時以 IP 計
func (middleware *RateLimit) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !middleware.enabled() {
			c.Next()
			return
		}
		ctx, span, end := middleware.trace.WithSpan(middleware.trace.GetTraceContext(c), string(core.SpanRateLimitMiddleware))

		subject := "ip:" + c.ClientIP()
		if userID := currentUserID(c); userID != "" {
			subject = "user:" + userID
		}
		limit := middleware.conf.RateLimit.Limit
		meta := core.TraceRateLimitMiddlewareMeta{Subject: subject, ConfigLimit: limit}

		remaining, ttlSec, err := middleware.rateLimiterRepository.Consume(ctx, subject, middleware.conf.RateLimit.WindowSeconds, limit)
		switch {
		case errors.Is(err, repository.ErrRateLimitExceeded):
			meta.Blocked = true
		case err != nil:
			// Redis 異常時放行，不阻斷主流程
			meta.Degraded = true
			middleware.logger.Warn("rate limiter unavailable", zap.String("subject", subject), zap.Error(err))
			middleware.trace.ApplyTraceAttributes(span, meta)
			end(nil)
			c.Next()
			return
		}
		meta.Remaining, meta.TTLSeconds = remaining, ttlSec
		middleware.trace.ApplyTraceAttributes(span, meta)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if ttlSec > 0 {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(ttlSec, 10))
		}

		if meta.Blocked {
			c.Header("Retry-After", strconv.FormatInt(max(ttlSec, 1), 10))
			if middleware.metric.RateLimitedTotal != nil {
				middleware.metric.RateLimitedTotal.WithLabelValues(endpointLabel(c)).Inc()
			}
			end(nil)
			response.AbortWithError(c, cErr.RateLimitExceeded("Too many requests, please try again later"))
			return
		}
		end(nil)
		c.Next()
	}
}
