package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"rewear/config"
	"rewear/internal/core"
	"rewear/internal/database/fluentd/model"
	"rewear/internal/database/fluentd/repository"
	cErr "rewear/internal/pkg/error"
	res "rewear/internal/pkg/response"
	"rewear/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const responseTSLayout = "2006-01-02 15:04:05.999999 UTC"

type Recovery struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	metric            *telemetry.Metric
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewRecovery(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Recovery {
	return &Recovery{
		logger:            logger,
		trace:             trace,
		metric:            metric,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

// ErrorHandler 產生 request id，並統一輸出 panic 與 handler 錯誤
func (middleware *Recovery) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestTime := time.Now()
		if startTime, exists := c.Get("requestDuration"); exists {
			if t, ok := startTime.(time.Time); ok {
				requestTime = t
			}
		}
		requestID := newRequestID()
		c.Set(core.ContextRequestID, requestID)
		c.Header("X-Request-Id", requestID)
		c.Request = c.Request.WithContext(core.WithRequestID(c.Request.Context(), requestID))
		traceCtx := core.WithRequestID(middleware.trace.GetTraceContext(c), requestID)
		c.Set(core.ContextTraceKey, traceCtx)

		// ---- panic recover 必須在 c.Next() 之前註冊 ----
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			duration := time.Since(requestTime)
			ctx, span, end := middleware.trace.WithSpan(traceCtx, string(core.SpanRecoveryMiddleware))
			traceID := span.SpanContext().TraceID()
			spanID := span.SpanContext().SpanID()

			meta := core.TracePanicMeta{
				Path:       c.Request.URL.Path,
				Method:     c.Request.Method,
				ClientIP:   c.ClientIP(),
				UserAgent:  c.Request.UserAgent(),
				DurationMs: float64(duration.Milliseconds()),
				Message:    toSafeString(fmt.Sprint(rec)),
				Stack:      toSafeStack(debug.Stack()),
				Status:     http.StatusInternalServerError,
			}
			middleware.trace.ApplyTraceAttributes(span, meta)

			middleware.logger.Error("[PANIC] Recovered",
				zap.String("path", meta.Path),
				zap.String("method", meta.Method),
				zap.String("client_ip", meta.ClientIP),
				zap.String("user_agent", meta.UserAgent),
				zap.Duration("duration", duration),
				zap.String("panic", meta.Message),
				zap.String("stacktrace", meta.Stack),
				zap.String("requestId", requestID),
				zap.String("spanId", fmt.Sprintf("%x", spanID[:])),
				zap.String("traceId", fmt.Sprintf("%x", traceID[:])),
			)

			err := cErr.InternalServer("Something went wrong!")
			end(err)
			if !c.Writer.Written() {
				res.FailByErr(c, requestID, err)
			}
			middleware.logResponse(ctx, c, requestID, err, duration)
			c.Abort()
		}()

		// 執行下游
		c.Next()

		// ---- 統一處理非 panic 的 gin errors（若尚未回寫）----
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		duration := time.Since(requestTime)
		ctx, span, end := middleware.trace.WithSpan(traceCtx, string(core.SpanRecoveryMiddleware))
		traceID := span.SpanContext().TraceID()
		spanID := span.SpanContext().SpanID()

		appErr := firstAppError(c.Errors)
		if appErr == nil {
			// 其餘未知錯誤不外流細節
			middleware.logger.Warn("[ERROR] unknown",
				zap.String("error", toSafeString(c.Errors.String())),
				zap.Duration("duration", duration),
				zap.String("requestId", requestID),
				zap.String("spanId", fmt.Sprintf("%x", spanID[:])),
				zap.String("traceId", fmt.Sprintf("%x", traceID[:])),
			)
			appErr = cErr.InternalServer("Something went wrong!")
		} else {
			middleware.logger.Warn(appErr.Error(),
				zap.Int("code", appErr.ErrorCode()),
				zap.String("data", appErr.ErrorDesc()),
				zap.Duration("duration", duration),
				zap.String("requestId", requestID),
				zap.String("spanId", fmt.Sprintf("%x", spanID[:])),
				zap.String("traceId", fmt.Sprintf("%x", traceID[:])),
			)
		}
		middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
			Code:       appErr.ErrorCode(),
			Message:    appErr.Error(),
			Detail:     appErr.ErrorDesc(),
			DurationMs: float64(duration.Milliseconds()),
			Status:     appErr.HttpCode(),
		})
		if appErr.HttpCode() >= http.StatusInternalServerError {
			end(appErr)
		} else {
			end(nil)
		}

		res.FailByErr(c, requestID, appErr)
		middleware.logResponse(ctx, c, requestID, appErr, duration)
		c.Abort()
	}
}

func (middleware *Recovery) logResponse(ctx context.Context, c *gin.Context, requestID string, appErr *cErr.Error, duration time.Duration) {
	responseMeta := model.ResponseLog{
		RequestID:  requestID,
		UserID:     currentUserID(c),
		Code:       appErr.ErrorCode(),
		StatusCode: appErr.HttpCode(),
		Error:      appErr.ErrorDesc(),
		ResponseTS: time.Now().UTC().Format(responseTSLayout),
		Version:    middleware.config.App.Version,
	}
	if err := middleware.fluentdRepository.LogResponse(ctx, responseMeta); err != nil {
		middleware.logger.Debug("fluentd response log failed", zap.Error(err))
	}
	if middleware.metric.RequestFailTotal != nil {
		middleware.metric.RequestFailTotal.WithLabelValues(appErr.Error()).Inc()
	}
	if middleware.metric.HttpRequestDuration != nil {
		middleware.metric.HttpRequestDuration.WithLabelValues(endpointLabel(c)).Observe(duration.Seconds())
	}
}

// ---- helpers ----

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func firstAppError(errs []*gin.Error) *cErr.Error {
	for _, e := range errs {
		var appErr *cErr.Error
		if errors.As(e.Err, &appErr) {
			return appErr
		}
	}
	return nil
}

func toSafeString(s string) string {
	const max = 8000
	if utf8.ValidString(s) {
		if len(s) > max {
			return s[:max] + "…"
		}
		return s
	}
	b := []byte(s)
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}

func toSafeStack(b []byte) string {
	const max = 16000
	if utf8.Valid(b) {
		if len(b) > max {
			return string(b[:max]) + "…"
		}
		return string(b)
	}
	if len(b) > max {
		b = b[:max]
	}
	return "b64:" + base64.StdEncoding.EncodeToString(b)
}
