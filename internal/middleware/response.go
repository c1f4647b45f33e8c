package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"rewear/config"
	"rewear/internal/core"
	"rewear/internal/database/fluentd/model"
	"rewear/internal/database/fluentd/repository"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/pkg/response"
	"rewear/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Response struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	metric            *telemetry.Metric
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewResponse(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Response {
	return &Response{
		logger:            logger,
		trace:             trace,
		metric:            metric,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

// FormatHandler 把 handler 透過 c.Set("data") 交付的 body 加上 requestId 後輸出
func (middleware *Response) FormatHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestTime := time.Now()
		if startTime, exists := c.Get("requestDuration"); exists {
			if t, ok := startTime.(time.Time); ok {
				requestTime = t
			}
		} else {
			c.Set("requestDuration", requestTime)
		}

		// 執行下游
		c.Next()

		// 若已經有錯誤交由 Recovery 處理，或已經寫出回應（例如圖片串流），就不要再動了
		if len(c.Errors) > 0 || c.Writer.Written() {
			return
		}

		// 以「下游結束後」的狀態碼為準
		statusCode := c.Writer.Status()
		if statusCode >= http.StatusBadRequest {
			response.AbortWithError(c, cErr.MapHttpStatusToError(statusCode, http.StatusText(statusCode)))
			return
		}

		// ---- 成功回應路徑 ----
		ctx, span, end := middleware.trace.WithSpan(middleware.trace.GetTraceContext(c), string(core.SpanResponseMiddleware))
		defer end(nil)

		body := gin.H{}
		if raw, ok := c.Get("data"); ok {
			if data, ok := raw.(gin.H); ok {
				for k, v := range data {
					body[k] = v
				}
			}
		}
		requestID := RequestID(c)
		body["requestId"] = requestID
		message := response.Message(body)

		jsonBytes, err := json.Marshal(body)
		if err != nil {
			// Marshal 失敗視為 500，交給 Recovery 處理
			middleware.logger.Error("marshal response failed", zap.Error(err))
			response.AbortWithError(c, cErr.InternalServer("Something went wrong!"))
			return
		}

		duration := time.Since(requestTime)
		traceID := span.SpanContext().TraceID()
		spanID := span.SpanContext().SpanID()

		if !skipTelemetry(c.Request.URL.Path) {
			middleware.trace.ApplyTraceAttributes(span, core.TraceResponseMeta{
				Path:       c.Request.URL.Path,
				Method:     c.Request.Method,
				Status:     statusCode,
				Message:    message,
				DurationMs: float64(duration.Milliseconds()),
				Data:       safePreview(jsonBytes, 2000),
			})
			middleware.logger.Info("[Response] "+message,
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Int("status", statusCode),
				zap.Duration("duration", duration),
				zap.String("requestId", requestID),
				zap.String("spanId", fmt.Sprintf("%x", spanID[:])),
				zap.String("traceId", fmt.Sprintf("%x", traceID[:])),
			)

			responseMeta := model.ResponseLog{
				RequestID:  requestID,
				UserID:     currentUserID(c),
				StatusCode: statusCode,
				Body:       safePreview(jsonBytes, 4000),
				ResponseTS: time.Now().UTC().Format(responseTSLayout),
				Version:    middleware.config.App.Version,
			}
			if err := middleware.fluentdRepository.LogResponse(ctx, responseMeta); err != nil {
				middleware.logger.Debug("fluentd response log failed", zap.Error(err))
			}
		}

		if middleware.metric.RequestSuccessTotal != nil && middleware.metric.HttpRequestDuration != nil {
			endpoint := endpointLabel(c)
			middleware.metric.RequestSuccessTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
			middleware.metric.HttpRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
		}

		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Writer.WriteHeader(statusCode) // handler 可能設了 201
		if _, werr := c.Writer.Write(jsonBytes); werr != nil {
			middleware.logger.Warn("write response failed", zap.Error(werr))
		}
	}
}

// safePreview 截斷過長的 body，避免 log 過大
func safePreview(b []byte, max int) string {
	if len(b) > max {
		return string(b[:max]) + "…"
	}
	return string(b)
}
