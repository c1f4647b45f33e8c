package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"
	"unicode/utf8"

	"rewear/config"
	"rewear/internal/core"
	"rewear/internal/database/fluentd/model"
	"rewear/internal/database/fluentd/repository"
	"rewear/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	requestTSLayout = "2006-01-02 15:04:05.999999 UTC"
	bodyPreviewMax  = 2000
)

// 這些 header 只記錄是否存在
var redactedHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"x-api-key":     true,
}

type Logger struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewLogger(
	logger *zap.Logger,
	trace *telemetry.Trace,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Logger {
	return &Logger{
		logger:            logger,
		trace:             trace,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

// LoggerHandler 記錄每個請求（二進位與 multipart 只記摘要，文字 body 做安全截斷）
func (m *Logger) LoggerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipTelemetry(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx, span, end := m.trace.WithSpan(m.trace.GetTraceContext(c), string(core.SpanLoggerMiddleware))

		requestTime := time.Now().UTC()
		if startTime, exists := c.Get("requestDuration"); exists {
			if t, ok := startTime.(time.Time); ok {
				requestTime = t
			}
		}

		mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
		bodyRaw := m.readBody(c, mediaType)

		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		traceID := span.SpanContext().TraceID()
		spanID := span.SpanContext().SpanID()

		headerMap := redactHeaders(c.Request.Header)
		paramsMap := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			paramsMap[p.Key] = p.Value
		}

		m.trace.ApplyTraceAttributes(span, core.LoggerRequestMeta{
			Method:     method,
			Path:       path,
			FullPath:   c.FullPath(),
			Query:      query,
			Body:       bodyRaw,
			Scheme:     c.Request.URL.Scheme,
			Host:       c.Request.Host,
			UserAgent:  c.Request.UserAgent(),
			ContentLen: c.Request.ContentLength,
			Proto:      c.Request.Proto,
			ClientIP:   c.ClientIP(),
			Headers:    headerMap,
			Params:     paramsMap,
		})

		logFields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Any("headers", headerMap),
		}
		if query != "" {
			logFields = append(logFields, zap.String("query", query))
		}
		if len(paramsMap) > 0 {
			logFields = append(logFields, zap.Any("params", paramsMap))
		}
		if bodyRaw != "" {
			logFields = append(logFields, zap.String("body", bodyRaw))
		}
		logFields = append(logFields,
			zap.String("requestId", RequestID(c)),
			zap.String("spanId", fmt.Sprintf("%x", spanID[:])),
			zap.String("traceId", fmt.Sprintf("%x", traceID[:])),
		)
		m.logger.Info("[Request] logging middleware message", logFields...)

		requestLog := model.RequestLog{
			RequestID: RequestID(c),
			Method:    method,
			Path:      path,
			RequestTS: requestTime.UTC().Format(requestTSLayout),
			Body:      bodyRaw,
			IPHash:    hashIP(c.ClientIP()),
			UserAgent: c.Request.UserAgent(),
			Version:   m.config.App.Version,
		}
		if err := m.fluentdRepository.LogRequest(ctx, requestLog); err != nil {
			m.logger.Debug("fluentd request log failed", zap.Error(err))
		}
		end(nil)
		c.Next()
	}
}

// readBody 讀完整 body 後回填，確保下游仍可讀取
func (m *Logger) readBody(c *gin.Context, mediaType string) string {
	if isBinaryContent(mediaType) {
		if c.Request.ContentLength > 0 {
			return fmt.Sprintf("(binary %s, %d bytes)", mediaType, c.Request.ContentLength)
		}
		return fmt.Sprintf("(binary %s)", mediaType)
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return ""
	}
	data, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		// 超過 MaxBytesReader 上限時交給 handler 回 413
		return "(unreadable body)"
	}
	return toSafePreview(data, bodyPreviewMax)
}

func redactHeaders(header map[string][]string) map[string]string {
	out := make(map[string]string, len(header))
	for k, v := range header {
		lk := strings.ToLower(k)
		if redactedHeaders[lk] {
			out[lk] = "[REDACTED]"
			continue
		}
		out[lk] = strings.Join(v, ",")
	}
	return out
}

// 不保存原始 IP
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return base64.RawStdEncoding.EncodeToString(sum[:12])
}

// 僅對文字內容做安全預覽：UTF-8 直接截斷；非 UTF-8 以 Base64 表示
func toSafePreview(b []byte, max int) string {
	if len(b) == 0 {
		return ""
	}
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

// 是否為二進位內容（不讀 body）
func isBinaryContent(mediaType string) bool {
	return strings.HasPrefix(mediaType, "multipart/") ||
		strings.HasPrefix(mediaType, "image/") ||
		strings.HasPrefix(mediaType, "audio/") ||
		strings.HasPrefix(mediaType, "video/") ||
		mediaType == "application/octet-stream"
}
