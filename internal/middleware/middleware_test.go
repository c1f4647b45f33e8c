package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rewear/config"
	"rewear/internal/database/client"
	fluentdRepo "rewear/internal/database/fluentd/repository"
	redisRepo "rewear/internal/database/redis/repository"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/pkg/response"
	"rewear/internal/telemetry"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type chain struct {
	conf     *config.Configuration
	trace    *telemetry.Trace
	metric   *telemetry.Metric
	logger   *zap.Logger
	recovery *Recovery
	response *Response
}

func newChain(conf *config.Configuration) *chain {
	gin.SetMode(gin.TestMode)
	if conf == nil {
		conf = &config.Configuration{}
	}
	logger := zap.NewNop()
	trace := telemetry.NewNoopTrace()
	metric := telemetry.NewMetricWith(conf, prometheus.NewRegistry())
	logRepo := fluentdRepo.NewLogRepository(conf, &client.NoopClient{})
	return &chain{
		conf:     conf,
		trace:    trace,
		metric:   metric,
		logger:   logger,
		recovery: NewRecovery(logger, trace, metric, conf, logRepo),
		response: NewResponse(logger, trace, metric, conf, logRepo),
	}
}

func (ch *chain) engine(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ch.recovery.ErrorHandler())
	r.Use(extra...)
	r.Use(ch.response.FormatHandler())
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRecovery_Panic(t *testing.T) {
	ch := newChain(nil)
	r := ch.engine()
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Something went wrong!", body["message"])
	assert.Equal(t, w.Header().Get("X-Request-Id"), body["requestId"])
}

func TestRecovery_AppErrorAndUnknownError(t *testing.T) {
	ch := newChain(nil)
	r := ch.engine()
	r.GET("/conflict", func(c *gin.Context) { response.AbortWithError(c, cErr.Conflict("User already exists")) })
	r.GET("/raw", func(c *gin.Context) { response.AbortWithError(c, assert.AnError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, "User already exists", body["message"])
	assert.NotEmpty(t, body["error"])
	assert.NotZero(t, body["code"])

	// 非預期錯誤不外洩內部訊息
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Something went wrong!", decode(t, w)["message"])
}

func TestResponse_FlatBodyWithRequestID(t *testing.T) {
	ch := newChain(nil)
	r := ch.engine()
	r.POST("/things", func(c *gin.Context) {
		response.Create(c, gin.H{"message": "Thing created successfully", "thing": gin.H{"id": 1}})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/things", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Thing created successfully", body["message"])
	assert.Equal(t, map[string]any{"id": float64(1)}, body["thing"])
	assert.NotEmpty(t, body["requestId"])
}

func TestBodyLimit(t *testing.T) {
	conf := &config.Configuration{}
	conf.App.MaxUploadMB = 1
	ch := newChain(conf)
	limit := NewBodyLimit(conf)
	assert.Equal(t, int64(1<<20), limit.MaxBytes())

	r := ch.engine(limit.Handler())
	r.POST("/upload", func(c *gin.Context) { response.Success(c, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 2<<20))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body too large", decode(t, w)["message"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBodyLimit_DefaultsToTenMB(t *testing.T) {
	assert.Equal(t, int64(10<<20), NewBodyLimit(&config.Configuration{}).MaxBytes())
}

func TestCors_AllowsConfiguredOrigin(t *testing.T) {
	conf := &config.Configuration{}
	conf.Cors.AllowOrigins = []string{"https://rewear.example"}
	ch := newChain(conf)
	r := ch.engine(NewCors(ch.trace, conf).CorsHandler())
	r.GET("/items", func(c *gin.Context) { response.Success(c, gin.H{"items": []any{}}) })

	req := httptest.NewRequest(http.MethodOptions, "/items", nil)
	req.Header.Set("Origin", "https://rewear.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://rewear.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/items", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func newRateLimit(t *testing.T, ch *chain, mr *miniredis.Miniredis) *RateLimit {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	repo := redisRepo.NewRateLimiterRepository(ch.trace, client.NewRedisClientFrom(ch.logger, rdb))
	return NewRateLimit(ch.logger, ch.trace, ch.metric, ch.conf, repo)
}

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	conf := &config.Configuration{}
	conf.RateLimit = config.RateLimit{Enabled: true, Limit: 2, WindowSeconds: 60}
	ch := newChain(conf)
	r := ch.engine(newRateLimit(t, ch, mr).Guard())
	r.POST("/swaps", func(c *gin.Context) { response.Create(c, gin.H{"ok": true}) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/swaps", nil))
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/swaps", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "Too many requests, please try again later", decode(t, w)["message"])
}

func TestRateLimit_DegradesWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	conf := &config.Configuration{}
	conf.RateLimit = config.RateLimit{Enabled: true, Limit: 1, WindowSeconds: 60}
	ch := newChain(conf)
	r := ch.engine(newRateLimit(t, ch, mr).Guard())
	r.POST("/swaps", func(c *gin.Context) { response.Create(c, gin.H{"ok": true}) })

	mr.Close()
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/swaps", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestRateLimit_DisabledWithoutRedis(t *testing.T) {
	conf := &config.Configuration{}
	conf.RateLimit = config.RateLimit{Enabled: true, Limit: 1, WindowSeconds: 60}
	ch := newChain(conf)
	repo := redisRepo.NewRateLimiterRepository(ch.trace, client.NewRedisClientFrom(ch.logger, nil))
	r := ch.engine(NewRateLimit(ch.logger, ch.trace, ch.metric, conf, repo).Guard())
	r.POST("/swaps", func(c *gin.Context) { response.Create(c, gin.H{"ok": true}) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/swaps", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestSkipTelemetry(t *testing.T) {
	assert.True(t, skipTelemetry("/metrics"))
	assert.True(t, skipTelemetry("/swagger/index.html"))
	assert.True(t, skipTelemetry("/api/health/liveness"))
	assert.False(t, skipTelemetry("/api/health"))
	assert.False(t, skipTelemetry("/api/items"))
}
