package handler

import (
	"runtime"
	"time"

	"rewear/config"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/pkg/response"
	"rewear/internal/service"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthStatus *service.HealthService
	conf         *config.Configuration
	startedAt    time.Time
}

func NewHealthHandler(status *service.HealthService, conf *config.Configuration) *HealthHandler {
	return &HealthHandler{healthStatus: status, conf: conf, startedAt: time.Now().UTC()}
}

// Health 與前端既有檢查相容
// @Summary 服務狀態
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "OK",
		"message": "ReWear API is running",
	})
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	if h.healthStatus.IsLive() {
		response.Success(c, gin.H{"status": "alive"})
		return
	}
	response.AbortWithError(c, cErr.ServiceUnavailable("Service is not alive"))
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.healthStatus.IsReady() {
		response.Success(c, gin.H{"status": "ready"})
		return
	}
	response.AbortWithError(c, cErr.ServiceUnavailable("Service is not ready"))
}

// Version 執行環境資訊
// @Summary 版本資訊
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]any
// @Router /version [get]
func (h *HealthHandler) Version(c *gin.Context) {
	response.Success(c, gin.H{
		"env":       h.conf.App.Env,
		"name":      h.conf.App.Name,
		"version":   h.conf.App.Version,
		"goVersion": runtime.Version(),
		"startedAt": h.startedAt.Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// NotFound 未匹配的路由（含方法不符）
func (h *HealthHandler) NotFound(c *gin.Context) {
	response.AbortWithError(c, cErr.NotFound("Route not found"))
}

