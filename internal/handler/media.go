package handler

import (
	"errors"
	"strconv"
	"strings"

	"rewear/internal/media"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/pkg/response"
	"rewear/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MediaHandler struct {
	trace  *telemetry.Trace
	logger *zap.Logger
	reader media.Reader
}

// NewMediaHandler 只有 bucket driver 能回讀，其他 driver 的圖片直接由圖床提供
func NewMediaHandler(trace *telemetry.Trace, logger *zap.Logger, store media.Store) *MediaHandler {
	reader, _ := store.(media.Reader)
	return &MediaHandler{trace: trace, logger: logger, reader: reader}
}

// Get 讀取 bucket 內的圖片
// @Summary 取得已上傳的圖片（bucket driver）
// @Tags Media
// @Produce jpeg
// @Param key path string true "物件 key"
// @Success 200 {file} binary
// @Failure 404 {object} response.ErrorResponse
// @Router /media/{key} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	key := strings.TrimPrefix(c.Param("key"), "/")
	if h.reader == nil || key == "" {
		response.AbortWithError(c, cErr.NotFound("Image not found"))
		return
	}
	obj, err := h.reader.Open(ctx, key)
	if err != nil {
		if !errors.Is(err, media.ErrNotFound) {
			h.logger.Warn("open media failed", zap.String("key", key), zap.Error(err))
		}
		response.AbortWithError(c, cErr.NotFound("Image not found"))
		return
	}
	defer obj.Body.Close()

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.DataFromReader(200, obj.Size, obj.ContentType, obj.Body, map[string]string{
		"Content-Length": strconv.FormatInt(obj.Size, 10),
	})
}
