package middleware

import (
	"net/http"

	"rewear/config"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type BodyLimit struct {
	maxBytes int64
}

func NewBodyLimit(conf *config.Configuration) *BodyLimit {
	mb := conf.App.MaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	return &BodyLimit{maxBytes: mb << 20}
}

func (m *BodyLimit) MaxBytes() int64 { return m.maxBytes }

// Handler Content-Length 超過直接 413；chunked 請求由 MaxBytesReader 在讀取時截斷
func (m *BodyLimit) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > m.maxBytes {
			response.AbortWithError(c, cErr.PayloadTooLarge("Request body too large"))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, m.maxBytes)
		}
		c.Next()
	}
}
