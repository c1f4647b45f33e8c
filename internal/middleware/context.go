package middleware

import (
	"strings"

	"rewear/internal/core"
	"rewear/internal/database/mongodb/model"
	"rewear/internal/identity"

	"github.com/gin-gonic/gin"
)

// CurrentUser 由 Auth.User / OptionalUser 放入；匿名請求回傳 nil
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(core.ContextUserKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}

func CurrentIdentity(c *gin.Context) *identity.Identity {
	if v, ok := c.Get(core.ContextIdentityKey); ok {
		if ident, ok := v.(*identity.Identity); ok {
			return ident
		}
	}
	return nil
}

func RequestID(c *gin.Context) string {
	return c.GetString(core.ContextRequestID)
}

func currentUserID(c *gin.Context) string {
	if user := CurrentUser(c); user != nil {
		return user.ID.Hex()
	}
	return ""
}

// 未匹配的路由統一成一個 label，避免指標基數爆炸
func endpointLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}

// skipTelemetry 監控類路徑不記錄 request/response log 與 trace
func skipTelemetry(path string) bool {
	for _, prefix := range []string{"/swagger", "/metrics", "/debug/pprof"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return strings.HasSuffix(path, "/health/liveness") || strings.HasSuffix(path, "/health/readiness")
}
