package middleware

import (
	"context"
	"errors"
	"slices"

	"rewear/internal/core"
	"rewear/internal/identity"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/pkg/response"
	"rewear/internal/service"
	"rewear/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth Firebase bearer token 驗證與本地使用者解析
type Auth struct {
	logger      *zap.Logger
	trace       *telemetry.Trace
	verifier    identity.Verifier
	userService *service.UserService
}

func NewAuth(
	logger *zap.Logger,
	trace *telemetry.Trace,
	verifier identity.Verifier,
	userService *service.UserService,
) *Auth {
	return &Auth{
		logger:      logger,
		trace:       trace,
		verifier:    verifier,
		userService: userService,
	}
}

// Identity 只驗證 token（註冊前使用者尚不存在）
func (m *Auth) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span, end := m.trace.WithSpan(m.trace.GetTraceContext(c), string(core.SpanIdentityMiddleware))
		meta := core.TraceAuthMiddlewareMeta{}

		ident, err := m.verify(ctx, c)
		if err != nil {
			meta.Status = "unauthenticated"
			m.trace.ApplyTraceAttributes(span, meta)
			end(nil)
			response.AbortWithError(c, err)
			return
		}
		meta.Subject = ident.Subject
		meta.Verified = ident.EmailVerified
		meta.Status = "success"
		m.trace.ApplyTraceAttributes(span, meta)
		c.Set(core.ContextIdentityKey, ident)
		end(nil)
		c.Next()
	}
}

// User 驗證 token 並載入本地使用者；未註冊回 404
func (m *Auth) User() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span, end := m.trace.WithSpan(m.trace.GetTraceContext(c), string(core.SpanUserMiddleware))
		meta := core.TraceAuthMiddlewareMeta{}

		ident, err := m.verify(ctx, c)
		if err != nil {
			meta.Status = "unauthenticated"
			m.trace.ApplyTraceAttributes(span, meta)
			end(nil)
			response.AbortWithError(c, err)
			return
		}
		meta.Subject = ident.Subject
		meta.Verified = ident.EmailVerified

		user, err := m.userService.ResolveUser(ctx, ident.Subject)
		if err != nil {
			meta.Status = "user_lookup_failed"
			m.trace.ApplyTraceAttributes(span, meta)
			end(err)
			response.AbortWithError(c, err)
			return
		}
		meta.UserID = user.ID.Hex()
		meta.Role = string(user.Role)
		meta.Status = "success"
		m.trace.ApplyTraceAttributes(span, meta)

		c.Set(core.ContextIdentityKey, ident)
		c.Set(core.ContextUserKey, user)
		end(nil)
		c.Next()
	}
}

// OptionalUser 公開路由用：token 有效且已註冊就帶上使用者，其餘情況以匿名繼續
func (m *Auth) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		ctx, span, end := m.trace.WithSpan(m.trace.GetTraceContext(c), string(core.SpanUserMiddleware))
		meta := core.TraceAuthMiddlewareMeta{Status: "anonymous"}

		if ident, err := m.verify(ctx, c); err == nil {
			meta.Subject = ident.Subject
			if user, err := m.userService.ResolveUser(ctx, ident.Subject); err == nil {
				c.Set(core.ContextIdentityKey, ident)
				c.Set(core.ContextUserKey, user)
				meta.UserID = user.ID.Hex()
				meta.Role = string(user.Role)
				meta.Status = "success"
			}
		}
		m.trace.ApplyTraceAttributes(span, meta)
		end(nil)
		c.Next()
	}
}

// RequireRole 必須掛在 User() 之後
func (m *Auth) RequireRole(roles ...core.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span, end := m.trace.WithSpan(m.trace.GetTraceContext(c), string(core.SpanRoleMiddleware))
		defer end(nil)

		user := CurrentUser(c)
		if user == nil {
			m.trace.ApplyTraceAttributes(span, core.TraceAuthMiddlewareMeta{Status: "missing_user"})
			response.AbortWithError(c, cErr.Unauthorized("Authentication required"))
			return
		}
		if !slices.Contains(roles, user.Role) {
			m.trace.ApplyTraceAttributes(span, core.TraceAuthMiddlewareMeta{
				UserID: user.ID.Hex(),
				Role:   string(user.Role),
				Status: "forbidden",
			})
			response.AbortWithError(c, cErr.Forbidden("Insufficient permissions"))
			return
		}
		c.Next()
	}
}

func (m *Auth) verify(ctx context.Context, c *gin.Context) (*identity.Identity, error) {
	token, err := identity.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, cErr.Unauthorized("Access token required")
	}
	ident, err := m.verifier.Verify(ctx, token)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidToken) {
			m.logger.Warn("token verification failed", zap.Error(err))
		}
		return nil, cErr.Unauthorized("Invalid token")
	}
	return ident, nil
}
