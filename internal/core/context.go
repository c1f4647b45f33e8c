package core

import "context"

// gin.Context keys
const (
	ContextIdentityKey = "auth_identity"
	ContextUserKey     = "auth_user"
	ContextRequestID   = "request_id"
)

type requestIDKey struct{}

// WithRequestID 讓 service 層（稽核紀錄）也拿得到 request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
