package identity

import (
	"context"
	"errors"
	"strings"
)

// Identity 驗證後的第三方身分（Firebase uid 與信箱）
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrUserNotFound = errors.New("identity not found")
)

// Verifier 驗證 bearer token，回傳身分
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Directory 依信箱查詢身分（create-admin 指令用）
type Directory interface {
	LookupByEmail(ctx context.Context, email string) (*Identity, error)
}

// BearerToken 從 Authorization header 取出 token
func BearerToken(header string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
