package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "bearer   abc ", want: "abc"},
		{header: "", wantErr: true},
		{header: "Bearer ", wantErr: true},
		{header: "Basic abc", wantErr: true},
		{header: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrMissingToken, tt.header)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestIdentityFromClaims(t *testing.T) {
	id := identityFromClaims("uid-1", map[string]interface{}{
		"email":          "a@b.com",
		"email_verified": true,
		"name":           "Alice",
	})
	assert.Equal(t, &Identity{Subject: "uid-1", Email: "a@b.com", EmailVerified: true, Name: "Alice"}, id)

	assert.Equal(t, &Identity{Subject: "uid-2"}, identityFromClaims("uid-2", nil))
}
