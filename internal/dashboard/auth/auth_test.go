package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/cache"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := Config{
		JWTSecret:      "test-secret",
		AccessTokenTTL: time.Minute,
		AdminEmail:     "admin@example.com",
		AdminPassword:  "admin123",
	}
	svc, err := NewService(cfg, cache.NewMemoryCache())
	require.NoError(t, err)
	return svc
}

func TestCheckCredentials(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{"正确凭证", "admin@example.com", "admin123", true},
		{"错误口令", "admin@example.com", "wrong", false},
		{"错误邮箱", "other@example.com", "admin123", false},
		{"全空", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.CheckCredentials(tt.email, tt.password))
		})
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, expiresAt, ok, err := svc.Login(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	user, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.NotEmpty(t, user.SessionID)
}

func TestLoginRejected(t *testing.T) {
	svc := newTestService(t)
	token, _, ok, err := svc.Login(context.Background(), "admin@example.com", "wrong")
	require.NoError(t, err, "凭证不匹配不是错误")
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Authenticate(context.Background(), token)
		assert.Error(t, err, "token=%q", token)
	}
}

// TestAuthenticateRejectsForeignSignature 其他密钥签发的令牌无效
func TestAuthenticateRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t)

	other, err := NewService(Config{
		JWTSecret:     "another-secret",
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin123",
	}, nil)
	require.NoError(t, err)

	token, _, ok, err := other.Login(context.Background(), "admin@example.com", "admin123")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Authenticate(context.Background(), token)
	assert.Error(t, err)
}

// TestLogoutInvalidatesSession 登出后令牌即使未过期也被拒绝
func TestLogoutInvalidatesSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, _, ok, err := svc.Login(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.Authenticate(ctx, token)
	assert.Error(t, err, "会话已吊销")
}

func TestAuthUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetAuthUser(ctx))

	user := &AuthUser{Email: "admin@example.com", SessionID: "sess-1"}
	ctx = WithAuthUser(ctx, user)
	assert.Equal(t, user, GetAuthUser(ctx))
}
