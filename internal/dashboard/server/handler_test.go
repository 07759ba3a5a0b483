package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/dashboard/auth"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/cache"
)

var metricsOnce *Handler

// newTestHandler 构造一个指向假上游的完整 Handler
//
// Prometheus 指标在进程内只能注册一次，所有用例共用同一个实例。
func newTestHandler(t *testing.T, upstreamURL string) *Handler {
	t.Helper()
	if metricsOnce == nil {
		h, err := NewHandler(Options{
			Auth: auth.Config{
				JWTSecret:      "test-secret",
				AccessTokenTTL: time.Minute,
				AdminEmail:     "admin@example.com",
				AdminPassword:  "admin123",
			},
			Sessions:        cache.NewMemoryCache(),
			Upstream:        upstreamURL,
			UpstreamTimeout: 2 * time.Second,
		})
		require.NoError(t, err)
		metricsOnce = h
	}
	return metricsOnce
}

func TestRouterHealth(t *testing.T) {
	h := newTestHandler(t, "http://127.0.0.1:1")
	router := h.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestRouterMetricsPublic(t *testing.T) {
	h := newTestHandler(t, "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterProxyRequiresAuth(t *testing.T) {
	h := newTestHandler(t, "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/proxy/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	h := newTestHandler(t, "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/api/proxy/users", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// TestRouterLoginFlow 登录后凭证可访问受保护路由
func TestRouterLoginFlow(t *testing.T) {
	h := newTestHandler(t, "http://127.0.0.1:1")
	router := h.Router()

	body := strings.NewReader(`{"email":"admin@example.com","password":"admin123"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")
}

func TestRouterLoginRejected(t *testing.T) {
	h := newTestHandler(t, "http://127.0.0.1:1")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`))
	h.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/proxy/users/42", "/api/proxy/users/{id}"},
		{"/api/proxy/users", "/api/proxy/users"},
		{"/api/v1/auth/login", "/api/v1/auth/login"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.in))
	}
}
