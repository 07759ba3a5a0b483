package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
)

// fakeNotifier 记录广播次数
type fakeNotifier struct {
	broadcasts int
}

func (f *fakeNotifier) BroadcastUsersChanged() { f.broadcasts++ }

func newRelayMux(t *testing.T, upstream http.HandlerFunc, notifier Notifier) (*http.ServeMux, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	mux := http.NewServeMux()
	NewHandler(srv.URL, 5*time.Second, notifier).RegisterRoutes(mux)
	return mux, srv
}

func TestRelayPassesThroughSuccess(t *testing.T) {
	var gotPath, gotAuth string
	mux, _ := newRelayMux(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Jane Smith"}]`))
	}, nil)

	req := httptest.NewRequest("GET", "/api/proxy/users", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/users", gotPath, "代理路径映射到上游路径")
	assert.Equal(t, "Bearer tok", gotAuth, "Authorization 头透传")
	assert.Contains(t, rec.Body.String(), "Jane Smith")
}

func TestRelayForwardsByID(t *testing.T) {
	var gotPath, gotMethod string
	mux, _ := newRelayMux(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Write([]byte(`{"id":7}`))
	}, nil)

	req := httptest.NewRequest("PUT", "/api/proxy/users/7", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/users/7", gotPath)
	assert.Equal(t, "PUT", gotMethod)
}

// TestRelayRewritesRawDatabaseError 上游泄露裸数据库错误时重写为字段级 409
func TestRelayRewritesRawDatabaseError(t *testing.T) {
	mux, _ := newRelayMux(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"pq: duplicate key value violates unique constraint \"users_email_key\""}`, http.StatusInternalServerError)
	}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/proxy/users", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusConflict, rec.Code, "裸唯一约束错误重写为 409")

	var body struct {
		Error   string              `json:"error"`
		Details []model.FieldDetail `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Email already exists", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, model.FieldEmail, body.Details[0].Field)
}

func TestRelayCleanConflictPassthrough(t *testing.T) {
	mux, _ := newRelayMux(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"Email already exists","details":[{"field":"email","message":"This email is already registered"}]}`))
	}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/proxy/users", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "details")
}

func TestRelayNotFound(t *testing.T) {
	mux, _ := newRelayMux(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no rows"}`, http.StatusNotFound)
	}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/proxy/users/99", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestRelayMalformedUpstreamError(t *testing.T) {
	mux, _ := newRelayMux(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>Bad Gateway</html>`))
	}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/proxy/users", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error from external API")
}

// TestRelayUpstreamUnreachable 上游不可达：统一网络错误文本
func TestRelayUpstreamUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	mux := http.NewServeMux()
	NewHandler(srv.URL, time.Second, nil).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/proxy/users", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Network error while connecting to the external API")
}

// TestRelayBroadcastsOnWrite 成功写操作广播变更；读与失败不广播
func TestRelayBroadcastsOnWrite(t *testing.T) {
	status := http.StatusCreated
	notifier := &fakeNotifier{}
	mux, _ := newRelayMux(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`{"id":1}`))
	}, notifier)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/proxy/users", strings.NewReader(`{}`)))
	assert.Equal(t, 1, notifier.broadcasts)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/proxy/users", nil))
	assert.Equal(t, 1, notifier.broadcasts, "读操作不广播")

	status = http.StatusConflict
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/proxy/users", strings.NewReader(`{}`)))
	assert.Equal(t, 1, notifier.broadcasts, "失败不广播")

	// check-email 即使 2xx 也不算写操作
	status = http.StatusOK
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/proxy/users/check-email", strings.NewReader(`{}`)))
	assert.Equal(t, 1, notifier.broadcasts)
}

func TestRelayObserver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var gotMethod string
	var gotStatus int
	h := NewHandler(srv.URL, time.Second, nil)
	h.SetObserver(func(method string, status int) {
		gotMethod = method
		gotStatus = status
	})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/proxy/users", nil))
	assert.Equal(t, "GET", gotMethod)
	assert.Equal(t, http.StatusOK, gotStatus)
}
