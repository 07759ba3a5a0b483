// Package relay 用户 API 代理转发
//
// 把管理后台自己的 /api/proxy/users 路由转发到上游用户 API，
// 并在边界处做一次显式错误归一：
//   - 上游把邮箱唯一约束冲突以裸数据库错误文本返回时，
//     重写为 409 {error, details:[{field:"email",...}]}
//   - 收不到响应时返回统一的网络错误文本
//
// 成功的写操作会通过 Notifier 广播，提示打开的后台页面重拉列表。
package relay

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
)

// pgDuplicateEmail 上游 PostgreSQL 唯一约束冲突的错误文本特征
const pgDuplicateEmail = `duplicate key value violates unique constraint "users_email_key"`

// Notifier 成功写操作后的变更广播
type Notifier interface {
	BroadcastUsersChanged()
}

// Handler 代理转发处理器
type Handler struct {
	upstream string
	client   *http.Client
	notifier Notifier
	observe  func(method string, status int)
}

// NewHandler 创建代理转发处理器
//
// upstream 为上游用户 API 的基地址；notifier 可为 nil（不广播）。
func NewHandler(upstream string, timeout time.Duration, notifier Notifier) *Handler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Handler{
		upstream: strings.TrimRight(upstream, "/"),
		client:   &http.Client{Timeout: timeout},
		notifier: notifier,
	}
}

// SetObserver 设置转发结果回调（用于指标采集）
//
// status 为上游响应状态码；上游不可达时为 0。
func (h *Handler) SetObserver(fn func(method string, status int)) {
	h.observe = fn
}

func (h *Handler) record(method string, status int) {
	if h.observe != nil {
		h.observe(method, status)
	}
}

// RegisterRoutes 注册代理路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/proxy/users", h.forward("/api/users"))
	mux.HandleFunc("POST /api/proxy/users", h.forward("/api/users"))
	mux.HandleFunc("GET /api/proxy/users/{id}", h.forwardByID)
	mux.HandleFunc("PUT /api/proxy/users/{id}", h.forwardByID)
	mux.HandleFunc("POST /api/proxy/users/check-email", h.forward("/api/users/check-email"))
}

// forward 转发到固定上游路径
func (h *Handler) forward(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.relay(w, r, path)
	}
}

// forwardByID 转发带路径参数的请求
func (h *Handler) forwardByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	h.relay(w, r, "/api/users/"+id)
}

// relay 单次转发
func (h *Handler) relay(w http.ResponseWriter, r *http.Request, path string) {
	var body io.Reader
	if r.Method != http.MethodGet {
		body = r.Body
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, h.upstream+path, body)
	if err != nil {
		log.Printf("[relay] build request error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		// 请求已发出但没有收到响应
		log.Printf("[relay] upstream unreachable: %v", err)
		h.record(r.Method, 0)
		writeError(w, http.StatusInternalServerError, "Network error while connecting to the external API")
		return
	}
	defer resp.Body.Close()
	h.record(r.Method, resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		log.Printf("[relay] read upstream response error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if h.notifier != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) &&
			!strings.HasSuffix(path, "/check-email") {
			h.notifier.BroadcastUsersChanged()
		}
		copyResponse(w, resp.StatusCode, raw)
		return
	}

	h.relayFailure(w, resp.StatusCode, raw)
}

// relayFailure 归一化上游失败响应
func (h *Handler) relayFailure(w http.ResponseWriter, status int, raw []byte) {
	var body struct {
		Error   string              `json:"error"`
		Details []model.FieldDetail `json:"details,omitempty"`
	}
	decodeErr := json.Unmarshal(raw, &body)

	// 上游如果泄露了裸数据库错误文本，在这里重写成字段级冲突
	if strings.Contains(body.Error, pgDuplicateEmail) || strings.Contains(string(raw), pgDuplicateEmail) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error": "Email already exists",
			"details": []model.FieldDetail{
				{Field: model.FieldEmail, Message: "This email is already registered"},
			},
		})
		return
	}

	if status == http.StatusNotFound {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if decodeErr != nil || body.Error == "" {
		log.Printf("[relay] malformed upstream error (status %d): %s", status, truncate(raw, 256))
		writeError(w, status, "Error from external API")
		return
	}

	if len(body.Details) > 0 {
		writeJSON(w, status, map[string]interface{}{
			"error":   body.Error,
			"details": body.Details,
		})
		return
	}
	writeError(w, status, body.Error)
}

func copyResponse(w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(raw)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
