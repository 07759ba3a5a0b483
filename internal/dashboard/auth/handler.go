package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Handler 认证 HTTP 处理器
type Handler struct {
	svc       *Service
	onAttempt func(result string)
}

// NewHandler 创建认证处理器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// SetObserver 设置登录结果回调（用于指标采集）
//
// result 取值: "success" / "rejected" / "error"
func (h *Handler) SetObserver(fn func(result string)) {
	h.onAttempt = fn
}

func (h *Handler) record(result string) {
	if h.onAttempt != nil {
		h.onAttempt(result)
	}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/v1/auth/me", h.Me)
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Email       string    `json:"email"`
}

// ============================================================================
// Handlers
// ============================================================================

// Login 管理员登录
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, expiresAt, ok, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Printf("[auth.login] error: %v", err)
		h.record("error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		h.record("rejected")
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.record("success")
	log.Printf("[auth.login] admin logged in: %s", req.Email)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Email:       req.Email,
	})
}

// Logout 登出，使当前会话失效
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing authorization header")
		return
	}
	if err := h.svc.Logout(r.Context(), token); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me 返回当前认证用户
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": user.Email})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
