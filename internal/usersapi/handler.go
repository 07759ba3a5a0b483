// Package usersapi 用户 REST API 服务
//
// 管理后台的上游协作方：维护用户记录的唯一事实来源。
// 接口：
//   - GET  /api/users             - 列出全部用户
//   - POST /api/users             - 创建用户
//   - PUT  /api/users/{id}        - 更新用户
//   - POST /api/users/check-email - 预检邮箱是否可用
//
// 所有写操作做服务端字段校验，违规时返回
// {error, details:[{field,message}]}；邮箱唯一性由存储层约束兜底。
package usersapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/storage/repository"
)

// Handler 用户 API HTTP 处理器
type Handler struct {
	store *repository.Store
}

// NewHandler 创建用户 API 处理器
func NewHandler(store *repository.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册用户相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", h.List)
	mux.HandleFunc("POST /api/users", h.Create)
	mux.HandleFunc("GET /api/users/{id}", h.Get)
	mux.HandleFunc("PUT /api/users/{id}", h.Update)
	mux.HandleFunc("POST /api/users/check-email", h.CheckEmail)
	mux.HandleFunc("GET /health", h.Health)
}

// Health 健康检查接口
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// List 列出全部用户
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[users] ListUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get 获取用户详情
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		log.Printf("[users] GetUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Create 创建用户
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var draft model.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if details := checkDraft(draft); len(details) > 0 {
		writeFieldErrors(w, http.StatusBadRequest, "validation failed", details)
		return
	}

	user := &model.User{
		Name:   draft.Name,
		Email:  draft.Email,
		Gender: draft.Gender,
		Phone:  draft.Phone,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			writeDuplicateEmail(w)
			return
		}
		log.Printf("[users] CreateUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	log.Printf("[users] User created: %d", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

// Update 更新用户
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var draft model.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if details := checkDraft(draft); len(details) > 0 {
		writeFieldErrors(w, http.StatusBadRequest, "validation failed", details)
		return
	}

	user, err := h.store.UpdateUser(r.Context(), id, draft)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			writeDuplicateEmail(w)
			return
		}
		log.Printf("[users] UpdateUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// CheckEmail 预检邮箱可用性
//
// 可用返回 200 {available:true}，已占用返回 409。
// 创建/更新接口本身仍然强制唯一性，本接口仅用于提交前预检。
func (h *Handler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		ExcludeID int64  `json:"exclude_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	taken, err := h.store.EmailTaken(r.Context(), req.Email, req.ExcludeID)
	if err != nil {
		log.Printf("[users] EmailTaken error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to check email")
		return
	}
	if taken {
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": true})
}

// ============================================================================
// 响应辅助
// ============================================================================

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeFieldErrors(w http.ResponseWriter, status int, message string, details []model.FieldDetail) {
	writeJSON(w, status, map[string]interface{}{
		"error":   message,
		"details": details,
	})
}

func writeDuplicateEmail(w http.ResponseWriter) {
	writeFieldErrors(w, http.StatusConflict, "Email already exists", []model.FieldDetail{
		{Field: model.FieldEmail, Message: "This email is already registered"},
	})
}
