// Package server 后台管理服务的路由配置与核心基础设施
//
// 本文件定义 HTTP 路由，将请求分发到各领域独立包。
// 仍保留在本包的模块：
//   - events.go: WebSocket 变更推送网关
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/dashboard/auth"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/dashboard/relay"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/cache"
)

// Options Handler 构造参数
type Options struct {
	// Auth 认证配置，JWTSecret 为空时关闭认证
	Auth auth.Config

	// Sessions 会话缓存（redis 或内存实现）
	Sessions cache.SessionCache

	// Upstream 上游用户服务地址
	Upstream string

	// UpstreamTimeout 上游请求超时
	UpstreamTimeout time.Duration
}

// Handler 后台服务处理器
//
// Handler 是所有 HTTP 入口的聚合点，负责：
//   - 路由请求到对应的处理函数
//   - 管理认证服务和会话缓存
//   - 协调代理转发层和 WebSocket 推送网关
type Handler struct {
	authSvc *auth.Service
	relay   *relay.Handler
	gateway *ChangeGateway
	metrics *Metrics
}

// NewHandler 创建 Handler 实例
func NewHandler(opts Options) (*Handler, error) {
	svc, err := auth.NewService(opts.Auth, opts.Sessions)
	if err != nil {
		return nil, err
	}

	h := &Handler{authSvc: svc}
	h.metrics = NewMetrics("dashboard")
	h.gateway = NewChangeGateway(h.metrics)
	h.relay = relay.NewHandler(opts.Upstream, opts.UpstreamTimeout, h.gateway)
	h.relay.SetObserver(func(method string, status int) {
		label := "unreachable"
		if status > 0 {
			label = strconv.Itoa(status)
		}
		h.metrics.RelayRequestsTotal.WithLabelValues(method, label).Inc()
	})
	return h, nil
}

// AuthService 返回认证服务（供登录指标等外部接线使用）
func (h *Handler) AuthService() *auth.Service {
	return h.authSvc
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /health - 服务健康检查
//
// 认证 (Auth):
//   - POST /api/v1/auth/login  - 管理员登录
//   - POST /api/v1/auth/logout - 注销会话
//   - GET  /api/v1/auth/me     - 当前会话信息
//
// 用户代理 (Relay):
//   - GET  /api/proxy/users             - 列出用户
//   - POST /api/proxy/users             - 创建用户
//   - GET  /api/proxy/users/{id}        - 获取用户
//   - PUT  /api/proxy/users/{id}        - 更新用户
//   - POST /api/proxy/users/check-email - 邮箱可用性检查
//
// WebSocket:
//   - GET /ws/users - 用户列表变更推送
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// Auth 路由
	authHandler := auth.NewHandler(h.authSvc)
	authHandler.SetObserver(func(result string) {
		h.metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
	})
	authHandler.RegisterRoutes(mux)

	// 代理转发路由
	h.relay.RegisterRoutes(mux)

	// 应用指标中间件到 REST API
	apiHandler := h.metrics.MetricsMiddleware(mux)

	// 应用认证中间件
	authedHandler := auth.Middleware(h.authSvc)(apiHandler)

	// 应用 CORS 中间件
	corsHandler := corsMiddleware(authedHandler)

	// 顶层路由，WebSocket 绕过 metrics 中间件（避免 http.Hijacker 问题）
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /ws/users", h.gateway.HandleWebSocket)
	topMux.Handle("/", corsHandler)

	return topMux
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Health 健康检查接口
//
// 路由: GET /health
//
// 用于负载均衡器和监控系统检查服务状态。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
