// Package apiclient 带认证的用户 API 客户端
//
// 每个请求自动附加 Bearer 凭证；收到 401 时触发 OnUnauthorized 回调
// （清除凭证并把用户送回登录页）。所有失败统一经 classify 归类为
// *Error，调用方（提交协调器、列表仓库）不需要自己分辨网络层细节。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/pkg/logging"
)

// TokenSource 提供当前 Bearer 凭证，空串表示未登录
type TokenSource func() string

// Client 用户 API 客户端
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	logger  *logging.Logger

	// onUnauthorized 收到 401 时调用（清除凭证、跳转登录页）
	onUnauthorized func()
}

// Option 客户端可选配置
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端（测试用）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource 设置凭证来源
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

// WithOnUnauthorized 设置 401 回调
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New 创建客户端
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logging.Default("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListUsers 拉取全部用户
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser 创建用户，返回服务端分配了 ID 的记录
func (c *Client) CreateUser(ctx context.Context, draft model.Draft) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPost, "/api/users", draft, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser 更新用户，返回服务端规范化后的记录
func (c *Client) UpdateUser(ctx context.Context, id int64, draft model.Draft) (*model.User, error) {
	var user model.User
	path := fmt.Sprintf("/api/users/%d", id)
	if err := c.do(ctx, http.MethodPut, path, draft, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckEmail 提交前预检邮箱可用性
//
// 可用时返回 nil；已占用时返回 KindDuplicate 错误。
// 创建/更新接口本身仍然强制唯一性，本方法并非正确性所必需。
func (c *Client) CheckEmail(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	var resp struct {
		Available bool `json:"available"`
	}
	return c.do(ctx, http.MethodPost, "/api/users/check-email", body, &resp)
}

// do 发起请求并把所有失败归类为 *Error
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindUnexpected, Message: genericFailureMessage, cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindUnexpected, Message: genericFailureMessage, cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.UpstreamCallLog(method, c.baseURL+path, 0, time.Since(start), err)
		return &Error{Kind: KindNetwork, Message: networkFailureMessage, cause: err}
	}
	defer resp.Body.Close()
	c.logger.UpstreamCallLog(method, c.baseURL+path, resp.StatusCode, time.Since(start), nil)

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindUnexpected, Message: genericFailureMessage, cause: err}
		}
		return nil
	}

	return classify(resp)
}
