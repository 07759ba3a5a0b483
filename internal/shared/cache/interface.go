// Package cache 会话缓存抽象接口
//
// 记录已签发的登录会话，支持服务端主动失效（登出）。
// 配置了 Redis 时由 Redis 实现，否则退回进程内实现。
package cache

import (
	"context"
	"time"
)

// Session 一次登录签发的会话
type Session struct {
	ID        string    `json:"id"` // JWT jti
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired 会话是否已过期
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// SessionCache 会话缓存接口
type SessionCache interface {
	// PutSession 写入会话，TTL 取自 Session.ExpiresAt
	PutSession(ctx context.Context, session *Session) error
	// GetSession 按会话 ID 查找，不存在或已过期时返回 (nil, nil)
	GetSession(ctx context.Context, id string) (*Session, error)
	// DeleteSession 删除会话（登出）
	DeleteSession(ctx context.Context, id string) error
	Close() error
}
