// Package cache 进程内会话缓存实现
package cache

import (
	"context"
	"sync"
)

// MemoryCache 进程内 SessionCache 实现
//
// 用于开发、测试和未配置 Redis 的单机部署。
// 过期会话在读取时惰性清除。
type MemoryCache struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

var _ SessionCache = (*MemoryCache)(nil)

// NewMemoryCache 创建进程内缓存实例
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{sessions: make(map[string]Session)}
}

func (c *MemoryCache) PutSession(ctx context.Context, session *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[session.ID] = *session
	return nil
}

func (c *MemoryCache) GetSession(ctx context.Context, id string) (*Session, error) {
	c.mu.RLock()
	s, ok := c.sessions[id]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.Expired() {
		c.mu.Lock()
		delete(c.sessions, id)
		c.mu.Unlock()
		return nil, nil
	}
	out := s
	return &out, nil
}

func (c *MemoryCache) DeleteSession(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
	return nil
}

// Close 关闭缓存
func (c *MemoryCache) Close() error {
	return nil
}
