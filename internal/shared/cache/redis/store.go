// Package redis Redis 会话缓存实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/cache"
)

// keySession 会话键前缀
const keySession = "dodeal:session:"

// Store Redis 缓存存储
type Store struct {
	client *redis.Client
}

var _ cache.SessionCache = (*Store)(nil)

// NewStoreFromURL 从 URL 创建 Redis 缓存实例
func NewStoreFromURL(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/Cache] Connected to %s", opts.Addr)
	return &Store{client: client}, nil
}

// NewStoreFromClient 从现有 Redis 客户端创建缓存实例
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// PutSession 写入会话，TTL 取自 ExpiresAt
func (s *Store) PutSession(ctx context.Context, session *cache.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, keySession+session.ID, data, ttl).Err()
}

// GetSession 按会话 ID 查找
func (s *Store) GetSession(ctx context.Context, id string) (*cache.Session, error) {
	data, err := s.client.Get(ctx, keySession+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session cache.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession 删除会话
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.client.Del(ctx, keySession+id).Err()
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	return s.client.Close()
}
