// Package auth 管理后台登录认证：硬编码管理员凭证校验、JWT 签发、HTTP 中间件
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/cache"
)

// contextKey context 键类型
type contextKey string

const ctxKeyAuthUser contextKey = "auth_user"

// AuthUser 从 JWT 解析出的用户信息
type AuthUser struct {
	Email     string
	SessionID string
}

// Config 认证配置
type Config struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	AdminEmail     string
	AdminPassword  string // 明文口令，仅在构造 Service 时用于生成哈希
}

// DefaultConfig 返回默认认证配置
func DefaultConfig() Config {
	return Config{
		AccessTokenTTL: 15 * time.Minute,
		AdminEmail:     "admin@example.com",
		AdminPassword:  "admin123",
	}
}

// Enabled 是否启用认证
func (c Config) Enabled() bool {
	return c.JWTSecret != ""
}

// Service 认证服务
//
// 凭证是配置里的单个管理员账号；口令在构造时做 bcrypt 哈希，
// 之后只比对哈希。签发的会话记录到缓存，登出即失效。
type Service struct {
	cfg       Config
	adminHash []byte
	sessions  cache.SessionCache
}

// NewService 创建认证服务
func NewService(cfg Config, sessions cache.SessionCache) (*Service, error) {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &Service{cfg: cfg, adminHash: hash, sessions: sessions}, nil
}

// Config 返回认证配置
func (s *Service) Config() Config {
	return s.cfg
}

// CheckCredentials 校验管理员凭证
func (s *Service) CheckCredentials(email, password string) bool {
	if email != s.cfg.AdminEmail {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)) == nil
}

// Claims JWT 声明
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Login 校验凭证并签发访问令牌
//
// 凭证不匹配时返回 ("", zero, false, nil)。
func (s *Service) Login(ctx context.Context, email, password string) (token string, expiresAt time.Time, ok bool, err error) {
	if !s.CheckCredentials(email, password) {
		return "", time.Time{}, false, nil
	}

	now := time.Now()
	expiresAt = now.Add(s.cfg.AccessTokenTTL)
	sessionID := generateID("sess")

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: email,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, false, err
	}

	if s.sessions != nil {
		session := &cache.Session{
			ID:        sessionID,
			Email:     email,
			IssuedAt:  now,
			ExpiresAt: expiresAt,
		}
		if err := s.sessions.PutSession(ctx, session); err != nil {
			return "", time.Time{}, false, fmt.Errorf("failed to record session: %w", err)
		}
	}

	return token, expiresAt, true, nil
}

// Authenticate 解析令牌并确认会话仍然有效
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*AuthUser, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}

	if s.sessions != nil {
		session, err := s.sessions.GetSession(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("session lookup failed: %w", err)
		}
		if session == nil {
			return nil, fmt.Errorf("session revoked or expired")
		}
	}

	return &AuthUser{Email: claims.Email, SessionID: claims.ID}, nil
}

// Logout 使令牌对应的会话失效
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return err
	}
	if s.sessions == nil {
		return nil
	}
	return s.sessions.DeleteSession(ctx, claims.ID)
}

// parseToken 解析并验证 JWT
func (s *Service) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// generateID 生成带前缀的唯一标识符
func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}

// ============================================================================
// Context 辅助函数
// ============================================================================

// WithAuthUser 将认证用户信息注入 context
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, ctxKeyAuthUser, user)
}

// GetAuthUser 从 context 获取认证用户
func GetAuthUser(ctx context.Context) *AuthUser {
	user, _ := ctx.Value(ctxKeyAuthUser).(*AuthUser)
	return user
}
