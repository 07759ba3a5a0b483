// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（JWT 密钥、管理员口令、数据库密码）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// ServerConfig 两个服务的监听端口
type ServerConfig struct {
	AdminPort    string `yaml:"admin_port"`
	UsersAPIPort string `yaml:"users_api_port"`
}

// UpstreamConfig 上游用户 API
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DatabaseConfig 用户 API 存储配置
//
// driver 为 sqlite 时仅 dsn 生效（如 ":memory:" 或 "file:users.db"）；
// 为 postgres 时由 host/port/user/name/sslmode + DB_PASSWORD 组装连接串。
type DatabaseConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user"`
	Name    string `yaml:"name"`
	SSLMode string `yaml:"sslmode"`
}

// RedisConfig 会话缓存，host 为空时退回进程内缓存
type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	DB   int    `yaml:"db"`
}

// AuthConfig 登录认证配置
type AuthConfig struct {
	JWTSecret      string        `yaml:"-"` // 从 JWT_SECRET 环境变量读取
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	AdminEmail     string        `yaml:"admin_email"`
	AdminPassword  string        `yaml:"-"` // 从 ADMIN_PASSWORD 环境变量读取
}

// DashboardConfig 用户列表展示配置
type DashboardConfig struct {
	PageSize int `yaml:"page_size"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env             Environment
	AdminPort       string
	UsersAPIPort    string
	UpstreamURL     string
	UpstreamTimeout time.Duration
	DatabaseDriver  string
	DatabaseDSN     string
	RedisURL        string
	Auth            AuthConfig
	PageSize        int
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 构建最终配置
func Load() *Config {
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))
	yamlCfg := loadYAMLConfig(env)

	dbPassword := getEnv("DB_PASSWORD", "dodeal_dev_password")

	cfg := &Config{
		Env:             env,
		AdminPort:       getEnv("ADMIN_PORT", yamlCfg.Server.AdminPort),
		UsersAPIPort:    getEnv("USERS_API_PORT", yamlCfg.Server.UsersAPIPort),
		UpstreamURL:     getEnv("UPSTREAM_URL", yamlCfg.Upstream.BaseURL),
		UpstreamTimeout: yamlCfg.Upstream.Timeout,
		DatabaseDriver:  yamlCfg.Database.Driver,
		DatabaseDSN:     buildDatabaseDSN(yamlCfg.Database, dbPassword),
		RedisURL:        buildRedisURL(yamlCfg.Redis),
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			AccessTokenTTL: yamlCfg.Auth.AccessTokenTTL,
			AdminEmail:     yamlCfg.Auth.AdminEmail,
			AdminPassword:  getEnv("ADMIN_PASSWORD", "admin123"),
		},
		PageSize: yamlCfg.Dashboard.PageSize,
	}

	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	cfg := &YAMLConfig{
		Server:   ServerConfig{AdminPort: "8080", UsersAPIPort: "8081"},
		Upstream: UpstreamConfig{BaseURL: "http://localhost:8081", Timeout: 15 * time.Second},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "file:users.db?cache=shared&mode=rwc",
			Host: "localhost", Port: 5432, User: "dodeal", Name: "dodeal_admin", SSLMode: "disable"},
		Redis:     RedisConfig{Host: "", Port: 6379, DB: 0},
		Auth:      AuthConfig{AccessTokenTTL: 15 * time.Minute, AdminEmail: "admin@example.com"},
		Dashboard: DashboardConfig{PageSize: 3},
	}

	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// buildDatabaseDSN 构建数据库连接串
func buildDatabaseDSN(db DatabaseConfig, password string) string {
	if db.Driver == "postgres" {
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			db.User, password, db.Host, db.Port, db.Name, db.SSLMode)
	}
	return db.DSN
}

// buildRedisURL 构建 Redis 连接串，host 为空表示不启用 Redis
func buildRedisURL(redis RedisConfig) string {
	if redis.Host == "" {
		return ""
	}
	return fmt.Sprintf("redis://%s:%d/%d", redis.Host, redis.Port, redis.DB)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Admin: :%s, UsersAPI: :%s, DB: %s/%s, Redis: %s}",
		c.Env, c.AdminPort, c.UsersAPIPort, c.DatabaseDriver, maskPassword(c.DatabaseDSN), c.RedisURL)
}

// maskPassword 隐藏连接串中的密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:]+:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}
