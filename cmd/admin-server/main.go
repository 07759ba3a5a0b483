// Package main 管理后台服务入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/config"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/dashboard/auth"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/dashboard/server"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/cache"
	rediscache "github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/cache/redis"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换配置文件）
	cfg := config.Load()

	log.Printf("Starting Admin Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 会话缓存：配置了 Redis 就用 Redis，否则用进程内缓存
	var sessions cache.SessionCache
	if cfg.RedisURL != "" {
		store, err := rediscache.NewStoreFromURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		sessions = store
		log.Println("Connected to Redis")
	} else {
		sessions = cache.NewMemoryCache()
		log.Println("Using in-memory session cache")
	}
	defer sessions.Close()

	h, err := server.NewHandler(server.Options{
		Auth: auth.Config{
			JWTSecret:      cfg.Auth.JWTSecret,
			AccessTokenTTL: cfg.Auth.AccessTokenTTL,
			AdminEmail:     cfg.Auth.AdminEmail,
			AdminPassword:  cfg.Auth.AdminPassword,
		},
		Sessions:        sessions,
		Upstream:        cfg.UpstreamURL,
		UpstreamTimeout: cfg.UpstreamTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize handler: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.AdminPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Admin Server listening on :%s [upstream=%s]", cfg.AdminPort, cfg.UpstreamURL)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
