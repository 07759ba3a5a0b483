// Package main 用户 API 服务入口
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/config"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/storage/dbutil"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/storage/driver/postgres"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/storage/driver/sqlite"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/shared/storage/repository"
	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/usersapi"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换配置文件）
	cfg := config.Load()

	log.Printf("Starting Users API... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 按配置选择数据库驱动
	var (
		db      *sql.DB
		dialect dbutil.Dialect
		err     error
	)
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.Open(cfg.DatabaseDSN)
		dialect = postgres.NewDialect()
	default:
		db, err = sqlite.Open(cfg.DatabaseDSN)
		dialect = sqlite.NewDialect()
	}
	if err != nil {
		log.Fatalf("Failed to open database (%s): %v", cfg.DatabaseDriver, err)
	}
	if err := dialect.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Printf("Connected to %s", cfg.DatabaseDriver)

	store := repository.NewStore(db, dialect)
	defer store.Close()

	h := usersapi.NewHandler(store)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         ":" + cfg.UsersAPIPort,
		Handler:      mux,
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

	log.Printf("Users API listening on :%s", cfg.UsersAPIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
