// Package main API Server 入口
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

	"civic-portal/internal/apiserver/auth"
	"civic-portal/internal/apiserver/server"
	"civic-portal/internal/config"
	"civic-portal/internal/shared/cache"
	rediscache "civic-portal/internal/shared/cache/redis"
	"civic-portal/internal/shared/objstore"
	"civic-portal/internal/shared/storage"
	"civic-portal/internal/shared/storage/driver/postgres"
	"civic-portal/internal/shared/storage/driver/sqlite"
	"civic-portal/internal/shared/storage/mongostore"
	"civic-portal/internal/shared/storage/repository"
)

func main() {
	// 加载配置（自动加载 .env，JWT_SECRET 未设置时直接拒绝启动）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 初始化存储层
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage (%s): %v", cfg.Storage.Driver, err)
	}
	defer store.Close()
	log.Printf("Connected to storage [driver=%s]", cfg.Storage.Driver)

	// 初始化 Redis 列表缓存（未配置时退化为 NoOp）
	var listCache cache.ProposalCache
	if cfg.RedisURL != "" {
		redisStore, err := rediscache.NewStoreFromURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		listCache = redisStore
		log.Println("Connected to Redis")
	} else {
		listCache = cache.NewNoOpCache()
		log.Println("Redis not configured, list cache disabled")
	}
	defer listCache.Close()

	authCfg := auth.Config{
		JWTSecret:    cfg.JWTSecret,
		SessionTTL:   cfg.Auth.SessionTTL,
		SecureCookie: cfg.IsProduction(),
	}

	h := server.NewHandler(store, listCache, authCfg)
	h.SetLoginRateLimit(cfg.Auth.LoginRatePerMin)

	// 对象存储（报表导出）：Endpoint 为空时跳过
	if cfg.MinIO.Endpoint != "" {
		mc, err := objstore.NewClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("Failed to create MinIO client: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := mc.EnsureBucket(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to ensure MinIO bucket: %v", err)
		}
		cancel()
		h.SetMinIOClient(mc)
		log.Printf("Connected to MinIO [endpoint=%s]", cfg.MinIO.Endpoint)
	}

	// 领域规模指标采样
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.GetMetrics().StartCollector(ctx, store, time.Minute)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
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

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}

// openStore 按配置选择存储驱动
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageMongo:
		return mongostore.NewStore(cfg.Storage.MongoURI, cfg.Storage.MongoDB)

	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		dialect := sqlite.NewDialect()
		if err := dialect.AutoMigrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return repository.NewStore(db, dialect), nil

	case config.StoragePostgres:
		db, err := postgres.Open(cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		dialect := postgres.NewDialect()
		if err := dialect.AutoMigrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return repository.NewStore(db, dialect), nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}
