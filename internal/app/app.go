// Package app はアプリケーションの依存関係を組み立て、HTTPサーバーのライフサイクルを管理します。
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"coin_backend/internal/app/di"
	"coin_backend/internal/app/router"
	"coin_backend/internal/config"
	"coin_backend/internal/feature/coins/adapters"
	coinhandler "coin_backend/internal/feature/coins/transport/handler"
	"coin_backend/internal/feature/coins/usecase"
	platformdb "coin_backend/internal/platform/db"
	"coin_backend/internal/platform/http/handler"
	jwtmw "coin_backend/internal/platform/jwt"
	platformredis "coin_backend/internal/platform/redis"
	"coin_backend/internal/shared/ratelimiter"
)

const readyTimeout = 2 * time.Second

// App は起動済みの依存関係とHTTPサーバーを保持します。
type App struct {
	cfg    *config.Config
	db     *gorm.DB
	rdb    *redis.Client
	server *http.Server
}

// New はDB接続・マイグレーション・キャッシュ・シードを済ませ、リクエストを受け付けられる状態のAppを返します。
// シードはサーバーが待ち受けを始める前に完了します。
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := platformdb.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, db: db}

	if cfg.Database.AutoMigrate {
		if err := platformdb.Migrate(db, adapters.Models()...); err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.Redis.Enabled {
		rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			a.rdb = rdb
		}
	}

	repo := di.NewCoinRepository(db, a.rdb, cfg.Redis.TTL)

	if cfg.Seed.Enabled {
		seeder := usecase.NewSeedUsecase(repo, usecase.SeedConfig{
			Coins:    cfg.Seed.Coins,
			Prices:   cfg.Seed.Prices,
			MaxValue: cfg.Seed.MaxValue,
		})
		if _, err := seeder.Seed(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	coins := coinhandler.NewCoinHandler(usecase.NewCoinUsecase(repo))
	ready := handler.Ready(func(ctx context.Context) error { return platformdb.Ping(ctx, db) }, readyTimeout)
	limiter := ratelimiter.NewRateLimiter(cfg.Server.WriteRateLimit, time.Minute)
	r := router.NewRouter(coins, ready, jwtmw.AuthRequired(cfg.Auth.JWTSecret), limiter.Middleware())

	a.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	slog.Info("app initialized",
		"http_addr", cfg.Server.Addr,
		"db_driver", cfg.Database.Driver,
		"cache_enabled", a.rdb != nil,
	)
	return a, nil
}

// Handler はルーティング済みのHTTPハンドラーを返します。
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run はctxがキャンセルされるまでHTTPサーバーを動かし、その後グレースフルに停止します。
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Close()
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	return a.Shutdown(context.Background())
}

// Shutdown は処理中のリクエストを待ってサーバーを停止し、接続を閉じます。
func (a *App) Shutdown(ctx context.Context) error {
	shCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shCtx)
	if err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	a.Close()
	slog.Info("application stopped")
	return err
}

// Close はRedisとDBの接続を閉じます。
func (a *App) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			slog.Error("Failed to close Redis client", "error", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
