package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"support-lookup/internal/calls"
	"support-lookup/internal/clock"
	"support-lookup/internal/config"
	"support-lookup/internal/customers"
	"support-lookup/internal/httpapi"
	"support-lookup/internal/protocols"
	"support-lookup/internal/ratelimit"
	"support-lookup/internal/store"
	"support-lookup/pkg/logger"
	"support-lookup/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	zone, err := clock.LoadZone(cfg.App.TimeZone)
	if err != nil {
		log.Error("time zone init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := store.Migrate(rootCtx, db); err != nil {
			log.Error("schema migration failed", "err", err)
			os.Exit(1)
		}
		log.Info("schema migrated")
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = utils.OpenRedis(rootCtx, utils.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
	}

	h := httpapi.Handlers{
		Customers:   customers.NewService(customers.NewPostgresRepo(db)),
		Calls:       calls.NewService(calls.NewPostgresRepo(db)),
		Protocols:   protocols.NewService(protocols.NewPostgresRepo(db), zone),
		Clock:       clock.System{},
		WindowHours: cfg.Deadline.WindowHours,
		Ready: func(ctx context.Context) error {
			return utils.HealthCheck(ctx, db, 2*time.Second)
		},
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	var limiter gin.HandlerFunc
	if rdb != nil {
		limiter = ratelimit.LimitInFlight(rdb, ratelimit.Options{
			MaxInFlight: cfg.RateLimit.MaxInFlight,
			TTL:         cfg.RateLimit.TTL,
		})
	}
	registerRoutes(r, h, limiter)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening",
			"addr", srv.Addr,
			"time_zone", zone.String(),
			"deadline_window_hours", cfg.Deadline.WindowHours,
			"inflight_limit", rdb != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
