package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ustaad-pk/ustaad_be/internal/config"
	"github.com/ustaad-pk/ustaad_be/internal/db"
	"github.com/ustaad-pk/ustaad_be/internal/logger"
	"github.com/ustaad-pk/ustaad_be/internal/metrics"
	"github.com/ustaad-pk/ustaad_be/internal/realtime"
	"github.com/ustaad-pk/ustaad_be/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		zap.NewExample().Fatal("build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(cfg.DBDSN, cfg.DBMaxOpenConns, log)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	if sqlDB, err := gdb.DB(); err == nil {
		if err := metrics.RegisterDB(sqlDB, "ustaad"); err != nil {
			log.Warn("register db metrics", zap.Error(err))
		}
	}

	if err := db.Migrate(gdb); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	if cfg.SeedCatalog {
		if err := db.SeedCatalog(gdb); err != nil {
			log.Fatal("seed catalog", zap.Error(err))
		}
		log.Info("catalog seeded")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := realtime.Ping(ctx, rdb); err != nil {
			log.Warn("redis unreachable, notifications stay in-process", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rdb.Close()
			rdb = nil
		} else {
			defer func() { _ = rdb.Close() }()
			log.Info("redis connected", zap.String("addr", cfg.RedisAddr))
		}
	}

	hub := realtime.NewHub(log)
	go hub.Run(ctx)

	app := server.New(server.Options{
		DB:                 gdb,
		Log:                log,
		Hub:                hub,
		Notifier:           realtime.NewBroadcaster(hub, rdb, log),
		JWTSecret:          cfg.JWTSecret,
		JWTIssuer:          cfg.JWTIssuer,
		AllowOrigins:       cfg.AllowOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("port", cfg.AppPort), zap.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal("listen", zap.Error(err))
	}
}
