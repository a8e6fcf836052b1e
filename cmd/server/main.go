package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/oggyb/cinemood/internal/app"
	"github.com/oggyb/cinemood/internal/auth"
	"github.com/oggyb/cinemood/internal/cache"
	"github.com/oggyb/cinemood/internal/config"
	"github.com/oggyb/cinemood/internal/db"
	"github.com/oggyb/cinemood/internal/logger"
	"github.com/oggyb/cinemood/internal/router"
	"github.com/oggyb/cinemood/internal/server"
)

func main() {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	if err != nil {
		log.Error("failed to init token manager", "err", err)
		os.Exit(1)
	}

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}
	sessions := db.NewSessionProvider(database)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	if cfg.App.ENV == "development" {
		if err := db.SeedDemoData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Inject dependencies into app context
	appCtx := app.New(cfg, database, sessions, redisCache, tokens, log)

	engine, err := router.New(appCtx)
	if err != nil {
		log.Error("failed to build router", "err", err)
		os.Exit(1)
	}

	health := server.NewHealthRegistrar(0, map[string]server.Pinger{
		"database": sessions,
		"redis":    redisCache,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		health.Watch(gctx)
		return nil
	})
	g.Go(func() error {
		return server.StartGRPCServer(gctx, cfg, log, health)
	})
	g.Go(func() error {
		return server.StartHTTPServer(gctx, server.NewHTTPServer(cfg, engine), log)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
