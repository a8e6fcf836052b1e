package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/auth"
	"github.com/oggyb/cinemood/internal/cache"
	"github.com/oggyb/cinemood/internal/config"
	"github.com/oggyb/cinemood/internal/db"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
//
// Sessions is what request handlers use to reach the database. DB is kept
// for process-level work such as seeding and health checks.
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	Sessions   db.SessionProvider
	RedisCache *cache.RedisCache
	Tokens     *auth.TokenManager
	Logger     *slog.Logger
}

// New creates a new AppContext. A nil sessions falls back to a pooled
// provider over database.
func New(
	cfg *config.Config,
	database *gorm.DB,
	sessions db.SessionProvider,
	rdb *cache.RedisCache,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *AppContext {
	if sessions == nil && database != nil {
		sessions = db.NewSessionProvider(database)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AppContext{
		Config:     cfg,
		DB:         database,
		Sessions:   sessions,
		RedisCache: rdb,
		Tokens:     tokens,
		Logger:     logger,
	}
}
