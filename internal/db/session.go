package db

import (
	"context"

	"gorm.io/gorm"
)

// SessionProvider hands out a database session scoped to one request.
// The API layer depends on this interface only, so tests can inject an
// isolated store without touching global state.
type SessionProvider interface {
	// Acquire returns a session bound to ctx and a release func that must be
	// called exactly once when the request ends, whether it succeeded or not.
	Acquire(ctx context.Context) (*gorm.DB, func(), error)
}

// PooledSessions derives request sessions from one shared connection pool.
type PooledSessions struct {
	base *gorm.DB
}

// NewSessionProvider wraps a pooled *gorm.DB.
func NewSessionProvider(base *gorm.DB) *PooledSessions {
	return &PooledSessions{base: base}
}

// Acquire binds a fresh gorm session to a cancellable child of ctx. Release
// cancels it, aborting any statement still running under the session's
// context (session.Statement.Context).
func (p *PooledSessions) Acquire(ctx context.Context) (*gorm.DB, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	session := p.base.Session(&gorm.Session{NewDB: true, Context: ctx})
	return session, cancel, nil
}

// Ping checks connectivity of the underlying pool.
func (p *PooledSessions) Ping(ctx context.Context) error {
	sqlDB, err := p.base.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
