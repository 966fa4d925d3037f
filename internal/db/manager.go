package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ErrStoreUnavailable is returned once the bounded reconnect attempts are
// exhausted. Callers are expected to degrade gracefully, not crash.
var ErrStoreUnavailable = errors.New("database unavailable")

type Connector func() (*gorm.DB, error)

// Manager owns the process-wide database handle. When the connection is
// detected dead it reconnects with doubling backoff; concurrent callers
// observing the same dead connection share a single reconnect attempt.
type Manager struct {
	connect   Connector
	logger    *zap.SugaredLogger
	attempts  int
	baseDelay time.Duration

	mu   sync.RWMutex
	conn *gorm.DB
	sf   singleflight.Group
}

func NewManager(connect Connector, attempts int, baseDelay time.Duration, logger *zap.Logger) *Manager {
	if attempts < 1 {
		attempts = 1
	}
	return &Manager{
		connect:   connect,
		logger:    logger.Sugar(),
		attempts:  attempts,
		baseDelay: baseDelay,
	}
}

func (m *Manager) Conn(ctx context.Context) (*gorm.DB, error) {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()

	if conn != nil && alive(ctx, conn) {
		return conn, nil
	}

	v, err, _ := m.sf.Do("reconnect", func() (interface{}, error) {
		return m.reconnect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*gorm.DB), nil
}

func (m *Manager) reconnect(ctx context.Context) (*gorm.DB, error) {
	// Another caller may have reconnected while we waited on the flight group.
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()
	if conn != nil && alive(ctx, conn) {
		return conn, nil
	}

	delay := m.baseDelay
	var lastErr error

	for attempt := 1; attempt <= m.attempts; attempt++ {
		conn, err := m.connect()
		if err == nil && alive(ctx, conn) {
			m.mu.Lock()
			m.conn = conn
			m.mu.Unlock()
			if attempt > 1 {
				m.logger.Infow("Database reconnected", "attempt", attempt)
			}
			return conn, nil
		}
		if err == nil {
			err = errors.New("connection did not survive ping")
		}
		lastErr = err

		m.logger.Warnw("Database connection attempt failed",
			"attempt", attempt,
			"max_attempts", m.attempts,
			"error", err,
		)

		if attempt < m.attempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	m.logger.Errorw("Database reconnect attempts exhausted", "attempts", m.attempts, "error", lastErr)
	return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, lastErr)
}

func alive(ctx context.Context, conn *gorm.DB) bool {
	sqlDB, err := conn.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}
