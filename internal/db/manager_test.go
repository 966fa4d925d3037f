package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func sqliteConn(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, _ := conn.DB()
	sqlDB.SetMaxOpenConns(1)
	return conn
}

func TestManagerConnectsAndReuses(t *testing.T) {
	var calls int32
	conn := sqliteConn(t)
	mgr := NewManager(func() (*gorm.DB, error) {
		atomic.AddInt32(&calls, 1)
		return conn, nil
	}, 3, time.Millisecond, zap.NewNop())

	ctx := context.Background()
	if _, err := mgr.Conn(ctx); err != nil {
		t.Fatalf("Conn failed: %v", err)
	}
	if _, err := mgr.Conn(ctx); err != nil {
		t.Fatalf("second Conn failed: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected a single connect for a live connection, got %d", got)
	}
}

func TestManagerRetriesThenSucceeds(t *testing.T) {
	var calls int32
	conn := sqliteConn(t)
	mgr := NewManager(func() (*gorm.DB, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, errors.New("connection refused")
		}
		return conn, nil
	}, 3, time.Millisecond, zap.NewNop())

	if _, err := mgr.Conn(context.Background()); err != nil {
		t.Fatalf("Conn failed despite a successful final attempt: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 connect attempts, got %d", got)
	}
}

func TestManagerExhaustsRetries(t *testing.T) {
	var calls int32
	mgr := NewManager(func() (*gorm.DB, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection refused")
	}, 3, time.Millisecond, zap.NewNop())

	_, err := mgr.Conn(context.Background())
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", got)
	}
}

func TestManagerCoalescesConcurrentReconnects(t *testing.T) {
	var calls int32
	conn := sqliteConn(t)
	mgr := NewManager(func() (*gorm.DB, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return conn, nil
	}, 1, time.Millisecond, zap.NewNop())

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = mgr.Conn(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d failed: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("concurrent callers must share one reconnect, got %d connects", got)
	}
}

func TestManagerRespectsContextDuringBackoff(t *testing.T) {
	mgr := NewManager(func() (*gorm.DB, error) {
		return nil, errors.New("connection refused")
	}, 3, time.Hour, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := mgr.Conn(ctx)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
