package connection

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Opener establishes a new store connection.
type Opener func(ctx context.Context) (*gorm.DB, error)

// Provider hands out the store connection for one call.
type Provider interface {
	DB(ctx context.Context) (*gorm.DB, error)
}

var ErrHandleClosed = errors.New("connection handle closed")

// Handle owns the process-wide store connection. The first call to DB
// connects; concurrent first callers share that single attempt. A failed
// attempt is not remembered, so the next call tries again.
type Handle struct {
	open   Opener
	mu     sync.RWMutex
	db     *gorm.DB
	closed bool
	sf     singleflight.Group
}

func NewHandle(open Opener) *Handle {
	return &Handle{open: open}
}

// NewHandleFromDB wraps an already established connection.
func NewHandleFromDB(db *gorm.DB) *Handle {
	return &Handle{db: db, open: func(context.Context) (*gorm.DB, error) { return db, nil }}
}

func (h *Handle) current() (*gorm.DB, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.db, h.closed
}

func (h *Handle) DB(ctx context.Context) (*gorm.DB, error) {
	db, closed := h.current()
	if closed {
		return nil, ErrHandleClosed
	}
	if db != nil {
		return db, nil
	}

	v, err, _ := h.sf.Do("connect", func() (any, error) {
		if db, _ := h.current(); db != nil {
			return db, nil
		}

		db, err := h.open(ctx)
		if err != nil {
			return nil, err
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed {
			closeDB(db)
			return nil, ErrHandleClosed
		}
		h.db = db
		return db, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*gorm.DB), nil
}

// Ping connects if needed and checks the connection is alive.
func (h *Handle) Ping(ctx context.Context) error {
	db, err := h.DB(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.db == nil {
		return nil
	}
	err := closeDB(h.db)
	h.db = nil
	return err
}

func closeDB(db *gorm.DB) error {
	if db == nil || db.Config == nil || db.ConnPool == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
