package db

import (
	"context"
	"time"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Scanner reads the columns of the current row.
type Scanner interface {
	Scan(dest ...any) error
}

// ExecResult reports the outcome of a write statement.
type ExecResult struct {
	LastInsertID int64
	RowsAffected int64
}

// SQLStore provides parametrized statement execution over a relational store.
// QueryRow returns ErrKeyNotFound when the statement yields no row.
type SQLStore interface {
	Exec(ctx context.Context, query string, args ...any) (ExecResult, error)
	Query(ctx context.Context, scan func(Scanner) error, query string, args ...any) error
	QueryRow(ctx context.Context, scan func(Scanner) error, query string, args ...any) error
}

// RelationalStore is the facade of the primary store.
type RelationalStore interface {
	Pinger
	SQLStore
	Close() error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CacheStore is the facade of the optional cache.
type CacheStore interface {
	Pinger
	KVStore
	Close()
}
