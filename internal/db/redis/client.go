// Package redis implements the page token cache store via rueidis.
package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/pagemark/internal/db"
)

// Compile-time check: Store implements db.CacheStore.
var _ db.CacheStore = (*Store)(nil)

const (
	defaultDialTimeout = 5 * time.Second
	readyPollInterval  = 100 * time.Millisecond
)

// Config holds connection parameters for the cache.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// Standalone skips cluster topology discovery (plain Redis or Valkey).
	Standalone  bool
	DialTimeout time.Duration
}

// Store is the token cache backend.
type Store struct {
	client rueidis.Client
}

// NewStore creates a cache store. Connecting is lazy; use WaitForReady to probe.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:       cfg.Addrs,
		Username:          cfg.Username,
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		ForceSingleClient: cfg.Standalone,
		// Tokens are read once per lookup; client-side caching would only duplicate them.
		DisableCache: true,
		Dialer:       net.Dialer{Timeout: cfg.DialTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create cache client: %w", err)
	}

	return newStore(client), nil
}

func newStore(c rueidis.Client) *Store {
	return &Store{client: c}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings at once, then every 100ms until the cache answers or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for cache: %w: %w", db.ErrNotReady, ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
