package tokencache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagemark/internal/db"
	"github.com/kailas-cloud/pagemark/internal/domain/token"
)

type mockExtractor struct {
	page  token.Page
	err   error
	calls int
}

func (m *mockExtractor) Extract(_ context.Context, _ string, page int) (token.Page, error) {
	m.calls++
	p := m.page
	p.Number = page
	return p, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn func(ctx context.Context, key string) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockKVStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func newTestCachedExtractor(t *testing.T, inner *mockExtractor) (*CachedExtractor, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	ce := New(inner, ms, time.Hour, nil, zap.NewNop())
	return ce, ms
}
