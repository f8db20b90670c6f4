// Package tokencache caches extracted page text in a key-value store.
package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagemark/internal/db"
	"github.com/kailas-cloud/pagemark/internal/domain/token"
)

// KeyPrefix namespaces cache entries. Bump the version when token.Page changes shape.
const KeyPrefix = "pagemark:tokens:v1:"

// Extractor is the decorated text extractor.
type Extractor interface {
	Extract(ctx context.Context, documentID string, page int) (token.Page, error)
}

// store is the consumer interface for the token cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedExtractor caches page tokens. Documents are immutable, so entries never go stale;
// the TTL only bounds memory.
type CachedExtractor struct {
	inner      Extractor
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Extractor,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedExtractor {
	return &CachedExtractor{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Extract returns cached tokens or calls the inner extractor.
// Cache failures degrade to a miss and are logged, never returned.
func (c *CachedExtractor) Extract(ctx context.Context, documentID string, page int) (token.Page, error) {
	key := cacheKey(documentID, page)

	if p, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return p, nil
	}

	c.incCache("miss")

	p, err := c.inner.Extract(ctx, documentID, page)
	if err != nil {
		return token.Page{}, fmt.Errorf("extract page: %w", err)
	}

	c.putToCache(ctx, key, p)
	return p, nil
}

func (c *CachedExtractor) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(documentID string, page int) string {
	return KeyPrefix + documentID + ":" + strconv.Itoa(page)
}

func (c *CachedExtractor) getFromCache(ctx context.Context, key string) (token.Page, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached tokens", zap.String("key", key), zap.Error(err))
		}
		return token.Page{}, false
	}
	if len(data) == 0 {
		return token.Page{}, false
	}

	var p token.Page
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Warn("Dropping unreadable cached tokens", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to drop cached tokens", zap.String("key", key), zap.Error(err))
		}
		return token.Page{}, false
	}
	return p, true
}

func (c *CachedExtractor) putToCache(ctx context.Context, key string, p token.Page) {
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("Failed to encode tokens", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache tokens", zap.String("key", key), zap.Error(err))
	}
}
