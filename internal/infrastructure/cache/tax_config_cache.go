package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tradeops/backoffice/internal/domain/billing"
	"go.uber.org/zap"
)

const (
	defaultTaxCacheTTL     = 10 * time.Minute
	defaultCleanupInterval = 30 * time.Second
)

// TaxConfigCache is the cache contract used by CachedTaxConfigSource.
// Implementations cache positive lookups only; misses always fall through.
type TaxConfigCache interface {
	Get(ctx context.Context, code string) (*billing.TaxConfig, bool)
	Set(ctx context.Context, config *billing.TaxConfig)
	Invalidate(ctx context.Context, code string)
}

// CachedTaxConfigSource reads tax configurations through a TTL cache.
// Tax rates change rarely but are resolved on every invoice line, so the
// calculator never talks to the database directly.
type CachedTaxConfigSource struct {
	source billing.TaxConfigSource
	cache  TaxConfigCache
}

// NewCachedTaxConfigSource wraps a TaxConfigSource with a cache.
func NewCachedTaxConfigSource(source billing.TaxConfigSource, cache TaxConfigCache) *CachedTaxConfigSource {
	return &CachedTaxConfigSource{source: source, cache: cache}
}

// FindByCode resolves a tax configuration, serving from cache when possible.
func (s *CachedTaxConfigSource) FindByCode(ctx context.Context, code string) (*billing.TaxConfig, error) {
	key := strings.ToUpper(code)
	if cfg, ok := s.cache.Get(ctx, key); ok {
		return cfg, nil
	}

	cfg, err := s.source.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		s.cache.Set(ctx, cfg)
	}
	return cfg, nil
}

// Invalidate evicts a code after a tax configuration change.
func (s *CachedTaxConfigSource) Invalidate(ctx context.Context, code string) {
	s.cache.Invalidate(ctx, strings.ToUpper(code))
}

// Ensure CachedTaxConfigSource implements TaxConfigSource
var _ billing.TaxConfigSource = (*CachedTaxConfigSource)(nil)

// cacheEntry wraps a cached value with its expiration time
type cacheEntry struct {
	config    *billing.TaxConfig
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryTaxConfigCache implements TaxConfigCache using in-process storage.
// Suitable for single-instance deployments; distributed setups use the Redis
// implementation so invalidations reach every instance.
type InMemoryTaxConfigCache struct {
	entries sync.Map // map[string]*cacheEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// InMemoryTaxConfigCacheOption is a functional option for configuring the cache
type InMemoryTaxConfigCacheOption func(*InMemoryTaxConfigCache)

// WithTTL sets the entry time to live
func WithTTL(ttl time.Duration) InMemoryTaxConfigCacheOption {
	return func(c *InMemoryTaxConfigCache) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger for the cache
func WithLogger(logger *zap.Logger) InMemoryTaxConfigCacheOption {
	return func(c *InMemoryTaxConfigCache) {
		c.logger = logger
	}
}

// NewInMemoryTaxConfigCache creates a new in-memory tax config cache
func NewInMemoryTaxConfigCache(opts ...InMemoryTaxConfigCacheOption) *InMemoryTaxConfigCache {
	cache := &InMemoryTaxConfigCache{
		ttl:    defaultTaxCacheTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get returns the cached config for a code if present and fresh
func (c *InMemoryTaxConfigCache) Get(_ context.Context, code string) (*billing.TaxConfig, bool) {
	value, ok := c.entries.Load(code)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	entry := value.(*cacheEntry)
	if entry.isExpired() {
		c.entries.Delete(code)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	return entry.config, true
}

// Set stores a config under its code
func (c *InMemoryTaxConfigCache) Set(_ context.Context, config *billing.TaxConfig) {
	c.entries.Store(strings.ToUpper(config.Code), &cacheEntry{
		config:    config,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Invalidate evicts a code
func (c *InMemoryTaxConfigCache) Invalidate(_ context.Context, code string) {
	c.entries.Delete(code)
}

// Stats returns hit and miss counters for monitoring
func (c *InMemoryTaxConfigCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Stop terminates the background cleanup goroutine
func (c *InMemoryTaxConfigCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryTaxConfigCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.entries.Range(func(key, value any) bool {
				if value.(*cacheEntry).isExpired() {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}

// Ensure InMemoryTaxConfigCache implements TaxConfigCache
var _ TaxConfigCache = (*InMemoryTaxConfigCache)(nil)
