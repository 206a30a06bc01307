package api

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vilaca/zenhub-estimates/internal/domain"
	"github.com/vilaca/zenhub-estimates/internal/issues"
)

// CachingClient wraps a Client with caching capabilities.
// Concurrent identical requests share one upstream call; successful results
// are kept for the cache duration. Errors are never cached.
type CachingClient struct {
	client Client
	cache  *cache
	group  singleflight.Group
	logger Logger
}

// NewCachingClient creates a new caching client wrapper.
func NewCachingClient(client Client, cacheDuration time.Duration, logger Logger) *CachingClient {
	return &CachingClient{
		client: client,
		cache:  newCache(cacheDuration),
		logger: logger,
	}
}

// GetCurrentUser retrieves the current user with caching.
func (c *CachingClient) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	v, err := c.fetch("GetCurrentUser", func() (interface{}, error) {
		return c.client.GetCurrentUser(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}

// GetRepositories retrieves workspace repositories with caching.
func (c *CachingClient) GetRepositories(ctx context.Context, workspaceID string) ([]domain.Repository, error) {
	key := fmt.Sprintf("GetRepositories:%s", workspaceID)

	v, err := c.fetch(key, func() (interface{}, error) {
		return c.client.GetRepositories(ctx, workspaceID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Repository), nil
}

// GetIssues retrieves the workspace issue list with caching.
func (c *CachingClient) GetIssues(ctx context.Context, workspaceID string, scope issues.Scope) ([]domain.Issue, error) {
	key := generateCacheKey("GetIssues", workspaceID, scope.String())

	v, err := c.fetch(key, func() (interface{}, error) {
		return c.client.GetIssues(ctx, workspaceID, scope)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Issue), nil
}

// fetch returns a cached value for key or loads it, collapsing concurrent loads.
func (c *CachingClient) fetch(key string, load func() (interface{}, error)) (interface{}, error) {
	if cached, found := c.cache.get(key); found {
		c.logger.Debugf("Cache hit: %s", key)
		return cached, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		if cached, found := c.cache.get(key); found {
			return cached, nil
		}
		c.logger.Debugf("Cache miss: %s - fetching from API", key)
		v, err := load()
		if err != nil {
			return nil, err
		}
		c.cache.set(key, v)
		return v, nil
	})
	if shared {
		c.logger.Debugf("Shared in-flight request: %s", key)
	}
	return v, err
}

// cache implements a thread-safe TTL cache.
type cache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	duration time.Duration
	now      func() time.Time
}

// cacheEntry holds a cached value with expiry time.
type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// newCache creates a new cache with the specified duration.
func newCache(duration time.Duration) *cache {
	return &cache{
		entries:  make(map[string]*cacheEntry),
		duration: duration,
		now:      time.Now,
	}
}

// get retrieves a value from cache.
func (c *cache) get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.value, true
}

// set stores a value in cache with TTL and drops expired entries.
func (c *cache) set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, k)
		}
	}

	c.entries[key] = &cacheEntry{
		value:     value,
		expiresAt: now.Add(c.duration),
	}
}

// generateCacheKey generates a cache key from parameters.
func generateCacheKey(parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
