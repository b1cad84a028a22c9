// Package cache stores search responses in Redis so that replicas of the
// search service can share them. Entries are keyed on the snapshot
// fingerprint, so a reloaded catalog never serves stale results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// Recorder observes cache lookups.
type Recorder interface {
	CacheLookup(hit bool)
}

type Option func(*QueryCache)

func WithRecorder(r Recorder) Option {
	return func(c *QueryCache) {
		c.recorder = r
	}
}

type QueryCache struct {
	client   *pkgredis.Client
	ttl      time.Duration
	variant  string
	group    singleflight.Group
	recorder Recorder
	logger   *slog.Logger
	hits     atomic.Int64
	misses   atomic.Int64
}

// New returns a cache whose keys also cover the search caps, so services
// configured differently never share entries.
func New(client *pkgredis.Client, ttl time.Duration, search config.SearchConfig, opts ...Option) *QueryCache {
	search = search.WithDefaults()
	c := &QueryCache{
		client: client,
		ttl:    ttl,
		variant: fmt.Sprintf("c%d/d%d/t%d/s%d",
			search.CategoryLimit, search.DefinitionLimit, search.ContentLimit, search.SnippetMaxLen),
		logger: slog.Default().With("component", "query-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached response for query against the snapshot with the
// given fingerprint. The returned Query echoes the caller's spelling.
func (c *QueryCache) Get(ctx context.Context, fingerprint, query string) (engine.Response, bool) {
	resp, ok := c.lookup(ctx, c.buildKey(fingerprint, query))
	if !ok {
		c.misses.Add(1)
		if c.recorder != nil {
			c.recorder.CacheLookup(false)
		}
		return engine.Response{}, false
	}
	c.hits.Add(1)
	if c.recorder != nil {
		c.recorder.CacheLookup(true)
	}
	c.logger.Debug("cache hit", "query", query)
	resp.Query = query
	return resp, true
}

func (c *QueryCache) lookup(ctx context.Context, key string) (engine.Response, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsMiss(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return engine.Response{}, false
	}
	var resp engine.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return engine.Response{}, false
	}
	return resp, true
}

func (c *QueryCache) Set(ctx context.Context, fingerprint, query string, resp engine.Response) {
	key := c.buildKey(fingerprint, query)
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached response or runs computeFn once per key,
// even when many callers miss at the same time. The bool reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	fingerprint, query string,
	computeFn func() (engine.Response, error),
) (engine.Response, bool, error) {
	if resp, ok := c.Get(ctx, fingerprint, query); ok {
		return resp, true, nil
	}
	key := c.buildKey(fingerprint, query)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if resp, ok := c.lookup(ctx, key); ok {
			return resp, nil
		}
		resp, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, fingerprint, query, resp)
		return resp, nil
	})
	if err != nil {
		return engine.Response{}, false, err
	}
	resp := val.(engine.Response)
	resp.Query = query
	return resp, false, nil
}

// Invalidate drops every cached response.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.client.DeleteMatching(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey folds case because every stage of a query ignores it. Whitespace
// is kept: the content check matches the raw query literally.
func (c *QueryCache) buildKey(fingerprint, query string) string {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(c.variant))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(query)))
	return fmt.Sprintf("%s%x", keyPrefix, h.Sum(nil)[:16])
}
