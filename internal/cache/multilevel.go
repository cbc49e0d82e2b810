package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/devmesh-org/taskmesh/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// MultiLevelConfig configures the L1/L2 composition.
type MultiLevelConfig struct {
	L1MaxSize  int
	DefaultTTL time.Duration
}

// MultiLevelCache fronts an L2 Cache (Redis or Memory) with an in-process
// LRU L1, recording hit/miss metrics. This is what the context engine's
// ContextInheritanceCache resolution path reads and writes through (spec
// §4.3.b: "resolution consults cache before walking the ancestor chain").
type MultiLevelCache struct {
	l1      *lru.Cache[string, []byte]
	l2      Cache
	ttl     time.Duration
	metrics observability.MetricsClient
}

// NewMultiLevelCache wires an L1 LRU of the given size atop l2.
func NewMultiLevelCache(l2 Cache, cfg MultiLevelConfig, metrics observability.MetricsClient) (*MultiLevelCache, error) {
	if cfg.L1MaxSize <= 0 {
		cfg.L1MaxSize = 1000
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	l1, err := lru.New[string, []byte](cfg.L1MaxSize)
	if err != nil {
		return nil, fmt.Errorf("cache: create L1: %w", err)
	}
	return &MultiLevelCache{l1: l1, l2: l2, ttl: cfg.DefaultTTL, metrics: metrics}, nil
}

// Set writes through both levels.
func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal: %w", err)
	}
	c.l1.Add(key, data)
	if ttl <= 0 {
		ttl = c.ttl
	}
	err = c.l2.Set(ctx, key, data, ttl)
	c.metrics.RecordHistogram("cache_set_seconds", time.Since(start).Seconds())
	return err
}

// Get checks L1 then L2, populating L1 on an L2 hit. Returns (false, nil)
// on a clean miss.
func (c *MultiLevelCache) Get(ctx context.Context, key string, value interface{}) (bool, error) {
	start := time.Now()
	if data, ok := c.l1.Get(key); ok {
		c.metrics.IncrementCounter("cache_hits_l1_total", 1)
		c.metrics.RecordHistogram("cache_get_seconds", time.Since(start).Seconds())
		return true, json.Unmarshal(data, value)
	}

	var data []byte
	err := c.l2.Get(ctx, key, &data)
	if err != nil {
		c.metrics.IncrementCounter("cache_misses_total", 1)
		c.metrics.RecordHistogram("cache_get_seconds", time.Since(start).Seconds())
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}

	c.l1.Add(key, data)
	c.metrics.IncrementCounter("cache_hits_l2_total", 1)
	c.metrics.RecordHistogram("cache_get_seconds", time.Since(start).Seconds())
	return true, json.Unmarshal(data, value)
}

// Delete removes the key from both levels.
func (c *MultiLevelCache) Delete(ctx context.Context, key string) error {
	c.l1.Remove(key)
	return c.l2.Delete(ctx, key)
}

// Flush drops every entry in both levels.
func (c *MultiLevelCache) Flush(ctx context.Context) error {
	c.l1.Purge()
	return c.l2.Flush(ctx)
}

func (c *MultiLevelCache) Close() error {
	return c.l2.Close()
}
