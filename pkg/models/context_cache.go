package models

import (
	"time"

	"github.com/google/uuid"
)

// ContextInheritanceCache is the persisted, keyed-by(context_id, level)
// record of a fully-resolved inheritance chain (spec §3, §4.3.b). The
// multilevel cache in internal/cache fronts this with an in-process LRU
// and Redis layer; this struct is the value both layers eventually hold
// and what the repository persists to survive a cold start.
type ContextInheritanceCache struct {
	Timestamps

	ID        uuid.UUID    `json:"id" db:"id"`
	ContextID string       `json:"context_id" db:"context_id"`
	Level     ContextLevel `json:"level" db:"level"`

	ResolvedContext JSONMap `json:"resolved_context" db:"resolved_context"`

	// DependenciesHash is a content hash of every ancestor context's
	// version at resolution time (spec §4.3.b); a cache entry is valid
	// only while this matches a freshly computed hash.
	DependenciesHash string `json:"dependencies_hash" db:"dependencies_hash"`

	// ResolutionPath/ParentChain record how resolution walked the tree,
	// for diagnostics (spec §4.3.b).
	ResolutionPath []string `json:"resolution_path" db:"-"`
	ParentChain    []string `json:"parent_chain" db:"-"`

	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	HitCount      int64      `json:"hit_count" db:"hit_count"`
	LastHit       *time.Time `json:"last_hit,omitempty" db:"last_hit"`
	CacheSizeBytes int       `json:"cache_size_bytes" db:"cache_size_bytes"`

	Invalidated        bool   `json:"invalidated" db:"invalidated"`
	InvalidationReason string `json:"invalidation_reason,omitempty" db:"invalidation_reason"`
}

// NewContextInheritanceCache constructs a fresh, valid cache entry.
func NewContextInheritanceCache(contextID string, level ContextLevel, resolved JSONMap, depsHash string, path, parentChain []string, ttl time.Duration) *ContextInheritanceCache {
	c := &ContextInheritanceCache{
		ID: NewID(), ContextID: contextID, Level: level,
		ResolvedContext: resolved, DependenciesHash: depsHash,
		ResolutionPath: path, ParentChain: parentChain,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	c.Touch()
	return c
}

// IsExpired reports whether the TTL has elapsed (spec §4.3.b).
func (c *ContextInheritanceCache) IsExpired() bool {
	return time.Now().UTC().After(c.ExpiresAt)
}

// IsValid reports whether the cache entry can be served as-is: not
// invalidated, not expired, and its dependency hash still matches the
// ancestor chain's current state (spec §4.3.b/c).
func (c *ContextInheritanceCache) IsValid(currentDepsHash string) bool {
	return !c.Invalidated && !c.IsExpired() && c.DependenciesHash == currentDepsHash
}

// RecordHit increments the hit counter and advances LastHit (used for
// cache-effectiveness telemetry).
func (c *ContextInheritanceCache) RecordHit() {
	c.HitCount++
	now := time.Now().UTC()
	c.LastHit = &now
}

// Invalidate marks the entry invalid with a reason (spec §4.3.c cascade).
func (c *ContextInheritanceCache) Invalidate(reason string) {
	c.Invalidated = true
	c.InvalidationReason = reason
	c.Touch()
}
