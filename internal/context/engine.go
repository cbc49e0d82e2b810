// Package context implements the four-level context engine (spec §4.3):
// resolution with deep-merge-by-section, a persisted resolved-chain cache
// keyed by (context_id, level) with a dependencies_hash freshness check,
// the invalidation cascade, and delegation. Grounded on
// teacher_ref/core/context_manager.go's cache-aside read path (check
// cache, compute, populate) generalized from a single flat cache to the
// chain-aware resolver this spec's inheritance model requires.
package context

import (
	"context"
	"time"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
)

// Engine is the context engine's use-case layer.
type Engine struct {
	repo    repository.ContextRepository
	ttl     time.Duration
	logger  observability.Logger
	metrics observability.MetricsClient
}

// New constructs an Engine. ttl is the default resolved-chain cache
// lifetime (spec §6 CACHE_TTL).
func New(repo repository.ContextRepository, ttl time.Duration, logger observability.Logger, metrics observability.MetricsClient) *Engine {
	return &Engine{repo: repo, ttl: ttl, logger: logger, metrics: metrics}
}

// ResolvedContext is the outcome of a Resolve call.
type ResolvedContext struct {
	ContextID        string
	Level            models.ContextLevel
	Sections         map[string]models.JSONMap
	DependenciesHash string
	ResolutionPath   []string
	CacheHit         bool
}

// chainLink is one (level, id, version) tuple visited while walking the
// ancestor chain; dependenciesHash is computed over the ordered sequence
// of these (spec §4.3.b).
type chainLink struct {
	level   models.ContextLevel
	id      string
	version int
}

// node is a loaded context row, generalized over its level so Resolve can
// walk upward without four parallel code paths.
type node struct {
	level       models.ContextLevel
	id          string
	version     int
	sections    map[string]models.JSONMap
	truncates   bool // inheritance_disabled (or, task-only, force_local_only)
	parentLevel models.ContextLevel
	parentID    string
	hasParent   bool
}

func (e *Engine) loadNode(ctx context.Context, level models.ContextLevel, id, userID string) (*node, error) {
	switch level {
	case models.LevelTask:
		taskID, err := uuid.Parse(id)
		if err != nil {
			return nil, apperrors.Validation("task_id", "invalid task id %q", id)
		}
		c, err := e.repo.GetTask(ctx, taskID, userID)
		if err != nil {
			return nil, err
		}
		return &node{
			level: models.LevelTask, id: id, version: c.Version, sections: c.SectionValues(),
			truncates: c.InheritanceDisabled || c.ForceLocalOnly,
			// Navigation climbs via the branch's own id (ParentBranchID), not
			// ParentBranchContextID: the repository's GetBranch keys off the
			// branch's own id, not a context row id, so ParentBranchContextID
			// is kept only as audit bookkeeping (see DESIGN.md).
			parentLevel: models.LevelBranch, parentID: c.ParentBranchID, hasParent: c.ParentBranchID != "",
		}, nil
	case models.LevelBranch:
		c, err := e.repo.GetBranch(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		return &node{
			level: models.LevelBranch, id: id, version: c.Version, sections: c.SectionValues(),
			truncates: c.InheritanceDisabled,
			// Same rationale as above: GetProject keys off the project's own
			// id, which ParentProjectID already carries (unlike TaskContext's
			// ParentBranchContextID, BranchContext's ParentProjectID doubles
			// as the owning project's id here).
			parentLevel: models.LevelProject, parentID: c.ParentProjectID.String(), hasParent: true,
		}, nil
	case models.LevelProject:
		c, err := e.repo.GetProject(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		return &node{
			level: models.LevelProject, id: id, version: c.Version, sections: c.SectionValues(),
			truncates:   c.InheritanceDisabled,
			parentLevel: models.LevelGlobal, hasParent: true,
		}, nil
	case models.LevelGlobal:
		c, err := e.repo.GetGlobal(ctx, userID)
		if err != nil {
			return nil, err
		}
		// id is the owning user id, not the row's own uuid: GlobalContext is
		// keyed by user (spec §4.3.e), and that is the only handle a caller
		// has before the row exists, so it is what cache entries and the
		// invalidation cascade key on too.
		return &node{level: models.LevelGlobal, id: userID, version: c.Version, sections: c.SectionValues()}, nil
	default:
		return nil, apperrors.Validation("level", "unknown context level %q", level)
	}
}

const maxResolveAttempts = 3

// walkChain loads (level, contextID) and climbs toward global while
// includeInherited is true and no level along the way truncates the
// chain (inheritance_disabled, or force_local_only at the task leaf),
// returning the visited nodes self-first and the matching (level, id,
// version) tuples (spec §4.3.a).
func (e *Engine) walkChain(ctx context.Context, level models.ContextLevel, contextID, userID string, includeInherited bool) ([]*node, []chainLink, error) {
	start, err := e.loadNode(ctx, level, contextID, userID)
	if err != nil {
		return nil, nil, err
	}

	nodes := []*node{start}
	chain := []chainLink{{level: start.level, id: start.id, version: start.version}}

	cur := start
	for includeInherited && !cur.truncates && cur.hasParent {
		parent, err := e.loadNode(ctx, cur.parentLevel, cur.parentID, userID)
		if err != nil {
			if apperrors.CodeOf(err) == apperrors.CodeNotFound {
				break // ancestor was never created; chain stops here
			}
			return nil, nil, err
		}
		nodes = append(nodes, parent)
		chain = append(chain, chainLink{level: parent.level, id: parent.id, version: parent.version})
		cur = parent
	}
	return nodes, chain, nil
}

func mergeNodes(nodes []*node) (merged map[string]models.JSONMap, resolutionPath, parentChain []string) {
	merged = map[string]models.JSONMap{}
	resolutionPath = make([]string, 0, len(nodes))
	parentChain = make([]string, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- { // most general (global) first, most specific (self) last
		n := nodes[i]
		for name, val := range n.sections {
			merged[name] = models.DeepMergeSection(merged[name], val)
		}
		resolutionPath = append(resolutionPath, string(n.level))
		parentChain = append(parentChain, string(n.level)+":"+n.id)
	}
	return merged, resolutionPath, parentChain
}

// Resolve serves/populates the resolved-chain cache keyed by (contextID,
// level) (spec §4.3.b). A cache hit is a lock-free read and returns
// immediately. On a miss, the chain is walked and merged, then
// re-verified immediately before the cache write: if an ancestor's
// version advanced during resolution, the cache write is discarded and
// the whole resolve retries (bounded 3 attempts per spec §5); once
// exhausted, the last freshly-resolved value is returned uncached rather
// than risking a cache entry keyed to a stale dependencies_hash.
func (e *Engine) Resolve(ctx context.Context, level models.ContextLevel, contextID, userID string, includeInherited bool) (*ResolvedContext, error) {
	var merged map[string]models.JSONMap
	var resolutionPath, parentChain []string
	var depsHash string

	for attempt := 0; attempt < maxResolveAttempts; attempt++ {
		nodes, chain, err := e.walkChain(ctx, level, contextID, userID, includeInherited)
		if err != nil {
			return nil, err
		}
		depsHash = hashChain(chain)

		if cached, err := e.repo.GetCacheEntry(ctx, contextID, level); err == nil && cached.IsValid(depsHash) {
			cached.RecordHit()
			if err := e.repo.PutCacheEntry(ctx, cached); err != nil {
				e.logger.Warn("context cache hit-count write failed", map[string]interface{}{"error": err.Error()})
			}
			e.metrics.IncrementCounter("context_cache_hits_total", 1)
			return &ResolvedContext{
				ContextID: contextID, Level: level, Sections: sectionsFromJSON(cached.ResolvedContext),
				DependenciesHash: depsHash, ResolutionPath: cached.ResolutionPath, CacheHit: true,
			}, nil
		}

		merged, resolutionPath, parentChain = mergeNodes(nodes)

		_, verifyChain, err := e.walkChain(ctx, level, contextID, userID, includeInherited)
		if err != nil {
			return nil, err
		}
		if hashChain(verifyChain) != depsHash {
			continue
		}

		flat := models.JSONMap{}
		for name, val := range merged {
			flat[name] = val
		}
		entry := models.NewContextInheritanceCache(contextID, level, flat, depsHash, resolutionPath, parentChain, e.ttl)
		entry.CacheSizeBytes = jsonSize(flat)
		if err := e.repo.PutCacheEntry(ctx, entry); err != nil {
			e.logger.Warn("context cache write failed", map[string]interface{}{"error": err.Error()})
		}
		e.metrics.IncrementCounter("context_cache_misses_total", 1)
		return &ResolvedContext{
			ContextID: contextID, Level: level, Sections: merged,
			DependenciesHash: depsHash, ResolutionPath: resolutionPath, CacheHit: false,
		}, nil
	}

	e.logger.Warn("context resolve raced too many times, returning uncached", map[string]interface{}{
		"context_id": contextID, "level": string(level),
	})
	return &ResolvedContext{
		ContextID: contextID, Level: level, Sections: merged,
		DependenciesHash: depsHash, ResolutionPath: resolutionPath, CacheHit: false,
	}, nil
}

func sectionsFromJSON(flat models.JSONMap) map[string]models.JSONMap {
	out := make(map[string]models.JSONMap, len(flat))
	for k, v := range flat {
		switch m := v.(type) {
		case models.JSONMap:
			out[k] = m
		case map[string]interface{}:
			out[k] = models.JSONMap(m)
		}
	}
	return out
}
