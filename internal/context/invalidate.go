package context

import (
	"context"

	"github.com/devmesh-org/taskmesh/pkg/models"
)

// Invalidation is a mark operation only (spec §4.3.c): it never deletes a
// cache row, it flips invalidated=true with a reason, and the next
// Resolve overwrites it. Each level's own cache entry is marked directly;
// descendants are reached through InvalidateDescendants, which matches
// any cached chain recorded as having passed through this (level, id) —
// exactly the ancestry mergeNodes stamped into parentChain on the
// resolve that originally populated it.

func (e *Engine) invalidateTask(ctx context.Context, taskID, reason string) error {
	return e.repo.InvalidateCacheEntry(ctx, taskID, models.LevelTask, reason)
}

func (e *Engine) invalidateBranch(ctx context.Context, branchID, reason string) error {
	if err := e.repo.InvalidateCacheEntry(ctx, branchID, models.LevelBranch, reason); err != nil {
		return err
	}
	return e.repo.InvalidateDescendants(ctx, models.LevelBranch, branchID, reason)
}

func (e *Engine) invalidateProject(ctx context.Context, projectID, reason string) error {
	if err := e.repo.InvalidateCacheEntry(ctx, projectID, models.LevelProject, reason); err != nil {
		return err
	}
	return e.repo.InvalidateDescendants(ctx, models.LevelProject, projectID, reason)
}

func (e *Engine) invalidateGlobal(ctx context.Context, userID, reason string) error {
	if err := e.repo.InvalidateCacheEntry(ctx, userID, models.LevelGlobal, reason); err != nil {
		return err
	}
	return e.repo.InvalidateDescendants(ctx, models.LevelGlobal, userID, reason)
}

// Invalidate is manage_context's dedicated "invalidate" action: an
// operator or an upstream mutation outside this package (e.g. a task
// status change that doesn't touch TaskContext content but still taints
// its resolved view) can force a mark without going through UpdateSection.
func (e *Engine) Invalidate(ctx context.Context, level models.ContextLevel, contextID, reason string) error {
	switch level {
	case models.LevelTask:
		return e.invalidateTask(ctx, contextID, reason)
	case models.LevelBranch:
		return e.invalidateBranch(ctx, contextID, reason)
	case models.LevelProject:
		return e.invalidateProject(ctx, contextID, reason)
	case models.LevelGlobal:
		return e.invalidateGlobal(ctx, contextID, reason)
	default:
		return e.invalidateTask(ctx, contextID, reason)
	}
}
