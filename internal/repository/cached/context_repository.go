// Package cached wraps a repository.ContextRepository with a
// MultiLevelCache so repeated reads of the same global/project/branch/
// task context skip the database entirely until a write invalidates them
// (spec §4.3.b). This is the "cache-wrapping decorator satisfying the
// same contract" DESIGN.md calls for, grounded on the teacher's
// cache-aside usage in teacher_ref/core/context_manager.go.
package cached

import (
	"context"
	"fmt"

	"github.com/devmesh-org/taskmesh/internal/cache"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
)

// ContextRepository decorates a repository.ContextRepository. Every read
// checks the cache first; every successful write invalidates (rather
// than updates) the corresponding entry, so the next read repopulates it
// from the source of truth.
type ContextRepository struct {
	inner repository.ContextRepository
	cache *cache.MultiLevelCache
}

// New wraps inner with cache.
func New(inner repository.ContextRepository, c *cache.MultiLevelCache) *ContextRepository {
	return &ContextRepository{inner: inner, cache: c}
}

func globalKey(userID string) string { return fmt.Sprintf("ctx:global:%s", userID) }
func projectKey(projectID, userID string) string {
	return fmt.Sprintf("ctx:project:%s:%s", projectID, userID)
}
func branchKey(branchID, userID string) string {
	return fmt.Sprintf("ctx:branch:%s:%s", branchID, userID)
}
func taskKey(taskID uuid.UUID, userID string) string {
	return fmt.Sprintf("ctx:task:%s:%s", taskID, userID)
}

func (r *ContextRepository) GetGlobal(ctx context.Context, userID string) (*models.GlobalContext, error) {
	key := globalKey(userID)
	var cached models.GlobalContext
	if hit, err := r.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}
	c, err := r.inner.GetGlobal(ctx, userID)
	if err != nil {
		return nil, err
	}
	_ = r.cache.Set(ctx, key, c, 0)
	return c, nil
}

func (r *ContextRepository) UpsertGlobal(ctx context.Context, c *models.GlobalContext) error {
	if err := r.inner.UpsertGlobal(ctx, c); err != nil {
		return err
	}
	return r.cache.Delete(ctx, globalKey(c.UserID))
}

func (r *ContextRepository) GetProject(ctx context.Context, projectID, userID string) (*models.ProjectContext, error) {
	key := projectKey(projectID, userID)
	var cached models.ProjectContext
	if hit, err := r.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}
	c, err := r.inner.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	_ = r.cache.Set(ctx, key, c, 0)
	return c, nil
}

func (r *ContextRepository) UpsertProjectWithVersion(ctx context.Context, c *models.ProjectContext, expectedVersion int) error {
	if err := r.inner.UpsertProjectWithVersion(ctx, c, expectedVersion); err != nil {
		return err
	}
	return r.cache.Delete(ctx, projectKey(c.ProjectID, c.UserID))
}

func (r *ContextRepository) GetBranch(ctx context.Context, branchID, userID string) (*models.BranchContext, error) {
	key := branchKey(branchID, userID)
	var cached models.BranchContext
	if hit, err := r.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}
	c, err := r.inner.GetBranch(ctx, branchID, userID)
	if err != nil {
		return nil, err
	}
	_ = r.cache.Set(ctx, key, c, 0)
	return c, nil
}

func (r *ContextRepository) UpsertBranchWithVersion(ctx context.Context, c *models.BranchContext, expectedVersion int) error {
	if err := r.inner.UpsertBranchWithVersion(ctx, c, expectedVersion); err != nil {
		return err
	}
	return r.cache.Delete(ctx, branchKey(c.BranchID, c.UserID))
}

func (r *ContextRepository) GetTask(ctx context.Context, taskID uuid.UUID, userID string) (*models.TaskContext, error) {
	key := taskKey(taskID, userID)
	var cached models.TaskContext
	if hit, err := r.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}
	c, err := r.inner.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	_ = r.cache.Set(ctx, key, c, 0)
	return c, nil
}

func (r *ContextRepository) UpsertTaskWithVersion(ctx context.Context, c *models.TaskContext, expectedVersion int) error {
	if err := r.inner.UpsertTaskWithVersion(ctx, c, expectedVersion); err != nil {
		return err
	}
	return r.cache.Delete(ctx, taskKey(c.TaskID, c.UserID))
}

// Delegation and inheritance-cache-table operations pass straight
// through: delegations are always read fresh (spec §4.3.d expects
// up-to-date pending queues), and the inheritance cache *is* the cache —
// wrapping it again would be circular.

func (r *ContextRepository) CreateDelegation(ctx context.Context, d *models.ContextDelegation) error {
	return r.inner.CreateDelegation(ctx, d)
}

func (r *ContextRepository) ListPendingDelegations(ctx context.Context, targetLevel models.ContextLevel, targetID string) ([]*models.ContextDelegation, error) {
	return r.inner.ListPendingDelegations(ctx, targetLevel, targetID)
}

func (r *ContextRepository) UpdateDelegation(ctx context.Context, d *models.ContextDelegation) error {
	return r.inner.UpdateDelegation(ctx, d)
}

func (r *ContextRepository) GetCacheEntry(ctx context.Context, contextID string, level models.ContextLevel) (*models.ContextInheritanceCache, error) {
	return r.inner.GetCacheEntry(ctx, contextID, level)
}

func (r *ContextRepository) PutCacheEntry(ctx context.Context, entry *models.ContextInheritanceCache) error {
	return r.inner.PutCacheEntry(ctx, entry)
}

func (r *ContextRepository) InvalidateCacheEntry(ctx context.Context, contextID string, level models.ContextLevel, reason string) error {
	return r.inner.InvalidateCacheEntry(ctx, contextID, level, reason)
}

func (r *ContextRepository) InvalidateDescendants(ctx context.Context, level models.ContextLevel, id string, reason string) error {
	return r.inner.InvalidateDescendants(ctx, level, id, reason)
}

var _ repository.ContextRepository = (*ContextRepository)(nil)
