package context

import (
	"context"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

// Delegate records a proposed cross-level write (spec §4.3.d). It never
// mutates the target itself: manual delegations wait for an operator's
// ApproveDelegation/RejectDelegation call, and so do auto_pattern/
// auto_threshold ones — the core's job ends at recording the trigger
// type and the detector's proposed data, not running the detector or
// deciding when its confidence clears a bar (that decision is a pluggable
// concern the spec explicitly keeps out of core scope).
func (e *Engine) Delegate(ctx context.Context, sourceLevel models.ContextLevel, sourceID string, targetLevel models.ContextLevel, targetID string, data models.JSONMap, reason string, trigger models.DelegationTrigger, confidence float64) (*models.ContextDelegation, error) {
	d := models.NewContextDelegation(sourceLevel, sourceID, targetLevel, targetID, data, reason, trigger, confidence)
	if err := e.repo.CreateDelegation(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ListPendingDelegations lists unprocessed delegations targeting a level/id.
func (e *Engine) ListPendingDelegations(ctx context.Context, targetLevel models.ContextLevel, targetID string) ([]*models.ContextDelegation, error) {
	return e.repo.ListPendingDelegations(ctx, targetLevel, targetID)
}

// ApproveDelegation merges delegated_data into the target level's
// sections (each top-level key of delegated_data is itself a section
// name) using the same deep-merge rule resolution uses, then marks the
// delegation processed+approved (spec §4.3.d). Merging through
// mutateSections also performs the invalidation writing that level
// already requires (spec §4.3.c) — an upward delegation's target is a
// branch/project/global, whose own write path already cascades to every
// descendant, satisfying "approved delegations that promote data to a
// higher level must invalidate the relevant subtree" without a separate
// step. parentID seeds navigation if the target's context row does not
// exist yet (see UpdateSection).
func (e *Engine) ApproveDelegation(ctx context.Context, d *models.ContextDelegation, parentID, userID string) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		err := e.mutateSections(ctx, d.TargetLevel, d.TargetID, parentID, userID, func(sections map[string]models.JSONMap) {
			for name, val := range d.DelegatedData {
				switch m := val.(type) {
				case models.JSONMap:
					sections[name] = models.DeepMergeSection(sections[name], m)
				case map[string]interface{}:
					sections[name] = models.DeepMergeSection(sections[name], models.JSONMap(m))
				}
			}
		})
		if err == repository.ErrOptimisticLock {
			continue
		}
		if err != nil {
			return err
		}
		d.Approve()
		return e.repo.UpdateDelegation(ctx, d)
	}
	return apperrors.Conflict("delegation %s: too many concurrent updates, retry", d.ID)
}

// RejectDelegation marks a delegation processed without merging it.
func (e *Engine) RejectDelegation(ctx context.Context, d *models.ContextDelegation) error {
	d.Reject()
	return e.repo.UpdateDelegation(ctx, d)
}
