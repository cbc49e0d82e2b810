package context

import (
	"context"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
)

const maxWriteAttempts = 3

// UpdateSection deep-merges data into the named section of the context
// row at (level, contextID), creating the row on first write, and
// cascades the invalidation the new version requires (spec §4.3.c).
// parentID is the owning entity's immediate parent id (the project for a
// branch, the branch for a task); it seeds navigation on first write and
// is ignored once the row already exists.
func (e *Engine) UpdateSection(ctx context.Context, level models.ContextLevel, contextID, parentID, userID, section string, data models.JSONMap) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		err := e.mutateSections(ctx, level, contextID, parentID, userID, func(sections map[string]models.JSONMap) {
			sections[section] = models.DeepMergeSection(sections[section], data)
		})
		if err == repository.ErrOptimisticLock {
			continue
		}
		return err
	}
	return apperrors.Conflict("context %s/%s: too many concurrent updates, retry", level, contextID)
}

// AddProgress appends a timestamped entry to the named section's
// "entries" array — an append, distinct from UpdateSection's whole-value
// merge, backing manage_context's "add-progress" action.
func (e *Engine) AddProgress(ctx context.Context, level models.ContextLevel, contextID, parentID, userID, section string, entry models.JSONMap) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		err := e.mutateSections(ctx, level, contextID, parentID, userID, func(sections map[string]models.JSONMap) {
			cur := sections[section]
			if cur == nil {
				cur = models.JSONMap{}
			}
			list, _ := cur["entries"].([]interface{})
			cur["entries"] = append(list, map[string]interface{}(entry))
			sections[section] = cur
		})
		if err == repository.ErrOptimisticLock {
			continue
		}
		return err
	}
	return apperrors.Conflict("context %s/%s: too many concurrent updates, retry", level, contextID)
}

// mutateSections loads (or initializes) the row at (level, contextID),
// applies mutate to a name->section view, writes every section back to
// its typed field, and upserts with the version that was read (0 for a
// brand-new row, so the first write is an INSERT).
func (e *Engine) mutateSections(ctx context.Context, level models.ContextLevel, contextID, parentID, userID string, mutate func(map[string]models.JSONMap)) error {
	switch level {
	case models.LevelGlobal:
		c, err := e.repo.GetGlobal(ctx, userID)
		if err != nil {
			if apperrors.CodeOf(err) != apperrors.CodeNotFound {
				return err
			}
			c = &models.GlobalContext{ID: models.NewID(), UserID: userID}
		}
		sections := c.SectionValues()
		mutate(sections)
		c.OrganizationStandards = sections["organization_standards"]
		c.SecurityPolicies = sections["security_policies"]
		c.ComplianceRequirements = sections["compliance_requirements"]
		c.SharedResources = sections["shared_resources"]
		c.ReusablePatterns = sections["reusable_patterns"]
		c.GlobalPreferences = sections["global_preferences"]
		c.DelegationRules = sections["delegation_rules"]
		c.Touch()
		if err := e.repo.UpsertGlobal(ctx, c); err != nil {
			return err
		}
		return e.invalidateGlobal(ctx, userID, "global context updated")

	case models.LevelProject:
		c, err := e.repo.GetProject(ctx, contextID, userID)
		expectedVersion := 0
		if err != nil {
			if apperrors.CodeOf(err) != apperrors.CodeNotFound {
				return err
			}
			c = &models.ProjectContext{ID: models.NewID(), ProjectID: contextID, UserID: userID}
			if parentID != "" {
				if pid, perr := uuid.Parse(parentID); perr == nil {
					c.ParentGlobalID = pid
				}
			}
		} else {
			expectedVersion = c.Version
		}
		sections := c.SectionValues()
		mutate(sections)
		c.ProjectInfo = sections["project_info"]
		c.TeamPreferences = sections["team_preferences"]
		c.TechnologyStack = sections["technology_stack"]
		c.ProjectWorkflow = sections["project_workflow"]
		c.LocalStandards = sections["local_standards"]
		c.ProjectSettings = sections["project_settings"]
		c.TechnicalSpecifications = sections["technical_specifications"]
		c.GlobalOverrides = sections["global_overrides"]
		c.DelegationRules = sections["delegation_rules"]
		c.Touch()
		if err := e.repo.UpsertProjectWithVersion(ctx, c, expectedVersion); err != nil {
			return err
		}
		return e.invalidateProject(ctx, contextID, "project context updated")

	case models.LevelBranch:
		c, err := e.repo.GetBranch(ctx, contextID, userID)
		expectedVersion := 0
		if err != nil {
			if apperrors.CodeOf(err) != apperrors.CodeNotFound {
				return err
			}
			c = &models.BranchContext{ID: models.NewID(), BranchID: contextID, UserID: userID}
			if pid, perr := uuid.Parse(parentID); perr == nil {
				c.ParentProjectID = pid
			}
		} else {
			expectedVersion = c.Version
		}
		sections := c.SectionValues()
		mutate(sections)
		c.BranchInfo = sections["branch_info"]
		c.BranchWorkflow = sections["branch_workflow"]
		c.FeatureFlags = sections["feature_flags"]
		c.DiscoveredPatterns = sections["discovered_patterns"]
		c.BranchDecisions = sections["branch_decisions"]
		c.ActivePatterns = sections["active_patterns"]
		c.LocalOverrides = sections["local_overrides"]
		c.DelegationRules = sections["delegation_rules"]
		c.Touch()
		if err := e.repo.UpsertBranchWithVersion(ctx, c, expectedVersion); err != nil {
			return err
		}
		return e.invalidateBranch(ctx, contextID, "branch context updated")

	case models.LevelTask:
		taskID, err := uuid.Parse(contextID)
		if err != nil {
			return apperrors.Validation("task_id", "invalid task id %q", contextID)
		}
		c, err := e.repo.GetTask(ctx, taskID, userID)
		expectedVersion := 0
		if err != nil {
			if apperrors.CodeOf(err) != apperrors.CodeNotFound {
				return err
			}
			c = &models.TaskContext{ID: models.NewID(), TaskID: taskID, UserID: userID, ParentBranchID: parentID}
		} else {
			expectedVersion = c.Version
		}
		sections := c.SectionValues()
		mutate(sections)
		c.TaskData = sections["task_data"]
		c.ExecutionContext = sections["execution_context"]
		c.DiscoveredPatterns = sections["discovered_patterns"]
		c.ImplementationNotes = sections["implementation_notes"]
		c.TestResults = sections["test_results"]
		c.Blockers = sections["blockers"]
		c.LocalDecisions = sections["local_decisions"]
		c.DelegationQueue = sections["delegation_queue"]
		c.LocalOverrides = sections["local_overrides"]
		c.DelegationTriggers = sections["delegation_triggers"]
		c.Touch()
		if err := e.repo.UpsertTaskWithVersion(ctx, c, expectedVersion); err != nil {
			return err
		}
		return e.invalidateTask(ctx, contextID, "task context updated")

	default:
		return apperrors.Validation("level", "unknown context level %q", level)
	}
}
