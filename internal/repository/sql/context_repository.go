package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// ContextRepository implements repository.ContextRepository across the
// four inheritance levels plus delegations and the resolved-chain cache
// (spec §3, §4.3). Grounded on the same CRUD + optimistic-locking shape
// as TaskRepository, since every mutable level shares the same
// version-guarded upsert pattern the context engine's retry loop expects
// (spec §4.3.b: "bounded 3 attempts").
type ContextRepository struct {
	BaseRepository
}

func NewContextRepository(cfg Config) *ContextRepository {
	return &ContextRepository{BaseRepository: newBase(cfg)}
}

const globalContextColumns = `id, user_id, organization_standards, security_policies,
	compliance_requirements, shared_resources, reusable_patterns, global_preferences,
	delegation_rules, nested_structure, version, created_at, updated_at`

func (r *ContextRepository) GetGlobal(ctx context.Context, userID string) (*models.GlobalContext, error) {
	ctx, span := r.tracer(ctx, "ContextRepository.GetGlobal")
	defer span.End()
	var c models.GlobalContext
	query := r.rebind(`SELECT ` + globalContextColumns + ` FROM global_contexts WHERE user_id = ?`)
	if err := sqlx.GetContext(ctx, r.conn(), &c, query, userID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("global_context", userID)
		}
		return nil, errors.Wrap(err, "get global context")
	}
	return &c, nil
}

func (r *ContextRepository) UpsertGlobal(ctx context.Context, c *models.GlobalContext) error {
	ctx, span := r.tracer(ctx, "ContextRepository.UpsertGlobal")
	defer span.End()
	c.Version++
	query := r.rebind(`INSERT INTO global_contexts (` + globalContextColumns + `) VALUES
		(?,?,?,?,?,?,?,?,?,?,?,?,?) ` + r.onConflictUpdate("user_id", `
		organization_standards=excluded.organization_standards, security_policies=excluded.security_policies,
		compliance_requirements=excluded.compliance_requirements, shared_resources=excluded.shared_resources,
		reusable_patterns=excluded.reusable_patterns, global_preferences=excluded.global_preferences,
		delegation_rules=excluded.delegation_rules, nested_structure=excluded.nested_structure,
		version=excluded.version, updated_at=excluded.updated_at`))
	_, err := r.conn().ExecContext(ctx, query,
		c.ID, c.UserID, c.OrganizationStandards, c.SecurityPolicies, c.ComplianceRequirements,
		c.SharedResources, c.ReusablePatterns, c.GlobalPreferences, c.DelegationRules,
		c.NestedStructure, c.Version, c.CreatedAt, c.UpdatedAt)
	return errors.Wrap(err, "upsert global context")
}

const projectContextColumns = `id, project_id, parent_global_id, user_id, project_info,
	team_preferences, technology_stack, project_workflow, local_standards, project_settings,
	technical_specifications, global_overrides, delegation_rules, inheritance_disabled,
	version, created_at, updated_at`

func (r *ContextRepository) GetProject(ctx context.Context, projectID, userID string) (*models.ProjectContext, error) {
	ctx, span := r.tracer(ctx, "ContextRepository.GetProject")
	defer span.End()
	var c models.ProjectContext
	query := r.rebind(`SELECT ` + projectContextColumns + ` FROM project_contexts WHERE project_id = ? AND user_id = ?`)
	if err := sqlx.GetContext(ctx, r.conn(), &c, query, projectID, userID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("project_context", projectID)
		}
		return nil, errors.Wrap(err, "get project context")
	}
	return &c, nil
}

// UpsertProjectWithVersion performs the optimistic-locking write the
// context engine's retry loop expects (spec §4.3.b): affecting zero rows
// means a concurrent writer won the race.
func (r *ContextRepository) UpsertProjectWithVersion(ctx context.Context, c *models.ProjectContext, expectedVersion int) error {
	ctx, span := r.tracer(ctx, "ContextRepository.UpsertProjectWithVersion")
	defer span.End()

	if expectedVersion == 0 {
		c.Version = 1
		query := r.rebind(`INSERT INTO project_contexts (` + projectContextColumns + `) VALUES
			(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
		_, err := r.conn().ExecContext(ctx, query,
			c.ID, c.ProjectID, c.ParentGlobalID, c.UserID, c.ProjectInfo, c.TeamPreferences,
			c.TechnologyStack, c.ProjectWorkflow, c.LocalStandards, c.ProjectSettings,
			c.TechnicalSpecifications, c.GlobalOverrides, c.DelegationRules,
			c.InheritanceDisabled, c.Version, c.CreatedAt, c.UpdatedAt)
		return errors.Wrap(err, "insert project context")
	}

	c.Version = expectedVersion + 1
	query := r.rebind(`UPDATE project_contexts SET project_info=?, team_preferences=?,
		technology_stack=?, project_workflow=?, local_standards=?, project_settings=?,
		technical_specifications=?, global_overrides=?, delegation_rules=?,
		inheritance_disabled=?, version=?, updated_at=?
		WHERE id=? AND version=?`)
	res, err := r.conn().ExecContext(ctx, query,
		c.ProjectInfo, c.TeamPreferences, c.TechnologyStack, c.ProjectWorkflow, c.LocalStandards,
		c.ProjectSettings, c.TechnicalSpecifications, c.GlobalOverrides, c.DelegationRules,
		c.InheritanceDisabled, c.Version, c.UpdatedAt, c.ID, expectedVersion)
	if err != nil {
		return errors.Wrap(err, "update project context")
	}
	return checkVersionedUpdate(res)
}

const branchContextColumns = `id, branch_id, parent_project_id, user_id, branch_info,
	branch_workflow, feature_flags, discovered_patterns, branch_decisions, active_patterns,
	local_overrides, delegation_rules, inheritance_disabled, version, created_at, updated_at`

func (r *ContextRepository) GetBranch(ctx context.Context, branchID, userID string) (*models.BranchContext, error) {
	ctx, span := r.tracer(ctx, "ContextRepository.GetBranch")
	defer span.End()
	var c models.BranchContext
	query := r.rebind(`SELECT ` + branchContextColumns + ` FROM branch_contexts WHERE branch_id = ? AND user_id = ?`)
	if err := sqlx.GetContext(ctx, r.conn(), &c, query, branchID, userID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("branch_context", branchID)
		}
		return nil, errors.Wrap(err, "get branch context")
	}
	return &c, nil
}

func (r *ContextRepository) UpsertBranchWithVersion(ctx context.Context, c *models.BranchContext, expectedVersion int) error {
	ctx, span := r.tracer(ctx, "ContextRepository.UpsertBranchWithVersion")
	defer span.End()

	if expectedVersion == 0 {
		c.Version = 1
		query := r.rebind(`INSERT INTO branch_contexts (` + branchContextColumns + `) VALUES
			(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
		_, err := r.conn().ExecContext(ctx, query,
			c.ID, c.BranchID, c.ParentProjectID, c.UserID, c.BranchInfo, c.BranchWorkflow,
			c.FeatureFlags, c.DiscoveredPatterns, c.BranchDecisions, c.ActivePatterns,
			c.LocalOverrides, c.DelegationRules, c.InheritanceDisabled, c.Version, c.CreatedAt, c.UpdatedAt)
		return errors.Wrap(err, "insert branch context")
	}

	c.Version = expectedVersion + 1
	query := r.rebind(`UPDATE branch_contexts SET branch_info=?, branch_workflow=?,
		feature_flags=?, discovered_patterns=?, branch_decisions=?, active_patterns=?,
		local_overrides=?, delegation_rules=?, inheritance_disabled=?, version=?, updated_at=?
		WHERE id=? AND version=?`)
	res, err := r.conn().ExecContext(ctx, query,
		c.BranchInfo, c.BranchWorkflow, c.FeatureFlags, c.DiscoveredPatterns, c.BranchDecisions,
		c.ActivePatterns, c.LocalOverrides, c.DelegationRules, c.InheritanceDisabled,
		c.Version, c.UpdatedAt, c.ID, expectedVersion)
	if err != nil {
		return errors.Wrap(err, "update branch context")
	}
	return checkVersionedUpdate(res)
}

const taskContextColumns = `id, task_id, parent_branch_id, parent_branch_context_id, user_id,
	task_data, execution_context, discovered_patterns, implementation_notes, test_results,
	blockers, local_decisions, delegation_queue, local_overrides, delegation_triggers,
	inheritance_disabled, force_local_only, version, created_at, updated_at`

func (r *ContextRepository) GetTask(ctx context.Context, taskID uuid.UUID, userID string) (*models.TaskContext, error) {
	ctx, span := r.tracer(ctx, "ContextRepository.GetTask")
	defer span.End()
	var c models.TaskContext
	query := r.rebind(`SELECT ` + taskContextColumns + ` FROM task_contexts WHERE task_id = ? AND user_id = ?`)
	if err := sqlx.GetContext(ctx, r.conn(), &c, query, taskID, userID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("task_context", taskID.String())
		}
		return nil, errors.Wrap(err, "get task context")
	}
	return &c, nil
}

func (r *ContextRepository) UpsertTaskWithVersion(ctx context.Context, c *models.TaskContext, expectedVersion int) error {
	ctx, span := r.tracer(ctx, "ContextRepository.UpsertTaskWithVersion")
	defer span.End()

	if expectedVersion == 0 {
		c.Version = 1
		query := r.rebind(`INSERT INTO task_contexts (` + taskContextColumns + `) VALUES
			(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
		_, err := r.conn().ExecContext(ctx, query,
			c.ID, c.TaskID, c.ParentBranchID, c.ParentBranchContextID, c.UserID, c.TaskData,
			c.ExecutionContext, c.DiscoveredPatterns, c.ImplementationNotes, c.TestResults,
			c.Blockers, c.LocalDecisions, c.DelegationQueue, c.LocalOverrides, c.DelegationTriggers,
			c.InheritanceDisabled, c.ForceLocalOnly, c.Version, c.CreatedAt, c.UpdatedAt)
		return errors.Wrap(err, "insert task context")
	}

	c.Version = expectedVersion + 1
	query := r.rebind(`UPDATE task_contexts SET task_data=?, execution_context=?,
		discovered_patterns=?, implementation_notes=?, test_results=?, blockers=?,
		local_decisions=?, delegation_queue=?, local_overrides=?, delegation_triggers=?,
		inheritance_disabled=?, force_local_only=?, version=?, updated_at=?
		WHERE id=? AND version=?`)
	res, err := r.conn().ExecContext(ctx, query,
		c.TaskData, c.ExecutionContext, c.DiscoveredPatterns, c.ImplementationNotes, c.TestResults,
		c.Blockers, c.LocalDecisions, c.DelegationQueue, c.LocalOverrides, c.DelegationTriggers,
		c.InheritanceDisabled, c.ForceLocalOnly, c.Version, c.UpdatedAt, c.ID, expectedVersion)
	if err != nil {
		return errors.Wrap(err, "update task context")
	}
	return checkVersionedUpdate(res)
}

const delegationColumns = `id, source_level, source_id, target_level, target_id, delegated_data,
	reason, trigger_type, processed, approved, confidence_score, processed_at, created_at, updated_at`

func (r *ContextRepository) CreateDelegation(ctx context.Context, d *models.ContextDelegation) error {
	ctx, span := r.tracer(ctx, "ContextRepository.CreateDelegation")
	defer span.End()
	query := r.rebind(`INSERT INTO context_delegations (` + delegationColumns + `) VALUES
		(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	_, err := r.conn().ExecContext(ctx, query,
		d.ID, d.SourceLevel, d.SourceID, d.TargetLevel, d.TargetID, d.DelegatedData,
		d.Reason, d.TriggerType, d.Processed, d.Approved, d.ConfidenceScore, d.ProcessedAt,
		d.CreatedAt, d.UpdatedAt)
	return errors.Wrap(err, "insert delegation")
}

func (r *ContextRepository) ListPendingDelegations(ctx context.Context, targetLevel models.ContextLevel, targetID string) ([]*models.ContextDelegation, error) {
	ctx, span := r.tracer(ctx, "ContextRepository.ListPendingDelegations")
	defer span.End()
	var rows []models.ContextDelegation
	query := r.rebind(`SELECT ` + delegationColumns + ` FROM context_delegations
		WHERE target_level = ? AND target_id = ? AND processed = ?`)
	if err := sqlx.SelectContext(ctx, r.conn(), &rows, query, targetLevel, targetID, false); err != nil {
		return nil, errors.Wrap(err, "list pending delegations")
	}
	out := make([]*models.ContextDelegation, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *ContextRepository) UpdateDelegation(ctx context.Context, d *models.ContextDelegation) error {
	ctx, span := r.tracer(ctx, "ContextRepository.UpdateDelegation")
	defer span.End()
	query := r.rebind(`UPDATE context_delegations SET processed=?, approved=?, processed_at=?, updated_at=? WHERE id=?`)
	_, err := r.conn().ExecContext(ctx, query, d.Processed, d.Approved, d.ProcessedAt, d.UpdatedAt, d.ID)
	return errors.Wrap(err, "update delegation")
}

const cacheColumns = `id, context_id, level, resolved_context, dependencies_hash,
	resolution_path, parent_chain_text, expires_at, hit_count, last_hit, cache_size_bytes,
	invalidated, invalidation_reason, created_at, updated_at`

// cacheRow stores ResolutionPath as JSON and ParentChain as a
// delimiter-joined string so InvalidateDescendants can match it with a
// plain LIKE, avoiding a JSON-array contains operator that SQLite lacks.
type cacheRow struct {
	models.ContextInheritanceCache
	ResolutionPathJSON []byte `db:"resolution_path"`
	ParentChainText    string `db:"parent_chain_text"`
}

func cacheToRow(entry *models.ContextInheritanceCache) (*cacheRow, error) {
	path, err := json.Marshal(entry.ResolutionPath)
	if err != nil {
		return nil, err
	}
	return &cacheRow{
		ContextInheritanceCache: *entry,
		ResolutionPathJSON:      path,
		ParentChainText:         "|" + strings.Join(entry.ParentChain, "|") + "|",
	}, nil
}

func (r *cacheRow) toModel() (*models.ContextInheritanceCache, error) {
	c := r.ContextInheritanceCache
	if len(r.ResolutionPathJSON) > 0 {
		if err := json.Unmarshal(r.ResolutionPathJSON, &c.ResolutionPath); err != nil {
			return nil, err
		}
	}
	c.ParentChain = strings.Split(strings.Trim(r.ParentChainText, "|"), "|")
	return &c, nil
}

func (r *ContextRepository) GetCacheEntry(ctx context.Context, contextID string, level models.ContextLevel) (*models.ContextInheritanceCache, error) {
	ctx, span := r.tracer(ctx, "ContextRepository.GetCacheEntry")
	defer span.End()
	var row cacheRow
	query := r.rebind(`SELECT ` + cacheColumns + ` FROM context_inheritance_cache WHERE context_id = ? AND level = ?`)
	if err := sqlx.GetContext(ctx, r.conn(), &row, query, contextID, level); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("context_inheritance_cache", contextID)
		}
		return nil, errors.Wrap(err, "get cache entry")
	}
	return row.toModel()
}

func (r *ContextRepository) PutCacheEntry(ctx context.Context, entry *models.ContextInheritanceCache) error {
	ctx, span := r.tracer(ctx, "ContextRepository.PutCacheEntry")
	defer span.End()
	row, err := cacheToRow(entry)
	if err != nil {
		return errors.Wrap(err, "marshal cache entry")
	}
	query := r.rebind(`INSERT INTO context_inheritance_cache (` + cacheColumns + `) VALUES
		(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?) ` + r.onConflictUpdate("context_id, level", `
		resolved_context=excluded.resolved_context, dependencies_hash=excluded.dependencies_hash,
		resolution_path=excluded.resolution_path, parent_chain_text=excluded.parent_chain_text,
		expires_at=excluded.expires_at, hit_count=excluded.hit_count, last_hit=excluded.last_hit,
		cache_size_bytes=excluded.cache_size_bytes, invalidated=excluded.invalidated,
		invalidation_reason=excluded.invalidation_reason, updated_at=excluded.updated_at`))
	_, err = r.conn().ExecContext(ctx, query,
		row.ID, row.ContextID, row.Level, row.ResolvedContext, row.DependenciesHash,
		row.ResolutionPathJSON, row.ParentChainText, row.ExpiresAt, row.HitCount, row.LastHit,
		row.CacheSizeBytes, row.Invalidated, row.InvalidationReason, row.CreatedAt, row.UpdatedAt)
	return errors.Wrap(err, "put cache entry")
}

func (r *ContextRepository) InvalidateCacheEntry(ctx context.Context, contextID string, level models.ContextLevel, reason string) error {
	ctx, span := r.tracer(ctx, "ContextRepository.InvalidateCacheEntry")
	defer span.End()
	query := r.rebind(`UPDATE context_inheritance_cache SET invalidated = ?, invalidation_reason = ?, updated_at = ?
		WHERE context_id = ? AND level = ?`)
	_, err := r.conn().ExecContext(ctx, query, true, reason, time.Now().UTC(), contextID, level)
	return errors.Wrap(err, "invalidate cache entry")
}

// InvalidateDescendants implements the cascade rule of spec §4.3.c: when
// an ancestor's version changes, every cache entry resolved through it
// must be invalidated too. Descendant identification is left to the
// caller's resolution_path/parent_chain bookkeeping (the context
// engine); this performs a LIKE match over the parent_chain_text column,
// which holds the parent chain as a "|"-joined string.
func (r *ContextRepository) InvalidateDescendants(ctx context.Context, level models.ContextLevel, id string, reason string) error {
	ctx, span := r.tracer(ctx, "ContextRepository.InvalidateDescendants")
	defer span.End()
	query := r.rebind(`UPDATE context_inheritance_cache SET invalidated = ?, invalidation_reason = ?, updated_at = ?
		WHERE parent_chain_text LIKE ?`)
	_, err := r.conn().ExecContext(ctx, query, true, reason, time.Now().UTC(), "%"+string(level)+":"+id+"%")
	return errors.Wrap(err, "invalidate descendant cache entries")
}

func checkVersionedUpdate(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return repository.ErrOptimisticLock
	}
	return nil
}
