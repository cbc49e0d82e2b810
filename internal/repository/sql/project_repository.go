package sql

import (
	"context"
	"encoding/json"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// ProjectRepository implements repository.ProjectRepository. The
// aggregate's collections (branches, agents, assignments, cross-tree
// deps, resource locks) live in their own tables keyed by project_id
// rather than as JSON blobs on the project row, so the kernel's
// per-branch/per-agent queries stay index-backed (spec §9: ids
// sideways, no back-pointers, but that doesn't mean no normalization).
type ProjectRepository struct {
	BaseRepository
}

func NewProjectRepository(cfg Config) *ProjectRepository {
	return &ProjectRepository{BaseRepository: newBase(cfg)}
}

const projectColumns = `id, tenant_id, name, description, status, metadata, created_at, updated_at`

func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.Create")
	defer span.End()
	query := r.rebind(`INSERT INTO projects (` + projectColumns + `) VALUES (?,?,?,?,?,?,?,?)`)
	_, err := r.conn().ExecContext(ctx, query, p.ID, p.TenantID, p.Name, p.Description, p.Status, p.Metadata, p.CreatedAt, p.UpdatedAt)
	return errors.Wrap(err, "insert project")
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	ctx, span := r.tracer(ctx, "ProjectRepository.Get")
	defer span.End()

	var p models.Project
	query := r.rebind(`SELECT ` + projectColumns + ` FROM projects WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.conn(), &p, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("project", id)
		}
		return nil, errors.Wrap(err, "get project")
	}

	if err := r.hydrate(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// hydrate fills in the project's collections from their side tables.
func (r *ProjectRepository) hydrate(ctx context.Context, p *models.Project) error {
	p.Branches = map[string]*models.GitBranch{}
	p.Agents = map[string]*models.Agent{}
	p.Assignments = map[string]string{}
	p.Sessions = map[string]*models.WorkSession{}

	branches, err := r.listBranches(ctx, p.ID)
	if err != nil {
		return err
	}
	for _, b := range branches {
		p.Branches[b.ID] = b
		if b.AssignedAgentID != nil {
			p.Assignments[b.ID] = *b.AssignedAgentID
		}
	}

	agents, err := r.ListAgents(ctx, p.ID)
	if err != nil {
		return err
	}
	for _, a := range agents {
		p.Agents[a.ID] = a
	}

	deps, err := r.GetCrossTreeDependencies(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CrossTreeDeps = deps

	locks, err := r.GetResourceLocks(ctx, p.ID)
	if err != nil {
		return err
	}
	p.ResourceLocks = locks
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.Update")
	defer span.End()
	query := r.rebind(`UPDATE projects SET name=?, description=?, status=?, metadata=?, updated_at=? WHERE id=?`)
	_, err := r.conn().ExecContext(ctx, query, p.Name, p.Description, p.Status, p.Metadata, p.UpdatedAt, p.ID)
	return errors.Wrap(err, "update project")
}

// Delete requires the caller (kernel) to have already enforced the
// project-deletion safety rule (spec §4.1.b: no branches, or a single empty
// branch named main, unless force=true); this method just performs the cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.Delete")
	defer span.End()
	return r.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM resource_locks WHERE project_id = ?`,
			`DELETE FROM cross_tree_deps WHERE project_id = ?`,
			`DELETE FROM branches WHERE project_id = ?`,
			`DELETE FROM agents WHERE project_id = ?`,
			`DELETE FROM projects WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, r.rebind(stmt), id); err != nil {
				return errors.Wrapf(err, "cascade delete: %s", stmt)
			}
		}
		return nil
	})
}

func (r *ProjectRepository) List(ctx context.Context, tenantID string) ([]*models.Project, error) {
	ctx, span := r.tracer(ctx, "ProjectRepository.List")
	defer span.End()
	var rows []models.Project
	query := r.rebind(`SELECT ` + projectColumns + ` FROM projects WHERE tenant_id = ? ORDER BY created_at DESC`)
	if err := sqlx.SelectContext(ctx, r.conn(), &rows, query, tenantID); err != nil {
		return nil, errors.Wrap(err, "list projects")
	}
	out := make([]*models.Project, len(rows))
	for i := range rows {
		out[i] = &rows[i]
		if err := r.hydrate(ctx, out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

const branchColumns = `id, project_id, name, description, assigned_agent_id, status,
	task_count, completed_task_count, created_at, updated_at`

func (r *ProjectRepository) listBranches(ctx context.Context, projectID string) ([]*models.GitBranch, error) {
	var rows []branchRow
	query := r.rebind(`SELECT ` + branchColumns + `, task_ids FROM branches WHERE project_id = ?`)
	if err := sqlx.SelectContext(ctx, r.conn(), &rows, query, projectID); err != nil {
		return nil, errors.Wrap(err, "list branches")
	}
	out := make([]*models.GitBranch, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

type branchRow struct {
	models.GitBranch
	TaskIDsJSON []byte `db:"task_ids"`
}

func (r *branchRow) toModel() (*models.GitBranch, error) {
	b := r.GitBranch
	if len(r.TaskIDsJSON) > 0 {
		if err := json.Unmarshal(r.TaskIDsJSON, &b.TaskIDs); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

func (r *ProjectRepository) AddBranch(ctx context.Context, projectID string, b *models.GitBranch) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.AddBranch")
	defer span.End()
	taskIDs, err := json.Marshal(b.TaskIDs)
	if err != nil {
		return err
	}
	query := r.rebind(`INSERT INTO branches (` + branchColumns + `, task_ids) VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	_, err = r.conn().ExecContext(ctx, query,
		b.ID, projectID, b.Name, b.Description, b.AssignedAgentID, b.Status,
		b.TaskCount, b.CompletedTaskCount, b.CreatedAt, b.UpdatedAt, taskIDs)
	return errors.Wrap(err, "insert branch")
}

func (r *ProjectRepository) UpdateBranch(ctx context.Context, b *models.GitBranch) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.UpdateBranch")
	defer span.End()
	taskIDs, err := json.Marshal(b.TaskIDs)
	if err != nil {
		return err
	}
	query := r.rebind(`UPDATE branches SET name=?, description=?, assigned_agent_id=?, status=?,
		task_count=?, completed_task_count=?, updated_at=?, task_ids=? WHERE id=?`)
	_, err = r.conn().ExecContext(ctx, query,
		b.Name, b.Description, b.AssignedAgentID, b.Status, b.TaskCount, b.CompletedTaskCount,
		b.UpdatedAt, taskIDs, b.ID)
	return errors.Wrap(err, "update branch")
}

func (r *ProjectRepository) DeleteBranch(ctx context.Context, branchID string) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.DeleteBranch")
	defer span.End()
	_, err := r.conn().ExecContext(ctx, r.rebind(`DELETE FROM branches WHERE id = ?`), branchID)
	return errors.Wrap(err, "delete branch")
}

const agentColumns = `id, project_id, name, status, preferred_languages, priority_preference,
	workload_percentage, created_at, updated_at`

type agentRow struct {
	models.Agent
	CapabilitiesJSON       []byte `db:"capabilities"`
	PreferredLanguagesJSON []byte `db:"preferred_languages"`
	ActiveTasksJSON        []byte `db:"active_task_ids"`
}

func agentToRow(projectID string, a *models.Agent) (*agentRow, error) {
	caps := make([]string, 0, len(a.Capabilities))
	for c := range a.Capabilities {
		caps = append(caps, string(c))
	}
	capsJSON, err := json.Marshal(caps)
	if err != nil {
		return nil, err
	}
	langsJSON, err := json.Marshal(a.PreferredLanguages)
	if err != nil {
		return nil, err
	}
	tasksJSON, err := json.Marshal(a.ActiveTasks)
	if err != nil {
		return nil, err
	}
	row := &agentRow{Agent: *a, CapabilitiesJSON: capsJSON, PreferredLanguagesJSON: langsJSON, ActiveTasksJSON: tasksJSON}
	row.ProjectID = projectID
	return row, nil
}

func (r *agentRow) toModel() (*models.Agent, error) {
	a := r.Agent
	var caps []string
	if len(r.CapabilitiesJSON) > 0 {
		if err := json.Unmarshal(r.CapabilitiesJSON, &caps); err != nil {
			return nil, err
		}
	}
	a.Capabilities = make(map[models.Capability]bool, len(caps))
	for _, c := range caps {
		a.Capabilities[models.Capability(c)] = true
	}
	if len(r.PreferredLanguagesJSON) > 0 {
		if err := json.Unmarshal(r.PreferredLanguagesJSON, &a.PreferredLanguages); err != nil {
			return nil, err
		}
	}
	if len(r.ActiveTasksJSON) > 0 {
		if err := json.Unmarshal(r.ActiveTasksJSON, &a.ActiveTasks); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (r *ProjectRepository) UpsertAgent(ctx context.Context, projectID string, a *models.Agent) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.UpsertAgent")
	defer span.End()
	row, err := agentToRow(projectID, a)
	if err != nil {
		return errors.Wrap(err, "marshal agent")
	}
	query := r.rebind(`INSERT INTO agents (` + agentColumns + `, capabilities, active_task_ids) VALUES
		(?,?,?,?,?,?,?,?,?,?,?) ` +
		r.onConflictUpdate("id", `name=excluded.name, status=excluded.status,
			preferred_languages=excluded.preferred_languages, priority_preference=excluded.priority_preference,
			workload_percentage=excluded.workload_percentage, updated_at=excluded.updated_at,
			capabilities=excluded.capabilities, active_task_ids=excluded.active_task_ids`))
	_, err = r.conn().ExecContext(ctx, query,
		row.ID, row.ProjectID, row.Name, row.Status, row.PreferredLanguagesJSON, row.PriorityPreference,
		row.WorkloadPercentage, row.CreatedAt, row.UpdatedAt, row.CapabilitiesJSON, row.ActiveTasksJSON)
	return errors.Wrap(err, "upsert agent")
}

func (r *ProjectRepository) GetAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	ctx, span := r.tracer(ctx, "ProjectRepository.GetAgent")
	defer span.End()
	var row agentRow
	query := r.rebind(`SELECT ` + agentColumns + `, capabilities FROM agents WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.conn(), &row, query, agentID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("agent", agentID)
		}
		return nil, errors.Wrap(err, "get agent")
	}
	return row.toModel()
}

func (r *ProjectRepository) ListAgents(ctx context.Context, projectID string) ([]*models.Agent, error) {
	ctx, span := r.tracer(ctx, "ProjectRepository.ListAgents")
	defer span.End()
	var rows []agentRow
	query := r.rebind(`SELECT ` + agentColumns + `, capabilities, active_task_ids FROM agents WHERE project_id = ?`)
	if err := sqlx.SelectContext(ctx, r.conn(), &rows, query, projectID); err != nil {
		return nil, errors.Wrap(err, "list agents")
	}
	out := make([]*models.Agent, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *ProjectRepository) DeleteAgent(ctx context.Context, agentID string) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.DeleteAgent")
	defer span.End()
	_, err := r.conn().ExecContext(ctx, r.rebind(`UPDATE branches SET assigned_agent_id = NULL WHERE assigned_agent_id = ?`), agentID)
	if err != nil {
		return errors.Wrap(err, "clear agent's branch assignments")
	}
	_, err = r.conn().ExecContext(ctx, r.rebind(`DELETE FROM agents WHERE id = ?`), agentID)
	return errors.Wrap(err, "delete agent")
}

func (r *ProjectRepository) AssignAgentToBranch(ctx context.Context, branchID, agentID string) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.AssignAgentToBranch")
	defer span.End()
	_, err := r.conn().ExecContext(ctx, r.rebind(`UPDATE branches SET assigned_agent_id = ? WHERE id = ?`), agentID, branchID)
	return errors.Wrap(err, "assign agent to branch")
}

func (r *ProjectRepository) UnassignBranch(ctx context.Context, branchID string) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.UnassignBranch")
	defer span.End()
	_, err := r.conn().ExecContext(ctx, r.rebind(`UPDATE branches SET assigned_agent_id = NULL WHERE id = ?`), branchID)
	return errors.Wrap(err, "unassign branch")
}

func (r *ProjectRepository) AddCrossTreeDependency(ctx context.Context, projectID, dependentTaskID, prerequisiteTaskID string) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.AddCrossTreeDependency")
	defer span.End()
	query := r.rebind(`INSERT INTO cross_tree_deps (project_id, dependent_task_id, prerequisite_task_id) VALUES (?, ?, ?) ` +
		r.onConflictUpdate("project_id, dependent_task_id, prerequisite_task_id", "project_id=excluded.project_id"))
	_, err := r.conn().ExecContext(ctx, query, projectID, dependentTaskID, prerequisiteTaskID)
	return errors.Wrap(err, "add cross-tree dependency")
}

func (r *ProjectRepository) RemoveCrossTreeDependency(ctx context.Context, projectID, dependentTaskID, prerequisiteTaskID string) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.RemoveCrossTreeDependency")
	defer span.End()
	query := r.rebind(`DELETE FROM cross_tree_deps WHERE project_id = ? AND dependent_task_id = ? AND prerequisite_task_id = ?`)
	_, err := r.conn().ExecContext(ctx, query, projectID, dependentTaskID, prerequisiteTaskID)
	return errors.Wrap(err, "remove cross-tree dependency")
}

func (r *ProjectRepository) GetCrossTreeDependencies(ctx context.Context, projectID string) (map[string]map[string]bool, error) {
	ctx, span := r.tracer(ctx, "ProjectRepository.GetCrossTreeDependencies")
	defer span.End()
	rows, err := r.conn().QueryxContext(ctx, r.rebind(`SELECT dependent_task_id, prerequisite_task_id FROM cross_tree_deps WHERE project_id = ?`), projectID)
	if err != nil {
		return nil, errors.Wrap(err, "get cross-tree deps")
	}
	defer rows.Close()

	out := map[string]map[string]bool{}
	for rows.Next() {
		var dependent, prereq string
		if err := rows.Scan(&dependent, &prereq); err != nil {
			return nil, err
		}
		if out[dependent] == nil {
			out[dependent] = map[string]bool{}
		}
		out[dependent][prereq] = true
	}
	return out, rows.Err()
}

func (r *ProjectRepository) UpsertResourceLock(ctx context.Context, projectID, resourceKey, agentID string) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.UpsertResourceLock")
	defer span.End()
	query := r.rebind(`INSERT INTO resource_locks (project_id, resource_key, agent_id) VALUES (?, ?, ?) ` +
		r.onConflictUpdate("project_id, resource_key", "agent_id=excluded.agent_id"))
	_, err := r.conn().ExecContext(ctx, query, projectID, resourceKey, agentID)
	return errors.Wrap(err, "upsert resource lock")
}

func (r *ProjectRepository) ReleaseResourceLock(ctx context.Context, projectID, resourceKey string) error {
	ctx, span := r.tracer(ctx, "ProjectRepository.ReleaseResourceLock")
	defer span.End()
	query := r.rebind(`DELETE FROM resource_locks WHERE project_id = ? AND resource_key = ?`)
	_, err := r.conn().ExecContext(ctx, query, projectID, resourceKey)
	return errors.Wrap(err, "release resource lock")
}

func (r *ProjectRepository) GetResourceLocks(ctx context.Context, projectID string) (map[string]string, error) {
	ctx, span := r.tracer(ctx, "ProjectRepository.GetResourceLocks")
	defer span.End()
	rows, err := r.conn().QueryxContext(ctx, r.rebind(`SELECT resource_key, agent_id FROM resource_locks WHERE project_id = ?`), projectID)
	if err != nil {
		return nil, errors.Wrap(err, "get resource locks")
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var key, agent string
		if err := rows.Scan(&key, &agent); err != nil {
			return nil, err
		}
		out[key] = agent
	}
	return out, rows.Err()
}
