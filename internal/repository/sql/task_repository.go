package sql

import (
	"context"
	"encoding/json"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// TaskRepository implements repository.TaskRepository over sqlx, grounded
// on teacher_ref/repo_postgres/task_repository.go's CRUD + optimistic
// locking shape, trimmed to the operations SPEC_FULL.md's task engine
// actually calls.
type TaskRepository struct {
	BaseRepository
}

// NewTaskRepository constructs a TaskRepository.
func NewTaskRepository(cfg Config) *TaskRepository {
	return &TaskRepository{BaseRepository: newBase(cfg)}
}

// taskRow is the flat wire shape stored in the `tasks` table; side-table
// or JSON-column fields (assignees, labels, dependencies, subtask ids,
// and the progress timeline) are marshalled/unmarshalled at the edges.
type taskRow struct {
	models.Task
	AssigneesJSON    []byte `db:"assignees"`
	LabelsJSON       []byte `db:"labels"`
	DependenciesJSON []byte `db:"dependencies"`
	SubtaskIDsJSON   []byte `db:"subtask_ids"`
	TimelineJSON     []byte `db:"progress_timeline"`
}

func toRow(t *models.Task) (*taskRow, error) {
	r := &taskRow{Task: *t}
	var err error
	if r.AssigneesJSON, err = json.Marshal(t.Assignees); err != nil {
		return nil, err
	}
	if r.LabelsJSON, err = json.Marshal(t.Labels); err != nil {
		return nil, err
	}
	if r.DependenciesJSON, err = json.Marshal(t.Dependencies); err != nil {
		return nil, err
	}
	if r.SubtaskIDsJSON, err = json.Marshal(t.SubtaskIDs); err != nil {
		return nil, err
	}
	if r.TimelineJSON, err = json.Marshal(t.Timeline); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *taskRow) toModel() (*models.Task, error) {
	t := r.Task
	if len(r.AssigneesJSON) > 0 {
		if err := json.Unmarshal(r.AssigneesJSON, &t.Assignees); err != nil {
			return nil, err
		}
	}
	if len(r.LabelsJSON) > 0 {
		if err := json.Unmarshal(r.LabelsJSON, &t.Labels); err != nil {
			return nil, err
		}
	}
	if len(r.DependenciesJSON) > 0 {
		if err := json.Unmarshal(r.DependenciesJSON, &t.Dependencies); err != nil {
			return nil, err
		}
	}
	if len(r.SubtaskIDsJSON) > 0 {
		if err := json.Unmarshal(r.SubtaskIDsJSON, &t.SubtaskIDs); err != nil {
			return nil, err
		}
	}
	if len(r.TimelineJSON) > 0 {
		if err := json.Unmarshal(r.TimelineJSON, &t.Timeline); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

const taskColumns = `id, branch_id, tenant_id, title, description, status, priority, details,
	estimated_effort, due_date, context_id, overall_progress, progress_state,
	assignees, labels, dependencies, subtask_ids, progress_timeline,
	completion_summary, testing_notes, version, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	ctx, span := r.tracer(ctx, "TaskRepository.Create")
	defer span.End()

	row, err := toRow(t)
	if err != nil {
		return errors.Wrap(err, "marshal task")
	}

	query := r.rebind(`INSERT INTO tasks (` + taskColumns + `) VALUES (
		?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.conn().ExecContext(ctx, query,
		row.ID, row.BranchID, row.TenantID, row.Title, row.Description, row.Status, row.Priority,
		row.Details, row.EstimatedEffort, row.DueDate, row.ContextID, row.OverallProgress, row.ProgressState,
		row.AssigneesJSON, row.LabelsJSON, row.DependenciesJSON, row.SubtaskIDsJSON, row.TimelineJSON,
		row.CompletionSummary, row.TestingNotes, row.Version, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		r.metrics.IncrementCounter("task_repository_errors_total", 1)
		return errors.Wrap(err, "insert task")
	}
	return nil
}

func (r *TaskRepository) get(ctx context.Context, id uuid.UUID, forUpdate bool) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	if forUpdate && r.dialect == DialectPostgres {
		query += ` FOR UPDATE`
	}
	query = r.rebind(query)

	var row taskRow
	if err := sqlx.GetContext(ctx, r.conn(), &row, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("task", id.String())
		}
		return nil, errors.Wrap(err, "get task")
	}
	return row.toModel()
}

func (r *TaskRepository) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	ctx, span := r.tracer(ctx, "TaskRepository.Get")
	defer span.End()
	return r.get(ctx, id, false)
}

// GetForUpdate takes a row lock (Postgres only; SQLite serializes writes
// at the connection level so the clause is skipped there).
func (r *TaskRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	ctx, span := r.tracer(ctx, "TaskRepository.GetForUpdate")
	defer span.End()
	return r.get(ctx, id, true)
}

// UpdateWithVersion performs an optimistic-locking update: the WHERE
// clause pins both id and the caller's expected version, so a concurrent
// writer's update makes this affect zero rows (spec §4.3.b's retry
// pattern reuses this shape for contexts too).
func (r *TaskRepository) UpdateWithVersion(ctx context.Context, t *models.Task, expectedVersion int) error {
	ctx, span := r.tracer(ctx, "TaskRepository.UpdateWithVersion")
	defer span.End()

	row, err := toRow(t)
	if err != nil {
		return errors.Wrap(err, "marshal task")
	}
	row.Version = expectedVersion + 1

	query := r.rebind(`UPDATE tasks SET
		title = ?, description = ?, status = ?, priority = ?, details = ?,
		estimated_effort = ?, due_date = ?, context_id = ?, overall_progress = ?,
		progress_state = ?, assignees = ?, labels = ?, dependencies = ?, subtask_ids = ?,
		progress_timeline = ?, completion_summary = ?, testing_notes = ?,
		version = ?, updated_at = ?
		WHERE id = ? AND version = ?`)

	res, err := r.conn().ExecContext(ctx, query,
		row.Title, row.Description, row.Status, row.Priority, row.Details,
		row.EstimatedEffort, row.DueDate, row.ContextID, row.OverallProgress,
		row.ProgressState, row.AssigneesJSON, row.LabelsJSON, row.DependenciesJSON, row.SubtaskIDsJSON,
		row.TimelineJSON, row.CompletionSummary, row.TestingNotes,
		row.Version, row.UpdatedAt, row.ID, expectedVersion)
	if err != nil {
		r.metrics.IncrementCounter("task_repository_errors_total", 1)
		return errors.Wrap(err, "update task")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return repository.ErrOptimisticLock
	}
	t.Version = row.Version
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.tracer(ctx, "TaskRepository.Delete")
	defer span.End()
	query := r.rebind(`DELETE FROM tasks WHERE id = ?`)
	_, err := r.conn().ExecContext(ctx, query, id)
	return errors.Wrap(err, "delete task")
}

func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]*models.Task, error) {
	ctx, span := r.tracer(ctx, "TaskRepository.List")
	defer span.End()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []interface{}{}
	if filter.BranchID != "" {
		query += ` AND branch_id = ?`
		args = append(args, filter.BranchID)
	}
	if filter.AssignedTo != "" {
		query += ` AND assignees LIKE ?`
		args = append(args, "%"+filter.AssignedTo+"%")
	}
	if len(filter.Status) > 0 {
		query += ` AND status IN (?` + repeatPlaceholder(len(filter.Status)-1) + `)`
		for _, s := range filter.Status {
			args = append(args, s)
		}
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	var rows []taskRow
	if err := sqlx.SelectContext(ctx, r.conn(), &rows, r.rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "list tasks")
	}
	return rowsToModels(rows)
}

func (r *TaskRepository) ListByBranch(ctx context.Context, branchID string) ([]*models.Task, error) {
	return r.List(ctx, repository.TaskFilter{BranchID: branchID})
}

func (r *TaskRepository) CountByStatus(ctx context.Context, branchID string) (map[models.TaskStatus]int, error) {
	ctx, span := r.tracer(ctx, "TaskRepository.CountByStatus")
	defer span.End()

	query := r.rebind(`SELECT status, COUNT(*) AS n FROM tasks WHERE branch_id = ? GROUP BY status`)
	rows, err := r.conn().QueryxContext(ctx, query, branchID)
	if err != nil {
		return nil, errors.Wrap(err, "count by status")
	}
	defer rows.Close()

	out := map[models.TaskStatus]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[models.TaskStatus(status)] = n
	}
	return out, rows.Err()
}

func rowsToModels(rows []taskRow) ([]*models.Task, error) {
	out := make([]*models.Task, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func repeatPlaceholder(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ", ?"
	}
	return s
}
