package sql

import (
	"context"
	"encoding/json"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// SubtaskRepository implements repository.SubtaskRepository, grounded on
// the same teacher CRUD shape as TaskRepository.
type SubtaskRepository struct {
	BaseRepository
}

func NewSubtaskRepository(cfg Config) *SubtaskRepository {
	return &SubtaskRepository{BaseRepository: newBase(cfg)}
}

type subtaskRow struct {
	models.Subtask
	AssigneesJSON []byte `db:"assignees"`
}

func subtaskToRow(s *models.Subtask) (*subtaskRow, error) {
	data, err := json.Marshal(s.Assignees)
	if err != nil {
		return nil, err
	}
	return &subtaskRow{Subtask: *s, AssigneesJSON: data}, nil
}

func (r *subtaskRow) toModel() (*models.Subtask, error) {
	s := r.Subtask
	if len(r.AssigneesJSON) > 0 {
		if err := json.Unmarshal(r.AssigneesJSON, &s.Assignees); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

const subtaskColumns = `id, parent_task_id, title, description, status, priority,
	assignees, progress_percentage, version, created_at, updated_at`

func (r *SubtaskRepository) Create(ctx context.Context, s *models.Subtask) error {
	ctx, span := r.tracer(ctx, "SubtaskRepository.Create")
	defer span.End()

	row, err := subtaskToRow(s)
	if err != nil {
		return errors.Wrap(err, "marshal subtask")
	}
	query := r.rebind(`INSERT INTO subtasks (` + subtaskColumns + `) VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	_, err = r.conn().ExecContext(ctx, query,
		row.ID, row.ParentTaskID, row.Title, row.Description, row.Status, row.Priority,
		row.AssigneesJSON, row.ProgressPercentage, row.Version, row.CreatedAt, row.UpdatedAt)
	return errors.Wrap(err, "insert subtask")
}

func (r *SubtaskRepository) Get(ctx context.Context, id uuid.UUID) (*models.Subtask, error) {
	ctx, span := r.tracer(ctx, "SubtaskRepository.Get")
	defer span.End()

	var row subtaskRow
	query := r.rebind(`SELECT ` + subtaskColumns + ` FROM subtasks WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.conn(), &row, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("subtask", id.String())
		}
		return nil, errors.Wrap(err, "get subtask")
	}
	return row.toModel()
}

func (r *SubtaskRepository) Update(ctx context.Context, s *models.Subtask) error {
	ctx, span := r.tracer(ctx, "SubtaskRepository.Update")
	defer span.End()

	row, err := subtaskToRow(s)
	if err != nil {
		return errors.Wrap(err, "marshal subtask")
	}
	row.Version++
	query := r.rebind(`UPDATE subtasks SET title=?, description=?, status=?, priority=?,
		assignees=?, progress_percentage=?, version=?, updated_at=? WHERE id=?`)
	_, err = r.conn().ExecContext(ctx, query,
		row.Title, row.Description, row.Status, row.Priority,
		row.AssigneesJSON, row.ProgressPercentage, row.Version, row.UpdatedAt, row.ID)
	if err != nil {
		return errors.Wrap(err, "update subtask")
	}
	s.Version = row.Version
	return nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.tracer(ctx, "SubtaskRepository.Delete")
	defer span.End()
	_, err := r.conn().ExecContext(ctx, r.rebind(`DELETE FROM subtasks WHERE id = ?`), id)
	return errors.Wrap(err, "delete subtask")
}

func (r *SubtaskRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Subtask, error) {
	ctx, span := r.tracer(ctx, "SubtaskRepository.ListByTask")
	defer span.End()

	var rows []subtaskRow
	query := r.rebind(`SELECT ` + subtaskColumns + ` FROM subtasks WHERE parent_task_id = ? ORDER BY created_at ASC`)
	if err := sqlx.SelectContext(ctx, r.conn(), &rows, query, taskID); err != nil {
		return nil, errors.Wrap(err, "list subtasks")
	}
	out := make([]*models.Subtask, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
