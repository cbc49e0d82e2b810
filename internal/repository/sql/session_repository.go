package sql

import (
	"context"
	"encoding/json"
	"time"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// WorkSessionRepository implements repository.WorkSessionRepository.
type WorkSessionRepository struct {
	BaseRepository
}

func NewWorkSessionRepository(cfg Config) *WorkSessionRepository {
	return &WorkSessionRepository{BaseRepository: newBase(cfg)}
}

type sessionRow struct {
	models.WorkSession
	ProgressUpdatesJSON []byte `db:"progress_updates"`
	ResourcesLockedJSON []byte `db:"resources_locked"`
}

func sessionToRow(s *models.WorkSession) (*sessionRow, error) {
	updates, err := json.Marshal(s.ProgressUpdates)
	if err != nil {
		return nil, err
	}
	locks, err := json.Marshal(s.ResourcesLocked)
	if err != nil {
		return nil, err
	}
	return &sessionRow{WorkSession: *s, ProgressUpdatesJSON: updates, ResourcesLockedJSON: locks}, nil
}

func (r *sessionRow) toModel() (*models.WorkSession, error) {
	s := r.WorkSession
	if len(r.ProgressUpdatesJSON) > 0 {
		if err := json.Unmarshal(r.ProgressUpdatesJSON, &s.ProgressUpdates); err != nil {
			return nil, err
		}
	}
	if len(r.ResourcesLockedJSON) > 0 {
		if err := json.Unmarshal(r.ResourcesLockedJSON, &s.ResourcesLocked); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

const sessionColumns = `id, project_id, agent_id, task_id, branch_id, started_at, status,
	ended_at, paused_at, total_paused_duration, progress_updates, resources_locked,
	max_duration, last_activity`

func (r *WorkSessionRepository) Create(ctx context.Context, s *models.WorkSession) error {
	ctx, span := r.tracer(ctx, "WorkSessionRepository.Create")
	defer span.End()

	row, err := sessionToRow(s)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}
	query := r.rebind(`INSERT INTO work_sessions (` + sessionColumns + `) VALUES
		(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	_, err = r.conn().ExecContext(ctx, query,
		row.ID, row.ProjectID, row.AgentID, row.TaskID, row.BranchID, row.StartedAt, row.Status,
		row.EndedAt, row.PausedAt, row.TotalPausedDuration, row.ProgressUpdatesJSON, row.ResourcesLockedJSON,
		row.MaxDuration, row.LastActivity)
	return errors.Wrap(err, "insert session")
}

func (r *WorkSessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.WorkSession, error) {
	ctx, span := r.tracer(ctx, "WorkSessionRepository.Get")
	defer span.End()

	var row sessionRow
	query := r.rebind(`SELECT ` + sessionColumns + ` FROM work_sessions WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.conn(), &row, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("work_session", id.String())
		}
		return nil, errors.Wrap(err, "get session")
	}
	return row.toModel()
}

func (r *WorkSessionRepository) Update(ctx context.Context, s *models.WorkSession) error {
	ctx, span := r.tracer(ctx, "WorkSessionRepository.Update")
	defer span.End()

	row, err := sessionToRow(s)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}
	query := r.rebind(`UPDATE work_sessions SET status=?, ended_at=?, paused_at=?,
		total_paused_duration=?, progress_updates=?, resources_locked=?, last_activity=?
		WHERE id=?`)
	_, err = r.conn().ExecContext(ctx, query,
		row.Status, row.EndedAt, row.PausedAt, row.TotalPausedDuration,
		row.ProgressUpdatesJSON, row.ResourcesLockedJSON, row.LastActivity, row.ID)
	return errors.Wrap(err, "update session")
}

func (r *WorkSessionRepository) ListActive(ctx context.Context, projectID string) ([]*models.WorkSession, error) {
	ctx, span := r.tracer(ctx, "WorkSessionRepository.ListActive")
	defer span.End()

	query := r.rebind(`SELECT ` + sessionColumns + ` FROM work_sessions
		WHERE project_id = ? AND status IN (?, ?)`)
	var rows []sessionRow
	if err := sqlx.SelectContext(ctx, r.conn(), &rows, query, projectID, models.SessionActive, models.SessionPaused); err != nil {
		return nil, errors.Wrap(err, "list active sessions")
	}
	return sessionRowsToModels(rows)
}

// ListActiveOlderThan supports the cron-driven timeout sweep (spec §5):
// any non-terminal session whose last_activity predates cutoff is a
// timeout candidate.
func (r *WorkSessionRepository) ListActiveOlderThan(ctx context.Context, cutoff time.Time) ([]*models.WorkSession, error) {
	ctx, span := r.tracer(ctx, "WorkSessionRepository.ListActiveOlderThan")
	defer span.End()

	query := r.rebind(`SELECT ` + sessionColumns + ` FROM work_sessions
		WHERE status IN (?, ?) AND last_activity < ?`)
	var rows []sessionRow
	if err := sqlx.SelectContext(ctx, r.conn(), &rows, query, models.SessionActive, models.SessionPaused, cutoff); err != nil {
		return nil, errors.Wrap(err, "list stale sessions")
	}
	return sessionRowsToModels(rows)
}

func sessionRowsToModels(rows []sessionRow) ([]*models.WorkSession, error) {
	out := make([]*models.WorkSession, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
