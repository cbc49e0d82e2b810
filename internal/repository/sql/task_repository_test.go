package sql

import (
	"context"
	stdsql "database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

func newMockTaskRepository(t *testing.T) (*TaskRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewTaskRepository(Config{
		DB:           sqlxDB,
		Dialect:      DialectPostgres,
		Logger:       observability.NewStandardLogger("test"),
		Tracer:       observability.NewStartSpanFunc("test"),
		Metrics:      observability.NewInMemoryMetrics(),
		QueryTimeout: 5 * time.Second,
	})
	return repo, mock
}

func TestTaskRepository_UpdateWithVersion_AffectsOneRowOnMatch(t *testing.T) {
	repo, mock := newMockTaskRepository(t)
	task := models.NewTask(uuid.New(), uuid.New(), "Title", "desc", models.PriorityMedium, []string{"@coding-agent"})

	mock.ExpectExec(`UPDATE tasks SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateWithVersion(context.Background(), task, task.Version)
	require.NoError(t, err)
	assert.Equal(t, 2, task.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_UpdateWithVersion_ReturnsOptimisticLockOnZeroRows(t *testing.T) {
	repo, mock := newMockTaskRepository(t)
	task := models.NewTask(uuid.New(), uuid.New(), "Title", "desc", models.PriorityMedium, []string{"@coding-agent"})

	mock.ExpectExec(`UPDATE tasks SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateWithVersion(context.Background(), task, task.Version)
	assert.Equal(t, repository.ErrOptimisticLock, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Get_ReturnsNotFoundOnNoRows(t *testing.T) {
	repo, mock := newMockTaskRepository(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE id = `).
		WillReturnError(stdsql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
