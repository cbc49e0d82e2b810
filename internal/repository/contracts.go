// Package repository defines the storage-agnostic contracts the kernel,
// task engine, and context engine program against. Concrete
// implementations live in repository/sql (Postgres and SQLite, sharing
// one sqlx-based engine distinguished only by placeholder rebinding and
// upsert dialect) and repository/cached (a context-cache decorator).
package repository

import (
	"context"
	"time"

	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
)

// ErrOptimisticLock is returned by an UpdateWithVersion call whose
// expected version no longer matches the stored row (spec §4.3.b retry
// loop relies on distinguishing this from other failures).
var ErrOptimisticLock = &optimisticLockError{}

type optimisticLockError struct{}

func (*optimisticLockError) Error() string { return "repository: version mismatch" }

// TaskFilter narrows a listing query. Zero-value fields are not applied.
type TaskFilter struct {
	BranchID   string
	Status     []models.TaskStatus
	AssignedTo string
	Limit      int
	Offset     int
}

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	Get(ctx context.Context, id string) (*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, tenantID string) ([]*models.Project, error)

	AddBranch(ctx context.Context, projectID string, branch *models.GitBranch) error
	UpdateBranch(ctx context.Context, branch *models.GitBranch) error
	DeleteBranch(ctx context.Context, branchID string) error

	UpsertAgent(ctx context.Context, projectID string, agent *models.Agent) error
	GetAgent(ctx context.Context, agentID string) (*models.Agent, error)
	ListAgents(ctx context.Context, projectID string) ([]*models.Agent, error)
	DeleteAgent(ctx context.Context, agentID string) error

	AssignAgentToBranch(ctx context.Context, branchID, agentID string) error
	UnassignBranch(ctx context.Context, branchID string) error

	AddCrossTreeDependency(ctx context.Context, projectID, dependentTaskID, prerequisiteTaskID string) error
	RemoveCrossTreeDependency(ctx context.Context, projectID, dependentTaskID, prerequisiteTaskID string) error
	GetCrossTreeDependencies(ctx context.Context, projectID string) (map[string]map[string]bool, error)

	UpsertResourceLock(ctx context.Context, projectID, resourceKey, agentID string) error
	ReleaseResourceLock(ctx context.Context, projectID, resourceKey string) error
	GetResourceLocks(ctx context.Context, projectID string) (map[string]string, error)
}

type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Task, error)
	UpdateWithVersion(ctx context.Context, t *models.Task, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	ListByBranch(ctx context.Context, branchID string) ([]*models.Task, error)
	CountByStatus(ctx context.Context, branchID string) (map[models.TaskStatus]int, error)
}

type SubtaskRepository interface {
	Create(ctx context.Context, s *models.Subtask) error
	Get(ctx context.Context, id uuid.UUID) (*models.Subtask, error)
	Update(ctx context.Context, s *models.Subtask) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Subtask, error)
}

type WorkSessionRepository interface {
	Create(ctx context.Context, s *models.WorkSession) error
	Get(ctx context.Context, id uuid.UUID) (*models.WorkSession, error)
	Update(ctx context.Context, s *models.WorkSession) error
	ListActive(ctx context.Context, projectID string) ([]*models.WorkSession, error)
	ListActiveOlderThan(ctx context.Context, cutoff time.Time) ([]*models.WorkSession, error)
}

// ContextRepository persists all four inheritance levels plus delegations
// and the resolved-chain cache (spec §3, §4.3).
type ContextRepository interface {
	GetGlobal(ctx context.Context, userID string) (*models.GlobalContext, error)
	UpsertGlobal(ctx context.Context, c *models.GlobalContext) error

	GetProject(ctx context.Context, projectID, userID string) (*models.ProjectContext, error)
	UpsertProjectWithVersion(ctx context.Context, c *models.ProjectContext, expectedVersion int) error

	GetBranch(ctx context.Context, branchID, userID string) (*models.BranchContext, error)
	UpsertBranchWithVersion(ctx context.Context, c *models.BranchContext, expectedVersion int) error

	GetTask(ctx context.Context, taskID uuid.UUID, userID string) (*models.TaskContext, error)
	UpsertTaskWithVersion(ctx context.Context, c *models.TaskContext, expectedVersion int) error

	CreateDelegation(ctx context.Context, d *models.ContextDelegation) error
	ListPendingDelegations(ctx context.Context, targetLevel models.ContextLevel, targetID string) ([]*models.ContextDelegation, error)
	UpdateDelegation(ctx context.Context, d *models.ContextDelegation) error

	GetCacheEntry(ctx context.Context, contextID string, level models.ContextLevel) (*models.ContextInheritanceCache, error)
	PutCacheEntry(ctx context.Context, entry *models.ContextInheritanceCache) error
	InvalidateCacheEntry(ctx context.Context, contextID string, level models.ContextLevel, reason string) error
	InvalidateDescendants(ctx context.Context, level models.ContextLevel, id string, reason string) error
}
