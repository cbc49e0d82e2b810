// Package tasks implements the task/subtask lifecycle (spec §4.2): the
// status state machine, assignee normalisation, completion preconditions,
// and progress aggregation live on the pkg/models entities; this package
// is the repository-backed use-case layer that loads, mutates, and
// persists them, draining the entity's domain-event buffer after every
// successful write (spec §4.2.g, §9 "mutable aggregate with event
// buffer"). Grounded on teacher_ref/repo_postgres/task_repository.go's
// optimistic-locking update shape, generalised from a single UPDATE
// statement into a bounded load/mutate/persist retry loop.
package tasks

import (
	"context"
	"time"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
)

const (
	maxTitleLen       = 200
	maxTaskDescLen    = 2000
	maxSubtaskDescLen = 500
	maxUpdateAttempts = 3
)

// RoleProvider returns the currently active role registry. Hot-reload
// watchers (internal/rolesync) implement this as a method value so every
// CreateTask/UpdateTask call sees the latest backing-file contents without
// the Service needing to know a reload happened.
type RoleProvider func() *models.AgentRoleRegistry

// staticRoles adapts a fixed registry to the RoleProvider shape, for
// callers that don't hot-reload (tests, the default in-process roster).
func staticRoles(r *models.AgentRoleRegistry) RoleProvider {
	return func() *models.AgentRoleRegistry { return r }
}

// Service is the task engine's use-case layer.
type Service struct {
	tasks    repository.TaskRepository
	subtasks repository.SubtaskRepository
	roles    RoleProvider
	logger   observability.Logger
	metrics  observability.MetricsClient
}

// New constructs a Service from a fixed role registry.
func New(tasks repository.TaskRepository, subtasks repository.SubtaskRepository, roles *models.AgentRoleRegistry, logger observability.Logger, metrics observability.MetricsClient) *Service {
	return NewWithRoleProvider(tasks, subtasks, staticRoles(roles), logger, metrics)
}

// NewWithRoleProvider constructs a Service whose role registry is resolved
// fresh on every call, e.g. from an internal/rolesync.Watcher.
func NewWithRoleProvider(tasks repository.TaskRepository, subtasks repository.SubtaskRepository, roles RoleProvider, logger observability.Logger, metrics observability.MetricsClient) *Service {
	return &Service{tasks: tasks, subtasks: subtasks, roles: roles, logger: logger, metrics: metrics}
}

func validateTitle(title string) error {
	if len(title) == 0 || len(title) > maxTitleLen {
		return apperrors.Validation("title", "must be between 1 and %d characters, got %d", maxTitleLen, len(title))
	}
	return nil
}

func validateDescription(description string, maxLen int) error {
	if len(description) == 0 || len(description) > maxLen {
		return apperrors.Validation("description", "must be between 1 and %d characters, got %d", maxLen, len(description))
	}
	return nil
}

// CreateTask validates title/description length and the strict assignee
// list (spec §4.2.d bulk-validation path), then creates and persists a
// task.
func (s *Service) CreateTask(ctx context.Context, branchID, tenantID uuid.UUID, title, description string, priority models.TaskPriority, assignees []string) (*models.Task, []models.DomainEvent, error) {
	if err := validateTitle(title); err != nil {
		return nil, nil, err
	}
	if err := validateDescription(description, maxTaskDescLen); err != nil {
		return nil, nil, err
	}
	normalized, err := s.roles().ValidateAssigneeList(assignees)
	if err != nil {
		return nil, nil, err
	}

	task := models.NewTask(branchID, tenantID, title, description, priority, normalized)
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, nil, err
	}
	s.metrics.IncrementCounter("tasks_created_total", 1)
	return task, task.Events().Drain(), nil
}

// GetTask loads a task and records the TaskRetrieved event (spec §4.2.g).
func (s *Service) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, []models.DomainEvent, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	task.Events().Record(models.NewTaskRetrieved(task.ID))
	return task, task.Events().Drain(), nil
}

// ListTasks delegates to the repository's filtered listing.
func (s *Service) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]*models.Task, error) {
	return s.tasks.List(ctx, filter)
}

// TaskUpdate carries the optional fields manage_task's "update" action may
// set (spec §6). A pointer field left nil is untouched; slice fields use
// their *Set companion to distinguish "omitted" from "set to empty".
type TaskUpdate struct {
	Title             *string
	Description       *string
	Status            *models.TaskStatus
	Priority          *models.TaskPriority
	Details           *string
	EstimatedEffort   *string
	Assignees         []string
	AssigneesSet      bool
	Labels            []string
	LabelsSet         bool
	DueDate           *time.Time
	DueDateSet        bool
	ContextID         *uuid.UUID
	ContextIDSet      bool
	CompletionSummary *string
	TestingNotes      *string
}

// UpdateTask applies the requested field changes and persists the result
// with a bounded optimistic-lock retry (spec §5 "UPSERT"-style
// load/mutate/persist cycle).
func (s *Service) UpdateTask(ctx context.Context, id uuid.UUID, upd TaskUpdate) (*models.Task, []models.DomainEvent, error) {
	if upd.Title != nil {
		if err := validateTitle(*upd.Title); err != nil {
			return nil, nil, err
		}
	}
	if upd.Description != nil {
		if err := validateDescription(*upd.Description, maxTaskDescLen); err != nil {
			return nil, nil, err
		}
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		task, err := s.tasks.GetForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		expectedVersion := task.Version

		if upd.Title != nil || upd.Description != nil {
			title, description := "", ""
			if upd.Title != nil {
				title = *upd.Title
			}
			if upd.Description != nil {
				description = *upd.Description
			}
			task.UpdateDescription(title, description)
		}
		if upd.AssigneesSet {
			task.UpdateAssignees(s.roles().NormalizeAssigneeList(upd.Assignees))
		}
		if upd.LabelsSet {
			task.UpdateLabels(upd.Labels)
		}
		if upd.DueDateSet {
			task.UpdateDueDate(upd.DueDate)
		}
		if upd.Priority != nil {
			task.SetPriority(*upd.Priority)
		}
		if upd.Status != nil {
			if err := task.SetStatus(*upd.Status); err != nil {
				return nil, nil, err
			}
		}
		if upd.Details != nil {
			task.Details = *upd.Details
			task.Touch()
		}
		if upd.EstimatedEffort != nil {
			task.EstimatedEffort = *upd.EstimatedEffort
			task.Touch()
		}
		if upd.CompletionSummary != nil {
			task.CompletionSummary = *upd.CompletionSummary
			task.Touch()
		}
		if upd.TestingNotes != nil {
			task.TestingNotes = *upd.TestingNotes
			task.Touch()
		}
		if upd.ContextIDSet {
			// A direct context_id assignment (the context engine writing back
			// a freshly resolved id) is not a content mutation and must not
			// re-trigger the invalidation the other setters above perform.
			task.ContextID = upd.ContextID
			task.Touch()
		}

		if err := s.tasks.UpdateWithVersion(ctx, task, expectedVersion); err != nil {
			if err == repository.ErrOptimisticLock {
				continue
			}
			return nil, nil, err
		}
		return task, task.Events().Drain(), nil
	}
	return nil, nil, apperrors.Conflict("task %s: too many concurrent updates, retry", id)
}

// ProgressInput carries the append-progress action's payload (spec §3
// ProgressTimeline, §4.2.b).
type ProgressInput struct {
	ProgressType models.ProgressType
	Percentage   int
	Status       string
	Description  string
	AgentID      string
	Metadata     models.SnapshotMetadata
}

// AppendProgress records a new timeline snapshot and re-derives
// overall_progress from the updated timeline plus the task's current
// subtasks (spec §4.2.b, §4.2.e). Unlike status/priority-only edits,
// append-progress clears context_id.
func (s *Service) AppendProgress(ctx context.Context, id uuid.UUID, in ProgressInput) (*models.Task, []models.DomainEvent, error) {
	if in.Percentage < 0 || in.Percentage > 100 {
		return nil, nil, apperrors.Validation("percentage", "must be between 0 and 100, got %d", in.Percentage)
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		task, err := s.tasks.GetForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		expectedVersion := task.Version

		subtaskList, err := s.subtasks.ListByTask(ctx, task.ID)
		if err != nil {
			return nil, nil, err
		}

		task.AppendProgress(models.ProgressSnapshot{
			ProgressType: in.ProgressType,
			Percentage:   in.Percentage,
			Status:       in.Status,
			Description:  in.Description,
			AgentID:      in.AgentID,
			Metadata:     in.Metadata,
		})

		if len(subtaskList) == 0 {
			task.RecalculateProgress(0, false)
		} else {
			sum := 0
			for _, st := range subtaskList {
				sum += st.ProgressPercentage
			}
			task.RecalculateProgress(sum/len(subtaskList), true)
		}

		if err := s.tasks.UpdateWithVersion(ctx, task, expectedVersion); err != nil {
			if err == repository.ErrOptimisticLock {
				continue
			}
			return nil, nil, err
		}
		s.metrics.IncrementCounter("tasks_progress_appended_total", 1)
		return task, task.Events().Drain(), nil
	}
	return nil, nil, apperrors.Conflict("task %s: too many concurrent updates, retry", id)
}

// CompleteTask enforces the three completion preconditions of spec
// §4.2.c in order: non-empty summary, all subtasks done, and (when
// supplied) a context_updated_at that is not stale.
func (s *Service) CompleteTask(ctx context.Context, id uuid.UUID, completionSummary, testingNotes string, contextUpdatedAt *time.Time) (*models.Task, []models.DomainEvent, error) {
	if completionSummary == "" {
		return nil, nil, apperrors.MissingCompletionSummary(id.String())
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		task, err := s.tasks.GetForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		expectedVersion := task.Version

		subtaskList, err := s.subtasks.ListByTask(ctx, task.ID)
		if err != nil {
			return nil, nil, err
		}
		for _, st := range subtaskList {
			if !st.IsDone() {
				return nil, nil, apperrors.Conflict("task %s: subtask %s is not done", task.ID, st.ID)
			}
		}

		if task.ContextID != nil && contextUpdatedAt != nil && !contextUpdatedAt.After(task.UpdatedAt) {
			lag := task.UpdatedAt.Sub(*contextUpdatedAt).Seconds()
			return nil, nil, apperrors.StaleContext(task.ID.String(), lag)
		}

		if err := task.Complete(completionSummary); err != nil {
			return nil, nil, err
		}
		if testingNotes != "" {
			task.TestingNotes = testingNotes
		}

		if err := s.tasks.UpdateWithVersion(ctx, task, expectedVersion); err != nil {
			if err == repository.ErrOptimisticLock {
				continue
			}
			return nil, nil, err
		}
		s.metrics.IncrementCounter("tasks_completed_total", 1)
		return task, task.Events().Drain(), nil
	}
	return nil, nil, apperrors.Conflict("task %s: too many concurrent updates, retry", id)
}

// DeleteTask removes a task, recording TaskDeleted on the loaded entity
// before the row disappears.
func (s *Service) DeleteTask(ctx context.Context, id uuid.UUID) ([]models.DomainEvent, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Events().Record(models.NewTaskDeleted(task.ID))
	if err := s.tasks.Delete(ctx, id); err != nil {
		return nil, err
	}
	return task.Events().Drain(), nil
}
