package tasks

import (
	"context"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
)

// CreateSubtask inherits the parent task's assignees when none are given
// (spec §4.2.f), then persists the subtask and bubbles a progress
// recalculation to the parent (spec §3: "Subtask status/percentage
// mutations bubble progress re-calculation to the parent").
func (s *Service) CreateSubtask(ctx context.Context, parentTaskID uuid.UUID, title, description string, priority models.TaskPriority, assignees []string) (*models.Subtask, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description, maxSubtaskDescLen); err != nil {
		return nil, err
	}
	parent, err := s.tasks.Get(ctx, parentTaskID)
	if err != nil {
		return nil, err
	}

	sub := models.NewSubtask(parentTaskID, title, description, priority, s.roles().NormalizeAssigneeList(assignees), parent.Assignees)
	if err := s.subtasks.Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.recalcParentProgress(ctx, parentTaskID); err != nil {
		return nil, err
	}
	return sub, nil
}

// GetSubtask loads a single subtask.
func (s *Service) GetSubtask(ctx context.Context, id uuid.UUID) (*models.Subtask, error) {
	return s.subtasks.Get(ctx, id)
}

// ListSubtasks lists every subtask of parentTaskID.
func (s *Service) ListSubtasks(ctx context.Context, parentTaskID uuid.UUID) ([]*models.Subtask, error) {
	return s.subtasks.ListByTask(ctx, parentTaskID)
}

// SubtaskUpdate carries the optional fields manage_subtask's "update"
// action may set.
type SubtaskUpdate struct {
	Title              *string
	Description        *string
	Status             *models.TaskStatus
	Priority           *models.TaskPriority
	Assignees          []string
	AssigneesSet       bool
	ProgressPercentage *int
}

// UpdateSubtask applies the requested changes, enforcing the status-
// percentage coupling of spec §4.2.f, and bubbles progress to the parent.
func (s *Service) UpdateSubtask(ctx context.Context, id uuid.UUID, upd SubtaskUpdate) (*models.Subtask, error) {
	if upd.Title != nil {
		if err := validateTitle(*upd.Title); err != nil {
			return nil, err
		}
	}
	if upd.Description != nil {
		if err := validateDescription(*upd.Description, maxSubtaskDescLen); err != nil {
			return nil, err
		}
	}

	sub, err := s.subtasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		sub.Title = *upd.Title
	}
	if upd.Description != nil {
		sub.Description = *upd.Description
	}
	if upd.Priority != nil {
		sub.Priority = *upd.Priority
	}
	if upd.AssigneesSet {
		sub.SetAssignees(s.roles().NormalizeAssigneeList(upd.Assignees))
	}
	// Percentage and status each imply the other (spec §4.2.f); apply
	// whichever was supplied, percentage last so it wins if both arrive in
	// the same request.
	if upd.Status != nil {
		if err := sub.SetStatus(*upd.Status); err != nil {
			return nil, err
		}
	}
	if upd.ProgressPercentage != nil {
		if err := sub.SetProgressPercentage(*upd.ProgressPercentage); err != nil {
			return nil, err
		}
	}

	if err := s.subtasks.Update(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.recalcParentProgress(ctx, sub.ParentTaskID); err != nil {
		return nil, err
	}
	return sub, nil
}

// CompleteSubtask is the convenience path for manage_subtask's "complete"
// action: it is equivalent to an update that sets status to done.
func (s *Service) CompleteSubtask(ctx context.Context, id uuid.UUID) (*models.Subtask, error) {
	done := models.TaskStatusDone
	return s.UpdateSubtask(ctx, id, SubtaskUpdate{Status: &done})
}

// ReopenSubtask is the dedicated done->todo path (spec §4.2.a: not
// available on tasks).
func (s *Service) ReopenSubtask(ctx context.Context, id uuid.UUID) (*models.Subtask, error) {
	sub, err := s.subtasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.IsDone() {
		return nil, apperrors.Validation("status", "subtask %s is not done", id)
	}
	sub.Reopen()
	if err := s.subtasks.Update(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.recalcParentProgress(ctx, sub.ParentTaskID); err != nil {
		return nil, err
	}
	return sub, nil
}

// DeleteSubtask removes a subtask and bubbles the resulting progress
// change to the parent.
func (s *Service) DeleteSubtask(ctx context.Context, id uuid.UUID) error {
	sub, err := s.subtasks.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.subtasks.Delete(ctx, id); err != nil {
		return err
	}
	return s.recalcParentProgress(ctx, sub.ParentTaskID)
}

// recalcParentProgress implements spec §4.2.e's aggregation rule: the
// parent's overall_progress is the average of (timeline_overall,
// subtask_overall) when both exist, or whichever one does when only one
// does. Fired domain events are logged rather than returned since the
// caller here is a subtask mutation, not the task mutation itself.
func (s *Service) recalcParentProgress(ctx context.Context, parentTaskID uuid.UUID) error {
	subtaskList, err := s.subtasks.ListByTask(ctx, parentTaskID)
	if err != nil {
		return err
	}
	task, err := s.tasks.GetForUpdate(ctx, parentTaskID)
	if err != nil {
		return err
	}
	expectedVersion := task.Version

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
		return err
	}
	for _, e := range task.Events().Drain() {
		s.logger.Debug("task progress recalculated from subtasks", map[string]interface{}{
			"task_id": task.ID, "event_type": string(e.EventType),
		})
	}
	return nil
}
