package models

import (
	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/google/uuid"
)

// Subtask is the task engine's child entity (spec §3, §4.2.f).
type Subtask struct {
	Timestamps

	ID           uuid.UUID    `json:"id" db:"id"`
	ParentTaskID uuid.UUID    `json:"parent_task_id" db:"parent_task_id"`
	Title        string       `json:"title" db:"title"`
	Description  string       `json:"description" db:"description"`
	Status       TaskStatus   `json:"status" db:"status"`
	Priority     TaskPriority `json:"priority" db:"priority"`
	Assignees    []string     `json:"assignees" db:"-"`

	ProgressPercentage int `json:"progress_percentage" db:"progress_percentage"`

	Version int `json:"version" db:"version"`

	events EventRecorder
}

// NewSubtask creates a subtask; if assignees is empty it inherits the
// parent task's assignees exactly once, at creation (spec §4.2.f).
func NewSubtask(parentTaskID uuid.UUID, title, description string, priority TaskPriority, assignees, parentAssignees []string) *Subtask {
	s := &Subtask{
		ID:           NewID(),
		ParentTaskID: parentTaskID,
		Title:        title,
		Description:  description,
		Status:       TaskStatusTodo,
		Priority:     priority,
		Assignees:    assignees,
		Version:      1,
	}
	if len(s.Assignees) == 0 {
		s.Assignees = append([]string(nil), parentAssignees...)
	}
	s.Touch()
	return s
}

// Events returns the transient event buffer.
func (s *Subtask) Events() *EventRecorder { return &s.events }

// SetAssignees replaces the assignee list. Once a subtask carries its own
// non-empty list it never auto-inherits from the parent again (spec §4.2.f)
// — callers must not re-invoke the inheritance path after this.
func (s *Subtask) SetAssignees(assignees []string) {
	s.Assignees = assignees
	s.Touch()
}

// SetStatus applies the §4.2.f coupling between status and percentage:
// done -> 100; done -> todo is rejected (Reopen is the only path for it);
// todo from anything else keeps the current percentage.
func (s *Subtask) SetStatus(target TaskStatus) error {
	if s.Status == target {
		return nil
	}
	if s.Status.IsTerminal() && s.Status != TaskStatusDone {
		return apperrors.Validation("status", "subtask %s is in a terminal state", s.ID)
	}
	if s.Status == TaskStatusDone && target == TaskStatusTodo {
		return apperrors.Validation("status", "done -> todo is only permitted through the dedicated reopen path")
	}
	wasDone := s.Status == TaskStatusDone
	s.Status = target
	switch target {
	case TaskStatusDone:
		s.ProgressPercentage = 100
	case TaskStatusTodo:
		if wasDone {
			s.ProgressPercentage = 0
		}
	}
	s.Touch()
	return nil
}

// SetProgressPercentage applies the §4.2.f coupling between percentage and
// status: 0 -> todo, 100 -> done, 1..99 -> in_progress.
func (s *Subtask) SetProgressPercentage(pct int) error {
	if pct < 0 || pct > 100 {
		return apperrors.Validation("progress_percentage", "must be between 0 and 100, got %d", pct)
	}
	if pct == 0 && s.Status == TaskStatusDone {
		return apperrors.Validation("progress_percentage", "done -> todo is only permitted through the dedicated reopen path")
	}
	s.ProgressPercentage = pct
	switch {
	case pct == 0:
		s.Status = TaskStatusTodo
	case pct == 100:
		s.Status = TaskStatusDone
	default:
		s.Status = TaskStatusInProgress
	}
	s.Touch()
	return nil
}

// IsDone reports whether the subtask has completed, for the task
// completion precondition of spec §4.2.c.
func (s *Subtask) IsDone() bool { return s.Status == TaskStatusDone }

// Reopen is the dedicated subtask reopen path (spec §4.2.a: done -> todo is
// permitted only through this path, not on tasks).
func (s *Subtask) Reopen() {
	s.Status = TaskStatusTodo
	s.ProgressPercentage = 0
	s.Touch()
}
