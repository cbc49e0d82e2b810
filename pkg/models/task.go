package models

import (
	"time"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/google/uuid"
)

// Task is the task engine's root entity (spec §3).
type Task struct {
	Timestamps

	ID       uuid.UUID `json:"id" db:"id"`
	BranchID uuid.UUID `json:"branch_id" db:"branch_id"`
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"` // owning user_id (spec §4.4)

	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Status      TaskStatus   `json:"status" db:"status"`
	Priority    TaskPriority `json:"priority" db:"priority"`

	Details        string  `json:"details,omitempty" db:"details"`
	EstimatedEffort string `json:"estimated_effort,omitempty" db:"estimated_effort"`
	DueDate         *time.Time `json:"due_date,omitempty" db:"due_date"`

	// ContextID points at the last known-good resolved context; cleared by
	// most mutations (spec §4.2.b).
	ContextID *uuid.UUID `json:"context_id,omitempty" db:"context_id"`

	OverallProgress int           `json:"overall_progress" db:"overall_progress"`
	ProgressState   ProgressState `json:"progress_state" db:"progress_state"`

	Timeline ProgressTimeline `json:"progress_timeline" db:"-"`

	Assignees    []string    `json:"assignees" db:"-"`
	Labels       []string    `json:"labels" db:"-"`
	Dependencies []uuid.UUID `json:"dependencies" db:"-"`
	SubtaskIDs   []uuid.UUID `json:"subtask_ids" db:"-"`

	CompletionSummary string `json:"completion_summary,omitempty" db:"completion_summary"`
	TestingNotes      string `json:"testing_notes,omitempty" db:"testing_notes"`

	// preBlockedStatus remembers which active status to return to when a
	// blocker clears (spec §9 Open Question decision, see DESIGN.md).
	preBlockedStatus TaskStatus

	Version int `json:"version" db:"version"`

	events EventRecorder
}

// NewTask constructs a task in the todo status, stamping timestamps.
func NewTask(branchID, tenantID uuid.UUID, title, description string, priority TaskPriority, assignees []string) *Task {
	t := &Task{
		ID:           NewID(),
		BranchID:     branchID,
		TenantID:     tenantID,
		Title:        title,
		Description:  description,
		Status:       TaskStatusTodo,
		Priority:     priority,
		Assignees:    assignees,
		Dependencies: []uuid.UUID{},
		SubtaskIDs:   []uuid.UUID{},
		ProgressState: ProgressStateInitial,
		Version:       1,
	}
	t.Touch()
	t.events.Record(NewTaskCreated(t.ID))
	return t
}

// Events returns the transient event buffer for callers to drain (spec §4.2.g).
func (t *Task) Events() *EventRecorder { return &t.events }

// HasDependency reports whether target is already listed as a dependency.
func (t *Task) HasDependency(target uuid.UUID) bool {
	for _, d := range t.Dependencies {
		if d == target {
			return true
		}
	}
	return false
}

// clearContext implements the §4.2.b invalidation rule's default: most
// mutations clear the pointer to the last-resolved context.
func (t *Task) clearContext() { t.ContextID = nil }

// SetStatus transitions the task's status, enforcing spec §4.2.a. A
// status-only change preserves context_id (spec §4.2.b).
func (t *Task) SetStatus(target TaskStatus) error {
	if t.Status == target {
		return nil
	}
	if target == TaskStatusBlocked {
		if !t.Status.IsActive() {
			return invalidTransition(t.Status, target)
		}
		old := t.Status
		t.preBlockedStatus = t.Status
		t.Status = TaskStatusBlocked
		t.Touch()
		t.events.Record(NewTaskUpdated(t.ID, "status", old, target, nil))
		return nil
	}
	if t.Status == TaskStatusBlocked {
		// Exiting blocked is accepted only toward the status that was active
		// before; any other target is rejected, per spec §4.2.a / §9.
		if target != t.preBlockedStatus {
			return invalidTransition(t.Status, target)
		}
		old := t.Status
		t.Status = t.preBlockedStatus
		t.preBlockedStatus = ""
		t.Touch()
		t.events.Record(NewTaskUpdated(t.ID, "status", old, t.Status, nil))
		return nil
	}
	if !t.Status.CanTransitionTo(target) {
		return invalidTransition(t.Status, target)
	}
	old := t.Status
	t.Status = target
	t.Touch()
	t.events.Record(NewTaskUpdated(t.ID, "status", old, target, nil))
	return nil
}

// SetPriority changes priority only; context_id is preserved (spec §4.2.b).
func (t *Task) SetPriority(p TaskPriority) {
	if t.Priority == p {
		return
	}
	old := t.Priority
	t.Priority = p
	t.Touch()
	t.events.Record(NewTaskUpdated(t.ID, "priority", old, p, nil))
}

// UpdateDescription updates title/description, clearing context_id.
func (t *Task) UpdateDescription(title, description string) {
	oldTitle, oldDesc := t.Title, t.Description
	if title != "" {
		t.Title = title
	}
	if description != "" {
		t.Description = description
	}
	t.clearContext()
	t.Touch()
	t.events.Record(NewTaskUpdated(t.ID, "description", map[string]string{"title": oldTitle, "description": oldDesc},
		map[string]string{"title": t.Title, "description": t.Description}, nil))
}

// UpdateAssignees replaces the assignee list, clearing context_id.
func (t *Task) UpdateAssignees(assignees []string) {
	old := t.Assignees
	t.Assignees = assignees
	t.clearContext()
	t.Touch()
	t.events.Record(NewTaskUpdated(t.ID, "assignees", old, assignees, nil))
}

// UpdateLabels replaces the label list, clearing context_id.
func (t *Task) UpdateLabels(labels []string) {
	old := t.Labels
	t.Labels = labels
	t.clearContext()
	t.Touch()
	t.events.Record(NewTaskUpdated(t.ID, "labels", old, labels, nil))
}

// UpdateDueDate changes the due date, clearing context_id.
func (t *Task) UpdateDueDate(due *time.Time) {
	old := t.DueDate
	t.DueDate = due
	t.clearContext()
	t.Touch()
	t.events.Record(NewTaskUpdated(t.ID, "due_date", old, due, nil))
}

// AppendProgress records a new timeline snapshot, clearing context_id like
// the other content mutations of spec §4.2.b ("Append-progress ...
// clear[s] context_id"). Any ProgressTypeCompleted event the timeline
// itself produces is also recorded.
func (t *Task) AppendProgress(snapshot ProgressSnapshot) {
	before := len(t.Timeline.Snapshots)
	timelineEvents := t.Timeline.Append(t.ID, snapshot)
	t.clearContext()
	t.Touch()
	t.events.Record(NewTaskUpdated(t.ID, "progress_timeline", before, before+1, map[string]interface{}{
		"progress_type": string(snapshot.ProgressType),
	}))
	for _, e := range timelineEvents {
		t.events.Record(e)
	}
}

// Complete applies the completion preconditions of spec §4.2.c. Subtask
// verification and stale-context checking are the caller's (task
// completion service's) responsibility since the entity only holds ids;
// this method performs the parts the entity can decide on its own.
func (t *Task) Complete(completionSummary string) error {
	if completionSummary == "" {
		return missingCompletionSummary(t.ID)
	}
	t.CompletionSummary = completionSummary
	t.OverallProgress = 100
	t.ProgressState = ProgressStateComplete
	old := t.Status
	t.Status = TaskStatusDone
	t.Touch()
	t.events.Record(NewTaskUpdated(t.ID, "status", old, TaskStatusDone, map[string]interface{}{
		"completion_summary": completionSummary,
	}))
	return nil
}

// RecalculateProgress implements the §4.2.e aggregation rule. subtaskAvg is
// ignored when hasSubtasks is false.
func (t *Task) RecalculateProgress(subtaskAvg int, hasSubtasks bool) {
	timelineOverall, hasTimeline := t.Timeline.OverallPercentage()

	var newProgress int
	switch {
	case hasTimeline && hasSubtasks:
		newProgress = (timelineOverall + subtaskAvg) / 2
	case hasTimeline:
		newProgress = timelineOverall
	case hasSubtasks:
		newProgress = subtaskAvg
	default:
		newProgress = t.OverallProgress
	}

	if newProgress != t.OverallProgress {
		old := t.OverallProgress
		t.OverallProgress = newProgress
		t.events.Record(NewProgressUpdated(t.ID, newProgress))
		_ = old
	}
	t.ProgressState = DeriveProgressState(t.Status, t.OverallProgress)
	t.Touch()
	t.checkMilestones()
}

// checkMilestones fires ProgressMilestoneReached exactly once per
// milestone by inspecting the pending (undrained) event buffer, per spec
// §4.2.e.
func (t *Task) checkMilestones() {
	for name, threshold := range t.Timeline.Milestones {
		if t.OverallProgress < threshold {
			continue
		}
		if t.milestoneAlreadyFired(name) {
			continue
		}
		t.events.Record(NewProgressMilestoneReached(t.ID, name, threshold))
	}
}

func (t *Task) milestoneAlreadyFired(name string) bool {
	for _, e := range t.events.Pending() {
		if e.EventType == EventProgressMilestoneReached && e.FieldName == name {
			return true
		}
	}
	return false
}

func invalidTransition(from, to TaskStatus) error {
	return apperrors.Validation("status", "invalid status transition from %s to %s", from, to)
}

func missingCompletionSummary(taskID uuid.UUID) error {
	return apperrors.MissingCompletionSummary(taskID.String())
}
