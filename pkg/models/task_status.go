package models

// TaskStatus is the task engine's status state machine (spec §4.2.a).
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusTesting    TaskStatus = "testing"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// activeStatuses are the non-terminal, non-blocked statuses a task can be
// "recalled to" when a blocker clears (spec §4.2.a / §9 open question).
var activeStatuses = map[TaskStatus]bool{
	TaskStatusTodo:       true,
	TaskStatusInProgress: true,
	TaskStatusReview:     true,
	TaskStatusTesting:    true,
}

// validTaskTransitions enumerates the legal transitions out of each status.
// blocked may be reached from any active status and exits back to whatever
// status was active before (tracked per-task, not a fixed target — see
// DESIGN.md's Open Question decision).
var validTaskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusTodo:       {TaskStatusInProgress, TaskStatusBlocked, TaskStatusCancelled},
	TaskStatusInProgress: {TaskStatusReview, TaskStatusTesting, TaskStatusBlocked, TaskStatusDone, TaskStatusCancelled, TaskStatusTodo},
	TaskStatusReview:     {TaskStatusInProgress, TaskStatusTesting, TaskStatusBlocked, TaskStatusDone, TaskStatusCancelled},
	TaskStatusTesting:    {TaskStatusInProgress, TaskStatusReview, TaskStatusBlocked, TaskStatusDone, TaskStatusCancelled},
	TaskStatusBlocked:    {}, // exits are decided by Task.SetStatus via preBlockedStatus
	TaskStatusDone:       {},
	TaskStatusCancelled:  {},
}

// CanTransitionTo reports whether status -> target is a legal transition,
// independent of the blocked-exit special case (Task.SetStatus handles
// that, since the allowed target is data-dependent on preBlockedStatus).
func (s TaskStatus) CanTransitionTo(target TaskStatus) bool {
	if s == TaskStatusBlocked {
		return false // blocked exits are decided by Task.SetStatus
	}
	for _, v := range validTaskTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// IsActive reports whether a status is one blocked can return to.
func (s TaskStatus) IsActive() bool { return activeStatuses[s] }

// IsTerminal reports whether the status accepts no further status
// transitions in normal flow (spec §4.2.a).
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusDone || s == TaskStatusCancelled
}

// TaskPriority is the task's urgency value object (spec §3).
type TaskPriority string

const (
	PriorityCritical TaskPriority = "critical"
	PriorityUrgent   TaskPriority = "urgent"
	PriorityHigh     TaskPriority = "high"
	PriorityMedium   TaskPriority = "medium"
	PriorityLow      TaskPriority = "low"
)

// BasePriorityScore implements the §4.1.d scoring table.
func (p TaskPriority) BasePriorityScore() float64 {
	switch p {
	case PriorityCritical:
		return 100
	case PriorityUrgent:
		return 90
	case PriorityHigh:
		return 75
	case PriorityMedium:
		return 50
	case PriorityLow:
		return 25
	default:
		return 0
	}
}

// ProgressState is derived, never set independently (spec §4.2.e).
type ProgressState string

const (
	ProgressStateInitial    ProgressState = "initial"
	ProgressStateInProgress ProgressState = "in_progress"
	ProgressStateComplete   ProgressState = "complete"
)

// DeriveProgressState implements the §4.2.e derivation rule.
func DeriveProgressState(status TaskStatus, overallProgress int) ProgressState {
	if status == TaskStatusDone {
		return ProgressStateComplete
	}
	if overallProgress == 0 && (status == TaskStatusTodo) {
		return ProgressStateInitial
	}
	if overallProgress > 0 || status == TaskStatusInProgress {
		return ProgressStateInProgress
	}
	switch {
	case overallProgress >= 100:
		return ProgressStateComplete
	case overallProgress > 0:
		return ProgressStateInProgress
	default:
		return ProgressStateInitial
	}
}
