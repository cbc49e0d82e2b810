package models

import (
	"time"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/google/uuid"
)

// SessionStatus is the work session's five-state lifecycle (spec §4.1.e).
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
	SessionTimeout   SessionStatus = "timeout"
)

var terminalSessionStates = map[SessionStatus]bool{
	SessionCompleted: true, SessionCancelled: true, SessionTimeout: true,
}

var validSessionTransitions = map[SessionStatus][]SessionStatus{
	SessionActive: {SessionPaused, SessionCompleted, SessionCancelled, SessionTimeout},
	SessionPaused: {SessionActive, SessionCompleted, SessionCancelled, SessionTimeout},
}

// ProgressUpdateEntry is one append-only log entry (spec §3).
type ProgressUpdateEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// WorkSession is an agent's explicit claim on a task (spec §3, §4.1.e).
type WorkSession struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	AgentID   string    `json:"agent_id" db:"agent_id"`
	TaskID    uuid.UUID `json:"task_id" db:"task_id"`
	BranchID  uuid.UUID `json:"branch_id" db:"branch_id"`

	StartedAt time.Time  `json:"started_at" db:"started_at"`
	Status    SessionStatus `json:"status" db:"status"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	PausedAt  *time.Time `json:"paused_at,omitempty" db:"paused_at"`

	TotalPausedDuration time.Duration `json:"total_paused_duration" db:"total_paused_duration"`

	ProgressUpdates []ProgressUpdateEntry `json:"progress_updates" db:"-"`
	ResourcesLocked map[string]bool       `json:"resources_locked" db:"-"`

	MaxDuration  *time.Duration `json:"max_duration,omitempty" db:"max_duration"`
	LastActivity time.Time      `json:"last_activity" db:"last_activity"`
}

// NewWorkSession constructs an active session.
func NewWorkSession(projectID, agentID string, taskID, branchID uuid.UUID, maxDuration *time.Duration) (*WorkSession, error) {
	if agentID == "" {
		return nil, apperrors.Validation("agent_id", "must not be empty")
	}
	if taskID == uuid.Nil {
		return nil, apperrors.Validation("task_id", "must not be empty")
	}
	if branchID == uuid.Nil {
		return nil, apperrors.Validation("branch_id", "must not be empty")
	}
	now := time.Now().UTC()
	return &WorkSession{
		ID: NewID(), ProjectID: projectID, AgentID: agentID, TaskID: taskID, BranchID: branchID,
		StartedAt: now, Status: SessionActive, ResourcesLocked: map[string]bool{},
		MaxDuration: maxDuration, LastActivity: now,
	}, nil
}

func (s *WorkSession) canTransitionTo(target SessionStatus) bool {
	for _, v := range validSessionTransitions[s.Status] {
		if v == target {
			return true
		}
	}
	return false
}

func (s *WorkSession) transition(target SessionStatus) error {
	if !s.canTransitionTo(target) {
		return apperrors.Validation("status", "invalid session transition from %s to %s", s.Status, target)
	}
	s.Status = target
	s.LastActivity = time.Now().UTC()
	if terminalSessionStates[target] {
		now := s.LastActivity
		s.EndedAt = &now
	}
	return nil
}

// Pause moves active -> paused, recording PausedAt.
func (s *WorkSession) Pause() error {
	if err := s.transition(SessionPaused); err != nil {
		return err
	}
	now := time.Now().UTC()
	s.PausedAt = &now
	return nil
}

// Resume moves paused -> active, accumulating the elapsed pause into
// TotalPausedDuration (spec §4.1.e / §8 round-trip property).
func (s *WorkSession) Resume() error {
	if s.PausedAt != nil {
		s.TotalPausedDuration += time.Since(*s.PausedAt)
		s.PausedAt = nil
	}
	return s.transition(SessionActive)
}

// Complete moves active|paused -> completed.
func (s *WorkSession) Complete() error { return s.transition(SessionCompleted) }

// Cancel moves active|paused -> cancelled.
func (s *WorkSession) Cancel() error { return s.transition(SessionCancelled) }

// TimeoutNow transitions to timeout; idempotent for already-terminal
// sessions (spec §5 sweep idempotence).
func (s *WorkSession) TimeoutNow() error {
	if terminalSessionStates[s.Status] {
		return nil
	}
	return s.transition(SessionTimeout)
}

// TotalDuration is wall-clock time since start (spec §4.1.e).
func (s *WorkSession) TotalDuration() time.Duration {
	end := time.Now().UTC()
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	return end.Sub(s.StartedAt)
}

// ActiveDuration implements active_duration = total_duration -
// total_paused_duration (spec §4.1.e / §8 round-trip property).
func (s *WorkSession) ActiveDuration() time.Duration {
	return s.TotalDuration() - s.TotalPausedDuration
}

// IsTimedOut reports whether the session has exceeded MaxDuration.
func (s *WorkSession) IsTimedOut() bool {
	if s.MaxDuration == nil || terminalSessionStates[s.Status] {
		return false
	}
	return s.TotalDuration() > *s.MaxDuration
}

// RecordProgress appends a progress update and advances LastActivity
// (spec §4.1.e: "every progress update" advances last_activity).
func (s *WorkSession) RecordProgress(updateType, message string, metadata map[string]interface{}) {
	s.ProgressUpdates = append(s.ProgressUpdates, ProgressUpdateEntry{
		Timestamp: time.Now().UTC(), Type: updateType, Message: message, Metadata: metadata,
	})
	s.LastActivity = time.Now().UTC()
}

// LockResource/UnlockResource manage the session's advisory resource
// locks (spec §3, §5).
func (s *WorkSession) LockResource(key string) { s.ResourcesLocked[key] = true }
func (s *WorkSession) UnlockResource(key string) { delete(s.ResourcesLocked, key) }
