package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType names one of the task engine's domain events (spec §4.2.g).
type EventType string

const (
	EventTaskCreated             EventType = "TaskCreated"
	EventTaskUpdated             EventType = "TaskUpdated"
	EventTaskRetrieved           EventType = "TaskRetrieved"
	EventTaskDeleted             EventType = "TaskDeleted"
	EventProgressUpdated         EventType = "ProgressUpdated"
	EventProgressMilestoneReached EventType = "ProgressMilestoneReached"
	EventProgressTypeCompleted   EventType = "ProgressTypeCompleted"
)

// DomainEvent is the value-typed, frozen event every engine method appends
// to an entity's transient event buffer. Composition over inheritance
// (spec §9): there is no BaseEvent class, just a shared struct shape.
type DomainEvent struct {
	EventType EventType              `json:"event_type"`
	TaskID    uuid.UUID              `json:"task_id"`
	Timestamp time.Time              `json:"timestamp"`
	FieldName string                 `json:"field_name,omitempty"`
	OldValue  interface{}            `json:"old_value,omitempty"`
	NewValue  interface{}            `json:"new_value,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ToDict projects the event into a plain map, matching the teacher corpus's
// to_dict convention and guaranteeing a stable JSON round trip (spec §8).
func (e DomainEvent) ToDict() map[string]interface{} {
	d := map[string]interface{}{
		"event_type": string(e.EventType),
		"task_id":    e.TaskID.String(),
		"timestamp":  e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if e.FieldName != "" {
		d["field_name"] = e.FieldName
	}
	if e.OldValue != nil {
		d["old_value"] = e.OldValue
	}
	if e.NewValue != nil {
		d["new_value"] = e.NewValue
	}
	if e.Metadata != nil {
		d["metadata"] = e.Metadata
	}
	return d
}

// NewTaskCreated builds a TaskCreated event.
func NewTaskCreated(taskID uuid.UUID) DomainEvent {
	return DomainEvent{EventType: EventTaskCreated, TaskID: taskID, Timestamp: time.Now().UTC()}
}

// NewTaskUpdated builds a TaskUpdated event for a single field change.
func NewTaskUpdated(taskID uuid.UUID, field string, oldValue, newValue interface{}, metadata map[string]interface{}) DomainEvent {
	return DomainEvent{
		EventType: EventTaskUpdated, TaskID: taskID, Timestamp: time.Now().UTC(),
		FieldName: field, OldValue: oldValue, NewValue: newValue, Metadata: metadata,
	}
}

// NewTaskRetrieved builds a TaskRetrieved event.
func NewTaskRetrieved(taskID uuid.UUID) DomainEvent {
	return DomainEvent{EventType: EventTaskRetrieved, TaskID: taskID, Timestamp: time.Now().UTC()}
}

// NewTaskDeleted builds a TaskDeleted event.
func NewTaskDeleted(taskID uuid.UUID) DomainEvent {
	return DomainEvent{EventType: EventTaskDeleted, TaskID: taskID, Timestamp: time.Now().UTC()}
}

// NewProgressUpdated builds a ProgressUpdated event.
func NewProgressUpdated(taskID uuid.UUID, newValue interface{}) DomainEvent {
	return DomainEvent{EventType: EventProgressUpdated, TaskID: taskID, Timestamp: time.Now().UTC(), NewValue: newValue}
}

// NewProgressMilestoneReached builds a ProgressMilestoneReached event.
func NewProgressMilestoneReached(taskID uuid.UUID, milestone string, percentage int) DomainEvent {
	return DomainEvent{
		EventType: EventProgressMilestoneReached, TaskID: taskID, Timestamp: time.Now().UTC(),
		FieldName: milestone, NewValue: percentage,
	}
}

// NewProgressTypeCompleted builds a ProgressTypeCompleted event.
func NewProgressTypeCompleted(taskID uuid.UUID, progressType string) DomainEvent {
	return DomainEvent{EventType: EventProgressTypeCompleted, TaskID: taskID, Timestamp: time.Now().UTC(), FieldName: progressType}
}

// EventRecorder is the composition-based alternative to a mutable event
// list mentioned in spec §9: any entity embeds one as a field.
type EventRecorder struct {
	events []DomainEvent
}

// Record appends an event to the buffer.
func (r *EventRecorder) Record(e DomainEvent) { r.events = append(r.events, e) }

// Drain returns and clears the buffered events; callers drain after a
// successful persistence step (spec §4.2.g / §9).
func (r *EventRecorder) Drain() []DomainEvent {
	out := r.events
	r.events = nil
	return out
}

// Pending returns the buffered events without clearing them, used by the
// milestone-dedup check (spec §4.2.e) to inspect what has already fired
// within the current flush.
func (r *EventRecorder) Pending() []DomainEvent { return r.events }
