package models

import (
	"time"

	"github.com/google/uuid"
)

// DelegationTrigger is the closed enum of reasons a delegation was raised
// (spec §4.3.d).
type DelegationTrigger string

const (
	TriggerManual        DelegationTrigger = "manual"
	TriggerAutoPattern   DelegationTrigger = "auto_pattern"
	TriggerAutoThreshold DelegationTrigger = "auto_threshold"
)

// ContextDelegation is a proposed upward or downward write across levels
// (spec §3, §4.3.d). Delegations never mutate the target directly; they
// queue for approval and are merged only once Approved.
type ContextDelegation struct {
	Timestamps

	ID uuid.UUID `json:"id" db:"id"`

	SourceLevel ContextLevel `json:"source_level" db:"source_level"`
	SourceID    string       `json:"source_id" db:"source_id"`
	TargetLevel ContextLevel `json:"target_level" db:"target_level"`
	TargetID    string       `json:"target_id" db:"target_id"`

	DelegatedData JSONMap           `json:"delegated_data" db:"delegated_data"`
	Reason        string            `json:"reason" db:"reason"`
	TriggerType   DelegationTrigger `json:"trigger_type" db:"trigger_type"`

	Processed       bool     `json:"processed" db:"processed"`
	Approved        bool     `json:"approved" db:"approved"`
	ConfidenceScore float64  `json:"confidence_score" db:"confidence_score"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty" db:"processed_at"`
}

// NewContextDelegation constructs an unprocessed delegation proposal.
func NewContextDelegation(sourceLevel ContextLevel, sourceID string, targetLevel ContextLevel, targetID string, data JSONMap, reason string, trigger DelegationTrigger, confidence float64) *ContextDelegation {
	d := &ContextDelegation{
		ID: NewID(), SourceLevel: sourceLevel, SourceID: sourceID,
		TargetLevel: targetLevel, TargetID: targetID,
		DelegatedData: data, Reason: reason, TriggerType: trigger,
		ConfidenceScore: confidence,
	}
	d.Touch()
	return d
}

// Approve marks the delegation approved and processed; it is now eligible
// to be merged into the target level's context (spec §4.3.d).
func (d *ContextDelegation) Approve() {
	d.Approved = true
	d.markProcessed()
}

// Reject marks the delegation processed without approval; it is never
// merged.
func (d *ContextDelegation) Reject() {
	d.Approved = false
	d.markProcessed()
}

func (d *ContextDelegation) markProcessed() {
	d.Processed = true
	now := time.Now().UTC()
	d.ProcessedAt = &now
	d.Touch()
}

// IsUpward reports whether this delegation moves data toward a more
// general level (task -> branch -> project -> global), the direction that
// requires approval before merge per §4.3.d.
func (d *ContextDelegation) IsUpward() bool {
	return levelRank(d.TargetLevel) < levelRank(d.SourceLevel)
}

func levelRank(l ContextLevel) int {
	switch l {
	case LevelGlobal:
		return 0
	case LevelProject:
		return 1
	case LevelBranch:
		return 2
	case LevelTask:
		return 3
	default:
		return -1
	}
}
