package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgressType enumerates the eight progress kinds of spec §3.
type ProgressType string

const (
	ProgressTypeAnalysis      ProgressType = "analysis"
	ProgressTypeDesign        ProgressType = "design"
	ProgressTypeImplementation ProgressType = "implementation"
	ProgressTypeTesting       ProgressType = "testing"
	ProgressTypeDocumentation ProgressType = "documentation"
	ProgressTypeReview        ProgressType = "review"
	ProgressTypeDeployment    ProgressType = "deployment"
	ProgressTypeGeneral       ProgressType = "general"
)

// ProgressSnapshot is one immutable entry in a task's progress timeline
// (spec §3).
type ProgressSnapshot struct {
	ID           uuid.UUID    `json:"id"`
	TaskID       uuid.UUID    `json:"task_id"`
	Timestamp    time.Time    `json:"timestamp"`
	ProgressType ProgressType `json:"progress_type"`
	Percentage   int          `json:"percentage"`
	Status       string       `json:"status"`
	Description  string       `json:"description"`
	Metadata     SnapshotMetadata `json:"metadata"`
	AgentID      string       `json:"agent_id,omitempty"`
}

// SnapshotMetadata carries the structured metadata of spec §3.
type SnapshotMetadata struct {
	Blockers            []string `json:"blockers,omitempty"`
	Dependencies        []string `json:"dependencies,omitempty"`
	ConfidenceLevel     float64  `json:"confidence_level,omitempty"`
	Notes               string   `json:"notes,omitempty"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
}

// ProgressTimeline is the per-task append-only log plus milestone map.
type ProgressTimeline struct {
	Snapshots  []ProgressSnapshot `json:"snapshots"`
	Milestones map[string]int     `json:"milestones"` // name -> threshold percentage

	// typeCompletion tracks whether a progress type has already reached
	// 100% so TypeCompleted fires only on the <100 -> 100 transition.
	typeCompletion map[ProgressType]bool
}

// Append records a new snapshot, returning the events it produced
// (ProgressTypeCompleted on a <100 -> 100 transition for that type).
func (pt *ProgressTimeline) Append(taskID uuid.UUID, snapshot ProgressSnapshot) []DomainEvent {
	snapshot.ID = NewID()
	snapshot.TaskID = taskID
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	pt.Snapshots = append(pt.Snapshots, snapshot)

	var events []DomainEvent
	if pt.typeCompletion == nil {
		pt.typeCompletion = make(map[ProgressType]bool)
	}
	wasComplete := pt.typeCompletion[snapshot.ProgressType]
	if snapshot.Percentage >= 100 && !wasComplete {
		pt.typeCompletion[snapshot.ProgressType] = true
		events = append(events, NewProgressTypeCompleted(taskID, string(snapshot.ProgressType)))
	} else if snapshot.Percentage < 100 {
		pt.typeCompletion[snapshot.ProgressType] = false
	}
	return events
}

// OverallPercentage returns the most recent snapshot's percentage across
// all progress types, averaged, and whether any snapshot exists.
func (pt *ProgressTimeline) OverallPercentage() (int, bool) {
	if len(pt.Snapshots) == 0 {
		return 0, false
	}
	latestByType := map[ProgressType]int{}
	for _, s := range pt.Snapshots {
		latestByType[s.ProgressType] = s.Percentage
	}
	sum := 0
	for _, v := range latestByType {
		sum += v
	}
	return sum / len(latestByType), true
}
