package models

// Capability is a closed enum of skills an agent may advertise (spec §3,
// used by the keyword-driven orchestration scoring of §4.1.c).
type Capability string

const (
	CapabilityFrontend Capability = "FRONTEND_DEVELOPMENT"
	CapabilityBackend  Capability = "BACKEND_DEVELOPMENT"
	CapabilityDevOps   Capability = "DEVOPS"
	CapabilityTesting  Capability = "TESTING"
	CapabilityGeneral  Capability = "GENERAL"
)

// AgentStatus is the agent's availability (spec §3).
type AgentStatus string

const (
	AgentStatusAvailable AgentStatus = "available"
	AgentStatusBusy      AgentStatus = "busy"
	AgentStatusOffline   AgentStatus = "offline"
)

// Agent is registered per-project (spec §3).
type Agent struct {
	Timestamps

	ID                  string             `json:"id" db:"id"`
	ProjectID           string             `json:"project_id" db:"project_id"`
	Name                string             `json:"name" db:"name"`
	Capabilities        map[Capability]bool `json:"capabilities" db:"-"`
	PreferredLanguages  []string           `json:"preferred_languages" db:"-"`
	Status              AgentStatus        `json:"status" db:"status"`
	ActiveTasks         []string           `json:"active_task_ids" db:"-"`
	PriorityPreference  TaskPriority       `json:"priority_preference,omitempty" db:"priority_preference"`
	WorkloadPercentage  float64            `json:"workload_percentage" db:"workload_percentage"`
}

// NewAgent constructs an agent in the available status.
func NewAgent(id, name string, capabilities []Capability, languages []string) *Agent {
	caps := make(map[Capability]bool, len(capabilities))
	for _, c := range capabilities {
		caps[c] = true
	}
	a := &Agent{
		ID:                 id,
		Name:               name,
		Capabilities:       caps,
		PreferredLanguages: languages,
		Status:             AgentStatusAvailable,
		ActiveTasks:        []string{},
	}
	a.Touch()
	return a
}

// HasCapability reports whether the agent advertises cap.
func (a *Agent) HasCapability(cap Capability) bool { return a.Capabilities[cap] }

// IsAvailable reports availability per §4.1.c ("not offline").
func (a *Agent) IsAvailable() bool { return a.Status != AgentStatusOffline }

// IsOverloaded/IsUnderloaded implement the thresholds of spec §4.1.g.
func (a *Agent) IsOverloaded() bool  { return a.WorkloadPercentage > 80 }
func (a *Agent) IsUnderloaded() bool { return a.WorkloadPercentage < 50 }

// AddActiveTask records a task assignment, idempotently.
func (a *Agent) AddActiveTask(taskID string) {
	for _, id := range a.ActiveTasks {
		if id == taskID {
			return
		}
	}
	a.ActiveTasks = append(a.ActiveTasks, taskID)
	a.Touch()
}

// RemoveActiveTask removes a task assignment if present.
func (a *Agent) RemoveActiveTask(taskID string) {
	for i, id := range a.ActiveTasks {
		if id == taskID {
			a.ActiveTasks = append(a.ActiveTasks[:i], a.ActiveTasks[i+1:]...)
			a.Touch()
			return
		}
	}
}
