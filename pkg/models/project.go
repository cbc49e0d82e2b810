package models

// ProjectStatus is the project's lifecycle status (spec §3).
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

// Project is the coordination kernel's aggregate root (spec §3, §4.1).
// It owns branches, the agent registry, assignments, the cross-tree
// dependency graph, active sessions, and resource locks. Mutation methods
// live in internal/kernel (the kernel operates on this struct by id-based
// composition, per spec §9: no back-pointers, ids everywhere sideways).
type Project struct {
	Timestamps

	ID       string        `json:"id" db:"id"`
	TenantID string        `json:"tenant_id" db:"tenant_id"`
	Name     string        `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Status   ProjectStatus `json:"status" db:"status"`
	Metadata JSONMap       `json:"metadata" db:"metadata"`

	Branches    map[string]*GitBranch `json:"branches" db:"-"`
	Agents      map[string]*Agent     `json:"agents" db:"-"`
	Assignments map[string]string     `json:"assignments" db:"-"` // branch_id -> agent_id

	// CrossTreeDeps maps a dependent task id to the set of prerequisite
	// task ids it depends on (spec §3, §4.1.a).
	CrossTreeDeps map[string]map[string]bool `json:"cross_tree_deps" db:"-"`

	Sessions map[string]*WorkSession `json:"sessions" db:"-"`

	// ResourceLocks maps an advisory resource key to the agent holding it
	// (spec §3, §5).
	ResourceLocks map[string]string `json:"resource_locks" db:"-"`
}

// NewProject constructs an empty project in the active status.
func NewProject(tenantID, name, description string) *Project {
	p := &Project{
		ID: NewID().String(), TenantID: tenantID, Name: name, Description: description,
		Status:        ProjectStatusActive,
		Metadata:      JSONMap{},
		Branches:      map[string]*GitBranch{},
		Agents:        map[string]*Agent{},
		Assignments:   map[string]string{},
		CrossTreeDeps: map[string]map[string]bool{},
		Sessions:      map[string]*WorkSession{},
		ResourceLocks: map[string]string{},
	}
	p.Touch()
	return p
}

// BranchByName finds a branch by its project-unique name.
func (p *Project) BranchByName(name string) (*GitBranch, bool) {
	for _, b := range p.Branches {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// GitBranch is a workspace within a project (spec §3).
type GitBranch struct {
	Timestamps

	ID                 string `json:"id" db:"id"`
	ProjectID          string `json:"project_id" db:"project_id"`
	Name               string `json:"name" db:"name"`
	Description        string `json:"description" db:"description"`
	AssignedAgentID    *string `json:"assigned_agent_id,omitempty" db:"assigned_agent_id"`
	Status             string  `json:"status" db:"status"`
	TaskCount          int     `json:"task_count" db:"task_count"`
	CompletedTaskCount int     `json:"completed_task_count" db:"completed_task_count"`

	// TaskIDs is the downward-only link to owned tasks (spec §9: no
	// back-pointers; ids everywhere sideways).
	TaskIDs []string `json:"task_ids" db:"-"`
}

// NewGitBranch constructs a branch in the active status.
func NewGitBranch(projectID, name, description string) *GitBranch {
	b := &GitBranch{
		ID: NewID().String(), ProjectID: projectID, Name: name, Description: description,
		Status: "active", TaskIDs: []string{},
	}
	b.Touch()
	return b
}

// IsEmpty reports whether the branch owns no tasks (used by the project
// deletion safety rule, spec §4.1.b).
func (b *GitBranch) IsEmpty() bool { return len(b.TaskIDs) == 0 }
