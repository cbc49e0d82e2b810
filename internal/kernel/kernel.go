// Package kernel implements the work-coordination kernel (spec §4.1): the
// Project aggregate's branch/agent/assignment/cross-tree-dependency/
// session/resource-lock bookkeeping, plus the orchestration strategies
// that assign branches to agents, recommend the next task, detect
// resource conflicts, and propose workload rebalancing. Grounded on the
// strategy-function shape of teacher_ref/mcp_pattern/orchestrator.go's
// AssignmentStrategy, generalized from worker-instance assignment to
// agent-to-branch assignment.
package kernel

import (
	"context"
	"strings"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
)

// Kernel operates on the Project aggregate. It loads the aggregate's
// in-memory view from repository.ProjectRepository, mutates it, and
// persists the affected collection through the narrower per-collection
// repository methods (teacher_ref/mcp_pattern/orchestrator.go mutates an
// in-memory CollabState the same way; here the state is repository-backed
// rather than held in a long-lived process).
type Kernel struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	sessions repository.WorkSessionRepository
	logger   observability.Logger
	metrics  observability.MetricsClient
}

// New constructs a Kernel.
func New(projects repository.ProjectRepository, tasks repository.TaskRepository, sessions repository.WorkSessionRepository, logger observability.Logger, metrics observability.MetricsClient) *Kernel {
	return &Kernel{projects: projects, tasks: tasks, sessions: sessions, logger: logger, metrics: metrics}
}

// CreateBranch creates and persists a new branch, failing with Conflict
// when a branch of the same name already exists in the project (spec
// §4.1.a: uniqueness scope is the project).
func (k *Kernel) CreateBranch(ctx context.Context, projectID, name, description string) (*models.GitBranch, error) {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, exists := p.BranchByName(name); exists {
		return nil, apperrors.Conflict("branch %q already exists in project %s", name, projectID)
	}
	b := models.NewGitBranch(projectID, name, description)
	if err := k.projects.AddBranch(ctx, projectID, b); err != nil {
		return nil, err
	}
	return b, nil
}

// AddBranch persists an already-constructed branch (e.g. an import path),
// enforcing the same per-project name uniqueness as CreateBranch.
func (k *Kernel) AddBranch(ctx context.Context, projectID string, b *models.GitBranch) error {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if _, exists := p.BranchByName(b.Name); exists {
		return apperrors.Conflict("branch %q already exists in project %s", b.Name, projectID)
	}
	return k.projects.AddBranch(ctx, projectID, b)
}

// RegisterAgent is idempotent on id: registering twice replaces the
// existing registration, producing the same end state as a single call
// (spec §4.1.a, §8 round-trip property).
func (k *Kernel) RegisterAgent(ctx context.Context, projectID string, a *models.Agent) error {
	return k.projects.UpsertAgent(ctx, projectID, a)
}

// UnregisterAgent removes an agent from the registry, clearing any branch
// assignment that pointed at it.
func (k *Kernel) UnregisterAgent(ctx context.Context, agentID string) error {
	return k.projects.DeleteAgent(ctx, agentID)
}

// AssignAgentToBranch fails NotFound when agent or branch is unknown, and
// Conflict when the branch already carries a different agent (spec
// §4.1.a).
func (k *Kernel) AssignAgentToBranch(ctx context.Context, projectID, agentID, branchID string) error {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if _, ok := p.Agents[agentID]; !ok {
		return apperrors.NotFound("agent", agentID)
	}
	branch, ok := p.Branches[branchID]
	if !ok {
		return apperrors.NotFound("branch", branchID)
	}
	if branch.AssignedAgentID != nil && *branch.AssignedAgentID != agentID {
		return apperrors.Conflict("branch %s is already assigned to agent %s", branchID, *branch.AssignedAgentID)
	}
	return k.projects.AssignAgentToBranch(ctx, branchID, agentID)
}

// UnassignBranchFromAgent is the inverse of AssignAgentToBranch: it fails
// Conflict if branchID is not currently assigned to agentID (the caller's
// view of the assignment is stale), rather than silently clearing
// whichever agent actually holds it.
func (k *Kernel) UnassignBranchFromAgent(ctx context.Context, projectID, branchID, agentID string) error {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	branch, ok := p.Branches[branchID]
	if !ok {
		return apperrors.NotFound("branch", branchID)
	}
	if branch.AssignedAgentID == nil || *branch.AssignedAgentID != agentID {
		return apperrors.Conflict("branch %s is not assigned to agent %s", branchID, agentID)
	}
	return k.projects.UnassignBranch(ctx, branchID)
}

// GetAgent loads a single agent by id.
func (k *Kernel) GetAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	return k.projects.GetAgent(ctx, agentID)
}

// ListAgents lists every agent registered to a project.
func (k *Kernel) ListAgents(ctx context.Context, projectID string) ([]*models.Agent, error) {
	return k.projects.ListAgents(ctx, projectID)
}

// normalizeTaskID expands hex-only task ids to canonical 8-4-4-4-12 UUID
// form (spec §4.1.a).
func normalizeTaskID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation("task_id", "not a valid task id: %s", raw)
	}
	return id, nil
}

// AddCrossTreeDependency records that dependentTaskID requires
// prerequisiteTaskID to complete first. It fails Invalid when both tasks
// share a branch (a same-tree dependency belongs on the task itself, not
// the cross-tree graph) and NotFound when either task cannot be located
// (spec §4.1.a).
func (k *Kernel) AddCrossTreeDependency(ctx context.Context, projectID, dependentTaskIDRaw, prerequisiteTaskIDRaw string) error {
	dependentID, err := normalizeTaskID(dependentTaskIDRaw)
	if err != nil {
		return err
	}
	prereqID, err := normalizeTaskID(prerequisiteTaskIDRaw)
	if err != nil {
		return err
	}

	dependent, err := k.tasks.Get(ctx, dependentID)
	if err != nil {
		return err
	}
	prereq, err := k.tasks.Get(ctx, prereqID)
	if err != nil {
		return err
	}
	if dependent.BranchID == prereq.BranchID {
		return apperrors.Validation("prerequisite_task_id", "tasks %s and %s belong to the same branch; use an in-task dependency instead", dependentID, prereqID)
	}
	return k.projects.AddCrossTreeDependency(ctx, projectID, dependentID.String(), prereqID.String())
}

// RemoveCrossTreeDependency is the inverse of AddCrossTreeDependency.
func (k *Kernel) RemoveCrossTreeDependency(ctx context.Context, projectID, dependentTaskIDRaw, prerequisiteTaskIDRaw string) error {
	dependentID, err := normalizeTaskID(dependentTaskIDRaw)
	if err != nil {
		return err
	}
	prereqID, err := normalizeTaskID(prerequisiteTaskIDRaw)
	if err != nil {
		return err
	}
	return k.projects.RemoveCrossTreeDependency(ctx, projectID, dependentID.String(), prereqID.String())
}

// DependencyReport is the result of CoordinateCrossTreeDependencies: for
// every dependent task with at least one incomplete prerequisite, the set
// of prerequisite ids still outstanding.
type DependencyReport struct {
	BlockedTasks map[string][]string
}

// CoordinateCrossTreeDependencies walks the project's cross-tree
// dependency graph and reports which dependent tasks remain blocked on an
// incomplete prerequisite (spec §4.1.a).
func (k *Kernel) CoordinateCrossTreeDependencies(ctx context.Context, projectID string) (*DependencyReport, error) {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	report := &DependencyReport{BlockedTasks: map[string][]string{}}
	for dependent, prereqs := range p.CrossTreeDeps {
		for prereqIDRaw := range prereqs {
			prereqID, err := uuid.Parse(prereqIDRaw)
			if err != nil {
				continue
			}
			prereq, err := k.tasks.Get(ctx, prereqID)
			if err != nil {
				continue
			}
			if prereq.Status != models.TaskStatusDone {
				report.BlockedTasks[dependent] = append(report.BlockedTasks[dependent], prereqIDRaw)
			}
		}
	}
	return report, nil
}

// OrchestrationStatus summarizes a project's coordination state for the
// manage_project health-check/status surface.
type OrchestrationStatus struct {
	BranchCount         int
	AssignedBranches    int
	UnassignedBranches  int
	AgentCount          int
	AvailableAgents     int
	ActiveSessionCount  int
	ResourceLockCount   int
	PendingDependencies int
}

// GetOrchestrationStatus reports the project's current coordination state
// (spec §4.1.a).
func (k *Kernel) GetOrchestrationStatus(ctx context.Context, projectID string) (*OrchestrationStatus, error) {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	status := &OrchestrationStatus{
		BranchCount:       len(p.Branches),
		AgentCount:        len(p.Agents),
		ActiveSessionCount: len(p.Sessions),
		ResourceLockCount: len(p.ResourceLocks),
	}
	for _, b := range p.Branches {
		if b.AssignedAgentID != nil {
			status.AssignedBranches++
		} else {
			status.UnassignedBranches++
		}
	}
	for _, a := range p.Agents {
		if a.IsAvailable() {
			status.AvailableAgents++
		}
	}
	for _, prereqs := range p.CrossTreeDeps {
		for prereqIDRaw := range prereqs {
			prereqID, err := uuid.Parse(prereqIDRaw)
			if err != nil {
				continue
			}
			prereq, err := k.tasks.Get(ctx, prereqID)
			if err == nil && prereq.Status != models.TaskStatusDone {
				status.PendingDependencies++
			}
		}
	}
	return status, nil
}

// GetAvailableWorkForAgent returns the agent's assigned branches' todo
// tasks whose cross-tree prerequisites are all done (spec §4.1.a).
func (k *Kernel) GetAvailableWorkForAgent(ctx context.Context, projectID, agentID string) ([]*models.Task, error) {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, ok := p.Agents[agentID]; !ok {
		return nil, apperrors.NotFound("agent", agentID)
	}

	var available []*models.Task
	for branchID, assignedAgent := range p.Assignments {
		if assignedAgent != agentID {
			continue
		}
		tasks, err := k.tasks.ListByBranch(ctx, branchID)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if t.Status != models.TaskStatusTodo {
				continue
			}
			ok, err := k.prerequisitesDone(ctx, p, t.ID.String())
			if err != nil {
				return nil, err
			}
			if ok {
				available = append(available, t)
			}
		}
	}
	return available, nil
}

// prerequisitesDone reports whether every cross-tree prerequisite of
// dependentTaskID is in the done status (spec §4.1.a: "a prerequisite is
// completed iff its status is done").
func (k *Kernel) prerequisitesDone(ctx context.Context, p *models.Project, dependentTaskID string) (bool, error) {
	prereqs, ok := p.CrossTreeDeps[dependentTaskID]
	if !ok {
		return true, nil
	}
	for prereqIDRaw := range prereqs {
		prereqID, err := uuid.Parse(prereqIDRaw)
		if err != nil {
			continue
		}
		prereq, err := k.tasks.Get(ctx, prereqID)
		if err != nil {
			if apperrors.CodeOf(err) == apperrors.CodeNotFound {
				continue
			}
			return false, err
		}
		if prereq.Status != models.TaskStatusDone {
			return false, nil
		}
	}
	return true, nil
}

// DeleteProject enforces spec §4.1.b: deletion is permitted only when the
// project has zero branches, or exactly one branch named "main" owning
// zero tasks. force bypasses the check but still cascades.
func (k *Kernel) DeleteProject(ctx context.Context, projectID string, force bool) error {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if !force {
		if err := checkDeletionSafety(p); err != nil {
			return err
		}
	}
	return k.projects.Delete(ctx, projectID)
}

func checkDeletionSafety(p *models.Project) error {
	switch len(p.Branches) {
	case 0:
		return nil
	case 1:
		for _, b := range p.Branches {
			if strings.EqualFold(b.Name, "main") && b.IsEmpty() {
				return nil
			}
		}
	}
	return apperrors.Conflict("project %s holds branches with work; pass force=true to delete anyway", p.ID)
}
