package facade

import (
	"context"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

// AgentParams is the union of every field manage_agent accepts (spec §6).
type AgentParams struct {
	AgentID   string
	ProjectID string
	BranchID  string
	Name      string

	Capabilities []models.Capability
	Languages    []string

	NameSet         bool
	CapabilitiesSet bool
	LanguagesSet    bool
	StatusSet       bool
	Status          models.AgentStatus
	PrioritySet     bool
	Priority        models.TaskPriority
}

// ManageAgent dispatches one manage_agent action (spec §6).
func (f *Facade) ManageAgent(ctx context.Context, action string, p AgentParams) *Response {
	switch action {
	case "register":
		return f.agentRegister(ctx, p)
	case "unregister":
		return f.agentUnregister(ctx, p)
	case "assign":
		return f.agentAssign(ctx, p)
	case "unassign":
		return f.agentUnassign(ctx, p)
	case "get":
		return f.agentGet(ctx, p)
	case "list":
		return f.agentList(ctx, p)
	case "update":
		return f.agentUpdate(ctx, p)
	case "rebalance":
		return f.agentRebalance(ctx, p)
	default:
		return fail(apperrors.Validation("action", "unknown manage_agent action %q", action))
	}
}

func (f *Facade) agentRegister(ctx context.Context, p AgentParams) *Response {
	if p.AgentID == "" {
		return fail(apperrors.Validation("agent_id", "is required"))
	}
	if p.Name == "" {
		return fail(apperrors.Validation("name", "is required"))
	}
	a := models.NewAgent(p.AgentID, p.Name, p.Capabilities, p.Languages)
	a.ProjectID = p.ProjectID
	if err := f.kernel.RegisterAgent(ctx, p.ProjectID, a); err != nil {
		return fail(err)
	}
	return ok(a)
}

func (f *Facade) agentUnregister(ctx context.Context, p AgentParams) *Response {
	if err := f.kernel.UnregisterAgent(ctx, p.AgentID); err != nil {
		return fail(err)
	}
	return ok(map[string]string{"agent_id": p.AgentID})
}

func (f *Facade) agentAssign(ctx context.Context, p AgentParams) *Response {
	if p.BranchID == "" {
		return fail(apperrors.Validation("branch_id", "is required"))
	}
	if err := f.kernel.AssignAgentToBranch(ctx, p.ProjectID, p.AgentID, p.BranchID); err != nil {
		return fail(err)
	}
	return ok(map[string]string{"agent_id": p.AgentID, "branch_id": p.BranchID})
}

func (f *Facade) agentUnassign(ctx context.Context, p AgentParams) *Response {
	if p.BranchID == "" {
		return fail(apperrors.Validation("branch_id", "is required"))
	}
	if err := f.kernel.UnassignBranchFromAgent(ctx, p.ProjectID, p.BranchID, p.AgentID); err != nil {
		return fail(err)
	}
	return ok(map[string]string{"branch_id": p.BranchID})
}

func (f *Facade) agentGet(ctx context.Context, p AgentParams) *Response {
	a, err := f.kernel.GetAgent(ctx, p.AgentID)
	if err != nil {
		return fail(err)
	}
	return ok(a)
}

func (f *Facade) agentList(ctx context.Context, p AgentParams) *Response {
	list, err := f.kernel.ListAgents(ctx, p.ProjectID)
	if err != nil {
		return fail(err)
	}
	return ok(list)
}

func (f *Facade) agentUpdate(ctx context.Context, p AgentParams) *Response {
	a, err := f.kernel.GetAgent(ctx, p.AgentID)
	if err != nil {
		return fail(err)
	}
	if p.NameSet {
		a.Name = p.Name
	}
	if p.CapabilitiesSet {
		caps := make(map[models.Capability]bool, len(p.Capabilities))
		for _, c := range p.Capabilities {
			caps[c] = true
		}
		a.Capabilities = caps
	}
	if p.LanguagesSet {
		a.PreferredLanguages = p.Languages
	}
	if p.StatusSet {
		a.Status = p.Status
	}
	if p.PrioritySet {
		a.PriorityPreference = p.Priority
	}
	a.Touch()
	if err := f.kernel.RegisterAgent(ctx, p.ProjectID, a); err != nil {
		return fail(err)
	}
	return ok(a)
}

func (f *Facade) agentRebalance(ctx context.Context, p AgentParams) *Response {
	proposals, err := f.kernel.ProposeWorkloadBalance(ctx, p.ProjectID)
	if err != nil {
		return fail(err)
	}
	return ok(proposals)
}
