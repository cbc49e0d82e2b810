package kernel

import (
	"context"
	"fmt"
)

// CleanupObsoleteAssignments unassigns every branch whose assigned agent
// no longer exists in the project's registry or has gone offline,
// returning the number of branches freed (manage_project's
// "cleanup-obsolete" action, spec §6). Orchestrate can then reassign them
// on its next pass.
func (k *Kernel) CleanupObsoleteAssignments(ctx context.Context, projectID string) (int, error) {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return 0, err
	}
	cleaned := 0
	for branchID, branch := range p.Branches {
		if branch.AssignedAgentID == nil {
			continue
		}
		agent, exists := p.Agents[*branch.AssignedAgentID]
		if exists && agent.IsAvailable() {
			continue
		}
		if err := k.projects.UnassignBranch(ctx, branchID); err != nil {
			return cleaned, err
		}
		cleaned++
	}
	if cleaned > 0 {
		k.metrics.IncrementCounter("kernel_obsolete_assignments_cleaned_total", float64(cleaned))
	}
	return cleaned, nil
}

// IntegrityReport lists every inconsistency CheckIntegrity found between
// the project's branch/agent/assignment bookkeeping.
type IntegrityReport struct {
	Issues []string
}

func (r *IntegrityReport) OK() bool { return len(r.Issues) == 0 }

// CheckIntegrity cross-validates the project aggregate's three linked
// views of agent assignment (branch.AssignedAgentID, p.Assignments, and
// the agent registry itself) plus the cross-tree dependency graph's
// references, since none of those four collections carries a foreign key
// at the storage layer (manage_project's "validate-integrity" action,
// spec §6, §9 "no back-pointers, ids everywhere sideways").
func (k *Kernel) CheckIntegrity(ctx context.Context, projectID string) (*IntegrityReport, error) {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	report := &IntegrityReport{}

	for branchID, branch := range p.Branches {
		if branch.AssignedAgentID == nil {
			continue
		}
		if _, ok := p.Agents[*branch.AssignedAgentID]; !ok {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"branch %s is assigned to unknown agent %s", branchID, *branch.AssignedAgentID))
		}
		if assigned, ok := p.Assignments[branchID]; !ok || assigned != *branch.AssignedAgentID {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"branch %s's assigned_agent_id (%s) disagrees with the assignments index (%s)",
				branchID, *branch.AssignedAgentID, p.Assignments[branchID]))
		}
	}
	for branchID, agentID := range p.Assignments {
		if _, ok := p.Branches[branchID]; !ok {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"assignments index references unknown branch %s (agent %s)", branchID, agentID))
		}
	}
	for key, agentID := range p.ResourceLocks {
		if _, ok := p.Agents[agentID]; !ok {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"resource lock %q is held by unknown agent %s", key, agentID))
		}
	}
	for dependent, prereqs := range p.CrossTreeDeps {
		if _, err := k.taskByID(ctx, dependent); err != nil {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"cross-tree dependency graph references unknown dependent task %s", dependent))
		}
		for prereqID := range prereqs {
			if _, err := k.taskByID(ctx, prereqID); err != nil {
				report.Issues = append(report.Issues, fmt.Sprintf(
					"cross-tree dependency graph references unknown prerequisite task %s (dependent %s)", prereqID, dependent))
			}
		}
	}
	return report, nil
}
