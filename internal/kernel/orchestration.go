package kernel

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/devmesh-org/taskmesh/pkg/models"
)

// keywordCapabilities implements the §4.1.c keyword-detection table,
// mapping title+description substrings to the capability they imply.
var keywordCapabilities = []struct {
	keywords []string
	cap      models.Capability
}{
	{[]string{"frontend", "ui", "react"}, models.CapabilityFrontend},
	{[]string{"backend", "api", "server", "database"}, models.CapabilityBackend},
	{[]string{"deploy", "docker", "kubernetes", "ci"}, models.CapabilityDevOps},
	{[]string{"test", "qa", "quality"}, models.CapabilityTesting},
}

// inferredCapabilities derives which capabilities a set of tasks appears
// to require from simple keyword matching over title+description (spec
// §4.1.c).
func inferredCapabilities(tasks []*models.Task) map[models.Capability]bool {
	found := map[models.Capability]bool{}
	for _, t := range tasks {
		haystack := strings.ToLower(t.Title + " " + t.Description)
		for _, kc := range keywordCapabilities {
			for _, kw := range kc.keywords {
				if strings.Contains(haystack, kw) {
					found[kc.cap] = true
					break
				}
			}
		}
	}
	return found
}

// Assignment is a completed (or, from ProposeWorkloadBalance, a proposed)
// agent-to-branch or agent-to-task assignment.
type Assignment struct {
	BranchID string
	AgentID  string
	Score    float64
}

// scoreAgent implements the §4.1.c formula:
//
//	score = 50 + 30·capability_match_fraction + 10·language_match_fraction + 10·(1 - workload_fraction)
func scoreAgent(agent *models.Agent, required map[models.Capability]bool) float64 {
	capFraction := 1.0
	if len(required) > 0 {
		matched := 0
		for capability := range required {
			if agent.HasCapability(capability) {
				matched++
			}
		}
		capFraction = float64(matched) / float64(len(required))
	}
	// Language matching has no task-declared language requirement in this
	// data model, so it contributes its full share whenever the agent
	// advertises at least one preferred language.
	langFraction := 0.0
	if len(agent.PreferredLanguages) > 0 {
		langFraction = 1.0
	}
	workloadFraction := agent.WorkloadPercentage / 100
	return 50 + 30*capFraction + 10*langFraction + 10*(1-workloadFraction)
}

// Orchestrate assigns every unassigned branch in the project to its
// highest-scoring available agent, persisting the assignment, and returns
// the assignments made (spec §4.1.c). An agent is available when its
// status is not offline; ties break on lower workload.
func (k *Kernel) Orchestrate(ctx context.Context, projectID string) ([]Assignment, error) {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var made []Assignment
	for branchID, branch := range p.Branches {
		if branch.AssignedAgentID != nil {
			continue
		}
		tasks, err := k.tasks.ListByBranch(ctx, branchID)
		if err != nil {
			return nil, err
		}
		required := inferredCapabilities(tasks)

		var best *models.Agent
		var bestScore float64
		for _, agent := range p.Agents {
			if !agent.IsAvailable() {
				continue
			}
			score := scoreAgent(agent, required)
			if best == nil || score > bestScore ||
				(score == bestScore && agent.WorkloadPercentage < best.WorkloadPercentage) {
				best, bestScore = agent, score
			}
		}
		if best == nil || bestScore <= 0 {
			continue
		}
		if err := k.projects.AssignAgentToBranch(ctx, branchID, best.ID); err != nil {
			return nil, err
		}
		made = append(made, Assignment{BranchID: branchID, AgentID: best.ID, Score: bestScore})
	}
	return made, nil
}

// urgencyScore implements the §4.1.d due-date table relative to now.
func urgencyScore(due *time.Time, now time.Time) float64 {
	if due == nil {
		return 30
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
	daysUntil := dueDay.Sub(today).Hours() / 24
	switch {
	case daysUntil < 0:
		return 100
	case daysUntil == 0:
		return 90
	case daysUntil <= 1:
		return 80
	case daysUntil <= 3:
		return 70
	case daysUntil <= 7:
		return 50
	case daysUntil <= 30:
		return 30
	default:
		return 10
	}
}

// blockingScore implements the §4.1.d dependents-count table.
func blockingScore(dependentsCount int) float64 {
	switch {
	case dependentsCount == 0:
		return 20
	case dependentsCount == 1:
		return 40
	case dependentsCount <= 3:
		return 60
	case dependentsCount <= 5:
		return 80
	default:
		return 100
	}
}

// ageScore implements the §4.1.d task-age table.
func ageScore(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	switch {
	case age <= 24*time.Hour:
		return 10
	case age <= 3*24*time.Hour:
		return 20
	case age <= 7*24*time.Hour:
		return 40
	case age <= 30*24*time.Hour:
		return 60
	case age <= 90*24*time.Hour:
		return 80
	default:
		return 100
	}
}

// progressScore implements the §4.1.d status table.
func progressScore(status models.TaskStatus) float64 {
	switch status {
	case models.TaskStatusInProgress:
		return 100
	case models.TaskStatusReview:
		return 80
	case models.TaskStatusTesting:
		return 70
	case models.TaskStatusTodo:
		return 50
	default:
		return 0
	}
}

// scoreTask implements the full §4.1.d next-task formula: the weighted
// sum is clamped to [0, 100] and then adjusted by the incomplete-deps and
// dependents multipliers.
func scoreTask(t *models.Task, incompleteDeps, dependentsCount int, now time.Time) float64 {
	weighted := 0.30*t.Priority.BasePriorityScore() +
		0.25*urgencyScore(t.DueDate, now) +
		0.20*blockingScore(dependentsCount) +
		0.15*ageScore(t.CreatedAt, now) +
		0.10*progressScore(t.Status)
	if weighted < 0 {
		weighted = 0
	}
	if weighted > 100 {
		weighted = 100
	}
	depMultiplier := 1 - 0.1*float64(incompleteDeps)
	if depMultiplier < 0.5 {
		depMultiplier = 0.5
	}
	dependentMultiplier := 1 + 0.2*float64(dependentsCount)
	if dependentMultiplier > 2.0 {
		dependentMultiplier = 2.0
	}
	return weighted * depMultiplier * dependentMultiplier
}

// NextTask returns the highest-scoring eligible task in branchID (spec
// §4.1.d). done/cancelled tasks are excluded upstream, as specified.
func (k *Kernel) NextTask(ctx context.Context, projectID, branchID string) (*models.Task, error) {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := k.tasks.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	dependentsOf := map[string]int{}
	incompleteDepsOf := map[string]int{}
	for dependent, prereqs := range p.CrossTreeDeps {
		for prereqID := range prereqs {
			dependentsOf[prereqID]++
			prereqTask, err := k.taskByID(ctx, prereqID)
			if err == nil && prereqTask.Status != models.TaskStatusDone {
				incompleteDepsOf[dependent]++
			}
		}
	}

	now := time.Now().UTC()
	var best *models.Task
	var bestScore float64
	for _, t := range tasks {
		if t.Status == models.TaskStatusDone || t.Status == models.TaskStatusCancelled {
			continue
		}
		score := scoreTask(t, incompleteDepsOf[t.ID.String()], dependentsOf[t.ID.String()], now)
		if best == nil || score > bestScore {
			best, bestScore = t, score
		}
	}
	return best, nil
}

func (k *Kernel) taskByID(ctx context.Context, idRaw string) (*models.Task, error) {
	id, err := normalizeTaskID(idRaw)
	if err != nil {
		return nil, err
	}
	return k.tasks.Get(ctx, id)
}

// WorkloadProposal is a suggested (not performed) reassignment of an
// overloaded agent's task to an underloaded, capability-matching agent
// (spec §4.1.g).
type WorkloadProposal struct {
	TaskID      string
	FromAgentID string
	ToAgentID   string
}

// ProposeWorkloadBalance inspects every overloaded agent's active tasks
// and proposes moving them to an underloaded agent whose capabilities
// match (spec §4.1.g). It never performs the reassignment.
func (k *Kernel) ProposeWorkloadBalance(ctx context.Context, projectID string) ([]WorkloadProposal, error) {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var underloaded []*models.Agent
	for _, a := range p.Agents {
		if a.IsUnderloaded() && a.IsAvailable() {
			underloaded = append(underloaded, a)
		}
	}
	sort.Slice(underloaded, func(i, j int) bool {
		return underloaded[i].WorkloadPercentage < underloaded[j].WorkloadPercentage
	})

	var proposals []WorkloadProposal
	for _, agent := range p.Agents {
		if !agent.IsOverloaded() {
			continue
		}
		for _, taskIDRaw := range agent.ActiveTasks {
			task, err := k.taskByID(ctx, taskIDRaw)
			if err != nil {
				continue
			}
			required := inferredCapabilities([]*models.Task{task})
			for _, candidate := range underloaded {
				if candidate.ID == agent.ID {
					continue
				}
				if !hasAllCapabilities(candidate, required) {
					continue
				}
				proposals = append(proposals, WorkloadProposal{
					TaskID: taskIDRaw, FromAgentID: agent.ID, ToAgentID: candidate.ID,
				})
				break
			}
		}
	}
	return proposals, nil
}

func hasAllCapabilities(a *models.Agent, required map[models.Capability]bool) bool {
	for capability := range required {
		if !a.HasCapability(capability) {
			return false
		}
	}
	return true
}
