package facade

import (
	"context"
	"time"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/internal/tasks"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
)

var knownPriorities = map[models.TaskPriority]bool{
	models.PriorityCritical: true, models.PriorityUrgent: true, models.PriorityHigh: true,
	models.PriorityMedium: true, models.PriorityLow: true,
}

func validatePriority(p models.TaskPriority) error {
	if p == "" || knownPriorities[p] {
		return nil
	}
	return apperrors.Validation("priority", "unknown priority %q", p)
}

// TaskParams is the union of every field any manage_task action accepts
// (spec §6). A single shared struct keeps the dispatcher below a plain
// action switch, mirroring the one-tool-per-aggregate, action-dispatch
// shape internal/rpc registers against mcp-go.
type TaskParams struct {
	TaskID      string
	BranchID    string
	ProjectID   string
	TenantID    string
	UserID      string
	Title       string
	Description string
	Priority    models.TaskPriority
	Assignees   []string

	IncludeContext bool

	TitleSet       bool
	DescriptionSet bool
	StatusSet      bool
	Status         models.TaskStatus
	PrioritySet    bool
	DetailsSet     bool
	Details        string
	EffortSet      bool
	EstimatedEffort string
	AssigneesSet   bool
	LabelsSet      bool
	Labels         []string
	DueDateSet     bool
	DueDate        *time.Time
	ContextIDSet   bool
	ContextID      string

	CompletionSummary string
	TestingNotes      string
	ContextUpdatedAt  *time.Time

	// append-progress payload (spec §3 ProgressTimeline, §4.2.b).
	ProgressType            models.ProgressType
	ProgressPercentage      int
	ProgressStatus          string
	ProgressDescription     string
	ProgressAgentID         string
	ProgressBlockers        []string
	ProgressDependencies    []string
	ProgressConfidenceLevel float64
	ProgressNotes           string
	ProgressEstimatedCompletion *time.Time

	// List filters
	FilterBranchID   string
	FilterStatus     []models.TaskStatus
	FilterAssignedTo string
	Limit            int
	Offset           int
}

// ManageTask dispatches one manage_task action (spec §6).
func (f *Facade) ManageTask(ctx context.Context, action string, p TaskParams) *Response {
	switch action {
	case "create":
		return f.taskCreate(ctx, p)
	case "get":
		return f.taskGet(ctx, p)
	case "update":
		return f.taskUpdate(ctx, p)
	case "delete":
		return f.taskDelete(ctx, p)
	case "complete":
		return f.taskComplete(ctx, p)
	case "list":
		return f.taskList(ctx, p)
	case "next":
		return f.taskNext(ctx, p)
	case "append-progress":
		return f.taskAppendProgress(ctx, p)
	default:
		return fail(apperrors.Validation("action", "unknown manage_task action %q", action))
	}
}

func (f *Facade) taskCreate(ctx context.Context, p TaskParams) *Response {
	if p.Title == "" {
		return fail(apperrors.Validation("title", "is required"))
	}
	if p.BranchID == "" {
		return fail(apperrors.Validation("git_branch_id", "is required"))
	}
	if len(p.Assignees) == 0 {
		return fail(apperrors.Validation("assignees", "must be non-empty"))
	}
	if err := validatePriority(p.Priority); err != nil {
		return fail(err)
	}
	branchID, err := uuid.Parse(p.BranchID)
	if err != nil {
		return fail(apperrors.Validation("git_branch_id", "not a valid id: %s", p.BranchID))
	}
	tenantID, err := uuid.Parse(p.TenantID)
	if err != nil {
		return fail(apperrors.Validation("tenant_id", "not a valid id: %s", p.TenantID))
	}
	task, _, err := f.taskSvc.CreateTask(ctx, branchID, tenantID, p.Title, p.Description, p.Priority, p.Assignees)
	if err != nil {
		return fail(err)
	}
	return ok(task)
}

// taskResponse is the payload for manage_task "get": the task, plus a
// resolved inherited context when include_context is requested (spec §6).
type taskResponse struct {
	*models.Task
	ResolvedContext map[string]models.JSONMap `json:"resolved_context,omitempty"`
}

func (f *Facade) taskGet(ctx context.Context, p TaskParams) *Response {
	id, err := uuid.Parse(p.TaskID)
	if err != nil {
		return fail(apperrors.Validation("task_id", "not a valid id: %s", p.TaskID))
	}
	task, _, err := f.taskSvc.GetTask(ctx, id)
	if err != nil {
		return fail(err)
	}
	resp := taskResponse{Task: task}
	if p.IncludeContext {
		resolved, err := f.ctxEng.Resolve(ctx, models.LevelTask, task.ID.String(), p.UserID, true)
		if err != nil {
			return fail(err)
		}
		resp.ResolvedContext = resolved.Sections
	}
	return ok(resp)
}

func (f *Facade) taskUpdate(ctx context.Context, p TaskParams) *Response {
	id, err := uuid.Parse(p.TaskID)
	if err != nil {
		return fail(apperrors.Validation("task_id", "not a valid id: %s", p.TaskID))
	}
	if p.PrioritySet {
		if err := validatePriority(p.Priority); err != nil {
			return fail(err)
		}
	}
	upd := tasks.TaskUpdate{
		AssigneesSet: p.AssigneesSet, Assignees: p.Assignees,
		LabelsSet: p.LabelsSet, Labels: p.Labels,
		DueDateSet: p.DueDateSet, DueDate: p.DueDate,
	}
	if p.TitleSet {
		upd.Title = &p.Title
	}
	if p.DescriptionSet {
		upd.Description = &p.Description
	}
	if p.StatusSet {
		upd.Status = &p.Status
	}
	if p.PrioritySet {
		upd.Priority = &p.Priority
	}
	if p.DetailsSet {
		upd.Details = &p.Details
	}
	if p.EffortSet {
		upd.EstimatedEffort = &p.EstimatedEffort
	}
	if p.ContextIDSet {
		upd.ContextIDSet = true
		if p.ContextID != "" {
			cid, err := uuid.Parse(p.ContextID)
			if err != nil {
				return fail(apperrors.Validation("context_id", "not a valid id: %s", p.ContextID))
			}
			upd.ContextID = &cid
		}
	}
	task, _, err := f.taskSvc.UpdateTask(ctx, id, upd)
	if err != nil {
		return fail(err)
	}
	return ok(task)
}

func (f *Facade) taskDelete(ctx context.Context, p TaskParams) *Response {
	id, err := uuid.Parse(p.TaskID)
	if err != nil {
		return fail(apperrors.Validation("task_id", "not a valid id: %s", p.TaskID))
	}
	if _, err := f.taskSvc.DeleteTask(ctx, id); err != nil {
		return fail(err)
	}
	return ok(map[string]string{"task_id": p.TaskID})
}

func (f *Facade) taskComplete(ctx context.Context, p TaskParams) *Response {
	id, err := uuid.Parse(p.TaskID)
	if err != nil {
		return fail(apperrors.Validation("task_id", "not a valid id: %s", p.TaskID))
	}
	if p.CompletionSummary == "" {
		return fail(apperrors.MissingCompletionSummary(p.TaskID))
	}
	task, _, err := f.taskSvc.CompleteTask(ctx, id, p.CompletionSummary, p.TestingNotes, p.ContextUpdatedAt)
	if err != nil {
		return fail(err)
	}
	return ok(task)
}

func (f *Facade) taskAppendProgress(ctx context.Context, p TaskParams) *Response {
	id, err := uuid.Parse(p.TaskID)
	if err != nil {
		return fail(apperrors.Validation("task_id", "not a valid id: %s", p.TaskID))
	}
	if p.ProgressDescription == "" {
		return fail(apperrors.Validation("description", "is required"))
	}
	task, _, err := f.taskSvc.AppendProgress(ctx, id, tasks.ProgressInput{
		ProgressType: p.ProgressType,
		Percentage:   p.ProgressPercentage,
		Status:       p.ProgressStatus,
		Description:  p.ProgressDescription,
		AgentID:      p.ProgressAgentID,
		Metadata: models.SnapshotMetadata{
			Blockers:            p.ProgressBlockers,
			Dependencies:        p.ProgressDependencies,
			ConfidenceLevel:     p.ProgressConfidenceLevel,
			Notes:               p.ProgressNotes,
			EstimatedCompletion: p.ProgressEstimatedCompletion,
		},
	})
	if err != nil {
		return fail(err)
	}
	return ok(task)
}

func (f *Facade) taskList(ctx context.Context, p TaskParams) *Response {
	filter := repository.TaskFilter{
		BranchID: p.FilterBranchID, Status: p.FilterStatus, AssignedTo: p.FilterAssignedTo,
		Limit: p.Limit, Offset: p.Offset,
	}
	list, err := f.taskSvc.ListTasks(ctx, filter)
	if err != nil {
		return fail(err)
	}
	return ok(list)
}

func (f *Facade) taskNext(ctx context.Context, p TaskParams) *Response {
	if p.ProjectID == "" {
		return fail(apperrors.Validation("project_id", "is required"))
	}
	if p.BranchID == "" {
		return fail(apperrors.Validation("git_branch_id", "is required"))
	}
	task, err := f.kernel.NextTask(ctx, p.ProjectID, p.BranchID)
	if err != nil {
		return fail(err)
	}
	if task == nil {
		return ok(nil)
	}
	return ok(task)
}
