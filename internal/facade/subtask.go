package facade

import (
	"context"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/tasks"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
)

// SubtaskParams is the union of every field manage_subtask accepts (spec
// §6). SubtaskID and SubtaskData both exist because the contract accepts
// subtask_id either as a top-level argument or nested inside a
// subtask_data object — resolveSubtaskID below is the compatibility shim
// spec §6 calls out explicitly ("part of the contract").
type SubtaskParams struct {
	SubtaskID    string
	SubtaskData  map[string]interface{}
	ParentTaskID string

	Title       string
	Description string
	Priority    models.TaskPriority
	Assignees   []string

	TitleSet           bool
	DescriptionSet     bool
	StatusSet          bool
	Status             models.TaskStatus
	PrioritySet        bool
	AssigneesSet       bool
	ProgressPercentage *int
}

// resolveSubtaskID implements spec §6's manage_subtask compatibility
// shim: a top-level subtask_id wins when present, otherwise the id is
// read out of subtask_data.
func (p SubtaskParams) resolveSubtaskID() (string, error) {
	if p.SubtaskID != "" {
		return p.SubtaskID, nil
	}
	if p.SubtaskData != nil {
		if raw, ok := p.SubtaskData["subtask_id"]; ok {
			if s, ok := raw.(string); ok && s != "" {
				return s, nil
			}
		}
	}
	return "", apperrors.Validation("subtask_id", "is required (top-level or in subtask_data)")
}

// ManageSubtask dispatches one manage_subtask action (spec §6), scoped to
// a parent task id.
func (f *Facade) ManageSubtask(ctx context.Context, action string, p SubtaskParams) *Response {
	switch action {
	case "create":
		return f.subtaskCreate(ctx, p)
	case "get":
		return f.subtaskGet(ctx, p)
	case "update":
		return f.subtaskUpdate(ctx, p)
	case "delete":
		return f.subtaskDelete(ctx, p)
	case "list":
		return f.subtaskList(ctx, p)
	case "complete":
		return f.subtaskComplete(ctx, p)
	case "reopen":
		return f.subtaskReopen(ctx, p)
	default:
		return fail(apperrors.Validation("action", "unknown manage_subtask action %q", action))
	}
}

func (f *Facade) subtaskCreate(ctx context.Context, p SubtaskParams) *Response {
	if p.Title == "" {
		return fail(apperrors.Validation("title", "is required"))
	}
	if err := validatePriority(p.Priority); err != nil {
		return fail(err)
	}
	parentID, err := uuid.Parse(p.ParentTaskID)
	if err != nil {
		return fail(apperrors.Validation("parent_task_id", "not a valid id: %s", p.ParentTaskID))
	}
	sub, err := f.taskSvc.CreateSubtask(ctx, parentID, p.Title, p.Description, p.Priority, p.Assignees)
	if err != nil {
		return fail(err)
	}
	return ok(sub)
}

func (f *Facade) subtaskGet(ctx context.Context, p SubtaskParams) *Response {
	id, err := p.resolveSubtaskID()
	if err != nil {
		return fail(err)
	}
	subID, err := uuid.Parse(id)
	if err != nil {
		return fail(apperrors.Validation("subtask_id", "not a valid id: %s", id))
	}
	sub, err := f.taskSvc.GetSubtask(ctx, subID)
	if err != nil {
		return fail(err)
	}
	return ok(sub)
}

func (f *Facade) subtaskUpdate(ctx context.Context, p SubtaskParams) *Response {
	id, err := p.resolveSubtaskID()
	if err != nil {
		return fail(err)
	}
	subID, err := uuid.Parse(id)
	if err != nil {
		return fail(apperrors.Validation("subtask_id", "not a valid id: %s", id))
	}
	if p.PrioritySet {
		if err := validatePriority(p.Priority); err != nil {
			return fail(err)
		}
	}
	upd := tasks.SubtaskUpdate{
		AssigneesSet: p.AssigneesSet, Assignees: p.Assignees,
		ProgressPercentage: p.ProgressPercentage,
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
	sub, err := f.taskSvc.UpdateSubtask(ctx, subID, upd)
	if err != nil {
		return fail(err)
	}
	return ok(sub)
}

func (f *Facade) subtaskDelete(ctx context.Context, p SubtaskParams) *Response {
	id, err := p.resolveSubtaskID()
	if err != nil {
		return fail(err)
	}
	subID, err := uuid.Parse(id)
	if err != nil {
		return fail(apperrors.Validation("subtask_id", "not a valid id: %s", id))
	}
	if err := f.taskSvc.DeleteSubtask(ctx, subID); err != nil {
		return fail(err)
	}
	return ok(map[string]string{"subtask_id": id})
}

func (f *Facade) subtaskList(ctx context.Context, p SubtaskParams) *Response {
	parentID, err := uuid.Parse(p.ParentTaskID)
	if err != nil {
		return fail(apperrors.Validation("parent_task_id", "not a valid id: %s", p.ParentTaskID))
	}
	list, err := f.taskSvc.ListSubtasks(ctx, parentID)
	if err != nil {
		return fail(err)
	}
	return ok(list)
}

func (f *Facade) subtaskComplete(ctx context.Context, p SubtaskParams) *Response {
	id, err := p.resolveSubtaskID()
	if err != nil {
		return fail(err)
	}
	subID, err := uuid.Parse(id)
	if err != nil {
		return fail(apperrors.Validation("subtask_id", "not a valid id: %s", id))
	}
	sub, err := f.taskSvc.CompleteSubtask(ctx, subID)
	if err != nil {
		return fail(err)
	}
	return ok(sub)
}

// subtaskReopen is the dedicated done->todo path (spec §4.2.a: this
// transition is never reachable through "update" or "complete").
func (f *Facade) subtaskReopen(ctx context.Context, p SubtaskParams) *Response {
	id, err := p.resolveSubtaskID()
	if err != nil {
		return fail(err)
	}
	subID, err := uuid.Parse(id)
	if err != nil {
		return fail(apperrors.Validation("subtask_id", "not a valid id: %s", id))
	}
	sub, err := f.taskSvc.ReopenSubtask(ctx, subID)
	if err != nil {
		return fail(err)
	}
	return ok(sub)
}
