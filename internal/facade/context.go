package facade

import (
	"context"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

// ContextParams is the union of every field manage_context accepts (spec
// §6). ParentID seeds navigation on a write that creates a context row
// for the first time (the project for a branch, the branch for a task);
// it is ignored once the row already exists (see internal/context/write.go).
type ContextParams struct {
	Level             models.ContextLevel
	ContextID         string
	ParentID          string
	UserID            string
	IncludeInherited  bool
	Section           string
	Data              models.JSONMap
	Reason            string

	SourceLevel models.ContextLevel
	SourceID    string
	TargetLevel models.ContextLevel
	TargetID    string
	Trigger     models.DelegationTrigger
	Confidence  float64
}

// ManageContext dispatches one manage_context action (spec §6).
func (f *Facade) ManageContext(ctx context.Context, action string, p ContextParams) *Response {
	switch action {
	case "resolve":
		return f.contextResolve(ctx, p)
	case "add-progress":
		return f.contextAddProgress(ctx, p)
	case "update-section":
		return f.contextUpdateSection(ctx, p)
	case "delegate":
		return f.contextDelegate(ctx, p)
	case "invalidate":
		return f.contextInvalidate(ctx, p)
	default:
		return fail(apperrors.Validation("action", "unknown manage_context action %q", action))
	}
}

func (f *Facade) contextResolve(ctx context.Context, p ContextParams) *Response {
	if p.UserID == "" {
		return fail(apperrors.Forbidden("a user identity is required to resolve context"))
	}
	resolved, err := f.ctxEng.Resolve(ctx, p.Level, p.ContextID, p.UserID, p.IncludeInherited)
	if err != nil {
		return fail(err)
	}
	return ok(resolved)
}

func (f *Facade) contextAddProgress(ctx context.Context, p ContextParams) *Response {
	if p.Section == "" {
		return fail(apperrors.Validation("section", "is required"))
	}
	if err := f.ctxEng.AddProgress(ctx, p.Level, p.ContextID, p.ParentID, p.UserID, p.Section, p.Data); err != nil {
		return fail(err)
	}
	return ok(map[string]string{"context_id": p.ContextID, "section": p.Section})
}

func (f *Facade) contextUpdateSection(ctx context.Context, p ContextParams) *Response {
	if p.Section == "" {
		return fail(apperrors.Validation("section", "is required"))
	}
	if err := f.ctxEng.UpdateSection(ctx, p.Level, p.ContextID, p.ParentID, p.UserID, p.Section, p.Data); err != nil {
		return fail(err)
	}
	return ok(map[string]string{"context_id": p.ContextID, "section": p.Section})
}

func (f *Facade) contextDelegate(ctx context.Context, p ContextParams) *Response {
	d, err := f.ctxEng.Delegate(ctx, p.SourceLevel, p.SourceID, p.TargetLevel, p.TargetID, p.Data, p.Reason, p.Trigger, p.Confidence)
	if err != nil {
		return fail(err)
	}
	return ok(d)
}

func (f *Facade) contextInvalidate(ctx context.Context, p ContextParams) *Response {
	if err := f.ctxEng.Invalidate(ctx, p.Level, p.ContextID, p.Reason); err != nil {
		return fail(err)
	}
	return ok(map[string]string{"context_id": p.ContextID})
}
