package facade

import (
	"context"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

// ProjectParams is the union of every field manage_project accepts (spec
// §6).
type ProjectParams struct {
	ProjectID   string
	TenantID    string
	Name        string
	Description string
	Force       bool

	NameSet        bool
	DescriptionSet bool
	StatusSet      bool
	Status         models.ProjectStatus
}

// ManageProject dispatches one manage_project action (spec §6). Create/
// get/list/update/delete are plain repository CRUD (no engine involved,
// per facade.go's doc comment); health-check/cleanup-obsolete/
// validate-integrity/rebalance-agents route to the kernel's orchestration
// reads.
func (f *Facade) ManageProject(ctx context.Context, action string, p ProjectParams) *Response {
	switch action {
	case "create":
		return f.projectCreate(ctx, p)
	case "get":
		return f.projectGet(ctx, p)
	case "list":
		return f.projectList(ctx, p)
	case "update":
		return f.projectUpdate(ctx, p)
	case "delete":
		return f.projectDelete(ctx, p)
	case "health-check":
		return f.projectHealthCheck(ctx, p)
	case "cleanup-obsolete":
		return f.projectCleanupObsolete(ctx, p)
	case "validate-integrity":
		return f.projectValidateIntegrity(ctx, p)
	case "rebalance-agents":
		return f.projectRebalanceAgents(ctx, p)
	default:
		return fail(apperrors.Validation("action", "unknown manage_project action %q", action))
	}
}

func (f *Facade) projectCreate(ctx context.Context, p ProjectParams) *Response {
	if p.Name == "" {
		return fail(apperrors.Validation("name", "is required"))
	}
	if p.TenantID == "" {
		return fail(apperrors.Validation("tenant_id", "is required"))
	}
	proj := models.NewProject(p.TenantID, p.Name, p.Description)
	if err := f.projects.Create(ctx, proj); err != nil {
		return fail(err)
	}
	return ok(proj)
}

func (f *Facade) projectGet(ctx context.Context, p ProjectParams) *Response {
	proj, err := f.projects.Get(ctx, p.ProjectID)
	if err != nil {
		return fail(err)
	}
	return ok(proj)
}

func (f *Facade) projectList(ctx context.Context, p ProjectParams) *Response {
	if p.TenantID == "" {
		return fail(apperrors.Validation("tenant_id", "is required"))
	}
	list, err := f.projects.List(ctx, p.TenantID)
	if err != nil {
		return fail(err)
	}
	return ok(list)
}

func (f *Facade) projectUpdate(ctx context.Context, p ProjectParams) *Response {
	proj, err := f.projects.Get(ctx, p.ProjectID)
	if err != nil {
		return fail(err)
	}
	if p.NameSet {
		proj.Name = p.Name
	}
	if p.DescriptionSet {
		proj.Description = p.Description
	}
	if p.StatusSet {
		proj.Status = p.Status
	}
	proj.Touch()
	if err := f.projects.Update(ctx, proj); err != nil {
		return fail(err)
	}
	return ok(proj)
}

func (f *Facade) projectDelete(ctx context.Context, p ProjectParams) *Response {
	if err := f.kernel.DeleteProject(ctx, p.ProjectID, p.Force); err != nil {
		return fail(err)
	}
	return ok(map[string]string{"project_id": p.ProjectID})
}

func (f *Facade) projectHealthCheck(ctx context.Context, p ProjectParams) *Response {
	status, err := f.kernel.GetOrchestrationStatus(ctx, p.ProjectID)
	if err != nil {
		return fail(err)
	}
	return ok(status)
}

func (f *Facade) projectCleanupObsolete(ctx context.Context, p ProjectParams) *Response {
	cleaned, err := f.kernel.CleanupObsoleteAssignments(ctx, p.ProjectID)
	if err != nil {
		return fail(err)
	}
	return ok(map[string]int{"branches_unassigned": cleaned})
}

func (f *Facade) projectValidateIntegrity(ctx context.Context, p ProjectParams) *Response {
	report, err := f.kernel.CheckIntegrity(ctx, p.ProjectID)
	if err != nil {
		return fail(err)
	}
	return ok(report)
}

func (f *Facade) projectRebalanceAgents(ctx context.Context, p ProjectParams) *Response {
	proposals, err := f.kernel.ProposeWorkloadBalance(ctx, p.ProjectID)
	if err != nil {
		return fail(err)
	}
	return ok(proposals)
}
