package rpc

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devmesh-org/taskmesh/internal/facade"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

func (s *Server) registerManageProject() {
	s.mcp.AddTool(
		mcp.NewTool("manage_project",
			mcp.WithDescription("Create, read, update, delete, and operate on projects: health-check, cleanup-obsolete assignments, validate-integrity, and rebalance-agents."),
			mcp.WithString("action", mcp.Required(), mcp.Description("Operation to perform"),
				mcp.Enum("create", "get", "list", "update", "delete",
					"health-check", "cleanup-obsolete", "validate-integrity", "rebalance-agents")),
			mcp.WithString("project_id", mcp.Description("Project id (all actions except create/list)")),
			mcp.WithString("tenant_id", mcp.Description("Owning tenant id (create/list)")),
			mcp.WithString("name", mcp.Description("Project name (create, or update when changing it)")),
			mcp.WithString("description", mcp.Description("Project description")),
			mcp.WithBoolean("force", mcp.Description("Force-delete even if the project holds branches with work (delete)")),
			mcp.WithString("status", mcp.Description("New status (update)"), mcp.Enum("active", "archived")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			defer s.recover(ctx)
			a := fromReq(req)
			p := facade.ProjectParams{
				ProjectID: a.str("project_id"),
				TenantID:  a.str("tenant_id"),
				Name:      a.str("name"),
				Description: a.str("description"),
				Force:     a.boolean("force"),
			}
			if v, ok := a.strOK("name"); ok {
				p.NameSet, p.Name = true, v
			}
			if v, ok := a.strOK("description"); ok {
				p.DescriptionSet, p.Description = true, v
			}
			if v, ok := a.strOK("status"); ok {
				p.StatusSet, p.Status = true, models.ProjectStatus(v)
			}
			resp := s.facade.ManageProject(ctx, a.str("action"), p)
			return toResult(resp)
		},
	)
}
