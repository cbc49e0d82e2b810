package rpc

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devmesh-org/taskmesh/internal/facade"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

func (s *Server) registerManageAgent() {
	s.mcp.AddTool(
		mcp.NewTool("manage_agent",
			mcp.WithDescription("Register, unregister, assign, unassign, get, list, update, and rebalance agents within a project."),
			mcp.WithString("action", mcp.Required(), mcp.Description("Operation to perform"),
				mcp.Enum("register", "unregister", "assign", "unassign", "get", "list", "update", "rebalance")),
			mcp.WithString("agent_id", mcp.Description("Agent id")),
			mcp.WithString("project_id", mcp.Description("Project id")),
			mcp.WithString("branch_id", mcp.Description("Branch id (assign/unassign)")),
			mcp.WithString("name", mcp.Description("Agent display name (register, or update when changing it)")),
			mcp.WithArray("capabilities", mcp.Description("Agent capabilities (register/update)")),
			mcp.WithArray("languages", mcp.Description("Preferred languages (register/update)")),
			mcp.WithString("status", mcp.Description("New status (update)"),
				mcp.Enum("available", "busy", "offline")),
			mcp.WithString("priority", mcp.Description("Priority preference (update)"),
				mcp.Enum("critical", "urgent", "high", "medium", "low")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			defer s.recover(ctx)
			a := fromReq(req)
			p := facade.AgentParams{
				AgentID:   a.str("agent_id"),
				ProjectID: a.str("project_id"),
				BranchID:  a.str("branch_id"),
				Name:      a.str("name"),
			}
			for _, c := range a.strSlice("capabilities") {
				p.Capabilities = append(p.Capabilities, models.Capability(c))
			}
			if v, ok := a.strOK("name"); ok {
				p.NameSet, p.Name = true, v
			}
			if _, ok := a["capabilities"]; ok {
				p.CapabilitiesSet = true
			}
			if _, ok := a["languages"]; ok {
				p.LanguagesSet, p.Languages = true, a.strSlice("languages")
			}
			if v, ok := a.strOK("status"); ok {
				p.StatusSet, p.Status = true, models.AgentStatus(v)
			}
			if v, ok := a.strOK("priority"); ok {
				p.PrioritySet, p.Priority = true, models.TaskPriority(v)
			}
			resp := s.facade.ManageAgent(ctx, a.str("action"), p)
			return toResult(resp)
		},
	)
}
