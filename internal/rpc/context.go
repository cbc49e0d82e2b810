package rpc

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devmesh-org/taskmesh/internal/facade"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

func (s *Server) registerManageContext() {
	s.mcp.AddTool(
		mcp.NewTool("manage_context",
			mcp.WithDescription("Resolve a context row with inheritance, append progress, overwrite a section, delegate content to another level, or invalidate a cache entry."),
			mcp.WithString("action", mcp.Required(), mcp.Description("Operation to perform"),
				mcp.Enum("resolve", "add-progress", "update-section", "delegate", "invalidate")),
			mcp.WithString("level", mcp.Required(), mcp.Description("Context level"),
				mcp.Enum("global", "project", "branch", "task")),
			mcp.WithString("context_id", mcp.Description("Id of the row at that level (empty string addresses the singleton global row)")),
			mcp.WithString("parent_id", mcp.Description("Parent id to seed navigation when the row doesn't exist yet (add-progress/update-section)")),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("Caller's user identity")),
			mcp.WithBoolean("include_inherited", mcp.Description("Resolve sections inherited from ancestor levels too (resolve)")),
			mcp.WithString("section", mcp.Description("Section name (add-progress/update-section, required)")),
			mcp.WithObject("data", mcp.Description("Section payload (add-progress/update-section), or delegated data (delegate)")),
			mcp.WithString("reason", mcp.Description("Human-readable reason (delegate/invalidate)")),
			mcp.WithString("source_level", mcp.Description("Delegation source level"),
				mcp.Enum("global", "project", "branch", "task")),
			mcp.WithString("source_id", mcp.Description("Delegation source id")),
			mcp.WithString("target_level", mcp.Description("Delegation target level"),
				mcp.Enum("global", "project", "branch", "task")),
			mcp.WithString("target_id", mcp.Description("Delegation target id")),
			mcp.WithString("trigger", mcp.Description("What raised the delegation"),
				mcp.Enum("manual", "auto_pattern", "auto_threshold")),
			mcp.WithNumber("confidence", mcp.Description("Confidence score for an automatic delegation, 0-1")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			defer s.recover(ctx)
			a := fromReq(req)
			p := facade.ContextParams{
				Level:            models.ContextLevel(a.str("level")),
				ContextID:        a.str("context_id"),
				ParentID:         a.str("parent_id"),
				UserID:           a.str("user_id"),
				IncludeInherited: a.boolean("include_inherited"),
				Section:          a.str("section"),
				Data:             models.JSONMap(a.object("data")),
				Reason:           a.str("reason"),
				SourceLevel:      models.ContextLevel(a.str("source_level")),
				SourceID:         a.str("source_id"),
				TargetLevel:      models.ContextLevel(a.str("target_level")),
				TargetID:         a.str("target_id"),
				Trigger:          models.DelegationTrigger(a.str("trigger")),
			}
			if n, ok := a.floatOK("confidence"); ok {
				p.Confidence = n
			}
			resp := s.facade.ManageContext(ctx, a.str("action"), p)
			return toResult(resp)
		},
	)
}
