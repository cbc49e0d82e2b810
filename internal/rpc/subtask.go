package rpc

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devmesh-org/taskmesh/internal/facade"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

func (s *Server) registerManageSubtask() {
	s.mcp.AddTool(
		mcp.NewTool("manage_subtask",
			mcp.WithDescription("Create, read, update, delete, complete, reopen, and list subtasks of a parent task."),
			mcp.WithString("action", mcp.Required(), mcp.Description("Operation to perform"),
				mcp.Enum("create", "get", "update", "delete", "list", "complete", "reopen")),
			mcp.WithString("subtask_id", mcp.Description("Subtask id, accepted here or nested inside subtask_data")),
			mcp.WithObject("subtask_data", mcp.Description("Alternate home for subtask_id, for callers that nest it")),
			mcp.WithString("parent_task_id", mcp.Required(), mcp.Description("Parent task id")),
			mcp.WithString("title", mcp.Description("Subtask title (create, or update when changing it)")),
			mcp.WithString("description", mcp.Description("Subtask description")),
			mcp.WithString("priority", mcp.Description("Subtask priority"),
				mcp.Enum("critical", "urgent", "high", "medium", "low")),
			mcp.WithArray("assignees", mcp.Description("Agent ids assigned to this subtask")),
			mcp.WithString("status", mcp.Description("New status (update)"),
				mcp.Enum("todo", "in_progress", "blocked", "review", "testing", "done", "cancelled")),
			mcp.WithNumber("progress_percentage", mcp.Description("Progress percentage 0-100 (update)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			defer s.recover(ctx)
			a := fromReq(req)
			p := facade.SubtaskParams{
				SubtaskID:    a.str("subtask_id"),
				SubtaskData:  a.object("subtask_data"),
				ParentTaskID: a.str("parent_task_id"),
				Description:  a.str("description"),
			}
			if v, ok := a.strOK("title"); ok {
				p.TitleSet, p.Title = true, v
			}
			if v, ok := a.strOK("description"); ok {
				p.DescriptionSet, p.Description = true, v
			}
			if v, ok := a.strOK("status"); ok {
				p.StatusSet, p.Status = true, models.TaskStatus(v)
			}
			if v, ok := a.strOK("priority"); ok {
				p.PrioritySet, p.Priority = true, models.TaskPriority(v)
			} else {
				p.Priority = models.TaskPriority(a.str("priority"))
			}
			if _, ok := a["assignees"]; ok {
				p.AssigneesSet, p.Assignees = true, a.strSlice("assignees")
			} else {
				p.Assignees = a.strSlice("assignees")
			}
			p.ProgressPercentage = a.intPtr("progress_percentage")
			resp := s.facade.ManageSubtask(ctx, a.str("action"), p)
			return toResult(resp)
		},
	)
}
