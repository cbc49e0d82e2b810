package rpc

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devmesh-org/taskmesh/internal/facade"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

func (s *Server) registerManageTask() {
	s.mcp.AddTool(
		mcp.NewTool("manage_task",
			mcp.WithDescription("Create, read, update, delete, complete, list, append progress, and fetch the next task for an agent within a project branch."),
			mcp.WithString("action", mcp.Required(), mcp.Description("Operation to perform"),
				mcp.Enum("create", "get", "update", "delete", "complete", "list", "next", "append-progress")),
			mcp.WithString("task_id", mcp.Description("Task id (get/update/delete/complete)")),
			mcp.WithString("git_branch_id", mcp.Description("Owning branch id (create/next/list filter)")),
			mcp.WithString("project_id", mcp.Description("Project id (next)")),
			mcp.WithString("tenant_id", mcp.Description("Owning user id (create)")),
			mcp.WithString("user_id", mcp.Description("Caller's user id, used to resolve inherited context")),
			mcp.WithString("title", mcp.Description("Task title (create, or update when changing it)")),
			mcp.WithString("description", mcp.Description("Task description")),
			mcp.WithString("priority", mcp.Description("Task priority"),
				mcp.Enum("critical", "urgent", "high", "medium", "low")),
			mcp.WithArray("assignees", mcp.Description("Agent ids assigned to this task (create, required non-empty)")),
			mcp.WithBoolean("include_context", mcp.Description("Resolve and attach inherited context on get")),
			mcp.WithString("status", mcp.Description("New status (update)"),
				mcp.Enum("todo", "in_progress", "blocked", "review", "testing", "done", "cancelled")),
			mcp.WithString("details", mcp.Description("Freeform implementation details (update)")),
			mcp.WithString("estimated_effort", mcp.Description("Estimated effort (update)")),
			mcp.WithArray("labels", mcp.Description("Labels (update)")),
			mcp.WithString("due_date", mcp.Description("Due date, RFC3339 (update)")),
			mcp.WithString("context_id", mcp.Description("Context row id to associate, empty string clears it (update)")),
			mcp.WithString("completion_summary", mcp.Description("Summary of what was done (complete, required)")),
			mcp.WithString("testing_notes", mcp.Description("Testing notes (complete)")),
			mcp.WithString("context_updated_at", mcp.Description("Timestamp the caller last read context, RFC3339 (complete, staleness check)")),
			mcp.WithString("filter_branch_id", mcp.Description("Filter by branch id (list)")),
			mcp.WithArray("filter_status", mcp.Description("Filter by status (list)")),
			mcp.WithString("filter_assigned_to", mcp.Description("Filter by assignee (list)")),
			mcp.WithNumber("limit", mcp.Description("Max results (list)")),
			mcp.WithNumber("offset", mcp.Description("Result offset (list)")),
			mcp.WithString("progress_type", mcp.Description("Progress snapshot kind (append-progress)"),
				mcp.Enum("analysis", "design", "implementation", "testing", "documentation", "review", "deployment", "general")),
			mcp.WithNumber("percentage", mcp.Description("Progress percentage for this snapshot, 0-100 (append-progress)")),
			mcp.WithString("progress_status", mcp.Description("Freeform status label for this snapshot (append-progress)")),
			mcp.WithString("progress_description", mcp.Description("What was done, required (append-progress)")),
			mcp.WithString("agent_id", mcp.Description("Reporting agent id (append-progress)")),
			mcp.WithArray("blockers", mcp.Description("Current blockers (append-progress)")),
			mcp.WithArray("dependencies", mcp.Description("Dependencies noted in this snapshot (append-progress)")),
			mcp.WithNumber("confidence_level", mcp.Description("Reporter's confidence, 0-1 (append-progress)")),
			mcp.WithString("notes", mcp.Description("Free-text notes (append-progress)")),
			mcp.WithString("estimated_completion", mcp.Description("Estimated completion timestamp, RFC3339 (append-progress)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
			defer s.recover(ctx)
			a := fromReq(req)
			p := facade.TaskParams{
				TaskID:         a.str("task_id"),
				BranchID:       a.str("git_branch_id"),
				ProjectID:      a.str("project_id"),
				TenantID:       a.str("tenant_id"),
				UserID:         a.str("user_id"),
				Title:          a.str("title"),
				Description:    a.str("description"),
				Priority:       models.TaskPriority(a.str("priority")),
				Assignees:      a.strSlice("assignees"),
				IncludeContext: a.boolean("include_context"),
				CompletionSummary: a.str("completion_summary"),
				TestingNotes:      a.str("testing_notes"),
				FilterBranchID:    a.str("filter_branch_id"),
				FilterAssignedTo:  a.str("filter_assigned_to"),
			}
			for _, st := range a.strSlice("filter_status") {
				p.FilterStatus = append(p.FilterStatus, models.TaskStatus(st))
			}
			if n, ok := a.floatOK("limit"); ok {
				p.Limit = int(n)
			}
			if n, ok := a.floatOK("offset"); ok {
				p.Offset = int(n)
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
			}
			if v, ok := a.strOK("details"); ok {
				p.DetailsSet, p.Details = true, v
			}
			if v, ok := a.strOK("estimated_effort"); ok {
				p.EffortSet, p.EstimatedEffort = true, v
			}
			if _, ok := a["assignees"]; ok {
				p.AssigneesSet = true
			}
			if _, ok := a["labels"]; ok {
				p.LabelsSet, p.Labels = true, a.strSlice("labels")
			}
			if v, ok := a.strOK("due_date"); ok {
				if t, perr := parseTime(v); perr == nil {
					p.DueDateSet, p.DueDate = true, &t
				}
			}
			if _, ok := a["context_id"]; ok {
				p.ContextIDSet, p.ContextID = true, a.str("context_id")
			}
			if v, ok := a.strOK("context_updated_at"); ok {
				if t, perr := parseTime(v); perr == nil {
					p.ContextUpdatedAt = &t
				}
			}
			p.ProgressType = models.ProgressType(a.str("progress_type"))
			if n, ok := a.floatOK("percentage"); ok {
				p.ProgressPercentage = int(n)
			}
			p.ProgressStatus = a.str("progress_status")
			p.ProgressDescription = a.str("progress_description")
			p.ProgressAgentID = a.str("agent_id")
			p.ProgressBlockers = a.strSlice("blockers")
			p.ProgressDependencies = a.strSlice("dependencies")
			if n, ok := a.floatOK("confidence_level"); ok {
				p.ProgressConfidenceLevel = n
			}
			p.ProgressNotes = a.str("notes")
			if v, ok := a.strOK("estimated_completion"); ok {
				if t, perr := parseTime(v); perr == nil {
					p.ProgressEstimatedCompletion = &t
				}
			}
			resp := s.facade.ManageTask(ctx, a.str("action"), p)
			return toResult(resp)
		},
	)
}
