// Package rpc registers the manage_task/manage_subtask/manage_project/
// manage_agent/manage_context tools against an mcp-go server, one tool per
// aggregate with an action field routing into internal/facade — mirroring
// the one-tool-per-aggregate, action-dispatch shape of
// teacher_ref/mcp_pattern/register.go.
package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/devmesh-org/taskmesh/internal/facade"
	"github.com/devmesh-org/taskmesh/internal/observability"
)

// parseTime parses the RFC3339 timestamps every manage_* tool accepts for
// due dates and staleness checks.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// Server owns the mcp-go server instance and registers every manage_* tool
// against it over a shared facade.
type Server struct {
	mcp    *server.MCPServer
	facade *facade.Facade
	logger observability.Logger
}

// New builds an mcp-go server with every manage_* tool registered.
func New(f *facade.Facade, logger observability.Logger) *Server {
	s := &Server{
		mcp:    server.NewMCPServer("taskmesh", "1.0.0"),
		facade: f,
		logger: logger,
	}
	s.registerManageTask()
	s.registerManageSubtask()
	s.registerManageProject()
	s.registerManageAgent()
	s.registerManageContext()
	return s
}

// MCPServer exposes the underlying mcp-go server, e.g. for wiring a
// transport (stdio, SSE, streamable HTTP) in cmd/server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// toResult marshals a facade.Response to its wire JSON and wraps it as a
// single text content block — tools.Execute's own result, never a Go error,
// carries the structured success/failure envelope (spec §6).
func toResult(resp *facade.Response) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(body)), nil
}

// args is the loosely-typed argument bag every tool handler starts from.
type args map[string]interface{}

func (a args) str(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

func (a args) strOK(key string) (string, bool) {
	v, ok := a[key].(string)
	return v, ok && v != ""
}

func (a args) boolean(key string) bool {
	v, _ := a[key].(bool)
	return v
}

func (a args) floatOK(key string) (float64, bool) {
	v, ok := a[key].(float64)
	return v, ok
}

func (a args) intPtr(key string) *int {
	v, ok := a[key].(float64)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

func (a args) strSlice(key string) []string {
	raw, ok := a[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (a args) object(key string) map[string]interface{} {
	m, _ := a[key].(map[string]interface{})
	return m
}

func fromReq(req mcp.CallToolRequest) args {
	return args(req.GetArguments())
}

func (s *Server) recover(ctx context.Context) {
	if r := recover(); r != nil {
		s.logger.Error("rpc tool handler panicked", map[string]interface{}{"panic": r})
	}
}
