package models

import (
	"strings"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
)

// AgentRoleRegistry is the closed enum of canonical assignee slugs plus a
// legacy-alias map, resolved against at normalisation time (spec §4.2.d).
// fsnotify watches the backing file in production (see SPEC_FULL.md); the
// in-memory registry here is the pure resolution logic.
type AgentRoleRegistry struct {
	canonical map[string]bool
	aliases   map[string]string // legacy alias -> canonical slug
}

// NewAgentRoleRegistry builds a registry from a canonical slug list and an
// alias map.
func NewAgentRoleRegistry(canonicalSlugs []string, aliases map[string]string) *AgentRoleRegistry {
	r := &AgentRoleRegistry{
		canonical: make(map[string]bool, len(canonicalSlugs)),
		aliases:   aliases,
	}
	for _, s := range canonicalSlugs {
		r.canonical[s] = true
	}
	if r.aliases == nil {
		r.aliases = map[string]string{}
	}
	return r
}

// DefaultAgentRoleRegistry returns a registry seeded with the roles this
// domain's facades reference directly (coding-agent, code-reviewer-agent, etc.)
// plus a couple of legacy aliases the teacher corpus's own agent-role
// tables carry (e.g. "dev" -> "coding-agent").
func DefaultAgentRoleRegistry() *AgentRoleRegistry {
	return NewAgentRoleRegistry(
		[]string{
			"coding-agent", "code-reviewer-agent", "test-orchestrator-agent",
			"devops-agent", "security-auditor-agent", "documentation-agent",
			"deep-research-agent", "ui-designer-agent",
		},
		map[string]string{
			"dev":       "coding-agent",
			"reviewer":  "code-reviewer-agent",
			"qa":        "test-orchestrator-agent",
			"ops":       "devops-agent",
			"security":  "security-auditor-agent",
			"docs":      "documentation-agent",
			"research":  "deep-research-agent",
			"design":    "ui-designer-agent",
		},
	)
}

// resolve normalises a single handle: strips '@', resolves a legacy alias,
// and reports whether the resulting slug is in the closed enum.
func (r *AgentRoleRegistry) resolve(handle string) (slug string, known bool) {
	slug = strings.TrimPrefix(handle, "@")
	if canon, isAlias := r.aliases[slug]; isAlias {
		slug = canon
	}
	return slug, r.canonical[slug]
}

// NormalizeAssignee normalises one handle for the lenient update path
// (spec §4.2.d): unknown slugs are preserved, not dropped.
func (r *AgentRoleRegistry) NormalizeAssignee(handle string) string {
	slug, _ := r.resolve(handle)
	return "@" + slug
}

// NormalizeAssigneeList normalises every handle leniently.
func (r *AgentRoleRegistry) NormalizeAssigneeList(handles []string) []string {
	out := make([]string, len(handles))
	for i, h := range handles {
		out[i] = r.NormalizeAssignee(h)
	}
	return out
}

// ValidateAssigneeList is the strict bulk-validation path used by task
// creation (spec §4.2.d): rejects unknown slugs.
func (r *AgentRoleRegistry) ValidateAssigneeList(handles []string) ([]string, error) {
	if len(handles) == 0 {
		return nil, apperrors.Validation("assignees", "at least one assignee is required")
	}
	out := make([]string, len(handles))
	for i, h := range handles {
		slug, known := r.resolve(h)
		if !known {
			return nil, apperrors.Validation("assignees", "unknown assignee slug %q", slug)
		}
		out[i] = "@" + slug
	}
	return out, nil
}
