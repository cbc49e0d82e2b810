package models

import "github.com/google/uuid"

// ContextLevel is one of the four resolution levels (spec §4.3.a).
type ContextLevel string

const (
	LevelGlobal  ContextLevel = "global"
	LevelProject ContextLevel = "project"
	LevelBranch  ContextLevel = "branch"
	LevelTask    ContextLevel = "task"
)

// GlobalContext is the top of the inheritance chain, owned per-user
// (spec §3, §4.3.e: "each user owns their own GlobalContext").
type GlobalContext struct {
	Timestamps

	ID     uuid.UUID `json:"id" db:"id"`
	UserID string    `json:"user_id" db:"user_id"`

	OrganizationStandards   JSONMap `json:"organization_standards" db:"organization_standards"`
	SecurityPolicies        JSONMap `json:"security_policies" db:"security_policies"`
	ComplianceRequirements  JSONMap `json:"compliance_requirements" db:"compliance_requirements"`
	SharedResources         JSONMap `json:"shared_resources" db:"shared_resources"`
	ReusablePatterns        JSONMap `json:"reusable_patterns" db:"reusable_patterns"`
	GlobalPreferences       JSONMap `json:"global_preferences" db:"global_preferences"`
	DelegationRules         JSONMap `json:"delegation_rules" db:"delegation_rules"`
	NestedStructure         JSONMap `json:"nested_structure" db:"nested_structure"`

	Version int `json:"version" db:"version"`
}

// Sections returns the fixed, documented section ordering (spec §4.3.a)
// that makes deep-merge deterministic: the section names, in this exact
// order.
func (g *GlobalContext) Sections() []string {
	return []string{
		"organization_standards", "security_policies", "compliance_requirements",
		"shared_resources", "reusable_patterns", "global_preferences", "delegation_rules",
	}
}

func (g *GlobalContext) SectionValues() map[string]JSONMap {
	return map[string]JSONMap{
		"organization_standards":  g.OrganizationStandards,
		"security_policies":       g.SecurityPolicies,
		"compliance_requirements": g.ComplianceRequirements,
		"shared_resources":        g.SharedResources,
		"reusable_patterns":       g.ReusablePatterns,
		"global_preferences":      g.GlobalPreferences,
		"delegation_rules":        g.DelegationRules,
	}
}

// ProjectContext is the second level (spec §3).
type ProjectContext struct {
	Timestamps

	ID            uuid.UUID  `json:"id" db:"id"`
	ProjectID     string     `json:"project_id" db:"project_id"`
	ParentGlobalID uuid.UUID `json:"parent_global_id" db:"parent_global_id"`
	UserID        string     `json:"user_id" db:"user_id"`

	ProjectInfo           JSONMap `json:"project_info" db:"project_info"`
	TeamPreferences       JSONMap `json:"team_preferences" db:"team_preferences"`
	TechnologyStack       JSONMap `json:"technology_stack" db:"technology_stack"`
	ProjectWorkflow       JSONMap `json:"project_workflow" db:"project_workflow"`
	LocalStandards        JSONMap `json:"local_standards" db:"local_standards"`
	ProjectSettings       JSONMap `json:"project_settings" db:"project_settings"`
	TechnicalSpecifications JSONMap `json:"technical_specifications" db:"technical_specifications"`
	GlobalOverrides       JSONMap `json:"global_overrides" db:"global_overrides"`
	DelegationRules       JSONMap `json:"delegation_rules" db:"delegation_rules"`

	InheritanceDisabled bool `json:"inheritance_disabled" db:"inheritance_disabled"`
	Version             int  `json:"version" db:"version"`
}

func (c *ProjectContext) Sections() []string {
	return []string{
		"project_info", "team_preferences", "technology_stack", "project_workflow",
		"local_standards", "project_settings", "technical_specifications",
		"global_overrides", "delegation_rules",
	}
}

func (c *ProjectContext) SectionValues() map[string]JSONMap {
	return map[string]JSONMap{
		"project_info": c.ProjectInfo, "team_preferences": c.TeamPreferences,
		"technology_stack": c.TechnologyStack, "project_workflow": c.ProjectWorkflow,
		"local_standards": c.LocalStandards, "project_settings": c.ProjectSettings,
		"technical_specifications": c.TechnicalSpecifications,
		"global_overrides": c.GlobalOverrides, "delegation_rules": c.DelegationRules,
	}
}

// BranchContext is the third level (spec §3).
type BranchContext struct {
	Timestamps

	ID              uuid.UUID `json:"id" db:"id"`
	BranchID        string    `json:"branch_id" db:"branch_id"`
	ParentProjectID uuid.UUID `json:"parent_project_id" db:"parent_project_id"`
	UserID          string    `json:"user_id" db:"user_id"`

	BranchInfo        JSONMap `json:"branch_info" db:"branch_info"`
	BranchWorkflow    JSONMap `json:"branch_workflow" db:"branch_workflow"`
	FeatureFlags      JSONMap `json:"feature_flags" db:"feature_flags"`
	DiscoveredPatterns JSONMap `json:"discovered_patterns" db:"discovered_patterns"`
	BranchDecisions   JSONMap `json:"branch_decisions" db:"branch_decisions"`
	ActivePatterns    JSONMap `json:"active_patterns" db:"active_patterns"`
	LocalOverrides    JSONMap `json:"local_overrides" db:"local_overrides"`
	DelegationRules   JSONMap `json:"delegation_rules" db:"delegation_rules"`

	InheritanceDisabled bool `json:"inheritance_disabled" db:"inheritance_disabled"`
	Version             int  `json:"version" db:"version"`
}

func (c *BranchContext) Sections() []string {
	return []string{
		"branch_info", "branch_workflow", "feature_flags", "discovered_patterns",
		"branch_decisions", "active_patterns", "local_overrides", "delegation_rules",
	}
}

func (c *BranchContext) SectionValues() map[string]JSONMap {
	return map[string]JSONMap{
		"branch_info": c.BranchInfo, "branch_workflow": c.BranchWorkflow,
		"feature_flags": c.FeatureFlags, "discovered_patterns": c.DiscoveredPatterns,
		"branch_decisions": c.BranchDecisions, "active_patterns": c.ActivePatterns,
		"local_overrides": c.LocalOverrides, "delegation_rules": c.DelegationRules,
	}
}

// TaskContext is the fourth, leaf level (spec §3).
type TaskContext struct {
	Timestamps

	ID                   uuid.UUID `json:"id" db:"id"`
	TaskID               uuid.UUID `json:"task_id" db:"task_id"`
	ParentBranchID       string    `json:"parent_branch_id" db:"parent_branch_id"`
	ParentBranchContextID uuid.UUID `json:"parent_branch_context_id" db:"parent_branch_context_id"`
	UserID               string    `json:"user_id" db:"user_id"`

	TaskData          JSONMap `json:"task_data" db:"task_data"`
	ExecutionContext  JSONMap `json:"execution_context" db:"execution_context"`
	DiscoveredPatterns JSONMap `json:"discovered_patterns" db:"discovered_patterns"`
	ImplementationNotes JSONMap `json:"implementation_notes" db:"implementation_notes"`
	TestResults       JSONMap `json:"test_results" db:"test_results"`
	Blockers          JSONMap `json:"blockers" db:"blockers"`
	LocalDecisions    JSONMap `json:"local_decisions" db:"local_decisions"`
	DelegationQueue   JSONMap `json:"delegation_queue" db:"delegation_queue"`
	LocalOverrides    JSONMap `json:"local_overrides" db:"local_overrides"`
	DelegationTriggers JSONMap `json:"delegation_triggers" db:"delegation_triggers"`

	InheritanceDisabled bool `json:"inheritance_disabled" db:"inheritance_disabled"`
	ForceLocalOnly      bool `json:"force_local_only" db:"force_local_only"`
	Version             int  `json:"version" db:"version"`
}

func (c *TaskContext) Sections() []string {
	return []string{
		"task_data", "execution_context", "discovered_patterns", "implementation_notes",
		"test_results", "blockers", "local_decisions", "delegation_queue",
		"local_overrides", "delegation_triggers",
	}
}

func (c *TaskContext) SectionValues() map[string]JSONMap {
	return map[string]JSONMap{
		"task_data": c.TaskData, "execution_context": c.ExecutionContext,
		"discovered_patterns": c.DiscoveredPatterns, "implementation_notes": c.ImplementationNotes,
		"test_results": c.TestResults, "blockers": c.Blockers,
		"local_decisions": c.LocalDecisions, "delegation_queue": c.DelegationQueue,
		"local_overrides": c.LocalOverrides, "delegation_triggers": c.DelegationTriggers,
	}
}
