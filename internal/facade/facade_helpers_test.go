package facade

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	ctxengine "github.com/devmesh-org/taskmesh/internal/context"
	"github.com/devmesh-org/taskmesh/internal/kernel"
	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/internal/tasks"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

// The fakes below mirror the in-memory-store style used by each engine's
// own package tests (internal/kernel/fakes_test.go,
// internal/tasks/service_test.go, internal/context/engine_test.go): plain
// maps keyed by entity id, apperrors.NotFound on miss, no generated mocks.

type fakeProjectRepo struct {
	projects map[string]*models.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*models.Project{}}
}

func (f *fakeProjectRepo) Create(_ context.Context, p *models.Project) error {
	f.projects[p.ID] = p
	return nil
}
func (f *fakeProjectRepo) Get(_ context.Context, id string) (*models.Project, error) {
	if p, ok := f.projects[id]; ok {
		return p, nil
	}
	return nil, apperrors.NotFound("project", id)
}
func (f *fakeProjectRepo) Update(_ context.Context, p *models.Project) error {
	f.projects[p.ID] = p
	return nil
}
func (f *fakeProjectRepo) Delete(_ context.Context, id string) error {
	delete(f.projects, id)
	return nil
}
func (f *fakeProjectRepo) List(_ context.Context, tenantID string) ([]*models.Project, error) {
	var out []*models.Project
	for _, p := range f.projects {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (f *fakeProjectRepo) AddBranch(_ context.Context, projectID string, branch *models.GitBranch) error {
	p, ok := f.projects[projectID]
	if !ok {
		return apperrors.NotFound("project", projectID)
	}
	p.Branches[branch.ID] = branch
	return nil
}
func (f *fakeProjectRepo) UpdateBranch(_ context.Context, branch *models.GitBranch) error {
	for _, p := range f.projects {
		if _, ok := p.Branches[branch.ID]; ok {
			p.Branches[branch.ID] = branch
			return nil
		}
	}
	return apperrors.NotFound("branch", branch.ID)
}
func (f *fakeProjectRepo) DeleteBranch(_ context.Context, branchID string) error {
	for _, p := range f.projects {
		delete(p.Branches, branchID)
	}
	return nil
}
func (f *fakeProjectRepo) UpsertAgent(_ context.Context, projectID string, agent *models.Agent) error {
	p, ok := f.projects[projectID]
	if !ok {
		return apperrors.NotFound("project", projectID)
	}
	agent.ProjectID = projectID
	p.Agents[agent.ID] = agent
	return nil
}
func (f *fakeProjectRepo) GetAgent(_ context.Context, agentID string) (*models.Agent, error) {
	for _, p := range f.projects {
		if a, ok := p.Agents[agentID]; ok {
			return a, nil
		}
	}
	return nil, apperrors.NotFound("agent", agentID)
}
func (f *fakeProjectRepo) ListAgents(_ context.Context, projectID string) ([]*models.Agent, error) {
	p, ok := f.projects[projectID]
	if !ok {
		return nil, apperrors.NotFound("project", projectID)
	}
	var out []*models.Agent
	for _, a := range p.Agents {
		out = append(out, a)
	}
	return out, nil
}
func (f *fakeProjectRepo) DeleteAgent(_ context.Context, agentID string) error {
	for _, p := range f.projects {
		delete(p.Agents, agentID)
	}
	return nil
}
func (f *fakeProjectRepo) AssignAgentToBranch(_ context.Context, branchID, agentID string) error {
	for _, p := range f.projects {
		if b, ok := p.Branches[branchID]; ok {
			id := agentID
			b.AssignedAgentID = &id
			p.Assignments[branchID] = agentID
			return nil
		}
	}
	return apperrors.NotFound("branch", branchID)
}
func (f *fakeProjectRepo) UnassignBranch(_ context.Context, branchID string) error {
	for _, p := range f.projects {
		if b, ok := p.Branches[branchID]; ok {
			b.AssignedAgentID = nil
			delete(p.Assignments, branchID)
			return nil
		}
	}
	return apperrors.NotFound("branch", branchID)
}
func (f *fakeProjectRepo) AddCrossTreeDependency(_ context.Context, projectID, dependentTaskID, prerequisiteTaskID string) error {
	p, ok := f.projects[projectID]
	if !ok {
		return apperrors.NotFound("project", projectID)
	}
	if p.CrossTreeDeps[dependentTaskID] == nil {
		p.CrossTreeDeps[dependentTaskID] = map[string]bool{}
	}
	p.CrossTreeDeps[dependentTaskID][prerequisiteTaskID] = true
	return nil
}
func (f *fakeProjectRepo) RemoveCrossTreeDependency(_ context.Context, projectID, dependentTaskID, prerequisiteTaskID string) error {
	p, ok := f.projects[projectID]
	if !ok {
		return apperrors.NotFound("project", projectID)
	}
	delete(p.CrossTreeDeps[dependentTaskID], prerequisiteTaskID)
	return nil
}
func (f *fakeProjectRepo) GetCrossTreeDependencies(_ context.Context, projectID string) (map[string]map[string]bool, error) {
	p, ok := f.projects[projectID]
	if !ok {
		return nil, apperrors.NotFound("project", projectID)
	}
	return p.CrossTreeDeps, nil
}
func (f *fakeProjectRepo) UpsertResourceLock(_ context.Context, projectID, resourceKey, agentID string) error {
	p, ok := f.projects[projectID]
	if !ok {
		return apperrors.NotFound("project", projectID)
	}
	p.ResourceLocks[resourceKey] = agentID
	return nil
}
func (f *fakeProjectRepo) ReleaseResourceLock(_ context.Context, projectID, resourceKey string) error {
	p, ok := f.projects[projectID]
	if !ok {
		return apperrors.NotFound("project", projectID)
	}
	delete(p.ResourceLocks, resourceKey)
	return nil
}
func (f *fakeProjectRepo) GetResourceLocks(_ context.Context, projectID string) (map[string]string, error) {
	p, ok := f.projects[projectID]
	if !ok {
		return nil, apperrors.NotFound("project", projectID)
	}
	return p.ResourceLocks, nil
}

type fakeTaskRepo struct {
	tasks map[uuid.UUID]*models.Task
}

func newFakeTaskRepo() *fakeTaskRepo { return &fakeTaskRepo{tasks: map[uuid.UUID]*models.Task{}} }

func (f *fakeTaskRepo) Create(_ context.Context, t *models.Task) error {
	f.tasks[t.ID] = t
	return nil
}
func (f *fakeTaskRepo) Get(_ context.Context, id uuid.UUID) (*models.Task, error) {
	if t, ok := f.tasks[id]; ok {
		return t, nil
	}
	return nil, apperrors.NotFound("task", id.String())
}
func (f *fakeTaskRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return f.Get(ctx, id)
}
func (f *fakeTaskRepo) UpdateWithVersion(_ context.Context, t *models.Task, expectedVersion int) error {
	existing, ok := f.tasks[t.ID]
	if !ok || existing.Version != expectedVersion {
		return repository.ErrOptimisticLock
	}
	t.Version++
	f.tasks[t.ID] = t
	return nil
}
func (f *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.tasks, id)
	return nil
}
func (f *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range f.tasks {
		if filter.BranchID != "" && t.BranchID.String() != filter.BranchID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
func (f *fakeTaskRepo) ListByBranch(_ context.Context, branchID string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range f.tasks {
		if t.BranchID.String() == branchID {
			out = append(out, t)
		}
	}
	return out, nil
}
func (f *fakeTaskRepo) CountByStatus(_ context.Context, branchID string) (map[models.TaskStatus]int, error) {
	counts := map[models.TaskStatus]int{}
	for _, t := range f.tasks {
		if t.BranchID.String() == branchID {
			counts[t.Status]++
		}
	}
	return counts, nil
}

type fakeSubtaskRepo struct {
	byTask map[uuid.UUID][]*models.Subtask
}

func newFakeSubtaskRepo() *fakeSubtaskRepo {
	return &fakeSubtaskRepo{byTask: map[uuid.UUID][]*models.Subtask{}}
}

func (f *fakeSubtaskRepo) Create(_ context.Context, s *models.Subtask) error {
	f.byTask[s.ParentTaskID] = append(f.byTask[s.ParentTaskID], s)
	return nil
}
func (f *fakeSubtaskRepo) Get(_ context.Context, id uuid.UUID) (*models.Subtask, error) {
	for _, list := range f.byTask {
		for _, s := range list {
			if s.ID == id {
				return s, nil
			}
		}
	}
	return nil, apperrors.NotFound("subtask", id.String())
}
func (f *fakeSubtaskRepo) Update(_ context.Context, s *models.Subtask) error {
	list := f.byTask[s.ParentTaskID]
	for i, existing := range list {
		if existing.ID == s.ID {
			list[i] = s
			return nil
		}
	}
	return apperrors.NotFound("subtask", s.ID.String())
}
func (f *fakeSubtaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	for parentID, list := range f.byTask {
		for i, s := range list {
			if s.ID == id {
				f.byTask[parentID] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return apperrors.NotFound("subtask", id.String())
}
func (f *fakeSubtaskRepo) ListByTask(_ context.Context, taskID uuid.UUID) ([]*models.Subtask, error) {
	return f.byTask[taskID], nil
}

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*models.WorkSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[uuid.UUID]*models.WorkSession{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *models.WorkSession) error {
	f.sessions[s.ID] = s
	return nil
}
func (f *fakeSessionRepo) Get(_ context.Context, id uuid.UUID) (*models.WorkSession, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, apperrors.NotFound("work_session", id.String())
}
func (f *fakeSessionRepo) Update(_ context.Context, s *models.WorkSession) error {
	f.sessions[s.ID] = s
	return nil
}
func (f *fakeSessionRepo) ListActive(_ context.Context, projectID string) ([]*models.WorkSession, error) {
	var out []*models.WorkSession
	for _, s := range f.sessions {
		if s.ProjectID == projectID && (s.Status == models.SessionActive || s.Status == models.SessionPaused) {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeSessionRepo) ListActiveOlderThan(_ context.Context, cutoff time.Time) ([]*models.WorkSession, error) {
	var out []*models.WorkSession
	for _, s := range f.sessions {
		if (s.Status == models.SessionActive || s.Status == models.SessionPaused) && s.StartedAt.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeContextRepo struct {
	globals     map[string]*models.GlobalContext
	projects    map[string]*models.ProjectContext
	branches    map[string]*models.BranchContext
	tasks       map[uuid.UUID]*models.TaskContext
	cache       map[string]*models.ContextInheritanceCache
	delegations map[uuid.UUID]*models.ContextDelegation
}

func newFakeContextRepo() *fakeContextRepo {
	return &fakeContextRepo{
		globals:     map[string]*models.GlobalContext{},
		projects:    map[string]*models.ProjectContext{},
		branches:    map[string]*models.BranchContext{},
		tasks:       map[uuid.UUID]*models.TaskContext{},
		cache:       map[string]*models.ContextInheritanceCache{},
		delegations: map[uuid.UUID]*models.ContextDelegation{},
	}
}

func facadeCacheKey(contextID string, level models.ContextLevel) string {
	return string(level) + ":" + contextID
}

func (f *fakeContextRepo) GetGlobal(_ context.Context, userID string) (*models.GlobalContext, error) {
	if c, ok := f.globals[userID]; ok {
		return c, nil
	}
	return nil, apperrors.NotFound("global_context", userID)
}
func (f *fakeContextRepo) UpsertGlobal(_ context.Context, c *models.GlobalContext) error {
	f.globals[c.UserID] = c
	return nil
}
func (f *fakeContextRepo) GetProject(_ context.Context, projectID, _ string) (*models.ProjectContext, error) {
	if c, ok := f.projects[projectID]; ok {
		return c, nil
	}
	return nil, apperrors.NotFound("project_context", projectID)
}
func (f *fakeContextRepo) UpsertProjectWithVersion(_ context.Context, c *models.ProjectContext, _ int) error {
	f.projects[c.ProjectID] = c
	return nil
}
func (f *fakeContextRepo) GetBranch(_ context.Context, branchID, _ string) (*models.BranchContext, error) {
	if c, ok := f.branches[branchID]; ok {
		return c, nil
	}
	return nil, apperrors.NotFound("branch_context", branchID)
}
func (f *fakeContextRepo) UpsertBranchWithVersion(_ context.Context, c *models.BranchContext, _ int) error {
	f.branches[c.BranchID] = c
	return nil
}
func (f *fakeContextRepo) GetTask(_ context.Context, taskID uuid.UUID, _ string) (*models.TaskContext, error) {
	if c, ok := f.tasks[taskID]; ok {
		return c, nil
	}
	return nil, apperrors.NotFound("task_context", taskID.String())
}
func (f *fakeContextRepo) UpsertTaskWithVersion(_ context.Context, c *models.TaskContext, _ int) error {
	f.tasks[c.TaskID] = c
	return nil
}
func (f *fakeContextRepo) CreateDelegation(_ context.Context, d *models.ContextDelegation) error {
	f.delegations[d.ID] = d
	return nil
}
func (f *fakeContextRepo) ListPendingDelegations(_ context.Context, targetLevel models.ContextLevel, targetID string) ([]*models.ContextDelegation, error) {
	var out []*models.ContextDelegation
	for _, d := range f.delegations {
		if !d.Processed && d.TargetLevel == targetLevel && d.TargetID == targetID {
			out = append(out, d)
		}
	}
	return out, nil
}
func (f *fakeContextRepo) UpdateDelegation(_ context.Context, d *models.ContextDelegation) error {
	f.delegations[d.ID] = d
	return nil
}
func (f *fakeContextRepo) GetCacheEntry(_ context.Context, contextID string, level models.ContextLevel) (*models.ContextInheritanceCache, error) {
	if e, ok := f.cache[facadeCacheKey(contextID, level)]; ok {
		return e, nil
	}
	return nil, apperrors.NotFound("context_cache", contextID)
}
func (f *fakeContextRepo) PutCacheEntry(_ context.Context, entry *models.ContextInheritanceCache) error {
	f.cache[facadeCacheKey(entry.ContextID, entry.Level)] = entry
	return nil
}
func (f *fakeContextRepo) InvalidateCacheEntry(_ context.Context, contextID string, level models.ContextLevel, reason string) error {
	if e, ok := f.cache[facadeCacheKey(contextID, level)]; ok {
		e.Invalidate(reason)
	}
	return nil
}
// InvalidateDescendants marks every cache row whose recorded parent chain
// passed through (level, id), the same targeting a real repository does by
// matching the ancestry mergeNodes stamped into ParentChain at resolve
// time. Unlike internal/context's own fake (which only records the call),
// this one actually cascades so facade-level end-to-end tests can observe
// a genuine cache miss after an ancestor write.
func (f *fakeContextRepo) InvalidateDescendants(_ context.Context, level models.ContextLevel, id, reason string) error {
	marker := string(level) + ":" + id
	for _, entry := range f.cache {
		for _, link := range entry.ParentChain {
			if link == marker {
				entry.Invalidate(reason)
				break
			}
		}
	}
	return nil
}

// testFacade bundles the Facade under test with the underlying fakes so
// individual tests can seed state directly (e.g. pre-creating a project).
type testFacade struct {
	*Facade
	projects *fakeProjectRepo
	taskRepo *fakeTaskRepo
	subtasks *fakeSubtaskRepo
	sessions *fakeSessionRepo
}

func newTestFacade() *testFacade {
	projects := newFakeProjectRepo()
	taskRepo := newFakeTaskRepo()
	subtaskRepo := newFakeSubtaskRepo()
	sessions := newFakeSessionRepo()
	ctxRepo := newFakeContextRepo()

	logger := observability.NewStandardLogger("test")
	metrics := observability.NewInMemoryMetrics()

	k := kernel.New(projects, taskRepo, sessions, logger, metrics)
	taskSvc := tasks.New(taskRepo, subtaskRepo, models.DefaultAgentRoleRegistry(), logger, metrics)
	ctxEng := ctxengine.New(ctxRepo, time.Minute, logger, metrics)

	return &testFacade{
		Facade:   New(k, taskSvc, ctxEng, projects, logger, metrics),
		projects: projects,
		taskRepo: taskRepo,
		subtasks: subtaskRepo,
		sessions: sessions,
	}
}

func (tf *testFacade) seedProject(ctx context.Context, tenantID, name string) *models.Project {
	p := models.NewProject(tenantID, name, "")
	_ = tf.projects.Create(ctx, p)
	return p
}
