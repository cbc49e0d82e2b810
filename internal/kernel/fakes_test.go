package kernel

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

// fakeProjectRepo is an in-memory repository.ProjectRepository double,
// grounded on internal/context/engine_test.go's fakeContextRepo style:
// plain maps, no generated mock.
type fakeProjectRepo struct {
	projects map[string]*models.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*models.Project{}}
}

func (f *fakeProjectRepo) put(p *models.Project) { f.projects[p.ID] = p }

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
		for branchID, assigned := range p.Assignments {
			if assigned == agentID {
				delete(p.Assignments, branchID)
				if b, ok := p.Branches[branchID]; ok {
					b.AssignedAgentID = nil
				}
			}
		}
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

// fakeTaskRepo is an in-memory repository.TaskRepository double.
type fakeTaskRepo struct {
	tasks map[uuid.UUID]*models.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[uuid.UUID]*models.Task{}}
}

func (f *fakeTaskRepo) put(t *models.Task) { f.tasks[t.ID] = t }

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
		return nil
	}
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

// fakeSessionRepo is an in-memory repository.WorkSessionRepository double.
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
