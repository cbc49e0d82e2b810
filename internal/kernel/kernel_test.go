package kernel

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

func newTestKernel() (*Kernel, *fakeProjectRepo, *fakeTaskRepo) {
	projects := newFakeProjectRepo()
	tasks := newFakeTaskRepo()
	sessions := newFakeSessionRepo()
	k := New(projects, tasks, sessions, observability.NewStandardLogger("test"), observability.NewInMemoryMetrics())
	return k, projects, tasks
}

func seedProject(projects *fakeProjectRepo) *models.Project {
	p := models.NewProject("tenant-1", "demo", "a demo project")
	projects.put(p)
	return p
}

func TestKernel_CreateBranch_RejectsDuplicateNameInProject(t *testing.T) {
	k, projects, _ := newTestKernel()
	p := seedProject(projects)
	ctx := context.Background()

	_, err := k.CreateBranch(ctx, p.ID, "main", "")
	require.NoError(t, err)

	_, err = k.CreateBranch(ctx, p.ID, "main", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestKernel_RegisterAgent_ReRegistrationIsIdempotent(t *testing.T) {
	k, projects, _ := newTestKernel()
	p := seedProject(projects)
	ctx := context.Background()

	agent := models.NewAgent("a1", "Agent One", []models.Capability{models.CapabilityBackend}, nil)
	require.NoError(t, k.RegisterAgent(ctx, p.ID, agent))

	once, err := k.GetAgent(ctx, "a1")
	require.NoError(t, err)

	require.NoError(t, k.RegisterAgent(ctx, p.ID, models.NewAgent("a1", "Agent One", []models.Capability{models.CapabilityBackend}, nil)))
	twice, err := k.GetAgent(ctx, "a1")
	require.NoError(t, err)

	assert.Equal(t, once.ID, twice.ID)
	assert.Equal(t, once.Name, twice.Name)
	assert.Equal(t, once.Capabilities, twice.Capabilities)
	assert.Len(t, projects.projects[p.ID].Agents, 1, "re-registering must not duplicate the registry entry")
}

func TestKernel_AssignAgentToBranch_FailsNotFoundForUnknownAgent(t *testing.T) {
	k, projects, _ := newTestKernel()
	p := seedProject(projects)
	ctx := context.Background()
	branch, err := k.CreateBranch(ctx, p.ID, "feature-x", "")
	require.NoError(t, err)

	err = k.AssignAgentToBranch(ctx, p.ID, "ghost-agent", branch.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestKernel_AssignAgentToBranch_ConflictsOnDoubleAssignment(t *testing.T) {
	k, projects, _ := newTestKernel()
	p := seedProject(projects)
	ctx := context.Background()
	branch, err := k.CreateBranch(ctx, p.ID, "feature-x", "")
	require.NoError(t, err)
	require.NoError(t, k.RegisterAgent(ctx, p.ID, models.NewAgent("a1", "Agent One", nil, nil)))
	require.NoError(t, k.RegisterAgent(ctx, p.ID, models.NewAgent("a2", "Agent Two", nil, nil)))

	require.NoError(t, k.AssignAgentToBranch(ctx, p.ID, "a1", branch.ID))

	err = k.AssignAgentToBranch(ctx, p.ID, "a2", branch.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestKernel_UnassignBranchFromAgent_RejectsStaleCaller(t *testing.T) {
	k, projects, _ := newTestKernel()
	p := seedProject(projects)
	ctx := context.Background()
	branch, err := k.CreateBranch(ctx, p.ID, "feature-x", "")
	require.NoError(t, err)
	require.NoError(t, k.RegisterAgent(ctx, p.ID, models.NewAgent("a1", "Agent One", nil, nil)))
	require.NoError(t, k.AssignAgentToBranch(ctx, p.ID, "a1", branch.ID))

	err = k.UnassignBranchFromAgent(ctx, p.ID, branch.ID, "a2")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

	require.NoError(t, k.UnassignBranchFromAgent(ctx, p.ID, branch.ID, "a1"))
}

func TestKernel_AddCrossTreeDependency_RejectsSameBranchTasks(t *testing.T) {
	k, projects, tasks := newTestKernel()
	p := seedProject(projects)
	ctx := context.Background()
	branch, err := k.CreateBranch(ctx, p.ID, "feature-x", "")
	require.NoError(t, err)
	branchID := uuid.MustParse(branch.ID)

	t1 := models.NewTask(branchID, uuid.New(), "t1", "", models.PriorityMedium, nil)
	t2 := models.NewTask(branchID, uuid.New(), "t2", "", models.PriorityMedium, nil)
	tasks.put(t1)
	tasks.put(t2)

	err = k.AddCrossTreeDependency(ctx, p.ID, t1.ID.String(), t2.ID.String())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestKernel_AddCrossTreeDependency_AllowsDifferentBranches(t *testing.T) {
	k, projects, tasks := newTestKernel()
	p := seedProject(projects)
	ctx := context.Background()
	b1, err := k.CreateBranch(ctx, p.ID, "feature-x", "")
	require.NoError(t, err)
	b2, err := k.CreateBranch(ctx, p.ID, "feature-y", "")
	require.NoError(t, err)

	dependent := models.NewTask(uuid.MustParse(b1.ID), uuid.New(), "dependent", "", models.PriorityMedium, nil)
	prereq := models.NewTask(uuid.MustParse(b2.ID), uuid.New(), "prereq", "", models.PriorityMedium, nil)
	tasks.put(dependent)
	tasks.put(prereq)

	require.NoError(t, k.AddCrossTreeDependency(ctx, p.ID, dependent.ID.String(), prereq.ID.String()))

	report, err := k.CoordinateCrossTreeDependencies(ctx, p.ID)
	require.NoError(t, err)
	assert.Contains(t, report.BlockedTasks[dependent.ID.String()], prereq.ID.String())

	prereq.Status = models.TaskStatusDone
	tasks.put(prereq)
	report, err = k.CoordinateCrossTreeDependencies(ctx, p.ID)
	require.NoError(t, err)
	assert.NotContains(t, report.BlockedTasks, dependent.ID.String())
}

func TestKernel_GetAvailableWorkForAgent_OnlyReturnsUnblockedTodoTasks(t *testing.T) {
	k, projects, tasks := newTestKernel()
	p := seedProject(projects)
	ctx := context.Background()
	branch, err := k.CreateBranch(ctx, p.ID, "feature-x", "")
	require.NoError(t, err)
	require.NoError(t, k.RegisterAgent(ctx, p.ID, models.NewAgent("a1", "Agent One", nil, nil)))
	require.NoError(t, k.AssignAgentToBranch(ctx, p.ID, "a1", branch.ID))

	branchID := uuid.MustParse(branch.ID)
	free := models.NewTask(branchID, uuid.New(), "free", "", models.PriorityMedium, nil)
	blocked := models.NewTask(branchID, uuid.New(), "blocked", "", models.PriorityMedium, nil)
	prereq := models.NewTask(uuid.New(), uuid.New(), "prereq-elsewhere", "", models.PriorityMedium, nil)
	tasks.put(free)
	tasks.put(blocked)
	tasks.put(prereq)

	p.CrossTreeDeps[blocked.ID.String()] = map[string]bool{prereq.ID.String(): true}

	available, err := k.GetAvailableWorkForAgent(ctx, p.ID, "a1")
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, free.ID, available[0].ID)
}

func TestKernel_DeleteProject_RefusesNonEmptyProjectWithoutForce(t *testing.T) {
	k, projects, _ := newTestKernel()
	p := seedProject(projects)
	ctx := context.Background()
	_, err := k.CreateBranch(ctx, p.ID, "feature-x", "")
	require.NoError(t, err)

	err = k.DeleteProject(ctx, p.ID, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

	require.NoError(t, k.DeleteProject(ctx, p.ID, true))
	_, err = projects.Get(ctx, p.ID)
	require.Error(t, err)
}

func TestKernel_DeleteProject_AllowsEmptyMainBranch(t *testing.T) {
	k, projects, _ := newTestKernel()
	p := seedProject(projects)
	ctx := context.Background()
	_, err := k.CreateBranch(ctx, p.ID, "main", "")
	require.NoError(t, err)

	require.NoError(t, k.DeleteProject(ctx, p.ID, false))
}
