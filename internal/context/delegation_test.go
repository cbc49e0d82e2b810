package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmesh-org/taskmesh/pkg/models"
)

func TestDelegate_CreatesUnprocessedDelegation(t *testing.T) {
	repo := newFakeContextRepo()
	e := newTestEngine(repo)

	d, err := e.Delegate(context.Background(), models.LevelTask, "task-1", models.LevelBranch, "branch-1",
		models.JSONMap{"discovered_patterns": models.JSONMap{"pattern": "retry-with-backoff"}},
		"reusable across the branch", models.TriggerAutoPattern, 0.9)
	require.NoError(t, err)
	assert.False(t, d.Processed)
	assert.False(t, d.Approved)

	pending, err := e.ListPendingDelegations(context.Background(), models.LevelBranch, "branch-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, d.ID, pending[0].ID)
}

func TestApproveDelegation_MergesDataIntoTargetAndMarksProcessed(t *testing.T) {
	repo := newFakeContextRepo()
	e := newTestEngine(repo)
	ctx := context.Background()

	d, err := e.Delegate(ctx, models.LevelTask, "task-1", models.LevelBranch, "branch-1",
		models.JSONMap{"discovered_patterns": models.JSONMap{"pattern": "retry-with-backoff"}},
		"reusable", models.TriggerAutoPattern, 0.9)
	require.NoError(t, err)

	require.NoError(t, e.ApproveDelegation(ctx, d, "proj-1", "user-1"))
	assert.True(t, d.Approved)
	assert.True(t, d.Processed)

	c := repo.branches["branch-1"]
	require.NotNil(t, c)
	assert.Equal(t, "retry-with-backoff", c.DiscoveredPatterns["pattern"])

	pending, err := e.ListPendingDelegations(ctx, models.LevelBranch, "branch-1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApproveDelegation_MergesOntoExistingSectionData(t *testing.T) {
	repo := newFakeContextRepo()
	e := newTestEngine(repo)
	ctx := context.Background()

	require.NoError(t, e.UpdateSection(ctx, models.LevelBranch, "branch-1", "proj-1", "user-1", "discovered_patterns", models.JSONMap{"existing": "value"}))

	d, err := e.Delegate(ctx, models.LevelTask, "task-1", models.LevelBranch, "branch-1",
		models.JSONMap{"discovered_patterns": models.JSONMap{"pattern": "retry-with-backoff"}},
		"reusable", models.TriggerAutoPattern, 0.9)
	require.NoError(t, err)

	require.NoError(t, e.ApproveDelegation(ctx, d, "proj-1", "user-1"))

	c := repo.branches["branch-1"]
	assert.Equal(t, "value", c.DiscoveredPatterns["existing"])
	assert.Equal(t, "retry-with-backoff", c.DiscoveredPatterns["pattern"])
}

func TestRejectDelegation_NeverMergesData(t *testing.T) {
	repo := newFakeContextRepo()
	e := newTestEngine(repo)
	ctx := context.Background()

	d, err := e.Delegate(ctx, models.LevelTask, "task-1", models.LevelBranch, "branch-1",
		models.JSONMap{"discovered_patterns": models.JSONMap{"pattern": "retry-with-backoff"}},
		"reusable", models.TriggerAutoPattern, 0.9)
	require.NoError(t, err)

	require.NoError(t, e.RejectDelegation(ctx, d))
	assert.True(t, d.Processed)
	assert.False(t, d.Approved)
	assert.Nil(t, repo.branches["branch-1"])
}
