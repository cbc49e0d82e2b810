package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmesh-org/taskmesh/pkg/models"
)

func seedCacheEntry(repo *fakeContextRepo, id string, level models.ContextLevel) {
	repo.cache[cacheKey(id, level)] = &models.ContextInheritanceCache{ContextID: id, Level: level}
}

func TestInvalidate_TaskLevelMarksOnlyItsOwnEntry(t *testing.T) {
	repo := newFakeContextRepo()
	e := newTestEngine(repo)
	taskID := "task-1"
	seedCacheEntry(repo, taskID, models.LevelTask)

	require.NoError(t, e.Invalidate(context.Background(), models.LevelTask, taskID, "manual"))

	assert.True(t, repo.cache[cacheKey(taskID, models.LevelTask)].Invalidated)
	assert.Empty(t, repo.descendantInvalidations, "task level has no descendants to cascade to")
}

func TestInvalidate_BranchLevelCascadesToDescendants(t *testing.T) {
	repo := newFakeContextRepo()
	e := newTestEngine(repo)
	branchID := "branch-1"
	seedCacheEntry(repo, branchID, models.LevelBranch)

	require.NoError(t, e.Invalidate(context.Background(), models.LevelBranch, branchID, "branch renamed"))

	assert.True(t, repo.cache[cacheKey(branchID, models.LevelBranch)].Invalidated)
	assert.Equal(t, []string{"branch:" + branchID}, repo.descendantInvalidations)
}

func TestInvalidate_ProjectAndGlobalLevelsCascade(t *testing.T) {
	repo := newFakeContextRepo()
	e := newTestEngine(repo)

	require.NoError(t, e.Invalidate(context.Background(), models.LevelProject, "proj-1", "reason"))
	require.NoError(t, e.Invalidate(context.Background(), models.LevelGlobal, "user-1", "reason"))

	assert.Contains(t, repo.descendantInvalidations, "project:proj-1")
	assert.Contains(t, repo.descendantInvalidations, "global:user-1")
}

func TestInvalidate_UnknownLevelFallsBackToTask(t *testing.T) {
	repo := newFakeContextRepo()
	e := newTestEngine(repo)
	seedCacheEntry(repo, "thing-1", models.LevelTask)

	require.NoError(t, e.Invalidate(context.Background(), models.ContextLevel("bogus"), "thing-1", "reason"))

	assert.True(t, repo.cache[cacheKey("thing-1", models.LevelTask)].Invalidated)
}
