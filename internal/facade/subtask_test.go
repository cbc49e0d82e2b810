package facade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

func seedTask(t *testing.T, tf *testFacade, ctx context.Context) *models.Task {
	t.Helper()
	task := models.NewTask(uuid.New(), uuid.New(), "Parent", "desc", models.PriorityMedium, []string{"@coding-agent"})
	require.NoError(t, tf.taskRepo.Create(ctx, task))
	return task
}

func TestManageSubtask_Create_RequiresTitle(t *testing.T) {
	tf := newTestFacade()
	ctx := context.Background()
	task := seedTask(t, tf, ctx)

	resp := tf.ManageSubtask(ctx, "create", SubtaskParams{ParentTaskID: task.ID.String()})
	assert.False(t, resp.Success)
	assert.Equal(t, "title", resp.Error.Field)
}

func TestManageSubtask_CreateThenGet_ByTopLevelID(t *testing.T) {
	tf := newTestFacade()
	ctx := context.Background()
	task := seedTask(t, tf, ctx)

	createResp := tf.ManageSubtask(ctx, "create", SubtaskParams{
		ParentTaskID: task.ID.String(), Title: "Sub one", Priority: models.PriorityMedium,
	})
	require.True(t, createResp.Success)
	sub := createResp.Data.(*models.Subtask)

	getResp := tf.ManageSubtask(ctx, "get", SubtaskParams{SubtaskID: sub.ID.String()})
	require.True(t, getResp.Success)
	assert.Equal(t, sub.ID, getResp.Data.(*models.Subtask).ID)
}

func TestManageSubtask_Get_ResolvesIDFromSubtaskData(t *testing.T) {
	tf := newTestFacade()
	ctx := context.Background()
	task := seedTask(t, tf, ctx)

	createResp := tf.ManageSubtask(ctx, "create", SubtaskParams{
		ParentTaskID: task.ID.String(), Title: "Sub one", Priority: models.PriorityMedium,
	})
	require.True(t, createResp.Success)
	sub := createResp.Data.(*models.Subtask)

	getResp := tf.ManageSubtask(ctx, "get", SubtaskParams{
		SubtaskData: map[string]interface{}{"subtask_id": sub.ID.String()},
	})
	require.True(t, getResp.Success)
	assert.Equal(t, sub.ID, getResp.Data.(*models.Subtask).ID)
}

func TestManageSubtask_Get_MissingIDEverywhereIsValidationError(t *testing.T) {
	tf := newTestFacade()
	resp := tf.ManageSubtask(context.Background(), "get", SubtaskParams{})
	assert.False(t, resp.Success)
	assert.Equal(t, "subtask_id", resp.Error.Field)
}

func TestManageSubtask_Complete_SetsDoneStatus(t *testing.T) {
	tf := newTestFacade()
	ctx := context.Background()
	task := seedTask(t, tf, ctx)

	createResp := tf.ManageSubtask(ctx, "create", SubtaskParams{
		ParentTaskID: task.ID.String(), Title: "Sub one", Priority: models.PriorityMedium,
	})
	require.True(t, createResp.Success)
	sub := createResp.Data.(*models.Subtask)

	completeResp := tf.ManageSubtask(ctx, "complete", SubtaskParams{SubtaskID: sub.ID.String()})
	require.True(t, completeResp.Success)
	assert.Equal(t, models.TaskStatusDone, completeResp.Data.(*models.Subtask).Status)
}

func TestManageSubtask_Reopen_RequiresDoneStatusAndResetsProgress(t *testing.T) {
	tf := newTestFacade()
	ctx := context.Background()
	task := seedTask(t, tf, ctx)

	createResp := tf.ManageSubtask(ctx, "create", SubtaskParams{
		ParentTaskID: task.ID.String(), Title: "Sub one", Priority: models.PriorityMedium,
	})
	require.True(t, createResp.Success)
	sub := createResp.Data.(*models.Subtask)

	tooEarly := tf.ManageSubtask(ctx, "reopen", SubtaskParams{SubtaskID: sub.ID.String()})
	assert.False(t, tooEarly.Success)
	assert.Equal(t, string(apperrors.CodeValidation), tooEarly.Error.Code)

	completeResp := tf.ManageSubtask(ctx, "complete", SubtaskParams{SubtaskID: sub.ID.String()})
	require.True(t, completeResp.Success)

	reopenResp := tf.ManageSubtask(ctx, "reopen", SubtaskParams{SubtaskID: sub.ID.String()})
	require.True(t, reopenResp.Success)
	reopened := reopenResp.Data.(*models.Subtask)
	assert.Equal(t, models.TaskStatusTodo, reopened.Status)
	assert.Equal(t, 0, reopened.ProgressPercentage)

	// "update" must not be able to reach the same done->todo transition.
	todo := models.TaskStatusTodo
	completeResp2 := tf.ManageSubtask(ctx, "complete", SubtaskParams{SubtaskID: sub.ID.String()})
	require.True(t, completeResp2.Success)
	bypassResp := tf.ManageSubtask(ctx, "update", SubtaskParams{
		SubtaskID: sub.ID.String(), StatusSet: true, Status: todo,
	})
	assert.False(t, bypassResp.Success)
	assert.Equal(t, string(apperrors.CodeValidation), bypassResp.Error.Code)
}

func TestManageSubtask_UnknownAction(t *testing.T) {
	tf := newTestFacade()
	resp := tf.ManageSubtask(context.Background(), "bogus", SubtaskParams{})
	assert.False(t, resp.Success)
	assert.Equal(t, string(apperrors.CodeValidation), resp.Error.Code)
}
