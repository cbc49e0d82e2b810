package facade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

func TestManageContext_Resolve_RequiresUserID(t *testing.T) {
	tf := newTestFacade()
	resp := tf.ManageContext(context.Background(), "resolve", ContextParams{Level: models.LevelProject, ContextID: "proj-1"})
	assert.False(t, resp.Success)
	assert.Equal(t, string(apperrors.CodeForbidden), resp.Error.Code)
}

func TestManageContext_UpdateSectionThenResolve(t *testing.T) {
	tf := newTestFacade()
	ctx := context.Background()

	updateResp := tf.ManageContext(ctx, "update-section", ContextParams{
		Level: models.LevelProject, ContextID: "proj-1", UserID: "user-1",
		Section: "project_info", Data: models.JSONMap{"name": "widgets"},
	})
	require.True(t, updateResp.Success)

	resolveResp := tf.ManageContext(ctx, "resolve", ContextParams{
		Level: models.LevelProject, ContextID: "proj-1", UserID: "user-1", IncludeInherited: true,
	})
	require.True(t, resolveResp.Success)
}

func TestManageContext_UpdateSection_RequiresSectionName(t *testing.T) {
	tf := newTestFacade()
	resp := tf.ManageContext(context.Background(), "update-section", ContextParams{
		Level: models.LevelProject, ContextID: "proj-1", UserID: "user-1",
	})
	assert.False(t, resp.Success)
	assert.Equal(t, "section", resp.Error.Field)
}

func TestManageContext_DelegateThenInvalidate(t *testing.T) {
	tf := newTestFacade()
	ctx := context.Background()

	delegateResp := tf.ManageContext(ctx, "delegate", ContextParams{
		SourceLevel: models.LevelTask, SourceID: "task-1",
		TargetLevel: models.LevelBranch, TargetID: "branch-1",
		Data: models.JSONMap{"discovered_patterns": models.JSONMap{"pattern": "retry"}},
		Reason: "reusable", Trigger: models.TriggerAutoPattern, Confidence: 0.9,
	})
	require.True(t, delegateResp.Success)

	invalidateResp := tf.ManageContext(ctx, "invalidate", ContextParams{Level: models.LevelTask, ContextID: "task-1", Reason: "manual"})
	assert.True(t, invalidateResp.Success)
}

func TestManageContext_UnknownAction(t *testing.T) {
	tf := newTestFacade()
	resp := tf.ManageContext(context.Background(), "bogus", ContextParams{})
	assert.False(t, resp.Success)
	assert.Equal(t, string(apperrors.CodeValidation), resp.Error.Code)
}
