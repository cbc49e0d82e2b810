package rpc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/internal/facade"
)

func mcpText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected a TextContent block")
	return tc.Text
}

func TestArgs_Str_MissingOrWrongTypeReturnsEmpty(t *testing.T) {
	a := args{"title": "widget", "count": 3}
	assert.Equal(t, "widget", a.str("title"))
	assert.Equal(t, "", a.str("missing"))
	assert.Equal(t, "", a.str("count"))
}

func TestArgs_StrOK_DistinguishesAbsentFromEmpty(t *testing.T) {
	a := args{"title": "widget", "blank": ""}
	v, ok := a.strOK("title")
	assert.True(t, ok)
	assert.Equal(t, "widget", v)

	_, ok = a.strOK("blank")
	assert.False(t, ok, "an empty string is treated as not-set, matching facade's *Set/value pairing")

	_, ok = a.strOK("missing")
	assert.False(t, ok)
}

func TestArgs_Boolean_DefaultsFalse(t *testing.T) {
	a := args{"include_context": true}
	assert.True(t, a.boolean("include_context"))
	assert.False(t, a.boolean("missing"))
}

func TestArgs_FloatOK_RoundTripsJSONNumberType(t *testing.T) {
	a := args{"limit": float64(25)}
	n, ok := a.floatOK("limit")
	assert.True(t, ok)
	assert.Equal(t, float64(25), n)

	_, ok = a.floatOK("missing")
	assert.False(t, ok)
}

func TestArgs_IntPtr_NilWhenAbsentOrWrongType(t *testing.T) {
	a := args{"limit": float64(10), "title": "not a number"}
	require.NotNil(t, a.intPtr("limit"))
	assert.Equal(t, 10, *a.intPtr("limit"))
	assert.Nil(t, a.intPtr("title"))
	assert.Nil(t, a.intPtr("missing"))
}

func TestArgs_StrSlice_FiltersNonStringElements(t *testing.T) {
	a := args{"assignees": []interface{}{"@dev", 42, "@qa"}}
	assert.Equal(t, []string{"@dev", "@qa"}, a.strSlice("assignees"))
	assert.Nil(t, a.strSlice("missing"))
}

func TestArgs_Object_NilWhenAbsentOrWrongType(t *testing.T) {
	a := args{"subtask_data": map[string]interface{}{"subtask_id": "s1"}, "title": "x"}
	assert.Equal(t, "s1", a.object("subtask_data")["subtask_id"])
	assert.Nil(t, a.object("title"))
	assert.Nil(t, a.object("missing"))
}

func TestParseTime_RequiresRFC3339(t *testing.T) {
	_, err := parseTime("not a timestamp")
	assert.Error(t, err)

	ts, err := parseTime("2026-01-15T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2026, ts.Year())
	assert.Equal(t, time.January, ts.Month())
}

func TestToResult_MarshalsSuccessEnvelope(t *testing.T) {
	resp := &facade.Response{Success: true, Data: map[string]string{"task_id": "t1"}}
	result, err := toResult(resp)
	require.NoError(t, err)

	var decoded facade.Response
	require.NoError(t, json.Unmarshal([]byte(mcpText(t, result)), &decoded))
	assert.True(t, decoded.Success)
}

func TestToResult_MarshalsErrorEnvelope(t *testing.T) {
	resp := &facade.Response{
		Success: false,
		Error:   &facade.ErrorPayload{Code: string(apperrors.CodeValidation), Message: "title is required", Field: "title"},
	}
	result, err := toResult(resp)
	require.NoError(t, err)

	var decoded facade.Response
	require.NoError(t, json.Unmarshal([]byte(mcpText(t, result)), &decoded))
	assert.False(t, decoded.Success)
	assert.Equal(t, "title", decoded.Error.Field)
}
