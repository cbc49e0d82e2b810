package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainEvent_ToDict_JSONRoundTrip(t *testing.T) {
	taskID := uuid.New()
	event := NewTaskUpdated(taskID, "priority", "low", "high", map[string]interface{}{"actor": "@dev"})

	dict := event.ToDict()
	raw, err := json.Marshal(dict)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, string(EventTaskUpdated), decoded["event_type"])
	assert.Equal(t, taskID.String(), decoded["task_id"])
	assert.Equal(t, "priority", decoded["field_name"])
	assert.Equal(t, "low", decoded["old_value"])
	assert.Equal(t, "high", decoded["new_value"])
	assert.Equal(t, "@dev", decoded["metadata"].(map[string]interface{})["actor"])
	assert.NotEmpty(t, decoded["timestamp"])
}

func TestDomainEvent_ToDict_OmitsUnsetOptionalFields(t *testing.T) {
	event := NewTaskCreated(uuid.New())
	dict := event.ToDict()

	_, hasField := dict["field_name"]
	_, hasOld := dict["old_value"]
	_, hasNew := dict["new_value"]
	_, hasMeta := dict["metadata"]
	assert.False(t, hasField)
	assert.False(t, hasOld)
	assert.False(t, hasNew)
	assert.False(t, hasMeta)
}

func TestEventRecorder_DrainClearsBufferButPendingDoesNot(t *testing.T) {
	var r EventRecorder
	r.Record(NewTaskCreated(uuid.New()))
	r.Record(NewTaskRetrieved(uuid.New()))

	assert.Len(t, r.Pending(), 2)
	drained := r.Drain()
	assert.Len(t, drained, 2)
	assert.Empty(t, r.Pending())
}
