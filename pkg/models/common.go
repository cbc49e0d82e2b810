// Package models holds the shared value objects and entities of the
// work-coordination kernel, task engine, and context engine, grounded on
// the teacher's pkg/models package (JSONMap, UUID-keyed entities,
// optimistic-locking Version field).
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONMap is the concrete representation of every "opaque map"/JSON column
// field named in spec §3.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, (*map[string]interface{})(m))
	case string:
		return json.Unmarshal([]byte(v), (*map[string]interface{})(m))
	default:
		return nil
	}
}

// Clone returns a shallow copy safe to mutate independently.
func (m JSONMap) Clone() JSONMap {
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Timestamps is embedded (composition, not inheritance — see SPEC_FULL.md
// §9) by every entity that needs created_at/updated_at bookkeeping.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Touch stamps CreatedAt on first use and always advances UpdatedAt. The
// invariant updated_at >= created_at (spec §3) is enforced by construction.
func (t *Timestamps) Touch() {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// NewID generates a fresh entity UUID.
func NewID() uuid.UUID { return uuid.New() }

// DeepMergeSection merges child over base: scalars replace, nested objects
// merge recursively, arrays replace wholesale. Used by the context engine's
// deep-merge-by-section rule (spec §4.3.a) and exported here since both the
// context and delegation packages need the identical semantics.
func DeepMergeSection(base, child JSONMap) JSONMap {
	if base == nil {
		base = JSONMap{}
	}
	out := base.Clone()
	for k, childVal := range child {
		baseVal, exists := out[k]
		if !exists {
			out[k] = childVal
			continue
		}
		baseObj, baseIsObj := baseVal.(map[string]interface{})
		childObj, childIsObj := childVal.(map[string]interface{})
		if baseIsObj && childIsObj {
			out[k] = DeepMergeSection(JSONMap(baseObj), JSONMap(childObj))
			continue
		}
		out[k] = childVal
	}
	return out
}
