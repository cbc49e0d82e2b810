package rolesync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmesh-org/taskmesh/internal/observability"
)

const initialRoles = `
canonical:
  - coding-agent
  - code-reviewer-agent
aliases:
  dev: coding-agent
`

const reloadedRoles = `
canonical:
  - coding-agent
  - code-reviewer-agent
  - devops-agent
aliases:
  dev: coding-agent
  ops: devops-agent
`

func TestWatcher_LoadsInitialRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(initialRoles), 0o644))

	w, err := NewWatcher(path, observability.NewStandardLogger("test"))
	require.NoError(t, err)
	defer w.Stop()

	out, err := w.Registry().ValidateAssigneeList([]string{"@dev"})
	require.NoError(t, err)
	assert.Equal(t, []string{"@coding-agent"}, out)
}

func TestWatcher_ReloadsOnFileWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(initialRoles), 0o644))

	w, err := NewWatcher(path, observability.NewStandardLogger("test"))
	require.NoError(t, err)
	defer w.Stop()
	w.Start()

	_, err = w.Registry().ValidateAssigneeList([]string{"@ops"})
	require.Error(t, err, "devops-agent alias should not resolve before reload")

	require.NoError(t, os.WriteFile(path, []byte(reloadedRoles), 0o644))

	require.Eventually(t, func() bool {
		_, err := w.Registry().ValidateAssigneeList([]string{"@ops"})
		return err == nil
	}, 2*time.Second, 20*time.Millisecond, "registry should pick up the devops-agent alias after reload")
}
