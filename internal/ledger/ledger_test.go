package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), "installed_plugins.json"))
}

func globalEntry(version string) Entry {
	return Entry{
		Scope:       "global",
		Version:     version,
		Status:      StatusInstalled,
		InstalledAt: "2026-08-30T10:00:00Z",
		LastUpdated: "2026-08-30T10:00:00Z",
		Source:      Source{Marketplace: "claude-code-plugins"},
		Assets:      map[string][]string{"agents": {"/dest/agents/explorer.md"}},
	}
}

func TestLoadMissingFile(t *testing.T) {
	l, err := testManager(t).Load()
	require.NoError(t, err)
	assert.Equal(t, 1, l.Version)
	assert.Empty(t, l.Plugins)
}

func TestUpsertKeyedByScope(t *testing.T) {
	m := testManager(t)
	id := "claude-core@claude-code-plugins"

	require.NoError(t, m.Upsert(id, globalEntry("1.0.0")))

	// Reinstall replaces the global record, keeping the original installedAt
	updated := globalEntry("1.1.0")
	updated.InstalledAt = ""
	updated.LastUpdated = "2026-08-31T09:00:00Z"
	require.NoError(t, m.Upsert(id, updated))

	entries, err := m.Get(id)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1.1.0", entries[0].Version)
	assert.Equal(t, "2026-08-30T10:00:00Z", entries[0].InstalledAt)
	assert.Equal(t, "2026-08-31T09:00:00Z", entries[0].LastUpdated)

	// A project-scope install of the same plugin is a separate record
	project := globalEntry("1.1.0")
	project.Scope = "project"
	project.ProjectPath = "/work/repo"
	require.NoError(t, m.Upsert(id, project))

	entries, err = m.Get(id)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSetStatus(t *testing.T) {
	m := testManager(t)
	id := "claude-core@claude-code-plugins"

	entry := globalEntry("1.0.0")
	entry.Status = StatusPartial
	require.NoError(t, m.Upsert(id, entry))

	require.NoError(t, m.SetStatus(id, entry, StatusInstalled))
	entries, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusInstalled, entries[0].Status)

	missing := Entry{Scope: "project", ProjectPath: "/nowhere"}
	assert.ErrorIs(t, m.SetStatus(id, missing, StatusInstalled), ErrNotInstalled)
}

func TestGetByScope(t *testing.T) {
	m := testManager(t)
	id := "claude-core@claude-code-plugins"

	require.NoError(t, m.Upsert(id, globalEntry("1.0.0")))
	project := globalEntry("1.0.0")
	project.Scope = "project"
	project.ProjectPath = "/work/repo"
	require.NoError(t, m.Upsert(id, project))

	entries, err := m.GetByScope(id, "global", "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "global", entries[0].Scope)

	entries, err = m.GetByScope(id, "project", "/work/repo")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = m.GetByScope(id, "project", "/other/repo")
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = m.GetByScope(id, "all", "")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRemoveByScope(t *testing.T) {
	m := testManager(t)
	id := "claude-core@claude-code-plugins"

	require.NoError(t, m.Upsert(id, globalEntry("1.0.0")))
	project := globalEntry("1.0.0")
	project.Scope = "project"
	project.ProjectPath = "/work/repo"
	require.NoError(t, m.Upsert(id, project))

	removed, err := m.RemoveByScope(id, "global", "")
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, []string{"/dest/agents/explorer.md"}, removed[0].AssetPaths())

	// The project record survives; removing it drops the plugin key
	removed, err = m.RemoveByScope(id, "project", "/work/repo")
	require.NoError(t, err)
	assert.Len(t, removed, 1)

	l, err := m.Load()
	require.NoError(t, err)
	_, ok := l.Plugins[id]
	assert.False(t, ok)
}

func TestRemoveByScopeUnknownPlugin(t *testing.T) {
	m := testManager(t)
	removed, err := m.RemoveByScope("ghost@mp", "all", "")
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestExists(t *testing.T) {
	m := testManager(t)
	ok, err := m.Exists("claude-core@claude-code-plugins")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Upsert("claude-core@claude-code-plugins", globalEntry("1.0.0")))
	ok, err = m.Exists("claude-core@claude-code-plugins")
	require.NoError(t, err)
	assert.True(t, ok)
}
