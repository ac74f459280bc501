package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyInstallPlan(t *testing.T) {
	doc := NewDocument()
	plan := Plan{
		EnablePlugins: []string{"claude-core@claude-code-plugins"},
		Hooks: []HookRegistration{
			{Event: "PostToolUse", Entry: hookEntry("/dest/hooks/check.sh")},
		},
		StatusLine:  &StatusLine{Type: "command", Command: "/dest/scripts/statusline-command.sh"},
		TemplateEnv: map[string]string{"BASH_DEFAULT_TIMEOUT_MS": "300000"},
	}

	changed, err := Apply(doc, plan)
	require.NoError(t, err)
	assert.True(t, changed)

	// A second apply of the same plan converges to no-op
	changed, err = Apply(doc, plan)
	require.NoError(t, err)
	assert.False(t, changed)

	plugins, err := doc.EnabledPlugins()
	require.NoError(t, err)
	assert.True(t, plugins["claude-core@claude-code-plugins"])

	commands, err := doc.HookCommands("PostToolUse")
	require.NoError(t, err)
	assert.Len(t, commands, 1)

	cmd, ok := doc.StatusLineCommand()
	require.True(t, ok)
	assert.Equal(t, "/dest/scripts/statusline-command.sh", cmd)
}

func TestApplyUninstallPlan(t *testing.T) {
	doc := NewDocument()
	install := Plan{
		EnablePlugins: []string{"a@m"},
		Hooks:         []HookRegistration{{Event: "Stop", Entry: hookEntry("/dest/hooks/notify.sh")}},
		StatusLine:    &StatusLine{Type: "command", Command: "/dest/scripts/statusline-command.sh"},
	}
	_, err := Apply(doc, install)
	require.NoError(t, err)

	uninstall := Plan{
		DisablePlugins:         []string{"a@m"},
		RemoveHookCommand:      func(cmd string) bool { return cmd == "/dest/hooks/notify.sh" },
		ClearStatusLineCommand: "/dest/scripts/statusline-command.sh",
	}
	changed, err := Apply(doc, uninstall)
	require.NoError(t, err)
	assert.True(t, changed)

	plugins, err := doc.EnabledPlugins()
	require.NoError(t, err)
	assert.Empty(t, plugins)
	_, ok := doc.StatusLineCommand()
	assert.False(t, ok)

	// Uninstalling again changes nothing
	changed, err = Apply(doc, uninstall)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReconcileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"permissions":{"allow":["Read"]}}`), 0o644))

	plan := Plan{EnablePlugins: []string{"claude-core@claude-code-plugins"}}
	require.NoError(t, Reconcile(path, plan))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	plugins, err := doc.EnabledPlugins()
	require.NoError(t, err)
	assert.True(t, plugins["claude-core@claude-code-plugins"])

	raw, ok := doc.Raw("permissions")
	require.True(t, ok)
	assert.JSONEq(t, `{"allow":["Read"]}`, string(raw))

	// A converged plan leaves the file untouched
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, Reconcile(path, plan))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReconcileRefusesMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	err := Reconcile(path, Plan{EnablePlugins: []string{"a@m"}})
	assert.ErrorIs(t, err, ErrInvalidDocument)

	// The broken file must not be clobbered
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))
}

func TestReconcileCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, Reconcile(path, Plan{EnablePlugins: []string{"a@m"}}))
	assert.FileExists(t, path)
}
