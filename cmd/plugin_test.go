package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/fsutil"
	"github.com/plugfarm/plugfarm/internal/ledger"
	"github.com/plugfarm/plugfarm/internal/marketplace"
	"github.com/plugfarm/plugfarm/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// seedMarketplace lays out a directory marketplace with two plugins and
// registers it under the default name.
func seedMarketplace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, ".claude-plugin", "marketplace.json"), `{
		"name": "claude-code-plugins",
		"owner": {"name": "test"},
		"plugins": [
			{"name": "claude-core", "source": "./claude-core", "version": "1.0.0"},
			{"name": "claude-frontend", "source": "./claude-frontend", "version": "1.0.0"}
		]
	}`)

	core := filepath.Join(dir, "claude-core")
	writeFile(t, filepath.Join(core, "agents", "explorer.md"), "# explorer")
	writeFile(t, filepath.Join(core, "skills", "review", "SKILL.md"), "# review")
	writeFile(t, filepath.Join(core, "rules", "style.md"), "# style")
	writeFile(t, filepath.Join(core, "hooks", "check.sh"), "#!/bin/sh\n")
	writeFile(t, filepath.Join(core, "hooks", "hooks.json"), `{
		"hooks": {
			"PostToolUse": [
				{"matcher": "Edit|Write", "hooks": [{"type": "command", "command": "${CLAUDE_PLUGIN_ROOT}/hooks/check.sh"}]}
			]
		}
	}`)
	writeFile(t, filepath.Join(core, "scripts", "statusline-command.sh"), "#!/bin/sh\n")

	// A minimal plugin with a single asset group
	writeFile(t, filepath.Join(dir, "claude-frontend", "agents", "designer.md"), "# designer")

	writeFile(t, filepath.Join(dir, "templates", "settings.json"), `{
		"env": {"BASH_DEFAULT_TIMEOUT_MS": "300000"}
	}`)

	require.NoError(t, marketplace.GetRegistry().Add(
		"claude-code-plugins",
		marketplace.Source{Source: "directory", Path: dir},
		dir,
	))
	return dir
}

func loadSettings(t *testing.T) *settings.Document {
	t.Helper()
	doc, err := settings.LoadDocument(config.SettingsPath())
	require.NoError(t, err)
	return doc
}

func TestPluginLifecycle(t *testing.T) {
	claudeDir := t.TempDir()
	t.Setenv(config.EnvClaudeConfigDir, claudeDir)
	pluginQuietMode = true
	defer func() { pluginQuietMode = false }()

	// Untouched keys in a pre-existing settings.json must survive the run
	writeFile(t, config.SettingsPath(), `{"permissions":{"allow":["Read"]}}`)

	seedMarketplace(t)
	pluginID := "claude-core@claude-code-plugins"

	t.Run("install", func(t *testing.T) {
		require.NoError(t, installPlugin("claude-core", "global", config.ModeLink))

		assert.True(t, fsutil.IsSymlink(filepath.Join(claudeDir, "agents", "explorer.md")))
		assert.True(t, fsutil.IsSymlink(filepath.Join(claudeDir, "skills", "review")))
		assert.True(t, fsutil.IsSymlink(filepath.Join(claudeDir, "rules", "style.md")))
		assert.True(t, fsutil.IsSymlink(filepath.Join(claudeDir, "hooks", "check.sh")))
		assert.True(t, fsutil.IsSymlink(filepath.Join(claudeDir, "statusline-command.sh")))

		// hooks.json registers the hook but is not itself installed
		assert.False(t, fsutil.LExists(filepath.Join(claudeDir, "hooks", "hooks.json")))

		doc := loadSettings(t)
		plugins, err := doc.EnabledPlugins()
		require.NoError(t, err)
		assert.True(t, plugins[pluginID])

		commands, err := doc.HookCommands("PostToolUse")
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(claudeDir, "hooks", "check.sh")}, commands)

		slCmd, ok := doc.StatusLineCommand()
		require.True(t, ok)
		assert.Equal(t, filepath.Join(claudeDir, "statusline-command.sh"), slCmd)

		env, err := doc.Env()
		require.NoError(t, err)
		assert.Equal(t, "300000", env["BASH_DEFAULT_TIMEOUT_MS"])

		raw, ok := doc.Raw("permissions")
		require.True(t, ok)
		assert.JSONEq(t, `{"allow":["Read"]}`, string(raw))

		entries, err := ledger.GetManager().Get(pluginID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, ledger.StatusInstalled, entries[0].Status)
		assert.Equal(t, "1.0.0", entries[0].Version)
		assert.NotEmpty(t, entries[0].Assets["hooks"])
	})

	t.Run("reinstall converges", func(t *testing.T) {
		require.NoError(t, installPlugin("claude-core", "global", config.ModeLink))

		doc := loadSettings(t)
		commands, err := doc.HookCommands("PostToolUse")
		require.NoError(t, err)
		assert.Len(t, commands, 1)

		entries, err := ledger.GetManager().Get(pluginID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("unknown plugin", func(t *testing.T) {
		err := installPlugin("ghost", "global", config.ModeLink)
		assert.True(t, errors.Is(err, errUnknownPlugin))
	})

	t.Run("selective install leaves others alone", func(t *testing.T) {
		require.NoError(t, installPlugin("claude-frontend", "global", config.ModeLink))
		assert.True(t, fsutil.LExists(filepath.Join(claudeDir, "agents", "designer.md")))

		require.NoError(t, uninstallPlugin("claude-frontend", "global"))
		assert.False(t, fsutil.LExists(filepath.Join(claudeDir, "agents", "designer.md")))

		// claude-core remains fully installed
		assert.True(t, fsutil.LExists(filepath.Join(claudeDir, "agents", "explorer.md")))
		doc := loadSettings(t)
		plugins, err := doc.EnabledPlugins()
		require.NoError(t, err)
		assert.True(t, plugins[pluginID])
		_, ok := doc.StatusLineCommand()
		assert.True(t, ok)
	})

	t.Run("uninstall", func(t *testing.T) {
		require.NoError(t, uninstallPlugin("claude-core", "global"))

		assert.False(t, fsutil.LExists(filepath.Join(claudeDir, "agents", "explorer.md")))
		assert.False(t, fsutil.LExists(filepath.Join(claudeDir, "skills", "review")))
		assert.False(t, fsutil.LExists(filepath.Join(claudeDir, "hooks", "check.sh")))
		assert.False(t, fsutil.LExists(filepath.Join(claudeDir, "statusline-command.sh")))

		doc := loadSettings(t)
		plugins, err := doc.EnabledPlugins()
		require.NoError(t, err)
		assert.Empty(t, plugins)

		commands, err := doc.HookCommands("PostToolUse")
		require.NoError(t, err)
		assert.Empty(t, commands)

		_, ok := doc.StatusLineCommand()
		assert.False(t, ok)

		raw, ok := doc.Raw("permissions")
		require.True(t, ok)
		assert.JSONEq(t, `{"allow":["Read"]}`, string(raw))

		entries, err := ledger.GetManager().Get(pluginID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("uninstall absent plugin", func(t *testing.T) {
		err := uninstallPlugin("claude-core", "global")
		assert.ErrorIs(t, err, ledger.ErrNotInstalled)
	})
}

func TestParsePluginID(t *testing.T) {
	name, mp, err := parsePluginID("claude-core@my-market")
	require.NoError(t, err)
	assert.Equal(t, "claude-core", name)
	assert.Equal(t, "my-market", mp)

	// Bare names resolve against the configured default
	name, mp, err = parsePluginID("claude-core")
	require.NoError(t, err)
	assert.Equal(t, "claude-core", name)
	assert.Equal(t, config.GetDefaultMarketplace(), mp)

	_, _, err = parsePluginID("@market")
	assert.Error(t, err)
	_, _, err = parsePluginID("plugin@")
	assert.Error(t, err)
	_, _, err = parsePluginID("a@b@c")
	assert.Error(t, err)
}

func TestMergeTargets(t *testing.T) {
	merged := mergeTargets(
		[]string{"claude-core@claude-code-plugins", "extra@other"},
		[]string{"claude-core", "claude-docs"},
	)
	assert.Equal(t, []string{"claude-core@claude-code-plugins", "extra@other", "claude-docs"}, merged)
}
