package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixturePlugin lays out a plugin with every asset group populated.
func fixturePlugin(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "agents", "explorer.md"), "# explorer")
	writeFile(t, filepath.Join(dir, "agents", "notes.txt"), "not an agent")
	writeFile(t, filepath.Join(dir, "skills", "review", "SKILL.md"), "# review")
	writeFile(t, filepath.Join(dir, "skills", "incomplete", "README.md"), "no manifest")
	writeFile(t, filepath.Join(dir, "rules", "style.md"), "# style")
	writeFile(t, filepath.Join(dir, "hooks", "check.sh"), "#!/bin/sh\n")
	writeFile(t, filepath.Join(dir, "hooks", "hooks.json"), `{"hooks":{}}`)
	writeFile(t, filepath.Join(dir, "scripts", "statusline-command.sh"), "#!/bin/sh\n")
	return dir
}

func TestResolve(t *testing.T) {
	dir := fixturePlugin(t)

	assets, err := Resolve(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "agents", "explorer.md")}, assets.Groups[Agents])
	assert.Equal(t, []string{filepath.Join(dir, "skills", "review")}, assets.Groups[Skills])
	assert.Equal(t, []string{filepath.Join(dir, "rules", "style.md")}, assets.Groups[Rules])
	assert.Equal(t, []string{filepath.Join(dir, "hooks", "check.sh")}, assets.Groups[Hooks])
	assert.Equal(t, []string{filepath.Join(dir, "scripts", "statusline-command.sh")}, assets.Groups[Scripts])

	// hooks.json is surfaced separately, not installed as a script
	assert.Equal(t, filepath.Join(dir, "hooks", "hooks.json"), assets.HooksManifest)
	assert.False(t, assets.IsEmpty())
}

func TestResolvePartialPlugin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "agents", "helper.md"), "# helper")

	assets, err := Resolve(dir)
	require.NoError(t, err)
	assert.Len(t, assets.Groups[Agents], 1)
	assert.Empty(t, assets.Groups[Skills])
	assert.Empty(t, assets.Groups[Hooks])
	assert.Empty(t, assets.HooksManifest)
	assert.False(t, assets.IsEmpty())
}

func TestResolveEmptyPlugin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "agents"), 0o755))

	assets, err := Resolve(dir)
	require.NoError(t, err)
	assert.True(t, assets.IsEmpty())
}

func TestResolveMissingDir(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestDestFor(t *testing.T) {
	claudeDir := t.TempDir()
	t.Setenv(config.EnvClaudeConfigDir, claudeDir)

	assert.Equal(t,
		filepath.Join(claudeDir, "agents", "explorer.md"),
		DestFor(Agents, "/src/agents/explorer.md"))
	assert.Equal(t,
		filepath.Join(claudeDir, "skills", "review"),
		DestFor(Skills, "/src/skills/review"))
	assert.Equal(t,
		filepath.Join(claudeDir, "hooks", "check.sh"),
		DestFor(Hooks, "/src/hooks/check.sh"))

	// The status-line script lands at the host root, not under scripts/
	assert.Equal(t,
		filepath.Join(claudeDir, "statusline-command.sh"),
		DestFor(Scripts, "/src/scripts/statusline-command.sh"))
	assert.Equal(t,
		filepath.Join(claudeDir, "scripts", "other.sh"),
		DestFor(Scripts, "/src/scripts/other.sh"))
}
