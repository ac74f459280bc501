package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/fsutil"
	"github.com/plugfarm/plugfarm/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func resolveFixture(t *testing.T) *layout.Assets {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "agents", "explorer.md"), "# explorer")
	writeFile(t, filepath.Join(dir, "skills", "review", "SKILL.md"), "# review")
	writeFile(t, filepath.Join(dir, "hooks", "check.sh"), "#!/bin/sh\n")
	writeFile(t, filepath.Join(dir, "scripts", "statusline-command.sh"), "#!/bin/sh\n")

	assets, err := layout.Resolve(dir)
	require.NoError(t, err)
	return assets
}

func TestInstallAssetsLinkMode(t *testing.T) {
	claudeDir := t.TempDir()
	t.Setenv(config.EnvClaudeConfigDir, claudeDir)
	assets := resolveFixture(t)

	installed, err := New(config.ModeLink).InstallAssets(assets)
	require.NoError(t, err)

	agentDst := filepath.Join(claudeDir, "agents", "explorer.md")
	assert.Equal(t, []string{agentDst}, installed[layout.Agents])
	assert.True(t, fsutil.IsSymlink(agentDst))

	target, err := os.Readlink(agentDst)
	require.NoError(t, err)
	assert.Equal(t, assets.Groups[layout.Agents][0], target)

	// Skill directories are linked whole
	skillDst := filepath.Join(claudeDir, "skills", "review")
	assert.True(t, fsutil.IsSymlink(skillDst))

	// The status-line script lands at the host root
	assert.Equal(t,
		[]string{filepath.Join(claudeDir, "statusline-command.sh")},
		installed[layout.Scripts])
}

func TestInstallAssetsCopyMode(t *testing.T) {
	claudeDir := t.TempDir()
	t.Setenv(config.EnvClaudeConfigDir, claudeDir)
	assets := resolveFixture(t)

	installed, err := New(config.ModeCopy).InstallAssets(assets)
	require.NoError(t, err)

	agentDst := installed[layout.Agents][0]
	assert.False(t, fsutil.IsSymlink(agentDst))
	data, err := os.ReadFile(agentDst)
	require.NoError(t, err)
	assert.Equal(t, "# explorer", string(data))

	skillDst := filepath.Join(claudeDir, "skills", "review")
	assert.False(t, fsutil.IsSymlink(skillDst))
	assert.FileExists(t, filepath.Join(skillDst, "SKILL.md"))
}

func TestInstallAssetsReinstallIsIdempotent(t *testing.T) {
	claudeDir := t.TempDir()
	t.Setenv(config.EnvClaudeConfigDir, claudeDir)
	assets := resolveFixture(t)

	in := New(config.ModeLink)
	_, err := in.InstallAssets(assets)
	require.NoError(t, err)
	_, err = in.InstallAssets(assets)
	require.NoError(t, err)

	// Copy over a previous link replaces it rather than writing through
	_, err = New(config.ModeCopy).InstallAssets(assets)
	require.NoError(t, err)
	assert.False(t, fsutil.IsSymlink(filepath.Join(claudeDir, "agents", "explorer.md")))
	assert.False(t, fsutil.IsSymlink(filepath.Join(claudeDir, "skills", "review")))
}

func TestRemovePathsToleratesMissing(t *testing.T) {
	claudeDir := t.TempDir()
	t.Setenv(config.EnvClaudeConfigDir, claudeDir)
	assets := resolveFixture(t)

	installed, err := New(config.ModeLink).InstallAssets(assets)
	require.NoError(t, err)

	var paths []string
	for _, group := range installed {
		paths = append(paths, group...)
	}
	paths = append(paths, filepath.Join(claudeDir, "agents", "never-existed.md"))

	errs := RemovePaths(paths)
	assert.Empty(t, errs)
	for _, path := range paths {
		assert.False(t, fsutil.LExists(path))
	}

	// Sources are untouched
	assert.FileExists(t, assets.Groups[layout.Agents][0])
}

func TestDrifted(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.md")
	other := filepath.Join(dir, "other.md")
	writeFile(t, src, "a")
	writeFile(t, other, "b")

	healthy := filepath.Join(dir, "healthy.md")
	require.NoError(t, os.Symlink(src, healthy))
	retargeted := filepath.Join(dir, "retargeted.md")
	require.NoError(t, os.Symlink(other, retargeted))
	missing := filepath.Join(dir, "missing.md")

	drifted := Drifted(map[string]string{
		healthy:    src,
		retargeted: src,
		missing:    src,
	})
	assert.ElementsMatch(t, []string{retargeted, missing}, drifted)
}

func TestDriftedIgnoresCopies(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.md")
	copied := filepath.Join(dir, "copied.md")
	writeFile(t, src, "a")
	writeFile(t, copied, "a")

	// A regular file is a copy-mode install; content is not compared
	assert.Empty(t, Drifted(map[string]string{copied: src}))
}
