package autoupdate

import (
	"testing"

	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/ledger"
	"github.com/plugfarm/plugfarm/internal/marketplace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGit is a canned git.Client for checker tests.
type fakeGit struct {
	current string
	remote  string
	behind  bool
}

func (f *fakeGit) Clone(url, destPath string) error { return nil }
func (f *fakeGit) Pull(repoPath string) error       { return nil }
func (f *fakeGit) Fetch(repoPath string) error      { return nil }
func (f *fakeGit) GetCurrentCommit(repoPath string) (string, error) {
	return f.current, nil
}
func (f *fakeGit) GetRemoteCommit(repoPath, branch string) (string, error) {
	return f.remote, nil
}
func (f *fakeGit) HasUpdates(repoPath string) (bool, error) { return f.behind, nil }
func (f *fakeGit) IsGitRepository(path string) bool         { return true }

func TestCheckAll(t *testing.T) {
	t.Setenv(config.EnvClaudeConfigDir, t.TempDir())

	registry := marketplace.GetRegistry()
	require.NoError(t, registry.Add("git-market",
		marketplace.Source{Source: "git", URL: "https://example.com/mp.git"}, "/clones/git-market"))
	require.NoError(t, registry.Add("local-market",
		marketplace.Source{Source: "directory", Path: "/local"}, "/local"))

	mgr := ledger.GetManager()
	require.NoError(t, mgr.Upsert("claude-core@git-market", ledger.Entry{
		Scope:   "global",
		Version: "1.0.0",
		Status:  ledger.StatusInstalled,
		Source:  ledger.Source{Marketplace: "git-market"},
	}))
	require.NoError(t, mgr.Upsert("claude-docs@local-market", ledger.Entry{
		Scope:   "global",
		Version: "1.0.0",
		Status:  ledger.StatusInstalled,
		Source:  ledger.Source{Marketplace: "local-market"},
	}))

	checker := &Checker{gitClient: &fakeGit{
		current: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		remote:  "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		behind:  true,
	}}

	result, err := checker.CheckAll()
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.True(t, result.HasAnyUpdate)

	// Only the git marketplace is checked; directory sources have no remote
	require.Len(t, result.Marketplaces, 1)
	mp := result.Marketplaces[0]
	assert.Equal(t, "git-market", mp.Name)
	assert.True(t, mp.HasUpdate)
	assert.Equal(t, "aaaaaaa", mp.CurrentVer)
	assert.Equal(t, "bbbbbbb", mp.RemoteVer)

	// Only the plugin pinned to the updated marketplace is flagged
	require.Len(t, result.Plugins, 1)
	assert.Equal(t, "claude-core@git-market", result.Plugins[0].Name)
	assert.Equal(t, 2, result.TotalUpdates())
}

func TestCheckMarketplacesUpToDate(t *testing.T) {
	t.Setenv(config.EnvClaudeConfigDir, t.TempDir())
	checker := &Checker{gitClient: &fakeGit{current: "aaaaaaaaaaaa", behind: false}}
	updates, errs := checker.CheckMarketplaces()
	assert.Empty(t, errs)
	for _, u := range updates {
		assert.False(t, u.HasUpdate)
	}
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "abcdefg", shortCommit("abcdefghij"))
	assert.Equal(t, "abc", shortCommit("abc"))
}
