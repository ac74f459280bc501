package search

import (
	"testing"

	"github.com/plugfarm/plugfarm/internal/marketplace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifests() map[string]*marketplace.Manifest {
	return map[string]*marketplace.Manifest{
		"claude-code-plugins": {
			Name: "claude-code-plugins",
			Plugins: []marketplace.PluginEntry{
				{Name: "claude-testing", Description: "Test generation and coverage", Tags: []string{"testing", "tdd"}},
				{Name: "claude-security", Description: "Security review", Category: "security"},
				{Name: "claude-docs", Description: "Documentation writing", Keywords: []string{"markdown"}},
			},
		},
		"extras": {
			Name: "extras",
			Plugins: []marketplace.PluginEntry{
				{Name: "test-runner", Description: "Runs test suites"},
			},
		},
	}
}

func TestFuzzyFindsAcrossMarketplaces(t *testing.T) {
	results := Fuzzy(testManifests(), "test")
	require.NotEmpty(t, results)

	names := make(map[string]string)
	for _, r := range results {
		names[r.Plugin.Name] = r.Marketplace
	}
	assert.Equal(t, "claude-code-plugins", names["claude-testing"])
	assert.Equal(t, "extras", names["test-runner"])
	assert.NotContains(t, names, "claude-security")
}

func TestFuzzyMatchesMetadataFields(t *testing.T) {
	results := Fuzzy(testManifests(), "markdown")
	require.Len(t, results, 1)
	assert.Equal(t, "claude-docs", results[0].Plugin.Name)
}

func TestFuzzyCaseInsensitive(t *testing.T) {
	results := Fuzzy(testManifests(), "SECURITY")
	require.NotEmpty(t, results)
	assert.Equal(t, "claude-security", results[0].Plugin.Name)
}

func TestFuzzySortedByScore(t *testing.T) {
	results := Fuzzy(testManifests(), "test")
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestFuzzyNoMatch(t *testing.T) {
	assert.Empty(t, Fuzzy(testManifests(), "zzzzqqqq"))
}

func TestFuzzyNilManifest(t *testing.T) {
	manifests := map[string]*marketplace.Manifest{"broken": nil}
	assert.Empty(t, Fuzzy(manifests, "test"))
}
