// Package search finds plugins across marketplace manifests.
package search

import (
	"sort"
	"strings"

	"github.com/plugfarm/plugfarm/internal/marketplace"
	"github.com/sahilm/fuzzy"
)

// Result is one matched plugin, with the marketplace it came from.
type Result struct {
	Plugin      marketplace.PluginEntry
	Marketplace string
	Score       int // higher is better
}

// pluginSearchable adapts a manifest's plugins for fuzzy.FindFrom. The
// haystack per plugin is its name, description, tags, keywords, and
// category, lowercased.
type pluginSearchable struct {
	Plugins []marketplace.PluginEntry
}

func (p pluginSearchable) String(i int) string {
	plugin := p.Plugins[i]
	parts := []string{plugin.Name}

	if plugin.Description != "" {
		parts = append(parts, plugin.Description)
	}

	parts = append(parts, plugin.Tags...)
	parts = append(parts, plugin.Keywords...)

	if plugin.Category != "" {
		parts = append(parts, plugin.Category)
	}

	return strings.ToLower(strings.Join(parts, " "))
}

func (p pluginSearchable) Len() int {
	return len(p.Plugins)
}

// Fuzzy searches every manifest and returns matches sorted by score.
func Fuzzy(manifests map[string]*marketplace.Manifest, query string) []Result {
	var results []Result
	query = strings.ToLower(query)

	for mpName, manifest := range manifests {
		if manifest == nil || len(manifest.Plugins) == 0 {
			continue
		}

		searchable := pluginSearchable{Plugins: manifest.Plugins}
		matches := fuzzy.FindFrom(query, searchable)

		for _, match := range matches {
			results = append(results, Result{
				Plugin:      manifest.Plugins[match.Index],
				Marketplace: mpName,
				Score:       match.Score,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}
