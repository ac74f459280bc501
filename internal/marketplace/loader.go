package marketplace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ManifestDir holds the manifest inside a marketplace checkout.
	ManifestDir = ".claude-plugin"
	ManifestFile = "marketplace.json"
)

// LoadManifest reads and parses <dir>/.claude-plugin/marketplace.json.
func LoadManifest(marketplacePath string) (*Manifest, error) {
	manifestPath := filepath.Join(marketplacePath, ManifestDir, ManifestFile)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest not found: %s", manifestPath)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &manifest, nil
}

// FindPlugin returns the named plugin entry, or nil.
func (m *Manifest) FindPlugin(name string) *PluginEntry {
	for i := range m.Plugins {
		if m.Plugins[i].Name == name {
			return &m.Plugins[i]
		}
	}
	return nil
}

// PluginSourcePath returns the local path a plugin's files live at.
// Remote sources return "" and must be cloned first. An empty path source
// defaults to a directory named after the plugin.
func (m *Manifest) PluginSourcePath(marketplacePath string, plugin *PluginEntry) string {
	if plugin.IsRemote() || plugin.IsExternal() {
		return ""
	}

	basePath := marketplacePath
	if m.Metadata != nil && m.Metadata.PluginRoot != "" {
		basePath = filepath.Join(marketplacePath, m.Metadata.PluginRoot)
	}

	rel := plugin.Source.Path
	if rel == "" {
		rel = plugin.Name
	}
	return filepath.Join(basePath, rel)
}
