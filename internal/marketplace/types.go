package marketplace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Manifest represents the .claude-plugin/marketplace.json structure
type Manifest struct {
	Name     string        `json:"name"`
	Owner    Owner         `json:"owner"`
	Metadata *Metadata     `json:"metadata,omitempty"`
	Plugins  []PluginEntry `json:"plugins"`
}

// Owner represents the marketplace owner information
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Metadata contains optional metadata for the marketplace
type Metadata struct {
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	PluginRoot  string `json:"pluginRoot,omitempty"`
}

// PluginEntry represents a plugin entry in the marketplace
type PluginEntry struct {
	Name        string       `json:"name"`
	Source      PluginSource `json:"source"`
	Version     string       `json:"version,omitempty"`
	Description string       `json:"description,omitempty"`
	Author      *Owner       `json:"author,omitempty"`
	Homepage    string       `json:"homepage,omitempty"`
	License     string       `json:"license,omitempty"`
	Keywords    []string     `json:"keywords,omitempty"`
	Category    string       `json:"category,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

// PluginSource describes where a plugin's files come from. The manifest
// accepts either a bare string (relative path) or an object form:
//
//	"source": "./claude-core"
//	"source": {"source": "github", "repo": "org/repo"}
//	"source": {"source": "url", "url": "https://..."}
//	"source": {"source": "external", "marketplace": "other-market"}
type PluginSource struct {
	Type        string `json:"source,omitempty"`
	Path        string `json:"path,omitempty"`
	URL         string `json:"url,omitempty"`
	Repo        string `json:"repo,omitempty"`
	Marketplace string `json:"marketplace,omitempty"`
}

// UnmarshalJSON accepts both the string and object forms.
func (s *PluginSource) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		s.Type = "path"
		s.Path = path
		return nil
	}

	type sourceAlias PluginSource
	var obj sourceAlias
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid plugin source: %w", err)
	}
	*s = PluginSource(obj)
	return nil
}

// MarshalJSON writes the compact string form when only a path is set.
func (s PluginSource) MarshalJSON() ([]byte, error) {
	if s.Type == "path" && s.URL == "" && s.Repo == "" && s.Marketplace == "" {
		return json.Marshal(s.Path)
	}
	type sourceAlias PluginSource
	return json.Marshal(sourceAlias(s))
}

// GetSourceURL returns the remote URL for url/github sources, or "".
func (s PluginSource) GetSourceURL() string {
	switch s.Type {
	case "url":
		return s.URL
	case "github":
		if s.Repo == "" {
			return ""
		}
		return "https://github.com/" + strings.TrimSuffix(s.Repo, ".git") + ".git"
	}
	return ""
}

// IsRemote returns true if the plugin source must be cloned before install.
func (p *PluginEntry) IsRemote() bool {
	return p.Source.Type == "url" || p.Source.Type == "github"
}

// IsExternal returns true if the plugin is delegated to the host CLI's own
// marketplace mechanism rather than installed by plugfarm.
func (p *PluginEntry) IsExternal() bool {
	return p.Source.Type == "external"
}

// KnownMarketplace represents an entry in known_marketplaces.json
type KnownMarketplace struct {
	Source          Source `json:"source"`
	InstallLocation string `json:"installLocation"`
	LastUpdated     string `json:"lastUpdated"`
}

// Source describes where a marketplace came from
type Source struct {
	Source string `json:"source"` // "git", "directory"
	URL    string `json:"url,omitempty"`
	Path   string `json:"path,omitempty"`
}

// KnownMarketplaces is a map of marketplace name to KnownMarketplace
type KnownMarketplaces map[string]KnownMarketplace
