// Package layout resolves a plugin directory into its asset groups.
//
// A plugin owns up to five groups: agents/*.md, skills/<name>/ (directories
// carrying a SKILL.md), rules/*.md, hooks/*.sh plus an optional
// hooks/hooks.json registration manifest, and scripts/*. A missing group
// directory yields an empty group, never an error.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plugfarm/plugfarm/internal/config"
)

// Category identifies one asset group within a plugin.
type Category string

const (
	Agents  Category = "agents"
	Skills  Category = "skills"
	Rules   Category = "rules"
	Hooks   Category = "hooks"
	Scripts Category = "scripts"
)

// Categories lists all asset groups in install order.
var Categories = []Category{Agents, Skills, Rules, Hooks, Scripts}

// HooksManifestFile is the optional hook registration manifest inside hooks/.
const HooksManifestFile = "hooks.json"

// SkillManifestFile marks a directory under skills/ as an installable skill.
const SkillManifestFile = "SKILL.md"

// Assets holds the resolved absolute source paths of one plugin.
type Assets struct {
	PluginDir string
	Groups    map[Category][]string

	// HooksManifest is the path of hooks/hooks.json, or "" when absent.
	HooksManifest string
}

// Resolve enumerates the asset groups of the plugin rooted at pluginDir.
func Resolve(pluginDir string) (*Assets, error) {
	if _, err := os.Stat(pluginDir); err != nil {
		return nil, fmt.Errorf("plugin directory not found: %s", pluginDir)
	}

	assets := &Assets{
		PluginDir: pluginDir,
		Groups:    make(map[Category][]string),
	}

	for _, category := range Categories {
		dir := filepath.Join(pluginDir, string(category))
		entries, err := os.ReadDir(dir)
		if err != nil {
			// Absent group directories are normal
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			switch category {
			case Agents, Rules:
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
					continue
				}
			case Skills:
				if !entry.IsDir() {
					continue
				}
				if _, err := os.Stat(filepath.Join(path, SkillManifestFile)); err != nil {
					continue
				}
			case Hooks:
				if entry.IsDir() {
					continue
				}
				if entry.Name() == HooksManifestFile {
					assets.HooksManifest = path
					continue
				}
				if !strings.HasSuffix(entry.Name(), ".sh") {
					continue
				}
			case Scripts:
				if entry.IsDir() {
					continue
				}
			}
			assets.Groups[category] = append(assets.Groups[category], path)
		}
	}

	return assets, nil
}

// IsEmpty reports whether the plugin resolved to no installable assets.
func (a *Assets) IsEmpty() bool {
	if a.HooksManifest != "" {
		return false
	}
	for _, paths := range a.Groups {
		if len(paths) > 0 {
			return false
		}
	}
	return true
}

// DestFor maps a source asset to its destination under the host
// configuration tree: the category root plus the asset's base name. The
// status-line script is special-cased to the root of the host directory.
func DestFor(category Category, src string) string {
	base := filepath.Base(src)
	if category == Scripts && base == config.StatusLineScript {
		return config.StatusLinePath()
	}
	return filepath.Join(categoryRoot(category), base)
}

func categoryRoot(category Category) string {
	switch category {
	case Agents:
		return config.AgentsDir()
	case Skills:
		return config.SkillsDir()
	case Rules:
		return config.RulesDir()
	case Hooks:
		return config.HooksDir()
	case Scripts:
		return config.ScriptsDir()
	}
	return config.ClaudeDir()
}
