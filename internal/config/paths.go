package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// EnvClaudeConfigDir overrides the host configuration root (~/.claude).
// The host CLI honors the same variable, and tests rely on it.
const EnvClaudeConfigDir = "CLAUDE_CONFIG_DIR"

// DefaultMarketplace is the marketplace bare plugin names resolve against.
const DefaultMarketplace = "claude-code-plugins"

// StatusLineScript is the status-line script installed at the root of the
// host configuration directory.
const StatusLineScript = "statusline-command.sh"

// ClaudeDir returns the host configuration root, ~/.claude by default.
func ClaudeDir() string {
	if dir := os.Getenv(EnvClaudeConfigDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	return filepath.Join(home, ".claude")
}

// AgentsDir returns the destination root for agent definitions.
func AgentsDir() string {
	return filepath.Join(ClaudeDir(), "agents")
}

// SkillsDir returns the destination root for skill directories.
func SkillsDir() string {
	return filepath.Join(ClaudeDir(), "skills")
}

// RulesDir returns the destination root for rule documents.
func RulesDir() string {
	return filepath.Join(ClaudeDir(), "rules")
}

// HooksDir returns the destination root for hook scripts.
func HooksDir() string {
	return filepath.Join(ClaudeDir(), "hooks")
}

// ScriptsDir returns the destination root for auxiliary scripts.
func ScriptsDir() string {
	return filepath.Join(ClaudeDir(), "scripts")
}

// StatusLinePath returns the installed status-line script path.
func StatusLinePath() string {
	return filepath.Join(ClaudeDir(), StatusLineScript)
}

// SettingsPath returns the host settings.json path.
func SettingsPath() string {
	return filepath.Join(ClaudeDir(), "settings.json")
}

// PluginsDir returns the plugin state directory under the host root.
func PluginsDir() string {
	return filepath.Join(ClaudeDir(), "plugins")
}

// InstalledPath returns the installed-plugins ledger path.
func InstalledPath() string {
	return filepath.Join(PluginsDir(), "installed_plugins.json")
}

// MarketplacesDir returns the directory marketplace clones live under.
func MarketplacesDir() string {
	return filepath.Join(PluginsDir(), "marketplaces")
}

// MarketplacePath returns the install location for a named marketplace.
func MarketplacePath(name string) string {
	return filepath.Join(MarketplacesDir(), name)
}

// PlugfarmDir returns plugfarm's own configuration directory,
// $XDG_CONFIG_HOME/plugfarm.
func PlugfarmDir() string {
	return filepath.Join(xdg.ConfigHome, "plugfarm")
}

// ConfigPath returns plugfarm's own config.json path.
func ConfigPath() string {
	return filepath.Join(PlugfarmDir(), "config.json")
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
