// Package hooks turns a plugin's hooks/hooks.json manifest into settings
// hook registrations pointing at the installed script locations.
package hooks

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/plugfarm/plugfarm/internal/settings"
)

// pluginRootVar is the placeholder hook manifests use for the plugin's own
// directory, e.g. "${CLAUDE_PLUGIN_ROOT}/hooks/check.sh".
var pluginRootVar = regexp.MustCompile(`\$\{?CLAUDE_PLUGIN_ROOT\}?`)

// wrapped is the { "hooks": { event: [...] } } manifest form.
type wrapped struct {
	Hooks map[string][]settings.HookEntry `json:"hooks"`
}

// Parse parses a hooks.json manifest. Both the wrapped form and the direct
// { event: [...] } form are accepted.
func Parse(data []byte) (map[string][]settings.HookEntry, error) {
	var w wrapped
	if err := json.Unmarshal(data, &w); err == nil && len(w.Hooks) > 0 {
		return w.Hooks, nil
	}

	var direct map[string][]settings.HookEntry
	if err := json.Unmarshal(data, &direct); err != nil {
		return nil, fmt.Errorf("failed to parse hooks.json: %w", err)
	}

	// The direct form must not swallow a malformed wrapped form
	delete(direct, "hooks")
	return direct, nil
}

// Registrations builds settings registrations from a parsed manifest,
// rewriting script references to their installed destinations. Entries
// whose commands reference no known script are kept verbatim (a hook may
// run an arbitrary command).
func Registrations(manifest map[string][]settings.HookEntry, installedScripts map[string]string) []settings.HookRegistration {
	var regs []settings.HookRegistration
	for event, entries := range manifest {
		for _, entry := range entries {
			rewritten := entry
			rewritten.Hooks = make([]settings.HookCommand, len(entry.Hooks))
			for i, h := range entry.Hooks {
				h.Command = rewriteCommand(h.Command, installedScripts)
				if h.Type == "" {
					h.Type = "command"
				}
				rewritten.Hooks[i] = h
			}
			regs = append(regs, settings.HookRegistration{Event: event, Entry: rewritten})
		}
	}
	return regs
}

// rewriteCommand maps a manifest command onto the installed hook scripts:
// ${CLAUDE_PLUGIN_ROOT}-style and plugin-relative paths are replaced by the
// destination path of the script they name.
func rewriteCommand(command string, installedScripts map[string]string) string {
	if command == "" || len(installedScripts) == 0 {
		return command
	}

	for base, dest := range installedScripts {
		patterns := []string{
			"${CLAUDE_PLUGIN_ROOT}/hooks/" + base,
			"$CLAUDE_PLUGIN_ROOT/hooks/" + base,
			"./hooks/" + base,
			"hooks/" + base,
		}
		for _, pattern := range patterns {
			if strings.Contains(command, pattern) {
				command = strings.ReplaceAll(command, pattern, dest)
			}
		}
	}

	// A leftover plugin-root var with no matching script still needs to
	// resolve somewhere sane; point it at the hooks directory's parent.
	if pluginRootVar.MatchString(command) {
		for _, dest := range installedScripts {
			command = pluginRootVar.ReplaceAllString(command, filepath.Dir(filepath.Dir(dest)))
			break
		}
	}

	return command
}

// OwnedBy returns a predicate matching commands that reference any of the
// given installed script paths, used to strip a plugin's registrations on
// uninstall.
func OwnedBy(scriptPaths []string) func(command string) bool {
	return func(command string) bool {
		for _, path := range scriptPaths {
			if path == "" {
				continue
			}
			if strings.Contains(command, path) {
				return true
			}
		}
		return false
	}
}

// Conflicts reports which of the prospective registrations collide with an
// entry already present for the same event but not managed by this install
// (same command string). Those are skipped with a warning rather than
// duplicated or clobbered.
func Conflicts(doc *settings.Document, regs []settings.HookRegistration) ([]string, error) {
	var conflicts []string
	for _, reg := range regs {
		existing, err := doc.HookCommands(reg.Event)
		if err != nil {
			return nil, err
		}
		for _, h := range reg.Entry.Hooks {
			for _, cmd := range existing {
				if cmd == h.Command {
					conflicts = append(conflicts, fmt.Sprintf("%s: %s", reg.Event, h.Command))
				}
			}
		}
	}
	return conflicts, nil
}
