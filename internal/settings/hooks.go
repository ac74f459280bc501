package settings

import (
	"encoding/json"
)

// HookCommand is a single command inside a hook registration.
type HookCommand struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// HookEntry is one registration under hooks[<event>].
type HookEntry struct {
	Matcher string        `json:"matcher,omitempty"`
	Hooks   []HookCommand `json:"hooks"`
}

// HookRegistration pairs an event name with an entry to register.
type HookRegistration struct {
	Event string
	Entry HookEntry
}

// hookCommandsOf extracts the command strings of a raw registration entry,
// tolerating unknown fields.
func hookCommandsOf(raw json.RawMessage) []string {
	var probe struct {
		Hooks []struct {
			Command string `json:"command"`
		} `json:"hooks"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil
	}
	commands := make([]string, 0, len(probe.Hooks))
	for _, h := range probe.Hooks {
		if h.Command != "" {
			commands = append(commands, h.Command)
		}
	}
	return commands
}

func (d *Document) hooksMap() (map[string][]json.RawMessage, error) {
	hooks := make(map[string][]json.RawMessage)
	if err := d.decode(keyHooks, &hooks); err != nil {
		return nil, err
	}
	return hooks, nil
}

func (d *Document) setHooksMap(hooks map[string][]json.RawMessage) error {
	if len(hooks) == 0 {
		delete(d.raw, keyHooks)
		return nil
	}
	return d.encode(keyHooks, hooks)
}

// HookCommands returns every command string registered under an event.
func (d *Document) HookCommands(event string) ([]string, error) {
	hooks, err := d.hooksMap()
	if err != nil {
		return nil, err
	}
	var commands []string
	for _, raw := range hooks[event] {
		commands = append(commands, hookCommandsOf(raw)...)
	}
	return commands, nil
}

// AddHook appends a registration under hooks[<event>] unless an existing
// entry already carries one of its command strings. Dedup is by exact
// command-string match, so re-running install is idempotent. Existing
// entries are never rewritten.
func (d *Document) AddHook(event string, entry HookEntry) (bool, error) {
	hooks, err := d.hooksMap()
	if err != nil {
		return false, err
	}

	existing := make(map[string]bool)
	for _, raw := range hooks[event] {
		for _, cmd := range hookCommandsOf(raw) {
			existing[cmd] = true
		}
	}
	for _, h := range entry.Hooks {
		if existing[h.Command] {
			return false, nil
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return false, err
	}
	hooks[event] = append(hooks[event], data)
	return true, d.setHooksMap(hooks)
}

// RemoveHooks drops every registration (across all events) containing a
// command matched by the predicate. Events left empty are removed.
func (d *Document) RemoveHooks(match func(command string) bool) (int, error) {
	hooks, err := d.hooksMap()
	if err != nil {
		return 0, err
	}

	removed := 0
	for event, entries := range hooks {
		kept := entries[:0]
		for _, raw := range entries {
			matched := false
			for _, cmd := range hookCommandsOf(raw) {
				if match(cmd) {
					matched = true
					break
				}
			}
			if matched {
				removed++
				continue
			}
			kept = append(kept, raw)
		}
		if len(kept) == 0 {
			delete(hooks, event)
		} else {
			hooks[event] = kept
		}
	}

	if removed == 0 {
		return 0, nil
	}
	return removed, d.setHooksMap(hooks)
}
