// Package ledger maintains installed_plugins.json, the manifest of which
// plugins are installed and where their files went.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/fsutil"
)

// ErrNotInstalled is returned when an operation targets a plugin the
// ledger has no record of.
var ErrNotInstalled = errors.New("plugin is not installed")

var (
	manager     *Manager
	managerOnce sync.Once
)

// Manager serializes access to the ledger file.
type Manager struct {
	mu   sync.RWMutex
	path string
}

// GetManager returns the singleton manager for the default ledger path.
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{path: config.InstalledPath()}
	})
	return manager
}

// NewManager returns a manager bound to an explicit path (used by tests).
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load loads the ledger, returning an empty one when the file is absent.
func (m *Manager) Load() (*Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLedger(), nil
		}
		return nil, err
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", m.path, err)
	}
	if l.Plugins == nil {
		l.Plugins = make(map[string][]Entry)
	}
	return &l, nil
}

// Save writes the ledger atomically.
func (m *Manager) Save(l *Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(m.path, data, 0o644)
}

// Upsert records an install. The merge is keyed by (scope, projectPath):
// reinstalling replaces the matching record instead of appending a
// duplicate, and a new record preserves the original installedAt.
func (m *Manager) Upsert(pluginID string, entry Entry) error {
	l, err := m.Load()
	if err != nil {
		return err
	}

	entries := l.Plugins[pluginID]
	for i, existing := range entries {
		if existing.SameInstallation(entry) {
			if existing.InstalledAt != "" {
				entry.InstalledAt = existing.InstalledAt
			}
			entries[i] = entry
			l.Plugins[pluginID] = entries
			return m.Save(l)
		}
	}

	l.Plugins[pluginID] = append(entries, entry)
	return m.Save(l)
}

// SetStatus flips the status of the record matching (scope, projectPath).
func (m *Manager) SetStatus(pluginID string, probe Entry, status Status) error {
	l, err := m.Load()
	if err != nil {
		return err
	}

	entries := l.Plugins[pluginID]
	for i, existing := range entries {
		if existing.SameInstallation(probe) {
			entries[i].Status = status
			l.Plugins[pluginID] = entries
			return m.Save(l)
		}
	}
	return ErrNotInstalled
}

// Get returns the records for a plugin (possibly empty).
func (m *Manager) Get(pluginID string) ([]Entry, error) {
	l, err := m.Load()
	if err != nil {
		return nil, err
	}
	return l.Plugins[pluginID], nil
}

// GetByScope filters a plugin's records. Scope is "global", "project"
// (matching projectPath), or "all".
func (m *Manager) GetByScope(pluginID, scope, projectPath string) ([]Entry, error) {
	entries, err := m.Get(pluginID)
	if err != nil {
		return nil, err
	}
	if scope == "all" {
		return entries, nil
	}

	var filtered []Entry
	for _, entry := range entries {
		switch scope {
		case "global":
			if entry.Scope == "global" {
				filtered = append(filtered, entry)
			}
		case "project":
			if entry.Scope == "project" && entry.ProjectPath == projectPath {
				filtered = append(filtered, entry)
			}
		}
	}
	return filtered, nil
}

// RemoveByScope deletes matching records and returns what was removed.
// The plugin key disappears once its last record is gone.
func (m *Manager) RemoveByScope(pluginID, scope, projectPath string) ([]Entry, error) {
	l, err := m.Load()
	if err != nil {
		return nil, err
	}

	entries := l.Plugins[pluginID]
	if len(entries) == 0 {
		return nil, nil
	}

	var removed, remaining []Entry
	for _, entry := range entries {
		match := false
		switch scope {
		case "all":
			match = true
		case "global":
			match = entry.Scope == "global"
		case "project":
			match = entry.Scope == "project" && entry.ProjectPath == projectPath
		}
		if match {
			removed = append(removed, entry)
		} else {
			remaining = append(remaining, entry)
		}
	}

	if len(remaining) == 0 {
		delete(l.Plugins, pluginID)
	} else {
		l.Plugins[pluginID] = remaining
	}

	if err := m.Save(l); err != nil {
		return nil, err
	}
	return removed, nil
}

// Remove deletes every record for a plugin.
func (m *Manager) Remove(pluginID string) error {
	l, err := m.Load()
	if err != nil {
		return err
	}
	delete(l.Plugins, pluginID)
	return m.Save(l)
}

// List returns the whole ledger.
func (m *Manager) List() (*Ledger, error) {
	return m.Load()
}

// Exists checks if a plugin has any record.
func (m *Manager) Exists(pluginID string) (bool, error) {
	entries, err := m.Get(pluginID)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}
