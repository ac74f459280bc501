package marketplace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/fsutil"
)

var (
	registry     *Registry
	registryOnce sync.Once
)

// Registry manages known marketplaces, persisted in the host's
// plugins/known_marketplaces.json next to the marketplace clones.
type Registry struct {
	mu sync.RWMutex
}

// GetRegistry returns the singleton registry instance
func GetRegistry() *Registry {
	registryOnce.Do(func() {
		registry = &Registry{}
	})
	return registry
}

func registryPath() string {
	return filepath.Join(config.PluginsDir(), "known_marketplaces.json")
}

func (r *Registry) load() (KnownMarketplaces, error) {
	data, err := os.ReadFile(registryPath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(KnownMarketplaces), nil
		}
		return nil, err
	}

	var marketplaces KnownMarketplaces
	if err := json.Unmarshal(data, &marketplaces); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", registryPath(), err)
	}
	if marketplaces == nil {
		marketplaces = make(KnownMarketplaces)
	}
	return marketplaces, nil
}

func (r *Registry) save(marketplaces KnownMarketplaces) error {
	data, err := json.MarshalIndent(marketplaces, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(registryPath(), data, 0o644)
}

// List returns all known marketplaces. A marketplace whose install location
// vanished from disk is still listed; install/search surface the error when
// its manifest is needed.
func (r *Registry) List() (KnownMarketplaces, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load()
}

// Get returns a single marketplace by name, or nil when unknown.
func (r *Registry) Get(name string) (*KnownMarketplace, error) {
	marketplaces, err := r.List()
	if err != nil {
		return nil, err
	}

	mp, ok := marketplaces[name]
	if !ok {
		return nil, nil
	}
	return &mp, nil
}

// Add registers a marketplace.
func (r *Registry) Add(name string, source Source, installLocation string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	marketplaces, err := r.load()
	if err != nil {
		return err
	}

	marketplaces[name] = KnownMarketplace{
		Source:          source,
		InstallLocation: installLocation,
		LastUpdated:     time.Now().Format(time.RFC3339),
	}

	return r.save(marketplaces)
}

// Remove unregisters a marketplace.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	marketplaces, err := r.load()
	if err != nil {
		return err
	}

	delete(marketplaces, name)
	return r.save(marketplaces)
}

// UpdateTimestamp updates the last updated timestamp for a marketplace
func (r *Registry) UpdateTimestamp(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	marketplaces, err := r.load()
	if err != nil {
		return err
	}

	if mp, ok := marketplaces[name]; ok {
		mp.LastUpdated = time.Now().Format(time.RFC3339)
		marketplaces[name] = mp
		return r.save(marketplaces)
	}
	return nil
}

// Exists checks if a marketplace exists
func (r *Registry) Exists(name string) (bool, error) {
	mp, err := r.Get(name)
	if err != nil {
		return false, err
	}
	return mp != nil, nil
}
