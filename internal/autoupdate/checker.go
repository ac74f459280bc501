package autoupdate

import (
	"github.com/plugfarm/plugfarm/internal/git"
	"github.com/plugfarm/plugfarm/internal/ledger"
	"github.com/plugfarm/plugfarm/internal/logging"
	"github.com/plugfarm/plugfarm/internal/marketplace"
)

// Checker handles update checking logic
type Checker struct {
	gitClient git.Client
}

// NewChecker creates a new update checker
func NewChecker() *Checker {
	return &Checker{
		gitClient: git.NewClient(),
	}
}

// CheckAll checks for updates in all marketplaces and installed plugins
func CheckAll() (*CheckResult, error) {
	checker := NewChecker()
	return checker.CheckAll()
}

// CheckAll checks for updates in all marketplaces and installed plugins.
// A plugin is considered outdated when its marketplace has pending
// changes; plugin versions are pinned to the marketplace checkout.
func (c *Checker) CheckAll() (*CheckResult, error) {
	result := &CheckResult{
		Marketplaces: []UpdateInfo{},
		Plugins:      []UpdateInfo{},
		Errors:       []error{},
	}

	mpUpdates, mpErrors := c.CheckMarketplaces()
	result.Marketplaces = mpUpdates
	result.Errors = append(result.Errors, mpErrors...)

	updatedMarketplaces := make(map[string]bool)
	for _, mp := range mpUpdates {
		if mp.HasUpdate {
			updatedMarketplaces[mp.Name] = true
		}
	}

	pluginUpdates, pluginErrors := c.CheckPlugins(updatedMarketplaces)
	result.Plugins = pluginUpdates
	result.Errors = append(result.Errors, pluginErrors...)

	result.HasAnyUpdate = result.TotalUpdates() > 0

	return result, nil
}

// CheckMarketplaces checks for updates in all registered git marketplaces.
// Local-directory marketplaces have nothing to fetch and are skipped.
func (c *Checker) CheckMarketplaces() ([]UpdateInfo, []error) {
	var updates []UpdateInfo
	var errors []error
	log := logging.Get("autoupdate")

	registry := marketplace.GetRegistry()
	marketplaces, err := registry.List()
	if err != nil {
		errors = append(errors, err)
		return updates, errors
	}

	for name, mp := range marketplaces {
		if mp.Source.Source != "git" {
			continue
		}

		info := UpdateInfo{
			Type: UpdateTypeMarketplace,
			Name: name,
			Path: mp.InstallLocation,
		}

		currentCommit, err := c.gitClient.GetCurrentCommit(mp.InstallLocation)
		if err != nil {
			log.Warn().Err(err).Str("marketplace", name).Msg("cannot read current commit")
			errors = append(errors, err)
			continue
		}
		info.CurrentVer = shortCommit(currentCommit)

		hasUpdate, err := c.gitClient.HasUpdates(mp.InstallLocation)
		if err != nil {
			errors = append(errors, err)
			continue
		}

		if hasUpdate {
			remoteCommit, err := c.gitClient.GetRemoteCommit(mp.InstallLocation, "")
			if err == nil {
				info.RemoteVer = shortCommit(remoteCommit)
			}
			info.HasUpdate = true
		}

		updates = append(updates, info)
	}

	return updates, errors
}

// CheckPlugins flags installed plugins whose marketplace has updates.
func (c *Checker) CheckPlugins(updatedMarketplaces map[string]bool) ([]UpdateInfo, []error) {
	var updates []UpdateInfo
	var errors []error

	installed, err := ledger.GetManager().List()
	if err != nil {
		errors = append(errors, err)
		return updates, errors
	}

	for pluginID, entries := range installed.Plugins {
		for _, entry := range entries {
			if !updatedMarketplaces[entry.Source.Marketplace] {
				continue
			}
			updates = append(updates, UpdateInfo{
				Type:       UpdateTypePlugin,
				Name:       pluginID,
				CurrentVer: entry.Version,
				RemoteVer:  "(marketplace updated)",
				HasUpdate:  true,
				Path:       entry.Source.Path,
			})
		}
	}

	return updates, errors
}

// shortCommit returns first 7 characters of a commit hash
func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
