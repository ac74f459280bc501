// Package autoupdate checks registered marketplaces for upstream changes
// and reinstalls the plugins pinned to them.
package autoupdate

// UpdateType distinguishes what an UpdateInfo describes.
type UpdateType string

const (
	UpdateTypeMarketplace UpdateType = "marketplace"
	UpdateTypePlugin      UpdateType = "plugin"
)

// UpdateInfo is one updatable item found by a check.
type UpdateInfo struct {
	Type       UpdateType
	Name       string // marketplace name or plugin ID
	CurrentVer string
	RemoteVer  string
	HasUpdate  bool
	Path       string // checkout path (marketplace) or plugin source path
}

// CheckResult aggregates a full update check. Errors holds per-item
// failures that did not abort the check.
type CheckResult struct {
	Marketplaces []UpdateInfo
	Plugins      []UpdateInfo
	HasAnyUpdate bool
	Errors       []error
}

// TotalUpdates counts the items with a pending update.
func (r *CheckResult) TotalUpdates() int {
	count := 0
	for _, m := range r.Marketplaces {
		if m.HasUpdate {
			count++
		}
	}
	for _, p := range r.Plugins {
		if p.HasUpdate {
			count++
		}
	}
	return count
}
