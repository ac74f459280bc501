package cmd

import (
	"fmt"
	"strings"

	"github.com/plugfarm/plugfarm/internal/i18n"
	"github.com/plugfarm/plugfarm/internal/marketplace"
	"github.com/plugfarm/plugfarm/internal/search"
	"github.com/plugfarm/plugfarm/internal/tui"
	"github.com/spf13/cobra"
)

func runPluginSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runInteractiveSearch()
	}
	manifests, err := loadAllManifests()
	if err != nil {
		return err
	}
	if manifests == nil {
		return nil
	}
	return runTextSearch(manifests, args[0])
}

// loadAllManifests loads every registered marketplace's manifest. A nil map
// with nil error means there are no marketplaces at all.
func loadAllManifests() (map[string]*marketplace.Manifest, error) {
	registry := marketplace.GetRegistry()
	knownMarketplaces, err := registry.List()
	if err != nil {
		return nil, err
	}

	if len(knownMarketplaces) == 0 {
		fmt.Println(i18n.T("NoMarketplaces", nil))
		return nil, nil
	}

	manifests := make(map[string]*marketplace.Manifest)
	for name, mp := range knownMarketplaces {
		manifest, err := marketplace.LoadManifest(mp.InstallLocation)
		if err != nil {
			continue
		}
		manifests[name] = manifest
	}
	return manifests, nil
}

// runInteractiveSearch runs the TUI fuzzy finder with install/uninstall support
func runInteractiveSearch() error {
	manifests, err := loadAllManifests()
	if err != nil {
		return err
	}
	if manifests == nil {
		return nil
	}

	result, err := tui.RunPluginFinder(manifests)
	if err != nil {
		return err
	}

	if result.Cancelled {
		fmt.Println(i18n.T("SearchCancelled", nil))
		return nil
	}

	if len(result.ToInstall) == 0 && len(result.ToUninstall) == 0 {
		fmt.Println(i18n.T("NoChanges", nil))
		return nil
	}

	mode := installMode()

	if len(result.ToInstall) > 0 {
		fmt.Println()
		fmt.Println(i18n.T("InstallingPlugins", map[string]any{"Count": len(result.ToInstall)}, len(result.ToInstall)))
		for _, item := range result.ToInstall {
			pluginID := item.PluginID()
			if err := installPlugin(pluginID, "global", mode); err != nil {
				fmt.Printf("  %s: %v\n", i18n.T("InstallFailed", map[string]any{"Plugin": pluginID}), err)
			}
		}
	}

	if len(result.ToUninstall) > 0 {
		fmt.Println()
		fmt.Println(i18n.T("UninstallingPlugins", map[string]any{"Count": len(result.ToUninstall)}, len(result.ToUninstall)))
		for _, item := range result.ToUninstall {
			pluginID := item.PluginID()
			if err := uninstallPlugin(pluginID, "global"); err != nil {
				fmt.Printf("  %s: %v\n", i18n.T("UninstallFailed", map[string]any{"Plugin": pluginID}), err)
			}
		}
	}

	fmt.Println()
	return nil
}

// runTextSearch performs the text-based fuzzy search
func runTextSearch(manifests map[string]*marketplace.Manifest, keyword string) error {
	results := search.Fuzzy(manifests, keyword)

	if len(results) == 0 {
		fmt.Println(i18n.T("NoResults", map[string]any{"Keyword": keyword}))
		return nil
	}

	fmt.Println(i18n.T("SearchResults", map[string]any{"Count": len(results)}, len(results)))
	fmt.Println()

	for _, r := range results {
		version := r.Plugin.Version
		if version == "" {
			version = "latest"
		}

		fmt.Printf("  %s@%s (v%s)\n", r.Plugin.Name, r.Marketplace, version)

		if r.Plugin.Description != "" {
			fmt.Printf("    %s\n", r.Plugin.Description)
		}

		if len(r.Plugin.Tags) > 0 {
			fmt.Printf("    Tags: %s\n", strings.Join(r.Plugin.Tags, ", "))
		}

		if r.Plugin.Category != "" {
			fmt.Printf("    Category: %s\n", r.Plugin.Category)
		}

		fmt.Println()
	}

	return nil
}
