package cmd

import (
	"fmt"
	"os"

	"github.com/plugfarm/plugfarm/internal/autoupdate"
	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/git"
	"github.com/plugfarm/plugfarm/internal/i18n"
	"github.com/plugfarm/plugfarm/internal/installer"
	"github.com/plugfarm/plugfarm/internal/ledger"
	"github.com/plugfarm/plugfarm/internal/marketplace"
	"github.com/spf13/cobra"
)

func runPluginUpdate(cmd *cobra.Command, args []string) error {
	if cmd != nil {
		cmd.SilenceUsage = true
	}

	if len(args) > 0 {
		return updateSinglePlugin(args[0])
	}

	if pluginUpdateForce {
		return forceReinstallAll()
	}

	result, err := autoupdate.CheckAll()
	if err != nil {
		return err
	}

	for _, checkErr := range result.Errors {
		fmt.Printf("  Warning: %v\n", checkErr)
	}

	autoupdate.ShowUpdateSummary(result)
	if !result.HasAnyUpdate {
		return nil
	}

	switch config.Get().AutoUpdate {
	case config.AutoUpdateAuto:
		// apply without asking
	case config.AutoUpdateDisabled:
		fmt.Println(i18n.T("UpdateDisabled", nil))
		return nil
	default:
		if !autoupdate.PromptUpdate(result) {
			return nil
		}
	}

	updater := autoupdate.NewUpdater(reinstallPluginByID)
	return updater.ApplyUpdates(result)
}

// updateSinglePlugin pulls the plugin's marketplace and reinstalls the
// plugin when its version moved (always with --force).
func updateSinglePlugin(identifier string) error {
	pluginName, marketplaceName, err := parsePluginID(identifier)
	if err != nil {
		return err
	}
	pluginID := fmt.Sprintf("%s@%s", pluginName, marketplaceName)

	entries, err := ledger.GetManager().Get(pluginID)
	if err != nil || len(entries) == 0 {
		return fmt.Errorf("%s", i18n.T("NotInstalled", map[string]any{"Plugin": pluginID}))
	}

	gitClient := git.NewClient()
	registry := marketplace.GetRegistry()
	if err := updateMarketplace(gitClient, registry, marketplaceName); err != nil {
		return err
	}

	for _, entry := range entries {
		needsUpdate, newVersion, err := pluginNeedsUpdate(pluginName, marketplaceName, entry)
		if err != nil {
			return err
		}

		if !needsUpdate && !pluginUpdateForce {
			fmt.Printf("%s is already up to date (v%s)\n", pluginID, entry.Version)
			continue
		}

		if pluginUpdateForce {
			fmt.Printf("  • %s (force reinstall)\n", pluginID)
		} else {
			fmt.Printf("  • %s: %s → %s\n", pluginID, entry.Version, newVersion)
		}

		spinner := autoupdate.NewSpinner(pluginID)
		spinner.Start()
		err = reinstallEntry(pluginID, entry)
		spinner.Stop(err == nil)
		if err != nil {
			return err
		}
	}

	return nil
}

// forceReinstallAll reinstalls every recorded plugin after refreshing the
// marketplaces.
func forceReinstallAll() error {
	installed, err := ledger.GetManager().List()
	if err != nil {
		return err
	}
	if len(installed.Plugins) == 0 {
		fmt.Println(i18n.T("NoPluginsInstalled", nil))
		return nil
	}

	fmt.Println("Updating marketplaces...")
	if err := updateAllMarketplaces(git.NewClient(), marketplace.GetRegistry()); err != nil {
		return err
	}
	fmt.Println()

	updatedCount := 0
	for pluginID, entries := range installed.Plugins {
		for _, entry := range entries {
			spinner := autoupdate.NewSpinner(pluginID)
			spinner.Start()
			err := reinstallEntry(pluginID, entry)
			spinner.Stop(err == nil)
			if err == nil {
				updatedCount++
			}
		}
	}

	fmt.Printf("\n%d plugin(s) updated\n", updatedCount)
	return nil
}

// pluginNeedsUpdate compares the recorded version against the refreshed
// marketplace manifest.
func pluginNeedsUpdate(pluginName, marketplaceName string, entry ledger.Entry) (bool, string, error) {
	registry := marketplace.GetRegistry()
	mp, err := registry.Get(marketplaceName)
	if err != nil || mp == nil {
		return false, "", fmt.Errorf("%s", i18n.T("MarketplaceNotFound", map[string]any{"Name": marketplaceName}))
	}

	manifest, err := marketplace.LoadManifest(mp.InstallLocation)
	if err != nil {
		return false, "", err
	}

	pluginEntry := manifest.FindPlugin(pluginName)
	if pluginEntry == nil {
		return false, "", fmt.Errorf("%w: %s@%s", errUnknownPlugin, pluginName, marketplaceName)
	}

	newVersion := pluginEntry.Version
	if newVersion == "" {
		commit, err := git.NewClient().GetCurrentCommit(mp.InstallLocation)
		if err == nil && len(commit) > 12 {
			newVersion = commit[:12]
		} else {
			newVersion = "latest"
		}
	}

	return entry.Version != newVersion, newVersion, nil
}

// reinstallPluginByID reinstalls every recorded installation of a plugin.
// Wired into the autoupdate updater as its reinstall callback.
func reinstallPluginByID(pluginID string) error {
	entries, err := ledger.GetManager().Get(pluginID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrNotInstalled, pluginID)
	}

	for _, entry := range entries {
		if err := reinstallEntry(pluginID, entry); err != nil {
			return err
		}
	}
	return nil
}

// reinstallEntry removes an installation's recorded destinations and
// reinstalls the plugin in the same scope (quiet mode).
func reinstallEntry(pluginID string, entry ledger.Entry) error {
	pluginQuietMode = true
	defer func() { pluginQuietMode = false }()

	for _, err := range installer.RemovePaths(entry.AssetPaths()) {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if entry.Scope == "project" && entry.ProjectPath != "" {
		oldDir, _ := os.Getwd()
		if err := os.Chdir(entry.ProjectPath); err != nil {
			return err
		}
		defer os.Chdir(oldDir)
	}

	if err := installPlugin(pluginID, entry.Scope, config.GetInstallMode()); err != nil {
		return fmt.Errorf("reinstall failed: %w", err)
	}
	return nil
}
