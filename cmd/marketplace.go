package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/fsutil"
	"github.com/plugfarm/plugfarm/internal/git"
	"github.com/plugfarm/plugfarm/internal/i18n"
	"github.com/plugfarm/plugfarm/internal/marketplace"
	"github.com/plugfarm/plugfarm/internal/settings"
	"github.com/spf13/cobra"
)

var marketplaceCmd = &cobra.Command{
	Use:     "marketplace",
	Aliases: []string{"mp"},
	Short:   "Manage plugin marketplaces",
	Long: `Manage plugin marketplaces (similar to 'brew tap').

Commands:
  add     Add a new marketplace from a git URL or local directory
  del     Remove a registered marketplace
  list    List all registered marketplaces
  update  Update marketplace(s)`,
}

var marketplaceAddCmd = &cobra.Command{
	Use:   "add <git-url|path>",
	Short: "Add a plugin marketplace",
	Long: `Add a plugin marketplace from a git URL or a local directory.

Example:
  plugfarm marketplace add https://github.com/org/my-plugins
  plugfarm mp add git@github.com:org/my-plugins.git
  plugfarm mp add ./my-local-marketplace`,
	Args: cobra.ExactArgs(1),
	RunE: runMarketplaceAdd,
}

var marketplaceDelCmd = &cobra.Command{
	Use:     "del <name>",
	Aliases: []string{"delete", "remove", "rm"},
	Short:   "Remove a registered marketplace",
	Long: `Remove a registered marketplace.

Example:
  plugfarm marketplace del my-marketplace`,
	Args: cobra.ExactArgs(1),
	RunE: runMarketplaceDel,
}

var marketplaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered marketplaces",
	Long: `List all registered marketplaces.

Example:
  plugfarm marketplace list
  plugfarm mp list --all  # Show available plugins`,
	RunE: runMarketplaceList,
}

var marketplaceUpdateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Update marketplace(s)",
	Long: `Update all marketplaces or a specific marketplace.

Example:
  plugfarm marketplace update                 # Update all
  plugfarm marketplace update my-marketplace  # Update specific`,
	RunE: runMarketplaceUpdate,
}

var (
	marketplaceListAll bool
)

func init() {
	marketplaceListCmd.Flags().BoolVarP(&marketplaceListAll, "all", "a", false, "show available plugins from marketplaces")

	marketplaceCmd.AddCommand(marketplaceAddCmd)
	marketplaceCmd.AddCommand(marketplaceDelCmd)
	marketplaceCmd.AddCommand(marketplaceListCmd)
	marketplaceCmd.AddCommand(marketplaceUpdateCmd)
}

func runMarketplaceAdd(cmd *cobra.Command, args []string) error {
	target := args[0]

	// Local directories register without cloning
	if fsutil.Exists(target) {
		return addLocalMarketplace(target)
	}

	// Missing git is a precondition failure, before any mutation
	if err := git.CheckAvailable(); err != nil {
		return err
	}

	repoName := extractRepoName(target)
	if repoName == "" {
		return fmt.Errorf("failed to extract repository name from URL: %s", target)
	}

	registry := marketplace.GetRegistry()
	exists, err := registry.Exists(repoName)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s", i18n.T("AlreadyExists", map[string]any{"Name": repoName}))
	}

	if err := config.EnsureDir(config.MarketplacesDir()); err != nil {
		return err
	}

	destPath := config.MarketplacePath(repoName)
	gitClient := git.NewClient()

	fmt.Printf("Cloning %s...\n", target)
	if err := gitClient.Clone(target, destPath); err != nil {
		if authErr, ok := err.(*git.AuthError); ok {
			return fmt.Errorf("%s", i18n.T("GitAuthFailed", map[string]any{"URL": authErr.URL}))
		}
		return fmt.Errorf("%s", i18n.T("GitCloneFailed", map[string]any{"Error": err.Error()}))
	}

	manifest, err := marketplace.LoadManifest(destPath)
	if err != nil {
		// Rollback: remove cloned directory
		os.RemoveAll(destPath)
		return fmt.Errorf("%s", i18n.T("InvalidManifest", map[string]any{"Path": destPath}))
	}

	marketplaceName := manifest.Name
	if marketplaceName == "" {
		marketplaceName = repoName
	}

	source := marketplace.Source{Source: "git", URL: target}
	if err := registry.Add(marketplaceName, source, destPath); err != nil {
		os.RemoveAll(destPath)
		return err
	}

	if err := mirrorMarketplaceToSettings(marketplaceName, source); err != nil {
		fmt.Printf("Warning: failed to mirror marketplace into settings: %v\n", err)
	}

	pluginCount := len(manifest.Plugins)
	fmt.Println(i18n.T("AddSuccess", map[string]any{
		"Name":  marketplaceName,
		"Count": pluginCount,
	}, pluginCount))

	return nil
}

// addLocalMarketplace registers a marketplace from an existing directory by
// symlinking it under the marketplaces root.
func addLocalMarketplace(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	manifest, err := marketplace.LoadManifest(absPath)
	if err != nil {
		return fmt.Errorf("%s", i18n.T("InvalidManifest", map[string]any{"Path": absPath}))
	}

	marketplaceName := manifest.Name
	if marketplaceName == "" {
		marketplaceName = filepath.Base(absPath)
	}

	registry := marketplace.GetRegistry()
	exists, err := registry.Exists(marketplaceName)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s", i18n.T("AlreadyExists", map[string]any{"Name": marketplaceName}))
	}

	if err := config.EnsureDir(config.MarketplacesDir()); err != nil {
		return err
	}

	destPath := config.MarketplacePath(marketplaceName)
	if err := fsutil.Symlink(absPath, destPath); err != nil {
		return err
	}

	source := marketplace.Source{Source: "directory", Path: absPath}
	if err := registry.Add(marketplaceName, source, destPath); err != nil {
		os.Remove(destPath)
		return err
	}

	if err := mirrorMarketplaceToSettings(marketplaceName, source); err != nil {
		fmt.Printf("Warning: failed to mirror marketplace into settings: %v\n", err)
	}

	pluginCount := len(manifest.Plugins)
	fmt.Println(i18n.T("AddSuccess", map[string]any{
		"Name":  marketplaceName,
		"Count": pluginCount,
	}, pluginCount))

	return nil
}

// mirrorMarketplaceToSettings reflects a registered marketplace into the
// host settings extraKnownMarketplaces key.
func mirrorMarketplaceToSettings(name string, source marketplace.Source) error {
	ref := settings.MarketplaceRef{
		Source: settings.MarketplaceSourceRef{
			Source: source.Source,
			URL:    source.URL,
			Path:   source.Path,
		},
	}
	return settings.Reconcile(config.SettingsPath(), settings.Plan{
		AddMarketplaces: map[string]settings.MarketplaceRef{name: ref},
	})
}

func runMarketplaceDel(cmd *cobra.Command, args []string) error {
	name := args[0]

	registry := marketplace.GetRegistry()
	mp, err := registry.Get(name)
	if err != nil {
		return err
	}
	if mp == nil {
		return fmt.Errorf("%s", i18n.T("MarketplaceNotFound", map[string]any{"Name": name}))
	}

	// Remove the clone (or local-directory symlink)
	if mp.InstallLocation != "" {
		if err := os.RemoveAll(mp.InstallLocation); err != nil {
			fmt.Printf("Warning: failed to remove directory %s: %v\n", mp.InstallLocation, err)
		}
	}

	if err := registry.Remove(name); err != nil {
		return err
	}

	if err := settings.Reconcile(config.SettingsPath(), settings.Plan{
		RemoveMarketplaces: []string{name},
	}); err != nil {
		fmt.Printf("Warning: failed to remove marketplace from settings: %v\n", err)
	}

	fmt.Println(i18n.T("MarketplaceRemoved", map[string]any{"Name": name}))
	return nil
}

func runMarketplaceList(cmd *cobra.Command, args []string) error {
	registry := marketplace.GetRegistry()
	marketplaces, err := registry.List()
	if err != nil {
		return err
	}

	fmt.Println(i18n.T("ListMarketplacesHeader", nil))
	fmt.Println(strings.Repeat("-", 40))

	if len(marketplaces) == 0 {
		fmt.Println(i18n.T("NoMarketplaces", nil))
		return nil
	}

	for name, mp := range marketplaces {
		fmt.Printf("  %s\n", name)
		if mp.Source.URL != "" {
			fmt.Printf("    URL: %s\n", mp.Source.URL)
		}
		if mp.Source.Path != "" {
			fmt.Printf("    Source: %s\n", mp.Source.Path)
		}
		fmt.Printf("    Path: %s\n", mp.InstallLocation)
		fmt.Printf("    Updated: %s\n", mp.LastUpdated)

		if marketplaceListAll {
			manifest, err := marketplace.LoadManifest(mp.InstallLocation)
			if err == nil && len(manifest.Plugins) > 0 {
				fmt.Println("    Plugins:")
				for _, p := range manifest.Plugins {
					version := p.Version
					if version == "" {
						version = "latest"
					}
					fmt.Printf("      - %s (v%s)\n", p.Name, version)
					if p.Description != "" {
						fmt.Printf("        %s\n", p.Description)
					}
				}
			}
		}
		fmt.Println()
	}

	return nil
}

func runMarketplaceUpdate(cmd *cobra.Command, args []string) error {
	gitClient := git.NewClient()
	registry := marketplace.GetRegistry()

	if len(args) == 0 {
		return updateAllMarketplaces(gitClient, registry)
	}

	return updateMarketplace(gitClient, registry, args[0])
}

// extractRepoName extracts the repository name from a git URL
func extractRepoName(url string) string {
	url = strings.TrimSuffix(url, ".git")

	// Handle various URL formats:
	// https://github.com/org/repo
	// git@github.com:org/repo
	// github.com/org/repo
	if idx := strings.LastIndex(url, ":"); idx >= 0 && !strings.Contains(url, "://") {
		url = url[idx+1:]
	}

	parts := strings.Split(url, "/")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}

	return ""
}

func updateAllMarketplaces(gitClient git.Client, registry *marketplace.Registry) error {
	marketplaces, err := registry.List()
	if err != nil {
		return err
	}

	if len(marketplaces) == 0 {
		fmt.Println(i18n.T("NoMarketplaces", nil))
		return nil
	}

	for name, mp := range marketplaces {
		if mp.Source.Source != "git" {
			continue
		}
		fmt.Printf("Updating %s...\n", name)
		if err := gitClient.Pull(mp.InstallLocation); err != nil {
			if authErr, ok := err.(*git.AuthError); ok {
				fmt.Printf("  Error: %s\n", i18n.T("GitAuthFailed", map[string]any{"URL": authErr.URL}))
			} else {
				fmt.Printf("  Error: %s\n", i18n.T("GitPullFailed", map[string]any{"Error": err.Error()}))
			}
			continue
		}
		registry.UpdateTimestamp(name)
		fmt.Printf("  Done\n")
	}

	fmt.Println(i18n.T("UpdateAllSuccess", nil))
	return nil
}

func updateMarketplace(gitClient git.Client, registry *marketplace.Registry, name string) error {
	mp, err := registry.Get(name)
	if err != nil {
		return err
	}
	if mp == nil {
		return fmt.Errorf("%s", i18n.T("MarketplaceNotFound", map[string]any{"Name": name}))
	}

	if mp.Source.Source != "git" {
		// Local directory marketplaces have nothing to pull
		registry.UpdateTimestamp(name)
		fmt.Println(i18n.T("UpdateSuccess", map[string]any{"Target": name}))
		return nil
	}

	fmt.Printf("Updating %s...\n", name)
	if err := gitClient.Pull(mp.InstallLocation); err != nil {
		if authErr, ok := err.(*git.AuthError); ok {
			return fmt.Errorf("%s", i18n.T("GitAuthFailed", map[string]any{"URL": authErr.URL}))
		}
		return fmt.Errorf("%s", i18n.T("GitPullFailed", map[string]any{"Error": err.Error()}))
	}

	registry.UpdateTimestamp(name)
	fmt.Println(i18n.T("UpdateSuccess", map[string]any{"Target": name}))
	return nil
}
