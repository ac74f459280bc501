package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/i18n"
	"github.com/plugfarm/plugfarm/internal/installer"
	"github.com/plugfarm/plugfarm/internal/ledger"
	"github.com/plugfarm/plugfarm/internal/marketplace"
	"github.com/spf13/cobra"
)

var (
	listAll bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered marketplaces and installed plugins",
	Long: `List all registered marketplaces and installed plugins.

Example:
  plugfarm list
  plugfarm list --all  # Also show available plugins`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "show available plugins from marketplaces")
}

func runList(cmd *cobra.Command, args []string) error {
	registry := marketplace.GetRegistry()
	marketplaces, err := registry.List()
	if err != nil {
		return err
	}

	fmt.Println(i18n.T("ListMarketplacesHeader", nil))
	fmt.Println(strings.Repeat("-", 40))

	if len(marketplaces) == 0 {
		fmt.Println(i18n.T("NoMarketplaces", nil))
	} else {
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

			if listAll {
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
	}

	fmt.Println()
	fmt.Println(i18n.T("ListPluginsHeader", nil))
	fmt.Println(strings.Repeat("-", 40))

	installed, err := ledger.GetManager().List()
	if err != nil {
		return err
	}

	if len(installed.Plugins) == 0 {
		fmt.Println(i18n.T("NoPluginsInstalled", nil))
		return nil
	}

	for id, entries := range installed.Plugins {
		for _, entry := range entries {
			status := string(entry.Status)
			if drifted := driftedAssets(entry); len(drifted) > 0 {
				status += fmt.Sprintf(", %d drifted", len(drifted))
			}

			fmt.Printf("  %s (v%s) [%s]\n", id, entry.Version, status)
			fmt.Printf("    Scope: %s\n", entry.Scope)
			if entry.Scope == "project" {
				fmt.Printf("    Project: %s\n", entry.ProjectPath)
			}
			fmt.Printf("    Marketplace: %s\n", entry.Source.Marketplace)
			for category, paths := range entry.Assets {
				fmt.Printf("    %s:\n", category)
				for _, path := range paths {
					fmt.Printf("      - %s\n", path)
				}
			}
			fmt.Printf("    Installed: %s\n", entry.InstalledAt)
			fmt.Println()
		}
	}

	return nil
}

// driftedAssets reports installed destinations that no longer resolve to
// the plugin's source tree.
func driftedAssets(entry ledger.Entry) []string {
	if entry.Source.Path == "" {
		return nil
	}
	srcByDst := make(map[string]string)
	for category, paths := range entry.Assets {
		for _, dst := range paths {
			base := filepath.Base(dst)
			if base == config.StatusLineScript {
				srcByDst[dst] = filepath.Join(entry.Source.Path, "scripts", base)
				continue
			}
			srcByDst[dst] = filepath.Join(entry.Source.Path, category, base)
		}
	}
	return installer.Drifted(srcByDst)
}
