package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/plugfarm/plugfarm/internal/claudecli"
	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/fsutil"
	"github.com/plugfarm/plugfarm/internal/git"
	"github.com/plugfarm/plugfarm/internal/hooks"
	"github.com/plugfarm/plugfarm/internal/i18n"
	"github.com/plugfarm/plugfarm/internal/installer"
	"github.com/plugfarm/plugfarm/internal/layout"
	"github.com/plugfarm/plugfarm/internal/ledger"
	"github.com/plugfarm/plugfarm/internal/marketplace"
	"github.com/plugfarm/plugfarm/internal/settings"
	"github.com/spf13/cobra"
)

// defaultPlugins is the curated bundle installed by a bare `plugfarm install`.
var defaultPlugins = []string{
	"claude-core",
	"claude-frontend",
	"claude-backend",
	"claude-testing",
	"claude-security",
	"claude-devops",
	"claude-docs",
}

// errUnknownPlugin marks a plugin missing from its marketplace manifest.
// Batch installs warn and continue past it instead of aborting the run.
var errUnknownPlugin = errors.New("plugin not found in marketplace")

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage plugins",
	Long: `Manage plugins from registered marketplaces.

Commands:
  install    Install plugin(s)
  uninstall  Uninstall installed plugin(s)
  update     Update installed plugin(s)
  list       List installed plugins
  search     Search for plugins`,
}

var pluginInstallCmd = &cobra.Command{
	Use:   "install [plugin...]",
	Short: "Install plugins from a marketplace",
	Long: `Install plugins from a registered marketplace.

Without arguments, installs the default plugin bundle. Bare names resolve
against the default marketplace; use name@marketplace to be explicit.

Example:
  plugfarm plugin install                      # default bundle
  plugfarm plugin install claude-core
  plugfarm plugin install my-plugin@my-marketplace -s project
  plugfarm plugin install --interactive`,
	RunE: runPluginInstall,
}

var pluginUninstallCmd = &cobra.Command{
	Use:     "uninstall [plugin...]",
	Aliases: []string{"remove", "rm"},
	Short:   "Uninstall installed plugins",
	Long: `Uninstall installed plugins.

Without arguments, removes every plugin recorded in the ledger.

Scope options:
  -s global   Remove from global installation only (default)
  -s project  Remove from current project only
  -s all      Remove from all installations

Example:
  plugfarm plugin uninstall claude-core
  plugfarm plugin uninstall                    # everything recorded
  plugfarm plugin uninstall --all              # also sweep unrecorded leftovers`,
	RunE: runPluginUninstall,
}

var pluginUpdateCmd = &cobra.Command{
	Use:   "update [plugin@marketplace]",
	Short: "Update installed plugin(s)",
	Long: `Update all installed plugins or a specific plugin.

By default, only updates plugins with version changes.
Use --force to reinstall all plugins regardless of version.

Example:
  plugfarm plugin update                       # Update plugins with changes
  plugfarm plugin update --force               # Force reinstall all plugins
  plugfarm plugin update claude-core           # Update specific`,
	RunE: runPluginUpdate,
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins",
	Long: `List all installed plugins.

Example:
  plugfarm plugin list`,
	RunE: runPluginList,
}

var pluginSearchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search for plugins across all marketplaces",
	Long: `Search for plugins using fuzzy matching across all registered marketplaces.

Without arguments, opens an interactive fuzzy finder (TUI mode).
With a keyword, performs a text-based search.

The search looks through plugin names, descriptions, tags, and keywords.

Example:
  plugfarm plugin search              # Interactive TUI mode
  plugfarm plugin search formatter    # Text search mode`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPluginSearch,
}

var (
	pluginInstallScope       string
	pluginInstallMode        string
	pluginInstallMarketplace string
	pluginInstallInteractive bool
	pluginUninstallScope     string
	pluginUninstallSweep     bool
	pluginUpdateForce        bool
	pluginQuietMode          bool // Suppress output during batch operations
)

func init() {
	pluginInstallCmd.Flags().StringVarP(&pluginInstallScope, "scope", "s", "global", "install scope (global or project)")
	pluginInstallCmd.Flags().StringVarP(&pluginInstallMode, "mode", "m", "", "install mode (link or copy, default from config)")
	pluginInstallCmd.Flags().StringVar(&pluginInstallMarketplace, "marketplace", "", "marketplace bare plugin names resolve against")
	pluginInstallCmd.Flags().BoolVarP(&pluginInstallInteractive, "interactive", "i", false, "pick plugins in an interactive finder")
	pluginUninstallCmd.Flags().StringVarP(&pluginUninstallScope, "scope", "s", "global", "uninstall scope (global, project, or all)")
	pluginUninstallCmd.Flags().BoolVar(&pluginUninstallSweep, "all", false, "also sweep derived destinations not recorded in the ledger")
	pluginUpdateCmd.Flags().BoolVarP(&pluginUpdateForce, "force", "f", false, "force reinstall regardless of version")

	pluginCmd.AddCommand(pluginInstallCmd)
	pluginCmd.AddCommand(pluginUninstallCmd)
	pluginCmd.AddCommand(pluginUpdateCmd)
	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginSearchCmd)
}

// parsePluginID splits "plugin@marketplace", resolving bare names against
// the --marketplace flag or the configured default.
func parsePluginID(identifier string) (string, string, error) {
	parts := strings.Split(identifier, "@")
	switch len(parts) {
	case 1:
		mp := pluginInstallMarketplace
		if mp == "" {
			mp = config.GetDefaultMarketplace()
		}
		return parts[0], mp, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			break
		}
		return parts[0], parts[1], nil
	}
	return "", "", fmt.Errorf("%s", i18n.T("InvalidPluginIdentifier", map[string]any{
		"Identifier": identifier,
	}))
}

func installMode() config.InstallMode {
	switch pluginInstallMode {
	case "link":
		return config.ModeLink
	case "copy":
		return config.ModeCopy
	}
	return config.GetInstallMode()
}

func runPluginInstall(cmd *cobra.Command, args []string) error {
	if cmd != nil {
		cmd.SilenceUsage = true
	}

	if pluginInstallInteractive {
		return runInteractiveSearch()
	}

	targets := args
	if len(targets) == 0 {
		targets = defaultPlugins
	}

	mode := installMode()
	failed := 0
	for _, target := range targets {
		if err := installPlugin(target, pluginInstallScope, mode); err != nil {
			if errors.Is(err, errUnknownPlugin) {
				// An unknown name must not sink the rest of the batch
				fmt.Println(i18n.T("UnknownPluginSkipped", map[string]any{"Plugin": target}))
				continue
			}
			if len(targets) == 1 {
				return err
			}
			fmt.Printf("  %s: %v\n", i18n.T("InstallFailed", map[string]any{"Plugin": target}), err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d plugin(s) failed to install", failed)
	}
	return nil
}

// installPlugin installs one plugin into the given scope. Reinstalling is
// idempotent: assets are replaced, settings converge, and the ledger entry
// for (plugin, scope) is updated in place.
func installPlugin(identifier, scope string, mode config.InstallMode) error {
	pluginName, marketplaceName, err := parsePluginID(identifier)
	if err != nil {
		return err
	}
	pluginID := fmt.Sprintf("%s@%s", pluginName, marketplaceName)

	registry := marketplace.GetRegistry()
	mp, err := registry.Get(marketplaceName)
	if err != nil {
		return err
	}
	if mp == nil {
		return fmt.Errorf("%s", i18n.T("MarketplaceNotFound", map[string]any{"Name": marketplaceName}))
	}

	manifest, err := marketplace.LoadManifest(mp.InstallLocation)
	if err != nil {
		return err
	}

	pluginEntry := manifest.FindPlugin(pluginName)
	if pluginEntry == nil {
		return fmt.Errorf("%w: %s", errUnknownPlugin, pluginID)
	}

	// External plugins belong to the host CLI's own mechanism
	if pluginEntry.IsExternal() {
		if claudecli.Available() {
			if !pluginQuietMode {
				fmt.Println(i18n.T("DelegatingToHost", map[string]any{"Plugin": pluginID}))
			}
			return claudecli.InstallPlugin(pluginID)
		}
		fmt.Println(i18n.T("HostCLIMissing", map[string]any{"Plugin": pluginID}))
		fmt.Print(claudecli.ManualInstructions(pluginID))
		return nil
	}

	sourcePath := manifest.PluginSourcePath(mp.InstallLocation, pluginEntry)

	// Remote sources are cloned to a temp dir and installed from there.
	// Only copy mode makes sense for them; a symlink into a temp clone
	// would dangle.
	var tempCloneDir string
	if pluginEntry.IsRemote() {
		remoteURL := pluginEntry.Source.GetSourceURL()
		tempCloneDir, err = os.MkdirTemp("", "plugfarm-plugin-*")
		if err != nil {
			return fmt.Errorf("failed to create temp directory: %w", err)
		}
		defer os.RemoveAll(tempCloneDir)

		if !pluginQuietMode {
			fmt.Printf("Cloning %s...\n", remoteURL)
		}
		if err := git.NewClient().Clone(remoteURL, tempCloneDir); err != nil {
			return fmt.Errorf("failed to clone plugin repository: %w", err)
		}
		sourcePath = tempCloneDir
		mode = config.ModeCopy
	} else {
		if _, err := os.Stat(sourcePath); os.IsNotExist(err) {
			return fmt.Errorf("plugin source not found: %s", sourcePath)
		}
	}

	assets, err := layout.Resolve(sourcePath)
	if err != nil {
		return err
	}
	if assets.IsEmpty() && !pluginQuietMode {
		fmt.Println(i18n.T("EmptyPlugin", map[string]any{"Plugin": pluginID}))
	}

	version := pluginEntry.Version
	if version == "" {
		commit, err := git.NewClient().GetCurrentCommit(mp.InstallLocation)
		if err == nil && len(commit) > 12 {
			version = commit[:12]
		} else {
			version = "latest"
		}
	}

	var projectPath string
	if scope == "project" {
		projectPath, _ = os.Getwd()
	}

	if !pluginQuietMode {
		fmt.Printf("Installing %s...\n", pluginID)
	}

	sourceRecord := ledger.Source{
		Marketplace: marketplaceName,
		URL:         mp.Source.URL,
		Path:        sourcePath,
	}
	if tempCloneDir != "" {
		// A temp clone vanishes after install; record the remote instead
		sourceRecord.Path = ""
		sourceRecord.URL = pluginEntry.Source.GetSourceURL()
	}

	now := time.Now().Format(time.RFC3339)
	entry := ledger.Entry{
		Scope:       scope,
		ProjectPath: projectPath,
		Version:     version,
		Status:      ledger.StatusPartial,
		InstalledAt: now,
		LastUpdated: now,
		Source:      sourceRecord,
	}

	// Partial goes in before the filesystem is touched so an interrupted
	// run leaves a visible trace.
	mgr := ledger.GetManager()
	if err := config.EnsureDir(config.PluginsDir()); err != nil {
		return err
	}
	if err := mgr.Upsert(pluginID, entry); err != nil {
		return err
	}

	installed, err := installer.New(mode).InstallAssets(assets)
	if err != nil {
		return err
	}

	plan := settings.Plan{EnablePlugins: []string{pluginID}}

	// Hook registrations, rewritten to installed script locations
	if assets.HooksManifest != "" {
		data, err := os.ReadFile(assets.HooksManifest)
		if err != nil {
			return fmt.Errorf("failed to read hooks manifest: %w", err)
		}
		parsed, err := hooks.Parse(data)
		if err != nil {
			return err
		}

		installedScripts := make(map[string]string)
		for _, dst := range installed[layout.Hooks] {
			installedScripts[filepath.Base(dst)] = dst
		}

		regs := hooks.Registrations(parsed, installedScripts)

		doc, err := settings.LoadDocument(config.SettingsPath())
		if err != nil {
			return err
		}
		conflicts, err := hooks.Conflicts(doc, regs)
		if err != nil {
			return err
		}
		for _, c := range conflicts {
			if !pluginQuietMode {
				fmt.Println(i18n.T("HookAlreadyRegistered", map[string]any{"Hook": c}))
			}
		}

		plan.Hooks = regs
	}

	// Status line only when the script actually landed on disk
	for _, dst := range installed[layout.Scripts] {
		if dst == config.StatusLinePath() && fsutil.Exists(dst) {
			plan.StatusLine = &settings.StatusLine{
				Type:    "command",
				Command: config.StatusLinePath(),
			}
		}
	}

	// Marketplace-provided env template, existing-wins on merge
	if env, err := loadTemplateEnv(mp.InstallLocation); err == nil {
		plan.TemplateEnv = env
	}

	if err := settings.Reconcile(config.SettingsPath(), plan); err != nil {
		return err
	}

	entry.Status = ledger.StatusInstalled
	entry.Assets = make(map[string][]string, len(installed))
	for category, dests := range installed {
		entry.Assets[string(category)] = dests
	}
	if err := mgr.Upsert(pluginID, entry); err != nil {
		return err
	}

	if !pluginQuietMode {
		fmt.Println(i18n.T("InstallSuccess", map[string]any{
			"Plugin":      pluginName,
			"Marketplace": marketplaceName,
			"Version":     version,
		}))
		for _, category := range layout.Categories {
			dests := installed[category]
			if len(dests) == 0 {
				continue
			}
			names := make([]string, len(dests))
			for i, d := range dests {
				names[i] = filepath.Base(d)
			}
			fmt.Printf("  %s: %s\n", category, strings.Join(names, ", "))
		}
	}

	return nil
}

// loadTemplateEnv reads the marketplace's optional templates/settings.json
// and returns its env map.
func loadTemplateEnv(marketplacePath string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(marketplacePath, "templates", "settings.json"))
	if err != nil {
		return nil, err
	}
	doc, err := settings.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return doc.Env()
}

func runPluginUninstall(cmd *cobra.Command, args []string) error {
	if cmd != nil {
		cmd.SilenceUsage = true
	}

	scope := pluginUninstallScope
	if scope != "global" && scope != "project" && scope != "all" {
		return fmt.Errorf("invalid scope: %s (must be global, project, or all)", scope)
	}

	targets := args
	if len(targets) == 0 {
		// No args: everything the ledger records
		installed, err := ledger.GetManager().List()
		if err != nil {
			return err
		}
		for id := range installed.Plugins {
			targets = append(targets, id)
		}
		if len(targets) == 0 && !pluginUninstallSweep {
			fmt.Println(i18n.T("NoPluginsInstalled", nil))
			return nil
		}
		// The full sweep covers the default bundle even when unrecorded
		if pluginUninstallSweep {
			targets = mergeTargets(targets, defaultPlugins)
		}
	}

	for _, target := range targets {
		if err := uninstallPlugin(target, scope); err != nil {
			fmt.Printf("  %s: %v\n", i18n.T("UninstallFailed", map[string]any{"Plugin": target}), err)
		}
	}

	return nil
}

// mergeTargets unions recorded plugin IDs with bare default names, skipping
// defaults already covered by a recorded ID.
func mergeTargets(recorded, defaults []string) []string {
	seen := make(map[string]bool, len(recorded))
	for _, id := range recorded {
		name := id
		if idx := strings.Index(id, "@"); idx > 0 {
			name = id[:idx]
		}
		seen[name] = true
	}
	merged := recorded
	for _, name := range defaults {
		if !seen[name] {
			merged = append(merged, name)
		}
	}
	return merged
}

// uninstallPlugin removes one plugin: recorded destinations first, then the
// settings keys it owns, then the ledger record.
func uninstallPlugin(identifier, scope string) error {
	pluginName, marketplaceName, err := parsePluginID(identifier)
	if err != nil {
		return err
	}
	pluginID := fmt.Sprintf("%s@%s", pluginName, marketplaceName)

	cwd, _ := os.Getwd()
	mgr := ledger.GetManager()
	entries, err := mgr.GetByScope(pluginID, scope, cwd)
	if err != nil {
		return err
	}
	if len(entries) == 0 && !pluginUninstallSweep {
		return fmt.Errorf("%w: %s (scope %s)", ledger.ErrNotInstalled, pluginID, scope)
	}

	var scriptPaths []string
	ownedStatusLine := false

	for _, entry := range entries {
		if !pluginQuietMode {
			scopeInfo := entry.Scope
			if entry.Scope == "project" {
				scopeInfo = fmt.Sprintf("project:%s", entry.ProjectPath)
			}
			fmt.Printf("Removing %s from %s...\n", pluginID, scopeInfo)
		}

		for _, errRemove := range installer.RemovePaths(entry.AssetPaths()) {
			fmt.Printf("  Warning: %v\n", errRemove)
		}

		scriptPaths = append(scriptPaths, entry.Assets[string(layout.Hooks)]...)
		scriptPaths = append(scriptPaths, entry.Assets[string(layout.Scripts)]...)
		for _, dst := range entry.Assets[string(layout.Scripts)] {
			if dst == config.StatusLinePath() {
				ownedStatusLine = true
			}
		}
	}

	// --all re-derives the bundle layout from the marketplace source and
	// deletes whatever exists, catching unrecorded partial installs
	if pluginUninstallSweep {
		derived := derivedDestinations(pluginName, marketplaceName)
		for _, errRemove := range installer.RemovePaths(derived) {
			fmt.Printf("  Warning: %v\n", errRemove)
		}
		scriptPaths = append(scriptPaths, derived...)
		ownedStatusLine = true
	}

	plan := settings.Plan{
		DisablePlugins:    []string{pluginID},
		RemoveHookCommand: hooks.OwnedBy(scriptPaths),
	}
	if ownedStatusLine {
		plan.ClearStatusLineCommand = config.StatusLinePath()
	}
	if err := settings.Reconcile(config.SettingsPath(), plan); err != nil {
		return err
	}

	removed, err := mgr.RemoveByScope(pluginID, scope, cwd)
	if err != nil {
		return err
	}

	if !pluginQuietMode && len(removed) > 0 {
		fmt.Println(i18n.T("RemoveSuccess", map[string]any{"Plugin": pluginID}))
	}

	return nil
}

// derivedDestinations recomputes where a plugin's assets would have been
// installed, from its current marketplace source tree.
func derivedDestinations(pluginName, marketplaceName string) []string {
	registry := marketplace.GetRegistry()
	mp, err := registry.Get(marketplaceName)
	if err != nil || mp == nil {
		return nil
	}
	manifest, err := marketplace.LoadManifest(mp.InstallLocation)
	if err != nil {
		return nil
	}
	pluginEntry := manifest.FindPlugin(pluginName)
	if pluginEntry == nil {
		return nil
	}
	sourcePath := manifest.PluginSourcePath(mp.InstallLocation, pluginEntry)
	if sourcePath == "" {
		return nil
	}
	assets, err := layout.Resolve(sourcePath)
	if err != nil {
		return nil
	}

	var dests []string
	for _, category := range layout.Categories {
		for _, src := range assets.Groups[category] {
			dests = append(dests, layout.DestFor(category, src))
		}
	}
	return dests
}

func runPluginList(cmd *cobra.Command, args []string) error {
	installed, err := ledger.GetManager().List()
	if err != nil {
		return err
	}

	fmt.Println(i18n.T("ListPluginsHeader", nil))
	fmt.Println(strings.Repeat("-", 40))

	if len(installed.Plugins) == 0 {
		fmt.Println(i18n.T("NoPluginsInstalled", nil))
		return nil
	}

	for id, entries := range installed.Plugins {
		for _, entry := range entries {
			fmt.Printf("  %s (v%s) [%s]\n", id, entry.Version, entry.Status)
			fmt.Printf("    Scope: %s\n", entry.Scope)
			if entry.Scope == "project" {
				fmt.Printf("    Project: %s\n", entry.ProjectPath)
			}
			fmt.Printf("    Marketplace: %s\n", entry.Source.Marketplace)
			fmt.Printf("    Installed: %s\n", entry.InstalledAt)
			fmt.Println()
		}
	}

	return nil
}
