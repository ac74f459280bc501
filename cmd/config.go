package cmd

import (
	"fmt"

	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/tui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage plugfarm configuration",
	Long: `Manage plugfarm configuration settings.

Example:
  plugfarm config show
  plugfarm config set defaults.mode copy`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Available keys:
  locale               - Language setting
                         Values: auto, en-US, ko-KR, etc.
  defaults.mode        - How plugin assets are installed
                         Values: link, copy (interactive selector when omitted)
  defaults.marketplace - Marketplace bare plugin names resolve against
  autoUpdate.mode      - Update check behavior
                         Values: notify, auto, disabled (interactive selector when omitted)

Example:
  plugfarm config set locale ko-KR
  plugfarm config set defaults.mode copy
  plugfarm config set autoUpdate.mode auto`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println("Configuration:")
	fmt.Println("----------------------------------------")
	fmt.Printf("  locale: %s\n", cfg.Locale)
	fmt.Printf("  defaults.mode: %s\n", cfg.Defaults.Mode)
	fmt.Printf("  defaults.marketplace: %s\n", cfg.Defaults.Marketplace)
	fmt.Printf("  autoUpdate.mode: %s\n", cfg.AutoUpdate)

	fmt.Println()
	fmt.Println("Locale:")
	if cfg.Locale == "auto" {
		fmt.Println("  auto: System locale is auto-detected")
	} else {
		fmt.Printf("  %s: Using fixed locale\n", cfg.Locale)
	}

	fmt.Println()
	fmt.Println("Install mode:")
	switch cfg.Defaults.Mode {
	case config.ModeLink:
		fmt.Println("  link: Assets are symlinked, marketplace updates propagate in place")
	case config.ModeCopy:
		fmt.Println("  copy: Assets are copied, updates require reinstalling")
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]

	switch key {
	case "locale":
		if len(args) < 2 {
			return fmt.Errorf("config set locale requires a value")
		}
		if err := config.SetLocale(args[1]); err != nil {
			return err
		}
		fmt.Printf("Locale set to '%s'. Restart plugfarm to apply.\n", args[1])
		return nil

	case "defaults.mode":
		// No value opens the interactive selector
		if len(args) < 2 {
			mode, confirmed, err := tui.RunInstallModeSelector(config.GetInstallMode())
			if err != nil {
				return err
			}
			if !confirmed {
				return nil
			}
			return config.SetInstallMode(mode)
		}
		switch args[1] {
		case "link":
			return config.SetInstallMode(config.ModeLink)
		case "copy":
			return config.SetInstallMode(config.ModeCopy)
		default:
			return fmt.Errorf("invalid value '%s' for %s. Valid values: link, copy", args[1], key)
		}

	case "defaults.marketplace":
		if len(args) < 2 {
			return fmt.Errorf("config set defaults.marketplace requires a value")
		}
		return config.SetDefaultMarketplace(args[1])

	case "autoUpdate.mode":
		if len(args) < 2 {
			mode, confirmed, err := tui.RunModeSelector()
			if err != nil {
				return err
			}
			if !confirmed {
				return nil
			}
			return config.SetAutoUpdateMode(mode)
		}
		switch args[1] {
		case "notify":
			return config.SetAutoUpdateMode(config.AutoUpdateNotify)
		case "auto":
			return config.SetAutoUpdateMode(config.AutoUpdateAuto)
		case "disabled":
			return config.SetAutoUpdateMode(config.AutoUpdateDisabled)
		default:
			return fmt.Errorf("invalid value '%s' for %s. Valid values: notify, auto, disabled", args[1], key)
		}

	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}
