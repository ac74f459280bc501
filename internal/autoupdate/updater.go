package autoupdate

import (
	"fmt"
	"sync"
	"time"

	"github.com/plugfarm/plugfarm/internal/git"
	"github.com/plugfarm/plugfarm/internal/i18n"
	"github.com/plugfarm/plugfarm/internal/marketplace"
)

// Spinner characters
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner represents a terminal spinner
type Spinner struct {
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
}

// NewSpinner creates a new spinner with a message
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start starts the spinner animation
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		i := 0
		for {
			select {
			case <-s.stop:
				return
			default:
				s.mu.Lock()
				fmt.Printf("\r  %s %s ", spinnerFrames[i%len(spinnerFrames)], s.message)
				s.mu.Unlock()
				i++
				time.Sleep(80 * time.Millisecond)
			}
		}
	}()
}

// Stop stops the spinner and shows the result
func (s *Spinner) Stop(success bool) {
	close(s.stop)
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	if success {
		fmt.Printf("\r  ✓ %s\n", s.message)
	} else {
		fmt.Printf("\r  ✗ %s\n", s.message)
	}
}

// ReinstallFunc reinstalls a plugin by ID from its refreshed marketplace.
// The cmd layer injects this; autoupdate cannot import it directly.
type ReinstallFunc func(pluginID string) error

// Updater handles applying updates
type Updater struct {
	gitClient git.Client
	Reinstall ReinstallFunc
}

// NewUpdater creates a new updater
func NewUpdater(reinstall ReinstallFunc) *Updater {
	return &Updater{
		gitClient: git.NewClient(),
		Reinstall: reinstall,
	}
}

// ApplyUpdates applies all available updates from the check result
func (u *Updater) ApplyUpdates(result *CheckResult) error {
	if !result.HasAnyUpdate {
		return nil
	}

	fmt.Println(i18n.T("update.updating", nil))
	fmt.Println()

	var updateErrors []error

	// Marketplaces first so plugin reinstalls see the fresh checkout
	for _, mp := range result.Marketplaces {
		if !mp.HasUpdate {
			continue
		}

		spinner := NewSpinner(fmt.Sprintf("%s %s", i18n.T("update.typeMarketplace", nil), mp.Name))
		spinner.Start()

		err := u.updateMarketplace(mp)
		spinner.Stop(err == nil)

		if err != nil {
			updateErrors = append(updateErrors, err)
		}
	}

	for _, p := range result.Plugins {
		if !p.HasUpdate {
			continue
		}

		spinner := NewSpinner(fmt.Sprintf("%s %s", i18n.T("update.typePlugin", nil), p.Name))
		spinner.Start()

		err := u.updatePlugin(p)
		spinner.Stop(err == nil)

		if err != nil {
			updateErrors = append(updateErrors, err)
		}
	}

	fmt.Println()

	if len(updateErrors) > 0 {
		fmt.Println(i18n.T("update.partialSuccess", nil))
	} else {
		fmt.Println(i18n.T("update.complete", nil))
	}

	return nil
}

// updateMarketplace pulls the latest changes for a marketplace
func (u *Updater) updateMarketplace(info UpdateInfo) error {
	if err := u.gitClient.Pull(info.Path); err != nil {
		return fmt.Errorf("failed to update marketplace: %w", err)
	}

	// Timestamp failure is not worth failing the update over
	registry := marketplace.GetRegistry()
	_ = registry.UpdateTimestamp(info.Name)

	return nil
}

// updatePlugin reinstalls a plugin from its refreshed marketplace
func (u *Updater) updatePlugin(info UpdateInfo) error {
	if u.Reinstall == nil {
		return fmt.Errorf("no reinstall handler configured for %s", info.Name)
	}
	return u.Reinstall(info.Name)
}

// ApplyMarketplaceUpdates applies only marketplace updates
func (u *Updater) ApplyMarketplaceUpdates(result *CheckResult) error {
	for _, mp := range result.Marketplaces {
		if !mp.HasUpdate {
			continue
		}

		if err := u.updateMarketplace(mp); err != nil {
			return err
		}
	}
	return nil
}
