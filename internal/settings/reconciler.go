package settings

import (
	"github.com/plugfarm/plugfarm/internal/fsutil"
	"github.com/plugfarm/plugfarm/internal/logging"
)

// Plan is the declarative desired state applied to a settings document.
// Zero-valued fields are no-ops, so install and uninstall build plans from
// the same type.
type Plan struct {
	// EnablePlugins forces enabledPlugins[id] = true.
	EnablePlugins []string
	// DisablePlugins deletes enabledPlugins[id].
	DisablePlugins []string

	// Hooks are appended, deduped by exact command string per event.
	Hooks []HookRegistration
	// RemoveHookCommand drops registrations whose command it matches.
	RemoveHookCommand func(command string) bool

	// StatusLine overwrites the statusLine descriptor when non-nil.
	StatusLine *StatusLine
	// ClearStatusLineCommand removes statusLine when it matches this command.
	ClearStatusLineCommand string

	// TemplateEnv is unioned into env, existing-wins.
	TemplateEnv map[string]string

	// AddMarketplaces and RemoveMarketplaces maintain extraKnownMarketplaces.
	AddMarketplaces    map[string]MarketplaceRef
	RemoveMarketplaces []string
}

// Apply mutates doc toward the plan and reports whether anything changed.
func Apply(doc *Document, plan Plan) (bool, error) {
	changed := false

	for _, id := range plan.EnablePlugins {
		plugins, err := doc.EnabledPlugins()
		if err != nil {
			return changed, err
		}
		if plugins[id] {
			continue
		}
		if err := doc.SetPluginEnabled(id, true); err != nil {
			return changed, err
		}
		changed = true
	}

	for _, id := range plan.DisablePlugins {
		plugins, err := doc.EnabledPlugins()
		if err != nil {
			return changed, err
		}
		if _, ok := plugins[id]; !ok {
			continue
		}
		if err := doc.RemovePlugin(id); err != nil {
			return changed, err
		}
		changed = true
	}

	for _, reg := range plan.Hooks {
		added, err := doc.AddHook(reg.Event, reg.Entry)
		if err != nil {
			return changed, err
		}
		changed = changed || added
	}

	if plan.RemoveHookCommand != nil {
		removed, err := doc.RemoveHooks(plan.RemoveHookCommand)
		if err != nil {
			return changed, err
		}
		changed = changed || removed > 0
	}

	if plan.StatusLine != nil {
		current, ok := doc.StatusLineCommand()
		if !ok || current != plan.StatusLine.Command {
			if err := doc.SetStatusLine(*plan.StatusLine); err != nil {
				return changed, err
			}
			changed = true
		}
	}

	if plan.ClearStatusLineCommand != "" {
		if doc.RemoveStatusLineIf(plan.ClearStatusLineCommand) {
			changed = true
		}
	}

	envChanged, err := doc.MergeEnv(plan.TemplateEnv)
	if err != nil {
		return changed, err
	}
	changed = changed || envChanged

	for name, ref := range plan.AddMarketplaces {
		if err := doc.SetExtraMarketplace(name, ref); err != nil {
			return changed, err
		}
		changed = true
	}
	for _, name := range plan.RemoveMarketplaces {
		if err := doc.RemoveExtraMarketplace(name); err != nil {
			return changed, err
		}
		changed = true
	}

	return changed, nil
}

// Reconcile loads the settings file, applies the plan, and writes the
// result back atomically. The whole read-merge-write cycle runs under an
// advisory lock. An unchanged document is not rewritten.
func Reconcile(path string, plan Plan) error {
	log := logging.Get("settings")

	lock, err := acquireLock(path)
	if err != nil {
		return err
	}
	defer lock.release()

	doc, err := LoadDocument(path)
	if err != nil {
		return err
	}

	changed, err := Apply(doc, plan)
	if err != nil {
		return err
	}
	if !changed {
		log.Debug().Str("path", path).Msg("settings already converged")
		return nil
	}

	data, err := doc.Bytes()
	if err != nil {
		return err
	}

	log.Debug().Str("path", path).Msg("writing settings")
	return fsutil.WriteFileAtomic(path, data, 0o644)
}
