// Package settings reconciles the host application's settings.json.
//
// The document is held as raw JSON per top-level key so that keys this tool
// does not manage ride through untouched: only the keys a plan mutates are
// ever re-encoded. That is the partial-merge contract: the file belongs to
// the host application, not to plugfarm.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Keys this tool manages inside settings.json.
const (
	keyEnabledPlugins    = "enabledPlugins"
	keyHooks             = "hooks"
	keyStatusLine        = "statusLine"
	keyEnv               = "env"
	keyExtraMarketplaces = "extraKnownMarketplaces"
)

// ErrInvalidDocument is returned when settings.json exists but cannot be
// parsed. Callers must abort before mutating anything.
var ErrInvalidDocument = errors.New("settings file is not valid JSON")

// Document is a settings.json held as raw JSON per top-level key.
type Document struct {
	raw map[string]json.RawMessage
}

// NewDocument returns an empty settings document.
func NewDocument() *Document {
	return &Document{raw: make(map[string]json.RawMessage)}
}

// LoadDocument reads a settings file. A missing file yields an empty
// document; malformed JSON yields ErrInvalidDocument.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDocument(), nil
		}
		return nil, err
	}
	return ParseDocument(data)
}

// ParseDocument parses raw settings bytes.
func ParseDocument(data []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if raw == nil {
		raw = make(map[string]json.RawMessage)
	}
	return &Document{raw: raw}, nil
}

// Bytes serializes the document with two-space indentation. Raw values of
// unmanaged keys are emitted as loaded.
func (d *Document) Bytes() ([]byte, error) {
	return json.MarshalIndent(d.raw, "", "  ")
}

// Raw returns the raw value of a top-level key, for callers (and tests)
// asserting that unmanaged keys were left alone.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	v, ok := d.raw[key]
	return v, ok
}

func (d *Document) decode(key string, out any) error {
	data, ok := d.raw[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: key %q: %v", ErrInvalidDocument, key, err)
	}
	return nil
}

func (d *Document) encode(key string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	d.raw[key] = data
	return nil
}

// EnabledPlugins returns the enabledPlugins map (never nil).
func (d *Document) EnabledPlugins() (map[string]bool, error) {
	plugins := make(map[string]bool)
	if err := d.decode(keyEnabledPlugins, &plugins); err != nil {
		return nil, err
	}
	return plugins, nil
}

// SetPluginEnabled sets enabledPlugins[pluginID].
func (d *Document) SetPluginEnabled(pluginID string, enabled bool) error {
	plugins, err := d.EnabledPlugins()
	if err != nil {
		return err
	}
	plugins[pluginID] = enabled
	return d.encode(keyEnabledPlugins, plugins)
}

// RemovePlugin deletes enabledPlugins[pluginID].
func (d *Document) RemovePlugin(pluginID string) error {
	plugins, err := d.EnabledPlugins()
	if err != nil {
		return err
	}
	if _, ok := plugins[pluginID]; !ok {
		return nil
	}
	delete(plugins, pluginID)
	if len(plugins) == 0 {
		delete(d.raw, keyEnabledPlugins)
		return nil
	}
	return d.encode(keyEnabledPlugins, plugins)
}

// Env returns the env map (never nil).
func (d *Document) Env() (map[string]string, error) {
	env := make(map[string]string)
	if err := d.decode(keyEnv, &env); err != nil {
		return nil, err
	}
	return env, nil
}

// MergeEnv unions template-provided env vars into the document with
// existing-wins semantics: a template never clobbers a user's manual edits.
func (d *Document) MergeEnv(template map[string]string) (bool, error) {
	if len(template) == 0 {
		return false, nil
	}
	env, err := d.Env()
	if err != nil {
		return false, err
	}
	changed := false
	for k, v := range template {
		if _, ok := env[k]; !ok {
			env[k] = v
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	return true, d.encode(keyEnv, env)
}

// StatusLine is the statusLine command descriptor.
type StatusLine struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Padding int    `json:"padding,omitempty"`
}

// StatusLineCommand returns the current statusLine command, if set.
func (d *Document) StatusLineCommand() (string, bool) {
	var sl StatusLine
	if err := d.decode(keyStatusLine, &sl); err != nil {
		return "", false
	}
	return sl.Command, sl.Command != ""
}

// SetStatusLine overwrites the statusLine descriptor.
func (d *Document) SetStatusLine(sl StatusLine) error {
	return d.encode(keyStatusLine, sl)
}

// RemoveStatusLineIf deletes statusLine when its command matches.
func (d *Document) RemoveStatusLineIf(command string) bool {
	current, ok := d.StatusLineCommand()
	if !ok || current != command {
		return false
	}
	delete(d.raw, keyStatusLine)
	return true
}

// MarketplaceRef is an extraKnownMarketplaces entry.
type MarketplaceRef struct {
	Source MarketplaceSourceRef `json:"source"`
}

// MarketplaceSourceRef describes the source reference for a marketplace.
type MarketplaceSourceRef struct {
	Source string `json:"source"` // "url", "git", "directory"
	URL    string `json:"url,omitempty"`
	Path   string `json:"path,omitempty"`
}

// SetExtraMarketplace registers a marketplace reference in the settings.
func (d *Document) SetExtraMarketplace(name string, ref MarketplaceRef) error {
	marketplaces := make(map[string]json.RawMessage)
	if err := d.decode(keyExtraMarketplaces, &marketplaces); err != nil {
		return err
	}
	data, err := json.Marshal(ref)
	if err != nil {
		return err
	}
	marketplaces[name] = data
	return d.encode(keyExtraMarketplaces, marketplaces)
}

// RemoveExtraMarketplace deletes a marketplace reference.
func (d *Document) RemoveExtraMarketplace(name string) error {
	marketplaces := make(map[string]json.RawMessage)
	if err := d.decode(keyExtraMarketplaces, &marketplaces); err != nil {
		return err
	}
	if _, ok := marketplaces[name]; !ok {
		return nil
	}
	delete(marketplaces, name)
	if len(marketplaces) == 0 {
		delete(d.raw, keyExtraMarketplaces)
		return nil
	}
	return d.encode(keyExtraMarketplaces, marketplaces)
}
