// Package i18n wraps go-i18n around the embedded locale bundle.
package i18n

import (
	"embed"
	"encoding/json"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
)

// Init loads every embedded locale file and selects lang. English is the
// fallback for missing messages.
func Init(localeFS embed.FS, lang string) error {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := fs.Glob(localeFS, "locales/*.json")
	if err != nil {
		return err
	}
	for _, file := range files {
		// A broken locale file degrades to message IDs, not a startup failure
		bundle.LoadMessageFileFS(localeFS, file)
	}

	localizer = i18n.NewLocalizer(bundle, lang)
	return nil
}

// T translates a message ID with optional template data and plural count.
// Before Init (and in tests) it returns the ID itself.
func T(messageID string, templateData map[string]interface{}, pluralCount ...int) string {
	if localizer == nil {
		return messageID
	}

	cfg := &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	}
	if len(pluralCount) > 0 {
		cfg.PluralCount = pluralCount[0]
	}

	msg, err := localizer.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}

// SetLocale switches the active locale.
func SetLocale(lang string) {
	localizer = i18n.NewLocalizer(bundle, lang)
}
