package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-emojiclock/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator localizes the command line output.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer

	// Languages lists the loaded locale codes, a subset of config.SupportedLanguages.
	Languages []string
}

// New loads the embedded locales of config.SupportedLanguages and selects
// config.DefaultLanguage. Locale files that fail to load are logged and skipped.
func New() *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return t
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if !slices.Contains(config.SupportedLanguages, langCode) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		t.Languages = append(t.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	t.localizer = i18n.NewLocalizer(bundle, config.DefaultLanguage)
	return t
}

// SetLanguage switches the output language. Regional tags such as "fr-CA"
// select their base language.
func (t *Translator) SetLanguage(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrLangParse, err)
	}
	base, _ := tag.Base()
	if !slices.Contains(t.Languages, base.String()) {
		return fmt.Errorf("%s: %q", config.ErrLangParse, lang)
	}
	t.localizer = i18n.NewLocalizer(t.bundle, base.String())
	return nil
}

// Localize translates key with optional template data. A non-zero count
// selects the plural form.
func (t *Translator) Localize(key string, data map[string]any, count int) (string, error) {
	if t.localizer == nil {
		return "", errors.New(config.ErrLocNotInit)
	}
	lc := &i18n.LocalizeConfig{MessageID: key, TemplateData: data}
	if count != 0 {
		lc.PluralCount = count
	}
	return t.localizer.Localize(lc)
}

// GetMsg translates key, falling back to fallback when the key is missing.
func (t *Translator) GetMsg(key, fallback string, data map[string]any) string {
	msg, err := t.Localize(key, data, 0)
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return fallback
	}
	return msg
}

// Summary describes an annotation run: the pluralized count of timed entries
// and the skipped ones, or the "none" message when count is zero.
func (t *Translator) Summary(count, skipped int) string {
	if count == 0 {
		return t.GetMsg(config.TKeyEntriesNone, config.FallbackEntriesNone, nil)
	}
	msg, err := t.Localize(config.TKeyEntriesSummary,
		map[string]any{"Count": count, "Skipped": skipped}, count)
	if err != nil {
		return fmt.Sprintf(config.FallbackEntriesSumm, count, skipped)
	}
	return msg
}
