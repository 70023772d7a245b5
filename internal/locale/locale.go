// Package locale translates display strings with go-i18n. Chinese is the
// source language: enumerated names fall back to their Chinese form when
// a locale has no entry for them.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

type catalog struct {
	bundle *i18n.Bundle
	langs  []string
}

var load = sync.OnceValue(loadCatalog)

// loadCatalog registers every embedded active.<lang>.json file.
func loadCatalog() catalog {
	bundle := i18n.NewBundle(language.Chinese)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return catalog{bundle: bundle}
	}

	var langs []string
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

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		langs = append(langs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}
	slices.Sort(langs)
	return catalog{bundle: bundle, langs: langs}
}

// Languages lists the loaded display languages.
func Languages() []string {
	return slices.Clone(load().langs)
}

// Translator renders messages in one language. It is safe for concurrent use.
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

// New returns a Translator for lang, which must be one of Languages.
func New(lang string) (*Translator, error) {
	c := load()
	tag, err := language.Parse(lang)
	if err != nil || !slices.Contains(c.langs, lang) {
		return nil, fmt.Errorf("%s: %q", config.ErrLangUnsupported, lang)
	}
	return &Translator{lang: lang, localizer: i18n.NewLocalizer(c.bundle, tag.String())}, nil
}

// Lang is the language code the Translator was built for.
func (t *Translator) Lang() string { return t.lang }

// Msg translates a key, returning the key itself when it is missing.
func (t *Translator) Msg(key string) string {
	return t.Fmt(key, nil)
}

// Fmt translates a templated message.
func (t *Translator) Fmt(key string, data map[string]any) string {
	msg, ok := t.lookup(key, data)
	if !ok {
		return key
	}
	return msg
}

// Named is an enumerated value with a Chinese name and a stable key.
type Named interface {
	String() string
	Key() string
}

// Name translates an enumerated value of the given kind (config.Name*).
func (t *Translator) Name(kind string, n Named) string {
	if msg, ok := t.lookup(kind+"_"+n.Key(), nil); ok {
		return msg
	}
	return n.String()
}

func (t *Translator) lookup(key string, data map[string]any) (string, bool) {
	if t == nil || t.localizer == nil {
		return "", false
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return "", false
	}
	return msg, true
}
