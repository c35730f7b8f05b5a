// Package i18n provides the interface string tables for the bot.
// It is a pure lookup: Text resolves a key for a locale, formats optional
// arguments, and falls back to English (then to the key itself) when a
// locale or key has no entry.
package i18n

import "fmt"

// Locale is an interface language code.
type Locale string

const (
	LocaleRU Locale = "ru"
	LocaleEN Locale = "en"
	LocaleDE Locale = "de"
	LocaleFR Locale = "fr"
	LocaleES Locale = "es"
	LocaleIT Locale = "it"
)

// DefaultLocale is assigned to new sessions.
const DefaultLocale = LocaleRU

var supported = []Locale{LocaleRU, LocaleEN, LocaleDE, LocaleFR, LocaleES, LocaleIT}

// Supported returns the fixed list of selectable interface locales.
func Supported() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

// IsSupported reports whether code names a selectable interface locale.
func IsSupported(code string) bool {
	for _, l := range supported {
		if string(l) == code {
			return true
		}
	}
	return false
}

// Text resolves key for the given locale and formats args into it.
// Locales without their own table fall back to English.
func Text(loc Locale, key string, args ...any) string {
	table, ok := tables[loc]
	if !ok {
		table = tables[LocaleEN]
	}
	format, ok := table[key]
	if !ok {
		format, ok = tables[LocaleEN][key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// LanguageName returns the display name of a locale in the viewer's locale.
func LanguageName(viewer Locale, code Locale) string {
	return Text(viewer, "language_name_"+string(code))
}
