// Package i18n resolves locale-qualified display text with explicit layered
// fallback chains. Every lookup falls through tier by tier and terminates at
// a non-empty raw key or name, so resolution never fails and never returns
// an empty string for a named entity.
package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode"

	"badmincal/internal/model"
)

// englishLocale is the base locale for which the data file's English
// name/location variants apply.
const englishLocale = "en"

// CalendarText holds the per-locale template fragments used by the
// calendar export.
type CalendarText struct {
	TitlePrefix   string `json:"titlePrefix"`
	EventLabel    string `json:"eventLabel"`
	LocationLabel string `json:"locationLabel"`
	AlarmSuffix   string `json:"alarmSuffix"`
}

// Table is one locale's translation table.
type Table struct {
	Races        map[string]string `json:"races"`
	Schedule     map[string]string `json:"schedule"`
	SessionTypes map[string]string `json:"sessionTypes"`
	Calendar     CalendarText      `json:"calendar"`
}

// localizationFile mirrors the on-disk localization.json layout, which
// nests everything under an "All" namespace.
type localizationFile struct {
	All Table `json:"All"`
}

// Resolver provides locale-aware text lookups over the loaded tables plus
// the configured session-kind fallback names.
type Resolver struct {
	tables        map[string]Table
	defaultLocale string
	kindFallbacks map[string]string
}

// defaultCalendarText matches the site's original hard-coded export
// strings; locales that do not override them inherit these.
var defaultCalendarText = CalendarText{
	TitlePrefix:   "羽毛球",
	EventLabel:    "赛事：",
	LocationLabel: "地点：",
	AlarmSuffix:   "即将开始",
}

// NewResolver loads <dir>/<locale>/localization.json for every supported
// locale. A missing file yields an empty table for that locale (the
// fallback chains cover it); a present but malformed file is an error.
func NewResolver(dir string, locales []string, defaultLocale string, kindFallbacks map[string]string) (*Resolver, error) {
	r := &Resolver{
		tables:        make(map[string]Table, len(locales)),
		defaultLocale: defaultLocale,
		kindFallbacks: kindFallbacks,
	}

	for _, locale := range locales {
		path := filepath.Join(dir, locale, "localization.json")
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				r.tables[locale] = Table{}
				continue
			}
			return nil, fmt.Errorf("i18n: read %s: %w", path, err)
		}

		var file localizationFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", path, err)
		}
		r.tables[locale] = file.All
	}

	return r, nil
}

// Supported reports whether the locale has a loaded table.
func (r *Resolver) Supported(locale string) bool {
	_, ok := r.tables[locale]
	return ok
}

func (r *Resolver) table(locale string) Table {
	if t, ok := r.tables[locale]; ok {
		return t
	}
	return r.tables[r.defaultLocale]
}

// RaceName resolves a race's display name: localized lookup by localeKey,
// then the English name for the English locale, then the data file name.
func (r *Resolver) RaceName(race model.Race, locale string) string {
	if race.LocaleKey != "" {
		if name, ok := r.table(locale).Races[race.LocaleKey]; ok && name != "" {
			return name
		}
	}
	if locale == englishLocale && race.EnglishName != "" {
		return race.EnglishName
	}
	if race.Name != "" {
		return race.Name
	}
	return race.Slug
}

// RaceLocation resolves a race's venue text analogously to RaceName.
func (r *Resolver) RaceLocation(race model.Race, locale string) string {
	if locale == englishLocale && race.EnglishLocation != "" {
		return race.EnglishLocation
	}
	return race.Location
}

// SessionName resolves the display name for a session key (table rows):
// localized schedule string, then the key with its first rune upper-cased.
func (r *Resolver) SessionName(sessionKey, locale string) string {
	if name, ok := r.table(locale).Schedule[sessionKey]; ok && name != "" {
		return name
	}
	return capitalize(sessionKey)
}

// SessionKindName resolves the display name for a session kind: localized
// string, then the configured fallback name, then the capitalized raw kind.
func (r *Resolver) SessionKindName(kind model.SessionKind, locale string) string {
	if name, ok := r.table(locale).SessionTypes[string(kind)]; ok && name != "" {
		return name
	}
	if name, ok := r.kindFallbacks[string(kind)]; ok && name != "" {
		return name
	}
	return capitalize(string(kind))
}

// Calendar returns the calendar text fragments for a locale, with the
// original export strings filling any gaps.
func (r *Resolver) Calendar(locale string) CalendarText {
	text := r.table(locale).Calendar
	if text.TitlePrefix == "" {
		text.TitlePrefix = defaultCalendarText.TitlePrefix
	}
	if text.EventLabel == "" {
		text.EventLabel = defaultCalendarText.EventLabel
	}
	if text.LocationLabel == "" {
		text.LocationLabel = defaultCalendarText.LocationLabel
	}
	if text.AlarmSuffix == "" {
		text.AlarmSuffix = defaultCalendarText.AlarmSuffix
	}
	return text
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}
