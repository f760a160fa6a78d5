// Package filter implements the multi-dimensional admission test applied to
// the race catalog before export, plus the strongly-typed parser for the
// query-string criteria the export endpoint accepts.
package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"badmincal/internal/model"
)

// MinCategoryAll disables the tier gate for open events.
const MinCategoryAll = "all"

// Criteria is the immutable, caller-supplied filter/alarm/locale selection
// governing one export.
type Criteria struct {
	IncludeOpen         bool
	MinCategory         string
	IncludeChampionship bool
	IncludeFinals       bool
	IncludeOlympics     bool
	IncludeAsianGames   bool
	OnlyMajor           bool
	IncludeGroup        bool
	IncludeSemifinal    bool
	IncludeFinal        bool
	AlarmMinutes        int
	Language            string
}

// Parse builds Criteria from the export endpoint's query parameters.
// Booleans are encoded as "1"/"0"; anything other than "1" is false.
// Out-of-range or unparsable values are clamped or defaulted rather than
// rejected: a negative or non-numeric alarm becomes 0, an unsupported
// language falls back to defaultLanguage, and an empty tier means "all".
func Parse(values url.Values, supportedLanguages []string, defaultLanguage string) Criteria {
	c := Criteria{
		IncludeOpen:         values.Get("o") == "1",
		MinCategory:         values.Get("lc"),
		IncludeChampionship: values.Get("c") == "1",
		IncludeFinals:       values.Get("f") == "1",
		IncludeOlympics:     values.Get("y") == "1",
		IncludeAsianGames:   values.Get("g") == "1",
		OnlyMajor:           values.Get("m") == "1",
		IncludeGroup:        values.Get("sg") == "1",
		IncludeSemifinal:    values.Get("ss") == "1",
		IncludeFinal:        values.Get("sf") == "1",
		Language:            values.Get("lang"),
	}

	if c.MinCategory == "" {
		c.MinCategory = MinCategoryAll
	}

	if n, err := strconv.Atoi(values.Get("a")); err == nil && n > 0 {
		c.AlarmMinutes = n
	}

	supported := false
	for _, lang := range supportedLanguages {
		if c.Language == lang {
			supported = true
			break
		}
	}
	if !supported {
		c.Language = defaultLanguage
	}

	return c
}

// Admit is the race-level admission test: the race's type must have its
// flag enabled, open events must clear the tier gate, and the major gate
// applies last. All gates must pass.
func Admit(race model.Race, c Criteria) bool {
	typeMatch := (race.Type == model.TypeOpen && c.IncludeOpen) ||
		(race.Type == model.TypeChampionship && c.IncludeChampionship) ||
		(race.Type == model.TypeFinals && c.IncludeFinals) ||
		(race.Type == model.TypeOlympics && c.IncludeOlympics) ||
		(race.Type == model.TypeAsianGames && c.IncludeAsianGames)
	if !typeMatch {
		return false
	}

	if race.Type == model.TypeOpen && c.MinCategory != MinCategoryAll {
		// A missing or non-numeric category fails the comparison and
		// excludes the race, matching the upstream data contract.
		raceTier, err := strconv.Atoi(race.Category)
		if err != nil {
			return false
		}
		minTier, err := strconv.Atoi(c.MinCategory)
		if err == nil && raceTier < minTier {
			return false
		}
	}

	if c.OnlyMajor && !race.IsMajor {
		return false
	}

	return true
}

// AdmitSession is the session-level admission test, applied independently
// per session inside an admitted race. Unknown kinds follow the group flag.
func AdmitSession(race model.Race, sessionKey string, c Criteria) bool {
	switch race.SessionKindOf(sessionKey) {
	case model.KindSemifinal:
		return c.IncludeSemifinal
	case model.KindFinal:
		return c.IncludeFinal
	default:
		return c.IncludeGroup
	}
}

// FileName builds the download file name from the enabled filter tokens.
func FileName(c Criteria) string {
	parts := []string{"badminton-calendar"}

	if c.IncludeOpen {
		parts = append(parts, "open")
		if c.MinCategory != MinCategoryAll {
			parts = append(parts, c.MinCategory)
		}
	}
	if c.IncludeChampionship {
		parts = append(parts, "championship")
	}
	if c.IncludeFinals {
		parts = append(parts, "finals")
	}
	if c.IncludeOlympics {
		parts = append(parts, "olympics")
	}
	if c.IncludeAsianGames {
		parts = append(parts, "asiangames")
	}
	if c.AlarmMinutes > 0 {
		parts = append(parts, fmt.Sprintf("alarm-%d", c.AlarmMinutes))
	}

	return strings.Join(parts, "_") + ".ics"
}
