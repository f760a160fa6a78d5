// Package export compiles admitted races and sessions into iCalendar
// records and serializes them to the interchange text format. Compilation
// is a pure, synchronous transform over an already-loaded catalog: it
// either produces a complete calendar or fails as a whole, never a partial
// file silently missing events.
package export

import (
	"bytes"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"badmincal/internal/apperr"
	"badmincal/internal/filter"
	"badmincal/internal/i18n"
	"badmincal/internal/model"
)

// Exported events carry a fixed working window rather than a fabricated
// short duration: the source data binds each session to a nominal start
// instant with no authoritative length, so the calendar advertises the
// whole competition day. The interactive table keeps using the real
// instants; the two representations are intentionally different.
const (
	windowStartHour = 9
	windowEndHour   = 21
)

// productID identifies the emitting site in the calendar header.
const productID = "badminton-calendar.com"

// floating civil date-time, no zone designator.
const civilLayout = "20060102T150405"

// Record is one compiled calendar event before serialization.
type Record struct {
	UID         string
	Title       string
	Description string
	Location    string
	URL         string
	Start       time.Time
	End         time.Time
	Status      ical.ObjectStatus
	AlarmText   string // empty when no alarm is requested
}

// Compiler turns a catalog subset into an iCalendar payload.
type Compiler struct {
	resolver *i18n.Resolver
	siteURL  string
}

// NewCompiler constructs a Compiler bound to a text resolver and the public
// site base URL used for per-event links.
func NewCompiler(resolver *i18n.Resolver, siteURL string) *Compiler {
	return &Compiler{resolver: resolver, siteURL: siteURL}
}

// Records builds the calendar records for every admitted session of every
// admitted race, in catalog order. A malformed session instant fails the
// whole compilation with a data-integrity error.
func (c *Compiler) Records(catalog *model.Catalog, criteria filter.Criteria) ([]Record, error) {
	text := c.resolver.Calendar(criteria.Language)

	var records []Record
	for _, race := range catalog.Races {
		if !filter.Admit(race, criteria) {
			continue
		}

		raceName := c.resolver.RaceName(race, criteria.Language)
		location := c.resolver.RaceLocation(race, criteria.Language)

		for _, key := range race.Sessions.Keys() {
			if !filter.AdmitSession(race, key, criteria) {
				continue
			}

			instant, _, err := race.Sessions.Instant(key)
			if err != nil {
				return nil, apperr.Wrap(err, apperr.ErrDataIntegrity.Code, apperr.ErrDataIntegrity.Status,
					fmt.Sprintf("race %q: unparsable session instant", race.Slug))
			}

			kind := race.SessionKindOf(key)
			sessionName := c.resolver.SessionKindName(kind, criteria.Language)

			day := instant.UTC()
			start := time.Date(day.Year(), day.Month(), day.Day(), windowStartHour, 0, 0, 0, time.UTC)
			end := time.Date(day.Year(), day.Month(), day.Day(), windowEndHour, 0, 0, 0, time.UTC)

			status := ical.ObjectStatusConfirmed
			if race.TBC {
				status = ical.ObjectStatusTentative
			}

			rec := Record{
				UID:         fmt.Sprintf("%d-%s-%s", catalog.Year, race.Slug, key),
				Title:       fmt.Sprintf("%s: %s (%s)", text.TitlePrefix, sessionName, raceName),
				Description: fmt.Sprintf("%s%s\n%s%s", text.EventLabel, raceName, text.LocationLabel, location),
				Location:    location,
				URL:         fmt.Sprintf("%s/race/%s", c.siteURL, race.Slug),
				Start:       start,
				End:         end,
				Status:      status,
			}
			if criteria.AlarmMinutes > 0 {
				rec.AlarmText = fmt.Sprintf("%s - %s %s", raceName, sessionName, text.AlarmSuffix)
			}

			records = append(records, rec)
		}
	}
	return records, nil
}

// Compile runs the whole pipeline tail: records, then iCalendar
// serialization. A serialization failure is surfaced as the single
// top-level error with the encoder's reason attached.
func (c *Compiler) Compile(catalog *model.Catalog, criteria filter.Criteria) (string, error) {
	records, err := c.Records(catalog, criteria)
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, rec := range records {
		event := cal.AddEvent(rec.UID)
		event.SetProperty(ical.ComponentPropertyDtStart, rec.Start.Format(civilLayout))
		event.SetProperty(ical.ComponentPropertyDtEnd, rec.End.Format(civilLayout))
		event.SetSummary(rec.Title)
		event.SetDescription(rec.Description)
		if rec.Location != "" {
			event.SetLocation(rec.Location)
		}
		event.SetURL(rec.URL)
		event.SetStatus(rec.Status)

		if rec.AlarmText != "" {
			alarm := event.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(fmt.Sprintf("-PT%dM", criteria.AlarmMinutes))
			alarm.SetProperty(ical.ComponentPropertyDescription, rec.AlarmText)
			alarm.SetProperty(ical.ComponentProperty("REPEAT"), "0")
		}
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return "", apperr.Wrap(err, apperr.ErrSerialization.Code, apperr.ErrSerialization.Status,
			apperr.ErrSerialization.Message)
	}
	return buf.String(), nil
}
