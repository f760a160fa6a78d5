// Package schedule computes the temporal status of races and sessions
// against a reference time. Every function here is pure: races are never
// mutated and "now" is always an explicit argument, so the same inputs
// always classify the same way.
package schedule

import (
	"time"

	"badmincal/internal/model"
)

// GraceWindow keeps an event "live" for a while after its last listed
// session starts. Session values are start times, not end times, and the
// source data carries no duration, so a race should not flip to "past"
// the moment its final session begins.
const GraceWindow = 2 * time.Hour

// LastSessionInstant returns the instant bound to the last session key in
// catalog order. The bool is false when the race has no sessions or the
// last value does not parse; a date-less race never participates in
// time-based logic.
func LastSessionInstant(race model.Race) (time.Time, bool) {
	key := race.Sessions.Last()
	if key == "" {
		return time.Time{}, false
	}
	t, ok, err := race.Sessions.Instant(key)
	if !ok || err != nil {
		return time.Time{}, false
	}
	return t, true
}

// HasOccurred reports whether the race's last session, plus the grace
// window, is before now. Races without a usable last session have not
// occurred.
func HasOccurred(race model.Race, now time.Time) bool {
	last, ok := LastSessionInstant(race)
	if !ok {
		return false
	}
	return SessionHasOccurred(last, now)
}

// SessionHasOccurred reports whether a single session instant, plus the
// grace window, is before now.
func SessionHasOccurred(instant time.Time, now time.Time) bool {
	return instant.Add(GraceWindow).Before(now)
}

// FeaturedKey returns the session key used for compact single-column
// display: the first configured featured key present in the race's session
// map, falling back to the last session key when none of them is.
func FeaturedKey(race model.Race, featured []string) string {
	for _, key := range featured {
		if _, ok := race.Sessions.Get(key); ok {
			return key
		}
	}
	return race.Sessions.Last()
}

// FeaturedInstant returns the instant bound to the race's featured session
// key. The bool is false for date-less races and unparsable values.
func FeaturedInstant(race model.Race, featured []string) (time.Time, bool) {
	key := FeaturedKey(race, featured)
	if key == "" {
		return time.Time{}, false
	}
	t, ok, err := race.Sessions.Instant(key)
	if !ok || err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NextRaceIndex scans races in catalog order and returns the index of the
// first race whose featured session instant is strictly after now and which
// is neither TBC nor canceled. The scan short-circuits on the first match;
// later races are never flagged even when also eligible. Returns -1 when no
// race qualifies.
func NextRaceIndex(races []model.Race, featured []string, now time.Time) int {
	for i, race := range races {
		if race.TBC || race.Canceled {
			continue
		}
		instant, ok := FeaturedInstant(race, featured)
		if !ok {
			continue
		}
		if instant.After(now) {
			return i
		}
	}
	return -1
}

// NextRaceSlug returns the slug of the next race, or "" when none
// qualifies.
func NextRaceSlug(races []model.Race, featured []string, now time.Time) string {
	i := NextRaceIndex(races, featured, now)
	if i < 0 {
		return ""
	}
	return races[i].Slug
}

// OccurredCount counts races whose last session has occurred.
func OccurredCount(races []model.Race, now time.Time) int {
	count := 0
	for _, race := range races {
		if HasOccurred(race, now) {
			count++
		}
	}
	return count
}

// ShouldCollapsePast reports whether the table view should collapse past
// races: only when more than one race has occurred, at least one has not,
// and the user opted into collapsing. When everything has occurred there is
// nothing left to highlight, so nothing collapses.
func ShouldCollapsePast(races []model.Race, now time.Time, userWantsCollapse bool) bool {
	occurred := OccurredCount(races, now)
	return occurred > 1 && occurred < len(races) && userWantsCollapse
}

// RaceStatus is the derived per-race annotation consumed by the table view.
type RaceStatus struct {
	HasOccurred bool
	IsNext      bool
}

// Classify annotates every race with its occurred status and assigns the
// single next-race flag in one left-to-right pass.
func Classify(races []model.Race, featured []string, now time.Time) []RaceStatus {
	statuses := make([]RaceStatus, len(races))
	next := NextRaceIndex(races, featured, now)
	for i, race := range races {
		statuses[i] = RaceStatus{
			HasOccurred: HasOccurred(race, now),
			IsNext:      i == next,
		}
	}
	return statuses
}
