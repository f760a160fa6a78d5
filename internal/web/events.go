package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"badmincal/internal/model"
	"badmincal/internal/schedule"
)

// sessionDTO is one session row of the table feed.
type sessionDTO struct {
	Key      string `json:"key"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Instant  string `json:"instant"`
	Occurred bool   `json:"occurred"`
	Featured bool   `json:"featured"`
}

// raceDTO is one annotated race of the table feed. The instants are the
// raw source values; timezone conversion and formatting belong to the
// rendering layer.
type raceDTO struct {
	Slug            string       `json:"slug"`
	Name            string       `json:"name"`
	Location        string       `json:"location,omitempty"`
	Type            string       `json:"type"`
	Category        string       `json:"category,omitempty"`
	IsMajor         bool         `json:"isMajor"`
	TBC             bool         `json:"tbc"`
	Canceled        bool         `json:"canceled"`
	HasOccurred     bool         `json:"hasOccurred"`
	IsNextRace      bool         `json:"isNextRace"`
	FeaturedInstant string       `json:"featuredInstant,omitempty"`
	FirstInstant    string       `json:"firstInstant,omitempty"`
	LastInstant     string       `json:"lastInstant,omitempty"`
	Sessions        []sessionDTO `json:"sessions"`
}

type eventsResponse struct {
	Year               int       `json:"year"`
	NextRaceSlug       string    `json:"nextRaceSlug,omitempty"`
	ShouldCollapsePast bool      `json:"shouldCollapsePast"`
	FeaturedSessions   []string  `json:"featuredSessions"`
	ReferenceTime      time.Time `json:"referenceTime"`
	Races              []raceDTO `json:"races"`
}

// handleEvents serves the annotated catalog for the table view.
//
// GET /api/events?year=2025&collapse=1&lang=zh
//   - year:     catalog year (defaults to the configured output year)
//   - collapse: "1" when the user opted into collapsing past races
//   - lang:     locale for resolved display names
func (s *Server) handleEvents(c *gin.Context) {
	year := s.cfg.CalendarOutputYear
	if raw := c.Query("year"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			year = n
		}
	}
	collapse := c.Query("collapse") == "1"
	lang := s.clampLocale(c.Query("lang"))

	cat, err := s.store.Year(year)
	if err != nil {
		respondError(c, err)
		return
	}

	now := s.now()
	featured := s.cfg.FeaturedSessions
	statuses := schedule.Classify(cat.Races, featured, now)

	resp := eventsResponse{
		Year:               cat.Year,
		NextRaceSlug:       schedule.NextRaceSlug(cat.Races, featured, now),
		ShouldCollapsePast: schedule.ShouldCollapsePast(cat.Races, now, collapse),
		FeaturedSessions:   featured,
		ReferenceTime:      now,
		Races:              make([]raceDTO, 0, len(cat.Races)),
	}

	for i, race := range cat.Races {
		resp.Races = append(resp.Races, s.raceDTO(race, statuses[i], featured, lang, now))
	}

	respondJSON(c, http.StatusOK, resp)
}

func (s *Server) raceDTO(race model.Race, status schedule.RaceStatus, featured []string, lang string, now time.Time) raceDTO {
	dto := raceDTO{
		Slug:        race.Slug,
		Name:        s.resolver.RaceName(race, lang),
		Location:    s.resolver.RaceLocation(race, lang),
		Type:        string(race.Type),
		Category:    race.Category,
		IsMajor:     race.IsMajor,
		TBC:         race.TBC,
		Canceled:    race.Canceled,
		HasOccurred: status.HasOccurred,
		IsNextRace:  status.IsNext,
		Sessions:    make([]sessionDTO, 0, race.Sessions.Len()),
	}

	if key := schedule.FeaturedKey(race, featured); key != "" {
		dto.FeaturedInstant, _ = race.Sessions.Get(key)
	}
	if key := race.Sessions.First(); key != "" {
		dto.FirstInstant, _ = race.Sessions.Get(key)
	}
	if key := race.Sessions.Last(); key != "" {
		dto.LastInstant, _ = race.Sessions.Get(key)
	}

	featuredSet := make(map[string]bool, len(featured))
	for _, key := range featured {
		featuredSet[key] = true
	}

	for _, key := range race.Sessions.Keys() {
		raw, _ := race.Sessions.Get(key)

		occurred := false
		if instant, ok, err := race.Sessions.Instant(key); ok && err == nil {
			occurred = schedule.SessionHasOccurred(instant, now)
		}

		dto.Sessions = append(dto.Sessions, sessionDTO{
			Key:      key,
			Kind:     string(race.SessionKindOf(key)),
			Name:     s.resolver.SessionName(key, lang),
			Instant:  raw,
			Occurred: occurred,
			Featured: featuredSet[key],
		})
	}

	return dto
}

func (s *Server) clampLocale(lang string) string {
	for _, locale := range s.cfg.Locales {
		if lang == locale {
			return lang
		}
	}
	return s.cfg.DefaultLocale()
}
