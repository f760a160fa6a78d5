package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badmincal/internal/catalog"
	"badmincal/internal/config"
	"badmincal/internal/i18n"
)

const testData = `{
	"races": [
		{
			"slug": "past-open",
			"name": "Past Open",
			"location": "Shanghai",
			"type": "open",
			"category": "750",
			"sessions": {"semifinal": "2025-05-10T05:00:00Z", "final": "2025-05-11T05:00:00Z"},
			"sessionTypes": {"semifinal": "semifinal", "final": "final"}
		},
		{
			"slug": "future-open",
			"name": "Future Open",
			"location": "Shenzhen",
			"type": "open",
			"category": "1000",
			"isMajor": true,
			"sessions": {"semifinal": "2025-08-10T05:00:00Z", "final": "2025-08-11T05:00:00Z"},
			"sessionTypes": {"semifinal": "semifinal", "final": "final"}
		},
		{
			"slug": "worlds",
			"name": "World Championship",
			"type": "championship",
			"sessions": {"final": "2025-09-01T05:00:00Z"},
			"sessionTypes": {"final": "final"}
		}
	]
}`

var testNow = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "2025.json"), []byte(testData), 0o644))

	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	cfg.LocalesDir = t.TempDir()
	cfg.CalendarOutputYear = 2025

	store := catalog.NewStore(dataDir, nil)
	resolver, err := i18n.NewResolver(cfg.LocalesDir, cfg.Locales, cfg.DefaultLocale(), nil)
	require.NoError(t, err)

	s := NewServer(cfg, store, resolver, nil)
	s.now = func() time.Time { return testNow }
	return s
}

func doRequest(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doRequest(t, newTestServer(t), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEventsFeed(t *testing.T) {
	w := doRequest(t, newTestServer(t), "/api/events?collapse=1")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data eventsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	resp := body.Data
	assert.Equal(t, 2025, resp.Year)
	assert.Equal(t, "future-open", resp.NextRaceSlug)
	// Only one race has occurred, so nothing collapses even when opted in.
	assert.False(t, resp.ShouldCollapsePast)
	require.Len(t, resp.Races, 3)

	past := resp.Races[0]
	assert.True(t, past.HasOccurred)
	assert.False(t, past.IsNextRace)
	assert.Equal(t, "2025-05-11T05:00:00Z", past.FeaturedInstant)
	require.Len(t, past.Sessions, 2)
	assert.True(t, past.Sessions[0].Occurred)
	assert.Equal(t, "semifinal", past.Sessions[0].Kind)

	future := resp.Races[1]
	assert.False(t, future.HasOccurred)
	assert.True(t, future.IsNextRace)
	assert.Equal(t, "2025-08-10T05:00:00Z", future.FirstInstant)
	assert.Equal(t, "2025-08-11T05:00:00Z", future.LastInstant)
	assert.False(t, future.Sessions[0].Occurred)
}

func TestEventsFeedUnknownYear(t *testing.T) {
	w := doRequest(t, newTestServer(t), "/api/events?year=1999")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestCalendarExport(t *testing.T) {
	w := doRequest(t, newTestServer(t), "/api/calendar?o=1&lc=all&sg=1&ss=1&sf=1&a=30")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="badminton-calendar_open_alarm-30.ics"`)
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")

	payload := w.Body.String()
	assert.Contains(t, payload, "BEGIN:VCALENDAR")
	// Both open races, two sessions each; the championship is filtered out.
	assert.Equal(t, 4, strings.Count(payload, "BEGIN:VEVENT"))
	assert.Contains(t, payload, "UID:2025-past-open-final")
	assert.Contains(t, payload, "UID:2025-future-open-semifinal")
	assert.NotContains(t, payload, "UID:2025-worlds-final")
	assert.Equal(t, 4, strings.Count(payload, "BEGIN:VALARM"))
	assert.Contains(t, payload, "TRIGGER:-PT30M")
}

func TestCalendarExportTierFilter(t *testing.T) {
	w := doRequest(t, newTestServer(t), "/api/calendar?o=1&lc=1000&sg=1&ss=1&sf=1")
	require.Equal(t, http.StatusOK, w.Code)

	payload := w.Body.String()
	assert.NotContains(t, payload, "UID:2025-past-open-final")
	assert.Contains(t, payload, "UID:2025-future-open-final")
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="badminton-calendar_open_1000.ics"`)
}

func TestCalendarExportSessionKindFilter(t *testing.T) {
	w := doRequest(t, newTestServer(t), "/api/calendar?o=1&sf=1")
	require.Equal(t, http.StatusOK, w.Code)

	payload := w.Body.String()
	// Finals only: one per open race.
	assert.Equal(t, 2, strings.Count(payload, "BEGIN:VEVENT"))
	assert.NotContains(t, payload, "semifinal")
}

func TestCalendarExportNoTypesSelected(t *testing.T) {
	w := doRequest(t, newTestServer(t), "/api/calendar")
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotContains(t, w.Body.String(), "BEGIN:VEVENT")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	doRequest(t, s, "/health")

	w := doRequest(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}