package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsUnmarshalPreservesOrder(t *testing.T) {
	raw := `{"r32":"2025-06-10T09:00:00Z","r16":"2025-06-11T09:00:00Z","quarterfinal":"2025-06-12T13:00:00Z","semifinal":"2025-06-13T13:00:00Z","final":"2025-06-14T13:00:00Z"}`

	var s Sessions
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, []string{"r32", "r16", "quarterfinal", "semifinal", "final"}, s.Keys())
	assert.Equal(t, "r32", s.First())
	assert.Equal(t, "final", s.Last())
	assert.Equal(t, 5, s.Len())

	v, ok := s.Get("semifinal")
	require.True(t, ok)
	assert.Equal(t, "2025-06-13T13:00:00Z", v)
}

func TestSessionsMarshalRoundTrip(t *testing.T) {
	s := NewSessions(
		[2]string{"r32", "2025-06-10T09:00:00Z"},
		[2]string{"final", "2025-06-14T13:00:00Z"},
	)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"r32":"2025-06-10T09:00:00Z","final":"2025-06-14T13:00:00Z"}`, string(data))

	var back Sessions
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.Keys(), back.Keys())
}

func TestSessionsUnmarshalRejectsNonObject(t *testing.T) {
	var s Sessions
	assert.Error(t, json.Unmarshal([]byte(`["final"]`), &s))
}

func TestSessionsInstant(t *testing.T) {
	s := NewSessions(
		[2]string{"final", "2099-01-01T13:00:00Z"},
		[2]string{"broken", "not-a-date"},
	)

	instant, ok, err := s.Instant("final")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2099, 1, 1, 13, 0, 0, 0, time.UTC), instant)

	_, ok, err = s.Instant("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Instant("broken")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestRaceUnmarshal(t *testing.T) {
	raw := `{
		"slug": "china-open",
		"localeKey": "chinaOpen",
		"name": "中国公开赛",
		"englishName": "China Open",
		"location": "常州",
		"englishLocation": "Changzhou",
		"sessions": {"semifinal": "2025-09-20T05:00:00Z", "final": "2025-09-21T05:00:00Z"},
		"sessionTypes": {"semifinal": "semifinal", "final": "final"},
		"type": "open",
		"category": "1000",
		"isMajor": true
	}`

	var race Race
	require.NoError(t, json.Unmarshal([]byte(raw), &race))

	assert.Equal(t, "china-open", race.Slug)
	assert.Equal(t, TypeOpen, race.Type)
	assert.Equal(t, "1000", race.Category)
	assert.True(t, race.IsMajor)
	assert.Equal(t, []string{"semifinal", "final"}, race.Sessions.Keys())
	assert.Equal(t, KindFinal, race.SessionKindOf("final"))
}

func TestSessionKindOfDefaultsToGroup(t *testing.T) {
	race := Race{
		Sessions:     NewSessions([2]string{"r32", "2025-06-10T09:00:00Z"}),
		SessionTypes: map[string]SessionKind{"final": KindFinal},
	}

	assert.Equal(t, KindGroup, race.SessionKindOf("r32"))
	assert.Equal(t, KindGroup, race.SessionKindOf("unknown"))
	assert.Equal(t, KindFinal, race.SessionKindOf("final"))
}
