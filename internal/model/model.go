package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// RaceType is the competition category tag of a race.
type RaceType string

const (
	TypeOpen         RaceType = "open"
	TypeChampionship RaceType = "championship"
	TypeFinals       RaceType = "finals"
	TypeOlympics     RaceType = "olympics"
	TypeAsianGames   RaceType = "asiangames"
)

// SessionKind classifies a single session within a race. Sessions without
// an explicit kind in the source data are group sessions.
type SessionKind string

const (
	KindGroup     SessionKind = "group"
	KindSemifinal SessionKind = "semifinal"
	KindFinal     SessionKind = "final"
)

// Sessions is an ordered mapping from session key (e.g. "r32", "final") to
// an ISO-8601 instant string. The source data lists sessions in
// chronological order and that insertion order is the canonical session
// order; iteration must preserve it, which a plain Go map cannot do.
type Sessions struct {
	keys   []string
	values map[string]string
}

// UnmarshalJSON decodes a JSON object while preserving key order.
func (s *Sessions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("sessions: expected object, got %v", tok)
	}

	s.keys = nil
	s.values = make(map[string]string)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("sessions: expected string key, got %v", keyTok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("sessions: value for %q: %w", key, err)
		}

		if _, dup := s.values[key]; !dup {
			s.keys = append(s.keys, key)
		}
		s.values[key] = value
	}

	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the sessions back as an object in insertion order.
func (s Sessions) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, key := range s.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.values[key])
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}

// Len returns the number of sessions.
func (s Sessions) Len() int { return len(s.keys) }

// Keys returns the session keys in insertion order. The returned slice is
// owned by the Sessions value and must not be modified.
func (s Sessions) Keys() []string { return s.keys }

// Get returns the raw instant string for key.
func (s Sessions) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// First returns the first session key, or "" when there are no sessions.
func (s Sessions) First() string {
	if len(s.keys) == 0 {
		return ""
	}
	return s.keys[0]
}

// Last returns the last session key, or "" when there are no sessions.
func (s Sessions) Last() string {
	if len(s.keys) == 0 {
		return ""
	}
	return s.keys[len(s.keys)-1]
}

// Instant parses the instant bound to key. The bool reports whether the key
// exists; a present but unparsable value returns an error.
func (s Sessions) Instant(key string) (time.Time, bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("session %q: %w", key, err)
	}
	return t, true, nil
}

// NewSessions builds a Sessions value from ordered key/instant pairs.
// Primarily used by tests and fixtures.
func NewSessions(pairs ...[2]string) Sessions {
	s := Sessions{values: make(map[string]string, len(pairs))}
	for _, p := range pairs {
		if _, dup := s.values[p[0]]; !dup {
			s.keys = append(s.keys, p[0])
		}
		s.values[p[0]] = p[1]
	}
	return s
}

// Race is one competition/tournament instance as loaded from the per-year
// data file. Races are read-only to the engine; every derived status is
// computed against a caller-supplied reference time, never stored back.
type Race struct {
	Slug            string                 `json:"slug"`
	LocaleKey       string                 `json:"localeKey,omitempty"`
	Name            string                 `json:"name"`
	EnglishName     string                 `json:"englishName,omitempty"`
	Location        string                 `json:"location,omitempty"`
	EnglishLocation string                 `json:"englishLocation,omitempty"`
	Sessions        Sessions               `json:"sessions"`
	SessionTypes    map[string]SessionKind `json:"sessionTypes,omitempty"`
	Type            RaceType               `json:"type"`
	Category        string                 `json:"category,omitempty"`
	IsMajor         bool                   `json:"isMajor,omitempty"`
	TBC             bool                   `json:"tbc,omitempty"`
	Canceled        bool                   `json:"canceled,omitempty"`
}

// SessionKindOf resolves the kind for a session key, defaulting to group
// when the race carries no explicit tag for it.
func (r Race) SessionKindOf(key string) SessionKind {
	if kind, ok := r.SessionTypes[key]; ok && kind != "" {
		return kind
	}
	return KindGroup
}

// Catalog is one year's worth of races in source order.
type Catalog struct {
	Year  int    `json:"year"`
	Races []Race `json:"races"`
}
