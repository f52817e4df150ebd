package models

import (
	"database/sql"
	"time"
)

// RetrievalMode selects how the auxiliary reference text of a scenario is
// refreshed during case preparation.
type RetrievalMode string

const (
	// RetrievalModeAlways fetches fresh text and overwrites the stored value.
	RetrievalModeAlways RetrievalMode = "always"
	// RetrievalModeIfEmpty fetches only when no text is stored yet.
	RetrievalModeIfEmpty RetrievalMode = "if-empty"
	// RetrievalModeProbabilistic fetches with the configured probability.
	RetrievalModeProbabilistic RetrievalMode = "probabilistic"
)

func (m RetrievalMode) Valid() bool {
	switch m {
	case RetrievalModeAlways, RetrievalModeIfEmpty, RetrievalModeProbabilistic:
		return true
	}
	return false
}

// PinLifetime is how long an admin pin stays active before it expires and is
// cleared lazily on the next read.
const PinLifetime = 2 * time.Hour

// PersistenceSetting is the single durable admin configuration row: a
// scenario pin, a behaviour pin and a retrieval-mode pin, each with the time
// it was set.
type PersistenceSetting struct {
	ScenarioPin           string        `db:"scenario_pin"`
	ScenarioPinnedAt      sql.NullTime  `db:"scenario_pinned_at"`
	BehaviourPin          string        `db:"behaviour_pin"`
	BehaviourPinnedAt     sql.NullTime  `db:"behaviour_pinned_at"`
	RetrievalModePin      string        `db:"retrieval_mode"`
	RetrievalModePinnedAt sql.NullTime  `db:"retrieval_mode_pinned_at"`
	RefreshProbability    float64       `db:"refresh_probability"`
	UpdatedAt             time.Time     `db:"updated_at"`
}

func pinActive(value string, setAt sql.NullTime, now time.Time) bool {
	if value == "" || !setAt.Valid {
		return false
	}
	return now.Sub(setAt.Time) < PinLifetime
}

// ActiveScenarioPin returns the pinned scenario name, or "" when no pin is
// active or the pin has expired.
func (s PersistenceSetting) ActiveScenarioPin(now time.Time) string {
	if !pinActive(s.ScenarioPin, s.ScenarioPinnedAt, now) {
		return ""
	}
	return s.ScenarioPin
}

// ActiveBehaviourPin returns the pinned behaviour key, or "" when inactive.
func (s PersistenceSetting) ActiveBehaviourPin(now time.Time) string {
	if !pinActive(s.BehaviourPin, s.BehaviourPinnedAt, now) {
		return ""
	}
	return s.BehaviourPin
}

// ActiveRetrievalMode returns the pinned retrieval mode. Without an active
// and valid pin the engine falls back to RetrievalModeIfEmpty.
func (s PersistenceSetting) ActiveRetrievalMode(now time.Time) RetrievalMode {
	if !pinActive(s.RetrievalModePin, s.RetrievalModePinnedAt, now) {
		return RetrievalModeIfEmpty
	}
	mode := RetrievalMode(s.RetrievalModePin)
	if !mode.Valid() {
		return RetrievalModeIfEmpty
	}
	return mode
}

// PinRemaining returns how long the pin set at setAt stays active.
func PinRemaining(setAt sql.NullTime, now time.Time) time.Duration {
	if !setAt.Valid {
		return 0
	}
	remaining := PinLifetime - now.Sub(setAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
