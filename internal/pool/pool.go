// Package pool tracks which scenarios have been played across all sessions
// and hands out the next one. The played set lives in memory only, so a
// restart starts a fresh rotation.
package pool

import (
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/wallje/karina/internal/errors"
)

// ErrEmptyPool is returned when no scenarios are configured at all.
var ErrEmptyPool = errors.NewSentinel("scenario pool is empty")

// Manager owns the rotation state. All methods are safe for concurrent use;
// the played set is shared between every session.
type Manager struct {
	mu     sync.Mutex
	all    []string
	played map[string]bool
	pick   func(n int) int
	logger *slog.Logger
}

func NewManager(scenarios []string, logger *slog.Logger) *Manager {
	return &Manager{
		all:    slices.Clone(scenarios),
		played: make(map[string]bool),
		pick:   rand.IntN,
		logger: logger.With("source", "pool.Manager"),
	}
}

// DrawNext selects the scenario for a new case. A non-empty pinned name that
// is part of the pool wins unconditionally and does not touch the played set.
// Otherwise an unplayed scenario is chosen at random; when every scenario has
// been played the set is reset first so the rotation starts over.
func (m *Manager) DrawNext(pinned string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.all) == 0 {
		return "", ErrEmptyPool
	}

	if pinned != "" {
		if slices.Contains(m.all, pinned) {
			return pinned, nil
		}
		m.logger.Warn("ignoring pin for unknown scenario", slog.String("szenario", pinned))
	}

	candidates := m.unplayed()
	if len(candidates) == 0 {
		m.played = make(map[string]bool)
		candidates = slices.Clone(m.all)
		m.logger.Info("all scenarios played, starting a new rotation")
	}

	return candidates[m.pick(len(candidates))], nil
}

// MarkPlayed records that the scenario has been played. Marking an already
// played scenario is a no-op; marking a name outside the pool is an error.
func (m *Manager) MarkPlayed(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(m.all, name) {
		return errors.New("scenario not in pool", slog.String("szenario", name))
	}
	m.played[name] = true
	return nil
}

// Reload replaces the pool contents, e.g. after scenarios were added or
// removed in the admin area. Played marks for scenarios that no longer exist
// are dropped.
func (m *Manager) Reload(scenarios []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.all = slices.Clone(scenarios)
	for name := range m.played {
		if !slices.Contains(m.all, name) {
			delete(m.played, name)
		}
	}
}

// Snapshot reports the pool contents and which entries have been played,
// for display in the admin area.
func (m *Manager) Snapshot() (all []string, played []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all = slices.Clone(m.all)
	for _, name := range m.all {
		if m.played[name] {
			played = append(played, name)
		}
	}
	return all, played
}

func (m *Manager) unplayed() []string {
	var candidates []string
	for _, name := range m.all {
		if !m.played[name] {
			candidates = append(candidates, name)
		}
	}
	return candidates
}
