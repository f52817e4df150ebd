// Package retrieval decides per case start whether the AMBOSS excerpt for a
// scenario is fetched fresh, reused from the store, or skipped.
package retrieval

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/wallje/karina/internal/errors"
	"github.com/wallje/karina/internal/models"
)

// Fetcher retrieves the current excerpt for a scenario from the knowledge
// base.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (string, error)
}

// Store persists fetched excerpts alongside the scenario.
type Store interface {
	UpdateAmbossInput(ctx context.Context, name string, text string) error
}

// Decision names what the engine did for one case start.
type Decision string

const (
	DecisionFetched Decision = "fetched"
	DecisionReused  Decision = "reused"
	DecisionSkipped Decision = "skipped"
)

// Outcome records one resolution for the admin area.
type Outcome struct {
	Scenario string
	Decision Decision
	Reason   string
	At       time.Time
}

const outcomeHistory = 20

// Engine applies the configured retrieval mode. A fetch or store failure
// never fails the case start: the stored excerpt, possibly empty, is used
// instead.
type Engine struct {
	fetcher Fetcher
	store   Store
	rand    func() float64
	logger  *slog.Logger

	mu     sync.Mutex
	recent []Outcome
}

func NewEngine(fetcher Fetcher, store Store, logger *slog.Logger) *Engine {
	return &Engine{
		fetcher: fetcher,
		store:   store,
		rand:    rand.Float64,
		logger:  logger.With("source", "retrieval.Engine"),
	}
}

// Resolve returns the excerpt to use for the scenario and records the
// decision. Fetch and store failures never fail the case start; both degrade
// to a skipped decision with the stored excerpt.
func (e *Engine) Resolve(ctx context.Context, scenario *models.Scenario, mode models.RetrievalMode, probability float64) (string, Outcome) {
	stored := ""
	if scenario.AmbossInput.Valid {
		stored = scenario.AmbossInput.String
	}

	var fetch bool
	switch mode {
	case models.RetrievalModeAlways:
		fetch = true
	case models.RetrievalModeIfEmpty:
		fetch = !scenario.HasAmbossInput()
	case models.RetrievalModeProbabilistic:
		fetch = e.rand() < probability
	default:
		return stored, e.record(scenario.Name, DecisionSkipped, "unknown_mode")
	}

	if !fetch {
		return stored, e.record(scenario.Name, DecisionReused, "")
	}

	text, err := e.fetcher.Fetch(ctx, scenario.Name)
	if err != nil {
		e.logger.Warn("excerpt fetch failed, keeping stored excerpt",
			slog.String("szenario", scenario.Name), errors.SlogError(err))
		return stored, e.record(scenario.Name, DecisionSkipped, "fetch_error")
	}

	if err := e.store.UpdateAmbossInput(ctx, scenario.Name, text); err != nil {
		e.logger.Warn("excerpt could not be persisted, keeping stored excerpt",
			slog.String("szenario", scenario.Name), errors.SlogError(err))
		return stored, e.record(scenario.Name, DecisionSkipped, "persistence_error")
	}

	return text, e.record(scenario.Name, DecisionFetched, "")
}

// RecentOutcomes returns the latest decisions, newest first.
func (e *Engine) RecentOutcomes() []Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Outcome, len(e.recent))
	for i, o := range e.recent {
		out[len(e.recent)-1-i] = o
	}
	return out
}

func (e *Engine) record(scenario string, decision Decision, reason string) Outcome {
	outcome := Outcome{Scenario: scenario, Decision: decision, Reason: reason, At: time.Now()}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.recent = append(e.recent, outcome)
	if len(e.recent) > outcomeHistory {
		e.recent = e.recent[len(e.recent)-outcomeHistory:]
	}
	return outcome
}
