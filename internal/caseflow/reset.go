package caseflow

import (
	"context"
	"log/slog"

	"github.com/wallje/karina/internal/errors"
	"github.com/wallje/karina/internal/pool"
)

// ResetController ends the active case: the played scenario is marked in the
// shared rotation first, then the session state is cleared. A failed mark
// degrades to a one-shot warning so the learner can always start over.
type ResetController struct {
	pool   *pool.Manager
	store  *Store
	logger *slog.Logger
}

func NewResetController(pool *pool.Manager, store *Store, logger *slog.Logger) *ResetController {
	return &ResetController{
		pool:   pool,
		store:  store,
		logger: logger.With("source", "caseflow.ResetController"),
	}
}

// Reset marks the active scenario as played and clears the case. It is a
// no-op warning-free reset when no case is active.
func (r *ResetController) Reset(ctx context.Context) {
	if state, ok := r.store.Case(ctx); ok {
		if err := r.pool.MarkPlayed(state.ScenarioName); err != nil {
			r.logger.Warn("marking scenario as played failed",
				slog.String("szenario", state.ScenarioName), errors.SlogError(err))
			r.store.PutWarning(ctx,
				"Das gespielte Szenario konnte nicht vermerkt werden und kann erneut gezogen werden.")
		}
	}
	r.store.ClearCase(ctx)
}
