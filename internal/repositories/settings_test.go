package repositories_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wallje/karina/internal/models"
	"github.com/wallje/karina/internal/repositories"
	"github.com/wallje/karina/internal/testhelpers"
)

func TestSettingsRepository_Defaults(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewSettingsRepository(dbs, testhelpers.NewLogger(io.Discard))

	setting, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.Empty(t, setting.ActiveScenarioPin(time.Now()))
	require.Empty(t, setting.ActiveBehaviourPin(time.Now()))
	require.Equal(t, models.RetrievalModeIfEmpty, setting.ActiveRetrievalMode(time.Now()))
	require.InDelta(t, 0.5, setting.RefreshProbability, 0.0001)
}

func TestSettingsRepository_Pins(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewSettingsRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.PinScenario(ctx, "Appendizitis"))
	require.NoError(t, repo.PinBehaviour(ctx, "knapp"))
	require.NoError(t, repo.PinRetrievalMode(ctx, models.RetrievalModeProbabilistic, 0.25))

	setting, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "Appendizitis", setting.ActiveScenarioPin(now))
	require.Equal(t, "knapp", setting.ActiveBehaviourPin(now))
	require.Equal(t, models.RetrievalModeProbabilistic, setting.ActiveRetrievalMode(now))
	require.InDelta(t, 0.25, setting.RefreshProbability, 0.0001)

	require.NoError(t, repo.ClearScenarioPin(ctx))
	require.NoError(t, repo.ClearBehaviourPin(ctx))
	require.NoError(t, repo.ClearRetrievalModePin(ctx))

	setting, err = repo.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, setting.ActiveScenarioPin(now))
	require.Empty(t, setting.ActiveBehaviourPin(now))
	require.Equal(t, models.RetrievalModeIfEmpty, setting.ActiveRetrievalMode(now))
}

func TestSettingsRepository_ExpiredPinsClearedOnRead(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewSettingsRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	// Backdate the pins beyond the pin lifetime.
	_, err := dbs.ReadWrite.Exec(`UPDATE fall_persistenzen
SET scenario_pin             = 'Appendizitis',
    scenario_pinned_at       = datetime('now', '-3 hours'),
    behaviour_pin            = 'knapp',
    behaviour_pinned_at      = datetime('now', '-3 hours'),
    retrieval_mode           = 'always',
    retrieval_mode_pinned_at = datetime('now', '-3 hours')
WHERE id = 1`)
	require.NoError(t, err)

	setting, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, setting.ScenarioPin)
	require.Empty(t, setting.BehaviourPin)
	require.Empty(t, setting.RetrievalModePin)

	// The clear is persisted, not just filtered from the returned value.
	var stored string
	require.NoError(t, dbs.ReadOnly.Get(&stored, `SELECT scenario_pin FROM fall_persistenzen WHERE id = 1`))
	require.Empty(t, stored)
}
