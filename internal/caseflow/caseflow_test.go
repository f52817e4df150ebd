package caseflow_test

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/require"
	"github.com/wallje/karina/internal/caseflow"
	"github.com/wallje/karina/internal/models"
	"github.com/wallje/karina/internal/pool"
	"github.com/wallje/karina/internal/repositories"
	"github.com/wallje/karina/internal/retrieval"
	"github.com/wallje/karina/internal/testhelpers"
)

type fakeSettings struct {
	setting     models.PersistenceSetting
	pinCleared  bool
	clearPinErr error
}

func (s *fakeSettings) Get(_ context.Context) (models.PersistenceSetting, error) {
	return s.setting, nil
}

func (s *fakeSettings) ClearScenarioPin(_ context.Context) error {
	if s.clearPinErr != nil {
		return s.clearPinErr
	}
	s.pinCleared = true
	s.setting.ScenarioPin = ""
	return nil
}

type fakeScenarios struct {
	scenarios map[string]*models.Scenario
}

func (s *fakeScenarios) Get(_ context.Context, name string) (*models.Scenario, error) {
	scenario, ok := s.scenarios[name]
	if !ok {
		return nil, repositories.ErrScenarioNotFound
	}
	return scenario, nil
}

type fakeResolver struct {
	excerpt string
}

func (r *fakeResolver) Resolve(_ context.Context, scenario *models.Scenario, _ models.RetrievalMode, _ float64) (string, retrieval.Outcome) {
	return r.excerpt, retrieval.Outcome{Scenario: scenario.Name, Decision: retrieval.DecisionReused}
}

func appendizitis() *models.Scenario {
	return &models.Scenario{
		Name:        "Appendizitis",
		Description: "Wandernde Schmerzen in den rechten Unterbauch.",
		Examination: "Druckschmerz am McBurney-Punkt.",
		SpecialNote: sql.NullString{String: "Schwangerschaft ausschließen.", Valid: true},
		Age:         sql.NullInt64{Int64: 31, Valid: true},
		Sex:         sql.NullString{String: "n", Valid: true},
	}
}

func sessionContext(t *testing.T, sessions *scs.SessionManager) context.Context {
	t.Helper()
	ctx, err := sessions.Load(context.Background(), "")
	require.NoError(t, err)
	return ctx
}

type fixture struct {
	settings *fakeSettings
	pool     *pool.Manager
	store    *caseflow.Store
	preparer *caseflow.Preparer
	reset    *caseflow.ResetController
	ctx      context.Context
}

func newFixture(t *testing.T, settings *fakeSettings, poolScenarios []string, scenarios map[string]*models.Scenario) fixture {
	t.Helper()
	logger := testhelpers.NewLogger(io.Discard)
	sessions := scs.New()
	manager := pool.NewManager(poolScenarios, logger)
	store := caseflow.NewStore(sessions)
	preparer := caseflow.NewPreparer(settings, manager, &fakeScenarios{scenarios: scenarios},
		&fakeResolver{excerpt: "AMBOSS-Auszug."}, store, logger)
	return fixture{
		settings: settings,
		pool:     manager,
		store:    store,
		preparer: preparer,
		reset:    caseflow.NewResetController(manager, store, logger),
		ctx:      sessionContext(t, sessions),
	}
}

func TestPreparer_StartCase(t *testing.T) {
	f := newFixture(t, &fakeSettings{}, []string{"Appendizitis"},
		map[string]*models.Scenario{"Appendizitis": appendizitis()})

	state, err := f.preparer.StartCase(f.ctx)
	require.NoError(t, err)

	require.Equal(t, "Appendizitis", state.ScenarioName)
	require.Equal(t, "AMBOSS-Auszug.", state.AmbossExcerpt)
	require.NotEmpty(t, state.PatientName)
	require.NotEmpty(t, state.PatientJob)
	require.Contains(t, []string{"m", "w"}, state.PatientSex, "unspecified sex resolves to a concrete one")
	require.GreaterOrEqual(t, state.PatientAge, 26)
	require.LessOrEqual(t, state.PatientAge, 36)
	require.Contains(t, models.BehaviourKeys(), state.BehaviourKey)
	require.Contains(t, state.SystemPrompt, "Appendizitis")
	require.Contains(t, state.SystemPrompt, state.PatientName)
	require.Contains(t, state.SystemPrompt, "Du darfst die Diagnose nicht nennen.")
	require.Len(t, state.Messages, 3)
	require.Len(t, state.Transcript(), 2)
	require.False(t, state.StartedAt.IsZero())

	stored, ok := f.store.Case(f.ctx)
	require.True(t, ok)
	require.Equal(t, state.ScenarioName, stored.ScenarioName)
}

func TestPreparer_BehaviourPin(t *testing.T) {
	settings := &fakeSettings{setting: models.PersistenceSetting{
		BehaviourPin:      "knapp",
		BehaviourPinnedAt: sql.NullTime{Time: time.Now(), Valid: true},
	}}
	f := newFixture(t, settings, []string{"Appendizitis"},
		map[string]*models.Scenario{"Appendizitis": appendizitis()})

	state, err := f.preparer.StartCase(f.ctx)
	require.NoError(t, err)
	require.Equal(t, "knapp", state.BehaviourKey)
}

func TestPreparer_ScenarioPin(t *testing.T) {
	scenarios := map[string]*models.Scenario{
		"Appendizitis": appendizitis(),
		"Morbus Crohn": {Name: "Morbus Crohn", Description: "Chronische Darmentzündung."},
	}
	settings := &fakeSettings{setting: models.PersistenceSetting{
		ScenarioPin:      "Morbus Crohn",
		ScenarioPinnedAt: sql.NullTime{Time: time.Now(), Valid: true},
	}}
	f := newFixture(t, settings, []string{"Appendizitis", "Morbus Crohn"}, scenarios)

	for range 5 {
		state, err := f.preparer.StartCase(f.ctx)
		require.NoError(t, err)
		require.Equal(t, "Morbus Crohn", state.ScenarioName)
	}
}

func TestPreparer_StalePinIsClearedWithWarning(t *testing.T) {
	settings := &fakeSettings{setting: models.PersistenceSetting{
		ScenarioPin:      "Gelöschtes Szenario",
		ScenarioPinnedAt: sql.NullTime{Time: time.Now(), Valid: true},
	}}
	f := newFixture(t, settings, []string{"Appendizitis"},
		map[string]*models.Scenario{"Appendizitis": appendizitis()})

	state, err := f.preparer.StartCase(f.ctx)
	require.NoError(t, err)
	require.Equal(t, "Appendizitis", state.ScenarioName)
	require.True(t, settings.pinCleared)

	warning := f.store.PopWarning(f.ctx)
	require.Contains(t, warning, "Gelöschtes Szenario")
	require.Empty(t, f.store.PopWarning(f.ctx), "the warning is one-shot")
}

func TestPreparer_EmptyPool(t *testing.T) {
	f := newFixture(t, &fakeSettings{}, nil, nil)

	_, err := f.preparer.StartCase(f.ctx)
	require.ErrorIs(t, err, pool.ErrEmptyPool)
}

func TestResetController_Reset(t *testing.T) {
	f := newFixture(t, &fakeSettings{}, []string{"Appendizitis"},
		map[string]*models.Scenario{"Appendizitis": appendizitis()})

	_, err := f.preparer.StartCase(f.ctx)
	require.NoError(t, err)

	f.reset.Reset(f.ctx)

	_, ok := f.store.Case(f.ctx)
	require.False(t, ok, "the case is gone after a reset")
	_, played := f.pool.Snapshot()
	require.Equal(t, []string{"Appendizitis"}, played)
	require.Empty(t, f.store.PopWarning(f.ctx))
}

func TestResetController_MarkFailureStillClearsCase(t *testing.T) {
	f := newFixture(t, &fakeSettings{}, []string{"Appendizitis"},
		map[string]*models.Scenario{"Appendizitis": appendizitis()})

	_, err := f.preparer.StartCase(f.ctx)
	require.NoError(t, err)

	// Scenario removal between case start and reset makes the mark fail.
	f.pool.Reload([]string{"Morbus Crohn"})

	f.reset.Reset(f.ctx)

	_, ok := f.store.Case(f.ctx)
	require.False(t, ok, "the reset must complete despite the failed mark")
	require.NotEmpty(t, f.store.PopWarning(f.ctx))
}

func TestResetController_NoActiveCase(t *testing.T) {
	f := newFixture(t, &fakeSettings{}, []string{"Appendizitis"},
		map[string]*models.Scenario{"Appendizitis": appendizitis()})

	f.reset.Reset(f.ctx)

	_, played := f.pool.Snapshot()
	require.Empty(t, played)
	require.Empty(t, f.store.PopWarning(f.ctx))
}
