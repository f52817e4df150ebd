package repositories

import (
	"context"
	"github.com/wallje/karina/internal/db"
	"github.com/wallje/karina/internal/errors"
	"github.com/wallje/karina/internal/models"
	"log/slog"
	"time"
)

// SettingsRepository reads and writes the single admin configuration row.
// Expired pins are cleared lazily when the row is read.
type SettingsRepository struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewSettingsRepository(dbs *db.Database, logger *slog.Logger) *SettingsRepository {
	return &SettingsRepository{
		dbs:    dbs,
		logger: logger.With("source", "SettingsRepository"),
	}
}

const settingColumns = `scenario_pin, scenario_pinned_at, behaviour_pin, behaviour_pinned_at,
retrieval_mode, retrieval_mode_pinned_at, refresh_probability, updated_at`

// Get returns the current settings. Pins whose lifetime has passed are
// cleared in the store and zeroed in the returned value, so callers only ever
// observe active pins.
func (r *SettingsRepository) Get(ctx context.Context) (models.PersistenceSetting, error) {
	var setting models.PersistenceSetting
	stmt := `SELECT ` + settingColumns + ` FROM fall_persistenzen WHERE id = 1`
	if err := r.dbs.ReadOnly.GetContext(ctx, &setting, stmt); err != nil {
		return setting, errors.Wrap(err, "get settings")
	}

	now := time.Now()
	if setting.ScenarioPin != "" && setting.ActiveScenarioPin(now) == "" {
		if err := r.ClearScenarioPin(ctx); err != nil {
			return setting, err
		}
		setting.ScenarioPin = ""
		setting.ScenarioPinnedAt.Valid = false
	}
	if setting.BehaviourPin != "" && setting.ActiveBehaviourPin(now) == "" {
		if err := r.ClearBehaviourPin(ctx); err != nil {
			return setting, err
		}
		setting.BehaviourPin = ""
		setting.BehaviourPinnedAt.Valid = false
	}
	if setting.RetrievalModePin != "" && !pinStillSet(setting.RetrievalModePinnedAt.Valid, setting.RetrievalModePinnedAt.Time, now) {
		if err := r.ClearRetrievalModePin(ctx); err != nil {
			return setting, err
		}
		setting.RetrievalModePin = ""
		setting.RetrievalModePinnedAt.Valid = false
	}

	return setting, nil
}

func pinStillSet(valid bool, setAt time.Time, now time.Time) bool {
	return valid && now.Sub(setAt) < models.PinLifetime
}

// PinScenario pins the given scenario name for the pin lifetime.
func (r *SettingsRepository) PinScenario(ctx context.Context, name string) error {
	stmt := `UPDATE fall_persistenzen SET scenario_pin = ?, scenario_pinned_at = CURRENT_TIMESTAMP WHERE id = 1`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, name); err != nil {
		return errors.Wrap(err, "pin scenario", slog.String("szenario", name))
	}
	return nil
}

// ClearScenarioPin removes the scenario pin.
func (r *SettingsRepository) ClearScenarioPin(ctx context.Context) error {
	stmt := `UPDATE fall_persistenzen SET scenario_pin = '', scenario_pinned_at = NULL WHERE id = 1`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "clear scenario pin")
	}
	return nil
}

// PinBehaviour pins the given behaviour key for the pin lifetime.
func (r *SettingsRepository) PinBehaviour(ctx context.Context, key string) error {
	stmt := `UPDATE fall_persistenzen SET behaviour_pin = ?, behaviour_pinned_at = CURRENT_TIMESTAMP WHERE id = 1`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, key); err != nil {
		return errors.Wrap(err, "pin behaviour", slog.String("behaviour", key))
	}
	return nil
}

// ClearBehaviourPin removes the behaviour pin.
func (r *SettingsRepository) ClearBehaviourPin(ctx context.Context) error {
	stmt := `UPDATE fall_persistenzen SET behaviour_pin = '', behaviour_pinned_at = NULL WHERE id = 1`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "clear behaviour pin")
	}
	return nil
}

// PinRetrievalMode pins the retrieval mode and stores the probability used by
// the probabilistic mode.
func (r *SettingsRepository) PinRetrievalMode(ctx context.Context, mode models.RetrievalMode, probability float64) error {
	stmt := `UPDATE fall_persistenzen
SET retrieval_mode = ?, retrieval_mode_pinned_at = CURRENT_TIMESTAMP, refresh_probability = ?
WHERE id = 1`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, string(mode), probability); err != nil {
		return errors.Wrap(err, "pin retrieval mode", slog.String("mode", string(mode)))
	}
	return nil
}

// ClearRetrievalModePin removes the retrieval-mode pin.
func (r *SettingsRepository) ClearRetrievalModePin(ctx context.Context) error {
	stmt := `UPDATE fall_persistenzen SET retrieval_mode = '', retrieval_mode_pinned_at = NULL WHERE id = 1`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "clear retrieval mode pin")
	}
	return nil
}
