package repositories

import (
	"context"
	"database/sql"
	"github.com/wallje/karina/internal/db"
	"github.com/wallje/karina/internal/errors"
	"github.com/wallje/karina/internal/models"
	"log/slog"
)

var ErrScenarioNotFound = errors.NewSentinel("scenario not found")

type ScenarioRepository struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewScenarioRepository(dbs *db.Database, logger *slog.Logger) *ScenarioRepository {
	return &ScenarioRepository{
		dbs:    dbs,
		logger: logger.With("source", "ScenarioRepository"),
	}
}

const scenarioColumns = `id, szenario, beschreibung, koerperliche_untersuchung, besonderheit,
"alter", geschlecht, amboss_input, created_at, updated_at`

// Get fetches a scenario by its unique name.
func (r *ScenarioRepository) Get(ctx context.Context, name string) (*models.Scenario, error) {
	var scenario models.Scenario
	stmt := `SELECT ` + scenarioColumns + ` FROM szenarien WHERE szenario = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &scenario, stmt, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrScenarioNotFound, "get scenario", slog.String("szenario", name))
		}
		return nil, errors.Wrap(err, "get scenario", slog.String("szenario", name))
	}
	return &scenario, nil
}

// List returns all scenarios ordered by name.
func (r *ScenarioRepository) List(ctx context.Context) ([]models.Scenario, error) {
	var scenarios []models.Scenario
	stmt := `SELECT ` + scenarioColumns + ` FROM szenarien ORDER BY szenario`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &scenarios, stmt); err != nil {
		return nil, errors.Wrap(err, "list scenarios")
	}
	return scenarios, nil
}

// ListNames returns the names of all scenarios. The pool manager loads its
// rotation set from this.
func (r *ScenarioRepository) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	stmt := `SELECT szenario FROM szenarien ORDER BY szenario`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &names, stmt); err != nil {
		return nil, errors.Wrap(err, "list scenario names")
	}
	return names, nil
}

// Upsert inserts a scenario or updates the content columns of an existing one
// with the same name. The updated_at column is refreshed by a trigger.
func (r *ScenarioRepository) Upsert(ctx context.Context, scenario models.Scenario) error {
	stmt := `INSERT INTO szenarien (szenario, beschreibung, koerperliche_untersuchung, besonderheit,
                       "alter", geschlecht, amboss_input)
VALUES (:szenario, :beschreibung, :koerperliche_untersuchung, :besonderheit, :alter, :geschlecht, :amboss_input)
ON CONFLICT (szenario) DO UPDATE SET beschreibung              = excluded.beschreibung,
                                     koerperliche_untersuchung = excluded.koerperliche_untersuchung,
                                     besonderheit              = excluded.besonderheit,
                                     "alter"                   = excluded."alter",
                                     geschlecht                = excluded.geschlecht`
	if _, err := r.dbs.ReadWrite.NamedExecContext(ctx, stmt, scenario); err != nil {
		return errors.Wrap(err, "upsert scenario", slog.String("szenario", scenario.Name))
	}
	return nil
}

// Delete removes a scenario by name.
func (r *ScenarioRepository) Delete(ctx context.Context, name string) error {
	result, err := r.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM szenarien WHERE szenario = ?`, name)
	if err != nil {
		return errors.Wrap(err, "delete scenario", slog.String("szenario", name))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrap(ErrScenarioNotFound, "delete scenario", slog.String("szenario", name))
	}
	return nil
}

// UpdateAmbossInput overwrites the stored auxiliary reference text.
func (r *ScenarioRepository) UpdateAmbossInput(ctx context.Context, name string, text string) error {
	result, err := r.dbs.ReadWrite.ExecContext(ctx,
		`UPDATE szenarien SET amboss_input = ? WHERE szenario = ?`, text, name)
	if err != nil {
		return errors.Wrap(err, "update amboss input", slog.String("szenario", name))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrap(ErrScenarioNotFound, "update amboss input", slog.String("szenario", name))
	}
	return nil
}
