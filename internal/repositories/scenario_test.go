package repositories_test

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wallje/karina/internal/models"
	"github.com/wallje/karina/internal/repositories"
	"github.com/wallje/karina/internal/testhelpers"
)

func TestScenarioRepository_Get(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewScenarioRepository(dbs, testhelpers.NewLogger(io.Discard))

	tests := []struct {
		name     string
		scenario string
		wantErr  error
		check    func(t *testing.T, scenario *models.Scenario)
	}{
		{
			name:     "with optional fields",
			scenario: "Appendizitis",
			check: func(t *testing.T, scenario *models.Scenario) {
				require.Equal(t, "Appendizitis", scenario.Name)
				require.True(t, scenario.SpecialNote.Valid)
				require.Equal(t, int64(31), scenario.Age.Int64)
				require.Equal(t, "n", scenario.Sex.String)
				require.True(t, scenario.HasAmbossInput())
				require.False(t, scenario.CreatedAt.IsZero())
				require.False(t, scenario.UpdatedAt.IsZero())
			},
		},
		{
			name:     "without optional fields",
			scenario: "Morbus Crohn",
			check: func(t *testing.T, scenario *models.Scenario) {
				require.False(t, scenario.SpecialNote.Valid)
				require.False(t, scenario.HasAmbossInput())
			},
		},
		{
			name:     "empty amboss input is not an excerpt",
			scenario: "Cholezystolithiasis",
			check: func(t *testing.T, scenario *models.Scenario) {
				require.True(t, scenario.AmbossInput.Valid)
				require.False(t, scenario.HasAmbossInput())
			},
		},
		{
			name:     "unknown scenario",
			scenario: "Nonexistent",
			wantErr:  repositories.ErrScenarioNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario, err := repo.Get(context.Background(), tt.scenario)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, scenario)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, scenario)
			tt.check(t, scenario)
		})
	}
}

func TestScenarioRepository_ListNames(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewScenarioRepository(dbs, testhelpers.NewLogger(io.Discard))

	names, err := repo.ListNames(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Appendizitis", "Cholezystolithiasis", "Morbus Crohn"}, names)
}

func TestScenarioRepository_Upsert(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewScenarioRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	// Insert a new scenario.
	err := repo.Upsert(ctx, models.Scenario{
		Name:        "Pankreatitis",
		Description: "Gürtelförmige Oberbauchschmerzen nach Alkoholkonsum.",
		Examination: "Druckschmerz im Oberbauch, Gummibauch.",
		Age:         sql.NullInt64{Int64: 44, Valid: true},
		Sex:         sql.NullString{String: "m", Valid: true},
	})
	require.NoError(t, err)

	scenario, err := repo.Get(ctx, "Pankreatitis")
	require.NoError(t, err)
	require.Equal(t, int64(44), scenario.Age.Int64)

	// Updating an existing scenario keeps the stored auxiliary text.
	err = repo.Upsert(ctx, models.Scenario{
		Name:        "Appendizitis",
		Description: "Aktualisierte Beschreibung.",
		Examination: "Aktualisierter Untersuchungsbefund.",
	})
	require.NoError(t, err)

	scenario, err = repo.Get(ctx, "Appendizitis")
	require.NoError(t, err)
	require.Equal(t, "Aktualisierte Beschreibung.", scenario.Description)
	require.True(t, scenario.HasAmbossInput(), "upsert must not clobber amboss_input")
}

func TestScenarioRepository_Delete(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewScenarioRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "Morbus Crohn"))

	_, err := repo.Get(ctx, "Morbus Crohn")
	require.ErrorIs(t, err, repositories.ErrScenarioNotFound)

	err = repo.Delete(ctx, "Morbus Crohn")
	require.ErrorIs(t, err, repositories.ErrScenarioNotFound)
}

func TestScenarioRepository_UpdateAmbossInput(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewScenarioRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	require.NoError(t, repo.UpdateAmbossInput(ctx, "Morbus Crohn", "Frischer AMBOSS-Auszug."))

	scenario, err := repo.Get(ctx, "Morbus Crohn")
	require.NoError(t, err)
	require.Equal(t, "Frischer AMBOSS-Auszug.", scenario.AmbossInput.String)

	err = repo.UpdateAmbossInput(ctx, "Nonexistent", "text")
	require.ErrorIs(t, err, repositories.ErrScenarioNotFound)
}
