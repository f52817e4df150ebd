// Package scenarios implements the scenario import and export commands, so
// course content can be moved between installations as JSON.
package scenarios

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/wallje/karina/internal/db"
	"github.com/wallje/karina/internal/models"
	"github.com/wallje/karina/internal/repositories"
)

var Group = &cobra.Group{
	ID:    "scenarios",
	Title: "Scenario operations",
}

func init() {
	Export.Flags().String("sqlite-url", defaultSQLiteURL(), "SQLite URL")
	Export.Flags().String("out", "", "path to the JSON file, stdout when empty")
	Import.Flags().String("sqlite-url", defaultSQLiteURL(), "SQLite URL")
}

func defaultSQLiteURL() string {
	if url, ok := os.LookupEnv("KARINA_SQLITE_URL"); ok {
		return url
	}
	return "./karina.sqlite"
}

type scenarioJSON struct {
	Szenario     string  `json:"szenario"`
	Beschreibung string  `json:"beschreibung"`
	Untersuchung string  `json:"koerperliche_untersuchung"`
	Besonderheit *string `json:"besonderheit,omitempty"`
	Alter        *int64  `json:"alter,omitempty"`
	Geschlecht   *string `json:"geschlecht,omitempty"`
	AmbossInput  *string `json:"amboss_input,omitempty"`
}

var Export = &cobra.Command{
	Use:     "export",
	GroupID: "scenarios",
	Short:   "Export scenarios as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, closeDB, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		scenarios, err := repo.List(cmd.Context())
		if err != nil {
			return err
		}

		out := make([]scenarioJSON, len(scenarios))
		for i, scenario := range scenarios {
			out[i] = toJSON(scenario)
		}

		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encode scenarios: %w", err)
		}
		encoded = append(encoded, '\n')

		outPath, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		if outPath == "" {
			_, err = cmd.OutOrStdout().Write(encoded)
			return err
		}
		return os.WriteFile(outPath, encoded, 0o644)
	},
}

var Import = &cobra.Command{
	Use:     "import [file]",
	GroupID: "scenarios",
	Short:   "Import scenarios from JSON",
	Long: `Imports scenarios from a JSON file produced by export. Existing scenarios
with the same name are updated; their stored AMBOSS excerpts are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var incoming []scenarioJSON
		if err = json.Unmarshal(raw, &incoming); err != nil {
			return fmt.Errorf("decode scenarios: %w", err)
		}

		repo, closeDB, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		for _, item := range incoming {
			if err = repo.Upsert(cmd.Context(), fromJSON(item)); err != nil {
				return err
			}
		}
		cmd.Printf("imported %d scenarios\n", len(incoming))
		return nil
	},
}

func openRepository(cmd *cobra.Command) (*repositories.ScenarioRepository, func(), error) {
	url, err := cmd.Flags().GetString("sqlite-url")
	if err != nil {
		return nil, nil, err
	}
	dbs, err := db.NewDatabase(url)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	closeDB := func() {
		if err := dbs.Close(); err != nil {
			logger.Error("closing database", slog.Any("error", err))
		}
	}
	return repositories.NewScenarioRepository(dbs, logger), closeDB, nil
}

func toJSON(scenario models.Scenario) scenarioJSON {
	out := scenarioJSON{
		Szenario:     scenario.Name,
		Beschreibung: scenario.Description,
		Untersuchung: scenario.Examination,
	}
	if scenario.SpecialNote.Valid {
		out.Besonderheit = &scenario.SpecialNote.String
	}
	if scenario.Age.Valid {
		out.Alter = &scenario.Age.Int64
	}
	if scenario.Sex.Valid {
		out.Geschlecht = &scenario.Sex.String
	}
	if scenario.AmbossInput.Valid {
		out.AmbossInput = &scenario.AmbossInput.String
	}
	return out
}

func fromJSON(item scenarioJSON) models.Scenario {
	scenario := models.Scenario{
		Name:        item.Szenario,
		Description: item.Beschreibung,
		Examination: item.Untersuchung,
	}
	if item.Besonderheit != nil {
		scenario.SpecialNote = sql.NullString{String: *item.Besonderheit, Valid: true}
	}
	if item.Alter != nil {
		scenario.Age = sql.NullInt64{Int64: *item.Alter, Valid: true}
	}
	if item.Geschlecht != nil {
		scenario.Sex = sql.NullString{String: *item.Geschlecht, Valid: true}
	}
	if item.AmbossInput != nil {
		scenario.AmbossInput = sql.NullString{String: *item.AmbossInput, Valid: true}
	}
	return scenario
}
