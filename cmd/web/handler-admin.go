package main

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wallje/karina/internal/errors"
	"github.com/wallje/karina/internal/models"
	"github.com/wallje/karina/internal/repositories"
	"github.com/wallje/karina/internal/retrieval"
)

type adminTemplateData struct {
	BaseTemplateData
	Scenarios          []models.Scenario
	PoolScenarios      []string
	PlayedScenarios    []string
	Outcomes           []retrieval.Outcome
	BehaviourKeys      []string
	ScenarioPin        string
	BehaviourPin       string
	RetrievalModePin   string
	RefreshProbability float64
}

func (app *application) adminDashboard(w http.ResponseWriter, r *http.Request) {
	setting, err := app.settings.Get(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	scenarios, err := app.scenarios.List(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	all, played := app.pool.Snapshot()
	now := time.Now()

	app.render(w, r, http.StatusOK, "admin", adminTemplateData{
		BaseTemplateData:   app.newBaseTemplateData(r),
		Scenarios:          scenarios,
		PoolScenarios:      all,
		PlayedScenarios:    played,
		Outcomes:           app.engine.RecentOutcomes(),
		BehaviourKeys:      models.BehaviourKeys(),
		ScenarioPin:        setting.ActiveScenarioPin(now),
		BehaviourPin:       setting.ActiveBehaviourPin(now),
		RetrievalModePin:   setting.RetrievalModePin,
		RefreshProbability: setting.RefreshProbability,
	})
}

// adminUpsertScenario creates or updates a scenario and reloads the rotation
// pool afterwards.
func (app *application) adminUpsertScenario(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PostFormValue("szenario"))
	description := strings.TrimSpace(r.PostFormValue("beschreibung"))
	examination := strings.TrimSpace(r.PostFormValue("untersuchung"))
	if name == "" || description == "" || examination == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	scenario := models.Scenario{
		Name:        name,
		Description: description,
		Examination: examination,
	}
	if note := strings.TrimSpace(r.PostFormValue("besonderheit")); note != "" {
		scenario.SpecialNote = sql.NullString{String: note, Valid: true}
	}
	if ageValue := r.PostFormValue("alter"); ageValue != "" {
		age, err := strconv.ParseInt(ageValue, 10, 64)
		if err != nil {
			app.clientError(w, r, http.StatusBadRequest)
			return
		}
		scenario.Age = sql.NullInt64{Int64: age, Valid: true}
	}
	if sex := r.PostFormValue("geschlecht"); sex != "" {
		if !models.Sex(sex).Valid() {
			app.clientError(w, r, http.StatusBadRequest)
			return
		}
		scenario.Sex = sql.NullString{String: sex, Valid: true}
	}

	if err := app.scenarios.Upsert(r.Context(), scenario); err != nil {
		app.serverError(w, r, err)
		return
	}
	if err := app.reloadPool(r); err != nil {
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (app *application) adminDeleteScenario(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("szenario")
	if name == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	if err := app.scenarios.Delete(r.Context(), name); err != nil {
		if errors.Is(err, repositories.ErrScenarioNotFound) {
			app.clientError(w, r, http.StatusNotFound)
			return
		}
		app.serverError(w, r, err)
		return
	}
	if err := app.reloadPool(r); err != nil {
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// adminPinScenario pins a scenario, or clears the pin when the value is
// empty.
func (app *application) adminPinScenario(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("scenario")
	if name == "" {
		if err := app.settings.ClearScenarioPin(r.Context()); err != nil {
			app.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	if _, err := app.scenarios.Get(r.Context(), name); err != nil {
		if errors.Is(err, repositories.ErrScenarioNotFound) {
			app.clientError(w, r, http.StatusBadRequest)
			return
		}
		app.serverError(w, r, err)
		return
	}
	if err := app.settings.PinScenario(r.Context(), name); err != nil {
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (app *application) adminPinBehaviour(w http.ResponseWriter, r *http.Request) {
	key := r.PostFormValue("behaviour")
	if key == "" {
		if err := app.settings.ClearBehaviourPin(r.Context()); err != nil {
			app.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	if _, ok := models.BehaviourInstruction(key); !ok {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	if err := app.settings.PinBehaviour(r.Context(), key); err != nil {
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (app *application) adminPinRetrieval(w http.ResponseWriter, r *http.Request) {
	mode := r.PostFormValue("mode")
	if mode == "" {
		if err := app.settings.ClearRetrievalModePin(r.Context()); err != nil {
			app.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	if !models.RetrievalMode(mode).Valid() {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	probability, err := strconv.ParseFloat(r.PostFormValue("probability"), 64)
	if err != nil || probability < 0 || probability > 1 {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	if err = app.settings.PinRetrievalMode(r.Context(), models.RetrievalMode(mode), probability); err != nil {
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (app *application) reloadPool(r *http.Request) error {
	names, err := app.scenarios.ListNames(r.Context())
	if err != nil {
		return errors.Wrap(err, "reload scenario pool")
	}
	app.pool.Reload(names)
	return nil
}
