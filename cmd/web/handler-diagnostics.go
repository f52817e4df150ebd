package main

import (
	"net/http"
	"strings"

	"github.com/wallje/karina/internal/caseflow"
	"github.com/wallje/karina/internal/errors"
)

type diagnosticsTemplateData struct {
	BaseTemplateData
	Rounds        []caseflow.DiagnosticRound
	Differentials string
}

func (app *application) diagnostics(w http.ResponseWriter, r *http.Request) {
	state, _ := app.caseStore.Case(r.Context())

	app.render(w, r, http.StatusOK, "diagnostics", diagnosticsTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Rounds:           state.Rounds,
		Differentials:    state.Differentials,
	})
}

// diagnosticsSubmit records the differential diagnoses and one round of
// requested diagnostics, and generates the findings for that round.
func (app *application) diagnosticsSubmit(w http.ResponseWriter, r *http.Request) {
	differentials := strings.TrimSpace(r.PostFormValue("differentials"))
	plan := strings.TrimSpace(r.PostFormValue("plan"))
	if differentials == "" || plan == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	// Language correction is best effort, the raw input works too.
	if corrected, err := app.aiClient.CorrectLanguage(r.Context(), differentials); err == nil {
		differentials = corrected
	}
	if corrected, err := app.aiClient.CorrectLanguage(r.Context(), plan); err == nil {
		plan = corrected
	}

	state, _ := app.caseStore.Case(r.Context())
	findings, err := app.aiClient.DiagnosticFindings(r.Context(), state.ScenarioName, plan)
	if err != nil {
		app.logger.Warn("diagnostic findings failed", errors.SlogError(err))
		app.caseStore.PutWarning(r.Context(),
			"Die Befunde konnten gerade nicht erstellt werden. Bitte versuchen Sie es erneut.")
		http.Redirect(w, r, "/diagnostics", http.StatusSeeOther)
		return
	}

	state.Differentials = differentials
	state.Rounds = append(state.Rounds, caseflow.DiagnosticRound{Requested: plan, Findings: findings})
	app.caseStore.PutCase(r.Context(), state)

	http.Redirect(w, r, "/diagnostics", http.StatusSeeOther)
}
