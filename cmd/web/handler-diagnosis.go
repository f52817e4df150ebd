package main

import (
	"net/http"
	"strings"
)

type diagnosisTemplateData struct {
	BaseTemplateData
	FinalDiagnosis string
	TherapyPlan    string
}

func (app *application) diagnosis(w http.ResponseWriter, r *http.Request) {
	state, _ := app.caseStore.Case(r.Context())

	app.render(w, r, http.StatusOK, "diagnosis", diagnosisTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		FinalDiagnosis:   state.FinalDiagnosis,
		TherapyPlan:      state.TherapyPlan,
	})
}

func (app *application) diagnosisSubmit(w http.ResponseWriter, r *http.Request) {
	diagnosis := strings.TrimSpace(r.PostFormValue("diagnosis"))
	therapy := strings.TrimSpace(r.PostFormValue("therapy"))
	if diagnosis == "" || therapy == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	if corrected, err := app.aiClient.CorrectLanguage(r.Context(), therapy); err == nil {
		therapy = corrected
	}

	state, _ := app.caseStore.Case(r.Context())
	state.FinalDiagnosis = diagnosis
	state.TherapyPlan = therapy
	// A committed diagnosis invalidates previously generated feedback.
	state.Feedback = ""
	app.caseStore.PutCase(r.Context(), state)

	http.Redirect(w, r, "/evaluation", http.StatusSeeOther)
}
