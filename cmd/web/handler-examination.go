package main

import (
	"net/http"
	"strings"

	"github.com/wallje/karina/internal/errors"
)

type examinationTemplateData struct {
	BaseTemplateData
	Findings string
}

// examination shows the physical findings. They are generated once per case
// and cached in the session afterwards.
func (app *application) examination(w http.ResponseWriter, r *http.Request) {
	data := examinationTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
	}

	state, _ := app.caseStore.Case(r.Context())
	if state.ExamFindings == "" {
		findings, err := app.aiClient.ExaminationFindings(r.Context(),
			state.ScenarioName, state.Description, state.ExaminationTip)
		if err != nil {
			app.logger.Warn("examination findings failed", errors.SlogError(err))
		} else {
			state.ExamFindings = findings
			app.caseStore.PutCase(r.Context(), state)
		}
	}
	data.Findings = state.ExamFindings

	app.render(w, r, http.StatusOK, "examination", data)
}

// examinationRequest appends the result of one explicitly requested extra
// examination to the cached findings.
func (app *application) examinationRequest(w http.ResponseWriter, r *http.Request) {
	request := strings.TrimSpace(r.PostFormValue("request"))
	if request == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	state, _ := app.caseStore.Case(r.Context())
	result, err := app.aiClient.ExtraExamination(r.Context(),
		state.ScenarioName, state.Description, state.ExamFindings, request)
	if err != nil {
		app.logger.Warn("extra examination failed", errors.SlogError(err))
		app.caseStore.PutWarning(r.Context(),
			"Die Zusatzuntersuchung konnte gerade nicht erstellt werden. Bitte versuchen Sie es erneut.")
		http.Redirect(w, r, "/examination", http.StatusSeeOther)
		return
	}

	state.ExamFindings += "\n\n**" + request + ":**\n" + result
	app.caseStore.PutCase(r.Context(), state)

	http.Redirect(w, r, "/examination", http.StatusSeeOther)
}
