package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wallje/karina/internal/ai"
	"github.com/wallje/karina/internal/caseflow"
	"github.com/wallje/karina/internal/errors"
)

type evaluationTemplateData struct {
	BaseTemplateData
	Feedback       string
	EvaluationDone bool
}

// evaluation shows the examiner feedback, generating it once after the
// diagnosis has been committed.
func (app *application) evaluation(w http.ResponseWriter, r *http.Request) {
	state, _ := app.caseStore.Case(r.Context())

	if state.Feedback == "" && state.FinalDiagnosis != "" {
		feedback, err := app.aiClient.Feedback(r.Context(), feedbackInput(state))
		if err != nil {
			app.logger.Warn("feedback generation failed", errors.SlogError(err))
		} else {
			state.Feedback = feedback
			app.caseStore.PutCase(r.Context(), state)
		}
	}

	app.render(w, r, http.StatusOK, "evaluation", evaluationTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Feedback:         state.Feedback,
		EvaluationDone:   state.EvaluationDone,
	})
}

func (app *application) evaluationSubmit(w http.ResponseWriter, r *http.Request) {
	state, _ := app.caseStore.Case(r.Context())
	state.EvaluationDone = true
	app.caseStore.PutCase(r.Context(), state)

	http.Redirect(w, r, "/evaluation", http.StatusSeeOther)
}

func feedbackInput(state caseflow.CaseState) ai.FeedbackInput {
	var transcript strings.Builder
	for _, msg := range state.Transcript() {
		speaker := state.PatientName
		if msg.Role == ai.RoleUser {
			speaker = "Studierende:r"
		}
		fmt.Fprintf(&transcript, "%s: %s\n", speaker, msg.Content)
	}

	var requested, findings strings.Builder
	for i, round := range state.Rounds {
		fmt.Fprintf(&requested, "### Termin %d\n%s\n", i+1, round.Requested)
		fmt.Fprintf(&findings, "### Termin %d\n%s\n", i+1, round.Findings)
	}

	return ai.FeedbackInput{
		Scenario:       state.ScenarioName,
		Transcript:     transcript.String(),
		ExamFindings:   state.ExamFindings,
		Findings:       findings.String(),
		Differentials:  state.Differentials,
		Diagnostics:    requested.String(),
		FinalDiagnosis: state.FinalDiagnosis,
		TherapyPlan:    state.TherapyPlan,
		Appointments:   len(state.Rounds),
		AmbossExcerpt:  state.AmbossExcerpt,
	}
}
