package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wallje/karina/internal/ai"
)

// download serves the case protocol as a plain text file.
func (app *application) download(w http.ResponseWriter, r *http.Request) {
	state, _ := app.caseStore.Case(r.Context())

	var protocol strings.Builder
	fmt.Fprintf(&protocol, "Gesprächsprotokoll - Virtuelle Sprechstunde\n")
	fmt.Fprintf(&protocol, "Fallbeginn: %s\n\n", state.StartedAt.Format("02.01.2006 15:04"))

	protocol.WriteString("## Anamnese\n\n")
	for _, msg := range state.Transcript() {
		speaker := state.PatientName
		if msg.Role == ai.RoleUser {
			speaker = "Du"
		}
		fmt.Fprintf(&protocol, "%s: %s\n", speaker, msg.Content)
	}

	if state.ExamFindings != "" {
		fmt.Fprintf(&protocol, "\n## Körperliche Untersuchung\n\n%s\n", state.ExamFindings)
	}
	for i, round := range state.Rounds {
		fmt.Fprintf(&protocol, "\n## Diagnostik, Termin %d\n\n%s\n\nBefunde:\n%s\n",
			i+1, round.Requested, round.Findings)
	}
	if state.Differentials != "" {
		fmt.Fprintf(&protocol, "\n## Differentialdiagnosen\n\n%s\n", state.Differentials)
	}
	if state.FinalDiagnosis != "" {
		fmt.Fprintf(&protocol, "\n## Finale Diagnose\n\n%s\n\n## Therapiekonzept\n\n%s\n",
			state.FinalDiagnosis, state.TherapyPlan)
	}
	if state.Feedback != "" {
		fmt.Fprintf(&protocol, "\n## Feedback\n\n%s\n", state.Feedback)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="gespraechsprotokoll.txt"`)
	_, _ = w.Write([]byte(protocol.String()))
}
