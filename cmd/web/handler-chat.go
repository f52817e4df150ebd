package main

import (
	"net/http"
	"strings"

	"github.com/wallje/karina/internal/ai"
	"github.com/wallje/karina/internal/caseflow"
	"github.com/wallje/karina/internal/errors"
)

// chat takes one anamnesis question, lets the patient answer and redirects
// back to the conversation.
func (app *application) chat(w http.ResponseWriter, r *http.Request) {
	message := strings.TrimSpace(r.PostFormValue("message"))
	if message == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	state, _ := app.caseStore.Case(r.Context())
	state.Messages = append(state.Messages, caseflow.ChatMessage{Role: ai.RoleUser, Content: message})

	reply, err := app.aiClient.PatientReply(r.Context(), toAIMessages(state.Messages))
	if err != nil {
		app.logger.Warn("patient reply failed", errors.SlogError(err))
		app.caseStore.PutWarning(r.Context(),
			"Die Antwort konnte gerade nicht erzeugt werden. Bitte versuchen Sie es erneut.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	state.Messages = append(state.Messages, caseflow.ChatMessage{Role: ai.RoleAssistant, Content: reply})
	app.caseStore.PutCase(r.Context(), state)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func toAIMessages(messages []caseflow.ChatMessage) []ai.Message {
	out := make([]ai.Message, len(messages))
	for i, msg := range messages {
		out[i] = ai.Message{Role: msg.Role, Content: msg.Content}
	}
	return out
}
