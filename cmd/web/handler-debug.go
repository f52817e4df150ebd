package main

import (
	"encoding/json"
	"net/http"

	"github.com/wallje/karina/internal/caseflow"
)

// debugSessionSnapshot exposes the caller's own case state as JSON. The route
// answers 404 unless explicitly enabled, so it never leaks in production.
func (app *application) debugSessionSnapshot(w http.ResponseWriter, r *http.Request) {
	if !app.debugSession {
		app.notFound(w, r)
		return
	}

	state, active := app.caseStore.Case(r.Context())
	snapshot := struct {
		Active bool                `json:"active"`
		State  *caseflow.CaseState `json:"state,omitempty"`
	}{Active: active}
	if active {
		snapshot.State = &state
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		app.serverError(w, r, err)
	}
}
