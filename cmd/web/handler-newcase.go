package main

import (
	"net/http"
)

// newCase ends the current case and sends the learner back to the entry page
// where the next one is prepared. Resetting without an active case is
// harmless.
func (app *application) newCase(w http.ResponseWriter, r *http.Request) {
	app.reset.Reset(r.Context())

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
