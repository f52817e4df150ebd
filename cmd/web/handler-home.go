package main

import (
	"net/http"

	"github.com/wallje/karina/internal/caseflow"
	"github.com/wallje/karina/internal/errors"
	"github.com/wallje/karina/internal/pool"
)

type homeTemplateData struct {
	BaseTemplateData
	EmptyPool   bool
	PatientName string
	Transcript  []caseflow.ChatMessage
}

// home renders the entry page. When no case is active, one is prepared on the
// spot, so a fresh session lands directly in the consultation.
func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data := homeTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
	}

	state, ok := app.caseStore.Case(r.Context())
	if !ok {
		var err error
		if state, err = app.preparer.StartCase(r.Context()); err != nil {
			if errors.Is(err, pool.ErrEmptyPool) {
				data.EmptyPool = true
				app.render(w, r, http.StatusOK, "home", data)
				return
			}
			app.serverError(w, r, err)
			return
		}
		// Preparation may queue a warning, e.g. for a stale scenario pin.
		if data.Warning == "" {
			data.Warning = app.caseStore.PopWarning(r.Context())
		}
	}

	data.PatientName = state.PatientName
	data.Transcript = state.Transcript()

	app.render(w, r, http.StatusOK, "home", data)
}
