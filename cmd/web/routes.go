package main

import (
	"net/http"

	"github.com/justinas/alice"
	"github.com/wallje/karina/ui"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	fileServer := http.FileServerFS(ui.Files)
	mux.Handle("GET /static/", cacheForeverHeaders(fileServer))

	mux.HandleFunc("GET /api/healthy", app.healthy)

	base := alice.New(app.sessionManager.LoadAndSave, noSurf, commonContext)
	learner := base.Append(app.requireCase)
	admin := base.Append(app.requireAdmin)

	mux.Handle("GET /{$}", base.ThenFunc(app.home))
	mux.Handle("POST /chat", learner.ThenFunc(app.chat))
	mux.Handle("GET /examination", learner.ThenFunc(app.examination))
	mux.Handle("POST /examination", learner.ThenFunc(app.examinationRequest))
	mux.Handle("GET /diagnostics", learner.ThenFunc(app.diagnostics))
	mux.Handle("POST /diagnostics", learner.ThenFunc(app.diagnosticsSubmit))
	mux.Handle("GET /diagnosis", learner.ThenFunc(app.diagnosis))
	mux.Handle("POST /diagnosis", learner.ThenFunc(app.diagnosisSubmit))
	mux.Handle("GET /evaluation", learner.ThenFunc(app.evaluation))
	mux.Handle("POST /evaluation", learner.ThenFunc(app.evaluationSubmit))
	mux.Handle("GET /download", learner.ThenFunc(app.download))
	mux.Handle("POST /new-case", base.ThenFunc(app.newCase))

	mux.Handle("GET /debug/session", base.ThenFunc(app.debugSessionSnapshot))

	mux.Handle("GET /admin", admin.ThenFunc(app.adminDashboard))
	mux.Handle("POST /admin/scenarios", admin.ThenFunc(app.adminUpsertScenario))
	mux.Handle("POST /admin/scenarios/delete", admin.ThenFunc(app.adminDeleteScenario))
	mux.Handle("POST /admin/pins/scenario", admin.ThenFunc(app.adminPinScenario))
	mux.Handle("POST /admin/pins/behaviour", admin.ThenFunc(app.adminPinBehaviour))
	mux.Handle("POST /admin/pins/retrieval", admin.ThenFunc(app.adminPinRetrieval))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}
