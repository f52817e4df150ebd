package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/wallje/karina/internal/contexthelpers"
	"github.com/wallje/karina/internal/errors"
	"github.com/wallje/karina/ui"
)

// BaseTemplateData carries what base.gohtml needs on every page.
type BaseTemplateData struct {
	CurrentPath string
	Warning     string
	IsAdmin     bool
}

func (app *application) newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		CurrentPath: contexthelpers.CurrentPath(r.Context()),
		Warning:     app.caseStore.PopWarning(r.Context()),
		IsAdmin:     contexthelpers.IsAdmin(r.Context()),
	}
}

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to a directory inside ui/templates/pages. It has to include a template named "page".
func pageTemplate(pageName string) (*template.Template, error) {
	patterns := []string{
		"templates/base.gohtml",
		fmt.Sprintf("templates/pages/%s/*.gohtml", pageName),
	}

	if matches, err := fs.Glob(ui.Files, patterns[1]); err != nil || len(matches) == 0 {
		return nil, errors.New("no templates for page", slog.String("page", pageName))
	}

	// The FuncMap has to exist before parsing. The csrf func is replaced per
	// request in render.
	return template.New(pageName).Funcs(template.FuncMap{
		"csrf": func() template.HTML {
			panic("not implemented")
		},
		"inc": func(i int) int {
			return i + 1
		},
	}).ParseFS(ui.Files, patterns...)
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, file string, data any) {
	var (
		err error
		t   *template.Template
	)

	if t, err = pageTemplate(file); err != nil {
		app.serverError(w, r, errors.Wrap(err, "parse template", slog.String("template", file)))
		return
	}

	buf := new(bytes.Buffer)
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>",
		contexthelpers.CSRFToken(r.Context()))
	t.Funcs(template.FuncMap{
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // the token is not user-provided.
		},
	})
	if err = t.ExecuteTemplate(buf, "base", data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template", slog.String("template", file)))
		return
	}

	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}
