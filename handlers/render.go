package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/giygas/medication-catalog/logging"
	"github.com/giygas/medication-catalog/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home",
	"medications",
	"medication",
	"medication_form",
	"references",
	"age_weight",
	"statistics",
	"database",
	"import",
	"error",
}

var templateFuncs = template.FuncMap{
	"display":   displayValue,
	"orDash":    orDash,
	"kindPath":  kindPath,
	"kindLabel": kindLabel,
	"add":       func(a, b float64) float64 { return a + b },
	"coord":     func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"formValue": func(v url.Values, name string) string { return v.Get(name) },
}

// pages holds one template set per page, each sharing the layout.
var pages = mustParsePages()

func mustParsePages() map[string]*template.Template {
	base := template.Must(template.New("layout.html").Funcs(templateFuncs).
		ParseFS(templateFS, "templates/layout.html", "templates/partials.html"))

	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t := template.Must(base.Clone())
		out[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return out
}

// pageData is what the layout receives. View is the page specific model.
type pageData struct {
	Title   string
	Nav     string
	Flashes []session.Flash
	View    any
}

// render executes a page into a buffer first so a template failure never
// leaves a half written response.
func render(w http.ResponseWriter, r *http.Request, status int, page, title string, view any) {
	t, ok := pages[page]
	if !ok {
		logging.Error("Unknown page template", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data := pageData{
		Title:   title,
		Nav:     page,
		Flashes: session.FromContext(r.Context()).PopFlashes(),
		View:    view,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		logging.Error("Failed to render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderError logs err, flashes it and renders the error page with the
// matching status.
func renderError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logging.Error("Action failed", "action", action, "error", err)
	} else {
		logging.Warn("Action rejected", "action", action, "error", err)
	}
	session.FromContext(r.Context()).AddFlash(session.FlashError, userMessage(err))
	render(w, r, status, "error", "خطأ", nil)
}

// redirect answers a form post with 303 See Other.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
