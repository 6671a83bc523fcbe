package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kanakk/internal/middleware"
	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// page is the data passed to every template.
type page struct {
	Title    string
	Identity middleware.Identity
	LoggedIn bool
	IsAdmin  bool
	Flash    *Flash
	// Form holds submitted values so a rejected form can be refilled.
	Form map[string]string
	Data any
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal, currency string) string {
		return models.FormatMoney(d, currency)
	},
	"noIncome":  func() string { return report.NoIncomeMessage },
	"noExpense": func() string { return report.NoExpenseMessage },
}

// parseTemplates builds one template set per page, each combined with
// the shared layout.
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		name := path.Base(p)
		if name == "layout.html" {
			continue
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", p)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// render executes a page into a buffer first so template errors become a
// clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p *page) {
	t, ok := s.templates[name]
	if !ok {
		s.logger.Error("Unknown template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if p.Flash == nil {
		p.Flash = popFlash(w, r)
	}
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		p.Identity = id
		p.LoggedIn = true
		p.IsAdmin = id.Role.CanManage()
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		s.logger.Error("Failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
