// Package web serves the HTML interface and report downloads.
package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/kanakk/internal/auth"
	"github.com/mmynk/kanakk/internal/metrics"
	"github.com/mmynk/kanakk/internal/middleware"
	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/service"
	"github.com/mmynk/kanakk/internal/storage"
)

// Options are the collaborators of a Server. Metrics and Gatherer may be
// nil; /metrics is then not served.
type Options struct {
	Store        storage.Store
	Accounts     *service.AccountService
	Ledgers      *service.LedgerService
	Entries      *service.EntryService
	Sessions     *auth.SessionManager
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	CookieSecure bool
	Logger       *slog.Logger
}

// Server holds the request handlers.
type Server struct {
	store        storage.Store
	accounts     *service.AccountService
	ledgers      *service.LedgerService
	entries      *service.EntryService
	sessions     *auth.SessionManager
	metrics      *metrics.Metrics
	gatherer     prometheus.Gatherer
	cookieSecure bool
	logger       *slog.Logger
	templates    map[string]*template.Template
	now          func() time.Time
}

// New creates a Server and parses its templates.
func New(opts Options) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:        opts.Store,
		accounts:     opts.Accounts,
		ledgers:      opts.Ledgers,
		entries:      opts.Entries,
		sessions:     opts.Sessions,
		metrics:      opts.Metrics,
		gatherer:     opts.Gatherer,
		cookieSecure: opts.CookieSecure,
		logger:       logger,
		templates:    templates,
		now:          time.Now,
	}, nil
}

// Handler returns the root handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	session := middleware.RequireSession(s.sessions, s.store, middleware.RedirectToLogin)
	download := middleware.RequireSession(s.sessions, s.store, middleware.Unauthorized)
	protected := func(h http.HandlerFunc) http.Handler { return session(h) }

	mux.HandleFunc("GET /login", s.loginForm)
	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("GET /register", s.registerForm)
	mux.HandleFunc("POST /register", s.register)
	mux.Handle("GET /logout", protected(s.logout))

	mux.Handle("GET /{$}", protected(s.dashboard))
	mux.Handle("GET /settings", protected(s.settingsForm))
	mux.Handle("POST /settings", protected(s.updateSettings))

	// Any member may list the company's users; adding, editing and
	// deleting them is admin only.
	mux.Handle("GET /company/users", protected(s.listUsers))
	mux.Handle("GET /company/users/new", protected(s.newUserForm))
	mux.Handle("POST /company/users/new", protected(s.createUser))
	mux.Handle("GET /company/users/{id}/edit", protected(s.editUserForm))
	mux.Handle("POST /company/users/{id}/edit", protected(s.updateUser))
	mux.Handle("GET /company/users/{id}/delete", protected(s.deleteUser))

	mux.Handle("GET /income/new", protected(s.entryForm(models.KindIncome)))
	mux.Handle("POST /income/new", protected(s.createEntry(models.KindIncome)))
	mux.Handle("GET /expense/new", protected(s.entryForm(models.KindExpense)))
	mux.Handle("POST /expense/new", protected(s.createEntry(models.KindExpense)))

	mux.Handle("GET /reports", protected(s.reports))
	mux.Handle("GET /reports/pdf", download(http.HandlerFunc(s.reportPDF)))
	mux.Handle("GET /reports/xlsx", download(http.HandlerFunc(s.reportXLSX)))

	mux.HandleFunc("GET /healthz", s.healthz)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return middleware.Chain(mux,
		middleware.Recover,
		middleware.Logging,
		middleware.Instrument(s.metrics),
	)
}

func (s *Server) today() models.Date {
	return models.DateOf(s.now())
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("Health check failed", "error", err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

// redirect stores a flash message and sends the browser to target.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target, kind, msg string) {
	if msg != "" {
		setFlash(w, kind, msg)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// fail handles an error from a service call made by a page that has no
// form to re-render. Access problems redirect to fallback with a flash;
// unexpected errors are logged and shown as a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, service.ErrNotFound):
		s.render(w, r, http.StatusNotFound, "error.html", &page{
			Title: "Not found",
			Flash: &Flash{Kind: flashDanger, Message: service.UserMessage(err)},
		})
	case errors.Is(err, service.ErrAccessDenied), errors.Is(err, service.ErrValidation):
		s.redirect(w, r, fallback, flashDanger, service.UserMessage(err))
	default:
		s.logger.Error("Request failed", "path", r.URL.Path, "error", err)
		s.redirect(w, r, fallback, flashDanger, service.UserMessage(err))
	}
}

// formStatus is the response status for a rejected form submission.
func (s *Server) formStatus(r *http.Request, err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden
	default:
		s.logger.Error("Form submission failed", "path", r.URL.Path, "error", err)
		return http.StatusInternalServerError
	}
}

func formValues(r *http.Request, keys ...string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = r.PostFormValue(k)
	}
	return out
}

func errorFlash(err error) *Flash {
	return &Flash{Kind: flashDanger, Message: service.UserMessage(err)}
}
