// Package web serves the read-only operations dashboard. Each page render
// is independent: it fetches from the analytics API, shapes the result and
// renders server-side HTML with inline SVG charts.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/edyou/engine-dashboard/internal/client"
	"github.com/edyou/engine-dashboard/internal/config"
	"github.com/edyou/engine-dashboard/internal/logging"
	"github.com/edyou/engine-dashboard/internal/meter"
	"github.com/edyou/engine-dashboard/internal/models"
	"github.com/edyou/engine-dashboard/internal/pathparam"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "tenants", "tenant_users", "user", "dashboard", "error"}

// Backend is the subset of the analytics API the pages read from
type Backend interface {
	FetchTenants(ctx context.Context) (*models.TenantsResponse, error)
	FetchUsersByTenant(ctx context.Context, tenantName, q string, limit, offset int) (*models.UsersResponse, error)
	FetchUserOverview(ctx context.Context, email string) (*models.UserOverviewResponse, error)
	FetchMetrics(ctx context.Context, q client.MetricsQuery) (*models.MetricsResponse, error)
}

// Server represents the dashboard web server
type Server struct {
	backend    Backend
	backendURL string
	theme      Theme
	meter      *meter.Meter
	gatherer   prometheus.Gatherer
	pages      map[string]*template.Template
	router     chi.Router
	server     *http.Server
}

// NewServer creates the dashboard server. gatherer may be nil, in which
// case /metrics is not mounted.
func NewServer(cfg *config.Config, backend Backend, m *meter.Meter, gatherer prometheus.Gatherer) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		backend:    backend,
		backendURL: cfg.Backend.BaseURL,
		theme:      NewTheme(cfg.Dashboard.Theme),
		meter:      m,
		gatherer:   gatherer,
		pages:      pages,
		router:     chi.NewRouter(),
	}

	s.setupRoutes(cfg.Backend.Timeout)

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout").ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(backendTimeout time.Duration) {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(pathparam.Escaped)
	s.router.Use(logging.RequestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(2*backendTimeout + 5*time.Second))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Group(func(r chi.Router) {
		r.Use(noStore)
		r.Get("/", s.HandleHome)
		r.Get("/tenants", s.HandleTenants)
		r.Get("/tenants/{tenantName}/users", s.HandleTenantUsers)
		r.Get("/users/{email}", s.HandleUserOverview)
		r.Get("/dashboard", s.HandleDashboard)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, "not_found", http.StatusNotFound, "Page not found", "Nothing lives at "+r.URL.Path+".")
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	s.server.Addr = addr
	log.Info().Str("addr", addr).Str("backend", s.backendURL).Msg("Starting dashboard server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// render executes a page into a buffer first so a template failure never
// leaves a half-written response
func (s *Server) render(w http.ResponseWriter, page string, status int, title, active string, data interface{}) {
	var buf bytes.Buffer
	err := s.pages[page].ExecuteTemplate(&buf, "layout", view{
		Title:  title,
		Active: active,
		Theme:  s.theme,
		Data:   data,
	})
	if err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		s.meter.ObservePage(page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	s.meter.ObservePage(page, status)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, page string, status int, heading, message string) {
	w.Header().Set("Cache-Control", "no-store")
	var buf bytes.Buffer
	err := s.pages["error"].ExecuteTemplate(&buf, "layout", view{
		Title: heading,
		Theme: s.theme,
		Data:  errorPage{Heading: heading, Message: message},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to render error page")
		http.Error(w, message, status)
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = buf.WriteTo(w)
	}
	s.meter.ObservePage(page, status)
}

// renderFetchError turns a failed backend call into the error page. A
// backend 404 is only passed through when notFound is set.
func (s *Server) renderFetchError(w http.ResponseWriter, r *http.Request, page string, err error, notFound bool) {
	if notFound && client.IsNotFound(err) {
		s.renderError(w, r, page, http.StatusNotFound, "Not found", "The backend has no record of this item.")
		return
	}

	log.Warn().Err(err).Str("page", page).Str("request_id", middleware.GetReqID(r.Context())).Msg("Backend fetch failed")
	s.renderError(w, r, page, http.StatusBadGateway, "Backend unavailable", "The analytics API could not be reached or returned an error. Reload to try again.")
}
