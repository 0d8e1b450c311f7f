package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/edyou/engine-dashboard/internal/auth"
	"github.com/edyou/engine-dashboard/internal/config"
	"github.com/edyou/engine-dashboard/internal/logging"
	"github.com/edyou/engine-dashboard/internal/meter"
	"github.com/edyou/engine-dashboard/internal/pathparam"
	"github.com/edyou/engine-dashboard/internal/storage"
	"github.com/edyou/engine-dashboard/internal/validation"
)

type contextKey string

const claimsKey contextKey = "claims"

// RESTServer represents the analytics REST API server
type RESTServer struct {
	config    *config.Config
	store     storage.Store
	auth      *auth.JWTManager
	validator *validation.Validator
	meter     *meter.Meter
	gatherer  prometheus.Gatherer
	router    chi.Router
	server    *http.Server
}

// NewRESTServer creates a new REST API server. Bearer tokens are only
// required when a JWT secret is configured.
func NewRESTServer(cfg *config.Config, store storage.Store, m *meter.Meter, gatherer prometheus.Gatherer) *RESTServer {
	s := &RESTServer{
		config:    cfg,
		store:     store,
		validator: validation.NewValidator(),
		meter:     m,
		gatherer:  gatherer,
		router:    chi.NewRouter(),
	}
	if cfg.JWT.Secret != "" {
		s.auth = auth.NewJWTManager(&cfg.JWT)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all routes
func (s *RESTServer) setupRoutes() {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(pathparam.Escaped)
	s.router.Use(logging.RequestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(s.metricsMiddleware)

	// CORS
	origins := s.config.API.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Cache-Control", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttpHandler(s.gatherer))
	}

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		s.setupAPIRoutes(r)
	})
}

// Handler exposes the router, mainly for tests
func (s *RESTServer) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server
func (s *RESTServer) ListenAndServe(addr string) error {
	s.server.Addr = addr
	log.Info().Str("addr", addr).Bool("auth", s.auth != nil).Msg("Starting analytics API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *RESTServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// authMiddleware is the authentication middleware
func (s *RESTServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			next.ServeHTTP(w, r)
			return
		}

		// Get token from header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.respondError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		// Parse Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.respondError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		// Validate token
		claims, err := s.auth.ValidateToken(parts[1])
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		// Add claims to context
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// metricsMiddleware records each request under its route pattern
func (s *RESTServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.meter.ObserveAPI(route, status, time.Since(start))
	})
}
