package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edyou/engine-dashboard/internal/models"
	"github.com/edyou/engine-dashboard/internal/pathparam"
	"github.com/edyou/engine-dashboard/internal/storage"
)

const (
	defaultLimit = 50
	maxLimit     = 500
	defaultDays  = 7
)

// metricsParams are the validated metrics query parameters
type metricsParams struct {
	Days       int    `query:"days" validate:"min=1,max=365"`
	TenantName string `query:"tenantName" validate:"max=200"`
}

// ========== Tenant handlers ==========

// HandleListTenants lists tenants with their user counts
func (s *RESTServer) HandleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, total, err := s.store.ListTenants(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	if tenants == nil {
		tenants = []models.TenantItem{}
	}

	s.respondJSON(w, http.StatusOK, models.TenantsResponse{
		Tenants:    tenants,
		TotalUsers: total,
	})
}

// HandleListTenantUsers lists one page of a tenant's users
func (s *RESTServer) HandleListTenantUsers(w http.ResponseWriter, r *http.Request) {
	tenantName, err := pathparam.Get(r, "tenantName")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid tenant name")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	users, total, err := s.store.ListUsersByTenant(r.Context(), tenantName, q, limit, offset)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	s.respondJSON(w, http.StatusOK, models.UsersResponse{
		Items: users,
		Count: len(users),
		Total: total,
	})
}

// ========== User handlers ==========

// HandleUserOverview returns a user's runs with the latest run expanded
func (s *RESTServer) HandleUserOverview(w http.ResponseWriter, r *http.Request) {
	email, err := pathparam.Get(r, "email")
	if err != nil || strings.TrimSpace(email) == "" {
		s.respondError(w, http.StatusBadRequest, "invalid email")
		return
	}

	overview, err := s.store.GetUserOverview(r.Context(), email, s.config.API.RecentRuns)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, overview)
}

// ========== Metrics handlers ==========

// HandleMetrics returns KPIs, daily series and distributions
func (s *RESTServer) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	params := metricsParams{
		Days:       defaultDays,
		TenantName: strings.TrimSpace(r.URL.Query().Get("tenantName")),
	}
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		params.Days = v
	}
	if err := s.validator.Validate(params); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics, err := s.store.GetMetrics(r.Context(), storage.MetricsFilter{
		Days:       params.Days,
		TenantName: params.TenantName,
	})
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, metrics)
}

// ========== System handlers ==========

// HandleHealth health check
func (s *RESTServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		log.Warn().Err(err).Msg("Database ping failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	s.respondJSON(w, code, map[string]interface{}{
		"status": status,
		"time":   time.Now(),
	})
}

// HandleRoot root handler
func (s *RESTServer) HandleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": s.config.Server.Name,
		"version": s.config.Server.Version,
		"health":  "/api/v1/health",
	})
}

// respondStoreError maps store errors to HTTP statuses
func (s *RESTServer) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrInvalidData):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Store query failed")
		s.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// respondJSON responds with JSON
func (s *RESTServer) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError responds with error
func (s *RESTServer) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
