package web

import (
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/edyou/engine-dashboard/internal/client"
	"github.com/edyou/engine-dashboard/internal/models"
	"github.com/edyou/engine-dashboard/internal/pathparam"
)

// HandleHome renders the landing page
func (s *Server) HandleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "home", http.StatusOK, "Home", "home", homePage{BackendURL: s.backendURL})
}

// HandleTenants lists tenants in backend order
func (s *Server) HandleTenants(w http.ResponseWriter, r *http.Request) {
	resp, err := s.backend.FetchTenants(r.Context())
	if err != nil {
		s.renderFetchError(w, r, "tenants", err, false)
		return
	}

	s.render(w, "tenants", http.StatusOK, "Tenants", "tenants", newTenantsPage(resp))
}

// HandleTenantUsers lists one page of a tenant's users
func (s *Server) HandleTenantUsers(w http.ResponseWriter, r *http.Request) {
	tenantName, err := pathparam.Get(r, "tenantName")
	if err != nil {
		s.renderError(w, r, "tenant_users", http.StatusBadRequest, "Bad request", "The tenant name in the address is not valid.")
		return
	}

	query := r.URL.Query()
	q := strings.TrimSpace(query.Get("q"))
	limit, offset := ParsePage(query)

	resp, err := s.backend.FetchUsersByTenant(r.Context(), tenantName, q, limit, offset)
	if err != nil {
		s.renderFetchError(w, r, "tenant_users", err, false)
		return
	}
	if resp.Items == nil {
		resp.Items = []models.User{}
	}

	s.render(w, "tenant_users", http.StatusOK, tenantName+" users", "tenants", newUsersPage(tenantName, q, limit, offset, resp))
}

// HandleUserOverview shows a user's runs and, when there is one, the latest run
func (s *Server) HandleUserOverview(w http.ResponseWriter, r *http.Request) {
	email, err := pathparam.Get(r, "email")
	if err != nil {
		s.renderError(w, r, "user", http.StatusBadRequest, "Bad request", "The email in the address is not valid.")
		return
	}

	resp, err := s.backend.FetchUserOverview(r.Context(), email)
	if err != nil {
		s.renderFetchError(w, r, "user", err, true)
		return
	}

	s.render(w, "user", http.StatusOK, email, "tenants", newOverviewPage(resp))
}

// HandleDashboard fetches tenants and metrics together. If either fails the
// page fails; nothing is rendered from the half that succeeded.
func (s *Server) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	days := ParseDays(r.URL.Query().Get("days"))
	tenantName := strings.TrimSpace(r.URL.Query().Get("tenantName"))

	var (
		tenants *models.TenantsResponse
		metrics *models.MetricsResponse
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		tenants, err = s.backend.FetchTenants(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = s.backend.FetchMetrics(ctx, client.MetricsQuery{Days: days, TenantName: tenantName})
		return err
	})
	if err := g.Wait(); err != nil {
		s.renderFetchError(w, r, "dashboard", err, false)
		return
	}

	s.render(w, "dashboard", http.StatusOK, "Dashboard", "dashboard", newDashboardPage(s.theme, days, tenantName, tenants, metrics))
}
