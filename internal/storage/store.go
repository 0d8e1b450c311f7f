package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/edyou/engine-dashboard/internal/models"
)

// Common errors
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidData = errors.New("invalid data")
)

// Store is the read path over the engine's Postgres schema. Nothing here
// writes pipeline state.
type Store interface {
	// Transaction support. Transactions are read-only.
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// Tenant methods
	ListTenants(ctx context.Context) ([]models.TenantItem, int64, error)

	// User methods
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsersByTenant(ctx context.Context, tenantName, q string, limit, offset int) ([]models.User, int64, error)

	// Run methods
	ListRunsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Run, error)
	ListEventsByRun(ctx context.Context, runID uuid.UUID) ([]models.Event, error)
	ListDecisionsByRun(ctx context.Context, runID uuid.UUID) ([]models.Decision, error)
	ListEmailAttemptsByRun(ctx context.Context, runID uuid.UUID) ([]models.EmailAttempt, error)
	ListFeaturesByRun(ctx context.Context, runID uuid.UUID) ([]models.Feature, error)

	// Email automation methods
	ListSuppressions(ctx context.Context, userID uuid.UUID) ([]models.EmailSuppression, error)
	ListActiveTriggers(ctx context.Context, userID uuid.UUID) ([]models.AutomationTrigger, error)

	// Aggregates
	GetUserOverview(ctx context.Context, email string, runLimit int) (*models.UserOverviewResponse, error)
	GetMetrics(ctx context.Context, filter MetricsFilter) (*models.MetricsResponse, error)

	Ping(ctx context.Context) error

	// Close the store
	Close() error
}

// MetricsFilter restricts the metrics window. An empty TenantName covers
// every tenant.
type MetricsFilter struct {
	Days       int
	TenantName string
}
