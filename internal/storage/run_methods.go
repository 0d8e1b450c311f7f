package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/edyou/engine-dashboard/internal/models"
)

// queryAll runs query and scans every row with scan
func queryAll[T any](ctx context.Context, s *PostgresStore, what, query string, scan func(*sql.Rows, *T) error, args ...interface{}) ([]T, error) {
	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	return out, nil
}

// ListRunsByUser lists a user's runs, newest first
func (s *PostgresStore) ListRunsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Run, error) {
	query := `
		SELECT id, user_id, status, started_at, finished_at, context
		FROM runs
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2`

	return queryAll(ctx, s, "runs", query, func(rows *sql.Rows, r *models.Run) error {
		return rows.Scan(&r.ID, &r.UserID, &r.Status, &r.StartedAt, &r.FinishedAt, &r.Context)
	}, userID, limit)
}

// ListEventsByRun lists the events written during a run in order
func (s *PostgresStore) ListEventsByRun(ctx context.Context, runID uuid.UUID) ([]models.Event, error) {
	query := `
		SELECT id, run_id, user_id, event_type, payload, occurred_at
		FROM events
		WHERE run_id = $1
		ORDER BY occurred_at ASC`

	return queryAll(ctx, s, "events", query, func(rows *sql.Rows, e *models.Event) error {
		return rows.Scan(&e.ID, &e.RunID, &e.UserID, &e.EventType, &e.Payload, &e.OccurredAt)
	}, runID)
}

// ListDecisionsByRun lists the rule outputs of a run
func (s *PostgresStore) ListDecisionsByRun(ctx context.Context, runID uuid.UUID) ([]models.Decision, error) {
	query := `
		SELECT id, run_id, rule, decision, rationale, decided_at
		FROM decisions
		WHERE run_id = $1
		ORDER BY decided_at ASC`

	return queryAll(ctx, s, "decisions", query, func(rows *sql.Rows, d *models.Decision) error {
		return rows.Scan(&d.ID, &d.RunID, &d.Rule, &d.Decision, &d.Rationale, &d.DecidedAt)
	}, runID)
}

// ListEmailAttemptsByRun lists the email attempts of a run
func (s *PostgresStore) ListEmailAttemptsByRun(ctx context.Context, runID uuid.UUID) ([]models.EmailAttempt, error) {
	query := `
		SELECT id, run_id, template_key, stage, status, reason, unique_key, scheduled_at, sent_at
		FROM email_attempts
		WHERE run_id = $1
		ORDER BY created_at ASC`

	return queryAll(ctx, s, "email attempts", query, func(rows *sql.Rows, a *models.EmailAttempt) error {
		return rows.Scan(&a.ID, &a.RunID, &a.TemplateKey, &a.Stage, &a.Status, &a.Reason, &a.UniqueKey, &a.ScheduledAt, &a.SentAt)
	}, runID)
}

// ListFeaturesByRun lists the features computed by a run
func (s *PostgresStore) ListFeaturesByRun(ctx context.Context, runID uuid.UUID) ([]models.Feature, error) {
	query := `
		SELECT user_id, run_id, name, value, computed_at
		FROM features
		WHERE run_id = $1
		ORDER BY name ASC`

	return queryAll(ctx, s, "features", query, func(rows *sql.Rows, f *models.Feature) error {
		return rows.Scan(&f.UserID, &f.RunID, &f.Name, &f.Value, &f.ComputedAt)
	}, runID)
}

// ListSuppressions lists a user's email opt-outs
func (s *PostgresStore) ListSuppressions(ctx context.Context, userID uuid.UUID) ([]models.EmailSuppression, error) {
	query := `
		SELECT user_id, template_key, reason, created_at
		FROM email_suppression
		WHERE user_id = $1
		ORDER BY created_at DESC`

	return queryAll(ctx, s, "suppressions", query, func(rows *sql.Rows, e *models.EmailSuppression) error {
		return rows.Scan(&e.UserID, &e.TemplateKey, &e.Reason, &e.CreatedAt)
	}, userID)
}

// ListActiveTriggers lists a user's active automation triggers, soonest first
func (s *PostgresStore) ListActiveTriggers(ctx context.Context, userID uuid.UUID) ([]models.AutomationTrigger, error) {
	query := `
		SELECT id, trigger_type, params, next_fire_at, active, last_fired_at
		FROM automation_triggers
		WHERE user_id = $1 AND active
		ORDER BY next_fire_at ASC NULLS LAST`

	return queryAll(ctx, s, "automation triggers", query, func(rows *sql.Rows, t *models.AutomationTrigger) error {
		return rows.Scan(&t.ID, &t.TriggerType, &t.Params, &t.NextFireAt, &t.Active, &t.LastFiredAt)
	}, userID)
}
