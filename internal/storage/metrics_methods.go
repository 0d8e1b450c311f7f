package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edyou/engine-dashboard/internal/models"
)

// tenantFilter restricts alias t (any table with user_id) to the tenant in
// $2; an empty $2 matches everything
const tenantFilter = `($2::text = '' OR EXISTS (
			SELECT 1 FROM users u WHERE u.id = t.user_id AND COALESCE(u.tenant_name, '') = $2))`

// kpiQuery returns every KPI in one row, in kpiKeys order
const kpiQuery = `
	SELECT
		(SELECT COUNT(*) FROM users t WHERE ($2::text = '' OR COALESCE(t.tenant_name, '') = $2)),
		(SELECT COUNT(DISTINCT t.user_id) FROM runs t WHERE t.started_at >= $1 AND ` + tenantFilter + `),
		(SELECT COUNT(*) FROM runs t WHERE ` + tenantFilter + `),
		(SELECT COUNT(*) FROM runs t WHERE t.started_at >= $1 AND ` + tenantFilter + `),
		(SELECT COUNT(*) FROM runs t WHERE t.started_at >= $1 AND t.status = 'failed' AND ` + tenantFilter + `),
		(SELECT COUNT(*) FROM events t WHERE ` + tenantFilter + `),
		(SELECT COUNT(*) FROM events t WHERE t.occurred_at >= $1 AND ` + tenantFilter + `),
		(SELECT COUNT(*) FROM decisions t WHERE ` + tenantFilter + `),
		(SELECT COUNT(*) FROM decisions t WHERE t.decided_at >= $1 AND ` + tenantFilter + `),
		(SELECT COUNT(*) FROM email_attempts t WHERE t.status = 'sent' AND ` + tenantFilter + `),
		(SELECT COUNT(*) FROM email_attempts t WHERE t.status = 'sent' AND t.sent_at >= $1 AND ` + tenantFilter + `)`

var kpiKeys = []string{
	models.KPIUsersTotal,
	models.KPIActiveUsersWindow,
	models.KPIRunsTotal,
	models.KPIRunsWindow,
	models.KPIRunsFailedWindow,
	models.KPIEventsTotal,
	models.KPIEventsWindow,
	models.KPIDecisionsTotal,
	models.KPIDecisionsWindow,
	models.KPIEmailsSentTotal,
	models.KPIEmailsSentWindow,
}

// seriesQuery counts rows of table per day over the window, including days
// with no rows
func seriesQuery(table, column string) string {
	return fmt.Sprintf(`
	SELECT to_char(d.day, 'YYYY-MM-DD') AS day, COUNT(t.%[2]s) AS c
	FROM generate_series(date_trunc('day', $1::timestamptz), date_trunc('day', now()), interval '1 day') AS d(day)
	LEFT JOIN %[1]s t ON date_trunc('day', t.%[2]s) = d.day AND %[3]s
	GROUP BY d.day
	ORDER BY d.day ASC`, table, column, tenantFilter)
}

const decisionsByRuleQuery = `
	SELECT t.rule, COUNT(*) AS c
	FROM decisions t
	WHERE t.decided_at >= $1 AND ` + tenantFilter + `
	GROUP BY t.rule
	ORDER BY c DESC, t.rule ASC`

const attemptsByTemplateStatusQuery = `
	SELECT t.template_key, t.status::text, COUNT(*) AS c
	FROM email_attempts t
	WHERE t.created_at >= $1 AND ` + tenantFilter + `
	GROUP BY t.template_key, t.status
	ORDER BY t.template_key ASC, c DESC`

// GetMetrics computes KPIs, daily series and distributions for the last
// filter.Days days
func (s *PostgresStore) GetMetrics(ctx context.Context, filter MetricsFilter) (*models.MetricsResponse, error) {
	if filter.Days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", ErrInvalidData)
	}
	since := s.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -(filter.Days - 1))
	args := []interface{}{since, filter.TenantName}

	out := &models.MetricsResponse{
		KPIs:    make(map[string]json.RawMessage, len(kpiKeys)),
		Filters: models.MetricsFilters{Days: filter.Days},
	}
	if filter.TenantName != "" {
		tenant := filter.TenantName
		out.Filters.TenantName = &tenant
	}

	counts := make([]int64, len(kpiKeys))
	dest := make([]interface{}, len(kpiKeys))
	for i := range counts {
		dest[i] = &counts[i]
	}
	if err := s.getDB().QueryRowContext(ctx, kpiQuery, args...).Scan(dest...); err != nil {
		return nil, fmt.Errorf("query kpis: %w", err)
	}
	for i, key := range kpiKeys {
		out.KPIs[key] = models.Count(counts[i])
	}

	var err error
	if out.Series.RunsByDay, err = s.series(ctx, "runs", "started_at", args); err != nil {
		return nil, err
	}
	if out.Series.EventsByDay, err = s.series(ctx, "events", "occurred_at", args); err != nil {
		return nil, err
	}
	if out.Series.DecisionsByDay, err = s.series(ctx, "decisions", "decided_at", args); err != nil {
		return nil, err
	}

	if out.Distributions.DecisionsByRule, err = queryAll(ctx, s, "decisions by rule", decisionsByRuleQuery, func(rows *sql.Rows, rc *models.RuleCount) error {
		var c int64
		if err := rows.Scan(&rc.Rule, &c); err != nil {
			return err
		}
		rc.C = models.Count(c)
		return nil
	}, args...); err != nil {
		return nil, err
	}

	if out.Distributions.AttemptsByTemplateStatus, err = queryAll(ctx, s, "attempts by template status", attemptsByTemplateStatusQuery, func(rows *sql.Rows, tc *models.TemplateStatusCount) error {
		var c int64
		if err := rows.Scan(&tc.TemplateKey, &tc.Status, &c); err != nil {
			return err
		}
		tc.C = models.Count(c)
		return nil
	}, args...); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *PostgresStore) series(ctx context.Context, table, column string, args []interface{}) ([]models.RawSeriesPoint, error) {
	return queryAll(ctx, s, table+" by day", seriesQuery(table, column), func(rows *sql.Rows, p *models.RawSeriesPoint) error {
		var c int64
		if err := rows.Scan(&p.Day, &c); err != nil {
			return err
		}
		p.C = models.Count(c)
		return nil
	}, args...)
}
