package storage

import (
	"context"
	"fmt"

	"github.com/edyou/engine-dashboard/internal/models"
)

// GetUserOverview loads a user, their latest runs and the detail of the
// newest run from one read-only snapshot
func (s *PostgresStore) GetUserOverview(ctx context.Context, email string, runLimit int) (*models.UserOverviewResponse, error) {
	if runLimit <= 0 {
		runLimit = 20
	}

	txStore, err := s.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer txStore.Rollback()

	user, err := txStore.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	out := &models.UserOverviewResponse{User: *user}
	if out.Runs, err = txStore.ListRunsByUser(ctx, user.ID, runLimit); err != nil {
		return nil, err
	}

	if len(out.Runs) > 0 {
		latest := out.Runs[0]
		out.LatestRun = &latest

		if out.LatestRunEvents, err = txStore.ListEventsByRun(ctx, latest.ID); err != nil {
			return nil, err
		}
		if out.LatestRunDecisions, err = txStore.ListDecisionsByRun(ctx, latest.ID); err != nil {
			return nil, err
		}
		if out.LatestRunEmailAttempts, err = txStore.ListEmailAttemptsByRun(ctx, latest.ID); err != nil {
			return nil, err
		}
		if out.LatestRunFeatures, err = txStore.ListFeaturesByRun(ctx, latest.ID); err != nil {
			return nil, err
		}
	}

	if out.Suppressions, err = txStore.ListSuppressions(ctx, user.ID); err != nil {
		return nil, err
	}
	if out.AutomationTriggers, err = txStore.ListActiveTriggers(ctx, user.ID); err != nil {
		return nil, err
	}

	if err := txStore.Commit(); err != nil {
		return nil, fmt.Errorf("commit overview: %w", err)
	}
	return out, nil
}
