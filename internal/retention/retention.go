package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// CancelStaleInvites cancels pending invites whose gig can no longer happen:
// the gig was cancelled or completed, or its start time has passed. The
// function is idempotent - safe to run repeatedly.
//
// Returns the number of rows updated.
func CancelStaleInvites(ctx context.Context, pool *pgxpool.Pool, now time.Time) (int64, error) {
	query := `
		UPDATE invites i
		SET status = 'cancelled'
		FROM gigs g
		WHERE i.gig_id = g.id
		  AND i.status = 'pending'
		  AND (g.status IN ('cancelled', 'completed') OR g.starts_at < $1)
	`

	tag, err := pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel stale invites: %w", err)
	}

	return tag.RowsAffected(), nil
}

// RunRetentionJob executes the invite sweep and logs the results.
// This is the main entry point called by the cron scheduler.
func RunRetentionJob(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Starting invite retention job")

	startTime := time.Now()

	cancelled, err := CancelStaleInvites(ctx, pool, startTime.UTC())
	if err != nil {
		log.Error().Err(err).Msg("Failed to cancel stale invites")
		return fmt.Errorf("stale invite cleanup failed: %w", err)
	}

	log.Info().
		Int64("invites_cancelled", cancelled).
		Dur("duration", time.Since(startTime)).
		Msg("Invite retention job completed")

	return nil
}
