package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	EventUserSignup         = "user.signup"
	EventGigCreated         = "gig.created"
	EventGigPublished       = "gig.published"
	EventRoleAdded          = "gig.role_added"
	EventProfileUpdated     = "musician.profile_updated"
	EventInviteCreated      = "invite.created"
	EventInvitesAutoCreated = "invite.auto_created"
	EventInviteResponded    = "invite.responded"
)

// Writer provides methods to write audit log entries.
type Writer struct {
	pool *pgxpool.Pool
}

func NewWriter(pool *pgxpool.Pool) *Writer {
	return &Writer{pool: pool}
}

// Log writes one audit entry. Failures are logged and swallowed; auditing is
// best-effort and never fails the calling request.
func (w *Writer) Log(ctx context.Context, actorUserID uuid.UUID, action string, meta map[string]interface{}) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to marshal audit meta")
		return
	}

	_, err = w.pool.Exec(ctx, `
		INSERT INTO audit_log (actor_user_id, action, meta)
		VALUES ($1, $2, $3)
	`, actorUserID, action, metaJSON)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to write audit log entry")
	}
}

func (w *Writer) LogGigCreated(ctx context.Context, actorUserID, gigID uuid.UUID) {
	w.Log(ctx, actorUserID, EventGigCreated, map[string]interface{}{"gig_id": gigID})
}

func (w *Writer) LogGigPublished(ctx context.Context, actorUserID, gigID uuid.UUID) {
	w.Log(ctx, actorUserID, EventGigPublished, map[string]interface{}{"gig_id": gigID})
}

func (w *Writer) LogInviteCreated(ctx context.Context, actorUserID, inviteID, gigID, musicianID uuid.UUID) {
	w.Log(ctx, actorUserID, EventInviteCreated, map[string]interface{}{
		"invite_id":   inviteID,
		"gig_id":      gigID,
		"musician_id": musicianID,
	})
}

func (w *Writer) LogInvitesAutoCreated(ctx context.Context, actorUserID, gigID uuid.UUID, created int) {
	w.Log(ctx, actorUserID, EventInvitesAutoCreated, map[string]interface{}{
		"gig_id":  gigID,
		"created": created,
	})
}

func (w *Writer) LogInviteResponded(ctx context.Context, actorUserID, inviteID uuid.UUID, status string) {
	w.Log(ctx, actorUserID, EventInviteResponded, map[string]interface{}{
		"invite_id": inviteID,
		"status":    status,
	})
}
