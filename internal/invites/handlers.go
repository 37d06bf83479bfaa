package invites

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/chamaomusico/gigmatch/internal/apperrors"
	"github.com/chamaomusico/gigmatch/internal/audit"
	"github.com/chamaomusico/gigmatch/internal/auth"
	"github.com/chamaomusico/gigmatch/internal/gigs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type AutoCreateRequest struct {
	GigID string `json:"gigId"`
}

type ManualCreateRequest struct {
	GigID      string `json:"gigId"`
	GigRoleID  string `json:"gigRoleId"`
	MusicianID string `json:"musicianId"`
}

type RespondRequest struct {
	Action string `json:"action"`
}

// HandleAutoCreate handles POST /api/v1/invites/auto
func HandleAutoCreate(issuer *Issuer, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		var req AutoCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if req.GigID == "" {
			apperrors.WriteBadRequest(w, r, "gigId is required")
			return
		}
		gigID, err := uuid.Parse(req.GigID)
		if err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid gigId")
			return
		}

		created, err := issuer.AutoCreateInvites(ctx, gigID, userID)
		if err != nil {
			if errors.Is(err, gigs.ErrGigNotFound) {
				apperrors.WriteNotFound(w, r, "Gig not found")
				return
			}
			if errors.Is(err, gigs.ErrNotGigOwner) {
				apperrors.WriteForbidden(w, r, "Only the gig's contractor may create invites")
				return
			}
			log.Error().Err(err).Str("gig_id", gigID.String()).Msg("Failed to auto-create invites")
			apperrors.WriteInternalError(w, r, "Failed to create invites")
			return
		}

		if created > 0 {
			auditor.LogInvitesAutoCreated(ctx, userID, gigID, created)
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"success": true,
			"created": created,
		})
	}
}

// HandleManualCreate handles POST /api/v1/invites
func HandleManualCreate(issuer *Issuer, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		var req ManualCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if req.GigID == "" || req.GigRoleID == "" || req.MusicianID == "" {
			apperrors.WriteBadRequest(w, r, "gigId, gigRoleId and musicianId are required")
			return
		}

		gigID, err := uuid.Parse(req.GigID)
		if err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid gigId")
			return
		}
		gigRoleID, err := uuid.Parse(req.GigRoleID)
		if err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid gigRoleId")
			return
		}
		musicianID, err := uuid.Parse(req.MusicianID)
		if err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid musicianId")
			return
		}

		invite, created, err := issuer.CreateManualInvite(ctx, gigID, gigRoleID, musicianID, userID)
		if err != nil {
			if errors.Is(err, gigs.ErrGigNotFound) {
				apperrors.WriteNotFound(w, r, "Gig not found")
				return
			}
			if errors.Is(err, gigs.ErrRoleNotFound) {
				apperrors.WriteNotFound(w, r, "Gig role not found")
				return
			}
			if errors.Is(err, gigs.ErrNotGigOwner) {
				apperrors.WriteForbidden(w, r, "Only the gig's contractor may create invites")
				return
			}
			log.Error().Err(err).Str("gig_id", gigID.String()).Msg("Failed to create invite")
			apperrors.WriteInternalError(w, r, "Failed to create invite")
			return
		}

		if created {
			auditor.LogInviteCreated(ctx, userID, invite.ID, gigID, musicianID)
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"success":  true,
			"created":  created,
			"inviteId": invite.ID,
		})
	}
}

// HandleListMine handles GET /api/v1/invites
func HandleListMine(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		store := NewStore(pool)
		list, err := store.ListForMusician(ctx, userID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list invites")
			apperrors.WriteInternalError(w, r, "Failed to list invites")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"invites": list,
		})
	}
}

// HandleRespond handles POST /api/v1/invites/{invite_id}/respond
func HandleRespond(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		inviteID, err := uuid.Parse(chi.URLParam(r, "invite_id"))
		if err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid invite ID")
			return
		}

		var req RespondRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		var status Status
		switch req.Action {
		case "accept":
			status = StatusAccepted
		case "decline":
			status = StatusDeclined
		default:
			apperrors.WriteBadRequest(w, r, "Action must be one of: accept, decline")
			return
		}

		store := NewStore(pool)
		invite, err := store.Respond(ctx, inviteID, userID, status, time.Now().UTC())
		if err != nil {
			if errors.Is(err, ErrInviteNotFound) {
				apperrors.WriteNotFound(w, r, "Invite not found")
				return
			}
			if errors.Is(err, ErrNotInviteRecipient) {
				apperrors.WriteForbidden(w, r, "Only the invited musician may respond")
				return
			}
			if errors.Is(err, ErrInviteNotPending) {
				apperrors.WriteConflict(w, r, "Invite has already been settled")
				return
			}
			log.Error().Err(err).Str("invite_id", inviteID.String()).Msg("Failed to respond to invite")
			apperrors.WriteInternalError(w, r, "Failed to respond to invite")
			return
		}

		auditor.LogInviteResponded(ctx, userID, inviteID, string(invite.Status))

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"invite": invite,
		})
	}
}
