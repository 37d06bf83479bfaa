package gigs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/chamaomusico/gigmatch/internal/apperrors"
	"github.com/chamaomusico/gigmatch/internal/audit"
	"github.com/chamaomusico/gigmatch/internal/auth"
	"github.com/chamaomusico/gigmatch/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type CreateGigRequest struct {
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"startsAt"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	State     string    `json:"state"`
	City      string    `json:"city"`
}

type AddRoleRequest struct {
	Instrument string `json:"instrument"`
}

// HandleCreate handles POST /api/v1/gigs
func HandleCreate(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		var req CreateGigRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" || len(req.Title) > 200 {
			apperrors.WriteBadRequest(w, r, "Title is required (max 200 characters)")
			return
		}
		if req.StartsAt.IsZero() {
			apperrors.WriteBadRequest(w, r, "Start time is required")
			return
		}
		if (req.Latitude == nil) != (req.Longitude == nil) {
			apperrors.WriteBadRequest(w, r, "Latitude and longitude must be provided together")
			return
		}
		if req.Latitude != nil {
			if err := validation.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
				apperrors.WriteBadRequest(w, r, err.Error())
				return
			}
		}

		service := NewService(pool)
		gig, err := service.Create(ctx, CreateParams{
			ContractorID: userID,
			Title:        req.Title,
			StartsAt:     req.StartsAt,
			Latitude:     req.Latitude,
			Longitude:    req.Longitude,
			State:        req.State,
			City:         req.City,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to create gig")
			apperrors.WriteInternalError(w, r, "Failed to create gig")
			return
		}

		auditor.LogGigCreated(ctx, userID, gig.ID)

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"gig": gig,
		})
	}
}

// HandleGet handles GET /api/v1/gigs/{gig_id}
func HandleGet(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		gigID, err := uuid.Parse(chi.URLParam(r, "gig_id"))
		if err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid gig ID")
			return
		}

		service := NewService(pool)
		gig, err := service.GetByID(ctx, gigID)
		if err != nil {
			if errors.Is(err, ErrGigNotFound) {
				apperrors.WriteNotFound(w, r, "Gig not found")
				return
			}
			log.Error().Err(err).Msg("Failed to load gig")
			apperrors.WriteInternalError(w, r, "Failed to load gig")
			return
		}

		roles, err := service.ListRoles(ctx, gigID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list gig roles")
			apperrors.WriteInternalError(w, r, "Failed to load gig")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"gig":   gig,
			"roles": roles,
		})
	}
}

// HandlePublish handles POST /api/v1/gigs/{gig_id}/publish
func HandlePublish(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		gigID, err := uuid.Parse(chi.URLParam(r, "gig_id"))
		if err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid gig ID")
			return
		}

		service := NewService(pool)
		gig, err := service.Publish(ctx, gigID, userID)
		if err != nil {
			if errors.Is(err, ErrGigNotFound) {
				apperrors.WriteNotFound(w, r, "Gig not found")
				return
			}
			if errors.Is(err, ErrNotGigOwner) {
				apperrors.WriteForbidden(w, r, "Only the gig's contractor may publish it")
				return
			}
			if errors.Is(err, ErrInvalidTransition) {
				apperrors.WriteConflict(w, r, "Gig is not in draft status")
				return
			}
			log.Error().Err(err).Msg("Failed to publish gig")
			apperrors.WriteInternalError(w, r, "Failed to publish gig")
			return
		}

		auditor.LogGigPublished(ctx, userID, gig.ID)

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"gig": gig,
		})
	}
}

// HandleAddRole handles POST /api/v1/gigs/{gig_id}/roles
func HandleAddRole(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		gigID, err := uuid.Parse(chi.URLParam(r, "gig_id"))
		if err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid gig ID")
			return
		}

		var req AddRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		// Instrument is optional; roles without one exist but are never matched.
		var instrument *string
		if normalized := validation.NormalizeInstrument(req.Instrument); normalized != "" {
			if err := validation.ValidateInstrument(normalized); err != nil {
				apperrors.WriteBadRequest(w, r, err.Error())
				return
			}
			instrument = &normalized
		}

		service := NewService(pool)
		role, err := service.AddRole(ctx, gigID, userID, instrument)
		if err != nil {
			if errors.Is(err, ErrGigNotFound) {
				apperrors.WriteNotFound(w, r, "Gig not found")
				return
			}
			if errors.Is(err, ErrNotGigOwner) {
				apperrors.WriteForbidden(w, r, "Only the gig's contractor may add roles")
				return
			}
			log.Error().Err(err).Msg("Failed to add gig role")
			apperrors.WriteInternalError(w, r, "Failed to add gig role")
			return
		}

		auditor.Log(ctx, userID, audit.EventRoleAdded, map[string]interface{}{
			"gig_id":  gigID,
			"role_id": role.ID,
		})

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"role": role,
		})
	}
}
