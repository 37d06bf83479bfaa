package musicians

import (
	"encoding/json"
	"net/http"

	"github.com/chamaomusico/gigmatch/internal/apperrors"
	"github.com/chamaomusico/gigmatch/internal/audit"
	"github.com/chamaomusico/gigmatch/internal/auth"
	"github.com/chamaomusico/gigmatch/internal/validation"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type UpsertProfileRequest struct {
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	MaxRadiusKm      *float64 `json:"maxRadiusKm"`
	RadiusOverrideKm *float64 `json:"radiusOverrideKm"`
	Instruments      []string `json:"instruments"`
	State            string   `json:"state"`
	City             string   `json:"city"`
}

// HandleUpsertProfile handles PUT /api/v1/musicians/me
func HandleUpsertProfile(pool *pgxpool.Pool, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.GetUserID(ctx)

		if auth.GetUserType(ctx) != auth.UserTypeMusician {
			apperrors.WriteForbidden(w, r, "Only musician accounts have a matching profile")
			return
		}

		var req UpsertProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
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
		if req.MaxRadiusKm != nil {
			if err := validation.ValidateRadiusKm(*req.MaxRadiusKm); err != nil {
				apperrors.WriteBadRequest(w, r, err.Error())
				return
			}
		}
		if req.RadiusOverrideKm != nil {
			if err := validation.ValidateRadiusKm(*req.RadiusOverrideKm); err != nil {
				apperrors.WriteBadRequest(w, r, err.Error())
				return
			}
		}

		instruments := make([]string, 0, len(req.Instruments))
		for _, raw := range req.Instruments {
			instrument := validation.NormalizeInstrument(raw)
			if err := validation.ValidateInstrument(instrument); err != nil {
				apperrors.WriteBadRequest(w, r, err.Error())
				return
			}
			instruments = append(instruments, instrument)
		}

		store := NewStore(pool)
		profile, err := store.UpsertProfile(ctx, UpsertProfileParams{
			UserID:           userID,
			Latitude:         req.Latitude,
			Longitude:        req.Longitude,
			MaxRadiusKm:      req.MaxRadiusKm,
			RadiusOverrideKm: req.RadiusOverrideKm,
			Instruments:      instruments,
			State:            req.State,
			City:             req.City,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to upsert musician profile")
			apperrors.WriteInternalError(w, r, "Failed to save profile")
			return
		}

		auditor.Log(ctx, userID, audit.EventProfileUpdated, map[string]interface{}{
			"instruments": instruments,
		})

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"profile": profile,
		})
	}
}
