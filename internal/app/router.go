package app

import (
	"net/http"

	"github.com/chamaomusico/gigmatch/internal/apperrors"
	"github.com/chamaomusico/gigmatch/internal/audit"
	"github.com/chamaomusico/gigmatch/internal/auth"
	"github.com/chamaomusico/gigmatch/internal/config"
	"github.com/chamaomusico/gigmatch/internal/gigs"
	"github.com/chamaomusico/gigmatch/internal/invites"
	"github.com/chamaomusico/gigmatch/internal/match"
	"github.com/chamaomusico/gigmatch/internal/musicians"
	"github.com/chamaomusico/gigmatch/internal/notify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRouter creates and configures the Chi router with all middleware and routes
func NewRouter(pool *pgxpool.Pool, cfg *config.Config, notifier *notify.Dispatcher) *chi.Mux {
	r := chi.NewRouter()

	isProduction := !cfg.IsDev()

	// Middleware stack
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(apperrors.RequestIDMiddleware) // Add request ID to context
	r.Use(LoggingMiddleware)             // Structured request logging
	r.Use(RecoveryMiddleware)            // Recover from panics
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(auth.AuthMiddleware(cfg.JWTSecret)) // Validate session cookies

	// Audit writer (shared across API routes)
	auditor := audit.NewWriter(pool)

	// Matching and invite issuing pipeline
	musicianStore := musicians.NewStore(pool)
	matcher := match.NewMatcher(musicianStore, musicianStore)
	gigService := gigs.NewService(pool)
	inviteStore := invites.NewStore(pool)
	issuer := invites.NewIssuer(gigService, matcher, inviteStore, notifier)

	// Health check routes (no authentication required)
	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(pool))

	// API routes - Authentication
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)              // Set Content-Type to application/json
		r.Use(CSRFMiddleware(isProduction)) // Validate CSRF tokens

		r.Post("/signup", auth.HandleSignup(pool, auditor, cfg.JWTSecret, cfg.SessionDays, isProduction))

		// Login with rate limiting (10 requests per minute)
		r.With(LoginRateLimitMiddleware()).Post("/login", auth.HandleLogin(pool, cfg.JWTSecret, cfg.SessionDays, isProduction))

		// Logout (requires authentication)
		r.With(auth.RequireAuth).Post("/logout", auth.HandleLogout)
	})

	// API routes - Gigs (require authentication)
	r.Route("/api/v1/gigs", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(CSRFMiddleware(isProduction))
		r.Use(auth.RequireAuth)

		r.Post("/", gigs.HandleCreate(pool, auditor))
		r.Get("/{gig_id}", gigs.HandleGet(pool))
		r.Post("/{gig_id}/publish", gigs.HandlePublish(pool, auditor))
		r.Post("/{gig_id}/roles", gigs.HandleAddRole(pool, auditor))
	})

	// API routes - Musician profile (require authentication)
	r.Route("/api/v1/musicians", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(CSRFMiddleware(isProduction))
		r.Use(auth.RequireAuth)

		r.Put("/me", musicians.HandleUpsertProfile(pool, auditor))
	})

	// API routes - Invites (require authentication)
	r.Route("/api/v1/invites", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(CSRFMiddleware(isProduction))
		r.Use(auth.RequireAuth)

		// Auto-creation fans out to every role of a gig; rate limited per IP
		r.With(InviteRateLimitMiddleware(cfg.RateLimitRPM)).Post("/auto", invites.HandleAutoCreate(issuer, auditor))

		r.Post("/", invites.HandleManualCreate(issuer, auditor))
		r.Get("/", invites.HandleListMine(pool))
		r.Post("/{invite_id}/respond", invites.HandleRespond(pool, auditor))
	})

	return r
}

// handleHealthz returns a simple liveness check
// Always returns 200 OK if the service is running
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleReadyz returns a readiness check that includes database connectivity
// Returns 200 OK if service is ready to accept traffic, 503 if not
func handleReadyz(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check database connectivity
		if err := pool.Ping(r.Context()); err != nil {
			apperrors.WriteServiceUnavailable(w, r, "Database connection failed")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
			"status": "ready",
			"db":     "ok",
		})
	}
}
