// Package api wires the HTTP surface of the guild backend.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"guild-backend/internal/auth"
	"guild-backend/internal/handler"
	"guild-backend/internal/pkg/db"
)

// Handlers bundles every endpoint group the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Screenshot  *handler.ScreenshotHandler
	Squad       *handler.SquadHandler
	SquadAdmin  *handler.SquadAdminHandler
	Leaderboard *handler.LeaderboardHandler
	Settings    *handler.SettingsHandler
}

// NewRouter builds the full route tree. Public routes need no token,
// player routes need a valid bearer token, admin routes additionally need
// the admin role.
func NewRouter(h Handlers, authmw *auth.Middleware, pool *db.Pool) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(pool))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Get("/users", h.Auth.ListUsers)

			r.Group(func(r chi.Router) {
				r.Use(authmw.Authenticate)
				r.Get("/profile", h.Auth.Profile)
				r.Put("/profile", h.Auth.UpdateProfile)
			})
		})

		r.Route("/screenshots", func(r chi.Router) {
			r.Get("/approved", h.Screenshot.Approved)
			r.Get("/player/{userID}", h.Screenshot.ByPlayer)

			r.Group(func(r chi.Router) {
				r.Use(authmw.Authenticate)
				r.Post("/submit", h.Screenshot.Submit)
			})

			r.Group(func(r chi.Router) {
				r.Use(authmw.Authenticate, authmw.RequireAdmin)
				r.Get("/pending", h.Screenshot.Pending)
				r.Put("/approve/{id}", h.Screenshot.Approve)
				r.Put("/reject/{id}", h.Screenshot.Reject)
			})
		})

		r.Route("/squads", func(r chi.Router) {
			r.Get("/approved", h.Squad.Approved)
			r.Get("/user/{userID}", h.Squad.ByUser)

			r.Group(func(r chi.Router) {
				r.Use(authmw.Authenticate)
				r.Post("/create", h.Squad.Create)
				r.Put("/{id}/add-member", h.Squad.AddMember)
				r.Put("/{id}/remove-member", h.Squad.RemoveMember)
				r.Put("/{id}/leave", h.Squad.Leave)
				r.Put("/{id}/update-name", h.Squad.Rename)
				r.Put("/{id}/deactivate", h.Squad.Deactivate)
			})

			r.Group(func(r chi.Router) {
				r.Use(authmw.Authenticate, authmw.RequireAdmin)
				r.Get("/pending/admin/list", h.SquadAdmin.Pending)
				r.Put("/{id}/approve", h.SquadAdmin.Approve)
				r.Put("/{id}/reject", h.SquadAdmin.Reject)

				r.Route("/admin", func(r chi.Router) {
					r.Get("/list", h.SquadAdmin.List)
					r.Get("/stats", h.SquadAdmin.Stats)
					r.Get("/{id}/analytics", h.SquadAdmin.Analytics)
					r.Put("/{id}/kick", h.SquadAdmin.Kick)
					r.Put("/{id}/add-member", h.SquadAdmin.AddMember)
					r.Delete("/{id}", h.SquadAdmin.Delete)
				})
			})

			r.Get("/{id}", h.Squad.Get)
		})

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/weekly", h.Leaderboard.Weekly)
			r.Get("/user-rank/{userID}", h.Leaderboard.UserRank)
			r.Get("/history/{week}", h.Leaderboard.History)

			r.Group(func(r chi.Router) {
				r.Use(authmw.Authenticate, authmw.RequireAdmin)
				r.Post("/reset-weekly", h.Leaderboard.Reset)
			})
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.Settings.Get)

			r.Group(func(r chi.Router) {
				r.Use(authmw.Authenticate, authmw.RequireAdmin)
				r.Put("/", h.Settings.Update)
			})
		})
	})

	return r
}

func healthHandler(pool *db.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := pool.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write([]byte(`{"status":"` + status + `"}`))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("Request handled")
	})
}
