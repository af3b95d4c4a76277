/*
Package handler provides the gateway's HTTP handlers and routing.

This file defines the Router. Every /api route except logout sits behind the
credential check; the relay upgrade has its own identity resolution.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"mentorlink/internal/pkg/auth/bearer"
	"mentorlink/internal/pkg/limiter"
	"mentorlink/internal/pkg/logx"
	"mentorlink/internal/pkg/resp"
)

const (
	WriteRate  = 0.5
	WriteBurst = 5
	JoinRate   = 0.2
	JoinBurst  = 5
)

// Router builds the gateway routing table.
func Router(deps *AppDeps) http.Handler {
	writeLimiter := limiter.NewIPRateLimiter(rate.Limit(WriteRate), WriteBurst)
	joinLimiter := limiter.NewIPRateLimiter(rate.Limit(JoinRate), JoinBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if deps.Config.IsDevelopment() || origin == "" {
				return true
			}

			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: origin not allowed", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := deps.Config.AllowedOrigins
	if deps.Config.IsDevelopment() && len(corsAllowedOrigins) == 0 {
		corsAllowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "mentorlink gateway",
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/auth/logout", HandleLogout(deps))

		api.Group(func(authed chi.Router) {
			authed.Use(bearer.Middleware)

			authed.Get("/auth/me", HandleMe(deps))

			authed.Get("/mentors", HandleListMentors(deps))
			authed.Get("/mentors/{id}", HandleGetMentor(deps))
			authed.Get("/match/{id}", HandleMatch(deps))

			authed.Get("/sessions", HandleListSessions(deps))
			authed.With(writeLimiter.Middleware).Post("/sessions", HandleCreateSession(deps))

			authed.Get("/reviews/{mentorId}", HandleListReviews(deps))
			authed.With(writeLimiter.Middleware).Post("/reviews/{mentorId}", HandleCreateReview(deps))

			authed.Get("/conversations", HandleListConversations(deps))
			authed.Get("/messages/{conversationId}", HandleListMessages(deps))
			authed.Post("/messages", HandleCreateMessage(deps))

			authed.Get("/profile", HandleGetProfile(deps))
			authed.Put("/profile", HandleUpdateProfile(deps))
			authed.Post("/profile/avatar/presign", HandlePresignAvatar(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(deps, wsUpgrader, joinLimiter))

	return r
}
