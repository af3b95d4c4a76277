/*
Package handler provides the gateway's HTTP handlers and routing.

This file holds the session identity routes. Credential issuance itself
belongs to the backend; the gateway only resolves and clears it.
*/
package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"mentorlink/internal/app/mapping"
	"mentorlink/internal/app/user"
	"mentorlink/internal/pkg/auth/bearer"
	"mentorlink/internal/pkg/resp"
)

// HandleMe returns the authenticated user behind the caller's credential.
func HandleMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := deps.Backend.Get(r.Context(), authHeader(r), "/api/auth/me", nil)
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch user")
			return
		}

		me, err := mapping.User.One(payload, "user")
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch user")
			return
		}
		role, _ := me["role"].(string)
		me["role"] = string(user.ParseRole(role))

		resp.RespondSuccess(w, r, me)
	}
}

// HandleLogout tells the backend about the logout when a credential is
// present and always expires the credential cookie. It never fails, so a
// client with a dead credential can still clear it.
//
// It is the one /api route mounted outside bearer.Middleware. The backend
// is only called when a credential resolves.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if header, ok := bearer.ResolveAuthHeader(r); ok {
			if _, err := deps.Backend.Get(r.Context(), header, "/api/auth/logout", nil); err != nil {
				zerolog.Ctx(r.Context()).Info().Err(err).Msg("Backend logout failed, clearing cookie anyway")
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     bearer.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   !deps.Config.IsDevelopment(),
			SameSite: http.SameSiteLaxMode,
		})

		resp.RespondSuccess(w, r, map[string]bool{"success": true})
	}
}
