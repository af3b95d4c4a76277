/*
Package handler provides the gateway's HTTP handlers and routing.

This file upgrades relay connections. The caller's identity is resolved
before the upgrade so an anonymous connection never reaches the hub.
*/
package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"mentorlink/internal/app/user"
	"mentorlink/internal/pkg/auth/bearer"
	"mentorlink/internal/pkg/auth/jwt"
	"mentorlink/internal/pkg/errs"
	"mentorlink/internal/pkg/limiter"
	"mentorlink/internal/pkg/logx"
	"mentorlink/internal/pkg/resp"
)

// HandleWebSocket creates the handler for GET /ws.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)
		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: rate limit exceeded", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		identity, customErr := resolveIdentity(r, deps.Config.RelayJWTSecret)
		if customErr != nil {
			logx.Info("WebSocket connection rejected: no identity", "code", customErr.Code)
			resp.RespondError(w, r, customErr)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		if err := deps.Relay.Serve(conn, identity); err != nil {
			logx.Info("WebSocket connection refused by relay", "error", err.Error())
		}
	}
}

// resolveIdentity reads the relay identity. With a secret configured only a
// verified token is accepted. Without one, unverified claims are used and
// the uid/name query parameters are the last resort.
func resolveIdentity(r *http.Request, secret string) (user.User, *errs.CustomError) {
	token := r.URL.Query().Get("token")
	if header, ok := bearer.ResolveAuthHeader(r); ok {
		token = bearer.Token(header)
	}
	token = strings.TrimSpace(token)

	if secret != "" {
		if token == "" {
			return user.User{}, errs.NewError(errs.ErrAuthenticationRequired)
		}
		payload, err := jwt.ParseToken(token, secret)
		if err != nil || payload.UserID() == "" {
			return user.User{}, errs.NewError(errs.ErrInvalidToken)
		}
		return user.FromPayload(payload), nil
	}

	if token != "" {
		if payload, err := jwt.ParseUnverified(token); err == nil && payload.UserID() != "" {
			return user.FromPayload(payload), nil
		}
	}

	query := r.URL.Query()
	if id := strings.TrimSpace(query.Get("uid")); id != "" {
		return user.User{ID: id, Name: strings.TrimSpace(query.Get("name")), Role: user.RoleMentee}, nil
	}

	return user.User{}, errs.NewError(errs.ErrAuthenticationRequired)
}
