package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"mentorlink/internal/app/mapping"
	"mentorlink/internal/pkg/errs"
	"mentorlink/internal/pkg/req"
	"mentorlink/internal/pkg/resp"
)

// DefaultSessionMinutes is the duration booked when none is given.
const DefaultSessionMinutes = 60

// HandleCreateSession books a session with a mentor.
func HandleCreateSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, customErr := req.BindFields(r, "mentorId", "date", "time")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		duration := float64(DefaultSessionMinutes)
		if _, present := body["duration"]; present {
			d, ok := req.Number(body, "duration")
			if !ok || d <= 0 {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			duration = d
		}

		booking := map[string]any{
			"mentorId": req.String(body, "mentorId"),
			"date":     req.String(body, "date"),
			"time":     req.String(body, "time"),
			"duration": int(duration),
			"topic":    req.String(body, "topic"),
			"notes":    req.String(body, "notes"),
		}

		payload, err := deps.Backend.Send(r.Context(), http.MethodPost, authHeader(r), "/api/sessions", booking)
		if err != nil {
			respondUpstream(w, r, err, "Failed to book session")
			return
		}

		session, err := mapping.Session.One(payload, "session")
		if err != nil {
			respondUpstream(w, r, err, "Failed to book session")
			return
		}

		resp.RespondCreated(w, r, session)
	}
}

// HandleListSessions lists the caller's sessions. A backend failure yields
// an empty list so the dashboard still renders.
func HandleListSessions(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := url.Values{}
		if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
			query.Set("status", status)
		}

		payload, err := deps.Backend.Get(r.Context(), authHeader(r), "/api/sessions", query)
		if err == nil {
			var sessions []mapping.Record
			if sessions, err = mapping.Session.List(payload); err == nil {
				resp.RespondSuccess(w, r, sessions)
				return
			}
		}

		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Session listing failed, returning empty list")
		resp.RespondSuccess(w, r, []mapping.Record{})
	}
}
