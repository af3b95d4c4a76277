/*
Package handler provides the gateway's HTTP handlers and routing.

This file holds the mentor directory routes and the match route with its
single fallback.
*/
package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mentorlink/internal/app/mapping"
	"mentorlink/internal/app/ranking"
	"mentorlink/internal/pkg/req"
	"mentorlink/internal/pkg/resp"
)

// mentorFilters are forwarded to the backend as given.
var mentorFilters = []string{"category", "availability", "query"}

// HandleListMentors proxies GET /api/mentors with normalized filters.
func HandleListMentors(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := url.Values{}
		for _, key := range mentorFilters {
			if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
				query.Set(key, v)
			}
		}

		for _, key := range []string{"minPrice", "maxPrice"} {
			price, ok, customErr := req.QueryNumber(r, key)
			if customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
			if ok {
				query.Set(key, strconv.FormatFloat(price, 'f', -1, 64))
			}
		}

		payload, err := deps.Backend.Get(r.Context(), authHeader(r), "/api/mentors", query)
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch mentors")
			return
		}

		mentors, err := mapping.Mentor.List(payload)
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch mentors")
			return
		}

		resp.RespondSuccess(w, r, mentors)
	}
}

// HandleGetMentor proxies GET /api/mentors/{id}.
func HandleGetMentor(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		payload, err := deps.Backend.Get(r.Context(), authHeader(r), "/api/mentors/"+pathSegment(id), nil)
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch mentor")
			return
		}

		mentor, err := mapping.Mentor.One(payload, "mentor")
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch mentor")
			return
		}

		resp.RespondSuccess(w, r, mentor)
	}
}

// HandleMatch returns the top ranked mentors for a mentee. When the match
// endpoint fails, the full directory is fetched once and ranked locally;
// when that fails too the result is an empty list.
func HandleMatch(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())
		id := chi.URLParam(r, "id")
		interests := splitList(r.URL.Query().Get("interests"))
		auth := authHeader(r)

		candidates, err := fetchMatches(r, deps, auth, "/api/match/"+pathSegment(id))
		if err != nil {
			logger.Warn().Err(err).Str("mentee_id", id).Msg("Match endpoint failed, ranking full directory")

			candidates, err = fetchMatches(r, deps, auth, "/api/mentors")
			if err != nil {
				logger.Warn().Err(err).Msg("Mentor directory fallback failed, returning empty matches")
				resp.RespondSuccess(w, r, []mapping.Record{})
				return
			}
		}

		resp.RespondSuccess(w, r, ranking.Rank(candidates, interests))
	}
}

func fetchMatches(r *http.Request, deps *AppDeps, auth, path string) ([]mapping.Record, error) {
	payload, err := deps.Backend.Get(r.Context(), auth, path, nil)
	if err != nil {
		return nil, err
	}
	return mapping.Match.List(payload)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
