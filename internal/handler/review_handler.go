package handler

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mentorlink/internal/app/mapping"
	"mentorlink/internal/pkg/errs"
	"mentorlink/internal/pkg/req"
	"mentorlink/internal/pkg/resp"
)

const (
	minRating = 1
	maxRating = 5
)

// HandleListReviews proxies GET /api/reviews/{mentorId}.
func HandleListReviews(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mentorID := chi.URLParam(r, "mentorId")

		payload, err := deps.Backend.Get(r.Context(), authHeader(r), "/api/reviews/"+pathSegment(mentorID), nil)
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch reviews")
			return
		}

		reviews, err := mapping.Review.List(payload)
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch reviews")
			return
		}

		resp.RespondSuccess(w, r, reviews)
	}
}

// HandleCreateReview posts a 1 to 5 star review for a mentor.
func HandleCreateReview(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mentorID := chi.URLParam(r, "mentorId")

		body, customErr := req.BindFields(r, "rating", "comment")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		rating, ok := req.Number(body, "rating")
		if !ok || rating < minRating || rating > maxRating || rating != math.Trunc(rating) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		review := map[string]any{
			"mentorId": mentorID,
			"rating":   int(rating),
			"comment":  req.String(body, "comment"),
		}

		payload, err := deps.Backend.Send(r.Context(), http.MethodPost, authHeader(r), "/api/reviews/"+pathSegment(mentorID), review)
		if err != nil {
			respondUpstream(w, r, err, "Failed to submit review")
			return
		}

		created, err := mapping.Review.One(payload, "review")
		if err != nil {
			respondUpstream(w, r, err, "Failed to submit review")
			return
		}

		resp.RespondCreated(w, r, created)
	}
}
