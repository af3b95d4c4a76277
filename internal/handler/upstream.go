package handler

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"mentorlink/internal/app/backend"
	"mentorlink/internal/pkg/auth/bearer"
	"mentorlink/internal/pkg/errs"
	"mentorlink/internal/pkg/resp"
)

// respondUpstream converts a failed backend call into the route's error
// response. fallback is used when the backend gave no usable message.
func respondUpstream(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	upstreamErr := backend.AsUpstream(err)

	zerolog.Ctx(r.Context()).Warn().
		Err(err).
		Int("upstream_status", upstreamErr.Status).
		Msg(fallback)

	resp.RespondError(w, r, errs.Upstream(upstreamErr.Status, upstreamErr.Message, fallback))
}

// authHeader returns the credential resolved by bearer.Middleware.
func authHeader(r *http.Request) string {
	header, _ := bearer.FromRequest(r)
	return header
}

func pathSegment(s string) string {
	return url.PathEscape(s)
}
