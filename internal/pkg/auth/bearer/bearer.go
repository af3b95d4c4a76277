/*
Package bearer resolves the caller's credential for gateway routes.

The Authorization header is authoritative and forwarded verbatim. Without
it, the "token" cookie is turned into a "Bearer <value>" header. Routes call
RequireAuth (or sit behind Middleware) before any backend call that needs an
identity.
*/
package bearer

import (
	"context"
	"net/http"
	"strings"

	"mentorlink/internal/pkg/errs"
	"mentorlink/internal/pkg/resp"
)

// CookieName is the cookie that mirrors the caller's credential.
const CookieName = "token"

type contextKey string

const authHeaderKey contextKey = "auth_header"

// ResolveAuthHeader returns the Authorization value to forward to the
// backend, and false when the caller has no credential.
func ResolveAuthHeader(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); strings.TrimSpace(header) != "" {
		return header, true
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", false
	}

	return "Bearer " + cookie.Value, true
}

// RequireAuth writes the 401 response and returns false when no credential
// resolves. It returns true when the handler should continue.
func RequireAuth(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := ResolveAuthHeader(r); ok {
		return true
	}

	resp.RespondError(w, r, errs.NewError(errs.ErrAuthenticationRequired))
	return false
}

// Middleware applies RequireAuth and stores the resolved header in the
// request context for handlers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header, ok := ResolveAuthHeader(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrAuthenticationRequired))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authHeaderKey, header)))
	})
}

// FromRequest returns the header stored by Middleware, resolving it again
// when the handler runs outside the middleware.
func FromRequest(r *http.Request) (string, bool) {
	if header, ok := r.Context().Value(authHeaderKey).(string); ok && header != "" {
		return header, true
	}
	return ResolveAuthHeader(r)
}

// Token strips the "Bearer " scheme from an Authorization value.
func Token(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return strings.TrimSpace(header)
}
