/*
Package tokenstore keeps the client's credential in its two locations: the
primary Store and a cookie mirror for the API origin.

The primary store is authoritative. Every mutation of either location goes
through TokenStore under one lock, so a reader never sees the two locations
half updated. A JWT credential whose exp has passed is evicted from both
locations on the next read.
*/
package tokenstore

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mentorlink/internal/pkg/auth/jwt"
	"mentorlink/internal/pkg/logx"
)

// KeyToken is the primary store key and the mirror cookie name.
const KeyToken = "token"

// DefaultCookieLifetime applies to opaque credentials, whose expiry is unknown.
const DefaultCookieLifetime = 7 * 24 * time.Hour

// ErrEmptyToken is returned by SetToken for a blank credential.
var ErrEmptyToken = errors.New("token is empty")

// legacyKeys are primary store keys written by older clients.
var legacyKeys = []string{"authToken", "accessToken", "user"}

// mirrorCookies are every cookie name that may carry a credential.
var mirrorCookies = []string{KeyToken, "authToken", "next-auth.session-token"}

// TokenStore is the single owner of credential state.
type TokenStore struct {
	mu sync.Mutex

	primary Store
	jar     http.CookieJar
	origin  *url.URL

	now    func() time.Time
	logger zerolog.Logger
}

// New builds a TokenStore mirroring into jar for apiOrigin. A nil jar gets a
// fresh in-memory cookie jar.
func New(primary Store, jar http.CookieJar, apiOrigin string) (*TokenStore, error) {
	origin, err := url.Parse(apiOrigin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("invalid API origin %q", apiOrigin)
	}

	if jar == nil {
		if jar, err = cookiejar.New(nil); err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
	}

	return &TokenStore{
		primary: primary,
		jar:     jar,
		origin:  &url.URL{Scheme: origin.Scheme, Host: origin.Host, Path: "/"},
		now:     time.Now,
		logger:  logx.Component("tokenstore"),
	}, nil
}

// Jar returns the cookie mirror so HTTP clients send it to the API origin.
func (s *TokenStore) Jar() http.CookieJar { return s.jar }

// GetToken returns the current credential. An expired JWT is evicted from
// every location and reported absent.
func (s *TokenStore) GetToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.primary.Get(KeyToken)
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}

	if jwt.Expired(token, s.now()) {
		s.logger.Info().Msg("Stored credential expired, evicting")
		if err := s.clearLocked(); err != nil {
			s.logger.Warn().Err(err).Msg("Evicting expired credential was incomplete")
		}
		return "", false
	}

	return token, true
}

// SetToken stores token in the primary store and mirrors it to the cookie.
// The mirror is best effort: a primary failure leaves both locations as
// they were.
func (s *TokenStore) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.primary.Set(KeyToken, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	s.mirrorLocked(token)
	return nil
}

// ClearToken removes the credential, the legacy keys and every credential
// cookie. It is idempotent.
func (s *TokenStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clearLocked()
}

func (s *TokenStore) clearLocked() error {
	var errList []error
	for _, key := range append([]string{KeyToken}, legacyKeys...) {
		if err := s.primary.Delete(key); err != nil {
			errList = append(errList, fmt.Errorf("delete %s: %w", key, err))
		}
	}

	expired := make([]*http.Cookie, 0, len(mirrorCookies))
	for _, name := range mirrorCookies {
		expired = append(expired, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	}
	s.jar.SetCookies(s.origin, expired)

	return errors.Join(errList...)
}

// MirrorPresent reports whether the credential cookie is set.
func (s *TokenStore) MirrorPresent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.mirroredLocked()
	return ok
}

// HealMirror rewrites the cookie when the primary store holds a credential
// the cookie does not carry. It reports whether the cookie was rewritten.
func (s *TokenStore) HealMirror() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.primary.Get(KeyToken)
	if !ok || token == "" {
		return false
	}

	if mirrored, ok := s.mirroredLocked(); ok && mirrored == token {
		return false
	}

	s.mirrorLocked(token)
	s.logger.Debug().Msg("Credential cookie healed from primary store")
	return true
}

func (s *TokenStore) mirroredLocked() (string, bool) {
	for _, c := range s.jar.Cookies(s.origin) {
		if c.Name == KeyToken && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}

func (s *TokenStore) mirrorLocked(token string) {
	cookie := &http.Cookie{
		Name:     KeyToken,
		Value:    token,
		Path:     "/",
		Secure:   s.origin.Scheme == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(DefaultCookieLifetime.Seconds()),
		Expires:  s.now().Add(DefaultCookieLifetime),
	}

	s.jar.SetCookies(s.origin, []*http.Cookie{cookie})
}
