package tokenstore

import (
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"mentorlink/internal/pkg/auth/jwt"
)

const origin = "http://localhost:8080"

func newStore(t *testing.T, primary Store) *TokenStore {
	t.Helper()

	s, err := New(primary, nil, origin)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func cookieValue(t *testing.T, s *TokenStore, name string) string {
	t.Helper()

	u, _ := url.Parse(origin + "/api/mentors")
	for _, c := range s.Jar().Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestSetToken_WritesBothLocations(t *testing.T) {
	primary := NewMemoryStore()
	s := newStore(t, primary)

	if err := s.SetToken("abc"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}

	if v, _ := primary.Get(KeyToken); v != "abc" {
		t.Errorf("Primary store not written, got %q", v)
	}
	if got := cookieValue(t, s, KeyToken); got != "abc" {
		t.Errorf("Cookie mirror not written, got %q", got)
	}
	if token, ok := s.GetToken(); !ok || token != "abc" {
		t.Errorf("GetToken returned %q %v", token, ok)
	}
}

// recordingJar keeps every cookie handed to SetCookies.
type recordingJar struct {
	http.CookieJar
	set []*http.Cookie
}

func (j *recordingJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.set = append(j.set, cookies...)
	j.CookieJar.SetCookies(u, cookies)
}

func TestSetToken_CookieLifetimeIsSevenDays(t *testing.T) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New failed: %v", err)
	}
	jar := &recordingJar{CookieJar: inner}

	s, err := New(NewMemoryStore(), jar, origin)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	// A credential that outlives the cookie must not stretch it.
	token, err := jwt.GenerateToken(&jwt.Payload{ID: "u1"}, "secret", 30*24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if err := s.SetToken(token); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}

	if len(jar.set) != 1 {
		t.Fatalf("Expected one mirrored cookie, got %d", len(jar.set))
	}
	cookie := jar.set[0]
	if cookie.Name != KeyToken {
		t.Errorf("Expected cookie %q, got %q", KeyToken, cookie.Name)
	}
	if cookie.MaxAge != 7*24*60*60 {
		t.Errorf("Expected max-age of 7 days, got %ds", cookie.MaxAge)
	}
	if got := cookie.Expires.Sub(now); got != 7*24*time.Hour {
		t.Errorf("Expected expiry 7 days out, got %s", got)
	}
}

func TestSetToken_Empty(t *testing.T) {
	s := newStore(t, NewMemoryStore())

	if err := s.SetToken("  "); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("Expected ErrEmptyToken, got %v", err)
	}
}

func TestClearToken_RemovesEveryLocation(t *testing.T) {
	primary := NewMemoryStore()
	s := newStore(t, primary)

	s.SetToken("abc")
	primary.Set("authToken", "legacy")
	primary.Set("user", `{"id":"u1"}`)
	u, _ := url.Parse(origin)
	s.Jar().SetCookies(u, []*http.Cookie{{Name: "next-auth.session-token", Value: "n", Path: "/"}})

	for i := 0; i < 2; i++ {
		if err := s.ClearToken(); err != nil {
			t.Fatalf("ClearToken #%d failed: %v", i+1, err)
		}
	}

	for _, key := range []string{KeyToken, "authToken", "accessToken", "user"} {
		if _, ok := primary.Get(key); ok {
			t.Errorf("Key %q survived ClearToken", key)
		}
	}
	for _, name := range mirrorCookies {
		if v := cookieValue(t, s, name); v != "" {
			t.Errorf("Cookie %q survived ClearToken", name)
		}
	}
	if _, ok := s.GetToken(); ok {
		t.Error("GetToken must report absent after ClearToken")
	}
}

func TestHealMirror(t *testing.T) {
	primary := NewMemoryStore()
	s := newStore(t, primary)

	if s.HealMirror() {
		t.Error("Nothing to heal without a credential")
	}

	// primary written behind the store's back, as an older client would
	primary.Set(KeyToken, "abc")
	if s.MirrorPresent() {
		t.Fatal("Mirror should be absent")
	}

	if !s.HealMirror() {
		t.Fatal("Expected the mirror to be healed")
	}
	if cookieValue(t, s, KeyToken) != "abc" {
		t.Error("Mirror does not carry the primary credential")
	}
	if s.HealMirror() {
		t.Error("Healing a consistent mirror must be a no-op")
	}

	// a stale cookie for another identity is replaced, never kept
	primary.Set(KeyToken, "def")
	if !s.HealMirror() || cookieValue(t, s, KeyToken) != "def" {
		t.Error("Stale mirror was not replaced")
	}
}

func TestGetToken_EvictsExpiredJWT(t *testing.T) {
	primary := NewMemoryStore()
	s := newStore(t, primary)

	token, err := jwt.GenerateToken(&jwt.Payload{ID: "u1"}, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	s.SetToken(token)
	primary.Set("accessToken", "legacy")

	if _, ok := s.GetToken(); !ok {
		t.Fatal("Fresh token should be returned")
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, ok := s.GetToken(); ok {
		t.Fatal("Expired token must be reported absent")
	}
	if _, ok := primary.Get(KeyToken); ok {
		t.Error("Expired token must be deleted from the primary store")
	}
	if _, ok := primary.Get("accessToken"); ok {
		t.Error("Legacy keys must be cleared with the expired token")
	}
	if s.MirrorPresent() {
		t.Error("Expired token must be deleted from the mirror")
	}
}

func TestGetToken_OpaqueNeverExpires(t *testing.T) {
	s := newStore(t, NewMemoryStore())
	s.SetToken("opaque-session-id")
	s.now = func() time.Time { return time.Now().Add(24 * 365 * time.Hour) }

	if token, ok := s.GetToken(); !ok || token != "opaque-session-id" {
		t.Errorf("Opaque token should survive, got %q %v", token, ok)
	}
}

func TestNew_InvalidOrigin(t *testing.T) {
	if _, err := New(NewMemoryStore(), nil, "localhost"); err == nil {
		t.Error("Expected error for relative origin")
	}
}

func TestFileStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	first := NewFileStore(path)
	if _, ok := first.Get(KeyToken); ok {
		t.Fatal("Missing file must read as empty")
	}
	if err := first.Set(KeyToken, "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	second := NewFileStore(path)
	if v, ok := second.Get(KeyToken); !ok || v != "abc" {
		t.Errorf("Value not persisted, got %q %v", v, ok)
	}

	if err := second.Delete(KeyToken); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := second.Delete(KeyToken); err != nil {
		t.Fatalf("Second delete failed: %v", err)
	}
	if _, ok := first.Get(KeyToken); ok {
		t.Error("Deleted value still visible")
	}
}
