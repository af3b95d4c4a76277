package bearer

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResolveAuthHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
		wantOK bool
	}{
		{name: "header only", header: "Bearer abc", want: "Bearer abc", wantOK: true},
		{name: "cookie only", cookie: "xyz", want: "Bearer xyz", wantOK: true},
		{name: "header wins over cookie", header: "Bearer from-header", cookie: "from-cookie", want: "Bearer from-header", wantOK: true},
		{name: "header forwarded verbatim", header: "Token raw", cookie: "c", want: "Token raw", wantOK: true},
		{name: "nothing", wantOK: false},
		{name: "blank cookie", cookie: " ", wantOK: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/mentors", nil)
			if test.header != "" {
				r.Header.Set("Authorization", test.header)
			}
			if test.cookie != "" {
				r.AddCookie(&http.Cookie{Name: CookieName, Value: test.cookie})
			}

			got, ok := ResolveAuthHeader(r)
			if ok != test.wantOK || got != test.want {
				t.Errorf("ResolveAuthHeader() = %q, %v; want %q, %v", got, ok, test.want, test.wantOK)
			}
		})
	}
}

func TestRequireAuth_Rejects(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	w := httptest.NewRecorder()

	if RequireAuth(w, r) {
		t.Fatal("RequireAuth should reject a request without credentials")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"error":"Authentication required"}` {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestMiddleware_StoresHeader(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromRequest(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token"})
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if seen != "Bearer cookie-token" {
		t.Errorf("Expected synthesized bearer header, got %q", seen)
	}
}

func TestToken(t *testing.T) {
	if got := Token("Bearer abc"); got != "abc" {
		t.Errorf("Token() = %q", got)
	}
	if got := Token("abc"); got != "abc" {
		t.Errorf("Token() = %q", got)
	}
}
