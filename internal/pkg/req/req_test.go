package req

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"mentorlink/internal/pkg/errs"
)

func jsonRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestBindFields_ListsAllMissing(t *testing.T) {
	r := jsonRequest(`{"mentorId":"m1","date":"  ","topic":"Go"}`)

	_, customErr := BindFields(r, "mentorId", "date", "time")
	if customErr == nil {
		t.Fatal("Expected validation error")
	}
	if customErr.Code != errs.ErrValidationFailed {
		t.Errorf("Expected ErrValidationFailed, got %d", customErr.Code)
	}
	if !reflect.DeepEqual(customErr.Fields, []string{"date", "time"}) {
		t.Errorf("Unexpected missing fields %v", customErr.Fields)
	}
}

func TestBindFields_AllPresent(t *testing.T) {
	r := jsonRequest(`{"mentorId":"m1","date":"2026-10-20","time":"10:00","duration":45}`)

	body, customErr := BindFields(r, "mentorId", "date", "time")
	if customErr != nil {
		t.Fatalf("Unexpected error: %v", customErr)
	}
	if String(body, "mentorId") != "m1" {
		t.Errorf("Unexpected mentorId %q", String(body, "mentorId"))
	}
	if d, ok := Number(body, "duration"); !ok || d != 45 {
		t.Errorf("Expected duration 45, got %v (%v)", d, ok)
	}
}

func TestBindJSON_Errors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantCode    int
	}{
		{name: "wrong content type", contentType: "text/plain", body: `{}`, wantCode: errs.ErrUnsupportedMediaType},
		{name: "broken json", contentType: "application/json", body: `{"a":`, wantCode: errs.ErrInvalidJSONFormat},
		{name: "trailing document", contentType: "application/json", body: `{"a":1}{"b":2}`, wantCode: errs.ErrExtraContentInBody},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(test.body))
			r.Header.Set("Content-Type", test.contentType)

			var dst map[string]any
			customErr := BindJSON(r, &dst)
			if customErr == nil || customErr.Code != test.wantCode {
				t.Fatalf("Expected code %d, got %v", test.wantCode, customErr)
			}
		})
	}
}

func TestQueryNumber(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/mentors?minPrice=20&maxPrice=abc", nil)

	v, ok, customErr := QueryNumber(r, "minPrice")
	if customErr != nil || !ok || v != 20 {
		t.Errorf("Expected 20, got %v %v %v", v, ok, customErr)
	}

	if _, _, customErr := QueryNumber(r, "maxPrice"); customErr == nil {
		t.Error("Expected error for non numeric maxPrice")
	}

	if _, ok, customErr := QueryNumber(r, "absent"); ok || customErr != nil {
		t.Error("Absent parameter should be ok=false without error")
	}
}
