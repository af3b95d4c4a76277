/*
Package req binds and validates gateway request bodies and query strings.

Bodies are decoded into a generic field map so that presence checks can
distinguish "missing" from "zero value", which typed structs cannot.
*/
package req

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"mentorlink/internal/pkg/errs"
)

// MaxBodyBytes caps the size of any JSON body accepted by the gateway.
const MaxBodyBytes int64 = 1 << 20

// BindJSON decodes the JSON request body into dst.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	decoder.UseNumber()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// BindFields decodes a JSON object body and checks that every required key
// is present and non-empty. The returned error lists all missing names in
// the order they were requested.
func BindFields(r *http.Request, required ...string) (map[string]any, *errs.CustomError) {
	body := map[string]any{}
	if customErr := BindJSON(r, &body); customErr != nil {
		return nil, customErr
	}

	if missing := Missing(body, required...); len(missing) > 0 {
		return nil, errs.MissingFields(missing...)
	}

	return body, nil
}

// Missing returns the required keys that are absent, null or blank strings.
func Missing(body map[string]any, required ...string) []string {
	var missing []string
	for _, key := range required {
		if isBlank(body[key]) {
			missing = append(missing, key)
		}
	}
	return missing
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}

// String returns body[key] as a trimmed string. Numbers are formatted.
func String(body map[string]any, key string) string {
	switch v := body[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Number returns body[key] as a float64 and whether it was numeric. Numeric
// strings are accepted.
func Number(body map[string]any, key string) (float64, bool) {
	switch v := body[key].(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// QueryNumber parses an optional numeric query parameter. An empty value
// reports ok=false with no error.
func QueryNumber(r *http.Request, key string) (value float64, ok bool, customErr *errs.CustomError) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0, false, errs.NewError(errs.ErrInvalidParams)
	}
	return f, true, nil
}
