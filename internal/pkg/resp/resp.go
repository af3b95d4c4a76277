/*
Package resp writes gateway JSON responses.

Successful responses carry the reshaped payload as-is; errors are always
{"error": "<message>"}, with "missingFields" added for validation failures.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"mentorlink/internal/pkg/errs"
	"mentorlink/internal/pkg/logx"
)

// ErrorBody is the JSON body of every gateway error response.
type ErrorBody struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missingFields,omitempty"`
}

// RespondJSON sets the JSON headers and writes payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus, "path", r.URL.Path)
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpStatus)
	_, _ = w.Write(body)
}

// RespondSuccess writes data with HTTP 200.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, data)
}

// RespondCreated writes data with HTTP 201.
func RespondCreated(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusCreated, data)
}

// RespondError writes the error body with the error's status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, ErrorBody{
		Error:         customErr.Message,
		MissingFields: customErr.Fields,
	})
}
