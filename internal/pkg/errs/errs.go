/*
Package errs defines the application error codes and the CustomError type
returned by gateway handlers and the relay hub.

This file defines CustomError and its constructors.
*/
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"mentorlink/internal/pkg/logx"
)

// CustomError carries a business code, a client-facing message and the HTTP
// status the gateway responds with.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the client-facing error description.
	Message string

	// Status is the HTTP status code returned for this error.
	Status int

	// Fields lists the request fields that failed validation, if any.
	Fields []string
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	return fmt.Sprintf("error code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from a predefined code. details are used as
// printf arguments when the message template has placeholders. Unknown codes
// fall back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(fmt.Errorf("unknown error code %d", code), "Unknown error code requested")
		template = errorMap[ErrUnknown]
	}

	customErr := template
	if customErr.Status == 0 {
		customErr.Status = http.StatusInternalServerError
	}

	if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else if cause, isErr := details[0].(error); isErr {
			logx.Error(cause, "Error created with underlying cause", "code", customErr.Code)
		}
	}

	return &customErr
}

// MissingFields builds the validation error listing every absent field name.
func MissingFields(fields ...string) *CustomError {
	customErr := NewError(ErrValidationFailed, strings.Join(fields, ", "))
	customErr.Fields = append([]string(nil), fields...)
	return customErr
}

// Upstream builds the error for a failed backend call. A status outside the
// 4xx/5xx range (including 0 for transport failures) becomes 500, and an
// empty message becomes the route's fallback message.
func Upstream(status int, message, fallback string) *CustomError {
	if strings.TrimSpace(message) == "" {
		message = fallback
	}

	customErr := NewError(ErrUpstreamUnavailable, message)
	if status >= 400 && status <= 599 {
		customErr.Status = status
	}
	return customErr
}
