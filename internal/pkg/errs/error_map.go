/*
Package errs defines the application error codes and the CustomError type
returned by gateway handlers and the relay hub.

This file maps every code to its default message and HTTP status.
*/
package errs

import "net/http"

var errorMap = map[int]CustomError{
	// 1xxx
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Content-Type must be application/json", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Invalid JSON body", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data", Status: http.StatusBadRequest},
	ErrValidationFailed:     {Code: ErrValidationFailed, Message: "Missing required fields: %s", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrFileTypeInvalid:      {Code: ErrFileTypeInvalid, Message: "File type is not allowed", Status: http.StatusBadRequest},
	ErrFileSizeTooLarge:     {Code: ErrFileSizeTooLarge, Message: "File is too large", Status: http.StatusBadRequest},

	// 2xxx
	ErrConversationRequired:  {Code: ErrConversationRequired, Message: "conversationId is required", Status: http.StatusBadRequest},
	ErrNotInConversation:     {Code: ErrNotInConversation, Message: "Join the conversation before sending", Status: http.StatusForbidden},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long", Status: http.StatusBadRequest},
	ErrUnsupportedEvent:      {Code: ErrUnsupportedEvent, Message: "Unsupported event", Status: http.StatusBadRequest},

	// 3xxx
	ErrAuthenticationRequired: {Code: ErrAuthenticationRequired, Message: "Authentication required", Status: http.StatusUnauthorized},
	ErrInvalidToken:           {Code: ErrInvalidToken, Message: "Invalid or expired token", Status: http.StatusUnauthorized},

	// 5xxx
	ErrUnknown:             {Code: ErrUnknown, Message: "Internal server error", Status: http.StatusInternalServerError},
	ErrUpstreamUnavailable: {Code: ErrUpstreamUnavailable, Message: "%s", Status: http.StatusInternalServerError},
	ErrStorageUnavailable:  {Code: ErrStorageUnavailable, Message: "File storage is unavailable", Status: http.StatusServiceUnavailable},
}
