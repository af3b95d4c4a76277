/*
Package errs defines the application error codes and the CustomError type
returned by gateway handlers and the relay hub.

Codes are grouped by class so a code alone says what went wrong and how the
caller should react.
*/
package errs

// 1xxx: request validation errors (never retried)
const (
	// ErrInvalidParams indicates a field or query parameter is present but malformed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates the request Content-Type is not JSON.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates the request body is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrValidationFailed indicates one or more required fields are missing.
	ErrValidationFailed = 1005

	// ErrRateLimitExceeded indicates the caller exceeded its request budget.
	ErrRateLimitExceeded = 1007

	// ErrFileTypeInvalid indicates an avatar upload with a disallowed type.
	ErrFileTypeInvalid = 1010

	// ErrFileSizeTooLarge indicates an avatar upload above the size limit.
	ErrFileSizeTooLarge = 1011
)

// 2xxx: relay errors reported to socket clients
const (
	// ErrConversationRequired indicates a relay event without a conversation id.
	ErrConversationRequired = 2101

	// ErrNotInConversation indicates a send to a conversation the client never joined.
	ErrNotInConversation = 2102

	// ErrMessageContentTooLong indicates a message body above the relay limit.
	ErrMessageContentTooLong = 2201

	// ErrUnsupportedEvent indicates an inbound relay event with an unknown name.
	ErrUnsupportedEvent = 2202
)

// 3xxx: authentication errors (require user action)
const (
	// ErrAuthenticationRequired indicates no credential could be resolved for the caller.
	ErrAuthenticationRequired = 3001

	// ErrInvalidToken indicates the credential was present but rejected.
	ErrInvalidToken = 3002
)

// 5xxx: upstream and internal errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000

	// ErrUpstreamUnavailable indicates the backend failed or could not be reached.
	ErrUpstreamUnavailable = 5001

	// ErrStorageUnavailable indicates object storage is not configured or failed.
	ErrStorageUnavailable = 5002
)
