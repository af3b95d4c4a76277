/*
Package backend is the gateway's client for the external REST API.

Every call carries the caller's resolved Authorization header and a bounded
timeout. Responses arrive in one of two envelopes, {data} or
{success, data, message}; Do unwraps either and returns the payload.
Failures come back as *UpstreamError with the backend's status (0 when the
backend could not be reached) and the best message that could be extracted.
*/
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mentorlink/internal/pkg/logx"
)

// DefaultTimeout bounds a backend call when the caller sets none.
const DefaultTimeout = 5 * time.Second

const maxResponseBytes = 4 << 20

// UpstreamError describes a failed backend call.
type UpstreamError struct {
	// Status is the backend's HTTP status, or 0 if no response was received.
	Status int

	// Message is the message extracted from the backend body, possibly empty.
	Message string

	// Err is the transport or decoding error, if any.
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend call failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("backend call failed (status %d): %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Call describes one backend request.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// Auth is the Authorization header to forward; empty sends none.
	Auth string
}

// Client calls the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// NewClient creates a Client for baseURL. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		logger:  logx.Component("backend"),
	}
}

// BaseURL returns the backend origin this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Get is a shorthand for a GET call.
func (c *Client) Get(ctx context.Context, auth, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, Call{Method: http.MethodGet, Path: path, Query: query, Auth: auth})
}

// Send is a shorthand for a call with a JSON body.
func (c *Client) Send(ctx context.Context, method, auth, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, Call{Method: method, Path: path, Body: body, Auth: auth})
}

// Do performs call and returns the unwrapped payload.
func (c *Client) Do(ctx context.Context, call Call) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + call.Path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	var body io.Reader
	if call.Body != nil {
		encoded, err := json.Marshal(call.Body)
		if err != nil {
			return nil, &UpstreamError{Err: fmt.Errorf("encode request body: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, call.Method, target, body)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if call.Auth != "" {
		httpReq.Header.Set("Authorization", call.Auth)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", call.Method).Str("path", call.Path).Msg("Backend unreachable")
		return nil, &UpstreamError{Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, &UpstreamError{Status: httpResp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug().
		Str("method", call.Method).
		Str("path", call.Path).
		Int("status", httpResp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Backend call completed")

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &UpstreamError{Status: httpResp.StatusCode, Message: ExtractMessage(raw)}
	}

	return Unwrap(httpResp.StatusCode, raw)
}

// Unwrap returns the payload of a successful response body. A body with
// "success": false is a failure even on a 2xx status.
func Unwrap(status int, raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage("null"), nil
	}

	if trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return nil, &UpstreamError{Status: status, Err: errors.New("backend returned invalid JSON")}
		}
		return json.RawMessage(trimmed), nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, &UpstreamError{Status: status, Err: fmt.Errorf("decode envelope: %w", err)}
	}

	if successRaw, ok := envelope["success"]; ok {
		var success bool
		if json.Unmarshal(successRaw, &success) == nil && !success {
			return nil, &UpstreamError{Status: status, Message: ExtractMessage(trimmed)}
		}
	}

	if data, ok := envelope["data"]; ok {
		return data, nil
	}

	return json.RawMessage(trimmed), nil
}

// ExtractMessage pulls a human-readable message out of an error body,
// looking at "message", "error" and "msg" in that order.
func ExtractMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}

	for _, key := range []string{"message", "error", "msg"} {
		switch v := body[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case map[string]any:
			if msg, ok := v["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return ""
}

// AsUpstream returns err as *UpstreamError, wrapping unknown errors as a
// transport failure.
func AsUpstream(err error) *UpstreamError {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr
	}
	return &UpstreamError{Err: err}
}
