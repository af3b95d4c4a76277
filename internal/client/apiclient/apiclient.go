/*
Package apiclient is the client side of the gateway: an http.RoundTripper
that attaches the stored credential, and a Client that reacts to 401 by
evicting the credential and navigating to the login entry point once.
*/
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"mentorlink/internal/app/backend"
	"mentorlink/internal/client/tokenstore"
	"mentorlink/internal/configs"
	"mentorlink/internal/pkg/logx"
)

// ErrUnauthorized is wrapped by every error caused by a 401 response.
var ErrUnauthorized = errors.New("unauthorized")

const maxErrorBody = 64 << 10

// StatusError is a non-2xx response other than 401.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// Navigator moves the user to another entry point, e.g. the login screen.
type Navigator interface {
	Redirect(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Redirect(path string) { f(path) }

// Transport attaches the credential to outgoing requests and heals the
// cookie mirror. An Authorization header already on the request wins.
type Transport struct {
	Base   http.RoundTripper
	Tokens *tokenstore.TokenStore
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	token, ok := t.Tokens.GetToken()
	if !ok {
		return base.RoundTrip(req)
	}

	t.Tokens.HealMirror()

	if req.Header.Get("Authorization") != "" {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(clone)
}

// Options configures a Client.
type Options struct {
	// BaseURL is the gateway origin, e.g. http://localhost:8080.
	BaseURL string

	// LoginPath is passed to the Navigator on 401. Defaults to configs.DefaultLoginPath.
	LoginPath string

	Tokens    *tokenstore.TokenStore
	Navigator Navigator

	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration

	// Base is the underlying transport, http.DefaultTransport when nil.
	Base http.RoundTripper
}

// Client issues gateway requests on behalf of the user.
type Client struct {
	baseURL   string
	loginPath string
	http      *http.Client
	tokens    *tokenstore.TokenStore
	navigator Navigator

	// redirecting is set by the first 401 and cleared by Login.
	redirecting atomic.Bool

	logger zerolog.Logger
}

// New builds a Client. The cookie mirror of opts.Tokens is used as the
// HTTP client's jar.
func New(opts Options) *Client {
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = configs.DefaultLoginPath
	}

	navigator := opts.Navigator
	if navigator == nil {
		navigator = NavigatorFunc(func(string) {})
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		loginPath: loginPath,
		http: &http.Client{
			Transport: &Transport{Base: opts.Base, Tokens: opts.Tokens},
			Jar:       opts.Tokens.Jar(),
			Timeout:   opts.Timeout,
		},
		tokens:    opts.Tokens,
		navigator: navigator,
		logger:    logx.Component("apiclient"),
	}
}

// Do sends req. A 401 clears the credential, navigates to the login path
// once and returns an error wrapping ErrUnauthorized; other non-2xx
// statuses return *StatusError. On success the caller owns the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if res.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, io.LimitReader(res.Body, maxErrorBody))
		res.Body.Close()

		c.handleUnauthorized()
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrUnauthorized)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()

		raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &StatusError{Status: res.StatusCode, Message: backend.ExtractMessage(raw)}
	}

	return res, nil
}

func (c *Client) handleUnauthorized() {
	if err := c.tokens.ClearToken(); err != nil {
		c.logger.Warn().Err(err).Msg("Clearing credential after 401 was incomplete")
	}

	if !c.redirecting.CompareAndSwap(false, true) {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("Navigator panicked during login redirect")
		}
	}()

	c.logger.Info().Str("path", c.loginPath).Msg("Credential rejected, redirecting to login")
	c.navigator.Redirect(c.loginPath)
}

// GetJSON fetches path and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.doJSON(req, out)
}

// PostJSON sends in as a JSON body and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if out == nil {
		io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Login stores a freshly issued credential and re-arms the 401 redirect.
func (c *Client) Login(token string) error {
	if err := c.tokens.SetToken(token); err != nil {
		return err
	}
	c.redirecting.Store(false)
	return nil
}

// Logout asks the gateway to clear its cookie and drops the local
// credential whatever the gateway answered.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/logout", nil)
	if err == nil {
		if res, doErr := c.http.Do(req); doErr != nil {
			c.logger.Info().Err(doErr).Msg("Gateway logout failed, clearing local credential anyway")
		} else {
			io.Copy(io.Discard, res.Body)
			res.Body.Close()
		}
	}

	return c.tokens.ClearToken()
}
