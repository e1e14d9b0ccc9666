// Package apiclient wraps the back-office REST API. Every outgoing request
// carries the session's bearer token; authorization failures are routed
// centrally so individual pages never handle 401s, and 403/404 responses
// land on the shared not-found page unless the request was a detail fetch.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	backauth "github.com/citymarkets/backoffice-auth"
	goerrors "github.com/goliatone/go-errors"
)

// TokenSource yields the current bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func() (string, bool)

// Token implements TokenSource.
func (f TokenSourceFunc) Token() (string, bool) {
	if f == nil {
		return "", false
	}
	return f()
}

// StoreTokenSource reads the bearer token from a session store.
func StoreTokenSource(store *backauth.SessionStore) TokenSource {
	return TokenSourceFunc(func() (string, bool) {
		session := store.Read()
		return session.Token, session.Token != ""
	})
}

type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Navigator  backauth.Navigator
	// CurrentPath reports where the user currently is, so the client never
	// redirects to the not-found route it is already on.
	CurrentPath func() string
	// DetailEndpoints are collection fragments whose per-entity fetches
	// (fragment plus a non-empty identifier segment) surface 403/404 to the
	// calling page instead of triggering the global redirect. A deep link
	// to a missing record renders an in-page message, not a bounce.
	DetailEndpoints []string
	NotFoundRoute   string
	LoginRoute      string
	Logger          backauth.Logger
}

// Client is the HTTP wrapper pages issue their calls through.
type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Tokens == nil {
		cfg.Tokens = TokenSourceFunc(nil)
	}
	if cfg.Navigator == nil {
		cfg.Navigator = backauth.NavigatorFunc(nil)
	}
	if len(cfg.DetailEndpoints) == 0 {
		cfg.DetailEndpoints = DefaultDetailEndpoints()
	}
	if cfg.NotFoundRoute == "" {
		cfg.NotFoundRoute = backauth.NotFoundRoute
	}
	if cfg.LoginRoute == "" {
		cfg.LoginRoute = backauth.LoginRoute
	}
	if cfg.Logger == nil {
		cfg.Logger = backauth.DefaultLogger()
	}

	return &Client{cfg: cfg}
}

// DefaultDetailEndpoints lists the entity collections whose detail fetches
// handle their own not-found state.
func DefaultDetailEndpoints() []string {
	return []string{
		"/transactions",
		"/merchants",
		"/agents",
		"/pos",
		"/markets",
		"/users",
	}
}

// Do executes the request with the bearer token attached, then applies the
// global authorization-failure routing before handing the response back.
// The caller still sees the original response and status code.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if token, ok := c.cfg.Tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "api request failed")
	}

	c.routeFailure(req.URL, res.StatusCode)
	return res, nil
}

// GetJSON fetches path relative to the base URL and decodes the body.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "building api request")
	}
	return c.doJSON(req, out)
}

// PostJSON posts the encoded body to path and decodes the response.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "encoding api request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "building api request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return statusError(res.StatusCode, req.URL.Path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "decoding api response")
	}
	return nil
}

// routeFailure applies the global navigation rules: 401 returns to login,
// 403/404 land on the shared not-found page unless the request was a
// detail fetch or the user already sits on the not-found page.
func (c *Client) routeFailure(u *url.URL, status int) {
	switch status {
	case http.StatusUnauthorized:
		c.cfg.Logger.Info("api returned 401 for %s, navigating to login", u.Path)
		c.cfg.Navigator.Navigate(c.cfg.LoginRoute)
	case http.StatusForbidden, http.StatusNotFound:
		if c.isDetailPath(u.Path) {
			return
		}
		if c.cfg.CurrentPath != nil && c.cfg.CurrentPath() == c.cfg.NotFoundRoute {
			return
		}
		c.cfg.Logger.Info("api returned %d for %s, navigating to not-found", status, u.Path)
		c.cfg.Navigator.Navigate(c.cfg.NotFoundRoute)
	}
}

// isDetailPath reports whether the path targets a single entity: a known
// collection fragment followed by a non-empty identifier. Bare collection
// paths (with or without a trailing slash) do not qualify.
func (c *Client) isDetailPath(path string) bool {
	for _, fragment := range c.cfg.DetailEndpoints {
		idx := strings.Index(path, fragment+"/")
		if idx < 0 {
			continue
		}
		rest := strings.Trim(path[idx+len(fragment)+1:], "/")
		if rest != "" {
			return true
		}
	}
	return false
}

func statusError(status int, path string) error {
	msg := fmt.Sprintf("api responded %d for %s", status, path)

	switch status {
	case http.StatusUnauthorized:
		return goerrors.New(msg, goerrors.CategoryAuth).WithCode(goerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return goerrors.New(msg, goerrors.CategoryAuthz).WithCode(goerrors.CodeForbidden)
	case http.StatusNotFound:
		return goerrors.New(msg, goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
	default:
		return goerrors.New(msg, goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithMetadata(map[string]any{"status": status})
	}
}
