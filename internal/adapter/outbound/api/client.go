// Package api implements the HTTP credential client for the HotDesk
// backend. It exchanges username/password credentials for cookie
// sessions and keeps a last-known snapshot of the signed-in user.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/hotdeskhq/deskctl/internal/domain/session"
	"github.com/hotdeskhq/deskctl/internal/port/outbound"
)

const (
	loginPath   = "/auth/login/"
	logoutPath  = "/auth/logout"
	refreshPath = "/auth/token/refresh/"
	profilePath = "/auth/me"

	defaultTimeout = 30 * time.Second
)

// Client talks to the backend's auth endpoints. Credentials live in
// the HTTP client's cookie jar; Client itself only tracks who the
// cookies belong to.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	logger    *slog.Logger
	messenger outbound.Messenger

	mu            sync.RWMutex
	profile       *session.Profile
	authenticated bool
}

// NewClient creates a credential client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   defaultTimeout,
		logger:    slog.Default(),
		messenger: outbound.NoopMessenger{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		c.http = &http.Client{Jar: jar, Timeout: c.timeout}
	}

	return c, nil
}

// HTTPClient exposes the underlying HTTP client so other components
// can share its cookie jar.
func (c *Client) HTTPClient() *http.Client { return c.http }

// BaseURL returns the configured API base URL without a trailing
// slash.
func (c *Client) BaseURL() string { return c.baseURL }

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Login exchanges credentials for a cookie session. The signed-in
// profile comes straight from the login response payload. On
// rejection the snapshot's authenticated flag is cleared but any
// previous profile is kept.
func (c *Client) Login(ctx context.Context, username, password string) (*session.Profile, error) {
	resp, err := c.do(ctx, http.MethodPost, loginPath, loginRequest{Username: username, Password: password})
	if err != nil {
		c.setAuthenticated(false)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := "Login failed"
		var body errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
			detail = body.Detail
		}
		c.setAuthenticated(false)
		c.logger.Debug("login rejected", "username", username, "status", resp.StatusCode)
		return nil, &session.InvalidCredentialsError{Detail: detail}
	}

	var profile session.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		c.setAuthenticated(false)
		return nil, fmt.Errorf("decoding login response: %w", err)
	}

	c.setProfile(&profile)
	c.logger.Debug("login succeeded", "username", profile.Username)
	return profile.Clone(), nil
}

// Logout invalidates the cookie session. The local snapshot is
// cleared whether or not the server accepted the request.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, logoutPath, nil)

	c.clearSnapshot()
	c.messenger.DisconnectAll()

	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusResetContent && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		c.logger.Debug("logout rejected", "status", resp.StatusCode)
		return &session.UnauthenticatedError{StatusCode: resp.StatusCode}
	}

	// The server invalidated the session, so the persisted cookies
	// are dead weight. A failed logout keeps them for a retry.
	if jar, ok := c.http.Jar.(interface{ Clear() error }); ok {
		if err := jar.Clear(); err != nil {
			c.logger.Warn("failed to clear cookie store", "error", err)
		}
	}

	c.logger.Debug("logout succeeded")
	return nil
}

// Refresh asks the server to extend the cookie session. It reports
// whether the session is still valid; any failure, transport or
// rejection, reads as false. The authenticated flag follows the
// outcome, refreshed cookies are pushed to the realtime transport.
func (c *Client) Refresh(ctx context.Context) bool {
	resp, err := c.do(ctx, http.MethodPost, refreshPath, nil)
	if err != nil {
		c.logger.Debug("refresh request failed", "error", err)
		c.setAuthenticated(false)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.setAuthenticated(ok)
	if !ok {
		c.logger.Debug("refresh rejected", "status", resp.StatusCode)
		return false
	}

	c.messenger.ReconnectAll()
	return true
}

// Profile fetches the signed-in user's profile. A 401 triggers one
// refresh and one retry before the call gives up.
func (c *Client) Profile(ctx context.Context) (*session.Profile, error) {
	profile, err := c.fetchProfileWithRefresh(ctx)
	if err != nil {
		c.setAuthenticated(false)
		return nil, err
	}
	c.setProfile(profile)
	return profile.Clone(), nil
}

// CheckAuth probes whether a usable session exists, refreshing once
// if needed. A clean rejection returns (nil, nil); only transport
// failures surface as errors.
func (c *Client) CheckAuth(ctx context.Context) (*session.Profile, error) {
	profile, err := c.fetchProfileWithRefresh(ctx)
	if err != nil {
		if _, ok := err.(*session.UnauthenticatedError); ok {
			c.clearSnapshot()
			return nil, nil
		}
		return nil, err
	}
	c.setProfile(profile)
	return profile.Clone(), nil
}

func (c *Client) fetchProfileWithRefresh(ctx context.Context) (*session.Profile, error) {
	profile, err := c.fetchProfile(ctx)
	if err == nil {
		return profile, nil
	}

	uerr, ok := err.(*session.UnauthenticatedError)
	if !ok || uerr.StatusCode != http.StatusUnauthorized {
		return nil, err
	}

	if !c.Refresh(ctx) {
		return nil, err
	}
	return c.fetchProfile(ctx)
}

func (c *Client) fetchProfile(ctx context.Context) (*session.Profile, error) {
	resp, err := c.do(ctx, http.MethodGet, profilePath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &session.UnauthenticatedError{StatusCode: resp.StatusCode}
	}

	var profile session.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return &profile, nil
}

// Username returns the last-known username, or "" when signed out.
func (c *Client) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.profile == nil {
		return ""
	}
	return c.profile.Username
}

// Email returns the last-known email, or "" when signed out.
func (c *Client) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.profile == nil {
		return ""
	}
	return c.profile.Email
}

// FullProfile returns a copy of the last-known profile, or nil.
func (c *Client) FullProfile() *session.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile.Clone()
}

// IsAuthenticated reports whether the last exchange with the server
// left a usable session.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

func (c *Client) setProfile(p *session.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = p.Clone()
	c.authenticated = true
}

func (c *Client) setAuthenticated(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authenticated = v
}

func (c *Client) clearSnapshot() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = nil
	c.authenticated = false
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &session.NetworkError{Op: method + " " + path, Cause: err}
	}
	return resp, nil
}
