package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hotdeskhq/deskctl/internal/port/outbound"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The client should
// carry a cookie jar; session cookies are the only credential the
// server issues.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP
// client. Ignored when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMessenger wires a realtime transport to be cycled around
// credential changes.
func WithMessenger(m outbound.Messenger) Option {
	return func(c *Client) {
		if m != nil {
			c.messenger = m
		}
	}
}
