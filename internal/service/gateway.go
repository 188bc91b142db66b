package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
)

// RequestOptions shapes a gateway request. The zero value is a GET
// with no body.
type RequestOptions struct {
	Method string
	Header http.Header
	Body   []byte
}

// refreshDoer runs or joins a session refresh.
type refreshDoer interface {
	Do(ctx context.Context, trigger string) bool
}

// Gateway issues authenticated requests. A 401 response triggers one
// session refresh and one replay of the request; any other response
// passes through unmodified.
type Gateway struct {
	client  *http.Client
	refresh refreshDoer
	logger  *slog.Logger
	metrics *Metrics
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithGatewayLogger sets the structured logger.
func WithGatewayLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithGatewayMetrics enables metric collection.
func WithGatewayMetrics(m *Metrics) GatewayOption {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// NewGateway creates a gateway over the given HTTP client. The client
// must share its cookie jar with the credential client so refreshed
// cookies apply to replayed requests.
func NewGateway(client *http.Client, refresh refreshDoer, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client:  client,
		refresh: refresh,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Fetch performs an authenticated request. The caller owns the
// returned response body.
func (g *Gateway) Fetch(ctx context.Context, url string, opts *RequestOptions) (*http.Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	resp, err := g.send(ctx, url, opts)
	if err != nil {
		g.metrics.recordGatewayRequest(OutcomeFailure)
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		g.metrics.recordGatewayRequest(OutcomeSuccess)
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	g.logger.Debug("request rejected, refreshing session", "url", url)
	if !g.refresh.Do(ctx, TriggerGateway) {
		g.metrics.recordGatewayRequest(OutcomeFailure)
		return nil, &AuthenticationFailedError{Message: sessionExpiredMessage}
	}

	g.metrics.recordGatewayRetry()
	resp, err = g.send(ctx, url, opts)
	if err != nil {
		g.metrics.recordGatewayRequest(OutcomeFailure)
		return nil, err
	}

	g.metrics.recordGatewayRequest(OutcomeSuccess)
	return resp, nil
}

func (g *Gateway) send(ctx context.Context, url string, opts *RequestOptions) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	for key, values := range opts.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	// Every request defaults to a JSON Content-Type, body or not.
	// Callers override it per request through opts.Header.
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return g.client.Do(req)
}
