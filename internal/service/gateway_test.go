package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type scriptedRefresher struct {
	calls  atomic.Int32
	result bool
}

func (s *scriptedRefresher) Do(ctx context.Context, trigger string) bool {
	s.calls.Add(1)
	return s.result
}

func TestGateway_PassesThroughSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json even without a body", got)
		}
		w.Write([]byte(`{"desks":[]}`))
	}))
	t.Cleanup(server.Close)

	refresh := &scriptedRefresher{result: true}
	g := NewGateway(server.Client(), refresh)

	resp, err := g.Fetch(context.Background(), server.URL+"/api/desks", nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"desks":[]}` {
		t.Errorf("body = %q", body)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
	if refresh.calls.Load() != 0 {
		t.Errorf("refresh calls = %d, want 0", refresh.calls.Load())
	}
}

func TestGateway_RetriesOnceAfterRefresh(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	refresh := &scriptedRefresher{result: true}
	g := NewGateway(server.Client(), refresh)

	resp, err := g.Fetch(context.Background(), server.URL+"/api/desks", nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if calls.Load() != 2 {
		t.Errorf("server calls = %d, want 2", calls.Load())
	}
	if refresh.calls.Load() != 1 {
		t.Errorf("refresh calls = %d, want 1", refresh.calls.Load())
	}
}

func TestGateway_FailedRefreshEndsRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	refresh := &scriptedRefresher{result: false}
	g := NewGateway(server.Client(), refresh)

	_, err := g.Fetch(context.Background(), server.URL+"/api/desks", nil)
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("err = %v, want ErrAuthenticationFailed", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1 (no retry without refresh)", calls.Load())
	}
}

func TestGateway_SecondRejectionPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	refresh := &scriptedRefresher{result: true}
	g := NewGateway(server.Client(), refresh)

	resp, err := g.Fetch(context.Background(), server.URL+"/api/desks", nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 passed through", resp.StatusCode)
	}
	if refresh.calls.Load() != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", refresh.calls.Load())
	}
}

func TestGateway_ReplaysMethodHeadersAndBody(t *testing.T) {
	var calls atomic.Int32
	var bodies [2]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		if n <= 2 {
			bodies[n-1] = string(body)
		}
		if r.Method != http.MethodPost {
			t.Errorf("call %d method = %s", n, r.Method)
		}
		if got := r.Header.Get("X-Request-Source"); got != "deskctl" {
			t.Errorf("call %d X-Request-Source = %q", n, got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("call %d Content-Type = %q", n, got)
		}
		if n == 1 {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(server.Close)

	refresh := &scriptedRefresher{result: true}
	g := NewGateway(server.Client(), refresh)

	header := http.Header{}
	header.Set("X-Request-Source", "deskctl")
	resp, err := g.Fetch(context.Background(), server.URL+"/api/bookings", &RequestOptions{
		Method: http.MethodPost,
		Header: header,
		Body:   []byte(`{"desk_id":7}`),
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	resp.Body.Close()

	if bodies[0] != bodies[1] || bodies[0] != `{"desk_id":7}` {
		t.Errorf("bodies = %q / %q, want identical replay", bodies[0], bodies[1])
	}
}

func TestGateway_CallerContentTypeWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "text/plain" {
			t.Errorf("Content-Type = %q, want caller's text/plain", got)
		}
	}))
	t.Cleanup(server.Close)

	g := NewGateway(server.Client(), &scriptedRefresher{result: true})

	header := http.Header{}
	header.Set("Content-Type", "text/plain")
	resp, err := g.Fetch(context.Background(), server.URL, &RequestOptions{
		Method: http.MethodPost,
		Header: header,
		Body:   []byte("hello"),
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	resp.Body.Close()
}

func TestGateway_TransportErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := server.Client()
	server.Close()

	refresh := &scriptedRefresher{result: true}
	g := NewGateway(client, refresh)

	if _, err := g.Fetch(context.Background(), server.URL, nil); err == nil {
		t.Fatal("err = nil on closed server")
	}
	if refresh.calls.Load() != 0 {
		t.Errorf("refresh calls = %d, want 0 on transport error", refresh.calls.Load())
	}
}
