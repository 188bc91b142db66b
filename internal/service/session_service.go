package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hotdeskhq/deskctl/internal/domain/journal"
	"github.com/hotdeskhq/deskctl/internal/domain/session"
)

// BootstrapState tracks session manager startup.
type BootstrapState int

const (
	StateUninitialized BootstrapState = iota
	StateLoading
	StateReady
)

func (s BootstrapState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// CredentialClient is the slice of the API client the session
// service depends on.
type CredentialClient interface {
	Login(ctx context.Context, username, password string) (*session.Profile, error)
	Logout(ctx context.Context) error
	CheckAuth(ctx context.Context) (*session.Profile, error)
	Refresh(ctx context.Context) bool
}

// SessionService owns the session lifecycle: bootstrap on startup,
// login and logout, and the background refresh loop. It publishes
// state through a session.Store and routes authenticated requests
// through a Gateway.
type SessionService struct {
	client      CredentialClient
	store       *session.Store
	coordinator *RefreshCoordinator
	gateway     *Gateway
	journal     *JournalService
	metrics     *Metrics
	logger      *slog.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu    sync.Mutex
	state BootstrapState
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithSessionJournal records lifecycle events to the journal.
func WithSessionJournal(j *JournalService) SessionOption {
	return func(s *SessionService) {
		s.journal = j
	}
}

// WithSessionMetrics enables metric collection.
func WithSessionMetrics(m *Metrics) SessionOption {
	return func(s *SessionService) {
		s.metrics = m
	}
}

// WithSessionLogger sets the structured logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *SessionService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSessionService wires the session lifecycle together.
func NewSessionService(client CredentialClient, store *session.Store, coordinator *RefreshCoordinator, gateway *Gateway, opts ...SessionOption) *SessionService {
	ctx, cancel := context.WithCancel(context.Background())

	s := &SessionService{
		client:      client,
		store:       store,
		coordinator: coordinator,
		gateway:     gateway,
		logger:      slog.Default(),
		baseCtx:     ctx,
		baseCancel:  cancel,
		state:       StateUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bootstrap probes for an existing session exactly once. A usable
// session is published and the refresh loop armed; otherwise the
// store stays signed out. The service reaches the ready state either
// way. Repeat calls are no-ops.
func (s *SessionService) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return nil
	}
	s.state = StateLoading
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateReady
		s.mu.Unlock()
	}()

	profile, err := s.client.CheckAuth(ctx)
	if err != nil {
		s.logger.Warn("session probe failed", "error", err)
		s.journal.Record(journal.EventBootstrap, "", "probe failed")
		return nil
	}
	if profile == nil {
		s.logger.Debug("no existing session")
		s.journal.Record(journal.EventBootstrap, "", "anonymous")
		return nil
	}

	s.store.SetProfile(profile)
	s.metrics.setSessionActive(true)
	s.journal.Record(journal.EventBootstrap, profile.Username, "authenticated")
	s.coordinator.Arm(s.baseCtx)
	s.logger.Info("session restored", "username", profile.Username)
	return nil
}

// Login signs in with credentials. On rejection the published
// authenticated flag is cleared, the server's message surfaces
// through the store, and any previous profile is left in place.
func (s *SessionService) Login(ctx context.Context, username, password string) error {
	s.store.ClearError()

	profile, err := s.client.Login(ctx, username, password)
	if err != nil {
		message := "Login failed"
		var cerr *session.InvalidCredentialsError
		if errors.As(err, &cerr) {
			message = cerr.Detail
		}

		s.store.SetAuthenticated(false)
		s.store.SetError(message)
		s.metrics.setSessionActive(false)
		s.journal.Record(journal.EventLoginFailed, username, message)
		s.logger.Warn("login failed", "username", username, "error", err)
		return &AuthenticationFailedError{Message: message}
	}

	s.store.SetProfile(profile)
	s.metrics.setSessionActive(true)
	s.journal.Record(journal.EventLogin, profile.Username, "")
	s.coordinator.Arm(s.baseCtx)
	s.logger.Info("logged in", "username", profile.Username)
	return nil
}

// Logout signs out. The published session is cleared only when the
// server accepts the logout; on failure the session stays and an
// error message surfaces through the store.
func (s *SessionService) Logout(ctx context.Context) error {
	username := s.usernameFromStore()

	if err := s.client.Logout(ctx); err != nil {
		s.store.SetError(logoutFailedMessage)
		s.journal.Record(journal.EventLogoutFailed, username, err.Error())
		s.logger.Warn("logout failed", "username", username, "error", err)
		return fmt.Errorf("%w: %v", ErrLogoutFailed, err)
	}

	s.coordinator.Disarm()
	s.store.Clear()
	s.metrics.setSessionActive(false)
	s.journal.Record(journal.EventLogout, username, "")
	s.logger.Info("logged out", "username", username)
	return nil
}

// Refresh runs an immediate session refresh, joining one already in
// flight.
func (s *SessionService) Refresh(ctx context.Context) bool {
	return s.coordinator.Do(ctx, TriggerManual)
}

// AuthenticatedFetch routes a request through the gateway.
func (s *SessionService) AuthenticatedFetch(ctx context.Context, url string, opts *RequestOptions) (*http.Response, error) {
	s.mu.Lock()
	ready := s.state == StateReady
	s.mu.Unlock()
	if !ready {
		return nil, ErrNotBootstrapped
	}
	return s.gateway.Fetch(ctx, url, opts)
}

// ClearError discards the surfaced error message without touching
// the session.
func (s *SessionService) ClearError() {
	s.store.ClearError()
}

// State returns the bootstrap state.
func (s *SessionService) State() BootstrapState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading reports whether bootstrap has not yet completed.
func (s *SessionService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StateReady
}

// Shutdown stops the refresh loop. The session itself is left as is
// so it survives the next start.
func (s *SessionService) Shutdown() {
	s.coordinator.Disarm()
	s.baseCancel()
	s.logger.Debug("session service stopped")
}

func (s *SessionService) usernameFromStore() string {
	if snap := s.store.Snapshot(); snap.Profile != nil {
		return snap.Profile.Username
	}
	return ""
}
