package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hotdeskhq/deskctl/internal/domain/journal"
	"github.com/hotdeskhq/deskctl/internal/domain/session"
	"github.com/hotdeskhq/deskctl/internal/port/outbound"
)

const defaultRefreshInterval = 4 * time.Minute

// Refresher extends the server-side session.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// refreshCall is a single in-flight refresh that concurrent callers
// can join. ok is written before done is closed.
type refreshCall struct {
	done chan struct{}
	ok   bool
}

// RefreshCoordinator keeps the session alive. It runs a periodic
// refresh while a session exists, refreshes immediately on wake
// events, and collapses concurrent refresh requests into one server
// call. A failed refresh expires the session.
type RefreshCoordinator struct {
	refresher Refresher
	store     *session.Store
	wake      outbound.WakeSource
	journal   *JournalService
	metrics   *Metrics
	logger    *slog.Logger
	interval  time.Duration

	mu       sync.Mutex
	inflight *refreshCall

	armMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// CoordinatorOption configures a RefreshCoordinator.
type CoordinatorOption func(*RefreshCoordinator)

// WithRefreshInterval sets the periodic refresh cadence.
func WithRefreshInterval(d time.Duration) CoordinatorOption {
	return func(rc *RefreshCoordinator) {
		if d > 0 {
			rc.interval = d
		}
	}
}

// WithWakeSource wires wake events to immediate refreshes.
func WithWakeSource(ws outbound.WakeSource) CoordinatorOption {
	return func(rc *RefreshCoordinator) {
		rc.wake = ws
	}
}

// WithCoordinatorJournal records refresh outcomes to the journal.
func WithCoordinatorJournal(j *JournalService) CoordinatorOption {
	return func(rc *RefreshCoordinator) {
		rc.journal = j
	}
}

// WithCoordinatorMetrics enables metric collection.
func WithCoordinatorMetrics(m *Metrics) CoordinatorOption {
	return func(rc *RefreshCoordinator) {
		rc.metrics = m
	}
}

// WithCoordinatorLogger sets the structured logger.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(rc *RefreshCoordinator) {
		if logger != nil {
			rc.logger = logger
		}
	}
}

// NewRefreshCoordinator creates a disarmed coordinator.
func NewRefreshCoordinator(refresher Refresher, store *session.Store, opts ...CoordinatorOption) *RefreshCoordinator {
	rc := &RefreshCoordinator{
		refresher: refresher,
		store:     store,
		logger:    slog.Default(),
		interval:  defaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Do runs one refresh, or joins the one already in flight. Joiners
// share the starter's result. The returned bool reports whether the
// session is still valid.
func (rc *RefreshCoordinator) Do(ctx context.Context, trigger string) bool {
	rc.mu.Lock()
	if call := rc.inflight; call != nil {
		rc.mu.Unlock()
		rc.metrics.recordRefreshJoin()
		rc.logger.Debug("joining in-flight refresh", "trigger", trigger)
		select {
		case <-call.done:
			return call.ok
		case <-ctx.Done():
			return false
		}
	}

	call := &refreshCall{done: make(chan struct{})}
	rc.inflight = call
	rc.mu.Unlock()

	ok := rc.refresher.Refresh(ctx)

	rc.mu.Lock()
	rc.inflight = nil
	rc.mu.Unlock()

	call.ok = ok
	close(call.done)

	rc.metrics.recordRefresh(trigger, ok)
	if ok {
		rc.logger.Debug("session refreshed", "trigger", trigger)
		rc.journal.Record(journal.EventRefresh, rc.username(), trigger)
		return true
	}

	rc.logger.Warn("session refresh failed", "trigger", trigger)
	rc.journal.Record(journal.EventRefreshFailed, rc.username(), trigger)
	rc.expireSession()
	return false
}

// Arm starts the periodic refresh loop. A previous loop, if any, is
// stopped first.
func (rc *RefreshCoordinator) Arm(ctx context.Context) {
	rc.Disarm()

	ctx, cancel := context.WithCancel(ctx)
	rc.armMu.Lock()
	rc.cancel = cancel
	rc.armMu.Unlock()

	var wakeCh <-chan struct{}
	if rc.wake != nil {
		wakeCh = rc.wake.Subscribe()
	}

	rc.wg.Add(1)
	go func() {
		defer rc.wg.Done()
		if wakeCh != nil {
			defer rc.wake.Unsubscribe(wakeCh)
		}

		ticker := time.NewTicker(rc.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				if rc.store.Snapshot().Authenticated {
					rc.Do(ctx, TriggerInterval)
				}

			case <-wakeCh:
				if rc.store.Snapshot().Authenticated {
					rc.Do(ctx, TriggerWake)
				}
			}
		}
	}()
}

// Disarm stops the refresh loop and waits for it to exit. Safe to
// call when the loop is not running.
func (rc *RefreshCoordinator) Disarm() {
	rc.armMu.Lock()
	if rc.cancel != nil {
		rc.cancel()
		rc.cancel = nil
	}
	rc.armMu.Unlock()

	rc.wg.Wait()
}

// expireSession clears the published session and surfaces the expiry
// message. It cancels the refresh loop without waiting, because it
// may be running on the loop's own goroutine.
func (rc *RefreshCoordinator) expireSession() {
	username := rc.username()

	rc.store.Clear()
	rc.store.SetError(sessionExpiredMessage)
	rc.metrics.setSessionActive(false)
	rc.journal.Record(journal.EventExpired, username, "")
	rc.logger.Info("session expired", "username", username)

	rc.armMu.Lock()
	if rc.cancel != nil {
		rc.cancel()
		rc.cancel = nil
	}
	rc.armMu.Unlock()
}

func (rc *RefreshCoordinator) username() string {
	if snap := rc.store.Snapshot(); snap.Profile != nil {
		return snap.Profile.Username
	}
	return ""
}
