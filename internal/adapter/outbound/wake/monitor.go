// Package wake detects the process regaining attention after being
// suspended, either by job control signals or by the machine sleeping
// through scheduled timer ticks.
package wake

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

const (
	defaultCheckInterval  = 30 * time.Second
	defaultDriftThreshold = 2 * time.Minute
)

// Monitor implements outbound.WakeSource. It emits a wake event when
// it receives SIGCONT, or when the wall clock jumps further than the
// tick interval plus a drift threshold, which indicates the machine
// slept through the tick.
type Monitor struct {
	checkInterval  time.Duration
	driftThreshold time.Duration
	logger         *slog.Logger

	mu   sync.Mutex
	subs map[<-chan struct{}]chan struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithCheckInterval sets how often the drift check runs.
func WithCheckInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.checkInterval = d
		}
	}
}

// WithDriftThreshold sets the wall clock slack allowed before a tick
// counts as a wake from sleep.
func WithDriftThreshold(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.driftThreshold = d
		}
	}
}

// WithMonitorLogger sets the structured logger.
func WithMonitorLogger(logger *slog.Logger) MonitorOption {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMonitor creates a stopped monitor. Call Start to begin watching.
func NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{
		checkInterval:  defaultCheckInterval,
		driftThreshold: defaultDriftThreshold,
		logger:         slog.Default(),
		subs:           make(map[<-chan struct{}]chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe returns a channel that receives a value on each wake
// event.
func (m *Monitor) Subscribe() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan struct{}, 1)
	m.subs[ch] = ch
	return ch
}

// Unsubscribe removes a subscriber channel.
func (m *Monitor) Unsubscribe(ch <-chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, ch)
}

// Start launches the watch goroutine. It returns immediately.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	sigCh := make(chan os.Signal, 1)
	notifyWake(sigCh)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer stopWake(sigCh)
		m.run(ctx, sigCh)
	}()
}

// Stop halts the watch goroutine and waits for it to exit.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

func (m *Monitor) run(ctx context.Context, sigCh <-chan os.Signal) {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	// Round strips the monotonic reading so Sub compares wall time;
	// monotonic clocks on some platforms pause during sleep.
	last := time.Now().Round(0)

	for {
		select {
		case <-ctx.Done():
			return

		case <-sigCh:
			m.logger.Debug("wake signal received")
			last = time.Now().Round(0)
			m.emit()

		case <-ticker.C:
			now := time.Now().Round(0)
			elapsed := now.Sub(last)
			last = now
			if elapsed > m.checkInterval+m.driftThreshold {
				m.logger.Debug("clock drift detected", "elapsed", elapsed)
				m.emit()
			}
		}
	}
}

func (m *Monitor) emit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
