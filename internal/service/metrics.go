package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh trigger labels.
const (
	TriggerInterval = "interval"
	TriggerWake     = "wake"
	TriggerGateway  = "gateway"
	TriggerManual   = "manual"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the session manager's Prometheus collectors. A nil
// *Metrics disables collection; all record methods tolerate it.
type Metrics struct {
	RefreshTotal    *prometheus.CounterVec
	RefreshJoins    prometheus.Counter
	GatewayRequests *prometheus.CounterVec
	GatewayRetries  prometheus.Counter
	SessionActive   prometheus.Gauge
	JournalDrops    prometheus.Counter
}

// NewMetrics registers the collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deskctl",
			Name:      "session_refresh_total",
			Help:      "Session refresh attempts by trigger and outcome.",
		}, []string{"trigger", "outcome"}),

		RefreshJoins: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "deskctl",
			Name:      "session_refresh_joins_total",
			Help:      "Refresh requests that joined an in-flight refresh instead of starting one.",
		}),

		GatewayRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deskctl",
			Name:      "gateway_requests_total",
			Help:      "Authenticated requests by outcome.",
		}, []string{"outcome"}),

		GatewayRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "deskctl",
			Name:      "gateway_retries_total",
			Help:      "Requests replayed after a mid-request session refresh.",
		}),

		SessionActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "deskctl",
			Name:      "session_active",
			Help:      "Whether a signed-in session currently exists.",
		}),

		JournalDrops: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "deskctl",
			Name:      "journal_dropped_total",
			Help:      "Journal records dropped because the write queue was full.",
		}),
	}
}

func (m *Metrics) recordRefresh(trigger string, ok bool) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	m.RefreshTotal.WithLabelValues(trigger, outcome).Inc()
}

func (m *Metrics) recordRefreshJoin() {
	if m == nil {
		return
	}
	m.RefreshJoins.Inc()
}

func (m *Metrics) recordGatewayRequest(outcome string) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordGatewayRetry() {
	if m == nil {
		return
	}
	m.GatewayRetries.Inc()
}

func (m *Metrics) setSessionActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.SessionActive.Set(1)
	} else {
		m.SessionActive.Set(0)
	}
}

func (m *Metrics) recordJournalDrop() {
	if m == nil {
		return
	}
	m.JournalDrops.Inc()
}
