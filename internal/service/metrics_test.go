package service

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("writing metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("writing metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestMetrics_RecordRefresh(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.recordRefresh(TriggerInterval, true)
	m.recordRefresh(TriggerInterval, true)
	m.recordRefresh(TriggerWake, false)

	if got := counterValue(t, m.RefreshTotal.WithLabelValues(TriggerInterval, OutcomeSuccess)); got != 2 {
		t.Errorf("interval/success = %v, want 2", got)
	}
	if got := counterValue(t, m.RefreshTotal.WithLabelValues(TriggerWake, OutcomeFailure)); got != 1 {
		t.Errorf("wake/failure = %v, want 1", got)
	}
	if got := counterValue(t, m.RefreshTotal.WithLabelValues(TriggerGateway, OutcomeSuccess)); got != 0 {
		t.Errorf("gateway/success = %v, want 0", got)
	}
}

func TestMetrics_SessionActiveGauge(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.setSessionActive(true)
	if got := gaugeValue(t, m.SessionActive); got != 1 {
		t.Errorf("session_active = %v, want 1", got)
	}

	m.setSessionActive(false)
	if got := gaugeValue(t, m.SessionActive); got != 0 {
		t.Errorf("session_active = %v, want 0", got)
	}
}

func TestMetrics_GatewayCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.recordGatewayRequest(OutcomeSuccess)
	m.recordGatewayRetry()
	m.recordJournalDrop()
	m.recordRefreshJoin()

	if got := counterValue(t, m.GatewayRequests.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("gateway requests = %v, want 1", got)
	}
	if got := counterValue(t, m.GatewayRetries); got != 1 {
		t.Errorf("gateway retries = %v, want 1", got)
	}
	if got := counterValue(t, m.JournalDrops); got != 1 {
		t.Errorf("journal drops = %v, want 1", got)
	}
	if got := counterValue(t, m.RefreshJoins); got != 1 {
		t.Errorf("refresh joins = %v, want 1", got)
	}
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics

	m.recordRefresh(TriggerManual, true)
	m.recordRefreshJoin()
	m.recordGatewayRequest(OutcomeFailure)
	m.recordGatewayRetry()
	m.setSessionActive(true)
	m.recordJournalDrop()
}
