package wake

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMonitor_StartStopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMonitor(WithCheckInterval(10 * time.Millisecond))
	m.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	m.Stop()
}

func TestMonitor_SubscribeUnsubscribe(t *testing.T) {
	m := NewMonitor()

	ch := m.Subscribe()
	m.emit()

	select {
	case <-ch:
	default:
		t.Fatal("no event delivered to subscriber")
	}

	m.Unsubscribe(ch)
	m.emit()

	select {
	case <-ch:
		t.Fatal("event delivered after unsubscribe")
	default:
	}
}

func TestMonitor_EmitDoesNotBlockOnFullSubscriber(t *testing.T) {
	m := NewMonitor()
	ch := m.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.emit()
		m.emit()
		m.emit()
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on a full subscriber channel")
	}

	// The buffered event is still there.
	select {
	case <-ch:
	default:
		t.Error("buffered event missing")
	}
}

func TestMonitor_StopBeforeStartIsSafe(t *testing.T) {
	m := NewMonitor()
	m.Stop()
}
