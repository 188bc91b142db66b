package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/hotdeskhq/deskctl/internal/domain/journal"
)

type memoryJournal struct {
	mu      sync.Mutex
	records []journal.Record
	closed  bool
}

func (m *memoryJournal) Append(ctx context.Context, records ...journal.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func (m *memoryJournal) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("already closed")
	}
	m.closed = true
	return nil
}

func (m *memoryJournal) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func TestJournalService_RecordsReachStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &memoryJournal{}
	js := NewJournalService(store, WithJournalFlushInterval(10*time.Millisecond))

	js.Record(journal.EventLogin, "jdoe", "")
	js.Record(journal.EventLogout, "jdoe", "")

	if err := js.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := store.count(); got != 2 {
		t.Errorf("stored records = %d, want 2", got)
	}
	if !store.closed {
		t.Error("store not closed")
	}
}

func TestJournalService_BatchFlushesEarly(t *testing.T) {
	store := &memoryJournal{}
	js := NewJournalService(store,
		WithJournalBatchSize(2),
		WithJournalFlushInterval(time.Hour),
	)
	defer js.Close()

	js.Record(journal.EventLogin, "jdoe", "")
	js.Record(journal.EventRefresh, "jdoe", "")

	deadline := time.After(time.Second)
	for store.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("batch never flushed, stored = %d", store.count())
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestJournalService_IntervalFlushesPartialBatch(t *testing.T) {
	store := &memoryJournal{}
	js := NewJournalService(store,
		WithJournalBatchSize(100),
		WithJournalFlushInterval(10*time.Millisecond),
	)
	defer js.Close()

	js.Record(journal.EventLogin, "jdoe", "")

	deadline := time.After(time.Second)
	for store.count() < 1 {
		select {
		case <-deadline:
			t.Fatal("partial batch never flushed")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestJournalService_RecordNeverBlocks(t *testing.T) {
	store := &memoryJournal{}
	js := NewJournalService(store,
		WithJournalChannelSize(1),
		WithJournalFlushInterval(time.Hour),
		WithJournalBatchSize(100),
	)
	defer js.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			js.Record(journal.EventRefresh, "jdoe", "")
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}
}

func TestJournalService_NilServiceIsNoop(t *testing.T) {
	var js *JournalService

	js.Record(journal.EventLogin, "jdoe", "")
	if err := js.Close(); err != nil {
		t.Errorf("Close on nil service: %v", err)
	}
}

func TestJournalService_CloseIsIdempotent(t *testing.T) {
	store := &memoryJournal{}
	js := NewJournalService(store)

	if err := js.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	// Second Close must not double-close the channel; the store may
	// complain, the service must not panic.
	js.Close()
}
