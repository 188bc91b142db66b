package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hotdeskhq/deskctl/internal/domain/journal"
)

const (
	defaultJournalChannelSize   = 256
	defaultJournalBatchSize     = 16
	defaultJournalFlushInterval = 2 * time.Second
)

// JournalService writes session events to a journal store from a
// background worker. Producers never block: when the queue is full
// the record is dropped and counted. A nil *JournalService is a
// valid no-op.
type JournalService struct {
	store   journal.Store
	logger  *slog.Logger
	metrics *Metrics

	ch            chan journal.Record
	batchSize     int
	flushInterval time.Duration

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// JournalOption configures a JournalService.
type JournalOption func(*JournalService)

// WithJournalChannelSize sets the producer queue depth.
func WithJournalChannelSize(n int) JournalOption {
	return func(js *JournalService) {
		if n > 0 {
			js.ch = make(chan journal.Record, n)
		}
	}
}

// WithJournalBatchSize sets how many records are written per flush.
func WithJournalBatchSize(n int) JournalOption {
	return func(js *JournalService) {
		if n > 0 {
			js.batchSize = n
		}
	}
}

// WithJournalFlushInterval sets the maximum time a record waits in
// the batch before being written.
func WithJournalFlushInterval(d time.Duration) JournalOption {
	return func(js *JournalService) {
		if d > 0 {
			js.flushInterval = d
		}
	}
}

// WithJournalLogger sets the structured logger.
func WithJournalLogger(logger *slog.Logger) JournalOption {
	return func(js *JournalService) {
		if logger != nil {
			js.logger = logger
		}
	}
}

// WithJournalMetrics counts dropped records.
func WithJournalMetrics(m *Metrics) JournalOption {
	return func(js *JournalService) {
		js.metrics = m
	}
}

// NewJournalService starts the write worker.
func NewJournalService(store journal.Store, opts ...JournalOption) *JournalService {
	js := &JournalService{
		store:         store,
		logger:        slog.Default(),
		ch:            make(chan journal.Record, defaultJournalChannelSize),
		batchSize:     defaultJournalBatchSize,
		flushInterval: defaultJournalFlushInterval,
	}
	for _, opt := range opts {
		opt(js)
	}

	js.wg.Add(1)
	go js.run()

	return js
}

// Record enqueues a session event. It never blocks.
func (js *JournalService) Record(event journal.Event, username, detail string) {
	if js == nil {
		return
	}

	rec := journal.NewRecord(event, username, detail)
	select {
	case js.ch <- rec:
	default:
		js.metrics.recordJournalDrop()
		js.logger.Warn("journal queue full, dropping record", "event", event)
	}
}

// Close flushes pending records and closes the store.
func (js *JournalService) Close() error {
	if js == nil {
		return nil
	}

	js.closeOnce.Do(func() {
		close(js.ch)
	})
	js.wg.Wait()
	return js.store.Close()
}

func (js *JournalService) run() {
	defer js.wg.Done()

	ticker := time.NewTicker(js.flushInterval)
	defer ticker.Stop()

	batch := make([]journal.Record, 0, js.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := js.store.Append(context.Background(), batch...); err != nil {
			js.logger.Error("journal write failed", "error", err, "records", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case rec, ok := <-js.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, rec)
			if len(batch) >= js.batchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}
