package journal

import "context"

// Store persists journal records.
type Store interface {
	// Append writes one or more records. Implementations may batch
	// internally but must not reorder records within a single call.
	Append(ctx context.Context, records ...Record) error

	// Close flushes buffered records and releases resources.
	Close() error
}
