// Package journal implements file-backed storage for session events.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hotdeskhq/deskctl/internal/domain/journal"
)

// FileStore writes journal records as JSON lines to stdout or a file.
type FileStore struct {
	mu     sync.Mutex
	out    *os.File
	closer bool
}

// NewFileStore creates a store for the given output target. "stdout"
// writes to standard output; "file:///path" appends to the file,
// creating it with 0600 if needed.
func NewFileStore(output string) (*FileStore, error) {
	switch {
	case output == "stdout":
		return &FileStore{out: os.Stdout}, nil

	case strings.HasPrefix(output, "file://"):
		path := strings.TrimPrefix(output, "file://")
		if path == "" {
			return nil, fmt.Errorf("journal output %q has empty path", output)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("opening journal file: %w", err)
		}
		return &FileStore{out: f, closer: true}, nil

	default:
		return nil, fmt.Errorf("unsupported journal output %q", output)
	}
}

// Append writes each record as one JSON line.
func (s *FileStore) Append(ctx context.Context, records ...journal.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := json.NewEncoder(s.out)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing journal record: %w", err)
		}
	}
	return nil
}

// Close syncs and closes the underlying file. Stdout is left open.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closer {
		return nil
	}
	if err := s.out.Sync(); err != nil {
		s.out.Close()
		return fmt.Errorf("syncing journal file: %w", err)
	}
	return s.out.Close()
}
