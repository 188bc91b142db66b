// Package journal defines the session event journal: an append-only
// record of authentication lifecycle events for audit and debugging.
package journal

import (
	"time"

	"github.com/google/uuid"
)

// Event identifies the kind of lifecycle transition a record describes.
type Event string

const (
	EventBootstrap     Event = "session.bootstrap"
	EventLogin         Event = "session.login"
	EventLoginFailed   Event = "session.login_failed"
	EventLogout        Event = "session.logout"
	EventLogoutFailed  Event = "session.logout_failed"
	EventRefresh       Event = "session.refresh"
	EventRefreshFailed Event = "session.refresh_failed"
	EventExpired       Event = "session.expired"
)

// Record is a single journal entry.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Event     Event     `json:"event"`
	Username  string    `json:"username,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// NewRecord creates a record with a fresh ID and the current time.
func NewRecord(event Event, username, detail string) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Event:     event,
		Username:  username,
		Detail:    detail,
	}
}
