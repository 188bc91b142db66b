// Package outbound defines the ports the services depend on for
// side effects outside the process.
package outbound

// Messenger is notified around credential changes so long-lived
// connections authenticated with the old cookies can be torn down
// and re-established with the new ones.
type Messenger interface {
	// DisconnectAll closes any live connections before the session
	// cookies change.
	DisconnectAll()

	// ReconnectAll re-establishes connections after new cookies are
	// in place.
	ReconnectAll()
}

// NoopMessenger satisfies Messenger without doing anything. It is the
// default when no realtime transport is wired.
type NoopMessenger struct{}

func (NoopMessenger) DisconnectAll() {}
func (NoopMessenger) ReconnectAll()  {}
