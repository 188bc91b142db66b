package session

import "sync"

// Snapshot is a consistent read of the published session state.
type Snapshot struct {
	// Profile is the current user, or nil when no one is logged in.
	Profile *Profile
	// Authenticated is tracked as an explicit flag rather than derived from
	// Profile: failure paths clear the flag before any profile is fetched.
	Authenticated bool
	// ErrorMessage describes the last failed operation, "" when none.
	ErrorMessage string
}

// Store is the single source of truth for the published session state.
// It is created once at application start and mutated only by whole-object
// replacement: the profile is swapped, never edited in place.
// All methods are safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	profile       *Profile
	authenticated bool
	errorMessage  string

	subs    map[int]chan Snapshot
	nextSub int
}

// NewStore creates an empty session store: no profile, not authenticated.
func NewStore() *Store {
	return &Store{
		subs: make(map[int]chan Snapshot),
	}
}

// SetProfile replaces the session wholesale and marks it authenticated.
func (s *Store) SetProfile(p *Profile) {
	s.mu.Lock()
	s.profile = p.Clone()
	s.authenticated = true
	s.notifyLocked()
	s.mu.Unlock()
}

// SetAuthenticated updates the authentication flag without touching the
// profile payload. The silent refresh path confirms or clears the flag
// while leaving the session payload as-is.
func (s *Store) SetAuthenticated(ok bool) {
	s.mu.Lock()
	s.authenticated = ok
	s.notifyLocked()
	s.mu.Unlock()
}

// Clear removes the session: profile becomes nil, flag becomes false.
func (s *Store) Clear() {
	s.mu.Lock()
	s.profile = nil
	s.authenticated = false
	s.notifyLocked()
	s.mu.Unlock()
}

// SetError records a human-readable message for the last failed operation.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.errorMessage = msg
	s.notifyLocked()
	s.mu.Unlock()
}

// ClearError resets the error message with no other side effect.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.errorMessage = ""
	s.notifyLocked()
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the current state.
// The returned profile is a clone; mutating it does not affect the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Profile:       s.profile.Clone(),
		Authenticated: s.authenticated,
		ErrorMessage:  s.errorMessage,
	}
}

// Subscribe registers for state-change notifications. Every mutation sends
// the new snapshot on the returned channel; sends never block, so a slow
// consumer may miss intermediate states but always sees the latest on the
// next receive. The cancel function removes the subscription.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 8)
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

// notifyLocked fans the current state out to subscribers. Caller holds mu.
func (s *Store) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := Snapshot{
		Profile:       s.profile.Clone(),
		Authenticated: s.authenticated,
		ErrorMessage:  s.errorMessage,
	}
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
