package service

import (
	"errors"
	"fmt"
)

// User-facing messages mirrored into the session store's error slot.
const (
	sessionExpiredMessage = "Session expired. Please log in again."
	logoutFailedMessage   = "Logout failed"
)

var (
	// ErrAuthenticationFailed indicates a login attempt was rejected.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrLogoutFailed indicates the server did not accept a logout.
	ErrLogoutFailed = errors.New("logout failed")

	// ErrNotBootstrapped indicates an operation ran before Bootstrap.
	ErrNotBootstrapped = errors.New("session manager not bootstrapped")
)

// AuthenticationFailedError carries the message to surface to the
// user.
type AuthenticationFailedError struct {
	Message string
}

func (e *AuthenticationFailedError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

func (e *AuthenticationFailedError) Is(target error) bool {
	return target == ErrAuthenticationFailed
}
