package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrInvalidCredentials indicates the server rejected a login
	// attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNetwork indicates a request never produced an HTTP
	// response.
	ErrNetwork = errors.New("network error")

	// ErrUnauthenticated indicates the server rejected an
	// authenticated request and a refresh did not recover it.
	ErrUnauthenticated = errors.New("not authenticated")
)

// InvalidCredentialsError carries the server's rejection detail.
type InvalidCredentialsError struct {
	Detail string
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("login rejected: %s", e.Detail)
}

func (e *InvalidCredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// NetworkError wraps a transport-level failure.
type NetworkError struct {
	Op    string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// UnauthenticatedError reports the status that ended an authenticated
// exchange.
type UnauthenticatedError struct {
	StatusCode int
}

func (e *UnauthenticatedError) Error() string {
	return fmt.Sprintf("not authenticated (status %d)", e.StatusCode)
}

func (e *UnauthenticatedError) Is(target error) bool {
	return target == ErrUnauthenticated
}
