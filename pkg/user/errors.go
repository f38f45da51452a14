package user

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed matches every *RequestError.
	ErrRequestFailed = errors.New("request failed")

	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse is returned for a success status whose body is not
	// the expected JSON envelope.
	ErrMalformedResponse = errors.New("malformed response")
)

// RequestError is an unexpected HTTP status from the API.
type RequestError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: unexpected status code %d", e.StatusCode)
}

// Is reports whether target is ErrRequestFailed.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// TransportError is a network level failure that survived the transport's retries.
type TransportError struct {
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
