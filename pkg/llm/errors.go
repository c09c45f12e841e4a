package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyPrompt is returned when Invoke is called with an empty prompt.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// TransportError indicates the request never completed: the service was
// unreachable or the connection failed mid-flight.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError indicates the service answered with a non-success
// indication (rejected request, provider-side error).
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// MalformedResponseError indicates the service responded, but the
// response text does not parse as a single JSON object.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
