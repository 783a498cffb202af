package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// NetworkError is a transport-level failure: DNS, refused connection, reset,
// or the caller cancelling the request.
type NetworkError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError means the per-request deadline elapsed before a response.
type TimeoutError struct {
	Method   string
	Endpoint string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %dms: %s %s", e.Timeout.Milliseconds(), e.Method, e.Endpoint)
}

// APIError is a non-2xx status or a success:false envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// ParseError means the body was not valid JSON.
type ParseError struct {
	Status int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON response (status %d): %v", e.Status, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ServiceError prefixes a failure with the service and method that saw it,
// keeping the original error reachable through errors.As / errors.Is.
type ServiceError struct {
	Service string
	Method  string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s.%s] %s", e.Service, e.Method, e.Err.Error())
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Wrap returns err wrapped in a ServiceError, or nil when err is nil.
func Wrap(service, method string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Service: service, Method: method, Err: err}
}

// Message flattens an error to the text shown to users.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsTimeout reports whether err is or wraps a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// StatusCode returns the HTTP status of a wrapped APIError, or 0.
func StatusCode(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}
