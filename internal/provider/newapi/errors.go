package newapi

import (
	"fmt"
)

// Failure kinds reported by QueryError
const (
	KindRequest    = "RequestError"
	KindDecode     = "DecodeError"
	KindConversion = "ConversionError"
)

// StatusError is returned when the endpoint answers with a non-200 status
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d", e.StatusCode)
}

// APIError is returned when the body reports success=false
type APIError struct {
	// Message is nil when the body carried no message field
	Message *string
}

func (e *APIError) Error() string {
	if e.Message == nil {
		return "API reported failure"
	}
	return "API reported failure: " + *e.Message
}

// TimeoutError is returned when the request exceeds its deadline
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return "request timed out: " + e.Err.Error()
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// NetworkError wraps transport-level failures: refused connections, DNS, TLS
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// QueryError covers everything else: malformed bodies and unusable quota values
type QueryError struct {
	Kind string
	Err  error
}

func (e *QueryError) Error() string {
	return e.Kind + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() error { return e.Err }
