package schematics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ValidationError reports malformed or missing caller input. It is produced
// before anything is sent over the wire and is never retried.
type ValidationError struct {
	Operation string
	Parameter string
	Reason    string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("%s: invalid request: %s", e.Operation, e.Reason)
	}

	return fmt.Sprintf("%s: invalid parameter %q: %s", e.Operation, e.Parameter, e.Reason)
}

// AuthError reports a failure to acquire or refresh a credential.
type AuthError struct {
	Endpoint   string
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Code != "":
		return fmt.Sprintf("authentication failed (status %d): %s: %s", e.StatusCode, e.Code, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("authentication failed: %s: %v", e.Message, e.Cause)
	default:
		return "authentication failed: " + e.Message
	}
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// TransportError reports that no response was received: DNS, connection
// reset, TLS failures and caller cancellation all end up here.
type TransportError struct {
	Operation string
	Method    string
	Path      string
	// Sent is true when the request was confirmed written to the connection
	// before the failure happened.
	Sent  bool
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s %s: transport failure: %v", e.Operation, e.Method, e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// TimeoutError reports that the per-call deadline elapsed before a response
// was received. It is distinct from any server-reported failure.
type TimeoutError struct {
	Operation string
	Method    string
	Path      string
	After     time.Duration
	Cause     error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.After > 0 {
		return fmt.Sprintf("%s: %s %s: timed out after %s", e.Operation, e.Method, e.Path, e.After)
	}

	return fmt.Sprintf("%s: %s %s: deadline exceeded", e.Operation, e.Method, e.Path)
}

// Unwrap returns the underlying cause.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// Timeout marks the error as a timeout for net.Error style checks.
func (e *TimeoutError) Timeout() bool { return true }

// APIError represents a response received with a failure status.
type APIError struct {
	Operation  string
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	Headers    http.Header
	// Body holds the raw response body for diagnostics.
	Body []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}

	if e.Code != "" {
		return fmt.Sprintf("%s: %s (status: %d, code: %s)", e.Operation, msg, e.StatusCode, e.Code)
	}

	return fmt.Sprintf("%s: %s (status: %d)", e.Operation, msg, e.StatusCode)
}

// DecodeError reports a successful response whose body could not be parsed
// into the declared result shape.
type DecodeError struct {
	Operation  string
	StatusCode int
	Body       []byte
	Cause      error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decoding response (status %d): %v", e.Operation, e.StatusCode, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Static errors for err113 compliance.
var (
	ErrNoMorePages              = errors.New("no more pages")
	ErrConfigRequired           = errors.New("config is required")
	ErrAPIEndpointRequired      = errors.New("API endpoint is required")
	ErrUnknownRegion            = errors.New("unknown region")
	ErrUnknownOperation         = errors.New("unknown operation")
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
	ErrMissingAPIKey            = errors.New("api key is required")
	ErrMissingClientCredentials = errors.New("client id and client secret are required")
	ErrEmptyAccessToken         = errors.New("token response did not contain an access token")
	ErrCircuitBreakerOpen       = errors.New("circuit breaker is open")
	ErrRateLimitExceeded        = errors.New("rate limiter cannot admit the call")
)

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	if hasStatus(err, http.StatusUnauthorized) {
		return true
	}

	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsTimeout checks if the error is a per-call timeout.
func IsTimeout(err error) bool {
	timeoutErr := &TimeoutError{}

	return errors.As(err, &timeoutErr)
}

// IsRetryable reports whether the error class is eligible for retry: transport
// failures and 429/503 responses. Validation and decode errors never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	transportErr := &TransportError{}
	if errors.As(err, &transportErr) {
		return true
	}

	return hasStatus(err, http.StatusTooManyRequests) || hasStatus(err, http.StatusServiceUnavailable)
}

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}

// ErrorClass returns a short label for the error's category.
func ErrorClass(err error) string {
	var (
		validationErr *ValidationError
		authErr       *AuthError
		timeoutErr    *TimeoutError
		transportErr  *TransportError
		apiErr        *APIError
		decodeErr     *DecodeError
	)

	switch {
	case err == nil:
		return "none"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &apiErr):
		return "api"
	case errors.As(err, &decodeErr):
		return "decode"
	default:
		return "other"
	}
}
