package http

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/schematics-client/internal/constants"
)

// Retry decision reasons.
const (
	ReasonSuccess        = "final response"
	ReasonExhausted      = "attempts exhausted"
	ReasonCanceled       = "context done"
	ReasonNotIdempotent  = "request may have been processed"
	ReasonTransport      = "transport failure"
	ReasonRetryAfter     = "server asked to retry later"
	ReasonRetryableState = "retryable status"
)

const maxRetryAfterSeconds = math.MaxInt64 / int64(time.Second)

// Attempt describes the outcome of one finished attempt.
type Attempt struct {
	// Number is the 1-based number of the attempt.
	Number     int
	Idempotent bool
	// Sent is true when the request was written to the connection.
	Sent       bool
	StatusCode int
	// RetryAfter is the raw Retry-After header of the response, if any.
	RetryAfter string
	Err        error
}

// Decision is the policy's verdict on an attempt.
type Decision struct {
	Retry  bool
	Delay  time.Duration
	Reason string
}

// RetryPolicy decides whether and when a failed attempt is repeated.
//
// Transport failures and 429/503 responses are retryable. Idempotent
// requests retry every retryable outcome; other requests only retry
// failures that happened before the request was written. A Retry-After
// header takes precedence over the exponential backoff with full jitter.
type RetryPolicy struct {
	MaxAttempts   int
	WaitMin       time.Duration
	WaitMax       time.Duration
	MaxRetryAfter time.Duration
	// RetryStatuses lists the response statuses that are retried.
	RetryStatuses []int
}

// DefaultRetryPolicy returns the default policy: three attempts in total.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:   constants.DefaultMaxAttempts,
		WaitMin:       constants.DefaultRetryWaitMin,
		WaitMax:       constants.DefaultRetryWaitMax,
		MaxRetryAfter: constants.MaxRetryAfter,
		RetryStatuses: []int{http.StatusTooManyRequests, http.StatusServiceUnavailable},
	}
}

// Decide returns the verdict for a finished attempt.
func (p *RetryPolicy) Decide(attempt Attempt) Decision {
	if attempt.Err != nil {
		return p.decideError(attempt)
	}

	if !p.retryableStatus(attempt.StatusCode) {
		return Decision{Reason: ReasonSuccess}
	}

	if !attempt.Idempotent {
		return Decision{Reason: ReasonNotIdempotent}
	}

	if attempt.Number >= p.MaxAttempts {
		return Decision{Reason: ReasonExhausted}
	}

	reason := ReasonRetryableState
	if attempt.RetryAfter != "" {
		reason = ReasonRetryAfter
	}

	return Decision{Retry: true, Delay: p.Delay(attempt.Number, attempt.RetryAfter), Reason: reason}
}

func (p *RetryPolicy) decideError(attempt Attempt) Decision {
	if errors.Is(attempt.Err, context.Canceled) || errors.Is(attempt.Err, context.DeadlineExceeded) {
		return Decision{Reason: ReasonCanceled}
	}

	if attempt.Sent && !attempt.Idempotent {
		return Decision{Reason: ReasonNotIdempotent}
	}

	if attempt.Number >= p.MaxAttempts {
		return Decision{Reason: ReasonExhausted}
	}

	return Decision{Retry: true, Delay: p.Delay(attempt.Number, ""), Reason: ReasonTransport}
}

func (p *RetryPolicy) retryableStatus(status int) bool {
	for _, candidate := range p.RetryStatuses {
		if candidate == status {
			return true
		}
	}

	return false
}

// Delay returns the wait before the attempt following attempt number n. A
// parseable Retry-After value wins; otherwise the wait is drawn uniformly
// from [0, min(WaitMax, WaitMin*2^(n-1))].
func (p *RetryPolicy) Delay(number int, retryAfter string) time.Duration {
	if wait, ok := ParseRetryAfter(retryAfter, time.Now()); ok {
		switch {
		case wait < 0:
			return 0
		case p.MaxRetryAfter > 0 && wait > p.MaxRetryAfter:
			return p.MaxRetryAfter
		default:
			return wait
		}
	}

	ceiling := p.backoffCeiling(number)
	if ceiling <= 0 {
		return 0
	}

	return rand.N(ceiling + 1)
}

func (p *RetryPolicy) backoffCeiling(number int) time.Duration {
	ceiling := p.WaitMin

	for i := 1; i < number; i++ {
		ceiling *= constants.ExponentialBackoffBase
		if ceiling >= p.WaitMax {
			return p.WaitMax
		}
	}

	if p.WaitMax > 0 && ceiling > p.WaitMax {
		return p.WaitMax
	}

	return ceiling
}

// ParseRetryAfter reads a Retry-After value given either in seconds or as an
// HTTP date. Dates in the past yield zero.
func ParseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	seconds, err := strconv.ParseInt(value, 10, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		switch {
		case seconds < 0:
			return 0, false
		case seconds > maxRetryAfterSeconds:
			// Saturate instead of overflowing into a negative duration.
			return time.Duration(math.MaxInt64), true
		default:
			return time.Duration(seconds) * time.Second, true
		}
	}

	when, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}

	wait := when.Sub(now)
	if wait < 0 {
		return 0, true
	}

	return wait, true
}

// IsIdempotentMethod reports whether repeating a request with this method
// has the same effect as sending it once.
func IsIdempotentMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}
