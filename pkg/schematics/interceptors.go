package schematics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	breakerClosed   = "closed"
	breakerOpen     = "open"
	breakerHalfOpen = "half-open"

	metadataStartTime = "start_time"
)

// Request represents an outgoing call as seen by interceptors. Header
// changes made by request interceptors are applied to the wire request.
type Request struct {
	Operation string
	// Raw is set for calls addressed by method and path instead of an
	// operation name. Operation then holds "METHOD path".
	Raw       bool
	Method    string
	Path      string
	Headers   http.Header
	Metadata  map[string]interface{}
}

// Response represents the outcome of a call as seen by interceptors.
// StatusCode is 0 when no response was received.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// RequestInterceptor is called once per call before the first attempt.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called once per call after the last attempt.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors in order.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors in order.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// LoggingInterceptor logs outgoing calls.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"operation": req.Operation,
			"method":    req.Method,
			"path":      req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs call outcomes.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"operation":   req.Operation,
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		}

		if resp.Error != nil {
			fields["error"] = resp.Error.Error()
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// RateLimitInterceptor blocks until the limiter admits the call or the
// context ends. A wait that would outlast the context deadline fails at once
// with context.DeadlineExceeded.
func RateLimitInterceptor(limiter *rate.Limiter) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		reservation := limiter.Reserve()
		if !reservation.OK() {
			return fmt.Errorf("rate limit wait for %s: %w", req.Operation, ErrRateLimitExceeded)
		}

		delay := reservation.Delay()
		if delay == 0 {
			return nil
		}

		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
			reservation.Cancel()

			return fmt.Errorf("rate limit wait for %s: %w", req.Operation, context.DeadlineExceeded)
		}

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			reservation.Cancel()

			return fmt.Errorf("rate limit wait for %s: %w", req.Operation, ctx.Err())
		}
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// RequestIDInterceptor sets a fresh X-Request-ID unless one is present.
func RequestIDInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		if req.Headers.Get("X-Request-ID") == "" {
			req.Headers.Set("X-Request-ID", uuid.NewString())
		}

		return nil
	}
}

// MetricsRequestInterceptor records the call start time.
func MetricsRequestInterceptor(collector *MetricsCollector) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[metadataStartTime] = time.Now()

		return nil
	}
}

// MetricsResponseInterceptor records the call outcome on the collector.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		var duration time.Duration

		if startTime, ok := req.Metadata[metadataStartTime].(time.Time); ok {
			duration = time.Since(startTime)
		}

		operation := req.Operation
		if req.Raw {
			operation = RawOperation
		}

		collector.ObserveCall(operation, req.Method, resp.StatusCode, resp.Error, duration)

		return nil
	}
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	Threshold        int           // Number of failures before opening
	Timeout          time.Duration // Time before trying again
	SuccessThreshold int           // Number of successes to close
}

// CircuitBreaker stops calls after repeated transport or server failures.
type CircuitBreaker struct {
	mu          sync.Mutex
	config      *CircuitBreakerConfig
	failures    int
	successes   int
	state       string
	lastFailure time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = &CircuitBreakerConfig{
			Threshold:        5,
			Timeout:          30 * time.Second,
			SuccessThreshold: 2,
		}
	}

	return &CircuitBreaker{
		config: config,
		state:  breakerClosed,
	}
}

// State returns "closed", "open" or "half-open".
func (b *CircuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// CircuitBreakerRequestInterceptor rejects calls while the circuit is open.
func CircuitBreakerRequestInterceptor(breaker *CircuitBreaker) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		breaker.mu.Lock()
		defer breaker.mu.Unlock()

		if breaker.state == breakerOpen {
			if time.Since(breaker.lastFailure) <= breaker.config.Timeout {
				return ErrCircuitBreakerOpen
			}

			breaker.state = breakerHalfOpen
			breaker.successes = 0
		}

		return nil
	}
}

// CircuitBreakerResponseInterceptor updates circuit state from call outcomes.
// Client errors (4xx) count as successes.
func CircuitBreakerResponseInterceptor(breaker *CircuitBreaker) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		breaker.mu.Lock()
		defer breaker.mu.Unlock()

		if (resp.StatusCode == 0 && resp.Error != nil) || resp.StatusCode >= http.StatusInternalServerError {
			breaker.failures++
			breaker.lastFailure = time.Now()

			if breaker.failures >= breaker.config.Threshold || breaker.state == breakerHalfOpen {
				breaker.state = breakerOpen
			}

			return nil
		}

		switch breaker.state {
		case breakerHalfOpen:
			breaker.successes++
			if breaker.successes >= breaker.config.SuccessThreshold {
				breaker.state = breakerClosed
				breaker.failures = 0
			}
		case breakerClosed:
			breaker.failures = 0
		}

		return nil
	}
}
