package schematics_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var errInterceptorRejected = errors.New("rejected")

// recordingLogger captures log entries by level.
type recordingLogger struct {
	mu      sync.Mutex
	entries map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: map[string][]string{}}
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[level] = append(l.entries[level], msg)
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{})  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.record("error", msg) }

func TestInterceptorChain_Order(t *testing.T) {
	t.Parallel()

	chain := schematics.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *schematics.Request) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *schematics.Request) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})
	chain.AddResponseInterceptor(func(ctx context.Context, req *schematics.Request, resp *schematics.Response) error {
		executionOrder = append(executionOrder, "response")

		return nil
	})

	req := &schematics.Request{Operation: "list_workspaces", Method: http.MethodGet, Path: "/v1/workspaces"}

	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &schematics.Response{StatusCode: 200}))

	assert.Equal(t, []string{"first", "second", "response"}, executionOrder)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	chain := schematics.NewInterceptorChain()
	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *schematics.Request) error {
		return errInterceptorRejected
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *schematics.Request) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &schematics.Request{})
	require.ErrorIs(t, err, errInterceptorRejected)
	assert.False(t, called)
}

func TestHeaderAndRequestIDInterceptors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	req := &schematics.Request{}

	require.NoError(t, schematics.HeaderInterceptor(map[string]string{"X-Custom": "v"})(ctx, req))
	require.NoError(t, schematics.RequestIDInterceptor()(ctx, req))

	assert.Equal(t, "v", req.Headers.Get("X-Custom"))
	assert.Len(t, req.Headers.Get("X-Request-ID"), 36)

	preset := &schematics.Request{Headers: http.Header{"X-Request-Id": []string{"caller-id"}}}
	require.NoError(t, schematics.RequestIDInterceptor()(ctx, preset))
	assert.Equal(t, "caller-id", preset.Headers.Get("X-Request-ID"))
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := newRecordingLogger()
	ctx := context.Background()
	req := &schematics.Request{Operation: "get_job", Method: http.MethodGet, Path: "/v2/jobs/j1"}

	require.NoError(t, schematics.LoggingInterceptor(logger)(ctx, req))
	require.NoError(t, schematics.LoggingResponseInterceptor(logger)(ctx, req, &schematics.Response{StatusCode: 200}))
	require.NoError(t, schematics.LoggingResponseInterceptor(logger)(ctx, req, &schematics.Response{
		StatusCode: 404,
		Error:      &schematics.APIError{StatusCode: 404},
	}))

	assert.Equal(t, []string{"API Request", "API Response"}, logger.entries["debug"])
	assert.Equal(t, []string{"API Response Error"}, logger.entries["error"])
}

func TestRateLimitInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := schematics.RateLimitInterceptor(rate.NewLimiter(rate.Every(time.Hour), 1))
	req := &schematics.Request{Operation: "list_jobs"}

	require.NoError(t, interceptor(context.Background(), req))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	err := interceptor(ctx, req)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	blocked := schematics.RateLimitInterceptor(rate.NewLimiter(1, 0))
	require.ErrorIs(t, blocked(context.Background(), req), schematics.ErrRateLimitExceeded)
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	breaker := schematics.NewCircuitBreaker(&schematics.CircuitBreakerConfig{
		Threshold:        2,
		Timeout:          20 * time.Millisecond,
		SuccessThreshold: 1,
	})
	before := schematics.CircuitBreakerRequestInterceptor(breaker)
	after := schematics.CircuitBreakerResponseInterceptor(breaker)
	ctx := context.Background()
	req := &schematics.Request{}

	require.NoError(t, after(ctx, req, &schematics.Response{StatusCode: 500}))
	assert.Equal(t, "closed", breaker.State())

	require.NoError(t, after(ctx, req, &schematics.Response{StatusCode: 404}))
	require.NoError(t, after(ctx, req, &schematics.Response{StatusCode: 503}))
	assert.Equal(t, "closed", breaker.State(), "a 4xx resets the failure count")

	require.NoError(t, after(ctx, req, &schematics.Response{Error: errConnectionReset}))
	assert.Equal(t, "open", breaker.State())
	require.ErrorIs(t, before(ctx, req), schematics.ErrCircuitBreakerOpen)

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, before(ctx, req))
	assert.Equal(t, "half-open", breaker.State())

	require.NoError(t, after(ctx, req, &schematics.Response{StatusCode: 200}))
	assert.Equal(t, "closed", breaker.State())
}
