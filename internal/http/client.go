package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/schematics-client/internal/auth"
	"github.com/fivetwenty-io/schematics-client/internal/constants"
	"github.com/fivetwenty-io/schematics-client/internal/decode"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Request represents an HTTP request.
type Request struct {
	// Operation names the catalog operation; empty for raw calls.
	Operation string
	Method    string
	// Path is already escaped.
	Path    string
	Query   url.Values
	Headers map[string]string
	// Body is encoded as JSON unless RawBody is set.
	Body interface{}
	// RawBody is sent verbatim with ContentType.
	RawBody     []byte
	ContentType string
	// Idempotent marks the request safe to repeat after it was sent.
	Idempotent bool
	// Unauthenticated requests carry no Authorization header.
	Unauthenticated bool
	// Timeout overrides the client's default call timeout.
	Timeout time.Duration
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client is the transport dispatcher: it attaches credentials, applies the
// call deadline and retries according to its RetryPolicy.
type Client struct {
	baseURL      string
	tokenManager auth.TokenManager
	httpClient   *http.Client
	policy       *RetryPolicy
	timeout      time.Duration
	userAgent    string
	headers      map[string]string
	logger       schematics.Logger
	debug        bool
	metrics      *schematics.MetricsCollector
	chain        *schematics.InterceptorChain
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger schematics.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig sets the total number of attempts and the backoff bounds.
func WithRetryConfig(maxAttempts int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.policy.MaxAttempts = maxAttempts
		}

		if waitMin > 0 {
			c.policy.WaitMin = waitMin
		}

		if waitMax > 0 {
			c.policy.WaitMax = waitMax
		}
	}
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(policy *RetryPolicy) Option {
	return func(c *Client) {
		if policy != nil {
			c.policy = policy
		}
	}
}

// WithTimeout sets the default per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithHeaders adds headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for key, value := range headers {
			c.headers[key] = value
		}
	}
}

// WithRateLimit caps the call rate. A non-positive rate disables limiting.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			return
		}

		if burst < 1 {
			burst = 1
		}

		c.chain.AddRequestInterceptor(schematics.RateLimitInterceptor(rate.NewLimiter(rate.Limit(requestsPerSecond), burst)))
	}
}

// WithMetrics records every call and retry on the collector.
func WithMetrics(collector *schematics.MetricsCollector) Option {
	return func(c *Client) {
		if collector == nil {
			return
		}

		c.metrics = collector
		c.chain.AddRequestInterceptor(schematics.MetricsRequestInterceptor(collector))
		c.chain.AddResponseInterceptor(schematics.MetricsResponseInterceptor(collector))
	}
}

// WithRequestInterceptor appends a request interceptor.
func WithRequestInterceptor(interceptor schematics.RequestInterceptor) Option {
	return func(c *Client) {
		c.chain.AddRequestInterceptor(interceptor)
	}
}

// WithResponseInterceptor appends a response interceptor.
func WithResponseInterceptor(interceptor schematics.ResponseInterceptor) Option {
	return func(c *Client) {
		c.chain.AddResponseInterceptor(interceptor)
	}
}

// NewClient creates a new HTTP client. A nil token manager sends every
// request without credentials.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenManager: tokenManager,
		httpClient:   &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		policy:       DefaultRetryPolicy(),
		timeout:      constants.DefaultHTTPTimeout,
		userAgent:    constants.DefaultUserAgent,
		headers:      make(map[string]string),
		chain:        schematics.NewInterceptorChain(),
	}

	client.chain.AddRequestInterceptor(schematics.RequestIDInterceptor())

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Policy returns the retry policy in use.
func (c *Client) Policy() *RetryPolicy {
	return c.policy
}

// Do executes a request. A response with a failure status is returned
// together with a *schematics.APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	call := &schematics.Request{
		Operation: req.label(),
		Raw:       req.Operation == "",
		Method:    req.Method,
		Path:      req.Path,
		Headers:   make(http.Header),
		Metadata:  make(map[string]interface{}),
	}

	for key, value := range c.headers {
		call.Headers.Set(key, value)
	}

	for key, value := range req.Headers {
		call.Headers.Set(key, value)
	}

	err := c.chain.ExecuteRequestInterceptors(ctx, call)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, c.contextError(req, ctxErr, timeout, false)
		}

		if errors.Is(err, context.DeadlineExceeded) {
			return nil, c.contextError(req, err, timeout, false)
		}

		return nil, fmt.Errorf("%s: %w", req.label(), err)
	}

	resp, err := c.dispatch(ctx, req, call, timeout)

	outcome := &schematics.Response{Error: err}
	if resp != nil {
		outcome.StatusCode = resp.StatusCode
		outcome.Headers = resp.Headers
		outcome.Body = resp.Body
	}

	interceptErr := c.chain.ExecuteResponseInterceptors(ctx, call, outcome)
	if err == nil && interceptErr != nil {
		return nil, fmt.Errorf("%s: %w", req.label(), interceptErr)
	}

	return resp, err
}

func (c *Client) dispatch(ctx context.Context, req *Request, call *schematics.Request, timeout time.Duration) (*Response, error) {
	var token string

	if c.tokenManager != nil && !req.Unauthenticated {
		var err error

		token, err = c.tokenManager.GetToken(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, c.contextError(req, ctxErr, timeout, false)
			}

			return nil, err
		}
	}

	body, contentType, err := c.encodeBody(req)
	if err != nil {
		return nil, err
	}

	state := &callState{}
	ctx = httptrace.WithClientTrace(ctx, state.trace())

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, c.buildURL(req), body)
	if err != nil {
		return nil, &schematics.ValidationError{Operation: req.label(), Reason: err.Error()}
	}

	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)

	if contentType != "" {
		httpReq.Header.Set(constants.HeaderContentType, contentType)
	}

	for key, values := range call.Headers {
		httpReq.Header[key] = values
	}

	if token != "" {
		httpReq.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"operation":  req.label(),
			"method":     req.Method,
			"url":        httpReq.URL.Redacted(),
			"request_id": httpReq.Header.Get(constants.HeaderRequestID),
		})
	}

	start := time.Now()

	httpResp, err := c.retryClient(req, state).Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, c.contextError(req, ctxErr, timeout, state.wasSent())
		}

		return nil, &schematics.TransportError{
			Operation: req.label(),
			Method:    req.Method,
			Path:      req.Path,
			Sent:      state.wasSent(),
			Cause:     err,
		}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, c.contextError(req, ctxErr, timeout, true)
		}

		return nil, &schematics.TransportError{
			Operation: req.label(),
			Method:    req.Method,
			Path:      req.Path,
			Sent:      true,
			Cause:     fmt.Errorf("reading response body: %w", err),
		}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"operation":   req.label(),
			"status_code": resp.StatusCode,
			"attempts":    state.attempts(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}

	if !decode.IsSuccess(resp.StatusCode) {
		return resp, decode.Error(req.label(), resp.StatusCode, resp.Headers, resp.Body)
	}

	return resp, nil
}

// retryClient binds the retry policy to one call's attempt state.
func (c *Client) retryClient(req *Request, state *callState) *retryablehttp.Client {
	idempotent := req.Idempotent || (req.Operation == "" && IsIdempotentMethod(req.Method))

	retryMax := c.policy.MaxAttempts - 1
	if retryMax < 0 {
		retryMax = 0
	}

	var logger interface{}
	if c.logger != nil {
		logger = &leveledLogger{logger: c.logger}
	}

	return &retryablehttp.Client{
		HTTPClient:   c.httpClient,
		Logger:       logger,
		RetryWaitMin: c.policy.WaitMin,
		RetryWaitMax: c.policy.WaitMax,
		RetryMax:     retryMax,
		RequestLogHook: func(_ retryablehttp.Logger, _ *http.Request, attempt int) {
			state.begin(attempt + 1)
		},
		CheckRetry: func(ctx context.Context, resp *http.Response, err error) (bool, error) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}

			attempt := Attempt{
				Number:     state.attempts(),
				Idempotent: idempotent,
				Sent:       state.wasSent(),
				Err:        err,
			}

			if resp != nil {
				attempt.StatusCode = resp.StatusCode
				attempt.RetryAfter = resp.Header.Get(constants.HeaderRetryAfter)
			}

			decision := c.policy.Decide(attempt)
			state.decide(decision)

			if decision.Retry {
				c.observeRetry(req, attempt, decision)
			}

			return decision.Retry, nil
		},
		Backoff: func(_, _ time.Duration, _ int, _ *http.Response) time.Duration {
			return state.delay()
		},
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}
}

func (c *Client) observeRetry(req *Request, attempt Attempt, decision Decision) {
	if c.metrics != nil {
		c.metrics.ObserveRetry(req.metricLabel())
	}

	if c.logger == nil {
		return
	}

	fields := map[string]interface{}{
		"operation": req.label(),
		"method":    req.Method,
		"attempt":   attempt.Number,
		"delay_ms":  decision.Delay.Milliseconds(),
		"reason":    decision.Reason,
	}

	if attempt.StatusCode != 0 {
		fields["status_code"] = attempt.StatusCode
	}

	if attempt.Err != nil {
		fields["error"] = attempt.Err.Error()
	}

	c.logger.Warn("Retrying request", fields)
}

func (c *Client) contextError(req *Request, err error, timeout time.Duration, sent bool) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &schematics.TimeoutError{
			Operation: req.label(),
			Method:    req.Method,
			Path:      req.Path,
			After:     timeout,
			Cause:     err,
		}
	}

	return &schematics.TransportError{
		Operation: req.label(),
		Method:    req.Method,
		Path:      req.Path,
		Sent:      sent,
		Cause:     err,
	}
}

func (c *Client) encodeBody(req *Request) (interface{}, string, error) {
	if req.RawBody != nil {
		return req.RawBody, req.ContentType, nil
	}

	if req.Body == nil {
		return nil, "", nil
	}

	encoded, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", &schematics.ValidationError{
			Operation: req.label(),
			Parameter: "body",
			Reason:    fmt.Sprintf("failed to marshal request body: %v", err),
		}
	}

	return bytes.NewReader(encoded), constants.ContentTypeJSON, nil
}

func (c *Client) buildURL(req *Request) string {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	return target
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

func (r *Request) label() string {
	if r.Operation != "" {
		return r.Operation
	}

	return r.Method + " " + r.Path
}

// metricLabel bounds label cardinality: raw calls share one label.
func (r *Request) metricLabel() string {
	if r.Operation != "" {
		return r.Operation
	}

	return schematics.RawOperation
}

// callState tracks the attempts of one call.
type callState struct {
	mu       sync.Mutex
	attempt  int
	sent     bool
	decision Decision
}

func (s *callState) begin(attempt int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempt = attempt
	s.sent = false
}

func (s *callState) trace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		WroteHeaders: func() {
			s.mu.Lock()
			s.sent = true
			s.mu.Unlock()
		},
	}
}

func (s *callState) wasSent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sent
}

func (s *callState) attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attempt
}

func (s *callState) decide(decision Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.decision = decision
}

func (s *callState) delay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.decision.Delay
}
