// Package transport performs every HTTP exchange with the AI Characters
// backend and normalizes the outcome into parsed JSON or a typed error.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-agent-character-demo/client/internal/notify"
	"ai-agent-character-demo/client/pkg/logger"
	"ai-agent-character-demo/client/pkg/middleware"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const tracerName = "ai-agent-character-demo/client/transport"

// CredentialProvider supplies the bearer token at call time.
// An empty token means the request is sent without Authorization.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// CredentialFunc adapts a function to CredentialProvider
type CredentialFunc func(ctx context.Context) (string, error)

// Token calls f
func (f CredentialFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// NoCredentials never attaches a token
var NoCredentials = CredentialFunc(func(context.Context) (string, error) { return "", nil })

// Request describes one backend call
type Request struct {
	// Operation names the call for schema lookup, metrics and tracing
	Operation string
	Method    string
	Path      string
	// Body is JSON-encoded when non-nil
	Body any
}

// Client sends requests to the backend
type Client struct {
	baseURL   string
	http      *http.Client
	creds     CredentialProvider
	notifier  notify.Notifier
	validator *SchemaValidator
	limiter   *rate.Limiter
	metrics   *Metrics
	log       *logger.Logger
	tracer    trace.Tracer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithValidator checks every success response against v
func WithValidator(v *SchemaValidator) Option {
	return func(c *Client) { c.validator = v }
}

// WithLimiter paces outbound calls
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithMetrics records call counts and latency
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for outbound call records
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTracerProvider sets where spans are sent. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// NewClient creates a backend client rooted at baseURL
func NewClient(baseURL string, creds CredentialProvider, notifier notify.Notifier, opts ...Option) *Client {
	if creds == nil {
		creds = NoCredentials
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{},
		creds:    creds,
		notifier: notifier,
		log:      logger.GetGlobal(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("transport")
	return c
}

// BaseURL returns the backend root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs req and returns the parsed response body. Every failure
// produces exactly one notification before the error is returned.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	return c.exchange(ctx, req, nil)
}

// exchange runs one instrumented request. decode, when set, runs before the
// outcome is recorded so a body it rejects counts as an invalid response.
func (c *Client) exchange(ctx context.Context, req Request, decode func(json.RawMessage) error) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, req.Operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.path", req.Path),
		),
	)
	defer span.End()

	start := time.Now()
	status := 0
	raw, err := c.do(ctx, req, &status)
	if err == nil && decode != nil {
		if derr := decode(raw); derr != nil {
			err = c.fail(&ParseError{StatusCode: status, Err: derr}, GenericFailureMessage)
		}
	}

	elapsed := time.Since(start)
	c.log.LogOutbound(req.Operation, req.Method, req.Path, status, elapsed)
	c.metrics.observe(req.Operation, outcome(status, err), elapsed)
	span.SetAttributes(attribute.Int("http.status_code", status))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, req Request, status *int) (json.RawMessage, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, c.fail(fmt.Errorf("failed to encode %s request: %w", req.Operation, err), GenericFailureMessage)
		}
		body = bytes.NewReader(payload)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.fail(&NetworkError{Err: err}, GenericFailureMessage)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, c.fail(fmt.Errorf("failed to build %s request: %w", req.Operation, err), GenericFailureMessage)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	requestID := middleware.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	httpReq.Header.Set("X-Request-ID", requestID)

	token, err := c.creds.Token(ctx)
	if err != nil {
		c.log.LogError(err, "failed to read credentials, sending without token", "operation", req.Operation)
		token = ""
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.fail(&NetworkError{Err: err}, GenericFailureMessage)
	}
	defer resp.Body.Close()
	*status = resp.StatusCode

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&NetworkError{Err: err}, GenericFailureMessage)
	}

	// Bodies are parsed regardless of status; an empty body reads as null.
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("null")
	}
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, c.fail(&ParseError{StatusCode: resp.StatusCode, Err: err}, GenericFailureMessage)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := errorMessage(parsed, resp.StatusCode)
		return nil, c.fail(&RequestError{StatusCode: resp.StatusCode, Message: message, Body: data}, message)
	}

	if c.validator != nil {
		if err := c.validator.Validate(req.Operation, resp.StatusCode, parsed); err != nil {
			return nil, c.fail(err, GenericFailureMessage)
		}
	}

	return json.RawMessage(data), nil
}

func (c *Client) fail(err error, message string) error {
	if c.notifier != nil {
		c.notifier.Error(message)
	}
	return err
}

// Call performs req and decodes the response into T. A body that does not
// decode into T is reported like any other malformed response.
func Call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	_, err := c.exchange(ctx, req, func(raw json.RawMessage) error {
		return json.Unmarshal(raw, &out)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// errorMessage extracts the backend's human readable failure detail
func errorMessage(body any, status int) string {
	if obj, ok := body.(map[string]any); ok {
		switch detail := obj["detail"].(type) {
		case string:
			if detail != "" {
				return detail
			}
		case []any:
			// validation errors arrive as a list of {"loc", "msg", "type"}
			var msgs []string
			for _, item := range detail {
				if entry, ok := item.(map[string]any); ok {
					if msg, ok := entry["msg"].(string); ok && msg != "" {
						msgs = append(msgs, msg)
					}
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}

		switch e := obj["error"].(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return fmt.Sprintf("Error: %d %s", status, http.StatusText(status))
}

func outcome(status int, err error) string {
	if err == nil {
		return "ok"
	}
	if status >= 200 && status <= 299 {
		return "invalid_response"
	}
	return statusOutcome(status)
}
