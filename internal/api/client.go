// Package api is the client for the remote content API that owns every post,
// tag, author and media record the console edits.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/debemdeboas/the-press/internal/config"
)

var apiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

// TokenSource yields the bearer token to attach to requests. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	obs     observability
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}
	if c.tokens == nil {
		c.tokens = StaticToken("")
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the API root every request path is joined to.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one call. body is JSON-encoded unless it is a
// *multipartBody.
type request struct {
	method string
	path   string
	// route names the endpoint in spans and metrics, e.g. /blogs/{id}.
	route string
	body  any
	out   any
	auth  bool
}

func (c *Client) do(ctx context.Context, r request) (err error) {
	route := r.route
	if route == "" {
		route = r.path
	}
	op := r.method + " " + route
	ctx, span := c.obs.startSpan(ctx, "api "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.method),
			attribute.String("url.path", r.path),
		))
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		c.obs.record(ctx, op, time.Since(start), err)
	}()

	var (
		body        io.Reader
		contentType string
	)
	switch b := r.body.(type) {
	case nil:
	case *multipartBody:
		body, contentType = b.buf, b.contentType
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode %s: %w", op, err)
		}
		body, contentType = bytes.NewReader(buf), config.CTypeJSON
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}
	req.Header.Set("Accept", config.CTypeJSON)
	if contentType != "" {
		req.Header.Set(config.HCType, contentType)
	}
	if r.auth {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("token for %s: %w", op, err)
		}
		if tok != "" {
			req.Header.Set(config.HAuthorization, "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		apiLogger.Error().Err(err).Str("op", op).Msg("Request failed")
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", op, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newError(r.method, r.path, resp.StatusCode, raw)
		apiLogger.Warn().Int("status", resp.StatusCode).Str("op", op).Str("message", apiErr.Message).Msg("API error")
		return apiErr
	}
	apiLogger.Debug().Int("status", resp.StatusCode).Str("op", op).Msg("API call")

	if r.out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, r.out); err != nil {
		return fmt.Errorf("decode %s: %w", op, err)
	}
	return nil
}

// response is the {"response": ...} envelope most endpoints use.
type response[T any] struct {
	Response T `json:"response"`
}

// data is the {"data": ...} envelope of the media endpoints.
type data[T any] struct {
	Data T `json:"data"`
}

type observability struct {
	tracer  trace.Tracer
	metrics *metrics
}

type metrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}
