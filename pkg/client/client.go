// Package client is the authenticated gateway to the viewer API.
//
// Every request carries the base URL and Authorization header baked in at
// construction. The transport never fails on HTTP status; instead each
// response runs through an ordered interceptor pipeline, which is where an
// expired session (401) is turned into a cleared token, a toast and a
// redirect to the sign-in view.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/naveenspark/eventview/pkg/client"

// Client is the viewer API gateway.
type Client struct {
	rest         *resty.Client
	baseURL      string
	token        string
	dialer       *websocket.Dialer
	interceptors []ResponseInterceptor
	logger       *slog.Logger
	metrics      *Metrics
	tracer       trace.Tracer
}

// New creates a gateway for baseURL. An empty token sends no Authorization header.
func New(baseURL, token string, opts ...Option) *Client {
	o := newClientOptions()
	for _, opt := range opts {
		opt(o)
	}

	var rest *resty.Client
	if o.httpClient != nil {
		rest = resty.NewWithClient(o.httpClient)
	} else {
		rest = resty.New()
	}
	rest.SetBaseURL(baseURL).
		SetTimeout(o.timeout).
		SetRetryCount(0).
		SetHeaders(o.requestHeaders).
		SetLogger(restyLogger{l: o.logger}).
		SetDisableWarn(true)

	if token != "" {
		if o.authScheme != "" {
			rest.SetAuthScheme(o.authScheme).SetAuthToken(token)
		} else {
			rest.SetHeader("Authorization", token)
		}
	}

	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &Client{
		rest:         rest,
		baseURL:      baseURL,
		token:        token,
		dialer:       o.dialer,
		interceptors: o.interceptors,
		logger:       o.logger,
		metrics:      o.metrics,
		tracer:       tracer,
	}
}

// FromStorage reads the server URL and token from creds once and returns a
// gateway with the session-expiry interceptor at the head of the pipeline.
// fallbackURL is used when no server URL has been stored yet.
func FromStorage(creds Credentials, fallbackURL string, notifier Notifier, nav Navigator, opts ...Option) (*Client, error) {
	serverURL, err := creds.Get(StorageKeyServerURL)
	if err != nil {
		return nil, fmt.Errorf("client.FromStorage: read server url: %w", err)
	}
	if serverURL == "" {
		serverURL = fallbackURL
	}
	if serverURL == "" {
		return nil, errors.New("client.FromStorage: no server url configured")
	}
	token, err := creds.Get(StorageKeyToken)
	if err != nil {
		return nil, fmt.Errorf("client.FromStorage: read token: %w", err)
	}

	o := newClientOptions()
	for _, opt := range opts {
		opt(o)
	}
	expiry := NewSessionExpiry(creds, notifier, nav, o.logger)
	all := append([]Option{WithResponseInterceptor(expiry)}, opts...)
	return New(serverURL, token, all...), nil
}

// BaseURL returns the server URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasToken reports whether requests carry an Authorization header.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// Do sends a request and runs the response through the interceptor
// pipeline. Any HTTP status is returned as a response; transport failures
// are returned unchanged. When an interceptor handles the response, Do
// returns a nil response and the interceptor's error.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*resty.Response, error) {
	ctx, span := c.tracer.Start(ctx, "client "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		),
	)
	defer span.End()

	requestID := uuid.NewString()
	req := c.rest.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.metrics.transportError()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.logger.Debug("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.String("err", err.Error()),
		)
		return nil, err
	}

	status := resp.StatusCode()
	c.metrics.observe(method, status, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", status))
	c.logger.Debug("request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("took", time.Since(start)),
		slog.String("request_id", requestID),
	)

	for _, interceptor := range c.interceptors {
		verdict, ierr := interceptor.InterceptResponse(ctx, resp)
		if verdict == Handled || ierr != nil {
			if errors.Is(ierr, ErrSessionExpired) {
				c.metrics.sessionExpired()
			}
			if ierr != nil {
				span.SetStatus(codes.Error, ierr.Error())
			}
			return nil, ierr
		}
	}
	return resp, nil
}

// call is Do for JSON endpoints: statuses >= 400 become *HTTPError and the
// body is decoded into out when out is non-nil.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if resp == nil {
		return ErrResponseHandled
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return newHTTPError(resp)
	}
	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.call(ctx, http.MethodPost, path, body, out)
}
