package client

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Client.
type Option func(*Options)

// Options holds the client configuration assembled from Option values.
type Options struct {
	httpClient     *http.Client
	timeout        time.Duration
	authScheme     string
	requestHeaders map[string]string
	logger         *slog.Logger
	interceptors   []ResponseInterceptor
	metrics        *Metrics
	tracer         trace.Tracer
	dialer         *websocket.Dialer
}

func newClientOptions() *Options {
	return &Options{
		timeout: 30 * time.Second,
		requestHeaders: map[string]string{
			"Accept": "application/json",
		},
		logger: slog.Default(),
		dialer: websocket.DefaultDialer,
	}
}

// WithHTTPClient sets the underlying *http.Client (transport, cookies, proxies).
func WithHTTPClient(hc *http.Client) Option {
	return func(o *Options) {
		if hc != nil {
			o.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d >= 0 {
			o.timeout = d
		}
	}
}

// WithAuthScheme prefixes the token in the Authorization header, e.g. "Bearer".
// By default the header carries the raw token.
func WithAuthScheme(scheme string) Option {
	return func(o *Options) {
		o.authScheme = strings.TrimSpace(scheme)
	}
}

// WithRequestHeader adds a header to every request. Authorization and
// Accept cannot be overridden.
func WithRequestHeader(header, value string) Option {
	return func(o *Options) {
		header = strings.TrimSpace(header)
		if header == "" || strings.EqualFold(header, "Authorization") || strings.EqualFold(header, "Accept") {
			return
		}
		o.requestHeaders[header] = value
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithResponseInterceptor appends an interceptor to the response pipeline.
func WithResponseInterceptor(i ResponseInterceptor) Option {
	return func(o *Options) {
		if i != nil {
			o.interceptors = append(o.interceptors, i)
		}
	}
}

// WithMetrics records request metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.metrics = m
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithDialer sets the websocket dialer used by Stream.
func WithDialer(d *websocket.Dialer) Option {
	return func(o *Options) {
		if d != nil {
			o.dialer = d
		}
	}
}
