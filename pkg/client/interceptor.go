package client

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/naveenspark/eventview/pkg/toast"
)

// Storage keys read by the gateway.
const (
	StorageKeyServerURL = "server_url"
	StorageKeyToken     = "token"
)

// SignInPath is where the UI is sent when the session expires.
const SignInPath = "/sign-in"

// SessionExpiredMessage is the toast shown when the server answers 401.
const SessionExpiredMessage = "Your session has expired. Please sign in again."

// Verdict is the outcome of a single response interceptor.
type Verdict int

const (
	// Pass hands the response to the next interceptor, or to the caller.
	Pass Verdict = iota
	// Handled stops the pipeline; the caller gets no response.
	Handled
)

// ResponseInterceptor inspects a response before it reaches the caller.
// Returning Handled, or a non-nil error, stops the pipeline and the error
// is returned to the caller in place of the response.
type ResponseInterceptor interface {
	InterceptResponse(ctx context.Context, resp *resty.Response) (Verdict, error)
}

// InterceptorFunc adapts a function to ResponseInterceptor.
type InterceptorFunc func(ctx context.Context, resp *resty.Response) (Verdict, error)

func (f InterceptorFunc) InterceptResponse(ctx context.Context, resp *resty.Response) (Verdict, error) {
	return f(ctx, resp)
}

// Credentials is the durable key/value storage holding the server URL and token.
type Credentials interface {
	Get(key string) (string, error)
	Remove(key string) error
}

// Notifier raises user-visible notifications.
type Notifier interface {
	Add(success bool, content string) *toast.Toast
}

// Navigator moves the UI to another view.
type Navigator interface {
	Navigate(path string)
}

// SessionExpiry handles 401 responses: it clears the stored token, tells
// the user and sends the UI to the sign-in view.
type SessionExpiry struct {
	creds    Credentials
	notifier Notifier
	nav      Navigator
	logger   *slog.Logger
}

// NewSessionExpiry returns the 401 interceptor. Any collaborator may be nil.
func NewSessionExpiry(creds Credentials, notifier Notifier, nav Navigator, logger *slog.Logger) *SessionExpiry {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionExpiry{creds: creds, notifier: notifier, nav: nav, logger: logger}
}

func (s *SessionExpiry) InterceptResponse(_ context.Context, resp *resty.Response) (Verdict, error) {
	if resp.StatusCode() != http.StatusUnauthorized {
		return Pass, nil
	}

	if resp.Request != nil {
		s.logger.Info("session expired", slog.String("url", resp.Request.URL))
	}

	if s.creds != nil {
		// Notification and redirect still happen if the token cannot be cleared.
		if err := s.creds.Remove(StorageKeyToken); err != nil {
			s.logger.Warn("clear stored token", slog.String("err", err.Error()))
		}
	}
	if s.notifier != nil {
		s.notifier.Add(false, SessionExpiredMessage)
	}
	if s.nav != nil {
		s.nav.Navigate(SignInPath)
	}
	return Handled, ErrSessionExpired
}
