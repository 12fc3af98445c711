package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// ErrSessionExpired is returned when the server rejected the stored token.
// By the time a caller sees it the token has been cleared, the user has
// been notified and the UI has been sent to the sign-in view.
var ErrSessionExpired = errors.New("session expired")

// ErrResponseHandled is returned by typed calls when an interceptor consumed
// the response without reporting an error.
var ErrResponseHandled = errors.New("response handled by interceptor")

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// newHTTPError builds an HTTPError from a response, preferring the
// server's {"error": "..."} message over the raw body.
func newHTTPError(resp *resty.Response) *HTTPError {
	body := resp.Body()
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return &HTTPError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}
	return &HTTPError{StatusCode: resp.StatusCode(), Message: string(body)}
}

const maxErrorBody = 1 << 20 // 1 MB
