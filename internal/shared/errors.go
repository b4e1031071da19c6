package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Lookup errors
	ErrAuthentication = fmt.Errorf("authentication failed")
	ErrNotFound       = fmt.Errorf("not found")
	ErrUpstream       = fmt.Errorf("upstream service error")
	ErrValidation     = fmt.Errorf("invalid input")

	// Session errors
	ErrSessionNotFound = fmt.Errorf("session not found")
)

// APIError is a non-2xx response from an upstream API.
//
// It unwraps to one of [ErrAuthentication], [ErrValidation], [ErrNotFound] or [ErrUpstream]
// depending on the status code, so callers only ever need [errors.Is].
type APIError struct {
	Service string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Message)
}

// Unwrap maps the status code onto the lookup error taxonomy.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthentication
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrUpstream
	}
}

// ParseAPIError builds an [APIError] from a response body.
//
// Understands the Web API shape ({"error":{"status":400,"message":"..."}}), the OAuth shape
// ({"error":"invalid_client","error_description":"..."}) and a bare {"message":"..."}.
// Falls back to the status text when the body carries nothing useful.
func ParseAPIError(service string, status int, body []byte) *APIError {
	apiErr := &APIError{Service: service, Status: status}

	if gjson.ValidBytes(body) {
		res := gjson.GetManyBytes(body, "error.message", "error_description", "error", "message")
		for _, r := range res {
			if r.Type == gjson.String && r.String() != "" {
				apiErr.Message = r.String()
				break
			}
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.ToLower(http.StatusText(status))
	}
	if apiErr.Message == "" {
		apiErr.Message = "unexpected response"
	}
	return apiErr
}

// HTTPStatus maps an error to the status code shown to the browser.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// UserMessage maps an error to a message that is safe to show to the user.
//
// Internal details (status codes, URLs, payloads) never leak into it; validation
// errors are the exception because their text is produced by this program.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		detail := strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			detail = apiErr.Message
		}
		return "Some of the submitted values are invalid: " + detail
	case errors.Is(err, ErrAuthentication):
		return "Spotify rejected your client credentials. Log out and check your client ID and secret."
	case errors.Is(err, ErrNotFound):
		return "No such artist. Check the spelling and try again."
	default:
		return "The music service is temporarily unavailable. Please try again later."
	}
}
