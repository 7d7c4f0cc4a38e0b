package backend

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized marks a logical failure whose message indicates the token
// was rejected. Callers clear the session and send the user back to login.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a backend-reported logical failure: the request completed but
// the response carried success:false.
type APIError struct {
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// The API has no structured error codes; authorization failures are only
// recognizable from the message text.
var unauthorizedHints = []string{
	"not authorized",
	"unauthorized",
	"login again",
	"invalid token",
	"jwt",
}

func apiError(endpoint, message string) error {
	err := &APIError{Endpoint: endpoint, Message: message}
	lower := strings.ToLower(message)
	for _, hint := range unauthorizedHints {
		if strings.Contains(lower, hint) {
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
	}
	return err
}

// UserMessage extracts the text worth showing to the user. Transport errors
// get a generic line so internals never leak into the page.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Something went wrong. Please try again."
}
