package ens

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError with errors.Is
var ErrNotFound = errors.New("ens: resource not found")

// ErrorDetails is the error payload ENS returns with failed requests.
type ErrorDetails struct {
	// Message is the human readable message, or the raw body when it is not JSON
	Message          string
	DeveloperMessage string
	// MessageID is nil when the payload carries no id
	MessageID *int
}

// parseErrorDetails extracts the error payload. Fields with unexpected types
// are skipped; a body that is not a JSON object becomes the message.
func parseErrorDetails(body []byte) ErrorDetails {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return ErrorDetails{Message: string(body)}
	}

	var details ErrorDetails
	if v, ok := raw["message"]; ok {
		_ = json.Unmarshal(v, &details.Message)
	}
	if v, ok := raw["developerMessage"]; ok {
		_ = json.Unmarshal(v, &details.DeveloperMessage)
	}
	if v, ok := raw["messageId"]; ok {
		var id int
		if err := json.Unmarshal(v, &id); err == nil {
			details.MessageID = &id
		}
	}
	return details
}

// RequestError is returned for any non-200 response other than "not found".
type RequestError struct {
	StatusCode int
	Status     string
	ErrorDetails
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ens: request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ens: request failed with status %s", statusText(e.StatusCode, e.Status))
}

// NotFoundError is returned for 404 and 204 responses, which ENS uses
// interchangeably for an absent resource.
type NotFoundError struct {
	StatusCode int
	ErrorDetails
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ens: not found (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ens: not found (status %d)", e.StatusCode)
}

// Is reports whether target is ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TransportError wraps failures to build, send or read an HTTP request.
type TransportError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ens: %s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FieldNotFoundError is returned when a supporter has no custom field of the given name.
type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field '%s' not found in supporter fields", e.Field)
}

// EnumError is returned when a required enum value is not recognized.
type EnumError struct {
	Kind  string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("ens: unknown %s %q", e.Kind, e.Value)
}

func statusText(code int, status string) string {
	if status != "" {
		return status
	}
	return fmt.Sprintf("%d", code)
}
