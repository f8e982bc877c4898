package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// UnreachableMessage is shown when no response arrived from the backend.
const UnreachableMessage = "Server is unreachable"

// ErrUnreachable matches every Error of KindUnreachable via errors.Is.
var ErrUnreachable = errors.New("server is unreachable")

// Kind classifies a failed request.
type Kind string

const (
	// KindUnreachable means no response was received (DNS, refused
	// connection, timeout, TLS).
	KindUnreachable Kind = "unreachable"

	// KindBackend means the backend answered with a non-success status.
	KindBackend Kind = "backend"
)

// Error is a normalized request failure.
type Error struct {
	Kind       Kind
	StatusCode int
	// Message is the human-readable text to show the user.
	Message string
	// Payload is the backend's error body, unmodified.
	Payload json.RawMessage
	// Err is the underlying transport error for KindUnreachable.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUnreachable and e is unreachable.
func (e *Error) Is(target error) bool {
	return target == ErrUnreachable && e.Kind == KindUnreachable
}

// Detail renders the error with its classification, for logs.
func (e *Error) Detail() string {
	if e.Kind == KindUnreachable {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

func unreachable(err error) *Error {
	return &Error{
		Kind:    KindUnreachable,
		Message: UnreachableMessage,
		Err:     err,
	}
}

func backendError(status int, body []byte) *Error {
	return &Error{
		Kind:       KindBackend,
		StatusCode: status,
		Message:    payloadMessage(status, body),
		Payload:    json.RawMessage(body),
	}
}

// payloadMessage pulls the user-facing text out of an error body. The
// backend sends {"message": "..."}; anything else falls back to the status.
func payloadMessage(status int, body []byte) string {
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Error != "" {
			return obj.Error
		}
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil && s != "" {
		return s
	}

	if text := strings.TrimSpace(http.StatusText(status)); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

// IsStatus reports whether err is a backend error with the given status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindBackend && e.StatusCode == status
}
