// Package inflight gates duplicate submissions: while an operation such as
// "add product p1 to cart" is outstanding, a second attempt at the same
// operation is refused instead of sending another request. This is the
// "button disabled while pending" behavior of the storefront UI.
package inflight

import (
	"errors"
	"time"
)

// ErrBusy is returned when the same operation is already in flight.
var ErrBusy = errors.New("operation already in progress")

// State describes an operation currently in flight.
type State struct {
	// Operation is the guarded operation name (e.g. "cart.add:p1").
	Operation string `json:"operation"`

	// StartedAt is when the holder acquired the guard.
	StartedAt time.Time `json:"started_at"`
}

// Elapsed returns how long the operation has been outstanding.
func (s State) Elapsed() time.Duration {
	return time.Since(s.StartedAt)
}

// Op builds an operation name from a verb and the resource it targets.
func Op(verb, resource string) string {
	if resource == "" {
		return verb
	}
	return verb + ":" + resource
}
