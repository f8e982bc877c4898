package cache

import (
	"time"
)

// Entry is a cached backend response body.
type Entry struct {
	// Data is the raw JSON body
	Data []byte `json:"data"`

	// StatusCode is the HTTP status the body was served with
	StatusCode int `json:"status_code"`

	// CachedAt is when the entry was stored
	CachedAt time.Time `json:"cached_at"`
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CachedAt)
}
