// Package journal records every proxied call so the UI can show recent
// activity and failures.
package journal

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one proxied call.
type Entry struct {
	ID       string `json:"id"`
	Method   string `json:"method"`
	Endpoint string `json:"endpoint"`
	URL      string `json:"url"`

	// Status is the upstream HTTP status, or 0 when no response arrived.
	Status int `json:"status"`

	// Kind is "ok" or the failure kind of the call.
	Kind  string `json:"kind"`
	Error string `json:"error,omitempty"`

	Bytes     int64         `json:"bytes"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewEntry returns an entry with a fresh ID and creation time.
func NewEntry(method, endpoint, url string) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		Method:    method,
		Endpoint:  endpoint,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
}
