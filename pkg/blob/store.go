package blob

import (
	"context"
	"time"
)

// SignedURL is a time-limited public reference to a stored object.
type SignedURL struct {
	Url       string
	ExpiresAt time.Time
}

// Store is the object-storage collaborator: put bytes under a key, hand out
// read URLs, and answer a health probe.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (*SignedURL, error)
	Healthy(ctx context.Context) bool
}
