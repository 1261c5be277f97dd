// Package snapshot stores opaque cart blobs under string keys.
package snapshot

import "context"

// Repository is a key/value blob store. Get returns domain.ErrNotFound when
// nothing is stored under key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
