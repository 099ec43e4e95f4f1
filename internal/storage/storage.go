// Package storage caches generated tables behind an explicit
// get-or-compute interface, in process or in Redis.
package storage

import (
	"context"
	"time"
)

// Compute produces the value for a cache miss.
type Compute[V any] func(ctx context.Context) (V, error)

// Cache maps a parameter key to a value that expires after a fixed time.
// Compute errors are returned unmodified and never stored.
type Cache[V any] interface {
	GetOrCompute(ctx context.Context, key string, compute Compute[V]) (V, error)
	Invalidate(ctx context.Context, key string) error
	Purge(ctx context.Context) error
}

// Clock is the time source used for expiry.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Codec turns values into bytes for caches living outside the process.
type Codec[V any] struct {
	Encode func(V) ([]byte, error)
	Decode func([]byte) (V, error)
}
