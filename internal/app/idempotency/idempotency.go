package idempotency

import (
	"context"
	"time"
)

// Record captures the outcome of a keyed operation so a retried request can
// be answered without repeating the side effect.
type Record struct {
	Key        string
	Payload    []byte
	Error      string
	OccurredAt time.Time
}

type Store interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Save(ctx context.Context, rec Record) error
}
