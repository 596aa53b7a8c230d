package cache

import (
	"context"
	"time"
)

// TextCache stores extracted document text keyed by file path. Final file
// paths embed the version number and upload timestamp, so entries can
// never go stale; the TTL only bounds memory.
type TextCache interface {
	Get(ctx context.Context, key string) (val string, hit bool, err error)
	Set(ctx context.Context, key, val string, ttl time.Duration) error
}
