package reconcile

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable marks failures to read from or write to one of the stores.
// A pass that fails with it may have written some records; running a new pass is safe.
var ErrStoreUnavailable = errors.New("store unavailable")

// Record is the view of a stored entity the engine needs to reconcile it.
type Record interface {
	// Key is the identity shared by both stores. Records with an empty key are skipped.
	Key() string
	// Modified is the last mutation time. The zero time is older than any real timestamp.
	Modified() time.Time
	// Deleted reports whether the record is a tombstone.
	Deleted() bool
	// Fingerprint is a deterministic digest of the record content.
	Fingerprint() string
	// Label is a human readable name used in change logs.
	Label() string
}

// Endpoint is one side of the synchronization.
type Endpoint[R Record] interface {
	// Snapshot reads every record of the store, tombstones included.
	Snapshot(ctx context.Context) ([]R, error)
	// Apply writes a record (and everything it owns) as a unit.
	Apply(ctx context.Context, record R) error
}

// EndpointFuncs adapts a pair of functions to the Endpoint interface.
type EndpointFuncs[R Record] struct {
	SnapshotFunc func(ctx context.Context) ([]R, error)
	ApplyFunc    func(ctx context.Context, record R) error
}

func (f EndpointFuncs[R]) Snapshot(ctx context.Context) ([]R, error) {
	return f.SnapshotFunc(ctx)
}

func (f EndpointFuncs[R]) Apply(ctx context.Context, record R) error {
	return f.ApplyFunc(ctx, record)
}
