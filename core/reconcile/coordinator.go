package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Runner runs a single reconciliation pass.
type Runner[R Record] interface {
	Run(ctx context.Context, opts Options) (*Result[R], error)
}

// Coordinator makes sure at most one pass runs at a time.
// Callers arriving while a pass is in flight wait for it and share its result;
// a caller that joined after the pass took its snapshots gets one trailing pass.
// Writers holding WriteLocker exclude non dry-run passes, so a pass never
// applies a snapshot older than a write it did not see.
type Coordinator[R Record] struct {
	runner Runner[R]
	sf     singleflight.Group
	gate   sync.RWMutex

	mu       sync.RWMutex
	seq      uint64
	last     *Result[R]
	lastAt   time.Time
	inFlight bool
}

type pass[R Record] struct {
	result *Result[R]
	seq    uint64
}

// NewCoordinator wraps a runner.
func NewCoordinator[R Record](runner Runner[R]) *Coordinator[R] {
	return &Coordinator[R]{runner: runner}
}

// Run starts a pass or joins the one in flight. shared is true when the
// result came from a pass started by another caller.
func (c *Coordinator[R]) Run(ctx context.Context, opts Options) (result *Result[R], shared bool, err error) {
	c.mu.RLock()
	before := c.seq
	c.mu.RUnlock()

	p, shared, err := c.do(ctx, opts)
	if shared && !opts.DryRun && p.seq <= before && ctx.Err() == nil {
		// the joined pass began before this caller arrived
		p, _, err = c.do(ctx, opts)
	}
	return p.result, shared, err
}

// WriteLocker returns the lock writers hold while changing the local store.
// Any number of writers may hold it at once; a non dry-run pass waits for all of them.
func (c *Coordinator[R]) WriteLocker() sync.Locker {
	return c.gate.RLocker()
}

func (c *Coordinator[R]) do(ctx context.Context, opts Options) (pass[R], bool, error) {
	key := "sync"
	if opts.DryRun {
		key = "dry-run"
	}

	v, err, shared := c.sf.Do(key, func() (any, error) {
		var p pass[R]
		if !opts.DryRun {
			c.gate.Lock()
			defer c.gate.Unlock()

			c.mu.Lock()
			c.seq++
			p.seq = c.seq
			c.inFlight = true
			c.mu.Unlock()
			defer c.setInFlight(false)
		}

		res, err := c.runner.Run(ctx, opts)
		if !opts.DryRun && res != nil {
			c.mu.Lock()
			c.last = res
			c.lastAt = time.Now()
			c.mu.Unlock()
		}
		p.result = res
		return p, err
	})

	p, _ := v.(pass[R])
	return p, shared, err
}

// Last returns the result of the latest non dry-run pass and when it finished.
// The result is nil before the first pass.
func (c *Coordinator[R]) Last() (*Result[R], time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last, c.lastAt
}

// Running reports whether a pass is in flight.
func (c *Coordinator[R]) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight
}

func (c *Coordinator[R]) setInFlight(v bool) {
	c.mu.Lock()
	c.inFlight = v
	c.mu.Unlock()
}
