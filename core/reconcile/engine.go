package reconcile

import (
	"context"
	"fmt"
	"time"
)

// Result is the outcome of a pass: the report, the plan it executed and the
// state of both stores read back afterwards.
type Result[R Record] struct {
	Report      *Report  `json:"report"`
	Plan        *Plan[R] `json:"-"`
	LocalFinal  []R      `json:"-"`
	RemoteFinal []R      `json:"-"`
}

// Engine runs reconciliation passes between two endpoints.
// It is sequential and assumes nobody else writes to either store during a pass.
type Engine[R Record] struct {
	local  Endpoint[R]
	remote Endpoint[R]
	now    func() time.Time
}

// NewEngine creates an engine over the local and remote endpoints.
func NewEngine[R Record](local, remote Endpoint[R]) *Engine[R] {
	return &Engine[R]{local: local, remote: remote, now: time.Now}
}

// Run performs one pass: snapshot both stores, plan, apply and read back.
//
// Errors reaching a store are wrapped with ErrStoreUnavailable. When a write
// fails the returned Result still holds the partial report.
func (e *Engine[R]) Run(ctx context.Context, opts Options) (*Result[R], error) {
	report := NewReport(e.now())
	report.DryRun = opts.DryRun

	localSnap, err := e.local.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading local snapshot: %w", ErrStoreUnavailable, err)
	}
	remoteSnap, err := e.remote.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading remote snapshot: %w", ErrStoreUnavailable, err)
	}

	plan := BuildPlan(localSnap, remoteSnap)
	report.Skipped = plan.Skipped
	result := &Result[R]{Report: report, Plan: plan}

	if opts.DryRun {
		for _, a := range plan.Actions {
			report.Record(a.Direction, a.Kind, a.Key, a.Label)
		}
		result.LocalFinal, result.RemoteFinal = localSnap, remoteSnap
		report.Finish(e.now(), nil)
		return result, nil
	}

	if err := Apply(ctx, plan, e.local, e.remote, report); err != nil {
		report.Finish(e.now(), err)
		return result, err
	}

	if result.LocalFinal, err = e.local.Snapshot(ctx); err != nil {
		err = fmt.Errorf("%w: reading local store after sync: %w", ErrStoreUnavailable, err)
		report.Finish(e.now(), err)
		return result, err
	}
	if result.RemoteFinal, err = e.remote.Snapshot(ctx); err != nil {
		err = fmt.Errorf("%w: reading remote store after sync: %w", ErrStoreUnavailable, err)
		report.Finish(e.now(), err)
		return result, err
	}

	report.Finish(e.now(), nil)
	return result, nil
}
