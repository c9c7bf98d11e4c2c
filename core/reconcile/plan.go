package reconcile

import (
	"context"
	"fmt"
)

// BuildPlan decides every write of a pass from the two snapshots.
//
// Phase 1 walks the local snapshot and propagates creations, newer versions and
// tie conflicts to the remote. Phase 2 walks the remote snapshot and propagates
// creations and strictly newer versions to the local store. Both phases decide
// from the snapshots as given, so no record is written twice in one pass.
// Tombstones without a counterpart are never copied.
func BuildPlan[R Record](local, remote []R) *Plan[R] {
	plan := &Plan[R]{}

	localIdx, skipped := index(SideLocal, local)
	plan.Skipped = append(plan.Skipped, skipped...)
	remoteIdx, skipped := index(SideRemote, remote)
	plan.Skipped = append(plan.Skipped, skipped...)

	// Phase 1: local -> remote
	visited := make(map[string]struct{}, len(localIdx))
	for _, l := range local {
		key := l.Key()
		if !firstVisit(visited, key) {
			continue
		}
		l = localIdx[key]

		r, ok := remoteIdx[key]
		if !ok {
			if !l.Deleted() {
				plan.add(DirectionToRemote, ChangeCreated, l)
			}
			continue
		}

		switch l.Modified().Compare(r.Modified()) {
		case 1:
			plan.add(DirectionToRemote, changeKind(l, r), l)
		case 0:
			if res := Resolve(l, r); res.Conflict {
				plan.add(directionTo(otherSide(res.Winner)), ChangeConflict, res.Record)
			}
		}
	}

	// Phase 2: remote -> local
	visited = make(map[string]struct{}, len(remoteIdx))
	for _, r := range remote {
		key := r.Key()
		if !firstVisit(visited, key) {
			continue
		}
		r = remoteIdx[key]

		l, ok := localIdx[key]
		if !ok {
			if !r.Deleted() {
				plan.add(DirectionToLocal, ChangeCreated, r)
			}
			continue
		}

		if r.Modified().After(l.Modified()) {
			plan.add(DirectionToLocal, changeKind(r, l), r)
		}
	}

	return plan
}

// Apply executes the plan in order. It stops at the first failing write and
// returns the error; writes already done are kept and counted in report.
func Apply[R Record](ctx context.Context, plan *Plan[R], local, remote Endpoint[R], report *Report) error {
	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sync aborted: %w", err)
		}

		target := remote
		if action.Direction == DirectionToLocal {
			target = local
		}

		if err := target.Apply(ctx, action.Record); err != nil {
			return fmt.Errorf("%w: writing %s to %s: %w", ErrStoreUnavailable, action.Key, action.Direction.Target(), err)
		}
		report.Record(action.Direction, action.Kind, action.Key, action.Label)
	}
	return nil
}

func (p *Plan[R]) add(dir Direction, kind ChangeKind, rec R) {
	p.Actions = append(p.Actions, Action[R]{
		Direction: dir,
		Kind:      kind,
		Key:       rec.Key(),
		Label:     rec.Label(),
		Record:    rec,
	})
}

// index maps records by key. The first occurrence of a key wins; records without
// a key and later duplicates are reported as skipped.
func index[R Record](side Side, records []R) (map[string]R, []Skip) {
	idx := make(map[string]R, len(records))
	var skipped []Skip
	for _, rec := range records {
		key := rec.Key()
		if key == "" {
			skipped = append(skipped, Skip{Side: side, Label: rec.Label(), Reason: "missing id"})
			continue
		}
		if _, dup := idx[key]; dup {
			skipped = append(skipped, Skip{Side: side, Key: key, Label: rec.Label(), Reason: "duplicate id"})
			continue
		}
		idx[key] = rec
	}
	return idx, skipped
}

func firstVisit(visited map[string]struct{}, key string) bool {
	if key == "" {
		return false
	}
	if _, ok := visited[key]; ok {
		return false
	}
	visited[key] = struct{}{}
	return true
}

// changeKind classifies the propagation of winner over loser.
func changeKind[R Record](winner, loser R) ChangeKind {
	if winner.Deleted() && !loser.Deleted() {
		return ChangeDeleted
	}
	return ChangeUpdated
}

func otherSide(s Side) Side {
	if s == SideLocal {
		return SideRemote
	}
	return SideLocal
}
