// Package reconcile implements two-way synchronization between two stores that
// hold the same records.
//
// A pass takes one snapshot of each store, builds a plan and applies it:
//
//  1. Local to remote: records missing on the remote are created there, records
//     newer on the local side overwrite the remote, and records with equal
//     timestamps but different content (a real conflict) are resolved in favour
//     of the local version.
//  2. Remote to local: records missing locally are created, and strictly newer
//     remote records overwrite the local ones.
//
// Soft-deleted records (tombstones) travel like any other update but are never
// copied to a store that has no version of them, so deleted records are not
// resurrected. Both phases decide from the initial snapshots; running a second
// pass on unchanged stores writes nothing.
//
// # Components
//
//   - Record and Endpoint: what the engine needs from the stored type and from each store.
//   - Resolve: timestamp-then-fingerprint precedence for a pair of versions.
//   - BuildPlan / Apply: the two-phase decision and its sequential execution.
//   - Engine: snapshot, plan, apply and read back, with dry-run support.
//   - Report: counters and change log of a pass.
//   - Coordinator: collapses concurrent triggers so one pass runs at a time.
//
// # Usage
//
//	engine := reconcile.NewEngine[*Item](localEndpoint, remoteEndpoint)
//	coord := reconcile.NewCoordinator[*Item](engine)
//	result, _, err := coord.Run(ctx, reconcile.Options{})
//	fmt.Println(result.Report.Created, result.Report.ChangeLog())
//
// Write failures abort the pass; writes already performed are kept and the
// error wraps ErrStoreUnavailable. Retrying is up to the caller, which runs a
// whole new pass.
package reconcile
