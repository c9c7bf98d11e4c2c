// Package retry provides exponential backoff with jitter and a small helper to
// retry whole operations. The sync scheduler and the sync command use it to
// repeat failed synchronization passes.
package retry
