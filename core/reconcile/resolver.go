package reconcile

// Resolution is the outcome of comparing two versions of the same record.
type Resolution[R Record] struct {
	// Winner is the side whose version must be propagated, or SideNone.
	Winner Side
	// Record is the winning version. Zero when Winner is SideNone.
	Record R
	// Conflict is set when timestamps tie but contents differ.
	Conflict bool
}

// Resolve decides which version of a record wins.
//
// A strictly later Modified time wins outright and is not a conflict. On equal
// times the fingerprints are compared: equal means nothing to do, different is
// a real conflict that local wins.
func Resolve[R Record](local, remote R) Resolution[R] {
	switch local.Modified().Compare(remote.Modified()) {
	case 1:
		return Resolution[R]{Winner: SideLocal, Record: local}
	case -1:
		return Resolution[R]{Winner: SideRemote, Record: remote}
	}

	if local.Fingerprint() == remote.Fingerprint() {
		return Resolution[R]{Winner: SideNone}
	}
	return Resolution[R]{Winner: SideLocal, Record: local, Conflict: true}
}
