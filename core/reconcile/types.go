package reconcile

// Side identifies one of the two stores.
type Side string

const (
	SideNone   Side = "none"
	SideLocal  Side = "local"
	SideRemote Side = "remote"
)

// Direction is the flow of a planned write.
type Direction string

const (
	// DirectionToRemote writes a local record into the remote store.
	DirectionToRemote Direction = "local_to_remote"
	// DirectionToLocal writes a remote record into the local store.
	DirectionToLocal Direction = "remote_to_local"
)

// Target returns the side written by the direction.
func (d Direction) Target() Side {
	if d == DirectionToLocal {
		return SideLocal
	}
	return SideRemote
}

// Arrow renders the direction for change logs.
func (d Direction) Arrow() string {
	if d == DirectionToLocal {
		return "REMOTE -> LOCAL"
	}
	return "LOCAL -> REMOTE"
}

func directionTo(target Side) Direction {
	if target == SideLocal {
		return DirectionToLocal
	}
	return DirectionToRemote
}

// ChangeKind classifies a planned write for the report counters.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeConflict ChangeKind = "conflict"
)

// Action is a single planned write.
type Action[R Record] struct {
	// Direction is where the record is written to.
	Direction Direction `json:"direction"`

	// Kind is the counter the action contributes to once applied.
	Kind ChangeKind `json:"kind"`

	// Key is the record identity.
	Key string `json:"key"`

	// Label is the human readable record name.
	Label string `json:"label"`

	// Record is the version to write.
	Record R `json:"-"`
}

// Skip describes a snapshot entry the engine ignored.
type Skip struct {
	Side   Side   `json:"side"`
	Key    string `json:"key,omitempty"`
	Label  string `json:"label,omitempty"`
	Reason string `json:"reason"`
}

// Plan is the ordered list of writes of one pass. Phase 1 actions come first.
type Plan[R Record] struct {
	Actions []Action[R] `json:"actions"`
	Skipped []Skip      `json:"skipped"`
}

// Options controls a reconciliation pass.
type Options struct {
	// DryRun computes and reports the plan without writing anything.
	DryRun bool
}
