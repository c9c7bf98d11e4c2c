package reconcile

import (
	"fmt"
	"time"
)

// Stats are the counters of one pass.
type Stats struct {
	Created       int `json:"created"`
	Updated       int `json:"updated"`
	Deleted       int `json:"deleted"`
	ConflictsReal int `json:"conflicts_real"`
}

// Total returns the number of writes counted.
func (s Stats) Total() int {
	return s.Created + s.Updated + s.Deleted + s.ConflictsReal
}

// Change is one write performed (or planned, for dry runs).
type Change struct {
	Direction Direction  `json:"direction"`
	Kind      ChangeKind `json:"kind"`
	Key       string     `json:"key"`
	Label     string     `json:"label"`
}

// String renders the change as a change log line.
func (c Change) String() string {
	if c.Kind == ChangeConflict {
		winner := "local"
		if c.Direction == DirectionToLocal {
			winner = "remote"
		}
		return fmt.Sprintf("[CONFLICT] %s won: %s (ID: %s)", winner, c.Label, c.Key)
	}
	return fmt.Sprintf("[%s] %s: %s (ID: %s)", c.Direction.Arrow(), c.Kind, c.Label, c.Key)
}

// Report aggregates the outcome of a pass. It carries no decision logic.
type Report struct {
	Stats
	Changes   []Change  `json:"changes"`
	Skipped   []Skip    `json:"skipped,omitempty"`
	DryRun    bool      `json:"dry_run"`
	StartedAt time.Time `json:"started_at"`
	ElapsedMS int64     `json:"elapsed_ms"`
	// Error is the failure that aborted the pass, if any.
	Error string `json:"error,omitempty"`
}

// NewReport starts an empty report.
func NewReport(startedAt time.Time) *Report {
	return &Report{StartedAt: startedAt, Changes: []Change{}}
}

// Record counts one write.
func (r *Report) Record(dir Direction, kind ChangeKind, key, label string) {
	switch kind {
	case ChangeCreated:
		r.Created++
	case ChangeUpdated:
		r.Updated++
	case ChangeDeleted:
		r.Deleted++
	case ChangeConflict:
		r.ConflictsReal++
	}
	r.Changes = append(r.Changes, Change{Direction: dir, Kind: kind, Key: key, Label: label})
}

// ChangeLog returns the changes as human readable lines, in order.
func (r *Report) ChangeLog() []string {
	lines := make([]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		lines = append(lines, c.String())
	}
	return lines
}

// HasChanges reports whether the pass wrote anything.
func (r *Report) HasChanges() bool {
	return len(r.Changes) > 0
}

// Finish stamps the elapsed time and the error, if any.
func (r *Report) Finish(now time.Time, err error) {
	r.ElapsedMS = now.Sub(r.StartedAt).Milliseconds()
	if err != nil {
		r.Error = err.Error()
	}
}
