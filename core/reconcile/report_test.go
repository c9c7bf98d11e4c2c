package reconcile

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	r := NewReport(start)
	assert.False(t, r.HasChanges())

	r.Record(DirectionToRemote, ChangeCreated, "eq_1", "PC-1")
	r.Record(DirectionToRemote, ChangeDeleted, "eq_3", "PC-3")
	r.Record(DirectionToRemote, ChangeConflict, "eq_5", "PC-5")
	r.Record(DirectionToLocal, ChangeUpdated, "eq_7", "PC-7")

	assert.Equal(t, Stats{Created: 1, Updated: 1, Deleted: 1, ConflictsReal: 1}, r.Stats)
	assert.Equal(t, 4, r.Total())
	assert.True(t, r.HasChanges())
	assert.Equal(t, []string{
		"[LOCAL -> REMOTE] created: PC-1 (ID: eq_1)",
		"[LOCAL -> REMOTE] deleted: PC-3 (ID: eq_3)",
		"[CONFLICT] local won: PC-5 (ID: eq_5)",
		"[REMOTE -> LOCAL] updated: PC-7 (ID: eq_7)",
	}, r.ChangeLog())

	r.Finish(start.Add(1500*time.Millisecond), errors.New("boom"))
	assert.Equal(t, int64(1500), r.ElapsedMS)
	assert.Equal(t, "boom", r.Error)
}
