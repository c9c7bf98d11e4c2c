package equipment

import (
	"context"
	"sync"
	"testing"
	"time"

	"equipment-inventory/feature/equipment/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *Store) {
	store := newTestStore(t, "local")
	svc := NewService(store, zap.NewNop())
	return svc, store
}

func input(id string) *models.Equipment {
	e := equipo(id, "PC-9", time.Time{})
	e.CreatedAt = time.Time{}
	return e
}

func TestService_SaveCreates(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	var reasons []string
	svc.OnWrite(func(reason string) { reasons = append(reasons, reason) })

	in := input("")
	in.INE = "  PC-9  "
	in.Especificaciones = []models.Especificacion{{Clave: "RAM", Valor: "8GB"}, {Clave: "", Valor: "x"}}

	id, err := svc.Save(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "eq_1709283600000", id)
	assert.Equal(t, []string{"save"}, reasons)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "PC-9", got.INE)
	assert.Equal(t, now, got.UpdatedAt)
	assert.Equal(t, now, got.CreatedAt)
	assert.Len(t, got.Especificaciones, 1)

	// same millisecond: the generated id is taken
	id2, err := svc.Save(ctx, input(""))
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
	assert.Contains(t, id2, "eq_")
}

func TestService_SaveValidation(t *testing.T) {
	svc, _ := newTestService(t)

	in := input("")
	in.Serie = ""
	in.Tipo = " "

	_, err := svc.Save(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "serie, tipo")
}

func TestService_SaveUpdateIsMonotonic(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	stored := equipo("eq_1", "PC-1", ts(10))
	stored.CreatedAt = ts(1)
	require.NoError(t, store.Save(ctx, stored))

	// clock behind the stored timestamp
	svc.now = func() time.Time { return ts(5) }

	in := input("eq_1")
	in.Estado = "Reparación"
	_, err := svc.Save(ctx, in)
	require.NoError(t, err)

	got, err := store.Get(ctx, "eq_1")
	require.NoError(t, err)
	assert.Equal(t, "Reparación", got.Estado)
	assert.Equal(t, ts(10).Add(time.Microsecond), got.UpdatedAt)
	assert.Equal(t, ts(1), got.CreatedAt)
}

func TestService_SaveWithUnknownID(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	id, err := svc.Save(ctx, input("custom-id"))
	require.NoError(t, err)
	assert.Equal(t, "custom-id", id)

	_, err = store.Get(ctx, "custom-id")
	assert.NoError(t, err)
}

func TestService_DeletedRecords(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	require.NoError(t, store.Save(ctx, equipo("eq_1", "PC-1", ts(1))))

	var reasons []string
	svc.OnWrite(func(reason string) { reasons = append(reasons, reason) })
	svc.now = func() time.Time { return ts(2) }

	ok, err := svc.Delete(ctx, "eq_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"delete"}, reasons)

	_, err = svc.Get(ctx, "eq_1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Save(ctx, input("eq_1"))
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err = svc.Delete(ctx, "eq_1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, reasons, 1)

	list, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_DeleteIsMonotonic(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	require.NoError(t, store.Save(ctx, equipo("eq_1", "PC-1", ts(9))))

	svc.now = func() time.Time { return ts(3) }
	_, err := svc.Delete(ctx, "eq_1")
	require.NoError(t, err)

	got, err := store.Get(ctx, "eq_1")
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(ts(9)))
}

type recordingLocker struct {
	mu     sync.Mutex
	held   bool
	events []string
}

func (l *recordingLocker) Lock() {
	l.mu.Lock()
	l.held = true
	l.events = append(l.events, "lock")
}

func (l *recordingLocker) Unlock() {
	l.events = append(l.events, "unlock")
	l.held = false
	l.mu.Unlock()
}

func TestService_GuardedWrites(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	lock := &recordingLocker{}
	svc.Guard(lock)
	svc.OnWrite(func(reason string) {
		// hooks may start a sync pass, which needs the lock released
		assert.False(t, lock.held)
		lock.events = append(lock.events, reason)
	})

	id, err := svc.Save(ctx, input(""))
	require.NoError(t, err)
	_, err = svc.Delete(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, []string{"lock", "unlock", "save", "lock", "unlock", "delete"}, lock.events)

	// failed writes still release the lock
	_, err = svc.Save(ctx, input(id))
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, lock.held)
	assert.Equal(t, "unlock", lock.events[len(lock.events)-1])
}
