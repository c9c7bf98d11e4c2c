package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"equipment-inventory/core/broker"
	"equipment-inventory/core/database"
	"equipment-inventory/core/reconcile"
	"equipment-inventory/feature/equipment"
	"equipment-inventory/feature/equipment/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event broker.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

func newStore(t *testing.T, name string) *equipment.Store {
	t.Helper()
	store, _ := newStoreDB(t, name)
	return store
}

func newStoreDB(t *testing.T, name string) (*equipment.Store, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store := equipment.NewStore(db, name)
	_, err = store.Migrate(context.Background())
	require.NoError(t, err)
	return store, db
}

func testConfig() Config {
	return Config{Enabled: true, MaxAttempts: 1}
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func rec(id, ine string, updated time.Time) *models.Equipment {
	return &models.Equipment{
		ID: id, INE: ine, NNE: "N", Serie: "S", Tipo: "Laptop", Estado: "Activo",
		Responsable: "Ana", Ubicacion: "Of 1", CreatedAt: updated, UpdatedAt: updated,
	}
}

func seed(t *testing.T, store *equipment.Store, records ...*models.Equipment) {
	t.Helper()
	for _, r := range records {
		require.NoError(t, store.Save(context.Background(), r))
	}
}

func get(t *testing.T, store *equipment.Store, id string) *models.Equipment {
	t.Helper()
	e, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	return e
}

func TestService_Scenarios(t *testing.T) {
	ctx := context.Background()
	local, remote := newStore(t, "local"), newStore(t, "remote")

	created := rec("eq_1", "PC-1", day(2))
	created.Especificaciones = []models.Especificacion{{Clave: "RAM", Valor: "16GB"}}

	newer := rec("eq_2", "PC-2", day(3))
	newer.Responsable = "Marta"
	older := rec("eq_2", "PC-2", day(1))
	older.Responsable = "Luis"

	tomb := rec("eq_3", "PC-3", day(5))
	tomb.IsDeleted = true

	seed(t, local, created, newer, tomb)
	seed(t, remote, older, rec("eq_3", "PC-3", day(1)))

	svc := NewService(local, remote, testConfig(), nil, nil, zap.NewNop())
	out, err := svc.Run(ctx, reconcile.Options{})
	require.NoError(t, err)

	assert.Equal(t, reconcile.Stats{Created: 1, Updated: 1, Deleted: 1}, out.Stats)
	assert.True(t, out.InSync)
	assert.Equal(t, 3, out.LocalTotal)
	assert.Equal(t, 3, out.RemoteTotal)
	assert.Len(t, out.ChangeLog, 3)

	r1 := get(t, remote, "eq_1")
	assert.Equal(t, created.Fingerprint(), r1.Fingerprint())
	assert.Equal(t, day(2), r1.UpdatedAt)
	assert.Equal(t, []models.Especificacion{{Clave: "RAM", Valor: "16GB"}}, r1.Especificaciones)

	assert.Equal(t, "Marta", get(t, remote, "eq_2").Responsable)
	assert.True(t, get(t, remote, "eq_3").IsDeleted)

	// second pass on unchanged stores writes nothing
	again, err := svc.Run(ctx, reconcile.Options{})
	require.NoError(t, err)
	assert.Equal(t, reconcile.Stats{}, again.Stats)
	assert.True(t, again.InSync)
}

func TestService_NoResurrectionAndConflict(t *testing.T) {
	ctx := context.Background()
	local, remote := newStore(t, "local"), newStore(t, "remote")

	gone := rec("eq_gone", "PC-X", day(2))
	gone.IsDeleted = true
	mine := rec("eq_5", "PC-5", day(4))
	mine.Estado = "Activo"
	theirs := rec("eq_5", "PC-5", day(4))
	theirs.Estado = "Baja"
	remoteOnly := rec("eq_8", "PC-8", day(6))

	seed(t, local, gone, mine)
	seed(t, remote, theirs, remoteOnly)

	svc := NewService(local, remote, testConfig(), nil, nil, zap.NewNop())
	out, err := svc.Run(ctx, reconcile.Options{})
	require.NoError(t, err)

	assert.Equal(t, reconcile.Stats{Created: 1, ConflictsReal: 1}, out.Stats)
	assert.Equal(t, "Activo", get(t, remote, "eq_5").Estado)
	assert.Equal(t, "PC-8", get(t, local, "eq_8").INE)

	_, err = remote.Get(ctx, "eq_gone")
	assert.ErrorIs(t, err, equipment.ErrNotFound)
}

func TestService_DryRun(t *testing.T) {
	ctx := context.Background()
	local, remote := newStore(t, "local"), newStore(t, "remote")
	seed(t, local, rec("eq_1", "PC-1", day(1)))

	pub := new(mockPublisher)
	svc := NewService(local, remote, testConfig(), pub, nil, zap.NewNop())

	out, err := svc.Run(ctx, reconcile.Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, out.DryRun)
	assert.Equal(t, 1, out.Created)

	n, err := remote.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Nil(t, svc.Last())
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestService_PublishesAndCounts(t *testing.T) {
	ctx := context.Background()
	local, remote := newStore(t, "local"), newStore(t, "remote")
	seed(t, local, rec("eq_1", "PC-1", day(1)))

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e broker.Event) bool {
		out, ok := e.Body.(*Outcome)
		return e.Kind == "completed" && ok && out.Created == 1
	})).Return(errors.New("broker down")).Once()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	svc := NewService(local, remote, testConfig(), pub, m, zap.NewNop())

	_, err := svc.Run(ctx, reconcile.Options{})
	require.NoError(t, err, "publish failures do not fail the pass")

	pub.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Changes.WithLabelValues("created", "local_to_remote")))
	assert.Greater(t, testutil.ToFloat64(m.LastSuccess), 0.0)

	last := svc.Last()
	require.NotNil(t, last)
	assert.Equal(t, 1, last.Created)
}

func TestService_RemoteUnavailable(t *testing.T) {
	ctx := context.Background()
	local := newStore(t, "local")
	remote, remoteDB := newStoreDB(t, "remote")
	seed(t, local, rec("eq_1", "PC-1", day(1)))

	sqlDB, err := remoteDB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e broker.Event) bool {
		return e.Kind == "failed"
	})).Return(nil)

	m := NewMetrics(nil)
	cfg := testConfig()
	cfg.MaxAttempts = 2
	svc := NewService(local, remote, cfg, pub, m, zap.NewNop())

	_, err = svc.RunWithRetry(ctx, reconcile.Options{}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrStoreUnavailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("failure")))
	pub.AssertNumberOfCalls(t, "Publish", 1)

	_, err = svc.RunWithRetry(ctx, reconcile.Options{}, 2)
	require.Error(t, err)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Runs.WithLabelValues("failure")))
	pub.AssertNumberOfCalls(t, "Publish", 3)
}

func TestService_Disabled(t *testing.T) {
	ctx := context.Background()
	local := newStore(t, "local")

	svc := NewService(local, nil, testConfig(), nil, nil, zap.NewNop())
	assert.False(t, svc.Enabled())

	_, err := svc.Run(ctx, reconcile.Options{})
	assert.ErrorIs(t, err, ErrSyncDisabled)
	_, err = svc.RunWithRetry(ctx, reconcile.Options{}, 3)
	assert.ErrorIs(t, err, ErrSyncDisabled)
	assert.ErrorIs(t, <-svc.Trigger(ctx, "save"), ErrSyncDisabled)
	assert.Nil(t, svc.Last())

	off := NewService(local, newStore(t, "remote"), Config{Enabled: false}, nil, nil, zap.NewNop())
	assert.False(t, off.Enabled())
}

func TestService_Trigger(t *testing.T) {
	ctx := context.Background()
	local, remote := newStore(t, "local"), newStore(t, "remote")
	seed(t, local, rec("eq_1", "PC-1", day(1)))

	svc := NewService(local, remote, testConfig(), nil, nil, zap.NewNop())

	select {
	case err := <-svc.Trigger(ctx, "save"):
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("triggered sync did not finish")
	}

	assert.Equal(t, "PC-1", get(t, remote, "eq_1").INE)
}

func TestService_WaitForTriggeredPasses(t *testing.T) {
	local, remote := newStore(t, "local"), newStore(t, "remote")
	seed(t, local, rec("eq_1", "PC-1", day(1)))
	svc := NewService(local, remote, testConfig(), nil, nil, zap.NewNop())

	// a write in progress holds back the triggered pass
	lock := svc.WriteLocker()
	require.NotNil(t, lock)
	lock.Lock()
	done := svc.Trigger(context.Background(), "save")

	short, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, svc.Wait(short), context.DeadlineExceeded)

	lock.Unlock()
	ctx, cancelWait := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelWait()
	require.NoError(t, svc.Wait(ctx))
	require.NoError(t, <-done)
	assert.Equal(t, "PC-1", get(t, remote, "eq_1").INE)
}

func TestService_WriteLockerDisabled(t *testing.T) {
	svc := NewService(newStore(t, "local"), nil, testConfig(), nil, nil, zap.NewNop())
	assert.Nil(t, svc.WriteLocker())
	assert.NoError(t, svc.Wait(context.Background()))
}

func TestInSync(t *testing.T) {
	a := rec("a", "A", day(1))
	b := rec("b", "B", day(1))
	changed := rec("b", "B", day(2))

	assert.True(t, InSync(nil, nil))
	assert.True(t, InSync([]*models.Equipment{a, b}, []*models.Equipment{b, a}))
	assert.False(t, InSync([]*models.Equipment{a}, []*models.Equipment{a, b}))
	assert.False(t, InSync([]*models.Equipment{a, b}, []*models.Equipment{a, changed}))
}
