package reconcile

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type item struct {
	id      string
	name    string
	estado  string
	deleted bool
	at      time.Time
}

func (i *item) Key() string         { return i.id }
func (i *item) Modified() time.Time { return i.at }
func (i *item) Deleted() bool       { return i.deleted }
func (i *item) Label() string       { return i.name }
func (i *item) Fingerprint() string {
	d := "false"
	if i.deleted {
		d = "true"
	}
	return i.id + "|" + i.name + "|" + i.estado + "|" + d
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

// memStore is an in-memory endpoint recording every write.
type memStore struct {
	mu        sync.Mutex
	items     map[string]item
	writes    []string
	failOn    string
	snapErr   error
	snapshots int
}

func newMemStore(items ...*item) *memStore {
	m := &memStore{items: map[string]item{}}
	for _, it := range items {
		m.items[it.id] = *it
	}
	return m
}

func (m *memStore) Snapshot(ctx context.Context) ([]*item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots++
	if m.snapErr != nil {
		return nil, m.snapErr
	}
	out := make([]*item, 0, len(m.items))
	for _, it := range m.items {
		cp := it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

func (m *memStore) Apply(ctx context.Context, rec *item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.id == m.failOn {
		return errors.New("connection reset")
	}
	m.items[rec.id] = *rec
	m.writes = append(m.writes, rec.id)
	return nil
}

func (m *memStore) get(id string) (item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	return it, ok
}
