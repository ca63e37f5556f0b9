package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/jobkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

var errDisk = errors.New("disk I/O error")

func openStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return openStoreAt(t, filepath.Join(t.TempDir(), "jobkeeper.db"))
}

func openStoreAt(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// faultyStore wraps a Store and fails the operations selected per key.
type faultyStore struct {
	store.Store

	mu        sync.Mutex
	failGet   map[string]bool
	failSet   map[string]bool
	failMany  bool
	failDel   bool
	setCalls  map[string]int
	manyCalls int
}

func newFaultyStore(inner store.Store) *faultyStore {
	return &faultyStore{
		Store:    inner,
		failGet:  map[string]bool{},
		failSet:  map[string]bool{},
		setCalls: map[string]int{},
	}
}

func (f *faultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failGet[key]
	f.mu.Unlock()
	if fail {
		return nil, errDisk
	}
	return f.Store.Get(ctx, key)
}

func (f *faultyStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.setCalls[key]++
	fail := f.failSet[key]
	f.mu.Unlock()
	if fail {
		return errDisk
	}
	return f.Store.Set(ctx, key, value)
}

func (f *faultyStore) SetMany(ctx context.Context, values map[string][]byte) error {
	f.mu.Lock()
	f.manyCalls++
	fail := f.failMany
	f.mu.Unlock()
	if fail {
		return errDisk
	}
	return f.Store.SetMany(ctx, values)
}

func (f *faultyStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failDel
	f.mu.Unlock()
	if fail {
		return errDisk
	}
	return f.Store.Delete(ctx, key)
}

func (f *faultyStore) sets(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls[key]
}

func newTestLedger(t *testing.T, s store.Store) (*Ledger, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	l := NewLedger(s, logging.Nop(), m)
	require.NoError(t, l.Load(context.Background()))
	return l, m
}

func job(id, salary string) models.JobSnapshot {
	return models.JobSnapshot{
		ID:          id,
		Title:       "Title " + id,
		Company:     "Company " + id,
		Salary:      salary,
		Description: "About " + id,
		Tags:        []string{"go"},
	}
}
