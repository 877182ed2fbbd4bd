package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendFactory func(t *testing.T) KV

func backends() map[string]backendFactory {
	return map[string]backendFactory{
		"memory": func(t *testing.T) KV {
			return NewMemory()
		},
		"sqlite": func(t *testing.T) KV {
			t.Helper()
			db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return db
		},
		"badger": func(t *testing.T) KV {
			t.Helper()
			db, err := OpenBadger(BadgerConfig{InMemory: true})
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return db
		},
	}
}

func TestKV_SetGet(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			ctx := context.Background()

			require.NoError(t, kv.Set(ctx, "vpn_stats_today", json.RawMessage(`{"up":1,"down":2}`)))
			got, err := kv.Get(ctx, "vpn_stats_today")
			require.NoError(t, err)
			assert.JSONEq(t, `{"up":1,"down":2}`, string(got))
		})
	}
}

func TestKV_GetMissing(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			_, err := kv.Get(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestKV_SetOverwrites(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			ctx := context.Background()

			require.NoError(t, kv.Set(ctx, "k", json.RawMessage(`"v1"`)))
			require.NoError(t, kv.Set(ctx, "k", json.RawMessage(`"v2"`)))
			got, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `"v2"`, string(got))

			all, err := kv.Scan(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestKV_SetRejectsInvalidJSON(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			err := kv.Set(context.Background(), "k", json.RawMessage(`{not json`))
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestKV_ScanPrefixSorted(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			ctx := context.Background()
			for _, k := range []string{"imsi_b", "network_x", "imsi_a", "imsi", "other"} {
				require.NoError(t, kv.Set(ctx, k, json.RawMessage(`1`)))
			}

			got, err := kv.Scan(ctx, "imsi_")
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "imsi_a", got[0].Key)
			assert.Equal(t, "imsi_b", got[1].Key)

			all, err := kv.Scan(ctx, "")
			require.NoError(t, err)
			keys := make([]string, len(all))
			for i, r := range all {
				keys[i] = r.Key
			}
			assert.Equal(t, []string{"imsi", "imsi_a", "imsi_b", "network_x", "other"}, keys)
		})
	}
}

func TestKV_DeleteCountsExisting(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			ctx := context.Background()
			require.NoError(t, kv.Set(ctx, "a", json.RawMessage(`1`)))
			require.NoError(t, kv.Set(ctx, "b", json.RawMessage(`2`)))

			n, err := kv.Delete(ctx, []string{"a", "b", "missing"})
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			_, err = kv.Get(ctx, "a")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLite_DeleteManyChunks(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "chunks.db"))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	keys := make([]string, 0, deleteChunk+25)
	for i := 0; i < deleteChunk+25; i++ {
		k := "network_" + strconv.Itoa(i)
		keys = append(keys, k)
		require.NoError(t, db.Set(ctx, k, json.RawMessage(`true`)))
	}

	n, err := db.Delete(ctx, keys)
	require.NoError(t, err)
	assert.Equal(t, len(keys), n)
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Set(context.Background(), "user_pref_theme", json.RawMessage(`"dark"`)))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Get(context.Background(), "user_pref_theme")
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(got))
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	in := json.RawMessage(`"abc"`)
	require.NoError(t, m.Set(ctx, "k", in))
	in[1] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(got))
	got[1] = 'q'

	again, _ := m.Get(ctx, "k")
	assert.Equal(t, `"abc"`, string(again))
}

// failingKV fails every call with err.
type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (json.RawMessage, error) { return nil, f.err }
func (f failingKV) Set(context.Context, string, json.RawMessage) error { return f.err }
func (f failingKV) Delete(context.Context, []string) (int, error) { return 0, f.err }
func (f failingKV) Scan(context.Context, string) ([]Record, error) { return nil, f.err }
func (f failingKV) Close() error { return nil }

func TestAdapter_WrapsBackendFailures(t *testing.T) {
	a := NewAdapter(failingKV{err: errors.New("disk on fire")}, time.Second)
	ctx := context.Background()

	_, err := a.ScanAll(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)

	err = a.Set(ctx, "k", json.RawMessage(`1`))
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = a.Delete(ctx, []string{"k"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAdapter_PreservesNotFound(t *testing.T) {
	a := NewAdapter(NewMemory(), time.Second)
	_, err := a.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

// slowKV blocks until the context is done.
type slowKV struct{ *Memory }

func (s *slowKV) Scan(ctx context.Context, _ string) ([]Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAdapter_TimeoutIsUnavailable(t *testing.T) {
	a := NewAdapter(&slowKV{Memory: NewMemory()}, 20*time.Millisecond)
	_, err := a.ScanAll(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAdapter_EmptyDeleteIsNoop(t *testing.T) {
	a := NewAdapter(failingKV{err: errors.New("boom")}, time.Second)
	n, err := a.Delete(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_Backends(t *testing.T) {
	for _, backend := range []string{BackendSQLite, BackendBadger, BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			a, err := Open(backend, t.TempDir(), time.Second, nil)
			require.NoError(t, err)
			defer a.Close()
			require.NoError(t, a.Set(context.Background(), "system_config_mode", json.RawMessage(`"demo"`)))
		})
	}

	_, err := Open("etcd", t.TempDir(), time.Second, nil)
	assert.Error(t, err)
}
