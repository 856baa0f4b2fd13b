package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseBackend runs the behaviour every backend must share.
func exerciseBackend(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "projects")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "projects", []byte(`[{"id":1}]`)))
	got, err := s.Get(ctx, "projects")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(got))

	require.NoError(t, s.Set(ctx, "projects", []byte(`[]`)))
	got, err = s.Get(ctx, "projects")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, s.Set(ctx, "projects.next_id", []byte("3")))
	require.NoError(t, s.Remove(ctx, "projects"))
	require.NoError(t, s.Remove(ctx, "projects"), "remove must be idempotent")
	_, err = s.Get(ctx, "projects")
	require.ErrorIs(t, err, ErrNotFound)

	counter, err := s.Get(ctx, "projects.next_id")
	require.NoError(t, err)
	assert.Equal(t, "3", string(counter))

	assert.Error(t, s.Set(ctx, "../escape", []byte("x")))
	require.NoError(t, s.Close())
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemory())
}

func TestMemoryFailWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "projects", []byte("[]")))
	m.FailWrites(true)
	require.ErrorIs(t, m.Set(ctx, "projects", []byte(`[{"id":1}]`)), ErrWriteRejected)
	got, err := m.Get(ctx, "projects")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
	assert.Equal(t, 1, m.Writes())
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'z'
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestDirBackend(t *testing.T) {
	d, err := NewDir(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	exerciseBackend(t, d)
}

func TestDirBackendPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	first, err := NewDir(root)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "projects", []byte(`[]`)))

	second, err := NewDir(root)
	require.NoError(t, err)
	got, err := second.Get(ctx, "projects")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
	assert.FileExists(t, filepath.Join(root, "projects.json"))

	matches, err := filepath.Glob(filepath.Join(root, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files must not be left behind")
}

func TestSQLiteBackend(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err)
	exerciseBackend(t, s)
}

func TestSQLitePersistsAcrossConnections(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "portal.db")
	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "projects", []byte(`[{"id":4}]`)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()
	got, err := second.Get(ctx, "projects")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":4}]`, string(got))
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedis(client, "pmportal:")
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "probe", []byte("1")))
	assert.True(t, mr.Exists("pmportal:probe"), "keys must carry the prefix")
	require.NoError(t, s.Remove(ctx, "probe"))
	exerciseBackend(t, s)
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cases := []struct {
		opts Options
		want any
	}{
		{Options{Driver: DriverMemory}, &Memory{}},
		{Options{Driver: "", Path: t.TempDir()}, &Dir{}},
		{Options{Driver: "SQLite", Path: filepath.Join(t.TempDir(), "p.db")}, &SQLite{}},
		{Options{Driver: DriverRedis, RedisAddr: mr.Addr(), RedisPrefix: "x:"}, &Redis{}},
	}
	for _, tc := range cases {
		s, err := Open(ctx, tc.opts)
		require.NoError(t, err, tc.opts.Driver)
		assert.IsType(t, tc.want, s)
		require.NoError(t, s.Close())
	}

	_, err := Open(ctx, Options{Driver: "etcd"})
	assert.Error(t, err)
}
