package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Salary int64  `json:"salary"`
	Name   string `json:"name"`
}

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	list, err := s.List(ctx, "events")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.Append(ctx, "events", "a"))
	require.NoError(t, s.Append(ctx, "events", "b"))
	require.NoError(t, s.Append(ctx, "other", "x"))
	list, err = s.List(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, list)

	var p profile
	assert.ErrorIs(t, GetJSON(ctx, s, "profile", &p), ErrNotFound)
	require.NoError(t, SetJSON(ctx, s, "profile", profile{Salary: 500_000, Name: "Айгерим"}))
	require.NoError(t, GetJSON(ctx, s, "profile", &p))
	assert.Equal(t, profile{Salary: 500_000, Name: "Айгерим"}, p)

	require.NoError(t, AppendJSON(ctx, s, "profiles", profile{Salary: 1}))
	require.NoError(t, s.Append(ctx, "profiles", "{not json"))
	require.NoError(t, AppendJSON(ctx, s, "profiles", profile{Salary: 2}))
	got, skipped, err := ListJSON[profile](ctx, s, "profiles")
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []profile{{Salary: 1}, {Salary: 2}}, got)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStore_ListIsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Append(ctx, "l", "a"))
	list, _ := s.List(ctx, "l")
	list[0] = "changed"
	again, _ := s.List(ctx, "l")
	assert.Equal(t, []string{"a"}, again)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "zaman.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(context.Background()))
	exerciseStore(t, s)

	// Reopening applies no migrations and keeps the data.
	require.NoError(t, s.Close())
	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	s, err := OpenRedis(context.Background(), url, "zaman_test:"+t.Name()+":")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	for _, k := range []string{"k", "events", "other", "profile", "profiles"} {
		s.client.Del(ctx, s.k(k))
	}
	exerciseStore(t, s)
}
