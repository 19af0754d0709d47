package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "missing")
			require.True(t, errors.Is(err, ErrNotFound), "got %v", err)
		})
	}
}

func TestStore_SetGetOverwriteDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "k", []byte(`{"a":1}`)))
			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, `{"a":1}`, string(got))

			require.NoError(t, s.Set(ctx, "k", []byte(`{"a":2}`)))
			got, err = s.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, `{"a":2}`, string(got))

			require.NoError(t, s.Delete(ctx, "k"))
			_, err = s.Get(ctx, "k")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Delete(ctx, "k"))
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenSQLite(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "doc", []byte("hello")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "doc")
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'z'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
}
