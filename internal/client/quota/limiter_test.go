package quota

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	m map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	return s.m[key], nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte) error {
	s.m[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	delete(s.m, key)
	return nil
}

func (s *memStore) Clear(_ context.Context) error {
	s.m = make(map[string][]byte)
	return nil
}

func TestCountMissingIsZero(t *testing.T) {
	l := New(newMemStore())
	assert.Equal(t, 0, l.Count(context.Background()))
}

func TestCountCorruptIsZero(t *testing.T) {
	kv := newMemStore()
	kv.m[Key] = []byte("not a number")

	l := New(kv)
	assert.Equal(t, 0, l.Count(context.Background()))
}

func TestIncrementPersists(t *testing.T) {
	kv := newMemStore()
	l := New(kv)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		n, err := l.Increment(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	// A fresh limiter over the same store sees the persisted value.
	assert.Equal(t, 3, New(kv).Count(ctx))
}

func TestExceeded(t *testing.T) {
	l := New(newMemStore())

	assert.False(t, l.Exceeded(DefaultLimit))
	assert.True(t, l.Exceeded(DefaultLimit+1))
}

func TestReset(t *testing.T) {
	l := New(newMemStore())
	ctx := context.Background()

	_, err := l.Increment(ctx)
	require.NoError(t, err)

	require.NoError(t, l.Reset(ctx))
	assert.Equal(t, 0, l.Count(ctx))
}
