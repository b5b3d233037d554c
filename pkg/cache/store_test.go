package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "k", payload{ID: 7, Name: "Bloodborne"}, 0))

	var got payload
	hit, err := s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload{ID: 7, Name: "Bloodborne"}, got)
}

func TestMemoryStoreMissAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var got payload
	hit, err := s.Get(ctx, "absent", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, s.Set(ctx, "k", 1, 0))
	require.NoError(t, s.Del(ctx, "k"))
	hit, _ = s.Get(ctx, "k", &got)
	assert.False(t, hit)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))

	var v string
	hit, _ := s.Get(ctx, "k", &v)
	assert.True(t, hit)

	now = now.Add(2 * time.Minute)
	hit, _ = s.Get(ctx, "k", &v)
	assert.False(t, hit)
}

func TestMemoryStoreValuesAreDecodedAsJSON(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "k", map[string]any{"qty": 3}, 0))

	var got map[string]any
	_, err := s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.Equal(t, float64(3), got["qty"])
}

func TestDefaultStoreHelpers(t *testing.T) {
	ctx := context.Background()
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	SetDefault(NewMemoryStore())
	require.NoError(t, Set(ctx, "genres", []string{"RPG"}, time.Minute))

	var got []string
	hit, err := Get(ctx, "genres", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"RPG"}, got)

	require.NoError(t, Forget(ctx, "genres"))
	hit, _ = Get(ctx, "genres", &got)
	assert.False(t, hit)
}
