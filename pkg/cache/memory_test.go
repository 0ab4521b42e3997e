package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var out []string
	assert.ErrorIs(t, m.Get(ctx, "k", &out), ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "k", []string{"A1", "A2"}, time.Minute))
	require.NoError(t, m.Get(ctx, "k", &out))
	assert.Equal(t, []string{"A1", "A2"}, out)
	assert.True(t, m.Exists(ctx, "k"))

	require.NoError(t, m.Delete(ctx, "k"))
	assert.False(t, m.Exists(ctx, "k"))
}

func TestMemory_SetNX(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ok, err := m.SetNX(ctx, "evt", "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.SetNX(ctx, "evt", "1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", 1, 30*time.Second))
	assert.True(t, m.Exists(ctx, "k"))

	now = now.Add(30 * time.Second)
	assert.False(t, m.Exists(ctx, "k"))

	ok, err := m.SetNX(ctx, "k", 2, 0)
	require.NoError(t, err)
	assert.True(t, ok)
}
