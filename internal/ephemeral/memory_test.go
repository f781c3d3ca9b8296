package ephemeral

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemory() (*Memory, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory(nil)
	m.now = clock.now
	return m, clock
}

func TestMemoryPutGet(t *testing.T) {
	m, _ := newTestMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", "v", time.Minute))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok, err = m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryExpiryRemovesEntry(t *testing.T) {
	m, clock := newTestMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", "v", time.Minute))
	clock.advance(time.Minute)

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())

	// an expired key does not come back once the clock is wound back
	clock.advance(-time.Hour)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryPutOverwritesAndRefreshesTTL(t *testing.T) {
	m, clock := newTestMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", "a", time.Minute))
	clock.advance(50 * time.Second)
	require.NoError(t, m.Put(ctx, "k", "b", time.Minute))
	clock.advance(50 * time.Second)

	v, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestMemoryRejectsNonPositiveTTL(t *testing.T) {
	m, _ := newTestMemory()
	assert.ErrorIs(t, m.Put(context.Background(), "k", "v", 0), ErrInvalidTTL)
}

func TestMemoryDelete(t *testing.T) {
	m, _ := newTestMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", "v", time.Minute))
	require.NoError(t, m.Delete(ctx, "k"))
	require.NoError(t, m.Delete(ctx, "k"))

	_, ok, _ := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemorySweep(t *testing.T) {
	m, clock := newTestMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "short", "v", time.Second))
	require.NoError(t, m.Put(ctx, "long", "v", time.Hour))
	clock.advance(time.Minute)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
	_, ok, _ := m.Get(ctx, "long")
	assert.True(t, ok)
}
