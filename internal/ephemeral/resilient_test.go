package ephemeral

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackendDown = errors.New("backend down")

// flakyStore wraps a Memory and fails every call while down is set.
type flakyStore struct {
	*Memory
	down bool
}

func (f *flakyStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.down {
		return errBackendDown
	}
	return f.Memory.Put(ctx, key, value, ttl)
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.down {
		return "", false, errBackendDown
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	if f.down {
		return errBackendDown
	}
	return f.Memory.Delete(ctx, key)
}

func newTestResilient(t *testing.T) (*Resilient, *flakyStore, *flakyStore, *Metrics) {
	t.Helper()
	primary := &flakyStore{Memory: NewMemory(nil)}
	fallback := &flakyStore{Memory: NewMemory(nil)}
	metrics := NewMetrics(prometheus.NewRegistry())
	s := NewResilient(nil, metrics,
		Backend{Name: "redis", Store: primary},
		Backend{Name: "memory", Store: fallback},
	)
	return s, primary, fallback, metrics
}

func TestResilientWritesPrimaryOnly(t *testing.T) {
	s, primary, fallback, _ := newTestResilient(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", "v", time.Minute))
	assert.Equal(t, 1, primary.Len())
	assert.Equal(t, 0, fallback.Len())
}

func TestResilientPutFallsBack(t *testing.T) {
	s, primary, fallback, metrics := newTestResilient(t)
	ctx := context.Background()
	primary.down = true

	require.NoError(t, s.Put(ctx, "k", "v", time.Minute))
	assert.Equal(t, 1, fallback.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.fallbacks.WithLabelValues("put", "redis", "error")))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestResilientReadsFallbackAfterPrimaryRecovers(t *testing.T) {
	s, primary, _, metrics := newTestResilient(t)
	ctx := context.Background()

	primary.down = true
	require.NoError(t, s.Put(ctx, "k", "v", time.Minute))
	primary.down = false

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.fallbacks.WithLabelValues("get", "redis", "miss")))
}

func TestResilientPrimaryWinsWhenBothPresent(t *testing.T) {
	s, primary, fallback, _ := newTestResilient(t)
	ctx := context.Background()

	require.NoError(t, fallback.Memory.Put(ctx, "k", "stale", time.Minute))
	require.NoError(t, primary.Memory.Put(ctx, "k", "fresh", time.Minute))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fresh", v)
}

func TestResilientLastErrorPropagates(t *testing.T) {
	s, primary, fallback, _ := newTestResilient(t)
	ctx := context.Background()
	primary.down = true
	fallback.down = true

	assert.ErrorIs(t, s.Put(ctx, "k", "v", time.Minute), errBackendDown)
	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, errBackendDown)
	assert.ErrorIs(t, s.Delete(ctx, "k"), errBackendDown)
}

func TestResilientMissEverywhere(t *testing.T) {
	s, _, _, _ := newTestResilient(t)

	_, ok, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResilientDeleteFallsBack(t *testing.T) {
	s, primary, fallback, _ := newTestResilient(t)
	ctx := context.Background()

	require.NoError(t, fallback.Memory.Put(ctx, "k", "v", time.Minute))
	primary.down = true
	require.NoError(t, s.Delete(ctx, "k"))
	assert.Equal(t, 0, fallback.Len())
}

func TestNewResilientRequiresBackend(t *testing.T) {
	assert.Panics(t, func() { NewResilient(nil, nil) })
}

func TestResilientPurgeRemovesFromEveryBackend(t *testing.T) {
	s, primary, fallback, _ := newTestResilient(t)
	ctx := context.Background()
	require.NoError(t, primary.Memory.Put(ctx, "k", "p", time.Minute))
	require.NoError(t, fallback.Memory.Put(ctx, "k", "f", time.Minute))

	require.NoError(t, s.Purge(ctx, "k"))
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// one backend down is tolerated, all down is not
	primary.down = true
	require.NoError(t, s.Purge(ctx, "k"))
	fallback.down = true
	assert.ErrorIs(t, s.Purge(ctx, "k"), errBackendDown)
}

func TestCodeIssuedDuringOutageIsSingleUseAfterRecovery(t *testing.T) {
	s, primary, _, _ := newTestResilient(t)
	codes := NewVerificationCodes(s, "123456")
	ctx := context.Background()

	primary.down = true
	code, err := codes.IssueCode(ctx, "+15550100", "SMS", 6, time.Minute)
	require.NoError(t, err)
	primary.down = false

	first, err := codes.Verify(ctx, "+15550100", "SMS", code)
	require.NoError(t, err)
	second, err := codes.Verify(ctx, "+15550100", "SMS", code)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)
}

func TestStateTokenSavedDuringOutageIsConsumedOnce(t *testing.T) {
	s, primary, _, _ := newTestResilient(t)
	states := NewStateTokens(s)
	ctx := context.Background()

	primary.down = true
	require.NoError(t, states.Save(ctx, "oidc", "tok", time.Minute))
	primary.down = false

	first, err := states.Consume(ctx, "oidc", "tok")
	require.NoError(t, err)
	second, err := states.Consume(ctx, "oidc", "tok")
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)
}
