package runtimeconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TradingApplication/catalyst-trading-system/internal/store"
)

func TestGetReturnsFallbackWhenKeyNeverSet(t *testing.T) {
	s := New(store.NewMemory())
	v, err := s.Get(context.Background(), "min_catalyst_score", "30")
	require.NoError(t, err)
	assert.Equal(t, "30", v)
}

func TestSetThenGetObservesWrittenValueImmediately(t *testing.T) {
	s := New(store.NewMemory())
	require.NoError(t, s.Set(context.Background(), "topK", "8", "operator@example.com"))

	v, err := s.Get(context.Background(), "topK", "5")
	require.NoError(t, err)
	assert.Equal(t, "8", v, "a write must invalidate the cache so the new value is visible without waiting out the TTL")
}

func TestGetFloatParsesStoredValue(t *testing.T) {
	s := New(store.NewMemory())
	require.NoError(t, s.Set(context.Background(), "min_catalyst_score", "42.5", "operator@example.com"))

	assert.InDelta(t, 42.5, s.GetFloat(context.Background(), "min_catalyst_score", 30.0), 0.0001)
}

func TestGetFloatFallsBackOnMalformedStoredValue(t *testing.T) {
	port := store.NewMemory()
	require.NoError(t, port.WriteConfig(context.Background(), "min_catalyst_score", "not-a-number", "operator@example.com"))

	s := New(port)
	assert.Equal(t, 30.0, s.GetFloat(context.Background(), "min_catalyst_score", 30.0))
}

func TestGetIntParsesStoredValue(t *testing.T) {
	s := New(store.NewMemory())
	require.NoError(t, s.Set(context.Background(), "top_k", "12", "operator@example.com"))
	assert.Equal(t, 12, s.GetInt(context.Background(), "top_k", 5))
}

func TestCachedReadDoesNotHitPortAgainWithinTTL(t *testing.T) {
	port := &countingPort{Memory: store.NewMemory()}
	s := New(port)

	_, err := s.Get(context.Background(), "min_catalyst_score", "30")
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "min_catalyst_score", "30")
	require.NoError(t, err)

	assert.Equal(t, 1, port.reads, "the second Get within the cache TTL must not call ReadConfig again")
}

// countingPort wraps store.Memory to count ReadConfig calls, isolating the
// cache behavior from the rest of the Port surface.
type countingPort struct {
	*store.Memory
	reads int
}

func (p *countingPort) ReadConfig(ctx context.Context, key string) (string, bool, error) {
	p.reads++
	return p.Memory.ReadConfig(ctx, key)
}
