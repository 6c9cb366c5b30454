package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoReturnsNilOnFirstSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilMaxRetriesExhausted(t *testing.T) {
	policy := Policy{BaseDelay: time.Millisecond, Factor: 2, MaxRetries: 2}

	calls := 0
	wantErr := errors.New("transient failure")
	err := policy.Do(context.Background(), func() error {
		calls++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls, "one initial attempt plus two retries")
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	policy := Policy{BaseDelay: time.Millisecond, Factor: 2, MaxRetries: 3}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsEarlyWhenContextCancelled(t *testing.T) {
	policy := Policy{BaseDelay: 50 * time.Millisecond, Factor: 2, MaxRetries: 10}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := policy.Do(ctx, func() error {
		calls++
		if calls == 1 {
			cancel()
		}
		return errors.New("still failing")
	})

	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 2, "cancellation must stop retries quickly, not run to MaxRetries")
}
