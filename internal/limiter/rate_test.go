package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRateLimiter(2)
	r.now = func() time.Time { return now }

	require.True(t, r.Allow())
	require.True(t, r.Allow())
	require.False(t, r.Allow())

	now = now.Add(1100 * time.Millisecond)
	require.True(t, r.Allow())
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		require.True(t, r.Allow())
	}
}

func TestRateLimiter_WaitCanceled(t *testing.T) {
	r := NewRateLimiter(1)
	require.NoError(t, r.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}
