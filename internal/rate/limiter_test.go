package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_BlocksOverLimit(t *testing.T) {
	limiter := NewMemoryLimiter(2, time.Minute)
	ctx := context.Background()

	first, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, int64(1), first.Remaining)

	second, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, int64(0), second.Remaining)

	third, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, third.Allowed)
	assert.Greater(t, third.RetryAfter, time.Duration(0))
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	blocked, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, blocked.Allowed)

	other, err := limiter.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	now := time.Now()
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	blocked, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	now = now.Add(61 * time.Second)
	again, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, again.Allowed, "hits outside the window must be pruned")
}
