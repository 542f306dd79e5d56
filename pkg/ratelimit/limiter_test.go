package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igloader/pkg/config"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour, 5)

	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "token %d should be available", i+1)
	}
	assert.False(t, tb.Allow(), "bucket should be exhausted")

	tb.Reset()
	assert.True(t, tb.Allow(), "reset should refill the bucket")
}

func TestTokenBucketRefill(t *testing.T) {
	tb := NewTokenBucket(100, time.Second, 1)

	require.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	time.Sleep(30 * time.Millisecond)
	assert.True(t, tb.Allow())
}

func TestTokenBucketWaitHonorsContext(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour, 1)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, tb.Wait(ctx))
}

func TestUnlimited(t *testing.T) {
	tb := Unlimited()
	for i := 0; i < 1000; i++ {
		require.True(t, tb.Allow())
	}
	assert.NoError(t, tb.Wait(context.Background()))
}

func TestFromConfig(t *testing.T) {
	tb := FromConfig(config.RateLimitConfig{RequestsPerMinute: 60, BurstSize: 2})

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}
