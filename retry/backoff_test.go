package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff_NonDecreasingWithoutJitter(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
		Multiplier: 2.0,
	}

	prev := time.Duration(0)
	for attempt := 1; attempt <= 8; attempt++ {
		d := eb.NextDelay(attempt)
		assert.GreaterOrEqual(t, d, prev, "delay shrank at attempt %d", attempt)
		prev = d
	}
}

func TestExponentialBackoff_Doubling(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, time.Second, eb.NextDelay(1))
	assert.Equal(t, 2*time.Second, eb.NextDelay(2))
	assert.Equal(t, 4*time.Second, eb.NextDelay(3))
}

func TestExponentialBackoff_CappedAtMax(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, 5*time.Second, eb.NextDelay(10))
}

func TestExponentialBackoff_JitterStaysWithinBounds(t *testing.T) {
	eb := NewExponentialBackoff(time.Second, 60*time.Second)

	for i := 0; i < 100; i++ {
		d := eb.NextDelay(2)
		// Raw delay is 2s; 10% jitter keeps it in [1.8s, 2.2s].
		assert.GreaterOrEqual(t, d, 1800*time.Millisecond)
		assert.LessOrEqual(t, d, 2200*time.Millisecond)
	}
}

func TestExponentialBackoff_ZeroAttempt(t *testing.T) {
	eb := NewExponentialBackoff(time.Second, 60*time.Second)
	assert.Equal(t, time.Duration(0), eb.NextDelay(0))
}

func TestConstantBackoff(t *testing.T) {
	cb := &ConstantBackoff{Delay: 3 * time.Second}
	assert.Equal(t, 3*time.Second, cb.NextDelay(1))
	assert.Equal(t, 3*time.Second, cb.NextDelay(7))
}

func TestWait_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Wait(ctx, time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWait_NonPositiveDelay(t *testing.T) {
	require.NoError(t, Wait(context.Background(), 0))
}
