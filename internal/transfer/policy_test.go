package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLinearBackoffDelaySchedule(t *testing.T) {
	p := NewLinearBackoff(10)

	expected := []time.Duration{
		0,
		2 * time.Second,
		4 * time.Second,
		6 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}
	for i, want := range expected {
		require.Equal(t, want, p.Delay(i+1), "attempt %d", i+1)
	}
}

func TestLinearBackoffBudget(t *testing.T) {
	p := NewLinearBackoff(3)

	require.True(t, p.ShouldRetry(1))
	require.True(t, p.ShouldRetry(3))
	require.False(t, p.ShouldRetry(4))

	// A zero budget never retries
	require.False(t, NewLinearBackoff(0).ShouldRetry(1))
}
