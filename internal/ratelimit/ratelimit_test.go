package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPerMinuteAllowsBurstThenBlocks(t *testing.T) {
	l := PerMinute(3, time.Minute)
	require.True(t, l.Allow("device1"))
	require.True(t, l.Allow("device1"))
	require.True(t, l.Allow("device1"))
	require.False(t, l.Allow("device1"))
}

func TestPerMinuteKeysAreIndependent(t *testing.T) {
	l := PerMinute(1, time.Minute)
	require.True(t, l.Allow("a"))
	require.True(t, l.Allow("b"))
	require.False(t, l.Allow("a"))
}

func TestEvictionBoundsTrackedKeys(t *testing.T) {
	l := PerMinute(10, time.Nanosecond)
	for i := 0; i < maxTrackedKeys+100; i++ {
		l.Allow(string(rune(i)))
	}
	l.mu.Lock()
	n := len(l.entries)
	l.mu.Unlock()
	require.LessOrEqual(t, n, maxTrackedKeys)
}
