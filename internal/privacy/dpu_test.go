package privacy

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionFingerprintRotatesEvery15Min(t *testing.T) {
	d := NewDPU()
	base := int64(1_700_000_000_000)

	a := d.SessionFingerprint("device1", "user1", base)
	sameBucket := d.SessionFingerprint("device1", "user1", base+60_000) // +1min, same bucket
	require.Equal(t, a, sameBucket)

	nextBucket := d.SessionFingerprint("device1", "user1", base+900_000+1) // +15min+eps
	require.NotEqual(t, a, nextBucket)
	require.Len(t, a, 64)
}

func TestPerturbVectorPreservesDimensionality(t *testing.T) {
	d := NewDPU()
	v := make([]float64, 128)
	for i := range v {
		v[i] = 0.01 * float64(i)
	}
	out := d.PerturbVector(v)
	require.Len(t, out, 128)
	for _, x := range out {
		// quantized to 4 decimals
		require.InDelta(t, x, math.Round(x*10000)/10000, 1e-9)
	}
}

func TestAnonymizeTimestampIsBucketed(t *testing.T) {
	d := NewDPU()
	now := time.Date(2026, 1, 1, 12, 7, 0, 0, time.UTC)
	out := d.AnonymizeTimestamp(0, now)
	parsed, err := time.Parse(time.RFC3339, out)
	require.NoError(t, err)
	require.Equal(t, 0, parsed.Minute()%5)
	require.Equal(t, 0, parsed.Second())
}

func TestRandomizedResponseIndependentDraws(t *testing.T) {
	d := NewDPU()
	flips := 0
	for i := 0; i < 10000; i++ {
		if d.RandomizedResponse(true, 0.10) != true {
			flips++
		}
	}
	// Expect roughly 10% flips; allow generous statistical slack.
	require.InDelta(t, 1000, flips, 400)
}

func TestStructuralHashDeterministic(t *testing.T) {
	d := NewDPU()
	h1 := d.StructuralHash([]string{"body", "div", "button"}, "button")
	h2 := d.StructuralHash([]string{"body", "div", "button"}, "button")
	require.Equal(t, h1, h2)
	require.Len(t, h1, 8)

	h3 := d.StructuralHash([]string{"body", "div", "a"}, "a")
	require.NotEqual(t, h1, h3)
}

func TestHashURLPreservesOrigin(t *testing.T) {
	d := NewDPU()
	out := d.HashURL("https://example.com", "/checkout?id=42")
	require.True(t, strings.HasPrefix(out, "https://example.com/"))
	require.NotContains(t, out, "checkout")
	require.NotContains(t, out, "id=42")
}
