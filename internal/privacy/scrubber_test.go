package privacy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScrubEmail(t *testing.T) {
	s := NewScrubber()
	out := s.Scrub("contact me at jane.doe@example.com please")
	require.NotContains(t, out, "jane.doe@example.com")
	require.Contains(t, out, "[EMAIL_1]")
}

func TestScrubStableTokensAcrossCalls(t *testing.T) {
	s := NewScrubber()
	a := s.Scrub("email jane@example.com")
	b := s.Scrub("again Jane@Example.com appears")
	require.Contains(t, a, "[EMAIL_1]")
	require.Contains(t, b, "[EMAIL_1]") // same normalized value -> same token

	c := s.Scrub("new one bob@example.com")
	require.Contains(t, c, "[EMAIL_2]")
}

func TestScrubResetClearsCounters(t *testing.T) {
	s := NewScrubber()
	s.Scrub("jane@example.com")
	s.Reset()
	out := s.Scrub("bob@example.com")
	require.Contains(t, out, "[EMAIL_1]")
}

func TestScrubOverlapLongerWins(t *testing.T) {
	s := NewScrubber()
	// A phone-shaped substring fully inside a longer credit-card-shaped run
	// of digits should resolve to the longer credit card match.
	text := "card 4111111111111111 on file"
	entities := s.Detect(text)
	require.NotEmpty(t, entities)
	for _, e := range entities {
		require.Equal(t, EntityCreditCard, e.Kind)
	}
}

func TestScrubFieldForcesPasswordToken(t *testing.T) {
	s := NewScrubber()
	out := s.ScrubField("hunter2", "password")
	require.NotContains(t, out, "hunter2")
	require.Contains(t, out, "[AUTH_TOKEN_1]")
}

func TestContainsPII(t *testing.T) {
	s := NewScrubber()
	require.True(t, s.ContainsPII("my ssn is 123-45-6789"))
	require.False(t, s.ContainsPII("nothing sensitive here"))
}

func TestScrubMalformedInputNeverPanics(t *testing.T) {
	s := NewScrubber()
	require.NotPanics(t, func() {
		_ = s.Scrub("")
		_ = s.Scrub("\x00\xff unicode ☃")
	})
}

func TestScrubAuthToken(t *testing.T) {
	s := NewScrubber()
	out := s.Scrub("Authorization: Bearer sk-abc123456789")
	require.NotContains(t, out, "sk-abc123456789")
}
