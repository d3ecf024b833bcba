package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStubReturnsResponsesInOrder(t *testing.T) {
	s := NewStub(Response{Content: "first"}, Response{Content: "second"})
	a, err := s.Complete(context.Background(), SingleTurn("", "a"))
	require.NoError(t, err)
	require.Equal(t, "first", a.Content)

	b, err := s.Complete(context.Background(), SingleTurn("", "b"))
	require.NoError(t, err)
	require.Equal(t, "second", b.Content)

	require.Len(t, s.Calls, 2)
}

func TestStubErrorsWhenExhausted(t *testing.T) {
	s := NewStub(Response{Content: "only"})
	_, err := s.Complete(context.Background(), Request{})
	require.NoError(t, err)
	_, err = s.Complete(context.Background(), Request{})
	require.Error(t, err)
}

func TestStubHealthTracksScriptedError(t *testing.T) {
	require.True(t, NewStub().Health(context.Background()))
	require.False(t, (&Stub{Err: errors.New("down")}).Health(context.Background()))
}
