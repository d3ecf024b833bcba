package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

type recordingNotifier struct {
	received []model.Notification
	err      error
}

func (r *recordingNotifier) Notify(_ context.Context, n model.Notification) error {
	r.received = append(r.received, n)
	return r.err
}

func TestMultiNotifierFansOutToEveryBackend(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}
	m := NewMultiNotifier(a, b)

	n := model.Notification{OrgID: "org1", Kind: "human_escalation", Subject: "s", Body: "b"}
	require.NoError(t, m.Notify(context.Background(), n))
	require.Len(t, a.received, 1)
	require.Len(t, b.received, 1)
}

func TestMultiNotifierSkipsNilBackends(t *testing.T) {
	a := &recordingNotifier{}
	m := NewMultiNotifier(a, nil)
	require.NoError(t, m.Notify(context.Background(), model.Notification{}))
	require.Len(t, a.received, 1)
}

func TestMultiNotifierReturnsFirstErrorButStillCallsAll(t *testing.T) {
	a := &recordingNotifier{err: errors.New("telegram down")}
	b := &recordingNotifier{}
	m := NewMultiNotifier(a, b)

	err := m.Notify(context.Background(), model.Notification{})
	require.Error(t, err)
	require.Len(t, b.received, 1)
}

func TestNoopNotifierNeverErrors(t *testing.T) {
	require.NoError(t, NoopNotifier{}.Notify(context.Background(), model.Notification{}))
}
