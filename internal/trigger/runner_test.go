package trigger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/model"
)

type fakeGhostLister struct{ ghosts map[model.GhostStatus][]model.Ghost }

func (f *fakeGhostLister) ListGhosts(_ context.Context, _ string, status model.GhostStatus) ([]model.Ghost, error) {
	return f.ghosts[status], nil
}

type fakeExecutor struct{ ran []string }

func (f *fakeExecutor) Run(_ context.Context, ghost model.Ghost, triggerLabel string, _ map[string]any) model.Execution {
	f.ran = append(f.ran, ghost.ID)
	return model.Execution{ID: "e-" + ghost.ID, GhostID: ghost.ID, Trigger: triggerLabel, Status: model.ExecutionCompleted}
}

type fakeSaver struct{ saved []model.Execution }

func (f *fakeSaver) SaveExecution(_ context.Context, e model.Execution) error {
	f.saved = append(f.saved, e)
	return nil
}

func TestTickRunsDueSchedulesOnly(t *testing.T) {
	daily9 := model.Trigger{Type: model.TriggerTypeSchedule, Cron: "0 9 * * *"}
	lister := &fakeGhostLister{ghosts: map[model.GhostStatus][]model.Ghost{
		model.GhostActive: {
			{ID: "g-due", Status: model.GhostActive, Trigger: daily9},
			{ID: "g-event", Status: model.GhostActive, Trigger: model.Trigger{Type: model.TriggerTypeEvent}},
		},
	}}
	exec := &fakeExecutor{}
	saver := &fakeSaver{}
	r := &Runner{Orgs: []string{"org1"}, Ghosts: lister, Executor: exec, Saver: saver, Scheduler: NewScheduler()}

	r.Tick(context.Background(), time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))

	require.Equal(t, []string{"g-due"}, exec.ran)
	require.Len(t, saver.saved, 1)
	require.Equal(t, "schedule", saver.saved[0].Trigger)
}

func TestTickSkipsWhenNothingDue(t *testing.T) {
	lister := &fakeGhostLister{ghosts: map[model.GhostStatus][]model.Ghost{}}
	exec := &fakeExecutor{}
	saver := &fakeSaver{}
	r := &Runner{Orgs: []string{"org1"}, Ghosts: lister, Executor: exec, Saver: saver, Scheduler: NewScheduler()}

	r.Tick(context.Background(), time.Now())

	require.Empty(t, exec.ran)
	require.Empty(t, saver.saved)
}
