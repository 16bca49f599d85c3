package monitor

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Plankit/internal/domain"
	"github.com/shaiso/Plankit/internal/mq"
)

func started(run *domain.Run) *mq.Message {
	return mq.NewMessage(mq.MessageTypeRunStarted, domain.RunEvent{Run: run})
}

func finished(run *domain.Run) *mq.Message {
	return mq.NewMessage(mq.MessageTypeRunFinished, domain.RunEvent{Run: run})
}

func node(run *domain.Run, path string, phase domain.NodePhase) *mq.Message {
	return mq.NewMessage(mq.MessageTypeNodeEvent, domain.NodeEvent{
		RunID:    run.ID,
		Pipeline: run.Pipeline,
		Path:     path,
		Kind:     domain.NodeKindStage,
		Phase:    phase,
	})
}

func TestBoard_RunLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := NewBoard(BoardConfig{Registerer: reg})

	run := domain.NewRun("deploy")
	run.MarkRunning()

	require.NoError(t, b.Apply(started(run)))
	require.NoError(t, b.Apply(mq.NewMessage(mq.MessageTypeDescription, mq.DescriptionPayload{
		RunID: run.ID, Pipeline: "deploy", Tree: "┬ Build\n└── make",
	})))
	require.NoError(t, b.Apply(node(run, "Build", domain.NodePhaseStarted)))
	require.NoError(t, b.Apply(node(run, "Build", domain.NodePhaseSucceeded)))

	running := b.List(domain.RunStatusRunning)
	require.Len(t, running, 1)
	assert.Equal(t, "┬ Build\n└── make", running[0].Description)
	assert.Len(t, running[0].Events, 2)

	done := *run
	done.MarkSucceeded()
	require.NoError(t, b.Apply(finished(&done)))

	assert.Empty(t, b.List(domain.RunStatusRunning))

	view, ok := b.Get(run.ID)
	require.True(t, ok)
	assert.Equal(t, domain.RunStatusSucceeded, view.Run.Status)

	assert.Equal(t, 1.0, testutil.ToFloat64(b.messages.WithLabelValues("run.started")))
	assert.Equal(t, 2.0, testutil.ToFloat64(b.messages.WithLabelValues("node.event")))
}

func TestBoard_FinishedBeforeStarted(t *testing.T) {
	b := NewBoard(BoardConfig{})

	run := domain.NewRun("deploy")
	run.MarkRunning()
	startedCopy := *run

	run.MarkFailed("boom")
	require.NoError(t, b.Apply(finished(run)))
	require.NoError(t, b.Apply(started(&startedCopy)))

	view, ok := b.Get(run.ID)
	require.True(t, ok)
	assert.Equal(t, domain.RunStatusFailed, view.Run.Status)
	assert.Equal(t, "boom", view.Run.Error)
}

func TestBoard_NodeEventBeforeRun(t *testing.T) {
	b := NewBoard(BoardConfig{})
	run := domain.NewRun("deploy")

	require.NoError(t, b.Apply(node(run, "Build", domain.NodePhaseStarted)))

	view, ok := b.Get(run.ID)
	require.True(t, ok)
	assert.Equal(t, "deploy", view.Run.Pipeline)
	assert.Equal(t, domain.RunStatusPending, view.Run.Status)
	assert.Len(t, view.Events, 1)
}

func TestBoard_Retain(t *testing.T) {
	b := NewBoard(BoardConfig{Retain: 2})

	runs := []*domain.Run{domain.NewRun("a"), domain.NewRun("b"), domain.NewRun("c")}
	for _, r := range runs {
		require.NoError(t, b.Apply(started(r)))
	}

	list := b.List("")
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].Run.Pipeline)
	assert.Equal(t, "b", list[1].Run.Pipeline)

	_, ok := b.Get(runs[0].ID)
	assert.False(t, ok)
}

func TestBoard_LateMessageForEvictedRun(t *testing.T) {
	b := NewBoard(BoardConfig{Retain: 2})

	runs := []*domain.Run{domain.NewRun("a"), domain.NewRun("b"), domain.NewRun("c")}
	for _, r := range runs {
		require.NoError(t, b.Apply(started(r)))
	}

	// "a" вытеснен; его поздние сообщения не должны вытеснять "b".
	evicted := runs[0]
	evicted.MarkSucceeded()
	require.NoError(t, b.Apply(node(evicted, "Build", domain.NodePhaseSucceeded)))
	require.NoError(t, b.Apply(mq.NewMessage(mq.MessageTypeDescription, mq.DescriptionPayload{
		RunID: evicted.ID, Pipeline: "a", Tree: "─ make",
	})))
	require.NoError(t, b.Apply(finished(evicted)))

	list := b.List("")
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].Run.Pipeline)
	assert.Equal(t, "b", list[1].Run.Pipeline)

	_, ok := b.Get(evicted.ID)
	assert.False(t, ok)
}

func TestBoard_SnapshotIsCopy(t *testing.T) {
	b := NewBoard(BoardConfig{})
	run := domain.NewRun("deploy")
	require.NoError(t, b.Apply(node(run, "Build", domain.NodePhaseStarted)))

	view, _ := b.Get(run.ID)
	view.Events[0].Path = "mutated"
	view.Run.Status = domain.RunStatusFailed

	again, _ := b.Get(run.ID)
	assert.Equal(t, "Build", again.Events[0].Path)
	assert.Equal(t, domain.RunStatusPending, again.Run.Status)
}

func TestBoard_Handle(t *testing.T) {
	b := NewBoard(BoardConfig{})

	unknown := &mq.Delivery{Message: mq.Message{ID: "1", Type: "task.ready"}}
	assert.NoError(t, b.Handle(context.Background(), unknown))

	broken := &mq.Delivery{Message: mq.Message{ID: "2", Type: mq.MessageTypeRunStarted, Payload: map[string]any{}}}
	assert.Error(t, b.Handle(context.Background(), broken))

	badPayload := &mq.Delivery{Message: mq.Message{ID: "3", Type: mq.MessageTypeNodeEvent, Payload: "not an object"}}
	assert.Error(t, b.Handle(context.Background(), badPayload))
}
