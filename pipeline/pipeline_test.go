package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingModel parks completions until release is closed, reporting call
// starts on the started channel. Agents listed in passthrough complete
// immediately. Used to hold a stage in flight while the test cancels the run.
type blockingModel struct {
	started     chan string
	release     chan struct{}
	passthrough map[string]bool
}

func newBlockingModel(capacity int, passthrough ...string) *blockingModel {
	m := &blockingModel{
		started:     make(chan string, capacity),
		release:     make(chan struct{}),
		passthrough: make(map[string]bool, len(passthrough)),
	}
	for _, agent := range passthrough {
		m.passthrough[agent] = true
	}
	return m
}

func (m *blockingModel) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	if m.passthrough[req.Agent] {
		return &model.Response{Text: "done: " + req.Agent, FinishReason: "stop"}, nil
	}
	m.started <- req.Agent
	select {
	case <-m.release:
		return &model.Response{Text: "done: " + req.Agent, FinishReason: "stop"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *blockingModel) Info() model.Info {
	return model.Info{Name: "blocking", Provider: "test"}
}

// gaugeModel tracks the high-water mark of concurrent completions.
type gaugeModel struct {
	mu      sync.Mutex
	current int
	peak    int
	delay   time.Duration
}

func (m *gaugeModel) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	m.mu.Lock()
	m.current++
	if m.current > m.peak {
		m.peak = m.current
	}
	m.mu.Unlock()

	time.Sleep(m.delay)

	m.mu.Lock()
	m.current--
	m.mu.Unlock()

	return &model.Response{Text: "ok", FinishReason: "stop"}, nil
}

func (m *gaugeModel) Info() model.Info {
	return model.Info{Name: "gauge", Provider: "test"}
}

func (m *gaugeModel) Peak() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

func TestRun_SequentialStateThreading(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Single(makeAgent(t, "A", "a_key")),
		Single(makeAgent(t, "B", "b_key")),
		Single(makeAgent(t, "C", "c_key")),
	}}
	p, err := New(spec)
	require.NoError(t, err)

	m := model.NewMock("test-model", "mock")
	m.AddResponse("A", "alpha output")
	m.AddResponse("B", "beta output")
	m.AddResponse("C", "gamma output")

	state, err := p.Run(context.Background(), m, "the lead")
	require.NoError(t, err)

	assert.Equal(t, []string{"a_key", "b_key", "c_key"}, state.Keys())

	// Each stage sees exactly the keys of the stages before it.
	reqA, ok := m.RequestFor("A")
	require.True(t, ok)
	assert.NotContains(t, reqA.Prompt, "a_key")
	assert.NotContains(t, reqA.Prompt, "b_key")

	reqB, ok := m.RequestFor("B")
	require.True(t, ok)
	assert.Contains(t, reqB.Prompt, "alpha output")
	assert.NotContains(t, reqB.Prompt, "c_key")

	reqC, ok := m.RequestFor("C")
	require.True(t, ok)
	assert.Contains(t, reqC.Prompt, "alpha output")
	assert.Contains(t, reqC.Prompt, "beta output")
}

func TestRun_SnapshotIsolationWithinGroup(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Single(makeAgent(t, "Seed", "seed_key")),
		Group("Team", makeAgent(t, "A", "a_key"), makeAgent(t, "B", "b_key")),
	}}
	p, err := New(spec)
	require.NoError(t, err)

	m := model.NewMock("test-model", "mock")
	m.AddResponse("Seed", "seed text")
	m.AddResponse("A", "sibling a text")
	m.AddResponse("B", "sibling b text")

	state, err := p.Run(context.Background(), m, "input")
	require.NoError(t, err)
	assert.Equal(t, 3, state.Len())

	// Both members see the pre-group snapshot, never each other.
	reqA, ok := m.RequestFor("A")
	require.True(t, ok)
	assert.Contains(t, reqA.Prompt, "seed text")
	assert.NotContains(t, reqA.Prompt, "sibling b text")

	reqB, ok := m.RequestFor("B")
	require.True(t, ok)
	assert.Contains(t, reqB.Prompt, "seed text")
	assert.NotContains(t, reqB.Prompt, "sibling a text")
}

func TestRun_GroupMergeOrderIsDeclaredOrder(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Group("Team",
			makeAgent(t, "A", "a_key"),
			makeAgent(t, "B", "b_key"),
			makeAgent(t, "C", "c_key"),
			makeAgent(t, "D", "d_key"),
		),
	}}
	p, err := New(spec)
	require.NoError(t, err)

	state, err := p.Run(context.Background(), &gaugeModel{delay: time.Millisecond}, "input")
	require.NoError(t, err)

	assert.Equal(t, []string{"a_key", "b_key", "c_key", "d_key"}, state.Keys())
}

func TestRun_PartialFailureContinuation(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Group("Team",
			makeAgent(t, "A", "a_key"),
			makeAgent(t, "B", "b_key"),
			makeAgent(t, "C", "c_key"),
		),
		Single(makeAgent(t, "Summary", "summary_key")),
	}}
	p, err := New(spec)
	require.NoError(t, err)

	m := model.NewMock("test-model", "mock")
	m.AddFailure("B", errors.New("rate limited"))

	state, err := p.Run(context.Background(), m, "input")
	require.NoError(t, err)

	assert.Equal(t, 4, state.Len())

	failed, ok := state.Get("b_key")
	require.True(t, ok)
	assert.False(t, failed.Success)
	assert.Equal(t, "rate limited", failed.Error)

	for _, key := range []string{"a_key", "c_key", "summary_key"} {
		res, ok := state.Get(key)
		require.True(t, ok, key)
		assert.True(t, res.Success, key)
	}

	// The downstream stage saw the failure marker as data.
	reqSummary, ok := m.RequestFor("Summary")
	require.True(t, ok)
	assert.Contains(t, reqSummary.Prompt, "Error in B: rate limited")
}

func TestRun_FailedSingleStageContinues(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Single(makeAgent(t, "A", "a_key")),
		Single(makeAgent(t, "B", "b_key")),
	}}
	p, err := New(spec)
	require.NoError(t, err)

	m := model.NewMock("test-model", "mock")
	m.AddFailure("A", errors.New("boom"))

	state, err := p.Run(context.Background(), m, "input")
	require.NoError(t, err)

	assert.Equal(t, 2, state.Len())
	a, _ := state.Get("a_key")
	assert.False(t, a.Success)
	b, _ := state.Get("b_key")
	assert.True(t, b.Success)
}

func TestRun_AllMembersFailStillContinues(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Group("Team", makeAgent(t, "A", "a_key"), makeAgent(t, "B", "b_key")),
		Single(makeAgent(t, "Final", "final_key")),
	}}
	p, err := New(spec)
	require.NoError(t, err)

	m := model.NewMock("test-model", "mock")
	m.AddFailure("A", errors.New("first down"))
	m.AddFailure("B", errors.New("second down"))

	state, err := p.Run(context.Background(), m, "input")
	require.NoError(t, err)

	assert.Equal(t, 3, state.Len())
	final, ok := state.Get("final_key")
	require.True(t, ok)
	assert.True(t, final.Success)
}

func TestRun_GroupCancelledDropsWholeGroup(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Single(makeAgent(t, "Seed", "seed_key")),
		Group("Team", makeAgent(t, "A", "a_key"), makeAgent(t, "B", "b_key")),
	}}
	p, err := New(spec)
	require.NoError(t, err)

	bm := newBlockingModel(2, "Seed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type outcome struct {
		state core.State
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		st, runErr := p.Run(ctx, bm, "input")
		done <- outcome{state: st, err: runErr}
	}()

	// Wait until both group members are in flight, then cancel.
	<-bm.started
	<-bm.started
	cancel()

	res := <-done
	require.Error(t, res.err)

	var gcErr *core.GroupCancelledError
	require.ErrorAs(t, res.err, &gcErr)
	assert.Equal(t, "Team", gcErr.Group)
	assert.ErrorIs(t, res.err, context.Canceled)

	// Only the pre-group state survives; no partial merge.
	assert.Equal(t, []string{"seed_key"}, res.state.Keys())
}

func TestRun_CancelledBeforeFirstStage(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{Single(makeAgent(t, "A", "a_key"))}}
	p, err := New(spec)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := p.Run(ctx, model.NewMock("test-model", "mock"), "input")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, state.Len())
}

func TestRun_SingleStageCancellationAborts(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Single(makeAgent(t, "A", "a_key")),
		Single(makeAgent(t, "B", "b_key")),
	}}
	p, err := New(spec)
	require.NoError(t, err)

	bm := newBlockingModel(2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type outcome struct {
		state core.State
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		st, runErr := p.Run(ctx, bm, "input")
		done <- outcome{state: st, err: runErr}
	}()

	<-bm.started
	cancel()

	res := <-done
	assert.ErrorIs(t, res.err, context.Canceled)

	var gcErr *core.GroupCancelledError
	assert.False(t, errors.As(res.err, &gcErr), "single stage abort must not be a group cancellation")
	assert.Equal(t, 0, res.state.Len())
}

func TestRun_MaxConcurrentCallsBoundsGroupBurst(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Group("Team",
			makeAgent(t, "A", "a_key"),
			makeAgent(t, "B", "b_key"),
			makeAgent(t, "C", "c_key"),
			makeAgent(t, "D", "d_key"),
		),
	}}
	p, err := New(spec, func(o *Options) { o.MaxConcurrentCalls = 2 })
	require.NoError(t, err)

	gm := &gaugeModel{delay: 30 * time.Millisecond}
	state, err := p.Run(context.Background(), gm, "input")
	require.NoError(t, err)

	assert.Equal(t, 4, state.Len())
	assert.LessOrEqual(t, gm.Peak(), 2)
}

func TestRun_EmitsLifecycleEvents(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Single(makeAgent(t, "A", "a_key")),
		Group("Team", makeAgent(t, "B", "b_key")),
	}}

	var mu sync.Mutex
	var events []core.Event
	p, err := New(spec, func(o *Options) {
		o.OnEvent = func(ev core.Event) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		}
	})
	require.NoError(t, err)

	_, err = p.Run(context.Background(), model.NewMock("test-model", "mock"), "input")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	var types []core.EventType
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []core.EventType{
		core.EventStageStarted,
		core.EventAgentStarted,
		core.EventAgentFinished,
		core.EventStageFinished,
		core.EventStageStarted,
		core.EventAgentStarted,
		core.EventAgentFinished,
		core.EventStageFinished,
	}, types)

	assert.Equal(t, "A", events[1].Agent)
	assert.Equal(t, "a_key", events[1].OutputKey)
	assert.Equal(t, "Team", events[4].Stage)
}
