package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/salesmesh/agent"
	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/logging"
	"github.com/hupe1980/salesmesh/model"
)

// Options configures pipeline execution.
type Options struct {
	// Logger receives execution diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger

	// MaxConcurrentCalls bounds simultaneous model calls within one run.
	// Zero or negative means unbounded, letting a parallel group burst up
	// to its member count.
	MaxConcurrentCalls int

	// OnEvent, when set, receives progress events (stage and agent
	// lifecycle). It may be invoked from multiple goroutines concurrently
	// during parallel stages. Events carry no run identifier; wrappers
	// stamp one before fan-out.
	OnEvent func(core.Event)
}

// Pipeline is a validated, executable pipeline bound to a Spec. Construct
// with New; the zero value is not usable.
type Pipeline struct {
	spec Spec
	opts Options
}

// New validates the spec and returns an executable pipeline. Construction is
// idempotent and side-effect-free: building the same spec twice yields
// pipelines with identical behavior. A spec with duplicate output keys or
// malformed stages fails fast with a ConfigurationError.
func New(spec Spec, optFns ...func(o *Options)) (*Pipeline, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if err := Validate(spec); err != nil {
		return nil, err
	}

	return &Pipeline{spec: spec, opts: opts}, nil
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.spec.Name }

// Spec returns the descriptor this pipeline interprets.
func (p *Pipeline) Spec() Spec { return p.spec }

// Run executes the stages in order against the given model and returns the
// final shared state. The state starts empty; the caller-supplied input is
// embedded into every agent's prompt instead.
//
// Individual agent failures are merged as failure results and do not stop
// the run. The returned error is non-nil only for aborts: cancellation
// (including a GroupCancelledError for a group dropped in flight) or a state
// merge rejection. On abort the state accumulated before the failed stage is
// returned so the caller can decide what to do with a partial result.
func (p *Pipeline) Run(ctx context.Context, m model.Model, input string) (core.State, error) {
	state := core.NewState()
	limiter := core.NewCallLimiter(p.opts.MaxConcurrentCalls)
	start := time.Now()

	for _, stage := range p.spec.Stages {
		if err := ctx.Err(); err != nil {
			p.opts.Logger.Warn("pipeline %s aborted before stage %s: %v", p.spec.Name, stage.Name, err)
			return state, err
		}

		p.emit(core.NewStageStartedEvent("", p.spec.Name, stage.Name))
		stageStart := time.Now()

		var err error
		if stage.IsGroup() {
			state, err = p.runGroup(ctx, m, input, state, stage, limiter)
		} else {
			state, err = p.runSingle(ctx, m, input, state, stage.Agent, limiter)
		}
		if err != nil {
			p.opts.Logger.Warn("pipeline %s stage %s aborted: %v", p.spec.Name, stage.Name, err)
			return state, err
		}

		p.emit(core.NewStageFinishedEvent("", p.spec.Name, stage.Name))
		p.opts.Logger.Debug("pipeline %s stage %s completed in %s", p.spec.Name, stage.Name, time.Since(stageStart))
	}

	p.opts.Logger.Info("pipeline %s completed in %s with %d outputs", p.spec.Name, time.Since(start), state.Len())

	return state, nil
}

// runSingle executes a sequential one-agent stage. A failed agent merges its
// failure result and the pipeline continues, unless the failure was caused
// by cancellation, in which case the run aborts with the context error and
// the result is dropped.
func (p *Pipeline) runSingle(ctx context.Context, m model.Model, input string, state core.State, a *agent.Agent, limiter *core.CallLimiter) (core.State, error) {
	if err := limiter.Acquire(ctx); err != nil {
		return state, err
	}

	p.emit(core.NewAgentStartedEvent("", a.Name(), a.OutputKey()))
	res := a.Run(ctx, m, input, state)
	limiter.Release()
	p.emit(core.NewAgentFinishedEvent("", res))

	if res.Failed() {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		p.opts.Logger.Warn("agent %s failed, continuing: %s", res.AgentName, res.Error)
	}

	return state.Merge(res)
}

// runGroup fans out every member against the same pre-group snapshot and
// joins them all before merging. Results land in a fixed-size slice indexed
// by declared member order, which is also the merge order; completion order
// is never observable. If the context was cancelled while members were in
// flight the whole group is dropped and a GroupCancelledError is returned
// with the pre-group state.
func (p *Pipeline) runGroup(ctx context.Context, m model.Model, input string, snapshot core.State, stage Stage, limiter *core.CallLimiter) (core.State, error) {
	results := make([]core.Result, len(stage.Members))

	var wg sync.WaitGroup
	for i, member := range stage.Members {
		wg.Add(1)
		go func(i int, a *agent.Agent) {
			defer wg.Done()

			if err := limiter.Acquire(ctx); err != nil {
				results[i] = core.NewFailureResult(a.Name(), a.OutputKey(), err)
				return
			}
			defer limiter.Release()

			p.emit(core.NewAgentStartedEvent("", a.Name(), a.OutputKey()))
			results[i] = a.Run(ctx, m, input, snapshot)
			p.emit(core.NewAgentFinishedEvent("", results[i]))
		}(i, member)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return snapshot, &core.GroupCancelledError{Group: stage.Name, Cause: err}
	}

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
			p.opts.Logger.Warn("agent %s failed in group %s, continuing: %s", res.AgentName, stage.Name, res.Error)
		}
	}
	if failed == len(results) {
		p.opts.Logger.Warn("all %d members of group %s failed", failed, stage.Name)
	}

	return snapshot.Merge(results...)
}

func (p *Pipeline) emit(ev core.Event) {
	if p.opts.OnEvent != nil {
		p.opts.OnEvent(ev)
	}
}
