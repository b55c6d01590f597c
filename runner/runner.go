package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/salesmesh/artifact"
	"github.com/hupe1980/salesmesh/config"
	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/logging"
	"github.com/hupe1980/salesmesh/model"
	"github.com/hupe1980/salesmesh/notify"
	"github.com/hupe1980/salesmesh/pipeline"
	"github.com/hupe1980/salesmesh/sales"
)

// Pipeline kinds registered by New.
const (
	KindResearch = "research"
	KindProposal = "proposal"
)

var (
	// ErrRunNotFound is returned when a run ID is not known to the runner.
	ErrRunNotFound = errors.New("run not found")
	// ErrClosed is returned when a run is started after Close.
	ErrClosed = errors.New("runner is closed")
)

// deliveryTimeout bounds how long a finished run spends on notifications.
const deliveryTimeout = 30 * time.Second

// Status is the lifecycle state of a run.
type Status string

const (
	// StatusRunning covers queued and executing runs.
	StatusRunning Status = "running"
	// StatusCompleted marks a run whose pipeline finished, regardless of
	// individual agent failures inside it.
	StatusCompleted Status = "completed"
	// StatusFailed marks a run aborted by a non-cancellation error.
	StatusFailed Status = "failed"
	// StatusCancelled marks a run aborted through Cancel or context
	// cancellation.
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool { return s != StatusRunning }

// Run is a snapshot of one pipeline run's record. The Document carries the
// compiled brief or proposal once the run completed; it is excluded from JSON
// so listings stay small, the report endpoint serves it separately.
type Run struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	Pipeline   string            `json:"pipeline"`
	Company    string            `json:"company"`
	Status     Status            `json:"status"`
	Error      string            `json:"error,omitempty"`
	State      core.State        `json:"state"`
	Artifact   string            `json:"artifact,omitempty"`
	Deliveries []notify.Delivery `json:"deliveries,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`

	Document string `json:"-"`
}

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Config supplies the company identity and pricing catalog embedded in
	// proposal instructions and compiled briefs. Defaults to config.Default().
	Config *config.Config

	// ArtifactStore persists compiled documents per run. Defaults to the
	// in-memory store.
	ArtifactStore core.ArtifactStore

	// Notifier delivers finished documents to the configured sinks. Nil
	// disables delivery.
	Notifier *notify.Fanout

	// Logger receives runner and pipeline diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger

	// MaxConcurrentCalls bounds simultaneous model calls within one run.
	// Zero means unbounded within a parallel group.
	MaxConcurrentCalls int

	// MaxConcurrentRuns bounds simultaneously executing runs. Additional
	// runs queue until a slot frees up. Zero means unlimited.
	MaxConcurrentRuns int

	// EventBufferSize sets the channel buffer handed to each subscriber.
	EventBufferSize int
}

// job carries everything one run needs: the resolved spec, the rendered
// prompt context, and the hooks that package the finished state for delivery.
type job struct {
	kind     string
	spec     pipeline.Spec
	input    string
	company  string
	subject  string
	summary  string
	filename string
	compile  func(core.State) (string, bool)
}

// runRecord is the mutable record behind Run snapshots. done is closed when
// the run reaches a terminal status.
type runRecord struct {
	Run
	done chan struct{}
}

// Runner executes the registered pipelines against a single model and tracks
// every run it has started.
type Runner struct {
	model    model.Model
	cfg      *config.Config
	store    core.ArtifactStore
	notifier *notify.Fanout
	logger   logging.Logger

	maxConcurrentCalls int
	eventBufferSize    int

	pipelines map[string]pipeline.Spec
	runSem    *core.CallLimiter

	mu          sync.RWMutex
	runs        map[string]*runRecord
	activeRuns  map[string]context.CancelFunc
	subscribers map[int]chan core.Event
	nextSub     int
	closed      bool

	wg sync.WaitGroup
}

// New constructs a Runner with optional overrides. The research and proposal
// pipelines are registered from the configured pricing catalog; an invalid
// catalog surfaces here as a ConfigurationError, before any run starts.
func New(m model.Model, optFns ...func(o *Options)) (*Runner, error) {
	opts := Options{
		Config:            config.Default(),
		ArtifactStore:     artifact.NewInMemoryStore(),
		Logger:            logging.NoOpLogger{},
		MaxConcurrentRuns: 10,
		EventBufferSize:   100,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.ArtifactStore == nil {
		opts.ArtifactStore = artifact.NewInMemoryStore()
	}
	if opts.MaxConcurrentCalls <= 0 {
		opts.MaxConcurrentCalls = opts.Config.Model.MaxConcurrentCalls
	}

	proposalSpec, err := sales.ProposalSpec(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("build proposal pipeline: %w", err)
	}

	pipelines := map[string]pipeline.Spec{
		KindResearch: sales.ResearchSpec(),
		KindProposal: proposalSpec,
	}
	for kind, spec := range pipelines {
		if err := pipeline.Validate(spec); err != nil {
			return nil, fmt.Errorf("validate %s pipeline: %w", kind, err)
		}
	}

	return &Runner{
		model:              m,
		cfg:                opts.Config,
		store:              opts.ArtifactStore,
		notifier:           opts.Notifier,
		logger:             opts.Logger,
		maxConcurrentCalls: opts.MaxConcurrentCalls,
		eventBufferSize:    opts.EventBufferSize,
		pipelines:          pipelines,
		runSem:             core.NewCallLimiter(opts.MaxConcurrentRuns),
		runs:               make(map[string]*runRecord),
		activeRuns:         make(map[string]context.CancelFunc),
		subscribers:        make(map[int]chan core.Event),
	}, nil
}

// Pipelines returns the registered pipeline kinds, sorted.
func (r *Runner) Pipelines() []string {
	kinds := make([]string, 0, len(r.pipelines))
	for kind := range r.pipelines {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// StartResearch validates the lead and starts an asynchronous research run.
// The returned Run is the initial record; poll Get or block on Wait for the
// outcome.
func (r *Runner) StartResearch(ctx context.Context, lead sales.Lead) (Run, error) {
	if err := lead.Validate(); err != nil {
		return Run{}, err
	}

	company := lead.CompanyOrDefault()

	return r.start(ctx, job{
		kind:     KindResearch,
		spec:     r.pipelines[KindResearch],
		input:    lead.Context(),
		company:  company,
		subject:  sales.BriefSubject(company),
		summary:  sales.LeadNotification(lead),
		filename: sales.BriefFilename(company),
		compile: func(state core.State) (string, bool) {
			return sales.CompileBrief(lead, state, r.cfg.Company), true
		},
	})
}

// StartProposal validates the request and starts an asynchronous proposal
// run.
func (r *Runner) StartProposal(ctx context.Context, req sales.ProposalRequest) (Run, error) {
	if err := req.Validate(); err != nil {
		return Run{}, err
	}

	company := req.CompanyOrDefault()

	return r.start(ctx, job{
		kind:     KindProposal,
		spec:     r.pipelines[KindProposal],
		input:    req.Context(),
		company:  company,
		subject:  sales.ProposalSubject(company),
		summary:  sales.ProposalNotification(req.Client),
		filename: sales.ProposalFilename(company),
		compile:  sales.ProposalDocument,
	})
}

// start registers the run record and launches the execution goroutine. The
// run inherits ctx, so cancelling it cancels the run; Cancel does the same
// per run ID.
func (r *Runner) start(ctx context.Context, j job) (Run, error) {
	runCtx, cancel := context.WithCancel(ctx)

	rec := &runRecord{
		Run: Run{
			ID:        core.NewID(),
			Kind:      j.kind,
			Pipeline:  j.spec.Name,
			Company:   j.company,
			Status:    StatusRunning,
			StartedAt: time.Now().UTC(),
		},
		done: make(chan struct{}),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return Run{}, ErrClosed
	}
	r.runs[rec.ID] = rec
	r.activeRuns[rec.ID] = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.activeRuns, rec.ID)
			r.mu.Unlock()
		}()

		r.execute(runCtx, rec.ID, j)
	}()

	return rec.Run, nil
}

// execute drives one run to a terminal status.
func (r *Runner) execute(ctx context.Context, runID string, j job) {
	r.publish(core.NewRunStartedEvent(runID, j.spec.Name))
	r.logger.Info("run %s started kind=%s company=%s", runID, j.kind, j.company)

	state, runErr := r.runPipeline(ctx, runID, j)

	status := StatusCompleted
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		status = StatusCancelled
	default:
		status = StatusFailed
	}

	var (
		document     string
		artifactName string
		deliveries   []notify.Delivery
	)

	if status == StatusCompleted {
		if doc, ok := j.compile(state); ok {
			document = doc
			artifactName = j.filename
			if err := r.store.Save(runID, j.filename, []byte(doc)); err != nil {
				r.logger.Warn("run %s: saving %s failed: %v", runID, j.filename, err)
				artifactName = ""
			}
			deliveries = r.deliver(runID, j, doc)
		} else {
			r.logger.Warn("run %s completed without a deliverable document", runID)
		}
	}

	now := time.Now().UTC()

	r.mu.Lock()
	rec := r.runs[runID]
	rec.Status = status
	rec.State = state
	rec.Error = errorText(runErr)
	rec.Document = document
	rec.Artifact = artifactName
	rec.Deliveries = deliveries
	rec.FinishedAt = &now
	close(rec.done)
	r.mu.Unlock()

	r.publish(core.NewRunFinishedEvent(runID, j.spec.Name, runErr))
	r.logger.Info("run %s finished status=%s outputs=%d in %s", runID, status, state.Len(), now.Sub(rec.StartedAt))
}

// runPipeline waits for a run slot, builds the pipeline with a per-run event
// hook, and executes it.
func (r *Runner) runPipeline(ctx context.Context, runID string, j job) (core.State, error) {
	if err := r.runSem.Acquire(ctx); err != nil {
		return core.NewState(), err
	}
	defer r.runSem.Release()

	p, err := pipeline.New(j.spec, func(o *pipeline.Options) {
		o.Logger = r.logger
		o.MaxConcurrentCalls = r.maxConcurrentCalls
		o.OnEvent = func(ev core.Event) {
			ev.RunID = runID
			r.publish(ev)
		}
	})
	if err != nil {
		return core.NewState(), err
	}

	return p.Run(ctx, r.model, j.input)
}

// deliver fans the finished document out to the configured sinks. Delivery
// runs on its own deadline so a racing caller cancellation cannot interrupt
// notifications for a run that already completed.
func (r *Runner) deliver(runID string, j job, document string) []notify.Delivery {
	if r.notifier == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	return r.notifier.Send(ctx, notify.Report{
		RunID:    runID,
		Kind:     j.kind,
		Company:  j.company,
		Subject:  j.subject,
		Summary:  j.summary,
		Document: document,
	})
}

// Get returns a snapshot of the run record.
func (r *Runner) Get(runID string) (Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.runs[runID]
	if !ok {
		return Run{}, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}

	return rec.Run, nil
}

// List returns snapshots of every known run, most recently started first.
func (r *Runner) List() []Run {
	r.mu.RLock()
	runs := make([]Run, 0, len(r.runs))
	for _, rec := range r.runs {
		runs = append(runs, rec.Run)
	}
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })

	return runs
}

// Wait blocks until the run reaches a terminal status and returns its final
// snapshot. The context bounds the wait, not the run.
func (r *Runner) Wait(ctx context.Context, runID string) (Run, error) {
	r.mu.RLock()
	rec, ok := r.runs[runID]
	r.mu.RUnlock()

	if !ok {
		return Run{}, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}

	select {
	case <-ctx.Done():
		return Run{}, ctx.Err()
	case <-rec.done:
	}

	return r.Get(runID)
}

// Cancel cancels an in-flight run. Cancelling an unknown run returns
// ErrRunNotFound; cancelling a finished run is an error as well.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, active := r.activeRuns[runID]
	_, known := r.runs[runID]
	r.mu.Unlock()

	if active {
		cancel()
		return nil
	}
	if !known {
		return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}

	return fmt.Errorf("run %s already finished", runID)
}

// Subscribe registers a new event subscriber and returns its channel plus an
// unsubscribe function. Events from all runs are delivered in emission order;
// a subscriber that falls behind its buffer loses events rather than slowing
// runs down.
func (r *Runner) Subscribe() (<-chan core.Event, func()) {
	ch := make(chan core.Event, r.eventBufferSize)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = ch
	r.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subscribers, id)
			r.mu.Unlock()
			close(ch)
		})
	}

	return ch, unsubscribe
}

// publish delivers an event to every subscriber without blocking. Sends
// happen under the read lock and channel closes under the write lock, so an
// unsubscribed channel is never written to.
func (r *Runner) publish(ev core.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, ch := range r.subscribers {
		select {
		case ch <- ev:
		default:
			r.logger.Warn("event subscriber %d lagging, dropped %s", id, ev.Type)
		}
	}
}

// Close cancels every active run, waits for their goroutines to drain, and
// rejects further starts.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	for _, cancel := range r.activeRuns {
		cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
