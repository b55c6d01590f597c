// Package salesmesh provides a high-level façade over the pipeline runner
// and its services (model provider, artifact store, notification sinks &
// logging). Most applications interact with this package by:
//  1. Creating a SalesMesh via New() (configuration is loaded from file and
//     environment unless overridden)
//  2. Running the shipped pipelines synchronously (Research, Propose) or
//     asynchronously through Runner()
//  3. Optionally exposing the HTTP intake API with Serve()
//
// The façade delegates orchestration to runner.Runner while keeping setup
// ergonomics concise. Defaults are safe for local development; production
// deployments typically configure a real provider API key, a durable
// artifact backend, and at least one notification sink.
package salesmesh

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/salesmesh/artifact"
	"github.com/hupe1980/salesmesh/artifact/sqlite"
	"github.com/hupe1980/salesmesh/config"
	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/logging"
	"github.com/hupe1980/salesmesh/model"
	"github.com/hupe1980/salesmesh/model/anthropic"
	"github.com/hupe1980/salesmesh/model/openai"
	"github.com/hupe1980/salesmesh/notify"
	"github.com/hupe1980/salesmesh/runner"
	"github.com/hupe1980/salesmesh/sales"
	"github.com/hupe1980/salesmesh/server"
)

// Version is reported by the HTTP health endpoints.
const Version = "0.1.0"

// Options configures the SalesMesh instance. Any unset dependency is built
// from the configuration.
type Options struct {
	// Config overrides the file/environment configuration.
	Config *config.Config

	// Model overrides the provider selected by the configuration. Handy for
	// tests and examples running against model.NewMock.
	Model model.Model

	// ArtifactStore overrides the configured artifact backend.
	ArtifactStore core.ArtifactStore

	// Notifier overrides the sinks assembled from the configuration.
	Notifier *notify.Fanout

	// Logger overrides the configured slog logger.
	Logger logging.Logger
}

// SalesMesh is the high-level façade aggregating the runner and its services.
type SalesMesh struct {
	cfg      *config.Config
	runner   *runner.Runner
	store    core.ArtifactStore
	notifier *notify.Fanout
	logger   logging.Logger
}

// New creates a SalesMesh instance with optional overrides.
func New(optFns ...func(o *Options)) (*SalesMesh, error) {
	var opts Options

	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewSlogLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format, false)
	}

	m := opts.Model
	if m == nil {
		built, err := modelFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		m = built
	}

	store := opts.ArtifactStore
	if store == nil {
		built, err := storeFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		store = built
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.FromConfig(cfg, logger)
	}

	r, err := runner.New(m, func(o *runner.Options) {
		o.Config = cfg
		o.ArtifactStore = store
		o.Notifier = notifier
		o.Logger = logger
		o.MaxConcurrentCalls = cfg.Model.MaxConcurrentCalls
	})
	if err != nil {
		return nil, err
	}

	return &SalesMesh{
		cfg:      cfg,
		runner:   r,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Research runs the research pipeline to completion and returns the finished
// run, including the compiled call prep brief.
func (s *SalesMesh) Research(ctx context.Context, lead sales.Lead) (runner.Run, error) {
	run, err := s.runner.StartResearch(ctx, lead)
	if err != nil {
		return runner.Run{}, err
	}
	return s.runner.Wait(ctx, run.ID)
}

// Propose runs the proposal pipeline to completion and returns the finished
// run, including the generated proposal document.
func (s *SalesMesh) Propose(ctx context.Context, req sales.ProposalRequest) (runner.Run, error) {
	run, err := s.runner.StartProposal(ctx, req)
	if err != nil {
		return runner.Run{}, err
	}
	return s.runner.Wait(ctx, run.ID)
}

// Runner exposes the underlying runner for asynchronous control: starting
// runs, cancellation, and event subscriptions.
func (s *SalesMesh) Runner() *runner.Runner { return s.runner }

// Config returns the effective configuration.
func (s *SalesMesh) Config() *config.Config { return s.cfg }

// Serve runs the HTTP intake API until ctx is cancelled.
func (s *SalesMesh) Serve(ctx context.Context) error {
	srv := server.New(s.runner, func(o *server.Options) {
		o.Config = s.cfg
		o.ArtifactStore = s.store
		o.Notifier = s.notifier
		o.Logger = s.logger
		o.Version = Version
	})
	return srv.Start(ctx)
}

// Close cancels active runs and releases sink connections.
func (s *SalesMesh) Close() {
	s.runner.Close()
	s.notifier.Close()
}

func modelFromConfig(cfg *config.Config) (model.Model, error) {
	switch cfg.Model.Provider {
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Model.Name)
			}
			o.Temperature = cfg.Model.Temperature
			o.MaxTokens = cfg.Model.MaxTokens
			o.APIKey = cfg.Model.AnthropicAPIKey
		}), nil
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
			o.Temperature = cfg.Model.Temperature
			o.MaxCompletionTokens = cfg.Model.MaxTokens
			o.APIKey = cfg.Model.OpenAIAPIKey
		}), nil
	case "mock":
		return model.NewMock("mock", "mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}
}

func storeFromConfig(cfg *config.Config) (core.ArtifactStore, error) {
	switch cfg.Artifacts.Backend {
	case "", "memory":
		return artifact.NewInMemoryStore(), nil
	case "local":
		return artifact.NewLocalStore(cfg.Artifacts.Dir)
	case "sqlite":
		return sqlite.New(cfg.Artifacts.Path)
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Artifacts.Backend)
	}
}
