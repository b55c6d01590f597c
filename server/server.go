package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hupe1980/salesmesh/artifact"
	"github.com/hupe1980/salesmesh/config"
	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/logging"
	"github.com/hupe1980/salesmesh/notify"
	"github.com/hupe1980/salesmesh/runner"
)

// shutdownTimeout bounds how long Start waits for in-flight requests after
// its context is cancelled.
const shutdownTimeout = 10 * time.Second

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Config supplies the listen port, company identity, and the
	// integration settings reported by the health and config endpoints.
	Config *config.Config

	// ArtifactStore backs the integration test endpoint. Pass the same
	// store the runner uses so test artifacts land next to real ones.
	ArtifactStore core.ArtifactStore

	// Notifier is reported by the config endpoint and exercised by the
	// integration test endpoint. Nil means no sinks are configured.
	Notifier *notify.Fanout

	// Logger receives request and lifecycle diagnostics.
	Logger logging.Logger

	// Version is reported by the health endpoints.
	Version string
}

// Server serves the intake API on top of a runner.
type Server struct {
	runner    *runner.Runner
	cfg       *config.Config
	store     core.ArtifactStore
	notifier  *notify.Fanout
	logger    logging.Logger
	hub       *Hub
	version   string
	startedAt time.Time

	// baseCtx parents every run started through the API, so runs outlive
	// the requests that started them but not the server itself.
	baseCtx context.Context
}

// New constructs a Server around the given runner.
func New(r *runner.Runner, optFns ...func(o *Options)) *Server {
	opts := Options{
		Config:  config.Default(),
		Logger:  logging.NoOpLogger{},
		Version: "dev",
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

	return &Server{
		runner:    r,
		cfg:       opts.Config,
		store:     opts.ArtifactStore,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		hub:       NewHub(opts.Logger),
		version:   opts.Version,
		startedAt: time.Now(),
		baseCtx:   context.Background(),
	}
}

// Handler builds the full HTTP handler: API routes, websocket endpoint, and
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerAPI(mux)
	mux.HandleFunc("GET /api/events", s.handleWebSocket)

	return s.withMiddleware(mux)
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully. Runs started through the API inherit ctx.
func (s *Server) Start(ctx context.Context) error {
	s.baseCtx = ctx

	go s.hub.Run(ctx)
	go s.pumpEvents(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("server shutdown: %v", err)
		}
	}()

	s.logger.Info("server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// pumpEvents forwards runner events to the websocket hub.
func (s *Server) pumpEvents(ctx context.Context) {
	events, unsubscribe := s.runner.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			s.hub.Broadcast(ev)
		}
	}
}

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
