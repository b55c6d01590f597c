// Package logging provides a minimal logging interface and adapters for SalesMesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the runner and pipelines use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - SalesMeshLogger with run/pipeline scoped attributes and domain helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	rnr, err := runner.New(m, func(o *runner.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
