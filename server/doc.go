// Package server exposes the pipeline runner over HTTP: intake endpoints
// that start research and proposal runs, run inspection and cancellation,
// report retrieval, configuration and health probes, and a websocket stream
// of run progress events.
package server
