package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies progress events emitted while a run executes.
type EventType string

const (
	// EventRunStarted marks the start of a pipeline run.
	EventRunStarted EventType = "run.started"
	// EventRunFinished marks the end of a pipeline run, successful or not.
	EventRunFinished EventType = "run.finished"
	// EventStageStarted marks the start of a pipeline stage.
	EventStageStarted EventType = "stage.started"
	// EventStageFinished marks the end of a pipeline stage.
	EventStageFinished EventType = "stage.finished"
	// EventAgentStarted marks the start of a single agent execution.
	EventAgentStarted EventType = "agent.started"
	// EventAgentFinished marks the end of a single agent execution.
	EventAgentFinished EventType = "agent.finished"
)

// Event is the unit of progress reporting between the runner and external
// clients (websocket subscribers, log sinks). After emission it should be
// treated as immutable. It captures:
//
//   - Correlation (RunID, ID)
//   - The lifecycle transition (Type)
//   - Where in the pipeline it happened (Pipeline, Stage, Agent, OutputKey)
//   - Success / error metadata for finished transitions
//   - High precision UTC timestamp
//
// Optional fields are pointers so absence can be distinguished from zero
// values when events are serialized.
type Event struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Type      EventType `json:"type"`
	Pipeline  string    `json:"pipeline,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Agent     string    `json:"agent,omitempty"`
	OutputKey string    `json:"output_key,omitempty"`
	Success   *bool     `json:"success,omitempty"`
	Error     *string   `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates a bare event bound to a run. Prefer helper constructors
// for common lifecycle transitions.
func NewEvent(runID string, typ EventType) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Type:      typ,
		Timestamp: time.Now().UTC(),
	}
}

// NewRunStartedEvent marks the beginning of a pipeline run.
func NewRunStartedEvent(runID, pipeline string) Event {
	e := NewEvent(runID, EventRunStarted)
	e.Pipeline = pipeline
	return e
}

// NewRunFinishedEvent marks the end of a pipeline run. A non-nil err records
// the top-level run error (cancellation or configuration failure).
func NewRunFinishedEvent(runID, pipeline string, err error) Event {
	e := NewEvent(runID, EventRunFinished)
	e.Pipeline = pipeline
	ok := err == nil
	e.Success = &ok
	if err != nil {
		msg := err.Error()
		e.Error = &msg
	}
	return e
}

// NewStageStartedEvent marks the beginning of a pipeline stage.
func NewStageStartedEvent(runID, pipeline, stage string) Event {
	e := NewEvent(runID, EventStageStarted)
	e.Pipeline = pipeline
	e.Stage = stage
	return e
}

// NewStageFinishedEvent marks the end of a pipeline stage.
func NewStageFinishedEvent(runID, pipeline, stage string) Event {
	e := NewEvent(runID, EventStageFinished)
	e.Pipeline = pipeline
	e.Stage = stage
	return e
}

// NewAgentStartedEvent marks the beginning of a single agent execution.
func NewAgentStartedEvent(runID, agent, outputKey string) Event {
	e := NewEvent(runID, EventAgentStarted)
	e.Agent = agent
	e.OutputKey = outputKey
	return e
}

// NewAgentFinishedEvent records the result of a single agent execution,
// copying its success flag and error text.
func NewAgentFinishedEvent(runID string, res Result) Event {
	e := NewEvent(runID, EventAgentFinished)
	e.Agent = res.AgentName
	e.OutputKey = res.OutputKey
	ok := res.Success
	e.Success = &ok
	if res.Error != "" {
		msg := res.Error
		e.Error = &msg
	}
	return e
}

// NewID generates a new unique identifier for events and runs.
//
// This function creates a UUID-based unique identifier that can be used
// for tracking and correlation throughout the framework.
//
// Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }

// UnixSeconds returns the timestamp as fractional seconds since Unix epoch.
// Useful for metrics & numeric serialization paths.
func (e Event) UnixSeconds() float64 { return float64(e.Timestamp.UnixNano()) / 1e9 }
