package core

import "fmt"

// Result captures the outcome of a single agent execution. A failed model
// call is recorded here as data rather than surfaced as a Go error, so a
// pipeline can continue past individual failures while preserving what went
// wrong and who produced it.
type Result struct {
	AgentName string `json:"agent_name"`
	OutputKey string `json:"output_key"`
	Text      string `json:"text"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// NewResult creates a successful result carrying the completion text.
func NewResult(agentName, outputKey, text string) Result {
	return Result{AgentName: agentName, OutputKey: outputKey, Text: text, Success: true}
}

// NewFailureResult creates a failed result. The error text is also rendered
// under Text so downstream prompts and compiled reports degrade gracefully.
func NewFailureResult(agentName, outputKey string, err error) Result {
	return Result{
		AgentName: agentName,
		OutputKey: outputKey,
		Text:      fmt.Sprintf("Error in %s: %v", agentName, err),
		Success:   false,
		Error:     err.Error(),
	}
}

// Failed reports whether the execution behind this result failed.
func (r Result) Failed() bool { return !r.Success }
