package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/model"
)

// Agent is an immutable named unit of work: static instructions bound to an
// output key. Agents are constructed once at pipeline-definition time, hold
// no mutable state and are safe to share across concurrent runs.
type Agent struct {
	name         string
	instructions string
	outputKey    string
}

// New creates an Agent. Name, instructions and output key are all required;
// a missing field is a ConfigurationError.
func New(name, instructions, outputKey string) (*Agent, error) {
	if name == "" {
		return nil, core.NewConfigurationError("agent name must not be empty")
	}
	if instructions == "" {
		return nil, core.NewConfigurationError("agent %s has no instructions", name)
	}
	if outputKey == "" {
		return nil, core.NewConfigurationError("agent %s has no output key", name)
	}

	return &Agent{name: name, instructions: instructions, outputKey: outputKey}, nil
}

// MustNew is like New but panics on a configuration error. Intended for
// statically known pipeline definitions.
func MustNew(name, instructions, outputKey string) *Agent {
	a, err := New(name, instructions, outputKey)
	if err != nil {
		panic(err)
	}
	return a
}

// Name returns the agent's unique name.
func (a *Agent) Name() string { return a.name }

// OutputKey returns the shared state key this agent writes.
func (a *Agent) OutputKey() string { return a.outputKey }

// Instructions returns the static prompt preamble.
func (a *Agent) Instructions() string { return a.instructions }

// BuildRequest assembles the completion request from the caller-supplied
// input and a shared state snapshot. It is a pure function: no I/O, no
// mutation, deterministic for a given input and snapshot. The prompt layout
// is instructions, then a CONTEXT section with the input, then the snapshot
// serialized as indented JSON, then a closing format hint.
func (a *Agent) BuildRequest(input string, snapshot core.State) model.Request {
	var sb strings.Builder
	sb.WriteString(a.instructions)
	sb.WriteString("\n\nCONTEXT:\n")
	sb.WriteString(input)
	sb.WriteString("\n\nSHARED STATE (outputs from previous agents):\n")
	sb.WriteString(marshalSnapshot(snapshot))
	sb.WriteString("\n\nPlease provide your analysis in markdown format.\n")

	return model.Request{Agent: a.name, Prompt: sb.String()}
}

// marshalSnapshot renders the snapshot's key to text view as indented JSON.
// Serialization of a map cannot realistically fail here; the fallback keeps
// prompt assembly total.
func marshalSnapshot(snapshot core.State) string {
	data, err := json.MarshalIndent(snapshot.Texts(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Run builds the prompt, performs one blocking completion call and wraps the
// outcome in a Result. A model error is returned as a failed Result rather
// than a Go error, so callers composing agents can continue past individual
// failures. The context is passed through to the model call for cancellation.
func (a *Agent) Run(ctx context.Context, m model.Model, input string, snapshot core.State) core.Result {
	resp, err := m.Complete(ctx, a.BuildRequest(input, snapshot))
	if err != nil {
		return core.NewFailureResult(a.name, a.outputKey, err)
	}

	return core.NewResult(a.name, a.outputKey, resp.Text)
}
