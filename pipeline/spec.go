package pipeline

import (
	"github.com/hupe1980/salesmesh/agent"
	"github.com/hupe1980/salesmesh/core"
)

// Spec describes a pipeline as data: a name plus the ordered stages to
// execute. Specs are plain values; build them once and reuse them across
// runs.
type Spec struct {
	Name   string
	Stages []Stage
}

// Stage is one step of a pipeline: either a single agent (Agent set) or a
// parallel group (Members set). Exactly one of the two must be populated.
type Stage struct {
	Name    string
	Agent   *agent.Agent
	Members []*agent.Agent
}

// Single wraps one agent as a sequential stage named after the agent.
func Single(a *agent.Agent) Stage {
	if a == nil {
		return Stage{}
	}
	return Stage{Name: a.Name(), Agent: a}
}

// Group wraps agents as a named parallel stage. All members run concurrently
// against the same pre-stage snapshot.
func Group(name string, members ...*agent.Agent) Stage {
	return Stage{Name: name, Members: members}
}

// IsGroup reports whether the stage is a parallel group.
func (s Stage) IsGroup() bool { return len(s.Members) > 0 }

// agents returns the stage's agents regardless of kind.
func (s Stage) agents() []*agent.Agent {
	if s.IsGroup() {
		return s.Members
	}
	if s.Agent != nil {
		return []*agent.Agent{s.Agent}
	}
	return nil
}

// Validate checks the structural invariants of a spec: a non-empty name, at
// least one stage, exactly one kind per stage, and agent names and output
// keys unique across the entire pipeline. Violations are reported as
// ConfigurationErrors before any agent executes. Validation has no side
// effects and is deterministic, so validating the same spec twice yields the
// same outcome.
func Validate(spec Spec) error {
	if spec.Name == "" {
		return core.NewConfigurationError("pipeline name must not be empty")
	}
	if len(spec.Stages) == 0 {
		return core.NewConfigurationError("pipeline %s has no stages", spec.Name)
	}

	keyOwner := map[string]string{}
	names := map[string]struct{}{}

	for i, stage := range spec.Stages {
		if stage.Agent != nil && len(stage.Members) > 0 {
			return core.NewConfigurationError("pipeline %s stage %d sets both an agent and group members", spec.Name, i)
		}
		if stage.Agent == nil && len(stage.Members) == 0 {
			return core.NewConfigurationError("pipeline %s stage %d is empty", spec.Name, i)
		}
		if stage.IsGroup() && stage.Name == "" {
			return core.NewConfigurationError("pipeline %s stage %d is an unnamed group", spec.Name, i)
		}

		for _, a := range stage.agents() {
			if a == nil {
				return core.NewConfigurationError("pipeline %s stage %d contains a nil agent", spec.Name, i)
			}
			if _, dup := names[a.Name()]; dup {
				return core.NewConfigurationError("pipeline %s declares agent %s twice", spec.Name, a.Name())
			}
			names[a.Name()] = struct{}{}

			if owner, dup := keyOwner[a.OutputKey()]; dup {
				return core.NewConfigurationError("pipeline %s output key %q used by both %s and %s", spec.Name, a.OutputKey(), owner, a.Name())
			}
			keyOwner[a.OutputKey()] = a.Name()
		}
	}

	return nil
}

// OutputKeys returns every output key the spec's agents write, in stage
// order (group members in declared order).
func (s Spec) OutputKeys() []string {
	var keys []string
	for _, stage := range s.Stages {
		for _, a := range stage.agents() {
			if a != nil {
				keys = append(keys, a.OutputKey())
			}
		}
	}
	return keys
}
