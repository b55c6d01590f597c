package core

import "encoding/json"

// State is the write-once shared state of a pipeline run: a mapping from
// output key to the Result that produced it, plus the order in which keys
// were merged. State values are immutable; Merge returns a new State and
// never mutates the receiver, which is what makes handing the same snapshot
// to every member of a parallel group safe without locking.
type State struct {
	results map[string]Result
	order   []string
}

// NewState returns an empty state.
func NewState() State {
	return State{results: map[string]Result{}}
}

// Get returns the result stored under key.
func (s State) Get(key string) (Result, bool) {
	r, ok := s.results[key]
	return r, ok
}

// Has reports whether a result exists under key.
func (s State) Has(key string) bool {
	_, ok := s.results[key]
	return ok
}

// Len returns the number of merged results.
func (s State) Len() int { return len(s.results) }

// Keys returns the output keys in merge order.
func (s State) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Results returns the merged results in merge order.
func (s State) Results() []Result {
	out := make([]Result, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.results[k])
	}
	return out
}

// Texts returns a key to text projection of the state. This is the view
// serialized into downstream prompts.
func (s State) Texts() map[string]string {
	out := make(map[string]string, len(s.results))
	for k, r := range s.results {
		out[k] = r.Text
	}
	return out
}

// Merge returns a new State containing the receiver's results plus the given
// ones, appended in argument order. Keys are write-once: merging a key that
// is already present returns a ConfigurationError and leaves the receiver
// untouched.
func (s State) Merge(results ...Result) (State, error) {
	merged := State{
		results: make(map[string]Result, len(s.results)+len(results)),
		order:   make([]string, len(s.order), len(s.order)+len(results)),
	}
	for k, r := range s.results {
		merged.results[k] = r
	}
	copy(merged.order, s.order)

	for _, r := range results {
		if r.OutputKey == "" {
			return State{}, NewConfigurationError("result from agent %q has empty output key", r.AgentName)
		}
		if _, exists := merged.results[r.OutputKey]; exists {
			return State{}, NewConfigurationError("output key %q written twice", r.OutputKey)
		}
		merged.results[r.OutputKey] = r
		merged.order = append(merged.order, r.OutputKey)
	}

	return merged, nil
}

// MarshalJSON renders the state as a key to result object.
func (s State) MarshalJSON() ([]byte, error) {
	if s.results == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.results)
}
