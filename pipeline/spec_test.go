package pipeline

import (
	"context"
	"testing"

	"github.com/hupe1980/salesmesh/agent"
	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAgent(t *testing.T, name, outputKey string) *agent.Agent {
	t.Helper()
	a, err := agent.New(name, "You are "+name+".", outputKey)
	require.NoError(t, err)
	return a
}

func TestValidate(t *testing.T) {
	a := makeAgent(t, "A", "a_key")
	b := makeAgent(t, "B", "b_key")
	dupKey := makeAgent(t, "C", "a_key")
	dupName := makeAgent(t, "A", "c_key")

	tests := []struct {
		name    string
		spec    Spec
		wantErr string
	}{
		{
			name: "valid mixed stages",
			spec: Spec{Name: "P", Stages: []Stage{Group("Team", a, b), Single(makeAgent(t, "D", "d_key"))}},
		},
		{
			name:    "missing pipeline name",
			spec:    Spec{Stages: []Stage{Single(a)}},
			wantErr: "pipeline name",
		},
		{
			name:    "no stages",
			spec:    Spec{Name: "P"},
			wantErr: "no stages",
		},
		{
			name:    "duplicate output key across stages",
			spec:    Spec{Name: "P", Stages: []Stage{Single(a), Single(dupKey)}},
			wantErr: `output key "a_key"`,
		},
		{
			name:    "duplicate output key within group",
			spec:    Spec{Name: "P", Stages: []Stage{Group("Team", a, dupKey)}},
			wantErr: `output key "a_key"`,
		},
		{
			name:    "duplicate agent name",
			spec:    Spec{Name: "P", Stages: []Stage{Single(a), Single(dupName)}},
			wantErr: "declares agent A twice",
		},
		{
			name:    "empty stage",
			spec:    Spec{Name: "P", Stages: []Stage{{Name: "empty"}}},
			wantErr: "is empty",
		},
		{
			name:    "stage with both kinds",
			spec:    Spec{Name: "P", Stages: []Stage{{Name: "both", Agent: a, Members: []*agent.Agent{b}}}},
			wantErr: "both an agent and group members",
		},
		{
			name:    "unnamed group",
			spec:    Spec{Name: "P", Stages: []Stage{{Members: []*agent.Agent{a, b}}}},
			wantErr: "unnamed group",
		},
		{
			name:    "nil member",
			spec:    Spec{Name: "P", Stages: []Stage{{Name: "Team", Members: []*agent.Agent{a, nil}}}},
			wantErr: "nil agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.spec)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var cfgErr *core.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_FailsFastBeforeAnyExecution(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Single(makeAgent(t, "A", "shared")),
		Single(makeAgent(t, "B", "shared")),
	}}

	p, err := New(spec)
	assert.Nil(t, p)
	require.Error(t, err)

	var cfgErr *core.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSpec_OutputKeys(t *testing.T) {
	spec := Spec{Name: "P", Stages: []Stage{
		Group("Team", makeAgent(t, "A", "a_key"), makeAgent(t, "B", "b_key")),
		Single(makeAgent(t, "C", "c_key")),
	}}

	assert.Equal(t, []string{"a_key", "b_key", "c_key"}, spec.OutputKeys())
}

func TestNew_IdempotentConstruction(t *testing.T) {
	build := func() *Pipeline {
		spec := Spec{Name: "P", Stages: []Stage{
			Group("Team", makeAgent(t, "A", "a_key"), makeAgent(t, "B", "b_key")),
			Single(makeAgent(t, "C", "c_key")),
		}}
		p, err := New(spec)
		require.NoError(t, err)
		return p
	}

	first := build()
	second := build()

	m := model.NewMock("test-model", "mock")
	s1, err := first.Run(context.Background(), m, "input")
	require.NoError(t, err)
	s2, err := second.Run(context.Background(), m, "input")
	require.NoError(t, err)

	assert.Equal(t, s1.Keys(), s2.Keys())
}
