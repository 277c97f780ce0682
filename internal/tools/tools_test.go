package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentat-ai/mentat/internal/registry"
)

func TestRegisterAll(t *testing.T) {
	reg := registry.New()
	s := DefaultSet()
	require.NoError(t, s.RegisterAll(reg))

	assert.Equal(t, 6, reg.Count())
	for _, name := range []string{
		"mental_model", "debugging_approach", "brainstorming",
		"decision_framework", "creative_thinking", "sequential_thinking",
	} {
		assert.True(t, reg.Has(name), name)
	}

	// rule registration made the relationships symmetric
	assert.True(t, reg.Get("decision_framework").InteractsWithTool("brainstorming"))
	assert.True(t, reg.Get("brainstorming").InteractsWithTool("decision_framework"))
	assert.NotNil(t, reg.RuleFor("brainstorming", "decision_framework"))
}

func TestEveryDescriptorValidates(t *testing.T) {
	for _, d := range DefaultSet().Descriptors() {
		t.Run(d.Name, func(t *testing.T) {
			assert.NoError(t, d.Validate())
		})
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	_, err := DefaultSet().Execute(context.Background(), "ghost", map[string]any{})
	require.Error(t, err)
}

func TestExecuteMissingParam(t *testing.T) {
	s := DefaultSet()
	for _, name := range []string{"mental_model", "brainstorming", "sequential_thinking"} {
		_, err := s.Execute(context.Background(), name, map[string]any{})
		assert.Error(t, err, name)
	}
}

func TestMentalModelSelection(t *testing.T) {
	s := DefaultSet()
	tests := []struct {
		query string
		model string
	}{
		{"why does this keep happening", "five_whys"},
		{"which database should we choose given the cost", "opportunity_cost"},
		{"how do these systems interact", "systems_thinking"},
		{"explain containers", "first_principles"},
	}
	for _, tt := range tests {
		out, err := s.Execute(context.Background(), "mental_model", map[string]any{"query": tt.query})
		require.NoError(t, err)
		m := out.(map[string]any)
		assert.Equal(t, tt.model, m["model"], tt.query)
	}
}

func TestDebuggingApproachSelection(t *testing.T) {
	s := DefaultSet()
	out, err := s.Execute(context.Background(), "debugging_approach", map[string]any{
		"issue": "the test is flaky and fails sometimes",
	})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, "divide_and_conquer", m["approach"])
	assert.NotEmpty(t, m["steps"])
}

func TestBrainstormingIsDeterministic(t *testing.T) {
	s := DefaultSet()
	a, err := s.Execute(context.Background(), "brainstorming", map[string]any{"topic": "cache naming"})
	require.NoError(t, err)
	b, err := s.Execute(context.Background(), "brainstorming", map[string]any{"topic": "cache naming"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	ideas := a.(map[string]any)["ideas"].([]any)
	assert.Len(t, ideas, 6)
}

func TestSequentialThinkingSignalsCompletion(t *testing.T) {
	s := DefaultSet()
	out, err := s.Execute(context.Background(), "sequential_thinking", map[string]any{"thought": "split the service"})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, true, m["complete"])
	assert.NotEmpty(t, m["conclusion"])
}

func TestMergeIdeasIntoOptions(t *testing.T) {
	merged, err := mergeIdeasIntoOptions(
		[]any{map[string]any{"ideas": []any{"idea one", "idea two"}}},
		map[string]any{"decision": "pick one", "options": []any{"existing"}},
	)
	require.NoError(t, err)
	m := merged.(map[string]any)
	assert.Equal(t, []any{"existing", "idea one", "idea two"}, m["options"])

	_, err = mergeIdeasIntoOptions(nil, "not an object")
	assert.Error(t, err)
}
