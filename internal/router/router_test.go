package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentat-ai/mentat/internal/analyzer"
	"github.com/mentat-ai/mentat/internal/config"
	apperrors "github.com/mentat-ai/mentat/internal/errors"
	"github.com/mentat-ai/mentat/internal/registry"
)

func newTool(name string, level registry.Level, typ registry.Type, priority int) *registry.ToolDescriptor {
	return &registry.ToolDescriptor{
		Name:        name,
		Description: "test tool " + name,
		Level:       level,
		Type:        typ,
		ParameterSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"query": map[string]any{"type": "string"}},
		},
		ResultSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"answer": map[string]any{"type": "string"}},
		},
		Examples:  []registry.UsageExample{{Description: "x", Request: map[string]any{"query": "x"}}},
		Tags:      []string{"thinking"},
		Priority:  priority,
		Version:   "1.0.0",
		UpdatedAt: "2024-06-01T00:00:00Z",
	}
}

func newRouter(t *testing.T, tools ...*registry.ToolDescriptor) *Router {
	t.Helper()
	reg := registry.New()
	for _, d := range tools {
		require.NoError(t, reg.Register(d))
	}
	cfg := config.Default()
	return New(reg, analyzer.New(reg, cfg.Scoring), cfg.Routing)
}

func TestForceToolBypassesAnalysis(t *testing.T) {
	r := newRouter(t) // nothing registered at all

	d, err := r.Route("anything", Options{ForceTool: "ghost_tool"})
	require.NoError(t, err)
	assert.Equal(t, "ghost_tool", d.Tool)
	assert.Equal(t, 1.0, d.Confidence)
	assert.Nil(t, d.Descriptor)
	assert.Equal(t, map[string]any{"query": "anything"}, d.Parameters)
}

func TestRouteEmptyRegistry(t *testing.T) {
	r := newRouter(t)

	_, err := r.Route("analyze this", Options{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryNotFound))
}

func TestRouteSelectsBestCandidate(t *testing.T) {
	r := newRouter(t,
		newTool("debugging_approach", registry.LevelSpecialized, registry.TypeAnalysis, 60),
		newTool("mental_model", registry.LevelFoundation, registry.TypeAnalysis, 50),
		newTool("brainstorming", registry.LevelFoundation, registry.TypeGeneration, 50),
	)

	d, err := r.Route("debug this error and fix the broken failure", Options{})
	require.NoError(t, err)
	assert.Equal(t, "debugging_approach", d.Tool)
	require.NotNil(t, d.Descriptor)
	assert.NotEmpty(t, d.Reason)
	assert.NotNil(t, d.Analysis)
}

func TestRouteBelowThresholdFallsBack(t *testing.T) {
	r := newRouter(t,
		newTool("mental_model", registry.LevelFoundation, registry.TypeAnalysis, 50),
	)

	// an unmatched request scores low, but routing still picks something
	d, err := r.Route("zzz qqq xyzzy plugh", Options{MinConfidence: 0.99})
	require.NoError(t, err)
	assert.Equal(t, "mental_model", d.Tool)
}

func TestRoutePreferredLevel(t *testing.T) {
	r := newRouter(t,
		newTool("debugging_approach", registry.LevelSpecialized, registry.TypeAnalysis, 60),
		newTool("sequential_thinking", registry.LevelIntegrated, registry.TypeOrchestration, 80),
	)

	// both tools clear the threshold on this request
	req := "debug this error step by step and reason about the broken process"

	base, err := r.Route(req, Options{})
	require.NoError(t, err)

	preferred, err := r.Route(req, Options{PreferredLevel: registry.LevelIntegrated})
	require.NoError(t, err)
	assert.Equal(t, "sequential_thinking", preferred.Tool)

	if base.Tool != preferred.Tool {
		assert.Equal(t, "preferred thinking level matched", preferred.Reason)
	}
}

func TestRouteAlternativesBounded(t *testing.T) {
	r := newRouter(t,
		newTool("mental_model", registry.LevelFoundation, registry.TypeAnalysis, 50),
		newTool("debugging_approach", registry.LevelSpecialized, registry.TypeAnalysis, 60),
		newTool("brainstorming", registry.LevelFoundation, registry.TypeGeneration, 50),
		newTool("creative_thinking", registry.LevelSpecialized, registry.TypeGeneration, 50),
	)

	d, err := r.Route("analyze why this failure happens in my code", Options{MaxRecommendations: 2})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(d.Alternatives), 1)
	for _, alt := range d.Alternatives {
		assert.NotEqual(t, d.Tool, alt.Tool)
	}
}

func TestRouteObjectRequestPassesThrough(t *testing.T) {
	r := newRouter(t,
		newTool("mental_model", registry.LevelFoundation, registry.TypeAnalysis, 50),
	)

	req := map[string]any{"query": "analyze the analysis", "depth": 3}
	d, err := r.Route(req, Options{})
	require.NoError(t, err)
	assert.Equal(t, req, d.Parameters)
}

func TestMainParamLookup(t *testing.T) {
	cfg := config.Default()
	reg := registry.New()
	require.NoError(t, reg.Register(newTool("brainstorming", registry.LevelFoundation, registry.TypeGeneration, 50)))
	r := New(reg, analyzer.New(reg, cfg.Scoring), cfg.Routing)

	d, err := r.Route("brainstorm ideas for a product name", Options{})
	require.NoError(t, err)
	assert.Equal(t, "brainstorming", d.Tool)
	assert.Equal(t, map[string]any{"topic": "brainstorm ideas for a product name"}, d.Parameters)
}
