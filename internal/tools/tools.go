// Package tools provides the built-in thinking tools a deployment
// registers: their descriptors, deterministic executors, and the
// incorporation rules between them.
package tools

import (
	"context"
	"fmt"

	apperrors "github.com/mentat-ai/mentat/internal/errors"
	"github.com/mentat-ai/mentat/internal/registry"
)

// toolsUpdatedAt stamps every built-in descriptor.
const toolsUpdatedAt = "2025-06-10T00:00:00Z"

// handler executes one built-in tool.
type handler func(ctx context.Context, params map[string]any) (any, error)

// Set is the built-in tool collection. It satisfies the engine's executor
// contract.
type Set struct {
	descriptors []*registry.ToolDescriptor
	handlers    map[string]handler
}

// DefaultSet returns the standard six thinking tools.
func DefaultSet() *Set {
	s := &Set{handlers: map[string]handler{}}
	s.add(mentalModelDescriptor(), runMentalModel)
	s.add(debuggingDescriptor(), runDebuggingApproach)
	s.add(brainstormingDescriptor(), runBrainstorming)
	s.add(decisionDescriptor(), runDecisionFramework)
	s.add(creativeDescriptor(), runCreativeThinking)
	s.add(sequentialDescriptor(), runSequentialThinking)
	return s
}

func (s *Set) add(d *registry.ToolDescriptor, h handler) {
	s.descriptors = append(s.descriptors, d)
	s.handlers[d.Name] = h
}

// Descriptors returns the set's descriptors in registration order.
func (s *Set) Descriptors() []*registry.ToolDescriptor {
	return s.descriptors
}

// Execute dispatches to the named built-in tool.
func (s *Set) Execute(ctx context.Context, name string, params map[string]any) (any, error) {
	h, ok := s.handlers[name]
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeToolNotFound, "no built-in tool named "+name)
	}
	return h(ctx, params)
}

// RegisterAll registers every descriptor and the incorporation rules
// between related tools.
func (s *Set) RegisterAll(reg *registry.Registry) error {
	for _, d := range s.descriptors {
		if err := reg.Register(d); err != nil {
			return err
		}
	}

	rules := []struct {
		source, target string
		rule           *registry.IncorporationRule
	}{
		// brainstormed ideas widen a creative pass, and vice versa
		{"brainstorming", "creative_thinking", &registry.IncorporationRule{Merge: mergeIdeaLists}},
		{"creative_thinking", "brainstorming", &registry.IncorporationRule{Merge: mergeIdeaLists}},

		// a mental model frames a debugging session
		{"mental_model", "debugging_approach", nil},

		// brainstormed ideas become decision options
		{"brainstorming", "decision_framework", &registry.IncorporationRule{Merge: mergeIdeasIntoOptions}},

		// prior models feed a sequential chain
		{"mental_model", "sequential_thinking", nil},
	}
	for _, r := range rules {
		if err := reg.RegisterIncorporationRule(r.source, r.target, r.rule); err != nil {
			return err
		}
	}
	return nil
}

// mergeIdeaLists appends every source's "ideas" list to the target's.
func mergeIdeaLists(sourceResults []any, targetResult any) (any, error) {
	target, ok := targetResult.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("target result is %T, want object", targetResult)
	}

	out := make(map[string]any, len(target))
	for k, v := range target {
		out[k] = v
	}
	ideas, _ := out["ideas"].([]any)
	for _, sr := range sourceResults {
		m, ok := sr.(map[string]any)
		if !ok {
			continue
		}
		if more, ok := m["ideas"].([]any); ok {
			ideas = append(ideas, more...)
		}
	}
	out["ideas"] = ideas
	return out, nil
}

// mergeIdeasIntoOptions turns brainstormed ideas into additional decision
// options.
func mergeIdeasIntoOptions(sourceResults []any, targetResult any) (any, error) {
	target, ok := targetResult.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("target result is %T, want object", targetResult)
	}

	out := make(map[string]any, len(target))
	for k, v := range target {
		out[k] = v
	}
	options, _ := out["options"].([]any)
	for _, sr := range sourceResults {
		m, ok := sr.(map[string]any)
		if !ok {
			continue
		}
		if ideas, ok := m["ideas"].([]any); ok {
			options = append(options, ideas...)
		}
	}
	out["options"] = options
	return out, nil
}

// stringParam reads a string parameter, falling back through the given
// aliases.
func stringParam(params map[string]any, names ...string) string {
	for _, n := range names {
		if v, ok := params[n].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
