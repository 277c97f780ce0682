package tools

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/mentat-ai/mentat/internal/errors"
	"github.com/mentat-ai/mentat/internal/registry"
)

// descriptor builds a standard built-in descriptor whose parameter schema
// requires a single main string parameter.
func descriptor(name, desc string, level registry.Level, typ registry.Type, mainParam string, priority int, tags []string, example registry.UsageExample) *registry.ToolDescriptor {
	return &registry.ToolDescriptor{
		Name:        name,
		Description: desc,
		Level:       level,
		Type:        typ,
		ParameterSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				mainParam: map[string]any{"type": "string"},
			},
			"required": []any{mainParam},
		},
		ResultSchema: map[string]any{
			"type": "object",
		},
		Examples:  []registry.UsageExample{example},
		Tags:      tags,
		Priority:  priority,
		Version:   "1.0.0",
		UpdatedAt: toolsUpdatedAt,
	}
}

func missingParam(tool, param string) error {
	return apperrors.Validation(apperrors.CodeToolParamsInvalid,
		fmt.Sprintf("tool %q requires a %q parameter", tool, param))
}

// --- mental_model ---

func mentalModelDescriptor() *registry.ToolDescriptor {
	return descriptor(
		"mental_model",
		"Applies a structured mental model (first principles, five whys, systems thinking, opportunity cost) to a question.",
		registry.LevelFoundation, registry.TypeAnalysis, "query", 60,
		[]string{"analysis", "framework", "model"},
		registry.UsageExample{
			Description: "frame a question with first principles",
			Request:     map[string]any{"query": "why is our deploy pipeline slow"},
			Response:    map[string]any{"model": "five_whys"},
		},
	)
}

func runMentalModel(_ context.Context, params map[string]any) (any, error) {
	query := stringParam(params, "query", "text")
	if query == "" {
		return nil, missingParam("mental_model", "query")
	}

	lower := strings.ToLower(query)
	model := "first_principles"
	switch {
	case strings.Contains(lower, "why") || strings.Contains(lower, "cause"):
		model = "five_whys"
	case strings.Contains(lower, "trade") || strings.Contains(lower, "cost") || strings.Contains(lower, "choose"):
		model = "opportunity_cost"
	case strings.Contains(lower, "system") || strings.Contains(lower, "interact") || strings.Contains(lower, "feedback"):
		model = "systems_thinking"
	}

	return map[string]any{
		"model": model,
		"query": query,
		"steps": []any{
			fmt.Sprintf("State the question plainly: %s", query),
			fmt.Sprintf("Apply %s: strip assumptions and name what is actually known", model),
			"List the forces or components at play and how they connect",
			"Draw the smallest conclusion the evidence supports",
		},
	}, nil
}

// --- debugging_approach ---

func debuggingDescriptor() *registry.ToolDescriptor {
	return descriptor(
		"debugging_approach",
		"Selects a systematic debugging strategy for an issue and lays out its steps.",
		registry.LevelSpecialized, registry.TypeAnalysis, "issue", 65,
		[]string{"debugging", "diagnosis", "troubleshooting"},
		registry.UsageExample{
			Description: "pick a strategy for a flaky failure",
			Request:     map[string]any{"issue": "test fails intermittently on CI"},
			Response:    map[string]any{"approach": "divide_and_conquer"},
		},
	)
}

func runDebuggingApproach(_ context.Context, params map[string]any) (any, error) {
	issue := stringParam(params, "issue", "query", "text")
	if issue == "" {
		return nil, missingParam("debugging_approach", "issue")
	}

	lower := strings.ToLower(issue)
	approach := "hypothesis_testing"
	switch {
	case strings.Contains(lower, "intermittent") || strings.Contains(lower, "sometimes") || strings.Contains(lower, "flaky"):
		approach = "divide_and_conquer"
	case strings.Contains(lower, "regression") || strings.Contains(lower, "used to work") || strings.Contains(lower, "since"):
		approach = "binary_search"
	case strings.Contains(lower, "performance") || strings.Contains(lower, "slow") || strings.Contains(lower, "memory"):
		approach = "profiling"
	}

	return map[string]any{
		"approach": approach,
		"issue":    issue,
		"steps": []any{
			"Reproduce the failure with the smallest input that still triggers it",
			fmt.Sprintf("Apply %s to narrow the search space", approach),
			"Confirm the suspected cause by making it fail on demand",
			"Fix, then re-run the original reproduction to verify",
		},
	}, nil
}

// --- brainstorming ---

func brainstormingDescriptor() *registry.ToolDescriptor {
	return descriptor(
		"brainstorming",
		"Generates a spread of candidate ideas for a topic using fixed ideation prompts.",
		registry.LevelFoundation, registry.TypeGeneration, "topic", 55,
		[]string{"ideation", "creativity", "generation"},
		registry.UsageExample{
			Description: "ideas for a product name",
			Request:     map[string]any{"topic": "name for a caching library"},
		},
	)
}

func runBrainstorming(_ context.Context, params map[string]any) (any, error) {
	topic := stringParam(params, "topic", "query", "text")
	if topic == "" {
		return nil, missingParam("brainstorming", "topic")
	}

	prompts := []string{
		"What is the most obvious answer to %q, and what is its opposite?",
		"How would someone with no budget approach %q?",
		"What would %q look like at 100x the scale?",
		"Which existing solution to a different problem maps onto %q?",
		"What part of %q could be removed entirely?",
		"Who is affected by %q that nobody has asked?",
	}
	ideas := make([]any, len(prompts))
	for i, p := range prompts {
		ideas[i] = fmt.Sprintf(p, topic)
	}

	return map[string]any{
		"topic": topic,
		"ideas": ideas,
	}, nil
}

// --- decision_framework ---

func decisionDescriptor() *registry.ToolDescriptor {
	return descriptor(
		"decision_framework",
		"Structures a decision into options, criteria, and a weighing procedure.",
		registry.LevelSpecialized, registry.TypeDecision, "decision", 65,
		[]string{"decision", "criteria", "evaluation"},
		registry.UsageExample{
			Description: "structure a storage choice",
			Request:     map[string]any{"decision": "postgres or sqlite for the job queue"},
		},
	)
}

func runDecisionFramework(_ context.Context, params map[string]any) (any, error) {
	decision := stringParam(params, "decision", "query", "text")
	if decision == "" {
		return nil, missingParam("decision_framework", "decision")
	}

	options, _ := params["options"].([]any)

	return map[string]any{
		"decision": decision,
		"options":  options,
		"criteria": []any{
			"reversibility of the choice",
			"cost to implement and to operate",
			"risk if the assumption behind it is wrong",
			"time to first feedback",
		},
		"procedure": []any{
			"Score each option 1-5 against each criterion",
			"Weight criteria by what is hardest to undo",
			"Prefer the option that loses least under the pessimistic scores",
		},
	}, nil
}

// --- creative_thinking ---

func creativeDescriptor() *registry.ToolDescriptor {
	return descriptor(
		"creative_thinking",
		"Reframes a prompt through fixed creative lenses (inversion, analogy, exaggeration, constraint).",
		registry.LevelSpecialized, registry.TypeGeneration, "prompt", 55,
		[]string{"creativity", "reframing", "lateral"},
		registry.UsageExample{
			Description: "reframe an onboarding flow",
			Request:     map[string]any{"prompt": "make onboarding feel effortless"},
		},
	)
}

func runCreativeThinking(_ context.Context, params map[string]any) (any, error) {
	prompt := stringParam(params, "prompt", "query", "text")
	if prompt == "" {
		return nil, missingParam("creative_thinking", "prompt")
	}

	lenses := []struct{ lens, template string }{
		{"inversion", "How would you guarantee the opposite of %q?"},
		{"analogy", "What does %q look like in a kitchen, a hospital, an airport?"},
		{"exaggeration", "Solve %q as if failure cost a life and success paid a fortune"},
		{"constraint", "Solve %q with one tenth of the time and no new code"},
	}

	ideas := make([]any, len(lenses))
	for i, l := range lenses {
		ideas[i] = map[string]any{
			"lens": l.lens,
			"idea": fmt.Sprintf(l.template, prompt),
		}
	}
	return map[string]any{
		"prompt": prompt,
		"ideas":  ideas,
	}, nil
}

// --- sequential_thinking ---

func sequentialDescriptor() *registry.ToolDescriptor {
	d := descriptor(
		"sequential_thinking",
		"Works through a thought as an explicit chain of steps and closes the session with a conclusion.",
		registry.LevelIntegrated, registry.TypeOrchestration, "thought", 80,
		[]string{"reasoning", "chain", "steps"},
		registry.UsageExample{
			Description: "chain through a question",
			Request:     map[string]any{"thought": "how should we split this service"},
			Response:    map[string]any{"complete": true},
		},
	)
	return d
}

func runSequentialThinking(_ context.Context, params map[string]any) (any, error) {
	thought := stringParam(params, "thought", "query", "text")
	if thought == "" {
		return nil, missingParam("sequential_thinking", "thought")
	}

	thoughts := []any{
		fmt.Sprintf("Restate: %s", thought),
		"Decompose into the smallest independent questions",
		"Answer each from what is already established, flagging guesses",
		"Recombine the answers and check they do not contradict",
	}
	return map[string]any{
		"thought":    thought,
		"thoughts":   thoughts,
		"conclusion": fmt.Sprintf("Conclusion drawn from %d sequential steps on: %s", len(thoughts), thought),
		"complete":   true,
	}, nil
}
