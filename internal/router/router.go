// Package router turns a request analysis into a concrete routing decision.
//
// Routing never fails once tools are registered: if no candidate clears the
// confidence threshold the best-scoring one is selected anyway, and a forced
// tool bypasses analysis entirely.
package router

import (
	"github.com/mentat-ai/mentat/internal/analyzer"
	"github.com/mentat-ai/mentat/internal/config"
	apperrors "github.com/mentat-ai/mentat/internal/errors"
	"github.com/mentat-ai/mentat/internal/registry"
)

// Alternative is a runner-up candidate attached to a decision.
type Alternative struct {
	Tool       string  `json:"tool"`
	Confidence float64 `json:"confidence"`
}

// Decision is the outcome of routing one request.
type Decision struct {
	Tool         string                   `json:"tool"`
	Parameters   map[string]any           `json:"parameters"`
	Confidence   float64                  `json:"confidence"`
	Alternatives []Alternative            `json:"alternatives,omitempty"`
	Descriptor   *registry.ToolDescriptor `json:"-"` // nil for a forced, unregistered tool
	Analysis     *analyzer.Analysis       `json:"-"`
	Reason       string                   `json:"reason"`
}

// Options tune one routing call. Zero values fall back to config defaults.
type Options struct {
	// ForceTool bypasses the analyzer and registry. It may name an
	// unregistered tool; that failure surfaces only at execution time.
	ForceTool string

	// PreferredLevel, when set, prefers a threshold-passing candidate at
	// that thinking level over the global best.
	PreferredLevel registry.Level

	// MinConfidence overrides the configured routing threshold.
	MinConfidence float64

	// MaxRecommendations overrides the configured decision size (one
	// selected tool plus up to MaxRecommendations-1 alternatives).
	MaxRecommendations int

	// Context is passed through to the analyzer.
	Context map[string]any
}

// Router selects a tool for each request.
type Router struct {
	reg *registry.Registry
	an  *analyzer.Analyzer
	cfg config.RoutingConfig
}

// New creates a router over the given registry and analyzer.
func New(reg *registry.Registry, an *analyzer.Analyzer, cfg config.RoutingConfig) *Router {
	return &Router{reg: reg, an: an, cfg: cfg}
}

// Route produces a routing decision for a request.
func (r *Router) Route(request any, opts Options) (*Decision, error) {
	if opts.ForceTool != "" {
		return &Decision{
			Tool:       opts.ForceTool,
			Parameters: r.buildParams(opts.ForceTool, request),
			Confidence: 1.0,
			Descriptor: r.reg.Get(opts.ForceTool),
			Reason:     "tool forced by caller",
		}, nil
	}

	if r.reg.Count() == 0 {
		return nil, apperrors.NotFound(apperrors.CodeNoToolsRegistered, "no tools registered")
	}

	analysis, err := r.an.Analyze(request, opts.Context)
	if err != nil {
		return nil, err
	}

	minConf := opts.MinConfidence
	if minConf <= 0 {
		minConf = r.cfg.MinConfidence
	}
	maxRecs := opts.MaxRecommendations
	if maxRecs <= 0 {
		maxRecs = r.cfg.MaxRecommendations
	}

	selected, reason := r.selectCandidate(analysis.Candidates, minConf, opts.PreferredLevel)

	decision := &Decision{
		Tool:       selected.Tool,
		Parameters: r.buildParams(selected.Tool, request),
		Confidence: selected.Confidence,
		Descriptor: r.reg.Get(selected.Tool),
		Analysis:   analysis,
		Reason:     reason,
	}
	for _, c := range analysis.Candidates {
		if c.Tool == selected.Tool {
			continue
		}
		if len(decision.Alternatives) >= maxRecs-1 {
			break
		}
		decision.Alternatives = append(decision.Alternatives, Alternative(c))
	}
	return decision, nil
}

// selectCandidate applies the threshold, preferred-level override, and
// best-candidate fallback. It always returns a candidate.
func (r *Router) selectCandidate(candidates []analyzer.Candidate, minConf float64, preferred registry.Level) (analyzer.Candidate, string) {
	if len(candidates) == 0 {
		// Nothing scored above the analyzer's floor. Fall back to the
		// highest-priority registered tool so routing still succeeds.
		return analyzer.Candidate{Tool: r.highestPriorityTool()}, "no scored candidates, highest-priority fallback"
	}

	var passing []analyzer.Candidate
	for _, c := range candidates {
		if c.Confidence >= minConf {
			passing = append(passing, c)
		}
	}

	if len(passing) == 0 {
		// Candidates are sorted descending, so the first is the best.
		return candidates[0], "no candidate met the threshold, best available selected"
	}

	if preferred != "" {
		lvl, ok := registry.ParseLevel(string(preferred))
		if ok {
			for _, c := range passing {
				if d := r.reg.Get(c.Tool); d != nil && d.Level == lvl {
					return c, "preferred thinking level matched"
				}
			}
		}
	}

	return passing[0], "highest-confidence candidate"
}

func (r *Router) highestPriorityTool() string {
	best, bestPriority := "", -1
	for _, d := range r.reg.All() {
		if d.Priority > bestPriority {
			best, bestPriority = d.Name, d.Priority
		}
	}
	return best
}

// buildParams derives the tool's parameters from the raw request. A bare
// string is wrapped into an object under the tool's main parameter name; an
// object passes through unmodified.
func (r *Router) buildParams(tool string, request any) map[string]any {
	switch req := request.(type) {
	case map[string]any:
		return req
	case string:
		return map[string]any{r.mainParam(tool): req}
	default:
		return map[string]any{r.mainParam(tool): req}
	}
}

func (r *Router) mainParam(tool string) string {
	if p, ok := r.cfg.MainParams[tool]; ok {
		return p
	}
	if r.cfg.DefaultMainParam != "" {
		return r.cfg.DefaultMainParam
	}
	return "query"
}
