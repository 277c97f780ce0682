package interaction

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mentat-ai/mentat/internal/registry"
)

// Mode selects how related tools are invoked before the target call.
type Mode string

const (
	// ModeSequential invokes sources one after another, each seeing the
	// progressively enriched parameters.
	ModeSequential Mode = "sequential"

	// ModeParallel fires all sources concurrently and joins them before
	// the target call. Merge order follows the candidate list's declared
	// order, not completion order.
	ModeParallel Mode = "parallel"

	// ModeConditional invokes each source only if its predicate holds.
	ModeConditional Mode = "conditional"
)

// Predicate gates one source tool in conditional mode. It sees the
// incorporation context and the current outgoing parameters.
type Predicate func(incContext map[string]any, params map[string]any) bool

// IncorporationRequest asks for pre-call incorporation of related tools.
type IncorporationRequest struct {
	// Sources is an allow-list intersected with the target's declared
	// interactsWith set. Nil means the whole set.
	Sources []string

	// Mode defaults to sequential.
	Mode Mode

	// Pure returns sub-results separately instead of merging them into
	// the outgoing parameters.
	Pure bool

	// Conditions maps source tool name to its gate, used in conditional
	// mode. A source with no predicate is always invoked.
	Conditions map[string]Predicate

	// Context is visible to predicates.
	Context map[string]any
}

// incorporate runs related tools before the target call. It returns the
// outgoing parameters (enriched unless pure) and, in pure mode, the
// sub-results keyed by source.
func (c *Client) incorporate(ctx context.Context, target *registry.ToolDescriptor, params map[string]any, req *IncorporationRequest) (map[string]any, map[string]any) {
	candidates := candidateSources(target, req.Sources)
	if len(candidates) == 0 {
		return params, nil
	}

	switch req.Mode {
	case ModeParallel:
		return c.incorporateParallel(ctx, candidates, params, req)
	case ModeConditional:
		return c.incorporateSequential(ctx, candidates, params, req, true)
	default:
		return c.incorporateSequential(ctx, candidates, params, req, false)
	}
}

// candidateSources intersects the target's interactsWith set with the
// caller's allow-list, preserving the declared order.
func candidateSources(target *registry.ToolDescriptor, allow []string) []string {
	if allow == nil {
		return target.InteractsWith
	}
	allowed := make(map[string]bool, len(allow))
	for _, name := range allow {
		allowed[name] = true
	}
	var out []string
	for _, name := range target.InteractsWith {
		if allowed[name] {
			out = append(out, name)
		}
	}
	return out
}

func (c *Client) incorporateSequential(ctx context.Context, candidates []string, params map[string]any, req *IncorporationRequest, gated bool) (map[string]any, map[string]any) {
	out := params
	pureResults := map[string]any{}

	for _, src := range candidates {
		if gated {
			if pred, ok := req.Conditions[src]; ok && pred != nil && !pred(req.Context, out) {
				continue
			}
		}
		res := c.CallTool(ctx, src, out, nil)
		if !res.Success {
			continue
		}
		if req.Pure {
			pureResults[src] = res.Data
		} else {
			out = withEnrichment(out, src, res.Data)
		}
	}

	if req.Pure {
		return params, pureResults
	}
	return out, nil
}

func (c *Client) incorporateParallel(ctx context.Context, candidates []string, params map[string]any, req *IncorporationRequest) (map[string]any, map[string]any) {
	results := make([]*ToolResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range candidates {
		g.Go(func() error {
			results[i] = c.CallTool(gctx, src, params, nil)
			return nil
		})
	}
	g.Wait()

	// merge in declared order, independent of completion order
	out := params
	pureResults := map[string]any{}
	for i, src := range candidates {
		res := results[i]
		if res == nil || !res.Success {
			continue
		}
		if req.Pure {
			pureResults[src] = res.Data
		} else {
			out = withEnrichment(out, src, res.Data)
		}
	}

	if req.Pure {
		return params, pureResults
	}
	return out, nil
}

// withEnrichment copies params and adds one sub-result under the
// "enrichments" map, keyed by source tool. The input map is never mutated.
func withEnrichment(params map[string]any, source string, data any) map[string]any {
	out := make(map[string]any, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	enrichments := map[string]any{}
	if prev, ok := out["enrichments"].(map[string]any); ok {
		for k, v := range prev {
			enrichments[k] = v
		}
	}
	enrichments[source] = data
	out["enrichments"] = enrichments
	return out
}
