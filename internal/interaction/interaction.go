// Package interaction is the cached dispatch layer between the engine and
// concrete tool implementations.
//
// CallTool never returns an error: unknown tools, invalid parameters,
// executor failures, and panics all become a failed ToolResult. Callers
// branch on Success.
package interaction

import (
	"context"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/sync/singleflight"

	"github.com/mentat-ai/mentat/internal/config"
	"github.com/mentat-ai/mentat/internal/registry"
	"github.com/mentat-ai/mentat/pkg/protocol"
)

// ToolResult is the outcome of one tool call.
type ToolResult struct {
	Tool          string         `json:"tool"`
	Success       bool           `json:"success"`
	Data          any            `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ExecutionTime time.Duration  `json:"executionTime"`

	// IncorporationResults holds pre-call sub-results in pure mode,
	// keyed by source tool name.
	IncorporationResults map[string]any `json:"incorporationResults,omitempty"`
}

// Clone returns a shallow copy with its own metadata map, so cache hits can
// be annotated without mutating the stored entry. Pure-mode sub-results are
// per-call and never carried into a copy.
func (r *ToolResult) Clone() *ToolResult {
	out := *r
	out.Metadata = make(map[string]any, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		out.Metadata[k] = v
	}
	out.IncorporationResults = nil
	return &out
}

// Response converts the result to the external protocol shape.
func (r *ToolResult) Response() *protocol.ToolResponse {
	return &protocol.ToolResponse{
		Tool:       r.Tool,
		Success:    r.Success,
		Data:       r.Data,
		Error:      r.Error,
		Metadata:   r.Metadata,
		DurationMs: r.ExecutionTime.Milliseconds(),
	}
}

// CallOptions tune one CallTool invocation.
type CallOptions struct {
	// NoCache disables both the lookup and the store for this call.
	NoCache bool

	// TTL overrides the cache default for this call's stored result.
	TTL time.Duration

	// ValidateParams checks the parameters against the tool's parameter
	// schema before execution.
	ValidateParams bool

	// Incorporate requests pre-call incorporation of related tools.
	Incorporate *IncorporationRequest
}

// Client dispatches tool calls through an Executor with result caching.
type Client struct {
	reg   *registry.Registry
	exec  protocol.Executor
	cache *Cache
	group singleflight.Group
}

// NewClient creates a dispatch client.
func NewClient(reg *registry.Registry, exec protocol.Executor, cfg config.CacheConfig) *Client {
	ttl := time.Duration(cfg.TTLMillis) * time.Millisecond
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Client{
		reg:   reg,
		exec:  exec,
		cache: NewCache(ttl),
	}
}

// CallTool executes a tool and returns its result. Failures of any kind
// yield a ToolResult with Success=false rather than an error.
func (c *Client) CallTool(ctx context.Context, name string, params map[string]any, opts *CallOptions) *ToolResult {
	if opts == nil {
		opts = &CallOptions{}
	}

	d := c.reg.Get(name)
	if d == nil {
		return failedResult(name, fmt.Sprintf("unknown tool %q", name))
	}

	if opts.Incorporate != nil {
		enriched, incResults := c.incorporate(ctx, d, params, opts.Incorporate)
		res := c.dispatch(ctx, name, enriched, opts)
		if opts.Incorporate.Pure {
			// dispatch may have stored res; annotate a copy so the
			// cached entry never carries this call's sub-results.
			res = res.Clone()
			res.IncorporationResults = incResults
		}
		return res
	}

	return c.dispatch(ctx, name, params, opts)
}

// dispatch runs the cache lookup, optional validation, execution, and store.
func (c *Client) dispatch(ctx context.Context, name string, params map[string]any, opts *CallOptions) *ToolResult {
	key := CacheKey(name, params)

	if !opts.NoCache {
		if hit := c.cache.Get(key); hit != nil {
			out := hit.Clone()
			out.ExecutionTime = 0
			out.Metadata["fromCache"] = true
			return out
		}
	}

	if opts.ValidateParams {
		if msg := c.validateParams(name, params); msg != "" {
			return failedResult(name, msg)
		}
	}

	// Identical concurrent misses share one execution.
	v, _, _ := c.group.Do(key, func() (any, error) {
		return c.execute(ctx, name, params), nil
	})
	res := v.(*ToolResult)

	if res.Success && !opts.NoCache {
		c.cache.Put(key, name, res, opts.TTL)
	}
	return res
}

// execute invokes the executor, converting errors and panics into failed
// results.
func (c *Client) execute(ctx context.Context, name string, params map[string]any) (res *ToolResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = failedResult(name, fmt.Sprintf("tool %q panicked: %v", name, r))
			res.ExecutionTime = time.Since(start)
		}
	}()

	data, err := c.exec.Execute(ctx, name, params)
	elapsed := time.Since(start)
	if err != nil {
		out := failedResult(name, err.Error())
		out.ExecutionTime = elapsed
		return out
	}
	return &ToolResult{
		Tool:          name,
		Success:       true,
		Data:          data,
		Metadata:      map[string]any{},
		ExecutionTime: elapsed,
	}
}

// validateParams checks params against the tool's parameter schema and
// returns an error message, or "" when valid.
func (c *Client) validateParams(name string, params map[string]any) string {
	d := c.reg.Get(name)
	if d == nil || len(d.ParameterSchema) == 0 {
		return ""
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(d.ParameterSchema),
		gojsonschema.NewGoLoader(params),
	)
	if err != nil {
		return fmt.Sprintf("parameter validation failed: %v", err)
	}
	if !result.Valid() {
		return fmt.Sprintf("invalid parameters for tool %q: %v", name, result.Errors())
	}
	return ""
}

// ResultsFor exposes the cache read contract used by the incorporation
// system.
func (c *Client) ResultsFor(tool string) []*ToolResult {
	return c.cache.ResultsFor(tool)
}

// ClearCache drops all cached results.
func (c *Client) ClearCache() {
	c.cache.ClearAll()
}

// ClearToolCache drops cached results for one tool.
func (c *Client) ClearToolCache(tool string) {
	c.cache.ClearTool(tool)
}

func failedResult(name, msg string) *ToolResult {
	return &ToolResult{
		Tool:     name,
		Success:  false,
		Error:    msg,
		Metadata: map[string]any{},
	}
}
