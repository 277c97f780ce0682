// Package incorporation merges cached results from related tools into a
// tool's output after execution.
//
// Exactly one hop is supported: sources are the target's declared
// interactsWith set, and their own relations are never followed.
package incorporation

import (
	"context"
	"fmt"

	apperrors "github.com/mentat-ai/mentat/internal/errors"
	"github.com/mentat-ai/mentat/internal/interaction"
	"github.com/mentat-ai/mentat/internal/registry"
)

// ResultSource is the cache read contract: fetch a source tool's prior
// cached results. Satisfied by interaction.Client.
type ResultSource interface {
	ResultsFor(tool string) []*interaction.ToolResult
}

// SourceOutcome records what happened with one candidate source.
type SourceOutcome struct {
	Source            string `json:"source"`
	Success           bool   `json:"success"`
	IncorporatedCount int    `json:"incorporatedCount"`

	// Merged is the merge function's output, or nil under the
	// trivial-accept default.
	Merged any `json:"merged,omitempty"`
}

// BatchResult summarizes one incorporation pass over a target's sources.
type BatchResult struct {
	Target            string          `json:"target"`
	Outcomes          []SourceOutcome `json:"outcomes"`
	Skipped           []string        `json:"skipped,omitempty"`
	Errors            []string        `json:"errors,omitempty"`
	IncorporatedCount int             `json:"incorporatedCount"`
}

// Options tune one incorporation pass.
type Options struct {
	// Sources restricts the candidate set. Nil means the target's whole
	// interactsWith set.
	Sources []string
}

// Processor runs post-call incorporation.
type Processor struct {
	reg    *registry.Registry
	source ResultSource
}

// New creates a processor reading cached results from source.
func New(reg *registry.Registry, source ResultSource) *Processor {
	return &Processor{reg: reg, source: source}
}

// Process incorporates cached results from every candidate source into
// targetResult. One candidate's failure never aborts the batch; failures
// are collected in the returned Errors list.
func (p *Processor) Process(ctx context.Context, targetTool string, targetResult any, opts Options) (*BatchResult, error) {
	target := p.reg.Get(targetTool)
	if target == nil {
		return nil, apperrors.NotFound(apperrors.CodeToolNotFound, "incorporation target not registered: "+targetTool)
	}

	batch := &BatchResult{Target: targetTool}

	for _, src := range candidates(target, opts.Sources) {
		if err := ctx.Err(); err != nil {
			batch.Errors = append(batch.Errors, err.Error())
			break
		}

		results := p.source.ResultsFor(src)
		if len(results) == 0 {
			batch.Skipped = append(batch.Skipped, src)
			continue
		}

		rule := p.reg.RuleFor(src, targetTool)
		results = filterByConditions(results, rule)
		if len(results) == 0 {
			batch.Skipped = append(batch.Skipped, src)
			continue
		}

		outcome, err := mergeSource(src, results, targetResult, rule)
		if err != nil {
			batch.Errors = append(batch.Errors, fmt.Sprintf("%s: %v", src, err))
			continue
		}
		batch.Outcomes = append(batch.Outcomes, outcome)
		batch.IncorporatedCount += outcome.IncorporatedCount
	}

	return batch, nil
}

// candidates intersects the target's interactsWith set with an optional
// allow-list, preserving declared order.
func candidates(target *registry.ToolDescriptor, allow []string) []string {
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

// filterByConditions keeps the cached results every rule condition accepts.
func filterByConditions(results []*interaction.ToolResult, rule *registry.IncorporationRule) []*interaction.ToolResult {
	if rule == nil || len(rule.Conditions) == 0 {
		return results
	}
	var out []*interaction.ToolResult
	for _, res := range results {
		ok := true
		for _, cond := range rule.Conditions {
			if cond != nil && !cond(res.Data) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, res)
		}
	}
	return out
}

// mergeSource applies the pair's merge function, or accepts trivially when
// the relationship has no custom rule. A panicking merge is reported as an
// error, not propagated.
func mergeSource(src string, results []*interaction.ToolResult, targetResult any, rule *registry.IncorporationRule) (out SourceOutcome, err error) {
	if rule == nil || rule.Merge == nil {
		// Declared relationship with no merge implementation: accept so
		// the pipeline is never blocked.
		return SourceOutcome{
			Source:            src,
			Success:           true,
			IncorporatedCount: len(results),
		}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("merge panicked: %v", r)
		}
	}()

	data := make([]any, len(results))
	for i, res := range results {
		data[i] = res.Data
	}
	merged, err := rule.Merge(data, targetResult)
	if err != nil {
		return SourceOutcome{}, err
	}
	return SourceOutcome{
		Source:            src,
		Success:           true,
		IncorporatedCount: len(results),
		Merged:            merged,
	}, nil
}
