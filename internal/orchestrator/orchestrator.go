// Package orchestrator runs bounded multi-step thinking sessions: route the
// request, call the chosen tool, incorporate related results, and repeat
// until a stop signal or the step budget.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/mentat-ai/mentat/internal/config"
	apperrors "github.com/mentat-ai/mentat/internal/errors"
	"github.com/mentat-ai/mentat/internal/incorporation"
	"github.com/mentat-ai/mentat/internal/interaction"
	"github.com/mentat-ai/mentat/internal/registry"
	"github.com/mentat-ai/mentat/internal/router"
	"github.com/mentat-ai/mentat/internal/stats"
)

// completionKey is the output field a non-integrated tool uses to signal
// that the session should stop.
const completionKey = "complete"

// Options tune one ProcessRequest call.
type Options struct {
	// SessionID resumes an existing active session, or fixes the id of a
	// new one. Empty generates a fresh id.
	SessionID string

	// MaxSteps overrides the configured step budget.
	MaxSteps int

	// Timeout bounds the caller's wait. The in-flight step work is not
	// preempted; only the wait is abandoned.
	Timeout time.Duration

	// ForceTool routes the first step to a fixed tool.
	ForceTool string

	// PreferredLevel steers routing toward a thinking level.
	PreferredLevel registry.Level

	// DisableIncorporation skips post-call incorporation.
	DisableIncorporation bool

	// Context is attached to the session and passed to the analyzer.
	Context map[string]any
}

// Orchestrator drives thinking sessions over the router, interaction layer,
// and incorporation system.
type Orchestrator struct {
	reg    *registry.Registry
	router *router.Router
	client *interaction.Client
	proc   *incorporation.Processor
	stats  *stats.Collector
	cfg    config.SessionConfig
	hooks  []Hook

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates an orchestrator. Hooks observe every session it runs.
func New(reg *registry.Registry, rt *router.Router, client *interaction.Client, proc *incorporation.Processor, collector *stats.Collector, cfg config.SessionConfig, hooks ...Hook) *Orchestrator {
	return &Orchestrator{
		reg:      reg,
		router:   rt,
		client:   client,
		proc:     proc,
		stats:    collector,
		cfg:      cfg,
		hooks:    hooks,
		sessions: make(map[string]*Session),
	}
}

// ProcessRequest runs a thinking session for a request and returns the
// session in its terminal state. Step failures and timeouts are returned as
// errors with the session already marked accordingly.
func (o *Orchestrator) ProcessRequest(ctx context.Context, request any, opts Options) (*Session, error) {
	s, err := o.obtainSession(request, opts)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 && o.cfg.TimeoutMillis > 0 {
		timeout = time.Duration(o.cfg.TimeoutMillis) * time.Millisecond
	}
	if timeout <= 0 {
		return s, o.run(ctx, s, request, opts)
	}

	// Race the loop against the timer. Only the wait is abandoned on
	// timeout; the loop keeps going and may still mutate the session.
	done := make(chan error, 1)
	go func() {
		done <- o.run(ctx, s, request, opts)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return s, err
	case <-timer.C:
		terr := apperrors.Timeout(apperrors.CodeSessionTimeout, "session timed out after "+timeout.String())
		s.Status = StatusError
		s.Error = terr.Error()
		s.UpdatedAt = time.Now()
		o.emitError(s, terr)
		return s, terr
	}
}

// GetSession returns a session by id.
func (o *Orchestrator) GetSession(id string) (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeSessionNotFound, "session not found: "+id)
	}
	return s, nil
}

// DeleteSession removes a session. Sessions are never evicted otherwise.
func (o *Orchestrator) DeleteSession(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.sessions[id]; !ok {
		return apperrors.NotFound(apperrors.CodeSessionNotFound, "session not found: "+id)
	}
	delete(o.sessions, id)
	return nil
}

// Sessions returns every tracked session id.
func (o *Orchestrator) Sessions() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]string, 0, len(o.sessions))
	for id := range o.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (o *Orchestrator) obtainSession(request any, opts Options) (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if opts.SessionID != "" {
		if existing, ok := o.sessions[opts.SessionID]; ok {
			if existing.terminal() {
				return nil, apperrors.Validation(apperrors.CodeSessionTerminal,
					"session "+opts.SessionID+" is "+string(existing.Status)+" and cannot be reused")
			}
			return existing, nil
		}
	}

	s := newSession(opts.SessionID, request, opts.Context)
	o.sessions[s.ID] = s
	return s, nil
}

// run executes the bounded step loop until a stop signal, the step budget,
// or a failure.
func (o *Orchestrator) run(ctx context.Context, s *Session, request any, opts Options) error {
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = o.cfg.MaxSteps
	}

	current := request
	var lastOutput any

	for step := 0; step < maxSteps; step++ {
		for _, h := range o.hooks {
			h.OnStepStart(s, step)
		}

		routeOpts := router.Options{
			PreferredLevel: opts.PreferredLevel,
			Context:        o.routeContext(opts.Context),
		}
		if step == 0 {
			routeOpts.ForceTool = opts.ForceTool
		}

		decision, err := o.router.Route(current, routeOpts)
		if err != nil {
			return o.failStep(s, HistoryItem{Timestamp: time.Now()}, err)
		}
		for _, h := range o.hooks {
			h.OnRouted(s, decision)
		}

		item := HistoryItem{
			Timestamp:    time.Now(),
			Tool:         decision.Tool,
			Input:        decision.Parameters,
			Confidence:   decision.Confidence,
			Alternatives: decision.Alternatives,
		}

		res := o.client.CallTool(ctx, decision.Tool, decision.Parameters, nil)
		for _, h := range o.hooks {
			h.OnToolResult(s, res)
		}
		if !res.Success {
			o.stats.RecordError(decision.Tool)
			item.Error = res.Error
			return o.failStep(s, item, apperrors.ToolExecution(apperrors.CodeStepFailed, res.Error))
		}
		o.stats.RecordCall(decision.Tool, res.ExecutionTime)

		output := res.Data
		if !opts.DisableIncorporation {
			batch, perr := o.proc.Process(ctx, decision.Tool, output, incorporation.Options{})
			if perr != nil {
				item.Error = perr.Error()
				return o.failStep(s, item, perr)
			}
			item.Incorporation = batch
			// the last successful merge wins as the working output
			for _, oc := range batch.Outcomes {
				if oc.Success && oc.Merged != nil {
					output = oc.Merged
				}
			}
			for _, h := range o.hooks {
				h.OnIncorporation(s, batch)
			}
		}

		item.Output = output
		s.History = append(s.History, item)
		s.UpdatedAt = time.Now()
		lastOutput = output

		if stop := o.shouldStop(decision, output); stop {
			return o.complete(s, output)
		}
		current = output
	}

	// Budget exhausted without a stop signal: the last output is the
	// session result, with no distinct status.
	return o.complete(s, lastOutput)
}

// shouldStop evaluates the stop condition: an integrated-level tool always
// stops; otherwise an explicit completion flag on the output decides;
// otherwise the loop continues.
func (o *Orchestrator) shouldStop(decision *router.Decision, output any) bool {
	if decision.Descriptor != nil && decision.Descriptor.Level == registry.LevelIntegrated {
		return true
	}
	if m, ok := output.(map[string]any); ok {
		if v, ok := m[completionKey].(bool); ok {
			return v
		}
	}
	return false
}

func (o *Orchestrator) complete(s *Session, result any) error {
	s.Result = result
	s.Status = StatusCompleted
	s.UpdatedAt = time.Now()
	for _, h := range o.hooks {
		h.OnDone(s)
	}
	return nil
}

// failStep records the failed step on the session and re-raises the error.
func (o *Orchestrator) failStep(s *Session, item HistoryItem, err error) error {
	if item.Error == "" {
		item.Error = err.Error()
	}
	s.History = append(s.History, item)
	s.Status = StatusError
	s.Error = err.Error()
	s.UpdatedAt = time.Now()
	o.emitError(s, err)
	return err
}

func (o *Orchestrator) emitError(s *Session, err error) {
	for _, h := range o.hooks {
		h.OnError(s, err)
	}
}

// routeContext merges the caller's context with the live recency signal.
func (o *Orchestrator) routeContext(callerCtx map[string]any) map[string]any {
	out := make(map[string]any, len(callerCtx)+1)
	for k, v := range callerCtx {
		out[k] = v
	}
	if _, ok := out["recentToolUsage"]; !ok && o.stats != nil {
		out["recentToolUsage"] = o.stats.ToolUsage()
	}
	return out
}
