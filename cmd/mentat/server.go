package main

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mentat-ai/mentat/internal/interaction"
	"github.com/mentat-ai/mentat/internal/orchestrator"
	"github.com/mentat-ai/mentat/internal/registry"
	"github.com/mentat-ai/mentat/internal/router"
	"github.com/mentat-ai/mentat/pkg/protocol"
)

// server exposes the engine over MCP stdio.
type server struct {
	eng *engine
	mcp *mcp.Server
}

func newServer(eng *engine) *server {
	s := &server{eng: eng}

	impl := &mcp.Implementation{
		Name:    "mentat",
		Version: version,
	}
	s.mcp = mcp.NewServer(impl, nil)
	s.registerTools()
	return s
}

// Run serves MCP on stdio until the transport closes.
func (s *server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "think",
		Description: "Run a full multi-step thinking session: the request is routed to the best thinking tool at each step, related cached results are incorporated, and the loop stops at an integrated tool, an explicit completion flag, or the step budget.",
	}, s.handleThink)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "route_request",
		Description: "Analyze a request and return the routing decision without executing anything: selected tool, confidence, derived parameters, and ranked alternatives.",
	}, s.handleRoute)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "call_tool",
		Description: "Call one registered thinking tool directly with raw parameters, through the result cache.",
	}, s.handleCall)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_session",
		Description: "Fetch a thinking session by id, including its full step history.",
	}, s.handleGetSession)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_tools",
		Description: "List every registered thinking tool with its level, type, and priority.",
	}, s.handleListTools)

	// each built-in tool is also exposed directly
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mental_model",
		Description: "Apply a structured mental model to a question.",
	}, s.direct("mental_model", func(a mainArg) string { return a.Query }, "query"))
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "debugging_approach",
		Description: "Select a systematic debugging strategy for an issue.",
	}, s.direct("debugging_approach", func(a mainArg) string { return a.Issue }, "issue"))
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "brainstorming",
		Description: "Generate a spread of candidate ideas for a topic.",
	}, s.direct("brainstorming", func(a mainArg) string { return a.Topic }, "topic"))
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "decision_framework",
		Description: "Structure a decision into options, criteria, and a weighing procedure.",
	}, s.direct("decision_framework", func(a mainArg) string { return a.Decision }, "decision"))
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "creative_thinking",
		Description: "Reframe a prompt through fixed creative lenses.",
	}, s.direct("creative_thinking", func(a mainArg) string { return a.Prompt }, "prompt"))
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "sequential_thinking",
		Description: "Work through a thought as an explicit chain of steps.",
	}, s.direct("sequential_thinking", func(a mainArg) string { return a.Thought }, "thought"))
}

// ThinkArgs are the arguments of the think tool.
type ThinkArgs struct {
	Request        string `json:"request" jsonschema:"The request to think through"`
	MaxSteps       int    `json:"max_steps,omitempty" jsonschema:"Step budget override (default from config, 10)"`
	ForceTool      string `json:"force_tool,omitempty" jsonschema:"Route the first step to this tool regardless of analysis"`
	PreferredLevel string `json:"preferred_level,omitempty" jsonschema:"Prefer tools at this thinking level: foundation, specialized, or integrated"`
	SessionID      string `json:"session_id,omitempty" jsonschema:"Resume an existing active session or pin the new session's id"`
}

// ThinkResult is the structured output of think.
type ThinkResult struct {
	Session *protocol.SessionSummary `json:"session"`
	Steps   []StepSummary            `json:"steps"`
}

// StepSummary is one history item in compact form.
type StepSummary struct {
	Tool         string  `json:"tool"`
	Confidence   float64 `json:"confidence"`
	Incorporated int     `json:"incorporated,omitempty"`
	Error        string  `json:"error,omitempty"`
}

func (s *server) handleThink(ctx context.Context, _ *mcp.CallToolRequest, args ThinkArgs) (*mcp.CallToolResult, any, error) {
	if args.Request == "" {
		return nil, nil, fmt.Errorf("request must not be empty")
	}

	sess, err := s.eng.orch.ProcessRequest(ctx, args.Request, orchestrator.Options{
		SessionID:      args.SessionID,
		MaxSteps:       args.MaxSteps,
		ForceTool:      args.ForceTool,
		PreferredLevel: registry.Level(args.PreferredLevel),
	})
	if err != nil && sess == nil {
		return nil, nil, err
	}

	out := ThinkResult{Session: sess.Summary()}
	for _, item := range sess.History {
		step := StepSummary{
			Tool:       item.Tool,
			Confidence: item.Confidence,
			Error:      item.Error,
		}
		if item.Incorporation != nil {
			step.Incorporated = item.Incorporation.IncorporatedCount
		}
		out.Steps = append(out.Steps, step)
	}
	return nil, out, nil
}

// RouteArgs are the arguments of route_request.
type RouteArgs struct {
	Request        string `json:"request" jsonschema:"The request to analyze and route"`
	PreferredLevel string `json:"preferred_level,omitempty" jsonschema:"Prefer tools at this thinking level"`
}

func (s *server) handleRoute(_ context.Context, _ *mcp.CallToolRequest, args RouteArgs) (*mcp.CallToolResult, any, error) {
	if args.Request == "" {
		return nil, nil, fmt.Errorf("request must not be empty")
	}
	d, err := s.eng.router.Route(args.Request, router.Options{
		PreferredLevel: registry.Level(args.PreferredLevel),
	})
	if err != nil {
		return nil, nil, err
	}
	return nil, d, nil
}

// CallArgs are the arguments of call_tool.
type CallArgs struct {
	Tool    string         `json:"tool" jsonschema:"Name of the registered tool to call"`
	Params  map[string]any `json:"params,omitempty" jsonschema:"Raw tool parameters"`
	Query   string         `json:"query,omitempty" jsonschema:"Shortcut: a bare query wrapped under the tool's main parameter"`
	NoCache bool           `json:"no_cache,omitempty" jsonschema:"Bypass the result cache for this call"`
}

func (s *server) handleCall(ctx context.Context, _ *mcp.CallToolRequest, args CallArgs) (*mcp.CallToolResult, any, error) {
	params := args.Params
	if params == nil {
		params = map[string]any{s.eng.cfg.MainParam(args.Tool): args.Query}
	}
	res := s.eng.client.CallTool(ctx, args.Tool, params, &interaction.CallOptions{NoCache: args.NoCache})
	return nil, res.Response(), nil
}

// SessionArgs are the arguments of get_session.
type SessionArgs struct {
	ID string `json:"id" jsonschema:"The session id returned by think"`
}

func (s *server) handleGetSession(_ context.Context, _ *mcp.CallToolRequest, args SessionArgs) (*mcp.CallToolResult, any, error) {
	sess, err := s.eng.orch.GetSession(args.ID)
	if err != nil {
		return nil, nil, err
	}
	return nil, sess, nil
}

// ListToolsArgs are the arguments of list_tools.
type ListToolsArgs struct {
	Level string `json:"level,omitempty" jsonschema:"Filter by thinking level"`
	Tag   string `json:"tag,omitempty" jsonschema:"Filter by tag"`
}

// ToolInfo is one row of list_tools output.
type ToolInfo struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Level         string   `json:"level"`
	Type          string   `json:"type"`
	Priority      int      `json:"priority"`
	Tags          []string `json:"tags"`
	InteractsWith []string `json:"interacts_with,omitempty"`
}

func (s *server) handleListTools(_ context.Context, _ *mcp.CallToolRequest, args ListToolsArgs) (*mcp.CallToolResult, any, error) {
	f := registry.Filter{Level: registry.Level(args.Level)}
	if args.Tag != "" {
		f.Tags = []string{args.Tag}
	}

	var out []ToolInfo
	for _, d := range s.eng.reg.Search(f) {
		out = append(out, ToolInfo{
			Name:          d.Name,
			Description:   d.Description,
			Level:         string(d.Level),
			Type:          string(d.Type),
			Priority:      d.Priority,
			Tags:          d.Tags,
			InteractsWith: d.InteractsWith,
		})
	}
	return nil, out, nil
}

// mainArg carries the possible main parameters of the built-in tools; each
// direct handler reads exactly one of them.
type mainArg struct {
	Query    string `json:"query,omitempty" jsonschema:"The question to frame"`
	Issue    string `json:"issue,omitempty" jsonschema:"The problem to debug"`
	Topic    string `json:"topic,omitempty" jsonschema:"The topic to ideate on"`
	Decision string `json:"decision,omitempty" jsonschema:"The decision to structure"`
	Prompt   string `json:"prompt,omitempty" jsonschema:"The prompt to reframe"`
	Thought  string `json:"thought,omitempty" jsonschema:"The thought to chain through"`
}

// direct builds a handler that calls one built-in tool through the cache.
func (s *server) direct(tool string, pick func(mainArg) string, param string) func(context.Context, *mcp.CallToolRequest, mainArg) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, args mainArg) (*mcp.CallToolResult, any, error) {
		v := pick(args)
		if v == "" {
			return nil, nil, fmt.Errorf("tool %q requires the %q argument", tool, param)
		}
		res := s.eng.client.CallTool(ctx, tool, map[string]any{param: v}, nil)
		return nil, res.Response(), nil
	}
}
