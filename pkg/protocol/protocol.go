// Package protocol provides shared data structures used across mentat components.
// These types can be imported by external tool implementations and extensions.
package protocol

import "context"

// Executor is the contract between the core and concrete tool implementations:
// given a tool name and parameters, produce a result payload or report failure.
// The core never depends on anything else about a tool's internals.
type Executor interface {
	Execute(ctx context.Context, name string, params map[string]any) (any, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, name string, params map[string]any) (any, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, name string, params map[string]any) (any, error) {
	return f(ctx, name, params)
}

// ToolRequest represents an incoming request to execute a tool.
type ToolRequest struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// ToolResponse represents the outcome of a tool execution as seen by
// external callers.
type ToolResponse struct {
	Tool       string         `json:"tool"`
	Success    bool           `json:"success"`
	Data       any            `json:"data,omitempty"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// SessionSummary is the compact view of a thinking session returned to
// external callers.
type SessionSummary struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Steps     int    `json:"steps"`
	Result    any    `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}
