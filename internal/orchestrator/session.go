package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"github.com/mentat-ai/mentat/internal/incorporation"
	"github.com/mentat-ai/mentat/internal/router"
	"github.com/mentat-ai/mentat/pkg/protocol"
)

// Status is a session's lifecycle state. Completed and error are terminal:
// a terminal session is never mutated again and reusing its id is an error.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// HistoryItem is the full audit record of one thinking step.
type HistoryItem struct {
	Timestamp     time.Time                    `json:"timestamp"`
	Tool          string                       `json:"tool"`
	Input         map[string]any               `json:"input"`
	Output        any                          `json:"output,omitempty"`
	Confidence    float64                      `json:"confidence"`
	Alternatives  []router.Alternative         `json:"alternatives,omitempty"`
	Incorporation *incorporation.BatchResult   `json:"incorporation,omitempty"`
	Error         string                       `json:"error,omitempty"`
}

// Session tracks one thinking process from request to terminal state.
type Session struct {
	ID             string         `json:"id"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	InitialRequest any            `json:"initialRequest"`
	History        []HistoryItem  `json:"history"`
	Context        map[string]any `json:"context,omitempty"`
	Status         Status         `json:"status"`
	Result         any            `json:"result,omitempty"`
	Error          string         `json:"error,omitempty"`
}

func newSession(id string, request any, reqContext map[string]any) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	return &Session{
		ID:             id,
		CreatedAt:      now,
		UpdatedAt:      now,
		InitialRequest: request,
		Context:        reqContext,
		Status:         StatusActive,
	}
}

func (s *Session) terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusError
}

// Summary converts the session to the compact external view.
func (s *Session) Summary() *protocol.SessionSummary {
	return &protocol.SessionSummary{
		ID:        s.ID,
		Status:    string(s.Status),
		Steps:     len(s.History),
		Result:    s.Result,
		Error:     s.Error,
		CreatedAt: s.CreatedAt.UnixMilli(),
		UpdatedAt: s.UpdatedAt.UnixMilli(),
	}
}
