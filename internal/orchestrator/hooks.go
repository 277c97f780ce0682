package orchestrator

import (
	"log"

	"github.com/mentat-ai/mentat/internal/incorporation"
	"github.com/mentat-ai/mentat/internal/interaction"
	"github.com/mentat-ai/mentat/internal/router"
)

// Hook observes session progress. Implementations must be fast; they run
// inline on the step loop.
type Hook interface {
	OnStepStart(s *Session, step int)
	OnRouted(s *Session, d *router.Decision)
	OnToolResult(s *Session, res *interaction.ToolResult)
	OnIncorporation(s *Session, batch *incorporation.BatchResult)
	OnDone(s *Session)
	OnError(s *Session, err error)
}

// NopHook ignores every event. Embed it to implement only the events you
// care about.
type NopHook struct{}

func (NopHook) OnStepStart(*Session, int)                            {}
func (NopHook) OnRouted(*Session, *router.Decision)                  {}
func (NopHook) OnToolResult(*Session, *interaction.ToolResult)       {}
func (NopHook) OnIncorporation(*Session, *incorporation.BatchResult) {}
func (NopHook) OnDone(*Session)                                      {}
func (NopHook) OnError(*Session, error)                              {}

// LoggerHook writes one line per event to a standard logger.
type LoggerHook struct {
	Logger *log.Logger
}

func (h *LoggerHook) OnStepStart(s *Session, step int) {
	h.Logger.Printf("session %s: step %d", s.ID, step+1)
}

func (h *LoggerHook) OnRouted(s *Session, d *router.Decision) {
	h.Logger.Printf("session %s: routed to %s (confidence %.2f): %s", s.ID, d.Tool, d.Confidence, d.Reason)
}

func (h *LoggerHook) OnToolResult(s *Session, res *interaction.ToolResult) {
	if res.Success {
		h.Logger.Printf("session %s: %s ok in %s", s.ID, res.Tool, res.ExecutionTime)
		return
	}
	h.Logger.Printf("session %s: %s failed: %s", s.ID, res.Tool, res.Error)
}

func (h *LoggerHook) OnIncorporation(s *Session, batch *incorporation.BatchResult) {
	h.Logger.Printf("session %s: incorporated %d result(s) into %s (%d skipped, %d error(s))",
		s.ID, batch.IncorporatedCount, batch.Target, len(batch.Skipped), len(batch.Errors))
}

func (h *LoggerHook) OnDone(s *Session) {
	h.Logger.Printf("session %s: %s after %d step(s)", s.ID, s.Status, len(s.History))
}

func (h *LoggerHook) OnError(s *Session, err error) {
	h.Logger.Printf("session %s: error: %v", s.ID, err)
}
