package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mentat-ai/mentat/internal/incorporation"
	"github.com/mentat-ai/mentat/internal/interaction"
	"github.com/mentat-ai/mentat/internal/orchestrator"
	"github.com/mentat-ai/mentat/internal/router"
)

var (
	traceBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	traceTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")).
			Bold(true)

	traceErr = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	traceDim = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// traceHook renders one bordered box per step to a writer, normally stderr
// so stdout stays clean for the MCP transport.
type traceHook struct {
	orchestrator.NopHook
	w io.Writer

	// lines accumulate per step and flush as one box
	lines []string
}

func newTraceHook(w io.Writer) *traceHook {
	return &traceHook{w: w}
}

func (h *traceHook) OnStepStart(s *orchestrator.Session, step int) {
	h.flush()
	h.lines = append(h.lines, traceTitle.Render(fmt.Sprintf("step %d", step+1))+traceDim.Render("  session "+s.ID))
}

func (h *traceHook) OnRouted(_ *orchestrator.Session, d *router.Decision) {
	h.lines = append(h.lines, fmt.Sprintf("route  %s  (%.2f)  %s", d.Tool, d.Confidence, traceDim.Render(d.Reason)))
	for _, alt := range d.Alternatives {
		h.lines = append(h.lines, traceDim.Render(fmt.Sprintf("  alt  %s (%.2f)", alt.Tool, alt.Confidence)))
	}
}

func (h *traceHook) OnToolResult(_ *orchestrator.Session, res *interaction.ToolResult) {
	if !res.Success {
		h.lines = append(h.lines, traceErr.Render("fail   "+res.Error))
		return
	}
	line := fmt.Sprintf("ok     %s in %s", res.Tool, res.ExecutionTime)
	if res.Metadata["fromCache"] == true {
		line += traceDim.Render("  (cached)")
	}
	h.lines = append(h.lines, line)
}

func (h *traceHook) OnIncorporation(_ *orchestrator.Session, batch *incorporation.BatchResult) {
	if batch.IncorporatedCount == 0 && len(batch.Errors) == 0 {
		return
	}
	h.lines = append(h.lines, fmt.Sprintf("merge  %d result(s), %d skipped", batch.IncorporatedCount, len(batch.Skipped)))
	for _, e := range batch.Errors {
		h.lines = append(h.lines, traceErr.Render("  merge error: "+e))
	}
}

func (h *traceHook) OnDone(s *orchestrator.Session) {
	h.lines = append(h.lines, traceTitle.Render(string(s.Status))+traceDim.Render(fmt.Sprintf("  %d step(s)", len(s.History))))
	h.flush()
}

func (h *traceHook) OnError(_ *orchestrator.Session, err error) {
	h.lines = append(h.lines, traceErr.Render("error  "+err.Error()))
	h.flush()
}

func (h *traceHook) flush() {
	if len(h.lines) == 0 {
		return
	}
	fmt.Fprintln(h.w, traceBox.Render(strings.Join(h.lines, "\n")))
	h.lines = h.lines[:0]
}
