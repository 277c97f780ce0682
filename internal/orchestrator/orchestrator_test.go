package orchestrator

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mentat-ai/mentat/internal/analyzer"
	"github.com/mentat-ai/mentat/internal/config"
	apperrors "github.com/mentat-ai/mentat/internal/errors"
	"github.com/mentat-ai/mentat/internal/incorporation"
	"github.com/mentat-ai/mentat/internal/interaction"
	"github.com/mentat-ai/mentat/internal/registry"
	"github.com/mentat-ai/mentat/internal/router"
	"github.com/mentat-ai/mentat/internal/stats"
	"github.com/mentat-ai/mentat/pkg/protocol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTool(name string, level registry.Level) *registry.ToolDescriptor {
	return &registry.ToolDescriptor{
		Name:        name,
		Description: "test tool " + name,
		Level:       level,
		Type:        registry.TypeAnalysis,
		ParameterSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"query": map[string]any{"type": "string"}},
		},
		ResultSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"answer": map[string]any{"type": "string"}},
		},
		Examples:  []registry.UsageExample{{Description: "x", Request: map[string]any{"query": "x"}}},
		Tags:      []string{"thinking"},
		Priority:  50,
		Version:   "1.0.0",
		UpdatedAt: "2024-06-01T00:00:00Z",
	}
}

func newOrchestrator(t *testing.T, exec protocol.Executor, tools ...*registry.ToolDescriptor) *Orchestrator {
	t.Helper()
	reg := registry.New()
	for _, d := range tools {
		require.NoError(t, reg.Register(d))
	}
	cfg := config.Default()
	an := analyzer.New(reg, cfg.Scoring)
	rt := router.New(reg, an, cfg.Routing)
	client := interaction.NewClient(reg, exec, cfg.Cache)
	proc := incorporation.New(reg, client)
	return New(reg, rt, client, proc, stats.NewCollector(), cfg.Session)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func testLogger(t *testing.T) *log.Logger {
	return log.New(testWriter{t: t}, "", 0)
}

func answer(data any) protocol.ExecutorFunc {
	return func(context.Context, string, map[string]any) (any, error) {
		return data, nil
	}
}

func TestSessionCompletesOnIntegratedTool(t *testing.T) {
	o := newOrchestrator(t,
		answer(map[string]any{"answer": "done"}),
		newTool("sequential_thinking", registry.LevelIntegrated),
	)

	s, err := o.ProcessRequest(context.Background(), "think through this step by step", Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s.Status)
	require.GreaterOrEqual(t, len(s.History), 1)
	assert.Equal(t, map[string]any{"answer": "done"}, s.Result)
	assert.Equal(t, "sequential_thinking", s.History[0].Tool)
	assert.Empty(t, s.Error)
}

func TestSessionCompletesOnCompletionFlag(t *testing.T) {
	o := newOrchestrator(t,
		answer(map[string]any{"answer": "ok", "complete": true}),
		newTool("mental_model", registry.LevelFoundation),
	)

	s, err := o.ProcessRequest(context.Background(), "use a mental model on this", Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Len(t, s.History, 1)
}

func TestSessionExhaustsStepBudget(t *testing.T) {
	// output carries no completion flag, so the loop never stops itself
	o := newOrchestrator(t,
		answer(map[string]any{"answer": "keep going"}),
		newTool("mental_model", registry.LevelFoundation),
	)

	s, err := o.ProcessRequest(context.Background(), "use a mental model on this", Options{MaxSteps: 3})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Len(t, s.History, 3)
	assert.Equal(t, map[string]any{"answer": "keep going"}, s.Result)
}

func TestStepFailureMarksSessionError(t *testing.T) {
	exec := protocol.ExecutorFunc(func(context.Context, string, map[string]any) (any, error) {
		return nil, errors.New("tool blew up")
	})
	o := newOrchestrator(t, exec, newTool("mental_model", registry.LevelFoundation))

	s, err := o.ProcessRequest(context.Background(), "use a mental model on this", Options{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryToolExecution))

	assert.Equal(t, StatusError, s.Status)
	assert.NotEmpty(t, s.Error)
	require.NotEmpty(t, s.History)
	assert.Contains(t, s.History[len(s.History)-1].Error, "tool blew up")
}

func TestTerminalSessionCannotBeReused(t *testing.T) {
	o := newOrchestrator(t,
		answer(map[string]any{"complete": true}),
		newTool("mental_model", registry.LevelFoundation),
	)

	s, err := o.ProcessRequest(context.Background(), "first run", Options{})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, s.Status)

	_, err = o.ProcessRequest(context.Background(), "second run", Options{SessionID: s.ID})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryValidation))
}

func TestTimeoutAbandonsWait(t *testing.T) {
	release := make(chan struct{})
	exec := protocol.ExecutorFunc(func(context.Context, string, map[string]any) (any, error) {
		<-release
		return map[string]any{"complete": true}, nil
	})
	o := newOrchestrator(t, exec, newTool("mental_model", registry.LevelFoundation))

	start := time.Now()
	s, err := o.ProcessRequest(context.Background(), "slow request", Options{Timeout: 20 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryTimeout))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, StatusError, s.Status)

	// the step work is not preempted; let it finish before the leak check
	close(release)
	time.Sleep(50 * time.Millisecond)
}

func TestForceToolRoutesFirstStep(t *testing.T) {
	o := newOrchestrator(t,
		answer(map[string]any{"complete": true}),
		newTool("brainstorming", registry.LevelFoundation),
		newTool("mental_model", registry.LevelFoundation),
	)

	s, err := o.ProcessRequest(context.Background(), "whatever", Options{ForceTool: "brainstorming"})
	require.NoError(t, err)
	require.NotEmpty(t, s.History)
	assert.Equal(t, "brainstorming", s.History[0].Tool)
	assert.Equal(t, 1.0, s.History[0].Confidence)
}

func TestForcedUnknownToolFailsAtExecution(t *testing.T) {
	o := newOrchestrator(t,
		answer(nil),
		newTool("mental_model", registry.LevelFoundation),
	)

	s, err := o.ProcessRequest(context.Background(), "whatever", Options{ForceTool: "ghost"})
	require.Error(t, err)
	assert.Equal(t, StatusError, s.Status)
	assert.Contains(t, s.Error, "unknown tool")
}

func TestGetAndDeleteSession(t *testing.T) {
	o := newOrchestrator(t,
		answer(map[string]any{"complete": true}),
		newTool("mental_model", registry.LevelFoundation),
	)

	s, err := o.ProcessRequest(context.Background(), "run", Options{})
	require.NoError(t, err)

	got, err := o.GetSession(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	require.NoError(t, o.DeleteSession(s.ID))
	_, err = o.GetSession(s.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryNotFound))

	require.Error(t, o.DeleteSession(s.ID))
}

func TestIncorporationFoldsMergedOutput(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(newTool("helper", registry.LevelFoundation)))
	require.NoError(t, reg.Register(newTool("finisher", registry.LevelIntegrated)))
	require.NoError(t, reg.RegisterIncorporationRule("helper", "finisher", &registry.IncorporationRule{
		Merge: func(sourceResults []any, targetResult any) (any, error) {
			return map[string]any{"merged": true, "base": targetResult}, nil
		},
	}))

	exec := protocol.ExecutorFunc(func(_ context.Context, name string, _ map[string]any) (any, error) {
		return map[string]any{"from": name}, nil
	})
	cfg := config.Default()
	an := analyzer.New(reg, cfg.Scoring)
	rt := router.New(reg, an, cfg.Routing)
	client := interaction.NewClient(reg, exec, cfg.Cache)
	proc := incorporation.New(reg, client)
	o := New(reg, rt, client, proc, stats.NewCollector(), cfg.Session)

	// prime the cache with a helper result
	res := client.CallTool(context.Background(), "helper", map[string]any{"query": "pre"}, nil)
	require.True(t, res.Success)

	s, err := o.ProcessRequest(context.Background(), "finish it", Options{ForceTool: "finisher"})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, s.Status)

	merged, ok := s.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, merged["merged"])
	require.NotNil(t, s.History[0].Incorporation)
	assert.Equal(t, 1, s.History[0].Incorporation.IncorporatedCount)
}

func TestSessionSummary(t *testing.T) {
	o := newOrchestrator(t,
		answer(map[string]any{"complete": true}),
		newTool("mental_model", registry.LevelFoundation),
	)

	s, err := o.ProcessRequest(context.Background(), "run", Options{})
	require.NoError(t, err)

	sum := s.Summary()
	assert.Equal(t, s.ID, sum.ID)
	assert.Equal(t, "completed", sum.Status)
	assert.Equal(t, len(s.History), sum.Steps)
}

func TestLoggerHookDoesNotPanic(t *testing.T) {
	o := newOrchestrator(t,
		answer(map[string]any{"complete": true}),
		newTool("mental_model", registry.LevelFoundation),
	)
	o.hooks = append(o.hooks, &LoggerHook{Logger: testLogger(t)})

	_, err := o.ProcessRequest(context.Background(), "run with logging", Options{})
	require.NoError(t, err)
}
