// Package stats provides runtime statistics tracking for Mentat.
package stats

import (
	"runtime"
	"sync"
	"time"
)

// Collector tracks per-tool usage alongside process-level metrics. Tool
// usage counts feed the routing recency bonus, so RecordCall must be cheap.
type Collector struct {
	mu            sync.Mutex
	startTime     time.Time
	requestCount  int64
	errorCount    int64
	totalDuration int64 // nanoseconds
	toolCalls     map[string]int
	toolErrors    map[string]int
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{
		startTime:  time.Now(),
		toolCalls:  make(map[string]int),
		toolErrors: make(map[string]int),
	}
}

// Stats represents collector state at a point in time.
type Stats struct {
	Goroutines   int     `json:"goroutines"`
	HeapAllocMB  float64 `json:"heap_alloc_mb"`
	Uptime       string  `json:"uptime"`
	RequestCount int64   `json:"request_count"`
	ErrorCount   int64   `json:"error_count"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`

	// ToolCalls maps tool name to the number of successful calls.
	ToolCalls map[string]int `json:"tool_calls"`

	// ToolErrors maps tool name to the number of failed calls. Failures
	// never count toward ToolCalls, which feeds the routing recency bonus.
	ToolErrors map[string]int `json:"tool_errors"`
}

// RecordCall records a successful tool call.
func (c *Collector) RecordCall(tool string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestCount++
	c.totalDuration += duration.Nanoseconds()
	c.toolCalls[tool]++
}

// RecordError records a failed tool call.
func (c *Collector) RecordError(tool string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorCount++
	c.toolErrors[tool]++
}

// ToolUsage returns a copy of the per-tool call counts.
func (c *Collector) ToolUsage() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	usage := make(map[string]int, len(c.toolCalls))
	for name, n := range c.toolCalls {
		usage[name] = n
	}
	return usage
}

// Uptime returns how long the collector has been running.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// Snapshot returns current statistics.
func (c *Collector) Snapshot() *Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.mu.Lock()
	defer c.mu.Unlock()

	avgLatency := float64(0)
	if c.requestCount > 0 {
		avgLatency = float64(c.totalDuration) / float64(c.requestCount) / 1e6
	}
	usage := make(map[string]int, len(c.toolCalls))
	for name, n := range c.toolCalls {
		usage[name] = n
	}
	failures := make(map[string]int, len(c.toolErrors))
	for name, n := range c.toolErrors {
		failures[name] = n
	}

	return &Stats{
		Goroutines:   runtime.NumGoroutine(),
		HeapAllocMB:  float64(m.HeapAlloc) / (1024 * 1024),
		Uptime:       time.Since(c.startTime).String(),
		RequestCount: c.requestCount,
		ErrorCount:   c.errorCount,
		AvgLatencyMs: avgLatency,
		ToolCalls:    usage,
		ToolErrors:   failures,
	}
}
