package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	started      time.Time
	requestCount map[string]int64
	errorCount   map[string]int64
	latencyTotal map[string]time.Duration
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	UptimeSeconds int64            `json:"uptime_seconds"`
	Requests      map[string]int64 `json:"requests"`
	Errors        map[string]int64 `json:"errors"`
	AvgLatencyMs  map[string]int64 `json:"avg_latency_ms"`
	TotalRequests int64            `json:"total_requests"`
	TotalErrors   int64            `json:"total_errors"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		started:      time.Now(),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		latencyTotal: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latencyTotal[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Requests:     map[string]int64{},
		Errors:       map[string]int64{},
		AvgLatencyMs: map[string]int64{},
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap.UptimeSeconds = int64(time.Since(m.started).Seconds())
	for k, v := range m.requestCount {
		snap.Requests[k] = v
		snap.TotalRequests += v
		if v > 0 {
			snap.AvgLatencyMs[k] = m.latencyTotal[k].Milliseconds() / v
		}
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
		snap.TotalErrors += v
	}
	return snap
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
