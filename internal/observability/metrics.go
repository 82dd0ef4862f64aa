package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for outbound API calls.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	failureCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		failureCount: make(map[string]int64),
	}
}

// RecordCall increments counters for a completed backend call.
func (m *Metrics) RecordCall(operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := callKey(operation, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordFailure increments failure counters keyed by error kind.
func (m *Metrics) RecordFailure(operation, kind string) {
	if m == nil {
		return
	}
	key := operation + "|" + kind
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureCount[key]++
}

// CallCount returns the number of recorded calls for an operation/status pair.
func (m *Metrics) CallCount(operation string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount[callKey(operation, status)]
}

func callKey(operation string, status int) string {
	return operation + "|" + strconv.Itoa(status)
}
