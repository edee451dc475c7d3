package observability

import "sync"

// Metrics provides basic in-memory counters for interaction handling.
type Metrics struct {
	mu           sync.Mutex
	actionCount  map[string]int64
	failureCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		actionCount:  make(map[string]int64),
		failureCount: make(map[string]int64),
	}
}

// RecordAction increments the counter for a handled interaction.
func (m *Metrics) RecordAction(action string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actionCount[action]++
}

// RecordFailure increments the failure counter for an interaction and code.
func (m *Metrics) RecordFailure(action, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureCount[action+"|"+code]++
}

// Snapshot returns copies of the counters for the ops endpoint.
func (m *Metrics) Snapshot() (actions, failures map[string]int64) {
	actions = make(map[string]int64)
	failures = make(map[string]int64)
	if m == nil {
		return actions, failures
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.actionCount {
		actions[k] = v
	}
	for k, v := range m.failureCount {
		failures[k] = v
	}
	return actions, failures
}
