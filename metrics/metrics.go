// Package metrics defines a collector for the statistics of buffers and
// tasks.
//
// A *metrics.M tracks named integer metrics of three kinds: counters, which
// only grow; gauges, which go up and down (such as the number of tasks
// running); and maximum values (such as the high-water mark of a buffer).
// Names are chosen by the caller and not interpreted by the collector. One
// name may carry both a total and a maximum, as CountAndSetMax records.
package metrics

import "sync"

// An M collects metrics. A nil *M is valid, and discards all metrics. The
// methods of an *M are safe for concurrent use by multiple goroutines.
type M struct {
	mu   sync.Mutex
	vals map[string]*value
}

// A value is the state of one named metric.
type value struct {
	sum    int64 // counter or gauge
	max    int64
	hasSum bool
	hasMax bool
}

// New creates a new, empty metrics collector.
func New() *M { return &M{vals: make(map[string]*value)} }

// with calls f with the value named, creating it if needed, and holds the lock
// of m while f runs.
func (m *M) with(name string, f func(*value)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[name]
	if !ok {
		v = new(value)
		m.vals[name] = v
	}
	f(v)
}

func (v *value) add(n int64) { v.sum += n; v.hasSum = true }

func (v *value) setMax(n int64) {
	if !v.hasMax || n > v.max {
		v.max = n
	}
	v.hasMax = true
}

// Count adds n to the counter named.
func (m *M) Count(name string, n int64) {
	if m != nil {
		m.with(name, func(v *value) { v.add(n) })
	}
}

// SetMaxValue sets the maximum value named to the greater of n and its
// current value.
func (m *M) SetMaxValue(name string, n int64) {
	if m != nil {
		m.with(name, func(v *value) { v.setMax(n) })
	}
}

// CountAndSetMax adds n to the counter named, and records n in the maximum
// value of the same name, in a single step.
func (m *M) CountAndSetMax(name string, n int64) {
	if m != nil {
		m.with(name, func(v *value) { v.add(n); v.setMax(n) })
	}
}

// Gauge adds delta to the gauge named and returns its new value. A delta of
// zero reads the gauge. For a nil *M it returns 0.
func (m *M) Gauge(name string, delta int64) (cur int64) {
	if m != nil {
		m.with(name, func(v *value) { v.add(delta); cur = v.sum })
	}
	return cur
}

// Counter reports the current value of the counter or gauge named, or 0 if it
// is not defined.
func (m *M) Counter(name string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.vals[name]; ok {
		return v.sum
	}
	return 0
}

// Snapshot copies an atomic snapshot of the metrics into the provided non-nil
// maps: counters and gauges into counters, maximum values into maxValues.
func (m *M) Snapshot(counters, maxValues map[string]int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, v := range m.vals {
		if v.hasSum {
			counters[name] = v.sum
		}
		if v.hasMax {
			maxValues[name] = v.max
		}
	}
}
