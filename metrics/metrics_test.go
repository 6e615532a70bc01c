package metrics_test

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/taskbuf/handoff/metrics"
)

func TestNilCollector(t *testing.T) {
	var m *metrics.M

	// None of these should panic.
	m.Count("x", 1)
	m.SetMaxValue("x", 2)
	m.CountAndSetMax("x", 3)
	if got := m.Gauge("g", 1); got != 0 {
		t.Errorf("Gauge on nil: got %d, want 0", got)
	}
	if got := m.Counter("x"); got != 0 {
		t.Errorf("Counter on nil: got %d, want 0", got)
	}
	m.Snapshot(map[string]int64{}, map[string]int64{})
}

func TestSnapshot(t *testing.T) {
	m := metrics.New()

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.CountAndSetMax("bytes_sent", int64(i))
			m.Count("sends", 1)
			m.Gauge("tasks_active", 1)
		}()
	}
	wg.Wait()
	m.Gauge("tasks_active", -4)
	m.SetMaxValue("used_bytes", 12)
	m.SetMaxValue("used_bytes", 7)

	counters := make(map[string]int64)
	maxValues := make(map[string]int64)
	m.Snapshot(counters, maxValues)

	if diff := cmp.Diff(map[string]int64{
		"bytes_sent":   55,
		"sends":        10,
		"tasks_active": 6,
	}, counters); diff != "" {
		t.Errorf("Counters (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int64{
		"bytes_sent": 10,
		"used_bytes": 12,
	}, maxValues); diff != "" {
		t.Errorf("Max values (-want, +got):\n%s", diff)
	}
	if got := m.Counter("sends"); got != 10 {
		t.Errorf("Counter(sends): got %d, want 10", got)
	}
}
