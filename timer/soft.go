package timer

import (
	"sync"
	"time"
)

// A Timer is a software timer created by a Service.
type Timer struct {
	svc        *Service
	name       string
	cb         Callback
	autoReload bool

	mu      sync.Mutex
	period  time.Duration
	id      any
	t       *time.Timer // nil while the timer is dormant
	gen     uint64      // bumped whenever t is replaced, to discard stale expiries
	when    time.Time
	deleted bool
}

// Name reports the name of t.
func (t *Timer) Name() string { return t.name }

// AutoReload reports whether t restarts itself after each expiry.
func (t *Timer) AutoReload() bool { return t.autoReload }

// Period reports the current period of t.
func (t *Timer) Period() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period
}

// ID reports the identifier value of t.
func (t *Timer) ID() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// SetID replaces the identifier value of t.
func (t *Timer) SetID(id any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.id = id
}

// IsActive reports whether t is running. A one-shot timer becomes dormant
// after it expires.
func (t *Timer) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.t != nil
}

// Expiry reports when t is next due to expire, or the zero time if t is
// dormant.
func (t *Timer) Expiry() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.t == nil {
		return time.Time{}
	}
	return t.when
}

// Start starts t, to expire one period from now. Starting a timer that is
// already running restarts its period.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkLocked(); err != nil {
		return err
	}
	t.armLocked(time.Now().Add(t.period))
	return nil
}

// Reset restarts the period of t. It is equivalent to Start.
func (t *Timer) Reset() error { return t.Start() }

// ChangePeriod sets the period of t to d and starts it, to expire d from now.
func (t *Timer) ChangePeriod(d time.Duration) error {
	if d <= 0 {
		return ErrPeriod
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkLocked(); err != nil {
		return err
	}
	t.period = d
	t.armLocked(time.Now().Add(d))
	return nil
}

// Stop makes t dormant. An expiry already queued for dispatch is discarded.
// Stopping a dormant timer has no effect.
func (t *Timer) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.deleted {
		return ErrDeleted
	}
	t.disarmLocked()
	return nil
}

// Delete stops t and releases it from its service. Further operations on t
// report ErrDeleted.
func (t *Timer) Delete() error {
	t.mu.Lock()
	if t.deleted {
		t.mu.Unlock()
		return ErrDeleted
	}
	t.deleted = true
	t.disarmLocked()
	t.mu.Unlock()
	t.svc.remove(t)
	return nil
}

func (t *Timer) checkLocked() error {
	if t.deleted {
		return ErrDeleted
	} else if t.svc.isClosed() {
		return ErrServiceClosed
	}
	return nil
}

// armLocked schedules t to expire at when. The caller must hold t.mu.
func (t *Timer) armLocked(when time.Time) {
	t.disarmLocked()
	gen := t.gen
	t.when = when
	t.t = time.AfterFunc(time.Until(when), func() { t.svc.post(expiry{t: t, gen: gen}) })
}

// disarmLocked stops the underlying timer, if any. The caller must hold t.mu.
func (t *Timer) disarmLocked() {
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
	t.gen++
}

// expired is called by the dispatch loop when t fires in generation gen. It
// returns the callback to run, or nil if the expiry is stale. An auto-reload
// timer is rearmed one period after its previous expiry, so that callbacks
// do not drift.
func (t *Timer) expired(gen uint64) Callback {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.deleted || gen != t.gen || t.t == nil {
		return nil
	}
	if t.autoReload {
		t.armLocked(t.when.Add(t.period))
	} else {
		t.t = nil
		t.gen++
	}
	return t.cb
}
