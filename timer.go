// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctx

import (
	"sync"
	"time"

	"code.hybscloud.com/atomix"
)

// TimerEntry is one scheduled one-shot fire.
type TimerEntry interface {
	// Fired reports whether the entry's instant has been reached.
	Fired() bool
}

// Timer is the external one-shot timer collaborator shared by deadline
// nodes. Schedule registers a fire at or after the given instant and
// invokes wake once when it fires; it fails fast when the instant
// cannot be scheduled. Cancel releases an entry so it never fires.
// Now anchors relative timeouts, letting a substituted service supply
// its own clock.
type Timer interface {
	Now() time.Time
	Schedule(at time.Time, wake func()) (TimerEntry, error)
	Cancel(TimerEntry)
}

// timerKey is the internal chain entry under which WithTimer attaches
// a timer service.
type timerKey struct{}

// WithTimer returns a child of parent whose descendant deadline nodes
// schedule through tm instead of the default runtime timer. The service
// travels with the chain like any other request-scoped value, so there
// is no hidden global to swap.
func WithTimer(parent Context, tm Timer) Context {
	return WithKeyed(parent, timerKey{}, tm)
}

// timerFor returns the nearest attached timer service, else the default.
func timerFor(c Context) Timer {
	if tm, ok := Keyed[timerKey, Timer](c, timerKey{}); ok {
		return tm
	}
	return monotonicTimer{}
}

// monotonicTimer is the default timer service, backed by the runtime
// timer via time.AfterFunc. Instants not after now yield a pre-fired
// entry, so already-passed deadlines resolve on first poll instead of
// racing an immediate fire.
type monotonicTimer struct{}

type monotonicEntry struct {
	fired atomix.Uint32
	timer *time.Timer
}

func (e *monotonicEntry) Fired() bool { return e.fired.Load() != 0 }

func (monotonicTimer) Now() time.Time { return time.Now() }

func (monotonicTimer) Schedule(at time.Time, wake func()) (TimerEntry, error) {
	e := &monotonicEntry{}
	d := time.Until(at)
	if d <= 0 {
		e.fired.Add(1)
		return e, nil
	}
	e.timer = time.AfterFunc(d, func() {
		e.fired.Add(1)
		wake()
	})
	return e, nil
}

func (monotonicTimer) Cancel(entry TimerEntry) {
	e, ok := entry.(*monotonicEntry)
	if !ok || e.timer == nil {
		return
	}
	e.timer.Stop()
}

// ManualTimer is a deterministic timer service for tests: its clock
// moves only via Set or Advance. A positive capacity bounds the number
// of live entries, making Schedule fail fast once exhausted (the
// ErrDeadlineTooLong path); zero means unbounded.
type ManualTimer struct {
	mu      sync.Mutex
	now     time.Time
	entries []*manualEntry
	cap     int
}

type manualEntry struct {
	at    time.Time
	wake  func()
	fired atomix.Uint32
}

func (e *manualEntry) Fired() bool { return e.fired.Load() != 0 }

// NewManualTimer creates a manual timer positioned at now.
func NewManualTimer(now time.Time, capacity int) *ManualTimer {
	return &ManualTimer{now: now, cap: capacity}
}

// Now returns the manual clock's current position.
func (m *ManualTimer) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualTimer) Schedule(at time.Time, wake func()) (TimerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cap > 0 && len(m.entries) >= m.cap {
		return nil, errTimerExhausted
	}
	e := &manualEntry{at: at, wake: wake}
	if !at.After(m.now) {
		e.fired.Add(1)
		return e, nil
	}
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *ManualTimer) Cancel(entry TimerEntry) {
	e, ok := entry.(*manualEntry)
	if !ok {
		return
	}
	m.mu.Lock()
	for i, cand := range m.entries {
		if cand == e {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
}

// Set moves the clock to t, marks every due entry fired, and then
// invokes their wakes outside the timer lock. Moving backwards is
// ignored.
func (m *ManualTimer) Set(t time.Time) {
	m.mu.Lock()
	due := m.moveTo(t)
	m.mu.Unlock()
	fireEntries(due)
}

// Advance moves the clock forward by d. The target is computed and
// applied in one critical section, so concurrent Advance calls
// accumulate rather than coalesce.
func (m *ManualTimer) Advance(d time.Duration) {
	m.mu.Lock()
	due := m.moveTo(m.now.Add(d))
	m.mu.Unlock()
	fireEntries(due)
}

// moveTo advances the clock with m.mu held and returns the entries that
// came due. Moving backwards is a no-op.
func (m *ManualTimer) moveTo(t time.Time) []*manualEntry {
	if t.Before(m.now) {
		return nil
	}
	m.now = t
	var due []*manualEntry
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !e.at.After(t) {
			e.fired.Add(1)
			due = append(due, e)
		} else {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return due
}

func fireEntries(due []*manualEntry) {
	for _, e := range due {
		if e.wake != nil {
			e.wake()
		}
	}
}
