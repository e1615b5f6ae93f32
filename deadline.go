// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctx

import (
	"runtime"
	"sync"
	"time"

	"code.hybscloud.com/iox"
)

// deadlineCtx composes an inner cancel node with one scheduled timer
// entry. It resolves at the earliest of: timer fire, manual cancel via
// the returned trigger, or parent resolution.
type deadlineCtx struct {
	inner *cancelCtx
	when  time.Time
	entry TimerEntry // nil when scheduling was rejected

	mu   sync.Mutex
	done error // first terminal result, latched
}

// parent exposes the inner cancel node so lookups walk through it to
// the derivation parent.
func (d *deadlineCtx) parent() Context { return d.inner }

// Deadline answers with the node's own instant; it is authoritative at
// this layer. An earlier ancestor deadline is still honored through
// delegation timing, not through introspection.
func (d *deadlineCtx) Deadline() (time.Time, bool) { return d.when, true }

// Poll resolves the race between timeout, manual cancel, and parent
// completion: a fired timer wins at this node, a rejected schedule is
// terminal, anything else defers to the inner cancel node. The first
// terminal result is latched, so a runtime timer callback that was
// already in flight when the trigger stopped the entry cannot flip a
// resolution observed as ErrCanceled into ErrDeadlineExceeded. The
// latch lock is never held across the inner Poll.
func (d *deadlineCtx) Poll() error {
	d.mu.Lock()
	if d.done != nil {
		err := d.done
		d.mu.Unlock()
		return err
	}
	d.mu.Unlock()

	var err error
	switch {
	case d.entry == nil:
		err = ErrDeadlineTooLong
	case d.entry.Fired():
		err = ErrDeadlineExceeded
	default:
		err = d.inner.Poll()
	}
	if err == iox.ErrWouldBlock {
		return err
	}

	d.mu.Lock()
	if d.done == nil {
		d.done = err
	}
	err = d.done
	d.mu.Unlock()
	return err
}

// WithDeadline derives a child of parent that resolves once the
// absolute instant at is reached, the returned trigger is called, or
// parent resolves — whichever is first. An instant already passed is
// valid: the child resolves ErrDeadlineExceeded on its first poll.
//
// The timer service is the nearest one attached via WithTimer, else the
// runtime default.
func WithDeadline(parent Context, at time.Time) (Context, CancelFunc) {
	return newDeadline(parent, timerFor(parent), at, false)
}

// WithTimeout derives a child of parent that resolves after dur
// elapses. Equivalent to WithDeadline(parent, now+dur); zero and
// negative durations resolve on first poll. An overflowing instant
// computation does not fail construction: it surfaces as
// ErrDeadlineTooLong on first poll.
func WithTimeout(parent Context, dur time.Duration) (Context, CancelFunc) {
	tm := timerFor(parent)
	now := tm.Now()
	at := now.Add(dur)
	overflowed := dur > 0 && at.Before(now)
	return newDeadline(parent, tm, at, overflowed)
}

func newDeadline(parent Context, tm Timer, at time.Time, overflowed bool) (Context, CancelFunc) {
	state := &cancelState{}
	d := &deadlineCtx{
		inner: &cancelCtx{par: parent, state: state},
		when:  at,
	}
	if !overflowed {
		if entry, err := tm.Schedule(at, state.wake); err == nil {
			d.entry = entry
			// Release the scheduled entry once every handle to the
			// node is gone. The cleanup must not reference d itself.
			runtime.AddCleanup(d, tm.Cancel, entry)
		}
	}
	entry := d.entry
	cancel := func() {
		if entry != nil {
			tm.Cancel(entry)
		}
		state.cancel()
	}
	return d, cancel
}
