// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctx

import (
	"sync"
	"time"

	"code.hybscloud.com/iox"
)

// cancelState is shared between a cancel node and its trigger. Flag and
// waiter slot form one exclusion region per node; the lock is never
// held across the parent's Poll, so arbitrarily deep chains cannot
// nest lock acquisitions.
type cancelState struct {
	mu       sync.Mutex
	canceled bool
	waiter   *WaitToken
}

// cancel idempotently sets the flag and notifies the registered waiter
// once if present. Calling it zero, one, or many times before the next
// poll is observationally identical to calling it once. Because trigger
// and poll serialize on the same exclusion, any Poll that starts after
// cancel returns observes cancellation on any goroutine.
func (s *cancelState) cancel() {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.canceled = true
	tok := s.waiter
	s.waiter = nil
	s.mu.Unlock()
	if tok != nil {
		tok.Notify()
	}
}

// wake notifies the registered waiter without resolving the node.
// Timer fires use it so a parked Wait re-polls promptly. The waiter
// re-registers on its next poll if the node is still pending.
func (s *cancelState) wake() {
	s.mu.Lock()
	tok := s.waiter
	s.waiter = nil
	s.mu.Unlock()
	if tok != nil {
		tok.Notify()
	}
}

// cancelCtx decorates its parent with a shared cancellation flag and a
// single wake-interest slot, created fresh per derivation.
type cancelCtx struct {
	par   Context
	state *cancelState
}

func (c *cancelCtx) parent() Context { return c.par }

func (c *cancelCtx) Deadline() (time.Time, bool) { return c.par.Deadline() }

// Poll checks the node's own flag before delegating, so a canceled node
// never reports its parent's state. While the parent is pending, the
// calling goroutine's wait token (if bound) is registered in the slot;
// a stale registration that already points at the current token is left
// untouched. The flag is re-checked under the same exclusion after
// registration, so a trigger that ran between the delegation and the
// registration cannot be missed.
func (c *cancelCtx) Poll() error {
	s := c.state
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return ErrCanceled
	}
	s.mu.Unlock()

	err := c.par.Poll()
	if err != iox.ErrWouldBlock {
		return err
	}

	tok := currentToken()
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return ErrCanceled
	}
	if tok != nil && s.waiter != tok {
		s.waiter = tok
	}
	s.mu.Unlock()
	return iox.ErrWouldBlock
}

// WithCancel derives a child of parent whose completion signal resolves
// when the returned trigger is called or when parent resolves,
// whichever is first.
func WithCancel(parent Context) (Context, CancelFunc) {
	state := &cancelState{}
	c := &cancelCtx{par: parent, state: state}
	return c, state.cancel
}
