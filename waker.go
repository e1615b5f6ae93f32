// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctx

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"github.com/petermattis/goid"
)

// WaitToken identifies one polling goroutine for wake-up delivery.
// Delivery is at-least-once and coalescing: wakes are counted, not
// queued, so redundant notifications from concurrent triggers and timer
// fires collapse into a single observed wake.
type WaitToken struct {
	gid   int64
	wakes atomix.Uint32
}

// Notify delivers a wake-up to the token's poller. Safe from any
// goroutine; the poller may observe several notifications as one.
func (t *WaitToken) Notify() {
	t.wakes.Add(1)
}

// waiters maps goroutine id → the token bound by an enclosing Wait or
// effect handler on that goroutine. Cancel nodes consult it during Poll
// to register wake interest along the chain.
var waiters sync.Map

// currentToken returns the token bound to the calling goroutine, or nil
// when polling happens outside Wait and the effect handlers.
func currentToken() *WaitToken {
	if t, ok := waiters.Load(goid.Get()); ok {
		return t.(*WaitToken)
	}
	return nil
}

// bindToken binds a fresh token to the calling goroutine and returns
// the previously bound one. Binds nest: releaseToken restores prev.
func bindToken() (tok, prev *WaitToken) {
	gid := goid.Get()
	tok = &WaitToken{gid: gid}
	if p, ok := waiters.Load(gid); ok {
		prev = p.(*WaitToken)
	}
	waiters.Store(gid, tok)
	return tok, prev
}

func releaseToken(tok, prev *WaitToken) {
	if prev != nil {
		waiters.Store(tok.gid, prev)
		return
	}
	waiters.Delete(tok.gid)
}

// Wait blocks the calling goroutine until c resolves and returns the
// terminal result. Built entirely from Poll plus the wake/park
// primitives: each poll registers the goroutine's token in the cancel
// nodes along the chain, triggers and timer fires notify it, and
// iox.Backoff parks between unproductive polls. Does not spawn
// goroutines or create channels.
//
// Wait on a chain with no cancel or deadline node (Background alone,
// or value nodes only) never returns.
func Wait(c Context) error {
	tok, prev := bindToken()
	defer releaseToken(tok, prev)

	last := tok.wakes.Load()
	var bo iox.Backoff
	for {
		err := c.Poll()
		if err != iox.ErrWouldBlock {
			return err
		}
		if w := tok.wakes.Load(); w != last {
			last = w
			bo.Reset()
			continue
		}
		bo.Wait()
	}
}
