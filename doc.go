// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ctx provides request-scoped cancellation, deadlines, and
// immutable value propagation as a tree of derived context handles.
//
// A [Context] is a handle to one node in a derivation tree. Deeply
// nested call graphs observe "stop now" (an explicit cancel trigger) or
// "stop by time T" (a deadline) by polling the handle they were given,
// and recover request-scoped data without global state. Cancellation is
// one-way and terminal: a node never un-cancels.
//
// # Architecture
//
//   - Completion signal: [Context.Poll] is non-blocking and returns [code.hybscloud.com/iox.ErrWouldBlock] while pending. Resolution is terminal: [ErrCanceled], [ErrDeadlineExceeded], or [ErrDeadlineTooLong], always returned verbatim.
//   - Derivation: [Background] is the never-resolving root. [WithCancel], [WithDeadline], [WithTimeout], [WithValue], and [WithKeyed] derive child nodes. Parent edges are fixed at construction, so the structure is a tree, never a cycle.
//   - Notification: each cancel node holds a single coalescing wake slot. Triggers and timer fires deliver at-least-once wake-ups to the registered [WaitToken]; [Wait] parks between polls with adaptive backoff via [code.hybscloud.com/iox.Backoff], without spawning goroutines or creating channels.
//   - Timers: each deadline node owns one one-shot entry on a [Timer] collaborator. [WithTimer] injects a substitutable service (e.g. [ManualTimer] for deterministic tests) into the chain; the runtime timer is the default.
//   - Effects: [Done] exposes context completion as an algebraic effect on [code.hybscloud.com/kont]. [Exec] handles it synchronously; [Step] and [Advance] integrate with external drive loops one suspension at a time.
//
// # Example
//
//	c, cancel := ctx.WithCancel(ctx.Background())
//	go func() {
//		time.Sleep(100 * time.Millisecond)
//		cancel()
//	}()
//	err := ctx.Wait(c) // ErrCanceled
package ctx
