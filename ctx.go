// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctx

import (
	"time"

	"code.hybscloud.com/iox"
)

// Context is a handle to one node in a derivation tree. It carries an
// optional deadline, optional request-scoped values, and a completion
// signal that resolves at most once, to a terminal error.
//
// Handles are freely shared and copied across goroutines; a copy refers
// to the same underlying node and shares its lifetime. The node set is
// closed: background, cancel, deadline, and value nodes, created only
// by the derivation functions in this package.
type Context interface {
	// Poll reports the completion state without blocking.
	// iox.ErrWouldBlock means pending; anything else is terminal:
	// ErrCanceled, ErrDeadlineExceeded, or ErrDeadlineTooLong.
	Poll() error

	// Deadline returns the effective deadline: this node's own instant
	// if it has one, else the nearest ancestor's. ok is false when no
	// node up the chain carries a deadline.
	Deadline() (deadline time.Time, ok bool)

	// parent links toward the root, nil only at the background node.
	// Fixed at construction; edges never change.
	parent() Context
}

// CancelFunc marks its node canceled. Idempotent and safe to call from
// any goroutine, any number of times, even after every handle to the
// node is gone (it then becomes a no-op nothing can observe).
type CancelFunc func()

// backgroundCtx is the root node: no parent, no deadline, no value.
// Its completion signal never resolves.
type backgroundCtx struct{}

func (backgroundCtx) Poll() error                 { return iox.ErrWouldBlock }
func (backgroundCtx) Deadline() (time.Time, bool) { return time.Time{}, false }
func (backgroundCtx) parent() Context             { return nil }

var background Context = backgroundCtx{}

// Background returns the empty root context. It is never canceled and
// has neither a deadline nor values; derivation chains start from it.
func Background() Context {
	return background
}
