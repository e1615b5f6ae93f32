// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctx

import "errors"

// Terminal completion results. A node resolves at most once, to exactly
// one of these, and Poll returns it verbatim from then on. The package
// never retries or swallows them; retry policy belongs to the caller.
var (
	// ErrCanceled reports that a cancel trigger fired on the node or
	// an ancestor.
	ErrCanceled = errors.New("ctx: context has been canceled")

	// ErrDeadlineExceeded reports that the node's or an ancestor's
	// deadline was reached before resolution.
	ErrDeadlineExceeded = errors.New("ctx: deadline has been exceeded")

	// ErrDeadlineTooLong reports that the requested deadline could not
	// be honored by the timer service.
	ErrDeadlineTooLong = errors.New("ctx: requested deadline too long")
)

// errTimerExhausted is returned by ManualTimer.Schedule at capacity.
// Deadline nodes surface any schedule failure as ErrDeadlineTooLong.
var errTimerExhausted = errors.New("ctx: timer capacity exhausted")
