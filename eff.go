// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctx

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Done is the effect operation for awaiting completion of a context.
// Perform(Done{Ctx: c}) suspends until c resolves and yields the
// terminal error.
type Done struct {
	kont.Phantom[error]
	Ctx Context
}

// contextDispatcher is the structural interface for context effects.
// DispatchContext is non-blocking: it returns iox.ErrWouldBlock while
// the awaited context is still pending.
type contextDispatcher interface {
	DispatchContext() (kont.Resumed, error)
}

// DispatchContext polls the awaited context once.
func (d Done) DispatchContext() (kont.Resumed, error) {
	err := d.Ctx.Poll()
	if err == iox.ErrWouldBlock {
		return nil, err
	}
	return err, nil
}

// DoneBind awaits c and passes the terminal error to f.
// Fuses Perform(Done{Ctx: c}) + Bind.
func DoneBind[B any](c Context, f func(error) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Done{Ctx: c}), f)
}

// contextHandler implements kont.Handler for context effects, waiting
// past the iox.ErrWouldBlock boundary with the wake/park primitives.
type contextHandler[R any] struct{}

// Dispatch implements kont.Handler via structural interface assertion.
func (contextHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	cop, ok := op.(contextDispatcher)
	if !ok {
		panic("ctx: unhandled effect in contextHandler")
	}
	return dispatchWait(cop), true
}

// dispatchWait blocks until DispatchContext resolves, parking with
// iox.Backoff between polls and resetting on wake-up delivery to the
// goroutine's bound token.
func dispatchWait(cop contextDispatcher) kont.Resumed {
	tok, prev := bindToken()
	defer releaseToken(tok, prev)

	last := tok.wakes.Load()
	var bo iox.Backoff
	for {
		v, err := cop.DispatchContext()
		if err == nil {
			return v
		}
		if w := tok.wakes.Load(); w != last {
			last = w
			bo.Reset()
			continue
		}
		bo.Wait()
	}
}

// Exec runs a Cont-world computation with context effects handled.
// Blocks on pending contexts via adaptive backoff, without spawning
// goroutines or creating channels.
func Exec[R any](protocol kont.Eff[R]) R {
	return kont.Handle(protocol, contextHandler[R]{})
}

// ExecExpr runs an Expr-world computation with context effects handled.
// Blocking behavior matches Exec.
func ExecExpr[R any](protocol kont.Expr[R]) R {
	return kont.HandleExpr(protocol, contextHandler[R]{})
}

// Step evaluates a computation until the first effect suspension.
// Returns (result, nil) on completion, or (zero, suspension) if
// pending.
func Step[R any](protocol kont.Expr[R]) (R, *kont.Suspension[R]) {
	return kont.StepExpr(protocol)
}

// Advance polls the suspended context operation once. Non-blocking: on
// iox.ErrWouldBlock the suspension is unconsumed and may be retried
// after a trigger or timer fire; on success it is consumed and the
// computation advances to the next suspension or completion.
func Advance[R any](susp *kont.Suspension[R]) (R, *kont.Suspension[R], error) {
	cop, ok := susp.Op().(contextDispatcher)
	if !ok {
		panic("ctx: unhandled effect in Advance")
	}
	v, err := cop.DispatchContext()
	if err != nil {
		var zero R
		return zero, susp, err
	}
	result, next := susp.Resume(v)
	return result, next, nil
}

// Reify converts a Cont-world computation to Expr-world for use with
// ExecExpr or the Step/Advance loop.
func Reify[A any](m kont.Eff[A]) kont.Expr[A] {
	return kont.Reify(m)
}

// Reflect converts an Expr-world computation to Cont-world for use
// with Exec.
func Reflect[A any](m kont.Expr[A]) kont.Eff[A] {
	return kont.Reflect(m)
}
