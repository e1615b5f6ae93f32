// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctx

import "time"

// valueCtx decorates its parent with one immutable entry. Completion
// signal and deadline pass through untouched; only lookup is
// intercepted.
type valueCtx struct {
	par Context
	key any // nil for positional entries
	val any
}

func (c *valueCtx) parent() Context             { return c.par }
func (c *valueCtx) Poll() error                 { return c.par.Poll() }
func (c *valueCtx) Deadline() (time.Time, bool) { return c.par.Deadline() }

// WithValue derives a child of parent carrying val as a positional
// entry, recovered by Value on type match.
//
// Values should carry request-scoped data crossing API boundaries, not
// optional function parameters. Prefer dedicated struct types over
// plain strings or ints: lookups are type-directed, and the nearest
// entry of a type shadows every ancestor entry of that type.
func WithValue[V any](parent Context, val V) Context {
	return &valueCtx{par: parent, val: val}
}

// WithKeyed derives a child of parent carrying val under key. Keyed
// entries are recovered by Keyed on key equality plus exact type match.
func WithKeyed[K comparable, V any](parent Context, key K, val V) Context {
	return &valueCtx{par: parent, key: key, val: val}
}

// Value returns the nearest positional entry of type V. The walk goes
// from c toward the root and stops at the first match; an entry of
// another type walks on; no match anywhere is (zero, false), never an
// error. Keyed entries are invisible to Value.
//
// Matching follows type-assertion semantics: a concrete V matches its
// exact dynamic type only, while an interface V matches the nearest
// entry whose type implements it. The interface case is what lets a
// collaborator be attached as a concrete implementation and recovered
// through its interface.
func Value[V any](c Context) (V, bool) {
	for n := c; n != nil; n = n.parent() {
		vc, ok := n.(*valueCtx)
		if !ok || vc.key != nil {
			continue
		}
		if v, ok := vc.val.(V); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Keyed returns the nearest entry stored under key with type V. A
// same-key entry of the wrong type walks on, so the nearest
// key-and-type match wins; no match is (zero, false). Positional
// entries are invisible to Keyed. Type matching works as in Value:
// exact for a concrete V, implements-V for an interface V.
func Keyed[K comparable, V any](c Context, key K) (V, bool) {
	for n := c; n != nil; n = n.parent() {
		vc, ok := n.(*valueCtx)
		if !ok || vc.key == nil {
			continue
		}
		if k, ok := vc.key.(K); !ok || k != key {
			continue
		}
		if v, ok := vc.val.(V); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}
