// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctx_test

import (
	"time"

	"code.hybscloud.com/ctx"
)

// chain derives n nested cancel nodes from Background and returns the
// leaf handle plus the root trigger. Used to exercise propagation
// across deep chains.
func chain(n int) (ctx.Context, ctx.CancelFunc) {
	c, root := ctx.WithCancel(ctx.Background())
	for i := 1; i < n; i++ {
		c, _ = ctx.WithCancel(c)
	}
	return c, root
}

// manualBase attaches a fresh manual timer positioned at the Unix epoch
// to Background. Most deadline tests run on it for determinism.
func manualBase(capacity int) (*ctx.ManualTimer, ctx.Context) {
	mt := ctx.NewManualTimer(time.Unix(0, 0), capacity)
	return mt, ctx.WithTimer(ctx.Background(), mt)
}
