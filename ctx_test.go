// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctx_test

import (
	"testing"
	"time"

	"code.hybscloud.com/ctx"
	"code.hybscloud.com/iox"
)

func TestBackgroundNeverResolves(t *testing.T) {
	c := ctx.Background()
	for i := 0; i < 100; i++ {
		if err := c.Poll(); err != iox.ErrWouldBlock {
			t.Fatalf("poll %d got %v, want ErrWouldBlock", i, err)
		}
	}
}

func TestBackgroundNoDeadline(t *testing.T) {
	if _, ok := ctx.Background().Deadline(); ok {
		t.Fatal("background must not carry a deadline")
	}
}

func TestBackgroundNoValue(t *testing.T) {
	if _, ok := ctx.Value[int](ctx.Background()); ok {
		t.Fatal("background must not carry values")
	}
}

func TestBackgroundShared(t *testing.T) {
	if ctx.Background() != ctx.Background() {
		t.Fatal("background handles must share the root node")
	}
}

func TestHandleCopySharesNode(t *testing.T) {
	c, cancel := ctx.WithCancel(ctx.Background())
	d := c // copy of the handle, same node
	cancel()
	if err := d.Poll(); err != ctx.ErrCanceled {
		t.Fatalf("copied handle got %v, want ErrCanceled", err)
	}
}

func TestWaitParksCoverage(t *testing.T) {
	c, _ := ctx.WithCancel(ctx.Background())
	go func() {
		ctx.Wait(c)
	}()

	time.Sleep(50 * time.Millisecond) // Give it time to hit bo.Wait()
}
