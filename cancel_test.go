// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctx_test

import (
	"runtime"
	"testing"
	"time"

	"code.hybscloud.com/ctx"
	"code.hybscloud.com/iox"
)

func TestCancel(t *testing.T) {
	c, cancel := ctx.WithCancel(ctx.Background())
	if err := c.Poll(); err != iox.ErrWouldBlock {
		t.Fatalf("before cancel got %v, want ErrWouldBlock", err)
	}
	cancel()
	if err := c.Poll(); err != ctx.ErrCanceled {
		t.Fatalf("after cancel got %v, want ErrCanceled", err)
	}
}

func TestCancelBeforeFirstPoll(t *testing.T) {
	c, cancel := ctx.WithCancel(ctx.Background())
	cancel()
	if err := c.Poll(); err != ctx.ErrCanceled {
		t.Fatalf("got %v, want ErrCanceled", err)
	}
}

func TestCancelParentPropagates(t *testing.T) {
	parent, cancelParent := ctx.WithCancel(ctx.Background())
	child, _ := ctx.WithCancel(parent)

	cancelParent()
	if err := child.Poll(); err != ctx.ErrCanceled {
		t.Fatalf("child got %v, want ErrCanceled", err)
	}
	if err := parent.Poll(); err != ctx.ErrCanceled {
		t.Fatalf("parent got %v, want ErrCanceled", err)
	}
}

func TestCancelChildLeavesParentPending(t *testing.T) {
	parent, _ := ctx.WithCancel(ctx.Background())
	child, cancelChild := ctx.WithCancel(parent)

	cancelChild()
	if err := child.Poll(); err != ctx.ErrCanceled {
		t.Fatalf("child got %v, want ErrCanceled", err)
	}
	if err := parent.Poll(); err != iox.ErrWouldBlock {
		t.Fatalf("parent got %v, want ErrWouldBlock", err)
	}
}

func TestCancelDeepChain(t *testing.T) {
	leaf, root := chain(32)
	if err := leaf.Poll(); err != iox.ErrWouldBlock {
		t.Fatalf("before cancel got %v, want ErrWouldBlock", err)
	}
	root()
	if err := leaf.Poll(); err != ctx.ErrCanceled {
		t.Fatalf("leaf got %v, want ErrCanceled", err)
	}
}

func TestCancelIdempotent(t *testing.T) {
	c, cancel := ctx.WithCancel(ctx.Background())
	for i := 0; i < 8; i++ {
		cancel()
	}
	if err := c.Poll(); err != ctx.ErrCanceled {
		t.Fatalf("got %v, want ErrCanceled", err)
	}
	// Resolution is terminal: repeated polls stay identical.
	if err := c.Poll(); err != ctx.ErrCanceled {
		t.Fatalf("repoll got %v, want ErrCanceled", err)
	}
}

func TestCancelOutlivesHandles(t *testing.T) {
	c, cancel := ctx.WithCancel(ctx.Background())
	_ = c
	c = nil
	runtime.GC()
	// The trigger only needs the shared flag; with no observers left it
	// degenerates to a no-op and must stay safely callable.
	cancel()
	cancel()
}

func TestWaitCanceledImmediately(t *testing.T) {
	c, cancel := ctx.WithCancel(ctx.Background())
	cancel()
	if err := ctx.Wait(c); err != ctx.ErrCanceled {
		t.Fatalf("got %v, want ErrCanceled", err)
	}
}

func TestWaitWokenByCrossGoroutineCancel(t *testing.T) {
	c, cancel := ctx.WithCancel(ctx.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := ctx.Wait(c); err != ctx.ErrCanceled {
		t.Fatalf("got %v, want ErrCanceled", err)
	}
}

func TestWaitWokenByRootCancel(t *testing.T) {
	leaf, root := chain(8)
	go func() {
		time.Sleep(20 * time.Millisecond)
		root()
	}()
	if err := ctx.Wait(leaf); err != ctx.ErrCanceled {
		t.Fatalf("got %v, want ErrCanceled", err)
	}
}

func TestConcurrentPollers(t *testing.T) {
	c, cancel := ctx.WithCancel(ctx.Background())

	const pollers = 8
	results := make(chan error, pollers)
	for i := 0; i < pollers; i++ {
		go func() {
			results <- ctx.Wait(c)
		}()
	}
	time.Sleep(10 * time.Millisecond)
	cancel()
	for i := 0; i < pollers; i++ {
		if err := <-results; err != ctx.ErrCanceled {
			t.Fatalf("poller %d got %v, want ErrCanceled", i, err)
		}
	}
}
