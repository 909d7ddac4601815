package aescrypt

import (
	"testing"
	"time"
)

func TestOpGuard_ActivateIdempotence(t *testing.T) {
	g := newOpGuard()
	g.cancel() // latches cancelled on an idle guard

	if !g.activate() {
		t.Fatal("activate() on idle guard should succeed")
	}
	if g.cancelled {
		t.Error("activate() should clear a latched cancellation")
	}
	g.finish()

	if !g.activate() {
		t.Fatal("subsequent activate() should also succeed")
	}
	g.finish()
}

func TestOpGuard_SingleOperationInvariant(t *testing.T) {
	g := newOpGuard()
	if started, blocked := g.begin(); !started || blocked {
		t.Fatal("first begin() should succeed")
	}
	if started, _ := g.begin(); started {
		t.Error("second begin() while active should fail")
	}
	g.finish()
	if started, blocked := g.begin(); !started || blocked {
		t.Error("begin() after finish() should succeed")
	}
	g.finish()
}

// A latched cancellation from a prior operation blocks begin() until the
// caller explicitly re-arms via activate(), per spec §4.6/§4.7's "no-op
// until activate()" rule.
func TestOpGuard_BeginRejectedWhileCancelledLatched(t *testing.T) {
	g := newOpGuard()
	g.cancel() // latch cancellation on an idle guard

	if started, blocked := g.begin(); started || !blocked {
		t.Fatal("begin() should be blocked by a latched cancellation")
	}
	if !g.activate() {
		t.Fatal("activate() should re-arm after a latched cancellation")
	}
	if started, blocked := g.begin(); !started || blocked {
		t.Fatal("begin() should succeed once activate() has cleared cancelled")
	}
	g.finish()
}

func TestOpGuard_CancelBlocksUntilFinish(t *testing.T) {
	g := newOpGuard()
	if started, blocked := g.begin(); !started || blocked {
		t.Fatal("begin() should succeed")
	}

	done := make(chan struct{})
	go func() {
		g.cancel()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("cancel() returned before finish()")
	case <-time.After(30 * time.Millisecond):
	}

	g.finish()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancel() did not return after finish()")
	}
}

func TestOpGuard_CheckpointReflectsCancellation(t *testing.T) {
	g := newOpGuard()
	g.begin()
	if g.checkpoint() {
		t.Error("checkpoint() should be false before cancel()")
	}

	go g.cancel()
	for i := 0; i < 1000 && !g.checkpoint(); i++ {
		time.Sleep(time.Millisecond)
	}
	if !g.checkpoint() {
		t.Error("checkpoint() should observe cancellation")
	}
	g.finish()
}
