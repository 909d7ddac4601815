package aescrypt

import "sync"

// opGuard enforces the single-active-operation contract shared by
// Encryptor and Decryptor: a lock-protected (active, cancelled) pair plus
// a condition variable, mirroring the reference engine's Cancel()/
// cancelled checkpoint pair. begin() is the internal Idle->Active
// transition Encrypt/Decrypt use on every call; activate() is the public
// re-arm step a caller must invoke explicitly to clear a latched
// cancellation before begin() will succeed again.
type opGuard struct {
	mu        sync.Mutex
	cond      *sync.Cond
	active    bool
	cancelled bool
}

func newOpGuard() *opGuard {
	g := &opGuard{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// begin attempts the Idle -> Active transition. started is false with
// blocked false if an operation is already active (caller fails with
// AlreadyEncrypting/AlreadyDecrypting); started is false with blocked true
// if a prior cancellation is still latched (caller fails with
// EncryptionCancelled/DecryptionCancelled as a no-op -- cancelled is left
// untouched, per spec §4.6/§4.7, until the caller explicitly calls
// activate()). Otherwise the guard is marked active and started is true.
func (g *opGuard) begin() (started, blocked bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return false, false
	}
	if g.cancelled {
		return false, true
	}
	g.active = true
	return true, false
}

// activate clears a latched cancellation, unless an operation is currently
// active, in which case it fails and leaves the latch untouched. Calling
// activate() repeatedly once the latch is already clear is a no-op that
// keeps returning true.
func (g *opGuard) activate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return false
	}
	g.cancelled = false
	return true
}

// finish clears active and wakes any controller thread blocked in cancel.
func (g *opGuard) finish() {
	g.mu.Lock()
	g.active = false
	g.mu.Unlock()
	g.cond.Broadcast()
}

// cancel latches cancelled and, if an operation is active, blocks until it
// exits. Calling cancel on an idle guard only latches the flag.
func (g *opGuard) cancel() {
	g.mu.Lock()
	g.cancelled = true
	for g.active {
		g.cond.Wait()
	}
	g.mu.Unlock()
}

// checkpoint reports whether the operation thread should abort now. Called
// once per block in both the encrypt and decrypt main loops.
func (g *opGuard) checkpoint() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancelled
}
