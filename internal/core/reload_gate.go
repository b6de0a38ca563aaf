package core

// reload_gate.go serializes reloads.
//
// Only one reload (startup, scheduled refresh, API reload or upload) may
// fetch and parse at a time. A caller that cannot get the slot within
// maxWait fails with ErrReloadBusy. WaitForDrain lets shutdown wait for a
// running reload to finish.

import (
	"context"
	"sync"
	"time"
)

// DefaultReloadWait is how long a reload waits for the slot before failing.
const DefaultReloadWait = 5 * time.Second

// ReloadGate is a single-slot semaphore.
type ReloadGate struct {
	slot    chan struct{}
	maxWait time.Duration

	mu      sync.RWMutex
	holder  string
	since   time.Time
	waiting int
}

// NewReloadGate creates a gate. Non-positive maxWait means DefaultReloadWait.
func NewReloadGate(maxWait time.Duration) *ReloadGate {
	if maxWait <= 0 {
		maxWait = DefaultReloadWait
	}
	return &ReloadGate{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// Acquire takes the slot for holder, waiting up to maxWait.
// The caller MUST call Release when done (use defer).
func (g *ReloadGate) Acquire(ctx context.Context, holder string) error {
	waitCtx, cancel := context.WithTimeout(ctx, g.maxWait)
	defer cancel()

	g.mu.Lock()
	g.waiting++
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.waiting--
		g.mu.Unlock()
	}()

	select {
	case g.slot <- struct{}{}:
		g.hold(holder)
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrReloadBusy
	}
}

// TryAcquire takes the slot without blocking.
func (g *ReloadGate) TryAcquire(holder string) bool {
	select {
	case g.slot <- struct{}{}:
		g.hold(holder)
		return true
	default:
		return false
	}
}

func (g *ReloadGate) hold(holder string) {
	g.mu.Lock()
	g.holder = holder
	g.since = time.Now()
	g.mu.Unlock()
}

// Release frees the slot. Must be called once per successful acquire.
func (g *ReloadGate) Release() {
	g.mu.Lock()
	g.holder = ""
	g.since = time.Time{}
	g.mu.Unlock()
	<-g.slot
}

// Busy reports whether a reload holds the slot.
func (g *ReloadGate) Busy() bool {
	return len(g.slot) > 0
}

// WaitForDrain blocks until no reload holds the slot or ctx is done.
func (g *ReloadGate) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !g.Busy() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ReloadGateStatus is a snapshot of the gate for monitoring.
type ReloadGateStatus struct {
	Busy    bool      `json:"busy"`
	Holder  string    `json:"holder,omitempty"`
	Since   time.Time `json:"since,omitzero"`
	Waiting int       `json:"waiting"`
}

// Status returns the current gate state.
func (g *ReloadGate) Status() ReloadGateStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return ReloadGateStatus{
		Busy:    g.Busy(),
		Holder:  g.holder,
		Since:   g.since,
		Waiting: g.waiting,
	}
}
