package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestReloadGate_AcquireRelease(t *testing.T) {
	gate := NewReloadGate(time.Second)
	ctx := context.Background()

	if gate.Busy() {
		t.Fatal("new gate is busy")
	}
	if err := gate.Acquire(ctx, TriggerAPI); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	st := gate.Status()
	if !st.Busy || st.Holder != TriggerAPI || st.Since.IsZero() {
		t.Errorf("status while held = %+v", st)
	}
	if gate.TryAcquire(TriggerUpload) {
		t.Error("TryAcquire succeeded on a held gate")
	}

	gate.Release()
	if gate.Busy() || gate.Status().Holder != "" {
		t.Errorf("status after release = %+v", gate.Status())
	}
	if !gate.TryAcquire(TriggerUpload) {
		t.Error("TryAcquire failed on a free gate")
	}
	gate.Release()
}

func TestReloadGate_BusyTimeout(t *testing.T) {
	gate := NewReloadGate(100 * time.Millisecond)
	ctx := context.Background()

	if err := gate.Acquire(ctx, TriggerStartup); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer gate.Release()

	start := time.Now()
	err := gate.Acquire(ctx, TriggerAPI)
	elapsed := time.Since(start)

	if err != ErrReloadBusy {
		t.Errorf("expected ErrReloadBusy, got %v", err)
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("timeout too fast: %v", elapsed)
	}
}

func TestReloadGate_ContextCancelled(t *testing.T) {
	gate := NewReloadGate(time.Second)
	if err := gate.Acquire(context.Background(), TriggerStartup); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer gate.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := gate.Acquire(ctx, TriggerAPI); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestReloadGate_Serializes(t *testing.T) {
	gate := NewReloadGate(5 * time.Second)

	var wg sync.WaitGroup
	var inside, maxInside atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Acquire(context.Background(), TriggerAPI); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer gate.Release()

			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	if got := maxInside.Load(); got != 1 {
		t.Errorf("max concurrent holders = %d, want 1", got)
	}
}

func TestReloadGate_WaitForDrain(t *testing.T) {
	gate := NewReloadGate(time.Second)
	if err := gate.Acquire(context.Background(), TriggerScheduler); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		gate.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := gate.WaitForDrain(ctx); err != nil {
		t.Errorf("WaitForDrain = %v", err)
	}
}

func TestReloadGate_DefaultWait(t *testing.T) {
	if gate := NewReloadGate(0); gate.maxWait != DefaultReloadWait {
		t.Errorf("maxWait = %v, want %v", gate.maxWait, DefaultReloadWait)
	}
}
