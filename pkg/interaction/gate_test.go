package interaction

import (
	"sync"
	"testing"
)

func TestGate(t *testing.T) {
	g := NewGate()
	if g.Blocked() {
		t.Fatal("new gate should be open")
	}

	if !g.Block() || g.Block() {
		t.Error("Block should change state exactly once")
	}
	if !g.Blocked() {
		t.Error("expected blocked")
	}
	if !g.Unblock() || g.Unblock() {
		t.Error("Unblock should change state exactly once")
	}
	if g.Generation() != 2 {
		t.Errorf("generation = %d", g.Generation())
	}

	var nilGate *Gate
	if nilGate.Blocked() {
		t.Error("nil gate must read as open")
	}
}

func TestGateConcurrentReaders(t *testing.T) {
	g := NewGate()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = g.Blocked()
			}
		}()
	}
	for i := 0; i < 100; i++ {
		g.Block()
		g.Unblock()
	}
	wg.Wait()

	if g.Blocked() || g.Generation() != 200 {
		t.Errorf("blocked=%v generation=%d", g.Blocked(), g.Generation())
	}
}
