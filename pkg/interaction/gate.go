// Package interaction holds the "interaction blocked" flag raised while a
// modal dialog covers the graph.
package interaction

import "sync/atomic"

// Gate is created once at the application root. Only the modal's open and
// close transitions call Block and Unblock; everything else reads it.
type Gate struct {
	blocked atomic.Bool
	changes atomic.Uint64
}

// NewGate returns an open gate.
func NewGate() *Gate {
	return &Gate{}
}

// Block raises the overlay. It reports whether the state changed.
func (g *Gate) Block() bool {
	if g.blocked.CompareAndSwap(false, true) {
		g.changes.Add(1)
		return true
	}
	return false
}

// Unblock removes the overlay. It reports whether the state changed.
func (g *Gate) Unblock() bool {
	if g.blocked.CompareAndSwap(true, false) {
		g.changes.Add(1)
		return true
	}
	return false
}

// Blocked reports whether pointer interaction is suspended. A nil gate is
// never blocked.
func (g *Gate) Blocked() bool {
	return g != nil && g.blocked.Load()
}

// Generation counts state changes, letting readers detect a toggle they
// did not observe.
func (g *Gate) Generation() uint64 {
	if g == nil {
		return 0
	}
	return g.changes.Load()
}

// Reader is the read-only view handed to consumers.
type Reader interface {
	Blocked() bool
}
