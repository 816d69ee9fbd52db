package visualization

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/dd0wney/cluso-netmap/pkg/config"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

var chain = []Link{{From: 0, To: 1}, {From: 1, To: 2}}

func ids(n int) []graph.NodeID {
	out := make([]graph.NodeID, n)
	for i := range out {
		out[i] = graph.NodeID(i)
	}
	return out
}

func distance(p1, p2 geom.Point) float64 {
	return p1.Dist(p2)
}

// TestForceDirectedLayout tests the force-directed layout algorithm
func TestForceDirectedLayout(t *testing.T) {
	layout := NewForceDirectedLayout(&LayoutConfig{
		Width:      800,
		Height:     600,
		Iterations: 50,
		Padding:    50,
	}, rand.New(rand.NewPCG(1, 1)))

	positions := layout.Place(ids(3), chain)

	if len(positions) != 3 {
		t.Errorf("Expected 3 positions, got %d", len(positions))
	}

	for id, pos := range positions {
		if math.Abs(pos.X) > 400 || math.Abs(pos.Y) > 300 {
			t.Errorf("Node %d position %+v out of bounds", id, pos)
		}
	}

	dist12 := distance(positions[0], positions[1])
	dist23 := distance(positions[1], positions[2])
	dist13 := distance(positions[0], positions[2])

	// Node 0 and 2 are not directly connected, should be furthest apart
	if dist13 < dist12 || dist13 < dist23 {
		t.Error("Force-directed layout did not separate unconnected nodes properly")
	}
}

// TestCircularLayout tests circular layout algorithm
func TestCircularLayout(t *testing.T) {
	layout := NewCircularLayout(&LayoutConfig{Width: 800, Height: 600, Padding: 50})

	positions := layout.Place(ids(4), nil)
	if len(positions) != 4 {
		t.Fatalf("Expected 4 positions, got %d", len(positions))
	}

	for id, pos := range positions {
		if r := math.Hypot(pos.X, pos.Y); math.Abs(r-250) > 1e-9 {
			t.Errorf("Node %d radius %f, want 250", id, r)
		}
	}

	if len(layout.Place(nil, nil)) != 0 {
		t.Error("Expected no positions for no nodes")
	}
}

func TestRandomLayoutStaysInBox(t *testing.T) {
	layout := NewRandomLayout(&LayoutConfig{Width: 1000, Height: 1000}, rand.New(rand.NewPCG(3, 4)))
	for id, p := range layout.Place(ids(50), nil) {
		if math.Abs(p.X) > 500 || math.Abs(p.Y) > 500 {
			t.Errorf("Node %d at %+v outside ±500", id, p)
		}
	}
}

func TestNewPlacement(t *testing.T) {
	cfg := config.Default().Physics
	rng := rand.New(rand.NewPCG(1, 2))

	for _, name := range []string{"random", "circular", "force"} {
		cfg.InitialLayout = name
		if _, err := NewPlacement(cfg, rng); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	cfg.InitialLayout = "spiral"
	if _, err := NewPlacement(cfg, rng); err == nil {
		t.Error("expected error for unknown layout")
	}
}

func TestNormalize(t *testing.T) {
	in := map[graph.NodeID]geom.Point{0: {X: 10, Y: 10}, 1: {X: 20, Y: 30}}
	out := Normalize(in, 200, 100, 10)

	if out[0] != (geom.Point{X: -90, Y: -40}) || out[1] != (geom.Point{X: 90, Y: 40}) {
		t.Errorf("normalized = %v", out)
	}
}

func newSim(t *testing.T) *Simulation {
	t.Helper()
	s := NewSimulation(ids(3), chain, ParamsFromConfig(config.Default().Physics), nil)
	s.Initialize(nil, NewCircularLayout(&LayoutConfig{Width: 400, Height: 400}))
	return s
}

func TestSimulationNotReadyBeforeInitialize(t *testing.T) {
	s := NewSimulation(ids(3), chain, ParamsFromConfig(config.Default().Physics), nil)
	if s.Ready() {
		t.Fatal("ready before Initialize")
	}
	if n := s.Stabilize(10); n != 0 {
		t.Errorf("Stabilize ran %d steps before init", n)
	}
	if s.Step() {
		t.Error("Step moved before init")
	}
}

func TestSimulationInitializePrefersSaved(t *testing.T) {
	s := NewSimulation(ids(3), chain, ParamsFromConfig(config.Default().Physics), nil)
	saved := map[graph.NodeID]geom.Point{1: {X: 7, Y: 8}}
	s.Initialize(saved, NewCircularLayout(&LayoutConfig{Width: 400, Height: 400}))

	pos := s.Positions()
	if len(pos) != 3 {
		t.Fatalf("positions = %v", pos)
	}
	if pos[1] != (geom.Point{X: 7, Y: 8}) {
		t.Errorf("saved position lost: %+v", pos[1])
	}
	if !s.Ready() || !s.Physics() {
		t.Error("expected ready with physics on")
	}
}

func TestSimulationSeparatesCoincidentNodes(t *testing.T) {
	s := NewSimulation(ids(2), nil, ParamsFromConfig(config.Default().Physics), nil)
	s.Initialize(map[graph.NodeID]geom.Point{0: {}, 1: {}}, nil)

	s.Stabilize(50)
	pos := s.Positions()
	if distance(pos[0], pos[1]) < 1 {
		t.Errorf("nodes still overlap: %v", pos)
	}
}

func TestSimulationStabilizeBudget(t *testing.T) {
	params := ParamsFromConfig(config.Default().Physics)

	params.MinVelocity = 0
	restless := NewSimulation(ids(3), chain, params, nil)
	restless.Initialize(nil, NewCircularLayout(&LayoutConfig{Width: 400, Height: 400}))
	if n := restless.Stabilize(5); n != 5 {
		t.Errorf("ran %d steps, want the full budget of 5", n)
	}

	params.MinVelocity = math.MaxFloat64
	settled := NewSimulation(ids(3), chain, params, nil)
	settled.Initialize(nil, NewCircularLayout(&LayoutConfig{Width: 400, Height: 400}))
	if n := settled.Stabilize(100); n != 1 || !settled.Stable() {
		t.Errorf("ran %d steps, stable=%v; want to stop after 1", n, settled.Stable())
	}
	if settled.Step() {
		t.Error("stable solver should not step")
	}
}

func TestSimulationPhysicsToggle(t *testing.T) {
	s := newSim(t)
	s.SetPhysics(false)
	before := s.Positions()
	if s.Step() {
		t.Error("Step with physics off")
	}
	if s.Positions()[0] != before[0] {
		t.Error("positions moved with physics off")
	}

	s.SetPhysics(true)
	if !s.Step() {
		t.Error("Step with physics on should run")
	}
}

func TestSimulationInactiveNodesStayPut(t *testing.T) {
	s := newSim(t)
	fixed := s.Positions()[2]

	s.SetActive([]graph.NodeID{0, 1})
	s.Stabilize(20)

	if s.Positions()[2] != fixed {
		t.Errorf("inactive node moved from %+v to %+v", fixed, s.Positions()[2])
	}
}

func TestSimulationSetPositionsAndBounds(t *testing.T) {
	s := newSim(t)
	s.SetPositions(map[graph.NodeID]geom.Point{0: {X: -5}, 1: {X: 5, Y: 2}, 9: {X: 100}})

	r, ok := s.Bounds([]graph.NodeID{0, 1, 9})
	if !ok || r.Min.X != -5 || r.Max.X != 5 || r.Max.Y != 2 {
		t.Errorf("bounds = %+v", r)
	}
}

func TestSimulationExport(t *testing.T) {
	s := newSim(t)
	var buf bytes.Buffer
	if err := s.Export(&buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	var decoded map[string]geom.Point
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("exported file is not JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 3 {
		t.Errorf("decoded = %v", decoded)
	}
	if decoded["1"] != s.Positions()[1] {
		t.Errorf("position 1 = %+v", decoded["1"])
	}
}
