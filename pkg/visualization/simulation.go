package visualization

import (
	"io"
	"math"

	"github.com/dd0wney/cluso-netmap/pkg/dataset"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
	"github.com/dd0wney/cluso-netmap/pkg/logging"
)

// Simulation is the live repulsion solver behind the camera. Nodes repel
// within twice NodeDistance, links act as springs and a central gravity
// keeps the graph near the origin. It is not safe for concurrent use.
type Simulation struct {
	params Params
	logger logging.Logger

	ids    []graph.NodeID
	links  []Link
	pos    map[graph.NodeID]geom.Point
	vel    map[graph.NodeID]geom.Point
	active map[graph.NodeID]bool

	ready   bool
	physics bool
	stable  bool
}

// NewSimulation creates a solver over ids. It is not ready until
// Initialize places the nodes.
func NewSimulation(ids []graph.NodeID, links []Link, params Params, logger logging.Logger) *Simulation {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Simulation{
		params: params,
		logger: logger.With(logging.Component("physics")),
		ids:    append([]graph.NodeID(nil), ids...),
		links:  links,
		pos:    make(map[graph.NodeID]geom.Point, len(ids)),
		vel:    make(map[graph.NodeID]geom.Point, len(ids)),
		active: make(map[graph.NodeID]bool, len(ids)),
	}
	for _, id := range ids {
		s.active[id] = true
	}
	return s
}

// Initialize places every node, taking saved positions first and filling
// the rest from place, then enables physics.
func (s *Simulation) Initialize(saved map[graph.NodeID]geom.Point, place Placement) {
	var missing []graph.NodeID
	for _, id := range s.ids {
		if p, ok := saved[id]; ok {
			s.pos[id] = p
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 && place != nil {
		for id, p := range place.Place(missing, s.links) {
			s.pos[id] = p
		}
	}
	for _, id := range s.ids {
		s.vel[id] = geom.Point{}
	}

	s.ready = true
	s.physics = true
	s.stable = false
	s.logger.Debug("layout initialized", logging.Count(len(s.ids)), logging.Int("placed", len(missing)))
}

func (s *Simulation) Ready() bool   { return s.ready }
func (s *Simulation) Physics() bool { return s.physics }
func (s *Simulation) Stable() bool  { return s.stable }

// SetPhysics toggles the solver.
func (s *Simulation) SetPhysics(enabled bool) {
	s.physics = enabled
	if enabled {
		s.stable = false
	}
}

// SetActive limits the solver to ids. Inactive nodes keep their position
// and exert no force.
func (s *Simulation) SetActive(ids []graph.NodeID) {
	clear(s.active)
	for _, id := range ids {
		s.active[id] = true
	}
	s.stable = false
}

// SetPositions moves nodes and zeroes their velocity. Unknown ids are
// ignored.
func (s *Simulation) SetPositions(positions map[graph.NodeID]geom.Point) {
	for id, p := range positions {
		if _, ok := s.vel[id]; !ok {
			continue
		}
		s.pos[id] = p
		s.vel[id] = geom.Point{}
	}
	s.stable = false
}

// Positions returns a copy of every position.
func (s *Simulation) Positions() map[graph.NodeID]geom.Point {
	out := make(map[graph.NodeID]geom.Point, len(s.pos))
	for id, p := range s.pos {
		out[id] = p
	}
	return out
}

// Bounds is the bounding box of the placed nodes among ids.
func (s *Simulation) Bounds(ids []graph.NodeID) (geom.Rect, bool) {
	pts := make([]geom.Point, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.pos[id]; ok {
			pts = append(pts, p)
		}
	}
	return geom.Bounds(pts)
}

// Stabilize steps until the solver settles or iterations run out, whether
// or not physics is enabled. It returns the number of steps taken.
func (s *Simulation) Stabilize(iterations int) int {
	if !s.ready {
		return 0
	}
	n := 0
	for n < iterations && !s.stable {
		s.step()
		n++
	}
	s.logger.Debug("stabilization finished", logging.Count(n), logging.Bool("stable", s.stable))
	return n
}

// Step advances one solver step when physics is on. It reports whether
// anything moved.
func (s *Simulation) Step() bool {
	if !s.ready || !s.physics || s.stable {
		return false
	}
	s.step()
	return true
}

func (s *Simulation) step() {
	forces := make(map[graph.NodeID]geom.Point, len(s.ids))
	s.applyGravity(forces)
	s.applyRepulsion(forces)
	s.applySprings(forces)

	p := s.params
	maxV := 0.0
	for _, id := range s.ids {
		if !s.active[id] {
			continue
		}
		v := s.vel[id]
		f := forces[id]

		// unit mass
		v = v.Add(f.Sub(v.Scale(p.Damping)).Scale(p.TimeStep))
		if speed := math.Hypot(v.X, v.Y); speed > p.MaxVelocity {
			v = v.Scale(p.MaxVelocity / speed)
		}

		s.vel[id] = v
		s.pos[id] = s.pos[id].Add(v.Scale(p.TimeStep))
		maxV = math.Max(maxV, math.Hypot(v.X, v.Y))
	}

	s.stable = maxV < p.MinVelocity
}

func (s *Simulation) applyGravity(forces map[graph.NodeID]geom.Point) {
	for _, id := range s.ids {
		if !s.active[id] {
			continue
		}
		p := s.pos[id]
		dist := math.Hypot(p.X, p.Y)
		if dist == 0 {
			continue
		}
		forces[id] = forces[id].Sub(p.Scale(s.params.CentralGravity / dist))
	}
}

func (s *Simulation) applyRepulsion(forces map[graph.NodeID]geom.Point) {
	nd := s.params.NodeDistance
	a := -2.0 / 3.0 / nd
	b := 4.0 / 3.0

	for i, n1 := range s.ids {
		if !s.active[n1] {
			continue
		}
		for _, n2 := range s.ids[i+1:] {
			if !s.active[n2] {
				continue
			}
			d := s.pos[n2].Sub(s.pos[n1])
			dist := math.Hypot(d.X, d.Y)
			if dist == 0 {
				// coincident nodes: push apart along a fixed axis
				dist = 0.1
				d = geom.Point{X: dist}
			}
			if dist >= 2*nd {
				continue
			}

			force := 1.0
			if dist >= 0.5*nd {
				force = a*dist + b
			}
			f := d.Scale(force / dist)

			forces[n1] = forces[n1].Sub(f)
			forces[n2] = forces[n2].Add(f)
		}
	}
}

func (s *Simulation) applySprings(forces map[graph.NodeID]geom.Point) {
	for _, l := range s.links {
		if l.From == l.To || !s.active[l.From] || !s.active[l.To] {
			continue
		}
		d := s.pos[l.From].Sub(s.pos[l.To])
		dist := math.Max(math.Hypot(d.X, d.Y), 0.01)

		f := d.Scale(s.params.SpringConstant * (s.params.SpringLength - dist) / dist)
		forces[l.From] = forces[l.From].Add(f)
		forces[l.To] = forces[l.To].Sub(f)
	}
}

// Export writes the current layout in the saved-positions format.
func (s *Simulation) Export(w io.Writer) error {
	out := make(map[int]geom.Point, len(s.pos))
	for id, p := range s.pos {
		out[int(id)] = p
	}
	s.logger.Info("exporting layout", logging.Count(len(out)))
	return dataset.WritePositions(w, out)
}
