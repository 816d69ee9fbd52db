package graph

// DegreeStats holds per-node degrees and their extremes.
type DegreeStats struct {
	In     []int
	Out    []int
	MinIn  int
	MaxIn  int
	MinOut int
	MaxOut int
	Edges  int
}

// ComputeDegrees counts, in a single pass, the outgoing and incoming links of
// every node. weights must be square; a cell > 0 is a link.
func ComputeDegrees(weights [][]int) DegreeStats {
	n := len(weights)
	s := DegreeStats{In: make([]int, n), Out: make([]int, n)}

	for i, row := range weights {
		for j, w := range row {
			if w > 0 {
				s.Out[i]++
				s.In[j]++
				s.Edges++
			}
		}
	}

	for i := 0; i < n; i++ {
		if i == 0 || s.In[i] < s.MinIn {
			s.MinIn = s.In[i]
		}
		if i == 0 || s.Out[i] < s.MinOut {
			s.MinOut = s.Out[i]
		}
		s.MaxIn = max(s.MaxIn, s.In[i])
		s.MaxOut = max(s.MaxOut, s.Out[i])
	}
	return s
}

// InRatio is the in-degree of id divided by the largest in-degree, so the
// scale always starts at zero links. It is 0 when there are no links.
func (s DegreeStats) InRatio(id NodeID) float64 {
	if s.MaxIn == 0 || int(id) < 0 || int(id) >= len(s.In) {
		return 0
	}
	return float64(s.In[id]) / float64(s.MaxIn)
}
