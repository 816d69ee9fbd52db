package graph

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// squareFrom folds a flat list of cells into the largest square matrix it
// can fill.
func squareFrom(cells []int) [][]int {
	n := int(math.Sqrt(float64(len(cells))))
	m := make([][]int, n)
	for i := range m {
		m[i] = cells[i*n : (i+1)*n]
	}
	return m
}

func TestDegreeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("sum(out) == sum(in) == linked cells", prop.ForAll(
		func(cells []int) bool {
			w := squareFrom(cells)
			s := ComputeDegrees(w)

			linked := 0
			for _, row := range w {
				for _, v := range row {
					if v > 0 {
						linked++
					}
				}
			}

			sumIn, sumOut := 0, 0
			for i := range s.In {
				sumIn += s.In[i]
				sumOut += s.Out[i]
			}
			return sumIn == linked && sumOut == linked && s.Edges == linked
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.Property("gradient ratio stays in [0,1]", prop.ForAll(
		func(cells []int) bool {
			s := ComputeDegrees(squareFrom(cells))
			for i := range s.In {
				r := s.InRatio(NodeID(i))
				if r < 0 || r > 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
