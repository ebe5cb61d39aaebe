package maze

import (
	"math/bits"

	"github.com/zyedidia/generic/mapset"
)

// Metrics summarises the shape of a maze
type Metrics struct {
	Width, Height int
	Total         int
	Invalid       int
	Usable        int
	Components    int
	Largest       int // Size of the largest passage-connected component
	Unreachable   int // Usable cells outside every largest-size component
	DeadEnds      int // Degree 0 or 1
	Branching     int // Degree 3 or more
	AvgDegree     float64
	Degrees       [5]int
}

// Weights scale each ratio in Score
type Weights struct {
	Connected   float64
	Unreachable float64
	DeadEnd     float64
	Branching   float64
	AvgDegree   float64
}

// DefaultWeights rewards connectivity and branching, penalises dead ends
var DefaultWeights = Weights{
	Connected:   2.0,
	Unreachable: -5.0,
	DeadEnd:     -1.0,
	Branching:   1.0,
	AvgDegree:   1.0,
}

func degree(f Flag) int {
	return bits.OnesCount8(uint8(f & FlagA))
}

// Measure walks every cell of g. Mirrored sectors form equal-size
// components, so all components of the largest size count as reachable.
func Measure(g *Grid) Metrics {
	m := Metrics{Width: g.W, Height: g.H, Total: g.W * g.H}
	degreeSum := 0

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			v := g.At(x, y)
			if v&FlagI != 0 {
				m.Invalid++
				continue
			}
			d := degree(v)
			m.Degrees[d]++
			degreeSum += d
			if d <= 1 {
				m.DeadEnds++
			}
			if d >= 3 {
				m.Branching++
			}
		}
	}
	m.Usable = m.Total - m.Invalid
	if m.Usable > 0 {
		m.AvgDegree = float64(degreeSum) / float64(m.Usable)
	}

	seen := mapset.New[Cell]()
	var sizes []int
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			c := Cell{x, y}
			if !g.Valid(x, y) || seen.Has(c) {
				continue
			}
			comp := Reachable(g, c)
			comp.Each(func(k Cell) { seen.Put(k) })
			sizes = append(sizes, comp.Size())
			if comp.Size() > m.Largest {
				m.Largest = comp.Size()
			}
		}
	}
	m.Components = len(sizes)
	m.Unreachable = m.Usable
	for _, s := range sizes {
		if s == m.Largest {
			m.Unreachable -= s
		}
	}
	return m
}

// Score folds the metrics into one quality figure using w
func (m Metrics) Score(w Weights) float64 {
	usable := float64(m.Usable)
	if usable == 0 {
		usable = 1
	}
	connected := m.Usable - m.Unreachable

	score := w.Connected * float64(connected) / usable
	score += w.Unreachable * float64(m.Unreachable) / usable
	score += w.DeadEnd * float64(m.DeadEnds) / usable
	score += w.Branching * float64(m.Branching) / usable
	score += w.AvgDegree * m.AvgDegree / 4
	return score
}
