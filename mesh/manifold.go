package mesh

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Stats summarises a checked mesh
type Stats struct {
	Vertices   int // referenced by at least one face
	Edges      int
	Faces      int
	Components int
	Euler      int // V - E + F
}

type edge struct{ a, b int }

// Check verifies that every edge is used exactly once in each direction, which
// makes the mesh a closed consistently oriented 2-manifold surface.
func Check(m *Mesh) (Stats, error) {
	directed := make(map[edge]int)
	used := mapset.New[int]()

	for fi, f := range m.Faces {
		if len(f) < 3 {
			return Stats{}, fmt.Errorf("face %d has %d points: %w", fi, len(f), ErrGeometry)
		}
		for i, a := range f {
			if a < 0 || a >= len(m.Points) {
				return Stats{}, fmt.Errorf("face %d references point %d of %d: %w", fi, a, len(m.Points), ErrGeometry)
			}
			b := f[(i+1)%len(f)]
			if a == b {
				return Stats{}, fmt.Errorf("face %d repeats point %d: %w", fi, a, ErrGeometry)
			}
			directed[edge{a, b}]++
			used.Put(a)
		}
	}

	undirected := 0
	for e, n := range directed {
		if n != 1 {
			return Stats{}, fmt.Errorf("edge %d->%d used %d times: %w", e.a, e.b, n, ErrGeometry)
		}
		if directed[edge{e.b, e.a}] != 1 {
			return Stats{}, fmt.Errorf("edge %d->%d has no opposite: %w", e.a, e.b, ErrGeometry)
		}
		if e.a < e.b {
			undirected++
		}
	}

	st := Stats{
		Vertices:   used.Size(),
		Edges:      undirected,
		Faces:      len(m.Faces),
		Components: components(m),
	}
	st.Euler = st.Vertices - st.Edges + st.Faces
	return st, nil
}

// components counts face-connected pieces with a union-find over point indices
func components(m *Mesh) int {
	parent := make([]int, len(m.Points))
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, f := range m.Faces {
		r := find(f[0])
		for _, v := range f[1:] {
			if o := find(v); o != r {
				parent[o] = r
			}
		}
	}
	roots := mapset.New[int]()
	for _, f := range m.Faces {
		roots.Put(find(f[0]))
	}
	return roots.Size()
}
