package mesh

import (
	"fmt"
	"math"

	"github.com/lixenwraith/puzzlebox/maze"
	"github.com/lixenwraith/puzzlebox/vmath"
)

// ShellParams places a maze grid on its cylinder
type ShellParams struct {
	Inside        bool    // maze cut into the inner wall
	Radius        float64 // maze surface radius
	MazeThickness float64
	WallThickness float64
	Clearance     float64
	LastPart      bool // inside maze of the outermost part backs onto clearance only

	Base     float64 // bottom ring height
	Height   float64 // top ring height
	TopFront float64 // height of the surface lip above the maze
	Step     float64 // maze cell pitch
	Y0       float64 // height of row 0
	NubSkew  float64 // downward shift of the recessed floor
}

// Ring positions of a slice anchor
const (
	ringBack = iota
	ringRecess
	ringFront
)

// slice is one of the W*4 radial strips a shell is stitched from
type slice struct {
	anchor [3]vmath.Vec2
	open   bool
	l, r   Ref
	hist   []Ref // points on this slice, bottom up
}

type shellBuilder struct {
	mesh   *Mesh
	slices []slice
	w4     int
	bottom int
	limit  int
}

// BuildShell stitches the maze surface of g into one closed mesh. Every valid
// cell with a passage contributes a 4x4 point patch and each of the W*4 slices
// is advanced bottom to top, filling gaps from the slice history so every edge
// is shared.
func BuildShell(g *maze.Grid, p ShellParams) (*Mesh, error) {
	if p.Step <= 0 || p.Height <= p.Base {
		return nil, fmt.Errorf("shell height %.3f over base %.3f step %.3f: %w", p.Height, p.Base, p.Step, ErrGeometry)
	}
	b := newShellBuilder(g.W, p)
	b.bottom = len(b.mesh.Points)
	for _, ring := range []int{ringBack, ringRecess, ringFront} {
		for s := range b.slices {
			if err := b.point(s, ring, p.Base); err != nil {
				return nil, err
			}
		}
	}

	// Patch rows: front, recess, recess, front
	cellStart := make(map[maze.Cell]int)
	dy4 := p.Step * float64(g.Helix) / float64(b.w4)
	my := p.Step / 8
	y := p.Y0 - dy4*1.5
	rows := [4]struct {
		ring int
		dz   float64
	}{
		{ringFront, -3 * my},
		{ringRecess, -my - p.NubSkew},
		{ringRecess, my - p.NubSkew},
		{ringFront, 3 * my},
	}
	for cy := 0; cy < g.H; cy++ {
		for cx := 0; cx < g.W; cx++ {
			v := g.Occupancy(cx, cy)
			if v&maze.FlagA == 0 || v&maze.FlagI != 0 {
				continue
			}
			cellStart[maze.Cell{X: cx, Y: cy}] = len(b.mesh.Points)
			for _, row := range rows {
				for s := cx * 4; s < cx*4+4; s++ {
					z := y + float64(cy)*p.Step + dy4*float64(s) + row.dz
					if err := b.point(s, row.ring, z); err != nil {
						return nil, fmt.Errorf("cell (%d,%d): %w", cx, cy, err)
					}
				}
			}
		}
	}

	top := len(b.mesh.Points)
	for _, ring := range []struct {
		ring int
		z    float64
	}{
		{ringFront, p.TopFront},
		{ringRecess, p.Height},
		{ringBack, p.Height},
	} {
		for s := range b.slices {
			// top rings are surface points whatever their radius
			if err := b.pointAs(s, ring.ring, ring.z, false); err != nil {
				return nil, err
			}
		}
	}
	for s := range b.slices {
		if err := b.record(s, Ref{Index: b.bottom + s}); err != nil {
			return nil, err
		}
	}

	for cy := 0; cy < g.H; cy++ {
		for cx := 0; cx < g.W; cx++ {
			v := g.Occupancy(cx, cy)
			if v&maze.FlagA == 0 || v&maze.FlagI != 0 {
				continue
			}
			if err := b.cell(g, cellStart, cx, cy, v); err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", cx, cy, err)
			}
		}
	}

	for s := range b.slices {
		sr := (s + 1) % b.w4
		st := &b.slices[s]
		l := top + s
		if st.open && st.l.Recessed {
			l += b.w4
		}
		r := top + sr
		if st.open && st.r.Recessed {
			r += b.w4
		}
		closing := [4][2]int{
			{l, r},
			{top + s + b.w4, top + sr + b.w4},
			{top + s + 2*b.w4, top + sr + 2*b.w4},
			{b.bottom + s, b.bottom + sr},
		}
		for _, c := range closing {
			if err := b.advance(s, Ref{Index: c[0]}, Ref{Index: c[1]}); err != nil {
				return nil, fmt.Errorf("closing top: %w", err)
			}
		}
	}
	return b.mesh, nil
}

func newShellBuilder(w int, p ShellParams) *shellBuilder {
	b := &shellBuilder{
		mesh:   &Mesh{},
		w4:     w * 4,
		slices: make([]slice, w*4),
		limit:  int(p.Height/(p.Step/4)) + 10,
	}
	for s, a := range sliceAnchors(p, b.w4) {
		b.slices[s].anchor = a
	}
	return b
}

// sliceAnchors precomputes the back, recess and front plane positions of
// each of the w4 slices
func sliceAnchors(p ShellParams, w4 int) [][3]vmath.Vec2 {
	var radii [3]float64
	if p.Inside {
		back := p.WallThickness
		if p.LastPart {
			back = p.Clearance + 0.01
		}
		radii = [3]float64{p.Radius + p.MazeThickness + back, p.Radius + p.MazeThickness, p.Radius}
	} else {
		radii = [3]float64{p.Radius - p.MazeThickness - p.WallThickness, p.Radius - p.MazeThickness, p.Radius}
	}
	out := make([][3]vmath.Vec2, w4)
	for s := range out {
		a := 2 * math.Pi * (float64(s) - 1.5) / float64(w4)
		if !p.Inside {
			a = 2*math.Pi - a
		}
		for i, r := range radii {
			out[s][i] = vmath.Polar(r, a)
		}
	}
	return out
}

func (b *shellBuilder) point(s, ring int, z float64) error {
	return b.pointAs(s, ring, z, ring == ringRecess)
}

func (b *shellBuilder) pointAs(s, ring int, z float64, recessed bool) error {
	i := b.mesh.Add(vmath.V3At(b.slices[s].anchor[ring], z))
	return b.record(s, Ref{Index: i, Recessed: recessed})
}

func (b *shellBuilder) record(s int, ref Ref) error {
	st := &b.slices[s]
	if len(st.hist) >= b.limit {
		return fmt.Errorf("slice %d history exceeds %d points: %w", s, b.limit, ErrGeometry)
	}
	st.hist = append(st.hist, ref)
	return nil
}

// cell advances the four slices under one cell patch
func (b *shellBuilder) cell(g *maze.Grid, start map[maze.Cell]int, cx, cy int, v maze.Flag) error {
	s := cx * 4
	p := start[maze.Cell{X: cx, Y: cy}]
	f := func(i int) Ref { return Ref{Index: p + i} }
	r := func(i int) Ref { return Ref{Index: p + i, Recessed: true} }

	type step struct {
		s    int
		l, r Ref
		when bool
	}
	down := v&maze.FlagD == 0
	up := v&maze.FlagU == 0
	left := v&maze.FlagL != 0
	right := v&maze.FlagR != 0
	steps := []step{
		// Left
		{s, f(0), f(1), down},
		{s, f(0), r(5), true},
		{s, r(4), r(5), left},
		{s, r(8), r(9), left},
		{s, f(12), r(9), true},
		{s, f(12), f(13), up},
		// Middle
		{s + 1, f(1), f(2), down},
		{s + 1, r(5), r(6), true},
		{s + 1, r(9), r(10), true},
		{s + 1, f(13), f(14), up},
		// Right
		{s + 2, f(2), f(3), down},
		{s + 2, r(6), f(3), true},
		{s + 2, r(6), r(7), right},
		{s + 2, r(10), r(11), right},
		{s + 2, r(10), f(15), true},
		{s + 2, f(14), f(15), up},
	}

	// Join to the cell on the right, which sits Helix rows up across the seam
	nx, ny := cx+1, cy
	if nx >= g.W {
		nx -= g.W
		ny += g.Helix
	}
	if pr, ok := start[maze.Cell{X: nx, Y: ny}]; ok {
		rf := func(i int) Ref { return Ref{Index: pr + i} }
		rr := func(i int) Ref { return Ref{Index: pr + i, Recessed: true} }
		steps = append(steps,
			step{s + 3, f(3), rf(0), true},
			step{s + 3, r(7), rr(4), right},
			step{s + 3, r(11), rr(8), right},
			step{s + 3, f(15), rf(12), true},
		)
	}

	for _, st := range steps {
		if !st.when {
			continue
		}
		if err := b.advance(st.s, st.l, st.r); err != nil {
			return err
		}
	}
	return nil
}

func (b *shellBuilder) bottomRef(s int, recessed bool) Ref {
	if recessed {
		return Ref{Index: b.bottom + b.w4 + s, Recessed: true}
	}
	return Ref{Index: b.bottom + 2*b.w4 + s}
}

func indexOf(hist []Ref, from, idx int) int {
	for i := from; i < len(hist); i++ {
		if hist[i].Index == idx {
			return i
		}
	}
	return -1
}

// advance moves slice s up to the new left/right points, emitting the faces
// between the old and new edges. Skipped history points of the same kind are
// included so neighbouring slices share every edge.
func (b *shellBuilder) advance(s int, l, r Ref) error {
	if s >= b.w4 {
		return fmt.Errorf("slice %d beyond %d: %w", s, b.w4, ErrGeometry)
	}
	st := &b.slices[s]
	sr := (s + 1) % b.w4
	if !st.open {
		st.open = true
		st.l = b.bottomRef(s, l.Recessed)
		st.r = b.bottomRef(sr, r.Recessed)
		b.mesh.Face(st.l.Index, st.r.Index, b.bottom+sr, b.bottom+s)
	}
	if l == st.l && r == st.r {
		return nil
	}

	n1 := indexOf(st.hist, 0, st.l.Index)
	n2 := -1
	if n1 >= 0 {
		n2 = indexOf(st.hist, n1, l.Index)
	}
	if n2 < 0 {
		return fmt.Errorf("slice %d left %d->%d not in history: %w", s, st.l.Index, l.Index, ErrGeometry)
	}
	var face []int
	for _, h := range st.hist[n1:n2] {
		if h.Recessed == st.l.Recessed {
			face = append(face, h.Index)
		}
	}
	fan := len(face)
	face = append(face, l.Index)
	if fan > 0 {
		face = append(face, r.Index)
		b.mesh.Face(face...)
		face = face[:0]
	}

	rh := b.slices[sr].hist
	m1 := indexOf(rh, 0, st.r.Index)
	m2 := -1
	if m1 >= 0 {
		m2 = indexOf(rh, m1, r.Index)
	}
	if m2 < 0 {
		return fmt.Errorf("slice %d right %d->%d not in history: %w", s, st.r.Index, r.Index, ErrGeometry)
	}
	if fan == 0 || m1 < m2 {
		face = append(face, r.Index)
		for i := m2 - 1; i >= m1; i-- {
			if rh[i].Recessed == st.r.Recessed {
				face = append(face, rh[i].Index)
			}
		}
		if fan > 0 {
			face = append(face, st.l.Index)
		}
		if len(face) < 3 {
			return fmt.Errorf("slice %d degenerate face %v: %w", s, face, ErrGeometry)
		}
		b.mesh.Face(face...)
	}
	st.l, st.r = l, r
	return nil
}
