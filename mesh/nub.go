package mesh

import (
	"math"

	"github.com/lixenwraith/puzzlebox/vmath"
)

// NubParams shapes the nubs that ride in the maze of the neighbouring part
type NubParams struct {
	Radius float64 // wall surface the nubs stand on
	Inside bool    // nubs point inward, riding an outside maze

	MazeThickness float64
	Clearance     float64
	RClearance    float64 // extra radial gap
	ZClearance    float64 // extra height gap per quarter step

	Horizontal float64 // circumferential size multiplier
	Vertical   float64 // height multiplier
	Normal     float64 // radial depth multiplier

	Step         float64
	Helix        int
	Nubs         int
	Height       float64 // top of the part
	ParkVertical bool
	MirrorInside bool
	Skew         float64

	Angle float64 // degrees, rotation of the first nub
}

// BuildNubs returns Nubs closed nub solids spread evenly from Angle. Each nub
// is a 4x4 front grid raised in its middle four points and a 4x4 backing grid
// sunk into the wall.
func BuildNubs(p NubParams) *Mesh {
	out := &Mesh{}
	if p.Nubs < 1 {
		return out
	}
	nub := nubTemplate(p)
	for k := 0; k < p.Nubs; k++ {
		deg := p.Angle + float64(k)*360/float64(p.Nubs)
		c := &Mesh{Points: append([]vmath.Vec3(nil), nub.Points...), Faces: nub.Faces}
		c.Transform(func(v vmath.Vec3) vmath.Vec3 { return vmath.V3RotateZ(v, deg) })
		out.Append(c)
	}
	return out
}

func nubTemplate(p NubParams) *Mesh {
	r := p.Radius
	depth := p.MazeThickness * p.Normal
	ri := r + depth
	w := r + depth + p.Clearance
	if p.Inside {
		ri = r - depth
		w = r - depth - p.Clearance
	}
	W := vmath.RoundDown(vmath.Steps(w, p.Step), p.Nubs)
	if W < 1 {
		W = p.Nubs
	}

	da := 2 * math.Pi / float64(W) / 4 * p.Horizontal
	dz := (p.Step/4 - p.ZClearance) * p.Vertical
	my := p.Step * da * 4 * float64(p.Helix) / (r * 2 * math.Pi)
	if p.Inside {
		da = -da
	} else if p.MirrorInside {
		my = -my
	}
	a := -da * 1.5
	z := p.Height - p.Step/2 - dz*1.5 - my*1.5
	if !p.ParkVertical {
		z -= p.Step / 8
	}

	gap := -p.RClearance
	if p.Inside {
		gap = p.RClearance
	}
	r += gap
	ri += gap

	m := &Mesh{}
	at := func(rad float64, X, Z int) vmath.Vec3 {
		h := z + float64(Z)*dz + float64(X)*my
		if Z == 1 || Z == 2 {
			h += p.Skew
		}
		return vmath.V3At(vmath.Polar(rad, a+da*float64(X)), h)
	}
	for Z := 0; Z < 4; Z++ {
		for X := 0; X < 4; X++ {
			rad := r
			if (X == 1 || X == 2) && (Z == 1 || Z == 2) {
				rad = ri
			}
			m.Add(at(rad, X, Z))
		}
	}
	// Backing grid, pushed back into the wall
	if p.Inside {
		r += p.Clearance - p.RClearance
	} else {
		r += -p.Clearance + p.RClearance
	}
	for Z := 0; Z < 4; Z++ {
		for X := 0; X < 4; X++ {
			m.Add(at(r, X, Z))
		}
	}

	for Z := 0; Z < 3; Z++ {
		for X := 0; X < 3; X++ {
			i := Z*4 + X
			m.Face(i+20, i+21, i+17)
			m.Face(i+20, i+17, i+16)
		}
	}
	for Z := 0; Z < 3; Z++ {
		i := Z * 4
		m.Face(i+4, i+20, i+16)
		m.Face(i+4, i+16, i)
		m.Face(i+23, i+7, i+3)
		m.Face(i+23, i+3, i+19)
	}
	for X := 0; X < 3; X++ {
		m.Face(X+28, X+12, X+13)
		m.Face(X+28, X+13, X+29)
		m.Face(X, X+16, X+17)
		m.Face(X, X+17, X+1)
	}
	for _, f := range nubFront {
		m.Face(f[0], f[1], f[2])
	}
	return m
}

// nubFront triangulates the raised front grid
var nubFront = [18][3]int{
	{0, 1, 5}, {0, 5, 4}, {4, 5, 9}, {4, 9, 8}, {8, 9, 12}, {9, 13, 12},
	{1, 2, 6}, {1, 6, 5}, {5, 6, 10}, {5, 10, 9}, {9, 10, 14}, {9, 14, 13},
	{2, 3, 6}, {3, 7, 6}, {6, 7, 11}, {6, 11, 10}, {10, 11, 15}, {10, 15, 14},
}
