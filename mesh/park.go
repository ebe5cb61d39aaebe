package mesh

import (
	"fmt"

	"github.com/lixenwraith/puzzlebox/maze"
	"github.com/lixenwraith/puzzlebox/vmath"
)

// ParkParams shapes the ridge that holds a nub at the park point
type ParkParams struct {
	Vertical  bool
	Thickness float64 // ridge height off the maze floor, less than the maze depth
}

// BuildParkRidge returns one 32-point ridge solid per sector, standing on the
// maze floor at the park cell of g. Vertical parks get a ridge across the
// slot, horizontal parks one across the pocket mouth.
func BuildParkRidge(g *maze.Grid, s ShellParams, p ParkParams) (*Mesh, error) {
	if p.Thickness <= 0 || p.Thickness >= s.MazeThickness {
		return nil, fmt.Errorf("park ridge %.3f must be within maze depth %.3f: %w", p.Thickness, s.MazeThickness, ErrGeometry)
	}
	w4 := g.W * 4
	anchors := sliceAnchors(s, w4)
	dy := s.Step * float64(g.Helix) / float64(g.W)
	t := p.Thickness / s.MazeThickness

	m := &Mesh{}
	for n := 0; n < g.W; n += g.Sector() {
		base := len(m.Points)
		for Y := 0; Y < 4; Y++ {
			for X := 0; X < 4; X++ {
				sl := n*4 + X
				if !p.Vertical {
					sl += 2
				}
				an := anchors[sl%w4]
				z := s.Y0 - dy*1.5/4 + float64(g.Helix+1)*s.Step + float64(Y)*s.Step/4 + dy*float64(X)/4
				if p.Vertical {
					z += s.Step / 8
				} else {
					z += dy/2 - s.Step*3/8
				}
				top := an[ringRecess]
				if p.Vertical && (Y == 1 || Y == 2) || !p.Vertical && (X == 1 || X == 2) {
					top = vmath.V2Lerp(an[ringRecess], an[ringFront], t)
				} else if p.Vertical {
					z -= s.NubSkew
				}
				m.Add(vmath.V3At(an[ringBack], z))
				m.Add(vmath.V3At(top, z))
			}
		}
		ridgeFaces(m, base)
	}
	return m, nil
}

// ridgeFaces closes one ridge whose points alternate back and top over a 4x4 grid
func ridgeFaces(m *Mesh, p int) {
	quad := func(a, b, c, d int) { m.Quad(p+a, p+b, p+c, p+d) }
	for x := 0; x < 6; x += 2 {
		quad(x, x+1, x+3, x+2)
		for y := 0; y < 24; y += 8 {
			quad(x+y, x+2+y, x+10+y, x+8+y)
			quad(x+1+y, x+9+y, x+11+y, x+3+y)
		}
		quad(x+25, x+24, x+26, x+27)
	}
	for y := 0; y < 24; y += 8 {
		quad(y, y+8, y+9, y+1)
		quad(y+6, y+7, y+15, y+14)
	}
}
