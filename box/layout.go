package box

import (
	"fmt"

	"github.com/lixenwraith/puzzlebox/config"
	"github.com/lixenwraith/puzzlebox/maze"
	"github.com/lixenwraith/puzzlebox/vmath"
)

// bandTolerance keeps cells whose centre lands on the band edge. The park
// row sits exactly on the lower edge.
const bandTolerance = 1e-6

// Layout places a maze grid on a wall of a part
type Layout struct {
	Inside bool
	Radius float64 // wall surface the maze is cut into
	W, H   int     // H includes padding rows below and above the band
	Rows   int     // rows that fit the band
	Base   float64 // bottom of the maze band
	Y0     float64 // centre height of row 0 at column 0
	DY     float64 // climb per column
	Low    float64 // lowest allowed cell centre
	High   float64 // highest allowed cell centre
}

// layoutMaze sizes the maze on the inside (r0) or outside (r1) of part p
func layoutMaze(c *config.Config, p *Part, r float64, inside bool) (Layout, error) {
	step, mt := c.Maze.Step, c.Maze.Thickness
	helix := c.Maze.Helix

	surface := r - mt
	if inside {
		surface = r + mt
	}
	l := Layout{
		Inside: inside,
		Radius: r,
		W:      vmath.RoundDown(vmath.Steps(surface, step), c.Nub.Count),
	}

	base := c.Base.Height
	if inside {
		base = c.Base.Thickness
		if p.Number > 2 {
			base += c.Base.Height
		}
	}
	if c.Core.Solid {
		base += c.Core.Height
	}
	if inside {
		base += c.Base.Gap
	}
	l.Base = base

	h := p.Height - base - c.Maze.Margin - step/8
	if c.Park.Vertical {
		h -= step / 4
	}
	l.Rows = int(h / step)
	if l.W < 3 || l.Rows < 1 {
		return l, fmt.Errorf("part %d %s maze %dx%d too small: %w", p.Number, maze.Orientation(inside), l.W, l.Rows, maze.ErrUnsatisfiable)
	}

	l.Y0 = base + step/2 - step*float64(helix+1) + step/8
	l.H = l.Rows + 2 + helix
	if helix > 0 {
		l.DY = step * float64(helix) / float64(l.W)
	}
	l.Low = base + step/2 + step/8
	l.High = p.Height - step/2 - c.Maze.Margin - step/8
	return l, nil
}

// Z is the centre height of cell (x,y)
func (l Layout) Z(step float64, x, y int) float64 {
	return step*float64(y) + l.Y0 + l.DY*float64(x)
}

// Grid allocates the maze grid with everything outside the band invalid
func (l Layout) Grid(c *config.Config) (*maze.Grid, error) {
	g, err := maze.NewGrid(l.W, l.H, c.Nub.Count, c.Maze.Helix)
	if err != nil {
		return nil, err
	}
	g.MarkInvalid(func(x, y int) bool {
		z := l.Z(c.Maze.Step, x, y)
		return z < l.Low-bandTolerance || z > l.High+bandTolerance
	})
	return g, nil
}
