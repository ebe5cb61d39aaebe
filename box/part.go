package box

import (
	"math"

	"github.com/lixenwraith/puzzlebox/config"
	"github.com/lixenwraith/puzzlebox/maze"
	"github.com/lixenwraith/puzzlebox/mesh"
	"github.com/lixenwraith/puzzlebox/vmath"
)

// Part is one nested cylinder of the box. Part 1 is innermost.
type Part struct {
	Number int
	Last   bool

	// Which walls carry a maze, on this part and on the next one out
	MazeInside  bool
	MazeOutside bool
	NextInside  bool
	NextOutside bool

	R0 float64 // inside of part and maze
	R1 float64 // outside of part and maze
	R2 float64 // outside of base
	R3 float64 // outside of base over the flats of a polygonal outer

	Height float64
	Facets int // segments for round CSG

	Mazes     []*Maze
	ExitAngle float64    // exit of the last maze cut into this part, degrees
	Nubs      *mesh.Mesh // nil when the part has none
	NubAngle  float64    // degrees

	Offset   vmath.Vec2 // position on the print bed
	Rotation float64    // degrees, aligns the outer flats
}

// Maze is one carved maze surface of a part
type Maze struct {
	Layout
	Grid     *maze.Grid
	Result   *maze.Result
	Report   *maze.Report
	Shell    *mesh.Mesh
	Ridge    *mesh.Mesh // nil without a park ridge
	Mirrored bool // emitted mirrored in X
}

// planPart works out which walls of part n carry mazes and its radii and
// height
func planPart(c *config.Config, n int) *Part {
	p := &Part{
		Number:      n,
		Last:        n == c.Parts,
		MazeInside:  c.Maze.Inside,
		MazeOutside: !c.Maze.Inside,
		NextInside:  c.Maze.Inside,
		NextOutside: !c.Maze.Inside,
	}
	if c.Maze.Flip {
		if n&1 == 1 {
			p.MazeInside = !p.MazeInside
			p.NextOutside = !p.NextOutside
		} else {
			p.MazeOutside = !p.MazeOutside
			p.NextInside = !p.NextInside
		}
	}
	if n == 1 {
		p.MazeInside = false
	}
	if n == c.Parts {
		p.MazeOutside = false
		p.NextInside = false
	}
	if n+1 >= c.Parts {
		p.NextOutside = false
	}

	wt, mt, cl := c.Wall.Thickness, c.Maze.Thickness, c.Wall.Clearance
	r1 := c.Core.Diameter/2 + wt + float64(n-1)*(wt+mt+cl)
	if c.Core.Solid {
		// part 2 ends up at the core diameter
		r1 -= wt + mt + cl
		if c.Maze.Inside {
			r1 += mt
		}
	}
	p.Facets = 4 * vmath.RoundDown(vmath.Steps(r1, c.Maze.Step), c.Nub.Count)

	r0 := r1 - wt
	if p.MazeInside && n > 1 {
		r0 -= mt
	}
	if p.MazeOutside && n < c.Parts {
		r1 += mt
	}
	r2 := r1
	if n < c.Parts {
		r2 += cl
	}
	if p.NextInside {
		r2 += mt
	}
	if p.NextOutside || n+1 == c.Parts {
		r2 += wt
	}
	if c.Base.Wide && n+1 < c.Parts {
		if p.NextOutside {
			r2 += mt
		} else {
			r2 += wt
		}
	}
	r3 := r2
	if c.Outer.Sides > 0 && n+1 >= c.Parts {
		r3 /= math.Cos(math.Pi / float64(c.Outer.Sides))
	}
	p.R0, p.R1, p.R2, p.R3 = r0, r1, r2, r3

	h := c.Core.Height + c.Base.Thickness + (c.Base.Thickness+c.Base.Gap)*float64(n-1)
	if c.Core.Solid {
		h += c.Core.Gap + c.Base.Height
	}
	if n == 1 {
		if c.Core.Solid {
			h -= c.Core.Height
		} else {
			h -= c.Core.Gap
		}
	}
	if n > 1 {
		// the base of the previous part adds to this one
		h -= c.Base.Height
	}
	p.Height = h

	if c.Outer.Sides > 0 {
		p.Rotation = 180 / float64(c.Outer.Sides)
		if n+1 == c.Parts {
			p.Rotation += 180
		}
	}
	return p
}

// BedRadius is the footprint radius used to space parts on the print bed
func (p *Part) BedRadius(c *config.Config) float64 {
	if c.Outer.Sides&1 == 1 {
		return p.R3
	}
	return p.R2
}

// bed lays parts out on a roughly square grid, 5mm apart
type bed struct {
	x, y float64
	n    int
	sq   int
}

func newBed(parts int) *bed {
	sq := int(math.Sqrt(float64(parts)) + 0.5)
	return &bed{sq: sq, n: sq*sq - parts}
}

func (b *bed) place(p *Part, c *config.Config) {
	r := p.BedRadius(c)
	p.Offset = vmath.Vec2{X: b.x + r, Y: b.y + r}
	b.x += r + p.R2 + 5
	b.n++
	if b.n >= b.sq {
		b.n = 0
		b.x = 0
		b.y += r*2 + 5
	}
}
