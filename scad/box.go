package scad

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/lixenwraith/puzzlebox/box"
	"github.com/lixenwraith/puzzlebox/config"
	"github.com/lixenwraith/puzzlebox/maze"
	"github.com/lixenwraith/puzzlebox/vmath"
)

// Meta is printed in the document header
type Meta struct {
	Created time.Time
	Notes   []string // extra header lines, e.g. the entropy seed
}

// WriteBox writes the complete OpenSCAD document for res. The header carries
// the input configuration as a YAML document inside comments.
func WriteBox(out io.Writer, res *box.Result, meta Meta) error {
	cfgYAML, err := res.Input.Marshal()
	if err != nil {
		return err
	}

	w := NewWriter(out)
	w.Comment("Puzzlebox cylindrical maze gift box")
	w.Comment("Created %s", meta.Created.UTC().Format(time.RFC3339))
	for _, n := range meta.Notes {
		w.Comment("%s", n)
	}
	w.Comment("---")
	w.CommentBlock(string(cfgYAML))
	w.Comment("...")

	c := &res.Config
	w.Statement("module outer(h,r){e=%d;minkowski(){cylinder(r1=0,r2=e,h=e,$fn=24);cylinder(h=h-e,r=r,$fn=%d);}}",
		vmath.Scaled(c.Outer.Round), outerFacets(c))

	w.Open(fmt.Sprintf("scale(%g)", 1.0/vmath.Scale))
	for _, p := range res.Parts {
		writePart(w, c, p)
		if err := w.Err(); err != nil {
			return fmt.Errorf("part %d: %w", p.Number, err)
		}
	}
	w.Close()
	return w.Flush()
}

// outerFacets is the polygon count of the outer shape, 100 for round
func outerFacets(c *config.Config) int {
	if c.Outer.Sides > 0 {
		return c.Outer.Sides
	}
	return 100
}

func writePart(w *Writer, c *config.Config, p *box.Part) {
	s := vmath.Scaled
	bt, bh := c.Base.Thickness, c.Base.Height
	mt, cl := c.Maze.Thickness, c.Wall.Clearance

	w.Comment("Part %d (%.2fmm to %.2fmm and %.2fmm/%.2fmm base)", p.Number, p.R0, p.R1, p.R2, p.R3)
	w.Statement("translate([%d,%d,0])", s(p.Offset.X), s(p.Offset.Y))
	rot := ""
	if c.Outer.Sides > 0 {
		rot = fmt.Sprintf("rotate([0,0,%f])", p.Rotation)
	}
	w.Open(rot)

	w.Open("difference(){union()")
	for _, m := range p.Mazes {
		writeMaze(w, m)
	}
	if !p.MazeInside && !p.MazeOutside && !p.Last {
		// Plain sleeve
		w.Open("difference()")
		w.Statement("translate([0,0,%d])cylinder(r=%d,h=%d,$fn=%d);translate([0,0,%d])cylinder(r=%d,h=%d,$fn=%d);",
			s(bt/2-cl), s(p.R1), s(p.Height-bt/2+cl), p.Facets,
			s(bt), s(p.R0), s(p.Height), p.Facets)
		w.Close()
	}

	w.Open("difference()")
	outerR := (p.R2 - c.Outer.Round) / math.Cos(math.Pi/float64(outerFacets(c)))
	switch {
	case p.Last:
		w.Statement("outer(%d,%d);", s(p.Height), s(outerR))
	case p.Number+1 >= c.Parts:
		w.Statement("mirror([1,0,0])outer(%d,%d);", s(bh), s(outerR))
	default:
		w.Statement("hull(){cylinder(r=%d,h=%d,$fn=%d);translate([0,0,%d])cylinder(r=%d,h=%d,$fn=%d);}",
			s(p.R2-mt), s(bh), p.Facets, s(c.Maze.Margin), s(p.R2), s(bh-c.Maze.Margin), p.Facets)
	}
	hole := p.R0
	if p.Number > 1 && p.MazeInside {
		hole += mt + cl
	}
	if !p.MazeInside && !p.Last {
		hole += cl
	}
	w.Statement("translate([0,0,%d])cylinder(r=%d,h=%d,$fn=%d);", s(bt), s(hole), s(p.Height), p.Facets)
	w.Close()
	w.Close()

	writeGrip(w, c, p)
	if c.Base.Wide && p.NextOutside && p.Number+1 < c.Parts {
		writeConnectors(w, c, p)
	}
	if c.MarkZero() && p.Number+1 >= c.Parts {
		writeMark(w, c, p)
	}
	w.Close()

	if c.Core.Solid && p.Number == 1 {
		r := p.R0 + cl
		if !p.MazeInside && !p.Last {
			r += cl
		}
		w.Statement("translate([0,0,%d])cylinder(r=%d,h=%d,$fn=%d);", s(bt), s(r), s(p.Height-bt), p.Facets)
	}
	w.Polyhedron(p.Nubs, false)
	w.Close()
}

func writeMaze(w *Writer, m *box.Maze) {
	w.Comment("Maze %s %d/%d", strings.ToLower(maze.Orientation(m.Inside)), m.W, m.Rows)
	if !m.Result.TestPattern {
		w.Comment("Path length %d", m.Result.PathLength)
	}
	w.CommentBlock("\n" + m.Report.String() + "\n")
	w.Polyhedron(m.Shell, m.Mirrored)
	w.Polyhedron(m.Ridge, m.Mirrored)
}

// writeGrip cuts a finger groove round the base
func writeGrip(w *Writer, c *config.Config, p *box.Part) {
	g := c.Outer.GripDepth
	if g == 0 {
		return
	}
	s := vmath.Scaled
	bh := c.Base.Height
	switch {
	case p.Number+1 < c.Parts:
		w.Statement("rotate([0,0,%f])translate([0,0,%d])rotate_extrude(start=180,angle=360,convexity=10,$fn=%d)translate([%d,0,0])circle(r=%d,$fn=9);",
			360/float64(p.Facets)/2, s(c.Maze.Margin+(bh-c.Maze.Margin)/2), p.Facets, s(p.R2+g), s(g*2))
	case p.Number+1 == c.Parts:
		w.Statement("translate([0,0,%d])rotate_extrude(start=180,angle=360,convexity=10,$fn=%d)translate([%d,0,0])circle(r=%d,$fn=9);",
			s(c.Outer.Round+(bh-c.Outer.Round)/2), outerFacets(c), s(p.R3+g), s(g*2))
	}
}

// writeConnectors bridges the maze entry points over a wide base
func writeConnectors(w *Writer, c *config.Config, p *box.Part) {
	s := vmath.Scaled
	mt, step := c.Maze.Thickness, c.Maze.Step
	n := vmath.RoundDown(vmath.Steps(p.R2-mt, step), c.Nub.Count)
	wi := 2 * (p.R2 - mt) * 2 * math.Pi / float64(n) / 4
	wo := 2 * p.R2 * 2 * math.Pi * 3 / float64(n) / 4
	h := c.Base.Height*2 + c.Wall.Clearance
	w.Statement("for(a=[0:%f:359])rotate([0,0,a])translate([0,%d,0])hull(){cube([%d,%d,%d],center=true);cube([%d,0.01,%d],center=true);}",
		360/float64(c.Nub.Count), s(p.R2), s(wi), s(mt*2), s(h), s(wo), s(h))
}

// writeMark notches position zero on the outer two parts
func writeMark(w *Writer, c *config.Config, p *box.Part) {
	wt, mt := c.Wall.Thickness, c.Maze.Thickness
	r, t := p.R0+wt/2, wt*2
	switch {
	case p.MazeInside:
		r = p.R0 + mt + wt/2
	case p.MazeOutside:
		r = p.R1 - mt - wt/2
	}
	if !p.MazeOutside {
		// stay clear of the outside
		r -= wt / 2
		t = wt * 3 / 2
	}
	a := 0.0
	if p.Last && p.MazeInside {
		a = -p.ExitAngle
		if c.Maze.MirrorInside {
			a = p.ExitAngle
		}
	}
	if p.Number+1 == c.Parts && p.MazeOutside {
		a = p.ExitAngle
	}
	s := vmath.Scaled
	w.Statement("rotate([0,0,%f])translate([0,%d,%d])cylinder(d=%d,h=%d,center=true,$fn=4);",
		a, s(r), s(p.Height), s(t), s(c.Maze.Step/2))
}
