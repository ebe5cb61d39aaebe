package maze

import (
	"fmt"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// Orientation names the surface a maze is cut into
func Orientation(inside bool) string {
	if inside {
		return "INSIDE"
	}
	return "OUTSIDE"
}

// Report is the analysed, renderable form of one carved maze
type Report struct {
	Inside     bool
	Grid       *Grid // Logical view, mirrored for display
	ExitColumn int
	MinY, MaxY int
	Entrance   Cell
	Path       Path
	Reachable  mapset.Set[Cell]
	Metrics    Metrics
}

// Analyze resolves the logical maze of a carved grid, solves it and
// collects metrics. Any valid cell that cannot be reached from the mirrored
// entrances is reported as a carver defect, except in a test pattern where
// the rings are deliberately apart.
func Analyze(g *Grid, res *Result, inside bool) (*Report, error) {
	l := g.Logical()
	entrance, ok := Entrance(l)
	if !ok {
		return nil, fmt.Errorf("maze %dx%d has no usable cells: %w", g.W, g.H, ErrUnsatisfiable)
	}

	r := &Report{
		Inside:     inside,
		Grid:       MirrorReplicate(l, entrance),
		ExitColumn: res.ExitColumn,
		Entrance:   entrance,
	}
	r.MinY, r.MaxY = l.RowRange()

	r.Reachable = Reachable(l, Mirrors(l, entrance)...)
	if n := l.ValidCount(); r.Reachable.Size() != n && !res.TestPattern {
		return nil, fmt.Errorf("%d of %d cells unreachable from entrance %d,%d: %w",
			n-r.Reachable.Size(), n, entrance.X, entrance.Y, ErrCarverInvariant)
	}

	var err error
	r.Path, err = Solve(l, entrance, Exits(l)...)
	if err != nil && !res.TestPattern {
		return nil, err
	}
	r.Metrics = Measure(r.Grid)
	return r, nil
}

func (r *Report) exitColumn(x int) bool {
	s := r.Grid.Sector()
	return x%s == r.ExitColumn%s
}

// border writes the wall line between rows y and y-1
func (r *Report) border(b *strings.Builder, y int) {
	g := r.Grid
	for x := 0; x < g.W; x++ {
		b.WriteByte('+')
		switch {
		case y == r.MaxY+1:
			if r.exitColumn(x) {
				b.WriteString(" E ")
			} else {
				b.WriteString("---")
			}
		case y == r.MinY:
			b.WriteString("---")
		case g.At(x, y-1)&FlagU != 0:
			b.WriteString("   ")
		default:
			b.WriteString("---")
		}
	}
	b.WriteString("+\n")
}

func (r *Report) row(b *strings.Builder, y int, cell func(x int) string) {
	g := r.Grid
	// Left of column 0 is the last column, Helix rows down
	if g.At(g.Step(0, y, DirL))&FlagR != 0 {
		b.WriteByte(' ')
	} else {
		b.WriteByte('|')
	}
	for x := 0; x < g.W; x++ {
		if !g.Valid(x, y) {
			b.WriteString("###")
		} else {
			b.WriteString(cell(x))
		}
		if g.At(x, y)&FlagR != 0 {
			b.WriteByte(' ')
		} else {
			b.WriteByte('|')
		}
	}
	b.WriteByte('\n')
}

func (r *Report) draw(b *strings.Builder, cell func(x, y int) string) {
	for y := r.MaxY + 1; y >= r.MinY; y-- {
		r.border(b, y)
		if y > r.MinY {
			r.row(b, y-1, func(x int) string { return cell(x, y-1) })
		}
	}
}

// Plain renders the unwrapped maze as seen from outside
func (r *Report) Plain() string {
	var b strings.Builder
	g := r.Grid
	fmt.Fprintf(&b, "============ MAZE VISUALIZATION (%s, %dx%d) ============\n", Orientation(r.Inside), g.W, g.H)
	b.WriteString("\n")
	b.WriteString("Human-readable maze (viewed from outside, unwrapped):\n")
	b.WriteString("Legend: + = corner, - = horizontal wall, | = vertical wall, # = invalid, E = exit, space = passage\n")
	b.WriteString("Note: Maze wraps horizontally (cylinder) - leftmost and rightmost edges connect\n")
	fmt.Fprintf(&b, "Note: With %d nubs, the maze pattern repeats every %d cells around the circumference\n", g.Nubs, g.Sector())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Showing rows %d to %d (valid maze area)\n", r.MinY, r.MaxY)
	r.draw(&b, func(x, y int) string { return "   " })
	return b.String()
}

var arrows = [4]string{DirL: " < ", DirR: " > ", DirU: " ^ ", DirD: " v "}

// Solution renders the maze with the entrance-to-exit path
func (r *Report) Solution() string {
	marks := make(map[Cell]string, len(r.Path))
	for i, s := range r.Path {
		if i == 0 {
			marks[s.Cell] = " S "
		} else {
			marks[s.Cell] = arrows[s.Dir]
		}
	}

	var b strings.Builder
	b.WriteString("============ MAZE WITH SOLUTION ============\n")
	b.WriteString("\n")
	b.WriteString("Legend: S = start, arrows (^ v < >) show path to exit\n")
	b.WriteString("\n")
	r.draw(&b, func(x, y int) string {
		c := Cell{x, y}
		if m, ok := marks[c]; ok {
			return m
		}
		if !r.Reachable.Has(c) {
			return "###"
		}
		return "   "
	})
	return b.String()
}

// Machine renders the block read back by ParseMachine
func (r *Report) Machine() string {
	var b strings.Builder
	g := r.Grid
	b.WriteString("Machine-readable maze data:\n")
	fmt.Fprintf(&b, "MAZE_START %s %d %d %d %d %d %d\n",
		Orientation(r.Inside), g.W, r.MaxY-r.MinY+1, r.ExitColumn, g.Helix, r.MinY, r.MaxY)
	for y := r.MinY; y <= r.MaxY; y++ {
		fmt.Fprintf(&b, "MAZE_ROW %d ", y)
		for x := 0; x < g.W; x++ {
			if x > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%02X", uint8(g.At(x, y)))
		}
		b.WriteByte('\n')
	}
	b.WriteString("MAZE_END\n")
	return b.String()
}

// String joins all three renderings
func (r *Report) String() string {
	return r.Plain() + "\n" + r.Solution() + "\n" + r.Machine()
}
