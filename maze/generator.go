package maze

import (
	"container/list"
	"fmt"

	"github.com/lixenwraith/puzzlebox/entropy"
)

// Direction bias for random maze choices
const (
	BiasL = 2
	BiasR = 1
	BiasU = 1
	BiasD = 4
)

// Complexity bounds
const (
	MinComplexity = -10
	MaxComplexity = 10
)

type Config struct {
	// Complexity in [-10,10]: magnitude biases the frontier toward depth-first
	// (long single path); negative values also requeue the current cell first,
	// growing extra dead ends.
	Complexity int

	// Inside marks a maze cut into the inner surface of a part
	Inside bool

	// Flip restricts outside-maze exits to sector boundary columns
	Flip bool

	// ParkVertical parks the nub in a vertical slot instead of a side pocket
	ParkVertical bool

	// NoMarker drops the marker shape at the park point
	NoMarker bool

	// TestPattern replaces the maze with horizontal rings
	TestPattern bool
}

// Result describes a carved maze
type Result struct {
	Start      Cell    // Park point where carving began
	Exit       Cell    // Top cell of the primary-sector exit column
	ExitColumn int     // Column of the deepest exit candidate
	ExitAngle  float64 // Degrees around the part, 360*ExitColumn/W
	PathLength int     // Depth of the exit candidate in the carve tree

	// TestPattern marks ring output, which is not one connected tree
	TestPattern bool
}

// frame is one frontier entry
type frame struct {
	x, y  int
	depth int
}

// Generate carves g in place. g must already carry the invalid band.
func Generate(g *Grid, src entropy.Source, cfg Config) (*Result, error) {
	if cfg.Complexity < MinComplexity || cfg.Complexity > MaxComplexity {
		return nil, fmt.Errorf("complexity %d outside [%d,%d]: %w", cfg.Complexity, MinComplexity, MaxComplexity, ErrUnsatisfiable)
	}
	if g.ValidCount() == 0 {
		return nil, fmt.Errorf("maze %dx%d has no usable cells: %w", g.W, g.H, ErrUnsatisfiable)
	}

	if !g.Valid(0, g.Helix+1) || !g.Valid(1, g.Helix+1) || (cfg.ParkVertical && !g.Valid(0, g.Helix+2)) {
		return nil, fmt.Errorf("maze %dx%d helix %d leaves no room to park: %w", g.W, g.H, g.Helix, ErrUnsatisfiable)
	}

	start := placePark(g, cfg)
	res := &Result{Start: start, TestPattern: cfg.TestPattern}

	var err error
	if cfg.TestPattern {
		res.ExitColumn = testPattern(g, cfg)
	} else {
		res.ExitColumn, res.PathLength, err = carve(g, src, start, cfg)
		if err != nil {
			return nil, err
		}
	}

	res.ExitAngle = 360 * float64(res.ExitColumn) / float64(g.W)
	res.Exit = openExits(g, res.ExitColumn)
	return res, nil
}

// placePark force-carves the park corridor and marker, returning the cell
// where random carving starts
func placePark(g *Grid, cfg Config) Cell {
	hy := g.Helix + 1 // First valid row at column 0
	marker := !cfg.Inside && !cfg.NoMarker

	if cfg.ParkVertical {
		// Slot runs down out of the maze from column 0
		g.Open(0, hy, DirD)
		x, y := g.Link(0, hy, DirU)
		if marker && g.Sector() > 2 && g.H > g.Helix+4 && allValid(g, Cell{0, y}, Cell{0, y + 1}, Cell{1, y - 1}, Cell{1, y}, Cell{1, y + 1}) {
			// Two legs joined over the top, open at the bottom right
			g.Link(x, y, DirU)
			g.Link(x, y+1, DirR)
			g.Link(x+1, y+1, DirD)
			g.Link(x+1, y, DirD)
			return Cell{x + 1, y - 1}
		}
		return Cell{x, y}
	}

	// Side pocket at column 0, entered from the right
	x, y := g.Link(0, hy, DirR)
	if marker && g.Sector() > 3 && g.H > g.Helix+3 && allValid(g, Cell{2, y}, Cell{0, y + 1}, Cell{1, y + 1}, Cell{2, y + 1}) {
		g.Link(x, y, DirU)
		g.Link(x, y+1, DirR)
		g.Link(x+1, y+1, DirD)
		g.Link(x, y+1, DirL)
		return Cell{x - 1, y + 1}
	}
	return Cell{x, y}
}

func allValid(g *Grid, cells ...Cell) bool {
	for _, c := range cells {
		if !g.InBounds(c.X, c.Y) || !g.Valid(c.X, c.Y) {
			return false
		}
	}
	return true
}

// testPattern links every horizontal pair of valid cells
func testPattern(g *Grid, cfg Config) int {
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if g.Occupancy(x, y)&FlagI == 0 && g.Occupancy(x+1, y)&FlagI == 0 {
				g.Link(x, y, DirR)
			}
		}
	}
	maxx := 0
	if !cfg.Flip || cfg.Inside {
		for maxx+1 < g.W && g.Occupancy(maxx+1, g.H-2)&FlagI == 0 {
			maxx++
		}
	}
	return maxx
}

// carve runs the randomized frontier walk. It returns the exit column and
// the depth at which it was found.
func carve(g *Grid, src entropy.Source, start Cell, cfg Config) (exitX, depth int, err error) {
	free := func(x, y int) bool { return g.Occupancy(x, y) == 0 }
	sector := g.Sector()

	complexity := cfg.Complexity
	if complexity < 0 {
		complexity = -complexity
	}

	frontier := list.New()
	frontier.PushBack(&frame{x: start.X, y: start.Y})
	maxDepth := 0

	for frontier.Len() > 0 {
		p := frontier.Remove(frontier.Front()).(*frame)
		x, y := p.x, p.y

		n := 0
		if free(x+1, y) {
			n += BiasR
		}
		if free(x-1, y) {
			n += BiasL
		}
		if free(x, y-1) {
			n += BiasD
		}
		if free(x, y+1) {
			n += BiasU
		}
		if n == 0 {
			// Dead end
			continue
		}

		v, err := entropy.Intn(src, n)
		if err != nil {
			return 0, 0, err
		}

		var d Dir
		switch {
		case free(x+1, y) && pick(&v, BiasR):
			d = DirR
		case free(x-1, y) && pick(&v, BiasL):
			d = DirL
		case free(x, y-1) && pick(&v, BiasD):
			d = DirD
		case free(x, y+1) && pick(&v, BiasU):
			d = DirU
		default:
			return 0, 0, fmt.Errorf("cell %d,%d weight %d: %w", x, y, n, ErrCarverInvariant)
		}
		x, y = g.Link(x, y, d)

		// Longest path that reaches the top
		if p.depth > maxDepth && g.Occupancy(x, y+1)&FlagI != 0 && (!cfg.Flip || cfg.Inside || x%sector == 0) {
			maxDepth = p.depth
			exitX = x
		}

		next := &frame{x: x, y: y, depth: p.depth + 1}
		v, err = entropy.Intn(src, 10)
		if err != nil {
			return 0, 0, err
		}
		if v < complexity {
			frontier.PushFront(next)
		} else {
			frontier.PushBack(next)
		}
		if cfg.Complexity <= 0 && v < -cfg.Complexity {
			frontier.PushFront(p)
		} else {
			frontier.PushBack(p)
		}
	}
	return exitX, maxDepth, nil
}

// pick consumes weight w from the draw and reports whether it landed here
func pick(v *int, w int) bool {
	*v -= w
	return *v < 0
}

// openExits cuts the lead-out from the top valid cell of the exit column in
// every sector and returns the primary-sector exit cell
func openExits(g *Grid, exitX int) Cell {
	sector := g.Sector()
	var primary Cell
	for x := exitX % sector; x < g.W; x += sector {
		y := g.H - 1
		for y > 0 && !g.Valid(x, y) {
			y--
		}
		if !g.Valid(x, y) {
			continue
		}
		g.Open(x, y, DirU)
		if x < sector {
			primary = Cell{x, y}
		}
	}
	return primary
}
