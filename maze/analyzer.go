package maze

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// ErrNoPath is returned by Solve when no exit is reachable
var ErrNoPath = errors.New("no path from entrance to exit")

// Step is one cell on a solution path and the direction taken out of it
type Step struct {
	Cell
	Dir Dir
}

// Path runs from the entrance to an exit. The last step always leaves
// upward through the exit lead-out.
type Path []Step

// Reachable runs a BFS over open passages from every start cell
func Reachable(g *Grid, from ...Cell) mapset.Set[Cell] {
	seen := mapset.New[Cell]()
	queue := make([]Cell, 0, len(from))
	for _, c := range from {
		if g.Valid(c.X, c.Y) && !seen.Has(c) {
			seen.Put(c)
			queue = append(queue, c)
		}
	}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for d := DirL; d <= DirD; d++ {
			nx, ny, ok := g.Neighbor(c.X, c.Y, d)
			if !ok {
				continue
			}
			n := Cell{nx, ny}
			if seen.Has(n) {
				continue
			}
			seen.Put(n)
			queue = append(queue, n)
		}
	}
	return seen
}

// Solve finds the shortest passage path from entrance to any of exits
func Solve(g *Grid, entrance Cell, exits ...Cell) (Path, error) {
	if !g.Valid(entrance.X, entrance.Y) {
		return nil, fmt.Errorf("entrance %d,%d invalid: %w", entrance.X, entrance.Y, ErrNoPath)
	}
	targets := mapset.New[Cell]()
	for _, e := range exits {
		targets.Put(e)
	}

	parent := map[Cell]Cell{entrance: entrance}
	queue := []Cell{entrance}
	found := false
	var end Cell

	for len(queue) > 0 && !found {
		c := queue[0]
		queue = queue[1:]
		if targets.Has(c) {
			found, end = true, c
			break
		}
		for d := DirL; d <= DirD; d++ {
			nx, ny, ok := g.Neighbor(c.X, c.Y, d)
			if !ok {
				continue
			}
			n := Cell{nx, ny}
			if _, ok := parent[n]; ok {
				continue
			}
			parent[n] = c
			queue = append(queue, n)
		}
	}
	if !found {
		return nil, fmt.Errorf("entrance %d,%d: %w", entrance.X, entrance.Y, ErrNoPath)
	}

	var cells []Cell
	for c := end; ; c = parent[c] {
		cells = append(cells, c)
		if c == entrance {
			break
		}
	}
	path := make(Path, len(cells))
	for i := range cells {
		path[i].Cell = cells[len(cells)-1-i]
	}
	for i := 0; i+1 < len(path); i++ {
		path[i].Dir = g.direction(path[i].Cell, path[i+1].Cell)
	}
	path[len(path)-1].Dir = DirU
	return path, nil
}

// direction derives the move between adjacent cells. A move across the seam
// of a helix changes both coordinates; the horizontal part wins.
func (g *Grid) direction(from, to Cell) Dir {
	dx := (to.X - from.X + g.W) % g.W
	switch {
	case dx == 1:
		return DirR
	case dx == g.W-1:
		return DirL
	case to.Y > from.Y:
		return DirU
	default:
		return DirD
	}
}

// MirrorReplicate copies every cell reached from start into its mirrored
// positions on a rendering-only copy of g
func MirrorReplicate(g *Grid, start Cell) *Grid {
	out := g.Clone()
	if g.Nubs < 2 {
		return out
	}
	Reachable(g, start).Each(func(c Cell) {
		v := g.At(c.X, c.Y)
		x, y := c.X, c.Y
		for n := 1; n < g.Nubs; n++ {
			x, y = g.Mirror(x, y)
			if out.InBounds(x, y) && out.Valid(x, y) {
				out.cells[y*g.W+x] |= v & FlagA
			}
		}
	})
	return out
}

// Entrance is the first valid cell of the primary sector, scanning rows
// upward from the bottom
func Entrance(g *Grid) (Cell, bool) {
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.Sector(); x++ {
			if g.Valid(x, y) {
				return Cell{x, y}, true
			}
		}
	}
	return Cell{}, false
}

// Mirrors lists c followed by its images in the other sectors
func Mirrors(g *Grid, c Cell) []Cell {
	out := []Cell{c}
	x, y := c.X, c.Y
	for n := 1; n < g.Nubs; n++ {
		x, y = g.Mirror(x, y)
		out = append(out, Cell{x, y})
	}
	return out
}

// Exits lists every valid cell with an upward lead-out out of the maze
func Exits(g *Grid) []Cell {
	var out []Cell
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if g.Valid(x, y) && g.At(x, y)&FlagU != 0 && !g.Valid(x, y+1) {
				out = append(out, Cell{x, y})
			}
		}
	}
	return out
}
