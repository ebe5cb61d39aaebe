package maze

import (
	"errors"
	"fmt"
)

// Flag is the per-cell passage/validity mask
type Flag uint8

const (
	FlagL Flag = 0x01 // Left
	FlagR Flag = 0x02 // Right
	FlagU Flag = 0x04 // Up
	FlagD Flag = 0x08 // Down
	FlagA Flag = 0x0F // All directions
	FlagI Flag = 0x80 // Invalid
)

var (
	// ErrUnsatisfiable reports a configuration that cannot hold a maze
	ErrUnsatisfiable = errors.New("configuration unsatisfiable")
	// ErrCarverInvariant reports a carver defect (no legal move despite a non-zero weight)
	ErrCarverInvariant = errors.New("carver invariant violated")
)

// Dir is one of the four passage directions
type Dir uint8

const (
	DirL Dir = iota
	DirR
	DirU
	DirD
)

var dirFlags = [4]Flag{FlagL, FlagR, FlagU, FlagD}
var dirOpposite = [4]Dir{DirR, DirL, DirD, DirU}
var dirNames = [4]byte{'L', 'R', 'U', 'D'}

func (d Dir) Flag() Flag     { return dirFlags[d] }
func (d Dir) Opposite() Dir  { return dirOpposite[d] }
func (d Dir) String() string { return string(dirNames[d]) }

// Cell addresses one grid position
type Cell struct {
	X, Y int
}

// Grid is a W×H cylindrical cell array. Columns wrap modulo W and every full
// turn shifts the row by Helix. Nubs mirrored sectors share one logical maze.
type Grid struct {
	W, H  int
	Nubs  int
	Helix int

	cells []Flag
}

// NewGrid allocates a cleared grid
func NewGrid(w, h, nubs, helix int) (*Grid, error) {
	if w < 3 || h < 1 {
		return nil, fmt.Errorf("grid %dx%d too small: %w", w, h, ErrUnsatisfiable)
	}
	if nubs < 1 || w%nubs != 0 {
		return nil, fmt.Errorf("width %d not divisible into %d sectors: %w", w, nubs, ErrUnsatisfiable)
	}
	if helix < 0 {
		return nil, fmt.Errorf("negative helix %d: %w", helix, ErrUnsatisfiable)
	}
	return &Grid{
		W:     w,
		H:     h,
		Nubs:  nubs,
		Helix: helix,
		cells: make([]Flag, w*h),
	}, nil
}

// Sector is the column count of one mirrored sector
func (g *Grid) Sector() int {
	return g.W / g.Nubs
}

// InBounds reports whether (x,y) addresses a stored cell without wrapping
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// At returns the raw mask; out-of-range rows read as invalid
func (g *Grid) At(x, y int) Flag {
	x, y = g.Wrap(x, y)
	if y < 0 || y >= g.H {
		return FlagI
	}
	return g.cells[y*g.W+x]
}

// Or sets bits on a cell after wrapping. Out-of-range rows are ignored.
func (g *Grid) Or(x, y int, f Flag) {
	x, y = g.Wrap(x, y)
	if y < 0 || y >= g.H {
		return
	}
	g.cells[y*g.W+x] |= f
}

// Set overwrites the raw mask of an in-range cell
func (g *Grid) Set(x, y int, f Flag) {
	if g.InBounds(x, y) {
		g.cells[y*g.W+x] = f
	}
}

// Valid reports an in-range cell without the invalid flag
func (g *Grid) Valid(x, y int) bool {
	return g.At(x, y)&FlagI == 0
}

// Wrap normalises a column into [0,W), shifting the row by ∓Helix per turn
func (g *Grid) Wrap(x, y int) (int, int) {
	for x < 0 {
		x += g.W
		y -= g.Helix
	}
	for x >= g.W {
		x -= g.W
		y += g.Helix
	}
	return x, y
}

// Step moves one cell in d with wraparound
func (g *Grid) Step(x, y int, d Dir) (int, int) {
	switch d {
	case DirL:
		x--
	case DirR:
		x++
	case DirU:
		y++
	case DirD:
		y--
	}
	return g.Wrap(x, y)
}

// Mirror moves to the same position in the next sector. On a helix each
// sector climbs Helix/Nubs rows, so the row drops by that much to stay at
// the same height.
func (g *Grid) Mirror(x, y int) (int, int) {
	x, y = g.Wrap(x+g.Sector(), y)
	if g.Helix > 0 && g.Helix%g.Nubs == 0 {
		y -= g.Helix / g.Nubs
	}
	return x, y
}

// Occupancy ORs the raw masks of every mirrored position of (x,y). Carving
// consults this union so one carve is replicated in every sector. Mirrors
// drop Helix/Nubs rows whenever Helix is a multiple of Nubs, not only when
// Helix equals Nubs.
func (g *Grid) Occupancy(x, y int) Flag {
	x, y = g.Wrap(x, y)
	var v Flag
	for n := 0; n < g.Nubs; n++ {
		if y < 0 || y >= g.H {
			v |= FlagI
		} else {
			v |= g.cells[y*g.W+x]
		}
		if n+1 < g.Nubs {
			x, y = g.Mirror(x, y)
		}
	}
	return v
}

// Link carves a bidirectional passage from (x,y) toward d. It returns the
// wrapped neighbour.
func (g *Grid) Link(x, y int, d Dir) (int, int) {
	g.Or(x, y, d.Flag())
	nx, ny := g.Step(x, y, d)
	g.Or(nx, ny, d.Opposite().Flag())
	return nx, ny
}

// Open sets a one-sided passage bit leading out of the valid region
func (g *Grid) Open(x, y int, d Dir) {
	g.Or(x, y, d.Flag())
}

// MarkInvalid flags every cell for which outside returns true
func (g *Grid) MarkInvalid(outside func(x, y int) bool) {
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if outside(x, y) {
				g.cells[y*g.W+x] |= FlagI
			}
		}
	}
}

// ValidCount counts cells without the invalid flag
func (g *Grid) ValidCount() int {
	n := 0
	for _, c := range g.cells {
		if c&FlagI == 0 {
			n++
		}
	}
	return n
}

// Clone returns an independent copy
func (g *Grid) Clone() *Grid {
	c := *g
	c.cells = append([]Flag(nil), g.cells...)
	return &c
}

// Logical resolves every cell to its Occupancy: the maze as it is cut into
// the part, identical in every sector.
func (g *Grid) Logical() *Grid {
	l := g.Clone()
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			v := g.Occupancy(x, y)
			if v&FlagI != 0 {
				v = FlagI
			}
			l.cells[y*g.W+x] = v
		}
	}
	return l
}

// Neighbor follows an open passage from (x,y). ok is false when the bit is
// absent or leads outside the valid region.
func (g *Grid) Neighbor(x, y int, d Dir) (nx, ny int, ok bool) {
	v := g.At(x, y)
	if v&FlagI != 0 || v&d.Flag() == 0 {
		return 0, 0, false
	}
	nx, ny = g.Step(x, y, d)
	if !g.Valid(nx, ny) {
		return 0, 0, false
	}
	return nx, ny, true
}

// RowRange returns the first and last rows holding a valid cell
func (g *Grid) RowRange() (minY, maxY int) {
	minY, maxY = 0, g.H-1
	for y := 0; y < g.H; y++ {
		if g.rowHasValid(y) {
			minY = y
			break
		}
	}
	for y := g.H - 1; y >= 0; y-- {
		if g.rowHasValid(y) {
			maxY = y
			break
		}
	}
	return minY, maxY
}

func (g *Grid) rowHasValid(y int) bool {
	for x := 0; x < g.W; x++ {
		if g.cells[y*g.W+x]&FlagI == 0 {
			return true
		}
	}
	return false
}
