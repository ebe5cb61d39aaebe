package maze

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformed reports machine-readable maze data that cannot be decoded
var ErrMalformed = errors.New("malformed maze data")

// Dump is one maze decoded from a MAZE_START..MAZE_END block. Grid row 0 is
// maze row MinY.
type Dump struct {
	Part       int // From the nearest preceding "Part n" comment, 0 if none
	Inside     bool
	Width      int
	Rows       int
	ExitColumn int
	Helix      int
	MinY, MaxY int
	Grid       *Grid
}

// Orientation returns INSIDE or OUTSIDE
func (d *Dump) Orientation() string {
	return Orientation(d.Inside)
}

// Row returns the stored row for maze row y
func (d *Dump) Row(y int) int {
	return y - d.MinY
}

// ParseMachine reads every machine-readable maze block from r. Lines may
// carry a leading "//" as they do inside SCAD output.
func ParseMachine(r io.Reader) ([]*Dump, error) {
	var (
		dumps []*Dump
		cur   *Dump
		part  int
		seen  []bool
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		line = strings.TrimSpace(strings.TrimPrefix(line, "//"))
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "Part":
			if len(fields) > 1 {
				if n, err := strconv.Atoi(fields[1]); err == nil {
					part = n
				}
			}

		case "MAZE_START":
			if cur != nil {
				return nil, fmt.Errorf("line %d: MAZE_START inside open block: %w", lineNum, ErrMalformed)
			}
			d, err := parseStart(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			d.Part = part
			cur = d
			seen = make([]bool, d.Rows)

		case "MAZE_ROW":
			if cur == nil {
				return nil, fmt.Errorf("line %d: MAZE_ROW before MAZE_START: %w", lineNum, ErrMalformed)
			}
			if err := cur.parseRow(fields, seen); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}

		case "MAZE_END":
			if cur == nil {
				return nil, fmt.Errorf("line %d: MAZE_END without MAZE_START: %w", lineNum, ErrMalformed)
			}
			for i, ok := range seen {
				if !ok {
					return nil, fmt.Errorf("line %d: row %d missing: %w", lineNum, cur.MinY+i, ErrMalformed)
				}
			}
			dumps = append(dumps, cur)
			cur = nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read maze data: %w", err)
	}
	if cur != nil {
		return nil, fmt.Errorf("unterminated maze block: %w", ErrMalformed)
	}
	return dumps, nil
}

func parseStart(fields []string) (*Dump, error) {
	if len(fields) != 8 {
		return nil, fmt.Errorf("MAZE_START has %d fields, want 8: %w", len(fields), ErrMalformed)
	}
	d := &Dump{}
	switch fields[1] {
	case "INSIDE":
		d.Inside = true
	case "OUTSIDE":
	default:
		return nil, fmt.Errorf("orientation %q: %w", fields[1], ErrMalformed)
	}

	nums := make([]int, 6)
	for i := range nums {
		n, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return nil, fmt.Errorf("field %d %q: %w", i+2, fields[i+2], ErrMalformed)
		}
		nums[i] = n
	}
	d.Width, d.Rows, d.ExitColumn, d.Helix, d.MinY, d.MaxY = nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]
	if d.MaxY-d.MinY+1 != d.Rows {
		return nil, fmt.Errorf("rows %d do not span %d..%d: %w", d.Rows, d.MinY, d.MaxY, ErrMalformed)
	}

	g, err := NewGrid(d.Width, d.Rows, 1, d.Helix)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrMalformed)
	}
	d.Grid = g
	return d, nil
}

func (d *Dump) parseRow(fields []string, seen []bool) error {
	if len(fields) < 2 {
		return fmt.Errorf("MAZE_ROW without row number: %w", ErrMalformed)
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("row number %q: %w", fields[1], ErrMalformed)
	}
	row := d.Row(y)
	if row < 0 || row >= d.Rows {
		return fmt.Errorf("row %d outside %d..%d: %w", y, d.MinY, d.MaxY, ErrMalformed)
	}
	vals := fields[2:]
	if len(vals) != d.Width {
		return fmt.Errorf("row %d has %d cells, want %d: %w", y, len(vals), d.Width, ErrMalformed)
	}
	for x, s := range vals {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return fmt.Errorf("row %d cell %d %q: %w", y, x, s, ErrMalformed)
		}
		d.Grid.Set(x, row, Flag(v))
	}
	seen[row] = true
	return nil
}
