// Package box plans the parts of a puzzle box and builds their mazes, shells
// and nubs
package box

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/puzzlebox/config"
	"github.com/lixenwraith/puzzlebox/entropy"
	"github.com/lixenwraith/puzzlebox/maze"
	"github.com/lixenwraith/puzzlebox/mesh"
)

// ExitRef carries the first maze exit angle across parts for fixed nubs
type ExitRef struct {
	Angle float64
	Set   bool
}

// Result is a fully built box
type Result struct {
	Input  config.Config // as given
	Config config.Config // normalised copy the parts were built from
	Parts  []*Part
}

// Score sums the quality score of every maze in the box
func (r *Result) Score(w maze.Weights) float64 {
	total := 0.0
	for _, p := range r.Parts {
		for _, m := range p.Mazes {
			total += m.Report.Metrics.Score(w)
		}
	}
	return total
}

// Build normalises a copy of cfg and builds every part, or only cfg.Part
// when it is set. Nothing is returned on error.
func Build(cfg *config.Config, src entropy.Source, log logrus.FieldLogger) (*Result, error) {
	c := *cfg
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Input: *cfg, Config: c}
	first, last := 1, c.Parts
	if c.Part != 0 {
		first, last = c.Part, c.Part
	}

	var exit ExitRef
	b := newBed(c.Parts)
	for n := first; n <= last; n++ {
		p, err := buildPart(&c, n, src, &exit, log)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", n, err)
		}
		b.place(p, &c)
		res.Parts = append(res.Parts, p)
	}
	return res, nil
}

func buildPart(c *config.Config, n int, src entropy.Source, exit *ExitRef, log logrus.FieldLogger) (*Part, error) {
	p := planPart(c, n)
	log.WithFields(logrus.Fields{
		"part":   n,
		"r0":     p.R0,
		"r1":     p.R1,
		"r2":     p.R2,
		"height": p.Height,
	}).Debug("part planned")

	angle := 0.0
	walls := []struct {
		on     bool
		r      float64
		inside bool
	}{
		{p.MazeInside, p.R0, true},
		{p.MazeOutside, p.R1, false},
	}
	for _, w := range walls {
		if !w.on {
			continue
		}
		m, err := buildMaze(c, p, w.r, w.inside, src, log)
		if err != nil {
			return nil, err
		}
		p.Mazes = append(p.Mazes, m)
		p.Facets = m.W * 4
		angle = m.Result.ExitAngle
		if c.Nub.Fix && !exit.Set {
			*exit = ExitRef{Angle: angle, Set: true}
		}
	}

	p.ExitAngle = angle

	switch {
	case !p.MazeOutside && n+1 == c.Parts:
		// lines up with the lid
		angle = 0
	case c.Nub.Fix:
		angle = math.Mod(exit.Angle+180, 360)
	case n < c.Parts && !c.Base.Wide:
		v, err := entropy.Intn(src, 360)
		if err != nil {
			return nil, fmt.Errorf("nub angle: %w", err)
		}
		angle = float64(v)
	}
	p.NubAngle = angle

	nubs := &mesh.Mesh{}
	if !p.MazeInside && n > 1 {
		nubs.Append(mesh.BuildNubs(nubParams(c, p, p.R0, true)))
	}
	if !p.MazeOutside && n < c.Parts {
		nubs.Append(mesh.BuildNubs(nubParams(c, p, p.R1, false)))
	}
	if len(nubs.Faces) > 0 {
		p.Nubs = nubs
	}
	return p, nil
}

func nubParams(c *config.Config, p *Part, r float64, inside bool) mesh.NubParams {
	return mesh.NubParams{
		Radius:        r,
		Inside:        inside,
		MazeThickness: c.Maze.Thickness,
		Clearance:     c.Wall.Clearance,
		RClearance:    c.Nub.RClearance,
		ZClearance:    c.Nub.ZClearance,
		Horizontal:    c.Nub.Horizontal,
		Vertical:      c.Nub.Vertical,
		Normal:        c.Nub.Normal,
		Step:          c.Maze.Step,
		Helix:         c.Maze.Helix,
		Nubs:          c.Nub.Count,
		Height:        p.Height,
		ParkVertical:  c.Park.Vertical,
		MirrorInside:  c.Maze.MirrorInside,
		Skew:          c.NubSkew(),
		Angle:         p.NubAngle,
	}
}

func buildMaze(c *config.Config, p *Part, r float64, inside bool, src entropy.Source, log logrus.FieldLogger) (*Maze, error) {
	l, err := layoutMaze(c, p, r, inside)
	if err != nil {
		return nil, err
	}
	g, err := l.Grid(c)
	if err != nil {
		return nil, err
	}
	res, err := maze.Generate(g, src, maze.Config{
		Complexity:   c.Maze.Complexity,
		Inside:       inside,
		Flip:         c.Maze.Flip,
		ParkVertical: c.Park.Vertical,
		NoMarker:     c.Maze.NoMarker,
		TestPattern:  c.Maze.TestPattern,
	})
	if err != nil {
		return nil, fmt.Errorf("%s maze: %w", maze.Orientation(inside), err)
	}
	rep, err := maze.Analyze(g, res, inside)
	if err != nil {
		return nil, fmt.Errorf("%s maze: %w", maze.Orientation(inside), err)
	}

	sp := shellParams(c, p, l)
	shell, err := mesh.BuildShell(g, sp)
	if err != nil {
		return nil, fmt.Errorf("%s maze shell: %w", maze.Orientation(inside), err)
	}
	if _, err := mesh.Check(shell); err != nil {
		return nil, fmt.Errorf("%s maze shell: %w", maze.Orientation(inside), err)
	}
	var ridge *mesh.Mesh
	if c.Park.Thickness > 0 {
		ridge, err = mesh.BuildParkRidge(g, sp, mesh.ParkParams{
			Vertical:  c.Park.Vertical,
			Thickness: c.Park.Thickness,
		})
		if err != nil {
			return nil, fmt.Errorf("%s park ridge: %w", maze.Orientation(inside), err)
		}
	}

	log.WithFields(logrus.Fields{
		"part":   p.Number,
		"inside": inside,
		"width":  l.W,
		"rows":   l.Rows,
		"exit":   res.ExitColumn,
		"angle":  res.ExitAngle,
		"path":   res.PathLength,
		"points": len(shell.Points),
		"faces":  len(shell.Faces),
	}).Debug("maze built")

	return &Maze{
		Layout:   l,
		Grid:     g,
		Result:   res,
		Report:   rep,
		Shell:    shell,
		Ridge:    ridge,
		Mirrored: inside && c.Maze.MirrorInside,
	}, nil
}

func shellParams(c *config.Config, p *Part, l Layout) mesh.ShellParams {
	top := p.Height - c.Maze.Margin
	if c.Base.Wide && !l.Inside && p.Number > 1 {
		top = p.Height
	}
	return mesh.ShellParams{
		Inside:        l.Inside,
		Radius:        l.Radius,
		MazeThickness: c.Maze.Thickness,
		WallThickness: c.Wall.Thickness,
		Clearance:     c.Wall.Clearance,
		LastPart:      p.Last,
		Base:          c.Base.Thickness - c.Wall.Clearance,
		Height:        p.Height,
		TopFront:      top,
		Step:          c.Maze.Step,
		Y0:            l.Y0,
		NubSkew:       c.NubSkew(),
	}
}
