package main

import (
	"bytes"
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/puzzlebox/box"
	"github.com/lixenwraith/puzzlebox/config"
	"github.com/lixenwraith/puzzlebox/entropy"
	"github.com/lixenwraith/puzzlebox/maze"
	"github.com/lixenwraith/puzzlebox/scad"
)

// options are the flags that are not part of the box configuration
type options struct {
	configPath string
	outPath    string
	reportPath string
	seed       uint64
	tries      int
	logLevel   string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// newFlagSet binds every flag to cfg, using its current values as defaults
func newFlagSet(cfg *config.Config, o *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("puzzlebox", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configPath, "config", "", "YAML config file, flags override its values")
	fs.StringVar(&o.outPath, "o", "", "SCAD output file (default stdout)")
	fs.StringVar(&o.reportPath, "report", "", "write maze reports to this file")
	fs.Uint64Var(&o.seed, "seed", 0, "seed for a reproducible box (default random)")
	fs.IntVar(&o.tries, "tries", 1, "build this many seeds in turn and keep the best scoring box")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	fs.IntVar(&cfg.Parts, "parts", cfg.Parts, "total parts")
	fs.IntVar(&cfg.Part, "part", cfg.Part, "build only this part (0 for all)")
	fs.BoolVar(&cfg.Resin, "resin", cfg.Resin, "halve clearances for resin printing")

	fs.Float64Var(&cfg.Core.Diameter, "core-diameter", cfg.Core.Diameter, "core diameter for content (mm)")
	fs.Float64Var(&cfg.Core.Height, "core-height", cfg.Core.Height, "core height for content (mm)")
	fs.Float64Var(&cfg.Core.Gap, "core-gap", cfg.Core.Gap, "core gap to allow content to be removed (mm)")
	fs.BoolVar(&cfg.Core.Solid, "core-solid", cfg.Core.Solid, "core solid (content is in part 2)")

	fs.Float64Var(&cfg.Wall.Thickness, "wall-thickness", cfg.Wall.Thickness, "wall thickness (mm)")
	fs.Float64Var(&cfg.Wall.Clearance, "clearance", cfg.Wall.Clearance, "general X/Y clearance (mm)")

	fs.Float64Var(&cfg.Base.Thickness, "base-thickness", cfg.Base.Thickness, "base thickness (mm)")
	fs.Float64Var(&cfg.Base.Gap, "base-gap", cfg.Base.Gap, "base gap, Z clearance (mm)")
	fs.Float64Var(&cfg.Base.Height, "base-height", cfg.Base.Height, "base height (mm)")
	fs.BoolVar(&cfg.Base.Wide, "base-wide", cfg.Base.Wide, "inner parts have a base as wide as the next part")

	fs.IntVar(&cfg.Outer.Sides, "outer-sides", cfg.Outer.Sides, "number of outer sides (0 for round)")
	fs.Float64Var(&cfg.Outer.Round, "outer-round", cfg.Outer.Round, "outer rounding on ends (mm)")
	fs.Float64Var(&cfg.Outer.GripDepth, "grip-depth", cfg.Outer.GripDepth, "grip depth (mm)")

	fs.Float64Var(&cfg.Maze.Thickness, "maze-thickness", cfg.Maze.Thickness, "maze depth (mm)")
	fs.Float64Var(&cfg.Maze.Step, "maze-step", cfg.Maze.Step, "maze spacing (mm)")
	fs.Float64Var(&cfg.Maze.Margin, "maze-margin", cfg.Maze.Margin, "maze top margin (mm)")
	fs.IntVar(&cfg.Maze.Complexity, "maze-complexity", cfg.Maze.Complexity, "maze complexity -10 to 10")
	fs.IntVar(&cfg.Maze.Helix, "helix", cfg.Maze.Helix, "helix (0 for non helical)")
	fs.BoolVar(&cfg.Maze.Inside, "inside", cfg.Maze.Inside, "maze on inside (hard)")
	fs.BoolVar(&cfg.Maze.Flip, "flip", cfg.Maze.Flip, "alternate inside and outside mazes")
	fs.BoolVar(&cfg.Maze.NoMarker, "no-marker", cfg.Maze.NoMarker, "no park marker")
	fs.BoolVar(&cfg.Maze.TestPattern, "test-pattern", cfg.Maze.TestPattern, "rings instead of a maze")
	fs.BoolVar(&cfg.Maze.SymmetricCut, "symmetric-cut", cfg.Maze.SymmetricCut, "symmetric maze cut")
	fs.BoolVar(&cfg.Maze.MirrorInside, "mirror-inside", cfg.Maze.MirrorInside, "inside mazes turn the other way")

	fs.IntVar(&cfg.Nub.Count, "nubs", cfg.Nub.Count, "number of nubs")
	fs.Float64Var(&cfg.Nub.RClearance, "nub-r-clearance", cfg.Nub.RClearance, "extra radius clearance for nub (mm)")
	fs.Float64Var(&cfg.Nub.ZClearance, "nub-z-clearance", cfg.Nub.ZClearance, "extra Z clearance for nub (mm)")
	fs.Float64Var(&cfg.Nub.Horizontal, "nub-horizontal", cfg.Nub.Horizontal, "nub horizontal size multiplier")
	fs.Float64Var(&cfg.Nub.Vertical, "nub-vertical", cfg.Nub.Vertical, "nub vertical size multiplier")
	fs.Float64Var(&cfg.Nub.Normal, "nub-normal", cfg.Nub.Normal, "nub depth multiplier")
	fs.BoolVar(&cfg.Nub.Fix, "fix-nubs", cfg.Nub.Fix, "place nubs opposite the first maze exit")

	fs.Float64Var(&cfg.Park.Thickness, "park-thickness", cfg.Park.Thickness, "thickness of park ridge to click closed (mm)")
	fs.BoolVar(&cfg.Park.Vertical, "park-vertical", cfg.Park.Vertical, "park vertically")
	return fs
}

// setupLogging returns a logger writing to w at the named level
func setupLogging(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	// First pass finds the config file, second pass lets flags override it
	var o options
	if err := newFlagSet(config.Default(), &o, stderr).Parse(args); err != nil {
		return 2
	}
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			fmt.Fprintf(stderr, "puzzlebox: %v\n", err)
			return 1
		}
	}
	fs := newFlagSet(cfg, &o, stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "puzzlebox: unexpected arguments %v\n", fs.Args())
		return 2
	}

	log, err := setupLogging(o.logLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "puzzlebox: %v\n", err)
		return 2
	}

	if o.tries < 1 {
		fmt.Fprintf(stderr, "puzzlebox: tries %d must be at least 1\n", o.tries)
		return 2
	}

	seeded := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seeded = true
		}
	})

	var (
		res   *box.Result
		notes []string
	)
	switch {
	case o.tries > 1:
		if !seeded {
			if o.seed, err = randomSeed(); err != nil {
				log.WithError(err).Error("seed failed")
				return 1
			}
		}
		var best uint64
		var score float64
		res, best, score, err = bestOf(cfg, o.seed, o.tries, log)
		notes = []string{fmt.Sprintf("Seed %d", best), fmt.Sprintf("Best of %d from seed %d, score %.3f", o.tries, o.seed, score)}
	case seeded:
		res, err = box.Build(cfg, entropy.NewSeeded(o.seed), log)
		notes = []string{fmt.Sprintf("Seed %d", o.seed)}
	default:
		res, err = box.Build(cfg, entropy.NewDevice(rand.Reader), log)
		notes = []string{"Entropy crypto/rand"}
	}
	if err != nil {
		log.WithError(err).Error("build failed")
		return 1
	}

	var out bytes.Buffer
	if err := scad.WriteBox(&out, res, scad.Meta{Created: time.Now(), Notes: notes}); err != nil {
		log.WithError(err).Error("render failed")
		return 1
	}
	if err := writeOutput(o.outPath, out.Bytes(), stdout); err != nil {
		log.WithError(err).Error("write failed")
		return 1
	}
	if o.reportPath != "" {
		if err := os.WriteFile(o.reportPath, []byte(reports(res)), 0o644); err != nil {
			log.WithError(err).Error("report failed")
			return 1
		}
	}

	mazes := 0
	for _, p := range res.Parts {
		mazes += len(p.Mazes)
	}
	log.WithFields(logrus.Fields{
		"parts": len(res.Parts),
		"mazes": mazes,
		"bytes": out.Len(),
	}).Info("box written")
	return 0
}

// bestOf builds tries boxes from consecutive seeds starting at first and
// keeps the highest scoring one; ties go to the earlier seed
func bestOf(cfg *config.Config, first uint64, tries int, log logrus.FieldLogger) (*box.Result, uint64, float64, error) {
	var (
		best      *box.Result
		bestSeed  uint64
		bestScore float64
	)
	for i := 0; i < tries; i++ {
		seed := first + uint64(i)
		res, err := box.Build(cfg, entropy.NewSeeded(seed), log)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("seed %d: %w", seed, err)
		}
		score := res.Score(maze.DefaultWeights)
		log.WithFields(logrus.Fields{
			"seed":  seed,
			"score": score,
		}).Debug("candidate built")
		if best == nil || score > bestScore {
			best, bestSeed, bestScore = res, seed, score
		}
	}
	log.WithFields(logrus.Fields{
		"seed":  bestSeed,
		"score": bestScore,
		"tries": tries,
	}).Info("best box chosen")
	return best, bestSeed, bestScore, nil
}

// randomSeed draws a starting seed so a best-of run can be repeated
func randomSeed() (uint64, error) {
	d := entropy.NewDevice(rand.Reader)
	hi, err := d.NextInt()
	if err != nil {
		return 0, err
	}
	lo, err := d.NextInt()
	if err != nil {
		return 0, err
	}
	return uint64(uint32(hi))<<32 | uint64(uint32(lo)), nil
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// reports joins every maze report under a part heading
func reports(res *box.Result) string {
	var b bytes.Buffer
	for _, p := range res.Parts {
		for _, m := range p.Mazes {
			fmt.Fprintf(&b, "Part %d\n\n%s\n", p.Number, m.Report)
		}
	}
	return b.String()
}
