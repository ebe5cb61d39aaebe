// Package config holds the puzzle box configuration record
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/puzzlebox/maze"
)

// ErrInvalid reports a configuration value that cannot produce a box
var ErrInvalid = errors.New("invalid configuration")

// Config holds every dimension and option of a box, in millimetres
type Config struct {
	Parts int  `yaml:"parts"`
	Part  int  `yaml:"part"` // 0 builds all parts
	Resin bool `yaml:"resin"`

	Core  CoreConfig  `yaml:"core"`
	Wall  WallConfig  `yaml:"wall"`
	Base  BaseConfig  `yaml:"base"`
	Outer OuterConfig `yaml:"outer"`
	Maze  MazeConfig  `yaml:"maze"`
	Nub   NubConfig   `yaml:"nub"`
	Park  ParkConfig  `yaml:"park"`
}

// CoreConfig sizes the space for the content
type CoreConfig struct {
	Diameter float64 `yaml:"diameter"`
	Height   float64 `yaml:"height"`
	Gap      float64 `yaml:"gap"`   // lets the content be removed
	Solid    bool    `yaml:"solid"` // first part is a solid core
}

// WallConfig holds wall thickness and the part-to-part clearance
type WallConfig struct {
	Thickness float64 `yaml:"thickness"`
	Clearance float64 `yaml:"clearance"`
}

// BaseConfig holds the base of each part
type BaseConfig struct {
	Thickness float64 `yaml:"thickness"`
	Gap       float64 `yaml:"gap"`
	Height    float64 `yaml:"height"`
	Wide      bool    `yaml:"wide"` // inner part bases as wide as the next part
}

// OuterConfig shapes the outside of the last part
type OuterConfig struct {
	Sides     int     `yaml:"sides"` // 0 for round
	Round     float64 `yaml:"round"`
	GripDepth float64 `yaml:"grip_depth"`
}

// MazeConfig holds maze cutting and carving options
type MazeConfig struct {
	Thickness    float64 `yaml:"thickness"`
	Step         float64 `yaml:"step"`
	Margin       float64 `yaml:"margin"`
	Complexity   int     `yaml:"complexity"`
	Helix        int     `yaml:"helix"`
	Inside       bool    `yaml:"inside"`
	Flip         bool    `yaml:"flip"`          // alternate inside and outside
	NoMarker     bool    `yaml:"no_marker"`     // omit the park marker
	TestPattern  bool    `yaml:"test_pattern"`  // rings instead of a maze
	SymmetricCut bool    `yaml:"symmetric_cut"` // no downward skew of the cut
	MirrorInside bool    `yaml:"mirror_inside"` // inside mazes turn the other way
}

// NubConfig shapes the nubs
type NubConfig struct {
	Count      int     `yaml:"count"`
	RClearance float64 `yaml:"r_clearance"`
	ZClearance float64 `yaml:"z_clearance"`
	Horizontal float64 `yaml:"horizontal"`
	Vertical   float64 `yaml:"vertical"`
	Normal     float64 `yaml:"normal"`
	Fix        bool    `yaml:"fix"` // place nubs opposite the first maze exit
}

// ParkConfig shapes the park point
type ParkConfig struct {
	Thickness float64 `yaml:"thickness"` // ridge height, 0 for no ridge
	Vertical  bool    `yaml:"vertical"`
}

// Default returns the stock two-part box
func Default() *Config {
	return &Config{
		Parts: 2,
		Core: CoreConfig{
			Diameter: 30,
			Height:   50,
		},
		Wall: WallConfig{
			Thickness: 1.2,
			Clearance: 0.4,
		},
		Base: BaseConfig{
			Thickness: 1.6,
			Gap:       0.4,
			Height:    10,
		},
		Outer: OuterConfig{
			Sides:     7,
			Round:     2,
			GripDepth: 1.5,
		},
		Maze: MazeConfig{
			Thickness:  2,
			Step:       3,
			Margin:     1,
			Complexity: 5,
			Helix:      2,
		},
		Nub: NubConfig{
			Count:      2,
			RClearance: 0.1,
			ZClearance: 0.2,
			Horizontal: 1,
			Vertical:   1,
			Normal:     1,
		},
		Park: ParkConfig{
			Thickness: 0.7,
		},
	}
}

// Load reads a YAML file over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Marshal encodes c as YAML that Parse reads back
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Normalize applies the derived adjustments. It must run once, on a copy
// that is about to be built.
func (c *Config) Normalize() {
	if c.Resin {
		c.Base.Gap /= 2
		c.Wall.Clearance /= 2
		c.Nub.RClearance /= 2
		c.Nub.ZClearance /= 2
	}

	helix, nubs := c.Maze.Helix, c.Nub.Count
	if helix > 0 && nubs > 1 && nubs < helix {
		if helix%2 == 0 && nubs <= helix/2 {
			nubs = helix / 2
		} else {
			nubs = helix
		}
	}
	if helix > 0 && nubs > helix {
		nubs = helix
	}
	c.Nub.Count = nubs

	if limit := (c.Base.Height - c.Outer.Round) / 5; c.Outer.GripDepth > limit {
		c.Outer.GripDepth = limit
	}
	if c.Outer.GripDepth > c.Maze.Thickness {
		c.Outer.GripDepth = c.Maze.Thickness
	}
	if c.Core.Solid && c.Core.Gap < c.Maze.Step*2 {
		c.Core.Gap = c.Maze.Step * 2
	}
}

// Validate rejects values no box can be built from
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.Parts >= 1, "parts %d must be at least 1", c.Parts)
	check(c.Part >= 0 && c.Part <= c.Parts, "part %d outside 0..%d", c.Part, c.Parts)
	check(c.Core.Diameter > 0, "core diameter %.2f must be positive", c.Core.Diameter)
	check(c.Core.Height > 0, "core height %.2f must be positive", c.Core.Height)
	check(c.Core.Gap >= 0, "core gap %.2f must not be negative", c.Core.Gap)
	check(c.Wall.Thickness > 0, "wall thickness %.2f must be positive", c.Wall.Thickness)
	check(c.Wall.Clearance >= 0, "clearance %.2f must not be negative", c.Wall.Clearance)
	check(c.Base.Thickness > 0, "base thickness %.2f must be positive", c.Base.Thickness)
	check(c.Base.Gap >= 0, "base gap %.2f must not be negative", c.Base.Gap)
	check(c.Base.Height > 0, "base height %.2f must be positive", c.Base.Height)
	check(c.Outer.Sides == 0 || c.Outer.Sides >= 3, "outer sides %d must be 0 or at least 3", c.Outer.Sides)
	check(c.Outer.Round >= 0, "outer round %.2f must not be negative", c.Outer.Round)
	check(c.Maze.Thickness > 0, "maze thickness %.2f must be positive", c.Maze.Thickness)
	check(c.Maze.Step > 0, "maze step %.2f must be positive", c.Maze.Step)
	check(c.Maze.Margin >= 0, "maze margin %.2f must not be negative", c.Maze.Margin)
	check(c.Maze.Complexity >= maze.MinComplexity && c.Maze.Complexity <= maze.MaxComplexity,
		"complexity %d outside %d..%d", c.Maze.Complexity, maze.MinComplexity, maze.MaxComplexity)
	check(c.Maze.Helix >= 0, "helix %d must not be negative", c.Maze.Helix)
	check(c.Nub.Count >= 1, "nubs %d must be at least 1", c.Nub.Count)
	check(c.Nub.Horizontal > 0 && c.Nub.Vertical > 0 && c.Nub.Normal > 0,
		"nub multipliers %.2f/%.2f/%.2f must be positive", c.Nub.Horizontal, c.Nub.Vertical, c.Nub.Normal)
	check(c.Nub.ZClearance < c.Maze.Step/4, "nub z clearance %.2f must be under a quarter step", c.Nub.ZClearance)
	check(c.Park.Thickness >= 0 && c.Park.Thickness < c.Maze.Thickness,
		"park thickness %.2f must be within maze thickness %.2f", c.Park.Thickness, c.Maze.Thickness)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// NubSkew is the downward shift of the recessed floor that shapes the cut
func (c *Config) NubSkew() float64 {
	if c.Maze.SymmetricCut {
		return 0
	}
	return c.Maze.Step / 8
}

// MarkZero reports whether the outer part needs a position-zero mark because
// its sides do not divide evenly between the nubs
func (c *Config) MarkZero() bool {
	return c.Outer.Sides > 0 && c.Outer.Sides%c.Nub.Count != 0
}
