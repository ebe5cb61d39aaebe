package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDefault verifies the stock box validates as is
func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Parts != 2 || cfg.Maze.Helix != 2 || cfg.Nub.Count != 2 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.NubSkew() != 3.0/8 {
		t.Errorf("nub skew %f", cfg.NubSkew())
	}
	// 7 sides over 2 nubs
	if !cfg.MarkZero() {
		t.Error("expected position-zero mark for 7 sides")
	}
}

// TestParse_OverDefaults verifies file values override only what they name
func TestParse_OverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
parts: 3
maze:
  helix: 3
  inside: true
nub:
  count: 3
  fix: true
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Parts != 3 || cfg.Maze.Helix != 3 || !cfg.Maze.Inside || cfg.Nub.Count != 3 || !cfg.Nub.Fix {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Maze.Step != 3 || cfg.Core.Diameter != 30 || cfg.Park.Thickness != 0.7 {
		t.Errorf("defaults lost: %+v", cfg)
	}

	if _, err := Parse(nil); err != nil {
		t.Errorf("empty document: %v", err)
	}
	if _, err := Parse([]byte("maze:\n  helixx: 3\n")); err == nil {
		t.Error("expected unknown key to be rejected")
	}
}

// TestLoad reads a file from disk
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.yaml")
	if err := os.WriteFile(path, []byte("core:\n  diameter: 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Core.Diameter != 42 {
		t.Errorf("diameter %f", cfg.Core.Diameter)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestNormalize_Nubs verifies nub counts are fitted to the helix
func TestNormalize_Nubs(t *testing.T) {
	tests := []struct {
		helix, nubs, want int
	}{
		{2, 2, 2},
		{0, 3, 3},
		{4, 2, 2},
		{6, 2, 3},
		{6, 4, 6},
		{5, 2, 5},
		{3, 5, 3},
		{4, 1, 1},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Maze.Helix = tt.helix
		cfg.Nub.Count = tt.nubs
		cfg.Normalize()
		if cfg.Nub.Count != tt.want {
			t.Errorf("helix %d nubs %d: got %d, want %d", tt.helix, tt.nubs, cfg.Nub.Count, tt.want)
		}
	}
}

// TestNormalize_Adjustments verifies resin halving and clamps
func TestNormalize_Adjustments(t *testing.T) {
	cfg := Default()
	cfg.Resin = true
	cfg.Core.Solid = true
	cfg.Normalize()

	if cfg.Wall.Clearance != 0.2 || cfg.Base.Gap != 0.2 || cfg.Nub.RClearance != 0.05 || cfg.Nub.ZClearance != 0.1 {
		t.Errorf("resin clearances not halved: %+v %+v", cfg.Wall, cfg.Nub)
	}
	// (10-2)/5 = 1.6 is above 1.5, so grip depth stays
	if cfg.Outer.GripDepth != 1.5 {
		t.Errorf("grip depth %f", cfg.Outer.GripDepth)
	}
	if cfg.Core.Gap != 6 {
		t.Errorf("solid core gap %f, want two steps", cfg.Core.Gap)
	}

	cfg = Default()
	cfg.Base.Height = 5
	cfg.Normalize()
	if cfg.Outer.GripDepth != 0.6 {
		t.Errorf("grip depth %f, want 0.6", cfg.Outer.GripDepth)
	}
}

// TestValidate_Rejects verifies each bad value is reported
func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *Config)
		want string
	}{
		{"no parts", func(c *Config) { c.Parts = 0 }, "parts 0"},
		{"part beyond", func(c *Config) { c.Part = 3 }, "part 3"},
		{"zero step", func(c *Config) { c.Maze.Step = 0 }, "maze step"},
		{"complexity", func(c *Config) { c.Maze.Complexity = 11 }, "complexity 11"},
		{"two sides", func(c *Config) { c.Outer.Sides = 2 }, "outer sides"},
		{"deep park", func(c *Config) { c.Park.Thickness = 2 }, "park thickness"},
		{"negative park", func(c *Config) { c.Park.Thickness = -0.1 }, "park thickness"},
		{"no nubs", func(c *Config) { c.Nub.Count = 0 }, "nubs 0"},
		{"negative helix", func(c *Config) { c.Maze.Helix = -1 }, "helix -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

// TestMarshal_ReadsBack verifies the encoded form parses to the same config
func TestMarshal_ReadsBack(t *testing.T) {
	cfg := Default()
	cfg.Parts = 4
	cfg.Maze.Flip = true
	cfg.Nub.RClearance = 0.15
	cfg.Outer.Sides = 0

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "grip_depth: 1.5") {
		t.Errorf("expected snake_case keys, got:\n%s", data)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if *back != *cfg {
		t.Errorf("read back %+v, want %+v", back, cfg)
	}
}
