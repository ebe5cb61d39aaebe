package scad

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/lixenwraith/puzzlebox/box"
	"github.com/lixenwraith/puzzlebox/config"
	"github.com/lixenwraith/puzzlebox/entropy"
	"github.com/lixenwraith/puzzlebox/maze"
	"github.com/lixenwraith/puzzlebox/mesh"
	"github.com/lixenwraith/puzzlebox/vmath"
)

var created = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

var errSink = errors.New("sink closed")

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errSink }

func build(t *testing.T, c *config.Config, seed uint64) *box.Result {
	t.Helper()
	log, _ := test.NewNullLogger()
	res, err := box.Build(c, entropy.NewSeeded(seed), log)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return res
}

func render(t *testing.T, res *box.Result) string {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteBox(&buf, res, Meta{Created: created, Notes: []string{"seed 7"}}); err != nil {
		t.Fatalf("WriteBox failed: %v", err)
	}
	return buf.String()
}

// TestPolyhedron verifies point scaling and face lists
func TestPolyhedron(t *testing.T) {
	m := &mesh.Mesh{}
	m.Add(vmath.Vec3{})
	m.Add(vmath.Vec3{X: 1})
	m.Add(vmath.Vec3{Y: 1})
	m.Add(vmath.Vec3{Z: 1.25})
	m.Face(0, 2, 1)
	m.Face(0, 1, 3)
	m.Face(0, 3, 2)
	m.Face(1, 2, 3)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Polyhedron(m, false)
	w.Polyhedron(m, true)
	w.Polyhedron(&mesh.Mesh{}, false)
	w.Polyhedron(nil, false)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	body := "polyhedron(points=[[0,0,0],[1000,0,0],[0,1000,0],[0,0,1250]],\n" +
		"faces=[[0,2,1],[0,1,3],[0,3,2],[1,2,3]],convexity=10);\n"
	if want := body + "mirror([1,0,0])" + body; buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

// TestCommentBlock verifies every line is commented
func TestCommentBlock(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.CommentBlock("a\n\n  b\n")
	w.Comment("n=%d", 3)
	w.Flush()
	if want := "// a\n//\n//   b\n// n=3\n"; buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

// TestWriter_StickyError verifies the first write error is kept
func TestWriter_StickyError(t *testing.T) {
	w := NewWriter(failWriter{})
	w.Comment("lost")
	if err := w.Flush(); !errors.Is(err, errSink) {
		t.Fatalf("expected sink error, got %v", err)
	}
	w.Statement("cube(1);")
	w.Open("union()")
	if err := w.Err(); !errors.Is(err, errSink) {
		t.Errorf("error not sticky: %v", err)
	}
	if err := w.Flush(); !errors.Is(err, errSink) {
		t.Errorf("second flush: %v", err)
	}
}

// countingFail fails every write and counts the attempts
type countingFail struct{ calls int }

func (c *countingFail) Write(p []byte) (int, error) {
	c.calls++
	return 0, errSink
}

// TestWriteBox_WriteError verifies a failed write stops the document at that part
func TestWriteBox_WriteError(t *testing.T) {
	c := config.Default()
	c.Parts = 3
	res := build(t, c, 2)

	sink := &countingFail{}
	err := WriteBox(sink, res, Meta{Created: created})
	if !errors.Is(err, errSink) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "part 1: ") {
		t.Errorf("error %q should name the first part", err)
	}
	if sink.calls != 1 {
		t.Errorf("%d write attempts, want 1", sink.calls)
	}
}

// TestWriteBox_Default verifies the document layout of the stock box
func TestWriteBox_Default(t *testing.T) {
	res := build(t, config.Default(), 7)
	out := render(t, res)

	for _, want := range []string{
		"// Puzzlebox cylindrical maze gift box\n// Created 2026-10-16T12:00:00Z\n// seed 7\n",
		"module outer(h,r){e=2000;minkowski(){cylinder(r1=0,r2=e,h=e,$fn=24);cylinder(h=h-e,r=r,$fn=7);}}\n",
		"scale(0.001){\n",
		"// Part 1 (15.00mm to 18.20mm and 19.80mm/",
		"// Part 2 (18.60mm to 19.80mm and 19.80mm/",
		"// Maze outside 32/13\n",
		"// ============ MAZE VISUALIZATION (OUTSIDE, 32x",
		"// MAZE_END\n",
		"mirror([1,0,0])outer(10000,",
		"outer(43600,",
		"translate([0,0,6000])rotate_extrude(",
		"center=true,$fn=4);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if n := strings.Count(out, "polyhedron("); n != 3 {
		t.Errorf("%d polyhedra, want shell, ridge and nubs", n)
	}
	if strings.Count(out, "{") != strings.Count(out, "}") {
		t.Error("unbalanced braces")
	}
	if strings.Contains(out, "mirror([1,0,0])polyhedron") {
		t.Error("outside maze must not be mirrored")
	}

	dumps, err := maze.ParseMachine(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseMachine failed: %v", err)
	}
	m := res.Parts[0].Mazes[0]
	if len(dumps) != 1 || dumps[0].Part != 1 || dumps[0].Width != m.W || dumps[0].ExitColumn != m.Result.ExitColumn {
		t.Errorf("embedded maze data does not match the build")
	}
}

// TestWriteBox_HeaderConfig verifies the embedded YAML reproduces the input
func TestWriteBox_HeaderConfig(t *testing.T) {
	c := config.Default()
	c.Parts = 3
	c.Resin = true
	c.Nub.Fix = true
	out := render(t, build(t, c, 3))

	var doc strings.Builder
	in := false
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "// ---":
			in = true
		case line == "// ...":
			in = false
		case in:
			doc.WriteString(strings.TrimPrefix(line, "// "))
			doc.WriteByte('\n')
		}
	}
	back, err := config.Parse([]byte(doc.String()))
	if err != nil {
		t.Fatalf("Parse failed: %v\n%s", err, doc.String())
	}
	// resin halving must not be baked into the header
	if *back != *c {
		t.Errorf("header config %+v, want %+v", back, c)
	}
}

// TestWriteBox_PartCSG verifies the option-dependent cut-outs
func TestWriteBox_PartCSG(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(c *config.Config)
		want    []string
		exclude []string
		polys   int // polyhedron count when non-zero
	}{
		{
			name: "three parts",
			edit: func(c *config.Config) { c.Parts = 3 },
			want: []string{"hull(){cylinder(", "rotate([0,0,", "// Part 3 "},
		},
		{
			name: "wide base",
			edit: func(c *config.Config) { c.Parts = 3; c.Base.Wide = true },
			want: []string{"hull(){cube(["},
		},
		{
			name:    "round without grip or mark",
			edit:    func(c *config.Config) { c.Outer.Sides = 0; c.Outer.GripDepth = 0 },
			want:    []string{"$fn=100);}}"},
			exclude: []string{"rotate_extrude(", "$fn=4);"},
		},
		{
			name: "solid core inside",
			edit: func(c *config.Config) { c.Core.Solid = true; c.Maze.Inside = true },
			want: []string{"// Maze inside ", "difference(){\ntranslate([0,0,400])cylinder("},
		},
		{
			name: "mirror inside",
			edit: func(c *config.Config) { c.Maze.Inside = true; c.Maze.MirrorInside = true },
			want: []string{"mirror([1,0,0])polyhedron("},
		},
		{
			name:    "test pattern",
			edit:    func(c *config.Config) { c.Maze.TestPattern = true },
			want:    []string{"// Maze outside "},
			exclude: []string{"// Path length"},
		},
		{
			name:  "no park ridge",
			edit:  func(c *config.Config) { c.Park.Thickness = 0 },
			want:  []string{"// Maze outside "},
			polys: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			tt.edit(c)
			out := render(t, build(t, c, 5))
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q", w)
				}
			}
			for _, x := range tt.exclude {
				if strings.Contains(out, x) {
					t.Errorf("output contains %q", x)
				}
			}
			if n := strings.Count(out, "polyhedron("); tt.polys != 0 && n != tt.polys {
				t.Errorf("%d polyhedra, want %d", n, tt.polys)
			}
			if strings.Count(out, "{") != strings.Count(out, "}") {
				t.Error("unbalanced braces")
			}
		})
	}
}
