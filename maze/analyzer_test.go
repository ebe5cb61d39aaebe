package maze

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// smallMaze builds a fixed 3x2 tree:
//
//	+---+---+ E +
//	|           |
//	+   +---+---+
//	|           |
//	+---+---+---+
func smallMaze(t *testing.T) (*Grid, *Result) {
	t.Helper()
	g, err := NewGrid(3, 2, 1, 0)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	g.Link(0, 0, DirR)
	g.Link(1, 0, DirR)
	g.Link(0, 0, DirU)
	g.Link(0, 1, DirR)
	g.Link(1, 1, DirR)
	g.Open(2, 1, DirU)
	return g, &Result{ExitColumn: 2, Exit: Cell{2, 1}}
}

// TestSolve_SmallMaze verifies path order and directions
func TestSolve_SmallMaze(t *testing.T) {
	g, _ := smallMaze(t)

	path, err := Solve(g, Cell{0, 0}, Exits(g)...)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	want := Path{
		{Cell{0, 0}, DirU},
		{Cell{0, 1}, DirR},
		{Cell{1, 1}, DirR},
		{Cell{2, 1}, DirU},
	}
	if len(path) != len(want) {
		t.Fatalf("path length %d, want %d: %v", len(path), len(want), path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("step %d = %+v, want %+v", i, path[i], want[i])
		}
	}
}

// TestSolve_HelixSeam verifies a seam crossing resolves to a horizontal move
func TestSolve_HelixSeam(t *testing.T) {
	g, _ := NewGrid(3, 2, 1, 1)
	g.Link(2, 0, DirR) // lands on (0,1)
	g.Open(0, 1, DirU)

	path, err := Solve(g, Cell{2, 0}, Exits(g)...)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(path) != 2 || path[0].Dir != DirR || path[1].Cell != (Cell{0, 1}) {
		t.Errorf("unexpected path %+v", path)
	}
}

// TestSolve_NoPath verifies disconnected exits are reported
func TestSolve_NoPath(t *testing.T) {
	g, _ := NewGrid(3, 3, 1, 0)
	g.Open(2, 2, DirU)
	if _, err := Solve(g, Cell{0, 0}, Exits(g)...); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}

	g.MarkInvalid(func(x, y int) bool { return y == 0 })
	if _, err := Solve(g, Cell{0, 0}, Cell{2, 2}); !errors.Is(err, ErrNoPath) {
		t.Errorf("invalid entrance: expected ErrNoPath, got %v", err)
	}
}

// TestReachable_StopsAtInvalid verifies BFS never enters invalid cells
func TestReachable_StopsAtInvalid(t *testing.T) {
	g, _ := NewGrid(4, 1, 1, 0)
	g.Link(0, 0, DirR)
	g.Link(1, 0, DirR)
	g.MarkInvalid(func(x, y int) bool { return x == 2 })

	got := Reachable(g, Cell{0, 0})
	if got.Size() != 2 || !got.Has(Cell{1, 0}) || got.Has(Cell{2, 0}) {
		t.Errorf("unexpected reachable set of size %d", got.Size())
	}
}

// TestMirrorReplicate verifies the copy is filled and the source untouched
func TestMirrorReplicate(t *testing.T) {
	g, _ := NewGrid(6, 2, 2, 0)
	g.Link(0, 0, DirU)

	out := MirrorReplicate(g, Cell{0, 0})
	if out.At(3, 0)&FlagU == 0 || out.At(3, 1)&FlagD == 0 {
		t.Errorf("mirror not replicated: %02X %02X", out.At(3, 0), out.At(3, 1))
	}
	if g.At(3, 0) != 0 || g.At(3, 1) != 0 {
		t.Error("source grid modified")
	}
}

// TestReport_Renderings verifies the ASCII and machine-readable output
func TestReport_Renderings(t *testing.T) {
	g, res := smallMaze(t)
	rep, err := Analyze(g, res, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if rep.MinY != 0 || rep.MaxY != 1 {
		t.Fatalf("row range %d..%d", rep.MinY, rep.MaxY)
	}

	plain := rep.Plain()
	for _, line := range []string{
		"============ MAZE VISUALIZATION (OUTSIDE, 3x2) ============",
		"Showing rows 0 to 1 (valid maze area)",
		"+---+---+ E +",
		"|" + "   " + " " + "   " + " " + "   " + "|",
		"+   +---+---+",
		"+---+---+---+",
	} {
		if !strings.Contains(plain, line+"\n") {
			t.Errorf("plain rendering missing %q:\n%s", line, plain)
		}
	}

	sol := rep.Solution()
	for _, line := range []string{
		"============ MAZE WITH SOLUTION ============",
		"|" + " > " + " " + " > " + " " + " ^ " + "|",
		"|" + " S " + " " + "   " + " " + "   " + "|",
	} {
		if !strings.Contains(sol, line+"\n") {
			t.Errorf("solution rendering missing %q:\n%s", line, sol)
		}
	}

	machine := rep.Machine()
	want := "Machine-readable maze data:\n" +
		"MAZE_START OUTSIDE 3 2 2 0 0 1\n" +
		"MAZE_ROW 0 06 03 01\n" +
		"MAZE_ROW 1 0A 03 05\n" +
		"MAZE_END\n"
	if machine != want {
		t.Errorf("machine block:\n%s\nwant:\n%s", machine, want)
	}
}

// TestReport_UnreachableMarked verifies cells outside the tree are hatched
func TestReport_UnreachableMarked(t *testing.T) {
	g, _ := smallMaze(t)
	rep := &Report{
		Grid:       g,
		ExitColumn: 2,
		MaxY:       1,
		Reachable:  Reachable(g, Cell{0, 1}),
	}
	rep.Reachable.Remove(Cell{2, 0})

	if !strings.Contains(rep.Solution(), "|"+"   "+" "+"   "+" "+"###"+"|\n") {
		t.Errorf("unreachable cell not hatched:\n%s", rep.Solution())
	}
}

// TestAnalyze_DetectsDisconnected verifies a broken carve is a defect
func TestAnalyze_DetectsDisconnected(t *testing.T) {
	g, _ := NewGrid(3, 2, 1, 0)
	g.Link(0, 0, DirR)
	g.Open(0, 1, DirU)
	if _, err := Analyze(g, &Result{}, false); !errors.Is(err, ErrCarverInvariant) {
		t.Errorf("expected ErrCarverInvariant, got %v", err)
	}
}

// TestMeasure_SmallMaze verifies metrics and score
func TestMeasure_SmallMaze(t *testing.T) {
	g, _ := smallMaze(t)
	m := Measure(g)

	if m.Usable != 6 || m.Invalid != 0 || m.Total != 6 {
		t.Errorf("cell counts: %+v", m)
	}
	if m.Components != 1 || m.Largest != 6 || m.Unreachable != 0 {
		t.Errorf("connectivity: %+v", m)
	}
	if m.DeadEnds != 1 || m.Branching != 0 {
		t.Errorf("dead ends %d branching %d", m.DeadEnds, m.Branching)
	}
	if math.Abs(m.AvgDegree-11.0/6) > 1e-9 {
		t.Errorf("avg degree %f", m.AvgDegree)
	}

	want := 2.0 - 1.0/6 + 11.0/6/4
	if got := m.Score(DefaultWeights); math.Abs(got-want) > 1e-9 {
		t.Errorf("score %f, want %f", got, want)
	}
}

// TestMeasure_Components verifies unequal components count as unreachable
func TestMeasure_Components(t *testing.T) {
	g, _ := NewGrid(4, 2, 1, 0)
	g.Link(0, 0, DirR)
	g.Link(1, 0, DirR)
	g.Link(0, 1, DirR)

	m := Measure(g)
	// {0,1,2 row 0} {0,1 row 1} {3,0} {2,1} {3,1}
	if m.Components != 5 || m.Largest != 3 || m.Unreachable != 5 {
		t.Errorf("components %d largest %d unreachable %d", m.Components, m.Largest, m.Unreachable)
	}
}

// TestReportRow_HelixLeftEdge verifies the left edge shows the passage that
// wraps to the last column one helix turn down
func TestReportRow_HelixLeftEdge(t *testing.T) {
	g, err := NewGrid(4, 4, 1, 1)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	// (0,2) wraps left to (3,1)
	g.Link(0, 2, DirL)
	r := &Report{Grid: g}
	blank := func(int) string { return "   " }

	tests := []struct {
		y    int
		want byte
	}{
		{2, ' '},
		{1, '|'},
	}
	for _, tt := range tests {
		var b strings.Builder
		r.row(&b, tt.y, blank)
		if got := b.String(); got[0] != tt.want {
			t.Errorf("row %d starts %q, want %q", tt.y, got[0], tt.want)
		}
	}
	var b strings.Builder
	r.row(&b, 1, blank)
	if got := b.String(); got[len(got)-2] != ' ' {
		t.Errorf("row 1 should end open toward (0,2): %q", got)
	}
}
