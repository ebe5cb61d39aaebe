package main

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/puzzlebox/entropy"
	"github.com/lixenwraith/puzzlebox/maze"
)

func main() {
	session(os.Stdin, os.Stdout, entropy.NewDevice(rand.Reader))
}

// session runs the prompt loop until the user declines another maze or
// input ends
func session(in io.Reader, out io.Writer, src entropy.Source) {
	reader := bufio.NewReader(in)

	for {
		fmt.Fprintln(out, "\n=== CYLINDRICAL MAZE GENERATOR ===")

		w := getInt(reader, out, "Width in cells (default 24): ", 24)
		h := getInt(reader, out, "Height in rows (default 10): ", 10)
		nubs := getInt(reader, out, "Nubs (default 2): ", 2)
		helix := getInt(reader, out, "Helix (default 2): ", 2)
		complexity := getInt(reader, out, "Complexity [-10 - 10] (default 5): ", 5)

		fmt.Fprint(out, "Maze on the inside? [y/N]: ")
		inside := yes(reader, false)

		fmt.Fprintln(out, "\nGenerating...")
		startT := time.Now()
		rep, err := generate(w, h, nubs, helix, complexity, inside, src)
		dur := time.Since(startT)

		if err != nil {
			fmt.Fprintf(out, "Failed: %v\n", err)
		} else {
			fmt.Fprintf(out, "Done in %v\n", dur)
			m := rep.Metrics
			fmt.Fprintf(out, "Cells: %d usable, %d dead ends, %d branching\n", m.Usable, m.DeadEnds, m.Branching)
			fmt.Fprintf(out, "Solution Path Length: %d steps\n", len(rep.Path))
			fmt.Fprintf(out, "Score: %.3f\n\n", m.Score(maze.DefaultWeights))
			fmt.Fprint(out, rep.Solution())
		}

		fmt.Fprint(out, "\nGenerate another? [Y/n]: ")
		if !yes(reader, true) {
			break
		}
	}
}

// generate carves a w×h maze with one padding row below and above, plus the
// helix rows a helical maze loses at the seam
func generate(w, h, nubs, helix, complexity int, inside bool, src entropy.Source) (*maze.Report, error) {
	g, err := maze.NewGrid(w, h+2+helix, nubs, helix)
	if err != nil {
		return nil, err
	}
	// Keep the rows a band of the same height climbing with the helix
	g.MarkInvalid(func(x, y int) bool {
		v := y*w + helix*x
		return v < (helix+1)*w || v > (h+helix)*w
	})
	res, err := maze.Generate(g, src, maze.Config{
		Complexity: complexity,
		Inside:     inside,
	})
	if err != nil {
		return nil, err
	}
	return maze.Analyze(g, res, inside)
}

// --- Input Helpers ---

func getInt(r *bufio.Reader, out io.Writer, prompt string, def int) int {
	fmt.Fprint(out, prompt)
	s, _ := r.ReadString('\n')
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// yes reads a y/n answer; empty input gives def and end of input gives false
func yes(r *bufio.Reader, def bool) bool {
	s, err := r.ReadString('\n')
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "y":
		return true
	case s == "n":
		return false
	case err != nil:
		return false
	default:
		return def
	}
}
