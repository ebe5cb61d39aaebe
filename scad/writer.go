// Package scad writes OpenSCAD source for built boxes: polyhedra for the
// generated meshes plus the CSG that forms bases, holes and cut-outs.
package scad

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/lixenwraith/puzzlebox/mesh"
	"github.com/lixenwraith/puzzlebox/vmath"
)

// Writer buffers OpenSCAD statements. The first write error sticks and every
// later call becomes a no-op; check it with Flush or Err.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter wraps w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 65536)}
}

// Err returns the first error seen
func (w *Writer) Err() error {
	return w.err
}

// Flush writes out anything buffered
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

func (w *Writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.WriteString(s)
}

// Comment writes one "// " line
func (w *Writer) Comment(format string, args ...any) {
	w.write("// ")
	w.printf(format, args...)
	w.write("\n")
}

// CommentBlock writes text as comment lines, blank lines as a bare "//"
func (w *Writer) CommentBlock(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			w.write("//\n")
			continue
		}
		w.write("// ")
		w.write(line)
		w.write("\n")
	}
}

// Statement writes one raw statement line
func (w *Writer) Statement(format string, args ...any) {
	w.printf(format, args...)
	w.write("\n")
}

// Open starts a block, optionally prefixed by transforms
func (w *Writer) Open(prefix string) {
	w.write(prefix)
	w.write("{\n")
}

// Close ends a block
func (w *Writer) Close() {
	w.write("}\n")
}

// Polyhedron emits m with coordinates in output units. Mirrored meshes get a
// mirror([1,0,0]) prefix.
func (w *Writer) Polyhedron(m *mesh.Mesh, mirrored bool) {
	if m == nil || len(m.Faces) == 0 {
		return
	}
	if mirrored {
		w.write("mirror([1,0,0])")
	}
	w.write("polyhedron(points=[")
	for i, p := range m.Points {
		w.separator(i)
		v := vmath.V3Scaled(p)
		w.printf("[%d,%d,%d]", v[0], v[1], v[2])
	}
	w.write("],\nfaces=[")
	for i, f := range m.Faces {
		w.separator(i)
		w.write("[")
		for j, v := range f {
			if j > 0 {
				w.write(",")
			}
			w.printf("%d", v)
		}
		w.write("]")
	}
	w.write("],convexity=10);\n")
}

// lineEntries is the number of list entries per output line
const lineEntries = 64

func (w *Writer) separator(i int) {
	switch {
	case i == 0:
	case i%lineEntries == 0:
		w.write(",\n")
	default:
		w.write(",")
	}
}
