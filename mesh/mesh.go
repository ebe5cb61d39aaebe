// Package mesh builds the closed polyhedra of a puzzle box part: the maze
// shell, the nubs and the park ridges.
package mesh

import (
	"errors"

	"github.com/lixenwraith/puzzlebox/vmath"
)

// ErrGeometry reports an internal mesh construction failure
var ErrGeometry = errors.New("geometry invariant violated")

// Mesh is an indexed polygon soup. Faces list point indices in winding order.
type Mesh struct {
	Points []vmath.Vec3
	Faces  [][]int
}

// Add appends a point and returns its index
func (m *Mesh) Add(p vmath.Vec3) int {
	m.Points = append(m.Points, p)
	return len(m.Points) - 1
}

// Face appends a polygon
func (m *Mesh) Face(idx ...int) {
	m.Faces = append(m.Faces, append([]int(nil), idx...))
}

// Quad appends a quadrilateral as two triangles sharing the a-c diagonal
func (m *Mesh) Quad(a, b, c, d int) {
	m.Face(a, b, c)
	m.Face(a, c, d)
}

// Append copies o into m, shifting its indices past m's points
func (m *Mesh) Append(o *Mesh) {
	off := len(m.Points)
	m.Points = append(m.Points, o.Points...)
	for _, f := range o.Faces {
		nf := make([]int, len(f))
		for i, v := range f {
			nf[i] = v + off
		}
		m.Faces = append(m.Faces, nf)
	}
}

// Transform maps every point through fn
func (m *Mesh) Transform(fn func(vmath.Vec3) vmath.Vec3) {
	for i, p := range m.Points {
		m.Points[i] = fn(p)
	}
}

// Ref names a shell point and whether it lies on the recessed maze floor
type Ref struct {
	Index    int
	Recessed bool
}
