package maze

import (
	"testing"

	"github.com/lixenwraith/puzzlebox/entropy"
)

// BenchmarkGenerate carves and analyses a default-sized helical maze
func BenchmarkGenerate(b *testing.B) {
	const w, h, nubs, helix = 32, 16, 2, 2
	src := entropy.NewSeeded(1)
	for i := 0; i < b.N; i++ {
		g, err := NewGrid(w, h, nubs, helix)
		if err != nil {
			b.Fatal(err)
		}
		g.MarkInvalid(func(x, y int) bool {
			v := y*w + helix*x
			return v < (helix+1)*w || v > (h-1)*w
		})
		res, err := Generate(g, src, Config{Complexity: 5})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := Analyze(g, res, false); err != nil {
			b.Fatal(err)
		}
	}
}
