// Package entropy supplies the random integers consumed by maze carving and
// nub placement. Every consumer takes a Source so runs can be made
// deterministic with Seeded or Script.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	mrand "math/rand/v2"
)

// ErrExhausted is returned by Script once all scripted values are consumed
var ErrExhausted = errors.New("entropy exhausted")

// Source yields one 32-bit signed integer per call
type Source interface {
	NextInt() (int32, error)
}

// Device reads raw 4-byte words from an entropy stream
type Device struct {
	r   io.Reader
	buf [4]byte
}

// NewDevice wraps r; a nil reader selects crypto/rand
func NewDevice(r io.Reader) *Device {
	if r == nil {
		r = rand.Reader
	}
	return &Device{r: r}
}

func (d *Device) NextInt() (int32, error) {
	if _, err := io.ReadFull(d.r, d.buf[:]); err != nil {
		return 0, fmt.Errorf("read entropy: %w", err)
	}
	return int32(binary.LittleEndian.Uint32(d.buf[:])), nil
}

// Seeded is a reproducible PCG stream
type Seeded struct {
	rng *mrand.Rand
}

func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Seeded) NextInt() (int32, error) {
	return int32(s.rng.Uint32()), nil
}

// Script replays a fixed list of values, for tests that pin exact choices
type Script struct {
	Values []int32
	pos    int
	// Cycle restarts from the first value instead of failing
	Cycle bool
}

func (s *Script) NextInt() (int32, error) {
	if s.pos >= len(s.Values) {
		if !s.Cycle || len(s.Values) == 0 {
			return 0, ErrExhausted
		}
		s.pos = 0
	}
	v := s.Values[s.pos]
	s.pos++
	return v, nil
}

// Intn draws a value in [0,n). The raw word is reinterpreted as unsigned so
// negative draws never bias the result toward the first choice.
func Intn(src Source, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("entropy: invalid range %d", n)
	}
	v, err := src.NextInt()
	if err != nil {
		return 0, err
	}
	return int(uint32(v) % uint32(n)), nil
}
