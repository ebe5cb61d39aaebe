package entropy

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestDeviceReadsLittleEndianWords(t *testing.T) {
	d := NewDevice(bytes.NewReader([]byte{1, 0, 0, 0, 0xff, 0xff, 0xff, 0xff}))

	v, err := d.NextInt()
	if err != nil {
		t.Fatalf("NextInt failed: %v", err)
	}
	if v != 1 {
		t.Errorf("first word: got %d, want 1", v)
	}

	v, err = d.NextInt()
	if err != nil {
		t.Fatalf("NextInt failed: %v", err)
	}
	if v != -1 {
		t.Errorf("second word: got %d, want -1", v)
	}

	if _, err := d.NextInt(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF after stream end, got %v", err)
	}
}

func TestDeviceShortRead(t *testing.T) {
	d := NewDevice(bytes.NewReader([]byte{1, 2}))
	if _, err := d.NextInt(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestSeededIsReproducible(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 100; i++ {
		va, _ := a.NextInt()
		vb, _ := b.NextInt()
		if va != vb {
			t.Fatalf("draw %d differs: %d vs %d", i, va, vb)
		}
	}
}

func TestScript(t *testing.T) {
	s := &Script{Values: []int32{3, 4}}
	for _, want := range []int32{3, 4} {
		got, err := s.NextInt()
		if err != nil || got != want {
			t.Fatalf("got %d,%v want %d", got, err, want)
		}
	}
	if _, err := s.NextInt(); !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}

	c := &Script{Values: []int32{7}, Cycle: true}
	for i := 0; i < 3; i++ {
		if v, err := c.NextInt(); err != nil || v != 7 {
			t.Fatalf("cycle draw %d: got %d,%v", i, v, err)
		}
	}
}

func TestIntn(t *testing.T) {
	tests := []struct {
		raw  int32
		n    int
		want int
	}{
		{7, 3, 1},
		{-1, 10, 5}, // 0xffffffff % 10
		{0, 1, 0},
		{9, 10, 9},
	}
	for _, tt := range tests {
		got, err := Intn(&Script{Values: []int32{tt.raw}}, tt.n)
		if err != nil {
			t.Fatalf("Intn(%d,%d) failed: %v", tt.raw, tt.n, err)
		}
		if got != tt.want {
			t.Errorf("Intn(%d,%d) = %d, want %d", tt.raw, tt.n, got, tt.want)
		}
	}

	if _, err := Intn(&Script{Values: []int32{1}}, 0); err == nil {
		t.Error("expected error for empty range")
	}
}
