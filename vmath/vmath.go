// Package vmath holds the float geometry used to lay a maze onto a cylinder
// and emit it as integer output coordinates.
package vmath

import (
	"math"
)

// Scale is the number of output units per millimetre
const Scale = 1000

// --- Arithmetic ---

// Scaled converts millimetres to output units, rounding half away from zero
func Scaled(mm float64) int64 { return int64(math.Round(mm * Scale)) }

func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

func DegToRad(d float64) float64 { return d * math.Pi / 180 }

// Steps counts the cells of size step that fit around radius r
func Steps(r, step float64) int {
	return int(r * 2 * math.Pi / step)
}

// RoundDown truncates n to a multiple of m
func RoundDown(n, m int) int {
	if m <= 0 {
		return n
	}
	return n / m * m
}
