package vmath

import (
	"math"
)

// Vec2 is a point in the XY plane, in millimetres
type Vec2 struct {
	X, Y float64
}

// Polar places a point at radius r and angle a (radians) measured clockwise
// from +Y, matching how the maze is unwrapped
func Polar(r, a float64) Vec2 {
	return Vec2{r * math.Sin(a), r * math.Cos(a)}
}

// V2Lerp moves t of the way from a to b
func V2Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}

// Vec3 is a point in space, in millimetres
type Vec3 struct {
	X, Y, Z float64
}

// V3At lifts a plane point to height z
func V3At(p Vec2, z float64) Vec3 {
	return Vec3{p.X, p.Y, z}
}

// V3RotateZ turns v counter-clockwise about the Z axis by deg degrees
func V3RotateZ(v Vec3, deg float64) Vec3 {
	s, c := math.Sincos(DegToRad(deg))
	return Vec3{v.X*c - v.Y*s, v.X*s + v.Y*c, v.Z}
}

// V3Scaled converts to integer output units
func V3Scaled(v Vec3) [3]int64 {
	return [3]int64{Scaled(v.X), Scaled(v.Y), Scaled(v.Z)}
}
