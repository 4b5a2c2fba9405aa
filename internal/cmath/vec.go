package cmath

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a point or direction in scene space. It is the serialised form;
// arithmetic goes through mgl64.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func FromMgl(v mgl64.Vec3) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func (v Vec3) Mgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return FromMgl(v.Mgl().Add(o.Mgl()))
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return FromMgl(v.Mgl().Sub(o.Mgl()))
}

// Mul multiplies component-wise.
func (v Vec3) Mul(o Vec3) Vec3 {
	return FromMgl(mgl64.Diag3(o.Mgl()).Mul3x1(v.Mgl()))
}

func (v Vec3) Scale(s float64) Vec3 {
	return FromMgl(v.Mgl().Mul(s))
}

func (v Vec3) Length() float64 {
	return v.Mgl().Len()
}

// ApplyQuat rotates v by q.
func (v Vec3) ApplyQuat(q Quat) Vec3 {
	return FromMgl(q.Mgl().Rotate(v.Mgl()))
}

func (v Vec3) ApproxEqual(o Vec3, eps float64) bool {
	return v.Mgl().ApproxEqualThreshold(o.Mgl(), eps)
}
