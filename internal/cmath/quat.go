package cmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat is a rotation quaternion. The zero value is not a valid rotation, use Identity.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

func Identity() Quat {
	return Quat{W: 1}
}

func QuatFromMgl(q mgl64.Quat) Quat {
	return Quat{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

func (q Quat) Mgl() mgl64.Quat {
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}
}

// QuatFromAxisAngle builds a rotation of angle radians around a unit axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	return QuatFromMgl(mgl64.QuatRotate(angle, axis.Mgl()))
}

// Mul returns q*o, i.e. o applied first.
func (q Quat) Mul(o Quat) Quat {
	return QuatFromMgl(q.Mgl().Mul(o.Mgl()))
}

func (q Quat) Normalize() Quat {
	return QuatFromMgl(q.Mgl().Normalize())
}

// Euler converts q to XYZ-ordered Euler angles, the way three.js reads a
// rotation matrix.
func (q Quat) Euler() Euler {
	m := q.Mgl().Mat4()
	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m22, m23 := m.At(1, 1), m.At(1, 2)
	m32, m33 := m.At(2, 1), m.At(2, 2)

	e := Euler{Order: OrderXYZ}
	e.Y = math.Asin(mgl64.Clamp(m13, -1, 1))
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		e.X = math.Atan2(m32, m22)
	}
	return e
}
