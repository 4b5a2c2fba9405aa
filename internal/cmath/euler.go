package cmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const OrderXYZ = "XYZ"

var ErrUnknownOrder = errors.New("unknown euler order")

var axes = map[byte]mgl64.Vec3{
	'X': {1, 0, 0},
	'Y': {0, 1, 0},
	'Z': {0, 0, 1},
}

// Euler holds rotation angles in radians. Only the XYZ order is produced.
type Euler struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Order string  `json:"order,omitempty"`
}

// Quat converts e to a quaternion. An empty order is read as XYZ. Orders are
// intrinsic, as in three.js: "YXZ" rotates around Y first.
func (e Euler) Quat() (Quat, error) {
	order := e.Order
	if order == "" {
		order = OrderXYZ
	}
	if !validOrder(order) {
		return Identity(), errors.WithMessagef(ErrUnknownOrder, "%q", e.Order)
	}

	angles := map[byte]float64{'X': e.X, 'Y': e.Y, 'Z': e.Z}
	q := mgl64.QuatIdent()
	for i := 0; i < 3; i++ {
		axis := order[i]
		q = q.Mul(mgl64.QuatRotate(angles[axis], axes[axis]))
	}
	return QuatFromMgl(q), nil
}

func validOrder(order string) bool {
	if len(order) != 3 {
		return false
	}
	seen := map[byte]bool{}
	for i := 0; i < 3; i++ {
		if _, ok := axes[order[i]]; !ok || seen[order[i]] {
			return false
		}
		seen[order[i]] = true
	}
	return true
}
