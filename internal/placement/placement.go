package placement

import (
	"github.com/momentum-xyz/media-placer/internal/cmath"
)

// ForwardOffset is where new content spawns relative to an unrotated camera.
var ForwardOffset = cmath.NewVec3(0, 0, -5)

// Placement is a spawn pose for new scene content.
type Placement struct {
	Position   cmath.Vec3
	Quaternion cmath.Quat
}

// Rotation returns the XYZ Euler view of the orientation.
func (p Placement) Rotation() cmath.Euler {
	return p.Quaternion.Euler()
}

// Viewer is anything exposing a camera pose.
type Viewer interface {
	Pose() (cmath.Vec3, cmath.Quat)
}

// Compute puts the spawn point ForwardOffset ahead of the viewer, looking the same way.
func Compute(v Viewer) Placement {
	pos, q := v.Pose()
	return At(pos, q)
}

func At(position cmath.Vec3, q cmath.Quat) Placement {
	return Placement{
		Position:   position.Add(ForwardOffset.ApplyQuat(q)),
		Quaternion: q,
	}
}
