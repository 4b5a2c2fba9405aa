package scene

import (
	"github.com/momentum-xyz/media-placer/internal/cmath"

	"github.com/sasha-s/go-deadlock"
)

// Camera is the viewer pose new content is placed relative to.
type Camera struct {
	mu         deadlock.RWMutex
	position   cmath.Vec3
	quaternion cmath.Quat
}

func NewCamera() *Camera {
	return &Camera{quaternion: cmath.Identity()}
}

func (c *Camera) Pose() (cmath.Vec3, cmath.Quat) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position, c.quaternion
}

func (c *Camera) SetPose(position cmath.Vec3, quaternion cmath.Quat) {
	c.mu.Lock()
	c.position = position
	c.quaternion = quaternion
	c.mu.Unlock()
}
