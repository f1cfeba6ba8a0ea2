package renderer

import (
	"math"

	"github.com/yht0511/terminus-lidar/types"
)

// FPSCamera is a yaw/pitch fly camera. It doubles as the engine's
// PoseProvider so scans originate from the viewer's eye.
type FPSCamera struct {
	pos   types.Vec3
	yaw   float32
	pitch float32
}

func NewFPSCamera(pos types.Vec3) *FPSCamera {
	return &FPSCamera{pos: pos}
}

func (c *FPSCamera) Position() types.Vec3 {
	return c.pos
}

func (c *FPSCamera) Rotation() types.Quat {
	yawQ := types.QuatFromAxisAngle(types.XYZ(0, 1, 0), c.yaw)
	pitchQ := types.QuatFromAxisAngle(types.XYZ(1, 0, 0), c.pitch)
	return yawQ.Mul(pitchQ)
}

// Look applies yaw/pitch deltas, clamping pitch short of the poles.
func (c *FPSCamera) Look(dYaw, dPitch float32) {
	c.yaw += dYaw
	c.pitch = types.Clamp(c.pitch+dPitch, -float32(math.Pi/2)+0.01, float32(math.Pi/2)-0.01)
}

// MoveLocal translates along the camera's right (dx) and forward (dz) axes.
func (c *FPSCamera) MoveLocal(dx, dz float32) {
	rot := c.Rotation()
	forward := rot.Rotate(types.XYZ(0, 0, -1))
	right := rot.Rotate(types.XYZ(1, 0, 0))
	c.pos = c.pos.Add(forward.Mul(dz)).Add(right.Mul(dx))
}

func (c *FPSCamera) SetPosition(pos types.Vec3) {
	c.pos = pos
}

// Angles returns the current yaw and pitch.
func (c *FPSCamera) Angles() (yaw, pitch float32) {
	return c.yaw, c.pitch
}
