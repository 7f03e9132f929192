// Package camera provides the orbit camera used to inspect the hull.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/engine/picking"
	"github.com/Faultbox/hullview/pkg/math"
)

// Up is the world up axis. Hull geometry is Z-up.
var Up = math.Vec3{Z: 1}

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // elevation above the XY plane, radians
	Yaw      float32 // rotation about Z, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32

	// Projection
	FovY float32
	Near float32
	Far  float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        80,
		Pitch:           0.5,
		Yaw:             -0.8,
		MinDistance:     1,
		MaxDistance:     2000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSensitivity:  0.0015,
		FovY:            math32.Pi / 4,
		Near:            0.1,
		Far:             5000,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	horiz := c.Distance * math32.Cos(c.Pitch)
	return math.Vec3{
		X: c.Center.X + horiz*math32.Cos(c.Yaw),
		Y: c.Center.Y + horiz*math32.Sin(c.Yaw),
		Z: c.Center.Z + c.Distance*math32.Sin(c.Pitch),
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, Up)
}

// ProjectionMatrix returns the perspective projection for the viewport aspect.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(width, height int) math.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// Ray returns the world-space ray under the cursor.
func (c *OrbitCamera) Ray(x, y float32, width, height int) picking.Ray {
	inv := c.ViewProjection(width, height).Inverse()
	return picking.ScreenToRay(x, y, float32(width), float32(height), inv)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.Pitch = clamp(c.Pitch, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// HandlePan moves the center in the view plane.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	forward := c.Center.Sub(c.Position()).Normalize()
	right := forward.Cross(Up).Normalize()
	up := right.Cross(forward)

	speed := c.Distance * c.PanSensitivity
	c.Center = c.Center.
		Add(right.Scale(-deltaX * speed)).
		Add(up.Scale(deltaY * speed))
}

// SetCenter sets the camera's center point.
func (c *OrbitCamera) SetCenter(p math.Vec3) {
	c.Center = p
}

// FitToBounds centers the camera on b and backs off to see all of it.
func (c *OrbitCamera) FitToBounds(b model.Bounds) {
	if !b.Valid() {
		return
	}
	c.Center = b.Center()

	size := b.Size()
	radius := size.Length() / 2
	c.Distance = clamp(radius/math32.Sin(c.FovY/2), c.MinDistance, c.MaxDistance)
	c.Pitch = 0.5
	c.Yaw = -0.8
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
