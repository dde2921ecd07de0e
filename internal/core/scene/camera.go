package scene

import "math"

// Camera is a perspective camera. The bundled hosts use Project to place
// objects on their surfaces; the browser renderer only needs the transform.
type Camera struct {
	Position Vec3    `json:"position"`
	Target   Vec3    `json:"target"`
	FOV      float64 `json:"fov"` // vertical, degrees
	Aspect   float64 `json:"aspect"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`

	// Offset from the focus object when following; zero disables following.
	Follow Vec3 `json:"-"`
}

func NewCamera(fov, near, far float64, position Vec3) Camera {
	return Camera{
		Position: position,
		FOV:      fov,
		Aspect:   1,
		Near:     near,
		Far:      far,
	}
}

// Resize updates the aspect ratio from the display surface. A zero height
// is ignored.
func (c *Camera) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	c.Aspect = float64(width) / float64(height)
	return true
}

// FollowTarget moves the camera to target+Follow and aims it at target.
func (c *Camera) FollowTarget(target Vec3) {
	if c.Follow == (Vec3{}) {
		return
	}
	c.Position = target.Add(c.Follow)
	c.Target = target
}

// Projection is a point mapped onto a width x height surface.
type Projection struct {
	X, Y  float64
	Depth float64
	// PixelsPerUnit is the on-screen size of one world unit at Depth.
	PixelsPerUnit float64
}

// Project maps p to surface coordinates. ok is false when p is outside the
// near/far range.
func (c Camera) Project(p Vec3, width, height int) (Projection, bool) {
	forward := c.Target.Sub(c.Position).Normalize()
	if forward == (Vec3{}) {
		forward = Vec3{0, 0, -1}
	}
	right := forward.Cross(Vec3{0, 1, 0}).Normalize()
	if right == (Vec3{}) {
		right = Vec3{1, 0, 0}
	}
	up := right.Cross(forward)

	rel := p.Sub(c.Position)
	depth := rel.Dot(forward)
	if depth < c.Near || (c.Far > 0 && depth > c.Far) {
		return Projection{}, false
	}

	aspect := c.Aspect
	if aspect <= 0 {
		aspect = float64(width) / math.Max(1, float64(height))
	}
	f := 1 / math.Tan(c.FOV*math.Pi/360)
	ndcX := rel.Dot(right) * f / (depth * aspect)
	ndcY := rel.Dot(up) * f / depth

	return Projection{
		X:             (ndcX + 1) / 2 * float64(width),
		Y:             (1 - ndcY) / 2 * float64(height),
		Depth:         depth,
		PixelsPerUnit: f / depth * float64(height) / 2,
	}, true
}
