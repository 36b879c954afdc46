package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: n·p + d = 0,
// where n is the unit normal and d is the signed distance from the origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns how far p lies on the normal's side of the plane.
func (p Plane) SignedDistance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts frustum planes from a projection * view matrix with an OpenGL
// style [-1, 1] depth range, as built by mgl32.Perspective and mgl32.Ortho.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	var f Frustum
	rows := [4]mgl32.Vec4{viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)}

	planes := [6]mgl32.Vec4{
		rows[3].Add(rows[0]), // left
		rows[3].Sub(rows[0]), // right
		rows[3].Add(rows[1]), // bottom
		rows[3].Sub(rows[1]), // top
		rows[3].Add(rows[2]), // near
		rows[3].Sub(rows[2]), // far
	}
	for i, p := range planes {
		n := p.Vec3()
		length := n.Len()
		if length > 0 {
			f.Planes[i] = Plane{Normal: n.Mul(1 / length), Distance: p[3] / length}
		}
	}
	return f
}

// ContainsPoint reports whether p is inside or on every plane.
func (f Frustum) ContainsPoint(p mgl32.Vec3) bool {
	return f.IntersectsSphere(p, 0)
}

// IntersectsSphere reports whether any part of the sphere may be inside the frustum.
// Spheres near a corner can report true while being outside; they are never culled wrongly.
func (f Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(center) < -radius {
			return false
		}
	}
	return true
}
