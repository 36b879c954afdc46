package debugdraw

import "github.com/go-gl/mathgl/mgl32"

// Projector maps model-space points to pixel coordinates of a viewport.
type Projector struct {
	viewProj mgl32.Mat4
	width    float64
	height   float64
}

// NewProjector creates a projector for a width x height viewport with the origin at the top left.
func NewProjector(viewProj mgl32.Mat4, width, height int) Projector {
	return Projector{viewProj: viewProj, width: float64(width), height: float64(height)}
}

// Project returns the pixel position of p. ok is false when p lies behind the eye.
func (p Projector) Project(v mgl32.Vec3) (x, y float64, ok bool) {
	clip := p.viewProj.Mul4x1(v.Vec4(1))
	w := clip.W()
	if w <= 1e-6 {
		return 0, 0, false
	}
	nx := float64(clip.X() / w)
	ny := float64(clip.Y() / w)
	return (nx + 1) * 0.5 * p.width, (1 - ny) * 0.5 * p.height, true
}

// ProjectLine projects both ends of a segment, failing when either end is behind the eye.
func (p Projector) ProjectLine(from, to mgl32.Vec3) (x1, y1, x2, y2 float64, ok bool) {
	x1, y1, ok1 := p.Project(from)
	x2, y2, ok2 := p.Project(to)
	return x1, y1, x2, y2, ok1 && ok2
}

// Size returns the viewport dimensions in pixels.
func (p Projector) Size() (width, height float64) {
	return p.width, p.height
}
