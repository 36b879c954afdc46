// Package debugdraw visualizes resolved skeleton poses through a line and text sink.
package debugdraw

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// Color is a linear RGBA color with components in [0, 1].
type Color [4]float32

// Colors used by DrawSkeleton.
var (
	BoneColor  = Color{0.2, 0.2, 0.2, 1}
	LabelColor = Color{1, 1, 1, 1}
	AxisXColor = Color{1, 0.2, 0.2, 1}
	AxisYColor = Color{0.2, 1, 0.2, 1}
	AxisZColor = Color{0.2, 0.2, 1, 1}
)

// DebugRenderer receives model-space primitives.
type DebugRenderer interface {
	// DrawLine draws a segment between two model-space points.
	//
	// Parameters:
	//   - from: the start point
	//   - to: the end point
	//   - color: the line color
	DrawLine(from, to mgl32.Vec3, color Color)

	// DrawTextAtPosition draws a label anchored at a model-space point.
	//
	// Parameters:
	//   - text: the label
	//   - pos: the anchor point
	//   - color: the text color
	DrawTextAtPosition(text string, pos mgl32.Vec3, color Color)
}

var (
	origin = mgl32.Vec3{0, 0, 0}
	unitX  = mgl32.Vec3{1, 0, 0}
	unitY  = mgl32.Vec3{0, 1, 0}
	unitZ  = mgl32.Vec3{0, 0, 1}
)

// DrawSkeleton draws every joint of a posed skeleton.
//
// For each joint: a bone from the parent's origin to the joint's origin, plus an extension
// along the joint's Y axis when it has no children; the joint name at the end of its Y axis
// when drawLabels is set; and its three unit axes in red, green and blue.
//
// Parameters:
//   - skel: the skeleton
//   - globals: model-space joint transforms, as from pose.ResolveGlobalPoses
//   - r: the sink
//   - drawLabels: whether to draw joint names
//
// Returns:
//   - error: animation.ErrLengthMismatch (wrapped) if globals is shorter than the joint count
func DrawSkeleton(skel *skeleton.Skeleton, globals []mgl32.Mat4, r DebugRenderer, drawLabels bool) error {
	n := skel.JointCount()
	if len(globals) < n {
		return fmt.Errorf("draw %d joints with %d transforms: %w", n, len(globals), animation.ErrLengthMismatch)
	}

	for i := 0; i < n; i++ {
		m := globals[i]
		pos := common.TransformPoint(m, origin)
		leafEnd := common.TransformPoint(m, unitY)

		if p := skel.ParentIndex(i); p >= 0 {
			r.DrawLine(common.TransformPoint(globals[p], origin), pos, BoneColor)
			if skel.IsLeaf(i) {
				r.DrawLine(pos, leafEnd, BoneColor)
			}
		}

		if drawLabels {
			r.DrawTextAtPosition(skel.Joint(i).Name, leafEnd, LabelColor)
		}

		r.DrawLine(pos, common.TransformPoint(m, unitX), AxisXColor)
		r.DrawLine(pos, leafEnd, AxisYColor)
		r.DrawLine(pos, common.TransformPoint(m, unitZ), AxisZColor)
	}
	return nil
}
