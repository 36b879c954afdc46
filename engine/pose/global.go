// Package pose turns parent-relative joint poses into model-space transforms.
package pose

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// ResolveGlobalPoses computes the model-space transform of every joint.
//
// Joints are visited once in order: global[i] = global[parent] * local[i].Mat4(), roots
// using the identity as parent.
//
// Parameters:
//   - skel: the skeleton
//   - local: at least skel.JointCount() parent-relative poses
//
// Returns:
//   - []mgl32.Mat4: one model-space matrix per joint
//   - error: animation.ErrLengthMismatch (wrapped) if local is too short
func ResolveGlobalPoses(skel *skeleton.Skeleton, local []animation.SQT) ([]mgl32.Mat4, error) {
	out := make([]mgl32.Mat4, skel.JointCount())
	if err := ResolveGlobalPosesInto(skel, local, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveGlobalPosesInto is ResolveGlobalPoses writing into a caller-owned buffer.
//
// Parameters:
//   - skel: the skeleton
//   - local: at least skel.JointCount() parent-relative poses
//   - out: at least skel.JointCount() matrices, overwritten
//
// Returns:
//   - error: animation.ErrLengthMismatch (wrapped) if either buffer is too short
func ResolveGlobalPosesInto(skel *skeleton.Skeleton, local []animation.SQT, out []mgl32.Mat4) error {
	n := skel.JointCount()
	if len(local) < n || len(out) < n {
		return fmt.Errorf("resolve %d joints from %d poses into %d matrices: %w", n, len(local), len(out), animation.ErrLengthMismatch)
	}

	for i := 0; i < n; i++ {
		m := local[i].Mat4()
		if p := skel.ParentIndex(i); p >= 0 {
			m = out[p].Mul4(m)
		}
		out[i] = m
	}
	return nil
}

// SkinningPaletteInto multiplies each global transform by its joint's inverse bind matrix,
// producing the matrices a skinning shader consumes.
//
// Parameters:
//   - skel: the skeleton
//   - global: model-space transforms from ResolveGlobalPosesInto
//   - out: at least skel.JointCount() matrices, overwritten
//
// Returns:
//   - error: animation.ErrLengthMismatch (wrapped) if either buffer is too short
func SkinningPaletteInto(skel *skeleton.Skeleton, global, out []mgl32.Mat4) error {
	n := skel.JointCount()
	if len(global) < n || len(out) < n {
		return fmt.Errorf("palette of %d joints from %d matrices into %d: %w", n, len(global), len(out), animation.ErrLengthMismatch)
	}
	for i := 0; i < n; i++ {
		out[i] = global[i].Mul4(skel.Joint(i).InverseBindMatrix)
	}
	return nil
}

// JointPosition returns the model-space origin of a joint transform.
func JointPosition(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

// Flatten packs matrices column-major into a float slice, 16 values per matrix, reusing dst when it is large enough.
func Flatten(dst []float32, mats []mgl32.Mat4) []float32 {
	need := 16 * len(mats)
	if cap(dst) < need {
		dst = make([]float32, need)
	}
	dst = dst[:need]
	common.FlattenMatrices(dst, mats)
	return dst
}
