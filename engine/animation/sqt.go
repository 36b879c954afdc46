package animation

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/go-gl/mathgl/mgl32"
)

// minQuatLen is the smallest blended quaternion magnitude accepted before renormalizing.
// Smaller values come from blending nearly antipodal rotations.
const minQuatLen = 1e-6

// SQT is a joint transform decomposed into a uniform scale, a rotation and a translation.
// Poses are blended in this form because interpolating matrices does not produce valid rotations.
type SQT struct {
	// Translation is the offset relative to the parent joint.
	Translation mgl32.Vec3

	// Scale is the uniform scale factor.
	Scale float32

	// Rotation is a unit quaternion. It is renormalized after every blend.
	Rotation mgl32.Quat
}

// IdentitySQT returns the transform that leaves a joint at its parent's origin and orientation.
//
// Returns:
//   - SQT: zero translation, unit scale, identity rotation
func IdentitySQT() SQT {
	return SQT{Scale: 1, Rotation: mgl32.QuatIdent()}
}

// Mat4 converts the pose to the matrix T * R * S.
//
// Returns:
//   - mgl32.Mat4: the column-major transform
func (p SQT) Mat4() mgl32.Mat4 {
	return common.ComposeTRS(p.Translation, p.Rotation, p.Scale)
}

// LerpQuaternion blends two quaternions with normalized linear interpolation (nlerp):
// each of the four components is interpolated with weights (1 - t, t) and the result is
// divided by its magnitude. This is not slerp; it is accurate for the small angular deltas
// between neighbouring samples but not geodesically exact for wide blends.
//
// t == 0 returns q1 and t == 1 returns q2 unchanged. t is not clamped, values outside
// [0, 1] extrapolate.
//
// Parameters:
//   - q1: the rotation at t = 0
//   - q2: the rotation at t = 1
//   - t: the blend factor
//
// Returns:
//   - mgl32.Quat: the unit-length blend
//   - error: ErrDegenerateQuaternion if the blend magnitude collapses toward zero (antipodal inputs)
func LerpQuaternion(q1, q2 mgl32.Quat, t float32) (mgl32.Quat, error) {
	switch t {
	case 0:
		return q1, nil
	case 1:
		return q2, nil
	}

	r := 1 - t
	w := r*q1.W + t*q2.W
	x := r*q1.V[0] + t*q2.V[0]
	y := r*q1.V[1] + t*q2.V[1]
	z := r*q1.V[2] + t*q2.V[2]

	l := float32(math.Sqrt(float64(w*w + x*x + y*y + z*z)))
	if !(l >= minQuatLen) {
		return mgl32.Quat{}, fmt.Errorf("blend of %v and %v at %v has magnitude %v: %w", q1, q2, t, l, ErrDegenerateQuaternion)
	}

	return mgl32.Quat{W: w / l, V: mgl32.Vec3{x / l, y / l, z / l}}, nil
}

// LerpSQT blends two poses: scale and translation linearly, rotation with LerpQuaternion.
//
// Parameters:
//   - a: the pose at t = 0
//   - b: the pose at t = 1
//   - t: the blend factor, not clamped
//
// Returns:
//   - SQT: the blended pose
//   - error: ErrDegenerateQuaternion if the rotations cancel out
func LerpSQT(a, b SQT, t float32) (SQT, error) {
	switch t {
	case 0:
		return a, nil
	case 1:
		return b, nil
	}

	rot, err := LerpQuaternion(a.Rotation, b.Rotation, t)
	if err != nil {
		return SQT{}, err
	}

	r := 1 - t
	return SQT{
		Translation: mgl32.Vec3{
			r*a.Translation[0] + t*b.Translation[0],
			r*a.Translation[1] + t*b.Translation[1],
			r*a.Translation[2] + t*b.Translation[2],
		},
		Scale:    r*a.Scale + t*b.Scale,
		Rotation: rot,
	}, nil
}

// BlendPoses blends from into into, joint by joint: into[i] = LerpSQT(from[i], into[i], t).
// Only the first n entries of both slices are touched.
//
// Parameters:
//   - from: the poses at t = 0
//   - into: the poses at t = 1, overwritten with the result
//   - n: the number of joints to blend
//   - t: the blend factor, not clamped
//
// Returns:
//   - error: ErrLengthMismatch if either slice is shorter than n, or a wrapped ErrDegenerateQuaternion
func BlendPoses(from, into []SQT, n int, t float32) error {
	if len(from) < n || len(into) < n {
		return fmt.Errorf("blend of %d joints with buffers of %d and %d: %w", n, len(from), len(into), ErrLengthMismatch)
	}
	for i := 0; i < n; i++ {
		p, err := LerpSQT(from[i], into[i], t)
		if err != nil {
			return fmt.Errorf("joint %d: %w", i, err)
		}
		into[i] = p
	}
	return nil
}
