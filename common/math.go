package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// All matrices in this module are mgl32.Mat4 values: column-major storage, column vectors,
// points transformed as p' = M * p and transforms composed parent * child.

// TransformPoint transforms a point (w = 1) by the given matrix and drops the homogeneous coordinate.
//
// Parameters:
//   - m: the transform to apply
//   - p: the point to transform
//
// Returns:
//   - mgl32.Vec3: the transformed point
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// ComposeTRS builds the matrix T * R * S for a translation, a unit rotation quaternion and a uniform scale.
// The rotation block is taken from the quaternion directly and each basis column is scaled in place,
// which is equivalent to multiplying the three matrices without the intermediate products.
//
// Parameters:
//   - t: the translation
//   - r: the rotation, expected to be unit length
//   - s: the uniform scale factor
//
// Returns:
//   - mgl32.Mat4: the composed transform
func ComposeTRS(t mgl32.Vec3, r mgl32.Quat, s float32) mgl32.Mat4 {
	m := r.Mat4()
	for i := 0; i < 12; i++ {
		if i%4 != 3 {
			m[i] *= s
		}
	}
	m[12], m[13], m[14] = t[0], t[1], t[2]
	return m
}

// ColumnScale returns the length of each of the three basis columns of m.
// For a transform without shear these are the per-axis scale factors.
//
// Parameters:
//   - m: the transform to measure
//
// Returns:
//   - mgl32.Vec3: the x, y and z basis lengths
func ColumnScale(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
}

// RotationToQuat extracts the rotation of m as a unit quaternion.
// Basis columns are normalized first so a scaled matrix still yields a valid rotation;
// columns shorter than 1e-4 are left unscaled. Shear is not handled.
//
// Parameters:
//   - m: the transform to extract the rotation from
//
// Returns:
//   - mgl32.Quat: the normalized rotation
func RotationToQuat(m mgl32.Mat4) mgl32.Quat {
	scale := ColumnScale(m)
	for i := range scale {
		if scale[i] < 0.0001 {
			scale[i] = 1
		}
	}

	r00, r01, r02 := m.At(0, 0)/scale[0], m.At(0, 1)/scale[1], m.At(0, 2)/scale[2]
	r10, r11, r12 := m.At(1, 0)/scale[0], m.At(1, 1)/scale[1], m.At(1, 2)/scale[2]
	r20, r21, r22 := m.At(2, 0)/scale[0], m.At(2, 1)/scale[1], m.At(2, 2)/scale[2]

	trace := r00 + r11 + r22

	var x, y, z, w float32

	if trace > 0 {
		s := sqrt32(trace+1.0) * 2
		w = 0.25 * s
		x = (r21 - r12) / s
		y = (r02 - r20) / s
		z = (r10 - r01) / s
	} else if r00 > r11 && r00 > r22 {
		s := sqrt32(1.0+r00-r11-r22) * 2
		w = (r21 - r12) / s
		x = 0.25 * s
		y = (r01 + r10) / s
		z = (r02 + r20) / s
	} else if r11 > r22 {
		s := sqrt32(1.0+r11-r00-r22) * 2
		w = (r02 - r20) / s
		x = (r01 + r10) / s
		y = 0.25 * s
		z = (r12 + r21) / s
	} else {
		s := sqrt32(1.0+r22-r00-r11) * 2
		w = (r10 - r01) / s
		x = (r02 + r20) / s
		y = (r12 + r21) / s
		z = 0.25 * s
	}

	q := mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
	if l := q.Len(); l > 0.0001 {
		q = q.Scale(1 / l)
	}
	return q
}

// UpAxisCorrection returns the rotation that maps a Z-up authoring convention onto the
// Y-up runtime convention: a -90 degree rotation about X, so (0, 0, 1) becomes (0, 1, 0).
//
// Returns:
//   - mgl32.Mat4: the correction transform
func UpAxisCorrection() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(-math.Pi / 2)
}

// FlattenMatrices packs matrices into dst in column-major order, 16 floats per matrix.
// dst must hold at least 16*len(mats) elements.
//
// Parameters:
//   - dst: destination slice
//   - mats: the matrices to pack
//
// Returns:
//   - int: the number of floats written
func FlattenMatrices(dst []float32, mats []mgl32.Mat4) int {
	n := 0
	for i := range mats {
		n += copy(dst[n:], mats[i][:])
	}
	return n
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
