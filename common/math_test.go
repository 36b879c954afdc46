package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-5

func TestTransformPoint(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	got := TransformPoint(m, mgl32.Vec3{1, 1, 1})
	want := mgl32.Vec3{2, 3, 4}
	if !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("TransformPoint = %v, want %v", got, want)
	}
}

func TestComposeTRSMatchesProduct(t *testing.T) {
	r := mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 1}.Normalize())
	tr := mgl32.Vec3{4, -2, 0.5}
	var s float32 = 2.5

	got := ComposeTRS(tr, r, s)
	want := mgl32.Translate3D(tr[0], tr[1], tr[2]).Mul4(r.Mat4()).Mul4(mgl32.Scale3D(s, s, s))

	if !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("ComposeTRS = %v, want %v", got, want)
	}
}

func TestRotationToQuatRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		angle float32
		axis  mgl32.Vec3
		scale float32
	}{
		{"identity", 0, mgl32.Vec3{1, 0, 0}, 1},
		{"about x", 1.2, mgl32.Vec3{1, 0, 0}, 1},
		{"about y half turn", math.Pi, mgl32.Vec3{0, 1, 0}, 1},
		{"about z half turn", math.Pi, mgl32.Vec3{0, 0, 1}, 1},
		{"oblique", 2.1, mgl32.Vec3{1, 2, 3}.Normalize(), 1},
		{"scaled", 0.4, mgl32.Vec3{0, 0, 1}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mgl32.QuatRotate(tt.angle, tt.axis)
			m := ComposeTRS(mgl32.Vec3{1, 2, 3}, q, tt.scale)
			got := RotationToQuat(m)

			// q and -q encode the same rotation
			if !got.ApproxEqualThreshold(q, 1e-4) && !got.ApproxEqualThreshold(q.Scale(-1), 1e-4) {
				t.Errorf("RotationToQuat = %v, want %v", got, q)
			}
			if l := got.Len(); math.Abs(float64(l-1)) > eps {
				t.Errorf("|q| = %v, want 1", l)
			}
		})
	}
}

func TestUpAxisCorrection(t *testing.T) {
	got := TransformPoint(UpAxisCorrection(), mgl32.Vec3{0, 0, 1})
	want := mgl32.Vec3{0, 1, 0}
	if !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("Z-up maps to %v, want %v", got, want)
	}
}

func TestFlattenMatrices(t *testing.T) {
	mats := []mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(7, 8, 9)}
	dst := make([]float32, 32)

	if n := FlattenMatrices(dst, mats); n != 32 {
		t.Fatalf("FlattenMatrices wrote %d floats, want 32", n)
	}
	if dst[0] != 1 || dst[16+12] != 7 || dst[16+13] != 8 || dst[16+14] != 9 {
		t.Errorf("unexpected layout: %v", dst)
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 3, 4); got != 3 {
		t.Errorf("Coalesce = %d, want 3", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("Coalesce = %q, want empty", got)
	}
}
