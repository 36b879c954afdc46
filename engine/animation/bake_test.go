package animation

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeSource struct {
	joints []ImportedJoint
	tracks []ImportedTrack
}

func (f fakeSource) ImportedJoints() []ImportedJoint { return f.joints }
func (f fakeSource) ImportedTracks() []ImportedTrack { return f.tracks }

func twoJointSource() fakeSource {
	return fakeSource{
		joints: []ImportedJoint{
			{Name: "hip", ParentIndex: -1},
			{Name: "knee", ParentIndex: 0},
			{Name: "toe", ParentIndex: 1},
		},
		tracks: []ImportedTrack{
			{
				JointName: "hip/transform",
				Times:     []float32{0.5, 1.0},
				Matrices:  []mgl32.Mat4{mgl32.Translate3D(0, 0, 1), mgl32.Translate3D(0, 0, 2)},
			},
			{
				JointName: "knee",
				Times:     []float32{0.5, 1.0},
				Matrices: []mgl32.Mat4{
					mgl32.Translate3D(1, 0, 0),
					mgl32.Translate3D(1, 0, 0).Mul4(mgl32.HomogRotate3DY(math.Pi / 2)),
				},
			},
		},
	}
}

func TestBakeRootCorrection(t *testing.T) {
	clip, err := Bake("walk", twoJointSource())
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}

	if clip.SampleCount() != 2 {
		t.Fatalf("SampleCount = %d, want 2", clip.SampleCount())
	}
	if clip.SamplesPerSecond() != 2 {
		t.Errorf("SamplesPerSecond = %v, want 2", clip.SamplesPerSecond())
	}
	if clip.JointCount() != 3 {
		t.Errorf("JointCount = %d, want 3", clip.JointCount())
	}

	// Z-up root translation ends up on Y.
	hip := clip.Sample(1).LocalPoses[0]
	if !approxVec(hip.Translation, mgl32.Vec3{0, 2, 0}) {
		t.Errorf("hip translation = %v, want [0 2 0]", hip.Translation)
	}

	// Non-root joints are not corrected.
	knee := clip.Sample(0).LocalPoses[1]
	if !approxVec(knee.Translation, mgl32.Vec3{1, 0, 0}) {
		t.Errorf("knee translation = %v, want [1 0 0]", knee.Translation)
	}
	want := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0})
	if got := clip.Sample(1).LocalPoses[1].Rotation; !got.ApproxEqualThreshold(want, 1e-4) {
		t.Errorf("knee rotation = %v, want %v", got, want)
	}

	// Unmatched joints hold identity.
	if toe := clip.Sample(1).LocalPoses[2]; toe != IdentitySQT() {
		t.Errorf("toe = %+v, want identity", toe)
	}
}

func TestBakeWithoutRootCorrection(t *testing.T) {
	clip, err := Bake("walk", twoJointSource(), WithoutRootCorrection())
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	hip := clip.Sample(1).LocalPoses[0]
	if !approxVec(hip.Translation, mgl32.Vec3{0, 0, 2}) {
		t.Errorf("hip translation = %v, want [0 0 2]", hip.Translation)
	}

	clip, err = Bake("walk", twoJointSource(), WithRootCorrection(mgl32.Translate3D(5, 0, 0)))
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	hip = clip.Sample(0).LocalPoses[0]
	if !approxVec(hip.Translation, mgl32.Vec3{5, 0, 1}) {
		t.Errorf("hip translation = %v, want [5 0 1]", hip.Translation)
	}
}

func TestBakeDuplicateTrackLastWins(t *testing.T) {
	src := twoJointSource()
	src.tracks = append(src.tracks, ImportedTrack{
		JointName: "knee",
		Times:     []float32{0.5, 1.0},
		Matrices:  []mgl32.Mat4{mgl32.Translate3D(3, 0, 0), mgl32.Translate3D(4, 0, 0)},
	})

	clip, err := Bake("walk", src)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	tests := []struct {
		sample int
		want   mgl32.Vec3
	}{
		{0, mgl32.Vec3{3, 0, 0}},
		{1, mgl32.Vec3{4, 0, 0}},
	}
	for _, tt := range tests {
		if got := clip.Sample(tt.sample).LocalPoses[1].Translation; !approxVec(got, tt.want) {
			t.Errorf("sample %d knee translation = %v, want %v", tt.sample, got, tt.want)
		}
	}
}

func TestBakeScale(t *testing.T) {
	src := fakeSource{
		joints: []ImportedJoint{{Name: "a", ParentIndex: -1}},
		tracks: []ImportedTrack{{
			JointName: "a",
			Times:     []float32{1},
			Matrices:  []mgl32.Mat4{mgl32.Scale3D(2, 2, 2)},
		}},
	}

	clip, err := Bake("s", src, WithoutRootCorrection())
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if s := clip.Sample(0).LocalPoses[0].Scale; s != 1 {
		t.Errorf("Scale = %v, want 1", s)
	}

	clip, err = Bake("s", src, WithoutRootCorrection(), WithScaleRecovery())
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if s := clip.Sample(0).LocalPoses[0].Scale; !approx(s, 2) {
		t.Errorf("Scale = %v, want 2", s)
	}
}

func TestBakeErrors(t *testing.T) {
	joints := []ImportedJoint{{Name: "a", ParentIndex: -1}}
	id := mgl32.Ident4()

	tests := []struct {
		name string
		src  fakeSource
		want error
	}{
		{"no joints", fakeSource{}, ErrEmptyClip},
		{"no tracks", fakeSource{joints: joints}, ErrEmptyClip},
		{"no samples", fakeSource{joints: joints, tracks: []ImportedTrack{{JointName: "a"}}}, ErrEmptyClip},
		{
			"zero duration",
			fakeSource{joints: joints, tracks: []ImportedTrack{{JointName: "a", Times: []float32{0}, Matrices: []mgl32.Mat4{id}}}},
			ErrInvalidDuration,
		},
		{
			"ragged tracks",
			fakeSource{joints: joints, tracks: []ImportedTrack{
				{JointName: "a", Times: []float32{0.5, 1}, Matrices: []mgl32.Mat4{id, id}},
				{JointName: "b", Times: []float32{1}, Matrices: []mgl32.Mat4{id}},
			}},
			ErrTrackMismatch,
		},
		{
			"times and matrices differ",
			fakeSource{joints: joints, tracks: []ImportedTrack{{JointName: "a", Times: []float32{0.5, 1}, Matrices: []mgl32.Mat4{id}}}},
			ErrTrackMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bake("x", tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBakeSkeleton(t *testing.T) {
	ibm := mgl32.Translate3D(0, -1, 0)
	src := twoJointSource()
	src.joints[1].InverseBindMatrix = ibm

	s, err := BakeSkeleton(src)
	if err != nil {
		t.Fatalf("BakeSkeleton: %v", err)
	}
	if s.JointCount() != 3 {
		t.Errorf("JointCount = %d, want 3", s.JointCount())
	}
	if s.Joint(0).InverseBindMatrix != mgl32.Ident4() {
		t.Errorf("default inverse bind = %v, want identity", s.Joint(0).InverseBindMatrix)
	}
	if s.Joint(1).InverseBindMatrix != ibm {
		t.Errorf("inverse bind = %v, want %v", s.Joint(1).InverseBindMatrix, ibm)
	}

	bad := fakeSource{joints: []ImportedJoint{{Name: "a", ParentIndex: 0}}}
	if _, err := BakeSkeleton(bad); !errors.Is(err, skeleton.ErrNonTopological) {
		t.Errorf("err = %v, want ErrNonTopological", err)
	}
}
