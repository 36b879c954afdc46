package pose

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

func mustSkeleton(t *testing.T, joints ...skeleton.Joint) *skeleton.Skeleton {
	t.Helper()
	s, err := skeleton.NewSkeleton(joints)
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	return s
}

func chainSkeleton(t *testing.T) *skeleton.Skeleton {
	return mustSkeleton(t,
		skeleton.Joint{Name: "root", ParentIndex: -1, InverseBindMatrix: mgl32.Ident4()},
		skeleton.Joint{Name: "child", ParentIndex: 0, InverseBindMatrix: mgl32.Ident4()},
		skeleton.Joint{Name: "grandchild", ParentIndex: 1, InverseBindMatrix: mgl32.Ident4()},
	)
}

func translated(x, y, z float32) animation.SQT {
	p := animation.IdentitySQT()
	p.Translation = mgl32.Vec3{x, y, z}
	return p
}

func TestRootEqualsLocal(t *testing.T) {
	skel := mustSkeleton(t, skeleton.Joint{Name: "root", ParentIndex: -1})
	local := animation.SQT{
		Translation: mgl32.Vec3{1, -2, 3},
		Scale:       1.5,
		Rotation:    mgl32.QuatRotate(0.8, mgl32.Vec3{0, 0, 1}),
	}

	global, err := ResolveGlobalPoses(skel, []animation.SQT{local})
	if err != nil {
		t.Fatalf("ResolveGlobalPoses: %v", err)
	}
	if global[0] != local.Mat4() {
		t.Errorf("root global = %v, want %v", global[0], local.Mat4())
	}
}

func TestChainTranslationSum(t *testing.T) {
	skel := chainSkeleton(t)
	local := []animation.SQT{translated(1, 0, 0), translated(0, 2, 0), translated(0, 0, 3)}

	global, err := ResolveGlobalPoses(skel, local)
	if err != nil {
		t.Fatalf("ResolveGlobalPoses: %v", err)
	}

	want := mgl32.Vec3{1, 2, 3}
	if got := JointPosition(global[2]); !got.ApproxEqual(want) {
		t.Errorf("grandchild position = %v, want %v", got, want)
	}
}

func TestChainRotationComposition(t *testing.T) {
	skel := chainSkeleton(t)
	local := []animation.SQT{
		{Translation: mgl32.Vec3{0, 1, 0}, Scale: 1, Rotation: mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})},
		{Translation: mgl32.Vec3{2, 0, 0}, Scale: 1, Rotation: mgl32.QuatRotate(math.Pi/4, mgl32.Vec3{0, 1, 0})},
		{Translation: mgl32.Vec3{0, 0, 1}, Scale: 2, Rotation: mgl32.QuatIdent()},
	}

	global, err := ResolveGlobalPoses(skel, local)
	if err != nil {
		t.Fatalf("ResolveGlobalPoses: %v", err)
	}

	want := local[0].Mat4().Mul4(local[1].Mat4()).Mul4(local[2].Mat4())
	gotPos := common.TransformPoint(global[2], mgl32.Vec3{})
	wantPos := common.TransformPoint(want, mgl32.Vec3{})
	if !gotPos.ApproxEqualThreshold(wantPos, 1e-5) {
		t.Errorf("grandchild position = %v, want %v", gotPos, wantPos)
	}

	// child sits at root * (2, 0, 0): rotated 90 degrees about Z then offset by (0, 1, 0).
	if got := JointPosition(global[1]); !got.ApproxEqualThreshold(mgl32.Vec3{0, 3, 0}, 1e-5) {
		t.Errorf("child position = %v, want [0 3 0]", got)
	}
}

func TestResolveGlobalPosesInto(t *testing.T) {
	skel := chainSkeleton(t)
	local := []animation.SQT{translated(1, 0, 0), translated(1, 0, 0), translated(1, 0, 0), translated(9, 9, 9)}
	out := make([]mgl32.Mat4, 3)

	if err := ResolveGlobalPosesInto(skel, local, out); err != nil {
		t.Fatalf("ResolveGlobalPosesInto: %v", err)
	}
	if got := JointPosition(out[2]); got != (mgl32.Vec3{3, 0, 0}) {
		t.Errorf("position = %v, want [3 0 0]", got)
	}

	allocs := testing.AllocsPerRun(50, func() {
		_ = ResolveGlobalPosesInto(skel, local, out)
	})
	if allocs != 0 {
		t.Errorf("ResolveGlobalPosesInto allocated %v times per run, want 0", allocs)
	}

	if err := ResolveGlobalPosesInto(skel, local[:2], out); !errors.Is(err, animation.ErrLengthMismatch) {
		t.Errorf("short local: err = %v, want ErrLengthMismatch", err)
	}
	if err := ResolveGlobalPosesInto(skel, local, out[:1]); !errors.Is(err, animation.ErrLengthMismatch) {
		t.Errorf("short out: err = %v, want ErrLengthMismatch", err)
	}
}

func TestSkinningPalette(t *testing.T) {
	skel := mustSkeleton(t,
		skeleton.Joint{Name: "root", ParentIndex: -1, InverseBindMatrix: mgl32.Translate3D(0, -1, 0)},
	)
	global := []mgl32.Mat4{mgl32.Translate3D(0, 1, 0)}
	out := make([]mgl32.Mat4, 1)

	if err := SkinningPaletteInto(skel, global, out); err != nil {
		t.Fatalf("SkinningPaletteInto: %v", err)
	}
	if out[0] != mgl32.Ident4() {
		t.Errorf("palette at bind pose = %v, want identity", out[0])
	}
}

func TestFlatten(t *testing.T) {
	mats := []mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(4, 5, 6)}
	flat := Flatten(nil, mats)
	if len(flat) != 32 {
		t.Fatalf("len = %d, want 32", len(flat))
	}
	if flat[0] != 1 || flat[28] != 4 || flat[29] != 5 || flat[30] != 6 {
		t.Errorf("flat = %v", flat)
	}

	reused := Flatten(flat, mats[:1])
	if len(reused) != 16 || &reused[0] != &flat[0] {
		t.Errorf("Flatten did not reuse the destination")
	}
}
