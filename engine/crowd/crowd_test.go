package crowd

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/blendtree"
	"github.com/Carmen-Shannon/oxy-anim/engine/controller"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

type rig struct {
	skel  *skeleton.Skeleton
	arena animation.ClipArena
	tree  *blendtree.Node
}

// newRig builds a one-joint skeleton whose "rise" clip moves y from 0 to 4 over two seconds,
// blended against a still clip by "w".
func newRig(t *testing.T) rig {
	t.Helper()
	skel, err := skeleton.NewSkeleton([]skeleton.Joint{{Name: "root", ParentIndex: -1}})
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}

	arena := animation.NewClipArena()
	for name, ys := range map[string][]float32{"still": {0, 0}, "rise": {0, 4}} {
		samples := make([]animation.AnimationSample, len(ys))
		for i, y := range ys {
			p := animation.IdentitySQT()
			p.Translation = mgl32.Vec3{0, y, 0}
			samples[i] = animation.AnimationSample{LocalPoses: []animation.SQT{p}}
		}
		clip, err := animation.NewAnimationClip(name, samples, 1)
		if err != nil {
			t.Fatalf("NewAnimationClip: %v", err)
		}
		if _, err := arena.Add(clip); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	tree, err := blendtree.Bind(blendtree.LerpDef(blendtree.ClipDef("still"), blendtree.ClipDef("rise"), "w"), arena)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	return rig{skel, arena, tree}
}

func (r rig) controller(t *testing.T, options ...controller.ControllerBuilderOption) controller.Controller {
	t.Helper()
	c, err := controller.NewController(r.skel, r.tree, r.arena, options...)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestUpdateMatchesSequential(t *testing.T) {
	r := newRig(t)
	cr := NewCrowd(WithWorkers(4))
	defer cr.Release()

	const n = 64
	for i := 0; i < n; i++ {
		w := float32(i) / n
		if idx := cr.Add(r.controller(t, controller.WithParams(blendtree.Params{"w": w}))); idx != i {
			t.Fatalf("Add index = %d, want %d", idx, i)
		}
	}
	if cr.Len() != n {
		t.Fatalf("Len = %d, want %d", cr.Len(), n)
	}

	for frame := 0; frame < 3; frame++ {
		if err := cr.Update(0.25); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	ref := r.controller(t)
	for i := 0; i < n; i++ {
		c := cr.Controller(i)
		if c.Time() != 0.75 {
			t.Errorf("controller %d time = %v, want 0.75", i, c.Time())
		}

		w, _ := c.Param("w")
		ref.SetParam("w", w)
		ref.SetTime(0.75)
		if err := ref.Evaluate(); err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if got, want := c.LocalPoses()[0], ref.LocalPoses()[0]; got != want {
			t.Errorf("controller %d pose = %v, want %v", i, got, want)
		}
	}
}

func TestUpdateJoinsErrors(t *testing.T) {
	r := newRig(t)
	cr := NewCrowd(WithWorkers(2), WithQueueSize(8))
	defer cr.Release()

	cr.Add(r.controller(t, controller.WithParams(blendtree.Params{"w": 1})))
	cr.Add(r.controller(t))
	cr.Add(r.controller(t))

	err := cr.Update(0.1)
	if !errors.Is(err, blendtree.ErrMissingParam) {
		t.Fatalf("err = %v, want ErrMissingParam", err)
	}
	msg := err.Error()
	if strings.Contains(msg, "controller 0") || !strings.Contains(msg, "controller 1") || !strings.Contains(msg, "controller 2") {
		t.Errorf("err = %q, want controllers 1 and 2 only", msg)
	}

	cr.Controller(1).SetParam("w", 0)
	cr.Controller(2).SetParam("w", 0)
	if err := cr.Update(0.1); err != nil {
		t.Errorf("Update after fixing params: %v", err)
	}
}

func TestRelease(t *testing.T) {
	r := newRig(t)
	cr := NewCrowd()
	cr.Add(r.controller(t, controller.WithParams(blendtree.Params{"w": 0})))
	cr.Release()

	if cr.Len() != 0 {
		t.Errorf("Len after Release = %d, want 0", cr.Len())
	}
	if cr.Controller(0) != nil {
		t.Error("Controller(0) after Release is not nil")
	}
	if err := cr.Update(0.1); !errors.Is(err, ErrReleased) {
		t.Errorf("err = %v, want ErrReleased", err)
	}
}

func TestWorkersOption(t *testing.T) {
	if got := NewCrowd(WithWorkers(3)).Workers(); got != 3 {
		t.Errorf("Workers = %d, want 3", got)
	}
	if got := NewCrowd(WithWorkers(0)).Workers(); got < 1 {
		t.Errorf("Workers = %d, want at least 1", got)
	}
}
