package main

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/blendtree"
	"github.com/Carmen-Shannon/oxy-anim/engine/camera"
	"github.com/Carmen-Shannon/oxy-anim/engine/config"
	"github.com/Carmen-Shannon/oxy-anim/engine/controller"
	"github.com/Carmen-Shannon/oxy-anim/engine/loader"
	"github.com/Carmen-Shannon/oxy-anim/engine/pose"
	"github.com/go-gl/mathgl/mgl32"
)

// rig is a loaded asset with a bound blend tree, ready to spawn controllers.
type rig struct {
	loader loader.Loader
	asset  *loader.Asset
	tree   *blendtree.Node
	length float32
}

func newRig(cfg config.Config, l loader.Loader, asset *loader.Asset) (*rig, error) {
	def := blendtree.ClipDef(asset.ClipNames[0])
	if cfg.BlendTreePath != "" {
		var err error
		if def, err = l.LoadBlendTree(cfg.BlendTreePath); err != nil {
			return nil, err
		}
	}

	tree, err := blendtree.Bind(def, l.Arena())
	if err != nil {
		return nil, fmt.Errorf("bind blend tree: %w", err)
	}
	if err := tree.Validate(cfg.Params); err != nil {
		return nil, err
	}

	r := &rig{loader: l, asset: asset, tree: tree}
	for _, h := range tree.Clips() {
		clip, err := l.Arena().Clip(h)
		if err != nil {
			return nil, err
		}
		r.length = max(r.length, clip.Duration())
	}
	common.Logger().Debug("blend tree bound", "depth", tree.Depth(), "params", tree.Params(), "length", r.length)
	return r, nil
}

func (r *rig) newController(cfg config.Config, start float32) (controller.Controller, error) {
	return controller.NewController(r.asset.Skeleton, r.tree, r.loader.Arena(),
		controller.WithParams(cfg.Params),
		controller.WithStartTime(start),
	)
}

// endTime is the configured end of playback, or one loop of the tree's longest clip.
func (r *rig) endTime(cfg config.Config) float32 {
	if cfg.EndTime > 0 {
		return cfg.EndTime
	}
	return cfg.StartTime + r.length
}

// frameTimes lists the evaluation times from start to end inclusive at the given rate.
func frameTimes(start, end, rate float32) []float32 {
	n := int(math.Floor(float64((end-start)*rate)+1e-4)) + 1
	times := make([]float32, max(n, 1))
	for i := range times {
		times[i] = start + float32(i)/rate
	}
	return times
}

// poseBounds grows the box [lo, hi] to contain every joint origin.
func poseBounds(lo, hi mgl32.Vec3, globals []mgl32.Mat4) (mgl32.Vec3, mgl32.Vec3) {
	for _, m := range globals {
		p := pose.JointPosition(m)
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// frameCamera evaluates ctrl at every time and frames the union of its poses.
func frameCamera(cam camera.Camera, ctrl controller.Controller, times []float32) error {
	inf := float32(math.Inf(1))
	lo, hi := mgl32.Vec3{inf, inf, inf}, mgl32.Vec3{-inf, -inf, -inf}
	for _, t := range times {
		ctrl.SetTime(t)
		if err := ctrl.Evaluate(); err != nil {
			return err
		}
		lo, hi = poseBounds(lo, hi, ctrl.GlobalPoses())
	}
	cam.Frame(lo, hi)
	return nil
}

// inView reports whether the bounding sphere of a pose intersects the camera frustum.
func inView(cam camera.Camera, globals []mgl32.Mat4) bool {
	if len(globals) == 0 {
		return false
	}
	lo, hi := pose.JointPosition(globals[0]), pose.JointPosition(globals[0])
	lo, hi = poseBounds(lo, hi, globals[1:])
	center := lo.Add(hi).Mul(0.5)
	return cam.Frustum().IntersectsSphere(center, hi.Sub(lo).Len()/2)
}
