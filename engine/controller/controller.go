// Package controller holds per-character playback state and drives blend tree evaluation.
package controller

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/blendtree"
	"github.com/Carmen-Shannon/oxy-anim/engine/pose"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// controller is the implementation of the Controller interface.
type controller struct {
	skel   *skeleton.Skeleton
	arena  animation.ClipArena
	tree   *blendtree.Node
	params blendtree.Params

	time      float64
	speed     float32
	maxJoints int

	scratch *blendtree.Scratch
	local   []animation.SQT
	global  []mgl32.Mat4
}

// Controller owns the playback time, speed and blend parameters of one animated character,
// together with the buffers its poses are evaluated into.
//
// Buffers are allocated once at construction, so Update and Evaluate do not allocate.
// A Controller is not safe for concurrent use; give each goroutine its own.
type Controller interface {
	// Update advances playback by dt scaled by the speed and re-evaluates the pose.
	//
	// Parameters:
	//   - dt: elapsed wall time in seconds
	//
	// Returns:
	//   - error: an evaluation error, the pose buffers are then unspecified
	Update(dt float32) error

	// Evaluate recomputes the local and global poses at the current time.
	//
	// Returns:
	//   - error: blendtree.ErrMissingParam or another evaluation error (wrapped)
	Evaluate() error

	// SetTime sets the playback time in seconds. The pose is not recomputed until the next Update or Evaluate.
	//
	// Parameters:
	//   - t: the new time
	SetTime(t float32)

	// Time returns the playback time in seconds.
	//
	// Returns:
	//   - float32: the current time
	Time() float32

	// SetSpeed sets the playback rate multiplier. Negative values play backwards.
	//
	// Parameters:
	//   - speed: the multiplier applied to dt
	SetSpeed(speed float32)

	// Speed returns the playback rate multiplier.
	//
	// Returns:
	//   - float32: the current speed
	Speed() float32

	// SetParam sets a blend parameter.
	//
	// Parameters:
	//   - name: the parameter name referenced by a lerp node
	//   - v: the blend weight
	SetParam(name string, v float32)

	// Param returns a blend parameter.
	//
	// Parameters:
	//   - name: the parameter name
	//
	// Returns:
	//   - float32: the value, 0 if unset
	//   - bool: whether the parameter is set
	Param(name string) (float32, bool)

	// Params returns the names of the parameters currently set, sorted.
	//
	// Returns:
	//   - []string: parameter names
	Params() []string

	// SetTree replaces the blend tree, keeping time, speed and parameters.
	//
	// Parameters:
	//   - tree: a tree bound against the controller's arena
	//
	// Returns:
	//   - error: animation.ErrLengthMismatch if the tree's joint count differs from the skeleton's
	SetTree(tree *blendtree.Node) error

	// Play replaces the blend tree with a single clip.
	//
	// Parameters:
	//   - clip: the clip name in the arena
	//
	// Returns:
	//   - error: blendtree.ErrMissingClip if the arena has no such clip
	Play(clip string) error

	// Tree returns the active blend tree.
	//
	// Returns:
	//   - *blendtree.Node: the tree
	Tree() *blendtree.Node

	// LocalPoses returns the parent-relative poses from the last evaluation.
	// The slice is owned by the controller and overwritten by the next evaluation.
	//
	// Returns:
	//   - []animation.SQT: one pose per joint
	LocalPoses() []animation.SQT

	// GlobalPoses returns the model-space transforms from the last evaluation.
	// The slice is owned by the controller and overwritten by the next evaluation.
	//
	// Returns:
	//   - []mgl32.Mat4: one matrix per joint
	GlobalPoses() []mgl32.Mat4

	// Skeleton returns the skeleton being animated.
	//
	// Returns:
	//   - *skeleton.Skeleton: the skeleton
	Skeleton() *skeleton.Skeleton
}

var _ Controller = &controller{}

// NewController creates a controller for a skeleton driven by a blend tree.
// The pose buffers start at the identity pose; call Evaluate or Update to fill them.
//
// Parameters:
//   - skel: the skeleton
//   - tree: a blend tree bound against arena
//   - arena: the clip store
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the controller
//   - error: animation.ErrLengthMismatch if the tree and skeleton disagree on the joint count
func NewController(skel *skeleton.Skeleton, tree *blendtree.Node, arena animation.ClipArena, options ...ControllerBuilderOption) (Controller, error) {
	c := &controller{
		skel:   skel,
		arena:  arena,
		params: blendtree.Params{},
		speed:  1,
	}
	for _, option := range options {
		option(c)
	}

	n := skel.JointCount()
	c.scratch = blendtree.NewScratch(max(c.maxJoints, n))
	c.local = make([]animation.SQT, n)
	c.global = make([]mgl32.Mat4, n)
	for i := range c.local {
		c.local[i] = animation.IdentitySQT()
		c.global[i] = mgl32.Ident4()
	}

	if err := c.SetTree(tree); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *controller) Update(dt float32) error {
	c.time += float64(dt) * float64(c.speed)
	return c.Evaluate()
}

func (c *controller) Evaluate() error {
	c.scratch.Reset()
	if err := blendtree.Evaluate(c.tree, c.arena, float32(c.time), c.params, c.local, c.scratch); err != nil {
		return fmt.Errorf("evaluate at %.3fs: %w", c.time, err)
	}
	return pose.ResolveGlobalPosesInto(c.skel, c.local, c.global)
}

func (c *controller) SetTime(t float32) {
	c.time = float64(t)
}

func (c *controller) Time() float32 {
	return float32(c.time)
}

func (c *controller) SetSpeed(speed float32) {
	c.speed = speed
}

func (c *controller) Speed() float32 {
	return c.speed
}

func (c *controller) SetParam(name string, v float32) {
	c.params[name] = v
}

func (c *controller) Param(name string) (float32, bool) {
	v, ok := c.params[name]
	return v, ok
}

func (c *controller) Params() []string {
	return slices.Sorted(maps.Keys(c.params))
}

func (c *controller) SetTree(tree *blendtree.Node) error {
	if tree == nil {
		return fmt.Errorf("set tree: %w", blendtree.ErrNilNode)
	}
	if tree.JointCount() != c.skel.JointCount() {
		return fmt.Errorf("tree animates %d joints, skeleton has %d: %w", tree.JointCount(), c.skel.JointCount(), animation.ErrLengthMismatch)
	}
	c.tree = tree
	c.scratch.Reserve(tree.Depth())
	common.Logger().Debug("controller tree set", "depth", tree.Depth(), "params", tree.Params())
	return nil
}

func (c *controller) Play(clip string) error {
	tree, err := blendtree.Bind(blendtree.ClipDef(clip), c.arena)
	if err != nil {
		return err
	}
	return c.SetTree(tree)
}

func (c *controller) Tree() *blendtree.Node {
	return c.tree
}

func (c *controller) LocalPoses() []animation.SQT {
	return c.local
}

func (c *controller) GlobalPoses() []mgl32.Mat4 {
	return c.global
}

func (c *controller) Skeleton() *skeleton.Skeleton {
	return c.skel
}
