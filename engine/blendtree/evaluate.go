package blendtree

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// Evaluate writes the tree's local pose at time t into out.
//
// A clip node samples its clip. A lerp node evaluates its first input into a scratch buffer
// and its second input into out, then blends them joint by joint, weighting the second
// input by params[Param]. The weight is not clamped. Evaluation is deterministic and, once
// scratch holds a buffer per nesting level, does not allocate.
//
// Parameters:
//   - n: the bound tree
//   - arena: the arena the tree was bound against
//   - t: elapsed time in seconds
//   - params: blend parameter values
//   - out: destination, at least n.JointCount() long; entries past that are untouched
//   - scratch: the buffer pool; nil uses a temporary one
//
// Returns:
//   - error: ErrMissingParam, ErrScratchCapacity, or an animation sampling error (wrapped)
func Evaluate(n *Node, arena animation.ClipArena, t float32, params Params, out []animation.SQT, scratch *Scratch) error {
	if n == nil {
		return fmt.Errorf("evaluate: %w", ErrNilNode)
	}
	if len(out) < n.jointCount {
		return fmt.Errorf("evaluate: output holds %d poses, need %d: %w", len(out), n.jointCount, animation.ErrLengthMismatch)
	}
	if scratch == nil {
		scratch = NewScratchFor(n)
	}
	return n.evaluate(arena, t, params, out[:n.jointCount], scratch)
}

// OutputPose is Evaluate with n as the receiver.
func (n *Node) OutputPose(arena animation.ClipArena, t float32, params Params, out []animation.SQT, scratch *Scratch) error {
	return Evaluate(n, arena, t, params, out, scratch)
}

func (n *Node) evaluate(arena animation.ClipArena, t float32, params Params, out []animation.SQT, scratch *Scratch) error {
	switch n.kind {
	case KindClip:
		clip, err := arena.Clip(n.clip)
		if err != nil {
			return err
		}
		return clip.InterpolatedPoseAtTime(t, out)

	case KindLerp:
		w, ok := params[n.param]
		if !ok {
			return fmt.Errorf("param %q: %w", n.param, ErrMissingParam)
		}

		buf, err := scratch.acquire(len(out))
		if err != nil {
			return err
		}
		defer scratch.release()

		if err := n.inputs[0].evaluate(arena, t, params, buf, scratch); err != nil {
			return err
		}
		if err := n.inputs[1].evaluate(arena, t, params, out, scratch); err != nil {
			return err
		}
		if err := animation.BlendPoses(buf, out, len(out), w); err != nil {
			return fmt.Errorf("lerp %q: %w", n.param, err)
		}
		return nil

	default:
		return fmt.Errorf("%v: %w", n.kind, ErrUnknownNodeType)
	}
}
