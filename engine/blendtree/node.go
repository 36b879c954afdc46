package blendtree

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// Binding and evaluation errors.
var (
	ErrMissingClip  = errors.New("blend tree references a missing clip")
	ErrMissingParam = errors.New("blend parameter not supplied")
	ErrNilNode      = errors.New("nil blend node")
)

// Params maps blend parameter names to their values for one evaluation.
type Params map[string]float32

// Node is a blend tree bound to the clips of a ClipArena, ready for evaluation.
// Nodes are immutable and may be evaluated from several goroutines at once, each with its own Scratch.
type Node struct {
	kind   Kind
	inputs [2]*Node
	param  string
	clip   animation.ClipHandle

	// jointCount is the pose length every clip under this node produces.
	jointCount int
}

// Bind resolves a definition against the clips in arena.
//
// Every clip referenced by the tree must exist and all of them must share one joint count.
//
// Parameters:
//   - def: the root definition
//   - arena: the arena holding the clips named by def
//
// Returns:
//   - *Node: the bound tree
//   - error: ErrMissingClip, animation.ErrLengthMismatch or ErrMalformedNode (wrapped)
func Bind(def *NodeDef, arena animation.ClipArena) (*Node, error) {
	n, err := bind(def, arena)
	if err != nil {
		return nil, err
	}
	common.Logger().Debug("bound blend tree",
		slog.Int("joints", n.jointCount),
		slog.Int("depth", n.Depth()),
		slog.Any("clips", def.ClipNames()),
		slog.Any("params", n.Params()),
	)
	return n, nil
}

func bind(def *NodeDef, arena animation.ClipArena) (*Node, error) {
	if def == nil {
		return nil, fmt.Errorf("bind: %w", ErrNilNode)
	}

	switch def.Kind {
	case KindClip:
		h, ok := arena.Handle(def.ClipSource)
		if !ok {
			return nil, fmt.Errorf("clip %q: %w", def.ClipSource, ErrMissingClip)
		}
		clip, err := arena.Clip(h)
		if err != nil {
			return nil, fmt.Errorf("clip %q: %w", def.ClipSource, err)
		}
		return &Node{kind: KindClip, clip: h, jointCount: clip.JointCount()}, nil

	case KindLerp:
		if def.Param == "" {
			return nil, fmt.Errorf("lerp node without param: %w", ErrMalformedNode)
		}
		a, err := bind(def.Inputs[0], arena)
		if err != nil {
			return nil, err
		}
		b, err := bind(def.Inputs[1], arena)
		if err != nil {
			return nil, err
		}
		if a.jointCount != b.jointCount {
			return nil, fmt.Errorf("lerp %q blends %d and %d joints: %w", def.Param, a.jointCount, b.jointCount, animation.ErrLengthMismatch)
		}
		return &Node{kind: KindLerp, inputs: [2]*Node{a, b}, param: def.Param, jointCount: a.jointCount}, nil

	default:
		return nil, fmt.Errorf("%v: %w", def.Kind, ErrUnknownNodeType)
	}
}

// Kind reports the node variant.
func (n *Node) Kind() Kind {
	return n.kind
}

// JointCount returns the number of poses the tree writes per evaluation.
func (n *Node) JointCount() int {
	return n.jointCount
}

// Clip returns the handle sampled by a clip node, or animation.InvalidClip for lerp nodes.
func (n *Node) Clip() animation.ClipHandle {
	if n.kind != KindClip {
		return animation.InvalidClip
	}
	return n.clip
}

// Param returns the blend parameter name of a lerp node.
func (n *Node) Param() string {
	return n.param
}

// Inputs returns the children of a lerp node, or nil for clip nodes.
func (n *Node) Inputs() []*Node {
	if n.kind != KindLerp {
		return nil
	}
	return n.inputs[:]
}

// Depth returns the number of nested lerp levels; a single clip node has depth 0.
// Evaluation holds one scratch buffer per level.
func (n *Node) Depth() int {
	if n.kind != KindLerp {
		return 0
	}
	return 1 + max(n.inputs[0].Depth(), n.inputs[1].Depth())
}

// Params returns the sorted, distinct parameter names the tree reads.
func (n *Node) Params() []string {
	seen := make(map[string]bool)
	n.walk(func(c *Node) {
		if c.kind == KindLerp {
			seen[c.param] = true
		}
	})
	names := make([]string, 0, len(seen))
	for p := range seen {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

// Clips returns the distinct clip handles the tree samples, in depth-first order.
func (n *Node) Clips() []animation.ClipHandle {
	seen := make(map[animation.ClipHandle]bool)
	var handles []animation.ClipHandle
	n.walk(func(c *Node) {
		if c.kind == KindClip && !seen[c.clip] {
			seen[c.clip] = true
			handles = append(handles, c.clip)
		}
	})
	return handles
}

// Validate checks that params supplies every parameter the tree reads.
//
// Parameters:
//   - params: the parameter set to check
//
// Returns:
//   - error: ErrMissingParam (wrapped) naming the first absent parameter
func (n *Node) Validate(params Params) error {
	for _, p := range n.Params() {
		if _, ok := params[p]; !ok {
			return fmt.Errorf("param %q: %w", p, ErrMissingParam)
		}
	}
	return nil
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	if n.kind == KindLerp {
		n.inputs[0].walk(fn)
		n.inputs[1].walk(fn)
	}
}
