package blendtree

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// DefaultMaxJoints is the joint capacity of a Scratch created with a non-positive size.
const DefaultMaxJoints = 64

// ErrScratchCapacity is returned when a tree needs more joints than a Scratch buffer holds.
var ErrScratchCapacity = errors.New("scratch buffer capacity exceeded")

// Scratch is a stack of reusable pose buffers for blend tree evaluation.
// Each nested lerp level takes the next buffer and returns it when done, so a tree of depth d
// uses d buffers. Buffers are allocated the first time a depth is reached and reused afterwards.
//
// A Scratch must not be used by two evaluations at the same time.
type Scratch struct {
	maxJoints int
	buffers   [][]animation.SQT
	top       int
}

// NewScratch creates an empty scratch pool.
//
// Parameters:
//   - maxJoints: the capacity of each buffer, DefaultMaxJoints if not positive
//
// Returns:
//   - *Scratch: the pool
func NewScratch(maxJoints int) *Scratch {
	if maxJoints <= 0 {
		maxJoints = DefaultMaxJoints
	}
	return &Scratch{maxJoints: maxJoints}
}

// NewScratchFor creates a scratch pool sized and preallocated for a bound tree.
//
// Parameters:
//   - n: the tree to evaluate
//
// Returns:
//   - *Scratch: a pool with one buffer per nesting level of n
func NewScratchFor(n *Node) *Scratch {
	s := NewScratch(max(n.JointCount(), DefaultMaxJoints))
	s.Reserve(n.Depth())
	return s
}

// MaxJoints returns the capacity of each buffer.
func (s *Scratch) MaxJoints() int {
	return s.maxJoints
}

// Allocated returns how many buffers have been allocated so far.
func (s *Scratch) Allocated() int {
	return len(s.buffers)
}

// Reserve allocates buffers up front for trees of the given depth.
func (s *Scratch) Reserve(depth int) {
	for len(s.buffers) < depth {
		s.buffers = append(s.buffers, make([]animation.SQT, s.maxJoints))
	}
}

// Reset marks every buffer free.
func (s *Scratch) Reset() {
	s.top = 0
}

func (s *Scratch) acquire(n int) ([]animation.SQT, error) {
	if n > s.maxJoints {
		return nil, fmt.Errorf("%d joints, capacity %d: %w", n, s.maxJoints, ErrScratchCapacity)
	}
	if s.top == len(s.buffers) {
		s.buffers = append(s.buffers, make([]animation.SQT, s.maxJoints))
	}
	buf := s.buffers[s.top][:n]
	s.top++
	return buf, nil
}

func (s *Scratch) release() {
	s.top--
}
