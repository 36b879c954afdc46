package skeleton

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Construction errors returned by NewSkeleton.
var (
	ErrEmptySkeleton  = errors.New("skeleton has no joints")
	ErrNonTopological = errors.New("joint parent must precede the joint")
	ErrDuplicateJoint = errors.New("duplicate joint name")
)

// Joint is a single node of the skeleton hierarchy.
type Joint struct {
	// Name identifies the joint. Names are only used at import/bind time, never per frame.
	Name string

	// ParentIndex is the index of the parent joint, or -1 for root joints.
	ParentIndex int

	// InverseBindMatrix transforms from model space to joint space at bind pose.
	InverseBindMatrix mgl32.Mat4
}

// IsRoot reports whether the joint has no parent.
func (j Joint) IsRoot() bool {
	return j.ParentIndex < 0
}

// Skeleton is a static, read-only joint hierarchy.
// Joints are stored parent-first: every ParentIndex refers to an earlier index, so a single
// forward pass visits every parent before its children.
type Skeleton struct {
	joints      []Joint
	nameToIndex map[string]int
	children    [][]int
	roots       []int
}

// NewSkeleton validates the joint list and builds a Skeleton from it.
// The joint slice is copied; later changes to it do not affect the Skeleton.
//
// Parameters:
//   - joints: the joints in parent-first order
//
// Returns:
//   - *Skeleton: the validated skeleton
//   - error: ErrEmptySkeleton, ErrNonTopological or ErrDuplicateJoint (wrapped) on invalid input
func NewSkeleton(joints []Joint) (*Skeleton, error) {
	if len(joints) == 0 {
		return nil, ErrEmptySkeleton
	}

	s := &Skeleton{
		joints:      make([]Joint, len(joints)),
		nameToIndex: make(map[string]int, len(joints)),
		children:    make([][]int, len(joints)),
	}
	copy(s.joints, joints)

	for i, j := range s.joints {
		if j.ParentIndex >= i {
			return nil, fmt.Errorf("joint %d (%q) has parent %d: %w", i, j.Name, j.ParentIndex, ErrNonTopological)
		}
		if _, ok := s.nameToIndex[j.Name]; ok {
			return nil, fmt.Errorf("joint %d: %q: %w", i, j.Name, ErrDuplicateJoint)
		}
		s.nameToIndex[j.Name] = i

		if j.IsRoot() {
			s.joints[i].ParentIndex = -1
			s.roots = append(s.roots, i)
		} else {
			s.children[j.ParentIndex] = append(s.children[j.ParentIndex], i)
		}
	}

	return s, nil
}

// JointCount returns the number of joints.
func (s *Skeleton) JointCount() int {
	return len(s.joints)
}

// Joint returns the joint at index i.
func (s *Skeleton) Joint(i int) Joint {
	return s.joints[i]
}

// Joints returns the joints in parent-first order. The slice must not be modified.
func (s *Skeleton) Joints() []Joint {
	return s.joints
}

// JointIndex looks up a joint by name.
//
// Parameters:
//   - name: the joint name
//
// Returns:
//   - int: the joint index, or -1 if not found
//   - bool: true if the joint exists
func (s *Skeleton) JointIndex(name string) (int, bool) {
	i, ok := s.nameToIndex[name]
	if !ok {
		return -1, false
	}
	return i, true
}

// ParentIndex returns the parent of joint i, or -1 for roots.
func (s *Skeleton) ParentIndex(i int) int {
	return s.joints[i].ParentIndex
}

// IsRoot reports whether joint i has no parent.
func (s *Skeleton) IsRoot(i int) bool {
	return s.joints[i].IsRoot()
}

// IsLeaf reports whether joint i has no children.
func (s *Skeleton) IsLeaf(i int) bool {
	return len(s.children[i]) == 0
}

// Children returns the direct children of joint i. The slice must not be modified.
func (s *Skeleton) Children(i int) []int {
	return s.children[i]
}

// Roots returns the indices of all root joints. The slice must not be modified.
func (s *Skeleton) Roots() []int {
	return s.roots
}
