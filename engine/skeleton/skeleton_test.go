package skeleton

import (
	"errors"
	"testing"
)

func chain() []Joint {
	return []Joint{
		{Name: "root", ParentIndex: -1},
		{Name: "spine", ParentIndex: 0},
		{Name: "head", ParentIndex: 1},
		{Name: "arm", ParentIndex: 1},
	}
}

func TestNewSkeleton(t *testing.T) {
	s, err := NewSkeleton(chain())
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}

	if s.JointCount() != 4 {
		t.Errorf("JointCount = %d, want 4", s.JointCount())
	}
	if !s.IsRoot(0) || s.IsRoot(1) {
		t.Errorf("IsRoot mismatch")
	}
	if !s.IsLeaf(2) || !s.IsLeaf(3) || s.IsLeaf(1) {
		t.Errorf("IsLeaf mismatch")
	}
	if got := s.Children(1); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("Children(1) = %v, want [2 3]", got)
	}
	if got := s.Roots(); len(got) != 1 || got[0] != 0 {
		t.Errorf("Roots = %v, want [0]", got)
	}
	if i, ok := s.JointIndex("head"); !ok || i != 2 {
		t.Errorf("JointIndex(head) = %d, %v, want 2, true", i, ok)
	}
	if _, ok := s.JointIndex("tail"); ok {
		t.Errorf("JointIndex(tail) found, want missing")
	}
}

func TestNewSkeletonCopiesInput(t *testing.T) {
	joints := chain()
	s, err := NewSkeleton(joints)
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	joints[0].Name = "changed"
	if s.Joint(0).Name != "root" {
		t.Errorf("skeleton aliased caller slice")
	}
}

func TestNewSkeletonErrors(t *testing.T) {
	tests := []struct {
		name   string
		joints []Joint
		want   error
	}{
		{"empty", nil, ErrEmptySkeleton},
		{"forward reference", []Joint{{Name: "a", ParentIndex: 1}, {Name: "b", ParentIndex: -1}}, ErrNonTopological},
		{"self parent", []Joint{{Name: "a", ParentIndex: -1}, {Name: "b", ParentIndex: 1}}, ErrNonTopological},
		{"duplicate", []Joint{{Name: "a", ParentIndex: -1}, {Name: "a", ParentIndex: 0}}, ErrDuplicateJoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSkeleton(tt.joints)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSortJoints(t *testing.T) {
	// head(0) -> spine(2) -> root(1), arm(3) -> spine(2)
	joints := []Joint{
		{Name: "head", ParentIndex: 2},
		{Name: "root", ParentIndex: -1},
		{Name: "spine", ParentIndex: 1},
		{Name: "arm", ParentIndex: 2},
	}

	sorted, oldToNew, err := SortJoints(joints)
	if err != nil {
		t.Fatalf("SortJoints: %v", err)
	}

	wantNames := []string{"root", "spine", "head", "arm"}
	for i, n := range wantNames {
		if sorted[i].Name != n {
			t.Errorf("sorted[%d] = %q, want %q", i, sorted[i].Name, n)
		}
	}
	if oldToNew[0] != 2 || oldToNew[1] != 0 || oldToNew[2] != 1 || oldToNew[3] != 3 {
		t.Errorf("oldToNew = %v", oldToNew)
	}

	if _, err := NewSkeleton(sorted); err != nil {
		t.Errorf("sorted joints rejected: %v", err)
	}
}

func TestSortJointsCycle(t *testing.T) {
	joints := []Joint{
		{Name: "root", ParentIndex: -1},
		{Name: "a", ParentIndex: 2},
		{Name: "b", ParentIndex: 1},
	}
	if _, _, err := SortJoints(joints); !errors.Is(err, ErrNonTopological) {
		t.Errorf("err = %v, want ErrNonTopological", err)
	}

	if _, _, err := SortJoints([]Joint{{Name: "a", ParentIndex: 5}}); !errors.Is(err, ErrNonTopological) {
		t.Errorf("out of range parent: err = %v, want ErrNonTopological", err)
	}
}
