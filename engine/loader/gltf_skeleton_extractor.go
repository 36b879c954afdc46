package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// gltfSkeletonExtractorImpl is the implementation of the gltfSkeletonExtractor interface.
type gltfSkeletonExtractorImpl struct {
	parser gltfParser
}

// extractedSkeleton is a skin's joints in parent-first order plus the lookups animation
// extraction needs.
type extractedSkeleton struct {
	skeleton *skeleton.Skeleton

	// joints mirrors skeleton.Joints() as bake input.
	joints []animation.ImportedJoint

	// nodeToJoint maps a glTF node index to its sorted joint index.
	nodeToJoint map[int]int

	// rest holds each sorted joint's node transform.
	rest []nodeTRS
}

// gltfSkeletonExtractor converts glTF skins into topologically sorted skeletons.
type gltfSkeletonExtractor interface {
	// ExtractSkeleton extracts the skeleton of a skin.
	//
	// Parameters:
	//   - skinIndex: the skin index
	//
	// Returns:
	//   - *extractedSkeleton: the skeleton, joint lookup and rest transforms
	//   - error: error if the skin is invalid or its hierarchy is cyclic
	ExtractSkeleton(skinIndex int) (*extractedSkeleton, error)

	// FindSkinForMesh finds the skin of the first node that instances a mesh.
	//
	// Parameters:
	//   - meshIndex: the mesh index
	//
	// Returns:
	//   - int: the skin index, or -1 if none
	FindSkinForMesh(meshIndex int) int
}

var _ gltfSkeletonExtractor = &gltfSkeletonExtractorImpl{}

func newGLTFSkeletonExtractor(parser gltfParser) gltfSkeletonExtractor {
	return &gltfSkeletonExtractorImpl{parser: parser}
}

func (e *gltfSkeletonExtractorImpl) FindSkinForMesh(meshIndex int) int {
	doc := e.parser.Document()
	if doc == nil {
		return -1
	}
	for _, node := range doc.Nodes {
		mesh, hasMesh := gltfIndex(node.Mesh)
		skin, hasSkin := gltfIndex(node.Skin)
		if hasMesh && hasSkin && mesh == meshIndex {
			return skin
		}
	}
	return -1
}

func (e *gltfSkeletonExtractorImpl) ExtractSkeleton(skinIndex int) (*extractedSkeleton, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, fmt.Errorf("skin index %d out of range: %w", skinIndex, ErrNoSkin)
	}
	skin := doc.Skins[skinIndex]
	if len(skin.Joints) == 0 {
		return nil, fmt.Errorf("skin %d has no joints: %w", skinIndex, skeleton.ErrEmptySkeleton)
	}

	var ibms []mgl32.Mat4
	if acr, ok := gltfIndex(skin.InverseBindMatrices); ok {
		var err error
		if ibms, err = e.parser.ReadMat4Accessor(acr); err != nil {
			return nil, fmt.Errorf("failed to read inverse bind matrices: %w", err)
		}
	}

	nodeToJoint := make(map[int]int, len(skin.Joints))
	for i, n := range skin.Joints {
		if int(n) < 0 || int(n) >= len(doc.Nodes) {
			return nil, fmt.Errorf("joint %d: invalid node index %d", i, n)
		}
		nodeToJoint[int(n)] = i
	}

	parentNode := make(map[int]int, len(doc.Nodes))
	for i, node := range doc.Nodes {
		for _, c := range node.Children {
			parentNode[int(c)] = i
		}
	}

	joints := make([]skeleton.Joint, len(skin.Joints))
	rest := make([]nodeTRS, len(skin.Joints))
	used := make(map[string]bool, len(skin.Joints))
	for i, n := range skin.Joints {
		node := doc.Nodes[int(n)]

		joints[i] = skeleton.Joint{
			Name:              uniqueJointName(node.Name, i, used),
			ParentIndex:       ancestorJoint(int(n), parentNode, nodeToJoint),
			InverseBindMatrix: mgl32.Ident4(),
		}
		if i < len(ibms) {
			joints[i].InverseBindMatrix = ibms[i]
		}
		rest[i] = gltfNodeTransform(node)
	}

	sorted, oldToNew, err := skeleton.SortJoints(joints)
	if err != nil {
		return nil, fmt.Errorf("skin %d: %w", skinIndex, err)
	}
	skel, err := skeleton.NewSkeleton(sorted)
	if err != nil {
		return nil, fmt.Errorf("skin %d: %w", skinIndex, err)
	}

	out := &extractedSkeleton{
		skeleton:    skel,
		joints:      make([]animation.ImportedJoint, len(sorted)),
		nodeToJoint: make(map[int]int, len(nodeToJoint)),
		rest:        make([]nodeTRS, len(sorted)),
	}
	for node, old := range nodeToJoint {
		out.nodeToJoint[node] = oldToNew[old]
	}
	for old, tr := range rest {
		out.rest[oldToNew[old]] = tr
	}
	for i, j := range sorted {
		out.joints[i] = animation.ImportedJoint{Name: j.Name, ParentIndex: j.ParentIndex, InverseBindMatrix: j.InverseBindMatrix}
	}
	return out, nil
}

// ancestorJoint walks up the node tree to the nearest node that is a joint of the skin.
func ancestorJoint(node int, parentNode, nodeToJoint map[int]int) int {
	seen := 0
	for {
		p, ok := parentNode[node]
		if !ok || seen > len(parentNode) {
			return -1
		}
		if j, ok := nodeToJoint[p]; ok {
			return j
		}
		node = p
		seen++
	}
}

func uniqueJointName(name string, i int, used map[string]bool) string {
	if name == "" {
		name = fmt.Sprintf("joint_%d", i)
	}
	for base, n := name, 1; used[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	used[name] = true
	return name
}

// gltfNodeTransform returns a node's local transform. A matrix other than identity wins
// over TRS; zero rotations and scales, as in documents built in memory, read as identity.
func gltfNodeTransform(node *gltf.Node) nodeTRS {
	tr := restTRS()

	m := mat4Of(node.Matrix)
	if m != (mgl32.Mat4{}) && m != mgl32.Ident4() {
		sc := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
		tr.translation = m.Col(3).Vec3()
		tr.scale = sc
		for i := 0; i < 3; i++ {
			if sc[i] < 1e-6 {
				sc[i] = 1
			}
		}
		rot := mgl32.Mat3FromCols(m.Col(0).Vec3().Mul(1/sc[0]), m.Col(1).Vec3().Mul(1/sc[1]), m.Col(2).Vec3().Mul(1/sc[2]))
		tr.rotation = mgl32.Mat4ToQuat(rot.Mat4()).Normalize()
		return tr
	}

	tr.translation = vec3Of(node.Translation)
	if q := quatOf(node.Rotation); q.Len() > 1e-6 {
		tr.rotation = q.Normalize()
	}
	if s := vec3Of(node.Scale); s != (mgl32.Vec3{}) {
		tr.scale = s
	}
	return tr
}
