package loader

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// importedAsset is what a backend produces before clips are registered in an arena.
type importedAsset struct {
	name     string
	skeleton *skeleton.Skeleton
	clips    []*animation.AnimationClip
}

// nodeTRS is a node's local transform split into its glTF components.
type nodeTRS struct {
	translation mgl32.Vec3
	rotation    mgl32.Quat
	scale       mgl32.Vec3
}

func restTRS() nodeTRS {
	return nodeTRS{rotation: mgl32.QuatIdent(), scale: mgl32.Vec3{1, 1, 1}}
}

func (n nodeTRS) mat4() mgl32.Mat4 {
	t := mgl32.Translate3D(n.translation[0], n.translation[1], n.translation[2])
	s := mgl32.Scale3D(n.scale[0], n.scale[1], n.scale[2])
	return t.Mul4(n.rotation.Normalize().Mat4()).Mul4(s)
}

// gltfImportSource adapts extracted glTF data to animation.ImportSource.
type gltfImportSource struct {
	joints []animation.ImportedJoint
	tracks []animation.ImportedTrack
}

var _ animation.ImportSource = &gltfImportSource{}

func (s *gltfImportSource) ImportedJoints() []animation.ImportedJoint {
	return s.joints
}

func (s *gltfImportSource) ImportedTracks() []animation.ImportedTrack {
	return s.tracks
}

// gltfIndex reads an optional glTF index field, whatever integer or pointer type the
// document model uses for it.
func gltfIndex(v any) (int, bool) {
	switch i := v.(type) {
	case int:
		return i, true
	case *int:
		if i == nil {
			return 0, false
		}
		return *i, true
	case uint32:
		return int(i), true
	case *uint32:
		if i == nil {
			return 0, false
		}
		return int(*i), true
	}
	return 0, false
}

func vec3Of[T float32 | float64](v [3]T) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// quatOf converts an (x, y, z, w) array.
func quatOf[T float32 | float64](v [4]T) mgl32.Quat {
	return mgl32.Quat{W: float32(v[3]), V: mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}}
}

func mat4Of[T float32 | float64](v [16]T) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range v {
		m[i] = float32(v[i])
	}
	return m
}
