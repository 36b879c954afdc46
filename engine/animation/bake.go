package animation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// ImportedJoint is a joint as reported by an import source.
type ImportedJoint struct {
	// Name is matched against track joint names.
	Name string

	// ParentIndex refers to an earlier joint in the same list, or is negative for roots.
	ParentIndex int

	// InverseBindMatrix is the joint's inverse bind transform. The zero matrix means identity.
	InverseBindMatrix mgl32.Mat4
}

// ImportedTrack is a keyframed stream of local joint matrices.
type ImportedTrack struct {
	// JointName names the animated joint. Anything after the first '/' is ignored, so
	// channel-qualified names such as "hip/transform" match the joint "hip".
	JointName string

	// Times holds one timestamp in seconds per matrix.
	Times []float32

	// Matrices holds one parent-relative transform per timestamp.
	Matrices []mgl32.Mat4
}

// ImportSource is the contract an asset importer satisfies so its skeleton and animation can be baked.
type ImportSource interface {
	// ImportedJoints returns the joints in parent-first order.
	ImportedJoints() []ImportedJoint

	// ImportedTracks returns the animation tracks. All tracks share the sample count and
	// timeline of the first one.
	ImportedTracks() []ImportedTrack
}

// Bake converts an import source into a clip of per-joint SQT samples.
//
// The sample count and timeline are taken from the first track: duration is its last
// timestamp and the sample rate is count / duration. Each joint takes the track whose name
// matches; joints without a track hold IdentitySQT for every sample. Matrices are
// decomposed into translation (column 3), rotation and a scale of 1 unless
// WithScaleRecovery is given. Root joints that have a track are first multiplied by the
// root correction, by default common.UpAxisCorrection.
//
// Parameters:
//   - name: the clip name
//   - src: the import source
//   - options: bake options
//
// Returns:
//   - *AnimationClip: the baked clip
//   - error: ErrEmptyClip, ErrInvalidDuration or ErrTrackMismatch (wrapped) on unusable input
func Bake(name string, src ImportSource, options ...BakeOption) (*AnimationClip, error) {
	opts := bakeOptions{
		rootCorrection:  common.UpAxisCorrection(),
		applyCorrection: true,
	}
	for _, option := range options {
		option(&opts)
	}
	log := common.Logger()

	joints := src.ImportedJoints()
	tracks := src.ImportedTracks()
	if len(joints) == 0 {
		return nil, fmt.Errorf("bake %q: no joints: %w", name, ErrEmptyClip)
	}
	if len(tracks) == 0 || len(tracks[0].Times) == 0 {
		return nil, fmt.Errorf("bake %q: no samples: %w", name, ErrEmptyClip)
	}

	first := tracks[0]
	sampleCount := len(first.Times)
	duration := first.Times[sampleCount-1]
	if !validPositive(duration) {
		return nil, fmt.Errorf("bake %q: last timestamp %v: %w", name, duration, ErrInvalidDuration)
	}

	byJoint := make(map[string]int, len(tracks))
	for i, tr := range tracks {
		if len(tr.Times) != sampleCount || len(tr.Matrices) != sampleCount {
			return nil, fmt.Errorf("bake %q: track %q has %d times and %d matrices, want %d: %w",
				name, tr.JointName, len(tr.Times), len(tr.Matrices), sampleCount, ErrTrackMismatch)
		}
		jointName := trackJointName(tr.JointName)
		if _, dup := byJoint[jointName]; dup {
			log.Warn("duplicate animation track replaces an earlier one", slog.String("clip", name), slog.String("joint", jointName))
		}
		byJoint[jointName] = i
	}

	samples := make([]AnimationSample, sampleCount)
	poses := make([]SQT, sampleCount*len(joints))
	for s := range samples {
		samples[s].LocalPoses = poses[s*len(joints) : (s+1)*len(joints) : (s+1)*len(joints)]
	}

	matched := 0
	for j, joint := range joints {
		ti, ok := byJoint[joint.Name]
		if !ok {
			for s := range samples {
				samples[s].LocalPoses[j] = IdentitySQT()
			}
			continue
		}
		matched++

		correct := opts.applyCorrection && joint.ParentIndex < 0
		for s, m := range tracks[ti].Matrices {
			if correct {
				m = opts.rootCorrection.Mul4(m)
			}
			samples[s].LocalPoses[j] = decompose(m, opts.recoverScale)
		}
	}

	log.Debug("baked animation clip",
		slog.String("clip", name),
		slog.Int("joints", len(joints)),
		slog.Int("tracks", len(tracks)),
		slog.Int("matched", matched),
		slog.Int("samples", sampleCount),
		slog.Float64("duration", float64(duration)),
	)

	return NewAnimationClip(name, samples, float32(sampleCount)/duration)
}

// BakeSkeleton builds the skeleton that clips baked from the same source are aligned with.
//
// Parameters:
//   - src: the import source
//
// Returns:
//   - *skeleton.Skeleton: the skeleton, joint order identical to src.ImportedJoints()
//   - error: skeleton construction errors (wrapped)
func BakeSkeleton(src ImportSource) (*skeleton.Skeleton, error) {
	imported := src.ImportedJoints()
	joints := make([]skeleton.Joint, len(imported))
	for i, j := range imported {
		ibm := j.InverseBindMatrix
		if ibm == (mgl32.Mat4{}) {
			ibm = mgl32.Ident4()
		}
		joints[i] = skeleton.Joint{Name: j.Name, ParentIndex: j.ParentIndex, InverseBindMatrix: ibm}
	}

	s, err := skeleton.NewSkeleton(joints)
	if err != nil {
		return nil, fmt.Errorf("bake skeleton: %w", err)
	}
	return s, nil
}

// DecomposeMatrix splits a transform into an SQT with a scale of 1.
//
// Parameters:
//   - m: the transform, without shear
//
// Returns:
//   - SQT: translation from column 3, rotation from the normalized 3x3 block, scale 1
func DecomposeMatrix(m mgl32.Mat4) SQT {
	return decompose(m, false)
}

func decompose(m mgl32.Mat4, recoverScale bool) SQT {
	p := SQT{
		Translation: mgl32.Vec3{m[12], m[13], m[14]},
		Scale:       1,
		Rotation:    common.RotationToQuat(m),
	}
	if recoverScale {
		s := common.ColumnScale(m)
		p.Scale = (s[0] + s[1] + s[2]) / 3
	}
	return p
}

func trackJointName(name string) string {
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return name
}
