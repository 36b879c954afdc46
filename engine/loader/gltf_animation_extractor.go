package loader

import (
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
}

// gltfAnimationExtractor resamples glTF animations into per-joint matrix tracks.
//
// glTF keys each channel independently; the baker wants one shared timeline. Every
// animation is therefore sampled at a fixed rate over [0, maxTime], composing each joint's
// translation, rotation and scale channels with its rest transform for the channels it
// does not animate.
type gltfAnimationExtractor interface {
	// ExtractAnimation resamples one animation for a skeleton.
	//
	// Parameters:
	//   - animIndex: the animation index
	//   - skel: the extracted skeleton whose joints the tracks target
	//   - rate: samples per second
	//
	// Returns:
	//   - string: the animation name, "animation_<index>" when unnamed
	//   - *gltfImportSource: the skeleton's joints with one track per joint
	//   - error: error if an accessor cannot be read
	ExtractAnimation(animIndex int, skel *extractedSkeleton, rate float32) (string, *gltfImportSource, error)

	// AnimatesSkeleton reports whether any channel of an animation targets a joint of skel.
	//
	// Parameters:
	//   - animIndex: the animation index
	//   - skel: the extracted skeleton
	//
	// Returns:
	//   - bool: true if the animation is relevant to the skeleton
	AnimatesSkeleton(animIndex int, skel *extractedSkeleton) bool
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

func newGLTFAnimationExtractor(parser gltfParser) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser}
}

// vec3Channel and quatChannel hold one sampler's keys.
type vec3Channel struct {
	times  []float32
	values []mgl32.Vec3
	interp gltf.Interpolation
}

type quatChannel struct {
	times  []float32
	values []mgl32.Quat
	interp gltf.Interpolation
}

type jointChannels struct {
	translation *vec3Channel
	rotation    *quatChannel
	scale       *vec3Channel
}

func (e *gltfAnimationExtractorImpl) AnimatesSkeleton(animIndex int, skel *extractedSkeleton) bool {
	doc := e.parser.Document()
	if doc == nil || animIndex < 0 || animIndex >= len(doc.Animations) {
		return false
	}
	for _, ch := range doc.Animations[animIndex].Channels {
		if node, ok := gltfIndex(ch.Target.Node); ok {
			if _, ok := skel.nodeToJoint[node]; ok {
				return true
			}
		}
	}
	return false
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int, skel *extractedSkeleton, rate float32) (string, *gltfImportSource, error) {
	doc := e.parser.Document()
	if doc == nil {
		return "", nil, fmt.Errorf("no document loaded")
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return "", nil, fmt.Errorf("animation index %d out of range", animIndex)
	}
	anim := doc.Animations[animIndex]
	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", animIndex)
	}

	channels := make([]jointChannels, len(skel.joints))
	var maxTime float32
	for i, ch := range anim.Channels {
		node, ok := gltfIndex(ch.Target.Node)
		if !ok {
			continue
		}
		joint, ok := skel.nodeToJoint[node]
		if !ok {
			continue
		}
		if ch.Target.Path != gltf.TRSTranslation && ch.Target.Path != gltf.TRSRotation && ch.Target.Path != gltf.TRSScale {
			continue
		}

		si, ok := gltfIndex(ch.Sampler)
		if !ok || si < 0 || si >= len(anim.Samplers) {
			return "", nil, fmt.Errorf("animation %q channel %d: invalid sampler index", name, i)
		}
		sampler := anim.Samplers[si]
		input, _ := gltfIndex(sampler.Input)
		output, _ := gltfIndex(sampler.Output)

		times, err := e.parser.ReadScalarAccessor(input)
		if err != nil {
			return "", nil, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", name, i, err)
		}
		if len(times) == 0 {
			continue
		}
		maxTime = max(maxTime, times[len(times)-1])

		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			values, err := e.parser.ReadVec3Accessor(output)
			if err != nil {
				return "", nil, fmt.Errorf("animation %q channel %d: failed to read values: %w", name, i, err)
			}
			if len(values) == 0 {
				continue
			}
			c := &vec3Channel{times: times, values: keyValues(values, len(times), sampler.Interpolation), interp: sampler.Interpolation}
			if ch.Target.Path == gltf.TRSTranslation {
				channels[joint].translation = c
			} else {
				channels[joint].scale = c
			}

		case gltf.TRSRotation:
			values, err := e.parser.ReadQuatAccessor(output)
			if err != nil {
				return "", nil, fmt.Errorf("animation %q channel %d: failed to read rotations: %w", name, i, err)
			}
			if len(values) == 0 {
				continue
			}
			channels[joint].rotation = &quatChannel{times: times, values: keyValues(values, len(times), sampler.Interpolation), interp: sampler.Interpolation}
		}
	}

	count, times := resampleTimes(maxTime, rate)
	src := &gltfImportSource{
		joints: skel.joints,
		tracks: make([]animation.ImportedTrack, len(skel.joints)),
	}
	for j := range skel.joints {
		track := animation.ImportedTrack{
			JointName: skel.joints[j].Name,
			Times:     times,
			Matrices:  make([]mgl32.Mat4, count),
		}
		for k := 0; k < count; k++ {
			t := float32(k) * maxTime / float32(count)
			track.Matrices[k] = channels[j].sample(skel.rest[j], t).mat4()
		}
		src.tracks[j] = track
	}

	common.Logger().Debug("gltf animation resampled", "name", name, "duration", maxTime, "samples", count)
	return name, src, nil
}

func (c jointChannels) sample(rest nodeTRS, t float32) nodeTRS {
	out := rest
	if c.translation != nil {
		out.translation = c.translation.sample(t)
	}
	if c.rotation != nil {
		out.rotation = c.rotation.sample(t)
	}
	if c.scale != nil {
		out.scale = c.scale.sample(t)
	}
	return out
}

func (c *vec3Channel) sample(t float32) mgl32.Vec3 {
	i, f := keySegment(c.times, t, c.interp)
	if f == 0 {
		return c.values[i]
	}
	a, b := c.values[i], c.values[i+1]
	return a.Add(b.Sub(a).Mul(f))
}

func (c *quatChannel) sample(t float32) mgl32.Quat {
	i, f := keySegment(c.times, t, c.interp)
	if f == 0 {
		return c.values[i].Normalize()
	}
	a, b := c.values[i], c.values[i+1]
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.Quat{
		W: a.W + (b.W-a.W)*f,
		V: a.V.Add(b.V.Sub(a.V).Mul(f)),
	}.Normalize()
}

// keySegment finds the key at or before t and the blend toward the next key, 0 for step
// interpolation and outside the key range.
func keySegment(times []float32, t float32, interp gltf.Interpolation) (int, float32) {
	n := len(times)
	if t <= times[0] {
		return 0, 0
	}
	if t >= times[n-1] {
		return n - 1, 0
	}
	i := sort.Search(n, func(k int) bool { return times[k] > t }) - 1
	if interp == gltf.InterpolationStep {
		return i, 0
	}
	span := times[i+1] - times[i]
	if span <= 0 {
		return i, 0
	}
	return i, (t - times[i]) / span
}

// keyValues drops cubic spline tangents, keeping one value per key.
func keyValues[T any](values []T, keys int, interp gltf.Interpolation) []T {
	if interp == gltf.InterpolationCubicSpline && len(values) >= 3*keys {
		out := make([]T, keys)
		for k := range out {
			out[k] = values[3*k+1]
		}
		return out
	}
	if len(values) < keys {
		// Pad short outputs with the last value so every key has one.
		out := make([]T, keys)
		copy(out, values)
		for k := len(values); k < keys; k++ {
			out[k] = values[len(values)-1]
		}
		return out
	}
	return values
}

// resampleTimes returns the sample count and baked timestamps for an animation of the
// given length. Sample k is taken at k*maxTime/count and stamped (k+1)*maxTime/count, so
// the last stamp equals the duration and the clip loops back to its first key.
func resampleTimes(maxTime, rate float32) (int, []float32) {
	if maxTime <= 0 {
		return 1, []float32{1 / rate}
	}
	count := max(1, int(math.Round(float64(maxTime*rate))))
	times := make([]float32, count)
	for k := range times {
		times[k] = float32(k+1) * maxTime / float32(count)
	}
	times[count-1] = maxTime
	return count, times
}
