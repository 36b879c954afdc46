package animation

import (
	"fmt"
	"math"
)

// AnimationSample is one pose of the skeleton at a point on a clip's timeline.
type AnimationSample struct {
	// LocalPoses holds one parent-relative pose per joint, in skeleton joint order.
	LocalPoses []SQT
}

// AnimationClip is a fixed-rate sequence of skeleton poses. Every clip loops: sample
// indices are taken modulo the sample count, so there is no clamp-at-end mode.
//
// A clip is immutable once shared; SetDuration is meant for normalizing a freshly
// imported clip before it is added to a ClipArena.
type AnimationClip struct {
	name             string
	samples          []AnimationSample
	samplesPerSecond float32
	jointCount       int
}

// NewAnimationClip validates samples and builds a clip from them.
//
// Parameters:
//   - name: the clip identifier
//   - samples: the poses, all with the same joint count
//   - samplesPerSecond: the constant sample rate, must be finite and positive
//
// Returns:
//   - *AnimationClip: the new clip
//   - error: ErrEmptyClip, ErrLengthMismatch or ErrInvalidDuration (wrapped) on invalid input
func NewAnimationClip(name string, samples []AnimationSample, samplesPerSecond float32) (*AnimationClip, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("clip %q: %w", name, ErrEmptyClip)
	}
	if !validPositive(samplesPerSecond) {
		return nil, fmt.Errorf("clip %q: sample rate %v: %w", name, samplesPerSecond, ErrInvalidDuration)
	}

	jointCount := len(samples[0].LocalPoses)
	if jointCount == 0 {
		return nil, fmt.Errorf("clip %q: sample 0 has no joints: %w", name, ErrLengthMismatch)
	}
	for i := range samples {
		if n := len(samples[i].LocalPoses); n != jointCount {
			return nil, fmt.Errorf("clip %q: sample %d has %d joints, want %d: %w", name, i, n, jointCount, ErrLengthMismatch)
		}
	}

	return &AnimationClip{
		name:             name,
		samples:          samples,
		samplesPerSecond: samplesPerSecond,
		jointCount:       jointCount,
	}, nil
}

// NewAnimationClipWithDuration builds a clip whose sample rate is derived from a desired duration.
//
// Parameters:
//   - name: the clip identifier
//   - samples: the poses, all with the same joint count
//   - duration: the clip length in seconds, must be finite and positive
//
// Returns:
//   - *AnimationClip: the new clip with samplesPerSecond = len(samples) / duration
//   - error: as NewAnimationClip
func NewAnimationClipWithDuration(name string, samples []AnimationSample, duration float32) (*AnimationClip, error) {
	if !validPositive(duration) {
		return nil, fmt.Errorf("clip %q: duration %v: %w", name, duration, ErrInvalidDuration)
	}
	return NewAnimationClip(name, samples, float32(len(samples))/duration)
}

// Name returns the clip identifier.
func (c *AnimationClip) Name() string {
	return c.name
}

// SamplesPerSecond returns the sample rate.
func (c *AnimationClip) SamplesPerSecond() float32 {
	return c.samplesPerSecond
}

// SampleCount returns the number of samples.
func (c *AnimationClip) SampleCount() int {
	return len(c.samples)
}

// JointCount returns the number of joints every sample holds.
func (c *AnimationClip) JointCount() int {
	return c.jointCount
}

// Duration returns the loop length in seconds, samples / samplesPerSecond.
func (c *AnimationClip) Duration() float32 {
	return float32(len(c.samples)) / c.samplesPerSecond
}

// Sample returns the sample at index i. Its poses must not be modified.
func (c *AnimationClip) Sample(i int) AnimationSample {
	return c.samples[i]
}

// SetDuration rescales the sample rate so the clip lasts the given number of seconds.
//
// Parameters:
//   - duration: the desired length in seconds, must be finite and positive
//
// Returns:
//   - error: ErrInvalidDuration (wrapped) if duration is not usable
func (c *AnimationClip) SetDuration(duration float32) error {
	if !validPositive(duration) {
		return fmt.Errorf("clip %q: duration %v: %w", c.name, duration, ErrInvalidDuration)
	}
	c.samplesPerSecond = float32(len(c.samples)) / duration
	return nil
}

// SampleAtTime returns the nearest sample at or before t, without interpolation.
// Times past the end (or before zero) wrap around.
//
// Parameters:
//   - t: elapsed time in seconds
//
// Returns:
//   - AnimationSample: the sample, whose poses must not be modified
//   - error: ErrInvalidTime (wrapped) if t is NaN or infinite
func (c *AnimationClip) SampleAtTime(t float32) (AnimationSample, error) {
	// float32 product, as in InterpolatedPoseAtTime, so Duration() lands exactly on sample 0.
	ii := t * c.samplesPerSecond
	if math.IsNaN(float64(ii)) || math.IsInf(float64(ii), 0) {
		return AnimationSample{}, fmt.Errorf("clip %q: time %v: %w", c.name, t, ErrInvalidTime)
	}
	return c.samples[wrapIndex(math.Floor(float64(ii)), len(c.samples))], nil
}

// InterpolatedPoseAtTime writes the pose at time t into out, blending the two samples around t.
//
// The fractional sample index is t * samplesPerSecond; the samples at its floor and ceiling
// (both modulo the sample count) are blended by the fractional part. On an exact sample hit
// the sample is copied unchanged.
//
// Parameters:
//   - t: elapsed time in seconds
//   - out: destination, at least JointCount() long; entries past JointCount() are untouched
//
// Returns:
//   - error: ErrLengthMismatch, ErrInvalidTime or ErrDegenerateQuaternion (wrapped)
func (c *AnimationClip) InterpolatedPoseAtTime(t float32, out []SQT) error {
	if len(out) < c.jointCount {
		return fmt.Errorf("clip %q: output holds %d poses, need %d: %w", c.name, len(out), c.jointCount, ErrLengthMismatch)
	}

	ii := t * c.samplesPerSecond
	if math.IsNaN(float64(ii)) || math.IsInf(float64(ii), 0) {
		return fmt.Errorf("clip %q: time %v: %w", c.name, t, ErrInvalidTime)
	}

	lo := float32(math.Floor(float64(ii)))
	hi := float32(math.Ceil(float64(ii)))
	blend := ii - lo

	n := len(c.samples)
	s1 := c.samples[wrapIndex(float64(lo), n)].LocalPoses
	s2 := c.samples[wrapIndex(float64(hi), n)].LocalPoses

	if blend == 0 {
		copy(out, s1)
		return nil
	}

	if err := blendInto(out, s1, s2, blend); err != nil {
		return fmt.Errorf("clip %q at %v: %w", c.name, t, err)
	}
	return nil
}

func blendInto(out, s1, s2 []SQT, t float32) error {
	for i := range s1 {
		p, err := LerpSQT(s1[i], s2[i], t)
		if err != nil {
			return fmt.Errorf("joint %d: %w", i, err)
		}
		out[i] = p
	}
	return nil
}

// wrapIndex maps a whole-number float index onto [0, n).
func wrapIndex(i float64, n int) int {
	m := math.Mod(i, float64(n))
	if m < 0 {
		m += float64(n)
	}
	idx := int(m)
	if idx >= n {
		idx = 0
	}
	return idx
}

func validPositive(v float32) bool {
	f := float64(v)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
