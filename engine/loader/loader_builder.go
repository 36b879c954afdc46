package loader

import (
	"maps"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithSampleRate sets the animation resampling rate.
//
// Parameters:
//   - hz: samples per second, ignored if not positive
//
// Returns:
//   - LoaderBuilderOption: a function that sets the sample rate
func WithSampleRate(hz float32) LoaderBuilderOption {
	return func(l *loader) {
		if hz > 0 {
			l.sampleRate = hz
		}
	}
}

// WithClipArena registers loaded clips in an existing arena instead of a new one.
//
// Parameters:
//   - arena: the arena to share
//
// Returns:
//   - LoaderBuilderOption: a function that sets the arena
func WithClipArena(arena animation.ClipArena) LoaderBuilderOption {
	return func(l *loader) {
		l.arena = arena
	}
}

// WithSkinIndex selects which skin of a document becomes the skeleton.
//
// Parameters:
//   - i: the skin index, negative to use the skin of the first skinned mesh
//
// Returns:
//   - LoaderBuilderOption: a function that sets the skin index
func WithSkinIndex(i int) LoaderBuilderOption {
	return func(l *loader) {
		l.skinIndex = i
	}
}

// WithClipDurations overrides the playback duration of named clips as they are registered.
//
// Parameters:
//   - durations: seconds by clip name
//
// Returns:
//   - LoaderBuilderOption: a function that sets the duration overrides
func WithClipDurations(durations map[string]float32) LoaderBuilderOption {
	return func(l *loader) {
		l.clipDurations = maps.Clone(durations)
	}
}
