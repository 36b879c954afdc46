package animation

import "errors"

var (
	// ErrEmptyClip is returned when a clip or import source has no samples.
	ErrEmptyClip = errors.New("animation clip has no samples")

	// ErrLengthMismatch is returned when pose buffers or samples disagree on joint count.
	ErrLengthMismatch = errors.New("pose length mismatch")

	// ErrInvalidDuration is returned for zero, negative or non-finite durations and sample rates.
	ErrInvalidDuration = errors.New("invalid clip duration")

	// ErrInvalidTime is returned when a sample time is NaN or infinite.
	ErrInvalidTime = errors.New("invalid sample time")

	// ErrDegenerateQuaternion is returned when a quaternion blend has near-zero magnitude.
	ErrDegenerateQuaternion = errors.New("degenerate quaternion blend")

	// ErrTrackMismatch is returned when imported tracks disagree on sample count.
	ErrTrackMismatch = errors.New("imported track sample count mismatch")

	// ErrDuplicateClip is returned when a clip name is already present in an arena.
	ErrDuplicateClip = errors.New("duplicate clip name")

	// ErrUnknownClip is returned when a clip handle does not belong to the arena.
	ErrUnknownClip = errors.New("unknown clip handle")
)
