package animation

import "github.com/go-gl/mathgl/mgl32"

type bakeOptions struct {
	rootCorrection  mgl32.Mat4
	applyCorrection bool
	recoverScale    bool
}

// BakeOption is a functional option for configuring Bake.
type BakeOption func(*bakeOptions)

// WithRootCorrection is an option builder that replaces the transform pre-multiplied onto animated root joints.
//
// Parameters:
//   - m: the correction transform
//
// Returns:
//   - BakeOption: a function that applies the correction option
func WithRootCorrection(m mgl32.Mat4) BakeOption {
	return func(o *bakeOptions) {
		o.rootCorrection = m
		o.applyCorrection = true
	}
}

// WithoutRootCorrection is an option builder that leaves root joint tracks untouched.
// Sources that are already Y-up use this.
//
// Returns:
//   - BakeOption: a function that disables the root correction
func WithoutRootCorrection() BakeOption {
	return func(o *bakeOptions) {
		o.applyCorrection = false
	}
}

// WithScaleRecovery is an option builder that keeps the uniform scale of each matrix,
// taken as the mean length of its three basis columns, instead of fixing it at 1.
//
// Returns:
//   - BakeOption: a function that enables scale recovery
func WithScaleRecovery() BakeOption {
	return func(o *bakeOptions) {
		o.recoverScale = true
	}
}
