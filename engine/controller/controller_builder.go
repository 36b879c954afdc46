package controller

import (
	"maps"

	"github.com/Carmen-Shannon/oxy-anim/engine/blendtree"
)

// ControllerBuilderOption is a functional option for configuring a Controller during construction.
type ControllerBuilderOption func(*controller)

// WithSpeed sets the initial playback rate multiplier.
//
// Parameters:
//   - speed: the multiplier applied to dt
//
// Returns:
//   - ControllerBuilderOption: a function that sets the speed
func WithSpeed(speed float32) ControllerBuilderOption {
	return func(c *controller) {
		c.speed = speed
	}
}

// WithParams sets initial blend parameters. The map is copied.
//
// Parameters:
//   - params: parameter values by name
//
// Returns:
//   - ControllerBuilderOption: a function that sets the parameters
func WithParams(params blendtree.Params) ControllerBuilderOption {
	return func(c *controller) {
		maps.Copy(c.params, params)
	}
}

// WithMaxJoints sets the scratch buffer capacity, so trees over larger skeletons can be
// swapped in later without exceeding it.
//
// Parameters:
//   - n: the joint capacity of each scratch buffer
//
// Returns:
//   - ControllerBuilderOption: a function that sets the capacity
func WithMaxJoints(n int) ControllerBuilderOption {
	return func(c *controller) {
		c.maxJoints = n
	}
}

// WithStartTime sets the initial playback time.
//
// Parameters:
//   - t: time in seconds
//
// Returns:
//   - ControllerBuilderOption: a function that sets the time
func WithStartTime(t float32) ControllerBuilderOption {
	return func(c *controller) {
		c.time = float64(t)
	}
}
