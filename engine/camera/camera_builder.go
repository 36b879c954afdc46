package camera

import "github.com/go-gl/mathgl/mgl32"

type CameraBuilderOption func(*cameraImpl)

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = mgl32.Vec3{x, y, z}
	}
}

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the far plane
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithOrthographic switches the camera to a parallel projection.
//
// Returns:
//   - CameraBuilderOption: a function that enables orthographic projection
func WithOrthographic() CameraBuilderOption {
	return func(c *cameraImpl) {
		c.orthographic = true
	}
}

// WithTarget sets the orbit pivot.
//
// Parameters:
//   - target: the world-space look-at point
//
// Returns:
//   - CameraBuilderOption: a function that sets the target
func WithTarget(target mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithRadius sets the initial orbit distance.
//
// Parameters:
//   - radius: the eye distance from the target
//
// Returns:
//   - CameraBuilderOption: a function that sets the radius
func WithRadius(radius float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.radius = radius
	}
}

// WithAzimuth sets the initial horizontal orbit angle.
//
// Parameters:
//   - azimuth: the angle in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the azimuth
func WithAzimuth(azimuth float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical orbit angle.
//
// Parameters:
//   - elevation: the angle in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the elevation
func WithElevation(elevation float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.elevation = elevation
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - lo: the minimum radius
//   - hi: the maximum radius
//
// Returns:
//   - CameraBuilderOption: a function that sets the radius bounds
func WithRadiusBounds(lo, hi float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.minRadius = lo
		c.maxRadius = hi
	}
}

// WithOrbitSpeed sets the angle in radians covered by one orbit step.
//
// Parameters:
//   - speed: radians per step
//
// Returns:
//   - CameraBuilderOption: a function that sets the orbit speed
func WithOrbitSpeed(speed float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.orbitSpeed = speed
	}
}

// WithZoomSpeed sets the fraction of the radius removed per unit of zoom.
//
// Parameters:
//   - speed: zoom factor
//
// Returns:
//   - CameraBuilderOption: a function that sets the zoom speed
func WithZoomSpeed(speed float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.zoomSpeed = speed
	}
}
