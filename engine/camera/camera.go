package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	target mgl32.Vec3
	up     mgl32.Vec3

	// Spherical coordinates of the eye relative to target.
	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32

	fov          float32
	aspect       float32
	near         float32
	far          float32
	orthographic bool

	position             mgl32.Vec3
	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
	frustum              common.Frustum
}

// Camera is an orbit camera that looks at a target from spherical coordinates (radius,
// azimuth about +Y, elevation above the horizontal plane) and provides the matrices the
// debug renderers project with. All methods are safe for concurrent use.
type Camera interface {
	// Position returns the eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the world-space eye position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: the world-space orbit pivot
	Target() mgl32.Vec3

	// SetTarget moves the orbit pivot, keeping the spherical offset.
	//
	// Parameters:
	//   - target: the new pivot
	SetTarget(target mgl32.Vec3)

	// Radius returns the eye distance from the target.
	//
	// Returns:
	//   - float32: the orbit radius
	Radius() float32

	// SetRadius sets the eye distance, clamped to the radius bounds.
	//
	// Parameters:
	//   - radius: the orbit radius
	SetRadius(radius float32)

	// Azimuth returns the horizontal orbit angle in radians, 0 looking down -Z.
	//
	// Returns:
	//   - float32: the azimuth
	Azimuth() float32

	// SetAzimuth sets the horizontal orbit angle.
	//
	// Parameters:
	//   - azimuth: the angle in radians
	SetAzimuth(azimuth float32)

	// Elevation returns the vertical orbit angle in radians.
	//
	// Returns:
	//   - float32: the elevation
	Elevation() float32

	// SetElevation sets the vertical orbit angle, clamped to the elevation bounds.
	//
	// Parameters:
	//   - elevation: the angle in radians
	SetElevation(elevation float32)

	// OrbitLeft rotates the eye left around the target by one orbit step.
	OrbitLeft()

	// OrbitRight rotates the eye right around the target by one orbit step.
	OrbitRight()

	// OrbitUp raises the eye by one orbit step.
	OrbitUp()

	// OrbitDown lowers the eye by one orbit step.
	OrbitDown()

	// Zoom moves the eye toward the target. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount, scaled by the zoom speed
	Zoom(delta float32)

	// Frame points the camera at the center of a bounding box and sets the radius and
	// clip planes so the whole box is visible.
	//
	// Parameters:
	//   - lo: the box minimum
	//   - hi: the box maximum
	Frame(lo, hi mgl32.Vec3)

	// Aspect returns the viewport aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the viewport aspect ratio.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// Orthographic reports whether the camera uses a parallel projection.
	//
	// Returns:
	//   - bool: true for orthographic, false for perspective
	Orthographic() bool

	// ViewMatrix returns the world-to-eye transform.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the eye-to-clip transform.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the planes of the current view volume.
	//
	// Returns:
	//   - common.Frustum: planes facing inward, extracted from the view projection matrix
	Frustum() common.Frustum
}

var _ Camera = &cameraImpl{}

// NewCamera creates an orbit camera with a 45 degree perspective looking at the origin.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		target: mgl32.Vec3{0, 0, 0},
		up:     mgl32.Vec3{0, 1, 0},

		radius:    5,
		azimuth:   0,
		elevation: float32(math.Pi / 12),

		minRadius:    0.01,
		maxRadius:    1e5,
		minElevation: float32(-math.Pi/2 + 0.05),
		maxElevation: float32(math.Pi/2 - 0.05),

		orbitSpeed: 0.1,
		zoomSpeed:  0.5,

		fov:    45.0 * (math.Pi / 180.0),
		aspect: 1,
		near:   0.01,
		far:    100,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

func (c *cameraImpl) SetRadius(radius float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = clamp(radius, c.minRadius, c.maxRadius)
	c.updateMatrices()
}

func (c *cameraImpl) Azimuth() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.azimuth
}

func (c *cameraImpl) SetAzimuth(azimuth float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth = azimuth
	c.updateMatrices()
}

func (c *cameraImpl) Elevation() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elevation
}

func (c *cameraImpl) SetElevation(elevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elevation = clamp(elevation, c.minElevation, c.maxElevation)
	c.updateMatrices()
}

func (c *cameraImpl) OrbitLeft() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth -= c.orbitSpeed
	c.updateMatrices()
}

func (c *cameraImpl) OrbitRight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += c.orbitSpeed
	c.updateMatrices()
}

func (c *cameraImpl) OrbitUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elevation = clamp(c.elevation+c.orbitSpeed, c.minElevation, c.maxElevation)
	c.updateMatrices()
}

func (c *cameraImpl) OrbitDown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elevation = clamp(c.elevation-c.orbitSpeed, c.minElevation, c.maxElevation)
	c.updateMatrices()
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = clamp(c.radius*(1-delta*c.zoomSpeed), c.minRadius, c.maxRadius)
	c.updateMatrices()
}

func (c *cameraImpl) Frame(lo, hi mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.target = lo.Add(hi).Mul(0.5)
	r := hi.Sub(lo).Len() / 2
	if r < 1e-3 {
		r = 1
	}

	// Distance at which a sphere of radius r fills the vertical field of view.
	dist := r / float32(math.Sin(float64(c.fov)/2)) * 1.1
	c.radius = clamp(dist, c.minRadius, c.maxRadius)
	c.near = max(c.radius-2*r, c.radius*0.01)
	c.far = c.radius + 2*r
	c.updateMatrices()
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Orthographic() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orthographic
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum
}

// updateMatrices recomputes the eye position and every matrix. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	cosElev := float32(math.Cos(float64(c.elevation)))
	sinElev := float32(math.Sin(float64(c.elevation)))
	cosAzim := float32(math.Cos(float64(c.azimuth)))
	sinAzim := float32(math.Sin(float64(c.azimuth)))

	c.position = c.target.Add(mgl32.Vec3{
		c.radius * cosElev * sinAzim,
		c.radius * sinElev,
		c.radius * cosElev * cosAzim,
	})

	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	if c.orthographic {
		// Parallel view sized to match the perspective frustum at the target distance.
		halfH := c.radius * float32(math.Tan(float64(c.fov)/2))
		halfW := halfH * c.aspect
		c.projectionMatrix = mgl32.Ortho(-halfW, halfW, -halfH, halfH, c.near, c.far)
	} else {
		c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	}
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.frustum = common.ExtractFrustum(c.viewProjectionMatrix)
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
