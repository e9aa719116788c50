// Package camera implements the orbiting perspective camera that looks at the surface.
package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"gonoisesurface/common"
)

const (
	DefaultFov      = 75
	DefaultNear     = 0.1
	DefaultFar      = 1000
	DefaultDistance = 5

	minDistance = 0.5
	maxDistance = 200
	// keeps the view direction off the up axis
	maxPitch = math32.Pi/2 - 0.01
)

// Orbit circles Target at Distance. Yaw turns around +Y, pitch tilts toward it; the
// zero orientation looks down -Z from +Z like a camera placed at (0, 0, Distance).
// Input callbacks and the renderer may use it from different goroutines.
type Orbit struct {
	mu sync.RWMutex

	target   common.Vec3
	distance float32
	yaw      float32
	pitch    float32

	fov    float32 // degrees
	near   float32
	far    float32
	aspect float32
}

func NewOrbit() *Orbit {
	return &Orbit{
		distance: DefaultDistance,
		fov:      DefaultFov,
		near:     DefaultNear,
		far:      DefaultFar,
		aspect:   1,
	}
}

// Rotate turns the camera by the given angles in radians.
func (o *Orbit) Rotate(dYaw, dPitch float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.yaw = math32.Mod(o.yaw+dYaw, 2*math32.Pi)
	o.pitch = common.Clamp(o.pitch+dPitch, -maxPitch, maxPitch)
}

// Zoom scales the distance to the target; factors below 1 move closer.
func (o *Orbit) Zoom(factor float32) {
	if factor <= 0 || !common.IsFinite(factor) {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.distance = common.Clamp(o.distance*factor, minDistance, maxDistance)
}

// SetViewport updates the aspect ratio for a viewport of width x height pixels.
func (o *Orbit) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.aspect = float32(width) / float32(height)
}

func (o *Orbit) Aspect() float32 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.aspect
}

// Reset returns to the initial orientation and distance.
func (o *Orbit) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.yaw, o.pitch, o.distance = 0, 0, DefaultDistance
}

func (o *Orbit) eyeLocked() common.Vec3 {
	sy, cy := math32.Sincos(o.yaw)
	sp, cp := math32.Sincos(o.pitch)
	dir := common.Vec3{sy * cp, sp, cy * cp}
	return o.target.Add(dir.Mul(o.distance))
}

func (o *Orbit) Eye() common.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.eyeLocked()
}

func (o *Orbit) View() common.Mat4 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return mgl32.LookAtV(o.eyeLocked(), o.target, common.Vec3{0, 1, 0})
}

func (o *Orbit) Projection() common.Mat4 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return mgl32.Perspective(mgl32.DegToRad(o.fov), o.aspect, o.near, o.far)
}

// ViewProjection is Projection * View.
func (o *Orbit) ViewProjection() common.Mat4 {
	return o.Projection().Mul4(o.View())
}
