package retroview

import (
	"math"
)

// polarEpsilon keeps the camera off the poles, where azimuth is undefined.
const polarEpsilon = 1e-6

// restThreshold is the velocity below which the controls are considered at rest.
const restThreshold = 1e-5

// OrbitControls orbits a camera around a target point on a sphere, described by an azimuth (rotation around the
// up axis), a polar angle (measured down from the up axis), and a distance. Input adds to a velocity that is applied
// and decayed by the damping factor on every Update(), so rotation eases to a stop.
type OrbitControls struct {
	Target Vector

	Azimuth  float64
	Polar    float64
	Distance float64

	MinPolar, MaxPolar       float64
	MinDistance, MaxDistance float64

	EnableRotate  bool
	EnableZoom    bool
	RotateSpeed   float64
	ZoomSpeed     float64
	DampingFactor float64

	azimuthDelta float64
	polarDelta   float64
	zoomDelta    float64 // Pending change in log-distance
}

// NewOrbitControls creates OrbitControls from the configuration given, starting from the camera position provided
// and looking at target. The starting polar angle is clamped to the configured range immediately, so a locked polar
// angle takes effect from the first frame.
func NewOrbitControls(config ControlsConfig, position, target Vector) *OrbitControls {

	orbit := &OrbitControls{
		Target:        target,
		MinPolar:      config.MinPolarAngle,
		MaxPolar:      config.MaxPolarAngle,
		MinDistance:   0,
		MaxDistance:   math.Inf(1),
		EnableRotate:  config.EnableRotate,
		EnableZoom:    config.EnableZoom,
		RotateSpeed:   config.RotateSpeed,
		ZoomSpeed:     config.ZoomSpeed,
		DampingFactor: config.DampingFactor,
	}

	orbit.SetPosition(position)

	return orbit

}

// SetPosition places the camera at the position given (relative to the Target), clamped to the polar and distance limits.
func (orbit *OrbitControls) SetPosition(position Vector) {

	offset := position.Sub(orbit.Target)
	orbit.Distance = offset.Magnitude()

	if orbit.Distance > 0 {
		orbit.Polar = math.Acos(clamp(offset.Y/orbit.Distance, -1, 1))
		orbit.Azimuth = math.Atan2(offset.X, offset.Z)
	} else {
		orbit.Polar = math.Pi / 2
		orbit.Azimuth = 0
	}

	orbit.clampState()

}

// VerticalLocked returns true if the polar angle can't change (its minimum and maximum are equal).
func (orbit *OrbitControls) VerticalLocked() bool {
	return orbit.MinPolar >= orbit.MaxPolar
}

// Rotate requests a rotation by the given azimuth and polar deltas, in radians. It returns true if any part of the
// request was accepted; a purely vertical request is rejected while the polar angle is locked.
func (orbit *OrbitControls) Rotate(azimuth, polar float64) bool {

	if !orbit.EnableRotate {
		return false
	}

	accepted := false

	if azimuth != 0 {
		orbit.azimuthDelta += azimuth * orbit.RotateSpeed
		accepted = true
	}

	if polar != 0 && !orbit.VerticalLocked() {
		orbit.polarDelta += polar * orbit.RotateSpeed
		accepted = true
	}

	return accepted

}

// Drag converts a pointer drag of dx, dy pixels on a viewport of the given height into a rotation; dragging across the
// full height of the viewport turns the camera all the way around.
func (orbit *OrbitControls) Drag(dx, dy float64, viewportHeight int) bool {
	if viewportHeight <= 0 {
		return false
	}
	h := float64(viewportHeight)
	return orbit.Rotate(-2*math.Pi*dx/h, -2*math.Pi*dy/h)
}

// Zoom requests a zoom by the number of wheel steps given; positive values move the camera closer.
func (orbit *OrbitControls) Zoom(steps float64) bool {
	if !orbit.EnableZoom || steps == 0 {
		return false
	}
	orbit.zoomDelta += steps * orbit.ZoomSpeed * math.Log(0.95)
	return true
}

// Update applies pending rotation and zoom, decaying what remains by the damping factor. It returns true if the
// camera moved, meaning the scene should be redrawn.
func (orbit *OrbitControls) Update() bool {

	if orbit.AtRest() {
		return false
	}

	share := orbit.DampingFactor
	if share <= 0 || share > 1 {
		share = 1
	}

	prevAzimuth, prevPolar, prevDistance := orbit.Azimuth, orbit.Polar, orbit.Distance

	orbit.Azimuth += orbit.azimuthDelta * share
	orbit.Polar += orbit.polarDelta * share
	orbit.Distance *= math.Exp(orbit.zoomDelta * share)

	orbit.azimuthDelta *= 1 - share
	orbit.polarDelta *= 1 - share
	orbit.zoomDelta *= 1 - share

	if math.Abs(orbit.azimuthDelta) < restThreshold {
		orbit.azimuthDelta = 0
	}
	if math.Abs(orbit.polarDelta) < restThreshold {
		orbit.polarDelta = 0
	}
	if math.Abs(orbit.zoomDelta) < restThreshold {
		orbit.zoomDelta = 0
	}

	orbit.clampState()

	return orbit.Azimuth != prevAzimuth || orbit.Polar != prevPolar || orbit.Distance != prevDistance

}

// AtRest returns true if no rotation or zoom is pending.
func (orbit *OrbitControls) AtRest() bool {
	return orbit.azimuthDelta == 0 && orbit.polarDelta == 0 && orbit.zoomDelta == 0
}

// Stop discards any pending rotation or zoom.
func (orbit *OrbitControls) Stop() {
	orbit.azimuthDelta = 0
	orbit.polarDelta = 0
	orbit.zoomDelta = 0
}

// Frame sets the orbit distance and derives the zoom limits from it, as multiples given by minZoom and maxZoom.
func (orbit *OrbitControls) Frame(distance, minZoom, maxZoom float64) {
	orbit.Distance = distance
	orbit.SetZoomLimits(distance, minZoom, maxZoom)
}

// SetZoomLimits derives the zoom limits from a framing distance without moving the camera, other than to pull it back
// inside the new limits.
func (orbit *OrbitControls) SetZoomLimits(distance, minZoom, maxZoom float64) {
	orbit.MinDistance = distance * minZoom
	orbit.MaxDistance = distance * maxZoom
	orbit.clampState()
}

func (orbit *OrbitControls) clampState() {

	minPolar := math.Max(orbit.MinPolar, polarEpsilon)
	maxPolar := math.Min(orbit.MaxPolar, math.Pi-polarEpsilon)
	orbit.Polar = clamp(orbit.Polar, minPolar, math.Max(minPolar, maxPolar))

	if orbit.MaxDistance >= orbit.MinDistance {
		orbit.Distance = clamp(orbit.Distance, orbit.MinDistance, orbit.MaxDistance)
	}

	// Keep the azimuth in [-pi, pi] so it doesn't grow without bound.
	orbit.Azimuth = math.Remainder(orbit.Azimuth, 2*math.Pi)

}

// Position returns the camera's position in world space.
func (orbit *OrbitControls) Position() Vector {
	sinPolar := math.Sin(orbit.Polar)
	return orbit.Target.Add(Vector{
		X: orbit.Distance * sinPolar * math.Sin(orbit.Azimuth),
		Y: orbit.Distance * math.Cos(orbit.Polar),
		Z: orbit.Distance * sinPolar * math.Cos(orbit.Azimuth),
	})
}

// Tilt returns the pitch of the camera, in radians; negative values look downwards towards the target.
func (orbit *OrbitControls) Tilt() float64 {
	return orbit.Polar - math.Pi/2
}

func clamp[V float64 | float32 | int](value, min, max V) V {
	if value < min {
		return min
	} else if value > max {
		return max
	}
	return value
}
