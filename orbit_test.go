package retroview

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrbit() *OrbitControls {
	config := DefaultConfig()
	return NewOrbitControls(config.Controls, config.Camera.Position, Vector{})
}

// settle runs Update() until the controls come to rest, returning how many updates it took.
func settle(t *testing.T, orbit *OrbitControls) int {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if !orbit.Update() && orbit.AtRest() {
			return i
		}
	}
	t.Fatal("orbit controls never came to rest")
	return 0
}

func TestOrbitStartsOnTheLockedPolarAngle(t *testing.T) {

	orbit := newTestOrbit()

	assert.True(t, orbit.VerticalLocked())
	assert.InDelta(t, math.Pi/2, orbit.Polar, 1e-9)
	assert.InDelta(t, 0, orbit.Tilt(), 1e-9)
	assert.InDelta(t, math.Atan2(0.2, 0.3), orbit.Azimuth, 1e-9)
	assert.InDelta(t, NewVector(0.2, 0.1, 0.3).Magnitude(), orbit.Distance, 1e-9)

	// The camera sits level with the target.
	assert.InDelta(t, 0, orbit.Position().Y, 1e-9)

}

func TestOrbitRejectsVerticalRotation(t *testing.T) {

	orbit := newTestOrbit()
	polar := orbit.Polar

	assert.False(t, orbit.Rotate(0, 0.5))
	assert.True(t, orbit.AtRest())

	assert.False(t, orbit.Drag(0, 120, 400))
	assert.True(t, orbit.AtRest())

	// A diagonal request keeps its horizontal part only.
	assert.True(t, orbit.Rotate(0.25, 0.5))
	settle(t, orbit)
	assert.Equal(t, polar, orbit.Polar)

}

func TestOrbitAcceptsHorizontalRotationAndZoom(t *testing.T) {

	orbit := newTestOrbit()
	start := orbit.Azimuth
	distance := orbit.Distance

	require.True(t, orbit.Rotate(1, 0))
	assert.False(t, orbit.AtRest())

	assert.True(t, orbit.Update())
	// The first update applies the damping factor's share of the request.
	assert.InDelta(t, start+0.3, orbit.Azimuth, 1e-9)

	updates := settle(t, orbit)
	assert.Less(t, updates, 100)
	assert.InDelta(t, start+1, orbit.Azimuth, 1e-3)

	require.True(t, orbit.Zoom(3))
	settle(t, orbit)
	assert.Less(t, orbit.Distance, distance)
	assert.InDelta(t, distance*math.Pow(0.95, 3), orbit.Distance, 1e-4)

	assert.False(t, orbit.Update(), "controls at rest don't move")

}

func TestOrbitDrag(t *testing.T) {

	orbit := newTestOrbit()
	orbit.DampingFactor = 1
	start := orbit.Azimuth

	// Dragging a quarter of the viewport's height turns a quarter of the way around.
	assert.True(t, orbit.Drag(100, 0, 400))
	orbit.Update()
	assert.InDelta(t, math.Remainder(start-math.Pi/2, 2*math.Pi), orbit.Azimuth, 1e-9)

	assert.False(t, orbit.Drag(100, 0, 0))

}

func TestOrbitDisabled(t *testing.T) {

	orbit := newTestOrbit()
	orbit.EnableRotate = false
	orbit.EnableZoom = false

	assert.False(t, orbit.Rotate(1, 0))
	assert.False(t, orbit.Zoom(1))
	assert.False(t, orbit.Zoom(0))
	assert.True(t, orbit.AtRest())

}

func TestOrbitClamps(t *testing.T) {

	config := DefaultConfig().Controls
	config.MinPolarAngle = 0.5
	config.MaxPolarAngle = 2.5

	orbit := NewOrbitControls(config, NewVector(0, 0, 2), Vector{})
	assert.False(t, orbit.VerticalLocked())
	assert.True(t, orbit.Position().Equals(NewVector(0, 0, 2), 1e-9))

	require.True(t, orbit.Rotate(0, 10))
	settle(t, orbit)
	assert.InDelta(t, 2.5, orbit.Polar, 1e-9)

	require.True(t, orbit.Rotate(0, -10))
	settle(t, orbit)
	assert.InDelta(t, 0.5, orbit.Polar, 1e-9)

	orbit.Frame(10, 0.25, 4)
	assert.Equal(t, 10.0, orbit.Distance)
	assert.Equal(t, 2.5, orbit.MinDistance)
	assert.Equal(t, 40.0, orbit.MaxDistance)

	orbit.Zoom(-1000)
	settle(t, orbit)
	assert.Equal(t, 40.0, orbit.Distance)

	orbit.Zoom(1000)
	settle(t, orbit)
	assert.Equal(t, 2.5, orbit.Distance)

	// Azimuth wraps instead of growing without bound.
	orbit.Rotate(20*math.Pi+0.5, 0)
	settle(t, orbit)
	assert.LessOrEqual(t, math.Abs(orbit.Azimuth), math.Pi)

}

func TestOrbitSetZoomLimits(t *testing.T) {

	orbit := NewOrbitControls(DefaultConfig().Controls, NewVector(0, 0, 2), Vector{})
	orbit.Frame(10, 0.25, 4)

	// New limits that still contain the camera leave it where it is.
	orbit.SetZoomLimits(20, 0.25, 4)
	assert.Equal(t, 5.0, orbit.MinDistance)
	assert.Equal(t, 80.0, orbit.MaxDistance)
	assert.Equal(t, 10.0, orbit.Distance)

	// Otherwise the camera is pulled inside them.
	orbit.SetZoomLimits(100, 0.25, 4)
	assert.Equal(t, 25.0, orbit.Distance)

	orbit.SetZoomLimits(2, 0.25, 4)
	assert.Equal(t, 8.0, orbit.Distance)

}

func TestOrbitStop(t *testing.T) {

	orbit := newTestOrbit()
	start := orbit.Azimuth

	orbit.Rotate(1, 0)
	orbit.Zoom(1)
	orbit.Stop()

	assert.True(t, orbit.AtRest())
	assert.False(t, orbit.Update())
	assert.Equal(t, start, orbit.Azimuth)

}
