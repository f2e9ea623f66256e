package retroview

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testBox = NewDimensions(NewVector(-1, 0, -1), NewVector(1, 2, 1))

func TestStage(t *testing.T) {

	config := DefaultConfig().Stage

	staging := Stage(config, true, testBox, 25, 1.5)

	assert.Equal(t, testBox, staging.Bounds)
	assert.True(t, staging.Offset.Equals(NewVector(0, -1, 0), 1e-9), "offset %s", staging.Offset)
	assert.InDelta(t, math.Sqrt(3), staging.Radius, 1e-9)
	assert.InDelta(t, math.Sqrt(3)/math.Sin(12.5*math.Pi/180)*1.5, staging.Distance, 1e-9)

	shadow := staging.Shadow
	assert.True(t, shadow.Enabled)
	assert.True(t, shadow.Center.Equals(NewVector(0, -1, 0), 1e-9), "shadow center %s", shadow.Center)
	assert.InDelta(t, math.Sqrt2*1.2, shadow.Radius, 1e-9)
	assert.Equal(t, 1000.0, shadow.PlaneSize)
	assert.Equal(t, 1024, shadow.Resolution)
	assert.Equal(t, 0.5, shadow.Opacity)

	// The staged content sits on the shadow, centered on the origin.
	centered := testBox.Place(1, staging.Offset)
	assert.True(t, centered.Center().Equals(Vector{}, 1e-9))
	assert.InDelta(t, centered.Min.Y, shadow.Center.Y, 1e-9)

}

func TestStageOptions(t *testing.T) {

	config := DefaultConfig().Stage

	assert.False(t, Stage(config, false, testBox, 25, 1).Shadow.Enabled, "canvas shadows off")

	noShadow := config
	noShadow.ContactShadow.Opacity = 0
	assert.False(t, Stage(noShadow, true, testBox, 25, 1).Shadow.Enabled, "transparent shadow")

	uncentered := config
	uncentered.Center = false
	staging := Stage(uncentered, true, testBox, 25, 1)
	assert.True(t, staging.Offset.IsZero())
	assert.True(t, staging.Shadow.Center.Equals(Vector{}, 1e-9))

	fixed := config
	fixed.AdjustCamera = 0
	assert.Zero(t, Stage(fixed, true, testBox, 25, 1).Distance)

	small := config
	small.ContactShadow.Scale = 1
	assert.Equal(t, 0.5, Stage(small, true, testBox, 25, 1).Shadow.Radius)

	empty := Stage(config, true, Dimensions{}, 25, 1)
	assert.Zero(t, empty.Distance)
	assert.Zero(t, empty.Radius)
	assert.True(t, empty.Offset.IsZero())
	assert.False(t, empty.Shadow.Enabled)

}

func TestFramingDistance(t *testing.T) {

	assert.InDelta(t, math.Sqrt2, FramingDistance(1, 90, 2), 1e-9)
	assert.InDelta(t, math.Sqrt2, FramingDistance(1, 90, 1), 1e-9)

	// Portrait viewports are limited by their narrower horizontal field of view.
	assert.InDelta(t, math.Sqrt(5), FramingDistance(1, 90, 0.5), 1e-9)

	assert.Equal(t, FramingDistance(1, 25, 1), FramingDistance(0, 25, 1))
	assert.InDelta(t, 2*FramingDistance(1, 25, 1), FramingDistance(2, 25, 1), 1e-9)

}

func TestContactShadowFalloff(t *testing.T) {

	shadow := Stage(DefaultConfig().Stage, true, testBox, 25, 1).Shadow
	shadow.Resolution = 32

	mask := shadow.Falloff()
	assert.Equal(t, 32, mask.Bounds().Dx())
	assert.Equal(t, 32, mask.Bounds().Dy())

	assert.Equal(t, uint8(128), mask.AlphaAt(16, 16).A, "center is fully shadowed at half opacity")
	assert.Equal(t, uint8(0), mask.AlphaAt(0, 0).A, "corners are clear")

	for x := 17; x < 32; x++ {
		assert.LessOrEqual(t, mask.AlphaAt(x, 16).A, mask.AlphaAt(x-1, 16).A, "falloff increases at x = %d", x)
	}

	corners := shadow.Corners()
	r := shadow.Radius
	assert.True(t, corners[0].Equals(NewVector(-r, -1, -r), 1e-9))
	assert.True(t, corners[3].Equals(NewVector(r, -1, r), 1e-9))

}

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, 0.0, smoothstep(0.2, 1, 0.1))
	assert.Equal(t, 1.0, smoothstep(0.2, 1, 2))
	assert.InDelta(t, 0.5, smoothstep(0, 1, 0.5), 1e-9)
	assert.Equal(t, 1.0, smoothstep(1, 1, 1))
	assert.Equal(t, 0.0, smoothstep(1, 1, 0.5))
}
