package retroview

import (
	"image"
	"image/color"
	"math"
)

// Staging describes how the content of a scene is centered, framed by the camera, and grounded by a contact shadow.
type Staging struct {
	Bounds   Dimensions // Bounds of the placed content, before centering
	Offset   Vector     // Translation applied to the content so that it's centered on the origin
	Radius   float64    // Radius of the sphere enclosing the content
	Distance float64    // Camera distance that frames the content; 0 if the stage doesn't adjust the camera
	Shadow   ContactShadow
}

// ContactShadow is a soft shadow lying on the ground plane directly underneath the staged content.
type ContactShadow struct {
	Enabled    bool
	Center     Vector  // Center of the shadow on the ground plane, after centering
	Radius     float64 // Radius of the visible falloff, in world units
	PlaneSize  float64 // Width of the whole shadow plane, in world units
	Resolution int
	Opacity    float64
	Blur       float64
}

// Stage computes the Staging for content with the placed bounds given, viewed through a camera with the vertical field of
// view (in degrees) and aspect ratio provided. shadows is the canvas-wide shadow switch.
func Stage(config StageConfig, shadows bool, placed Dimensions, fovDegrees, aspect float64) Staging {

	staging := Staging{
		Bounds: placed,
		Radius: placed.Radius(),
	}

	if placed.Empty() {
		return staging
	}

	if config.Center {
		staging.Offset = placed.Center().Invert()
	}

	if config.AdjustCamera > 0 {
		staging.Distance = FramingDistance(staging.Radius, fovDegrees, aspect) * config.AdjustCamera
	}

	cs := config.ContactShadow

	staging.Shadow = ContactShadow{
		Enabled:    shadows && cs.Resolution > 0 && cs.Opacity > 0,
		Center:     NewVector(placed.Center().X, placed.Min.Y, placed.Center().Z).Add(staging.Offset),
		PlaneSize:  cs.Scale,
		Resolution: cs.Resolution,
		Opacity:    cs.Opacity,
		Blur:       cs.Blur,
	}

	staging.Shadow.Radius = placed.HorizontalRadius() * (1 + 0.1*math.Max(cs.Blur, 0))
	if cs.Scale > 0 {
		staging.Shadow.Radius = math.Min(staging.Shadow.Radius, cs.Scale/2)
	}

	return staging

}

// FramingDistance returns how far away a camera with the vertical field of view (in degrees) and aspect ratio given must
// be for a sphere of the radius provided to fit entirely in view.
func FramingDistance(radius, fovDegrees, aspect float64) float64 {

	if radius <= 0 {
		radius = 1
	}

	halfV := fovDegrees * math.Pi / 360
	half := halfV

	if aspect > 0 && aspect < 1 {
		half = math.Atan(math.Tan(halfV) * aspect)
	}

	return radius / math.Sin(half)

}

// Corners returns the four corners of the shadow's footprint on the ground plane, in the order top-left, top-right,
// bottom-left, bottom-right when viewed from above with -Z up.
func (shadow ContactShadow) Corners() [4]Vector {
	c, r := shadow.Center, shadow.Radius
	return [4]Vector{
		{c.X - r, c.Y, c.Z - r},
		{c.X + r, c.Y, c.Z - r},
		{c.X - r, c.Y, c.Z + r},
		{c.X + r, c.Y, c.Z + r},
	}
}

// Falloff renders the shadow's radial falloff into an alpha mask of Resolution x Resolution texels. The mask is fully
// opaque (scaled by Opacity) at the center and fades to nothing at the edge; Blur widens the fade.
func (shadow ContactShadow) Falloff() *image.Alpha {

	res := shadow.Resolution
	if res <= 0 {
		res = 1
	}

	mask := image.NewAlpha(image.Rect(0, 0, res, res))

	inner := 1 / (1 + math.Max(shadow.Blur, 0))
	opacity := clamp(shadow.Opacity, 0, 1)
	half := float64(res) / 2

	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			dx := (float64(x) + 0.5 - half) / half
			dy := (float64(y) + 0.5 - half) / half
			d := math.Hypot(dx, dy)
			a := opacity * (1 - smoothstep(inner*0.25, 1, d))
			mask.SetAlpha(x, y, color.Alpha{A: uint8(math.Round(clamp(a, 0, 1) * 255))})
		}
	}

	return mask

}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge1 <= edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
