package retroview

import (
	"errors"
	"fmt"
)

// ErrNoAsset is returned when a composition is requested before its asset has resolved.
var ErrNoAsset = errors.New("no asset")

// LightKind identifies the kind of a LightSpec.
type LightKind int

const (
	LightHemisphere LightKind = iota // Ambient light blended between a sky and a ground color
	LightSpot                        // Cone light shining from a position towards a target
	LightPoint                       // Omnidirectional light
)

func (kind LightKind) String() string {
	switch kind {
	case LightHemisphere:
		return "hemisphere"
	case LightSpot:
		return "spot"
	case LightPoint:
		return "point"
	}
	return "unknown"
}

// LightSpec describes one light source of a Composition. Fields that don't apply to a LightKind are left zero.
type LightSpec struct {
	Kind        LightKind
	Name        string
	Color       Color
	GroundColor Color // Hemisphere lights only
	Intensity   float32
	Position    Vector
	Target      Vector  // Spot lights only
	Angle       float64 // Spot lights only
	Penumbra    float64 // Spot lights only
	Distance    float64 // Point lights only; 0 is unbounded
	CastShadow  bool
	ShadowMap   int
}

// Primitive places an Asset's root node in the scene.
type Primitive struct {
	Asset  *Asset
	Scale  float64
	Offset Vector
}

// PlacedBounds returns the bounds of the primitive's asset after scaling and offsetting.
func (prim Primitive) PlacedBounds() Dimensions {
	if prim.Asset == nil {
		return Dimensions{}
	}
	return prim.Asset.Bounds.Place(prim.Scale, prim.Offset)
}

// Composition is everything the Model View contributes to the scene: its light rig and the positioned asset.
type Composition struct {
	Lights    []LightSpec
	Primitive Primitive
}

// Compose builds the Model View's Composition for the asset given: a hemisphere light, a shadow-casting spot light, and a
// point light, alongside the asset scaled and offset according to the model configuration.
func Compose(model ModelConfig, lighting LightingConfig, asset *Asset) (Composition, error) {

	if asset == nil {
		return Composition{}, fmt.Errorf("composing %q: %w", model.Path, ErrNoAsset)
	}

	hemi := lighting.Hemisphere
	spot := lighting.Spot
	point := lighting.Point

	return Composition{
		Lights: []LightSpec{
			{
				Kind:        LightHemisphere,
				Name:        "hemisphere light",
				Color:       hemi.SkyColor,
				GroundColor: hemi.GroundColor,
				Intensity:   hemi.Intensity,
			},
			{
				Kind:       LightSpot,
				Name:       "spot light",
				Color:      spot.Color,
				Intensity:  spot.Intensity,
				Position:   spot.Position,
				Target:     spot.Target,
				Angle:      spot.Angle,
				Penumbra:   spot.Penumbra,
				CastShadow: spot.CastShadow,
				ShadowMap:  spot.ShadowMapSize,
			},
			{
				Kind:      LightPoint,
				Name:      "point light",
				Color:     point.Color,
				Intensity: point.Intensity,
				Position:  point.Position,
				Distance:  point.Distance,
			},
		},
		Primitive: Primitive{
			Asset:  asset,
			Scale:  model.Scale,
			Offset: model.Offset,
		},
	}, nil

}

// LightsOfKind returns the Composition's lights of the kind given.
func (comp Composition) LightsOfKind(kind LightKind) []LightSpec {
	out := []LightSpec{}
	for _, l := range comp.Lights {
		if l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}

// Direction returns the unit vector a spot light shines along.
func (light LightSpec) Direction() Vector {
	return light.Target.Sub(light.Position).Unit()
}

// AmbientColor returns the flat ambient contribution of a hemisphere light: the average of its sky and ground colors,
// scaled by intensity.
func (light LightSpec) AmbientColor() Color {
	return Color{
		R: (light.Color.R + light.GroundColor.R) / 2,
		G: (light.Color.G + light.GroundColor.G) / 2,
		B: (light.Color.B + light.GroundColor.B) / 2,
		A: 1,
	}.Scaled(light.Intensity)
}
