package ebiten3d

import (
	"errors"
	"fmt"
	"io/fs"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/solarlune/retroview"
	"github.com/solarlune/tetra3d"
)

// ErrNoLibrary is returned when an asset's Handle isn't a loaded tetra3d Library.
var ErrNoLibrary = errors.New("asset has no tetra3d library")

// NewLoader returns a retroview.Loader that decodes glTF assets from fsys and builds a tetra3d Library for each.
func NewLoader(fsys fs.FS) retroview.Loader {
	return retroview.DocumentLoader(fsys, loadLibrary)
}

func loadLibrary(fsys fs.FS, assetPath string, _ *gltf.Document) (any, error) {

	library, err := tetra3d.LoadGLTFFileSystem(fsys, assetPath, tetra3d.DefaultGLTFLoadOptions())
	if err != nil {
		return nil, fmt.Errorf("building scene from %s: %w", assetPath, err)
	}

	if library.ExportedScene == nil && len(library.Scenes) == 0 {
		return nil, fmt.Errorf("%s: %w", assetPath, retroview.ErrNoScene)
	}

	return library, nil

}

// buildScene commits a Composition into a fresh tetra3d Scene: a stage node, offset so the content is centered, holding
// the composition's lights and a clone of the asset's scene placed as the primitive.
func buildScene(comp retroview.Composition, staging retroview.Staging) (*tetra3d.Scene, *tetra3d.Node, error) {

	library, ok := comp.Primitive.Asset.Handle.(*tetra3d.Library)
	if !ok || library == nil {
		return nil, nil, ErrNoLibrary
	}

	source := library.ExportedScene
	if source == nil {
		source = library.Scenes[0]
	}

	scene := tetra3d.NewScene("retroview")

	stage := tetra3d.NewNode("stage")
	placeStage(stage, staging)
	scene.Root.AddChildren(stage)

	for _, spec := range comp.Lights {
		stage.AddChildren(newLight(spec))
	}

	primitive := source.Root.Clone()
	primitive.SetName("primitive")
	scale := float32(comp.Primitive.Scale)
	primitive.SetLocalScale(scale, scale, scale)
	offset := comp.Primitive.Offset
	primitive.SetLocalPosition(float32(offset.X), float32(offset.Y), float32(offset.Z))
	stage.AddChildren(primitive)

	return scene, stage, nil

}

// placeStage moves the stage node so the staged content is centered.
func placeStage(stage *tetra3d.Node, staging retroview.Staging) {
	stage.SetLocalPosition(float32(staging.Offset.X), float32(staging.Offset.Y), float32(staging.Offset.Z))
}

// newLight creates the engine light for a LightSpec. The engine lights vertices without shadow maps, so spot lights
// become directional lights aimed from their position at their target.
func newLight(spec retroview.LightSpec) tetra3d.INode {

	switch spec.Kind {

	case retroview.LightHemisphere:
		c := spec.AmbientColor()
		return tetra3d.NewAmbientLight(spec.Name, c.R, c.G, c.B, 1)

	case retroview.LightSpot:
		light := tetra3d.NewDirectionalLight(spec.Name, spec.Color.R, spec.Color.G, spec.Color.B, spec.Intensity)
		light.SetLocalPosition(float32(spec.Position.X), float32(spec.Position.Y), float32(spec.Position.Z))
		light.SetLocalRotation(aim(spec.Direction()))
		return light

	default:
		light := tetra3d.NewPointLight(spec.Name, spec.Color.R, spec.Color.G, spec.Color.B, spec.Intensity)
		light.SetLocalPosition(float32(spec.Position.X), float32(spec.Position.Y), float32(spec.Position.Z))
		if spec.Distance > 0 {
			light.Range = float32(spec.Distance)
		}
		return light

	}

}

// aim returns a rotation that points a node's -Z axis along the direction given.
func aim(dir retroview.Vector) tetra3d.Matrix4 {
	yaw := math.Atan2(-dir.X, -dir.Z)
	pitch := math.Asin(math.Max(-1, math.Min(1, dir.Y)))
	tilt := tetra3d.NewMatrix4Rotate(1, 0, 0, float32(pitch))
	rotate := tetra3d.NewMatrix4Rotate(0, 1, 0, float32(yaw))
	return tilt.Mult(rotate)
}
