package ebiten3d

import (
	"github.com/solarlune/retroview"
	"github.com/solarlune/tetra3d"
)

// cameraRig keeps a tetra3d Camera in step with the SceneRoot's orbit controls and render surface size.
type cameraRig struct {
	Camera *tetra3d.Camera

	width, height int
}

func newCameraRig(config retroview.CameraConfig, width, height int) *cameraRig {

	if width <= 0 || height <= 0 {
		width, height = 640, 360
	}

	rig := &cameraRig{
		Camera: tetra3d.NewCamera(width, height),
		width:  width,
		height: height,
	}

	rig.Camera.SetFieldOfView(float32(config.FOV))
	rig.Camera.SetNear(float32(config.Near))
	rig.Camera.SetFar(float32(config.Far))

	return rig

}

// resize resizes the camera's render textures, returning true if the size changed.
func (rig *cameraRig) resize(width, height int) bool {
	if width <= 0 || height <= 0 || (width == rig.width && height == rig.height) {
		return false
	}
	rig.width, rig.height = width, height
	rig.Camera.Resize(width, height)
	return true
}

// sync places the camera at the orbit's position, looking at its target.
func (rig *cameraRig) sync(orbit *retroview.OrbitControls) {

	pos := orbit.Position()
	rig.Camera.SetLocalPosition(float32(pos.X), float32(pos.Y), float32(pos.Z))

	// The camera looks down -Z; yaw by the azimuth, then tilt towards the target.
	// Order of this is important: tilt * rotate.
	tilt := tetra3d.NewMatrix4Rotate(1, 0, 0, float32(orbit.Tilt()))
	rotate := tetra3d.NewMatrix4Rotate(0, 1, 0, float32(orbit.Azimuth))
	rig.Camera.SetLocalRotation(tilt.Mult(rotate))

}

// project returns the screen pixel position of a world-space point.
func (rig *cameraRig) project(point retroview.Vector) (float32, float32) {
	screen := rig.Camera.WorldToScreenPixels(tetra3d.NewVector3(float32(point.X), float32(point.Y), float32(point.Z)))
	return screen.X, screen.Y
}
