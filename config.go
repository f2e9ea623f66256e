package retroview

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every error Config.Validate() returns.
var ErrInvalidConfig = errors.New("invalid config")

// FrameLoop selects when the Scene Root redraws.
type FrameLoop string

const (
	FrameLoopDemand FrameLoop = "demand" // Redraw only when the scene has been invalidated
	FrameLoopAlways FrameLoop = "always" // Redraw every frame
)

// Config holds every tunable of the viewer. DefaultConfig() returns the values the viewer ships with;
// configuration files only need to name the fields they change.
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Canvas   CanvasConfig   `toml:"canvas" yaml:"canvas"`
	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	Controls ControlsConfig `toml:"controls" yaml:"controls"`
	Stage    StageConfig    `toml:"stage" yaml:"stage"`
	Model    ModelConfig    `toml:"model" yaml:"model"`
	Lighting LightingConfig `toml:"lighting" yaml:"lighting"`
	Preload  PreloadConfig  `toml:"preload" yaml:"preload"`
}

// WindowConfig describes the host surface the viewer mounts into.
type WindowConfig struct {
	Title          string  `toml:"title" yaml:"title"`
	WidthFraction  float64 `toml:"width_fraction" yaml:"width_fraction"`   // Fraction of the monitor / page width to occupy
	HeightFraction float64 `toml:"height_fraction" yaml:"height_fraction"` // Fraction of the monitor / page height to occupy
	Resizable      bool    `toml:"resizable" yaml:"resizable"`
	Background     Color   `toml:"background" yaml:"background"`
}

// CanvasConfig configures the render surface.
type CanvasConfig struct {
	FrameLoop             FrameLoop  `toml:"frame_loop" yaml:"frame_loop"`
	Shadows               bool       `toml:"shadows" yaml:"shadows"`
	DPR                   [2]float64 `toml:"dpr" yaml:"dpr"` // Inclusive range the device pixel ratio is clamped to
	PreserveDrawingBuffer bool       `toml:"preserve_drawing_buffer" yaml:"preserve_drawing_buffer"`
}

// CameraConfig holds the initial camera settings.
type CameraConfig struct {
	Position Vector  `toml:"position" yaml:"position"`
	FOV      float64 `toml:"fov" yaml:"fov"` // Vertical field of view, in degrees
	Near     float64 `toml:"near" yaml:"near"`
	Far      float64 `toml:"far" yaml:"far"`
}

// ControlsConfig configures the orbit controls.
type ControlsConfig struct {
	EnableRotate  bool    `toml:"enable_rotate" yaml:"enable_rotate"`
	EnableZoom    bool    `toml:"enable_zoom" yaml:"enable_zoom"`
	MinPolarAngle float64 `toml:"min_polar_angle" yaml:"min_polar_angle"` // Radians from the up axis
	MaxPolarAngle float64 `toml:"max_polar_angle" yaml:"max_polar_angle"` // Radians from the up axis
	DampingFactor float64 `toml:"damping_factor" yaml:"damping_factor"`   // Share of velocity lost every update, in the 0 - 1 range
	RotateSpeed   float64 `toml:"rotate_speed" yaml:"rotate_speed"`
	ZoomSpeed     float64 `toml:"zoom_speed" yaml:"zoom_speed"`
	MinZoom       float64 `toml:"min_zoom" yaml:"min_zoom"` // Closest distance, as a multiple of the framed distance
	MaxZoom       float64 `toml:"max_zoom" yaml:"max_zoom"` // Farthest distance, as a multiple of the framed distance
}

// StageConfig configures how content is centered, framed, and grounded.
type StageConfig struct {
	Center        bool                `toml:"center" yaml:"center"`
	AdjustCamera  float64             `toml:"adjust_camera" yaml:"adjust_camera"` // Framing margin; 0 leaves the camera distance alone
	ContactShadow ContactShadowConfig `toml:"contact_shadow" yaml:"contact_shadow"`
}

// ContactShadowConfig configures the soft shadow composited under the staged content.
type ContactShadowConfig struct {
	Resolution int     `toml:"resolution" yaml:"resolution"` // Width and height of the shadow texture, in texels
	Scale      float64 `toml:"scale" yaml:"scale"`           // Width of the shadow plane, in world units
	Opacity    float64 `toml:"opacity" yaml:"opacity"`
	Blur       float64 `toml:"blur" yaml:"blur"`
}

// ModelConfig names the asset to display and where to place it.
type ModelConfig struct {
	Path        string   `toml:"path" yaml:"path"`
	Scale       float64  `toml:"scale" yaml:"scale"`
	Offset      Vector   `toml:"offset" yaml:"offset"`
	LoadTimeout Duration `toml:"load_timeout" yaml:"load_timeout"` // 0 waits forever
}

// Duration is a time.Duration that reads and writes itself in configuration files as a string like "30s".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// LightingConfig holds the fixed lighting rig composed alongside the model.
type LightingConfig struct {
	Hemisphere HemisphereLightConfig `toml:"hemisphere" yaml:"hemisphere"`
	Spot       SpotLightConfig       `toml:"spot" yaml:"spot"`
	Point      PointLightConfig      `toml:"point" yaml:"point"`
}

// HemisphereLightConfig configures an ambient light blending a sky and ground color.
type HemisphereLightConfig struct {
	Intensity   float32 `toml:"intensity" yaml:"intensity"`
	SkyColor    Color   `toml:"sky_color" yaml:"sky_color"`
	GroundColor Color   `toml:"ground_color" yaml:"ground_color"`
}

// SpotLightConfig configures a directional cone light.
type SpotLightConfig struct {
	Position      Vector  `toml:"position" yaml:"position"`
	Target        Vector  `toml:"target" yaml:"target"`
	Angle         float64 `toml:"angle" yaml:"angle"` // Cone half-angle, in radians
	Penumbra      float64 `toml:"penumbra" yaml:"penumbra"`
	Intensity     float32 `toml:"intensity" yaml:"intensity"`
	Color         Color   `toml:"color" yaml:"color"`
	CastShadow    bool    `toml:"cast_shadow" yaml:"cast_shadow"`
	ShadowMapSize int     `toml:"shadow_map_size" yaml:"shadow_map_size"`
}

// PointLightConfig configures an omnidirectional light.
type PointLightConfig struct {
	Position  Vector  `toml:"position" yaml:"position"`
	Intensity float32 `toml:"intensity" yaml:"intensity"`
	Color     Color   `toml:"color" yaml:"color"`
	Distance  float64 `toml:"distance" yaml:"distance"` // 0 means unbounded
}

// PreloadConfig lists the assets warmed in the background after the viewer first mounts.
type PreloadConfig struct {
	All   bool     `toml:"all" yaml:"all"`
	Paths []string `toml:"paths" yaml:"paths"`
}

// DefaultModelPath is the asset displayed when no other path is configured.
const DefaultModelPath = "radio_shack_trs-80_model_1/scene.gltf"

// DefaultConfig returns the configuration the viewer ships with.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:          "TRS-80 Model I",
			WidthFraction:  1,
			HeightFraction: 0.9,
			Resizable:      true,
			Background:     MustParseColor("#050816"),
		},
		Canvas: CanvasConfig{
			FrameLoop:             FrameLoopDemand,
			Shadows:               true,
			DPR:                   [2]float64{1, 2},
			PreserveDrawingBuffer: true,
		},
		Camera: CameraConfig{
			Position: NewVector(0.2, 0.1, 0.3),
			FOV:      25,
			Near:     0.1,
			Far:      1000,
		},
		Controls: ControlsConfig{
			EnableRotate:  true,
			EnableZoom:    true,
			MinPolarAngle: math.Pi / 2,
			MaxPolarAngle: math.Pi / 2,
			DampingFactor: 0.3,
			RotateSpeed:   1,
			ZoomSpeed:     1,
			MinZoom:       0.25,
			MaxZoom:       4,
		},
		Stage: StageConfig{
			Center:       true,
			AdjustCamera: 1.5,
			ContactShadow: ContactShadowConfig{
				Resolution: 1024,
				Scale:      1000,
				Opacity:    0.5,
				Blur:       2,
			},
		},
		Model: ModelConfig{
			Path:   DefaultModelPath,
			Scale:  0.5,
			Offset: NewVector(0, -3.25, -1.5),
		},
		Lighting: LightingConfig{
			Hemisphere: HemisphereLightConfig{
				Intensity:   0.15,
				SkyColor:    MustParseColor("white"),
				GroundColor: MustParseColor("black"),
			},
			Spot: SpotLightConfig{
				Position:      NewVector(-20, 50, 10),
				Angle:         0.12,
				Penumbra:      1,
				Intensity:     1,
				Color:         MustParseColor("white"),
				CastShadow:    true,
				ShadowMapSize: 1024,
			},
			Point: PointLightConfig{
				Intensity: 1,
				Color:     MustParseColor("white"),
			},
		},
		Preload: PreloadConfig{
			All: true,
		},
	}
}

// LoadConfigFile reads a TOML (.toml) or YAML (.yaml, .yml) file and overlays it onto DefaultConfig().
// The result is validated before being returned.
func LoadConfigFile(path string) (Config, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	return ParseConfig(data, filepath.Ext(path))

}

// ParseConfig overlays the encoded configuration onto DefaultConfig(); format is a file extension (".toml", ".yaml" or ".yml").
func ParseConfig(data []byte, format string) (Config, error) {

	config := DefaultConfig()

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("decoding toml config: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("decoding yaml config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, format)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil

}

// Validate checks the Config for values the viewer can't work with, reporting every problem found at once.
func (config Config) Validate() error {

	var errs []error

	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if config.Canvas.FrameLoop != FrameLoopDemand && config.Canvas.FrameLoop != FrameLoopAlways {
		fail("canvas.frame_loop must be %q or %q, not %q", FrameLoopDemand, FrameLoopAlways, config.Canvas.FrameLoop)
	}

	if dpr := config.Canvas.DPR; dpr[0] <= 0 || dpr[1] < dpr[0] {
		fail("canvas.dpr must be a positive [min, max] range, not %v", dpr)
	}

	if config.Window.WidthFraction <= 0 || config.Window.WidthFraction > 1 {
		fail("window.width_fraction must be in (0, 1], not %v", config.Window.WidthFraction)
	}

	if config.Window.HeightFraction <= 0 || config.Window.HeightFraction > 1 {
		fail("window.height_fraction must be in (0, 1], not %v", config.Window.HeightFraction)
	}

	if config.Camera.FOV <= 0 || config.Camera.FOV >= 180 {
		fail("camera.fov must be in (0, 180), not %v", config.Camera.FOV)
	}

	if config.Camera.Near <= 0 || config.Camera.Far <= config.Camera.Near {
		fail("camera near / far planes must satisfy 0 < near < far, not %v / %v", config.Camera.Near, config.Camera.Far)
	}

	c := config.Controls

	if c.MinPolarAngle < 0 || c.MaxPolarAngle > math.Pi || c.MinPolarAngle > c.MaxPolarAngle {
		fail("controls polar angles must satisfy 0 <= min <= max <= pi, not %v / %v", c.MinPolarAngle, c.MaxPolarAngle)
	}

	if c.DampingFactor < 0 || c.DampingFactor > 1 {
		fail("controls.damping_factor must be in [0, 1], not %v", c.DampingFactor)
	}

	if c.MinZoom <= 0 || c.MaxZoom < c.MinZoom {
		fail("controls zoom limits must satisfy 0 < min <= max, not %v / %v", c.MinZoom, c.MaxZoom)
	}

	if config.Stage.ContactShadow.Resolution <= 0 {
		fail("stage.contact_shadow.resolution must be positive, not %d", config.Stage.ContactShadow.Resolution)
	}

	if config.Stage.AdjustCamera < 0 {
		fail("stage.adjust_camera can't be negative")
	}

	if strings.TrimSpace(config.Model.Path) == "" {
		fail("model.path can't be empty")
	}

	if config.Model.Scale <= 0 {
		fail("model.scale must be positive, not %v", config.Model.Scale)
	}

	if config.Model.LoadTimeout < 0 {
		fail("model.load_timeout can't be negative")
	}

	if config.Lighting.Spot.ShadowMapSize < 0 {
		fail("lighting.spot.shadow_map_size can't be negative")
	}

	return errors.Join(errs...)

}

// ClampDPR clamps a device scale factor to the configured pixel ratio range.
func (canvas CanvasConfig) ClampDPR(deviceScale float64) float64 {
	if math.IsNaN(deviceScale) || deviceScale < canvas.DPR[0] {
		return canvas.DPR[0]
	}
	if deviceScale > canvas.DPR[1] {
		return canvas.DPR[1]
	}
	return deviceScale
}

// AssetPaths returns every asset path the viewer should warm: the model first, followed by any extra preload paths.
// Duplicates are removed.
func (config Config) AssetPaths() []string {

	paths := []string{config.Model.Path}
	seen := map[string]bool{CleanAssetPath(config.Model.Path): true}

	for _, p := range config.Preload.Paths {
		clean := CleanAssetPath(p)
		if !seen[clean] {
			seen[clean] = true
			paths = append(paths, p)
		}
	}

	return paths

}
