package retroview

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// A Color represents a color, containing R, G, B, and A components, each expected to range from 0 to 1.
type Color struct {
	R, G, B, A float32
}

// NewColor returns a new Color, with the provided R, G, B, and A components expected to range from 0 to 1.
func NewColor(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// namedColors maps the color names accepted in configuration files to their values.
var namedColors = map[string]Color{
	"transparent": {0, 0, 0, 0},
	"white":       {1, 1, 1, 1},
	"black":       {0, 0, 0, 1},
	"gray":        {0.5, 0.5, 0.5, 1},
	"grey":        {0.5, 0.5, 0.5, 1},
	"lightgray":   {0.8, 0.8, 0.8, 1},
	"darkgray":    {0.2, 0.2, 0.2, 1},
	"red":         {1, 0, 0, 1},
	"green":       {0, 1, 0, 1},
	"blue":        {0, 0, 1, 1},
	"yellow":      {1, 1, 0, 1},
	"orange":      {1, 0.5, 0, 1},
}

// ParseColor parses a color by name ("black", "white", ...) or in hexadecimal "#rgb", "#rrggbb" or "#rrggbbaa" form.
func ParseColor(value string) (Color, error) {

	value = strings.ToLower(strings.TrimSpace(value))

	if c, ok := namedColors[value]; ok {
		return c, nil
	}

	hex, ok := strings.CutPrefix(value, "#")
	if !ok {
		return Color{}, fmt.Errorf("unknown color %q", value)
	}

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	if len(hex) == 6 {
		hex += "ff"
	}

	if len(hex) != 8 {
		return Color{}, fmt.Errorf("malformed hex color %q", value)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("malformed hex color %q: %w", value, err)
	}

	return Color{
		R: float32(v>>24&0xff) / 255,
		G: float32(v>>16&0xff) / 255,
		B: float32(v>>8&0xff) / 255,
		A: float32(v&0xff) / 255,
	}, nil

}

// MustParseColor is like ParseColor, but panics on error. It's intended for package-level defaults.
func MustParseColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Clamped returns a copy of the Color with every component clamped to the 0 - 1 range.
func (c Color) Clamped() Color {
	return Color{
		R: math32.Max(0, math32.Min(1, c.R)),
		G: math32.Max(0, math32.Min(1, c.G)),
		B: math32.Max(0, math32.Min(1, c.B)),
		A: math32.Max(0, math32.Min(1, c.A)),
	}
}

// Scaled returns a copy of the Color with its RGB components multiplied by the energy given; alpha is untouched.
func (c Color) Scaled(energy float32) Color {
	c.R *= energy
	c.G *= energy
	c.B *= energy
	return c
}

// ConvertTosRGB returns a copy of the Color converted from linear space to sRGB.
func (c Color) ConvertTosRGB() Color {

	convert := func(v float32) float32 {
		if v <= 0.0031308 {
			return v * 12.92
		}
		return 1.055*math32.Pow(v, 1/2.4) - 0.055
	}

	c.R = convert(c.R)
	c.G = convert(c.G)
	c.B = convert(c.B)
	return c

}

// ToNRGBA converts the Color to a standard library color.NRGBA value.
func (c Color) ToNRGBA() color.NRGBA {
	c = c.Clamped()
	return color.NRGBA{
		R: uint8(math32.Round(c.R * 255)),
		G: uint8(math32.Round(c.G * 255)),
		B: uint8(math32.Round(c.B * 255)),
		A: uint8(math32.Round(c.A * 255)),
	}
}

func (c Color) String() string {
	n := c.ToNRGBA()
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// MarshalText implements encoding.TextMarshaler, so Colors are written to configuration files in hex form.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting anything ParseColor does.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
