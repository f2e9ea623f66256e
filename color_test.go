package retroview

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {

	tests := []struct {
		input string
		want  Color
	}{
		{"white", NewColor(1, 1, 1, 1)},
		{" Black ", NewColor(0, 0, 0, 1)},
		{"transparent", NewColor(0, 0, 0, 0)},
		{"#fff", NewColor(1, 1, 1, 1)},
		{"#ff0000", NewColor(1, 0, 0, 1)},
		{"#00ff0080", NewColor(0, 1, 0, float32(0x80)/255)},
	}

	for _, test := range tests {
		c, err := ParseColor(test.input)
		require.NoError(t, err, test.input)
		assert.InDelta(t, test.want.R, c.R, 1e-6, test.input)
		assert.InDelta(t, test.want.G, c.G, 1e-6, test.input)
		assert.InDelta(t, test.want.B, c.B, 1e-6, test.input)
		assert.InDelta(t, test.want.A, c.A, 1e-6, test.input)
	}

	for _, bad := range []string{"", "chartreuse-ish", "#12", "#12345", "#gggggg"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}

	assert.Panics(t, func() { MustParseColor("not a color") })

}

func TestColorConversion(t *testing.T) {

	c := MustParseColor("#050816")
	assert.Equal(t, color.NRGBA{R: 0x05, G: 0x08, B: 0x16, A: 0xff}, c.ToNRGBA())
	assert.Equal(t, "#050816ff", c.String())

	// Out-of-range components are clamped rather than wrapped.
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 255, A: 255}, NewColor(2, -1, 1, 1).ToNRGBA())

	scaled := NewColor(1, 0.5, 0.25, 0.5).Scaled(0.5)
	assert.Equal(t, NewColor(0.5, 0.25, 0.125, 0.5), scaled)

	srgb := NewColor(0, 1, 0.5, 1).ConvertTosRGB()
	assert.InDelta(t, 0, srgb.R, 1e-6)
	assert.InDelta(t, 1, srgb.G, 1e-5)
	assert.InDelta(t, 0.7354, srgb.B, 1e-3)

}

func TestColorText(t *testing.T) {

	var c Color
	require.NoError(t, c.UnmarshalText([]byte("orange")))
	assert.Equal(t, NewColor(1, 0.5, 0, 1), c)

	text, err := MustParseColor("#336699").MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#336699ff", string(text))

	assert.Error(t, c.UnmarshalText([]byte("#nope")))

}
