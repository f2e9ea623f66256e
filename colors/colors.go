package colors

// package colors contains the named colors the viewer's overlays are drawn with, as retroview.Color instances
// (i.e. "White()", "Phosphor()", "PaleRed()", etc).

import "github.com/solarlune/retroview"

// White returns a retroview.Color instance of the provided name.
func White() retroview.Color {
	return retroview.NewColor(1, 1, 1, 1)
}

// Black returns a retroview.Color instance of the provided name. Contact shadows are tinted with it.
func Black() retroview.Color {
	return retroview.NewColor(0, 0, 0, 1)
}

// LightGray returns a retroview.Color instance of the provided name.
func LightGray() retroview.Color {
	return retroview.NewColor(0.8, 0.8, 0.8, 1)
}

// PaleRed returns a retroview.Color instance of the provided name. The error view uses it for its title.
func PaleRed() retroview.Color {
	return retroview.NewColor(0.678, 0.172, 0.384, 1)
}

// Phosphor returns the green of a TRS-80's monitor; the loading spinner and caption are drawn in it.
func Phosphor() retroview.Color {
	return retroview.NewColor(0.35, 1, 0.55, 1)
}

// Scrim returns the translucent dark color drawn behind overlay text.
func Scrim() retroview.Color {
	return retroview.NewColor(0, 0, 0, 0.6)
}
