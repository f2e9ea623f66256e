package retroview

import (
	"math"
)

// Dimensions represents an axis-aligned bounding box by its minimum and maximum corners.
// A zero-value Dimensions is empty; use NewEmptyDimensions() when accumulating points.
type Dimensions struct {
	Min, Max Vector
	set      bool
}

// NewDimensions returns Dimensions spanning the two corners given, in any order.
func NewDimensions(a, b Vector) Dimensions {
	dim := NewEmptyDimensions()
	dim = dim.AddPoint(a)
	dim = dim.AddPoint(b)
	return dim
}

// NewEmptyDimensions returns an empty Dimensions, ready to have points added to it.
func NewEmptyDimensions() Dimensions {
	return Dimensions{
		Min: NewVector(math.MaxFloat64, math.MaxFloat64, math.MaxFloat64),
		Max: NewVector(-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64),
	}
}

// Empty returns true if no point has been added to the Dimensions.
func (dim Dimensions) Empty() bool {
	return !dim.set
}

// AddPoint returns a copy of the Dimensions, grown to contain the point given.
func (dim Dimensions) AddPoint(point Vector) Dimensions {

	if !dim.set {
		dim.Min = point
		dim.Max = point
		dim.set = true
		return dim
	}

	dim.Min.X = math.Min(dim.Min.X, point.X)
	dim.Min.Y = math.Min(dim.Min.Y, point.Y)
	dim.Min.Z = math.Min(dim.Min.Z, point.Z)

	dim.Max.X = math.Max(dim.Max.X, point.X)
	dim.Max.Y = math.Max(dim.Max.Y, point.Y)
	dim.Max.Z = math.Max(dim.Max.Z, point.Z)

	return dim

}

// Union returns Dimensions containing both the calling and the other Dimensions.
func (dim Dimensions) Union(other Dimensions) Dimensions {
	if other.Empty() {
		return dim
	}
	return dim.AddPoint(other.Min).AddPoint(other.Max)
}

// Corners returns the eight corners of the box.
func (dim Dimensions) Corners() [8]Vector {
	return [8]Vector{
		{dim.Min.X, dim.Min.Y, dim.Min.Z},
		{dim.Max.X, dim.Min.Y, dim.Min.Z},
		{dim.Min.X, dim.Max.Y, dim.Min.Z},
		{dim.Max.X, dim.Max.Y, dim.Min.Z},
		{dim.Min.X, dim.Min.Y, dim.Max.Z},
		{dim.Max.X, dim.Min.Y, dim.Max.Z},
		{dim.Min.X, dim.Max.Y, dim.Max.Z},
		{dim.Max.X, dim.Max.Y, dim.Max.Z},
	}
}

// Transform returns the axis-aligned Dimensions of this box after transformation by the matrix provided.
func (dim Dimensions) Transform(matrix Matrix4) Dimensions {
	if dim.Empty() {
		return dim
	}
	out := NewEmptyDimensions()
	for _, c := range dim.Corners() {
		out = out.AddPoint(matrix.MultVec(c))
	}
	return out
}

// Place returns the Dimensions after uniform scaling, then offsetting, in the same way a placed primitive is transformed.
func (dim Dimensions) Place(scale float64, offset Vector) Dimensions {
	return dim.Transform(NewMatrix4Translate(offset.X, offset.Y, offset.Z).Mult(NewMatrix4Scale(scale, scale, scale)))
}

// Center returns the center point of the box.
func (dim Dimensions) Center() Vector {
	return dim.Min.Add(dim.Max).Scale(0.5)
}

// Size returns the width, height and depth of the box.
func (dim Dimensions) Size() Vector {
	if dim.Empty() {
		return Vector{}
	}
	return dim.Max.Sub(dim.Min)
}

// Radius returns the radius of the sphere enclosing the box.
func (dim Dimensions) Radius() float64 {
	return dim.Size().Magnitude() / 2
}

// HorizontalRadius returns the radius of the circle enclosing the box's footprint on the XZ plane.
func (dim Dimensions) HorizontalRadius() float64 {
	s := dim.Size()
	return math.Hypot(s.X, s.Z) / 2
}
